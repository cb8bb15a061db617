package models

// UserFilter narrows GET /users. Empty fields are ignored.
type UserFilter struct {
	Role   string
	Status string
	Group  string
	Search string
}

// RepositoryFilter narrows GET /repositories.
type RepositoryFilter struct {
	BackupStatus    string
	MigrationStatus string
	Search          string
}

// MigrationFilter narrows GET /migrations.
type MigrationFilter struct {
	Status       string
	AssignedTo   string
	RepositoryID int64
}

// BackupFilter narrows GET /backups.
type BackupFilter struct {
	Type         string
	Status       string
	RepositoryID int64
}

// ScheduleFilter narrows GET /backup-schedules.
type ScheduleFilter struct {
	Type      string
	Frequency string
	Status    string
}

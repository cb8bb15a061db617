package models

// UserPayload is the body of POST/PUT /users.
type UserPayload struct {
	Username  string `json:"username" validate:"required,min=2,max=64"`
	FullName  string `json:"fullName" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Role      string `json:"role" validate:"required,oneof=Admin Developer ReadOnly"`
	Status    string `json:"status" validate:"required,oneof=Active Inactive Locked"`
	Group     string `json:"group" validate:"max=64"`
	Initials  string `json:"initials,omitempty" validate:"max=4"`
	ColorCode string `json:"colorCode,omitempty"`
}

// RepositoryPayload is the body of POST/PUT /repositories.
// A nil MigrationProgress is derived from MigrationStatus.
type RepositoryPayload struct {
	Name              string `json:"name" validate:"required,min=3,max=100"`
	Description       string `json:"description" validate:"max=500"`
	Size              string `json:"size" validate:"max=32"`
	BackupStatus      string `json:"backupStatus" validate:"omitempty,oneof=Complete 'In Progress' Failed"`
	MigrationStatus   string `json:"migrationStatus" validate:"omitempty,oneof='Not Started' 'In Progress' Completed Archived"`
	MigrationProgress *int   `json:"migrationProgress,omitempty" validate:"omitempty,min=0,max=100"`
	ColorCode         string `json:"colorCode,omitempty"`
}

// MembersPayload is the body of PUT /repositories/{id}/members.
type MembersPayload struct {
	MemberIDs []int64 `json:"memberIds"`
}

// MigrationPayload is the body of POST/PUT /migrations.
// A nil Progress is derived from Status.
type MigrationPayload struct {
	Name          string `json:"name" validate:"required,min=3,max=100"`
	Description   string `json:"description" validate:"max=500"`
	Size          string `json:"size" validate:"max=32"`
	Status        string `json:"status" validate:"required,oneof='Not Started' 'In Progress' Completed Failed"`
	Progress      *int   `json:"progress,omitempty" validate:"omitempty,min=0,max=100"`
	EstimatedTime string `json:"estimatedTime" validate:"max=64"`
	AssignedTo    string `json:"assignedTo" validate:"max=100"`
	ColorCode     string `json:"colorCode,omitempty"`
	RepositoryID  *int64 `json:"repositoryId,omitempty"`
}

// BackupPayload is the body of POST /backups.
type BackupPayload struct {
	Type        string `json:"type" validate:"required,oneof=Full Delta"`
	InitiatedBy string `json:"initiatedBy" validate:"max=100"`
	Notes       string `json:"notes" validate:"max=500"`
}

// SchedulePayload is the body of POST/PUT /backup-schedules.
type SchedulePayload struct {
	Name      string `json:"name" validate:"required,max=100"`
	Type      string `json:"type" validate:"required,oneof=Full Delta"`
	Frequency string `json:"frequency" validate:"required,oneof=Daily Weekly Monthly"`
	Time      string `json:"time" validate:"required,max=32"`
	Retention string `json:"retention" validate:"max=32"`
	Status    string `json:"status" validate:"omitempty,oneof=Active Inactive"`
}

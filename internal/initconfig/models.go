// filepath: internal/initconfig/models.go
package initconfig

// InitConfig is the root struct for parsing the TOML initialization file.
// Relative times ("ago", "started", ...) are Go durations counted back from now.
type InitConfig struct {
	Accounts     []InitAccount    `toml:"account"`
	Users        []InitUser       `toml:"user"`
	Repositories []InitRepository `toml:"repository"`
	Migrations   []InitMigration  `toml:"migration"`
	Backups      []InitBackup     `toml:"backup"`
	Schedules    []InitSchedule   `toml:"schedule"`

	GitUsers        []InitGitUser       `toml:"git_user"`
	GitRepositories []InitGitRepository `toml:"git_repository"`
}

// InitAccount represents a console login in the TOML config file.
type InitAccount struct {
	Name     string   `toml:"name"`
	Roles    []string `toml:"roles"`
	Password string   `toml:"password"`
}

// InitUser represents a managed SCM user.
type InitUser struct {
	Username     string `toml:"username"`
	FullName     string `toml:"full_name"`
	Email        string `toml:"email"`
	Role         string `toml:"role"`
	Status       string `toml:"status"`
	Group        string `toml:"group"`
	Initials     string `toml:"initials"`
	ColorCode    string `toml:"color_code"`
	LastActivity string `toml:"last_activity"`
}

// InitRepository represents a repository. Members are usernames.
type InitRepository struct {
	Name              string   `toml:"name"`
	Description       string   `toml:"description"`
	Size              string   `toml:"size"`
	BackupStatus      string   `toml:"backup_status"`
	MigrationStatus   string   `toml:"migration_status"`
	MigrationProgress int      `toml:"migration_progress"`
	ColorCode         string   `toml:"color_code"`
	LastCommit        string   `toml:"last_commit"`
	LastCommitBy      string   `toml:"last_commit_by"`
	Members           []string `toml:"members"`
}

// InitMigration represents a migration record, optionally linked to a repository by name.
type InitMigration struct {
	Name          string `toml:"name"`
	Description   string `toml:"description"`
	Size          string `toml:"size"`
	Status        string `toml:"status"`
	Progress      int    `toml:"progress"`
	Started       string `toml:"started"`
	Completed     string `toml:"completed"`
	EstimatedTime string `toml:"estimated_time"`
	AssignedTo    string `toml:"assigned_to"`
	ColorCode     string `toml:"color_code"`
	Repository    string `toml:"repository"`
}

// InitBackup represents a finished or running backup. An empty repository list means all.
type InitBackup struct {
	BackupID     string   `toml:"backup_id"`
	Ago          string   `toml:"ago"`
	Type         string   `toml:"type"`
	Status       string   `toml:"status"`
	Size         string   `toml:"size"`
	Duration     string   `toml:"duration"`
	InitiatedBy  string   `toml:"initiated_by"`
	Notes        string   `toml:"notes"`
	Logs         string   `toml:"logs"`
	Repositories []string `toml:"repositories"`
}

// InitSchedule represents a backup schedule. An empty repository list means all.
type InitSchedule struct {
	ScheduleID   string   `toml:"schedule_id"`
	Name         string   `toml:"name"`
	Type         string   `toml:"type"`
	Frequency    string   `toml:"frequency"`
	Time         string   `toml:"time"`
	Retention    string   `toml:"retention"`
	Status       string   `toml:"status"`
	Repositories []string `toml:"repositories"`
}

// InitGitUser represents a user of the Git hosting side.
type InitGitUser struct {
	EmployeeID string `toml:"employee_id"`
	Username   string `toml:"username"`
	GroupName  string `toml:"group_name"`
	Role       string `toml:"role"`
}

// InitGitRepository represents a Git repository and, when backup_status is
// set, its backup record. Members are employee ids.
type InitGitRepository struct {
	ProjectName  string   `toml:"project_name"`
	Department   string   `toml:"department"`
	GitURL       string   `toml:"git_url"`
	SSHURL       string   `toml:"ssh_url"`
	Created      string   `toml:"created"`
	CreatedBy    string   `toml:"created_by"`
	Members      []string `toml:"members"`
	BackupStatus string   `toml:"backup_status"`
	LastBackup   string   `toml:"last_backup"`
}

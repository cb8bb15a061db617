package models

import "time"

// Git user roles.
const (
	GitRoleDeveloper = "DEVELOPER"
	GitRoleReviewer  = "REVIEWER"
	GitRoleTester    = "TESTER"
	GitRoleAdmin     = "ADMIN"
)

// GitRoles lists every Git user role in display order.
var GitRoles = []string{GitRoleDeveloper, GitRoleReviewer, GitRoleTester, GitRoleAdmin}

// Git backup states.
const (
	GitBackupComplete = "COMPLETE"
	GitBackupPending  = "PENDING"
)

// GitBackupStatuses lists every Git backup state.
var GitBackupStatuses = []string{GitBackupComplete, GitBackupPending}

// GitUser is a member of the Git hosting side, keyed by employee id.
type GitUser struct {
	ID         int64  `json:"id"`
	EmployeeID string `json:"employeeId"`
	Username   string `json:"username"`
	GroupName  string `json:"groupName"`
	Role       string `json:"role"`
}

// GitRepository is a project hosted on the Git side.
// Members holds employee ids.
type GitRepository struct {
	ID                int64      `json:"id"`
	ProjectName       string     `json:"projectName"`
	Department        string     `json:"department"`
	GitURL            string     `json:"gitUrl"`
	SSHURL            string     `json:"sshUrl"`
	CreatedDate       *time.Time `json:"createdDate,omitempty"`
	CreatedByUsername string     `json:"createdByUsername,omitempty"`
	Members           []string   `json:"members"`
}

// GitBackup is the single backup record kept per Git repository.
type GitBackup struct {
	ID             int64      `json:"id"`
	RepositoryID   int64      `json:"repositoryId"`
	RepositoryName string     `json:"repositoryName"`
	Department     string     `json:"department"`
	BackupStatus   string     `json:"backupStatus"`
	LastBackupTime *time.Time `json:"lastBackupTime,omitempty"`
}

// GitDashboardSummary is the payload of GET /git/dashboard/summary.
type GitDashboardSummary struct {
	TotalUsers            int            `json:"totalUsers"`
	TotalRepositories     int            `json:"totalRepositories"`
	TotalBackupsCompleted int            `json:"totalBackupsCompleted"`
	BackupCompletionRate  float64        `json:"backupCompletionRate"`
	UsersByRole           map[string]int `json:"usersByRole"`
	ReposByDepartment     map[string]int `json:"reposByDepartment"`
	BackupsByStatus       map[string]int `json:"backupsByStatus"`
}

// GitUserPayload is the body of POST/PUT /git/users.
type GitUserPayload struct {
	EmployeeID string `json:"employeeId" validate:"required,max=32"`
	Username   string `json:"username" validate:"required,min=2,max=64"`
	GroupName  string `json:"groupName" validate:"max=64"`
	Role       string `json:"role" validate:"required,oneof=DEVELOPER REVIEWER TESTER ADMIN"`
}

// GitRepositoryPayload is the body of POST/PUT /git/repositories.
// An unknown CreatedByUsername leaves the creator empty.
type GitRepositoryPayload struct {
	ProjectName       string     `json:"projectName" validate:"required,max=100"`
	Department        string     `json:"department" validate:"max=64"`
	GitURL            string     `json:"gitUrl" validate:"max=255"`
	SSHURL            string     `json:"sshUrl" validate:"max=255"`
	CreatedDate       *time.Time `json:"createdDate,omitempty"`
	CreatedByUsername string     `json:"createdByUsername,omitempty"`
	Members           []string   `json:"members"`
}

// GitBackupPayload is the body of POST/PUT /git/backups.
type GitBackupPayload struct {
	RepositoryID   int64      `json:"repositoryId" validate:"required,min=1"`
	BackupStatus   string     `json:"backupStatus" validate:"required,oneof=COMPLETE PENDING"`
	LastBackupTime *time.Time `json:"lastBackupTime,omitempty"`
}

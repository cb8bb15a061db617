// Package models contains the core data structures shared by the console
// backend and the console client.
package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Info represents general information about the service.
type Info struct {
	ServiceName string    `json:"service_name"`
	Version     string    `json:"version"`
	UptimeSince time.Time `json:"uptime_since"`
}

// Account is a console operator allowed to log in to the API.
// It is unrelated to the SCM users managed through /api/svn/users.
type Account struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash,omitempty"`
	CanView      bool   `json:"canView"`
	CanEdit      bool   `json:"canEdit"`
	IsAdmin      bool   `json:"isAdmin"`
}

// User status and role values.
const (
	UserActive   = "Active"
	UserInactive = "Inactive"
	UserLocked   = "Locked"

	RoleAdmin     = "Admin"
	RoleDeveloper = "Developer"
	RoleReadOnly  = "ReadOnly"
)

// User is a source-control user managed by the console.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	FullName     string     `json:"fullName"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	Status       string     `json:"status"`
	Group        string     `json:"group"`
	Initials     string     `json:"initials,omitempty"`
	ColorCode    string     `json:"colorCode,omitempty"`
	LastActivity *time.Time `json:"lastActivity,omitempty"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
}

// Migration and repository status values. Archived only applies to repositories,
// Failed only to migration records.
const (
	StatusNotStarted = "Not Started"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
	StatusFailed     = "Failed"
	StatusArchived   = "Archived"
)

// Backup status and type values.
const (
	BackupComplete   = "Complete"
	BackupInProgress = "In Progress"
	BackupFailed     = "Failed"

	BackupFull  = "Full"
	BackupDelta = "Delta"
)

// Schedule frequency and status values.
const (
	FrequencyDaily   = "Daily"
	FrequencyWeekly  = "Weekly"
	FrequencyMonthly = "Monthly"

	ScheduleActive   = "Active"
	ScheduleInactive = "Inactive"
)

// Member is the normalized form of a repository member. The wire format may
// carry either a user object or a plain name; both decode into this shape.
type Member struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"displayName"`
	Username    string `json:"username,omitempty"`
	FullName    string `json:"fullName,omitempty"`
}

// UnmarshalJSON accepts `"name"` as well as `{"id":1,"username":...,"fullName":...}`.
func (m *Member) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err == nil {
		*m = Member{DisplayName: name}
		return nil
	}

	type plain Member
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	if p.DisplayName == "" {
		p.DisplayName = p.FullName
	}
	if p.DisplayName == "" {
		p.DisplayName = p.Username
	}
	*m = Member(p)
	return nil
}

// Matches reports whether the member is identified by value (username, full
// name or display name).
func (m Member) Matches(value string) bool {
	return value != "" && (m.DisplayName == value || m.Username == value || m.FullName == value)
}

// Repository is a source-control repository tracked by the console.
type Repository struct {
	ID                int64      `json:"id"`
	Name              string     `json:"name"`
	Description       string     `json:"description"`
	Size              string     `json:"size"`
	BackupStatus      string     `json:"backupStatus"`
	MigrationStatus   string     `json:"migrationStatus"`
	MigrationProgress int        `json:"migrationProgress"`
	Members           []Member   `json:"members"`
	MemberIDs         []int64    `json:"memberIds"`
	LastCommit        *time.Time `json:"lastCommit,omitempty"`
	LastCommitBy      string     `json:"lastCommitBy"`
	ColorCode         string     `json:"colorCode,omitempty"`
	CreatedDate       *time.Time `json:"createdDate,omitempty"`
}

// MemberNames returns the display names of all members.
func (r Repository) MemberNames() []string {
	names := make([]string, 0, len(r.Members))
	for _, m := range r.Members {
		names = append(names, m.DisplayName)
	}
	return names
}

// Migration tracks the SVN-to-Git migration of one repository.
type Migration struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Size          string     `json:"size"`
	Status        string     `json:"status"`
	Progress      int        `json:"progress"`
	StartedDate   *time.Time `json:"startedDate,omitempty"`
	CompletedDate *time.Time `json:"completedDate,omitempty"`
	EstimatedTime string     `json:"estimatedTime"`
	AssignedTo    string     `json:"assignedTo"`
	ColorCode     string     `json:"colorCode,omitempty"`
	RepositoryID  *int64     `json:"repositoryId,omitempty"`
}

// Repository scope modes.
const (
	ScopeAll      = "all"
	ScopeSelected = "selected"

	AllRepositoriesLabel = "All repositories"
)

// RepositoryScope selects the repositories a backup or schedule covers.
// Mode "all" is resolved against the repositories that exist when it runs.
type RepositoryScope struct {
	Mode string  `json:"mode"`
	IDs  []int64 `json:"ids"`
}

// AllRepositories is the scope covering every repository.
func AllRepositories() RepositoryScope {
	return RepositoryScope{Mode: ScopeAll, IDs: []int64{}}
}

// SelectedRepositories builds a scope from an id list. An empty list means all.
func SelectedRepositories(ids []int64) RepositoryScope {
	if len(ids) == 0 {
		return AllRepositories()
	}
	return RepositoryScope{Mode: ScopeSelected, IDs: ids}
}

// IsAll reports whether the scope covers every repository.
func (s RepositoryScope) IsAll() bool {
	return s.Mode != ScopeSelected
}

// ScopeLabel renders the repos display string for a scope.
func ScopeLabel(scope RepositoryScope, names []string) string {
	if scope.IsAll() || len(names) == 0 {
		return AllRepositoriesLabel
	}
	return strings.Join(names, ", ")
}

// Backup is one backup run.
type Backup struct {
	ID            int64           `json:"id"`
	BackupID      string          `json:"backupId"`
	Date          time.Time       `json:"date"`
	Type          string          `json:"type"`
	Status        string          `json:"status"`
	Size          string          `json:"size"`
	Duration      string          `json:"duration"`
	InitiatedBy   string          `json:"initiatedBy"`
	Notes         string          `json:"notes"`
	Logs          string          `json:"logs"`
	Scope         RepositoryScope `json:"scope"`
	RepositoryIDs []int64         `json:"repositoryIds"`
	Repos         string          `json:"repos"`
}

// BackupStatistics is the server-side aggregate over all backups.
type BackupStatistics struct {
	TotalBackups       int     `json:"totalBackups"`
	CompletedBackups   int     `json:"completedBackups"`
	InProgressBackups  int     `json:"inProgressBackups"`
	FailedBackups      int     `json:"failedBackups"`
	TotalStorageGB     float64 `json:"totalStorageGB"`
	LastFullBackupDate string  `json:"lastFullBackupDate"`
}

// BackupSchedule describes a recurring backup.
type BackupSchedule struct {
	ID            int64           `json:"id"`
	ScheduleID    string          `json:"scheduleId"`
	Name          string          `json:"name"`
	Type          string          `json:"type"`
	Frequency     string          `json:"frequency"`
	Time          string          `json:"time"`
	Retention     string          `json:"retention"`
	Status        string          `json:"status"`
	Scope         RepositoryScope `json:"scope"`
	RepositoryIDs []int64         `json:"repositoryIds"`
	Repos         string          `json:"repos"`
	LastRunAt     *time.Time      `json:"lastRunAt,omitempty"`
	NextRunAt     *time.Time      `json:"nextRunAt,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// Activity is one entry of the dashboard activity feed.
type Activity struct {
	ID       string    `json:"id"`
	User     string    `json:"user"`
	Action   string    `json:"action"`
	Resource string    `json:"resource"`
	Time     time.Time `json:"time"`
	Ago      string    `json:"ago"`
}

// DashboardMetrics is the payload of GET /dashboard/metrics.
type DashboardMetrics struct {
	TotalUsers           int        `json:"totalUsers"`
	ActiveUsers          int        `json:"activeUsers"`
	TotalRepositories    int        `json:"totalRepositories"`
	ActiveRepositories   int        `json:"activeRepositories"`
	BackupSuccessRate    float64    `json:"backupSuccessRate"`
	LastFullBackup       string     `json:"lastFullBackup"`
	GitMigrationProgress float64    `json:"gitMigrationProgress"`
	RecentActivity       []Activity `json:"recentActivity"`
}

// MigrationProgress is the payload of GET /dashboard/migration-progress.
type MigrationProgress struct {
	TotalRepositories      int `json:"totalRepositories"`
	CompletedRepositories  int `json:"completedRepositories"`
	InProgressRepositories int `json:"inProgressRepositories"`
	NotStartedRepositories int `json:"notStartedRepositories"`
	ArchivedRepositories   int `json:"archivedRepositories"`
	OverallProgress        int `json:"overallProgress"`
}

// BackupSummary is the payload of GET /dashboard/backup-summary.
type BackupSummary struct {
	TotalBackups        int     `json:"totalBackups"`
	CompletedBackups    int     `json:"completedBackups"`
	InProgressBackups   int     `json:"inProgressBackups"`
	FailedBackups       int     `json:"failedBackups"`
	TotalStorageGB      float64 `json:"totalStorageGB"`
	NextScheduledBackup string  `json:"nextScheduledBackup"`
}

// HousekeepingReport summarizes one housekeeping run.
type HousekeepingReport struct {
	SchedulesTriggered int    `json:"schedulesTriggered"`
	StaleBackupsFailed int    `json:"staleBackupsFailed"`
	TokensPurged       int    `json:"tokensPurged"`
	DryRun             bool   `json:"dryRun"`
	Message            string `json:"message"`
}

// RepositoryTrack maps a migration's status and progress onto the repository
// migration columns. Repositories have no Failed state; a failed migration puts
// the repository back on the Not Started track.
func RepositoryTrack(status string, progress int) (string, int) {
	if status == StatusFailed {
		return StatusNotStarted, 0
	}
	return status, progress
}

// filepath: internal/services/interfaces.go
package services

import (
	"context"
	"time"

	"scmdash/internal/config"
	"scmdash/internal/models"
	"scmdash/internal/repository"
)

// Auditor defines the interface for recording security-relevant events.
type Auditor interface {
	// Log records an event.
	// ctx: context to trace request IDs (if available)
	// action: what happened (e.g., "repository.create", "migration.start")
	// actor: who did it (account username)
	// resource: what was affected (e.g., "project-alpha", "BKP-2043")
	// details: structured metadata about the event
	Log(ctx context.Context, action string, actor string, resource string, details map[string]interface{})
}

// InfoService defines the interface for the info service.
type InfoService interface {
	GetInfo() models.Info
}

// AccountService manages the operators that can log in to the console.
type AccountService interface {
	GetAccountByUsername(ctx context.Context, username string) (*models.Account, error)
	GetAccountByID(ctx context.Context, id int64) (*models.Account, error)
	GetAccounts(ctx context.Context) ([]models.Account, error)
	UpdateAccountPassword(ctx context.Context, username, password string) error
	CreateAccount(ctx context.Context, args repository.AccountCreateArgs) (*models.Account, error)
	UpdateAccount(ctx context.Context, id int64, req models.Account, newPassword *string) (*models.Account, error)
	DeleteAccount(ctx context.Context, id int64) error
	InitializeAdminAccount(ctx context.Context, cfg *config.Config) error
}

// UserService manages SCM users.
type UserService interface {
	List(ctx context.Context, f models.UserFilter) ([]models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	Create(ctx context.Context, p models.UserPayload) (*models.User, error)
	Update(ctx context.Context, id int64, p models.UserPayload) (*models.User, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}

// RepositoryService manages SCM repositories.
type RepositoryService interface {
	List(ctx context.Context, f models.RepositoryFilter) ([]models.Repository, error)
	Get(ctx context.Context, id int64) (*models.Repository, error)
	Create(ctx context.Context, p models.RepositoryPayload, memberIDs []int64) (*models.Repository, error)
	Update(ctx context.Context, id int64, p models.RepositoryPayload, memberIDs []int64) (*models.Repository, error)
	Delete(ctx context.Context, id int64) error
	UpdateMembers(ctx context.Context, id int64, memberIDs []int64) (*models.Repository, error)
	UpdateMigrationStatus(ctx context.Context, id int64, status string, progress *int) (*models.Repository, error)
}

// MigrationService manages SVN-to-Git migration records and their transitions.
type MigrationService interface {
	List(ctx context.Context, f models.MigrationFilter) ([]models.Migration, error)
	Get(ctx context.Context, id int64) (*models.Migration, error)
	Create(ctx context.Context, p models.MigrationPayload) (*models.Migration, error)
	Update(ctx context.Context, id int64, p models.MigrationPayload) (*models.Migration, error)
	Delete(ctx context.Context, id int64) error
	Start(ctx context.Context, id int64) (*models.Migration, error)
	Pause(ctx context.Context, id int64) (*models.Migration, error)
	Complete(ctx context.Context, id int64) (*models.Migration, error)
	Retry(ctx context.Context, id int64) (*models.Migration, error)
}

// BackupService manages backup runs.
type BackupService interface {
	List(ctx context.Context, f models.BackupFilter) ([]models.Backup, error)
	Get(ctx context.Context, id int64) (*models.Backup, error)
	GetByCode(ctx context.Context, code string) (*models.Backup, error)
	LastFull(ctx context.Context) (*models.Backup, error)
	Create(ctx context.Context, p models.BackupPayload, repositoryIDs []int64) (*models.Backup, error)
	Delete(ctx context.Context, id int64) error
	Retry(ctx context.Context, id int64) (*models.Backup, error)
	Statistics(ctx context.Context) (*models.BackupStatistics, error)
}

// ScheduleService manages recurring backup schedules.
type ScheduleService interface {
	List(ctx context.Context, f models.ScheduleFilter) ([]models.BackupSchedule, error)
	Get(ctx context.Context, id int64) (*models.BackupSchedule, error)
	GetByCode(ctx context.Context, code string) (*models.BackupSchedule, error)
	Next(ctx context.Context) (*models.BackupSchedule, error)
	Create(ctx context.Context, p models.SchedulePayload, repositoryIDs []int64) (*models.BackupSchedule, error)
	Update(ctx context.Context, id int64, p models.SchedulePayload, repositoryIDs []int64) (*models.BackupSchedule, error)
	Delete(ctx context.Context, id int64) error
	ToggleStatus(ctx context.Context, id int64) (*models.BackupSchedule, error)
	DueSchedules(ctx context.Context, now time.Time) ([]models.BackupSchedule, error)
	RunSchedule(ctx context.Context, sc models.BackupSchedule, now time.Time) (*models.Backup, error)
}

// DashboardService computes the dashboard aggregates.
type DashboardService interface {
	Metrics(ctx context.Context) (*models.DashboardMetrics, error)
	RecentActivity(ctx context.Context) ([]models.Activity, error)
	MigrationProgress(ctx context.Context) (*models.MigrationProgress, error)
	BackupSummary(ctx context.Context) (*models.BackupSummary, error)
}

// GitService manages the Git hosting inventory: users, repositories and
// their one-per-repository backup records.
type GitService interface {
	ListUsers(ctx context.Context) ([]models.GitUser, error)
	GetUser(ctx context.Context, id int64) (*models.GitUser, error)
	CreateUser(ctx context.Context, p models.GitUserPayload) (*models.GitUser, error)
	UpdateUser(ctx context.Context, id int64, p models.GitUserPayload) (*models.GitUser, error)
	DeleteUser(ctx context.Context, id int64) error
	UserCountsByRole(ctx context.Context) (map[string]int, error)

	ListRepositories(ctx context.Context, search string) ([]models.GitRepository, error)
	GetRepository(ctx context.Context, id int64) (*models.GitRepository, error)
	CreateRepository(ctx context.Context, p models.GitRepositoryPayload) (*models.GitRepository, error)
	UpdateRepository(ctx context.Context, id int64, p models.GitRepositoryPayload) (*models.GitRepository, error)
	DeleteRepository(ctx context.Context, id int64) error
	RepositoryCountsByDepartment(ctx context.Context) (map[string]int, error)

	ListBackups(ctx context.Context, status string) ([]models.GitBackup, error)
	GetBackup(ctx context.Context, id int64) (*models.GitBackup, error)
	GetBackupByRepository(ctx context.Context, repoID int64) (*models.GitBackup, error)
	BackupCountsByStatus(ctx context.Context) (map[string]int, error)
	CreateBackup(ctx context.Context, p models.GitBackupPayload) (*models.GitBackup, error)
	UpdateBackup(ctx context.Context, id int64, p models.GitBackupPayload) (*models.GitBackup, error)
	RunBackup(ctx context.Context, repoID int64) (*models.GitBackup, error)

	Summary(ctx context.Context) (*models.GitDashboardSummary, error)
}

// SupersetService obtains embedded-dashboard guest tokens from Superset.
type SupersetService interface {
	GuestToken(ctx context.Context, dashboardID string) (string, error)
}

// HousekeepingService defines the interface for the housekeeping service.
type HousekeepingService interface {
	Start()
	Stop()
	TriggerHousekeeping(ctx context.Context, dryRun bool) (*models.HousekeepingReport, error)
}

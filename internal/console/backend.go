// filepath: internal/console/backend.go
// Package console wires one list controller per console page.
package console

import (
	"context"

	"scmdash/internal/client"
	"scmdash/internal/listview"
	"scmdash/internal/models"
)

// Backend is the part of the REST client the pages use. *client.Client
// satisfies it.
type Backend interface {
	ListUsers(ctx context.Context, f models.UserFilter) ([]models.User, error)
	CreateUser(ctx context.Context, p models.UserPayload) (*models.User, error)
	UpdateUser(ctx context.Context, id int64, p models.UserPayload) (*models.User, error)
	UpdateUserStatus(ctx context.Context, id int64, status string) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) error

	ListRepositories(ctx context.Context, f models.RepositoryFilter) ([]models.Repository, error)
	CreateRepository(ctx context.Context, p models.RepositoryPayload, memberIDs []int64) (*models.Repository, error)
	UpdateRepository(ctx context.Context, id int64, p models.RepositoryPayload, memberIDs []int64) (*models.Repository, error)
	DeleteRepository(ctx context.Context, id int64) error
	UpdateRepositoryMembers(ctx context.Context, id int64, memberIDs []int64) (*models.Repository, error)
	UpdateRepositoryMigrationStatus(ctx context.Context, id int64, status string, progress *int) (*models.Repository, error)

	ListMigrations(ctx context.Context, f models.MigrationFilter) ([]models.Migration, error)
	CreateMigration(ctx context.Context, p models.MigrationPayload) (*models.Migration, error)
	UpdateMigration(ctx context.Context, id int64, p models.MigrationPayload) (*models.Migration, error)
	DeleteMigration(ctx context.Context, id int64) error
	TransitionMigration(ctx context.Context, id int64, action string) (*models.Migration, error)

	ListBackups(ctx context.Context, f models.BackupFilter) ([]models.Backup, error)
	CreateBackup(ctx context.Context, p models.BackupPayload, repositoryIDs []int64) (*models.Backup, error)
	DeleteBackup(ctx context.Context, id int64) error
	RetryBackup(ctx context.Context, id int64) (*models.Backup, error)
	BackupStatistics(ctx context.Context) (*models.BackupStatistics, error)

	ListSchedules(ctx context.Context, f models.ScheduleFilter) ([]models.BackupSchedule, error)
	CreateSchedule(ctx context.Context, p models.SchedulePayload, repositoryIDs []int64) (*models.BackupSchedule, error)
	UpdateSchedule(ctx context.Context, id int64, p models.SchedulePayload, repositoryIDs []int64) (*models.BackupSchedule, error)
	DeleteSchedule(ctx context.Context, id int64) error
	ToggleScheduleStatus(ctx context.Context, id int64) (*models.BackupSchedule, error)

	DashboardMetrics(ctx context.Context) (*models.DashboardMetrics, error)
	RecentActivity(ctx context.Context) ([]models.Activity, error)
	MigrationProgress(ctx context.Context) (*models.MigrationProgress, error)
	BackupSummary(ctx context.Context) (*models.BackupSummary, error)
}

var _ Backend = (*client.Client)(nil)

// Side-collection names.
const (
	SideUsers        = "users"
	SideRepositories = "repositories"
	SideStatistics   = "statistics"
)

// describe renders a failed call for the operator.
func describe(err error, fallback string) string {
	return client.Message(err, fallback)
}

// echo turns a (*T, error) call into the (T, error) shape mutations expect.
func echo[T any](rec *T, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	if rec == nil {
		return zero, nil
	}
	return *rec, nil
}

func userID(u models.User) int64             { return u.ID }
func repositoryID(r models.Repository) int64 { return r.ID }
func migrationID(m models.Migration) int64   { return m.ID }
func backupID(b models.Backup) int64         { return b.ID }
func scheduleID(s models.BackupSchedule) int64 {
	return s.ID
}

func fetchRepositories(b Backend) listview.SideFetch {
	return listview.SideFetch{Name: SideRepositories, Fetch: func(ctx context.Context) (any, error) {
		return b.ListRepositories(ctx, models.RepositoryFilter{})
	}}
}

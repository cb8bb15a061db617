// filepath: internal/housekeeping/interfaces.go
package housekeeping

import (
	"context"
	"time"

	"scmdash/internal/models"
)

// Scheduler finds and runs backup schedules that are due.
type Scheduler interface {
	DueSchedules(ctx context.Context, now time.Time) ([]models.BackupSchedule, error)
	RunSchedule(ctx context.Context, sc models.BackupSchedule, now time.Time) (*models.Backup, error)
}

// Store defines the database methods required by the housekeeping tasks.
type Store interface {
	ListStaleBackups(ctx context.Context, cutoff time.Time) ([]models.Backup, error)
	FailStaleBackups(ctx context.Context, cutoff time.Time) (int, error)
	CountExpiredRefreshTokens(ctx context.Context) (int, error)
	PurgeExpiredRefreshTokens(ctx context.Context) (int, error)
}

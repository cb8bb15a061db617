// filepath: internal/repository/recovery_repo.go
package repository

import (
	"context"
	"fmt"
	"time"

	"scmdash/internal/logging"
	"scmdash/internal/models"
)

// StaleBackupLog is written into the logs of a backup failed by recovery.
const StaleBackupLog = "Backup failed: no completion reported before the stale timeout."

// FailStaleBackups marks In Progress backups older than cutoff as Failed, and
// their repositories with them. It returns the number of backups fixed.
func (s *Repository) FailStaleBackups(ctx context.Context, cutoff time.Time) (int, error) {
	stale, err := s.ListStaleBackups(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list stale backups: %w", err)
	}

	totalFixed := 0
	for i := range stale {
		b := stale[i]
		b.Status = models.BackupFailed
		b.Logs = StaleBackupLog
		if _, err := s.SaveBackup(ctx, &b); err != nil {
			logging.Log.Errorf("Failed to fail stale backup %s: %v", b.BackupID, err)
			continue
		}
		logging.Log.Infof("Marked stale backup '%s' as Failed", b.BackupID)
		totalFixed++
	}

	return totalFixed, nil
}

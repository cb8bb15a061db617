// filepath: internal/housekeeping/tasks.go
package housekeeping

import (
	"context"
	"fmt"
	"time"

	"scmdash/internal/logging"
	"scmdash/internal/models"
)

// Dependencies defines the required services for the housekeeping tasks.
type Dependencies struct {
	Schedules  Scheduler
	Store      Store
	Interval   time.Duration
	StaleAfter time.Duration
	Now        func() time.Time
}

func (d Dependencies) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// RunOnce executes every housekeeping task. With dryRun set nothing is
// changed and the report counts what would have been done.
func RunOnce(ctx context.Context, deps Dependencies, dryRun bool) (*models.HousekeepingReport, error) {
	now := deps.now()
	report := &models.HousekeepingReport{DryRun: dryRun}
	var firstErr error
	keep := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}

	// 1. Due schedules
	n, err := runDueSchedules(ctx, deps, now, dryRun)
	if err != nil {
		logging.Log.Errorf("Housekeeping schedule run failed: %v", err)
		keep(err)
	}
	report.SchedulesTriggered = n

	// 2. Stale backups
	if n, err = failStaleBackups(ctx, deps, now, dryRun); err != nil {
		logging.Log.Errorf("Housekeeping stale backup recovery failed: %v", err)
		keep(err)
	}
	report.StaleBackupsFailed = n

	// 3. Expired refresh tokens
	if dryRun {
		n, err = deps.Store.CountExpiredRefreshTokens(ctx)
	} else {
		n, err = deps.Store.PurgeExpiredRefreshTokens(ctx)
	}
	if err != nil {
		logging.Log.Errorf("Housekeeping token purge failed: %v", err)
		keep(err)
	}
	report.TokensPurged = n

	prefix := "Housekeeping complete."
	if dryRun {
		prefix = "Housekeeping dry run complete."
	}
	report.Message = fmt.Sprintf("%s %d schedules triggered, %d stale backups failed, %d expired tokens purged.",
		prefix, report.SchedulesTriggered, report.StaleBackupsFailed, report.TokensPurged)

	if firstErr != nil {
		return report, firstErr
	}
	return report, nil
}

func runDueSchedules(ctx context.Context, deps Dependencies, now time.Time, dryRun bool) (int, error) {
	if deps.Schedules == nil {
		return 0, nil
	}
	due, err := deps.Schedules.DueSchedules(ctx, now)
	if err != nil {
		return 0, err
	}
	if dryRun {
		return len(due), nil
	}

	started := 0
	for _, sc := range due {
		b, err := deps.Schedules.RunSchedule(ctx, sc, now)
		if err != nil {
			logging.Log.Errorf("Housekeeping could not run schedule %s: %v", sc.ScheduleID, err)
			continue
		}
		logging.Log.Infof("Schedule %s started backup %s", sc.ScheduleID, b.BackupID)
		started++
	}
	return started, nil
}

func failStaleBackups(ctx context.Context, deps Dependencies, now time.Time, dryRun bool) (int, error) {
	if deps.StaleAfter <= 0 {
		return 0, nil
	}
	cutoff := now.Add(-deps.StaleAfter)
	if dryRun {
		stale, err := deps.Store.ListStaleBackups(ctx, cutoff)
		return len(stale), err
	}
	return deps.Store.FailStaleBackups(ctx, cutoff)
}

// filepath: internal/services/housekeeping_service.go
package services

import (
	"context"

	"scmdash/internal/config"
	"scmdash/internal/housekeeping"
	"scmdash/internal/logging"
	"scmdash/internal/models"
	"scmdash/internal/repository"
)

var _ HousekeepingService = (*housekeepingService)(nil)

// housekeepingService manages the lifecycle of the background housekeeping worker
// and provides a method for manual triggering.
type housekeepingService struct {
	Repo       *repository.Repository
	Auditor    Auditor
	worker     *housekeeping.Service
	workerDeps housekeeping.Dependencies
}

// NewHousekeepingService creates a new HousekeepingService.
func NewHousekeepingService(repo *repository.Repository, schedules ScheduleService, auditor Auditor, cfg *config.Config) *housekeepingService {
	deps := housekeeping.Dependencies{
		Schedules:  schedules,
		Store:      repo,
		Interval:   cfg.HousekeepingInterval,
		StaleAfter: cfg.HousekeepingStaleAfter,
	}
	return &housekeepingService{
		Repo:       repo,
		Auditor:    auditor,
		workerDeps: deps,
	}
}

// Start begins the background housekeeping worker. A zero interval disables it.
func (s *housekeepingService) Start() {
	if s.workerDeps.Interval <= 0 {
		logging.Log.Info("Housekeeping worker disabled (interval is 0).")
		return
	}
	s.worker = housekeeping.NewService(s.workerDeps)
	s.worker.Start()
}

// Stop terminates the background housekeeping worker.
func (s *housekeepingService) Stop() {
	if s.worker != nil {
		s.worker.Stop()
	}
}

// TriggerHousekeeping runs every housekeeping task once.
func (s *housekeepingService) TriggerHousekeeping(ctx context.Context, dryRun bool) (*models.HousekeepingReport, error) {
	report, err := housekeeping.RunOnce(ctx, s.workerDeps, dryRun)
	if err != nil {
		return report, err
	}
	if !dryRun {
		s.Auditor.Log(ctx, "housekeeping.run", ActorFrom(ctx), "housekeeping", map[string]interface{}{
			"schedules_triggered":  report.SchedulesTriggered,
			"stale_backups_failed": report.StaleBackupsFailed,
			"tokens_purged":        report.TokensPurged,
		})
	}
	return report, nil
}

// filepath: internal/housekeeping/service.go
package housekeeping

import (
	"context"
	"time"

	"scmdash/internal/logging"
)

const (
	// DefaultCheckInterval is used when no interval is configured.
	DefaultCheckInterval = 1 * time.Minute
	// MinCheckInterval is the minimum time between checks to prevent busy-looping.
	MinCheckInterval = 10 * time.Second
)

// Service provides the background worker for automated housekeeping.
type Service struct {
	Deps   Dependencies
	timer  *time.Timer
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewService creates a new housekeeping service instance.
func NewService(deps Dependencies) *Service {
	return &Service{
		Deps:   deps,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start kicks off the background housekeeping service.
func (s *Service) Start() {
	logging.Log.Info("Starting background housekeeping service.")
	s.timer = time.NewTimer(0) // Fire immediately on start

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		defer close(s.doneCh)
		defer cancel()
		for {
			select {
			case <-s.timer.C:
				s.runChecks(ctx)
				nextRun := s.scheduleNextRun()
				s.timer.Reset(nextRun)
				logging.Log.Debugf("Next housekeeping check scheduled in %v.", nextRun)
			case <-s.stopCh:
				s.timer.Stop()
				return
			}
		}
	}()
}

// Stop terminates the background housekeeping service and waits for a running check.
func (s *Service) Stop() {
	logging.Log.Info("Stopping background housekeeping service.")
	close(s.stopCh)
	<-s.doneCh
}

// scheduleNextRun calculates the duration until the next housekeeping check.
func (s *Service) scheduleNextRun() time.Duration {
	interval := s.Deps.Interval
	if interval <= 0 {
		return DefaultCheckInterval
	}
	if interval < MinCheckInterval {
		return MinCheckInterval
	}
	return interval
}

func (s *Service) runChecks(ctx context.Context) {
	logging.Log.Debug("Housekeeping service: running checks...")
	report, err := RunOnce(ctx, s.Deps, false)
	if err != nil {
		logging.Log.Errorf("Housekeeping run failed: %v", err)
	}
	if report != nil && (report.SchedulesTriggered > 0 || report.StaleBackupsFailed > 0 || report.TokensPurged > 0) {
		logging.Log.Info(report.Message)
	}
}

// filepath: internal/services/backup_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"scmdash/internal/logging"
	"scmdash/internal/models"
	"scmdash/internal/repository"
	"scmdash/internal/shared"
)

var _ BackupService = (*backupService)(nil)

// Simulated results of a finished backup run.
const (
	fullBackupDuration  = "1h 05m"
	fullBackupSize      = "15.8 GB"
	deltaBackupDuration = "15m"
	deltaBackupSize     = "1.2 GB"

	backupStartedLog   = "Backup initiated..."
	backupRetryLog     = "Retry initiated..."
	backupCompletedLog = "Backup completed successfully with no errors."
)

// backupService records backup runs and simulates their completion in the
// background after a fixed delay.
type backupService struct {
	Repo    *repository.Repository
	Auditor Auditor

	delay  time.Duration
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewBackupService creates a new BackupService. Completion runs fire after delay.
func NewBackupService(repo *repository.Repository, auditor Auditor, delay time.Duration) *backupService {
	ctx, cancel := context.WithCancel(context.Background())
	return &backupService{
		Repo:    repo,
		Auditor: auditor,
		delay:   delay,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Shutdown cancels pending completion runs and waits for them to return.
// Backups they would have finished stay In Progress until housekeeping fails them.
func (s *backupService) Shutdown() {
	s.cancel()
	s.wg.Wait()
}

func (s *backupService) List(ctx context.Context, f models.BackupFilter) ([]models.Backup, error) {
	return s.Repo.ListBackups(ctx, f)
}

func (s *backupService) Get(ctx context.Context, id int64) (*models.Backup, error) {
	b, err := s.Repo.GetBackup(ctx, id)
	if err != nil {
		return nil, notFound(err, "Backup", id)
	}
	return b, nil
}

func (s *backupService) GetByCode(ctx context.Context, code string) (*models.Backup, error) {
	b, err := s.Repo.GetBackupByCode(ctx, code)
	if err != nil {
		return nil, notFound(err, "Backup", code)
	}
	return b, nil
}

func (s *backupService) LastFull(ctx context.Context) (*models.Backup, error) {
	b, err := s.Repo.GetLastFullBackup(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: no completed full backup", ErrNotFound)
		}
		return nil, err
	}
	return b, nil
}

// resolveScope turns the requested ids into a scope and the concrete ids it covers now.
func (s *backupService) resolveScope(ctx context.Context, ids []int64) (models.RepositoryScope, []int64, error) {
	scope := models.SelectedRepositories(ids)
	if scope.IsAll() {
		all, err := s.Repo.AllRepositoryIDs(ctx)
		return scope, all, err
	}
	_, missing, err := s.Repo.ListRepositoryNames(ctx, ids)
	if err != nil {
		return scope, nil, err
	}
	if len(missing) > 0 {
		return scope, nil, invalid(fmt.Sprintf("Repository not found with id: %d", missing[0]))
	}
	return scope, ids, nil
}

// Create starts a backup over repositoryIDs, or over every repository when the list is empty.
func (s *backupService) Create(ctx context.Context, p models.BackupPayload, repositoryIDs []int64) (*models.Backup, error) {
	scope, ids, err := s.resolveScope(ctx, repositoryIDs)
	if err != nil {
		return nil, err
	}
	initiatedBy := p.InitiatedBy
	if initiatedBy == "" {
		initiatedBy = ActorFrom(ctx)
	}

	b := &models.Backup{
		Date:        time.Now().UTC(),
		Type:        p.Type,
		Status:      models.BackupInProgress,
		Duration:    "0m",
		InitiatedBy: initiatedBy,
		Notes:       p.Notes,
		Logs:        backupStartedLog,
		Scope:       scope,
	}
	created, err := s.Repo.CreateBackup(ctx, b, ids)
	if err != nil {
		logging.Log.Errorf("BackupService: Failed to create %s backup: %v", p.Type, err)
		return nil, fmt.Errorf("failed to create backup: %w", err)
	}
	s.Auditor.Log(ctx, "backup.create", ActorFrom(ctx), created.BackupID, map[string]interface{}{
		"type":  created.Type,
		"repos": created.Repos,
	})
	s.scheduleCompletion(created.ID)
	return created, nil
}

func (s *backupService) Delete(ctx context.Context, id int64) error {
	b, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteBackup(ctx, id); err != nil {
		return notFound(err, "Backup", id)
	}
	s.Auditor.Log(ctx, "backup.delete", ActorFrom(ctx), b.BackupID, nil)
	return nil
}

// Retry restarts a failed backup.
func (s *backupService) Retry(ctx context.Context, id int64) (*models.Backup, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BackupFailed {
		return nil, fmt.Errorf("%w: Only failed backups can be retried", ErrInvalidTransition)
	}
	b.Status = models.BackupInProgress
	b.Date = time.Now().UTC()
	b.Duration = "0m"
	b.Logs = backupRetryLog

	saved, err := s.Repo.SaveBackup(ctx, b)
	if err != nil {
		return nil, notFound(err, "Backup", id)
	}
	s.Auditor.Log(ctx, "backup.retry", ActorFrom(ctx), saved.BackupID, nil)
	s.scheduleCompletion(saved.ID)
	return saved, nil
}

func (s *backupService) Statistics(ctx context.Context) (*models.BackupStatistics, error) {
	backups, err := s.Repo.ListBackups(ctx, models.BackupFilter{})
	if err != nil {
		return nil, err
	}
	stats := backupStatistics(backups)

	stats.LastFullBackupDate = "None"
	last, err := s.Repo.GetLastFullBackup(ctx)
	switch {
	case err == nil:
		stats.LastFullBackupDate = last.Date.Format(time.RFC3339)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}
	return &stats, nil
}

// backupStatistics counts backups by status and sums the storage of completed ones.
func backupStatistics(backups []models.Backup) models.BackupStatistics {
	var (
		stats models.BackupStatistics
		gb    float64
	)
	stats.TotalBackups = len(backups)
	for _, b := range backups {
		switch b.Status {
		case models.BackupComplete:
			stats.CompletedBackups++
			gb += shared.SizeNumber(b.Size)
		case models.BackupInProgress:
			stats.InProgressBackups++
		case models.BackupFailed:
			stats.FailedBackups++
		}
	}
	stats.TotalStorageGB = math.Round(gb*10) / 10
	return stats
}

func (s *backupService) scheduleCompletion(id int64) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-s.ctx.Done():
			return
		case <-timer.C:
		}
		s.complete(id)
	}()
}

func (s *backupService) complete(id int64) {
	b, err := s.Repo.GetBackup(s.ctx, id)
	if err != nil {
		// Deleted while running.
		logging.Log.Debugf("BackupService: completion skipped for backup %d: %v", id, err)
		return
	}
	if b.Status != models.BackupInProgress {
		return
	}

	b.Status = models.BackupComplete
	b.Logs = backupCompletedLog
	if b.Type == models.BackupFull {
		b.Duration, b.Size = fullBackupDuration, fullBackupSize
	} else {
		b.Duration, b.Size = deltaBackupDuration, deltaBackupSize
	}

	if _, err := s.Repo.SaveBackup(s.ctx, b); err != nil {
		if s.ctx.Err() != nil {
			return
		}
		logging.Log.Errorf("BackupService: failed to complete backup %s: %v", b.BackupID, err)
		b.Status = models.BackupFailed
		b.Logs = "Backup failed: " + err.Error()
		if _, err := s.Repo.SaveBackup(s.ctx, b); err != nil {
			logging.Log.Errorf("BackupService: failed to mark backup %s as failed: %v", b.BackupID, err)
		}
		return
	}
	logging.Log.Infof("BackupService: backup %s completed", b.BackupID)
	s.Auditor.Log(s.ctx, "backup.complete", SystemActor, b.BackupID, map[string]interface{}{"size": b.Size})
}

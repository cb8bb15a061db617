// filepath: internal/services/dashboard_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"scmdash/internal/models"
	"scmdash/internal/repository"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
)

var _ DashboardService = (*dashboardService)(nil)

const (
	metricsCacheKey     = "dashboard_metrics"
	metricsCacheTTL     = 10 * time.Second
	recentActivityLimit = 10
)

// dashboardService computes the dashboard aggregates from the stored records.
type dashboardService struct {
	Repo      *repository.Repository
	Schedules ScheduleService
	cache     *cache.Cache
	now       func() time.Time
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(repo *repository.Repository, schedules ScheduleService) *dashboardService {
	return &dashboardService{
		Repo:      repo,
		Schedules: schedules,
		cache:     cache.New(metricsCacheTTL, time.Minute),
		now:       time.Now,
	}
}

// Metrics returns the headline numbers. The snapshot is cached briefly.
func (s *dashboardService) Metrics(ctx context.Context) (*models.DashboardMetrics, error) {
	if m, found := s.cache.Get(metricsCacheKey); found {
		return m.(*models.DashboardMetrics), nil
	}

	var (
		m          models.DashboardMetrics
		repos      []models.Repository
		backups    []models.Backup
		migrations []models.Migration
		activity   []models.Activity
		lastFull   *models.Backup
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		m.TotalUsers, m.ActiveUsers, err = s.Repo.CountUsers(gctx)
		return err
	})
	g.Go(func() (err error) {
		repos, err = s.Repo.ListRepositories(gctx, models.RepositoryFilter{})
		return err
	})
	g.Go(func() (err error) {
		backups, err = s.Repo.ListBackups(gctx, models.BackupFilter{})
		return err
	})
	g.Go(func() (err error) {
		migrations, err = s.Repo.ListMigrations(gctx, models.MigrationFilter{})
		return err
	})
	g.Go(func() (err error) {
		activity, err = s.RecentActivity(gctx)
		return err
	})
	g.Go(func() error {
		b, err := s.Repo.GetLastFullBackup(gctx)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		lastFull = b
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load dashboard metrics: %w", err)
	}

	m.TotalRepositories = len(repos)
	for _, r := range repos {
		if r.MigrationStatus != models.StatusArchived {
			m.ActiveRepositories++
		}
	}

	stats := backupStatistics(backups)
	m.BackupSuccessRate = percent(stats.CompletedBackups, stats.TotalBackups)

	completed := 0
	for _, mig := range migrations {
		if mig.Status == models.StatusCompleted {
			completed++
		}
	}
	m.GitMigrationProgress = percent(completed, len(migrations))

	m.LastFullBackup = "None"
	if lastFull != nil {
		m.LastFullBackup = lastFull.Date.Format(time.RFC3339)
	}
	m.RecentActivity = activity

	s.cache.SetDefault(metricsCacheKey, &m)
	return &m, nil
}

// RecentActivity returns the newest feed entries with a relative time label.
func (s *dashboardService) RecentActivity(ctx context.Context) ([]models.Activity, error) {
	list, err := s.Repo.RecentActivity(ctx, recentActivityLimit)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range list {
		list[i].Ago = ago(now.Sub(list[i].Time))
	}
	return list, nil
}

// MigrationProgress counts repositories per migration track.
func (s *dashboardService) MigrationProgress(ctx context.Context) (*models.MigrationProgress, error) {
	repos, err := s.Repo.ListRepositories(ctx, models.RepositoryFilter{})
	if err != nil {
		return nil, err
	}
	p := &models.MigrationProgress{TotalRepositories: len(repos)}
	for _, r := range repos {
		switch r.MigrationStatus {
		case models.StatusCompleted:
			p.CompletedRepositories++
		case models.StatusInProgress:
			p.InProgressRepositories++
		case models.StatusArchived:
			p.ArchivedRepositories++
		default:
			p.NotStartedRepositories++
		}
	}
	if p.TotalRepositories > 0 {
		done := float64(p.CompletedRepositories) + float64(p.InProgressRepositories)*0.5
		p.OverallProgress = int(math.Round(done / float64(p.TotalRepositories) * 100))
	}
	return p, nil
}

// BackupSummary combines the backup statistics with the next scheduled run.
func (s *dashboardService) BackupSummary(ctx context.Context) (*models.BackupSummary, error) {
	backups, err := s.Repo.ListBackups(ctx, models.BackupFilter{})
	if err != nil {
		return nil, err
	}
	stats := backupStatistics(backups)
	summary := &models.BackupSummary{
		TotalBackups:        stats.TotalBackups,
		CompletedBackups:    stats.CompletedBackups,
		InProgressBackups:   stats.InProgressBackups,
		FailedBackups:       stats.FailedBackups,
		TotalStorageGB:      stats.TotalStorageGB,
		NextScheduledBackup: "None",
	}

	next, err := s.Schedules.Next(ctx)
	switch {
	case err == nil:
		summary.NextScheduledBackup = next.Time
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}
	return summary, nil
}

// percent is part/total*100 rounded to one decimal; 0 when total is 0.
func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*1000) / 10
}

func ago(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute")
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour")
	default:
		return plural(int(d/(24*time.Hour)), "day")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

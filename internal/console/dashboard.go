// filepath: internal/console/dashboard.go
package console

import (
	"context"

	"scmdash/internal/models"

	"golang.org/x/sync/errgroup"
)

// Dashboard is everything the dashboard view shows.
type Dashboard struct {
	Metrics           models.DashboardMetrics
	Activity          []models.Activity
	MigrationProgress models.MigrationProgress
	BackupSummary     models.BackupSummary
}

// LoadDashboard fetches the four dashboard aggregates concurrently.
func LoadDashboard(ctx context.Context, b Backend) (*Dashboard, error) {
	var d Dashboard
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := b.DashboardMetrics(ctx)
		if err == nil {
			d.Metrics = *m
		}
		return err
	})
	g.Go(func() error {
		a, err := b.RecentActivity(ctx)
		if err == nil {
			d.Activity = a
		}
		return err
	})
	g.Go(func() error {
		p, err := b.MigrationProgress(ctx)
		if err == nil {
			d.MigrationProgress = *p
		}
		return err
	})
	g.Go(func() error {
		s, err := b.BackupSummary(ctx)
		if err == nil {
			d.BackupSummary = *s
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}

package services

import (
	"testing"
	"time"

	"scmdash/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardService(t *testing.T) {
	repo := setupTestRepo(t)
	audit := &recordingAuditor{}
	users := NewUserService(repo, audit)
	repos := NewRepositoryService(repo, audit)
	migrations := NewMigrationService(repo, audit)
	backups := NewBackupService(repo, audit, time.Hour)
	t.Cleanup(backups.Shutdown)
	schedules := NewScheduleService(repo, backups, audit)
	svc := NewDashboardService(repo, schedules)
	ctx := actorCtx()

	t.Run("empty", func(t *testing.T) {
		m, err := svc.Metrics(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, m.TotalRepositories)
		assert.Equal(t, 0.0, m.BackupSuccessRate)
		assert.Equal(t, "None", m.LastFullBackup)

		p, err := svc.MigrationProgress(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, p.OverallProgress)

		s, err := svc.BackupSummary(ctx)
		require.NoError(t, err)
		assert.Equal(t, "None", s.NextScheduledBackup)
	})

	mustUser(t, users, "jdoe", "John Doe")
	inactive := mustUser(t, users, "mlee", "Morgan Lee")
	_, err := users.UpdateStatus(ctx, inactive.ID, models.UserInactive)
	require.NoError(t, err)

	alpha := mustRepository(t, repos, "project-alpha")
	beta := mustRepository(t, repos, "project-beta")
	mustRepository(t, repos, "project-gamma")
	legacy := mustRepository(t, repos, "legacy-project")
	_, err = repos.UpdateMigrationStatus(ctx, legacy.ID, models.StatusArchived, nil)
	require.NoError(t, err)
	_, err = repos.UpdateMigrationStatus(ctx, beta.ID, models.StatusCompleted, nil)
	require.NoError(t, err)
	_, err = repos.UpdateMigrationStatus(ctx, alpha.ID, models.StatusInProgress, intPtr(40))
	require.NoError(t, err)
	_, err = migrations.Create(ctx, models.MigrationPayload{
		Name: "project-alpha", Status: models.StatusInProgress, Progress: intPtr(65), RepositoryID: idPtr(alpha.ID),
	})
	require.NoError(t, err)
	_, err = migrations.Create(ctx, models.MigrationPayload{Name: "done", Status: models.StatusCompleted})
	require.NoError(t, err)

	b, err := backups.Create(ctx, models.BackupPayload{Type: models.BackupFull}, nil)
	require.NoError(t, err)
	b.Status, b.Size = models.BackupComplete, "15.8 GB"
	_, err = repo.SaveBackup(ctx, b)
	require.NoError(t, err)
	_, err = backups.Create(ctx, models.BackupPayload{Type: models.BackupDelta}, nil)
	require.NoError(t, err)

	_, err = schedules.Create(ctx, models.SchedulePayload{
		Name: "Daily Full Backup", Type: models.BackupFull, Frequency: models.FrequencyDaily, Time: "11:30 PM",
	}, nil)
	require.NoError(t, err)

	t.Run("metrics", func(t *testing.T) {
		svc.cache.Flush()
		m, err := svc.Metrics(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, m.TotalUsers)
		assert.Equal(t, 1, m.ActiveUsers)
		assert.Equal(t, 4, m.TotalRepositories)
		assert.Equal(t, 3, m.ActiveRepositories)
		assert.Equal(t, 50.0, m.BackupSuccessRate)
		assert.Equal(t, 50.0, m.GitMigrationProgress)
		assert.NotEqual(t, "None", m.LastFullBackup)
		assert.NotEmpty(t, m.RecentActivity)
	})

	t.Run("metrics are cached", func(t *testing.T) {
		first, err := svc.Metrics(ctx)
		require.NoError(t, err)
		mustUser(t, users, "ajohnson", "Alex Johnson")
		second, err := svc.Metrics(ctx)
		require.NoError(t, err)
		assert.Equal(t, first.TotalUsers, second.TotalUsers)
	})

	t.Run("migration progress", func(t *testing.T) {
		p, err := svc.MigrationProgress(ctx)
		require.NoError(t, err)
		assert.Equal(t, 4, p.TotalRepositories)
		assert.Equal(t, 1, p.CompletedRepositories)
		assert.Equal(t, 1, p.InProgressRepositories)
		assert.Equal(t, 1, p.NotStartedRepositories)
		assert.Equal(t, 1, p.ArchivedRepositories)
		// (1 + 0.5) / 4
		assert.Equal(t, 38, p.OverallProgress)
	})

	t.Run("backup summary", func(t *testing.T) {
		s, err := svc.BackupSummary(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, s.TotalBackups)
		assert.Equal(t, 1, s.CompletedBackups)
		assert.Equal(t, 1, s.InProgressBackups)
		assert.Equal(t, 15.8, s.TotalStorageGB)
		assert.Equal(t, "11:30 PM", s.NextScheduledBackup)
	})
}

func TestRecentActivityAgo(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{time.Minute, "1 minute ago"},
		{5 * time.Minute, "5 minutes ago"},
		{3 * time.Hour, "3 hours ago"},
		{49 * time.Hour, "2 days ago"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ago(tt.d))
	}
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0.0, percent(3, 0))
	assert.Equal(t, 66.7, percent(2, 3))
	assert.Equal(t, 100.0, percent(4, 4))
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"scmdash/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBackupService(t *testing.T, delay time.Duration) (*backupService, RepositoryService) {
	t.Helper()
	repo := setupTestRepo(t)
	svc := NewBackupService(repo, &recordingAuditor{}, delay)
	t.Cleanup(svc.Shutdown)
	return svc, NewRepositoryService(repo, &recordingAuditor{})
}

func TestBackupService_CreateAndComplete(t *testing.T) {
	svc, repos := newTestBackupService(t, 20*time.Millisecond)
	ctx := actorCtx()
	alpha := mustRepository(t, repos, "project-alpha")
	mustRepository(t, repos, "project-beta")

	b, err := svc.Create(ctx, models.BackupPayload{Type: models.BackupFull}, nil)
	require.NoError(t, err)
	assert.Equal(t, "BKP-2000", b.BackupID)
	assert.Equal(t, models.BackupInProgress, b.Status)
	assert.Equal(t, "0m", b.Duration)
	assert.Equal(t, "Backup initiated...", b.Logs)
	assert.Equal(t, "admin", b.InitiatedBy)
	assert.True(t, b.Scope.IsAll())
	assert.Equal(t, models.AllRepositoriesLabel, b.Repos)
	assert.Len(t, b.RepositoryIDs, 2)

	r, err := repos.Get(ctx, alpha.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BackupInProgress, r.BackupStatus)

	require.Eventually(t, func() bool {
		got, err := svc.Get(ctx, b.ID)
		return err == nil && got.Status == models.BackupComplete
	}, 2*time.Second, 10*time.Millisecond)

	done, err := svc.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "15.8 GB", done.Size)
	assert.Equal(t, "1h 05m", done.Duration)
	assert.Equal(t, "Backup completed successfully with no errors.", done.Logs)

	r, err = repos.Get(ctx, alpha.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BackupComplete, r.BackupStatus)

	last, err := svc.LastFull(ctx)
	require.NoError(t, err)
	assert.Equal(t, b.ID, last.ID)
}

func TestBackupService_SelectedScope(t *testing.T) {
	svc, repos := newTestBackupService(t, time.Hour)
	alpha := mustRepository(t, repos, "project-alpha")
	mustRepository(t, repos, "project-beta")

	b, err := svc.Create(actorCtx(), models.BackupPayload{Type: models.BackupDelta, Notes: "pre-release"}, []int64{alpha.ID})
	require.NoError(t, err)
	assert.False(t, b.Scope.IsAll())
	assert.Equal(t, "project-alpha", b.Repos)

	_, err = svc.Create(actorCtx(), models.BackupPayload{Type: models.BackupDelta}, []int64{alpha.ID, 404})
	require.Error(t, err)
	assert.Equal(t, "Repository not found with id: 404", err.Error())

	byCode, err := svc.GetByCode(context.Background(), b.BackupID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, byCode.ID)

	_, err = svc.LastFull(context.Background())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestBackupService_Retry(t *testing.T) {
	svc, repos := newTestBackupService(t, time.Hour)
	ctx := actorCtx()
	mustRepository(t, repos, "project-alpha")

	b, err := svc.Create(ctx, models.BackupPayload{Type: models.BackupFull}, nil)
	require.NoError(t, err)

	_, err = svc.Retry(ctx, b.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.Contains(t, err.Error(), "Only failed backups can be retried")

	b.Status = models.BackupFailed
	b.Logs = "Error: Storage quota exceeded."
	_, err = svc.Repo.SaveBackup(ctx, b)
	require.NoError(t, err)

	retried, err := svc.Retry(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BackupInProgress, retried.Status)
	assert.Equal(t, "Retry initiated...", retried.Logs)
}

func TestBackupService_Statistics(t *testing.T) {
	svc, _ := newTestBackupService(t, time.Hour)
	ctx := context.Background()

	stats, err := svc.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalBackups)
	assert.Equal(t, "None", stats.LastFullBackupDate)

	seed := []models.Backup{
		{Type: models.BackupFull, Status: models.BackupComplete, Size: "15.8 GB"},
		{Type: models.BackupDelta, Status: models.BackupComplete, Size: "1.24 GB"},
		{Type: models.BackupFull, Status: models.BackupFailed, Size: "12.3 GB"},
		{Type: models.BackupDelta, Status: models.BackupInProgress},
	}
	for i := range seed {
		seed[i].Date = time.Now().Add(-time.Duration(i) * time.Hour)
		seed[i].Scope = models.AllRepositories()
		_, err := svc.Repo.CreateBackup(ctx, &seed[i], nil)
		require.NoError(t, err)
	}

	stats, err = svc.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalBackups)
	assert.Equal(t, 2, stats.CompletedBackups)
	assert.Equal(t, 1, stats.FailedBackups)
	assert.Equal(t, 1, stats.InProgressBackups)
	assert.Equal(t, 17.0, stats.TotalStorageGB)
	assert.NotEqual(t, "None", stats.LastFullBackupDate)
}

func TestBackupService_ShutdownCancelsCompletion(t *testing.T) {
	svc, repos := newTestBackupService(t, time.Hour)
	mustRepository(t, repos, "project-alpha")

	b, err := svc.Create(actorCtx(), models.BackupPayload{Type: models.BackupDelta}, nil)
	require.NoError(t, err)

	finished := make(chan struct{})
	go func() {
		svc.Shutdown()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Shutdown did not return")
	}

	got, err := svc.Repo.GetBackup(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BackupInProgress, got.Status)
}

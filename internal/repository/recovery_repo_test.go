// filepath: internal/repository/recovery_repo_test.go
package repository

import (
	"context"
	"testing"
	"time"

	"scmdash/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailStaleBackups(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	r := createTestRepository(t, repo, "project-alpha")

	stale, err := repo.CreateBackup(ctx, &models.Backup{
		Date:   time.Now().Add(-3 * time.Hour),
		Type:   models.BackupFull,
		Status: models.BackupInProgress,
		Scope:  models.SelectedRepositories([]int64{r.ID}),
	}, []int64{r.ID})
	require.NoError(t, err)

	fresh, err := repo.CreateBackup(ctx, &models.Backup{
		Date:   time.Now(),
		Type:   models.BackupDelta,
		Status: models.BackupInProgress,
		Scope:  models.AllRepositories(),
	}, nil)
	require.NoError(t, err)

	count, err := repo.FailStaleBackups(ctx, time.Now().Add(-2*time.Hour))
	assert.NoError(t, err)
	assert.Equal(t, 1, count, "Should have failed exactly 1 backup")

	got, err := repo.GetBackup(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BackupFailed, got.Status)
	assert.Equal(t, StaleBackupLog, got.Logs)

	repoAfter, err := repo.GetRepository(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BackupFailed, repoAfter.BackupStatus, "linked repositories follow the backup")

	got, err = repo.GetBackup(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BackupInProgress, got.Status)
}

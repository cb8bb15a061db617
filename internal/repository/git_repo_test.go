// filepath: internal/repository/git_repo_test.go
package repository

import (
	"context"
	"testing"
	"time"

	"scmdash/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitBackupRunUpserts(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	r, err := repo.CreateGitRepository(ctx, &models.GitRepository{ProjectName: "alpha", Department: "Engineering"})
	require.NoError(t, err)
	assert.Equal(t, []string{}, r.Members)

	old := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	pending, err := repo.CreateGitBackup(ctx, &models.GitBackup{RepositoryID: r.ID, BackupStatus: models.GitBackupPending, LastBackupTime: &old})
	require.NoError(t, err)

	_, err = repo.CreateGitBackup(ctx, &models.GitBackup{RepositoryID: r.ID, BackupStatus: models.GitBackupPending})
	assert.ErrorIs(t, err, ErrBackupExists)

	ran, err := repo.RecordGitBackupRun(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, pending.ID, ran.ID, "the run updates the existing record")
	assert.Equal(t, models.GitBackupComplete, ran.BackupStatus)
	require.NotNil(t, ran.LastBackupTime)
	assert.True(t, ran.LastBackupTime.After(old))

	counts, err := repo.CountGitBackupsByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{models.GitBackupComplete: 1}, counts)
}

func TestGitUserRoleCounts(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	for i, role := range []string{models.GitRoleDeveloper, models.GitRoleDeveloper, models.GitRoleTester} {
		_, err := repo.CreateGitUser(ctx, &models.GitUser{
			EmployeeID: "E" + string(rune('1'+i)), Username: "user" + string(rune('a'+i)), Role: role,
		})
		require.NoError(t, err)
	}

	counts, err := repo.CountGitUsersByRole(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{models.GitRoleDeveloper: 2, models.GitRoleTester: 1}, counts)

	taken, err := repo.GitEmployeeIDTaken(ctx, "E1", 0)
	require.NoError(t, err)
	assert.True(t, taken)

	users, repos, err := repo.CountGit(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, users)
	assert.Equal(t, 0, repos)
}

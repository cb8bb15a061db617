// filepath: internal/api/handlers/backup_handler_test.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"scmdash/internal/models"
	"scmdash/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateBackup_Scope(t *testing.T) {
	t.Run("All repositories", func(t *testing.T) {
		env := newTestEnv(t)
		env.backups.On("Create", mock.Anything, models.BackupPayload{Type: "Full"}, []int64(nil)).
			Return(&models.Backup{ID: 1, BackupID: "BKP-2043", Scope: models.AllRepositories(), Repos: models.AllRepositoriesLabel}, nil)

		rr := serve(env.h.CreateBackup, newRequest(http.MethodPost, "/api/svn/backups", `{"type":"Full"}`, nil))

		require.Equal(t, http.StatusCreated, rr.Code)
		var b models.Backup
		decodeData(t, rr, &b)
		assert.Equal(t, models.AllRepositoriesLabel, b.Repos)
	})

	t.Run("Selected repositories", func(t *testing.T) {
		env := newTestEnv(t)
		env.backups.On("Create", mock.Anything, mock.Anything, []int64{4, 5}).
			Return(&models.Backup{ID: 2, Scope: models.SelectedRepositories([]int64{4, 5})}, nil)

		rr := serve(env.h.CreateBackup, newRequest(http.MethodPost, "/api/svn/backups?repositoryIds=4&repositoryIds=5", `{"type":"Delta"}`, nil))

		assert.Equal(t, http.StatusCreated, rr.Code)
	})

	t.Run("Invalid type", func(t *testing.T) {
		env := newTestEnv(t)
		rr := serve(env.h.CreateBackup, newRequest(http.MethodPost, "/api/svn/backups", `{"type":"Incremental"}`, nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestGetBackupByCode(t *testing.T) {
	env := newTestEnv(t)
	env.backups.On("GetByCode", mock.Anything, "BKP-2040").Return(&models.Backup{ID: 5, BackupID: "BKP-2040"}, nil)

	rr := serve(env.h.GetBackupByCode, newRequest(http.MethodGet, "/api/svn/backups/backup-id/BKP-2040", "", map[string]string{"backupId": "BKP-2040"}))

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRetryBackup_NotFailed(t *testing.T) {
	env := newTestEnv(t)
	env.backups.On("Retry", mock.Anything, int64(5)).
		Return(nil, fmt.Errorf("%w: only failed backups can be retried", services.ErrInvalidTransition))

	rr := serve(env.h.RetryBackup, newRequest(http.MethodPost, "/api/svn/backups/5/retry", "", id("5")))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestBackupStatistics(t *testing.T) {
	env := newTestEnv(t)
	env.backups.On("Statistics", mock.Anything).Return(&models.BackupStatistics{
		TotalBackups: 7, CompletedBackups: 5, FailedBackups: 1, InProgressBackups: 1,
		TotalStorageGB: 12.5, LastFullBackupDate: "None",
	}, nil)

	rr := serve(env.h.BackupStatistics, newRequest(http.MethodGet, "/api/svn/backups/statistics", "", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var stats models.BackupStatistics
	decodeData(t, rr, &stats)
	assert.Equal(t, 7, stats.TotalBackups)
	assert.Equal(t, "None", stats.LastFullBackupDate)
}

func TestLastFullBackup_None(t *testing.T) {
	env := newTestEnv(t)
	env.backups.On("LastFull", mock.Anything).Return(nil, fmt.Errorf("%w: no completed full backup", services.ErrNotFound))

	rr := serve(env.h.LastFullBackup, newRequest(http.MethodGet, "/api/svn/backups/last-full", "", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteBackup_UnexpectedError(t *testing.T) {
	env := newTestEnv(t)
	env.backups.On("Delete", mock.Anything, int64(6)).Return(errors.New("disk I/O error"))

	rr := serve(env.h.DeleteBackup, newRequest(http.MethodDelete, "/api/svn/backups/6", "", id("6")))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Failed to delete backup", decodeError(t, rr), "internal causes are not leaked")
}

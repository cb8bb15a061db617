// filepath: internal/api/handlers/dashboard_handler_test.go
package handlers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"scmdash/internal/models"
	"scmdash/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDashboardEndpoints(t *testing.T) {
	env := newTestEnv(t)
	env.dashboard.On("Metrics", mock.Anything).Return(&models.DashboardMetrics{TotalUsers: 5, BackupSuccessRate: 71.4}, nil)
	env.dashboard.On("RecentActivity", mock.Anything).Return([]models.Activity{{ID: "01J", User: "admin", Action: "Created repository", Ago: "2 minutes ago"}}, nil)
	env.dashboard.On("MigrationProgress", mock.Anything).Return(&models.MigrationProgress{TotalRepositories: 5, OverallProgress: 40}, nil)
	env.dashboard.On("BackupSummary", mock.Anything).Return(&models.BackupSummary{TotalBackups: 7, NextScheduledBackup: "Tomorrow, 11:30 PM"}, nil)

	rr := serve(env.h.DashboardMetrics, newRequest(http.MethodGet, "/api/svn/dashboard/metrics", "", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var m models.DashboardMetrics
	decodeData(t, rr, &m)
	assert.Equal(t, 71.4, m.BackupSuccessRate)

	rr = serve(env.h.RecentActivity, newRequest(http.MethodGet, "/api/svn/dashboard/recent-activity", "", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var feed []models.Activity
	decodeData(t, rr, &feed)
	assert.Equal(t, "2 minutes ago", feed[0].Ago)

	rr = serve(env.h.MigrationProgress, newRequest(http.MethodGet, "/api/svn/dashboard/migration-progress", "", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var p models.MigrationProgress
	decodeData(t, rr, &p)
	assert.Equal(t, 40, p.OverallProgress)

	rr = serve(env.h.BackupSummary, newRequest(http.MethodGet, "/api/svn/dashboard/backup-summary", "", nil))
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestSupersetGuestToken(t *testing.T) {
	t.Run("Token", func(t *testing.T) {
		env := newTestEnv(t)
		env.superset.On("GuestToken", mock.Anything, "42").Return("guest-abc", nil)

		rr := serve(env.h.SupersetGuestToken, newRequest(http.MethodPost, "/api/superset/guest-token", `{"dashboardId":"42"}`, nil))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"data":{"token":"guest-abc"}}`, rr.Body.String())
	})

	t.Run("Upstream down", func(t *testing.T) {
		env := newTestEnv(t)
		env.superset.On("GuestToken", mock.Anything, "42").Return("", fmt.Errorf("%w: connection refused", services.ErrUnavailable))

		rr := serve(env.h.SupersetGuestToken, newRequest(http.MethodPost, "/api/superset/guest-token", `{"dashboardId":"42"}`, nil))

		assert.Equal(t, http.StatusBadGateway, rr.Code)
	})

	t.Run("Missing dashboard", func(t *testing.T) {
		env := newTestEnv(t)
		rr := serve(env.h.SupersetGuestToken, newRequest(http.MethodPost, "/api/superset/guest-token", `{}`, nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestTriggerHousekeeping(t *testing.T) {
	t.Run("Dry run", func(t *testing.T) {
		env := newTestEnv(t)
		env.housekeeping.On("TriggerHousekeeping", mock.Anything, true).
			Return(&models.HousekeepingReport{StaleBackupsFailed: 2, DryRun: true, Message: "dry run"}, nil)

		rr := serve(env.h.TriggerHousekeeping, newRequest(http.MethodPost, "/api/admin/housekeeping?dryRun=true", "", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		var report models.HousekeepingReport
		decodeData(t, rr, &report)
		assert.True(t, report.DryRun)
		assert.Equal(t, 2, report.StaleBackupsFailed)
	})

	t.Run("Bad flag", func(t *testing.T) {
		env := newTestEnv(t)
		rr := serve(env.h.TriggerHousekeeping, newRequest(http.MethodPost, "/api/admin/housekeeping?dryRun=maybe", "", nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestGetInfo(t *testing.T) {
	env := newTestEnv(t)
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	env.info.On("GetInfo").Return(models.Info{ServiceName: "SCM Dashboard API", Version: "1.0.0", UptimeSince: start})

	rr := serve(env.h.GetInfo, newRequest(http.MethodGet, "/api/info", "", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"service_name":"SCM Dashboard API","version":"1.0.0","uptime_since":"2024-05-01T12:00:00Z"}`, rr.Body.String())
}

func TestHealthCheck(t *testing.T) {
	rr := serve(HealthCheck, newRequest(http.MethodGet, "/health", "", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK\n", rr.Body.String())
}

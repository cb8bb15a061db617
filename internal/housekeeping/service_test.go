// filepath: internal/housekeeping/service_test.go
package housekeeping

import (
	"context"
	"errors"
	"testing"
	"time"

	"scmdash/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStore is a mock implementation of the Store interface for testing.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) ListStaleBackups(ctx context.Context, cutoff time.Time) ([]models.Backup, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Backup), args.Error(1)
}

func (m *MockStore) FailStaleBackups(ctx context.Context, cutoff time.Time) (int, error) {
	args := m.Called(ctx, cutoff)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) CountExpiredRefreshTokens(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) PurgeExpiredRefreshTokens(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockScheduler struct {
	mock.Mock
}

func (m *MockScheduler) DueSchedules(ctx context.Context, now time.Time) ([]models.BackupSchedule, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BackupSchedule), args.Error(1)
}

func (m *MockScheduler) RunSchedule(ctx context.Context, sc models.BackupSchedule, now time.Time) (*models.Backup, error) {
	args := m.Called(ctx, sc, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Backup), args.Error(1)
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// setupTest creates dependencies backed by mocks and a fixed clock.
func setupTest() (Dependencies, *MockScheduler, *MockStore) {
	sched := new(MockScheduler)
	store := new(MockStore)
	deps := Dependencies{
		Schedules:  sched,
		Store:      store,
		Interval:   time.Minute,
		StaleAfter: 2 * time.Hour,
		Now:        func() time.Time { return fixedNow },
	}
	return deps, sched, store
}

func TestScheduleNextRun(t *testing.T) {
	tests := []struct {
		name     string
		interval time.Duration
		want     time.Duration
	}{
		{"configured", 5 * time.Minute, 5 * time.Minute},
		{"zero uses default", 0, DefaultCheckInterval},
		{"too small is clamped", time.Second, MinCheckInterval},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewService(Dependencies{Interval: tt.interval})
			assert.Equal(t, tt.want, s.scheduleNextRun())
		})
	}
}

func TestRunOnce(t *testing.T) {
	ctx := context.Background()
	cutoff := fixedNow.Add(-2 * time.Hour)

	t.Run("Runs due schedules and recovers stale backups", func(t *testing.T) {
		deps, sched, store := setupTest()
		daily := models.BackupSchedule{ID: 1, ScheduleID: "SCH-001", Name: "Daily Full Backup"}
		weekly := models.BackupSchedule{ID: 2, ScheduleID: "SCH-002", Name: "Weekly Archive"}

		sched.On("DueSchedules", ctx, fixedNow).Return([]models.BackupSchedule{daily, weekly}, nil)
		sched.On("RunSchedule", ctx, daily, fixedNow).Return(&models.Backup{BackupID: "BKP-2043"}, nil)
		sched.On("RunSchedule", ctx, weekly, fixedNow).Return(nil, errors.New("boom"))
		store.On("FailStaleBackups", ctx, cutoff).Return(2, nil)
		store.On("PurgeExpiredRefreshTokens", ctx).Return(3, nil)

		report, err := RunOnce(ctx, deps, false)
		require.NoError(t, err)
		assert.Equal(t, 1, report.SchedulesTriggered)
		assert.Equal(t, 2, report.StaleBackupsFailed)
		assert.Equal(t, 3, report.TokensPurged)
		assert.False(t, report.DryRun)
		assert.Contains(t, report.Message, "1 schedules triggered")
		sched.AssertExpectations(t)
		store.AssertExpectations(t)
	})

	t.Run("Dry run only counts", func(t *testing.T) {
		deps, sched, store := setupTest()
		sched.On("DueSchedules", ctx, fixedNow).Return([]models.BackupSchedule{{ID: 1}}, nil)
		store.On("ListStaleBackups", ctx, cutoff).Return([]models.Backup{{ID: 7}}, nil)
		store.On("CountExpiredRefreshTokens", ctx).Return(4, nil)

		report, err := RunOnce(ctx, deps, true)
		require.NoError(t, err)
		assert.True(t, report.DryRun)
		assert.Equal(t, 1, report.SchedulesTriggered)
		assert.Equal(t, 1, report.StaleBackupsFailed)
		assert.Equal(t, 4, report.TokensPurged)
		assert.Contains(t, report.Message, "dry run")
		sched.AssertNotCalled(t, "RunSchedule", mock.Anything, mock.Anything, mock.Anything)
		store.AssertNotCalled(t, "FailStaleBackups", mock.Anything, mock.Anything)
		store.AssertNotCalled(t, "PurgeExpiredRefreshTokens", mock.Anything)
	})

	t.Run("A failing task does not stop the others", func(t *testing.T) {
		deps, sched, store := setupTest()
		sched.On("DueSchedules", ctx, fixedNow).Return(nil, errors.New("db locked"))
		store.On("FailStaleBackups", ctx, cutoff).Return(1, nil)
		store.On("PurgeExpiredRefreshTokens", ctx).Return(0, nil)

		report, err := RunOnce(ctx, deps, false)
		assert.EqualError(t, err, "db locked")
		require.NotNil(t, report)
		assert.Equal(t, 1, report.StaleBackupsFailed)
	})

	t.Run("Zero stale timeout skips recovery", func(t *testing.T) {
		deps, sched, store := setupTest()
		deps.StaleAfter = 0
		sched.On("DueSchedules", ctx, fixedNow).Return([]models.BackupSchedule{}, nil)
		store.On("PurgeExpiredRefreshTokens", ctx).Return(0, nil)

		report, err := RunOnce(ctx, deps, false)
		require.NoError(t, err)
		assert.Equal(t, 0, report.StaleBackupsFailed)
		store.AssertNotCalled(t, "FailStaleBackups", mock.Anything, mock.Anything)
	})
}

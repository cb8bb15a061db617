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

func TestNextRun(t *testing.T) {
	// Wednesday
	from := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		frequency string
		clock     string
		want      time.Time
	}{
		{"daily later today", models.FrequencyDaily, "11:30 PM", time.Date(2024, 5, 1, 23, 30, 0, 0, time.UTC)},
		{"daily already passed", models.FrequencyDaily, "03:00 AM", time.Date(2024, 5, 2, 3, 0, 0, 0, time.UTC)},
		{"daily exactly now", models.FrequencyDaily, "12:00", time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)},
		{"weekly named day", models.FrequencyWeekly, "01:00 AM (Sunday)", time.Date(2024, 5, 5, 1, 0, 0, 0, time.UTC)},
		{"weekly same day passed", models.FrequencyWeekly, "9:00 AM", time.Date(2024, 5, 8, 9, 0, 0, 0, time.UTC)},
		{"monthly passed", models.FrequencyMonthly, "06:00", time.Date(2024, 6, 1, 6, 0, 0, 0, time.UTC)},
		{"monthly later today", models.FrequencyMonthly, "6:00 PM", time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextRun(&models.BackupSchedule{Frequency: tt.frequency, Time: tt.clock}, from)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := NextRun(&models.BackupSchedule{Frequency: models.FrequencyDaily, Time: "whenever"}, from)
	assert.Error(t, err)
}

func newTestScheduleService(t *testing.T) (*scheduleService, *backupService, RepositoryService) {
	t.Helper()
	repo := setupTestRepo(t)
	backups := NewBackupService(repo, &recordingAuditor{}, time.Hour)
	t.Cleanup(backups.Shutdown)
	return NewScheduleService(repo, backups, &recordingAuditor{}), backups, NewRepositoryService(repo, &recordingAuditor{})
}

func TestScheduleService_CRUD(t *testing.T) {
	svc, _, repos := newTestScheduleService(t)
	ctx := actorCtx()
	alpha := mustRepository(t, repos, "project-alpha")
	beta := mustRepository(t, repos, "project-beta")

	daily, err := svc.Create(ctx, models.SchedulePayload{
		Name: "Daily Full Backup", Type: models.BackupFull, Frequency: models.FrequencyDaily,
		Time: "11:30 PM", Retention: "30 days",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "SCH-001", daily.ScheduleID)
	assert.Equal(t, models.ScheduleActive, daily.Status)
	assert.Equal(t, models.AllRepositoriesLabel, daily.Repos)
	assert.NotNil(t, daily.NextRunAt)

	delta, err := svc.Create(ctx, models.SchedulePayload{
		Name: "Critical Projects Delta", Type: models.BackupDelta, Frequency: models.FrequencyDaily,
		Time: "03:00 PM", Retention: "7 days", Status: models.ScheduleInactive,
	}, []int64{alpha.ID, beta.ID})
	require.NoError(t, err)
	assert.Equal(t, "SCH-002", delta.ScheduleID)
	assert.Equal(t, "project-alpha, project-beta", delta.Repos)
	assert.Nil(t, delta.NextRunAt, "inactive schedules never run")

	_, err = svc.Create(ctx, models.SchedulePayload{
		Name: "Broken", Type: models.BackupFull, Frequency: models.FrequencyDaily, Time: "noonish",
	}, nil)
	assert.True(t, errors.Is(err, ErrValidation))

	toggled, err := svc.ToggleStatus(ctx, delta.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleActive, toggled.Status)
	toggled, err = svc.ToggleStatus(ctx, delta.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleInactive, toggled.Status)

	updated, err := svc.Update(ctx, delta.ID, models.SchedulePayload{
		Name: "Critical Projects Delta", Type: models.BackupDelta, Frequency: models.FrequencyWeekly,
		Time: "01:00 AM (Sunday)", Retention: "7 days",
	}, nil)
	require.NoError(t, err)
	assert.True(t, updated.Scope.IsAll())
	assert.Equal(t, models.ScheduleInactive, updated.Status, "status is kept when omitted")

	byCode, err := svc.GetByCode(ctx, "SCH-001")
	require.NoError(t, err)
	assert.Equal(t, daily.ID, byCode.ID)

	next, err := svc.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, daily.ID, next.ID)

	require.NoError(t, svc.Delete(ctx, daily.ID))
	_, err = svc.Next(ctx)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestScheduleService_DueAndRun(t *testing.T) {
	svc, backups, repos := newTestScheduleService(t)
	ctx := context.Background()
	alpha := mustRepository(t, repos, "project-alpha")

	sc, err := svc.Create(actorCtx(), models.SchedulePayload{
		Name: "Nightly", Type: models.BackupDelta, Frequency: models.FrequencyDaily, Time: "02:00",
	}, []int64{alpha.ID})
	require.NoError(t, err)

	due, err := svc.DueSchedules(ctx, sc.CreatedAt)
	require.NoError(t, err)
	assert.Empty(t, due, "nothing is due at creation time")

	later := sc.CreatedAt.Add(25 * time.Hour)
	due, err = svc.DueSchedules(ctx, later)
	require.NoError(t, err)
	require.Len(t, due, 1)

	b, err := svc.RunSchedule(ctx, due[0], later)
	require.NoError(t, err)
	assert.Equal(t, models.BackupDelta, b.Type)
	assert.Equal(t, SystemActor, b.InitiatedBy)
	assert.Equal(t, "Scheduled backup: Nightly", b.Notes)
	assert.Equal(t, []int64{alpha.ID}, b.RepositoryIDs)

	list, err := backups.List(ctx, models.BackupFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	due, err = svc.DueSchedules(ctx, later)
	require.NoError(t, err)
	assert.Empty(t, due, "a schedule runs once per occurrence")
}

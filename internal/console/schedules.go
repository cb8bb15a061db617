// filepath: internal/console/schedules.go
package console

import (
	"context"

	"scmdash/internal/listview"
	"scmdash/internal/models"
)

// ScheduleStats summarizes the schedules page.
type ScheduleStats struct {
	Total    int
	Active   int
	Inactive int
}

var Frequencies = []string{listview.All, models.FrequencyDaily, models.FrequencyWeekly, models.FrequencyMonthly}

// SchedulesPage is the backup schedules list.
type SchedulesPage struct {
	*listview.Controller[models.BackupSchedule, ScheduleStats]
	backend Backend
}

func NewSchedulesPage(b Backend) *SchedulesPage {
	statusTab := func(key, label, status string) listview.Tab[models.BackupSchedule] {
		return listview.Tab[models.BackupSchedule]{Key: key, Label: label, Match: func(s models.BackupSchedule) bool {
			return s.Status == status
		}}
	}
	return &SchedulesPage{
		backend: b,
		Controller: listview.New(listview.Config[models.BackupSchedule, ScheduleStats]{
			Name:     "schedules",
			PageSize: 10,
			Rules: listview.Rules[models.BackupSchedule]{
				Tabs: []listview.Tab[models.BackupSchedule]{
					{Key: "all", Label: "All Schedules"},
					statusTab("active", "Active", models.ScheduleActive),
					statusTab("inactive", "Inactive", models.ScheduleInactive),
				},
				Filters: []listview.FilterDef[models.BackupSchedule]{
					listview.Equals("type", "Type", func(s models.BackupSchedule) string { return s.Type }),
					listview.Equals("frequency", "Frequency", func(s models.BackupSchedule) string { return s.Frequency }),
				},
				Searchable: func(s models.BackupSchedule) []string {
					return []string{s.Name, s.ScheduleID, s.Repos}
				},
			},
			ID: scheduleID,
			Fetch: func(ctx context.Context) ([]models.BackupSchedule, error) {
				return b.ListSchedules(ctx, models.ScheduleFilter{})
			},
			Sides:    []listview.SideFetch{fetchRepositories(b)},
			Stats:    scheduleStats,
			Describe: describe,
		}),
	}
}

func scheduleStats(list []models.BackupSchedule, _ listview.Sides) ScheduleStats {
	s := ScheduleStats{Total: len(list)}
	for _, sc := range list {
		if sc.Status == models.ScheduleActive {
			s.Active++
		} else {
			s.Inactive++
		}
	}
	return s
}

func (p *SchedulesPage) Create(ctx context.Context, payload models.SchedulePayload, repositoryIDs []int64) (models.BackupSchedule, error) {
	return p.Mutate(ctx, listview.Mutation[models.BackupSchedule]{
		Op:       listview.OpCreate,
		Fallback: "Failed to create schedule",
		Call: func(ctx context.Context) (models.BackupSchedule, error) {
			return echo(p.backend.CreateSchedule(ctx, payload, repositoryIDs))
		},
	})
}

func (p *SchedulesPage) Update(ctx context.Context, id int64, payload models.SchedulePayload, repositoryIDs []int64) (models.BackupSchedule, error) {
	return p.Mutate(ctx, listview.Mutation[models.BackupSchedule]{
		Op:       listview.OpUpdate,
		Fallback: "Failed to update schedule",
		Call: func(ctx context.Context) (models.BackupSchedule, error) {
			return echo(p.backend.UpdateSchedule(ctx, id, payload, repositoryIDs))
		},
	})
}

func (p *SchedulesPage) Delete(ctx context.Context, id int64) error {
	_, err := p.Mutate(ctx, listview.Mutation[models.BackupSchedule]{
		Op:       listview.OpDelete,
		ID:       id,
		Fallback: "Failed to delete schedule",
		Call: func(ctx context.Context) (models.BackupSchedule, error) {
			return models.BackupSchedule{}, p.backend.DeleteSchedule(ctx, id)
		},
	})
	return err
}

// Toggle flips a schedule between Active and Inactive.
func (p *SchedulesPage) Toggle(ctx context.Context, id int64) (models.BackupSchedule, error) {
	return p.Mutate(ctx, listview.Mutation[models.BackupSchedule]{
		Op:       listview.OpUpdate,
		Fallback: "Failed to update schedule status",
		Call: func(ctx context.Context) (models.BackupSchedule, error) {
			return echo(p.backend.ToggleScheduleStatus(ctx, id))
		},
	})
}

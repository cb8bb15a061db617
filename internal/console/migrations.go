// filepath: internal/console/migrations.go
package console

import (
	"context"
	"fmt"

	"scmdash/internal/listview"
	"scmdash/internal/models"
)

// Migration actions.
const (
	ActionStart    = "start"
	ActionPause    = "pause"
	ActionComplete = "complete"
	ActionRetry    = "retry"
)

// MigrationStats summarizes the migrations page.
type MigrationStats struct {
	Total      int
	Completed  int
	InProgress int
	NotStarted int
	Failed     int
	Progress   int
}

var (
	MigrationRecordStatuses = []string{listview.All, models.StatusNotStarted, models.StatusInProgress, models.StatusCompleted, models.StatusFailed}
	EstimatedTimeBuckets    = []string{listview.All, listview.BucketShort, listview.BucketMedium, listview.BucketLong}
)

// AvailableMigrationActions lists the transitions offered for a status.
func AvailableMigrationActions(status string) []string {
	switch status {
	case models.StatusNotStarted:
		return []string{ActionStart}
	case models.StatusInProgress:
		return []string{ActionPause, ActionComplete}
	case models.StatusFailed:
		return []string{ActionRetry}
	}
	return nil
}

// ApplyStatusProgress couples the form's progress to its status: Completed
// sets 100 and Not Started sets 0. Other statuses keep the entered value.
func ApplyStatusProgress(form *models.MigrationPayload) {
	var p int
	switch form.Status {
	case models.StatusCompleted:
		p = 100
	case models.StatusNotStarted:
		p = 0
	default:
		return
	}
	form.Progress = &p
}

// MigrationsPage is the SVN-to-Git migrations list.
type MigrationsPage struct {
	*listview.Controller[models.Migration, MigrationStats]
	backend Backend
}

func NewMigrationsPage(b Backend) *MigrationsPage {
	statusTab := func(key, label, status string) listview.Tab[models.Migration] {
		return listview.Tab[models.Migration]{Key: key, Label: label, Match: func(m models.Migration) bool {
			return m.Status == status
		}}
	}
	return &MigrationsPage{
		backend: b,
		Controller: listview.New(listview.Config[models.Migration, MigrationStats]{
			Name:     "migrations",
			PageSize: 5,
			Rules: listview.Rules[models.Migration]{
				Tabs: []listview.Tab[models.Migration]{
					{Key: "all", Label: "All Migrations"},
					statusTab("completed", "Completed", models.StatusCompleted),
					statusTab("inProgress", "In Progress", models.StatusInProgress),
					statusTab("notStarted", "Not Started", models.StatusNotStarted),
					statusTab("failed", "Failed", models.StatusFailed),
				},
				Filters: []listview.FilterDef[models.Migration]{
					listview.Equals("assignedTo", "Assigned To", func(m models.Migration) string { return m.AssignedTo }),
					{Key: "estimatedTime", Label: "Estimated Time", Match: func(m models.Migration, v string) bool {
						return listview.EstimatedTimeBucket(m.EstimatedTime, v)
					}},
				},
				Searchable: func(m models.Migration) []string {
					return []string{m.Name, m.Description, m.AssignedTo}
				},
			},
			ID: migrationID,
			Fetch: func(ctx context.Context) ([]models.Migration, error) {
				return b.ListMigrations(ctx, models.MigrationFilter{})
			},
			Sides:    []listview.SideFetch{fetchRepositories(b)},
			Stats:    migrationStats,
			Describe: describe,
		}),
	}
}

func migrationStats(list []models.Migration, _ listview.Sides) MigrationStats {
	s := MigrationStats{Total: len(list)}
	for _, m := range list {
		switch m.Status {
		case models.StatusCompleted:
			s.Completed++
		case models.StatusInProgress:
			s.InProgress++
		case models.StatusNotStarted:
			s.NotStarted++
		case models.StatusFailed:
			s.Failed++
		}
	}
	s.Progress = listview.ProgressPercent(s.Completed, s.InProgress, s.Total)
	return s
}

// AssigneeOptions lists All followed by every assignee in use.
func (p *MigrationsPage) AssigneeOptions() []string {
	items := p.Items()
	names := make([]string, 0, len(items))
	for _, m := range items {
		names = append(names, m.AssignedTo)
	}
	return listview.DistinctOptions(names)
}

// Repositories returns the repositories a migration may be linked to.
func (p *MigrationsPage) Repositories() []models.Repository {
	return listview.SideAs[[]models.Repository](p.Sides(), SideRepositories)
}

func (p *MigrationsPage) Create(ctx context.Context, form models.MigrationPayload) (models.Migration, error) {
	return p.Mutate(ctx, listview.Mutation[models.Migration]{
		Op:       listview.OpCreate,
		Fallback: "Failed to create migration",
		Call: func(ctx context.Context) (models.Migration, error) {
			return echo(p.backend.CreateMigration(ctx, form))
		},
	})
}

func (p *MigrationsPage) Update(ctx context.Context, id int64, form models.MigrationPayload) (models.Migration, error) {
	return p.Mutate(ctx, listview.Mutation[models.Migration]{
		Op:       listview.OpUpdate,
		Fallback: "Failed to update migration",
		Call: func(ctx context.Context) (models.Migration, error) {
			return echo(p.backend.UpdateMigration(ctx, id, form))
		},
	})
}

func (p *MigrationsPage) Delete(ctx context.Context, id int64) error {
	_, err := p.Mutate(ctx, listview.Mutation[models.Migration]{
		Op:       listview.OpDelete,
		ID:       id,
		Fallback: "Failed to delete migration",
		Call: func(ctx context.Context) (models.Migration, error) {
			return models.Migration{}, p.backend.DeleteMigration(ctx, id)
		},
	})
	return err
}

// Transition runs one of the migration actions. The record the backend
// answers with replaces the local one as is.
func (p *MigrationsPage) Transition(ctx context.Context, id int64, action string) (models.Migration, error) {
	return p.Mutate(ctx, listview.Mutation[models.Migration]{
		Op:     listview.OpUpdate,
		Prefix: fmt.Sprintf("Failed to %s migration: ", action),
		Call: func(ctx context.Context) (models.Migration, error) {
			return echo(p.backend.TransitionMigration(ctx, id, action))
		},
	})
}

func (p *MigrationsPage) Start(ctx context.Context, id int64) (models.Migration, error) {
	return p.Transition(ctx, id, ActionStart)
}

func (p *MigrationsPage) Pause(ctx context.Context, id int64) (models.Migration, error) {
	return p.Transition(ctx, id, ActionPause)
}

func (p *MigrationsPage) Complete(ctx context.Context, id int64) (models.Migration, error) {
	return p.Transition(ctx, id, ActionComplete)
}

func (p *MigrationsPage) Retry(ctx context.Context, id int64) (models.Migration, error) {
	return p.Transition(ctx, id, ActionRetry)
}

// filepath: internal/console/repositories.go
package console

import (
	"context"

	"scmdash/internal/listview"
	"scmdash/internal/models"
)

// RepositoryStats summarizes the repositories page.
type RepositoryStats struct {
	Total                int
	Active               int
	Migrated             int
	Archived             int
	InProgress           int
	BackupComplete       int
	BackupFailed         int
	BackupInProgress     int
	BackupCompletionRate int
	MigrationProgress    int
}

var (
	BackupStatuses    = []string{listview.All, models.BackupComplete, models.BackupInProgress, models.BackupFailed}
	MigrationStatuses = []string{listview.All, models.StatusNotStarted, models.StatusInProgress, models.StatusCompleted, models.StatusArchived}
)

// RepositoriesPage is the repositories list. Users are loaded alongside for
// the member picker.
type RepositoriesPage struct {
	*listview.Controller[models.Repository, RepositoryStats]
	backend Backend
}

func NewRepositoriesPage(b Backend) *RepositoriesPage {
	return &RepositoriesPage{
		backend: b,
		Controller: listview.New(listview.Config[models.Repository, RepositoryStats]{
			Name:     "repositories",
			PageSize: 5,
			Rules: listview.Rules[models.Repository]{
				Tabs: []listview.Tab[models.Repository]{
					{Key: "all", Label: "All Repositories"},
					{Key: "active", Label: "Active", Match: func(r models.Repository) bool {
						return r.MigrationStatus != models.StatusArchived && r.MigrationStatus != models.StatusCompleted
					}},
					{Key: "migrated", Label: "Migrated to Git", Match: func(r models.Repository) bool {
						return r.MigrationStatus == models.StatusCompleted
					}},
					{Key: "archived", Label: "Archived", Match: func(r models.Repository) bool {
						return r.MigrationStatus == models.StatusArchived
					}},
				},
				Filters: []listview.FilterDef[models.Repository]{
					listview.Equals("backupStatus", "Backup Status", func(r models.Repository) string { return r.BackupStatus }),
					listview.Equals("migrationStatus", "Migration Status", func(r models.Repository) string { return r.MigrationStatus }),
					{Key: "member", Label: "Member", Match: func(r models.Repository, v string) bool {
						for _, m := range r.Members {
							if m.Matches(v) {
								return true
							}
						}
						return false
					}},
				},
				Searchable: func(r models.Repository) []string {
					return append([]string{r.Name, r.Description, r.LastCommitBy}, r.MemberNames()...)
				},
			},
			ID: repositoryID,
			Fetch: func(ctx context.Context) ([]models.Repository, error) {
				return b.ListRepositories(ctx, models.RepositoryFilter{})
			},
			Sides: []listview.SideFetch{{Name: SideUsers, Fetch: func(ctx context.Context) (any, error) {
				return b.ListUsers(ctx, models.UserFilter{})
			}}},
			Stats:    repositoryStats,
			Prepend:  true,
			Describe: describe,
		}),
	}
}

func repositoryStats(repos []models.Repository, _ listview.Sides) RepositoryStats {
	s := RepositoryStats{Total: len(repos)}
	for _, r := range repos {
		switch r.MigrationStatus {
		case models.StatusCompleted:
			s.Migrated++
		case models.StatusArchived:
			s.Archived++
		case models.StatusInProgress:
			s.InProgress++
		}
		switch r.BackupStatus {
		case models.BackupComplete:
			s.BackupComplete++
		case models.BackupFailed:
			s.BackupFailed++
		case models.BackupInProgress:
			s.BackupInProgress++
		}
	}
	s.Active = s.Total - s.Migrated - s.Archived
	s.BackupCompletionRate = listview.Rate(s.BackupComplete, s.Total)
	s.MigrationProgress = listview.ProgressPercent(s.Migrated, s.InProgress, s.Total)
	return s
}

// Users returns the member-picker side-collection, empty when it failed to load.
func (p *RepositoriesPage) Users() []models.User {
	return listview.SideAs[[]models.User](p.Sides(), SideUsers)
}

// MemberOptions lists All followed by every member display name in use.
func (p *RepositoriesPage) MemberOptions() []string {
	var names []string
	for _, r := range p.Items() {
		names = append(names, r.MemberNames()...)
	}
	return listview.DistinctOptions(names)
}

func (p *RepositoriesPage) Create(ctx context.Context, payload models.RepositoryPayload, memberIDs []int64) (models.Repository, error) {
	return p.Mutate(ctx, listview.Mutation[models.Repository]{
		Op:       listview.OpCreate,
		Fallback: "Failed to create repository",
		Call: func(ctx context.Context) (models.Repository, error) {
			return echo(p.backend.CreateRepository(ctx, payload, memberIDs))
		},
	})
}

// Update saves the repository fields. A nil memberIDs keeps the members.
func (p *RepositoriesPage) Update(ctx context.Context, id int64, payload models.RepositoryPayload, memberIDs []int64) (models.Repository, error) {
	return p.Mutate(ctx, listview.Mutation[models.Repository]{
		Op:       listview.OpUpdate,
		Fallback: "Failed to update repository",
		Call: func(ctx context.Context) (models.Repository, error) {
			return echo(p.backend.UpdateRepository(ctx, id, payload, memberIDs))
		},
	})
}

func (p *RepositoriesPage) Delete(ctx context.Context, id int64) error {
	_, err := p.Mutate(ctx, listview.Mutation[models.Repository]{
		Op:       listview.OpDelete,
		ID:       id,
		Fallback: "Failed to delete repository",
		Call: func(ctx context.Context) (models.Repository, error) {
			return models.Repository{}, p.backend.DeleteRepository(ctx, id)
		},
	})
	return err
}

func (p *RepositoriesPage) SetMembers(ctx context.Context, id int64, memberIDs []int64) (models.Repository, error) {
	return p.Mutate(ctx, listview.Mutation[models.Repository]{
		Op:       listview.OpUpdate,
		Fallback: "Failed to update repository members",
		Call: func(ctx context.Context) (models.Repository, error) {
			return echo(p.backend.UpdateRepositoryMembers(ctx, id, memberIDs))
		},
	})
}

// SetMigrationStatus sets the migration track of a repository that has no
// linked migration record.
func (p *RepositoriesPage) SetMigrationStatus(ctx context.Context, id int64, status string, progress *int) (models.Repository, error) {
	return p.Mutate(ctx, listview.Mutation[models.Repository]{
		Op:       listview.OpUpdate,
		Fallback: "Failed to update migration status",
		Call: func(ctx context.Context) (models.Repository, error) {
			return echo(p.backend.UpdateRepositoryMigrationStatus(ctx, id, status, progress))
		},
	})
}

// filepath: internal/cli/repos.go
package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"scmdash/internal/console"
	"scmdash/internal/models"

	"github.com/spf13/cobra"
)

func newReposCommand(g *GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "repos",
		Aliases: []string{"repositories", "repo"},
		Short:   "Manage SCM repositories",
	}
	cmd.AddCommand(
		newReposListCommand(g),
		newRepoCreateCommand(g),
		newRepoUpdateCommand(g),
		newRepoMembersCommand(g),
		newRepoMigrationStatusCommand(g),
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a repository",
			Args:  cobra.ExactArgs(1),
			RunE: clientCommand(g, func(ctx context.Context, env *clientEnv, args []string) error {
				id, err := idArg(args)
				if err != nil {
					return err
				}
				if err := console.NewRepositoriesPage(env.client).Delete(ctx, id); err != nil {
					return env.fail(err, "Failed to delete repository")
				}
				env.done("Repository %d deleted.", id)
				return nil
			}),
		},
	)
	return cmd
}

func newReposListCommand(g *GlobalOptions) *cobra.Command {
	flags := &listFlags{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List repositories (tabs: all, active, migrated, archived; filters: backupStatus, migrationStatus, member)",
		Args:  cobra.NoArgs,
		RunE: clientCommand(g, func(ctx context.Context, env *clientEnv, args []string) error {
			page := console.NewRepositoriesPage(env.client)
			return listView[models.Repository, console.RepositoryStats]{
				title:   "Repositories",
				ctrl:    page.Controller,
				headers: []string{"ID", "Name", "Size", "Backup", "Migration", "Progress", "Members", "Last Commit"},
				row: func(r models.Repository) []string {
					return []string{
						strconv.FormatInt(r.ID, 10), r.Name, orDash(r.Size), r.BackupStatus, r.MigrationStatus,
						fmt.Sprintf("%d%%", r.MigrationProgress), orDash(strings.Join(r.MemberNames(), ", ")), formatTime(r.LastCommit),
					}
				},
				stats: func(s console.RepositoryStats) string {
					return renderStats("Total", s.Total, "Active", s.Active, "Migrated", s.Migrated, "Archived", s.Archived,
						"Backup completion", fmt.Sprintf("%d%%", s.BackupCompletionRate),
						"Migration progress", fmt.Sprintf("%d%%", s.MigrationProgress))
				},
			}.run(ctx, env, flags)
		}),
	}
	cmd.Flags().AddFlagSet(flags.flagSet())
	return cmd
}

type repoForm struct {
	p         models.RepositoryPayload
	progress  int
	memberIDs []int64
}

func (f *repoForm) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.p.Name, "name", "", "Repository name")
	cmd.Flags().StringVar(&f.p.Description, "description", "", "Description")
	cmd.Flags().StringVar(&f.p.Size, "size", "", "Size, e.g. '2.4 GB'")
	cmd.Flags().StringVar(&f.p.BackupStatus, "backup-status", models.BackupComplete, "Complete, In Progress or Failed")
	cmd.Flags().StringVar(&f.p.MigrationStatus, "migration-status", models.StatusNotStarted, "Not Started, In Progress, Completed or Archived")
	cmd.Flags().IntVar(&f.progress, "progress", 0, "Migration progress 0-100; derived from the status when unset")
	cmd.Flags().Int64SliceVar(&f.memberIDs, "member", nil, "Member user ids; repeatable or comma separated")
}

func (f *repoForm) over(cmd *cobra.Command, base models.RepositoryPayload) models.RepositoryPayload {
	setIfChanged(cmd, "name", &base.Name, f.p.Name)
	setIfChanged(cmd, "description", &base.Description, f.p.Description)
	setIfChanged(cmd, "size", &base.Size, f.p.Size)
	setIfChanged(cmd, "backup-status", &base.BackupStatus, f.p.BackupStatus)
	if cmd.Flags().Changed("migration-status") {
		base.MigrationStatus = f.p.MigrationStatus
		base.MigrationProgress = nil
	}
	if cmd.Flags().Changed("progress") {
		p := f.progress
		base.MigrationProgress = &p
	}
	return base
}

// members returns nil when --member was not given, which leaves links alone.
func (f *repoForm) members(cmd *cobra.Command) []int64 {
	if !cmd.Flags().Changed("member") {
		return nil
	}
	if f.memberIDs == nil {
		return []int64{}
	}
	return f.memberIDs
}

func repoFields(r models.Repository) [][2]string {
	return [][2]string{
		{"ID", strconv.FormatInt(r.ID, 10)},
		{"Name", r.Name},
		{"Description", orDash(r.Description)},
		{"Size", orDash(r.Size)},
		{"Backup Status", r.BackupStatus},
		{"Migration Status", r.MigrationStatus},
		{"Migration Progress", fmt.Sprintf("%d%%", r.MigrationProgress)},
		{"Members", orDash(strings.Join(r.MemberNames(), ", "))},
		{"Last Commit", formatTime(r.LastCommit) + " " + r.LastCommitBy},
	}
}

func newRepoCreateCommand(g *GlobalOptions) *cobra.Command {
	form := &repoForm{}
	var cmd *cobra.Command
	cmd = &cobra.Command{
		Use:   "create",
		Short: "Create a repository",
		Args:  cobra.NoArgs,
		RunE: clientCommand(g, func(ctx context.Context, env *clientEnv, args []string) error {
			payload := form.over(cmd, models.RepositoryPayload{
				BackupStatus:    form.p.BackupStatus,
				MigrationStatus: form.p.MigrationStatus,
			})
			r, err := console.NewRepositoriesPage(env.client).Create(ctx, payload, form.members(cmd))
			if err != nil {
				return env.fail(err, "Failed to create repository")
			}
			return env.show(r, repoFields(r))
		}),
	}
	form.register(cmd)
	return cmd
}

func newRepoUpdateCommand(g *GlobalOptions) *cobra.Command {
	form := &repoForm{}
	var cmd *cobra.Command
	cmd = &cobra.Command{
		Use:   "update <id>",
		Short: "Update a repository; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: clientCommand(g, func(ctx context.Context, env *clientEnv, args []string) error {
			id, err := idArg(args)
			if err != nil {
				return err
			}
			current, err := env.client.GetRepository(ctx, id)
			if err != nil {
				return env.fail(err, fmt.Sprintf("Failed to load repository %d", id))
			}
			progress := current.MigrationProgress
			payload := form.over(cmd, models.RepositoryPayload{
				Name:              current.Name,
				Description:       current.Description,
				Size:              current.Size,
				BackupStatus:      current.BackupStatus,
				MigrationStatus:   current.MigrationStatus,
				MigrationProgress: &progress,
				ColorCode:         current.ColorCode,
			})
			r, err := console.NewRepositoriesPage(env.client).Update(ctx, id, payload, form.members(cmd))
			if err != nil {
				return env.fail(err, "Failed to update repository")
			}
			return env.show(r, repoFields(r))
		}),
	}
	form.register(cmd)
	return cmd
}

func newRepoMembersCommand(g *GlobalOptions) *cobra.Command {
	var memberIDs []int64
	cmd := &cobra.Command{
		Use:   "members <id>",
		Short: "Replace the member list of a repository",
		Args:  cobra.ExactArgs(1),
		RunE: clientCommand(g, func(ctx context.Context, env *clientEnv, args []string) error {
			id, err := idArg(args)
			if err != nil {
				return err
			}
			r, err := console.NewRepositoriesPage(env.client).SetMembers(ctx, id, memberIDs)
			if err != nil {
				return env.fail(err, "Failed to update members")
			}
			return env.show(r, repoFields(r))
		}),
	}
	cmd.Flags().Int64SliceVar(&memberIDs, "member", nil, "Member user ids; none clears the list")
	return cmd
}

func newRepoMigrationStatusCommand(g *GlobalOptions) *cobra.Command {
	var progress int
	var cmd *cobra.Command
	cmd = &cobra.Command{
		Use:   "migration-status <id> <status>",
		Short: "Set the migration status of a repository",
		Args:  cobra.ExactArgs(2),
		RunE: clientCommand(g, func(ctx context.Context, env *clientEnv, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var p *int
			if cmd.Flags().Changed("progress") {
				p = &progress
			}
			r, err := console.NewRepositoriesPage(env.client).SetMigrationStatus(ctx, id, args[1], p)
			if err != nil {
				return env.fail(err, "Failed to update migration status")
			}
			return env.show(r, repoFields(r))
		}),
	}
	cmd.Flags().IntVar(&progress, "progress", 0, "Progress 0-100; derived from the status when unset")
	return cmd
}

// filepath: internal/cli/migrations.go
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

func newMigrationsCommand(g *GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "migrations",
		Aliases: []string{"migration"},
		Short:   "Track SVN-to-Git migrations",
	}
	cmd.AddCommand(
		newMigrationsListCommand(g),
		newMigrationCreateCommand(g),
		newMigrationUpdateCommand(g),
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a migration",
			Args:  cobra.ExactArgs(1),
			RunE: clientCommand(g, func(ctx context.Context, env *clientEnv, args []string) error {
				id, err := idArg(args)
				if err != nil {
					return err
				}
				if err := console.NewMigrationsPage(env.client).Delete(ctx, id); err != nil {
					return env.fail(err, "Failed to delete migration")
				}
				env.done("Migration %d deleted.", id)
				return nil
			}),
		},
	)
	for _, action := range []string{console.ActionStart, console.ActionPause, console.ActionComplete, console.ActionRetry} {
		cmd.AddCommand(newMigrationTransitionCommand(g, action))
	}
	return cmd
}

func newMigrationTransitionCommand(g *GlobalOptions, action string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <id>",
		Short: strings.ToUpper(action[:1]) + action[1:] + " a migration",
		Args:  cobra.ExactArgs(1),
		RunE: clientCommand(g, func(ctx context.Context, env *clientEnv, args []string) error {
			id, err := idArg(args)
			if err != nil {
				return err
			}
			m, err := console.NewMigrationsPage(env.client).Transition(ctx, id, action)
			if err != nil {
				return env.fail(err, "")
			}
			return env.show(m, migrationFields(m))
		}),
	}
}

func newMigrationsListCommand(g *GlobalOptions) *cobra.Command {
	flags := &listFlags{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List migrations (tabs: all, completed, inProgress, notStarted, failed; filters: assignedTo, estimatedTime)",
		Args:  cobra.NoArgs,
		RunE: clientCommand(g, func(ctx context.Context, env *clientEnv, args []string) error {
			page := console.NewMigrationsPage(env.client)
			return listView[models.Migration, console.MigrationStats]{
				title:   "Migrations",
				ctrl:    page.Controller,
				headers: []string{"ID", "Name", "Status", "Progress", "Assigned To", "Estimate", "Started", "Actions"},
				row: func(m models.Migration) []string {
					return []string{
						strconv.FormatInt(m.ID, 10), m.Name, m.Status, fmt.Sprintf("%d%%", m.Progress), orDash(m.AssignedTo),
						orDash(m.EstimatedTime), formatTime(m.StartedDate), orDash(strings.Join(console.AvailableMigrationActions(m.Status), ", ")),
					}
				},
				stats: func(s console.MigrationStats) string {
					return renderStats("Total", s.Total, "Completed", s.Completed, "In progress", s.InProgress,
						"Not started", s.NotStarted, "Failed", s.Failed, "Overall", fmt.Sprintf("%d%%", s.Progress))
				},
			}.run(ctx, env, flags)
		}),
	}
	cmd.Flags().AddFlagSet(flags.flagSet())
	return cmd
}

type migrationForm struct {
	p            models.MigrationPayload
	progress     int
	repositoryID int64
}

func (f *migrationForm) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.p.Name, "name", "", "Migration name")
	cmd.Flags().StringVar(&f.p.Description, "description", "", "Description")
	cmd.Flags().StringVar(&f.p.Size, "size", "", "Repository size, e.g. '1.2 GB'")
	cmd.Flags().StringVar(&f.p.Status, "status", models.StatusNotStarted, "Not Started, In Progress, Completed or Failed")
	cmd.Flags().IntVar(&f.progress, "progress", 0, "Progress 0-100")
	cmd.Flags().StringVar(&f.p.EstimatedTime, "estimated-time", "", "Estimate, e.g. '3 hours'")
	cmd.Flags().StringVar(&f.p.AssignedTo, "assigned-to", "", "Assignee")
	cmd.Flags().Int64Var(&f.repositoryID, "repository", 0, "Linked repository id")
}

// over lays the flags over base. A status change couples the progress the
// same way the form does; an explicit --progress wins.
func (f *migrationForm) over(cmd *cobra.Command, base models.MigrationPayload) models.MigrationPayload {
	setIfChanged(cmd, "name", &base.Name, f.p.Name)
	setIfChanged(cmd, "description", &base.Description, f.p.Description)
	setIfChanged(cmd, "size", &base.Size, f.p.Size)
	setIfChanged(cmd, "estimated-time", &base.EstimatedTime, f.p.EstimatedTime)
	setIfChanged(cmd, "assigned-to", &base.AssignedTo, f.p.AssignedTo)
	if cmd.Flags().Changed("status") {
		base.Status = f.p.Status
		console.ApplyStatusProgress(&base)
	}
	if cmd.Flags().Changed("progress") {
		p := f.progress
		base.Progress = &p
	}
	if cmd.Flags().Changed("repository") {
		id := f.repositoryID
		base.RepositoryID = &id
	}
	return base
}

func migrationFields(m models.Migration) [][2]string {
	repo := "-"
	if m.RepositoryID != nil {
		repo = strconv.FormatInt(*m.RepositoryID, 10)
	}
	return [][2]string{
		{"ID", strconv.FormatInt(m.ID, 10)},
		{"Name", m.Name},
		{"Status", m.Status},
		{"Progress", fmt.Sprintf("%d%%", m.Progress)},
		{"Assigned To", orDash(m.AssignedTo)},
		{"Estimated Time", orDash(m.EstimatedTime)},
		{"Started", formatTime(m.StartedDate)},
		{"Completed", formatTime(m.CompletedDate)},
		{"Repository", repo},
		{"Next Actions", orDash(strings.Join(console.AvailableMigrationActions(m.Status), ", "))},
	}
}

func newMigrationCreateCommand(g *GlobalOptions) *cobra.Command {
	form := &migrationForm{}
	var cmd *cobra.Command
	cmd = &cobra.Command{
		Use:   "create",
		Short: "Create a migration",
		Args:  cobra.NoArgs,
		RunE: clientCommand(g, func(ctx context.Context, env *clientEnv, args []string) error {
			base := models.MigrationPayload{Status: form.p.Status}
			console.ApplyStatusProgress(&base)
			m, err := console.NewMigrationsPage(env.client).Create(ctx, form.over(cmd, base))
			if err != nil {
				return env.fail(err, "Failed to create migration")
			}
			return env.show(m, migrationFields(m))
		}),
	}
	form.register(cmd)
	return cmd
}

func newMigrationUpdateCommand(g *GlobalOptions) *cobra.Command {
	form := &migrationForm{}
	var cmd *cobra.Command
	cmd = &cobra.Command{
		Use:   "update <id>",
		Short: "Update a migration; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: clientCommand(g, func(ctx context.Context, env *clientEnv, args []string) error {
			id, err := idArg(args)
			if err != nil {
				return err
			}
			current, err := env.client.GetMigration(ctx, id)
			if err != nil {
				return env.fail(err, fmt.Sprintf("Failed to load migration %d", id))
			}
			progress := current.Progress
			payload := form.over(cmd, models.MigrationPayload{
				Name:          current.Name,
				Description:   current.Description,
				Size:          current.Size,
				Status:        current.Status,
				Progress:      &progress,
				EstimatedTime: current.EstimatedTime,
				AssignedTo:    current.AssignedTo,
				ColorCode:     current.ColorCode,
				RepositoryID:  current.RepositoryID,
			})
			m, err := console.NewMigrationsPage(env.client).Update(ctx, id, payload)
			if err != nil {
				return env.fail(err, "Failed to update migration")
			}
			return env.show(m, migrationFields(m))
		}),
	}
	form.register(cmd)
	return cmd
}

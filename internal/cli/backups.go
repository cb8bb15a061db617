// filepath: internal/cli/backups.go
package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"scmdash/internal/client"
	"scmdash/internal/console"
	"scmdash/internal/models"

	"github.com/spf13/cobra"
)

func newBackupsCommand(g *GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "backups",
		Aliases: []string{"backup"},
		Short:   "Run and inspect backups",
	}
	cmd.AddCommand(
		newBackupsListCommand(g),
		newBackupCreateCommand(g),
		&cobra.Command{
			Use:   "show <id|code>",
			Short: "Show one backup by numeric id or code (e.g. BKP-2043)",
			Args:  cobra.ExactArgs(1),
			RunE: clientCommand(g, func(ctx context.Context, env *clientEnv, args []string) error {
				var b *models.Backup
				var err error
				if id, perr := parseID(args[0]); perr == nil {
					b, err = env.client.GetBackup(ctx, id)
				} else {
					b, err = env.client.GetBackupByCode(ctx, args[0])
				}
				if err != nil {
					return env.fail(err, "Failed to load backup")
				}
				return env.show(b, backupFields(*b))
			}),
		},
		&cobra.Command{
			Use:   "last-full",
			Short: "Show the most recent completed full backup",
			Args:  cobra.NoArgs,
			RunE: clientCommand(g, func(ctx context.Context, env *clientEnv, args []string) error {
				b, err := env.client.LastFullBackup(ctx)
				if errors.Is(err, client.ErrNotFound) {
					env.done("No full backup has completed yet.")
					return nil
				}
				if err != nil {
					return env.fail(err, "Failed to load the last full backup")
				}
				return env.show(b, backupFields(*b))
			}),
		},
		&cobra.Command{
			Use:   "retry <id>",
			Short: "Retry a failed backup",
			Args:  cobra.ExactArgs(1),
			RunE: clientCommand(g, func(ctx context.Context, env *clientEnv, args []string) error {
				id, err := idArg(args)
				if err != nil {
					return err
				}
				b, err := console.NewBackupsPage(env.client).Retry(ctx, id)
				if err != nil {
					return env.fail(err, "Failed to retry backup")
				}
				return env.show(b, backupFields(b))
			}),
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a backup record",
			Args:  cobra.ExactArgs(1),
			RunE: clientCommand(g, func(ctx context.Context, env *clientEnv, args []string) error {
				id, err := idArg(args)
				if err != nil {
					return err
				}
				if err := console.NewBackupsPage(env.client).Delete(ctx, id); err != nil {
					return env.fail(err, "Failed to delete backup")
				}
				env.done("Backup %d deleted.", id)
				return nil
			}),
		},
	)
	return cmd
}

func newBackupsListCommand(g *GlobalOptions) *cobra.Command {
	flags := &listFlags{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List backups (filters: type, status, dateRange)",
		Args:  cobra.NoArgs,
		RunE: clientCommand(g, func(ctx context.Context, env *clientEnv, args []string) error {
			page := console.NewBackupsPage(env.client)
			return listView[models.Backup, console.BackupStats]{
				title:   "Backups",
				ctrl:    page.Controller,
				headers: []string{"ID", "Backup", "Date", "Type", "Status", "Size", "Duration", "Repositories", "Initiated By"},
				row: func(b models.Backup) []string {
					return []string{
						strconv.FormatInt(b.ID, 10), b.BackupID, formatTime(&b.Date), b.Type, b.Status,
						orDash(b.Size), orDash(b.Duration), b.Repos, orDash(b.InitiatedBy),
					}
				},
				stats: func(s console.BackupStats) string {
					line := renderStats("Total", s.Total, "Completed", s.Completed, "In progress", s.InProgress, "Failed", s.Failed,
						"Storage", fmt.Sprintf("%.1f GB (%d%% of %.0f GB)", s.TotalStorageGB, s.StorageUsagePercent, console.AllocatedStorageGB),
						"Last full", orDash(s.LastFullBackupDate))
					if !s.FromServer {
						line += mutedStyle.Render("  (computed locally)")
					}
					return line
				},
			}.run(ctx, env, flags)
		}),
	}
	cmd.Flags().AddFlagSet(flags.flagSet())
	return cmd
}

func backupFields(b models.Backup) [][2]string {
	return [][2]string{
		{"ID", strconv.FormatInt(b.ID, 10)},
		{"Backup", b.BackupID},
		{"Date", formatTime(&b.Date)},
		{"Type", b.Type},
		{"Status", b.Status},
		{"Size", orDash(b.Size)},
		{"Duration", orDash(b.Duration)},
		{"Repositories", b.Repos},
		{"Initiated By", orDash(b.InitiatedBy)},
		{"Notes", orDash(b.Notes)},
		{"Logs", orDash(b.Logs)},
	}
}

func newBackupCreateCommand(g *GlobalOptions) *cobra.Command {
	var p models.BackupPayload
	var repositoryIDs []int64
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Start a backup; without --repository all repositories are covered",
		Args:  cobra.NoArgs,
		RunE: clientCommand(g, func(ctx context.Context, env *clientEnv, args []string) error {
			b, err := console.NewBackupsPage(env.client).Create(ctx, p, repositoryIDs)
			if err != nil {
				return env.fail(err, "Failed to create backup")
			}
			return env.show(b, backupFields(b))
		}),
	}
	cmd.Flags().StringVar(&p.Type, "type", models.BackupFull, "Full or Delta")
	cmd.Flags().StringVar(&p.InitiatedBy, "initiated-by", "", "Who started the backup; defaults to the logged-in account")
	cmd.Flags().StringVar(&p.Notes, "notes", "", "Free text notes")
	cmd.Flags().Int64SliceVar(&repositoryIDs, "repository", nil, "Repository ids to cover")
	return cmd
}

// filepath: internal/cli/recovery.go
package cli

import (
	"context"
	"fmt"
	"time"

	"scmdash/internal/config"
	"scmdash/internal/housekeeping"
	"scmdash/internal/logging"
	"scmdash/internal/models"
	"scmdash/internal/repository"

	"github.com/spf13/cobra"
)

func newRecoveryCommand(g *GlobalOptions) *cobra.Command {
	var dryRun, all bool
	cmd := &cobra.Command{
		Use:   "recovery",
		Short: "Fail stale backups and purge expired refresh tokens",
		Long: `Runs the offline part of housekeeping against the database without starting the HTTP server.
Backups stuck 'In Progress' longer than housekeeping.stale_after are marked Failed. With --all every
running backup is failed, which is what a crashed server leaves behind.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := initializeConfig(cmd, g, &serverFlags{})
			if err != nil {
				return err
			}
			report, err := runRecovery(cmd.Context(), cfg, dryRun, all)
			if report != nil {
				fmt.Fprintln(cmd.OutOrStdout(), report.Message)
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dryrun", false, "Only report what would be changed")
	cmd.Flags().BoolVar(&all, "all", false, "Fail every In Progress backup regardless of age")
	return cmd
}

func runRecovery(ctx context.Context, cfg *config.Config, dryRun, all bool) (*models.HousekeepingReport, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	repo, err := repository.NewRepository(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	defer repo.Close()

	if err := repo.ValidateSchema(); err != nil {
		return nil, fmt.Errorf("cannot run recovery on outdated database: %w", err)
	}

	deps := housekeeping.Dependencies{
		Store:      repo,
		StaleAfter: cfg.HousekeepingStaleAfter,
	}
	if all {
		deps.StaleAfter = time.Nanosecond
	}

	logging.Log.Info("Starting recovery process...")
	report, err := housekeeping.RunOnce(ctx, deps, dryRun)
	if err != nil {
		return report, err
	}
	logging.Log.Infof("Recovery complete. Stale backups failed: %d, tokens purged: %d", report.StaleBackupsFailed, report.TokensPurged)
	return report, nil
}

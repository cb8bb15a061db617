// filepath: internal/cli/migrate.go
package cli

import (
	"fmt"

	"scmdash/internal/config"
	"scmdash/internal/db/migrations"
	"scmdash/internal/logging"
	"scmdash/internal/repository"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

func newMigrateCommand(g *GlobalOptions) *cobra.Command {
	var cfg *config.Config
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Manage database schema versions. Use subcommands 'up', 'down', or 'status'.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = initializeConfig(cmd, g, &serverFlags{})
			return err
		},
	}

	for _, sub := range []struct{ use, short string }{
		{"up", "Migrate the database to the most recent version"},
		{"down", "Roll back the database by one version"},
		{"status", "Dump the migration status for the current DB"},
	} {
		command := sub.use
		cmd.AddCommand(&cobra.Command{
			Use:   sub.use,
			Short: sub.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigration(cfg, command)
			},
		})
	}
	return cmd
}

func runMigration(cfg *config.Config, command string) error {
	repo, err := repository.NewRepository(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer repo.Close()

	if err := migrations.Setup(); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	logging.Log.Infof("Running migration command: %s", command)

	var gooseErr error
	switch command {
	case "up":
		gooseErr = goose.Up(repo.DB, migrations.Dir)
	case "down":
		gooseErr = goose.Down(repo.DB, migrations.Dir)
	case "status":
		gooseErr = goose.Status(repo.DB, migrations.Dir)
	default:
		return fmt.Errorf("unknown migration command: %s", command)
	}
	if gooseErr != nil {
		return fmt.Errorf("migration failed: %w", gooseErr)
	}

	logging.Log.Info("Migration operation completed successfully.")
	return nil
}

// filepath: internal/cli/root.go
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Version is reported by /api/info and `scmdash --version`.
var Version = "1.0.0"

// GlobalOptions holds the flags shared by every command.
type GlobalOptions struct {
	CfgFilePath string
	LogLevel    string
	ProfilePath string
	Output      string

	out io.Writer
}

// NewRootCMD assembles the command tree.
func NewRootCMD() *cobra.Command {
	opts := &GlobalOptions{out: os.Stdout}

	rootCmd := &cobra.Command{
		Use:     "scmdash",
		Short:   "SCM infrastructure dashboard",
		Long:    "Backend and operator console for source-control repositories, users, migrations and backups.",
		Version: Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage: true,
	}
	opts.registerFlags(rootCmd)
	rootCmd.SetOut(opts.out)

	rootCmd.AddCommand(
		newServeCommand(opts),
		newMigrateCommand(opts),
		newRecoveryCommand(opts),
		newLoginCommand(opts),
		newLogoutCommand(opts),
		newUsersCommand(opts),
		newReposCommand(opts),
		newMigrationsCommand(opts),
		newBackupsCommand(opts),
		newSchedulesCommand(opts),
		newDashboardCommand(opts),
		newGitCommand(opts),
		newInventoryCommand(opts),
		newAdminCommand(opts),
	)
	return rootCmd
}

func (o *GlobalOptions) registerFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&o.CfgFilePath, "config_path", defaultConfigPath, "Path to the server configuration file. (Env: SCMDASH_CONFIG_PATH)")
	cmd.PersistentFlags().StringVar(&o.LogLevel, "log-level", "", "Logging level (debug, info, warn, error). (Env: SCMDASH_LOG_LEVEL)")
	cmd.PersistentFlags().StringVar(&o.ProfilePath, "profile", "", "Client profile file. Defaults to ~/.scmdash/client.yaml")
	cmd.PersistentFlags().StringVarP(&o.Output, "output", "o", outputTable, "Output format of client commands (table, json)")
}

// Execute runs the command selected by os.Args.
func Execute() {
	if err := NewRootCMD().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

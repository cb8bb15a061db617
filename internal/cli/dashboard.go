// filepath: internal/cli/dashboard.go
package cli

import (
	"context"
	"fmt"
	"strings"

	"scmdash/internal/console"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

func newDashboardCommand(g *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the dashboard metrics, progress and recent activity",
		Args:  cobra.NoArgs,
		RunE: clientCommand(g, func(ctx context.Context, env *clientEnv, args []string) error {
			d, err := console.LoadDashboard(ctx, env.client)
			if err != nil {
				return env.fail(err, "Failed to load dashboard")
			}
			if env.json {
				return writeJSON(env.out, d)
			}
			fmt.Fprintln(env.out, renderDashboard(d))
			return nil
		}),
	}
}

func renderDashboard(d *console.Dashboard) string {
	m, mp, bs := d.Metrics, d.MigrationProgress, d.BackupSummary

	metrics := renderTable([]string{"Metric", "Value"}, [][]string{
		{"Users", fmt.Sprintf("%d (%d active)", m.TotalUsers, m.ActiveUsers)},
		{"Repositories", fmt.Sprintf("%d (%d active)", m.TotalRepositories, m.ActiveRepositories)},
		{"Backup success rate", fmt.Sprintf("%.1f%%", m.BackupSuccessRate)},
		{"Last full backup", orDash(m.LastFullBackup)},
		{"Git migration", fmt.Sprintf("%.1f%%", m.GitMigrationProgress)},
	})

	progress := renderTable([]string{"Migration", "Repositories"}, [][]string{
		{"Completed", fmt.Sprint(mp.CompletedRepositories)},
		{"In progress", fmt.Sprint(mp.InProgressRepositories)},
		{"Not started", fmt.Sprint(mp.NotStartedRepositories)},
		{"Archived", fmt.Sprint(mp.ArchivedRepositories)},
		{"Overall", fmt.Sprintf("%s %d%%", progressBar(mp.OverallProgress, 20), mp.OverallProgress)},
	})

	backups := renderTable([]string{"Backups", "Count"}, [][]string{
		{"Completed", fmt.Sprint(bs.CompletedBackups)},
		{"In progress", fmt.Sprint(bs.InProgressBackups)},
		{"Failed", fmt.Sprint(bs.FailedBackups)},
		{"Storage", fmt.Sprintf("%.1f GB", bs.TotalStorageGB)},
		{"Next scheduled", orDash(bs.NextScheduledBackup)},
	})

	rows := make([][]string, 0, len(d.Activity))
	for _, a := range d.Activity {
		rows = append(rows, []string{a.User, a.Action, a.Resource, a.Ago})
	}
	activity := renderTable([]string{"User", "Action", "Resource", "When"}, rows)

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Dashboard"),
		lipgloss.JoinHorizontal(lipgloss.Top, metrics, " ", progress, " ", backups),
		titleStyle.Render("Recent Activity"),
		activity,
	)
}

func progressBar(percent, width int) string {
	percent = max(0, min(percent, 100))
	filled := percent * width / 100
	return strings.Repeat("█", filled) + mutedStyle.Render(strings.Repeat("░", width-filled))
}

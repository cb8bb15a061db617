// filepath: internal/cli/git.go
package cli

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"scmdash/internal/models"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

func newGitCommand(g *GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "git",
		Short: "Browse the Git hosting inventory",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "summary",
		Short: "Show users per role, repositories per department and backup completion",
		Args:  cobra.NoArgs,
		RunE: clientCommand(g, func(ctx context.Context, env *clientEnv, args []string) error {
			s, err := env.client.GitSummary(ctx)
			if err != nil {
				return env.fail(err, "Failed to load git summary")
			}
			if env.json {
				return writeJSON(env.out, s)
			}
			fmt.Fprintln(env.out, renderGitSummary(s))
			return nil
		}),
	})

	users := &cobra.Command{Use: "users", Short: "Git users"}
	users.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List Git users",
		Args:  cobra.NoArgs,
		RunE: clientCommand(g, func(ctx context.Context, env *clientEnv, args []string) error {
			list, err := env.client.ListGitUsers(ctx)
			if err != nil {
				return env.fail(err, "Failed to list git users")
			}
			if env.json {
				return writeJSON(env.out, list)
			}
			rows := make([][]string, 0, len(list))
			for _, u := range list {
				rows = append(rows, []string{strconv.FormatInt(u.ID, 10), u.EmployeeID, u.Username, orDash(u.GroupName), u.Role})
			}
			fmt.Fprintln(env.out, renderTable([]string{"ID", "Employee", "Username", "Group", "Role"}, rows))
			return nil
		}),
	})

	repos := &cobra.Command{Use: "repos", Short: "Git repositories"}
	var search string
	repoList := &cobra.Command{
		Use:   "list",
		Short: "List Git repositories",
		Args:  cobra.NoArgs,
		RunE: clientCommand(g, func(ctx context.Context, env *clientEnv, args []string) error {
			list, err := env.client.ListGitRepositories(ctx, search)
			if err != nil {
				return env.fail(err, "Failed to list git repositories")
			}
			if env.json {
				return writeJSON(env.out, list)
			}
			rows := make([][]string, 0, len(list))
			for _, r := range list {
				rows = append(rows, []string{
					strconv.FormatInt(r.ID, 10), r.ProjectName, orDash(r.Department), orDash(r.GitURL),
					orDash(r.CreatedByUsername), strconv.Itoa(len(r.Members)),
				})
			}
			fmt.Fprintln(env.out, renderTable([]string{"ID", "Project", "Department", "Git URL", "Created By", "Members"}, rows))
			return nil
		}),
	}
	repoList.Flags().StringVarP(&search, "search", "s", "", "Case-insensitive substring of the project name")
	repos.AddCommand(repoList)

	backups := &cobra.Command{Use: "backups", Short: "Git repository backups"}
	var status string
	backupList := &cobra.Command{
		Use:   "list",
		Short: "List Git backups",
		Args:  cobra.NoArgs,
		RunE: clientCommand(g, func(ctx context.Context, env *clientEnv, args []string) error {
			list, err := env.client.ListGitBackups(ctx, status)
			if err != nil {
				return env.fail(err, "Failed to list git backups")
			}
			if env.json {
				return writeJSON(env.out, list)
			}
			rows := make([][]string, 0, len(list))
			for _, b := range list {
				rows = append(rows, []string{
					strconv.FormatInt(b.ID, 10), b.RepositoryName, orDash(b.Department), b.BackupStatus, formatTime(b.LastBackupTime),
				})
			}
			fmt.Fprintln(env.out, renderTable([]string{"ID", "Repository", "Department", "Status", "Last Backup"}, rows))
			return nil
		}),
	}
	backupList.Flags().StringVar(&status, "status", "", "Only backups in this state (COMPLETE, PENDING)")
	backups.AddCommand(backupList, &cobra.Command{
		Use:   "run <repository-id>",
		Short: "Run the backup of a Git repository",
		Args:  cobra.ExactArgs(1),
		RunE: clientCommand(g, func(ctx context.Context, env *clientEnv, args []string) error {
			id, err := idArg(args)
			if err != nil {
				return err
			}
			b, err := env.client.RunGitBackup(ctx, id)
			if err != nil {
				return env.fail(err, "Failed to run git backup")
			}
			return env.show(b, [][2]string{
				{"ID", strconv.FormatInt(b.ID, 10)},
				{"Repository", b.RepositoryName},
				{"Department", orDash(b.Department)},
				{"Status", b.BackupStatus},
				{"Last Backup", formatTime(b.LastBackupTime)},
			})
		}),
	})

	cmd.AddCommand(users, repos, backups)
	return cmd
}

// countRows renders a count map in key order.
func countRows(counts map[string]int, order []string) [][]string {
	keys := order
	if keys == nil {
		keys = make([]string, 0, len(counts))
		for k := range counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
	}
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{orDash(k), strconv.Itoa(counts[k])})
	}
	return rows
}

func renderGitSummary(s *models.GitDashboardSummary) string {
	totals := renderTable([]string{"Metric", "Value"}, [][]string{
		{"Users", strconv.Itoa(s.TotalUsers)},
		{"Repositories", strconv.Itoa(s.TotalRepositories)},
		{"Backups complete", strconv.Itoa(s.TotalBackupsCompleted)},
		{"Completion", fmt.Sprintf("%s %.2f%%", progressBar(int(s.BackupCompletionRate), 20), s.BackupCompletionRate)},
	})
	roles := renderTable([]string{"Role", "Users"}, countRows(s.UsersByRole, models.GitRoles))
	depts := renderTable([]string{"Department", "Repositories"}, countRows(s.ReposByDepartment, nil))
	statuses := renderTable([]string{"Backup", "Count"}, countRows(s.BackupsByStatus, models.GitBackupStatuses))

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Git Dashboard"),
		lipgloss.JoinHorizontal(lipgloss.Top, totals, " ", roles, " ", statuses),
		titleStyle.Render("Repositories by Department"),
		strings.TrimRight(depts, "\n"),
	)
}

// filepath: internal/cli/inventory.go
package cli

import (
	"fmt"
	"strings"

	"scmdash/internal/inventory"

	"github.com/spf13/cobra"
)

// The inventory has no backend; each run starts from the seeded sample.
func newInventoryCommand(g *GlobalOptions) *cobra.Command {
	store := inventory.NewSeededStore()

	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "Browse the sample server and application inventory",
	}

	servers := &cobra.Command{Use: "servers", Short: "Servers"}
	var serverQuery string
	serverList := &cobra.Command{
		Use:   "list",
		Short: "List servers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list := store.ListServers(serverQuery)
			if g.Output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), list)
			}
			rows := make([][]string, 0, len(list))
			for _, sv := range list {
				rows = append(rows, []string{
					sv.ID[:8], sv.Name, sv.IPAddress, sv.Status, orDash(sv.Environment), orDash(sv.Region),
					strings.TrimSpace(sv.OperatingSystem + " " + sv.OSVersion),
					fmt.Sprintf("%d cores / %.0f GB", sv.Hardware.CPU.Cores, sv.Hardware.Memory.Total),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), titleStyle.Render("Servers"))
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Name", "IP", "Status", "Env", "Region", "OS", "Hardware"}, rows))
			return nil
		},
	}
	serverList.Flags().StringVarP(&serverQuery, "search", "s", "", "Search name, IP, environment, region or OS")
	servers.AddCommand(serverList, &cobra.Command{
		Use:   "apps <server-id>",
		Short: "List the applications deployed on a server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sv, err := findServer(store, args[0])
			if err != nil {
				return err
			}
			apps, err := store.ApplicationsOnServer(sv.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), titleStyle.Render("Applications on "+sv.Name))
			return printApps(cmd, g, store, apps)
		},
	})

	apps := &cobra.Command{Use: "apps", Aliases: []string{"applications"}, Short: "Applications"}
	var appQuery string
	appList := &cobra.Command{
		Use:   "list",
		Short: "List applications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if g.Output != outputJSON {
				fmt.Fprintln(cmd.OutOrStdout(), titleStyle.Render("Applications"))
			}
			return printApps(cmd, g, store, store.ListApplications(appQuery))
		},
	}
	appList.Flags().StringVarP(&appQuery, "search", "s", "", "Search name, type, owner or tech stack")
	apps.AddCommand(appList)

	summary := &cobra.Command{
		Use:   "summary",
		Short: "Count servers, applications and issues",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := store.Summary()
			if g.Output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), s)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderStats(
				"Servers", fmt.Sprintf("%d (%d running)", s.Servers, s.RunningServers),
				"Applications", fmt.Sprintf("%d (%d healthy)", s.Applications, s.HealthyApps),
				"Issues", s.Issues))
			return nil
		},
	}

	cmd.AddCommand(servers, apps, summary)
	return cmd
}

// findServer accepts a full id, an id prefix as printed by `list`, or a name.
func findServer(store *inventory.Store, ref string) (inventory.Server, error) {
	if sv, err := store.GetServer(ref); err == nil {
		return sv, nil
	}
	for _, sv := range store.ListServers("") {
		if strings.HasPrefix(sv.ID, ref) || sv.Name == ref {
			return sv, nil
		}
	}
	return inventory.Server{}, fmt.Errorf("server %q: %w", ref, inventory.ErrNotFound)
}

func printApps(cmd *cobra.Command, g *GlobalOptions, store *inventory.Store, list []inventory.Application) error {
	if g.Output == outputJSON {
		return writeJSON(cmd.OutOrStdout(), list)
	}
	rows := make([][]string, 0, len(list))
	for _, a := range list {
		hosts := make([]string, 0, len(a.DeployedOn))
		for _, id := range a.DeployedOn {
			if sv, err := store.GetServer(id); err == nil {
				hosts = append(hosts, sv.Name)
			}
		}
		rows = append(rows, []string{
			a.ID[:8], a.Name, orDash(a.Type), orDash(a.Version), a.Status, orDash(a.Owner),
			orDash(strings.Join(hosts, ", ")), orDash(strings.Join(inventory.SortedEnv(a), ", ")),
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Name", "Type", "Version", "Status", "Owner", "Servers", "Env"}, rows))
	return nil
}

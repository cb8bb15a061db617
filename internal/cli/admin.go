// filepath: internal/cli/admin.go
package cli

import (
	"context"
	"fmt"
	"strconv"

	"scmdash/internal/client"
	"scmdash/internal/models"

	"github.com/spf13/cobra"
)

func newAdminCommand(g *GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Operator accounts and maintenance (admin accounts only)",
	}
	accounts := &cobra.Command{Use: "accounts", Short: "Manage the accounts that can log in"}
	accounts.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List accounts",
			Args:  cobra.NoArgs,
			RunE: clientCommand(g, func(ctx context.Context, env *clientEnv, args []string) error {
				list, err := env.client.ListAccounts(ctx)
				if err != nil {
					return env.fail(err, "Failed to load accounts")
				}
				if env.json {
					return writeJSON(env.out, list)
				}
				rows := make([][]string, 0, len(list))
				for _, a := range list {
					rows = append(rows, []string{strconv.FormatInt(a.ID, 10), a.Username, yesNo(a.CanView), yesNo(a.CanEdit), yesNo(a.IsAdmin)})
				}
				fmt.Fprintln(env.out, renderTable([]string{"ID", "Username", "View", "Edit", "Admin"}, rows))
				return nil
			}),
		},
		newAccountWriteCommand(g, "create"),
		newAccountWriteCommand(g, "update <id>"),
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete an account; the last admin cannot be removed",
			Args:  cobra.ExactArgs(1),
			RunE: clientCommand(g, func(ctx context.Context, env *clientEnv, args []string) error {
				id, err := idArg(args)
				if err != nil {
					return err
				}
				if err := env.client.DeleteAccount(ctx, id); err != nil {
					return env.fail(err, "Failed to delete account")
				}
				env.done("Account %d deleted.", id)
				return nil
			}),
		},
	)

	var dryRun bool
	housekeeping := &cobra.Command{
		Use:   "housekeeping",
		Short: "Run the housekeeping tasks on the server now",
		Args:  cobra.NoArgs,
		RunE: clientCommand(g, func(ctx context.Context, env *clientEnv, args []string) error {
			rep, err := env.client.TriggerHousekeeping(ctx, dryRun)
			if err != nil {
				return env.fail(err, "Housekeeping failed")
			}
			if env.json {
				return writeJSON(env.out, rep)
			}
			env.done("%s", rep.Message)
			return nil
		}),
	}
	housekeeping.Flags().BoolVar(&dryRun, "dryrun", false, "Only report what would be changed")

	superset := &cobra.Command{
		Use:   "superset-token <dashboard-id>",
		Short: "Fetch a Superset guest token for an embedded dashboard",
		Args:  cobra.ExactArgs(1),
		RunE: clientCommand(g, func(ctx context.Context, env *clientEnv, args []string) error {
			token, err := env.client.SupersetGuestToken(ctx, args[0])
			if err != nil {
				return env.fail(err, "Failed to get guest token")
			}
			fmt.Fprintln(env.out, token)
			return nil
		}),
	}

	cmd.AddCommand(accounts, housekeeping, superset)
	return cmd
}

func newAccountWriteCommand(g *GlobalOptions, use string) *cobra.Command {
	var username, password string
	var canView, canEdit, isAdmin bool
	creating := use == "create"

	var cmd *cobra.Command
	cmd = &cobra.Command{
		Use:   use,
		Short: "Create or update an account; unset permission flags keep their value on update",
		Args:  cobra.RangeArgs(0, 1),
		RunE: clientCommand(g, func(ctx context.Context, env *clientEnv, args []string) error {
			req := client.AccountRequest{Username: username}
			if password != "" {
				req.Password = &password
			}
			flag := func(name string, v *bool) *bool {
				if creating || cmd.Flags().Changed(name) {
					return v
				}
				return nil
			}
			req.CanView = flag("can-view", &canView)
			req.CanEdit = flag("can-edit", &canEdit)
			req.IsAdmin = flag("admin", &isAdmin)

			var a *models.Account
			var err error
			if creating {
				a, err = env.client.CreateAccount(ctx, req)
			} else {
				var id int64
				if id, err = idArg(args); err != nil {
					return err
				}
				a, err = env.client.UpdateAccount(ctx, id, req)
			}
			if err != nil {
				return env.fail(err, "Failed to save account")
			}
			return env.show(a, [][2]string{
				{"ID", strconv.FormatInt(a.ID, 10)},
				{"Username", a.Username},
				{"View", yesNo(a.CanView)},
				{"Edit", yesNo(a.CanEdit)},
				{"Admin", yesNo(a.IsAdmin)},
			})
		}),
	}
	if creating {
		cmd.Flags().StringVar(&username, "username", "", "Account username")
	}
	cmd.Flags().StringVar(&password, "password", "", "Password; on update, a new password")
	cmd.Flags().BoolVar(&canView, "can-view", true, "May read records")
	cmd.Flags().BoolVar(&canEdit, "can-edit", false, "May change records")
	cmd.Flags().BoolVar(&isAdmin, "admin", false, "May manage accounts and run housekeeping")
	return cmd
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

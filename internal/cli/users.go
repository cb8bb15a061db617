// filepath: internal/cli/users.go
package cli

import (
	"context"
	"fmt"
	"strconv"

	"scmdash/internal/console"
	"scmdash/internal/models"

	"github.com/spf13/cobra"
)

// setIfChanged copies v into dst when the flag was given on the command line.
func setIfChanged[V any](cmd *cobra.Command, name string, dst *V, v V) {
	if cmd.Flags().Changed(name) {
		*dst = v
	}
}

func newUsersCommand(g *GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "Manage SCM users",
	}
	cmd.AddCommand(
		newUsersListCommand(g),
		newUserCreateCommand(g),
		newUserUpdateCommand(g),
		&cobra.Command{
			Use:   "status <id> <Active|Inactive|Locked>",
			Short: "Change a user's status",
			Args:  cobra.ExactArgs(2),
			RunE: clientCommand(g, func(ctx context.Context, env *clientEnv, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				u, err := console.NewUsersPage(env.client).SetStatus(ctx, id, args[1])
				if err != nil {
					return env.fail(err, "Failed to update user status")
				}
				env.done("User %s is now %s.", u.Username, u.Status)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a user",
			Args:  cobra.ExactArgs(1),
			RunE: clientCommand(g, func(ctx context.Context, env *clientEnv, args []string) error {
				id, err := idArg(args)
				if err != nil {
					return err
				}
				if err := console.NewUsersPage(env.client).Delete(ctx, id); err != nil {
					return env.fail(err, "Failed to delete user")
				}
				env.done("User %d deleted.", id)
				return nil
			}),
		},
	)
	return cmd
}

func newUsersListCommand(g *GlobalOptions) *cobra.Command {
	flags := &listFlags{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users (filters: role, status, group)",
		Args:  cobra.NoArgs,
		RunE: clientCommand(g, func(ctx context.Context, env *clientEnv, args []string) error {
			page := console.NewUsersPage(env.client)
			return listView[models.User, console.UserStats]{
				title:   "Users",
				ctrl:    page.Controller,
				headers: []string{"ID", "Username", "Full Name", "Email", "Role", "Status", "Group", "Last Activity"},
				row: func(u models.User) []string {
					return []string{strconv.FormatInt(u.ID, 10), u.Username, u.FullName, u.Email, u.Role, u.Status, orDash(u.Group), formatTime(u.LastActivity)}
				},
				stats: func(s console.UserStats) string {
					return renderStats("Total", s.Total, "Active", s.Active, "Inactive", s.Inactive, "Locked", s.Locked, "Admins", s.Admins)
				},
			}.run(ctx, env, flags)
		}),
	}
	cmd.Flags().AddFlagSet(flags.flagSet())
	return cmd
}

// userForm holds the create/update flags of a user.
type userForm struct {
	p models.UserPayload
}

func (f *userForm) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.p.Username, "username", "", "Login name")
	cmd.Flags().StringVar(&f.p.FullName, "full-name", "", "Full name")
	cmd.Flags().StringVar(&f.p.Email, "email", "", "E-mail address")
	cmd.Flags().StringVar(&f.p.Role, "role", models.RoleDeveloper, "Admin, Developer or ReadOnly")
	cmd.Flags().StringVar(&f.p.Status, "status", models.UserActive, "Active, Inactive or Locked")
	cmd.Flags().StringVar(&f.p.Group, "group", "", "Team or department")
}

// over lays the given flags over base.
func (f *userForm) over(cmd *cobra.Command, base models.UserPayload) models.UserPayload {
	setIfChanged(cmd, "username", &base.Username, f.p.Username)
	setIfChanged(cmd, "full-name", &base.FullName, f.p.FullName)
	setIfChanged(cmd, "email", &base.Email, f.p.Email)
	setIfChanged(cmd, "role", &base.Role, f.p.Role)
	setIfChanged(cmd, "status", &base.Status, f.p.Status)
	setIfChanged(cmd, "group", &base.Group, f.p.Group)
	return base
}

func userFields(u models.User) [][2]string {
	return [][2]string{
		{"ID", strconv.FormatInt(u.ID, 10)},
		{"Username", u.Username},
		{"Full Name", u.FullName},
		{"Email", u.Email},
		{"Role", u.Role},
		{"Status", u.Status},
		{"Group", orDash(u.Group)},
		{"Created", formatTime(u.CreatedAt)},
	}
}

func newUserCreateCommand(g *GlobalOptions) *cobra.Command {
	form := &userForm{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Args:  cobra.NoArgs,
		RunE: clientCommand(g, func(ctx context.Context, env *clientEnv, args []string) error {
			u, err := console.NewUsersPage(env.client).Create(ctx, form.p)
			if err != nil {
				return env.fail(err, "Failed to create user")
			}
			return env.show(u, userFields(u))
		}),
	}
	form.register(cmd)
	return cmd
}

func newUserUpdateCommand(g *GlobalOptions) *cobra.Command {
	form := &userForm{}
	var cmd *cobra.Command
	cmd = &cobra.Command{
		Use:   "update <id>",
		Short: "Update a user; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: clientCommand(g, func(ctx context.Context, env *clientEnv, args []string) error {
			id, err := idArg(args)
			if err != nil {
				return err
			}
			current, err := env.client.GetUser(ctx, id)
			if err != nil {
				return env.fail(err, fmt.Sprintf("Failed to load user %d", id))
			}
			payload := form.over(cmd, models.UserPayload{
				Username:  current.Username,
				FullName:  current.FullName,
				Email:     current.Email,
				Role:      current.Role,
				Status:    current.Status,
				Group:     current.Group,
				Initials:  current.Initials,
				ColorCode: current.ColorCode,
			})
			u, err := console.NewUsersPage(env.client).Update(ctx, id, payload)
			if err != nil {
				return env.fail(err, "Failed to update user")
			}
			return env.show(u, userFields(u))
		}),
	}
	form.register(cmd)
	return cmd
}

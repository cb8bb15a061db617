// filepath: internal/cli/auth.go
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newLoginCommand(g *GlobalOptions) *cobra.Command {
	var server, username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to a scmdash server and store the session",
		Long: `Exchanges username and password for a token pair. The session is written to the
profile's session_file and reused by every other client command until logout.
Without --password the password is read from SCMDASH_CLIENT_PASSWORD or stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := g.newClientEnv(cmd, server)
			if err != nil {
				return err
			}
			if username == "" {
				return errors.New("--username is required")
			}
			if password == "" {
				password = os.Getenv("SCMDASH_CLIENT_PASSWORD")
			}
			if password == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			session, err := env.client.Login(ctx, username, password)
			if err != nil {
				return env.fail(err, "Login failed")
			}
			role := "operator"
			if session.IsAdmin {
				role = "admin"
			}
			env.done("Logged in to %s as %s (%s).", env.client.BaseURL(), session.Username, role)
			return nil
		},
	}
	cmd.Flags().StringVar(&server, "server", "", "Server base URL, e.g. http://localhost:8080")
	cmd.Flags().StringVarP(&username, "username", "u", "", "Account username")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	return cmd
}

func newLogoutCommand(g *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the refresh token and forget the session",
		Args:  cobra.NoArgs,
		RunE: clientCommand(g, func(ctx context.Context, env *clientEnv, args []string) error {
			// The local session is cleared even when the server call fails.
			if err := env.client.Logout(ctx); err != nil {
				env.done("Logged out locally; the server could not be reached: %s", env.fail(err, "logout failed"))
				return nil
			}
			env.done("Logged out.")
			return nil
		}),
	}
}

// filepath: internal/cli/profile.go
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"scmdash/internal/client"
	"scmdash/internal/listview"
	"scmdash/internal/logging"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Client profile keys.
const (
	keyBaseURL     = "base_url"
	keyTimeout     = "timeout"
	keySessionFile = "session_file"

	defaultBaseURL = "http://localhost:8080"
)

func profileDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".scmdash"
	}
	return filepath.Join(home, ".scmdash")
}

// loadProfile reads the client profile. A missing file is not an error;
// SCMDASH_CLIENT_* variables override file values.
func loadProfile(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(keyTimeout, client.DefaultTimeout)
	v.SetDefault(keySessionFile, filepath.Join(profileDir(), "session.json"))
	v.SetEnvPrefix("SCMDASH_CLIENT")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("client")
		v.SetConfigType("yaml")
		v.AddConfigPath(profileDir())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read client profile: %w", err)
		}
	}
	return v, nil
}

// clientEnv is what every client command works with.
type clientEnv struct {
	client *client.Client
	out    io.Writer
	json   bool
}

// newClientEnv builds the API client from the profile. The base URL falls
// back to the one recorded at login, then to localhost.
func (g *GlobalOptions) newClientEnv(cmd *cobra.Command, baseURL string) (*clientEnv, error) {
	// Client output is for humans; keep the JSON logs off stdout.
	logging.Log.SetOutput(cmd.ErrOrStderr())
	if g.LogLevel != "" {
		logging.Init(g.LogLevel)
	} else {
		logging.Init("warn")
	}

	if g.Output != outputTable && g.Output != outputJSON {
		return nil, fmt.Errorf("unknown output format %q (use %s or %s)", g.Output, outputTable, outputJSON)
	}

	profile, err := loadProfile(g.ProfilePath)
	if err != nil {
		return nil, err
	}
	store := client.NewFileSessionStore(profile.GetString(keySessionFile))

	if baseURL == "" {
		baseURL = profile.GetString(keyBaseURL)
	}
	if baseURL == "" {
		if s, err := store.Load(); err == nil && s != nil {
			baseURL = s.BaseURL
		}
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	c := client.New(client.Config{BaseURL: baseURL, Timeout: profile.GetDuration(keyTimeout)}, store)
	return &clientEnv{client: c, out: cmd.OutOrStdout(), json: g.Output == outputJSON}, nil
}

// fail turns a client error into the message shown to the operator.
func (e *clientEnv) fail(err error, fallback string) error {
	msg := client.Message(err, fallback)
	var mutErr *listview.MutationError
	if errors.As(err, &mutErr) {
		msg = mutErr.Message
	}
	if errors.Is(err, client.ErrUnauthorized) {
		msg += " Run 'scmdash login' to start a new session."
	}
	return errors.New(msg)
}

// clientCommand wraps a RunE that needs an API client.
func clientCommand(g *GlobalOptions, run func(ctx context.Context, env *clientEnv, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		env, err := g.newClientEnv(cmd, "")
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return run(ctx, env, args)
	}
}

// listFlags are shared by every `list` subcommand.
type listFlags struct {
	tab     string
	filters []string
	search  string
	page    int
}

func (l *listFlags) flagSet() *pflag.FlagSet {
	set := pflag.NewFlagSet("list", pflag.ContinueOnError)
	set.StringVar(&l.tab, "tab", "all", "Tab to show")
	set.StringArrayVarP(&l.filters, "filter", "f", nil, "Filter as key=value; repeatable")
	set.StringVarP(&l.search, "search", "s", "", "Case-insensitive search text")
	set.IntVarP(&l.page, "page", "p", 1, "Page number")
	return set
}

// narrower is the part of a list controller the flags drive.
type narrower interface {
	SetTab(key string)
	SetFilter(key, value string)
	SetQuery(q string)
	GoToPage(n int) bool
	Pagination() listview.Pagination
}

// apply sets tab, filters and query, in that order, then moves to the page.
func (l *listFlags) apply(c narrower) error {
	c.SetTab(l.tab)
	for _, f := range l.filters {
		key, value, ok := strings.Cut(f, "=")
		if !ok || key == "" {
			return fmt.Errorf("invalid filter %q, expected key=value", f)
		}
		c.SetFilter(key, value)
	}
	c.SetQuery(l.search)
	if l.page != 1 && !c.GoToPage(l.page) {
		return fmt.Errorf("page %d is out of range (1-%d)", l.page, max(1, c.Pagination().TotalPages))
	}
	return nil
}

// listView is a loaded page ready for rendering.
type listView[T any, S any] struct {
	title   string
	ctrl    *listview.Controller[T, S]
	headers []string
	row     func(T) []string
	stats   func(S) string
}

func (v listView[T, S]) run(ctx context.Context, env *clientEnv, flags *listFlags) error {
	if err := v.ctrl.Load(ctx); err != nil {
		return env.fail(err, "Failed to load "+strings.ToLower(v.title))
	}
	if err := flags.apply(v.ctrl); err != nil {
		return err
	}

	page := v.ctrl.Page()
	if env.json {
		return writeJSON(env.out, struct {
			Items      []T                 `json:"items"`
			Pagination listview.Pagination `json:"pagination"`
			Stats      S                   `json:"stats"`
		}{page, v.ctrl.Pagination(), v.ctrl.Stats()})
	}

	rows := make([][]string, 0, len(page))
	for _, item := range page {
		rows = append(rows, v.row(item))
	}
	fmt.Fprintln(env.out, titleStyle.Render(v.title))
	if v.stats != nil {
		fmt.Fprintln(env.out, v.stats(v.ctrl.Stats()))
	}
	fmt.Fprintln(env.out, renderTable(v.headers, rows))
	fmt.Fprintln(env.out, renderPager(v.ctrl.Pagination()))
	return nil
}

// show prints one record, as JSON or as a two-column table.
func (e *clientEnv) show(v any, fields [][2]string) error {
	if e.json {
		return writeJSON(e.out, v)
	}
	rows := make([][]string, 0, len(fields))
	for _, f := range fields {
		rows = append(rows, []string{f[0], f[1]})
	}
	fmt.Fprintln(e.out, renderTable([]string{"Field", "Value"}, rows))
	return nil
}

func (e *clientEnv) done(format string, args ...any) {
	if !e.json {
		fmt.Fprintf(e.out, format+"\n", args...)
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// idArg parses the single positional id argument.
func idArg(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected exactly one id")
	}
	return parseID(args[0])
}

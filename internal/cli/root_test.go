// filepath: internal/cli/root_test.go
package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"scmdash/internal/client"
	"scmdash/internal/config"
	"scmdash/internal/console"
	"scmdash/internal/listview"
	"scmdash/internal/models"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServeTestCmd() (*cobra.Command, *serverFlags) {
	cmd := &cobra.Command{}
	f := &serverFlags{}
	f.register(cmd)
	return cmd, f
}

func TestConfigPrecedence(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nonexistent.toml")

	t.Run("Defaults", func(t *testing.T) {
		cmd, f := newServeTestCmd()
		cfg, err := initializeConfig(cmd, &GlobalOptions{CfgFilePath: missing}, f)
		require.NoError(t, err)

		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, "info", cfg.Logging.Level)
		assert.Equal(t, defaultDatabasePath, cfg.Database.Path)
		assert.Equal(t, int64(1<<20), cfg.MaxBodySizeBytes)
	})

	t.Run("Environment Overrides Defaults", func(t *testing.T) {
		t.Setenv("SCMDASH_PORT", "9090")
		t.Setenv("SCMDASH_LOG_LEVEL", "warn")
		t.Setenv("SCMDASH_SEED", "true")

		cmd, f := newServeTestCmd()
		cfg, err := initializeConfig(cmd, &GlobalOptions{CfgFilePath: missing}, f)
		require.NoError(t, err)

		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, "warn", cfg.Logging.Level)
		assert.True(t, cfg.SeedSampleData)
	})

	t.Run("Flags Override Environment", func(t *testing.T) {
		t.Setenv("SCMDASH_PORT", "9090")
		t.Setenv("SCMDASH_AUDIT_ENABLED", "true")

		cmd, f := newServeTestCmd()
		require.NoError(t, cmd.Flags().Set("port", "7070"))
		require.NoError(t, cmd.Flags().Set("audit-enabled", "false"))

		cfg, err := initializeConfig(cmd, &GlobalOptions{CfgFilePath: missing, LogLevel: "debug"}, f)
		require.NoError(t, err)

		assert.Equal(t, 7070, cfg.Server.Port)
		assert.False(t, cfg.Logging.AuditEnabled)
		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("Config File Loading", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		content := []byte(`
[server]
port = 6060
max_body_size = "2MB"
[logging]
level = "error"
[housekeeping]
stale_after = "1d"
`)
		require.NoError(t, os.WriteFile(path, content, 0o644))

		cmd, f := newServeTestCmd()
		cfg, err := initializeConfig(cmd, &GlobalOptions{CfgFilePath: path}, f)
		require.NoError(t, err)

		assert.Equal(t, 6060, cfg.Server.Port)
		assert.Equal(t, "error", cfg.Logging.Level)
		assert.Equal(t, int64(2<<20), cfg.MaxBodySizeBytes)
		assert.Equal(t, "1d", cfg.Housekeeping.StaleAfter)
	})

	t.Run("Config Path From Environment", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "env.toml")
		require.NoError(t, os.WriteFile(path, []byte("[server]\nport = 5050\n"), 0o644))
		t.Setenv("SCMDASH_CONFIG_PATH", path)

		cmd, f := newServeTestCmd()
		g := &GlobalOptions{CfgFilePath: defaultConfigPath}
		cfg, err := initializeConfig(cmd, g, f)
		require.NoError(t, err)
		assert.Equal(t, 5050, cfg.Server.Port)
		assert.Equal(t, path, g.CfgFilePath)
	})

	t.Run("Invalid Size", func(t *testing.T) {
		cmd, f := newServeTestCmd()
		require.NoError(t, cmd.Flags().Set("max-body-size", "lots"))
		_, err := initializeConfig(cmd, &GlobalOptions{CfgFilePath: missing}, f)
		assert.ErrorContains(t, err, "configuration error")
	})
}

func TestApplyOverrides(t *testing.T) {
	c := &config.Config{
		Server:  config.ServerConfig{Port: 8080},
		Logging: config.LoggingConfig{Level: "info"},
	}
	t.Setenv("SCMDASH_INIT_CONFIG", "init.toml")

	cmd, f := newServeTestCmd()
	require.NoError(t, cmd.Flags().Set("port", "9999"))
	require.NoError(t, cmd.Flags().Set("reset_pw", "true"))
	require.NoError(t, cmd.Flags().Set("jwt-secret", "s3cret"))

	applyOverrides(c, cmd, &GlobalOptions{LogLevel: "debug"}, f)

	assert.Equal(t, 9999, c.Server.Port)
	assert.Equal(t, "debug", c.Logging.Level)
	assert.True(t, c.ResetAdminPassword)
	assert.Equal(t, "s3cret", c.JWTSecret)
	assert.Equal(t, "init.toml", f.initConfig)
	assert.Equal(t, 5, c.JWT.AccessDurationMin)
	assert.Equal(t, 24, c.JWT.RefreshDurationHours)
}

func TestEnsureJWTSecret(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := &config.Config{}
	require.NoError(t, ensureJWTSecret(cfg, path))
	require.NotEmpty(t, cfg.JWTSecret)

	saved, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.JWTSecret, saved.JWT.Secret, "a generated secret is persisted")

	again := &config.Config{JWT: config.JWTConfig{Secret: saved.JWT.Secret}}
	require.NoError(t, ensureJWTSecret(again, path))
	assert.Equal(t, cfg.JWTSecret, again.JWTSecret)

	explicit := &config.Config{JWTSecret: "from-flag", JWT: config.JWTConfig{Secret: "from-file"}}
	require.NoError(t, ensureJWTSecret(explicit, path))
	assert.Equal(t, "from-flag", explicit.JWTSecret)
}

type recordingNarrower struct {
	tab     string
	filters map[string]string
	query   string
	page    int
	total   int
}

func (r *recordingNarrower) SetTab(key string) { r.tab = key; r.page = 1 }
func (r *recordingNarrower) SetFilter(key, value string) {
	if r.filters == nil {
		r.filters = map[string]string{}
	}
	r.filters[key] = value
	r.page = 1
}
func (r *recordingNarrower) SetQuery(q string) { r.query = q; r.page = 1 }
func (r *recordingNarrower) GoToPage(n int) bool {
	if n < 1 || n > r.total {
		return false
	}
	r.page = n
	return true
}
func (r *recordingNarrower) Pagination() listview.Pagination {
	return listview.Pagination{Page: r.page, TotalPages: r.total}
}

func TestListFlagsApply(t *testing.T) {
	lf := &listFlags{}
	require.NoError(t, lf.flagSet().Parse([]string{"--tab", "archived", "-f", "member=Alice Liddell", "--filter", "backupStatus=Failed", "-s", "alpha", "-p", "2"}))

	n := &recordingNarrower{total: 3}
	require.NoError(t, lf.apply(n))
	assert.Equal(t, "archived", n.tab)
	assert.Equal(t, map[string]string{"member": "Alice Liddell", "backupStatus": "Failed"}, n.filters)
	assert.Equal(t, "alpha", n.query)
	assert.Equal(t, 2, n.page, "the page is applied after filtering resets it")

	lf.page = 7
	assert.ErrorContains(t, lf.apply(n), "page 7 is out of range (1-3)")

	lf.page = 1
	lf.filters = []string{"role"}
	assert.ErrorContains(t, lf.apply(n), "expected key=value")
}

func TestRenderPager(t *testing.T) {
	p := listview.Pagination{Page: 2, PageSize: 5, TotalPages: 3, TotalItems: 12, Window: listview.PageWindow(2, 3)}
	out := renderPager(p)
	assert.Contains(t, out, "Showing 6-10 of 12")
	assert.Contains(t, out, "1")
	assert.Contains(t, out, "3")

	assert.Contains(t, renderPager(listview.Pagination{Page: 1, PageSize: 5, TotalPages: 1}), "Showing 0 of 0")
}

func TestRenderTable(t *testing.T) {
	out := renderTable([]string{"ID", "Name"}, [][]string{{"1", "project-alpha"}})
	assert.Contains(t, out, "Name")
	assert.Contains(t, out, "project-alpha")
	assert.Contains(t, renderTable([]string{"ID"}, nil), "No records found.")
}

func TestCommandTree(t *testing.T) {
	root := NewRootCMD()
	for _, path := range [][]string{
		{"serve"}, {"migrate", "up"}, {"migrate", "status"}, {"recovery"},
		{"login"}, {"logout"}, {"dashboard"},
		{"users", "list"}, {"users", "status"}, {"repos", "members"}, {"repos", "migration-status"},
		{"migrations", "start"}, {"migrations", "pause"}, {"migrations", "complete"}, {"migrations", "retry"},
		{"backups", "retry"}, {"backups", "last-full"}, {"schedules", "toggle"}, {"schedules", "next"},
		{"inventory", "servers", "list"}, {"inventory", "apps", "list"}, {"admin", "accounts", "list"},
		{"git", "summary"}, {"git", "users", "list"}, {"git", "repos", "list"}, {"git", "backups", "run"},
	} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.NotEqual(t, root, cmd, path)
	}
}

// writeProfile points the client at baseURL with a stored session.
func writeProfile(t *testing.T, baseURL string) string {
	t.Helper()
	dir := t.TempDir()
	sessionFile := filepath.Join(dir, "session.json")
	require.NoError(t, client.NewFileSessionStore(sessionFile).Save(&client.Session{
		Username: "admin", AccessToken: "access", RefreshToken: "refresh", IsAdmin: true,
	}))
	profile := filepath.Join(dir, "client.yaml")
	body := "base_url: " + baseURL + "\nsession_file: " + sessionFile + "\n"
	require.NoError(t, os.WriteFile(profile, []byte(body), 0o600))
	return profile
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCMD()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestUsersListCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/svn/users", r.URL.Path)
		assert.Equal(t, "Bearer access", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[
			{"id":1,"username":"alice","fullName":"Alice Liddell","email":"alice@example.com","role":"Admin","status":"Active","group":"Engineering"},
			{"id":2,"username":"bob","fullName":"Bob Builder","email":"bob@example.com","role":"Developer","status":"Locked","group":"QA"}
		]}`))
	}))
	defer srv.Close()
	profile := writeProfile(t, srv.URL)

	out, err := run(t, "--profile", profile, "-o", "json", "users", "list", "--search", "ALI")
	require.NoError(t, err)

	var got struct {
		Items []models.User
		Stats console.UserStats
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Items, 1)
	assert.Equal(t, "alice", got.Items[0].Username)
	assert.Equal(t, 2, got.Stats.Total, "statistics cover the whole collection")
	assert.Equal(t, 1, got.Stats.Locked)

	out, err = run(t, "--profile", profile, "users", "list", "--filter", "status=Locked")
	require.NoError(t, err)
	assert.Contains(t, out, "bob")
	assert.NotContains(t, out, "alice@example.com")
}

func TestGitCommands(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/git/dashboard/summary":
			_, _ = w.Write([]byte(`{"data":{"totalUsers":2,"totalRepositories":3,"totalBackupsCompleted":1,"backupCompletionRate":33.33,
				"usersByRole":{"DEVELOPER":2,"REVIEWER":0,"TESTER":0,"ADMIN":0},"reposByDepartment":{"Finance":1,"Engineering":2},
				"backupsByStatus":{"COMPLETE":1,"PENDING":0}}}`))
		case "/api/git/repositories/search":
			assert.Equal(t, "core", r.URL.Query().Get("query"))
			_, _ = w.Write([]byte(`{"data":[{"id":1,"projectName":"core-api","department":"Engineering","members":["E1"]}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"not found"}`))
		}
	}))
	defer srv.Close()
	profile := writeProfile(t, srv.URL)

	out, err := run(t, "--profile", profile, "git", "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "33.33%")
	assert.Contains(t, out, "Engineering")

	out, err = run(t, "--profile", profile, "-o", "json", "git", "repos", "list", "--search", "core")
	require.NoError(t, err)
	var repos []models.GitRepository
	require.NoError(t, json.Unmarshal([]byte(out), &repos))
	require.Len(t, repos, 1)
	assert.Equal(t, "core-api", repos[0].ProjectName)
}

func TestClientCommandErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"forbidden"}`))
	}))
	defer srv.Close()
	profile := writeProfile(t, srv.URL)

	_, err := run(t, "--profile", profile, "users", "delete", "3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), client.MsgForbidden)

	_, err = run(t, "--profile", profile, "-o", "yaml", "users", "list")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestMigrateAndRecovery(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SCMDASH_DATABASE_PATH", filepath.Join(dir, "scmdash.db"))
	cfgPath := filepath.Join(dir, "config.toml")

	_, err := run(t, "--config_path", cfgPath, "recovery")
	assert.ErrorContains(t, err, "outdated", "recovery refuses an unmigrated database")

	_, err = run(t, "--config_path", cfgPath, "migrate", "up")
	require.NoError(t, err)

	out, err := run(t, "--config_path", cfgPath, "recovery", "--dryrun", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "Housekeeping dry run complete.")
}

func TestInventoryCommands(t *testing.T) {
	out, err := run(t, "-o", "json", "inventory", "servers", "list")
	require.NoError(t, err)
	var servers []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &servers))
	assert.Len(t, servers, 3)

	out, err = run(t, "inventory", "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "Servers")

	_, err = run(t, "inventory", "servers", "apps", "no-such-server")
	assert.ErrorContains(t, err, "not found")
}

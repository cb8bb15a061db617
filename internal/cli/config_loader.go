// filepath: internal/cli/config_loader.go
package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"scmdash/internal/config"
	"scmdash/internal/logging"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

const (
	defaultConfigPath   = "config.toml"
	defaultDatabasePath = "scmdash.db"
	envPrefix           = "SCMDASH_"
)

// serverFlags are the flags of `scmdash serve`. The maintenance commands
// load the same configuration with all of them unset.
type serverFlags struct {
	password      string
	port          int
	resetPassword bool
	jwtSecret     string
	maxBodySize   string
	initConfig    string
	seed          bool
	auditEnabled  bool
}

func (f *serverFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.password, "password", "", "Password for the 'admin' account. (Env: SCMDASH_PASSWORD)")
	cmd.Flags().IntVar(&f.port, "port", 0, "Port for the HTTP server. (Env: SCMDASH_PORT)")
	cmd.Flags().BoolVar(&f.resetPassword, "reset_pw", false, "Reset the admin password on startup. (Env: SCMDASH_RESET_PW=true)")
	cmd.Flags().StringVar(&f.jwtSecret, "jwt-secret", "", "Secret key for signing JWTs. (Env: SCMDASH_JWT_SECRET)")
	cmd.Flags().StringVar(&f.maxBodySize, "max-body-size", "", "Max request body size (e.g. '1MB'). (Env: SCMDASH_MAX_BODY_SIZE)")
	cmd.Flags().StringVar(&f.initConfig, "init_config", "", "TOML file for one-time initialization of accounts and records. (Env: SCMDASH_INIT_CONFIG)")
	cmd.Flags().BoolVar(&f.seed, "seed", false, "Load the bundled sample data into an empty database. (Env: SCMDASH_SEED=true)")
	cmd.Flags().BoolVar(&f.auditEnabled, "audit-enabled", false, "Enable audit logging. (Env: SCMDASH_AUDIT_ENABLED=true)")
}

// initializeConfig loads the file, applies env and flag overrides and
// configures logging.
func initializeConfig(cmd *cobra.Command, g *GlobalOptions, f *serverFlags) (*config.Config, error) {
	if envPath := os.Getenv(envPrefix + "CONFIG_PATH"); envPath != "" && !cmd.Flags().Changed("config_path") {
		g.CfgFilePath = envPath
	}
	if g.CfgFilePath == "" {
		g.CfgFilePath = defaultConfigPath
	}

	cfg, err := config.LoadConfig(g.CfgFilePath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load configuration from %s: %w", g.CfgFilePath, err)
		}
		// Missing file: defaults plus env and flags.
		cfg = &config.Config{}
	}

	applyOverrides(cfg, cmd, g, f)

	if err := cfg.ParseAndValidate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	logging.Init(cfg.Logging.Level)
	goose.SetLogger(logging.Log)
	return cfg, nil
}

func applyOverrides(c *config.Config, cmd *cobra.Command, g *GlobalOptions, f *serverFlags) {
	getEnv := func(key string) string {
		return os.Getenv(envPrefix + key)
	}
	envBool := func(key string) (bool, bool) {
		v := getEnv(key)
		if v == "" {
			return false, false
		}
		b, err := strconv.ParseBool(v)
		return b, err == nil
	}

	// --- 1. Environment Variables ---
	if v := getEnv("PASSWORD"); v != "" {
		c.AdminPassword = v
	}
	if v := getEnv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := getEnv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if b, ok := envBool("AUDIT_ENABLED"); ok {
		c.Logging.AuditEnabled = b
	}
	if b, ok := envBool("RESET_PW"); ok && b {
		c.ResetAdminPassword = true
	}
	if b, ok := envBool("SEED"); ok && b {
		c.SeedSampleData = true
	}
	if v := getEnv("DATABASE_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := getEnv("JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
	if v := getEnv("MAX_BODY_SIZE"); v != "" {
		c.Server.MaxBodySize = v
	}
	if v := getEnv("SUPERSET_URL"); v != "" {
		c.Superset.URL = v
	}
	if v := getEnv("SUPERSET_USERNAME"); v != "" {
		c.Superset.Username = v
	}
	if v := getEnv("SUPERSET_PASSWORD"); v != "" {
		c.Superset.Password = v
	}

	// --- 2. CLI Flags (Take precedence) ---
	if g.LogLevel != "" {
		c.Logging.Level = g.LogLevel
	}
	if f.password != "" {
		c.AdminPassword = f.password
	}
	if f.port != 0 {
		c.Server.Port = f.port
	}
	if cmd.Flags().Changed("audit-enabled") {
		c.Logging.AuditEnabled = f.auditEnabled
	}
	if f.resetPassword {
		c.ResetAdminPassword = true
	}
	if f.seed {
		c.SeedSampleData = true
	}
	if f.jwtSecret != "" {
		c.JWTSecret = f.jwtSecret
	}
	if f.maxBodySize != "" {
		c.Server.MaxBodySize = f.maxBodySize
	}
	if f.initConfig == "" {
		f.initConfig = getEnv("INIT_CONFIG")
	}

	// --- 3. Defaults ---
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.Path == "" {
		c.Database.Path = defaultDatabasePath
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.JWT.AccessDurationMin == 0 {
		c.JWT.AccessDurationMin = 5
	}
	if c.JWT.RefreshDurationHours == 0 {
		c.JWT.RefreshDurationHours = 24
	}
}

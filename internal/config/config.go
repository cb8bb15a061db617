// filepath: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds the application's configuration.
type Config struct {
	Server       ServerConfig       `toml:"server"`
	Database     DatabaseConfig     `toml:"database"`
	Logging      LoggingConfig      `toml:"logging"`
	JWT          JWTConfig          `toml:"jwt"`
	Backup       BackupConfig       `toml:"backup"`
	Housekeeping HousekeepingConfig `toml:"housekeeping"`
	Superset     SupersetConfig     `toml:"superset"`
	RateLimit    RateLimitConfig    `toml:"ratelimit"`

	AdminPassword      string `toml:"-"` // Not loaded from file, set by CLI/env
	ResetAdminPassword bool   `toml:"-"` // Not loaded from file, set by CLI/env
	JWTSecret          string `toml:"-"` // Runtime secret (from env, flag, or file)
	SeedSampleData     bool   `toml:"-"` // Set by --seed on serve

	MaxBodySizeBytes       int64         `toml:"-"`
	BackupCompletionDelay  time.Duration `toml:"-"`
	HousekeepingInterval   time.Duration `toml:"-"`
	HousekeepingStaleAfter time.Duration `toml:"-"`
}

// ServerConfig holds the server configuration.
type ServerConfig struct {
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	MaxBodySize string `toml:"max_body_size"` // e.g. "1MB", "512KB"
}

// DatabaseConfig holds the database configuration.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// LoggingConfig holds the logging configuration.
type LoggingConfig struct {
	Level        string `toml:"level"`
	AuditEnabled bool   `toml:"audit_enabled"`
}

// JWTConfig holds settings for token generation.
type JWTConfig struct {
	AccessDurationMin    int    `toml:"access_duration_min"`
	RefreshDurationHours int    `toml:"refresh_duration_hours"`
	Secret               string `toml:"secret"` // Persisted secret
}

// BackupConfig controls the simulated backup runner.
type BackupConfig struct {
	CompletionDelay string `toml:"completion_delay"` // e.g. "5s"
}

// HousekeepingConfig controls the background maintenance worker.
type HousekeepingConfig struct {
	Interval   string `toml:"interval"`    // "0" disables the worker
	StaleAfter string `toml:"stale_after"` // In Progress backups older than this are failed
}

// SupersetConfig holds the BI server used for guest tokens.
type SupersetConfig struct {
	URL      string `toml:"url"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	Provider string `toml:"provider"`
}

// RateLimitConfig limits login attempts per client IP.
type RateLimitConfig struct {
	LoginPerMinute int `toml:"login_per_minute"`
}

// LoadConfig loads the configuration from a TOML file.
func LoadConfig(path string) (*Config, error) {
	var config Config
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

// SaveConfig writes the current configuration back to a TOML file.
// Used to persist the auto-generated JWT secret.
func SaveConfig(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file for saving: %w", err)
	}
	defer f.Close()
	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config to file: %w", err)
	}
	return nil
}

// ParseAndValidate processes configuration strings into runtime values.
// It sets defaults if values are missing and parses human-readable sizes and durations.
func (c *Config) ParseAndValidate() error {
	if c.Server.MaxBodySize == "" {
		c.Server.MaxBodySize = "1MB"
	}
	sizeBytes, err := parseSize(c.Server.MaxBodySize)
	if err != nil {
		return fmt.Errorf("invalid max_body_size: %w", err)
	}
	c.MaxBodySizeBytes = sizeBytes

	if c.Backup.CompletionDelay == "" {
		c.Backup.CompletionDelay = "5s"
	}
	if c.BackupCompletionDelay, err = parseDuration(c.Backup.CompletionDelay); err != nil {
		return fmt.Errorf("invalid completion_delay: %w", err)
	}

	if c.Housekeeping.Interval == "" {
		c.Housekeeping.Interval = "1m"
	}
	if c.HousekeepingInterval, err = parseDuration(c.Housekeeping.Interval); err != nil {
		return fmt.Errorf("invalid housekeeping interval: %w", err)
	}

	if c.Housekeeping.StaleAfter == "" {
		c.Housekeeping.StaleAfter = "2h"
	}
	if c.HousekeepingStaleAfter, err = parseDuration(c.Housekeeping.StaleAfter); err != nil {
		return fmt.Errorf("invalid stale_after: %w", err)
	}

	if c.Superset.Provider == "" {
		c.Superset.Provider = "db"
	}
	if c.RateLimit.LoginPerMinute < 0 {
		return fmt.Errorf("login_per_minute must not be negative")
	}

	return nil
}

// parseSize parses a size string (e.g., "100G", "500MB") into bytes.
func parseSize(sizeStr string) (int64, error) {
	re := regexp.MustCompile(`(?i)^(\d+)\s*(K|M|G|T)?B?$`)
	matches := re.FindStringSubmatch(strings.TrimSpace(sizeStr))

	if len(matches) < 2 {
		return 0, fmt.Errorf("invalid size format: %s", sizeStr)
	}

	value, err := strconv.ParseInt(matches[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size number: %s", matches[1])
	}

	unit := ""
	if len(matches) > 2 {
		unit = strings.ToUpper(matches[2])
	}

	switch unit {
	case "T":
		return value * (1 << 40), nil
	case "G":
		return value * (1 << 30), nil
	case "M":
		return value * (1 << 20), nil
	case "K":
		return value * (1 << 10), nil
	default:
		return value, nil
	}
}

// parseDuration accepts "0", "<n>d|h|m|s".
func parseDuration(s string) (time.Duration, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "0" {
		return 0, nil
	}

	matches := regexp.MustCompile(`^(\d+)\s*(d|h|m|s)$`).FindStringSubmatch(trimmed)
	if len(matches) < 3 {
		return 0, fmt.Errorf("invalid duration format: %s", s)
	}
	value, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, fmt.Errorf("invalid duration number: %s", matches[1])
	}

	switch matches[2] {
	case "d":
		return time.Duration(value) * 24 * time.Hour, nil
	case "h":
		return time.Duration(value) * time.Hour, nil
	case "m":
		return time.Duration(value) * time.Minute, nil
	default:
		return time.Duration(value) * time.Second, nil
	}
}

// filepath: internal/config/config_test.go
package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
		hasError bool
	}{
		{"8MB", 8 * 1024 * 1024, false},
		{"512KB", 512 * 1024, false},
		{"1GB", 1 * 1024 * 1024 * 1024, false},
		{"100", 100, false},
		{" 4 MB ", 4194304, false},
		{"8mb", 8388608, false},
		{"invalid", 0, true},
		{"10XB", 0, true},
		{"-10MB", 0, true},
	}

	for _, tc := range tests {
		val, err := parseSize(tc.input)
		if tc.hasError {
			assert.Error(t, err, "Expected error for input: %s", tc.input)
		} else {
			assert.NoError(t, err, "Unexpected error for input: %s", tc.input)
			assert.Equal(t, tc.expected, val, "Mismatch for input: %s", tc.input)
		}
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
		hasError bool
	}{
		{"5s", 5 * time.Second, false},
		{"2h", 2 * time.Hour, false},
		{"1d", 24 * time.Hour, false},
		{"15m", 15 * time.Minute, false},
		{"0", 0, false},
		{"5 weeks", 0, true},
		{"", 0, true},
	}

	for _, tc := range tests {
		val, err := parseDuration(tc.input)
		if tc.hasError {
			assert.Error(t, err, "Expected error for input: %s", tc.input)
			continue
		}
		assert.NoError(t, err, "Unexpected error for input: %s", tc.input)
		assert.Equal(t, tc.expected, val, "Mismatch for input: %s", tc.input)
	}
}

func TestConfig_ParseAndValidate(t *testing.T) {
	t.Run("Valid Config", func(t *testing.T) {
		cfg := &Config{
			Server: ServerConfig{MaxBodySize: "10MB"},
			Backup: BackupConfig{CompletionDelay: "1s"},
		}
		err := cfg.ParseAndValidate()
		assert.NoError(t, err)
		assert.Equal(t, int64(10485760), cfg.MaxBodySizeBytes)
		assert.Equal(t, time.Second, cfg.BackupCompletionDelay)
	})

	t.Run("Default Fallback", func(t *testing.T) {
		cfg := &Config{}
		err := cfg.ParseAndValidate()
		assert.NoError(t, err)
		assert.Equal(t, "1MB", cfg.Server.MaxBodySize)
		assert.Equal(t, int64(1048576), cfg.MaxBodySizeBytes)
		assert.Equal(t, 5*time.Second, cfg.BackupCompletionDelay)
		assert.Equal(t, time.Minute, cfg.HousekeepingInterval)
		assert.Equal(t, 2*time.Hour, cfg.HousekeepingStaleAfter)
		assert.Equal(t, "db", cfg.Superset.Provider)
	})

	t.Run("Invalid Size", func(t *testing.T) {
		cfg := &Config{Server: ServerConfig{MaxBodySize: "NotASize"}}
		err := cfg.ParseAndValidate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid max_body_size")
	})

	t.Run("Invalid Delay", func(t *testing.T) {
		cfg := &Config{Backup: BackupConfig{CompletionDelay: "soon"}}
		err := cfg.ParseAndValidate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid completion_delay")
	})

	t.Run("Negative Rate Limit", func(t *testing.T) {
		cfg := &Config{RateLimit: RateLimitConfig{LoginPerMinute: -1}}
		assert.Error(t, cfg.ParseAndValidate())
	})
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := &Config{
		Server:   ServerConfig{Host: "127.0.0.1", Port: 9090},
		Database: DatabaseConfig{Path: "scm.db"},
		JWT:      JWTConfig{Secret: "abc"},
		Superset: SupersetConfig{URL: "http://bi.local"},

		JWTSecret: "runtime-only",
	}
	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", loaded.Server.Host)
	assert.Equal(t, 9090, loaded.Server.Port)
	assert.Equal(t, "abc", loaded.JWT.Secret)
	assert.Equal(t, "http://bi.local", loaded.Superset.URL)
	assert.Empty(t, loaded.JWTSecret, "runtime fields must not be persisted")
}

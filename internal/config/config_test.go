package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "KRW", cfg.Feed.RateCurrency)
	assert.Equal(t, 5*time.Second, cfg.Feed.Timeout.Duration)
	assert.Equal(t, 15*time.Minute, cfg.Feed.CacheTTL.Duration)
	assert.Equal(t, "data", cfg.Storage.DataDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level = "debug"

[server]
port = 9090

[feed]
cache_ttl = "1m"
timeout = "2s"

[storage]
data_dir = "/var/lib/geumbang"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, time.Minute, cfg.Feed.CacheTTL.Duration)
	assert.Equal(t, 2*time.Second, cfg.Feed.Timeout.Duration)
	assert.Equal(t, "/var/lib/geumbang", cfg.Storage.DataDir)
	assert.Equal(t, "debug", cfg.LogLevel)

	// Untouched sections keep their defaults.
	assert.Equal(t, "https://api.gold-api.com/price/XAG", cfg.Feed.SilverURL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GEUMBANG_SERVER_PORT", "7070")
	t.Setenv("GEUMBANG_FEED_CACHE_TTL", "30m")
	t.Setenv("GEUMBANG_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("GEUMBANG_SERVER_RATE_LIMIT_RPS", "2.5")
	t.Setenv("GEUMBANG_LOG_LEVEL", "warn")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 30*time.Minute, cfg.Feed.CacheTTL.Duration)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 2.5, cfg.Server.RateLimitRPS)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server]\nport = 9090\n"), 0o644))
	t.Setenv("GEUMBANG_SERVER_PORT", "7070")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("not valid toml ==="), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := Defaults()
	cfg.Server.Port = 0
	cfg.Feed.SilverURL = ""
	cfg.Feed.CacheTTL.Duration = 0
	cfg.Storage.DataDir = "  "
	cfg.LogLevel = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port must be 1-65535")
	assert.Contains(t, err.Error(), "silver_url must not be empty")
	assert.Contains(t, err.Error(), "cache_ttl must be positive")
	assert.Contains(t, err.Error(), "data_dir must not be empty")
	assert.Contains(t, err.Error(), "unknown log_level")
}

func TestValidate_RateLimitBurst(t *testing.T) {
	cfg := Defaults()
	cfg.Server.RateLimitRPS = 5
	cfg.Server.RateLimitBurst = 0
	require.Error(t, cfg.Validate())

	// Rate limiting disabled: burst is irrelevant.
	cfg.Server.RateLimitRPS = 0
	assert.NoError(t, cfg.Validate())
}

func TestValidate_LogFileRotation(t *testing.T) {
	cfg := Defaults()
	cfg.Log.File = "/var/log/geumbang.log"
	cfg.Log.MaxSizeMB = 0
	require.Error(t, cfg.Validate())

	cfg.Log.MaxSizeMB = 10
	assert.NoError(t, cfg.Validate())
}

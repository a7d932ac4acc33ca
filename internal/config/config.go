// Package config defines the application configuration and validation
// helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by GEUMBANG_* environment
// variables.
type Config struct {
	Server   ServerConfig  `toml:"server"`
	Feed     FeedConfig    `toml:"feed"`
	Storage  StorageConfig `toml:"storage"`
	Log      LogConfig     `toml:"log"`
	LogLevel string        `toml:"log_level"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port           int      `toml:"port"`
	CORSOrigins    []string `toml:"cors_origins"`
	RateLimitRPS   float64  `toml:"rate_limit_rps"`
	RateLimitBurst int      `toml:"rate_limit_burst"`
}

// FeedConfig holds the upstream price-source endpoints and cache tuning.
type FeedConfig struct {
	SilverURL    string   `toml:"silver_url"`
	GoldURL      string   `toml:"gold_url"`
	FXURL        string   `toml:"fx_url"`
	RateCurrency string   `toml:"rate_currency"`
	Timeout      duration `toml:"timeout"`
	CacheTTL     duration `toml:"cache_ttl"`
}

// StorageConfig holds the flat-file data directory.
type StorageConfig struct {
	DataDir string `toml:"data_dir"`
}

// LogConfig holds optional rotating-file log output. When File is empty,
// logs go to stdout only.
type LogConfig struct {
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5s", "15m").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings.
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:           8000,
			CORSOrigins:    []string{"http://localhost:3000"},
			RateLimitRPS:   10,
			RateLimitBurst: 20,
		},
		Feed: FeedConfig{
			SilverURL:    "https://api.gold-api.com/price/XAG",
			GoldURL:      "https://api.gold-api.com/price/XAU",
			FXURL:        "https://open.er-api.com/v6/latest/USD",
			RateCurrency: "KRW",
			Timeout:      duration{5 * time.Second},
			CacheTTL:     duration{15 * time.Minute},
		},
		Storage: StorageConfig{
			DataDir: "data",
		},
		Log: LogConfig{
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		LogLevel: "info",
	}
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.RateLimitRPS < 0 {
		errs = append(errs, "server: rate_limit_rps must be >= 0")
	}
	if c.Server.RateLimitRPS > 0 && c.Server.RateLimitBurst < 1 {
		errs = append(errs, "server: rate_limit_burst must be >= 1 when rate limiting is enabled")
	}

	if c.Feed.SilverURL == "" {
		errs = append(errs, "feed: silver_url must not be empty")
	}
	if c.Feed.GoldURL == "" {
		errs = append(errs, "feed: gold_url must not be empty")
	}
	if c.Feed.FXURL == "" {
		errs = append(errs, "feed: fx_url must not be empty")
	}
	if c.Feed.RateCurrency == "" {
		errs = append(errs, "feed: rate_currency must not be empty")
	}
	if c.Feed.Timeout.Duration <= 0 {
		errs = append(errs, "feed: timeout must be positive")
	}
	if c.Feed.CacheTTL.Duration <= 0 {
		errs = append(errs, "feed: cache_ttl must be positive")
	}

	if strings.TrimSpace(c.Storage.DataDir) == "" {
		errs = append(errs, "storage: data_dir must not be empty")
	}

	if c.Log.File != "" {
		if c.Log.MaxSizeMB < 1 {
			errs = append(errs, "log: max_size_mb must be >= 1 when a log file is set")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

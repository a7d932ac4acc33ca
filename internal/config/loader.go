package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies GEUMBANG_* environment variable overrides, and
// returns the final Config. A missing file is not an error — defaults plus
// environment are enough to run. The returned Config has NOT been
// validated; the caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known GEUMBANG_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators adjust deployments without touching the TOML file.
func applyEnvOverrides(cfg *Config) {
	setInt(&cfg.Server.Port, "GEUMBANG_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "GEUMBANG_SERVER_CORS_ORIGINS")
	setFloat64(&cfg.Server.RateLimitRPS, "GEUMBANG_SERVER_RATE_LIMIT_RPS")
	setInt(&cfg.Server.RateLimitBurst, "GEUMBANG_SERVER_RATE_LIMIT_BURST")

	setStr(&cfg.Feed.SilverURL, "GEUMBANG_FEED_SILVER_URL")
	setStr(&cfg.Feed.GoldURL, "GEUMBANG_FEED_GOLD_URL")
	setStr(&cfg.Feed.FXURL, "GEUMBANG_FEED_FX_URL")
	setStr(&cfg.Feed.RateCurrency, "GEUMBANG_FEED_RATE_CURRENCY")
	setDuration(&cfg.Feed.Timeout, "GEUMBANG_FEED_TIMEOUT")
	setDuration(&cfg.Feed.CacheTTL, "GEUMBANG_FEED_CACHE_TTL")

	setStr(&cfg.Storage.DataDir, "GEUMBANG_STORAGE_DATA_DIR")

	setStr(&cfg.Log.File, "GEUMBANG_LOG_FILE")
	setInt(&cfg.Log.MaxSizeMB, "GEUMBANG_LOG_MAX_SIZE_MB")
	setInt(&cfg.Log.MaxBackups, "GEUMBANG_LOG_MAX_BACKUPS")
	setInt(&cfg.Log.MaxAgeDays, "GEUMBANG_LOG_MAX_AGE_DAYS")

	setStr(&cfg.LogLevel, "GEUMBANG_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}

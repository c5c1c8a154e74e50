// Package config loads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/litescript/ls-skyscore/internal/logging"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	WeatherTTL        time.Duration
	CrescentCacheSize int
	ScoreCacheSize    int
	GridWorkers       int    // 0 uses GOMAXPROCS
	CatalogPath       string // empty uses the built-in catalog
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	weatherTTL, err := time.ParseDuration(sharedcfg.EnvOrDefault("SKYSCORE_WEATHER_TTL", "1h"))
	if err != nil || weatherTTL <= 0 {
		return nil, errors.New("invalid SKYSCORE_WEATHER_TTL")
	}

	crescentSize, err := parseInt("SKYSCORE_CRESCENT_CACHE_SIZE", 5000, 1)
	if err != nil {
		return nil, err
	}
	scoreSize, err := parseInt("SKYSCORE_SCORE_CACHE_SIZE", 20000, 1)
	if err != nil {
		return nil, err
	}
	workers, err := parseInt("SKYSCORE_GRID_WORKERS", 0, 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:          sharedcfg.EnvOrDefault("SKYSCORE_HTTP_ADDR", ":8080"),
		LogLevel:          sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:         sharedcfg.EnvOrDefault("LOG_FORMAT", "console"),
		ShutdownTimeout:   shutdownTimeout,
		WeatherTTL:        weatherTTL,
		CrescentCacheSize: crescentSize,
		ScoreCacheSize:    scoreSize,
		GridWorkers:       workers,
		CatalogPath:       os.Getenv("SKYSCORE_CATALOG_PATH"),
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("SKYSCORE_HTTP_ADDR is required")
	}
	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return nil, fmt.Errorf("invalid LOG_LEVEL %q", cfg.LogLevel)
	}
	switch strings.ToLower(cfg.LogFormat) {
	case "console", "json":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q", cfg.LogFormat)
	}

	return cfg, nil
}

// Level returns the parsed log level.
func (c *Config) Level() logging.Level { return logging.ParseLevel(c.LogLevel) }

// Format returns the parsed log format.
func (c *Config) Format() logging.Format { return logging.ParseFormat(c.LogFormat) }

// parseInt reads an integer setting that must be at least min.
func parseInt(key string, def, min int) (int, error) {
	n, err := strconv.Atoi(sharedcfg.EnvOrDefault(key, strconv.Itoa(def)))
	if err != nil || n < min {
		return 0, fmt.Errorf("invalid %s: must be an integer >= %d", key, min)
	}
	return n, nil
}

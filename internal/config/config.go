// Package config loads the rolodex configuration file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"rolodex/internal/contact"
	"rolodex/internal/memdb"
)

// Config holds the settings for the rolodex CLI.
type Config struct {
	// CacheSize is the recency cache capacity.
	CacheSize int `yaml:"cache_size"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// Seed lists contacts loaded into the directory at startup.
	Seed []contact.Contact `yaml:"seed"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		CacheSize: memdb.DefaultCacheSize,
		LogLevel:  "info",
	}
}

// Load reads the configuration at path. A missing file yields the defaults;
// a malformed file or invalid values are errors.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.CacheSize == 0 {
		cfg.CacheSize = memdb.DefaultCacheSize
	}
	if cfg.CacheSize < 0 {
		return nil, fmt.Errorf("config %s: cache_size must be positive", path)
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseLevel maps a configuration string to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}

// Package config loads shed settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all shed settings.
type Config struct {
	DBPath   string   `env:"SHED_DB_PATH"`
	User     string   `env:"SHED_USER"`
	Admins   []string `env:"SHED_ADMINS" envSeparator:","`
	Addr     string   `env:"SHED_ADDR" envDefault:"127.0.0.1:8080"`
	Timezone string   `env:"SHED_TIMEZONE" envDefault:"Local"`

	LogLevel  string `env:"SHED_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"SHED_LOG_FORMAT" envDefault:"text"`
	LogFile   string `env:"SHED_LOG_FILE"`
	SQLLog    bool   `env:"SHED_SQL_LOG" envDefault:"false"`

	location *time.Location
}

// Load parses the environment, fills computed defaults and validates.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.DBPath == "" {
		path, err := defaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get database path: %w", err)
		}
		cfg.DBPath = path
	}

	if cfg.User == "" {
		cfg.User = defaultUser()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks option values and resolves the timezone.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.User) == "" {
		return fmt.Errorf("user must not be empty")
	}

	if _, err := c.SlogLevel(); err != nil {
		return err
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log format must be text or json, got %q", c.LogFormat)
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	c.location = loc

	return nil
}

// Location is the zone used to decide what "today" is.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

// IsAdmin reports whether user is listed in SHED_ADMINS.
func (c *Config) IsAdmin(user string) bool {
	return slices.Contains(c.Admins, user)
}

// SlogLevel maps LogLevel to a slog.Level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return level, nil
}

// defaultDBPath returns the path to the SQLite database file
func defaultDBPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".shed", "shed.db"), nil
}

func defaultUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "local"
}

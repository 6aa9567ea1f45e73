package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/TheVortexX/OncoTrack-sub000/internal/keyring"
	"github.com/TheVortexX/OncoTrack-sub000/internal/storage/postgres"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverJSON     = "json"

	// EnvPrefix prefixes every environment override. Nested keys use a
	// double underscore: ONCOTRACK_DATABASE__DRIVER.
	EnvPrefix = "ONCOTRACK_"

	// EnvConnection carries a PostgreSQL connection string that may hold
	// credentials.
	EnvConnection = "ONCOTRACK_DB_CONNECTION"
)

var ErrNoConnection = errors.New("no PostgreSQL connection string configured")

type Config struct {
	UserID            string         `koanf:"user_id"`
	Debug             bool           `koanf:"debug"`
	LogLevel          string         `koanf:"log_level"`
	ConfigDir         string         `koanf:"config_dir"`
	SearchHorizonDays int            `koanf:"search_horizon_days"`
	Database          DatabaseConfig `koanf:"database"`
	Notify            NotifyConfig   `koanf:"notify"`
}

type DatabaseConfig struct {
	Driver     string `koanf:"driver"`
	Path       string `koanf:"path"`       // sqlite database or JSON document file
	Connection string `koanf:"connection"` // PostgreSQL, without password
}

type NotifyConfig struct {
	TrayIdentifier string `koanf:"tray_identifier"`
	DurationMs     int    `koanf:"duration_ms"`
	GracePeriodMin int    `koanf:"grace_period_min"`
	Retries        int    `koanf:"retries"`
}

// Load layers defaults, the optional YAML file at configPath and
// ONCOTRACK_ environment variables.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(NewDefaultProvider(), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		configPath = expandPath(configPath)
		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.ConfigDir = expandPath(cfg.ConfigDir)
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Database.Driver = strings.ToLower(cfg.Database.Driver)

	return &cfg, nil
}

// envKey maps ONCOTRACK_NOTIFY__GRACE_PERIOD_MIN to notify.grace_period_min.
// EnvConnection is excluded so the secret never lands in the config tree.
func envKey(s string) string {
	if s == EnvConnection {
		return ""
	}
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.UserID) == "" {
		return fmt.Errorf("user_id is required")
	}
	if strings.Contains(c.UserID, "/") {
		return fmt.Errorf("user_id must not contain '/'")
	}

	switch c.Database.Driver {
	case DriverSQLite, DriverJSON:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the %s driver", c.Database.Driver)
		}
	case DriverPostgres:
		if c.Database.Connection != "" {
			if err := postgres.ValidateConnString(c.Database.Connection); err != nil {
				return fmt.Errorf("database.connection: %w", err)
			}
		}
	default:
		return fmt.Errorf("unknown database driver: %s (supported: %s, %s, %s)",
			c.Database.Driver, DriverSQLite, DriverPostgres, DriverJSON)
	}

	if c.SearchHorizonDays <= 0 {
		return fmt.Errorf("search_horizon_days must be positive")
	}
	if c.Notify.GracePeriodMin < 0 {
		return fmt.Errorf("notify.grace_period_min must not be negative")
	}
	if c.Notify.DurationMs <= 0 {
		return fmt.Errorf("notify.duration_ms must be positive")
	}
	if c.Notify.Retries <= 0 {
		return fmt.Errorf("notify.retries must be positive")
	}

	return nil
}

// ResolveConnection picks the PostgreSQL connection string: the
// ONCOTRACK_DB_CONNECTION variable first, then database.connection, then
// the OS keyring.
func (c *Config) ResolveConnection() (string, error) {
	if v := os.Getenv(EnvConnection); v != "" {
		return v, nil
	}
	if c.Database.Connection != "" {
		return c.Database.Connection, nil
	}
	connStr, err := keyring.GetConnectionString()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNoConnection
		}
		return "", fmt.Errorf("%w: %w", ErrNoConnection, err)
	}
	return connStr, nil
}

// FilePath returns the default config file location under ConfigDir.
func FilePath(configDir string) string {
	return filepath.Join(expandPath(configDir), "config.yaml")
}

func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}

	return path
}

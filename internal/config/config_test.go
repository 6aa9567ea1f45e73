package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/TheVortexX/OncoTrack-sub000/internal/constants"
	"github.com/TheVortexX/OncoTrack-sub000/internal/keyring"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.UserID != constants.DefaultUserID {
		t.Errorf("UserID = %q, want %q", cfg.UserID, constants.DefaultUserID)
	}
	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("Database.Driver = %q, want %q", cfg.Database.Driver, DriverSQLite)
	}
	if strings.HasPrefix(cfg.Database.Path, "~/") {
		t.Errorf("Database.Path = %q, want home expanded", cfg.Database.Path)
	}
	if cfg.SearchHorizonDays != constants.SearchHorizonDays {
		t.Errorf("SearchHorizonDays = %d, want %d", cfg.SearchHorizonDays, constants.SearchHorizonDays)
	}
	if cfg.Notify.GracePeriodMin != constants.DefaultGracePeriodMin {
		t.Errorf("Notify.GracePeriodMin = %d, want %d", cfg.Notify.GracePeriodMin, constants.DefaultGracePeriodMin)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `user_id: alice
database:
  driver: JSON
  path: /tmp/oncotrack.json
notify:
  grace_period_min: 30
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("ONCOTRACK_NOTIFY__RETRIES", "5")
	t.Setenv("ONCOTRACK_DEBUG", "true")
	t.Setenv(EnvConnection, "postgres://u:secret@db/oncotrack")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.UserID != "alice" {
		t.Errorf("UserID = %q, want alice", cfg.UserID)
	}
	if cfg.Database.Driver != DriverJSON {
		t.Errorf("Database.Driver = %q, want %q", cfg.Database.Driver, DriverJSON)
	}
	if cfg.Database.Path != "/tmp/oncotrack.json" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.Notify.GracePeriodMin != 30 {
		t.Errorf("Notify.GracePeriodMin = %d, want 30", cfg.Notify.GracePeriodMin)
	}
	if cfg.Notify.Retries != 5 {
		t.Errorf("Notify.Retries = %d, want 5", cfg.Notify.Retries)
	}
	if !cfg.Debug {
		t.Error("Debug = false, want true from env")
	}
	if cfg.Notify.DurationMs != constants.NotificationDurationMs {
		t.Errorf("Notify.DurationMs = %d, want default", cfg.Notify.DurationMs)
	}
	if cfg.Database.Connection != "" {
		t.Errorf("Database.Connection = %q, the connection env var must not populate it", cfg.Database.Connection)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			UserID:            "local",
			SearchHorizonDays: 400,
			Database:          DatabaseConfig{Driver: DriverSQLite, Path: "/tmp/db"},
			Notify:            NotifyConfig{DurationMs: 5000, GracePeriodMin: 10, Retries: 3},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"empty user", func(c *Config) { c.UserID = " " }, "user_id is required"},
		{"slash in user", func(c *Config) { c.UserID = "a/b" }, "must not contain"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, "unknown database driver"},
		{"missing path", func(c *Config) { c.Database.Path = "" }, "database.path is required"},
		{"postgres without connection", func(c *Config) {
			c.Database = DatabaseConfig{Driver: DriverPostgres}
		}, ""},
		{"postgres with password", func(c *Config) {
			c.Database = DatabaseConfig{Driver: DriverPostgres, Connection: "postgres://u:p@localhost/db"}
		}, "database.connection"},
		{"zero horizon", func(c *Config) { c.SearchHorizonDays = 0 }, "search_horizon_days"},
		{"negative grace", func(c *Config) { c.Notify.GracePeriodMin = -1 }, "grace_period_min"},
		{"zero retries", func(c *Config) { c.Notify.Retries = 0 }, "retries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestResolveConnection(t *testing.T) {
	gokeyring.MockInit()
	t.Setenv(EnvConnection, "")

	cfg := &Config{Database: DatabaseConfig{Driver: DriverPostgres}}
	if _, err := cfg.ResolveConnection(); !errors.Is(err, ErrNoConnection) {
		t.Fatalf("ResolveConnection() error = %v, want %v", err, ErrNoConnection)
	}

	if err := keyring.SetConnectionString("postgres://keyring@localhost/db"); err != nil {
		t.Fatal(err)
	}
	got, err := cfg.ResolveConnection()
	if err != nil || got != "postgres://keyring@localhost/db" {
		t.Errorf("ResolveConnection() = %q, %v; want keyring value", got, err)
	}

	cfg.Database.Connection = "postgres://config@localhost/db"
	if got, _ := cfg.ResolveConnection(); got != cfg.Database.Connection {
		t.Errorf("ResolveConnection() = %q, want config value", got)
	}

	t.Setenv(EnvConnection, "postgres://env:pw@localhost/db")
	if got, _ := cfg.ResolveConnection(); got != "postgres://env:pw@localhost/db" {
		t.Errorf("ResolveConnection() = %q, want env value", got)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := expandPath("~/x/y"); got != filepath.Join(home, "x/y") {
		t.Errorf("expandPath(~/x/y) = %q", got)
	}
	if got := expandPath("/abs"); got != "/abs" {
		t.Errorf("expandPath(/abs) = %q", got)
	}
	if got := FilePath("/etc/oncotrack"); got != "/etc/oncotrack/config.yaml" {
		t.Errorf("FilePath() = %q", got)
	}
}

// Package clitest builds command contexts over an in-memory store.
package clitest

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/TheVortexX/OncoTrack-sub000/internal/cli"
	"github.com/TheVortexX/OncoTrack-sub000/internal/config"
	"github.com/TheVortexX/OncoTrack-sub000/internal/models"
	"github.com/TheVortexX/OncoTrack-sub000/internal/storage"
)

// Now is the fixed clock of every test context: 2024-03-01 09:30 UTC.
var Now = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

// Env is a command context plus its captured output.
type Env struct {
	Ctx *cli.Context
	Out *bytes.Buffer
	now time.Time
}

// SetNow moves the clock of the context.
func (e *Env) SetNow(t time.Time) { e.now = t }

// New returns a context over a fresh memory store whose user lives in UTC.
func New(t *testing.T) *Env {
	t.Helper()
	return NewWithStore(t, storage.NewMemoryStore())
}

// NewWithStore is New over an existing, already initialised store.
func NewWithStore(t *testing.T, store storage.Provider) *Env {
	t.Helper()

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("failed to load default config: %v", err)
	}
	cfg.ConfigDir = t.TempDir()
	cfg.Database.Driver = config.DriverJSON

	env := &Env{Out: &bytes.Buffer{}, now: Now}
	env.Ctx = cli.NewContext(context.Background(), cfg, store,
		cli.WithClock(func() time.Time { return env.now }),
		cli.WithOutput(env.Out),
	)

	settings := models.DefaultSettings()
	settings.Timezone = "UTC"
	if err := env.Ctx.Service.Repository().SaveSettings(env.Ctx, cfg.UserID, settings); err != nil {
		t.Fatalf("failed to save settings: %v", err)
	}
	return env
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/TheVortexX/OncoTrack-sub000/internal/backup"
	"github.com/TheVortexX/OncoTrack-sub000/internal/config"
	"github.com/TheVortexX/OncoTrack-sub000/internal/lifecycle"
	"github.com/TheVortexX/OncoTrack-sub000/internal/logger"
	"github.com/TheVortexX/OncoTrack-sub000/internal/notifier"
	"github.com/TheVortexX/OncoTrack-sub000/internal/scheduler"
	"github.com/TheVortexX/OncoTrack-sub000/internal/service"
	"github.com/TheVortexX/OncoTrack-sub000/internal/storage"
	"github.com/TheVortexX/OncoTrack-sub000/internal/storage/postgres"
	"github.com/TheVortexX/OncoTrack-sub000/internal/storage/sqlite"
	"github.com/TheVortexX/OncoTrack-sub000/internal/utils"
)

// Context is handed to every command. It embeds the process context so it
// can be passed wherever a context.Context is expected.
type Context struct {
	context.Context

	Config  *config.Config
	Store   storage.Provider
	Service *service.Service
	Queue   *notifier.Queue
	UserID  string
	Out     io.Writer
	Now     func() time.Time
}

// Option customises NewContext.
type Option func(*options)

type options struct {
	now func() time.Time
	out io.Writer
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// NewContext wires the repository, alert queue, lifecycle manager and
// service on top of store.
func NewContext(ctx context.Context, cfg *config.Config, store storage.Provider, opts ...Option) *Context {
	o := options{now: time.Now, out: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	repo := storage.NewRepository(store)
	sched := scheduler.NewWithHorizon(cfg.SearchHorizonDays)
	queue := notifier.NewQueue(store, time.Duration(cfg.Notify.GracePeriodMin)*time.Minute)

	svcOpts := []service.Option{
		service.WithClock(o.now),
		service.WithScheduler(sched),
		service.WithQueue(queue),
	}

	manager := lifecycle.New(queue, repo,
		lifecycle.WithClock(o.now),
		lifecycle.WithScheduler(sched),
	)

	return &Context{
		Context: ctx,
		Config:  cfg,
		Store:   store,
		Service: service.New(repo, manager, svcOpts...),
		Queue:   queue,
		UserID:  cfg.UserID,
		Out:     o.out,
		Now:     o.now,
	}
}

// OpenStore returns the provider selected by cfg.Database.Driver. The store
// is not loaded. cfg must have passed Validate, which rejects passwords in
// database.connection.
func OpenStore(cfg *config.Config) (storage.Provider, error) {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		return sqlite.NewStore(cfg.Database.Path), nil
	case config.DriverJSON:
		return storage.NewJSONStore(cfg.Database.Path), nil
	case config.DriverPostgres:
		connStr, err := cfg.ResolveConnection()
		if err != nil {
			return nil, err
		}
		return postgres.New(connStr), nil
	default:
		return nil, fmt.Errorf("unknown database driver: %s", cfg.Database.Driver)
	}
}

// Location is the user's configured timezone.
func (c *Context) Location() (*time.Location, error) {
	prefs, err := c.Service.Settings(c, c.UserID)
	if err != nil {
		return nil, err
	}
	return utils.LocationFromSettings(prefs)
}

// LocalNow is the current time in the user's timezone.
func (c *Context) LocalNow() (time.Time, error) {
	loc, err := c.Location()
	if err != nil {
		return time.Time{}, err
	}
	return c.Now().In(loc), nil
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Out, args...)
}

// Warn reports a record that was saved while its reminder was not.
// Other errors are returned unchanged.
func (c *Context) Warn(err error) error {
	if errors.Is(err, service.ErrReminderNotUpdated) {
		c.Printf("Warning: %v\n", err)
		return nil
	}
	return err
}

// PerformAutomaticBackup backs up a sqlite database and only logs failures.
func (c *Context) PerformAutomaticBackup() {
	if c.Config.Database.Driver != config.DriverSQLite {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.Create(c); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

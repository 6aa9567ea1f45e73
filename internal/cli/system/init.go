package system

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/TheVortexX/OncoTrack-sub000/internal/cli"
	"github.com/TheVortexX/OncoTrack-sub000/internal/config"
	"github.com/TheVortexX/OncoTrack-sub000/internal/lifecycle"
	"github.com/TheVortexX/OncoTrack-sub000/internal/storage"
	"github.com/TheVortexX/OncoTrack-sub000/internal/storage/postgres"
	"github.com/TheVortexX/OncoTrack-sub000/internal/storage/sqlite"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting the existing database before initialization."`
	Source string `help:"Database path (.db or .json) or PostgreSQL connection string to copy the user's records from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force && ctx.Config.Database.Driver != config.DriverPostgres {
		dbPath := ctx.Store.GetConfigPath()
		if c.Source != "" && samePath(c.Source, dbPath) {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
		if _, err := os.Stat(dbPath); err == nil {
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
				if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("failed to delete existing database: %w", err)
				}
			}
			ctx.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(ctx); err != nil {
		return err
	}
	ctx.Printf("Initialized oncotrack storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source == "" {
		return nil
	}
	ctx.Printf("Copying records from: %s\n", c.Source)
	if err := c.copyFrom(ctx); err != nil {
		return fmt.Errorf("copy failed: %w", err)
	}
	return nil
}

func (c *InitCmd) copyFrom(ctx *cli.Context) error {
	src, err := openSource(c.Source)
	if err != nil {
		return err
	}
	if err := src.Load(ctx); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer src.Close()

	counts, err := storage.CopyUser(ctx, src, ctx.Store, ctx.UserID)
	if err != nil {
		return err
	}
	for _, collection := range storage.UserCollections {
		ctx.Printf("  %-13s %d\n", collection, counts[collection])
	}

	results, err := ctx.Service.RescheduleAll(ctx, ctx.UserID)
	if err != nil {
		return fmt.Errorf("records copied, but reminders were not rescheduled: %w", err)
	}
	if failed := lifecycle.Failed(results); len(failed) > 0 {
		ctx.Printf("Warning: %d item(s) could not be rescheduled; run 'oncotrack reschedule' to retry\n", len(failed))
	}
	ctx.Println("Copy completed successfully!")
	return nil
}

func openSource(source string) (storage.Provider, error) {
	if strings.HasPrefix(source, "postgres://") || strings.HasPrefix(source, "postgresql://") || strings.Contains(source, "host=") {
		if err := postgres.ValidateConnString(source); err != nil {
			return nil, fmt.Errorf("invalid source connection string: %w", err)
		}
		return postgres.New(source), nil
	}
	if strings.EqualFold(filepath.Ext(source), ".json") {
		return storage.NewJSONStore(source), nil
	}
	return sqlite.NewStore(source), nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return absA == absB
}

package system

import (
	"fmt"
	"time"

	"github.com/TheVortexX/OncoTrack-sub000/internal/backup"
	"github.com/TheVortexX/OncoTrack-sub000/internal/cli"
	"github.com/TheVortexX/OncoTrack-sub000/internal/config"
	"github.com/TheVortexX/OncoTrack-sub000/internal/storage"
)

type DoctorCmd struct{}

type check struct {
	name string
	run  func(*cli.Context) error
	// warn checks report problems without failing the command.
	warn bool
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	if err := ctx.Store.Load(ctx); err != nil {
		ctx.Printf("❌ Database reachable: FAIL\n   Error: %v\n", err)
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.Println("✓ Database reachable: OK")

	checks := []check{
		{name: "Schema version", run: checkSchema},
		{name: "Settings", run: checkSettings},
		{name: "Data validation", run: checkData},
		{name: "Backups present", run: checkBackups, warn: true},
		{name: "Clock/timezone", run: checkClock},
	}

	hasError := false
	for _, c := range checks {
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case c.warn:
			ctx.Printf("⚠ %s: WARNING\n   %v\n", c.name, err)
		default:
			ctx.Printf("❌ %s: FAIL\n   Error: %v\n", c.name, err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkSchema(ctx *cli.Context) error {
	reporter, ok := ctx.Store.(storage.SchemaReporter)
	if !ok {
		return nil
	}
	current, latest, err := reporter.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", current, latest)
	}
	return nil
}

func checkSettings(ctx *cli.Context) error {
	prefs, err := ctx.Service.Settings(ctx, ctx.UserID)
	if err != nil {
		return err
	}
	if err := prefs.SlotTimes().Validate(); err != nil {
		return err
	}
	_, err = ctx.Location()
	return err
}

func checkData(ctx *cli.Context) error {
	result, err := ctx.Service.Check(ctx, ctx.UserID)
	if err != nil {
		return err
	}
	for _, c := range result.Conflicts {
		ctx.Printf("   - %s\n", c.Description)
	}
	if result.HasErrors() {
		return fmt.Errorf("%d problem(s) found", len(result.Conflicts))
	}
	return nil
}

func checkBackups(ctx *cli.Context) error {
	if ctx.Config.Database.Driver != config.DriverSQLite {
		return nil
	}
	backups, err := backup.NewManager(ctx.Store.GetConfigPath()).List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'oncotrack backup create'")
	}
	return nil
}

func checkClock(ctx *cli.Context) error {
	now := ctx.Now()
	if now.Year() < 2020 {
		return fmt.Errorf("system clock looks wrong: %s", now.Format(time.RFC3339))
	}
	loc, err := ctx.Location()
	if err != nil {
		return err
	}
	if _, offset := now.In(loc).Zone(); offset%(15*60) != 0 {
		return fmt.Errorf("unusual UTC offset %ds for %s", offset, loc)
	}
	return nil
}

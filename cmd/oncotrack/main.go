package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/TheVortexX/OncoTrack-sub000/internal/cli"
	"github.com/TheVortexX/OncoTrack-sub000/internal/cli/appts"
	"github.com/TheVortexX/OncoTrack-sub000/internal/cli/backups"
	"github.com/TheVortexX/OncoTrack-sub000/internal/cli/meds"
	"github.com/TheVortexX/OncoTrack-sub000/internal/cli/settings"
	"github.com/TheVortexX/OncoTrack-sub000/internal/cli/system"
	"github.com/TheVortexX/OncoTrack-sub000/internal/cli/views"
	"github.com/TheVortexX/OncoTrack-sub000/internal/config"
	"github.com/TheVortexX/OncoTrack-sub000/internal/constants"
	"github.com/TheVortexX/OncoTrack-sub000/internal/errors"
	"github.com/TheVortexX/OncoTrack-sub000/internal/logger"
	"github.com/TheVortexX/OncoTrack-sub000/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path." type:"path" default:"${config_file}"`
	Debug   bool   `help:"Log debug output to stderr."`

	Init       system.InitCmd       `cmd:"" help:"Initialize oncotrack storage."`
	Doctor     system.DoctorCmd     `cmd:"" help:"Run health checks and diagnostics."`
	Validate   system.ValidateCmd   `cmd:"" help:"Check stored records for conflicts."`
	Tui        system.TuiCmd        `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Today      views.TodayCmd       `cmd:"" help:"Show today's doses and appointments."`
	Due        views.DueCmd         `cmd:"" help:"List medications due on a date."`
	Upcoming   views.UpcomingCmd    `cmd:"" help:"List doses and appointments in the next days."`
	Reschedule system.RescheduleCmd `cmd:"" help:"Reschedule every reminder."`
	DebugCmd   system.DebugCmd      `cmd:"" name:"debug" help:"Debug commands for troubleshooting."`
	Med        struct {
		Add    meds.AddCmd    `cmd:"" help:"Add a medication."`
		Edit   meds.EditCmd   `cmd:"" help:"Edit a medication."`
		Delete meds.DeleteCmd `cmd:"" help:"Delete a medication and cancel its reminders."`
		List   meds.ListCmd   `cmd:"" help:"List medications."`
		Take   meds.TakeCmd   `cmd:"" help:"Log a dose as taken."`
		Due    meds.DueCmd    `cmd:"" help:"Check whether a medication is due on a date."`
		Next   meds.NextCmd   `cmd:"" help:"Show the next dose of a medication."`
	} `cmd:"" help:"Manage medications."`
	Appt struct {
		Add    appts.AddCmd    `cmd:"" help:"Add an appointment."`
		Edit   appts.EditCmd   `cmd:"" help:"Edit an appointment."`
		Delete appts.DeleteCmd `cmd:"" help:"Delete an appointment and cancel its reminder."`
		List   appts.ListCmd   `cmd:"" help:"List appointments."`
	} `cmd:"" help:"Manage appointments."`
	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store the PostgreSQL connection string in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string with the password masked."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Report whether a connection string is stored."`
	} `cmd:"" help:"Manage the database connection string in the OS keyring."`
	Settings settings.SettingsCmd `cmd:"" help:"Manage reminder settings."`
	Notify   system.NotifyCmd     `cmd:"" hidden:"" help:"Deliver due reminders (run from cron or a timer)."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Medication and appointment reminders with adherence tracking"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"config_file": config.FilePath(constants.DefaultConfigDir),
		},
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		errors.Fatal(err)
	}
	if CLI.Debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		errors.Fatal(fmt.Errorf("invalid configuration: %w", err))
	}

	if err := logger.Init(logger.Config{
		Debug:     cfg.Debug,
		ConfigDir: cfg.ConfigDir,
		Level:     cfg.LogLevel,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	command := strings.Fields(kctx.Command())[0]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := cli.OpenStore(cfg)
	if err != nil {
		// Keyring commands are how a missing connection string gets fixed.
		if command != "keyring" {
			errors.Fatal(err)
		}
		store = storage.NewMemoryStore()
	}

	if command != "init" && command != "keyring" {
		if err := store.Load(ctx); err != nil {
			errors.Fatal(err)
		}
	}

	appCtx := cli.NewContext(ctx, cfg, store)
	logger.Debug("Running command", "command", kctx.Command(), "driver", cfg.Database.Driver)

	err = kctx.Run(appCtx)
	if cerr := store.Close(); cerr != nil {
		logger.Warn("Failed to close store", "error", cerr)
	}
	errors.Fatal(err)
}

// Command oncotrack-mcp serves the medication tools over MCP on stdio.
// Stdout carries the protocol, so logs only go to the rotated log file.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/mark3labs/mcp-go/server"

	"github.com/TheVortexX/OncoTrack-sub000/internal/cli"
	"github.com/TheVortexX/OncoTrack-sub000/internal/config"
	"github.com/TheVortexX/OncoTrack-sub000/internal/constants"
	"github.com/TheVortexX/OncoTrack-sub000/internal/lifecycle"
	"github.com/TheVortexX/OncoTrack-sub000/internal/logger"
	"github.com/TheVortexX/OncoTrack-sub000/internal/mcpserver"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path." type:"path" default:"${config_file}"`
	User    string `help:"User whose records the tools act on. Defaults to user_id from the config."`
}

func main() {
	kong.Parse(&CLI,
		kong.Name(constants.AppName+"-mcp"),
		kong.Description("MCP server for oncotrack medications and appointments"),
		kong.UsageOnError(),
		kong.Vars{
			"version":     constants.Version,
			"config_file": config.FilePath(constants.DefaultConfigDir),
		},
	)

	if err := run(); err != nil {
		logger.Error("MCP server stopped", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}
	if CLI.User != "" {
		cfg.UserID = CLI.User
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Debug mode mirrors logs to stderr, never stdout.
	if err := logger.Init(logger.Config{Debug: cfg.Debug, ConfigDir: cfg.ConfigDir, Level: cfg.LogLevel}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := cli.OpenStore(cfg)
	if err != nil {
		return err
	}
	if err := store.Load(ctx); err != nil {
		return err
	}
	defer store.Close()

	appCtx := cli.NewContext(ctx, cfg, store, cli.WithOutput(os.Stderr))
	// Alerts that fired or went missing while nothing was running are
	// re-derived before any tool call sees the queue.
	results, err := appCtx.Service.RescheduleAll(ctx, appCtx.UserID)
	if err != nil {
		logger.Error("Failed to reschedule reminders", "error", err)
	} else if failed := lifecycle.Failed(results); len(failed) > 0 {
		logger.Warn("Some reminders could not be scheduled", "failed", len(failed))
	}

	s := mcpserver.NewServer(appCtx.Service, appCtx.UserID, constants.Version)
	logger.Info("Serving MCP on stdio", "user", cfg.UserID, "driver", cfg.Database.Driver)

	stdio := server.NewStdioServer(s.MCPServer())
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

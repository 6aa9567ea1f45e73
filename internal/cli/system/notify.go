package system

import (
	"github.com/TheVortexX/OncoTrack-sub000/internal/cli"
	"github.com/TheVortexX/OncoTrack-sub000/internal/lifecycle"
	"github.com/TheVortexX/OncoTrack-sub000/internal/notifier"
)

// NotifyCmd delivers due alerts. It is meant to run every minute from cron
// or a systemd timer.
type NotifyCmd struct {
	DryRun bool `help:"Print notifications to stdout instead of sending them to the tray."`
}

func (c *NotifyCmd) Run(ctx *cli.Context) error {
	var sender notifier.Sender = notifier.WriterSender{W: ctx.Out}
	if !c.DryRun {
		sender = trayFromConfig(ctx)
	}

	report, results, err := ctx.Service.Dispatch(ctx, ctx.UserID, sender)
	if c.DryRun || len(report.Dropped) > 0 || len(report.Failed) > 0 {
		ctx.Printf("Sent %d, dropped %d stale, %d failed\n", len(report.Sent), len(report.Dropped), len(report.Failed))
	}
	if failed := lifecycle.Failed(results); len(failed) > 0 {
		ctx.Printf("Warning: %d item(s) could not be rescheduled\n", len(failed))
	}
	return err
}

func trayFromConfig(ctx *cli.Context) *notifier.Tray {
	tray := notifier.NewTray()
	n := ctx.Config.Notify
	if n.TrayIdentifier != "" {
		tray.Identifier = n.TrayIdentifier
	}
	if n.DurationMs > 0 {
		tray.DurationMs = uint32(n.DurationMs)
	}
	if n.Retries > 0 {
		tray.Retries = n.Retries
	}
	return tray
}

type RescheduleCmd struct{}

func (c *RescheduleCmd) Run(ctx *cli.Context) error {
	results, err := ctx.Service.RescheduleAll(ctx, ctx.UserID)
	if err != nil {
		return err
	}
	counts := map[lifecycle.Status]int{}
	for _, r := range results {
		counts[r.Status]++
	}
	ctx.Printf("Scheduled %d, skipped %d, failed %d\n",
		counts[lifecycle.StatusScheduled], counts[lifecycle.StatusSkipped], counts[lifecycle.StatusFailed])
	for _, r := range lifecycle.Failed(results) {
		ctx.Printf("  %s %s: %v\n", r.Kind, r.ID, r.Err)
	}
	return nil
}

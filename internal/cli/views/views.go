// Package views holds the read-only commands that show the day and the
// days ahead.
package views

import (
	"fmt"

	"github.com/TheVortexX/OncoTrack-sub000/internal/cli"
	"github.com/TheVortexX/OncoTrack-sub000/internal/constants"
	"github.com/TheVortexX/OncoTrack-sub000/internal/notifier"
	"github.com/TheVortexX/OncoTrack-sub000/internal/tui/components/board"
	"github.com/TheVortexX/OncoTrack-sub000/internal/utils"
)

// TodayCmd prints today's adherence board.
type TodayCmd struct{}

func (c *TodayCmd) Run(ctx *cli.Context) error {
	b, err := ctx.Service.TodayBoard(ctx, ctx.UserID)
	if err != nil {
		return err
	}
	ctx.Println(board.Render(b, board.NoCursor))
	return nil
}

// DueCmd lists the medications due on a date.
type DueCmd struct {
	Date string `arg:"" optional:"" help:"Date (YYYY-MM-DD). Defaults to today."`
}

func (c *DueCmd) Run(ctx *cli.Context) error {
	loc, err := ctx.Location()
	if err != nil {
		return err
	}
	date := ctx.Now().In(loc)
	if c.Date != "" {
		if date, err = utils.ParseDateInLocation(c.Date, loc); err != nil {
			return err
		}
	}

	meds, err := ctx.Service.ListMedications(ctx, ctx.UserID)
	if err != nil {
		return err
	}
	day := date.Format(constants.DateFormat)
	shown := 0
	for _, med := range meds {
		due, err := ctx.Service.IsDue(ctx, ctx.UserID, med.ID, date)
		if err != nil {
			return err
		}
		if !due {
			continue
		}
		if shown == 0 {
			ctx.Printf("Due on %s:\n", day)
		}
		shown++
		ctx.Printf("  %-20s %-10s %s\n", med.Name, med.FormatDosage(), med.FormatSlots())
	}
	if shown == 0 {
		ctx.Printf("Nothing due on %s\n", day)
	}
	return nil
}

// UpcomingCmd lists doses and appointments over the next days.
type UpcomingCmd struct {
	Days int `short:"d" help:"Number of days to look ahead." default:"7"`
}

func (c *UpcomingCmd) Validate() error {
	if c.Days < 1 || c.Days > constants.SearchHorizonDays {
		return fmt.Errorf("days must be between 1 and %d", constants.SearchHorizonDays)
	}
	return nil
}

func (c *UpcomingCmd) Run(ctx *cli.Context) error {
	events, err := ctx.Service.Upcoming(ctx, ctx.UserID, c.Days)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		ctx.Printf("Nothing in the next %d day(s)\n", c.Days)
		return nil
	}

	lastDay := ""
	for _, e := range events {
		if day := e.At.Format("Mon 2006-01-02"); day != lastDay {
			if lastDay != "" {
				ctx.Println()
			}
			ctx.Println(day)
			lastDay = day
		}
		line := fmt.Sprintf("  %s  %s", e.At.Format(constants.TimeFormat), e.Title)
		switch e.Kind {
		case notifier.KindMedication:
			line += " (" + string(e.Slot) + ")"
			if e.Detail != "" {
				line += " " + e.Detail
			}
		case notifier.KindAppointment:
			if e.Detail != "" {
				line += " @ " + e.Detail
			}
		}
		ctx.Println(line)
	}
	return nil
}

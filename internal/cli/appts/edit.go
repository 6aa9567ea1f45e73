package appts

import (
	"fmt"

	"github.com/TheVortexX/OncoTrack-sub000/internal/cli"
	"github.com/TheVortexX/OncoTrack-sub000/internal/utils"
)

type EditCmd struct {
	Ref      string  `arg:"" help:"Appointment ID, ID prefix or title."`
	Title    *string `help:"New title."`
	Start    *string `short:"s" help:"New start; the duration is kept unless --end is set."`
	End      *string `short:"e" help:"New end."`
	Location *string `short:"l" help:"New location."`
	Travel   *int    `help:"New travel time in minutes."`
	Notes    *string `short:"n" help:"New notes."`
}

func (c *EditCmd) Run(ctx *cli.Context) error {
	appt, err := ctx.Service.FindAppointment(ctx, ctx.UserID, c.Ref)
	if err != nil {
		return err
	}
	loc, err := ctx.Location()
	if err != nil {
		return err
	}

	if c.Title != nil {
		appt.Title = *c.Title
	}
	if c.Start != nil {
		start, err := utils.ParseDateTime(*c.Start, loc)
		if err != nil {
			return fmt.Errorf("invalid --start: %w", err)
		}
		appt.End = start.Add(appt.Duration())
		appt.Start = start
	}
	if c.End != nil {
		end, err := utils.ParseDateTime(*c.End, loc)
		if err != nil {
			return fmt.Errorf("invalid --end: %w", err)
		}
		appt.End = end
	}
	if c.Location != nil {
		appt.Location = *c.Location
	}
	if c.Travel != nil {
		appt.TravelTimeMin = *c.Travel
	}
	if c.Notes != nil {
		appt.Notes = *c.Notes
	}

	updated, err := ctx.Service.EditAppointment(ctx, ctx.UserID, appt)
	if updated.ID == "" {
		return err
	}
	ctx.Printf("Updated appointment: %s on %s\n", updated.Title, formatRange(updated, loc))
	return ctx.Warn(err)
}

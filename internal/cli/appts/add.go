package appts

import (
	"fmt"
	"time"

	"github.com/TheVortexX/OncoTrack-sub000/internal/cli"
	"github.com/TheVortexX/OncoTrack-sub000/internal/constants"
	"github.com/TheVortexX/OncoTrack-sub000/internal/models"
	"github.com/TheVortexX/OncoTrack-sub000/internal/utils"
)

// DefaultDurationMin is used when neither --end nor --duration is given.
const DefaultDurationMin = 60

type AddCmd struct {
	Title    string `arg:"" help:"Appointment title."`
	Start    string `short:"s" help:"Start (YYYY-MM-DD HH:MM or RFC3339)." required:""`
	End      string `short:"e" help:"End (YYYY-MM-DD HH:MM or RFC3339)."`
	Duration int    `short:"d" help:"Duration in minutes when --end is not set."`
	Location string `short:"l" help:"Where the appointment takes place."`
	Travel   int    `help:"Travel time in minutes; the reminder fires this much earlier."`
	Notes    string `short:"n" help:"Free-form notes."`
}

func (c *AddCmd) Validate() error {
	if c.End != "" && c.Duration != 0 {
		return fmt.Errorf("--end and --duration are mutually exclusive")
	}
	if c.Duration < 0 {
		return fmt.Errorf("duration cannot be negative")
	}
	if c.Travel < 0 {
		return fmt.Errorf("travel time cannot be negative")
	}
	return nil
}

func (c *AddCmd) Run(ctx *cli.Context) error {
	loc, err := ctx.Location()
	if err != nil {
		return err
	}
	start, end, err := parseRange(c.Start, c.End, c.Duration, loc)
	if err != nil {
		return err
	}

	appt := models.Appointment{
		Title:         c.Title,
		Location:      c.Location,
		Start:         start,
		End:           end,
		TravelTimeMin: c.Travel,
		Notes:         c.Notes,
	}
	appt, err = ctx.Service.AddAppointment(ctx, ctx.UserID, appt)
	if appt.ID == "" {
		return err
	}
	ctx.Printf("Added appointment: %s on %s\n", appt.Title, formatRange(appt, loc))
	ctx.Printf("  ID: %s\n", appt.ID)
	if appt.NotificationID == "" && err == nil {
		ctx.Println("  No reminder scheduled (reminder time has passed or notifications are off)")
	}
	return ctx.Warn(err)
}

func parseRange(startStr, endStr string, durationMin int, loc *time.Location) (time.Time, time.Time, error) {
	start, err := utils.ParseDateTime(startStr, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --start: %w", err)
	}
	if endStr != "" {
		end, err := utils.ParseDateTime(endStr, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --end: %w", err)
		}
		return start, end, nil
	}
	if durationMin == 0 {
		durationMin = DefaultDurationMin
	}
	return start, start.Add(time.Duration(durationMin) * time.Minute), nil
}

func formatRange(appt models.Appointment, loc *time.Location) string {
	start, end := appt.Start.In(loc), appt.End.In(loc)
	s := start.Format(constants.DateFormat + " " + constants.TimeFormat)
	if start.Format(constants.DateFormat) == end.Format(constants.DateFormat) {
		return s + "-" + end.Format(constants.TimeFormat)
	}
	return s + " to " + end.Format(constants.DateFormat+" "+constants.TimeFormat)
}

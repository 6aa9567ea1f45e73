package appts

import (
	"sort"

	"github.com/TheVortexX/OncoTrack-sub000/internal/cli"
)

type ListCmd struct {
	All     bool `short:"a" help:"Include appointments that have ended."`
	ShowIDs bool `help:"Show appointment IDs." name:"show-ids"`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	appts, err := ctx.Service.ListAppointments(ctx, ctx.UserID)
	if err != nil {
		return err
	}
	loc, err := ctx.Location()
	if err != nil {
		return err
	}
	now := ctx.Now()

	sort.Slice(appts, func(i, j int) bool { return appts[i].Start.Before(appts[j].Start) })

	shown := 0
	for _, appt := range appts {
		if !c.All && appt.End.Before(now) {
			continue
		}
		if shown == 0 {
			ctx.Println("Appointments:")
		}
		shown++

		idStr := ""
		if c.ShowIDs {
			idStr = " (ID: " + appt.ID + ")"
		}
		ctx.Printf("  %s  %s%s\n", formatRange(appt, loc), appt.Title, idStr)
		if appt.Location != "" {
			ctx.Printf("      @ %s", appt.Location)
			if appt.TravelTimeMin > 0 {
				ctx.Printf(" (%d min travel)", appt.TravelTimeMin)
			}
			ctx.Println()
		}
		if appt.Notes != "" {
			ctx.Printf("      %s\n", appt.Notes)
		}
	}
	if shown == 0 {
		ctx.Println("No appointments found")
	}
	return nil
}

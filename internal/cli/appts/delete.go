package appts

import (
	"github.com/TheVortexX/OncoTrack-sub000/internal/cli"
)

type DeleteCmd struct {
	Ref string `arg:"" help:"Appointment ID, ID prefix or title."`
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	appt, err := ctx.Service.FindAppointment(ctx, ctx.UserID, c.Ref)
	if err != nil {
		return err
	}
	if err := ctx.Warn(ctx.Service.DeleteAppointment(ctx, ctx.UserID, appt.ID)); err != nil {
		return err
	}
	ctx.Printf("Deleted appointment: %s\n", appt.Title)
	return nil
}

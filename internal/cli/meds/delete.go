package meds

import (
	"github.com/TheVortexX/OncoTrack-sub000/internal/cli"
)

type DeleteCmd struct {
	Ref string `arg:"" help:"Medication ID, ID prefix or name."`
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	med, err := ctx.Service.FindMedication(ctx, ctx.UserID, c.Ref)
	if err != nil {
		return err
	}
	err = ctx.Service.DeleteMedication(ctx, ctx.UserID, med.ID)
	if err = ctx.Warn(err); err != nil {
		return err
	}
	ctx.Printf("Deleted medication: %s\n", med.Name)
	return nil
}

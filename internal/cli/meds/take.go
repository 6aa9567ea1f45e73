package meds

import (
	"errors"

	"github.com/TheVortexX/OncoTrack-sub000/internal/cli"
	"github.com/TheVortexX/OncoTrack-sub000/internal/constants"
	"github.com/TheVortexX/OncoTrack-sub000/internal/models"
	"github.com/TheVortexX/OncoTrack-sub000/internal/scheduler"
	"github.com/TheVortexX/OncoTrack-sub000/internal/utils"
)

type TakeCmd struct {
	Ref  string `arg:"" help:"Medication ID, ID prefix or name."`
	Slot string `arg:"" help:"Slot taken (morning|afternoon|evening)."`
}

func (c *TakeCmd) Run(ctx *cli.Context) error {
	slot, err := models.ParseSlot(c.Slot)
	if err != nil {
		return err
	}
	med, err := ctx.Service.FindMedication(ctx, ctx.UserID, c.Ref)
	if err != nil {
		return err
	}
	entry, err := ctx.Service.LogIntake(ctx, ctx.UserID, med.ID, slot)
	if err != nil {
		return err
	}
	loc, err := ctx.Location()
	if err != nil {
		return err
	}
	ctx.Printf("Logged %s %s dose at %s\n", med.Name, slot, entry.LoggedAt.In(loc).Format("15:04"))
	return nil
}

type DueCmd struct {
	Ref  string `arg:"" help:"Medication ID, ID prefix or name."`
	Date string `help:"Date to check (YYYY-MM-DD). Defaults to today."`
}

func (c *DueCmd) Run(ctx *cli.Context) error {
	med, err := ctx.Service.FindMedication(ctx, ctx.UserID, c.Ref)
	if err != nil {
		return err
	}
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

	due, err := ctx.Service.IsDue(ctx, ctx.UserID, med.ID, date)
	if err != nil {
		return err
	}
	day := date.Format(constants.DateFormat)
	if due {
		ctx.Printf("%s is due on %s (%s)\n", med.Name, day, med.FormatSlots())
	} else {
		ctx.Printf("%s is not due on %s\n", med.Name, day)
	}
	return nil
}

type NextCmd struct {
	Ref string `arg:"" help:"Medication ID, ID prefix or name."`
}

func (c *NextCmd) Run(ctx *cli.Context) error {
	med, err := ctx.Service.FindMedication(ctx, ctx.UserID, c.Ref)
	if err != nil {
		return err
	}
	at, slot, err := ctx.Service.NextDose(ctx, ctx.UserID, med.ID)
	if errors.Is(err, scheduler.ErrNoUpcomingOccurrence) {
		ctx.Printf("%s has no upcoming doses\n", med.Name)
		return nil
	}
	if err != nil {
		return err
	}
	ctx.Printf("Next %s dose: %s (%s)\n", med.Name, at.Format("Mon 2006-01-02 15:04"), slot)
	return nil
}

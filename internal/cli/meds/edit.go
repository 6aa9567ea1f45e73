package meds

import (
	"fmt"

	"github.com/TheVortexX/OncoTrack-sub000/internal/cli"
	"github.com/TheVortexX/OncoTrack-sub000/internal/models"
	"github.com/TheVortexX/OncoTrack-sub000/internal/tui/forms"
)

type EditCmd struct {
	Ref         string   `arg:"" help:"Medication ID, ID prefix or name."`
	Name        *string  `help:"New name."`
	Dosage      *float64 `short:"d" help:"New dose amount."`
	Unit        *string  `short:"u" help:"New dose unit."`
	Frequency   *string  `short:"f" help:"New frequency."`
	Start       *string  `short:"s" help:"New start date (YYYY-MM-DD)."`
	End         *string  `short:"e" help:"New end date (YYYY-MM-DD); empty removes it."`
	Slots       *string  `short:"t" help:"New comma-separated time slots."`
	Notes       *string  `short:"n" help:"New notes."`
	Interactive bool     `short:"i" help:"Edit the medication with a form."`
}

func (c *EditCmd) Run(ctx *cli.Context) error {
	med, err := ctx.Service.FindMedication(ctx, ctx.UserID, c.Ref)
	if err != nil {
		return err
	}

	if c.Interactive {
		now, err := ctx.LocalNow()
		if err != nil {
			return err
		}
		form := forms.FromMedication(med, now)
		if err := forms.NewMedicationForm(form).Run(); err != nil {
			return fmt.Errorf("form cancelled: %w", err)
		}
		if med, err = form.Apply(med); err != nil {
			return err
		}
	} else if err := c.apply(&med); err != nil {
		return err
	}

	updated, err := ctx.Service.EditMedication(ctx, ctx.UserID, med)
	if updated.ID == "" {
		return err
	}
	ctx.Printf("Updated medication: %s (%s, %s)\n", updated.Name, updated.Frequency, updated.FormatSlots())
	return ctx.Warn(err)
}

func (c *EditCmd) apply(med *models.Medication) error {
	if c.Name != nil {
		med.Name = *c.Name
	}
	if c.Dosage != nil {
		med.Dosage = *c.Dosage
	}
	if c.Unit != nil {
		med.Unit = *c.Unit
	}
	if c.Frequency != nil {
		freq, ok := models.ParseFrequency(*c.Frequency)
		if !ok {
			return fmt.Errorf("unknown frequency %q", *c.Frequency)
		}
		med.Frequency = freq
	}
	if c.Start != nil {
		med.StartDate = *c.Start
	}
	if c.End != nil {
		med.EndDate = *c.End
	}
	if c.Slots != nil {
		slots, err := models.ParseSlots(*c.Slots)
		if err != nil {
			return err
		}
		med.TimeSlots = slots
	}
	if c.Notes != nil {
		med.Notes = *c.Notes
	}
	return nil
}

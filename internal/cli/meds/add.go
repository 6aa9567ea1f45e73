package meds

import (
	"fmt"

	"github.com/TheVortexX/OncoTrack-sub000/internal/cli"
	"github.com/TheVortexX/OncoTrack-sub000/internal/constants"
	"github.com/TheVortexX/OncoTrack-sub000/internal/models"
	"github.com/TheVortexX/OncoTrack-sub000/internal/tui/forms"
)

type AddCmd struct {
	Name        string  `arg:"" optional:"" help:"Medication name."`
	Dosage      float64 `short:"d" help:"Dose amount."`
	Unit        string  `short:"u" help:"Dose unit, e.g. mg."`
	Frequency   string  `short:"f" help:"Frequency (daily|twice-daily|three-times-daily|every-other-day|every-three-days|weekly|monthly|as-needed|other)." default:"daily"`
	Start       string  `short:"s" help:"Start date (YYYY-MM-DD). Defaults to today."`
	End         string  `short:"e" help:"Inclusive end date (YYYY-MM-DD)."`
	Slots       string  `short:"t" help:"Comma-separated time slots (morning,afternoon,evening)." default:"morning"`
	Notes       string  `short:"n" help:"Free-form notes."`
	Interactive bool    `short:"i" help:"Fill in the medication with a form."`
}

func (c *AddCmd) Validate() error {
	if !c.Interactive && c.Name == "" {
		return fmt.Errorf("a name is required unless --interactive is set")
	}
	if c.Dosage < 0 {
		return fmt.Errorf("dosage cannot be negative")
	}
	if _, ok := models.ParseFrequency(c.Frequency); !ok {
		return fmt.Errorf("unknown frequency %q", c.Frequency)
	}
	if _, err := models.ParseSlots(c.Slots); err != nil {
		return err
	}
	return nil
}

func (c *AddCmd) Run(ctx *cli.Context) error {
	now, err := ctx.LocalNow()
	if err != nil {
		return err
	}

	freq, _ := models.ParseFrequency(c.Frequency)
	slots, err := models.ParseSlots(c.Slots)
	if err != nil {
		return err
	}
	med := models.Medication{
		Name:      c.Name,
		Dosage:    c.Dosage,
		Unit:      c.Unit,
		Frequency: freq,
		StartDate: c.Start,
		EndDate:   c.End,
		TimeSlots: slots,
		Notes:     c.Notes,
	}

	if c.Interactive {
		form := forms.FromMedication(med, now)
		if err := forms.NewMedicationForm(form).Run(); err != nil {
			return fmt.Errorf("form cancelled: %w", err)
		}
		if med, err = form.Apply(models.Medication{}); err != nil {
			return err
		}
	} else if med.StartDate == "" {
		med.StartDate = now.Format(constants.DateFormat)
	}

	med, err = ctx.Service.AddMedication(ctx, ctx.UserID, med)
	if med.ID == "" {
		return err
	}
	ctx.Printf("Added medication: %s (%s, %s)\n", med.Name, med.Frequency, med.FormatSlots())
	ctx.Printf("  ID: %s\n", med.ID)
	return ctx.Warn(err)
}

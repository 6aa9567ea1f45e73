package meds

import (
	"github.com/TheVortexX/OncoTrack-sub000/internal/cli"
)

type ListCmd struct {
	ShowIDs bool `help:"Show medication IDs." name:"show-ids"`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	meds, err := ctx.Service.ListMedications(ctx, ctx.UserID)
	if err != nil {
		return err
	}
	if len(meds) == 0 {
		ctx.Println("No medications found")
		return nil
	}

	ctx.Println("Medications:")
	for _, med := range meds {
		idStr := ""
		if c.ShowIDs {
			idStr = " (ID: " + med.ID + ")"
		}
		dosage := med.FormatDosage()
		if dosage != "" {
			dosage = " " + dosage
		}
		ctx.Printf("  %s%s%s - %s, %s\n", med.Name, dosage, idStr, med.Frequency, med.FormatSlots())

		span := "from " + med.StartDate
		if med.EndDate != "" {
			span += " to " + med.EndDate
		}
		reminders := "off"
		if med.HasReminders() {
			reminders = "on"
		}
		ctx.Printf("      %s, reminders %s\n", span, reminders)
		if med.Notes != "" {
			ctx.Printf("      %s\n", med.Notes)
		}
	}
	return nil
}

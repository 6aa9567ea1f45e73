package system

import (
	"encoding/json"
	"fmt"

	"github.com/TheVortexX/OncoTrack-sub000/internal/cli"
	"github.com/TheVortexX/OncoTrack-sub000/internal/config"
)

type DebugCmd struct {
	DBPath          DebugDBPathCmd          `cmd:"" name:"db-path" help:"Show database path."`
	DumpMedication  DebugDumpMedicationCmd  `cmd:"" help:"Dump a medication as JSON."`
	DumpAppointment DebugDumpAppointmentCmd `cmd:"" help:"Dump an appointment as JSON."`
	DumpQueue       DebugDumpQueueCmd       `cmd:"" help:"Dump pending alerts as JSON."`
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	output := map[string]string{
		"driver": ctx.Config.Database.Driver,
		"path":   ctx.Store.GetConfigPath(),
	}
	if ctx.Config.Database.Driver == config.DriverPostgres {
		output["path"] = ""
	}
	return printJSON(ctx, output)
}

type DebugDumpMedicationCmd struct {
	Ref string `arg:"" help:"Medication ID, ID prefix or name."`
}

func (cmd *DebugDumpMedicationCmd) Run(ctx *cli.Context) error {
	med, err := ctx.Service.FindMedication(ctx, ctx.UserID, cmd.Ref)
	if err != nil {
		return err
	}
	return printJSON(ctx, med)
}

type DebugDumpAppointmentCmd struct {
	Ref string `arg:"" help:"Appointment ID, ID prefix or title."`
}

func (cmd *DebugDumpAppointmentCmd) Run(ctx *cli.Context) error {
	appt, err := ctx.Service.FindAppointment(ctx, ctx.UserID, cmd.Ref)
	if err != nil {
		return err
	}
	return printJSON(ctx, appt)
}

type DebugDumpQueueCmd struct{}

func (cmd *DebugDumpQueueCmd) Run(ctx *cli.Context) error {
	pending, err := ctx.Queue.Pending(ctx)
	if err != nil {
		return err
	}
	return printJSON(ctx, pending)
}

func printJSON(ctx *cli.Context, v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.Println(string(jsonBytes))
	return nil
}

package meds

import (
	"strings"
	"testing"
	"time"

	"github.com/TheVortexX/OncoTrack-sub000/internal/cli/clitest"
	"github.com/TheVortexX/OncoTrack-sub000/internal/models"
)

func addTamoxifen(t *testing.T, env *clitest.Env) models.Medication {
	t.Helper()
	cmd := &AddCmd{
		Name:      "Tamoxifen",
		Dosage:    20,
		Unit:      "mg",
		Frequency: "daily",
		Slots:     "evening,morning",
	}
	if err := cmd.Validate(); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if err := cmd.Run(env.Ctx); err != nil {
		t.Fatalf("med add failed: %v", err)
	}
	med, err := env.Ctx.Service.FindMedication(env.Ctx, env.Ctx.UserID, "tamoxifen")
	if err != nil {
		t.Fatalf("FindMedication() failed: %v", err)
	}
	return med
}

func TestAddCmd(t *testing.T) {
	env := clitest.New(t)
	med := addTamoxifen(t, env)

	if med.StartDate != "2024-03-01" {
		t.Errorf("StartDate = %q, want today", med.StartDate)
	}
	if len(med.NotificationIDs) != 2 {
		t.Errorf("NotificationIDs = %v, want one per slot", med.NotificationIDs)
	}
	if !strings.Contains(env.Out.String(), "Added medication: Tamoxifen (Daily, morning, evening)") {
		t.Errorf("unexpected output: %q", env.Out.String())
	}
}

func TestAddCmdValidate(t *testing.T) {
	tests := []struct {
		name    string
		cmd     AddCmd
		wantErr bool
	}{
		{"valid", AddCmd{Name: "A", Frequency: "weekly", Slots: "morning"}, false},
		{"interactive without name", AddCmd{Interactive: true, Frequency: "daily", Slots: "morning"}, false},
		{"missing name", AddCmd{Frequency: "daily", Slots: "morning"}, true},
		{"negative dosage", AddCmd{Name: "A", Dosage: -1, Frequency: "daily", Slots: "morning"}, true},
		{"unknown frequency", AddCmd{Name: "A", Frequency: "hourly", Slots: "morning"}, true},
		{"bad slot", AddCmd{Name: "A", Frequency: "daily", Slots: "noon"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAddCmdRejectsInvalidRange(t *testing.T) {
	env := clitest.New(t)
	cmd := &AddCmd{Name: "A", Frequency: "daily", Slots: "morning", Start: "2024-03-05", End: "2024-03-01"}
	if err := cmd.Run(env.Ctx); err == nil {
		t.Fatal("expected an error for an end date before the start")
	}
	meds, _ := env.Ctx.Service.ListMedications(env.Ctx, env.Ctx.UserID)
	if len(meds) != 0 {
		t.Errorf("stored %d medications, want 0", len(meds))
	}
}

func TestEditCmd(t *testing.T) {
	env := clitest.New(t)
	med := addTamoxifen(t, env)

	slots := "afternoon"
	dosage := 10.0
	cmd := &EditCmd{Ref: med.ID[:8], Slots: &slots, Dosage: &dosage}
	if err := cmd.Run(env.Ctx); err != nil {
		t.Fatalf("med edit failed: %v", err)
	}

	got, err := env.Ctx.Service.GetMedication(env.Ctx, env.Ctx.UserID, med.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Dosage != 10 || len(got.TimeSlots) != 1 || got.TimeSlots[0] != models.SlotAfternoon {
		t.Errorf("edit not applied: %+v", got)
	}
	if _, ok := got.NotificationIDs[models.SlotMorning]; ok {
		t.Error("morning reminder should have been cancelled")
	}
	if got.NotificationIDs[models.SlotAfternoon] == "" {
		t.Error("afternoon reminder should have been scheduled")
	}

	freq := "hourly"
	if err := (&EditCmd{Ref: med.ID, Frequency: &freq}).Run(env.Ctx); err == nil {
		t.Error("expected an error for an unknown frequency")
	}
}

func TestDeleteCmd(t *testing.T) {
	env := clitest.New(t)
	med := addTamoxifen(t, env)

	if err := (&DeleteCmd{Ref: "Tamoxifen"}).Run(env.Ctx); err != nil {
		t.Fatalf("med delete failed: %v", err)
	}
	if _, err := env.Ctx.Service.GetMedication(env.Ctx, env.Ctx.UserID, med.ID); err == nil {
		t.Error("medication still stored after delete")
	}
	pending, err := env.Ctx.Queue.Pending(env.Ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Errorf("%d alerts left after delete, want 0", len(pending))
	}
	if err := (&DeleteCmd{Ref: "Tamoxifen"}).Run(env.Ctx); err == nil {
		t.Error("deleting a missing medication should fail")
	}
}

func TestListCmd(t *testing.T) {
	env := clitest.New(t)
	if err := (&ListCmd{}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(env.Out.String(), "No medications found") {
		t.Errorf("unexpected output: %q", env.Out.String())
	}

	addTamoxifen(t, env)
	env.Out.Reset()
	if err := (&ListCmd{ShowIDs: true}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	out := env.Out.String()
	for _, want := range []string{"Tamoxifen 20 mg (ID: ", "Daily, morning, evening", "from 2024-03-01, reminders on"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTakeCmd(t *testing.T) {
	env := clitest.New(t)
	med := addTamoxifen(t, env)

	if err := (&TakeCmd{Ref: "Tamoxifen", Slot: "morning"}).Run(env.Ctx); err != nil {
		t.Fatalf("med take failed: %v", err)
	}
	if !strings.Contains(env.Out.String(), "Logged Tamoxifen morning dose at 09:30") {
		t.Errorf("unexpected output: %q", env.Out.String())
	}
	logs, err := env.Ctx.Service.Repository().ListIntakeLogs(env.Ctx, env.Ctx.UserID, clitest.Now)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 || logs[0].MedicationID != med.ID {
		t.Errorf("intake logs = %+v", logs)
	}

	if err := (&TakeCmd{Ref: "Tamoxifen", Slot: "afternoon"}).Run(env.Ctx); err == nil {
		t.Error("taking a slot the medication does not use should fail")
	}
	if err := (&TakeCmd{Ref: "Tamoxifen", Slot: "noon"}).Run(env.Ctx); err == nil {
		t.Error("taking an unknown slot should fail")
	}
}

func TestDueAndNextCmd(t *testing.T) {
	env := clitest.New(t)
	cmd := &AddCmd{Name: "Letrozole", Frequency: "every-other-day", Slots: "morning"}
	if err := cmd.Run(env.Ctx); err != nil {
		t.Fatal(err)
	}

	env.Out.Reset()
	if err := (&DueCmd{Ref: "Letrozole", Date: "2024-03-02"}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	if err := (&DueCmd{Ref: "Letrozole", Date: "2024-03-03"}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	out := env.Out.String()
	if !strings.Contains(out, "Letrozole is not due on 2024-03-02") || !strings.Contains(out, "Letrozole is due on 2024-03-03") {
		t.Errorf("unexpected output:\n%s", out)
	}

	env.SetNow(time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC))
	env.Out.Reset()
	if err := (&NextCmd{Ref: "Letrozole"}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(env.Out.String(), "Next Letrozole dose: Sun 2024-03-03 08:00 (morning)") {
		t.Errorf("unexpected output: %q", env.Out.String())
	}

	prn := &AddCmd{Name: "Ondansetron", Frequency: "as-needed", Slots: "morning"}
	if err := prn.Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	env.Out.Reset()
	if err := (&NextCmd{Ref: "Ondansetron"}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(env.Out.String(), "has no upcoming doses") {
		t.Errorf("unexpected output: %q", env.Out.String())
	}
}

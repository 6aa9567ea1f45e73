package storage

import (
	"context"
	"testing"
	"time"

	"github.com/TheVortexX/OncoTrack-sub000/internal/models"
)

func TestCopyUser(t *testing.T) {
	ctx := context.Background()
	src, dst := NewMemoryStore(), NewMemoryStore()
	srcRepo, dstRepo := NewRepository(src), NewRepository(dst)

	settings := models.DefaultSettings()
	settings.Morning = "07:15"
	if err := srcRepo.SaveSettings(ctx, "u1", settings); err != nil {
		t.Fatal(err)
	}
	med := models.Medication{ID: "m1", Name: "Tamoxifen", Frequency: models.FrequencyDaily, StartDate: "2024-03-01", TimeSlots: []models.Slot{models.SlotMorning}}
	if err := srcRepo.SaveMedication(ctx, "u1", med); err != nil {
		t.Fatal(err)
	}
	logAt := time.Date(2024, 3, 1, 8, 5, 0, 0, time.UTC)
	if err := srcRepo.AddIntakeLog(ctx, "u1", models.IntakeLog{ID: "l1", MedicationID: "m1", Slot: models.SlotMorning, LoggedAt: logAt}); err != nil {
		t.Fatal(err)
	}
	if err := srcRepo.SaveMedication(ctx, "u2", models.Medication{ID: "other", Name: "Other", Frequency: models.FrequencyDaily, StartDate: "2024-03-01"}); err != nil {
		t.Fatal(err)
	}

	counts, err := CopyUser(ctx, src, dst, "u1")
	if err != nil {
		t.Fatalf("CopyUser() failed: %v", err)
	}
	if counts["medications"] != 1 || counts["settings"] != 1 || counts["intake_logs"] != 1 || counts["appointments"] != 0 {
		t.Errorf("counts = %v", counts)
	}

	got, err := dstRepo.GetSettings(ctx, "u1")
	if err != nil || got.Morning != "07:15" {
		t.Errorf("settings not copied: %+v, %v", got, err)
	}
	if _, err := dstRepo.GetMedication(ctx, "u1", "m1"); err != nil {
		t.Errorf("medication not copied: %v", err)
	}
	logs, err := dstRepo.ListIntakeLogs(ctx, "u1", logAt)
	if err != nil || len(logs) != 1 {
		t.Errorf("intake logs = %v, %v", logs, err)
	}
	if meds, _ := dstRepo.ListMedications(ctx, "u2"); len(meds) != 0 {
		t.Errorf("copied another user's medications: %v", meds)
	}
}

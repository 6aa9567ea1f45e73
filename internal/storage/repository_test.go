package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/TheVortexX/OncoTrack-sub000/internal/models"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	return NewRepository(NewMemoryStore())
}

func TestRepositoryMedications(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	meds := []models.Medication{
		{ID: "m2", Name: "Zofran", Frequency: models.FrequencyDaily, StartDate: "2024-01-01", TimeSlots: []models.Slot{models.SlotMorning}},
		{ID: "m1", Name: "Aspirin", Frequency: models.FrequencyWeekly, StartDate: "2024-01-01", TimeSlots: []models.Slot{models.SlotEvening}},
	}
	for _, m := range meds {
		if err := repo.SaveMedication(ctx, "u1", m); err != nil {
			t.Fatalf("SaveMedication failed: %v", err)
		}
	}

	list, err := repo.ListMedications(ctx, "u1")
	if err != nil {
		t.Fatalf("ListMedications failed: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Aspirin" {
		t.Fatalf("expected two medications sorted by name, got %+v", list)
	}

	ids := map[models.Slot]string{models.SlotMorning: "h1"}
	if err := repo.SetMedicationNotificationIDs(ctx, "u1", "m2", ids); err != nil {
		t.Fatalf("SetMedicationNotificationIDs failed: %v", err)
	}
	got, err := repo.GetMedication(ctx, "u1", "m2")
	if err != nil {
		t.Fatalf("GetMedication failed: %v", err)
	}
	if got.NotificationIDs[models.SlotMorning] != "h1" || got.Name != "Zofran" {
		t.Errorf("unexpected medication after handle update: %+v", got)
	}

	if err := repo.DeleteMedication(ctx, "u1", "m2"); err != nil {
		t.Fatalf("DeleteMedication failed: %v", err)
	}
	if _, err := repo.GetMedication(ctx, "u1", "m2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	other, err := repo.ListMedications(ctx, "u2")
	if err != nil {
		t.Fatalf("ListMedications failed: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("users must not see each other's medications, got %d", len(other))
	}
}

func TestRepositoryAppointments(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	_ = repo.SaveAppointment(ctx, "u1", models.Appointment{ID: "a2", Title: "Scan", Start: base.Add(48 * time.Hour), End: base.Add(49 * time.Hour)})
	_ = repo.SaveAppointment(ctx, "u1", models.Appointment{ID: "a1", Title: "Oncology", Start: base, End: base.Add(time.Hour)})

	list, err := repo.ListAppointments(ctx, "u1")
	if err != nil {
		t.Fatalf("ListAppointments failed: %v", err)
	}
	if len(list) != 2 || list[0].ID != "a1" {
		t.Fatalf("expected appointments ordered by start, got %+v", list)
	}

	if err := repo.SetAppointmentNotificationID(ctx, "u1", "a1", "h9"); err != nil {
		t.Fatalf("SetAppointmentNotificationID failed: %v", err)
	}
	got, _ := repo.GetAppointment(ctx, "u1", "a1")
	if got.NotificationID != "h9" || !got.Start.Equal(base) {
		t.Errorf("unexpected appointment: %+v", got)
	}

	if err := repo.SetAppointmentNotificationID(ctx, "u1", "a1", ""); err != nil {
		t.Fatalf("clearing handle failed: %v", err)
	}
	got, _ = repo.GetAppointment(ctx, "u1", "a1")
	if got.NotificationID != "" {
		t.Errorf("expected cleared handle, got %q", got.NotificationID)
	}
}

func TestRepositoryIntakeLogs(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	logs := []models.IntakeLog{
		{ID: "l1", MedicationID: "m1", Slot: models.SlotMorning, LoggedAt: day.Add(8 * time.Hour)},
		{ID: "l2", MedicationID: "m1", Slot: models.SlotMorning, LoggedAt: day.Add(-2 * time.Hour)},
		{ID: "l3", MedicationID: "m2", Slot: models.SlotEvening, LoggedAt: day.Add(19 * time.Hour)},
	}
	for _, l := range logs {
		if err := repo.AddIntakeLog(ctx, "u1", l); err != nil {
			t.Fatalf("AddIntakeLog failed: %v", err)
		}
	}

	today, err := repo.ListIntakeLogs(ctx, "u1", day.Add(12*time.Hour))
	if err != nil {
		t.Fatalf("ListIntakeLogs failed: %v", err)
	}
	if len(today) != 2 || today[0].ID != "l1" || today[1].ID != "l3" {
		t.Errorf("expected l1 and l3 for the day, got %+v", today)
	}

	n, err := repo.DeleteIntakeLogs(ctx, "u1", "m1")
	if err != nil {
		t.Fatalf("DeleteIntakeLogs failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 logs removed, got %d", n)
	}
}

func TestRepositorySettings(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	got, err := repo.GetSettings(ctx, "u1")
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if got != models.DefaultSettings() {
		t.Errorf("expected defaults for a new user, got %+v", got)
	}

	custom := models.DefaultSettings()
	custom.NotificationsEnabled = false
	custom.DefaultReminderMin = 0
	custom.Morning = "07:30"
	if err := repo.SaveSettings(ctx, "u1", custom); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	got, err = repo.GetSettings(ctx, "u1")
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if got != custom {
		t.Errorf("GetSettings = %+v, want %+v", got, custom)
	}
}

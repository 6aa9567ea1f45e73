package models

import (
	"errors"
	"testing"
)

func TestMedication_Validate(t *testing.T) {
	tests := []struct {
		name    string
		med     Medication
		wantErr bool
	}{
		{
			name: "valid open-ended medication",
			med: Medication{
				Name:      "Tamoxifen",
				Dosage:    20,
				Unit:      "mg",
				Frequency: FrequencyDaily,
				StartDate: "2024-01-01",
				TimeSlots: []Slot{SlotMorning},
			},
			wantErr: false,
		},
		{
			name: "valid with end date equal to start",
			med: Medication{
				Name:      "Ondansetron",
				Frequency: FrequencyAsNeeded,
				StartDate: "2024-03-10",
				EndDate:   "2024-03-10",
			},
			wantErr: false,
		},
		{
			name: "empty name",
			med: Medication{
				Frequency: FrequencyDaily,
				StartDate: "2024-01-01",
			},
			wantErr: true,
		},
		{
			name: "negative dosage",
			med: Medication{
				Name:      "Test",
				Dosage:    -1,
				StartDate: "2024-01-01",
			},
			wantErr: true,
		},
		{
			name: "bad start date",
			med: Medication{
				Name:      "Test",
				StartDate: "2024/01/01",
			},
			wantErr: true,
		},
		{
			name: "unknown slot",
			med: Medication{
				Name:      "Test",
				StartDate: "2024-01-01",
				TimeSlots: []Slot{"midnight"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.med.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Medication.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewMedication_RejectsInvertedRange(t *testing.T) {
	_, err := NewMedication("Capecitabine", FrequencyTwiceDaily, "2024-02-10", "2024-02-01", []Slot{SlotMorning})
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestNewMedication_SortsSlots(t *testing.T) {
	med, err := NewMedication("Dexamethasone", FrequencyThreeTimesDaily, "2024-02-01", "",
		[]Slot{SlotEvening, SlotMorning, SlotEvening, SlotAfternoon})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Slot{SlotMorning, SlotAfternoon, SlotEvening}
	if len(med.TimeSlots) != len(want) {
		t.Fatalf("expected %d slots, got %v", len(want), med.TimeSlots)
	}
	for i := range want {
		if med.TimeSlots[i] != want[i] {
			t.Errorf("slot %d = %s, want %s", i, med.TimeSlots[i], want[i])
		}
	}
}

func TestMedication_HasReminders(t *testing.T) {
	med := Medication{}
	if med.HasReminders() {
		t.Error("expected no reminders on an empty handle map")
	}
	med.NotificationIDs = map[Slot]string{SlotMorning: ""}
	if med.HasReminders() {
		t.Error("expected empty handle to not count as a reminder")
	}
	med.NotificationIDs[SlotEvening] = "abc"
	if !med.HasReminders() {
		t.Error("expected reminder to be reported")
	}
}

func TestMedication_FormatDosage(t *testing.T) {
	tests := []struct {
		med  Medication
		want string
	}{
		{Medication{Dosage: 2, Unit: "mg"}, "2 mg"},
		{Medication{Dosage: 0.5, Unit: "ml"}, "0.5 ml"},
		{Medication{Dosage: 1}, "1"},
		{Medication{Unit: "drops"}, "drops"},
	}
	for _, tt := range tests {
		if got := tt.med.FormatDosage(); got != tt.want {
			t.Errorf("FormatDosage() = %q, want %q", got, tt.want)
		}
	}
}

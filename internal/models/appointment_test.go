package models

import (
	"errors"
	"testing"
	"time"
)

func TestAppointment_Validate(t *testing.T) {
	start := time.Date(2024, 5, 2, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		appt    Appointment
		wantErr error
		anyErr  bool
	}{
		{
			name: "valid",
			appt: Appointment{Title: "Oncology follow-up", Start: start, End: start.Add(time.Hour), TravelTimeMin: 15},
		},
		{
			name: "zero length is allowed",
			appt: Appointment{Title: "Blood draw", Start: start, End: start},
		},
		{
			name:    "end before start",
			appt:    Appointment{Title: "Scan", Start: start, End: start.Add(-time.Minute)},
			wantErr: ErrInvalidRange,
		},
		{
			name:   "negative travel",
			appt:   Appointment{Title: "Scan", Start: start, End: start, TravelTimeMin: -5},
			anyErr: true,
		},
		{
			name:   "missing title",
			appt:   Appointment{Start: start, End: start},
			anyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.appt.Validate()
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
				}
			case tt.anyErr:
				if err == nil {
					t.Error("Validate() expected an error")
				}
			default:
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			}
		})
	}
}

func TestIntakeLog_SameDay(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	day := time.Date(2024, 1, 1, 19, 0, 0, 0, loc)

	// 2024-01-02T01:00Z is still Jan 1 in UTC-5.
	log := IntakeLog{LoggedAt: time.Date(2024, 1, 2, 1, 0, 0, 0, time.UTC)}
	if !log.SameDay(day) {
		t.Error("expected log to fall on the same local day")
	}

	log.LoggedAt = time.Date(2024, 1, 2, 6, 0, 0, 0, time.UTC)
	if log.SameDay(day) {
		t.Error("expected log on the following local day to not match")
	}
}

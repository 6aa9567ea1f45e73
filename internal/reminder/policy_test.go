package reminder

import (
	"testing"
	"time"

	"github.com/TheVortexX/OncoTrack-sub000/internal/models"
)

func TestEffectiveLeadMinutes(t *testing.T) {
	tests := []struct {
		name     string
		travel   int
		defaults int
		want     int
	}{
		{"travel plus default", 15, 60, 75},
		{"floor when both zero", 0, 0, 60},
		{"travel only", 30, 0, 30},
		{"default only", 0, 10, 10},
		{"negative default clamped", 20, -5, 20},
		{"negative everything falls back", -10, -10, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appt := models.Appointment{TravelTimeMin: tt.travel}
			prefs := models.Settings{DefaultReminderMin: tt.defaults}
			if got := EffectiveLeadMinutes(appt, prefs); got != tt.want {
				t.Errorf("EffectiveLeadMinutes() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFireTime(t *testing.T) {
	start := time.Date(2024, 5, 2, 14, 0, 0, 0, time.UTC)
	appt := models.Appointment{Start: start, End: start.Add(time.Hour), TravelTimeMin: 15}
	prefs := models.Settings{DefaultReminderMin: 60}

	want := time.Date(2024, 5, 2, 12, 45, 0, 0, time.UTC)
	if got := FireTime(appt, prefs); !got.Equal(want) {
		t.Errorf("FireTime() = %v, want %v", got, want)
	}
}

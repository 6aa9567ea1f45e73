// Package reminder decides how far ahead of an appointment its reminder fires.
package reminder

import (
	"time"

	"github.com/TheVortexX/OncoTrack-sub000/internal/constants"
	"github.com/TheVortexX/OncoTrack-sub000/internal/models"
)

// EffectiveLeadMinutes returns how many minutes before appt.Start its
// reminder fires. Travel time is a buffer added on top of the user's reminder
// window, not a replacement for it. When both come to zero the fallback lead
// applies so no appointment is left without a reminder.
func EffectiveLeadMinutes(appt models.Appointment, prefs models.Settings) int {
	lead := nonNegative(appt.TravelTimeMin) + nonNegative(prefs.DefaultReminderMin)
	if lead == 0 {
		return constants.FallbackReminderMin
	}
	return lead
}

// FireTime returns the instant at which appt's reminder should fire.
func FireTime(appt models.Appointment, prefs models.Settings) time.Time {
	lead := EffectiveLeadMinutes(appt, prefs)
	return appt.Start.Add(-time.Duration(lead) * time.Minute)
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

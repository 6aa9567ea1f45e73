package models

import "time"

// IntakeLog records that a dose for a slot was taken.
type IntakeLog struct {
	ID           string    `json:"id"`
	MedicationID string    `json:"medication_id"`
	Slot         Slot      `json:"slot"`
	LoggedAt     time.Time `json:"logged_at"`
}

// SameDay reports whether the log was written on the calendar date of day,
// evaluated in day's location.
func (l IntakeLog) SameDay(day time.Time) bool {
	at := l.LoggedAt.In(day.Location())
	y1, m1, d1 := at.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

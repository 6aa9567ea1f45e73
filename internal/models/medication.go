package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/TheVortexX/OncoTrack-sub000/internal/constants"
)

// ErrInvalidRange is returned when an item ends before it starts.
var ErrInvalidRange = errors.New("end is before start")

type Medication struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Dosage          float64         `json:"dosage"`
	Unit            string          `json:"unit,omitempty"`
	Frequency       Frequency       `json:"frequency"`
	StartDate       string          `json:"start_date"`         // YYYY-MM-DD
	EndDate         string          `json:"end_date,omitempty"` // YYYY-MM-DD, inclusive
	TimeSlots       []Slot          `json:"time_slots"`
	NotificationIDs map[Slot]string `json:"notification_ids,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// NewMedication builds a medication and validates it. The end date may be empty.
func NewMedication(name string, freq Frequency, startDate, endDate string, slots []Slot) (Medication, error) {
	m := Medication{
		Name:      strings.TrimSpace(name),
		Frequency: freq,
		StartDate: startDate,
		EndDate:   endDate,
		TimeSlots: SortSlots(slots),
	}
	if err := m.Validate(); err != nil {
		return Medication{}, err
	}
	return m, nil
}

func (m *Medication) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("medication name cannot be empty")
	}
	if m.Dosage < 0 {
		return fmt.Errorf("dosage cannot be negative")
	}

	start, err := time.Parse(constants.DateFormat, m.StartDate)
	if err != nil {
		return fmt.Errorf("invalid start date (expected YYYY-MM-DD): %w", err)
	}
	if m.EndDate != "" {
		end, err := time.Parse(constants.DateFormat, m.EndDate)
		if err != nil {
			return fmt.Errorf("invalid end date (expected YYYY-MM-DD): %w", err)
		}
		if end.Before(start) {
			return fmt.Errorf("%w: end date %s is before start date %s", ErrInvalidRange, m.EndDate, m.StartDate)
		}
	}

	for _, s := range m.TimeSlots {
		if !s.IsValid() {
			return fmt.Errorf("invalid time slot %q", s)
		}
	}
	return nil
}

// HasReminders reports whether at least one slot holds a live notification handle.
func (m *Medication) HasReminders() bool {
	for _, h := range m.NotificationIDs {
		if h != "" {
			return true
		}
	}
	return false
}

// FormatDosage renders the dosage with its unit, e.g. "2 mg".
func (m *Medication) FormatDosage() string {
	if m.Dosage == 0 {
		return m.Unit
	}
	if m.Unit == "" {
		return fmt.Sprintf("%g", m.Dosage)
	}
	return fmt.Sprintf("%g %s", m.Dosage, m.Unit)
}

// FormatSlots joins the slots for display, e.g. "morning, evening".
func (m *Medication) FormatSlots() string {
	parts := make([]string, len(m.TimeSlots))
	for i, s := range m.TimeSlots {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

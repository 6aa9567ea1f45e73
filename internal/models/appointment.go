package models

import (
	"fmt"
	"strings"
	"time"
)

type Appointment struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Location       string    `json:"location,omitempty"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	TravelTimeMin  int       `json:"travel_time_min"`
	NotificationID string    `json:"notification_id,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewAppointment builds an appointment and validates it.
func NewAppointment(title string, start, end time.Time, travelMin int) (Appointment, error) {
	a := Appointment{
		Title:         strings.TrimSpace(title),
		Start:         start,
		End:           end,
		TravelTimeMin: travelMin,
	}
	if err := a.Validate(); err != nil {
		return Appointment{}, err
	}
	return a, nil
}

func (a *Appointment) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return fmt.Errorf("appointment title cannot be empty")
	}
	if a.Start.IsZero() {
		return fmt.Errorf("appointment start cannot be empty")
	}
	if a.End.Before(a.Start) {
		return fmt.Errorf("%w: appointment ends at %s before it starts at %s",
			ErrInvalidRange, a.End.Format(time.RFC3339), a.Start.Format(time.RFC3339))
	}
	if a.TravelTimeMin < 0 {
		return fmt.Errorf("travel time cannot be negative")
	}
	return nil
}

// Duration returns the length of the appointment.
func (a *Appointment) Duration() time.Duration {
	return a.End.Sub(a.Start)
}

package lifecycle

import (
	"context"

	"github.com/TheVortexX/OncoTrack-sub000/internal/models"
)

// Action is a pending lifecycle operation built by a UI and run later with
// Manager.Apply.
type Action interface {
	apply(ctx context.Context, m *Manager) Result
}

type ScheduleMedication struct {
	Medication models.Medication
	UserID     string
	SlotTimes  models.DailySlotTimes
}

type CancelMedication struct {
	Medication models.Medication
}

type ScheduleAppointment struct {
	Appointment models.Appointment
	UserID      string
}

type CancelAppointment struct {
	Appointment models.Appointment
}

func (a ScheduleMedication) apply(ctx context.Context, m *Manager) Result {
	med, err := m.ScheduleMedication(ctx, a.Medication, a.UserID, a.SlotTimes)
	return medicationResult(med, err)
}

func (a CancelMedication) apply(ctx context.Context, m *Manager) Result {
	med, err := m.CancelMedication(ctx, a.Medication)
	r := medicationResult(med, err)
	if err == nil {
		r.Status = StatusCancelled
	}
	return r
}

func (a ScheduleAppointment) apply(ctx context.Context, m *Manager) Result {
	appt, err := m.ScheduleAppointment(ctx, a.Appointment, a.UserID)
	return appointmentResult(appt, err)
}

func (a CancelAppointment) apply(ctx context.Context, m *Manager) Result {
	appt, err := m.CancelAppointment(ctx, a.Appointment)
	r := appointmentResult(appt, err)
	if err == nil {
		r.Status = StatusCancelled
	}
	return r
}

// Apply runs a.
func (m *Manager) Apply(ctx context.Context, a Action) Result {
	return a.apply(ctx, m)
}

package lifecycle

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/TheVortexX/OncoTrack-sub000/internal/models"
	"github.com/TheVortexX/OncoTrack-sub000/internal/notifier"
)

type Status int

const (
	StatusScheduled Status = iota
	StatusSkipped
	StatusCancelled
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusScheduled:
		return "scheduled"
	case StatusSkipped:
		return "skipped"
	case StatusCancelled:
		return "cancelled"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the outcome for one item. Medication or Appointment, depending
// on Kind, carries the item with its handles as they now stand and must be
// persisted by the caller even when Err is set.
type Result struct {
	ID          string
	Kind        notifier.Kind
	Status      Status
	Err         error
	Medication  models.Medication
	Appointment models.Appointment
}

func medicationResult(med models.Medication, err error) Result {
	r := Result{ID: med.ID, Kind: notifier.KindMedication, Medication: med, Err: err}
	switch {
	case err != nil:
		r.Status = StatusFailed
	case med.HasReminders():
		r.Status = StatusScheduled
	default:
		r.Status = StatusSkipped
	}
	return r
}

func appointmentResult(appt models.Appointment, err error) Result {
	r := Result{ID: appt.ID, Kind: notifier.KindAppointment, Appointment: appt, Err: err}
	switch {
	case err != nil:
		r.Status = StatusFailed
	case appt.NotificationID != "":
		r.Status = StatusScheduled
	default:
		r.Status = StatusSkipped
	}
	return r
}

// ScheduleAllMedications schedules every medication concurrently. A failing
// item never stops the others; results keep the input order.
func (m *Manager) ScheduleAllMedications(ctx context.Context, meds []models.Medication, userID string, slotTimes models.DailySlotTimes) []Result {
	results := make([]Result, len(meds))
	g := m.group()
	for i, med := range meds {
		g.Go(func() error {
			updated, err := m.ScheduleMedication(ctx, med, userID, slotTimes)
			results[i] = medicationResult(updated, err)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// ScheduleAllAppointments is ScheduleAllMedications for appointments.
func (m *Manager) ScheduleAllAppointments(ctx context.Context, appts []models.Appointment, userID string) []Result {
	results := make([]Result, len(appts))
	g := m.group()
	for i, appt := range appts {
		g.Go(func() error {
			updated, err := m.ScheduleAppointment(ctx, appt, userID)
			results[i] = appointmentResult(updated, err)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// RescheduleAll re-derives the alerts of every item of a user, as done on
// start-up. Running it twice leaves the same set of live alerts.
func (m *Manager) RescheduleAll(ctx context.Context, userID string, meds []models.Medication, appts []models.Appointment) ([]Result, error) {
	prefs, _, err := m.settings(ctx, userID)
	if err != nil {
		return nil, err
	}

	var medResults, apptResults []Result
	g := new(errgroup.Group)
	g.Go(func() error {
		medResults = m.ScheduleAllMedications(ctx, meds, userID, prefs.SlotTimes())
		return nil
	})
	g.Go(func() error {
		apptResults = m.ScheduleAllAppointments(ctx, appts, userID)
		return nil
	})
	_ = g.Wait()

	m.log.Info("Rescheduled reminders", "user", userID, "medications", len(meds), "appointments", len(appts))
	return append(medResults, apptResults...), nil
}

// group bounds how many items a batch works on at once.
func (m *Manager) group() *errgroup.Group {
	g := new(errgroup.Group)
	if m.limit > 0 {
		g.SetLimit(m.limit)
	}
	return g
}

// Failed returns the failed results.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.Status == StatusFailed {
			out = append(out, r)
		}
	}
	return out
}

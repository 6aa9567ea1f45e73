package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/TheVortexX/OncoTrack-sub000/internal/lifecycle"
	"github.com/TheVortexX/OncoTrack-sub000/internal/notifier"
)

// RescheduleAll re-derives every reminder of the user and stores the
// resulting handles. Item failures are in the results; the error covers
// loading the items and persisting handles.
func (s *Service) RescheduleAll(ctx context.Context, userID string) ([]lifecycle.Result, error) {
	meds, err := s.repo.ListMedications(ctx, userID)
	if err != nil {
		return nil, err
	}
	appts, err := s.repo.ListAppointments(ctx, userID)
	if err != nil {
		return nil, err
	}

	results, err := s.manager.RescheduleAll(ctx, userID, meds, appts)
	if err != nil {
		return nil, err
	}
	if err := s.persist(ctx, userID, results); err != nil {
		return results, err
	}

	if failed := lifecycle.Failed(results); len(failed) > 0 {
		s.log.Warn("Some reminders could not be scheduled", "user", userID, "failed", len(failed))
	}
	return results, nil
}

func (s *Service) persist(ctx context.Context, userID string, results []lifecycle.Result) error {
	var errs []error
	for _, r := range results {
		var err error
		switch r.Kind {
		case notifier.KindMedication:
			err = s.repo.SetMedicationNotificationIDs(ctx, userID, r.ID, r.Medication.NotificationIDs)
		case notifier.KindAppointment:
			err = s.repo.SetAppointmentNotificationID(ctx, userID, r.ID, r.Appointment.NotificationID)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to store handles of %s %s: %w", r.Kind, r.ID, err))
		}
	}
	return errors.Join(errs...)
}

// Dispatch delivers the queued alerts of userID that are due and schedules the next
// occurrence of each item whose alert left the queue. Alerts that failed
// to deliver stay queued and their items keep their handles.
func (s *Service) Dispatch(ctx context.Context, userID string, sender notifier.Sender) (notifier.DispatchReport, []lifecycle.Result, error) {
	if s.queue == nil {
		return notifier.DispatchReport{}, nil, ErrNoQueue
	}

	report, dispatchErr := s.queue.DispatchDueFor(ctx, s.now(), userID, sender)

	done := append(append([]notifier.Scheduled{}, report.Sent...), report.Dropped...)
	results, err := s.rescheduleFired(ctx, userID, done)
	return report, results, errors.Join(dispatchErr, err)
}

func (s *Service) rescheduleFired(ctx context.Context, userID string, fired []notifier.Scheduled) ([]lifecycle.Result, error) {
	prefs, err := s.repo.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var actions []lifecycle.Action
	for _, alert := range fired {
		p := alert.Payload
		item := string(p.Kind) + ":" + p.ItemID
		if p.UserID != userID || seen[item] {
			continue
		}
		seen[item] = true

		switch p.Kind {
		case notifier.KindMedication:
			med, err := s.repo.GetMedication(ctx, userID, p.ItemID)
			if err != nil {
				s.log.Debug("Fired alert for missing medication", "medication", p.ItemID, "error", err)
				continue
			}
			actions = append(actions, lifecycle.ScheduleMedication{Medication: med, UserID: userID, SlotTimes: prefs.SlotTimes()})
		case notifier.KindAppointment:
			appt, err := s.repo.GetAppointment(ctx, userID, p.ItemID)
			if err != nil {
				s.log.Debug("Fired alert for missing appointment", "appointment", p.ItemID, "error", err)
				continue
			}
			actions = append(actions, lifecycle.ScheduleAppointment{Appointment: appt, UserID: userID})
		}
	}

	results := make([]lifecycle.Result, 0, len(actions))
	for _, a := range actions {
		results = append(results, s.manager.Apply(ctx, a))
	}
	return results, s.persist(ctx, userID, results)
}

// Package lifecycle keeps local alerts in step with medication and
// appointment records: one live alert per medication slot and per
// appointment, re-derived whenever an item changes or the app restarts.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/TheVortexX/OncoTrack-sub000/internal/constants"
	"github.com/TheVortexX/OncoTrack-sub000/internal/logger"
	"github.com/TheVortexX/OncoTrack-sub000/internal/models"
	"github.com/TheVortexX/OncoTrack-sub000/internal/notifier"
	"github.com/TheVortexX/OncoTrack-sub000/internal/reminder"
	"github.com/TheVortexX/OncoTrack-sub000/internal/scheduler"
	"github.com/TheVortexX/OncoTrack-sub000/internal/utils"
)

// ErrSchedulingFailed wraps every failure to create an alert. The item
// itself is unaffected and simply ends up without that alert.
var ErrSchedulingFailed = errors.New("scheduling failed")

// PreferencesSource yields a user's notification preferences.
type PreferencesSource interface {
	GetSettings(ctx context.Context, userID string) (models.Settings, error)
}

type Manager struct {
	notifier  notifier.Notifier
	prefs     PreferencesSource
	scheduler *scheduler.Scheduler
	now       func() time.Time
	locks     *keyLock
	log       *log.Logger
	limit     int
}

type Option func(*Manager)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithScheduler(s *scheduler.Scheduler) Option {
	return func(m *Manager) { m.scheduler = s }
}

// WithConcurrency bounds how many items a batch works on at once.
func WithConcurrency(n int) Option {
	return func(m *Manager) { m.limit = n }
}

func New(n notifier.Notifier, prefs PreferencesSource, opts ...Option) *Manager {
	m := &Manager{
		notifier:  n,
		prefs:     prefs,
		scheduler: scheduler.New(),
		now:       time.Now,
		locks:     newKeyLock(),
		log:       logger.Component("lifecycle"),
		limit:     8,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func medicationKey(id string) string  { return "medication:" + id }
func appointmentKey(id string) string { return "appointment:" + id }

// settings loads the user's preferences and the current instant in the
// configured zone.
func (m *Manager) settings(ctx context.Context, userID string) (models.Settings, time.Time, error) {
	prefs, err := m.prefs.GetSettings(ctx, userID)
	if err != nil {
		return models.Settings{}, time.Time{}, fmt.Errorf("%w: loading preferences: %w", ErrSchedulingFailed, err)
	}
	now := utils.TruncateToMinute(m.now())
	if loc, err := utils.LocationFromSettings(prefs); err == nil {
		now = now.In(loc)
	}
	return prefs, now, nil
}

// cancel withdraws handle. An unknown handle already counts as cancelled.
func (m *Manager) cancel(ctx context.Context, handle string) error {
	err := m.notifier.Cancel(ctx, handle)
	if errors.Is(err, notifier.ErrUnknownHandle) {
		m.log.Debug("Handle already gone", "handle", handle)
		return nil
	}
	return err
}

// cancelSlots cancels every handle in ids. Handles whose cancel failed are
// returned so the caller keeps tracking them.
func (m *Manager) cancelSlots(ctx context.Context, medID string, ids map[models.Slot]string) (map[models.Slot]string, error) {
	kept := map[models.Slot]string{}
	var errs []error
	for slot, handle := range ids {
		if handle == "" {
			continue
		}
		if err := m.cancel(ctx, handle); err != nil {
			m.log.Warn("Failed to cancel reminder", "medication", medID, "slot", slot, "error", err)
			kept[slot] = handle
			errs = append(errs, fmt.Errorf("cancel %s reminder: %w", slot, err))
		}
	}
	return kept, errors.Join(errs...)
}

// ScheduleMedication replaces every alert of med with one per slot at the
// slot's next due instant. With notifications disabled it only cancels.
// A slot that fails to schedule is left without an alert and reported
// through ErrSchedulingFailed while the other slots proceed.
func (m *Manager) ScheduleMedication(ctx context.Context, med models.Medication, userID string, slotTimes models.DailySlotTimes) (models.Medication, error) {
	defer m.locks.Lock(medicationKey(med.ID))()

	prefs, now, err := m.settings(ctx, userID)
	if err != nil {
		return med, err
	}

	ids, cancelErr := m.cancelSlots(ctx, med.ID, med.NotificationIDs)
	errs := []error{cancelErr}

	if prefs.NotificationsEnabled {
		for _, slot := range models.SortSlots(med.TimeSlots) {
			if _, stuck := ids[slot]; stuck {
				// The old alert could not be withdrawn; a second one would duplicate it.
				continue
			}
			handle, err := m.scheduleSlot(ctx, med, slot, userID, now, slotTimes)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if handle != "" {
				ids[slot] = handle
			}
		}
	}

	if len(ids) == 0 {
		ids = nil
	}
	med.NotificationIDs = ids
	return med, errors.Join(errs...)
}

func (m *Manager) scheduleSlot(ctx context.Context, med models.Medication, slot models.Slot, userID string, now time.Time, slotTimes models.DailySlotTimes) (string, error) {
	at, err := m.scheduler.NextSlotInstant(med, slot, now, slotTimes)
	if errors.Is(err, scheduler.ErrNoUpcomingOccurrence) {
		m.log.Debug("No upcoming dose", "medication", med.ID, "slot", slot, "reason", err)
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s slot: %w", ErrSchedulingFailed, slot, err)
	}

	handle, err := m.notifier.Schedule(ctx, at, medicationPayload(med, slot, userID))
	if err != nil {
		m.log.Warn("Failed to schedule reminder", "medication", med.ID, "slot", slot, "at", at, "error", err)
		return "", fmt.Errorf("%w: %s slot: %w", ErrSchedulingFailed, slot, err)
	}
	m.log.Debug("Scheduled reminder", "medication", med.ID, "slot", slot, "at", at.Format(time.RFC3339))
	return handle, nil
}

// CancelMedication withdraws every alert of med.
func (m *Manager) CancelMedication(ctx context.Context, med models.Medication) (models.Medication, error) {
	defer m.locks.Lock(medicationKey(med.ID))()

	ids, err := m.cancelSlots(ctx, med.ID, med.NotificationIDs)
	if len(ids) == 0 {
		ids = nil
	}
	med.NotificationIDs = ids
	return med, err
}

// ScheduleAppointment replaces the appointment's alert with one that fires
// the effective lead time before it starts. A fire time that is not in the
// future leaves the appointment without an alert.
func (m *Manager) ScheduleAppointment(ctx context.Context, appt models.Appointment, userID string) (models.Appointment, error) {
	defer m.locks.Lock(appointmentKey(appt.ID))()

	prefs, now, err := m.settings(ctx, userID)
	if err != nil {
		return appt, err
	}

	if appt.NotificationID != "" {
		if err := m.cancel(ctx, appt.NotificationID); err != nil {
			m.log.Warn("Failed to cancel reminder", "appointment", appt.ID, "error", err)
			return appt, fmt.Errorf("cancel reminder: %w", err)
		}
		appt.NotificationID = ""
	}

	if !prefs.NotificationsEnabled {
		return appt, nil
	}

	fireAt := reminder.FireTime(appt, prefs)
	if !fireAt.After(now) {
		m.log.Debug("Reminder time already passed", "appointment", appt.ID, "fire_at", fireAt)
		return appt, nil
	}

	handle, err := m.notifier.Schedule(ctx, fireAt, appointmentPayload(appt, userID, now.Location()))
	if err != nil {
		m.log.Warn("Failed to schedule reminder", "appointment", appt.ID, "error", err)
		return appt, fmt.Errorf("%w: %w", ErrSchedulingFailed, err)
	}
	appt.NotificationID = handle
	return appt, nil
}

// CancelAppointment withdraws the appointment's alert.
func (m *Manager) CancelAppointment(ctx context.Context, appt models.Appointment) (models.Appointment, error) {
	defer m.locks.Lock(appointmentKey(appt.ID))()

	if appt.NotificationID == "" {
		return appt, nil
	}
	if err := m.cancel(ctx, appt.NotificationID); err != nil {
		return appt, fmt.Errorf("cancel reminder: %w", err)
	}
	appt.NotificationID = ""
	return appt, nil
}

func medicationPayload(med models.Medication, slot models.Slot, userID string) notifier.Payload {
	body := string(slot) + " dose"
	if dose := med.FormatDosage(); dose != "" {
		body += ", " + dose
	}
	return notifier.Payload{
		Kind:   notifier.KindMedication,
		ItemID: med.ID,
		Slot:   slot,
		UserID: userID,
		Title:  "Time to take " + med.Name,
		Body:   body,
	}
}

func appointmentPayload(appt models.Appointment, userID string, loc *time.Location) notifier.Payload {
	body := "starts at " + appt.Start.In(loc).Format(constants.TimeFormat)
	if appt.Location != "" {
		body += " at " + appt.Location
	}
	if appt.TravelTimeMin > 0 {
		body += fmt.Sprintf(", leave now (%d min travel)", appt.TravelTimeMin)
	}
	return notifier.Payload{
		Kind:   notifier.KindAppointment,
		ItemID: appt.ID,
		UserID: userID,
		Title:  appt.Title,
		Body:   body,
	}
}

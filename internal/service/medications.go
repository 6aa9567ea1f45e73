package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/TheVortexX/OncoTrack-sub000/internal/models"
	"github.com/TheVortexX/OncoTrack-sub000/internal/storage"
	"github.com/TheVortexX/OncoTrack-sub000/internal/utils"
)

func (s *Service) ListMedications(ctx context.Context, userID string) ([]models.Medication, error) {
	return s.repo.ListMedications(ctx, userID)
}

func (s *Service) GetMedication(ctx context.Context, userID, id string) (models.Medication, error) {
	return s.repo.GetMedication(ctx, userID, id)
}

// FindMedication resolves a medication by id, id prefix or case-insensitive
// name. Ambiguous matches are an error.
func (s *Service) FindMedication(ctx context.Context, userID, ref string) (models.Medication, error) {
	if med, err := s.repo.GetMedication(ctx, userID, ref); err == nil {
		return med, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return models.Medication{}, err
	}

	meds, err := s.repo.ListMedications(ctx, userID)
	if err != nil {
		return models.Medication{}, err
	}
	var matches []models.Medication
	for _, m := range meds {
		if strings.EqualFold(m.Name, ref) || strings.HasPrefix(m.ID, ref) {
			matches = append(matches, m)
		}
	}
	switch len(matches) {
	case 0:
		return models.Medication{}, fmt.Errorf("medication %q: %w", ref, storage.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return models.Medication{}, fmt.Errorf("medication %q is ambiguous (%d matches)", ref, len(matches))
	}
}

// AddMedication validates and stores a new medication, then schedules its
// reminders. The record is saved even when scheduling fails; that case
// returns the saved record with an error wrapping ErrReminderNotUpdated.
func (s *Service) AddMedication(ctx context.Context, userID string, med models.Medication) (models.Medication, error) {
	if med.ID == "" {
		med.ID = uuid.New().String()
	}
	med.TimeSlots = models.SortSlots(med.TimeSlots)
	med.NotificationIDs = nil
	if err := med.Validate(); err != nil {
		return models.Medication{}, err
	}
	now := s.now()
	med.CreatedAt, med.UpdatedAt = now, now

	if err := s.repo.SaveMedication(ctx, userID, med); err != nil {
		return models.Medication{}, fmt.Errorf("failed to save medication: %w", err)
	}
	s.log.Info("Medication added", "medication", med.ID, "name", med.Name)
	return s.scheduleMedication(ctx, userID, med)
}

// EditMedication replaces a stored medication. Every existing reminder is
// cancelled and re-created from the new fields.
func (s *Service) EditMedication(ctx context.Context, userID string, med models.Medication) (models.Medication, error) {
	existing, err := s.repo.GetMedication(ctx, userID, med.ID)
	if err != nil {
		return models.Medication{}, err
	}
	med.TimeSlots = models.SortSlots(med.TimeSlots)
	if err := med.Validate(); err != nil {
		return models.Medication{}, err
	}
	med.CreatedAt = existing.CreatedAt
	med.NotificationIDs = existing.NotificationIDs
	med.UpdatedAt = s.now()

	if err := s.repo.SaveMedication(ctx, userID, med); err != nil {
		return models.Medication{}, fmt.Errorf("failed to save medication: %w", err)
	}
	s.log.Info("Medication updated", "medication", med.ID)
	return s.scheduleMedication(ctx, userID, med)
}

func (s *Service) scheduleMedication(ctx context.Context, userID string, med models.Medication) (models.Medication, error) {
	prefs, err := s.repo.GetSettings(ctx, userID)
	if err != nil {
		return med, reminderErr(err)
	}
	updated, schedErr := s.manager.ScheduleMedication(ctx, med, userID, prefs.SlotTimes())
	if err := s.repo.SetMedicationNotificationIDs(ctx, userID, med.ID, updated.NotificationIDs); err != nil {
		return updated, fmt.Errorf("failed to store reminder handles: %w", err)
	}
	if schedErr != nil {
		s.log.Warn("Medication saved without all reminders", "medication", med.ID, "error", schedErr)
	}
	return updated, reminderErr(schedErr)
}

// DeleteMedication cancels the medication's reminders, then removes it
// together with its intake logs. A reminder that cannot be cancelled does
// not block the delete.
func (s *Service) DeleteMedication(ctx context.Context, userID, id string) error {
	med, err := s.repo.GetMedication(ctx, userID, id)
	if err != nil {
		return err
	}

	_, cancelErr := s.manager.CancelMedication(ctx, med)
	if cancelErr != nil {
		s.log.Warn("Deleting medication with uncancelled reminders", "medication", id, "error", cancelErr)
	}

	n, err := s.repo.DeleteIntakeLogs(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete intake logs: %w", err)
	}
	if err := s.repo.DeleteMedication(ctx, userID, id); err != nil {
		return fmt.Errorf("failed to delete medication: %w", err)
	}
	s.log.Info("Medication deleted", "medication", id, "intake_logs", n)
	return reminderErr(cancelErr)
}

// LogIntake records that the dose of slot was taken now. Logging the same
// slot twice in a day is allowed; the day's status stays Taken.
func (s *Service) LogIntake(ctx context.Context, userID, medicationID string, slot models.Slot) (models.IntakeLog, error) {
	med, err := s.repo.GetMedication(ctx, userID, medicationID)
	if err != nil {
		return models.IntakeLog{}, err
	}
	if !slot.IsValid() {
		return models.IntakeLog{}, fmt.Errorf("invalid slot %q", slot)
	}
	if !hasSlot(med, slot) {
		return models.IntakeLog{}, fmt.Errorf("%s is not taken in the %s", med.Name, slot)
	}

	entry := models.IntakeLog{
		ID:           uuid.New().String(),
		MedicationID: med.ID,
		Slot:         slot,
		LoggedAt:     s.now(),
	}
	if err := s.repo.AddIntakeLog(ctx, userID, entry); err != nil {
		return models.IntakeLog{}, fmt.Errorf("failed to log intake: %w", err)
	}
	s.log.Info("Intake logged", "medication", med.ID, "slot", slot)
	return entry, nil
}

func hasSlot(med models.Medication, slot models.Slot) bool {
	for _, s := range med.TimeSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// IsDue reports whether the medication is due on date's calendar day,
// read in the user's zone.
func (s *Service) IsDue(ctx context.Context, userID, medicationID string, date time.Time) (bool, error) {
	med, err := s.repo.GetMedication(ctx, userID, medicationID)
	if err != nil {
		return false, err
	}
	_, now, err := s.clock(ctx, userID)
	if err != nil {
		return false, err
	}
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, now.Location())
	return utils.ShouldTakeMedication(med, day), nil
}

// NextDose returns the next slot instant of a medication after now.
// scheduler.ErrNoUpcomingOccurrence reports a medication with none left.
func (s *Service) NextDose(ctx context.Context, userID, medicationID string) (time.Time, models.Slot, error) {
	med, err := s.repo.GetMedication(ctx, userID, medicationID)
	if err != nil {
		return time.Time{}, "", err
	}
	prefs, now, err := s.clock(ctx, userID)
	if err != nil {
		return time.Time{}, "", err
	}
	at, slot, err := s.scheduler.NextDueInstant(med, now, prefs.SlotTimes())
	if err != nil {
		return time.Time{}, "", fmt.Errorf("%s: %w", med.Name, err)
	}
	return at, slot, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/TheVortexX/OncoTrack-sub000/internal/models"
	"github.com/TheVortexX/OncoTrack-sub000/internal/storage"
)

func (s *Service) ListAppointments(ctx context.Context, userID string) ([]models.Appointment, error) {
	return s.repo.ListAppointments(ctx, userID)
}

// FindAppointment resolves an appointment by id, id prefix or
// case-insensitive title.
func (s *Service) FindAppointment(ctx context.Context, userID, ref string) (models.Appointment, error) {
	if appt, err := s.repo.GetAppointment(ctx, userID, ref); err == nil {
		return appt, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return models.Appointment{}, err
	}

	appts, err := s.repo.ListAppointments(ctx, userID)
	if err != nil {
		return models.Appointment{}, err
	}
	var matches []models.Appointment
	for _, a := range appts {
		if strings.EqualFold(a.Title, ref) || strings.HasPrefix(a.ID, ref) {
			matches = append(matches, a)
		}
	}
	switch len(matches) {
	case 0:
		return models.Appointment{}, fmt.Errorf("appointment %q: %w", ref, storage.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return models.Appointment{}, fmt.Errorf("appointment %q is ambiguous (%d matches)", ref, len(matches))
	}
}

// AddAppointment stores a new appointment and schedules its reminder. Like
// AddMedication, the record is kept when the reminder fails.
func (s *Service) AddAppointment(ctx context.Context, userID string, appt models.Appointment) (models.Appointment, error) {
	if appt.ID == "" {
		appt.ID = uuid.New().String()
	}
	appt.NotificationID = ""
	if err := appt.Validate(); err != nil {
		return models.Appointment{}, err
	}
	now := s.now()
	appt.CreatedAt, appt.UpdatedAt = now, now

	if err := s.repo.SaveAppointment(ctx, userID, appt); err != nil {
		return models.Appointment{}, fmt.Errorf("failed to save appointment: %w", err)
	}
	s.log.Info("Appointment added", "appointment", appt.ID, "title", appt.Title)
	return s.scheduleAppointment(ctx, userID, appt)
}

// EditAppointment replaces a stored appointment and its reminder.
func (s *Service) EditAppointment(ctx context.Context, userID string, appt models.Appointment) (models.Appointment, error) {
	existing, err := s.repo.GetAppointment(ctx, userID, appt.ID)
	if err != nil {
		return models.Appointment{}, err
	}
	if err := appt.Validate(); err != nil {
		return models.Appointment{}, err
	}
	appt.CreatedAt = existing.CreatedAt
	appt.NotificationID = existing.NotificationID
	appt.UpdatedAt = s.now()

	if err := s.repo.SaveAppointment(ctx, userID, appt); err != nil {
		return models.Appointment{}, fmt.Errorf("failed to save appointment: %w", err)
	}
	s.log.Info("Appointment updated", "appointment", appt.ID)
	return s.scheduleAppointment(ctx, userID, appt)
}

func (s *Service) scheduleAppointment(ctx context.Context, userID string, appt models.Appointment) (models.Appointment, error) {
	updated, schedErr := s.manager.ScheduleAppointment(ctx, appt, userID)
	if err := s.repo.SetAppointmentNotificationID(ctx, userID, appt.ID, updated.NotificationID); err != nil {
		return updated, fmt.Errorf("failed to store reminder handle: %w", err)
	}
	if schedErr != nil {
		s.log.Warn("Appointment saved without reminder", "appointment", appt.ID, "error", schedErr)
	}
	return updated, reminderErr(schedErr)
}

// DeleteAppointment cancels the reminder and removes the appointment.
func (s *Service) DeleteAppointment(ctx context.Context, userID, id string) error {
	appt, err := s.repo.GetAppointment(ctx, userID, id)
	if err != nil {
		return err
	}

	_, cancelErr := s.manager.CancelAppointment(ctx, appt)
	if cancelErr != nil {
		s.log.Warn("Deleting appointment with uncancelled reminder", "appointment", id, "error", cancelErr)
	}
	if err := s.repo.DeleteAppointment(ctx, userID, id); err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	s.log.Info("Appointment deleted", "appointment", id)
	return reminderErr(cancelErr)
}

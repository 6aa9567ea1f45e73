package service

import (
	"context"

	"github.com/TheVortexX/OncoTrack-sub000/internal/validation"
)

// Check validates the user's stored records. Reminder handles are only
// checked when the service owns the alert queue.
func (s *Service) Check(ctx context.Context, userID string) (validation.ValidationResult, error) {
	var snap validation.Snapshot
	var err error
	if snap.Medications, err = s.repo.ListMedications(ctx, userID); err != nil {
		return validation.ValidationResult{}, err
	}
	if snap.Appointments, err = s.repo.ListAppointments(ctx, userID); err != nil {
		return validation.ValidationResult{}, err
	}
	if snap.IntakeLogs, err = s.repo.ListAllIntakeLogs(ctx, userID); err != nil {
		return validation.ValidationResult{}, err
	}
	if s.queue != nil {
		pending, err := s.queue.Pending(ctx)
		if err != nil {
			return validation.ValidationResult{}, err
		}
		snap.Pending = make(map[string]bool, len(pending))
		for _, p := range pending {
			snap.Pending[p.Handle] = true
		}
	}
	return validation.New().Validate(snap), nil
}

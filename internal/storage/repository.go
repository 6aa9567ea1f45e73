package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/TheVortexX/OncoTrack-sub000/internal/constants"
	"github.com/TheVortexX/OncoTrack-sub000/internal/models"
)

// Repository maps the domain records of a user onto document paths.
type Repository struct {
	p Provider
}

func NewRepository(p Provider) *Repository {
	return &Repository{p: p}
}

// Provider returns the underlying document store.
func (r *Repository) Provider() Provider {
	return r.p
}

func (r *Repository) decodeAll(ctx context.Context, userID, collection string, each func(Document) error) error {
	c, err := UserCollection(userID, collection)
	if err != nil {
		return err
	}
	docs, err := r.p.Query(ctx, c)
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", collection, err)
	}
	for _, d := range docs {
		if err := each(d); err != nil {
			return fmt.Errorf("failed to decode %s: %w", d.Path, err)
		}
	}
	return nil
}

// Medications

func (r *Repository) SaveMedication(ctx context.Context, userID string, med models.Medication) error {
	path, err := UserDocument(userID, constants.CollectionMedications, med.ID)
	if err != nil {
		return err
	}
	return r.p.Set(ctx, path, med)
}

func (r *Repository) GetMedication(ctx context.Context, userID, id string) (models.Medication, error) {
	path, err := UserDocument(userID, constants.CollectionMedications, id)
	if err != nil {
		return models.Medication{}, err
	}
	doc, err := r.p.Get(ctx, path)
	if err != nil {
		return models.Medication{}, err
	}
	var med models.Medication
	if err := doc.Decode(&med); err != nil {
		return models.Medication{}, fmt.Errorf("failed to decode medication %s: %w", id, err)
	}
	return med, nil
}

// ListMedications returns the user's medications sorted by name.
func (r *Repository) ListMedications(ctx context.Context, userID string) ([]models.Medication, error) {
	var meds []models.Medication
	err := r.decodeAll(ctx, userID, constants.CollectionMedications, func(d Document) error {
		var m models.Medication
		if err := d.Decode(&m); err != nil {
			return err
		}
		meds = append(meds, m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(meds, func(i, j int) bool { return meds[i].Name < meds[j].Name })
	return meds, nil
}

func (r *Repository) DeleteMedication(ctx context.Context, userID, id string) error {
	path, err := UserDocument(userID, constants.CollectionMedications, id)
	if err != nil {
		return err
	}
	return r.p.Delete(ctx, path)
}

// SetMedicationNotificationIDs overwrites only the stored handles.
func (r *Repository) SetMedicationNotificationIDs(ctx context.Context, userID, id string, ids map[models.Slot]string) error {
	path, err := UserDocument(userID, constants.CollectionMedications, id)
	if err != nil {
		return err
	}
	if ids == nil {
		ids = map[models.Slot]string{}
	}
	return r.p.Update(ctx, path, map[string]any{"notification_ids": ids})
}

// Appointments

func (r *Repository) SaveAppointment(ctx context.Context, userID string, appt models.Appointment) error {
	path, err := UserDocument(userID, constants.CollectionAppointments, appt.ID)
	if err != nil {
		return err
	}
	return r.p.Set(ctx, path, appt)
}

func (r *Repository) GetAppointment(ctx context.Context, userID, id string) (models.Appointment, error) {
	path, err := UserDocument(userID, constants.CollectionAppointments, id)
	if err != nil {
		return models.Appointment{}, err
	}
	doc, err := r.p.Get(ctx, path)
	if err != nil {
		return models.Appointment{}, err
	}
	var appt models.Appointment
	if err := doc.Decode(&appt); err != nil {
		return models.Appointment{}, fmt.Errorf("failed to decode appointment %s: %w", id, err)
	}
	return appt, nil
}

// ListAppointments returns the user's appointments ordered by start.
func (r *Repository) ListAppointments(ctx context.Context, userID string) ([]models.Appointment, error) {
	var appts []models.Appointment
	err := r.decodeAll(ctx, userID, constants.CollectionAppointments, func(d Document) error {
		var a models.Appointment
		if err := d.Decode(&a); err != nil {
			return err
		}
		appts = append(appts, a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(appts, func(i, j int) bool { return appts[i].Start.Before(appts[j].Start) })
	return appts, nil
}

func (r *Repository) DeleteAppointment(ctx context.Context, userID, id string) error {
	path, err := UserDocument(userID, constants.CollectionAppointments, id)
	if err != nil {
		return err
	}
	return r.p.Delete(ctx, path)
}

func (r *Repository) SetAppointmentNotificationID(ctx context.Context, userID, id, handle string) error {
	path, err := UserDocument(userID, constants.CollectionAppointments, id)
	if err != nil {
		return err
	}
	return r.p.Update(ctx, path, map[string]any{"notification_id": handle})
}

// Intake logs

func (r *Repository) AddIntakeLog(ctx context.Context, userID string, log models.IntakeLog) error {
	path, err := UserDocument(userID, constants.CollectionIntakeLogs, log.ID)
	if err != nil {
		return err
	}
	return r.p.Set(ctx, path, log)
}

// ListIntakeLogs returns the logs written on day's calendar date, oldest first.
func (r *Repository) ListIntakeLogs(ctx context.Context, userID string, day time.Time) ([]models.IntakeLog, error) {
	var logs []models.IntakeLog
	err := r.decodeAll(ctx, userID, constants.CollectionIntakeLogs, func(d Document) error {
		var l models.IntakeLog
		if err := d.Decode(&l); err != nil {
			return err
		}
		if l.SameDay(day) {
			logs = append(logs, l)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(logs, func(i, j int) bool { return logs[i].LoggedAt.Before(logs[j].LoggedAt) })
	return logs, nil
}

// ListAllIntakeLogs returns every log of the user, oldest first.
func (r *Repository) ListAllIntakeLogs(ctx context.Context, userID string) ([]models.IntakeLog, error) {
	var logs []models.IntakeLog
	err := r.decodeAll(ctx, userID, constants.CollectionIntakeLogs, func(d Document) error {
		var l models.IntakeLog
		if err := d.Decode(&l); err != nil {
			return err
		}
		logs = append(logs, l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(logs, func(i, j int) bool { return logs[i].LoggedAt.Before(logs[j].LoggedAt) })
	return logs, nil
}

// DeleteIntakeLogs removes every log of a medication and reports how many.
func (r *Repository) DeleteIntakeLogs(ctx context.Context, userID, medicationID string) (int, error) {
	var paths []string
	err := r.decodeAll(ctx, userID, constants.CollectionIntakeLogs, func(d Document) error {
		var l models.IntakeLog
		if err := d.Decode(&l); err != nil {
			return err
		}
		if l.MedicationID == medicationID {
			paths = append(paths, d.Path)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	for _, p := range paths {
		if err := r.p.Delete(ctx, p); err != nil && !errors.Is(err, ErrNotFound) {
			return 0, err
		}
	}
	return len(paths), nil
}

// Settings

// GetSettings returns the user's settings, falling back to the defaults
// when none were saved.
func (r *Repository) GetSettings(ctx context.Context, userID string) (models.Settings, error) {
	path, err := UserDocument(userID, constants.CollectionSettings, constants.SettingsDocID)
	if err != nil {
		return models.Settings{}, err
	}
	doc, err := r.p.Get(ctx, path)
	if errors.Is(err, ErrNotFound) {
		return models.DefaultSettings(), nil
	}
	if err != nil {
		return models.Settings{}, err
	}

	kv := map[string]string{}
	if err := doc.Decode(&kv); err != nil {
		return models.Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	settings, err := models.MapToSettings(kv)
	if err != nil {
		return models.Settings{}, err
	}
	if _, ok := kv[constants.SettingNotificationsEnabled]; !ok {
		settings.NotificationsEnabled = constants.DefaultNotificationsEnabled
	}
	if _, ok := kv[constants.SettingDefaultReminderMin]; !ok {
		settings.DefaultReminderMin = constants.DefaultReminderMin
	}
	models.ApplyDefaultSettings(&settings)
	return settings, nil
}

func (r *Repository) SaveSettings(ctx context.Context, userID string, settings models.Settings) error {
	path, err := UserDocument(userID, constants.CollectionSettings, constants.SettingsDocID)
	if err != nil {
		return err
	}
	return r.p.Set(ctx, path, models.SettingsToMap(settings))
}

// Package service ties the document store, the reminder lifecycle and the
// adherence engine together behind the operations the CLI, TUI and MCP
// server expose.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/TheVortexX/OncoTrack-sub000/internal/constants"
	"github.com/TheVortexX/OncoTrack-sub000/internal/lifecycle"
	"github.com/TheVortexX/OncoTrack-sub000/internal/logger"
	"github.com/TheVortexX/OncoTrack-sub000/internal/models"
	"github.com/TheVortexX/OncoTrack-sub000/internal/notifier"
	"github.com/TheVortexX/OncoTrack-sub000/internal/scheduler"
	"github.com/TheVortexX/OncoTrack-sub000/internal/storage"
	"github.com/TheVortexX/OncoTrack-sub000/internal/utils"
)

// ErrReminderNotUpdated accompanies a record that was saved while its
// reminder could not be brought up to date.
var ErrReminderNotUpdated = errors.New("saved, but the reminder could not be updated")

// ErrNoQueue is returned by Dispatch when the service has no alert queue.
var ErrNoQueue = errors.New("no notification queue configured")

type Service struct {
	repo      *storage.Repository
	manager   *lifecycle.Manager
	scheduler *scheduler.Scheduler
	queue     *notifier.Queue
	now       func() time.Time
	log       *log.Logger
}

type Option func(*Service)

// WithClock replaces time.Now. Pass the same clock to the lifecycle manager.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithScheduler(sch *scheduler.Scheduler) Option {
	return func(s *Service) { s.scheduler = sch }
}

// WithQueue enables Dispatch.
func WithQueue(q *notifier.Queue) Option {
	return func(s *Service) { s.queue = q }
}

func New(repo *storage.Repository, manager *lifecycle.Manager, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		manager:   manager,
		scheduler: scheduler.New(),
		now:       time.Now,
		log:       logger.Component("service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Repository() *storage.Repository {
	return s.repo
}

// clock returns the user's settings and the current minute in their zone.
func (s *Service) clock(ctx context.Context, userID string) (models.Settings, time.Time, error) {
	prefs, err := s.repo.GetSettings(ctx, userID)
	if err != nil {
		return models.Settings{}, time.Time{}, fmt.Errorf("failed to load settings: %w", err)
	}
	loc, err := utils.LocationFromSettings(prefs)
	if err != nil {
		return models.Settings{}, time.Time{}, err
	}
	return prefs, utils.TruncateToMinute(s.now()).In(loc), nil
}

func reminderErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrReminderNotUpdated, err)
}

// Settings

func (s *Service) Settings(ctx context.Context, userID string) (models.Settings, error) {
	return s.repo.GetSettings(ctx, userID)
}

// UpdateSettings applies key/value changes, validates the result and
// re-derives every reminder, since slot times and lead times feed them.
func (s *Service) UpdateSettings(ctx context.Context, userID string, changes map[string]string) (models.Settings, []lifecycle.Result, error) {
	current, err := s.repo.GetSettings(ctx, userID)
	if err != nil {
		return models.Settings{}, nil, err
	}

	kv := models.SettingsToMap(current)
	for k, v := range changes {
		if _, ok := kv[k]; !ok {
			return current, nil, fmt.Errorf("unknown setting %q", k)
		}
		kv[k] = v
	}
	updated, err := models.MapToSettings(kv)
	if err != nil {
		return current, nil, err
	}
	if v := kv[constants.SettingNotificationsEnabled]; v != "true" && v != "false" {
		return current, nil, fmt.Errorf("notifications_enabled must be true or false")
	}
	if err := validateSettings(updated); err != nil {
		return current, nil, err
	}

	if err := s.repo.SaveSettings(ctx, userID, updated); err != nil {
		return current, nil, fmt.Errorf("failed to save settings: %w", err)
	}
	s.log.Info("Settings updated", "user", userID)

	results, err := s.RescheduleAll(ctx, userID)
	return updated, results, err
}

func validateSettings(st models.Settings) error {
	if st.DefaultReminderMin < 0 {
		return fmt.Errorf("default_reminder_min cannot be negative")
	}
	if err := st.SlotTimes().Validate(); err != nil {
		return err
	}
	if !utils.ValidateTimezone(st.Timezone) {
		return fmt.Errorf("invalid timezone %q", st.Timezone)
	}
	return nil
}

package models

import (
	"fmt"

	"github.com/TheVortexX/OncoTrack-sub000/internal/constants"
)

// MapToSettings converts a map of key-value pairs to a Settings struct.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := Settings{}

	for key, value := range data {
		switch key {
		case constants.SettingNotificationsEnabled:
			settings.NotificationsEnabled = value == "true"
		case constants.SettingDefaultReminderMin:
			if _, err := fmt.Sscanf(value, "%d", &settings.DefaultReminderMin); err != nil {
				return Settings{}, fmt.Errorf("parsing default_reminder_min: %w", err)
			}
		case constants.SettingMorning:
			settings.Morning = value
		case constants.SettingAfternoon:
			settings.Afternoon = value
		case constants.SettingEvening:
			settings.Evening = value
		case constants.SettingTimezone:
			settings.Timezone = value
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingNotificationsEnabled: fmt.Sprintf("%v", settings.NotificationsEnabled),
		constants.SettingDefaultReminderMin:   fmt.Sprintf("%d", settings.DefaultReminderMin),
		constants.SettingMorning:              settings.Morning,
		constants.SettingAfternoon:            settings.Afternoon,
		constants.SettingEvening:              settings.Evening,
		constants.SettingTimezone:             settings.Timezone,
	}
}

// DefaultSettings returns the settings a new user starts with.
func DefaultSettings() Settings {
	return Settings{
		NotificationsEnabled: constants.DefaultNotificationsEnabled,
		DefaultReminderMin:   constants.DefaultReminderMin,
		Morning:              constants.DefaultMorning,
		Afternoon:            constants.DefaultAfternoon,
		Evening:              constants.DefaultEvening,
		Timezone:             constants.DefaultTimezone,
	}
}

// ApplyDefaultSettings applies default values to missing settings.
// DefaultReminderMin of zero is a legitimate choice and is left alone.
func ApplyDefaultSettings(settings *Settings) {
	if settings.Morning == "" {
		settings.Morning = constants.DefaultMorning
	}
	if settings.Afternoon == "" {
		settings.Afternoon = constants.DefaultAfternoon
	}
	if settings.Evening == "" {
		settings.Evening = constants.DefaultEvening
	}
	if settings.Timezone == "" {
		settings.Timezone = constants.DefaultTimezone
	}
}

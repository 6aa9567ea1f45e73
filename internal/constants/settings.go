package constants

const (
	SettingNotificationsEnabled = "notifications_enabled"
	SettingDefaultReminderMin   = "default_reminder_min"
	SettingMorning              = "morning"
	SettingAfternoon            = "afternoon"
	SettingEvening              = "evening"
	SettingTimezone             = "timezone"

	// Default Settings Values
	DefaultNotificationsEnabled = true
	DefaultReminderMin          = 60
	DefaultMorning              = "08:00"
	DefaultAfternoon            = "12:00"
	DefaultEvening              = "18:00"
	DefaultTimezone             = "Local" // Use system local timezone by default
	DefaultGracePeriodMin       = 10
)

package constants

import "time"

const (
	AppName            = "oncotrack"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/oncotrack"
	DefaultDBPath      = "~/.config/oncotrack/oncotrack.db"
	DefaultUserID      = "local"
	Version            = "v0.3.0"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "oncotrack-"
	BackupFileSuffix = ".db"

	// Notify constants
	NotifyMaxRetries       = 3
	NotifyRetryDelay       = 100 * time.Millisecond
	NotifierLockfileName   = "oncotrack-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.oncotrack.tray"

	// SearchHorizonDays bounds the forward walk for the next occurrence of a
	// recurring item.
	SearchHorizonDays = 400

	// FallbackReminderMin is used when travel time and the configured
	// reminder lead both come to zero.
	FallbackReminderMin = 60

	// Document store collections, relative to users/{uid}
	CollectionMedications   = "medications"
	CollectionAppointments  = "appointments"
	CollectionIntakeLogs    = "intake_logs"
	CollectionSettings      = "settings"
	CollectionNotifications = "notifications"

	SettingsDocID = "preferences"
)

package config

import (
	"github.com/knadh/koanf/providers/confmap"

	"github.com/TheVortexX/OncoTrack-sub000/internal/constants"
)

func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"user_id":             constants.DefaultUserID,
		"debug":               false,
		"log_level":           "info",
		"config_dir":          constants.DefaultConfigDir,
		"search_horizon_days": constants.SearchHorizonDays,
		"database": map[string]interface{}{
			"driver":     DriverSQLite,
			"path":       constants.DefaultDBPath,
			"connection": "",
		},
		"notify": map[string]interface{}{
			"tray_identifier":  constants.TrayAppIdentifier,
			"duration_ms":      constants.NotificationDurationMs,
			"grace_period_min": constants.DefaultGracePeriodMin,
			"retries":          constants.NotifyMaxRetries,
		},
	}
}

func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultConfig(), ".")
}

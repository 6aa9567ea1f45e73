package models

// Settings holds per-user notification preferences and slot times
type Settings struct {
	NotificationsEnabled bool   `json:"notifications_enabled"` // whether reminders are scheduled at all
	DefaultReminderMin   int    `json:"default_reminder_min"`  // lead time before appointments, in minutes
	Morning              string `json:"morning"`               // e.g. "08:00"
	Afternoon            string `json:"afternoon"`             // e.g. "12:00"
	Evening              string `json:"evening"`               // e.g. "18:00"
	Timezone             string `json:"timezone"`              // IANA timezone name or "Local"
}

// SlotTimes returns the configured daily slot times.
func (s Settings) SlotTimes() DailySlotTimes {
	return DailySlotTimes{
		Morning:   s.Morning,
		Afternoon: s.Afternoon,
		Evening:   s.Evening,
	}
}

package models

// NotificationSettings is the notifications collection document.
type NotificationSettings struct {
	Enabled bool `json:"enabled"`
}

// DefaultNotificationSettings seeds a user who has never touched the toggle.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{Enabled: true}
}

package models

import "time"

// Theme values accepted in Preferences.
const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

// Preferences is the free-form settings bag stored as JSON on the user row.
type Preferences struct {
	Currency      string `json:"currency"`
	Timezone      string `json:"timezone"`
	Notifications bool   `json:"notifications"`
	Theme         string `json:"theme"`
}

// DefaultPreferences are applied at registration.
func DefaultPreferences() Preferences {
	return Preferences{
		Currency:      "USD",
		Timezone:      "UTC",
		Notifications: true,
		Theme:         ThemeSystem,
	}
}

// User is an account in the credential store. Users are never hard-deleted.
type User struct {
	Base
	Name         string      `gorm:"not null" json:"name"`
	Email        string      `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string      `gorm:"not null" json:"-"`
	Preferences  Preferences `gorm:"type:text;serializer:json" json:"preferences"`
	LastLoginAt  *time.Time  `json:"last_login_at,omitempty"`
}

// Package domain contains core domain types for the VarunNetra application.
package domain

import (
	"time"
)

// User represents an anonymous visitor and the screen state of their app shell.
type User struct {
	UserID        string    `json:"user_id"`
	Username      string    `json:"username"`
	Language      string    `json:"language,omitempty"`
	Authenticated bool      `json:"authenticated"`
	View          string    `json:"view,omitempty"`
	LastSeenAt    time.Time `json:"last_seen_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// HasLanguage returns true once the visitor picked a language on the gate screen.
func (u *User) HasLanguage() bool {
	return u.Language != ""
}

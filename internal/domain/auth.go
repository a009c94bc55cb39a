package domain

import "time"

// Session is the server-side record of a logged-in user.
type Session struct {
	ID        string    `json:"id"`
	User      User      `json:"user"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

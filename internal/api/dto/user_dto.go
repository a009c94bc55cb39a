package dto

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// LoginRequest payload for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is a directory entry without credentials.
type UserResponse struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Role       domain.Role `json:"role"`
	Department string      `json:"department,omitempty"`
	Username   string      `json:"username"`
}

// NewUserResponse maps a directory user.
func NewUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Name:       u.Name,
		Role:       u.Role,
		Department: u.Department,
		Username:   u.Username,
	}
}

// SessionResponse describes the caller's session.
type SessionResponse struct {
	User      UserResponse `json:"user"`
	IssuedAt  time.Time    `json:"issued_at"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// NewSessionResponse maps a session.
func NewSessionResponse(s *domain.Session) SessionResponse {
	return SessionResponse{
		User:      NewUserResponse(s.User),
		IssuedAt:  s.IssuedAt,
		ExpiresAt: s.ExpiresAt,
	}
}

package models

import "time"

// Session is an authenticated admin session. It is created on a successful
// login and destroyed on logout or expiry; the bearer token it carries is
// attached to every admin API call.
type Session struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at now. A zero
// ExpiresAt never expires.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// HasCredential reports whether the session carries a bearer token.
func (s *Session) HasCredential() bool {
	return s != nil && s.Token != ""
}

// LoginRequest is the payload for POST /admin/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

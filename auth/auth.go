// Package auth manages user accounts and sessions against a Supabase
// GoTrue backend, persisting the active session in the keychain.
package auth

import "errors"

// Sentinel errors callers branch on.
var (
	ErrNotAuthenticated   = errors.New("auth: not authenticated")
	ErrSessionExpired     = errors.New("auth: session expired")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrEmailNotConfirmed  = errors.New("auth: email not confirmed")
	ErrUserAlreadyExists  = errors.New("auth: user already exists")
)

// Error is a failure reported by the auth backend that does not map to
// a sentinel.
type Error struct {
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return "auth: " + e.Op + ": " + e.Message
	}
	return "auth: " + e.Op + " failed"
}

func (e *Error) Unwrap() error { return e.Err }

// User is the authenticated account.
type User struct {
	ID             string  `json:"id"`
	Email          string  `json:"email"`
	FullName       *string `json:"fullName,omitempty"`
	AvatarURL      *string `json:"avatarUrl,omitempty"`
	EmailConfirmed bool    `json:"emailConfirmed"`
}

// Session is an authenticated session. ExpiresAt is a Unix timestamp
// in seconds.
type Session struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresAt    int64  `json:"expiresAt"`
	User         User   `json:"user"`
}

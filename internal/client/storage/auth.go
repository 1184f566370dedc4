package storage

import (
	"context"
	"time"
)

// AuthStorage persists the CLI session
type AuthStorage interface {
	// SaveAuth stores the session, replacing the previous one
	SaveAuth(ctx context.Context, auth *AuthData) error

	// GetAuth retrieves the stored session
	// Returns ErrAuthNotFound if no session exists
	GetAuth(ctx context.Context) (*AuthData, error)

	// DeleteAuth removes the stored session (logout)
	// Returns ErrAuthNotFound if no session exists
	DeleteAuth(ctx context.Context) error

	// IsAuthenticated reports whether a session with a refresh token exists
	IsAuthenticated(ctx context.Context) (bool, error)
}

// AuthData is the session of the CLI against one server
type AuthData struct {
	Server       string `json:"server"`
	Email        string `json:"email"`
	UserID       string `json:"user_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"` // access token expiry, unix seconds
}

// AccessExpired reports whether the access token expires within leeway of now
func (a *AuthData) AccessExpired(now time.Time, leeway time.Duration) bool {
	return !now.Add(leeway).Before(time.Unix(a.ExpiresAt, 0))
}

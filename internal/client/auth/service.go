// Package auth manages the CLI session: login, logout and access tokens
// that renew themselves through the refresh token.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iudanet/portfolio/internal/client/api"
	"github.com/iudanet/portfolio/internal/client/storage"
	"github.com/iudanet/portfolio/internal/validation"
	pkgapi "github.com/iudanet/portfolio/pkg/api"
)

// refreshLeeway renews access tokens this long before they expire
const refreshLeeway = 30 * time.Second

var (
	// ErrNotAuthenticated indicates that no usable session exists
	ErrNotAuthenticated = errors.New("not authenticated, run 'portfolio login' first")

	// ErrOtherServer indicates a session saved for a different server
	ErrOtherServer = errors.New("session belongs to another server")
)

// API is the part of the server API the session needs
type API interface {
	BaseURL() string
	Login(ctx context.Context, req pkgapi.LoginRequest) (*pkgapi.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*pkgapi.TokenResponse, error)
	Logout(ctx context.Context, accessToken string) error
}

// Service keeps the session of one server
type Service struct {
	api    API
	store  storage.AuthStorage
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a session service
func NewService(apiClient API, store storage.AuthStorage, logger *slog.Logger) *Service {
	return &Service{
		api:    apiClient,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Login authenticates and saves the session
func (s *Service) Login(ctx context.Context, email, password string) (*storage.AuthData, error) {
	email = strings.TrimSpace(email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("invalid email: %w", err)
	}
	if password == "" {
		return nil, fmt.Errorf("password cannot be empty")
	}

	resp, err := s.api.Login(ctx, pkgapi.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	authData := s.sessionFrom(resp)
	authData.Email = email
	if err := s.store.SaveAuth(ctx, authData); err != nil {
		return nil, fmt.Errorf("failed to save auth data: %w", err)
	}
	return authData, nil
}

// Logout revokes the session on the server (best effort) and always
// deletes it locally
func (s *Service) Logout(ctx context.Context) error {
	authData, err := s.store.GetAuth(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrAuthNotFound) {
			return ErrNotAuthenticated
		}
		return fmt.Errorf("failed to get auth data: %w", err)
	}

	if authData.Server == s.api.BaseURL() {
		if token, err := s.AccessToken(ctx); err != nil {
			s.logger.WarnContext(ctx, "failed to renew token for logout", slog.Any("error", err))
		} else if err := s.api.Logout(ctx, token); err != nil {
			s.logger.WarnContext(ctx, "failed to logout on server", slog.Any("error", err))
		}
	}

	if err := s.store.DeleteAuth(ctx); err != nil && !errors.Is(err, storage.ErrAuthNotFound) {
		return fmt.Errorf("failed to delete local auth data: %w", err)
	}
	return nil
}

// Session returns the stored session without renewing it
func (s *Service) Session(ctx context.Context) (*storage.AuthData, error) {
	authData, err := s.store.GetAuth(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrAuthNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("failed to get auth data: %w", err)
	}
	return authData, nil
}

// AccessToken returns a valid access token, refreshing it when it is about
// to expire. A rejected refresh token deletes the session.
func (s *Service) AccessToken(ctx context.Context) (string, error) {
	authData, err := s.Session(ctx)
	if err != nil {
		return "", err
	}
	if authData.Server != "" && authData.Server != s.api.BaseURL() {
		return "", fmt.Errorf("%w: %s", ErrOtherServer, authData.Server)
	}
	if !authData.AccessExpired(s.now(), refreshLeeway) {
		return authData.AccessToken, nil
	}
	if authData.RefreshToken == "" {
		return "", ErrNotAuthenticated
	}

	resp, err := s.api.Refresh(ctx, authData.RefreshToken)
	if err != nil {
		if api.IsUnauthorized(err) {
			if delErr := s.store.DeleteAuth(ctx); delErr != nil && !errors.Is(delErr, storage.ErrAuthNotFound) {
				s.logger.WarnContext(ctx, "failed to delete rejected session", slog.Any("error", delErr))
			}
			return "", ErrNotAuthenticated
		}
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}

	renewed := s.sessionFrom(resp)
	renewed.Email = authData.Email
	if err := s.store.SaveAuth(ctx, renewed); err != nil {
		return "", fmt.Errorf("failed to save auth data: %w", err)
	}
	s.logger.DebugContext(ctx, "access token refreshed")
	return renewed.AccessToken, nil
}

func (s *Service) sessionFrom(resp *pkgapi.TokenResponse) *storage.AuthData {
	return &storage.AuthData{
		Server:       s.api.BaseURL(),
		UserID:       subject(resp.AccessToken),
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    s.now().Unix() + resp.ExpiresIn,
	}
}

// subject reads the user id of an access token without verifying it. The
// CLI has no signing key; the value is informational.
func subject(accessToken string) string {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, &claims); err != nil {
		return ""
	}
	return claims.Subject
}

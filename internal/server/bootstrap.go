package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/portfolio/internal/crypto"
	"github.com/iudanet/portfolio/internal/models"
	"github.com/iudanet/portfolio/internal/server/storage"
	"github.com/iudanet/portfolio/internal/validation"
)

// EnsureAdmin creates the admin account, or updates its password hash when
// the configured password no longer matches
func EnsureAdmin(ctx context.Context, logger *slog.Logger, users storage.UserStorage, email, password string) error {
	if err := validation.ValidateEmail(email); err != nil {
		return fmt.Errorf("invalid admin email: %w", err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return fmt.Errorf("invalid admin password: %w", err)
	}

	user, err := users.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, storage.ErrUserNotFound):
		hash, err := crypto.HashPassword(password)
		if err != nil {
			return fmt.Errorf("failed to hash admin password: %w", err)
		}
		user = &models.User{
			ID:           uuid.NewString(),
			Email:        email,
			PasswordHash: hash,
			CreatedAt:    time.Now().UTC(),
		}
		if err := users.CreateUser(ctx, user); err != nil {
			return fmt.Errorf("failed to create admin: %w", err)
		}
		logger.InfoContext(ctx, "admin user created", slog.String("email", email))
		return nil
	case err != nil:
		return fmt.Errorf("failed to get admin: %w", err)
	}

	if crypto.VerifyPassword(password, user.PasswordHash) == nil {
		return nil
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	if err := users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("failed to update admin password: %w", err)
	}
	logger.InfoContext(ctx, "admin password updated", slog.String("email", email))
	return nil
}

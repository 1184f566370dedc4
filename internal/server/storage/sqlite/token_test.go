package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/portfolio/internal/models"
	"github.com/iudanet/portfolio/internal/server/storage"
)

func TestTokenStorage_SaveRefreshToken(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s)

	tests := []struct {
		name  string
		token *models.RefreshToken
	}{
		{
			name: "save new refresh token",
			token: &models.RefreshToken{
				Token:     "token123",
				UserID:    userID,
				ExpiresAt: time.Now().Add(24 * time.Hour),
				CreatedAt: time.Now(),
			},
		},
		{
			name: "replace existing token with same value",
			token: &models.RefreshToken{
				Token:     "token123",
				UserID:    userID,
				ExpiresAt: time.Now().Add(48 * time.Hour),
				CreatedAt: time.Now(),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, s.SaveRefreshToken(ctx, tt.token))

			got, err := s.GetRefreshToken(ctx, tt.token.Token)
			require.NoError(t, err)
			assert.Equal(t, tt.token.UserID, got.UserID)
			assert.Equal(t, tt.token.ExpiresAt.Unix(), got.ExpiresAt.Unix())
		})
	}
}

func TestTokenStorage_GetRefreshToken_NotFound(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	_, err := s.GetRefreshToken(ctx, "nope")
	assert.ErrorIs(t, err, storage.ErrTokenNotFound)
}

func TestTokenStorage_DeleteRefreshToken(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s)
	require.NoError(t, s.SaveRefreshToken(ctx, &models.RefreshToken{
		Token: "t1", UserID: userID, ExpiresAt: time.Now().Add(time.Hour), CreatedAt: time.Now(),
	}))

	require.NoError(t, s.DeleteRefreshToken(ctx, "t1"))
	assert.ErrorIs(t, s.DeleteRefreshToken(ctx, "t1"), storage.ErrTokenNotFound)
}

func TestTokenStorage_DeleteUserTokens(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s)
	otherID := createTestUser(t, ctx, s)
	for _, tok := range []string{"a", "b"} {
		require.NoError(t, s.SaveRefreshToken(ctx, &models.RefreshToken{
			Token: tok, UserID: userID, ExpiresAt: time.Now().Add(time.Hour), CreatedAt: time.Now(),
		}))
	}
	require.NoError(t, s.SaveRefreshToken(ctx, &models.RefreshToken{
		Token: "c", UserID: otherID, ExpiresAt: time.Now().Add(time.Hour), CreatedAt: time.Now(),
	}))

	n, err := s.DeleteUserTokens(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = s.GetRefreshToken(ctx, "c")
	assert.NoError(t, err)
}

func TestTokenStorage_DeleteExpiredTokens(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s)
	require.NoError(t, s.SaveRefreshToken(ctx, &models.RefreshToken{
		Token: "old", UserID: userID, ExpiresAt: time.Now().Add(-time.Hour), CreatedAt: time.Now().Add(-2 * time.Hour),
	}))
	require.NoError(t, s.SaveRefreshToken(ctx, &models.RefreshToken{
		Token: "fresh", UserID: userID, ExpiresAt: time.Now().Add(time.Hour), CreatedAt: time.Now(),
	}))

	n, err := s.DeleteExpiredTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = s.GetRefreshToken(ctx, "old")
	assert.ErrorIs(t, err, storage.ErrTokenNotFound)
	_, err = s.GetRefreshToken(ctx, "fresh")
	assert.NoError(t, err)
}

package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/portfolio/internal/models"
	"github.com/iudanet/portfolio/internal/server/storage"
)

// setupTestStorage connects to the database named by
// PORTFOLIO_TEST_POSTGRES_DSN and skips the test when it is unset.
func setupTestStorage(t *testing.T) *Storage {
	t.Helper()
	dsn := os.Getenv("PORTFOLIO_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("PORTFOLIO_TEST_POSTGRES_DSN is not set")
	}

	ctx := context.Background()
	s, err := New(ctx, dsn)
	require.NoError(t, err)

	_, err = s.pool.Exec(ctx, `TRUNCATE documents, refresh_tokens, users`)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func TestDocuments(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	_, err := s.GetDocument(ctx, "profile", "main")
	assert.ErrorIs(t, err, storage.ErrDocumentNotFound)

	for i, id := range []string{"b", "a"} {
		require.NoError(t, s.PutDocument(ctx, &models.Document{
			Collection: "projects", ID: id, Data: []byte(`{"id":"` + id + `"}`), Order: i, UpdatedAt: time.Now(),
		}))
	}

	docs, err := s.ListDocuments(ctx, "projects")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "b", docs[0].ID)
	assert.JSONEq(t, `{"id":"b"}`, string(docs[0].Data))

	err = s.RunInTx(ctx, func(tx storage.DocumentTx) error {
		if err := tx.DeleteDocument(ctx, "projects", "a"); err != nil {
			return err
		}
		return tx.DeleteDocument(ctx, "projects", "missing")
	})
	assert.ErrorIs(t, err, storage.ErrDocumentNotFound)

	n, err := s.CountDocuments(ctx, "projects")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestUsersAndTokens(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	user := &models.User{ID: uuid.New().String(), Email: "admin@example.com", PasswordHash: "h", CreatedAt: time.Now()}
	require.NoError(t, s.CreateUser(ctx, user))
	assert.ErrorIs(t, s.CreateUser(ctx, &models.User{ID: uuid.New().String(), Email: user.Email, CreatedAt: time.Now()}),
		storage.ErrUserAlreadyExists)

	got, err := s.GetUserByEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	require.NoError(t, s.SaveRefreshToken(ctx, &models.RefreshToken{
		Token: "t", UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour), CreatedAt: time.Now(),
	}))
	n, err := s.DeleteUserTokens(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/portfolio/internal/crypto"
	"github.com/iudanet/portfolio/internal/models"
	"github.com/iudanet/portfolio/internal/server/storage"
	"github.com/iudanet/portfolio/pkg/api"
)

const (
	testEmail    = "admin@example.com"
	testPassword = "correct horse battery"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var (
	testHashOnce sync.Once
	testHash     string
)

// testPasswordHash hashes testPassword once per test binary
func testPasswordHash(t *testing.T) string {
	t.Helper()
	testHashOnce.Do(func() {
		h, err := crypto.HashPassword(testPassword)
		if err != nil {
			panic(err)
		}
		testHash = h
	})
	return testHash
}

// mockUserStorage is a mock implementation of UserStorage for testing
type mockUserStorage struct {
	users           map[string]*models.User // email -> User
	createError     error
	getUserError    error
	updateLastLogin func(ctx context.Context, userID string, loginTime time.Time) error
	mu              sync.Mutex
}

func newMockUserStorage(users ...*models.User) *mockUserStorage {
	m := &mockUserStorage{users: make(map[string]*models.User)}
	for _, u := range users {
		m.users[u.Email] = u
	}
	return m
}

func (m *mockUserStorage) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createError != nil {
		return m.createError
	}
	if _, exists := m.users[user.Email]; exists {
		return storage.ErrUserAlreadyExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getUserError != nil {
		return nil, m.getUserError
	}
	user, ok := m.users[email]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserStorage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getUserError != nil {
		return nil, m.getUserError
	}
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (m *mockUserStorage) UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.ID == userID {
			user.PasswordHash = passwordHash
			return nil
		}
	}
	return storage.ErrUserNotFound
}

func (m *mockUserStorage) UpdateLastLogin(ctx context.Context, userID string, loginTime time.Time) error {
	if m.updateLastLogin != nil {
		return m.updateLastLogin(ctx, userID, loginTime)
	}
	return nil
}

// mockTokenStorage is a mock implementation of TokenStorage for testing
type mockTokenStorage struct {
	tokens        map[string]*models.RefreshToken // token -> RefreshToken
	saveError     error
	getError      error
	deleteError   error
	savedTokens   []*models.RefreshToken
	deletedTokens []string
	mu            sync.Mutex
}

func newMockTokenStorage() *mockTokenStorage {
	return &mockTokenStorage{tokens: make(map[string]*models.RefreshToken)}
}

func (m *mockTokenStorage) SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	m.tokens[token.Token] = token
	m.savedTokens = append(m.savedTokens, token)
	return nil
}

func (m *mockTokenStorage) GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getError != nil {
		return nil, m.getError
	}
	rt, ok := m.tokens[token]
	if !ok {
		return nil, storage.ErrTokenNotFound
	}
	return rt, nil
}

func (m *mockTokenStorage) DeleteRefreshToken(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteError != nil {
		return m.deleteError
	}
	if _, ok := m.tokens[token]; !ok {
		return storage.ErrTokenNotFound
	}
	delete(m.tokens, token)
	m.deletedTokens = append(m.deletedTokens, token)
	return nil
}

func (m *mockTokenStorage) DeleteUserTokens(ctx context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteError != nil {
		return 0, m.deleteError
	}
	count := 0
	for token, rt := range m.tokens {
		if rt.UserID == userID {
			delete(m.tokens, token)
			m.deletedTokens = append(m.deletedTokens, token)
			count++
		}
	}
	return count, nil
}

func (m *mockTokenStorage) DeleteExpiredTokens(ctx context.Context) (int, error) {
	return 0, nil
}

func testJWTConfig() JWTConfig {
	return JWTConfig{
		Secret:          testSecret,
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 30 * 24 * time.Hour,
	}
}

func testAdmin(t *testing.T) *models.User {
	return &models.User{
		ID:           "user1",
		Email:        testEmail,
		PasswordHash: testPasswordHash(t),
		CreatedAt:    time.Now(),
	}
}

func loginRequest(t *testing.T, email, password string) *http.Request {
	t.Helper()
	body, err := json.Marshal(api.LoginRequest{Email: email, Password: password})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAuthHandler_Login_Success(t *testing.T) {
	userStorage := newMockUserStorage(testAdmin(t))
	tokenStorage := newMockTokenStorage()
	var lastLogin time.Time
	userStorage.updateLastLogin = func(ctx context.Context, userID string, loginTime time.Time) error {
		lastLogin = loginTime
		return nil
	}

	handler := NewAuthHandler(setupTestLogger(), userStorage, tokenStorage, testJWTConfig())

	w := httptest.NewRecorder()
	handler.Login(w, loginRequest(t, testEmail, testPassword))

	require.Equal(t, http.StatusOK, w.Code)

	var response api.TokenResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.NotEmpty(t, response.AccessToken)
	assert.NotEmpty(t, response.RefreshToken)
	assert.Equal(t, int64(900), response.ExpiresIn)

	claims, err := ValidateAccessToken(testJWTConfig(), response.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user1", claims.UserID)
	assert.Equal(t, testEmail, claims.Email)

	require.Len(t, tokenStorage.savedTokens, 1)
	assert.Equal(t, response.RefreshToken, tokenStorage.savedTokens[0].Token)
	assert.False(t, lastLogin.IsZero())
}

func TestAuthHandler_Login_InvalidJSON(t *testing.T) {
	handler := NewAuthHandler(setupTestLogger(), newMockUserStorage(), newMockTokenStorage(), testJWTConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader([]byte("invalid json")))
	w := httptest.NewRecorder()
	handler.Login(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Login_EmptyFields(t *testing.T) {
	handler := NewAuthHandler(setupTestLogger(), newMockUserStorage(), newMockTokenStorage(), testJWTConfig())

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"empty email", "", testPassword},
		{"malformed email", "admin", testPassword},
		{"display name", "Admin <admin@example.com>", testPassword},
		{"empty password", testEmail, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.Login(w, loginRequest(t, tt.email, tt.password))
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	handler := NewAuthHandler(setupTestLogger(), newMockUserStorage(testAdmin(t)), newMockTokenStorage(), testJWTConfig())

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"user not found", "nobody@example.com", testPassword},
		{"wrong password", testEmail, "wrong password!!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.Login(w, loginRequest(t, tt.email, tt.password))

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			var resp api.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, "invalid credentials", resp.Message)
		})
	}
}

func TestAuthHandler_Login_StorageErrors(t *testing.T) {
	t.Run("get user", func(t *testing.T) {
		userStorage := newMockUserStorage()
		userStorage.getUserError = errors.New("db down")
		handler := NewAuthHandler(setupTestLogger(), userStorage, newMockTokenStorage(), testJWTConfig())

		w := httptest.NewRecorder()
		handler.Login(w, loginRequest(t, testEmail, testPassword))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("save token", func(t *testing.T) {
		tokenStorage := newMockTokenStorage()
		tokenStorage.saveError = errors.New("db down")
		handler := NewAuthHandler(setupTestLogger(), newMockUserStorage(testAdmin(t)), tokenStorage, testJWTConfig())

		w := httptest.NewRecorder()
		handler.Login(w, loginRequest(t, testEmail, testPassword))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("last login is not critical", func(t *testing.T) {
		userStorage := newMockUserStorage(testAdmin(t))
		userStorage.updateLastLogin = func(context.Context, string, time.Time) error {
			return errors.New("db down")
		}
		handler := NewAuthHandler(setupTestLogger(), userStorage, newMockTokenStorage(), testJWTConfig())

		w := httptest.NewRecorder()
		handler.Login(w, loginRequest(t, testEmail, testPassword))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestAuthHandler_Refresh_Success(t *testing.T) {
	tokenStorage := newMockTokenStorage()
	tokenStorage.tokens["old-token"] = &models.RefreshToken{
		Token:     "old-token",
		UserID:    "user1",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	handler := NewAuthHandler(setupTestLogger(), newMockUserStorage(testAdmin(t)), tokenStorage, testJWTConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer old-token")
	w := httptest.NewRecorder()
	handler.Refresh(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response api.TokenResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.NotEqual(t, "old-token", response.RefreshToken)
	assert.Contains(t, tokenStorage.deletedTokens, "old-token")
	assert.Contains(t, tokenStorage.tokens, response.RefreshToken)
}

func TestAuthHandler_Refresh_Rejected(t *testing.T) {
	tokenStorage := newMockTokenStorage()
	tokenStorage.tokens["expired"] = &models.RefreshToken{
		Token:     "expired",
		UserID:    "user1",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	tokenStorage.tokens["orphan"] = &models.RefreshToken{
		Token:     "orphan",
		UserID:    "ghost",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	handler := NewAuthHandler(setupTestLogger(), newMockUserStorage(testAdmin(t)), tokenStorage, testJWTConfig())

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"wrong scheme", "Basic abc"},
		{"empty token", "Bearer "},
		{"unknown token", "Bearer nope"},
		{"expired token", "Bearer expired"},
		{"user gone", "Bearer orphan"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.Refresh(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAuthHandler_Refresh_SaveRefreshTokenError(t *testing.T) {
	tokenStorage := newMockTokenStorage()
	tokenStorage.tokens["old-token"] = &models.RefreshToken{
		Token:     "old-token",
		UserID:    "user1",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	tokenStorage.saveError = errors.New("db down")
	handler := NewAuthHandler(setupTestLogger(), newMockUserStorage(testAdmin(t)), tokenStorage, testJWTConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer old-token")
	w := httptest.NewRecorder()
	handler.Refresh(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAuthHandler_Logout_Success(t *testing.T) {
	tokenStorage := newMockTokenStorage()
	tokenStorage.tokens["t1"] = &models.RefreshToken{Token: "t1", UserID: "user1"}
	tokenStorage.tokens["t2"] = &models.RefreshToken{Token: "t2", UserID: "user1"}
	tokenStorage.tokens["t3"] = &models.RefreshToken{Token: "t3", UserID: "user2"}
	handler := NewAuthHandler(setupTestLogger(), newMockUserStorage(testAdmin(t)), tokenStorage, testJWTConfig())

	accessToken, _, err := GenerateAccessToken(testJWTConfig(), "user1", testEmail)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	w := httptest.NewRecorder()
	handler.Logout(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.ElementsMatch(t, []string{"t1", "t2"}, tokenStorage.deletedTokens)
	assert.Contains(t, tokenStorage.tokens, "t3")
}

func TestAuthHandler_Logout_Rejected(t *testing.T) {
	handler := NewAuthHandler(setupTestLogger(), newMockUserStorage(), newMockTokenStorage(), testJWTConfig())

	otherCfg := testJWTConfig()
	otherCfg.Secret = []byte("another-secret-another-secret-00")
	forged, _, err := GenerateAccessToken(otherCfg, "user1", testEmail)
	require.NoError(t, err)

	for _, header := range []string{"", "Bearer ", "Bearer garbage", "Bearer " + forged} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		handler.Logout(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
	}
}

func TestAuthHandler_Logout_StorageError(t *testing.T) {
	tokenStorage := newMockTokenStorage()
	tokenStorage.deleteError = errors.New("db down")
	handler := NewAuthHandler(setupTestLogger(), newMockUserStorage(), tokenStorage, testJWTConfig())

	accessToken, _, err := GenerateAccessToken(testJWTConfig(), "user1", testEmail)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	w := httptest.NewRecorder()
	handler.Logout(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestValidateAccessToken(t *testing.T) {
	cfg := testJWTConfig()

	token, expiresIn, err := GenerateAccessToken(cfg, "user1", testEmail)
	require.NoError(t, err)
	assert.Equal(t, int64(cfg.AccessTokenTTL.Seconds()), expiresIn)

	claims, err := ValidateAccessToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, TokenIssuer, claims.Issuer)
	assert.Equal(t, "user1", claims.Subject)

	expired := cfg
	expired.AccessTokenTTL = -time.Minute
	old, _, err := GenerateAccessToken(expired, "user1", testEmail)
	require.NoError(t, err)
	_, err = ValidateAccessToken(cfg, old)
	assert.Error(t, err)
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/portfolio/internal/content"
	"github.com/iudanet/portfolio/internal/crypto"
	"github.com/iudanet/portfolio/internal/gateway"
	"github.com/iudanet/portfolio/internal/models"
	"github.com/iudanet/portfolio/internal/server/handlers"
	"github.com/iudanet/portfolio/internal/server/storage"
	"github.com/iudanet/portfolio/internal/server/storage/boltdb"
	"github.com/iudanet/portfolio/internal/server/storage/sqlite"
	"github.com/iudanet/portfolio/internal/validation"
	"github.com/iudanet/portfolio/pkg/api"
)

const (
	testEmail    = "admin@example.com"
	testPassword = "correct horse battery"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

// setupTestLogger creates a logger for testing
func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

type testEnv struct {
	srv    *httptest.Server
	client *http.Client
	db     *sqlite.Storage
}

// setupTestServer runs the full handler stack over sqlite and bbolt
func setupTestServer(t *testing.T, loginPerMinute int) *testEnv {
	t.Helper()
	ctx := context.Background()
	logger := setupTestLogger()

	db, err := sqlite.New(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	objects, err := boltdb.New(ctx, filepath.Join(t.TempDir(), "objects.db"), "http://localhost:8080")
	require.NoError(t, err)
	t.Cleanup(func() { _ = objects.Close() })

	v, err := validation.NewDocumentValidator()
	require.NoError(t, err)

	svc := content.NewService(logger, gateway.New(logger, db, objects, v), content.Config{})
	require.NoError(t, svc.InitializeBackend(ctx))
	require.NoError(t, EnsureAdmin(ctx, logger, db, testEmail, testPassword))

	s, err := New(Options{
		Logger:  logger,
		Content: svc,
		Users:   db,
		Tokens:  db,
		Objects: objects,
		BaseURL: "http://localhost:8080",
		Version: "test",
		JWT: handlers.JWTConfig{
			Secret:          []byte("0123456789abcdef0123456789abcdef"),
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: time.Hour,
		},
		LoginPerMinute: loginPerMinute,
	})
	require.NoError(t, err)
	t.Cleanup(s.limiter.Stop)

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	return &testEnv{
		srv: srv,
		db:  db,
		client: &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body io.Reader, contentType string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, e.srv.URL+path, body)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := e.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (e *testEnv) login(t *testing.T) api.TokenResponse {
	t.Helper()
	body, err := json.Marshal(api.LoginRequest{Email: testEmail, Password: testPassword})
	require.NoError(t, err)
	resp := e.do(t, http.MethodPost, "/api/v1/auth/login", "", bytes.NewReader(body), "application/json")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tokens api.TokenResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tokens))
	return tokens
}

func TestServer_PublicRoutes(t *testing.T) {
	env := setupTestServer(t, 10)

	tests := []struct {
		path   string
		status int
	}{
		{path: "/", status: http.StatusOK},
		{path: "/about", status: http.StatusOK},
		{path: "/experience", status: http.StatusOK},
		{path: "/projects?filter=featured", status: http.StatusOK},
		{path: "/skills", status: http.StatusOK},
		{path: "/certifications", status: http.StatusOK},
		{path: "/contact", status: http.StatusOK},
		{path: "/resume", status: http.StatusOK},
		{path: "/nope", status: http.StatusNotFound},
		{path: "/files/profile/missing.png", status: http.StatusNotFound},
		{path: "/api/v1/portfolio", status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp := env.do(t, http.MethodGet, tt.path, "", nil, "")
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestServer_Health(t *testing.T) {
	env := setupTestServer(t, 10)

	resp := env.do(t, http.MethodGet, "/api/v1/health", "", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health api.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "test", health.Version)
	assert.Equal(t, string(content.StatusReady), health.ContentStatus)
}

func TestServer_AdminAPI(t *testing.T) {
	env := setupTestServer(t, 10)

	resp := env.do(t, http.MethodGet, "/api/v1/admin/portfolio", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	tokens := env.login(t)

	resp = env.do(t, http.MethodPatch, "/api/v1/admin/singletons/settings", tokens.AccessToken,
		strings.NewReader(`{"siteTitle":"Integration"}`), "application/json")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/v1/portfolio", "", nil, "")
	var published models.Portfolio
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&published))
	assert.Equal(t, "Integration", published.Settings.SiteTitle)

	resp = env.do(t, http.MethodPut, "/api/v1/admin/collections/education/order", tokens.AccessToken,
		strings.NewReader(`{"ids":["nope"]}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/api/v1/admin/collections/education/missing", tokens.AccessToken, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_RefreshAndLogout(t *testing.T) {
	env := setupTestServer(t, 10)
	tokens := env.login(t)

	resp := env.do(t, http.MethodPost, "/api/v1/auth/refresh", tokens.RefreshToken, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rotated api.TokenResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rotated))
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

	resp = env.do(t, http.MethodPost, "/api/v1/auth/refresh", tokens.RefreshToken, nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "old refresh token is rotated out")

	resp = env.do(t, http.MethodPost, "/api/v1/auth/logout", rotated.AccessToken, nil, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/v1/auth/refresh", rotated.RefreshToken, nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServer_UploadServedFromFiles(t *testing.T) {
	env := setupTestServer(t, 10)
	tokens := env.login(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("folder", "projects"))
	fw, err := mw.CreateFormFile("file", "shot.png")
	require.NoError(t, err)
	_, err = fw.Write(pngHeader)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp := env.do(t, http.MethodPost, "/api/v1/admin/uploads", tokens.AccessToken, &body, mw.FormDataContentType())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var uploaded api.UploadResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&uploaded))
	assert.True(t, strings.HasPrefix(uploaded.Path, "projects/"))

	resp = env.do(t, http.MethodGet, "/files/"+uploaded.Path, "", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	resp = env.do(t, http.MethodDelete, "/api/v1/admin/uploads?path="+url.QueryEscape(uploaded.Path), tokens.AccessToken, nil, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/files/"+uploaded.Path, "", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_AdminConsole(t *testing.T) {
	env := setupTestServer(t, 10)

	resp := env.do(t, http.MethodGet, "/admin/dashboard", "", nil, "")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin", resp.Header.Get("Location"))

	resp = env.do(t, http.MethodGet, "/admin", "", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	form := url.Values{"email": {testEmail}, "password": {testPassword}}
	resp = env.do(t, http.MethodPost, "/admin/login", "", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin/dashboard", resp.Header.Get("Location"))

	var session *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == handlers.SessionCookie {
			session = c
		}
	}
	require.NotNil(t, session)

	withSession := func(method, path string, body io.Reader, contentType string) *http.Response {
		req, err := http.NewRequest(method, env.srv.URL+path, body)
		require.NoError(t, err)
		req.AddCookie(session)
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		resp, err := env.client.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { _ = resp.Body.Close() })
		return resp
	}

	resp = withSession(http.MethodGet, "/admin/dashboard", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = withSession(http.MethodGet, "/admin/projects", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	order := url.Values{"ids": {"edu2\nedu1"}}
	resp = withSession(http.MethodPost, "/admin/education/order", strings.NewReader(order.Encode()), "application/x-www-form-urlencoded")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp = withSession(http.MethodGet, "/admin", nil, "")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin/dashboard", resp.Header.Get("Location"))
}

func TestServer_LoginRateLimit(t *testing.T) {
	env := setupTestServer(t, 2)

	body := `{"email":"admin@example.com","password":"wrong password"}`
	for i := 0; i < 2; i++ {
		resp := env.do(t, http.MethodPost, "/api/v1/auth/login", "", strings.NewReader(body), "application/json")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	resp := env.do(t, http.MethodPost, "/api/v1/auth/login", "", strings.NewReader(body), "application/json")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))

	resp = env.do(t, http.MethodPost, "/admin/login", "", strings.NewReader("email=a&password=b"), "application/x-www-form-urlencoded")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode, "both login routes share the limiter")
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	logger := setupTestLogger()

	db, err := sqlite.New(ctx, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, EnsureAdmin(ctx, logger, db, testEmail, testPassword))
	user, err := db.GetUserByEmail(ctx, testEmail)
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	require.NoError(t, crypto.VerifyPassword(testPassword, user.PasswordHash))

	require.NoError(t, EnsureAdmin(ctx, logger, db, testEmail, testPassword))
	same, err := db.GetUserByEmail(ctx, testEmail)
	require.NoError(t, err)
	assert.Equal(t, user.PasswordHash, same.PasswordHash, "matching password keeps the hash")

	require.NoError(t, EnsureAdmin(ctx, logger, db, testEmail, "a brand new password"))
	updated, err := db.GetUserByEmail(ctx, testEmail)
	require.NoError(t, err)
	assert.Equal(t, user.ID, updated.ID)
	assert.NoError(t, crypto.VerifyPassword("a brand new password", updated.PasswordHash))
	assert.ErrorIs(t, crypto.VerifyPassword(testPassword, updated.PasswordHash), crypto.ErrPasswordMismatch)

	assert.Error(t, EnsureAdmin(ctx, logger, db, "not-an-email", testPassword))
	assert.Error(t, EnsureAdmin(ctx, logger, db, testEmail, ""))
}

func TestEnsureAdmin_StorageError(t *testing.T) {
	err := EnsureAdmin(context.Background(), setupTestLogger(), failingUsers{}, testEmail, testPassword)
	assert.ErrorContains(t, err, "failed to get admin")
}

type failingUsers struct{ storage.UserStorage }

func (failingUsers) GetUserByEmail(context.Context, string) (*models.User, error) {
	return nil, assert.AnError
}

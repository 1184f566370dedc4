package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/portfolio/pkg/api"
)

func TestNewRateLimiter(t *testing.T) {
	rl := NewRateLimiter(10, time.Minute, setupTestLogger())
	defer rl.Stop()

	assert.Equal(t, 10, rl.rate)
	assert.Equal(t, time.Minute, rl.window)
	assert.NotNil(t, rl.buckets)
}

func TestRateLimiter_Allow(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(3, time.Minute, setupTestLogger())
	defer rl.Stop()
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("10.0.0.1"), "request %d should pass", i+1)
	}
	assert.False(t, rl.Allow("10.0.0.1"), "bucket exhausted")
	assert.True(t, rl.Allow("10.0.0.2"), "keys are independent")

	now = now.Add(30 * time.Second)
	assert.False(t, rl.Allow("10.0.0.1"), "no refill before the window")

	now = now.Add(30 * time.Second)
	assert.True(t, rl.Allow("10.0.0.1"), "refilled after the window")
}

func TestRateLimiter_AllowConcurrent(t *testing.T) {
	rl := NewRateLimiter(50, time.Hour, setupTestLogger())
	defer rl.Stop()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rl.Allow("shared") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, allowed)
}

func TestRateLimiter_Middleware(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute, setupTestLogger())
	defer rl.Stop()

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func(path, remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.RemoteAddr = remote
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusNoContent, send("/api/v1/auth/login", "192.168.1.1:1000").Code)
	assert.Equal(t, http.StatusNoContent, send("/api/v1/auth/login", "192.168.1.1:2000").Code, "port is ignored")

	w := send("/api/v1/auth/login", "192.168.1.1:3000")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var resp api.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "Too Many Requests", resp.Error)

	w = send("/admin/login", "192.168.1.1:4000")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Too many attempts")
	assert.NotEqual(t, "application/json", w.Header().Get("Content-Type"))

	assert.Equal(t, http.StatusNoContent, send("/admin/login", "192.168.1.2:1000").Code)
}

func TestRateLimiter_LogsExceededRequests(t *testing.T) {
	var logBuf strings.Builder
	logger := slog.New(slog.NewTextHandler(&logBuf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	rl := NewRateLimiter(1, time.Minute, logger)
	defer rl.Stop()

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/admin/login", nil)
		req.RemoteAddr = "203.0.113.7:5555"
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	logOutput := logBuf.String()
	assert.Contains(t, logOutput, "rate limit exceeded")
	assert.Contains(t, logOutput, "ip=203.0.113.7")
	assert.Contains(t, logOutput, "/admin/login")
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		headers    map[string]string
		name       string
		remoteAddr string
		expected   string
	}{
		{name: "remote addr", remoteAddr: "192.168.1.1:12345", expected: "192.168.1.1"},
		{name: "ipv6 remote addr", remoteAddr: "[2001:db8::1]:443", expected: "2001:db8::1"},
		{name: "remote addr without port", remoteAddr: "192.168.1.1", expected: "192.168.1.1"},
		{
			name:       "X-Forwarded-For chain",
			remoteAddr: "10.0.0.1:12345",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.1, 198.51.100.1"},
			expected:   "203.0.113.1",
		},
		{
			name:       "X-Real-IP",
			remoteAddr: "10.0.0.1:12345",
			headers:    map[string]string{"X-Real-IP": " 203.0.113.2 "},
			expected:   "203.0.113.2",
		},
		{
			name:       "X-Forwarded-For wins",
			remoteAddr: "10.0.0.1:12345",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.1", "X-Real-IP": "203.0.113.2"},
			expected:   "203.0.113.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.expected, getClientIP(req))
		})
	}
}

func TestRateLimiter_CleanupOldBuckets(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(5, time.Minute, setupTestLogger())
	defer rl.Stop()
	rl.now = func() time.Time { return now }

	rl.Allow("old")
	now = now.Add(90 * time.Second)
	rl.Allow("fresh")
	now = now.Add(60 * time.Second)

	rl.cleanupOldBuckets()

	rl.mu.RLock()
	defer rl.mu.RUnlock()
	assert.NotContains(t, rl.buckets, "old")
	assert.Contains(t, rl.buckets, "fresh")
}

func TestRateLimiter_StopIdempotent(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute, setupTestLogger())
	assert.NotPanics(t, func() {
		rl.Stop()
		rl.Stop()
	})
}

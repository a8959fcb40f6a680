package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apierrors "mockbank/internal/errors"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func TestIPRateLimiter(t *testing.T) {
	e := echo.New()
	limiter := NewIPRateLimiter(1, 3)
	handler := limiter.Middleware()(okHandler)

	codes := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.RemoteAddr = "192.168.1.100:12345"
		rec := httptest.NewRecorder()
		require.NoError(t, handler(e.NewContext(req, rec)))
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{200, 200, 200, 429, 429}, codes)

	t.Run("separate buckets per ip", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.RemoteAddr = "10.0.0.9:5555"
		rec := httptest.NewRecorder()
		require.NoError(t, handler(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("cleanup forgets idle visitors", func(t *testing.T) {
		limiter.Cleanup(0)
		limiter.mu.Lock()
		defer limiter.mu.Unlock()
		assert.Empty(t, limiter.visitors)
	})
}

func TestFixedWindowLimiter(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 10, 0, time.UTC)
	limiter := NewFixedWindowLimiter()
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.Allow("caller", "balance", 2))
	assert.True(t, limiter.Allow("caller", "balance", 2))
	assert.False(t, limiter.Allow("caller", "balance", 2))

	assert.True(t, limiter.Allow("caller", "transfer", 2), "routes are counted separately")
	assert.True(t, limiter.Allow("other", "balance", 2), "callers are counted separately")

	now = now.Add(time.Minute)
	assert.True(t, limiter.Allow("caller", "balance", 2), "a new minute starts a new window")

	limiter.Cleanup()
	limiter.mu.Lock()
	assert.Len(t, limiter.counts, 1)
	limiter.mu.Unlock()
}

func TestRouteRateLimit(t *testing.T) {
	e := echo.New()
	limiter := NewFixedWindowLimiter()
	handler := RouteRateLimit(limiter, "transfer", 1, testMetrics())(okHandler)

	call := func(auth string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/transfers", nil)
		req.Header.Set(echo.HeaderAuthorization, auth)
		rec := httptest.NewRecorder()
		require.NoError(t, handler(e.NewContext(req, rec)))
		return rec
	}

	assert.Equal(t, http.StatusOK, call("Bearer token-one-aaaaaaaaaaaaaaaaaaaaaaaaaaaa").Code)

	rec := call("Bearer token-one-aaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	var body apierrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Too Many Requests", body.Detail)
	assert.Equal(t, 1, body.LimitPerMin)
	assert.Equal(t, "transfer", body.Route)

	assert.Equal(t, http.StatusOK, call("Bearer token-two-bbbbbbbbbbbbbbbbbbbbbbbbbbbb").Code)
}

func TestLastN(t *testing.T) {
	assert.Equal(t, "abc", lastN("abc", 24))
	assert.Equal(t, "cdef", lastN("abcdef", 4))
}

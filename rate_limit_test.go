package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/TheRealTwizzy/raiderdle/internal/storage"
)

func TestRateLimiterWindow(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newRateLimiter(2, time.Minute, func() time.Time { return now })

	ok, _ := l.allow("10.0.0.1", "bug_report")
	assert.True(t, ok)
	ok, _ = l.allow("10.0.0.1", "bug_report")
	assert.True(t, ok)

	now = now.Add(15 * time.Second)
	ok, retry := l.allow("10.0.0.1", "bug_report")
	assert.False(t, ok)
	assert.Equal(t, 45, retry)

	// Other clients and actions have their own windows.
	ok, _ = l.allow("10.0.0.2", "bug_report")
	assert.True(t, ok)
	ok, _ = l.allow("10.0.0.1", "other")
	assert.True(t, ok)

	now = now.Add(time.Minute)
	ok, _ = l.allow("10.0.0.1", "bug_report")
	assert.True(t, ok)
}

func TestRateLimiterDisabled(t *testing.T) {
	var nilLimiter *rateLimiter
	ok, _ := nilLimiter.allow("10.0.0.1", "bug_report")
	assert.True(t, ok)

	l := newRateLimiter(0, time.Minute, nil)
	for i := 0; i < 10; i++ {
		ok, _ := l.allow("10.0.0.1", "bug_report")
		assert.True(t, ok)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:5555"
	assert.Equal(t, "203.0.113.9", clientIP(req, nil))

	// An untrusted peer cannot pick its own identity.
	req.Header.Set("X-Forwarded-For", "198.51.100.4")
	assert.Equal(t, "203.0.113.9", clientIP(req, nil))

	trusted, err := parseTrustedProxies([]string{"10.0.0.0/8", "192.0.2.7"})
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.9", clientIP(req, trusted))

	req.RemoteAddr = "10.1.2.3:443"
	assert.Equal(t, "198.51.100.4", clientIP(req, trusted))

	// A spoofed leading hop is ignored; the proxy chain is walked from the right.
	req.Header.Set("X-Forwarded-For", "1.2.3.4, 198.51.100.4, 192.0.2.7")
	assert.Equal(t, "198.51.100.4", clientIP(req, trusted))

	req.Header.Del("X-Forwarded-For")
	assert.Equal(t, "10.1.2.3", clientIP(req, trusted))
}

func TestParseTrustedProxies(t *testing.T) {
	got, err := parseTrustedProxies([]string{" 10.0.0.1/8 ", "", "::1"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "10.0.0.0/8", got[0].String())
	assert.Equal(t, "::1/128", got[1].String())

	_, err = parseTrustedProxies([]string{"proxy.internal"})
	assert.Error(t, err)
}

func TestSpoofedForwardedForDoesNotEvadeLimit(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	h := bugReportSubmitHandler(store, newRateLimiter(1, time.Hour, nil), time.Now, zaptest.NewLogger(t))

	post := func(forwarded string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/bug-report",
			strings.NewReader(`{"message":"broken","modes":["arcs"]}`))
		req.Header.Set("X-Forwarded-For", forwarded)
		rec := httptest.NewRecorder()
		h(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, post("198.51.100.1"))
	assert.Equal(t, http.StatusTooManyRequests, post("198.51.100.2"))
}

func TestBugReportRateLimited(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	h := bugReportSubmitHandler(store, newRateLimiter(1, time.Hour, nil), time.Now, zaptest.NewLogger(t))

	post := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/bug-report",
			strings.NewReader(`{"message":"broken","modes":["arcs"]}`))
		rec := httptest.NewRecorder()
		h(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, post().Code)
	rec := post()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "3600", rec.Header().Get("Retry-After"))
	assert.Equal(t, "RATE_LIMIT", decodeError(t, rec.Body.Bytes()).Error)
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIPRateLimiter_BurstAndRefill(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewIPRateLimiter(1, 2, time.Minute)
	l.now = func() time.Time { return now }

	require.True(t, l.Allow("1.1.1.1"))
	require.True(t, l.Allow("1.1.1.1"))
	require.False(t, l.Allow("1.1.1.1"))

	// Другой ключ — свой bucket.
	require.True(t, l.Allow("2.2.2.2"))

	now = now.Add(time.Second)
	require.True(t, l.Allow("1.1.1.1"))
}

func TestIPRateLimiter_EvictsIdleVisitors(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewIPRateLimiter(1, 1, time.Minute)
	l.now = func() time.Time { return now }

	l.Allow("a")
	now = now.Add(2 * time.Minute)
	l.Allow("b")

	require.Len(t, l.visitors, 1)
	require.Contains(t, l.visitors, "b")
}

func TestIPRateLimiter_SweepsAtMostOncePerTTL(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start
	l := NewIPRateLimiter(1, 1, time.Minute)
	l.now = func() time.Time { return now }

	l.Allow("a")
	require.Equal(t, start, l.lastSweep)

	// Внутри ttl карта не обходится.
	now = start.Add(30 * time.Second)
	l.Allow("b")
	require.Equal(t, start, l.lastSweep)
	require.Len(t, l.visitors, 2)

	now = start.Add(90 * time.Second)
	l.Allow("c")
	require.Equal(t, now, l.lastSweep)
	require.Len(t, l.visitors, 2)
	require.NotContains(t, l.visitors, "a")
	require.Contains(t, l.visitors, "b")
	require.Contains(t, l.visitors, "c")
}

func TestRateLimit_Returns429(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewIPRateLimiter(1, 1, time.Minute)
	l.now = func() time.Time { return now }

	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	h := Chain(final, RateLimit(l))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, makeReq("/api/auth/login"))
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, makeReq("/api/auth/login"))
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	require.Equal(t, "1", rr.Header().Get("Retry-After"))
	require.Equal(t, "rate_limited", decodeErr(t, rr).ErrorType)
}

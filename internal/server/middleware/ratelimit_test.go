package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordLimiter captures every key offered to Allow and answers with a
// scripted verdict.
type recordLimiter struct {
	keys  []string
	allow bool
	err   error
}

func (l *recordLimiter) Allow(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	l.keys = append(l.keys, key)
	return l.allow, l.err
}

func admit(t *testing.T, limiter *recordLimiter, body string, next http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/markets/m1/bets", strings.NewReader(body))
	req.RemoteAddr = "203.0.113.7:51234"
	rec := httptest.NewRecorder()
	RateLimit(limiter, 5, time.Minute)(next).ServeHTTP(rec, req)
	return rec
}

func TestRateLimit_KeysOnBettor(t *testing.T) {
	limiter := &recordLimiter{allow: true}
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The handler must still see the full body after the peek.
		b, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		seen = string(b)
	})

	body := `{"bettor":"alice","outcome":true,"amount":10000000}`
	rec := admit(t, limiter, body, next)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"bets:alice"}, limiter.keys)
	assert.Equal(t, body, seen)
}

func TestRateLimit_FallsBackToClientIP(t *testing.T) {
	limiter := &recordLimiter{allow: true}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	admit(t, limiter, `not json`, next)

	require.Len(t, limiter.keys, 1)
	assert.Equal(t, "bets:203.0.113.7", limiter.keys[0])
}

func TestRateLimit_RejectsOverLimit(t *testing.T) {
	limiter := &recordLimiter{allow: false}
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

	rec := admit(t, limiter, `{"bettor":"alice"}`, next)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "RATE_LIMITED")
	assert.False(t, called)
}

func TestRateLimit_FailsOpenOnLimiterError(t *testing.T) {
	limiter := &recordLimiter{err: context.DeadlineExceeded}
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

	rec := admit(t, limiter, `{"bettor":"alice"}`, next)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

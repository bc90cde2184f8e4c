package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/alanyoungcy/wagerpool/internal/domain"
)

// RateLimit returns middleware that meters wager admissions per bettor using
// the provided domain.RateLimiter: each bettor gets `limit` admissions per
// `window`. Requests that carry no bettor identity fall back to the client
// IP so the limiter still applies. It is attached to the admission routes,
// not the whole API: reads stay unmetered.
func RateLimit(limiter domain.RateLimiter, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "bets:" + admissionKey(r)

			allowed, err := limiter.Allow(r.Context(), key, limit, window)
			if err != nil {
				// On rate-limiter errors, fail open to avoid blocking
				// legitimate traffic. The error is not surfaced to the client.
				next.ServeHTTP(w, r)
				return
			}

			if !allowed {
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"` + domain.ErrRateLimited.Error() + `","code":"` + domain.ErrRateLimited.Code + `"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// admissionKey identifies the caller for metering: the bettor from the
// request body when present, the client IP otherwise.
func admissionKey(r *http.Request) string {
	if bettor := peekBettor(r); bettor != "" {
		return bettor
	}
	return extractClientIP(r)
}

// peekBettor reads the bettor identity out of the admission JSON body and
// restores the body for the handler. Malformed bodies yield an empty bettor;
// the handler rejects them with a proper error.
func peekBettor(r *http.Request) string {
	if r.Body == nil {
		return ""
	}
	body, err := io.ReadAll(r.Body)
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	var payload struct {
		Bettor string `json:"bettor"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Bettor
}

// extractClientIP attempts to determine the real client IP from standard
// proxy headers, falling back to the direct remote address.
func extractClientIP(r *http.Request) string {
	// Check X-Forwarded-For first (may contain multiple IPs).
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.SplitN(xff, ",", 2)
		ip := strings.TrimSpace(parts[0])
		if ip != "" {
			return ip
		}
	}

	// Check X-Real-IP.
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// Fall back to RemoteAddr.
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/wagerpool/internal/domain"
	"github.com/alanyoungcy/wagerpool/internal/service"
)

// stubPayouts returns a canned payout or error for every call.
type stubPayouts struct {
	payout uint64
	err    error
}

func (s *stubPayouts) Claim(_ context.Context, _ service.ClaimParams) (uint64, error) {
	return s.payout, s.err
}

func (s *stubPayouts) Preview(_ context.Context, _ service.ClaimParams) (uint64, error) {
	return s.payout, s.err
}

func claimVia(t *testing.T, payouts PayoutService, body string) *httptest.ResponseRecorder {
	t.Helper()
	h := NewClaimHandler(payouts, slog.New(slog.DiscardHandler))

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/markets/{id}/claim", h.Claim)

	req := httptest.NewRequest(http.MethodPost, "/api/markets/m1/claim", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestClaimHandler_OK(t *testing.T) {
	rec := claimVia(t, &stubPayouts{payout: 150}, `{"claimant":"bob"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "m1", resp["market"])
	assert.Equal(t, "bob", resp["claimant"])
	assert.Equal(t, float64(150), resp["payout"])
}

func TestClaimHandler_BadBody(t *testing.T) {
	rec := claimVia(t, &stubPayouts{}, `{"claimant":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = claimVia(t, &stubPayouts{}, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown fields are rejected, not silently dropped.
	rec = claimVia(t, &stubPayouts{}, `{"claimant":"bob","amount":5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClaimHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrMarketNotResolved, http.StatusConflict, "MARKET_NOT_RESOLVED"},
		{domain.ErrAlreadyClaimed, http.StatusConflict, "ALREADY_CLAIMED"},
		{domain.ErrBetLost, http.StatusConflict, "BET_LOST"},
		{domain.ErrShieldedBetNotClaimable, http.StatusConflict, "SHIELDED_BET_NOT_CLAIMABLE"},
		{domain.ErrUnauthorized, http.StatusForbidden, "UNAUTHORIZED"},
		{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{domain.ErrArithmeticOverflow, http.StatusUnprocessableEntity, "ARITHMETIC_OVERFLOW"},
		{domain.ErrOraclePriceStale, http.StatusBadGateway, "ORACLE_PRICE_STALE"},
		{domain.ErrInvalidEncryptedData, http.StatusBadRequest, "INVALID_ENCRYPTED_DATA"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			rec := claimVia(t, &stubPayouts{err: tc.err}, `{"claimant":"bob"}`)
			assert.Equal(t, tc.status, rec.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tc.code, resp["code"])
		})
	}
}

func TestClaimHandler_WrappedErrorStillMaps(t *testing.T) {
	// Services wrap store errors with context; the handler must unwrap.
	wrapped := &stubPayouts{err: fmt.Errorf("payout_service: settle claim: %w", domain.ErrAlreadyClaimed)}
	rec := claimVia(t, wrapped, `{"claimant":"bob"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestClaimHandler_UnknownErrorMasked(t *testing.T) {
	rec := claimVia(t, &stubPayouts{err: errors.New("pg: connection refused")}, `{"claimant":"bob"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestPreviewClaim_RequiresClaimant(t *testing.T) {
	h := NewClaimHandler(&stubPayouts{payout: 150}, slog.New(slog.DiscardHandler))
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/markets/{id}/claim", h.PreviewClaim)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/markets/m1/claim", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/markets/m1/claim?claimant=bob", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

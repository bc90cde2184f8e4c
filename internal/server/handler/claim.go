package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/wagerpool/internal/service"
)

// PayoutService defines the methods that the claim handler requires from the
// service layer.
type PayoutService interface {
	Claim(ctx context.Context, p service.ClaimParams) (uint64, error)
	Preview(ctx context.Context, p service.ClaimParams) (uint64, error)
}

// ClaimHandler serves the winnings claim endpoints.
type ClaimHandler struct {
	payouts PayoutService
	logger  *slog.Logger
}

// NewClaimHandler creates a ClaimHandler.
func NewClaimHandler(payouts PayoutService, logger *slog.Logger) *ClaimHandler {
	return &ClaimHandler{
		payouts: payouts,
		logger:  logger,
	}
}

// claimRequest is the JSON body for a winnings claim.
type claimRequest struct {
	Claimant string `json:"claimant"`
}

// claimResponse carries the settled payout.
type claimResponse struct {
	Market   string `json:"market"`
	Claimant string `json:"claimant"`
	Payout   uint64 `json:"payout"`
}

// Claim settles a winning bet and pays the claimant.
// POST /api/markets/{id}/claim
func (h *ClaimHandler) Claim(w http.ResponseWriter, r *http.Request) {
	marketID := pathParam(r, "id")
	if marketID == "" {
		writeError(w, http.StatusBadRequest, "missing market id")
		return
	}

	var req claimRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Claimant == "" {
		writeError(w, http.StatusBadRequest, "missing claimant")
		return
	}

	payout, err := h.payouts.Claim(r.Context(), service.ClaimParams{
		Market:   marketID,
		Claimant: req.Claimant,
	})
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, claimResponse{
		Market:   marketID,
		Claimant: req.Claimant,
		Payout:   payout,
	})
}

// PreviewClaim computes the payout a claimant would receive without settling.
// GET /api/markets/{id}/claim?claimant=...
func (h *ClaimHandler) PreviewClaim(w http.ResponseWriter, r *http.Request) {
	marketID := pathParam(r, "id")
	claimant := r.URL.Query().Get("claimant")
	if marketID == "" || claimant == "" {
		writeError(w, http.StatusBadRequest, "missing market id or claimant")
		return
	}

	payout, err := h.payouts.Preview(r.Context(), service.ClaimParams{
		Market:   marketID,
		Claimant: claimant,
	})
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, claimResponse{
		Market:   marketID,
		Claimant: claimant,
		Payout:   payout,
	})
}

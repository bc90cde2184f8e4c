package handler

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/wagerpool/internal/domain"
	"github.com/alanyoungcy/wagerpool/internal/service"
)

// ShieldedService defines the methods that the shielded handler requires
// from the service layer.
type ShieldedService interface {
	InitPool(ctx context.Context, p service.InitPoolParams) (domain.ShieldedPoolAggregate, error)
	SubmitAggregate(ctx context.Context, p service.SubmitAggregateParams) (domain.ShieldedPoolAggregate, error)
	Aggregate(ctx context.Context, marketID string) (domain.ShieldedPoolAggregate, error)
}

// ShieldedHandler serves the shielded pool coordination endpoints.
type ShieldedHandler struct {
	shielded ShieldedService
	logger   *slog.Logger
}

// NewShieldedHandler creates a ShieldedHandler.
func NewShieldedHandler(shielded ShieldedService, logger *slog.Logger) *ShieldedHandler {
	return &ShieldedHandler{
		shielded: shielded,
		logger:   logger,
	}
}

// initPoolRequest is the JSON body for shielded pool initialization.
type initPoolRequest struct {
	Caller       string `json:"caller"`
	MXEAuthority string `json:"mxe_authority"`
}

// InitPool creates the market's shielded pool record.
// POST /api/markets/{id}/shielded-pool
func (h *ShieldedHandler) InitPool(w http.ResponseWriter, r *http.Request) {
	marketID := pathParam(r, "id")
	if marketID == "" {
		writeError(w, http.StatusBadRequest, "missing market id")
		return
	}

	var req initPoolRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Caller == "" {
		writeError(w, http.StatusBadRequest, "missing caller")
		return
	}

	agg, err := h.shielded.InitPool(r.Context(), service.InitPoolParams{
		Market:       marketID,
		Caller:       req.Caller,
		MXEAuthority: req.MXEAuthority,
	})
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, agg)
}

// submitAggregateRequest is the JSON body for an aggregator write-back. The
// encrypted totals travel base64-encoded.
type submitAggregateRequest struct {
	Caller            string `json:"caller"`
	EncryptedYesTotal string `json:"encrypted_yes_total"`
	EncryptedNoTotal  string `json:"encrypted_no_total"`
	TotalShieldedBets uint32 `json:"total_shielded_bets"`
	Finalize          bool   `json:"finalize"`
}

// SubmitAggregate records the aggregator's latest encrypted totals.
// PUT /api/markets/{id}/shielded-pool
func (h *ShieldedHandler) SubmitAggregate(w http.ResponseWriter, r *http.Request) {
	marketID := pathParam(r, "id")
	if marketID == "" {
		writeError(w, http.StatusBadRequest, "missing market id")
		return
	}

	var req submitAggregateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Caller == "" {
		writeError(w, http.StatusBadRequest, "missing caller")
		return
	}

	yesTotal, err := base64.StdEncoding.DecodeString(req.EncryptedYesTotal)
	if err != nil {
		writeError(w, http.StatusBadRequest, "encrypted_yes_total is not valid base64")
		return
	}
	noTotal, err := base64.StdEncoding.DecodeString(req.EncryptedNoTotal)
	if err != nil {
		writeError(w, http.StatusBadRequest, "encrypted_no_total is not valid base64")
		return
	}

	agg, err := h.shielded.SubmitAggregate(r.Context(), service.SubmitAggregateParams{
		Market:            marketID,
		Caller:            req.Caller,
		EncryptedYesTotal: yesTotal,
		EncryptedNoTotal:  noTotal,
		TotalShieldedBets: req.TotalShieldedBets,
		Finalize:          req.Finalize,
	})
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, agg)
}

// GetAggregate returns the market's shielded pool record.
// GET /api/markets/{id}/shielded-pool
func (h *ShieldedHandler) GetAggregate(w http.ResponseWriter, r *http.Request) {
	marketID := pathParam(r, "id")
	if marketID == "" {
		writeError(w, http.StatusBadRequest, "missing market id")
		return
	}

	agg, err := h.shielded.Aggregate(r.Context(), marketID)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, agg)
}

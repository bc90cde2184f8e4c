package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/wagerpool/internal/domain"
	"github.com/alanyoungcy/wagerpool/internal/service"
)

// ResolutionService defines the methods that the resolution handler requires
// from the service layer.
type ResolutionService interface {
	Resolve(ctx context.Context, p service.ResolveParams) (domain.Market, error)
	ResolveOracle(ctx context.Context, p service.ResolveOracleParams) (domain.Market, error)
}

// ResolutionHandler serves the manual and oracle resolution endpoints.
type ResolutionHandler struct {
	resolutions ResolutionService
	logger      *slog.Logger
}

// NewResolutionHandler creates a ResolutionHandler.
func NewResolutionHandler(resolutions ResolutionService, logger *slog.Logger) *ResolutionHandler {
	return &ResolutionHandler{
		resolutions: resolutions,
		logger:      logger,
	}
}

// resolveRequest is the JSON body for a manual resolution.
type resolveRequest struct {
	Resolver string `json:"resolver"`
	Outcome  bool   `json:"outcome"`
}

// Resolve resolves a market manually as its creator.
// POST /api/markets/{id}/resolve
func (h *ResolutionHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	marketID := pathParam(r, "id")
	if marketID == "" {
		writeError(w, http.StatusBadRequest, "missing market id")
		return
	}

	var req resolveRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Resolver == "" {
		writeError(w, http.StatusBadRequest, "missing resolver")
		return
	}

	market, err := h.resolutions.Resolve(r.Context(), service.ResolveParams{
		Market:   marketID,
		Resolver: req.Resolver,
		Outcome:  req.Outcome,
	})
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, market)
}

// resolveOracleRequest is the JSON body for an oracle-verified resolution.
type resolveOracleRequest struct {
	Caller        string `json:"caller"`
	FeedAddress   string `json:"feed_address,omitempty"`
	AttestedPrice int64  `json:"attested_price,omitempty"`
	Outcome       bool   `json:"outcome"`
}

// ResolveOracle resolves a market through its bound oracle authority.
// POST /api/markets/{id}/resolve-oracle
func (h *ResolutionHandler) ResolveOracle(w http.ResponseWriter, r *http.Request) {
	marketID := pathParam(r, "id")
	if marketID == "" {
		writeError(w, http.StatusBadRequest, "missing market id")
		return
	}

	var req resolveOracleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Caller == "" {
		writeError(w, http.StatusBadRequest, "missing caller")
		return
	}

	market, err := h.resolutions.ResolveOracle(r.Context(), service.ResolveOracleParams{
		Market:        marketID,
		Caller:        req.Caller,
		FeedAddress:   req.FeedAddress,
		AttestedPrice: req.AttestedPrice,
		Outcome:       req.Outcome,
	})
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, market)
}

package handler

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/wagerpool/internal/domain"
	"github.com/alanyoungcy/wagerpool/internal/service"
)

// WagerService defines the methods that the wager handler requires from the
// service layer.
type WagerService interface {
	PlaceBet(ctx context.Context, p service.PlaceBetParams) (domain.Bet, error)
	PlaceShieldedBet(ctx context.Context, p service.PlaceShieldedBetParams) (domain.Bet, error)
}

// BetReader reads bet records for the read endpoints.
type BetReader interface {
	GetByBettor(ctx context.Context, marketID, bettor string) (domain.Bet, error)
	ListByMarket(ctx context.Context, marketID string, opts domain.ListOpts) ([]domain.Bet, error)
}

// WagerHandler serves bet placement and listing endpoints.
type WagerHandler struct {
	wagers WagerService
	bets   BetReader
	logger *slog.Logger
}

// NewWagerHandler creates a WagerHandler with the given dependencies.
func NewWagerHandler(wagers WagerService, bets BetReader, logger *slog.Logger) *WagerHandler {
	return &WagerHandler{
		wagers: wagers,
		bets:   bets,
		logger: logger,
	}
}

// placeBetRequest is the JSON body for a plain wager.
type placeBetRequest struct {
	Bettor  string `json:"bettor"`
	Amount  uint64 `json:"amount"`
	Outcome bool   `json:"outcome"`
}

// PlaceBet admits a plain wager on a market.
// POST /api/markets/{id}/bets
func (h *WagerHandler) PlaceBet(w http.ResponseWriter, r *http.Request) {
	marketID := pathParam(r, "id")
	if marketID == "" {
		writeError(w, http.StatusBadRequest, "missing market id")
		return
	}

	var req placeBetRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Bettor == "" {
		writeError(w, http.StatusBadRequest, "missing bettor")
		return
	}

	bet, err := h.wagers.PlaceBet(r.Context(), service.PlaceBetParams{
		Market:  marketID,
		Bettor:  req.Bettor,
		Amount:  req.Amount,
		Outcome: req.Outcome,
	})
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, bet)
}

// placeShieldedBetRequest is the JSON body for a shielded wager. The
// ciphertext and proof travel base64-encoded.
type placeShieldedBetRequest struct {
	Bettor          string `json:"bettor"`
	EncryptedAmount string `json:"encrypted_amount"`
	Proof           string `json:"proof"`
	Outcome         bool   `json:"outcome"`
}

// PlaceShieldedBet admits a shielded wager on a market.
// POST /api/markets/{id}/shielded-bets
func (h *WagerHandler) PlaceShieldedBet(w http.ResponseWriter, r *http.Request) {
	marketID := pathParam(r, "id")
	if marketID == "" {
		writeError(w, http.StatusBadRequest, "missing market id")
		return
	}

	var req placeShieldedBetRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Bettor == "" {
		writeError(w, http.StatusBadRequest, "missing bettor")
		return
	}

	ciphertext, err := base64.StdEncoding.DecodeString(req.EncryptedAmount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "encrypted_amount is not valid base64")
		return
	}
	proof, err := base64.StdEncoding.DecodeString(req.Proof)
	if err != nil {
		writeError(w, http.StatusBadRequest, "proof is not valid base64")
		return
	}

	bet, err := h.wagers.PlaceShieldedBet(r.Context(), service.PlaceShieldedBetParams{
		Market:          marketID,
		Bettor:          req.Bettor,
		EncryptedAmount: ciphertext,
		Proof:           proof,
		Outcome:         req.Outcome,
	})
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, bet)
}

// listBetsResponse wraps the bet list output.
type listBetsResponse struct {
	Bets   []domain.Bet `json:"bets"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}

// ListBets returns a market's bets with pagination.
// GET /api/markets/{id}/bets
func (h *WagerHandler) ListBets(w http.ResponseWriter, r *http.Request) {
	marketID := pathParam(r, "id")
	if marketID == "" {
		writeError(w, http.StatusBadRequest, "missing market id")
		return
	}

	opts := parseListOpts(r)
	bets, err := h.bets.ListByMarket(r.Context(), marketID, opts)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list bets failed",
			slog.String("market_id", marketID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list bets")
		return
	}

	writeJSON(w, http.StatusOK, listBetsResponse{
		Bets:   bets,
		Limit:  opts.Limit,
		Offset: opts.Offset,
	})
}

// GetBet returns a single bettor's bet on a market.
// GET /api/markets/{id}/bets/{bettor}
func (h *WagerHandler) GetBet(w http.ResponseWriter, r *http.Request) {
	marketID := pathParam(r, "id")
	bettor := pathParam(r, "bettor")
	if marketID == "" || bettor == "" {
		writeError(w, http.StatusBadRequest, "missing market id or bettor")
		return
	}

	bet, err := h.bets.GetByBettor(r.Context(), marketID, bettor)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, bet)
}

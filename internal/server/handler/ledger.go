package handler

import (
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/wagerpool/internal/domain"
)

// LedgerHandler serves ledger account endpoints: balance reads and deposits.
type LedgerHandler struct {
	ledger domain.LedgerStore
	logger *slog.Logger
}

// NewLedgerHandler creates a LedgerHandler.
func NewLedgerHandler(ledger domain.LedgerStore, logger *slog.Logger) *LedgerHandler {
	return &LedgerHandler{
		ledger: ledger,
		logger: logger,
	}
}

// balanceResponse carries an account balance.
type balanceResponse struct {
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
}

// GetBalance returns a ledger account's balance. Unknown accounts report zero.
// GET /api/ledger/{address}
func (h *LedgerHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	address := pathParam(r, "address")
	if address == "" {
		writeError(w, http.StatusBadRequest, "missing address")
		return
	}

	balance, err := h.ledger.Balance(r.Context(), address)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: get balance failed",
			slog.String("address", address),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get balance")
		return
	}

	writeJSON(w, http.StatusOK, balanceResponse{
		Address: address,
		Balance: balance,
	})
}

// depositRequest is the JSON body for a deposit.
type depositRequest struct {
	Amount uint64 `json:"amount"`
}

// Deposit credits a ledger account with external value.
// POST /api/ledger/{address}/deposit
func (h *LedgerHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	address := pathParam(r, "address")
	if address == "" {
		writeError(w, http.StatusBadRequest, "missing address")
		return
	}

	var req depositRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Amount == 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	if err := h.ledger.Deposit(r.Context(), address, req.Amount); err != nil {
		h.logger.ErrorContext(r.Context(), "handler: deposit failed",
			slog.String("address", address),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to deposit")
		return
	}

	balance, err := h.ledger.Balance(r.Context(), address)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read balance")
		return
	}

	writeJSON(w, http.StatusOK, balanceResponse{
		Address: address,
		Balance: balance,
	})
}

package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/iho/rentledger/internal/adapter/http/dto"
	"github.com/iho/rentledger/internal/usecase"
)

// ConsistencyChecker defines the behavior needed by LedgerHandler.
type ConsistencyChecker interface {
	CheckConsistency(ctx context.Context) (*usecase.LedgerConsistency, error)
}

// LedgerHandler handles ledger-wide operations.
type LedgerHandler struct {
	ledgerUC ConsistencyChecker
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC ConsistencyChecker) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// CheckConsistency answers 200 when every wallet and transaction satisfies
// the ledger invariants and 409 with the violation counts otherwise.
func (h *LedgerHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	report, err := h.ledgerUC.CheckConsistency(r.Context())
	if err != nil {
		if errors.Is(err, usecase.ErrInconsistentLedger) && report != nil {
			writeJSON(w, http.StatusConflict, dto.ConsistencyFromReport(report, false))
			return
		}
		writeDomainError(w, "failed to check consistency", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ConsistencyFromReport(report, true))
}

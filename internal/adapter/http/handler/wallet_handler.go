package handler

import (
	"context"
	"net/http"

	"github.com/iho/rentledger/internal/adapter/http/dto"
	"github.com/iho/rentledger/internal/domain"
	"github.com/iho/rentledger/internal/usecase"
)

// WalletService defines the behavior needed by WalletHandler.
type WalletService interface {
	GetOrCreateWallet(ctx context.Context, userID string) (*domain.Wallet, error)
	ListTransactions(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.WalletTransaction, error)
}

// WalletHandler serves the caller's own wallet.
type WalletHandler struct {
	walletUC WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletUC WalletService) *WalletHandler {
	return &WalletHandler{walletUC: walletUC}
}

// Get returns the caller's wallet, creating it on first access.
func (h *WalletHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	wallet, err := h.walletUC.GetOrCreateWallet(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, "failed to get wallet", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.WalletFromDomain(wallet))
}

// ListTransactions returns a page of the caller's wallet history.
func (h *WalletHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	limit, err := parseIntQuery(r, "limit", domain.DefaultPageSize)
	if err != nil {
		writeDomainError(w, "invalid limit", err)
		return
	}

	offset, err := parseIntQuery(r, "offset", 0)
	if err != nil {
		writeDomainError(w, "invalid offset", err)
		return
	}

	txns, err := h.walletUC.ListTransactions(r.Context(), usecase.ListTransactionsInput{
		UserID: user.ID,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeDomainError(w, "failed to list transactions", err)
		return
	}

	// Report the page size actually applied.
	limit, offset, _ = domain.ValidatePagination(limit, offset)

	writeJSON(w, http.StatusOK, dto.TransactionListResponse{
		Transactions: dto.TransactionsFromDomain(txns),
		Limit:        limit,
		Offset:       offset,
	})
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/iho/rentledger/internal/adapter/http/dto"
	"github.com/iho/rentledger/internal/domain"
	"github.com/iho/rentledger/internal/usecase"
)

// ReconcileService defines the reconciliation behavior needed by AdminHandler.
type ReconcileService interface {
	ReconcileUncreditedListings(ctx context.Context, actorID string) (*usecase.ReconciliationReport, error)
}

// SettingsService defines the settings behavior needed by AdminHandler.
type SettingsService interface {
	GetSetting(ctx context.Context, key string) (*domain.Setting, error)
	UpdateSetting(ctx context.Context, input usecase.UpdateSettingInput) (*domain.Setting, error)
}

// AdminHandler serves administrator-only operations.
type AdminHandler struct {
	reconcileUC ReconcileService
	settingsUC  SettingsService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(reconcileUC ReconcileService, settingsUC SettingsService) *AdminHandler {
	return &AdminHandler{reconcileUC: reconcileUC, settingsUC: settingsUC}
}

// ReconcileCredits runs the reconciliation batch synchronously.
func (h *AdminHandler) ReconcileCredits(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	report, err := h.reconcileUC.ReconcileUncreditedListings(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, "failed to reconcile credits", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconcileFromReport(report))
}

// GetSetting returns one system setting.
func (h *AdminHandler) GetSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	setting, err := h.settingsUC.GetSetting(r.Context(), key)
	if err != nil {
		writeDomainError(w, "failed to get setting", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SettingFromDomain(setting))
}

// UpdateSetting stores a system setting.
func (h *AdminHandler) UpdateSetting(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.UpdateSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	setting, err := h.settingsUC.UpdateSetting(r.Context(), usecase.UpdateSettingInput{
		ActorID:   user.ID,
		RequestID: chimiddleware.GetReqID(r.Context()),
		Key:       chi.URLParam(r, "key"),
		Value:     req.Value,
	})
	if err != nil {
		writeDomainError(w, "failed to update setting", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SettingFromDomain(setting))
}

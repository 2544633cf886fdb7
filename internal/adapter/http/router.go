package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/rentledger/internal/adapter/http/handler"
	"github.com/iho/rentledger/internal/adapter/http/middleware"
	"github.com/iho/rentledger/internal/domain"
	"github.com/iho/rentledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	WalletHandler     *handler.WalletHandler
	PhotoSlotHandler  *handler.PhotoSlotHandler
	CommissionHandler *handler.CommissionHandler
	AdminHandler      *handler.AdminHandler
	LedgerHandler     *handler.LedgerHandler
	HealthHandler     *handler.HealthHandler

	TokenVerifier    middleware.TokenVerifier
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	HTTPMetrics      *middleware.HTTPMetrics
	MetricsHandler   http.Handler
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	if cfg.HTTPMetrics != nil {
		r.Use(cfg.HTTPMetrics.Wrap)
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg.TokenVerifier))

		// Keys are scoped to the caller, so this runs after authentication.
		if cfg.IdempotencyStore != nil {
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger).Wrap)
		}

		// Caller's wallet
		r.Route("/wallet", func(r chi.Router) {
			r.Get("/", cfg.WalletHandler.Get)
			r.Get("/transactions", cfg.WalletHandler.ListTransactions)
			r.Post("/purchase-photo-slots", cfg.PhotoSlotHandler.Purchase)
		})

		// Payment confirmation trigger
		r.With(middleware.RequireRole(domain.RoleAdmin)).
			Post("/listings/{id}/commission", cfg.CommissionHandler.Credit)

		// Administration
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(domain.RoleAdmin))

			r.Post("/reconcile-credits", cfg.AdminHandler.ReconcileCredits)
			r.Get("/settings/{key}", cfg.AdminHandler.GetSetting)
			r.Put("/settings/{key}", cfg.AdminHandler.UpdateSetting)
			r.Get("/ledger/consistency", cfg.LedgerHandler.CheckConsistency)
		})
	})

	return r
}

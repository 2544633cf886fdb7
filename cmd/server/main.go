package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/rentledger/internal/adapter/http"
	"github.com/iho/rentledger/internal/adapter/http/handler"
	"github.com/iho/rentledger/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/rentledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/rentledger/internal/adapter/repository/redis"
	"github.com/iho/rentledger/internal/domain"
	"github.com/iho/rentledger/internal/infrastructure/auth"
	"github.com/iho/rentledger/internal/infrastructure/config"
	"github.com/iho/rentledger/internal/infrastructure/eventpublisher"
	"github.com/iho/rentledger/internal/infrastructure/logger"
	"github.com/iho/rentledger/internal/infrastructure/metrics"
	"github.com/iho/rentledger/internal/infrastructure/postgres"
	"github.com/iho/rentledger/internal/infrastructure/redis"
	"github.com/iho/rentledger/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	lg := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, lg); err != nil {
		lg.Error().Err(err).Msg("server exited")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, lg zerolog.Logger) error {
	if cfg.AutoMigrate {
		if err := postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, lg).Up(); err != nil {
			return err
		}
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer pool.Close()
	lg.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer redisClient.Close()
	lg.Info().Msg("connected to redis")

	m := metrics.New()

	app, err := newApp(cfg, lg, m, pool, redisClient)
	if err != nil {
		return err
	}

	// Outbox relay
	publisher, closePublisher := newPublisher(cfg, lg)
	defer closePublisher()

	relay := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: postgresRepo.NewOutboxRepository(pool),
		Publisher:  publisher,
		Logger:     lg.With().Str("component", "outbox").Logger(),
		Observer:   outboxObserver{m: m},
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxPollInterval,
		Retention:  cfg.OutboxRetention,
	})
	go func() {
		if err := relay.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			lg.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	go cleanupLimiters(ctx, app.rateLimiter, lg)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      app.router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	lg.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	lg.Info().Msg("server stopped")
	return nil
}

type app struct {
	router      http.Handler
	rateLimiter *middleware.RateLimiter
}

func newApp(cfg *config.Config, lg zerolog.Logger, m *metrics.Metrics, pool *pgxpool.Pool, redisClient goredis.UniversalClient) (*app, error) {
	defaultRate, err := cfg.CommissionRate()
	if err != nil {
		return nil, err
	}

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	retrier := postgresRepo.NewRetrier(lg)
	walletRepo := postgresRepo.NewWalletRepository(pool)
	txnRepo := postgresRepo.NewWalletTransactionRepository(pool)
	listingRepo := postgresRepo.NewListingRepository(pool)
	settingsRepo := postgresRepo.NewSettingsRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()

	walletCache := redisRepo.NewWalletCache(redisClient, cfg.WalletCacheTTL).WithRecorder(m)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	// Initialize use cases
	settingsUC := usecase.NewSettingsUseCase(settingsRepo, auditRepo, defaultRate).WithLogger(lg)
	walletUC := usecase.NewWalletUseCase(walletRepo, txnRepo, idGen).
		WithCache(walletCache).
		WithLogger(lg)
	commissionUC := usecase.NewCommissionUseCase(txManager, retrier, walletRepo, txnRepo, listingRepo, outboxRepo, settingsUC, idGen).
		WithCache(walletCache).
		WithMetrics(m).
		WithLogger(lg)
	photoSlotUC := usecase.NewPhotoSlotUseCase(txManager, retrier, walletRepo, txnRepo, listingRepo, outboxRepo, idGen, domain.Money(cfg.PhotoSlotUnitPrice)).
		WithCache(walletCache).
		WithMetrics(m).
		WithLogger(lg)
	reconcileUC := usecase.NewReconciliationUseCase(listingRepo, commissionUC, settingsUC, auditRepo, cfg.ReconcileBatchLimit).
		WithMetrics(m).
		WithLogger(lg)
	ledgerUC := usecase.NewLedgerUseCase(ledgerRepo)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).
		OnLimit(rateLimitHook(m, lg))

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		WalletHandler:     handler.NewWalletHandler(walletUC),
		PhotoSlotHandler:  handler.NewPhotoSlotHandler(photoSlotUC),
		CommissionHandler: handler.NewCommissionHandler(commissionUC),
		AdminHandler:      handler.NewAdminHandler(reconcileUC, settingsUC),
		LedgerHandler:     handler.NewLedgerHandler(ledgerUC),
		HealthHandler: handler.NewHealthHandler(
			handler.HealthCheck{Name: "postgres", Check: pool.Ping},
			handler.HealthCheck{Name: "redis", Check: func(ctx context.Context) error { return redis.Ping(ctx, redisClient) }},
		),
		TokenVerifier:    auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration),
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      rateLimiter,
		HTTPMetrics:      middleware.NewHTTPMetrics(m.HTTPRequests, m.HTTPDuration),
		MetricsHandler:   promhttp.Handler(),
		Logger:           lg,
	})

	return &app{router: router, rateLimiter: rateLimiter}, nil
}

// newPublisher returns a Kafka publisher when brokers are configured and a
// log publisher otherwise.
func newPublisher(cfg *config.Config, lg zerolog.Logger) (eventpublisher.Publisher, func()) {
	if len(cfg.KafkaBrokers) == 0 {
		lg.Warn().Msg("KAFKA_BROKERS not set, wallet events are logged only")
		return eventpublisher.NewLogPublisher(lg), func() {}
	}

	kp := eventpublisher.NewKafkaPublisher(eventpublisher.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic))
	return kp, func() {
		if err := kp.Close(); err != nil {
			lg.Warn().Err(err).Msg("failed to close kafka writer")
		}
	}
}

// outboxObserver feeds relay outcomes into Prometheus.
type outboxObserver struct {
	m *metrics.Metrics
}

func (o outboxObserver) EventPublished() { o.m.OutboxPublished.Inc() }
func (o outboxObserver) EventFailed()    { o.m.OutboxErrors.Inc() }

// rateLimitHook counts rejections. The client IP only goes to the debug
// log so the counter keeps a single series.
func rateLimitHook(m *metrics.Metrics, lg zerolog.Logger) func(ip string) {
	return func(ip string) {
		m.RateLimitHits.Inc()
		lg.Debug().Str("ip", ip).Msg("request rate limited")
	}
}

const limiterIdle = 10 * time.Minute

func cleanupLimiters(ctx context.Context, rl *middleware.RateLimiter, lg zerolog.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := rl.CleanupLimiters(limiterIdle); n > 0 {
				lg.Debug().Int("removed", n).Msg("rate limiter cleanup")
			}
		}
	}
}

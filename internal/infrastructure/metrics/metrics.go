package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/rentledger/internal/domain"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Commission metrics
	CommissionsCredited prometheus.Counter
	CommissionAmount    prometheus.Histogram

	// Photo slot metrics
	PhotoSlotPurchases prometheus.Counter
	PhotoSlotsSold     prometheus.Counter
	PhotoSlotSpend     prometheus.Histogram
	InsufficientFunds  prometheus.Counter

	// Reconciliation metrics
	ReconcileRuns     prometheus.Counter
	ReconcileItems    *prometheus.CounterVec
	ReconcileDuration prometheus.Histogram

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Cache metrics
	CacheLookups *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits prometheus.Counter

	// Outbox metrics
	OutboxPublished prometheus.Counter
	OutboxErrors    prometheus.Counter
}

// New creates and registers all Prometheus metrics on the default registry
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers all metrics on reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		CommissionsCredited: factory.NewCounter(prometheus.CounterOpts{
			Name: "rentledger_commissions_credited_total",
			Help: "Total number of listing commissions credited to owner wallets",
		}),
		CommissionAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "rentledger_commission_amount",
			Help:    "Credited commission amounts in minor units",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
		}),

		PhotoSlotPurchases: factory.NewCounter(prometheus.CounterOpts{
			Name: "rentledger_photo_slot_purchases_total",
			Help: "Total number of successful photo slot purchases",
		}),
		PhotoSlotsSold: factory.NewCounter(prometheus.CounterOpts{
			Name: "rentledger_photo_slots_sold_total",
			Help: "Total number of photo slots added to listings",
		}),
		PhotoSlotSpend: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "rentledger_photo_slot_spend",
			Help:    "Photo slot purchase costs in minor units",
			Buckets: []float64{500, 1000, 5000, 10000, 50000},
		}),
		InsufficientFunds: factory.NewCounter(prometheus.CounterOpts{
			Name: "rentledger_insufficient_funds_total",
			Help: "Total number of debits rejected for insufficient funds",
		}),

		ReconcileRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "rentledger_reconcile_runs_total",
			Help: "Total number of reconciliation batch runs",
		}),
		ReconcileItems: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rentledger_reconcile_items_total",
				Help: "Listings processed by reconciliation, by outcome",
			},
			[]string{"outcome"},
		),
		ReconcileDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "rentledger_reconcile_duration_seconds",
			Help:    "Duration of reconciliation batch runs",
			Buckets: prometheus.DefBuckets,
		}),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rentledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rentledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rentledger_wallet_cache_lookups_total",
				Help: "Wallet cache lookups by result",
			},
			[]string{"result"},
		),

		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "rentledger_rate_limit_hits_total",
			Help: "Total requests rejected by the rate limiter",
		}),

		OutboxPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "rentledger_outbox_published_total",
			Help: "Total outbox events published",
		}),
		OutboxErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "rentledger_outbox_errors_total",
			Help: "Total outbox publish failures",
		}),
	}
}

// RecordCredit counts a commission credit.
func (m *Metrics) RecordCredit(amount domain.Money) {
	m.CommissionsCredited.Inc()
	m.CommissionAmount.Observe(float64(amount))
}

// RecordDebit counts a photo slot purchase.
func (m *Metrics) RecordDebit(amount domain.Money, slots int) {
	m.PhotoSlotPurchases.Inc()
	m.PhotoSlotsSold.Add(float64(slots))
	m.PhotoSlotSpend.Observe(float64(amount))
}

func (m *Metrics) RecordInsufficientFunds() {
	m.InsufficientFunds.Inc()
}

// RecordReconciliation counts one batch run and its per-item outcomes.
func (m *Metrics) RecordReconciliation(credited, skipped, errors int, duration time.Duration) {
	m.ReconcileRuns.Inc()
	m.ReconcileItems.WithLabelValues("credited").Add(float64(credited))
	m.ReconcileItems.WithLabelValues("skipped").Add(float64(skipped))
	m.ReconcileItems.WithLabelValues("failed").Add(float64(errors))
	m.ReconcileDuration.Observe(duration.Seconds())
}

// RecordCacheLookup counts a wallet cache hit or miss.
func (m *Metrics) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

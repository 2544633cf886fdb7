package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/rentledger/internal/domain"
)

// Crediter credits one listing at an already-resolved rate.
type Crediter interface {
	CreditCommissionAtRate(ctx context.Context, listingID string, rate decimal.Decimal) (*CreditResult, error)
}

// ItemOutcome is the result of reconciling one listing.
type ItemOutcome string

const (
	ItemOutcomeCredited ItemOutcome = "credited"
	ItemOutcomeSkipped  ItemOutcome = "skipped"
	ItemOutcomeFailed   ItemOutcome = "failed"
)

// ItemResult records what happened to one candidate listing.
type ItemResult struct {
	ListingID string
	Outcome   ItemOutcome
	Amount    domain.Money
	Err       error
}

// ReconciliationReport aggregates one reconciliation run.
type ReconciliationReport struct {
	Processed  int
	Credited   int
	Skipped    int
	Errors     int
	Rate       decimal.Decimal
	Results    []ItemResult
	StartedAt  time.Time
	FinishedAt time.Time
}

func (r *ReconciliationReport) add(item ItemResult) {
	switch item.Outcome {
	case ItemOutcomeCredited:
		r.Credited++
	case ItemOutcomeSkipped:
		r.Skipped++
	case ItemOutcomeFailed:
		r.Errors++
	}

	r.Results = append(r.Results, item)
}

// ReconciliationUseCase credits paid listings that were never credited.
type ReconciliationUseCase struct {
	listingRepo ListingRepository
	crediter    Crediter
	rates       RateResolver
	auditRepo   AuditRepository
	limit       int
	metrics     LedgerMetrics
	logger      zerolog.Logger
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(
	listingRepo ListingRepository,
	crediter Crediter,
	rates RateResolver,
	auditRepo AuditRepository,
	limit int,
) *ReconciliationUseCase {
	if limit <= 0 {
		limit = DefaultReconcileLimit
	}

	return &ReconciliationUseCase{
		listingRepo: listingRepo,
		crediter:    crediter,
		rates:       rates,
		auditRepo:   auditRepo,
		limit:       limit,
		metrics:     nopMetrics{},
		logger:      zerolog.Nop(),
	}
}

// WithMetrics sets the metrics recorder.
func (uc *ReconciliationUseCase) WithMetrics(metrics LedgerMetrics) *ReconciliationUseCase {
	if metrics != nil {
		uc.metrics = metrics
	}
	return uc
}

// WithLogger sets the logger.
func (uc *ReconciliationUseCase) WithLogger(logger zerolog.Logger) *ReconciliationUseCase {
	uc.logger = logger
	return uc
}

// ReconcileUncreditedListings runs the credit engine over every paid,
// priced, uncredited listing, one at a time. A failing listing is counted
// and logged; it never stops the run or undoes earlier credits.
func (uc *ReconciliationUseCase) ReconcileUncreditedListings(ctx context.Context, actorID string) (*ReconciliationReport, error) {
	report := &ReconciliationReport{StartedAt: time.Now().UTC()}

	rate, err := uc.rates.GetCommissionRate(ctx)
	if err != nil {
		uc.audit(ctx, actorID, report, err)
		return nil, err
	}
	report.Rate = rate

	candidates, err := uc.listingRepo.ListUncredited(ctx, uc.limit)
	if err != nil {
		err = storageErr("listing.list_uncredited", err)
		uc.audit(ctx, actorID, report, err)
		return nil, err
	}

	report.Processed = len(candidates)
	report.Results = make([]ItemResult, 0, len(candidates))

	for _, listing := range candidates {
		report.add(uc.reconcileOne(ctx, listing.ID, rate))
	}

	report.FinishedAt = time.Now().UTC()

	uc.metrics.RecordReconciliation(report.Credited, report.Skipped, report.Errors, report.FinishedAt.Sub(report.StartedAt))
	uc.audit(ctx, actorID, report, nil)

	uc.logger.Info().
		Int("processed", report.Processed).
		Int("credited", report.Credited).
		Int("skipped", report.Skipped).
		Int("errors", report.Errors).
		Str("rate", rate.String()).
		Msg("reconciliation finished")

	return report, nil
}

func (uc *ReconciliationUseCase) reconcileOne(ctx context.Context, listingID string, rate decimal.Decimal) ItemResult {
	result, err := uc.crediter.CreditCommissionAtRate(ctx, listingID, rate)
	if err != nil {
		uc.logger.Error().Err(err).Str("listing_id", listingID).Msg("reconciliation credit failed")
		return ItemResult{ListingID: listingID, Outcome: ItemOutcomeFailed, Err: err}
	}

	if result.Status == CreditStatusAlreadyCredited {
		return ItemResult{ListingID: listingID, Outcome: ItemOutcomeSkipped}
	}

	return ItemResult{ListingID: listingID, Outcome: ItemOutcomeCredited, Amount: result.Amount}
}

func (uc *ReconciliationUseCase) audit(ctx context.Context, actorID string, report *ReconciliationReport, runErr error) {
	if uc.auditRepo == nil {
		return
	}

	entry := &domain.AuditLog{
		UserID:       actorID,
		Action:       string(domain.AuditActionCommissionReconcile),
		ResourceType: domain.AuditResourceListings,
		Status:       string(domain.AuditStatusSuccess),
		AfterState: domain.JSON{
			"processed": report.Processed,
			"credited":  report.Credited,
			"skipped":   report.Skipped,
			"errors":    report.Errors,
			"rate":      report.Rate.String(),
		},
		CreatedAt: time.Now().UTC(),
	}

	if runErr != nil {
		entry.Status = string(domain.AuditStatusError)
		entry.ErrorMessage = runErr.Error()
	} else if report.Errors > 0 {
		entry.Status = string(domain.AuditStatusFailure)
	}

	if err := uc.auditRepo.Create(ctx, entry); err != nil {
		uc.logger.Error().Err(err).Msg("failed to write audit log")
	}
}

package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"

	"github.com/iho/rentledger/internal/domain"
)

func TestLedgerRepositoryCheckConsistency(t *testing.T) {
	mock := newMockPool(t)
	repo := NewLedgerRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM wallets")).
		WillReturnRows(mock.NewRows([]string{"wallets", "txns", "drifted", "negative", "snapshots", "balance", "diff"}).
			AddRow(int64(3), int64(7), int64(0), int64(0), int64(1), int64(500), int64(500)))

	report, err := repo.CheckConsistency(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.WalletCount != 3 || report.TransactionCount != 7 || report.InvalidSnapshots != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.TotalBalance != domain.Money(500) {
		t.Fatalf("unexpected total balance: %d", report.TotalBalance)
	}

	assertExpectations(t, mock)
}

func TestSettingsRepositoryUpsert(t *testing.T) {
	mock := newMockPool(t)
	repo := NewSettingsRepository(mock)
	now := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (key) DO UPDATE")).
		WithArgs(domain.CommissionRateKey, "12", "admin-1", now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Upsert(context.Background(), &domain.Setting{
		Key: domain.CommissionRateKey, Value: "12", UpdatedBy: "admin-1", UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertExpectations(t, mock)
}

func TestOutboxRepositoryCreateInTransaction(t *testing.T) {
	mock := newMockPool(t)
	repo := NewOutboxRepository(mock)
	now := time.Now().UTC()
	tx := beginMockTx(t, mock)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox_events")).
		WithArgs("e1", "w1", domain.AggregateTypeWallet, domain.EventTypeWalletCredited, pgxmock.AnyArg(), now, false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), tx, &domain.OutboxEvent{
		ID:            "e1",
		AggregateID:   "w1",
		AggregateType: domain.AggregateTypeWallet,
		EventType:     domain.EventTypeWalletCredited,
		Payload:       map[string]any{"amount": 100},
		CreatedAt:     now,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertExpectations(t, mock)
}

func TestAuditRepositoryAssignsID(t *testing.T) {
	mock := newMockPool(t)
	repo := NewAuditRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_logs")).
		WithArgs(pgxmock.AnyArg(), "admin-1", "settings.update", "setting", "commission_rate", "",
			pgxmock.AnyArg(), pgxmock.AnyArg(), "success", "", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	log := &domain.AuditLog{
		UserID:       "admin-1",
		Action:       "settings.update",
		ResourceType: "setting",
		ResourceID:   "commission_rate",
		AfterState:   domain.JSON{"value": "12"},
		Status:       "success",
	}
	if err := repo.Create(context.Background(), log); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if log.ID == "" {
		t.Fatalf("expected generated id")
	}

	assertExpectations(t, mock)
}

package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
)

func TestTxManagerBeginError(t *testing.T) {
	mockPool := newMockPool(t)
	mockErr := errors.New("too many connections")
	mockPool.ExpectBegin().WillReturnError(mockErr)

	tx, err := newTxManagerWithPool(mockPool).Begin(context.Background())
	if !errors.Is(err, mockErr) {
		t.Fatalf("expected begin error, got err=%v tx=%v", err, tx)
	}
}

// Engines always defer Rollback and then Commit on success, so the
// deferred call runs against an already closed transaction.
func TestTxLifecycle(t *testing.T) {
	rollbackErr := errors.New("connection reset")

	tests := []struct {
		name        string
		commit      bool
		rollbackErr error
		wantErr     error
	}{
		{name: "rollback open transaction"},
		{name: "rollback after commit is a no-op", commit: true, rollbackErr: pgx.ErrTxClosed},
		{name: "rollback failure is reported", rollbackErr: rollbackErr, wantErr: rollbackErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPool := newMockPool(t)
			mockPool.ExpectBegin()
			if tt.commit {
				mockPool.ExpectCommit()
			}
			rollback := mockPool.ExpectRollback()
			if tt.rollbackErr != nil {
				rollback.WillReturnError(tt.rollbackErr)
			}

			ctx := context.Background()
			tx, err := newTxManagerWithPool(mockPool).Begin(ctx)
			if err != nil {
				t.Fatalf("unexpected begin error: %v", err)
			}

			if tt.commit {
				if err := tx.Commit(ctx); err != nil {
					t.Fatalf("commit failed: %v", err)
				}
			}

			err = tx.Rollback(ctx)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("expected nil rollback error, got %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected rollback error %v, got %v", tt.wantErr, err)
			}

			assertExpectations(t, mockPool)
		})
	}
}

func TestTxExposesPgxTx(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectBegin()

	tx, err := newTxManagerWithPool(mockPool).Begin(context.Background())
	if err != nil {
		t.Fatalf("unexpected begin error: %v", err)
	}

	pgTx, ok := tx.(*Tx)
	if !ok || pgTx.PgxTx() == nil {
		t.Fatalf("expected *Tx wrapping a pgx transaction, got %T", tx)
	}
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	pool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgxmock pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func assertExpectations(t *testing.T, pool pgxmock.PgxPoolIface) {
	t.Helper()
	if err := pool.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations were not met: %v", err)
	}
}

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/rentledger/internal/domain"
)

// SettingsRepository implements usecase.SettingsRepository.
type SettingsRepository struct {
	db DB
}

// NewSettingsRepository creates a new SettingsRepository.
func NewSettingsRepository(db DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get retrieves a setting by key.
func (r *SettingsRepository) Get(ctx context.Context, key string) (*domain.Setting, error) {
	var s domain.Setting

	err := r.db.QueryRow(ctx, `
		SELECT key, value, updated_by, updated_at
		FROM system_settings
		WHERE key = $1
	`, key).Scan(&s.Key, &s.Value, &s.UpdatedBy, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSettingNotFound
		}

		return nil, err
	}

	return &s, nil
}

// Upsert inserts or replaces a setting.
func (r *SettingsRepository) Upsert(ctx context.Context, setting *domain.Setting) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO system_settings (key, value, updated_by, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at
	`, setting.Key, setting.Value, setting.UpdatedBy, setting.UpdatedAt)

	return err
}

package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/rentledger/internal/domain"
)

// SettingsUseCase reads and updates system settings.
type SettingsUseCase struct {
	settingsRepo SettingsRepository
	auditRepo    AuditRepository
	defaultRate  decimal.Decimal
	logger       zerolog.Logger
}

// NewSettingsUseCase creates a new SettingsUseCase. defaultRate is used when
// no commission_rate row exists.
func NewSettingsUseCase(settingsRepo SettingsRepository, auditRepo AuditRepository, defaultRate decimal.Decimal) *SettingsUseCase {
	return &SettingsUseCase{
		settingsRepo: settingsRepo,
		auditRepo:    auditRepo,
		defaultRate:  defaultRate,
		logger:       zerolog.Nop(),
	}
}

// WithLogger sets the logger.
func (uc *SettingsUseCase) WithLogger(logger zerolog.Logger) *SettingsUseCase {
	uc.logger = logger
	return uc
}

// GetCommissionRate resolves the commission percentage once. An absent row
// yields the default; a malformed row is an error.
func (uc *SettingsUseCase) GetCommissionRate(ctx context.Context) (decimal.Decimal, error) {
	setting, err := uc.settingsRepo.Get(ctx, domain.CommissionRateKey)
	if errors.Is(err, domain.ErrSettingNotFound) {
		return uc.defaultRate, nil
	}
	if err != nil {
		return decimal.Zero, storageErr("settings.get", err)
	}

	return domain.ParseCommissionRate(setting.Value)
}

// GetSetting returns a stored setting. The commission rate reports the
// default when unset.
func (uc *SettingsUseCase) GetSetting(ctx context.Context, key string) (*domain.Setting, error) {
	setting, err := uc.settingsRepo.Get(ctx, key)
	if errors.Is(err, domain.ErrSettingNotFound) && key == domain.CommissionRateKey {
		return &domain.Setting{Key: key, Value: uc.defaultRate.String()}, nil
	}
	if err != nil {
		return nil, storageErr("settings.get", err)
	}

	return setting, nil
}

// UpdateSettingInput represents input for updating a setting.
type UpdateSettingInput struct {
	ActorID   string
	RequestID string
	Key       string
	Value     string
}

// UpdateSetting validates and stores a setting, recording an audit entry.
func (uc *SettingsUseCase) UpdateSetting(ctx context.Context, input UpdateSettingInput) (*domain.Setting, error) {
	if err := domain.ValidateSetting(input.Key, input.Value); err != nil {
		return nil, err
	}

	before, err := uc.settingsRepo.Get(ctx, input.Key)
	if err != nil && !errors.Is(err, domain.ErrSettingNotFound) {
		return nil, storageErr("settings.get", err)
	}

	setting := &domain.Setting{
		Key:       input.Key,
		Value:     input.Value,
		UpdatedBy: input.ActorID,
		UpdatedAt: time.Now().UTC(),
	}

	if err := uc.settingsRepo.Upsert(ctx, setting); err != nil {
		uc.audit(ctx, input, before, nil, err)
		return nil, storageErr("settings.upsert", err)
	}

	uc.audit(ctx, input, before, setting, nil)

	uc.logger.Info().
		Str("key", input.Key).
		Str("value", input.Value).
		Str("actor_id", input.ActorID).
		Msg("setting updated")

	return setting, nil
}

func (uc *SettingsUseCase) audit(ctx context.Context, input UpdateSettingInput, before, after *domain.Setting, opErr error) {
	if uc.auditRepo == nil {
		return
	}

	entry := &domain.AuditLog{
		UserID:       input.ActorID,
		Action:       string(domain.AuditActionSettingsUpdate),
		ResourceType: domain.AuditResourceSetting,
		ResourceID:   input.Key,
		RequestID:    input.RequestID,
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	}

	if before != nil {
		entry.BeforeState = domain.JSON{"value": before.Value}
	}
	if after != nil {
		entry.AfterState = domain.JSON{"value": after.Value}
	}
	if opErr != nil {
		entry.Status = string(domain.AuditStatusError)
		entry.ErrorMessage = opErr.Error()
	}

	if err := uc.auditRepo.Create(ctx, entry); err != nil {
		uc.logger.Error().Err(err).Str("key", input.Key).Msg("failed to write audit log")
	}
}

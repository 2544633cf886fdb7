package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/rentledger/internal/domain"
	"github.com/iho/rentledger/internal/usecase"
	"github.com/iho/rentledger/internal/usecase/mocks"
)

func TestSettingsUseCase_GetCommissionRate(t *testing.T) {
	tests := []struct {
		name    string
		stored  *domain.Setting
		want    decimal.Decimal
		wantErr error
	}{
		{name: "absent falls back to default", want: decimal.NewFromInt(10)},
		{name: "stored value", stored: &domain.Setting{Key: domain.CommissionRateKey, Value: "12.5"}, want: decimal.RequireFromString("12.5")},
		{name: "malformed value", stored: &domain.Setting{Key: domain.CommissionRateKey, Value: "abc"}, wantErr: domain.ErrInvalidCommissionRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := mocks.NewSettingsRepo()
			if tt.stored != nil {
				require.NoError(t, repo.Upsert(context.Background(), tt.stored))
			}

			uc := usecase.NewSettingsUseCase(repo, nil, domain.DefaultCommissionRate)

			rate, err := uc.GetCommissionRate(context.Background())
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(rate), "want %s, got %s", tt.want, rate)
		})
	}
}

func TestSettingsUseCase_GetSettingReportsDefault(t *testing.T) {
	uc := usecase.NewSettingsUseCase(mocks.NewSettingsRepo(), nil, domain.DefaultCommissionRate)

	setting, err := uc.GetSetting(context.Background(), domain.CommissionRateKey)
	require.NoError(t, err)
	assert.Equal(t, "10", setting.Value)

	_, err = uc.GetSetting(context.Background(), "unknown")
	require.ErrorIs(t, err, domain.ErrSettingNotFound)
}

func TestSettingsUseCase_UpdateSettingAudits(t *testing.T) {
	ctrl := gomock.NewController(t)
	audit := mocks.NewMockAuditRepository(ctrl)

	repo := mocks.NewSettingsRepo()
	require.NoError(t, repo.Upsert(context.Background(), &domain.Setting{Key: domain.CommissionRateKey, Value: "10"}))

	audit.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, log *domain.AuditLog) error {
			assert.Equal(t, string(domain.AuditActionSettingsUpdate), log.Action)
			assert.Equal(t, domain.CommissionRateKey, log.ResourceID)
			assert.Equal(t, "10", log.BeforeState["value"])
			assert.Equal(t, "15", log.AfterState["value"])
			assert.Equal(t, "admin-1", log.UserID)
			return nil
		},
	)

	uc := usecase.NewSettingsUseCase(repo, audit, domain.DefaultCommissionRate)

	setting, err := uc.UpdateSetting(context.Background(), usecase.UpdateSettingInput{
		ActorID: "admin-1",
		Key:     domain.CommissionRateKey,
		Value:   "15",
	})
	require.NoError(t, err)
	assert.Equal(t, "admin-1", setting.UpdatedBy)

	rate, err := uc.GetCommissionRate(context.Background())
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(15).Equal(rate))
}

func TestSettingsUseCase_UpdateSettingValidates(t *testing.T) {
	uc := usecase.NewSettingsUseCase(mocks.NewSettingsRepo(), nil, domain.DefaultCommissionRate)

	_, err := uc.UpdateSetting(context.Background(), usecase.UpdateSettingInput{Key: domain.CommissionRateKey, Value: "150"})
	require.ErrorIs(t, err, domain.ErrInvalidCommissionRate)

	_, err = uc.UpdateSetting(context.Background(), usecase.UpdateSettingInput{Key: "", Value: "x"})
	require.ErrorIs(t, err, domain.ErrInvalidSetting)
}

func TestSettingsUseCase_UpsertFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockSettingsRepository(ctrl)
	audit := mocks.NewMockAuditRepository(ctrl)

	repo.EXPECT().Get(gomock.Any(), "banner").Return(nil, domain.ErrSettingNotFound)
	repo.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(errors.New("read-only transaction"))
	audit.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, log *domain.AuditLog) error {
			assert.Equal(t, string(domain.AuditStatusError), log.Status)
			assert.NotEmpty(t, log.ErrorMessage)
			return nil
		},
	)

	uc := usecase.NewSettingsUseCase(repo, audit, domain.DefaultCommissionRate)

	_, err := uc.UpdateSetting(context.Background(), usecase.UpdateSettingInput{Key: "banner", Value: "hi"})
	require.ErrorIs(t, err, domain.ErrStorage)
}

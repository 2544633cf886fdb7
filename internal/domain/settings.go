package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CommissionRateKey is the system setting holding the commission percentage.
const CommissionRateKey = "commission_rate"

// DefaultCommissionRate is used when the setting row is absent.
var DefaultCommissionRate = decimal.NewFromInt(10)

// DefaultPhotoSlotUnitPrice is the price of one extra image slot in minor units.
const DefaultPhotoSlotUnitPrice Money = 500

// Setting is a key/value row of the system settings store.
type Setting struct {
	Key       string
	Value     string
	UpdatedBy string
	UpdatedAt time.Time
}

// ParseCommissionRate parses a percentage in [0, 100].
func ParseCommissionRate(value string) (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", ErrInvalidCommissionRate, value)
	}

	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Zero, fmt.Errorf("%w: %s is outside [0, 100]", ErrInvalidCommissionRate, rate)
	}

	return rate, nil
}

// ValidateSetting checks a value before it is stored under key.
func ValidateSetting(key, value string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: key is required", ErrInvalidSetting)
	}

	if len(value) > MaxSettingValueLength {
		return fmt.Errorf("%w: value exceeds %d characters", ErrInvalidSetting, MaxSettingValueLength)
	}

	if key == CommissionRateKey {
		_, err := ParseCommissionRate(value)
		return err
	}

	return nil
}

package domain

import (
	"github.com/shopspring/decimal"
)

// MinorUnitExponent is the number of decimal places in one currency unit.
const MinorUnitExponent = 2

// Money is an amount in minor currency units (cents).
type Money int64

// MoneyFromDecimal converts a major-unit decimal into Money, rounding half-up.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money(d.Shift(MinorUnitExponent).Round(0).IntPart())
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -MinorUnitExponent)
}

// String formats the amount in major units with two decimals.
func (m Money) String() string {
	return m.Decimal().StringFixed(MinorUnitExponent)
}

// IsPositive reports whether m > 0.
func (m Money) IsPositive() bool {
	return m > 0
}

// ComputeCommission returns price * rate / 100, rounded half-up to the minor unit.
// rate is a percentage, e.g. 10 for 10%.
func ComputeCommission(price Money, rate decimal.Decimal) Money {
	amount := decimal.NewFromInt(int64(price)).
		Mul(rate).
		Div(decimal.NewFromInt(100))

	return Money(roundHalfUp(amount).IntPart())
}

// roundHalfUp rounds to an integer with ties going towards +inf.
func roundHalfUp(d decimal.Decimal) decimal.Decimal {
	return d.Add(decimal.New(5, -1)).Floor()
}

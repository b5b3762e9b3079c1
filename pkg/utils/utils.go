package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

// AverageMonth is a 30.44 day month, used for tenure maths.
const AverageMonth = 30*24*time.Hour + 10*time.Hour + 33*time.Minute + 36*time.Second

// RoundCurrency rounds an amount to 2 decimal places
func RoundCurrency(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// RoundWhole rounds an amount to the nearest whole currency unit, halves away from zero
func RoundWhole(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(0)
}

// SimpleInterest returns principal * rate% * months/12 in a single division
// so that terms which are not a multiple of 12 lose no precision early.
func SimpleInterest(principal, annualRatePercent decimal.Decimal, termMonths int) decimal.Decimal {
	return principal.
		Mul(annualRatePercent).
		Mul(decimal.NewFromInt(int64(termMonths))).
		Div(decimal.NewFromInt(1200))
}

// MonthsBetween returns the elapsed months from start to end using AverageMonth.
// It is negative when end is before start.
func MonthsBetween(start, end time.Time) float64 {
	return float64(end.Sub(start)) / float64(AverageMonth)
}

// ClampInt bounds v to [lo, hi]
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// DecimalFromString converts string to decimal.Decimal
func DecimalFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

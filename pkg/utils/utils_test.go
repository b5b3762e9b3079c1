package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSimpleInterest(t *testing.T) {
	tests := []struct {
		name      string
		principal decimal.Decimal
		rate      decimal.Decimal
		months    int
		expected  decimal.Decimal
	}{
		{
			name:      "one year at 12 percent",
			principal: decimal.NewFromInt(10000),
			rate:      decimal.NewFromInt(12),
			months:    12,
			expected:  decimal.NewFromInt(1200),
		},
		{
			name:      "six months at 12 percent",
			principal: decimal.NewFromInt(12000),
			rate:      decimal.NewFromInt(12),
			months:    6,
			expected:  decimal.NewFromInt(720),
		},
		{
			name:      "zero interest rate",
			principal: decimal.NewFromInt(5000),
			rate:      decimal.Zero,
			months:    24,
			expected:  decimal.Zero,
		},
		{
			name:      "fractional rate",
			principal: decimal.NewFromInt(1000),
			rate:      decimal.NewFromFloat(7.5),
			months:    8,
			expected:  decimal.NewFromInt(50), // 1000 * 7.5 * 8 / 1200
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SimpleInterest(tt.principal, tt.rate, tt.months)
			assert.True(t, result.Equal(tt.expected),
				"Expected %v, but got %v", tt.expected, result)
		})
	}
}

func TestRounding(t *testing.T) {
	assert.Equal(t, "2120.33", RoundCurrency(decimal.RequireFromString("2120.3333")).String())
	assert.Equal(t, "2121", RoundWhole(decimal.RequireFromString("2120.5")).String())
	assert.Equal(t, "2120", RoundWhole(decimal.RequireFromString("2120.49")).String())
}

func TestMonthsBetween(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		end      time.Time
		expected float64
	}{
		{name: "same instant", end: start, expected: 0},
		{name: "one average month", end: start.Add(AverageMonth), expected: 1},
		{name: "sixty average months", end: start.Add(60 * AverageMonth), expected: 60},
		{name: "end before start", end: start.Add(-AverageMonth), expected: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, MonthsBetween(start, tt.end), 1e-9)
		})
	}
}

func TestClampInt(t *testing.T) {
	assert.Equal(t, 300, ClampInt(120, 300, 850))
	assert.Equal(t, 850, ClampInt(900, 300, 850))
	assert.Equal(t, 640, ClampInt(640, 300, 850))
}

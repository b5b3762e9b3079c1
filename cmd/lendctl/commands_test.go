package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/lending-engine/internal/domain"
	"github.com/segyhp/lending-engine/internal/scoring"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("BASE_INTEREST_RATE", "12")
	t.Setenv("SCHEDULER_TIMEZONE", "UTC")
	t.Setenv("LOG_LEVEL", "error")

	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func TestScoreCommand(t *testing.T) {
	out, err := run(t, "score",
		"--income", "60000",
		"--employment", "Employed",
		"--employment-years", "6",
		"--years-at-address", "5",
		"--as-of", "2024-03-15",
	)
	require.NoError(t, err)

	var got scoring.Assessment
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	employmentYears, yearsAtAddress := 6.0, 5.0
	want := scoring.Evaluate(domain.BorrowerProfile{
		MonthlyIncome:    decimal.NewNullDecimal(decimal.NewFromInt(60000)),
		EmploymentStatus: domain.EmploymentEmployed,
		EmploymentYears:  &employmentYears,
		YearsAtAddress:   &yearsAtAddress,
	}, nil, nil, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), decimal.NewFromInt(12))

	assert.Equal(t, want.Score, got.Score)
	assert.Equal(t, want.Info, got.Info)
	assert.Equal(t, want.RiskRating, got.RiskRating)
	assert.True(t, want.SuggestedRate.Equal(got.SuggestedRate))
}

func TestScoreCommand_InvalidInput(t *testing.T) {
	_, err := run(t, "score", "--employment", "astronaut")
	assert.ErrorContains(t, err, "unknown employment status")

	_, err = run(t, "score", "--income", "lots")
	assert.ErrorContains(t, err, "invalid income")

	_, err = run(t, "score", "--as-of", "15/03/2024")
	assert.ErrorContains(t, err, "YYYY-MM-DD")
}

func TestScheduleCommand(t *testing.T) {
	out, err := run(t, "schedule", "--principal", "10000", "--rate", "12", "--term", "6", "--start", "2024-01-01")
	require.NoError(t, err)

	var got scheduleOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	assert.True(t, decimal.NewFromInt(10600).Equal(got.Loan.TotalDue))
	assert.True(t, decimal.NewFromInt(10600).Equal(got.Loan.RemainingAmount))
	assert.Equal(t, domain.FrequencyMonthly, got.Loan.RepaymentSchedule)
	assert.True(t, got.Loan.EndDate.Equal(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)))

	require.Len(t, got.Schedule, 6)
	assert.True(t, decimal.RequireFromString("1766.67").Equal(got.Schedule[0].Amount))
	assert.True(t, got.Schedule[0].DueDate.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
	for _, r := range got.Schedule {
		assert.Equal(t, got.Loan.ID, r.LoanID)
		assert.Equal(t, domain.RepaymentStatusPending, r.Status)
	}
}

func TestScheduleCommand_DefaultRate(t *testing.T) {
	out, err := run(t, "schedule", "--principal", "1000", "--term", "12", "--start", "2024-01-01")
	require.NoError(t, err)

	var got scheduleOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.True(t, decimal.NewFromInt(12).Equal(got.Loan.InterestRate))
	assert.Len(t, got.Schedule, 12)
}

func TestScheduleCommand_InvalidTerms(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing principal", []string{"schedule"}, "principal"},
		{"zero principal", []string{"schedule", "--principal", "0"}, "greater than zero"},
		{"negative rate", []string{"schedule", "--principal", "100", "--rate", "-1"}, "must not be negative"},
		{"zero term", []string{"schedule", "--principal", "100", "--term", "0"}, "at least one month"},
		{"bad frequency", []string{"schedule", "--principal", "100", "--frequency", "yearly"}, "unknown frequency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestDueTodayCommand(t *testing.T) {
	out, err := run(t, "due-today",
		"--principal", "10000", "--rate", "12", "--term", "6",
		"--frequency", "monthly", "--start", "2024-01-01", "--on", "2024-03-15",
	)
	require.NoError(t, err)

	var got domain.Repayment
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.True(t, decimal.NewFromInt(1767).Equal(got.Amount))
	assert.True(t, got.DueDate.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1, got.InstallmentNumber)
	assert.Equal(t, 6, got.TotalInstallments)
}

package scoring

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/segyhp/lending-engine/internal/domain"
)

func TestSuggestInterestRate(t *testing.T) {
	base := decimal.NewFromInt(12)

	tests := []struct {
		score    int
		expected int64
	}{
		{score: 800, expected: 9},
		{score: 750, expected: 9},
		{score: 700, expected: 11},
		{score: 650, expected: 11},
		{score: 600, expected: 14},
		{score: 550, expected: 14},
		{score: 400, expected: 17},
	}

	for _, tt := range tests {
		result := SuggestInterestRate(tt.score, base)
		assert.True(t, result.Equal(decimal.NewFromInt(tt.expected)), "score %d: expected %d, got %v", tt.score, tt.expected, result)
	}
}

func TestClassifyScore(t *testing.T) {
	assert.Equal(t, ScoreInfo{Category: CategoryExcellent, Description: "Very low risk borrower"}, ClassifyScore(750))
	assert.Equal(t, ScoreInfo{Category: CategoryGood, Description: "Low risk borrower"}, ClassifyScore(749))
	assert.Equal(t, ScoreInfo{Category: CategoryGood, Description: "Low risk borrower"}, ClassifyScore(650))
	assert.Equal(t, ScoreInfo{Category: CategoryFair, Description: "Medium risk borrower"}, ClassifyScore(550))
	assert.Equal(t, ScoreInfo{Category: CategoryPoor, Description: "High risk borrower"}, ClassifyScore(549))
}

func TestEvaluate_NewBorrowerScenario(t *testing.T) {
	profile := domain.BorrowerProfile{
		MonthlyIncome:    income(60000),
		EmploymentStatus: domain.EmploymentEmployed,
		EmploymentYears:  years(6),
		YearsAtAddress:   years(5),
	}

	result := Evaluate(profile, nil, nil, asOf, DefaultBaseRate)

	assert.Equal(t, 750, result.Score)
	assert.Equal(t, CategoryExcellent, result.Info.Category)
	assert.Equal(t, domain.RiskLow, result.RiskRating)
	assert.True(t, result.SuggestedRate.Equal(decimal.NewFromInt(9)))
	assert.Equal(t, asOf, result.AsOf)
}

func TestRescoreBorrower(t *testing.T) {
	borrower := &domain.Borrower{
		ID: uuid.New(),
		BorrowerProfile: domain.BorrowerProfile{
			EmploymentStatus: domain.EmploymentEmployed,
			MonthlyIncome:    income(10000),
		},
	}
	other := &domain.Borrower{ID: uuid.New()}

	own := activeLoan(borrower.ID, asOf.AddDate(0, -1, 0), 1000)
	foreign := activeLoan(other.ID, asOf.AddDate(-6, 0, 0), 900000)

	due := asOf.AddDate(0, 0, -5)
	repayments := []*domain.Repayment{
		withStatus(foreign.ID, due, domain.RepaymentStatusOverdue),
		withStatus(foreign.ID, due, domain.RepaymentStatusOverdue),
	}

	t.Run("unknown borrower", func(t *testing.T) {
		score := RescoreBorrower(uuid.New(), []*domain.Borrower{borrower, other}, nil, nil, asOf)
		assert.Equal(t, 650, score)
	})

	t.Run("only the borrower's own records count", func(t *testing.T) {
		loans := []*domain.Loan{own, foreign}
		scoped := RescoreBorrower(borrower.ID, []*domain.Borrower{borrower, other}, loans, repayments, asOf)
		direct := ComputeCreditScore(borrower.BorrowerProfile, []*domain.Loan{own}, nil, asOf)

		assert.Equal(t, direct, scoped)
	})

	t.Run("borrower without history gets the initial score", func(t *testing.T) {
		score := RescoreBorrower(borrower.ID, []*domain.Borrower{borrower}, []*domain.Loan{foreign}, repayments, time.Now())
		assert.Equal(t, InitialScore(borrower.BorrowerProfile), score)
	})
}

func TestDeriveRiskRating(t *testing.T) {
	assert.Equal(t, domain.RiskLow, domain.DeriveRiskRating(700))
	assert.Equal(t, domain.RiskMedium, domain.DeriveRiskRating(699))
	assert.Equal(t, domain.RiskMedium, domain.DeriveRiskRating(550))
	assert.Equal(t, domain.RiskHigh, domain.DeriveRiskRating(549))
}

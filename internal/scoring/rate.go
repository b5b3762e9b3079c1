package scoring

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/lending-engine/internal/domain"
)

// DefaultBaseRate is the annual percentage rate adjusted by SuggestInterestRate.
var DefaultBaseRate = decimal.NewFromInt(12)

// Score categories
const (
	CategoryExcellent = "Excellent"
	CategoryGood      = "Good"
	CategoryFair      = "Fair"
	CategoryPoor      = "Poor"
)

// ScoreInfo describes the band a score falls in
type ScoreInfo struct {
	Category    string `json:"category"`
	Description string `json:"description"`
}

// SuggestInterestRate adjusts baseRate by the borrower's credit band.
func SuggestInterestRate(score int, baseRate decimal.Decimal) decimal.Decimal {
	switch {
	case score >= 750:
		return baseRate.Sub(decimal.NewFromInt(3))
	case score >= 650:
		return baseRate.Sub(decimal.NewFromInt(1))
	case score >= 550:
		return baseRate.Add(decimal.NewFromInt(2))
	default:
		return baseRate.Add(decimal.NewFromInt(5))
	}
}

// ClassifyScore returns the category and risk description for a score.
func ClassifyScore(score int) ScoreInfo {
	switch {
	case score >= 750:
		return ScoreInfo{Category: CategoryExcellent, Description: "Very low risk borrower"}
	case score >= 650:
		return ScoreInfo{Category: CategoryGood, Description: "Low risk borrower"}
	case score >= 550:
		return ScoreInfo{Category: CategoryFair, Description: "Medium risk borrower"}
	default:
		return ScoreInfo{Category: CategoryPoor, Description: "High risk borrower"}
	}
}

// Assessment is everything derived from one scoring run
type Assessment struct {
	Score         int               `json:"score"`
	Info          ScoreInfo         `json:"info"`
	RiskRating    domain.RiskRating `json:"risk_rating"`
	SuggestedRate decimal.Decimal   `json:"suggested_rate"`
	AsOf          time.Time         `json:"as_of"`
}

// Evaluate scores a borrower and derives category, risk rating and a
// suggested rate from the result.
func Evaluate(profile domain.BorrowerProfile, loans []*domain.Loan, repayments []*domain.Repayment, asOf time.Time, baseRate decimal.Decimal) Assessment {
	score := ComputeCreditScore(profile, loans, repayments, asOf)
	return Assessment{
		Score:         score,
		Info:          ClassifyScore(score),
		RiskRating:    domain.DeriveRiskRating(score),
		SuggestedRate: SuggestInterestRate(score, baseRate),
		AsOf:          asOf,
	}
}

// RescoreBorrower recomputes one borrower's score from collections that may
// hold other borrowers' records. Only the borrower's loans, and repayments
// belonging to those loans, are considered. An unknown borrower scores 650.
func RescoreBorrower(borrowerID uuid.UUID, borrowers []*domain.Borrower, loans []*domain.Loan, repayments []*domain.Repayment, asOf time.Time) int {
	var borrower *domain.Borrower
	for _, b := range borrowers {
		if b.ID == borrowerID {
			borrower = b
			break
		}
	}
	if borrower == nil {
		return domain.DefaultCreditScore
	}

	owned := make(map[uuid.UUID]struct{})
	var borrowerLoans []*domain.Loan
	for _, loan := range loans {
		if loan.BorrowerID == borrowerID {
			borrowerLoans = append(borrowerLoans, loan)
			owned[loan.ID] = struct{}{}
		}
	}

	var borrowerRepayments []*domain.Repayment
	for _, r := range repayments {
		if _, ok := owned[r.LoanID]; ok {
			borrowerRepayments = append(borrowerRepayments, r)
		}
	}

	return ComputeCreditScore(borrower.BorrowerProfile, borrowerLoans, borrowerRepayments, asOf)
}

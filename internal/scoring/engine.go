package scoring

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/segyhp/lending-engine/internal/domain"
	"github.com/segyhp/lending-engine/pkg/utils"
)

const (
	baseScore = 650

	newBorrowerMin = 550
	newBorrowerMax = 750

	debtScoreMin = 300
	debtScoreMax = 800
)

var (
	weightPayment        = decimal.RequireFromString("0.40")
	weightDebt           = decimal.RequireFromString("0.25")
	weightHistory        = decimal.RequireFromString("0.15")
	weightRecentActivity = decimal.RequireFromString("0.10")
	weightProfile        = decimal.RequireFromString("0.10")
)

// ComputeCreditScore scores a borrower on a 300-850 scale as of asOf.
//
// A borrower with neither loans nor repayments gets InitialScore. Everyone
// else gets a weighted blend of five factor scores around the 650 midpoint:
//
//	payment history 40%, debt load 25%, history length 15%,
//	recent activity 10%, profile strength 10%
//
// The blend is computed exactly and rounded half up before clamping.
func ComputeCreditScore(profile domain.BorrowerProfile, loans []*domain.Loan, repayments []*domain.Repayment, asOf time.Time) int {
	if len(loans) == 0 && len(repayments) == 0 {
		return InitialScore(profile)
	}

	score := decimal.NewFromInt(baseScore).
		Add(weighted(PaymentScore(repayments, asOf), weightPayment)).
		Add(weighted(DebtScore(profile, loans), weightDebt)).
		Add(weighted(HistoryScore(loans, asOf), weightHistory)).
		Add(weighted(RecentActivityScore(loans, asOf), weightRecentActivity)).
		Add(weighted(ProfileScore(profile), weightProfile))

	return utils.ClampInt(int(score.Round(0).IntPart()), domain.MinCreditScore, domain.MaxCreditScore)
}

func weighted(factor int, weight decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(int64(factor - baseScore)).Mul(weight)
}

// InitialScore scores a borrower without any history from the profile alone,
// within [550, 750].
func InitialScore(profile domain.BorrowerProfile) int {
	score := baseScore

	if income, ok := profile.Income(); ok {
		switch {
		case income.GreaterThanOrEqual(decimal.NewFromInt(50000)):
			score += 40
		case income.GreaterThanOrEqual(decimal.NewFromInt(30000)):
			score += 20
		case income.GreaterThanOrEqual(decimal.NewFromInt(15000)):
			score += 10
		case income.LessThan(decimal.NewFromInt(10000)):
			score -= 20
		}
	}

	years, hasEmployment := profile.Employment()
	if hasEmployment {
		switch {
		case years >= 5:
			score += 30
		case years >= 3:
			score += 15
		case years >= 1:
			score += 5
		case years < 0.5:
			score -= 15
		}
	}

	switch profile.EmploymentStatus {
	case domain.EmploymentEmployed:
		score += 20
	case domain.EmploymentSelfEmployed:
		score += 10
	case domain.EmploymentUnemployed:
		score -= 30
	}

	if tenure, ok := profile.AddressTenure(); ok {
		switch {
		case tenure >= 5:
			score += 15
		case tenure >= 2:
			score += 8
		case tenure < 1:
			score -= 10
		}
	}

	// Long tenure is rewarded again on top of the employment tier above.
	if hasEmployment && years >= 10 {
		score += 10
	}

	return utils.ClampInt(score, newBorrowerMin, newBorrowerMax)
}

// PaymentScore grades repayment punctuality. A paid installment is on time
// when its payment date is not after its due date; overdue and defaulted
// installments are missed. Pending installments past due count as overdue.
func PaymentScore(repayments []*domain.Repayment, asOf time.Time) int {
	if len(repayments) == 0 {
		return baseScore
	}

	var onTime, missed int
	for _, r := range repayments {
		switch r.EffectiveStatus(asOf) {
		case domain.RepaymentStatusPaid:
			if r.PaymentDate != nil && !r.PaymentDate.After(r.DueDate) {
				onTime++
			}
		case domain.RepaymentStatusOverdue, domain.RepaymentStatusDefaulted:
			missed++
		}
	}

	total := float64(len(repayments))
	onTimeRatio := float64(onTime) / total
	missedRatio := float64(missed) / total

	switch {
	case onTimeRatio >= 0.95 && missed == 0:
		return 800
	case onTimeRatio >= 0.90 && missedRatio <= 0.05:
		return 750
	case onTimeRatio >= 0.80 && missedRatio <= 0.10:
		return 680
	case onTimeRatio >= 0.70 && missedRatio <= 0.15:
		return 620
	default:
		return 550
	}
}

// DebtScore grades the outstanding debt on active loans against income.
func DebtScore(profile domain.BorrowerProfile, loans []*domain.Loan) int {
	totalOutstanding := decimal.Zero
	activeCount := 0
	for _, loan := range loans {
		if loan.Status != domain.LoanStatusActive {
			continue
		}
		activeCount++
		totalOutstanding = totalOutstanding.Add(loan.Outstanding())
	}

	dti := DebtToIncome(totalOutstanding, profile)

	score := baseScore
	switch {
	case dti.LessThanOrEqual(decimal.NewFromInt(20)):
		score += 50
	case dti.LessThanOrEqual(decimal.NewFromInt(35)):
		score += 25
	case dti.LessThanOrEqual(decimal.NewFromInt(50)):
		score -= 20
	case dti.LessThanOrEqual(decimal.NewFromInt(65)):
		score -= 50
	default:
		score -= 80
	}

	switch {
	case activeCount == 0:
		score += 20
	case activeCount == 1:
		score += 10
	case activeCount >= 3:
		score -= (activeCount - 2) * 15
	}

	return utils.ClampInt(score, debtScoreMin, debtScoreMax)
}

// DebtToIncome estimates the monthly debt as a twelfth of the outstanding
// balance and expresses it as a percentage of monthly income. Unknown or
// non-positive income yields 0.
func DebtToIncome(totalOutstanding decimal.Decimal, profile domain.BorrowerProfile) decimal.Decimal {
	income, ok := profile.Income()
	if !ok || !income.IsPositive() {
		return decimal.Zero
	}
	return totalOutstanding.Mul(decimal.NewFromInt(100)).Div(income.Mul(decimal.NewFromInt(12)))
}

// HistoryScore grades how long ago the borrower's first loan started.
func HistoryScore(loans []*domain.Loan, asOf time.Time) int {
	if len(loans) == 0 {
		return 600
	}

	oldest := loans[0].Origin()
	for _, loan := range loans[1:] {
		if origin := loan.Origin(); origin.Before(oldest) {
			oldest = origin
		}
	}

	months := utils.MonthsBetween(oldest, asOf)
	switch {
	case months >= 60:
		return 750
	case months >= 36:
		return 700
	case months >= 24:
		return 670
	case months >= 12:
		return 630
	default:
		return 580
	}
}

// RecentActivityScore penalises loans taken in the three months up to asOf.
func RecentActivityScore(loans []*domain.Loan, asOf time.Time) int {
	threeMonthsAgo := asOf.AddDate(0, -3, 0)

	recent := 0
	for _, loan := range loans {
		if !loan.Origin().Before(threeMonthsAgo) {
			recent++
		}
	}

	switch recent {
	case 0:
		return 700
	case 1:
		return 680
	case 2:
		return 650
	default:
		return 600
	}
}

// ProfileScore grades employment, income and residence stability.
func ProfileScore(profile domain.BorrowerProfile) int {
	score := baseScore

	switch profile.EmploymentStatus {
	case domain.EmploymentEmployed:
		score += 30
	case domain.EmploymentSelfEmployed:
		score += 15
	case domain.EmploymentUnemployed:
		score -= 30
	}

	if income, ok := profile.Income(); ok {
		switch {
		case income.GreaterThan(decimal.NewFromInt(50000)):
			score += 25
		case income.GreaterThan(decimal.NewFromInt(25000)):
			score += 15
		case income.GreaterThan(decimal.NewFromInt(10000)):
			score += 5
		}
	}

	if tenure, ok := profile.AddressTenure(); ok {
		switch {
		case tenure >= 5:
			score += 20
		case tenure >= 2:
			score += 10
		case tenure < 1:
			score -= 10
		}
	}

	return score
}

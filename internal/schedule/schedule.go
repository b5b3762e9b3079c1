// Package schedule turns loan terms into repayment installments.
//
// Two amount formulas live here on purpose. Generate splits TotalDue evenly
// over NumberOfInstallments and rounds to cents; GenerateDueToday divides the
// total by a nominal period count and rounds to whole units. The two can
// disagree and are kept separate.
package schedule

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/lending-engine/internal/domain"
	"github.com/segyhp/lending-engine/pkg/utils"
)

const (
	daysPerMonth  = 30
	weeksPerMonth = 4
)

// TotalDue is principal plus simple interest over the term. No compounding.
func TotalDue(principal, annualRatePercent decimal.Decimal, termMonths int) decimal.Decimal {
	return principal.Add(utils.SimpleInterest(principal, annualRatePercent, termMonths))
}

// NumberOfInstallments maps a term to a nominal installment count:
// 30 per month for daily, 4 per month for weekly, one per month otherwise.
func NumberOfInstallments(termMonths int, frequency domain.Frequency) int {
	if termMonths <= 0 {
		return 0
	}
	switch frequency.OrDefault() {
	case domain.FrequencyDaily:
		return termMonths * daysPerMonth
	case domain.FrequencyWeekly:
		return termMonths * weeksPerMonth
	default:
		return termMonths
	}
}

// NextDueDate advances current by one repayment period.
func NextDueDate(current time.Time, frequency domain.Frequency) time.Time {
	switch frequency.OrDefault() {
	case domain.FrequencyDaily:
		return current.AddDate(0, 0, 1)
	case domain.FrequencyWeekly:
		return current.AddDate(0, 0, 7)
	default:
		return current.AddDate(0, 1, 0)
	}
}

// EndDate is the start date moved forward by the whole term.
func EndDate(start time.Time, termMonths int) time.Time {
	return start.AddDate(0, termMonths, 0)
}

// Generate builds the full upfront schedule for a loan. The first installment
// falls one period after the start date. Amounts are TotalDue/count rounded
// to cents; the rounding remainder is not pushed onto the last installment.
// A loan without installments yields nil.
func Generate(loan *domain.Loan) []*domain.Repayment {
	count := NumberOfInstallments(loan.TermMonths, loan.RepaymentSchedule)
	if count == 0 {
		return nil
	}

	frequency := loan.RepaymentSchedule.OrDefault()
	amount := utils.RoundCurrency(loan.TotalDue.Div(decimal.NewFromInt(int64(count))))

	repayments := make([]*domain.Repayment, 0, count)
	dueDate := loan.StartDate
	for i := 1; i <= count; i++ {
		dueDate = NextDueDate(dueDate, frequency)

		repayments = append(repayments, &domain.Repayment{
			ID:                uuid.New(),
			LoanID:            loan.ID,
			BorrowerID:        loan.BorrowerID,
			BorrowerName:      loan.BorrowerName,
			Amount:            amount,
			DueDate:           dueDate,
			Status:            domain.RepaymentStatusPending,
			Type:              frequency,
			InstallmentNumber: i,
			TotalInstallments: count,
			LateFee:           decimal.Zero,
		})
	}

	return repayments
}

// DueTodayAmount is the single-installment amount used by GenerateDueToday:
// the simple-interest total divided by term*30, term*4 or term, rounded to
// whole currency units. ok is false for a non-positive term.
func DueTodayAmount(loan *domain.Loan) (amount decimal.Decimal, ok bool) {
	if loan.TermMonths <= 0 {
		return decimal.Zero, false
	}
	total := TotalDue(loan.Principal, loan.InterestRate, loan.TermMonths)

	var periods int
	switch loan.RepaymentSchedule.OrDefault() {
	case domain.FrequencyDaily:
		periods = loan.TermMonths * daysPerMonth
	case domain.FrequencyWeekly:
		periods = loan.TermMonths * weeksPerMonth
	default:
		periods = loan.TermMonths
	}

	return utils.RoundWhole(total.Div(decimal.NewFromInt(int64(periods)))), true
}

// GenerateDueToday creates the installment due on today's date for a loan,
// or returns nil when a pending installment for the same loan is already due
// today, or when the loan has no term to divide by.
func GenerateDueToday(loan *domain.Loan, borrower *domain.Borrower, existing []*domain.Repayment, today time.Time) *domain.Repayment {
	issued := 0
	for _, r := range existing {
		if r.LoanID != loan.ID {
			continue
		}
		if r.Status == domain.RepaymentStatusPending && r.IsDueOn(today) {
			return nil
		}
		if r.Status != domain.RepaymentStatusCancelled {
			issued++
		}
	}

	amount, ok := DueTodayAmount(loan)
	if !ok {
		return nil
	}

	frequency := loan.RepaymentSchedule.OrDefault()
	repayment := &domain.Repayment{
		ID:                uuid.New(),
		LoanID:            loan.ID,
		BorrowerID:        loan.BorrowerID,
		BorrowerName:      loan.BorrowerName,
		Amount:            amount,
		DueDate:           domain.DateOf(today),
		Status:            domain.RepaymentStatusPending,
		Type:              frequency,
		InstallmentNumber: issued + 1,
		TotalInstallments: NumberOfInstallments(loan.TermMonths, frequency),
		LateFee:           decimal.Zero,
		Description:       fmt.Sprintf("%s installment due today", frequency),
		CreatedAt:         today,
	}
	if borrower != nil {
		repayment.BorrowerID = borrower.ID
		repayment.BorrowerName = borrower.Name
	}

	return repayment
}

package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	customError "github.com/segyhp/lending-engine/pkg/errors"
)

// LoanStatus is the lifecycle state of a loan
type LoanStatus string

const (
	LoanStatusActive    LoanStatus = "active"
	LoanStatusCompleted LoanStatus = "completed"
	LoanStatusDefaulted LoanStatus = "defaulted"
	LoanStatusCancelled LoanStatus = "cancelled"
)

// IsValid reports whether s is a known loan status.
func (s LoanStatus) IsValid() bool {
	switch s {
	case LoanStatusActive, LoanStatusCompleted, LoanStatusDefaulted, LoanStatusCancelled:
		return true
	}
	return false
}

// Frequency is how often a loan is repaid
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// OrDefault returns the frequency, treating an unknown or empty value as monthly.
func (f Frequency) OrDefault() Frequency {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return f
	}
	return FrequencyMonthly
}

// Loan represents a loan entity
type Loan struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	BorrowerID        uuid.UUID       `json:"borrower_id" db:"borrower_id"`
	BorrowerName      string          `json:"borrower_name" db:"borrower_name"`
	Principal         decimal.Decimal `json:"principal" db:"principal"`
	InterestRate      decimal.Decimal `json:"interest_rate" db:"interest_rate"` // annual percent
	TermMonths        int             `json:"loan_term" db:"term_months"`
	RepaymentSchedule Frequency       `json:"repayment_schedule" db:"repayment_schedule"`
	StartDate         time.Time       `json:"start_date" db:"start_date"`
	EndDate           time.Time       `json:"end_date" db:"end_date"`
	Status            LoanStatus      `json:"status" db:"status"`
	TotalDue          decimal.Decimal `json:"total_due" db:"total_due"`
	PaidAmount        decimal.Decimal `json:"paid_amount" db:"paid_amount"`
	RemainingAmount   decimal.Decimal `json:"remaining_amount" db:"remaining_amount"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

// Outstanding is TotalDue minus PaidAmount, floored at zero.
func (l *Loan) Outstanding() decimal.Decimal {
	remaining := l.TotalDue.Sub(l.PaidAmount)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// Recalculate syncs RemainingAmount and completes an active loan once
// nothing is left to pay. Completion is never reverted.
func (l *Loan) Recalculate() {
	l.RemainingAmount = l.Outstanding()
	if l.RemainingAmount.IsZero() && l.Status == LoanStatusActive {
		l.Status = LoanStatusCompleted
	}
}

// ApplyPayment records a payment against the loan.
func (l *Loan) ApplyPayment(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return customError.WrapInvalidPaymentAmount(amount.String())
	}
	l.PaidAmount = l.PaidAmount.Add(amount)
	l.Recalculate()
	return nil
}

// SetStatus applies an administrative status change. A completed loan is
// final, and only a loan with nothing left to pay may be marked completed.
func (l *Loan) SetStatus(status LoanStatus) error {
	switch {
	case !status.IsValid():
		return customError.WrapInvalidLoanStatus(string(status), "unknown loan status")
	case l.Status == status:
		return nil
	case l.Status == LoanStatusCompleted:
		return customError.WrapInvalidLoanStatus(string(status), "loan is already completed")
	case status == LoanStatusCompleted && !l.Outstanding().IsZero():
		return customError.WrapInvalidLoanStatus(string(status), "loan has an outstanding balance")
	}
	l.Status = status
	return nil
}

// Origin is the date the loan history starts from: StartDate, or
// CreatedAt when no start date was recorded.
func (l *Loan) Origin() time.Time {
	if l.StartDate.IsZero() {
		return l.CreatedAt
	}
	return l.StartDate
}

// DTOs for requests and responses

type CreateLoanRequest struct {
	BorrowerID        uuid.UUID       `json:"borrower_id" validate:"required"`
	Principal         decimal.Decimal `json:"principal" validate:"gt=0"`
	InterestRate      decimal.Decimal `json:"interest_rate" validate:"gte=0"`
	StartDate         time.Time       `json:"start_date"`
	TermMonths        int             `json:"loan_term" validate:"required,gt=0"`
	RepaymentSchedule Frequency       `json:"repayment_schedule" validate:"omitempty,oneof=daily weekly monthly"`
}

type UpdateLoanStatusRequest struct {
	Status LoanStatus `json:"status" validate:"required,oneof=active completed defaulted cancelled"`
}

// LoanFilter narrows a loan listing. Empty fields match everything; Search
// matches the borrower name case-insensitively.
type LoanFilter struct {
	Status            LoanStatus `json:"status,omitempty" validate:"omitempty,oneof=active completed defaulted cancelled"`
	RepaymentSchedule Frequency  `json:"repayment_schedule,omitempty" validate:"omitempty,oneof=daily weekly monthly"`
	Search            string     `json:"search,omitempty" validate:"max=100"`
	PageRequest
}

type LoanListResponse struct {
	Loans []*Loan `json:"loans"`
	PageInfo
}

type CreateLoanResponse struct {
	Loan     *Loan        `json:"loan"`
	Schedule []*Repayment `json:"schedule"`
}

type LoanDetailsResponse struct {
	Loan       *Loan        `json:"loan"`
	Repayments []*Repayment `json:"repayments"`
}

type OutstandingResponse struct {
	LoanID      uuid.UUID       `json:"loan_id"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Status      LoanStatus      `json:"status"`
}

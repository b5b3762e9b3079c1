package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	customError "github.com/segyhp/lending-engine/pkg/errors"
)

// RepaymentStatus is the state of a single installment
type RepaymentStatus string

const (
	RepaymentStatusPending   RepaymentStatus = "pending"
	RepaymentStatusPaid      RepaymentStatus = "paid"
	RepaymentStatusOverdue   RepaymentStatus = "overdue"
	RepaymentStatusCancelled RepaymentStatus = "cancelled"
	// RepaymentStatusDefaulted only appears in imported history.
	RepaymentStatusDefaulted RepaymentStatus = "defaulted"
)

// Repayment represents one installment of a loan
type Repayment struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	LoanID            uuid.UUID       `json:"loan_id" db:"loan_id"`
	BorrowerID        uuid.UUID       `json:"borrower_id" db:"borrower_id"`
	BorrowerName      string          `json:"borrower_name" db:"borrower_name"`
	Amount            decimal.Decimal `json:"amount" db:"amount"`
	DueDate           time.Time       `json:"due_date" db:"due_date"`
	PaymentDate       *time.Time      `json:"payment_date,omitempty" db:"payment_date"`
	Status            RepaymentStatus `json:"status" db:"status"`
	Type              Frequency       `json:"type" db:"type"`
	InstallmentNumber int             `json:"installment_number" db:"installment_number"`
	TotalInstallments int             `json:"total_installments" db:"total_installments"`
	LateFee           decimal.Decimal `json:"late_fee" db:"late_fee"`
	Description       string          `json:"description,omitempty" db:"description"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
}

// EffectiveStatus classifies the installment as of asOf without mutating it.
// A pending installment with a payment date counts as paid; one whose due
// day is before asOf's day counts as overdue. Days are taken in asOf's zone.
func (r *Repayment) EffectiveStatus(asOf time.Time) RepaymentStatus {
	if r.Status != RepaymentStatusPending {
		return r.Status
	}
	if r.PaymentDate != nil {
		return RepaymentStatusPaid
	}
	if DateOf(r.DueDate.In(asOf.Location())).Before(DateOf(asOf)) {
		return RepaymentStatusOverdue
	}
	return RepaymentStatusPending
}

// IsDueOn reports whether the installment falls due on the calendar day of
// day, in day's zone.
func (r *Repayment) IsDueOn(day time.Time) bool {
	return SameDay(r.DueDate.In(day.Location()), day)
}

// MarkPaid settles a pending or overdue installment.
func (r *Repayment) MarkPaid(at time.Time) error {
	switch r.Status {
	case RepaymentStatusPaid:
		return customError.WrapRepaymentAlreadyPaid(r.ID.String())
	case RepaymentStatusCancelled:
		return customError.WrapRepaymentCancelled(r.ID.String())
	}
	paidAt := at
	r.PaymentDate = &paidAt
	r.Status = RepaymentStatusPaid
	return nil
}

// DateOf truncates t to midnight in its own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DTOs for requests and responses

// RepaymentFilter narrows a repayment listing. Empty fields match
// everything; Search matches the borrower name case-insensitively. The
// pending and overdue statuses are judged against the day AsOf, so an
// unpaid installment past its due day lists as overdue before the
// overdue sweep has stored it.
type RepaymentFilter struct {
	Status RepaymentStatus `json:"status,omitempty" validate:"omitempty,oneof=pending paid overdue cancelled defaulted"`
	Type   Frequency       `json:"type,omitempty" validate:"omitempty,oneof=daily weekly monthly"`
	Search string          `json:"search,omitempty" validate:"max=100"`
	AsOf   time.Time       `json:"-"`
	PageRequest
}

type RepaymentListResponse struct {
	Repayments []*Repayment `json:"repayments"`
	PageInfo
}

type RecordRepaymentRequest struct {
	LoanID      uuid.UUID       `json:"loan_id" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	PaymentDate *time.Time      `json:"payment_date"`
}

type GenerateResponse struct {
	Generated   int          `json:"generated"`
	ActiveLoans int          `json:"active_loans"`
	Repayments  []*Repayment `json:"repayments"`
}

type ScheduleResponse struct {
	LoanID   uuid.UUID    `json:"loan_id"`
	Schedule []*Repayment `json:"schedule"`
}

type MarkPaidRequest struct {
	RepaymentIDs []uuid.UUID `json:"repayment_ids" validate:"required,min=1"`
}

type MarkPaidResponse struct {
	Updated int `json:"updated"`
}

type OverdueResponse struct {
	Updated int64 `json:"updated"`
}

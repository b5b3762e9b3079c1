package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/segyhp/lending-engine/internal/domain"
)

// BorrowerRepository defines the interface for borrower data operations
type BorrowerRepository interface {
	// Create creates a new borrower
	Create(ctx context.Context, borrower *domain.Borrower) error

	// GetByID retrieves a borrower by ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Borrower, error)

	// GetByEmail retrieves a borrower by email
	GetByEmail(ctx context.Context, email string) (*domain.Borrower, error)

	// UpdateScore stores a new credit score and risk rating
	UpdateScore(ctx context.Context, id uuid.UUID, score int, rating domain.RiskRating) error

	// Update stores contact details and scoring inputs
	Update(ctx context.Context, borrower *domain.Borrower) error

	// Deactivate soft-deletes a borrower by clearing is_active
	Deactivate(ctx context.Context, id uuid.UUID) error

	// List retrieves one page of borrowers matching filter and the total match count
	List(ctx context.Context, filter domain.BorrowerFilter) ([]*domain.Borrower, int, error)
}

// LoanRepository defines the interface for loan data operations
type LoanRepository interface {
	// CreateWithSchedule creates a loan and its installments in one transaction
	CreateWithSchedule(ctx context.Context, loan *domain.Loan, schedule []*domain.Repayment) error

	// GetByID retrieves a loan by ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error)

	// Update updates paid/remaining amounts and status of a loan
	Update(ctx context.Context, loan *domain.Loan) error

	// ListActive retrieves all active loans
	ListActive(ctx context.Context) ([]*domain.Loan, error)

	// ListByBorrower retrieves every loan of a borrower
	ListByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]*domain.Loan, error)

	// List retrieves one page of loans matching filter and the total match count
	List(ctx context.Context, filter domain.LoanFilter) ([]*domain.Loan, int, error)
}

// RepaymentRepository defines the interface for repayment data operations
type RepaymentRepository interface {
	// Create creates a single repayment record
	Create(ctx context.Context, repayment *domain.Repayment) error

	// GetByID retrieves a repayment by ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Repayment, error)

	// Update stores status and payment date of a repayment
	Update(ctx context.Context, repayment *domain.Repayment) error

	// ListByLoan retrieves a loan's repayments ordered by due date
	ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.Repayment, error)

	// ListByBorrower retrieves a borrower's repayments ordered by due date
	ListByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]*domain.Repayment, error)

	// ListDueBetween retrieves repayments with from <= due_date < to
	ListDueBetween(ctx context.Context, from, to time.Time) ([]*domain.Repayment, error)

	// ListUnpaidBefore retrieves pending or overdue repayments due before the given time
	ListUnpaidBefore(ctx context.Context, before time.Time) ([]*domain.Repayment, error)

	// MarkOverdue flips the given pending repayments to overdue
	MarkOverdue(ctx context.Context, ids []uuid.UUID) (int64, error)

	// List retrieves one page of repayments matching filter and the total match count
	List(ctx context.Context, filter domain.RepaymentFilter) ([]*domain.Repayment, int, error)
}

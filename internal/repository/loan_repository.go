package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/lending-engine/internal/domain"
)

const loanColumns = `id, borrower_id, borrower_name, principal, interest_rate, term_months, repayment_schedule,
	start_date, end_date, status, total_due, paid_amount, remaining_amount, created_at, updated_at`

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) CreateWithSchedule(ctx context.Context, loan *domain.Loan, schedule []*domain.Repayment) error {
	loanQuery := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES (:id, :borrower_id, :borrower_name, :principal, :interest_rate, :term_months, :repayment_schedule,
			:start_date, :end_date, :status, :total_due, :paid_amount, :remaining_amount, :created_at, :updated_at)
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.NamedExecContext(ctx, loanQuery, loan); err != nil {
		return err
	}

	for _, repayment := range schedule {
		if _, err = tx.NamedExecContext(ctx, insertRepaymentQuery, repayment); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *loanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	var loan domain.Loan
	if err := r.db.GetContext(ctx, &loan, query, id); err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) Update(ctx context.Context, loan *domain.Loan) error {
	query := `
		UPDATE loans
		SET paid_amount = $2, remaining_amount = $3, status = $4, updated_at = $5
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		loan.ID,
		loan.PaidAmount,
		loan.RemainingAmount,
		loan.Status,
		time.Now(),
	)

	return err
}

func (r *loanRepository) ListActive(ctx context.Context) ([]*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE status = $1 ORDER BY start_date`

	var loans []*domain.Loan
	if err := r.db.SelectContext(ctx, &loans, query, domain.LoanStatusActive); err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *loanRepository) ListByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE borrower_id = $1 ORDER BY start_date`

	var loans []*domain.Loan
	if err := r.db.SelectContext(ctx, &loans, query, borrowerID); err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *loanRepository) List(ctx context.Context, filter domain.LoanFilter) ([]*domain.Loan, int, error) {
	var c conditions
	if filter.Status != "" {
		c.add("status = ?", filter.Status)
	}
	if filter.RepaymentSchedule != "" {
		c.add("repayment_schedule = ?", filter.RepaymentSchedule)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		c.add("borrower_name ILIKE ?", containsPattern(search))
	}

	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(`SELECT COUNT(*) FROM loans`+c.where()), c.args...); err != nil {
		return nil, 0, err
	}

	query := r.db.Rebind(`SELECT ` + loanColumns + ` FROM loans` + c.where() +
		` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`)

	loans := []*domain.Loan{}
	if err := r.db.SelectContext(ctx, &loans, query, c.paged(filter.PageRequest)...); err != nil {
		return nil, 0, err
	}

	return loans, total, nil
}

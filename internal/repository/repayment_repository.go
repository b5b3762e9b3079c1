package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/segyhp/lending-engine/internal/domain"
)

const repaymentColumns = `id, loan_id, borrower_id, borrower_name, amount, due_date, payment_date, status, type,
	installment_number, total_installments, late_fee, description, created_at`

const insertRepaymentQuery = `
	INSERT INTO repayments (` + repaymentColumns + `)
	VALUES (:id, :loan_id, :borrower_id, :borrower_name, :amount, :due_date, :payment_date, :status, :type,
		:installment_number, :total_installments, :late_fee, :description, :created_at)
`

type repaymentRepository struct {
	db *sqlx.DB
}

func NewRepaymentRepository(db *sqlx.DB) RepaymentRepository {
	return &repaymentRepository{db: db}
}

func (r *repaymentRepository) Create(ctx context.Context, repayment *domain.Repayment) error {
	_, err := r.db.NamedExecContext(ctx, insertRepaymentQuery, repayment)
	return err
}

func (r *repaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Repayment, error) {
	query := `SELECT ` + repaymentColumns + ` FROM repayments WHERE id = $1`

	var repayment domain.Repayment
	if err := r.db.GetContext(ctx, &repayment, query, id); err != nil {
		return nil, err
	}

	return &repayment, nil
}

func (r *repaymentRepository) Update(ctx context.Context, repayment *domain.Repayment) error {
	query := `
		UPDATE repayments
		SET status = $2, payment_date = $3, late_fee = $4
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, repayment.ID, repayment.Status, repayment.PaymentDate, repayment.LateFee)
	return err
}

func (r *repaymentRepository) ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.Repayment, error) {
	query := `SELECT ` + repaymentColumns + ` FROM repayments WHERE loan_id = $1 ORDER BY due_date, installment_number`

	return r.list(ctx, query, loanID)
}

func (r *repaymentRepository) ListByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]*domain.Repayment, error) {
	query := `SELECT ` + repaymentColumns + ` FROM repayments WHERE borrower_id = $1 ORDER BY due_date`

	return r.list(ctx, query, borrowerID)
}

func (r *repaymentRepository) ListDueBetween(ctx context.Context, from, to time.Time) ([]*domain.Repayment, error) {
	query := `SELECT ` + repaymentColumns + ` FROM repayments WHERE due_date >= $1 AND due_date < $2 ORDER BY due_date`

	return r.list(ctx, query, from, to)
}

func (r *repaymentRepository) ListUnpaidBefore(ctx context.Context, before time.Time) ([]*domain.Repayment, error) {
	query := `SELECT ` + repaymentColumns + ` FROM repayments
		WHERE status IN ('pending', 'overdue') AND payment_date IS NULL AND due_date < $1
		ORDER BY due_date`

	return r.list(ctx, query, before)
}

func (r *repaymentRepository) MarkOverdue(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = id.String()
	}

	query := `
		UPDATE repayments
		SET status = 'overdue'
		WHERE status = 'pending' AND id = ANY($1::uuid[])
	`

	result, err := r.db.ExecContext(ctx, query, pq.Array(raw))
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func (r *repaymentRepository) List(ctx context.Context, filter domain.RepaymentFilter) ([]*domain.Repayment, int, error) {
	var c conditions
	addRepaymentStatus(&c, filter.Status, filter.AsOf)
	if filter.Type != "" {
		c.add("type = ?", filter.Type)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		c.add("borrower_name ILIKE ?", containsPattern(search))
	}

	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(`SELECT COUNT(*) FROM repayments`+c.where()), c.args...); err != nil {
		return nil, 0, err
	}

	query := r.db.Rebind(`SELECT ` + repaymentColumns + ` FROM repayments` + c.where() +
		` ORDER BY due_date, installment_number, id LIMIT ? OFFSET ?`)

	repayments := []*domain.Repayment{}
	if err := r.db.SelectContext(ctx, &repayments, query, c.paged(filter.PageRequest)...); err != nil {
		return nil, 0, err
	}

	return repayments, total, nil
}

// addRepaymentStatus matches the classification of Repayment.EffectiveStatus
// when asOf is set, and the stored status otherwise.
func addRepaymentStatus(c *conditions, status domain.RepaymentStatus, asOf time.Time) {
	if status == "" {
		return
	}
	if asOf.IsZero() {
		c.add("status = ?", status)
		return
	}

	switch status {
	case domain.RepaymentStatusPaid:
		c.add("(status = 'paid' OR (status = 'pending' AND payment_date IS NOT NULL))")
	case domain.RepaymentStatusOverdue:
		c.add("(status = 'overdue' OR (status = 'pending' AND payment_date IS NULL AND due_date < ?))", asOf)
	case domain.RepaymentStatusPending:
		c.add("(status = 'pending' AND payment_date IS NULL AND due_date >= ?)", asOf)
	default:
		c.add("status = ?", status)
	}
}

func (r *repaymentRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.Repayment, error) {
	var repayments []*domain.Repayment
	if err := r.db.SelectContext(ctx, &repayments, query, args...); err != nil {
		return nil, err
	}

	return repayments, nil
}

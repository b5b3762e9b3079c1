package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/lending-engine/internal/domain"
)

const borrowerColumns = `id, name, email, phone, address, id_proof, monthly_income, employment_status,
	employment_years, years_at_address, credit_score, risk_rating, is_active, created_at, updated_at`

type borrowerRepository struct {
	db *sqlx.DB
}

func NewBorrowerRepository(db *sqlx.DB) BorrowerRepository {
	return &borrowerRepository{db: db}
}

func (r *borrowerRepository) Create(ctx context.Context, borrower *domain.Borrower) error {
	query := `
		INSERT INTO borrowers (` + borrowerColumns + `)
		VALUES (:id, :name, :email, :phone, :address, :id_proof, :monthly_income, :employment_status,
			:employment_years, :years_at_address, :credit_score, :risk_rating, :is_active, :created_at, :updated_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, borrower)
	return err
}

func (r *borrowerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Borrower, error) {
	query := `SELECT ` + borrowerColumns + ` FROM borrowers WHERE id = $1`

	var borrower domain.Borrower
	if err := r.db.GetContext(ctx, &borrower, query, id); err != nil {
		return nil, err
	}

	return &borrower, nil
}

func (r *borrowerRepository) GetByEmail(ctx context.Context, email string) (*domain.Borrower, error) {
	query := `SELECT ` + borrowerColumns + ` FROM borrowers WHERE email = $1`

	var borrower domain.Borrower
	if err := r.db.GetContext(ctx, &borrower, query, email); err != nil {
		return nil, err
	}

	return &borrower, nil
}

func (r *borrowerRepository) UpdateScore(ctx context.Context, id uuid.UUID, score int, rating domain.RiskRating) error {
	query := `
		UPDATE borrowers
		SET credit_score = $2, risk_rating = $3, updated_at = $4
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, score, rating, time.Now())
	return err
}

func (r *borrowerRepository) Update(ctx context.Context, borrower *domain.Borrower) error {
	query := `
		UPDATE borrowers
		SET name = :name, phone = :phone, address = :address, id_proof = :id_proof,
			monthly_income = :monthly_income, employment_status = :employment_status,
			employment_years = :employment_years, years_at_address = :years_at_address,
			updated_at = :updated_at
		WHERE id = :id
	`

	_, err := r.db.NamedExecContext(ctx, query, borrower)
	return err
}

func (r *borrowerRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE borrowers SET is_active = FALSE, updated_at = $2 WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, id, time.Now())
	return err
}

func (r *borrowerRepository) List(ctx context.Context, filter domain.BorrowerFilter) ([]*domain.Borrower, int, error) {
	var c conditions
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := containsPattern(search)
		c.add("(name ILIKE ? OR email ILIKE ?)", pattern, pattern)
	}
	if filter.RiskRating != "" {
		c.add("risk_rating = ?", filter.RiskRating)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(`SELECT COUNT(*) FROM borrowers`+c.where()), c.args...); err != nil {
		return nil, 0, err
	}

	query := r.db.Rebind(`SELECT ` + borrowerColumns + ` FROM borrowers` + c.where() +
		` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`)

	borrowers := []*domain.Borrower{}
	if err := r.db.SelectContext(ctx, &borrowers, query, c.paged(filter.PageRequest)...); err != nil {
		return nil, 0, err
	}

	return borrowers, total, nil
}

package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/segyhp/lending-engine/internal/domain"
)

type MockBorrowerRepository struct {
	mock.Mock
}

func (m *MockBorrowerRepository) Create(ctx context.Context, borrower *domain.Borrower) error {
	args := m.Called(ctx, borrower)
	return args.Error(0)
}

func (m *MockBorrowerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Borrower, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Borrower), args.Error(1)
}

func (m *MockBorrowerRepository) GetByEmail(ctx context.Context, email string) (*domain.Borrower, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Borrower), args.Error(1)
}

func (m *MockBorrowerRepository) UpdateScore(ctx context.Context, id uuid.UUID, score int, rating domain.RiskRating) error {
	args := m.Called(ctx, id, score, rating)
	return args.Error(0)
}

func (m *MockBorrowerRepository) Update(ctx context.Context, borrower *domain.Borrower) error {
	args := m.Called(ctx, borrower)
	return args.Error(0)
}

func (m *MockBorrowerRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBorrowerRepository) List(ctx context.Context, filter domain.BorrowerFilter) ([]*domain.Borrower, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.Borrower), args.Int(1), args.Error(2)
}

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) CreateWithSchedule(ctx context.Context, loan *domain.Loan, schedule []*domain.Repayment) error {
	args := m.Called(ctx, loan, schedule)
	return args.Error(0)
}

func (m *MockLoanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) Update(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) ListActive(ctx context.Context) ([]*domain.Loan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) ListByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]*domain.Loan, error) {
	args := m.Called(ctx, borrowerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) List(ctx context.Context, filter domain.LoanFilter) ([]*domain.Loan, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.Loan), args.Int(1), args.Error(2)
}

type MockRepaymentRepository struct {
	mock.Mock
}

func (m *MockRepaymentRepository) Create(ctx context.Context, repayment *domain.Repayment) error {
	args := m.Called(ctx, repayment)
	return args.Error(0)
}

func (m *MockRepaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Repayment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Repayment), args.Error(1)
}

func (m *MockRepaymentRepository) Update(ctx context.Context, repayment *domain.Repayment) error {
	args := m.Called(ctx, repayment)
	return args.Error(0)
}

func (m *MockRepaymentRepository) ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.Repayment, error) {
	args := m.Called(ctx, loanID)
	return repayments(args)
}

func (m *MockRepaymentRepository) ListByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]*domain.Repayment, error) {
	args := m.Called(ctx, borrowerID)
	return repayments(args)
}

func (m *MockRepaymentRepository) ListDueBetween(ctx context.Context, from, to time.Time) ([]*domain.Repayment, error) {
	args := m.Called(ctx, from, to)
	return repayments(args)
}

func (m *MockRepaymentRepository) ListUnpaidBefore(ctx context.Context, before time.Time) ([]*domain.Repayment, error) {
	args := m.Called(ctx, before)
	return repayments(args)
}

func (m *MockRepaymentRepository) MarkOverdue(ctx context.Context, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepaymentRepository) List(ctx context.Context, filter domain.RepaymentFilter) ([]*domain.Repayment, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.Repayment), args.Int(1), args.Error(2)
}

func repayments(args mock.Arguments) ([]*domain.Repayment, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Repayment), args.Error(1)
}

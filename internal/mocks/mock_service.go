package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/segyhp/lending-engine/internal/domain"
)

type MockLendingService struct {
	mock.Mock
}

func (m *MockLendingService) CreateBorrower(ctx context.Context, request *domain.CreateBorrowerRequest) (*domain.Borrower, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Borrower), args.Error(1)
}

func (m *MockLendingService) GetBorrower(ctx context.Context, borrowerID uuid.UUID) (*domain.Borrower, error) {
	args := m.Called(ctx, borrowerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Borrower), args.Error(1)
}

func (m *MockLendingService) ScoreBorrower(ctx context.Context, borrowerID uuid.UUID) (*domain.ScoreResponse, error) {
	args := m.Called(ctx, borrowerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScoreResponse), args.Error(1)
}

func (m *MockLendingService) CreateLoan(ctx context.Context, request *domain.CreateLoanRequest) (*domain.CreateLoanResponse, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreateLoanResponse), args.Error(1)
}

func (m *MockLendingService) GetLoanDetails(ctx context.Context, loanID uuid.UUID) (*domain.LoanDetailsResponse, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanDetailsResponse), args.Error(1)
}

func (m *MockLendingService) GetSchedule(ctx context.Context, loanID uuid.UUID) (*domain.ScheduleResponse, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScheduleResponse), args.Error(1)
}

func (m *MockLendingService) GetOutstanding(ctx context.Context, loanID uuid.UUID) (*domain.OutstandingResponse, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OutstandingResponse), args.Error(1)
}

func (m *MockLendingService) RecordRepayment(ctx context.Context, request *domain.RecordRepaymentRequest) (*domain.Repayment, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Repayment), args.Error(1)
}

func (m *MockLendingService) MarkRepaymentPaid(ctx context.Context, repaymentID uuid.UUID) (*domain.Repayment, error) {
	args := m.Called(ctx, repaymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Repayment), args.Error(1)
}

func (m *MockLendingService) MarkRepaymentsPaid(ctx context.Context, repaymentIDs []uuid.UUID) (int, error) {
	args := m.Called(ctx, repaymentIDs)
	return args.Int(0), args.Error(1)
}

func (m *MockLendingService) GenerateTodaysRepayments(ctx context.Context) (*domain.GenerateResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GenerateResponse), args.Error(1)
}

func (m *MockLendingService) MarkOverdueRepayments(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLendingService) ListDueToday(ctx context.Context) ([]*domain.Repayment, error) {
	args := m.Called(ctx)
	return repayments(args)
}

func (m *MockLendingService) ListOverdue(ctx context.Context) ([]*domain.Repayment, error) {
	args := m.Called(ctx)
	return repayments(args)
}

func (m *MockLendingService) GetBorrowerDetails(ctx context.Context, borrowerID uuid.UUID) (*domain.BorrowerDetailsResponse, error) {
	args := m.Called(ctx, borrowerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BorrowerDetailsResponse), args.Error(1)
}

func (m *MockLendingService) ListBorrowers(ctx context.Context, filter domain.BorrowerFilter) (*domain.BorrowerListResponse, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BorrowerListResponse), args.Error(1)
}

func (m *MockLendingService) UpdateBorrower(ctx context.Context, borrowerID uuid.UUID, request *domain.UpdateBorrowerRequest) (*domain.Borrower, error) {
	args := m.Called(ctx, borrowerID, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Borrower), args.Error(1)
}

func (m *MockLendingService) DeleteBorrower(ctx context.Context, borrowerID uuid.UUID) (*domain.Borrower, error) {
	args := m.Called(ctx, borrowerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Borrower), args.Error(1)
}

func (m *MockLendingService) ListLoans(ctx context.Context, filter domain.LoanFilter) (*domain.LoanListResponse, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanListResponse), args.Error(1)
}

func (m *MockLendingService) UpdateLoanStatus(ctx context.Context, loanID uuid.UUID, request *domain.UpdateLoanStatusRequest) (*domain.Loan, error) {
	args := m.Called(ctx, loanID, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLendingService) ListRepayments(ctx context.Context, filter domain.RepaymentFilter) (*domain.RepaymentListResponse, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RepaymentListResponse), args.Error(1)
}

// NewMockLendingService creates a new mock lending service instance
func NewMockLendingService() *MockLendingService {
	return &MockLendingService{}
}

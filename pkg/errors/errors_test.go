package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusinessError_Error(t *testing.T) {
	err := WrapLoanNotFound("42")
	assert.Equal(t, "LOAN_NOT_FOUND: Loan with ID 42 not found (loan not found)", err.Error())

	bare := NewBusinessError("SOME_CODE", "something happened", nil)
	assert.Equal(t, "SOME_CODE: something happened", bare.Error())
}

func TestWrap_PreservesSentinel(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		code     string
	}{
		{"borrower not found", WrapBorrowerNotFound("b"), ErrBorrowerNotFound, ErrCodeBorrowerNotFound},
		{"borrower exists", WrapBorrowerAlreadyExists("a@b.c"), ErrBorrowerAlreadyExists, ErrCodeBorrowerAlreadyExists},
		{"borrower has loans", WrapBorrowerHasLoans("b"), ErrBorrowerHasLoans, ErrCodeBorrowerHasLoans},
		{"loan not found", WrapLoanNotFound("l"), ErrLoanNotFound, ErrCodeLoanNotFound},
		{"loan not active", WrapLoanNotActive("l", "completed"), ErrLoanNotActive, ErrCodeLoanNotActive},
		{"invalid terms", WrapInvalidLoanTerms("term"), ErrInvalidLoanTerms, ErrCodeInvalidLoanTerms},
		{"invalid status", WrapInvalidLoanStatus("closed", "unknown loan status"), ErrInvalidLoanStatus, ErrCodeInvalidLoanStatus},
		{"repayment not found", WrapRepaymentNotFound("r"), ErrRepaymentNotFound, ErrCodeRepaymentNotFound},
		{"already paid", WrapRepaymentAlreadyPaid("r"), ErrRepaymentAlreadyPaid, ErrCodeRepaymentAlreadyPaid},
		{"cancelled", WrapRepaymentCancelled("r"), ErrRepaymentCancelled, ErrCodeRepaymentCancelled},
		{"invalid amount", WrapInvalidPaymentAmount("-1"), ErrInvalidPaymentAmount, ErrCodeInvalidPaymentAmount},
		{"generation", WrapGenerationInProgress("2024-03-15"), ErrGenerationInProgress, ErrCodeGenerationInProgress},
		{"database", WrapDatabaseError(sql.ErrConnDone), sql.ErrConnDone, ErrCodeDatabaseError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.Equal(t, tt.code, Code(tt.err))
		})
	}
}

func TestCode(t *testing.T) {
	wrapped := fmt.Errorf("create loan: %w", WrapInvalidLoanTerms("principal must be greater than zero"))
	assert.Equal(t, ErrCodeInvalidLoanTerms, Code(wrapped))

	assert.Empty(t, Code(errors.New("plain")))
	assert.Empty(t, Code(nil))
}

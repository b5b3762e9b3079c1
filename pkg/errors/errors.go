package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrBorrowerNotFound      = errors.New("borrower not found")
	ErrBorrowerAlreadyExists = errors.New("borrower already exists")
	ErrBorrowerHasLoans      = errors.New("borrower has active loans")
	ErrLoanNotFound          = errors.New("loan not found")
	ErrLoanNotActive         = errors.New("loan is not active")
	ErrInvalidLoanTerms      = errors.New("invalid loan terms")
	ErrInvalidLoanStatus     = errors.New("invalid loan status change")
	ErrRepaymentNotFound     = errors.New("repayment not found")
	ErrRepaymentAlreadyPaid  = errors.New("repayment is already paid")
	ErrRepaymentCancelled    = errors.New("repayment is cancelled")
	ErrInvalidPaymentAmount  = errors.New("invalid payment amount")
	ErrGenerationInProgress  = errors.New("repayment generation already in progress")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeBorrowerNotFound      = "BORROWER_NOT_FOUND"
	ErrCodeBorrowerAlreadyExists = "BORROWER_ALREADY_EXISTS"
	ErrCodeBorrowerHasLoans      = "BORROWER_HAS_ACTIVE_LOANS"
	ErrCodeLoanNotFound          = "LOAN_NOT_FOUND"
	ErrCodeLoanNotActive         = "LOAN_NOT_ACTIVE"
	ErrCodeInvalidLoanTerms      = "INVALID_LOAN_TERMS"
	ErrCodeInvalidLoanStatus     = "INVALID_LOAN_STATUS"
	ErrCodeRepaymentNotFound     = "REPAYMENT_NOT_FOUND"
	ErrCodeRepaymentAlreadyPaid  = "REPAYMENT_ALREADY_PAID"
	ErrCodeRepaymentCancelled    = "REPAYMENT_CANCELLED"
	ErrCodeInvalidPaymentAmount  = "INVALID_PAYMENT_AMOUNT"
	ErrCodeGenerationInProgress  = "GENERATION_IN_PROGRESS"
	ErrCodeDatabaseError         = "DATABASE_ERROR"
	ErrCodeCacheError            = "CACHE_ERROR"
)

// Wrap common errors with business context
func WrapBorrowerNotFound(borrowerID string) *BusinessError {
	return NewBusinessError(
		ErrCodeBorrowerNotFound,
		fmt.Sprintf("Borrower with ID %s not found", borrowerID),
		ErrBorrowerNotFound,
	)
}

func WrapBorrowerAlreadyExists(email string) *BusinessError {
	return NewBusinessError(
		ErrCodeBorrowerAlreadyExists,
		fmt.Sprintf("Borrower with email %s already exists", email),
		ErrBorrowerAlreadyExists,
	)
}

func WrapBorrowerHasLoans(borrowerID string) *BusinessError {
	return NewBusinessError(
		ErrCodeBorrowerHasLoans,
		fmt.Sprintf("Borrower with ID %s has active loans", borrowerID),
		ErrBorrowerHasLoans,
	)
}

func WrapLoanNotFound(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan with ID %s not found", loanID),
		ErrLoanNotFound,
	)
}

func WrapLoanNotActive(loanID, status string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotActive,
		fmt.Sprintf("Loan with ID %s is %s", loanID, status),
		ErrLoanNotActive,
	)
}

func WrapInvalidLoanTerms(reason string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidLoanTerms,
		reason,
		ErrInvalidLoanTerms,
	)
}

func WrapInvalidLoanStatus(status, reason string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidLoanStatus,
		fmt.Sprintf("Cannot set loan status to %q: %s", status, reason),
		ErrInvalidLoanStatus,
	)
}

func WrapRepaymentNotFound(repaymentID string) *BusinessError {
	return NewBusinessError(
		ErrCodeRepaymentNotFound,
		fmt.Sprintf("Repayment with ID %s not found", repaymentID),
		ErrRepaymentNotFound,
	)
}

func WrapRepaymentAlreadyPaid(repaymentID string) *BusinessError {
	return NewBusinessError(
		ErrCodeRepaymentAlreadyPaid,
		fmt.Sprintf("Repayment with ID %s is already paid", repaymentID),
		ErrRepaymentAlreadyPaid,
	)
}

func WrapRepaymentCancelled(repaymentID string) *BusinessError {
	return NewBusinessError(
		ErrCodeRepaymentCancelled,
		fmt.Sprintf("Repayment with ID %s is cancelled", repaymentID),
		ErrRepaymentCancelled,
	)
}

func WrapInvalidPaymentAmount(amount string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidPaymentAmount,
		fmt.Sprintf("Invalid payment amount: %s", amount),
		ErrInvalidPaymentAmount,
	)
}

func WrapGenerationInProgress(day string) *BusinessError {
	return NewBusinessError(
		ErrCodeGenerationInProgress,
		fmt.Sprintf("Repayments for %s are already being generated", day),
		ErrGenerationInProgress,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}

// Code returns the business error code carried by err, or "" when err is
// not a BusinessError.
func Code(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/segyhp/lending-engine/internal/domain"
	customError "github.com/segyhp/lending-engine/pkg/errors"
	"github.com/segyhp/lending-engine/pkg/response"
)

// LendingService is the application API the handlers drive
type LendingService interface {
	CreateBorrower(ctx context.Context, request *domain.CreateBorrowerRequest) (*domain.Borrower, error)
	GetBorrower(ctx context.Context, borrowerID uuid.UUID) (*domain.Borrower, error)
	GetBorrowerDetails(ctx context.Context, borrowerID uuid.UUID) (*domain.BorrowerDetailsResponse, error)
	ListBorrowers(ctx context.Context, filter domain.BorrowerFilter) (*domain.BorrowerListResponse, error)
	UpdateBorrower(ctx context.Context, borrowerID uuid.UUID, request *domain.UpdateBorrowerRequest) (*domain.Borrower, error)
	DeleteBorrower(ctx context.Context, borrowerID uuid.UUID) (*domain.Borrower, error)
	ScoreBorrower(ctx context.Context, borrowerID uuid.UUID) (*domain.ScoreResponse, error)
	CreateLoan(ctx context.Context, request *domain.CreateLoanRequest) (*domain.CreateLoanResponse, error)
	ListLoans(ctx context.Context, filter domain.LoanFilter) (*domain.LoanListResponse, error)
	UpdateLoanStatus(ctx context.Context, loanID uuid.UUID, request *domain.UpdateLoanStatusRequest) (*domain.Loan, error)
	GetLoanDetails(ctx context.Context, loanID uuid.UUID) (*domain.LoanDetailsResponse, error)
	GetSchedule(ctx context.Context, loanID uuid.UUID) (*domain.ScheduleResponse, error)
	GetOutstanding(ctx context.Context, loanID uuid.UUID) (*domain.OutstandingResponse, error)
	ListRepayments(ctx context.Context, filter domain.RepaymentFilter) (*domain.RepaymentListResponse, error)
	RecordRepayment(ctx context.Context, request *domain.RecordRepaymentRequest) (*domain.Repayment, error)
	MarkRepaymentPaid(ctx context.Context, repaymentID uuid.UUID) (*domain.Repayment, error)
	MarkRepaymentsPaid(ctx context.Context, repaymentIDs []uuid.UUID) (int, error)
	GenerateTodaysRepayments(ctx context.Context) (*domain.GenerateResponse, error)
	MarkOverdueRepayments(ctx context.Context) (int64, error)
	ListDueToday(ctx context.Context) ([]*domain.Repayment, error)
	ListOverdue(ctx context.Context) ([]*domain.Repayment, error)
}

type LendingHandler struct {
	service   LendingService
	validator *validator.Validate
	logger    *slog.Logger
}

func NewLendingHandler(service LendingService, logger *slog.Logger) *LendingHandler {
	return &LendingHandler{
		service:   service,
		validator: NewValidator(),
		logger:    logger,
	}
}

// NewValidator returns a validator that understands decimal amounts and
// employment statuses.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{}, decimal.NullDecimal{})
	_ = v.RegisterValidation("employment_status", func(fl validator.FieldLevel) bool {
		return domain.ParseEmploymentStatus(fl.Field().String()).IsValid()
	})
	return v
}

func decimalValue(field reflect.Value) interface{} {
	switch value := field.Interface().(type) {
	case decimal.Decimal:
		f, _ := value.Float64()
		return f
	case decimal.NullDecimal:
		if !value.Valid {
			return nil
		}
		f, _ := value.Decimal.Float64()
		return f
	}
	return nil
}

// RegisterRoutes mounts the lending API on router
func (h *LendingHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/borrowers", h.CreateBorrower).Methods(http.MethodPost)
	router.HandleFunc("/borrowers", h.ListBorrowers).Methods(http.MethodGet)
	router.HandleFunc("/borrowers/{borrowerId}", h.GetBorrower).Methods(http.MethodGet)
	router.HandleFunc("/borrowers/{borrowerId}", h.UpdateBorrower).Methods(http.MethodPut)
	router.HandleFunc("/borrowers/{borrowerId}", h.DeleteBorrower).Methods(http.MethodDelete)
	router.HandleFunc("/borrowers/{borrowerId}/details", h.GetBorrowerDetails).Methods(http.MethodGet)
	router.HandleFunc("/borrowers/{borrowerId}/score", h.ScoreBorrower).Methods(http.MethodGet)

	router.HandleFunc("/loans", h.CreateLoan).Methods(http.MethodPost)
	router.HandleFunc("/loans", h.ListLoans).Methods(http.MethodGet)
	router.HandleFunc("/loans/{loanId}", h.GetLoanDetails).Methods(http.MethodGet)
	router.HandleFunc("/loans/{loanId}/status", h.UpdateLoanStatus).Methods(http.MethodPut)
	router.HandleFunc("/loans/{loanId}/schedule", h.GetSchedule).Methods(http.MethodGet)
	router.HandleFunc("/loans/{loanId}/outstanding", h.GetOutstanding).Methods(http.MethodGet)

	router.HandleFunc("/repayments", h.RecordRepayment).Methods(http.MethodPost)
	router.HandleFunc("/repayments", h.ListRepayments).Methods(http.MethodGet)
	router.HandleFunc("/repayments/today-due", h.ListDueToday).Methods(http.MethodGet)
	router.HandleFunc("/repayments/overdue", h.ListOverdue).Methods(http.MethodGet)
	router.HandleFunc("/repayments/generate-today", h.GenerateTodaysRepayments).Methods(http.MethodPost)
	router.HandleFunc("/repayments/mark-overdue", h.MarkOverdueRepayments).Methods(http.MethodPost)
	router.HandleFunc("/repayments/bulk/paid", h.MarkRepaymentsPaid).Methods(http.MethodPut)
	router.HandleFunc("/repayments/{repaymentId}/paid", h.MarkRepaymentPaid).Methods(http.MethodPut)
}

// CreateBorrower handles POST /borrowers
func (h *LendingHandler) CreateBorrower(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateBorrowerRequest
	if !h.decode(w, r, &request) {
		return
	}

	borrower, err := h.service.CreateBorrower(r.Context(), &request)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	response.Created(w, borrower)
}

// GetBorrower handles GET /borrowers/{borrowerId}
func (h *LendingHandler) GetBorrower(w http.ResponseWriter, r *http.Request) {
	borrowerID, ok := pathID(w, r, "borrowerId")
	if !ok {
		return
	}

	borrower, err := h.service.GetBorrower(r.Context(), borrowerID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	response.Success(w, borrower)
}

// ListBorrowers handles GET /borrowers?search=&risk_rating=&page=&limit=
func (h *LendingHandler) ListBorrowers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := domain.BorrowerFilter{
		Search:     query.Get("search"),
		RiskRating: domain.RiskRating(anyValue(query.Get("risk_rating"))),
	}
	if !h.listParams(w, r, &filter.PageRequest, &filter) {
		return
	}

	result, err := h.service.ListBorrowers(r.Context(), filter)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	response.Success(w, result)
}

// GetBorrowerDetails handles GET /borrowers/{borrowerId}/details
func (h *LendingHandler) GetBorrowerDetails(w http.ResponseWriter, r *http.Request) {
	borrowerID, ok := pathID(w, r, "borrowerId")
	if !ok {
		return
	}

	details, err := h.service.GetBorrowerDetails(r.Context(), borrowerID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	response.Success(w, details)
}

// UpdateBorrower handles PUT /borrowers/{borrowerId}
func (h *LendingHandler) UpdateBorrower(w http.ResponseWriter, r *http.Request) {
	borrowerID, ok := pathID(w, r, "borrowerId")
	if !ok {
		return
	}

	var request domain.UpdateBorrowerRequest
	if !h.decode(w, r, &request) {
		return
	}

	borrower, err := h.service.UpdateBorrower(r.Context(), borrowerID, &request)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	response.Success(w, borrower)
}

// DeleteBorrower handles DELETE /borrowers/{borrowerId}
func (h *LendingHandler) DeleteBorrower(w http.ResponseWriter, r *http.Request) {
	borrowerID, ok := pathID(w, r, "borrowerId")
	if !ok {
		return
	}

	borrower, err := h.service.DeleteBorrower(r.Context(), borrowerID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	response.Success(w, borrower)
}

// ScoreBorrower handles GET /borrowers/{borrowerId}/score
func (h *LendingHandler) ScoreBorrower(w http.ResponseWriter, r *http.Request) {
	borrowerID, ok := pathID(w, r, "borrowerId")
	if !ok {
		return
	}

	score, err := h.service.ScoreBorrower(r.Context(), borrowerID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	response.Success(w, score)
}

// CreateLoan handles POST /loans
func (h *LendingHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateLoanRequest
	if !h.decode(w, r, &request) {
		return
	}

	result, err := h.service.CreateLoan(r.Context(), &request)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	response.Created(w, result)
}

// ListLoans handles GET /loans?status=&repayment_schedule=&search=&page=&limit=
func (h *LendingHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := domain.LoanFilter{
		Status:            domain.LoanStatus(anyValue(query.Get("status"))),
		RepaymentSchedule: domain.Frequency(anyValue(query.Get("repayment_schedule"))),
		Search:            query.Get("search"),
	}
	if !h.listParams(w, r, &filter.PageRequest, &filter) {
		return
	}

	result, err := h.service.ListLoans(r.Context(), filter)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	response.Success(w, result)
}

// UpdateLoanStatus handles PUT /loans/{loanId}/status
func (h *LendingHandler) UpdateLoanStatus(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathID(w, r, "loanId")
	if !ok {
		return
	}

	var request domain.UpdateLoanStatusRequest
	if !h.decode(w, r, &request) {
		return
	}

	loan, err := h.service.UpdateLoanStatus(r.Context(), loanID, &request)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	response.Success(w, loan)
}

// GetLoanDetails handles GET /loans/{loanId}
func (h *LendingHandler) GetLoanDetails(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathID(w, r, "loanId")
	if !ok {
		return
	}

	details, err := h.service.GetLoanDetails(r.Context(), loanID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	response.Success(w, details)
}

// GetSchedule handles GET /loans/{loanId}/schedule
func (h *LendingHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathID(w, r, "loanId")
	if !ok {
		return
	}

	result, err := h.service.GetSchedule(r.Context(), loanID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	response.Success(w, result)
}

// GetOutstanding handles GET /loans/{loanId}/outstanding
func (h *LendingHandler) GetOutstanding(w http.ResponseWriter, r *http.Request) {
	loanID, ok := pathID(w, r, "loanId")
	if !ok {
		return
	}

	outstanding, err := h.service.GetOutstanding(r.Context(), loanID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	response.Success(w, outstanding)
}

// ListRepayments handles GET /repayments?status=&type=&search=&page=&limit=
func (h *LendingHandler) ListRepayments(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := domain.RepaymentFilter{
		Status: domain.RepaymentStatus(anyValue(query.Get("status"))),
		Type:   domain.Frequency(anyValue(query.Get("type"))),
		Search: query.Get("search"),
	}
	if !h.listParams(w, r, &filter.PageRequest, &filter) {
		return
	}

	result, err := h.service.ListRepayments(r.Context(), filter)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	response.Success(w, result)
}

// RecordRepayment handles POST /repayments
func (h *LendingHandler) RecordRepayment(w http.ResponseWriter, r *http.Request) {
	var request domain.RecordRepaymentRequest
	if !h.decode(w, r, &request) {
		return
	}

	repayment, err := h.service.RecordRepayment(r.Context(), &request)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	response.Created(w, repayment)
}

// MarkRepaymentPaid handles PUT /repayments/{repaymentId}/paid
func (h *LendingHandler) MarkRepaymentPaid(w http.ResponseWriter, r *http.Request) {
	repaymentID, ok := pathID(w, r, "repaymentId")
	if !ok {
		return
	}

	repayment, err := h.service.MarkRepaymentPaid(r.Context(), repaymentID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	response.Success(w, repayment)
}

// MarkRepaymentsPaid handles PUT /repayments/bulk/paid
func (h *LendingHandler) MarkRepaymentsPaid(w http.ResponseWriter, r *http.Request) {
	var request domain.MarkPaidRequest
	if !h.decode(w, r, &request) {
		return
	}

	updated, err := h.service.MarkRepaymentsPaid(r.Context(), request.RepaymentIDs)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	response.Success(w, domain.MarkPaidResponse{Updated: updated})
}

// GenerateTodaysRepayments handles POST /repayments/generate-today
func (h *LendingHandler) GenerateTodaysRepayments(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.GenerateTodaysRepayments(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	response.Created(w, result)
}

// MarkOverdueRepayments handles POST /repayments/mark-overdue
func (h *LendingHandler) MarkOverdueRepayments(w http.ResponseWriter, r *http.Request) {
	updated, err := h.service.MarkOverdueRepayments(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	response.Success(w, domain.OverdueResponse{Updated: updated})
}

// ListDueToday handles GET /repayments/today-due
func (h *LendingHandler) ListDueToday(w http.ResponseWriter, r *http.Request) {
	repayments, err := h.service.ListDueToday(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	response.Success(w, repayments)
}

// ListOverdue handles GET /repayments/overdue
func (h *LendingHandler) ListOverdue(w http.ResponseWriter, r *http.Request) {
	repayments, err := h.service.ListOverdue(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	response.Success(w, repayments)
}

// decode reads and validates a JSON body, writing a 400 on failure
func (h *LendingHandler) decode(w http.ResponseWriter, r *http.Request, request interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return false
	}

	if err := h.validator.Struct(request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return false
	}

	return true
}

// listParams reads page and limit into page and validates filter, writing
// a 400 on failure.
func (h *LendingHandler) listParams(w http.ResponseWriter, r *http.Request, page *domain.PageRequest, filter interface{}) bool {
	query := r.URL.Query()
	for name, target := range map[string]*int{"page": &page.Page, "limit": &page.Limit} {
		raw := query.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.BadRequest(w, "Invalid "+name, err)
			return false
		}
		*target = n
	}

	if err := h.validator.Struct(filter); err != nil {
		response.BadRequest(w, "Invalid filter", err)
		return false
	}

	return true
}

// anyValue treats "all" as no filter
func anyValue(v string) string {
	if v == "all" {
		return ""
	}
	return v
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.BadRequest(w, "Invalid "+name, err)
		return uuid.Nil, false
	}
	return id, true
}

// handleError maps business errors to HTTP statuses
func (h *LendingHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	code := customError.Code(err)

	var status int
	switch code {
	case customError.ErrCodeBorrowerNotFound, customError.ErrCodeLoanNotFound, customError.ErrCodeRepaymentNotFound:
		status = http.StatusNotFound
	case customError.ErrCodeBorrowerAlreadyExists, customError.ErrCodeBorrowerHasLoans, customError.ErrCodeLoanNotActive,
		customError.ErrCodeRepaymentAlreadyPaid, customError.ErrCodeRepaymentCancelled,
		customError.ErrCodeGenerationInProgress:
		status = http.StatusConflict
	case customError.ErrCodeInvalidLoanTerms, customError.ErrCodeInvalidLoanStatus, customError.ErrCodeInvalidPaymentAmount:
		status = http.StatusBadRequest
	default:
		h.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		response.InternalServerError(w, "Internal server error", nil)
		return
	}

	var be *customError.BusinessError
	message := err.Error()
	if errors.As(err, &be) {
		message = be.Message
	}

	response.ErrorWithCode(w, status, code, message)
}

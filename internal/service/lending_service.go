package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/segyhp/lending-engine/internal/cache"
	"github.com/segyhp/lending-engine/internal/config"
	"github.com/segyhp/lending-engine/internal/domain"
	"github.com/segyhp/lending-engine/internal/metrics"
	"github.com/segyhp/lending-engine/internal/repository"
	"github.com/segyhp/lending-engine/internal/schedule"
	"github.com/segyhp/lending-engine/internal/scoring"
	customError "github.com/segyhp/lending-engine/pkg/errors"
	"github.com/segyhp/lending-engine/pkg/utils"
)

type LendingService struct {
	BorrowerRepo  repository.BorrowerRepository
	LoanRepo      repository.LoanRepository
	RepaymentRepo repository.RepaymentRepository
	cache         cache.Store
	config        *config.Config
	logger        *slog.Logger
	metrics       *metrics.Metrics
	now           func() time.Time
}

func NewLendingService(
	borrowerRepo repository.BorrowerRepository,
	loanRepo repository.LoanRepository,
	repaymentRepo repository.RepaymentRepository,
	store cache.Store,
	config *config.Config,
	logger *slog.Logger,
) *LendingService {
	return &LendingService{
		BorrowerRepo:  borrowerRepo,
		LoanRepo:      loanRepo,
		RepaymentRepo: repaymentRepo,
		cache:         store,
		config:        config,
		logger:        logger,
		metrics:       metrics.New(),
		now:           time.Now,
	}
}

// WithMetrics records workflow counters on m instead of a private registry.
func (s *LendingService) WithMetrics(m *metrics.Metrics) *LendingService {
	s.metrics = m
	return s
}

// WithClock replaces the time source. Used by tests and the CLI.
func (s *LendingService) WithClock(now func() time.Time) *LendingService {
	s.now = now
	return s
}

// localNow is the current instant in the configured zone. Day comparisons
// on installments take their calendar day from it.
func (s *LendingService) localNow() time.Time {
	return s.now().In(s.config.Location())
}

// today is the start of the current calendar day in the configured zone
func (s *LendingService) today() time.Time {
	return domain.DateOf(s.localNow())
}

// CreateBorrower registers a borrower with an initial credit score
func (s *LendingService) CreateBorrower(ctx context.Context, request *domain.CreateBorrowerRequest) (*domain.Borrower, error) {
	existing, err := s.BorrowerRepo.GetByEmail(ctx, request.Email)
	if err == nil && existing != nil {
		return nil, customError.WrapBorrowerAlreadyExists(request.Email)
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapDatabaseError(err)
	}

	now := s.now()
	borrower := &domain.Borrower{
		ID:              uuid.New(),
		Name:            request.Name,
		Email:           request.Email,
		Phone:           request.Phone,
		Address:         request.Address,
		IDProof:         request.IDProof,
		BorrowerProfile: request.Profile(),
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	borrower.ApplyScore(scoring.InitialScore(borrower.BorrowerProfile))

	if err := s.BorrowerRepo.Create(ctx, borrower); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.logger.InfoContext(ctx, "borrower created",
		"borrower_id", borrower.ID,
		"credit_score", borrower.CreditScore,
		"risk_rating", borrower.RiskRating,
	)

	return borrower, nil
}

// GetBorrower retrieves a borrower by ID
func (s *LendingService) GetBorrower(ctx context.Context, borrowerID uuid.UUID) (*domain.Borrower, error) {
	return s.getBorrower(ctx, borrowerID)
}

// GetBorrowerDetails returns a borrower with every loan and repayment on
// record. Installments are classified as of now.
func (s *LendingService) GetBorrowerDetails(ctx context.Context, borrowerID uuid.UUID) (*domain.BorrowerDetailsResponse, error) {
	borrower, err := s.getBorrower(ctx, borrowerID)
	if err != nil {
		return nil, err
	}

	var (
		loans      []*domain.Loan
		repayments []*domain.Repayment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		loans, err = s.LoanRepo.ListByBorrower(gctx, borrowerID)
		return err
	})
	g.Go(func() error {
		var err error
		repayments, err = s.RepaymentRepo.ListByBorrower(gctx, borrowerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	now := s.localNow()
	for _, r := range repayments {
		r.Status = r.EffectiveStatus(now)
	}

	return &domain.BorrowerDetailsResponse{Borrower: borrower, Loans: loans, Repayments: repayments}, nil
}

// ListBorrowers returns one page of borrowers, newest first
func (s *LendingService) ListBorrowers(ctx context.Context, filter domain.BorrowerFilter) (*domain.BorrowerListResponse, error) {
	borrowers, total, err := s.BorrowerRepo.List(ctx, filter)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return &domain.BorrowerListResponse{
		Borrowers: borrowers,
		PageInfo:  domain.NewPageInfo(filter.PageRequest, total),
	}, nil
}

// UpdateBorrower changes a borrower's details. The stored score is
// recomputed since the scoring inputs may have changed.
func (s *LendingService) UpdateBorrower(ctx context.Context, borrowerID uuid.UUID, request *domain.UpdateBorrowerRequest) (*domain.Borrower, error) {
	borrower, err := s.getBorrower(ctx, borrowerID)
	if err != nil {
		return nil, err
	}

	request.Apply(borrower)
	borrower.UpdatedAt = s.now()

	if err := s.BorrowerRepo.Update(ctx, borrower); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.refreshScore(ctx, borrower)

	s.logger.InfoContext(ctx, "borrower updated", "borrower_id", borrower.ID)

	return borrower, nil
}

// DeleteBorrower deactivates a borrower. Borrowers with an active loan
// cannot be deactivated; deactivating twice is a no-op.
func (s *LendingService) DeleteBorrower(ctx context.Context, borrowerID uuid.UUID) (*domain.Borrower, error) {
	borrower, err := s.getBorrower(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	if !borrower.IsActive {
		return borrower, nil
	}

	loans, err := s.LoanRepo.ListByBorrower(ctx, borrowerID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	for _, loan := range loans {
		if loan.Status == domain.LoanStatusActive {
			return nil, customError.WrapBorrowerHasLoans(borrowerID.String())
		}
	}

	if err := s.BorrowerRepo.Deactivate(ctx, borrowerID); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	borrower.IsActive = false
	borrower.UpdatedAt = s.now()

	s.invalidateScore(ctx, borrowerID)
	s.logger.InfoContext(ctx, "borrower deactivated", "borrower_id", borrowerID)

	return borrower, nil
}

// ScoreBorrower recomputes a borrower's credit score from their history,
// persists score and risk rating, and caches the assessment.
func (s *LendingService) ScoreBorrower(ctx context.Context, borrowerID uuid.UUID) (*domain.ScoreResponse, error) {
	cached, found, err := s.cache.GetAssessment(ctx, borrowerID)
	switch {
	case err != nil:
		s.metrics.ScoreCacheLookups.WithLabelValues(metrics.CacheError).Inc()
		s.logger.WarnContext(ctx, "score cache read failed", "borrower_id", borrowerID, "error", err)
	case found:
		s.metrics.ScoreCacheLookups.WithLabelValues(metrics.CacheHit).Inc()
		return scoreResponse(borrowerID, cached), nil
	default:
		s.metrics.ScoreCacheLookups.WithLabelValues(metrics.CacheMiss).Inc()
	}

	borrower, err := s.getBorrower(ctx, borrowerID)
	if err != nil {
		return nil, err
	}

	loans, err := s.LoanRepo.ListByBorrower(ctx, borrowerID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	repayments, err := s.RepaymentRepo.ListByBorrower(ctx, borrowerID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	assessment := scoring.Evaluate(borrower.BorrowerProfile, loans, repayments, s.localNow(), s.config.GetBaseInterestRate())

	if err := s.BorrowerRepo.UpdateScore(ctx, borrowerID, assessment.Score, assessment.RiskRating); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if err := s.cache.SetAssessment(ctx, borrowerID, &assessment, s.config.GetScoreCacheTTL()); err != nil {
		s.logger.WarnContext(ctx, "score cache write failed", "borrower_id", borrowerID, "error", err)
	}

	s.logger.InfoContext(ctx, "borrower scored",
		"borrower_id", borrowerID,
		"credit_score", assessment.Score,
		"category", assessment.Info.Category,
		"loans", len(loans),
		"repayments", len(repayments),
	)

	return scoreResponse(borrowerID, &assessment), nil
}

func scoreResponse(borrowerID uuid.UUID, assessment *scoring.Assessment) *domain.ScoreResponse {
	return &domain.ScoreResponse{
		BorrowerID:            borrowerID,
		CreditScore:           assessment.Score,
		Category:              assessment.Info.Category,
		Description:           assessment.Info.Description,
		RiskRating:            assessment.RiskRating,
		SuggestedInterestRate: assessment.SuggestedRate,
		AsOf:                  assessment.AsOf,
	}
}

// CreateLoan creates a loan with its full repayment schedule
func (s *LendingService) CreateLoan(ctx context.Context, request *domain.CreateLoanRequest) (*domain.CreateLoanResponse, error) {
	switch {
	case !request.Principal.IsPositive():
		return nil, customError.WrapInvalidLoanTerms("principal must be greater than zero")
	case request.InterestRate.IsNegative():
		return nil, customError.WrapInvalidLoanTerms("interest rate must not be negative")
	case request.TermMonths <= 0:
		return nil, customError.WrapInvalidLoanTerms("loan term must be at least one month")
	}

	borrower, err := s.getBorrower(ctx, request.BorrowerID)
	if err != nil {
		return nil, err
	}
	if !borrower.IsActive {
		return nil, customError.WrapInvalidLoanTerms("borrower is inactive")
	}

	now := s.now()
	startDate := request.StartDate
	if startDate.IsZero() {
		startDate = s.today()
	}

	loan := &domain.Loan{
		ID:                uuid.New(),
		BorrowerID:        borrower.ID,
		BorrowerName:      borrower.Name,
		Principal:         request.Principal,
		InterestRate:      request.InterestRate,
		TermMonths:        request.TermMonths,
		RepaymentSchedule: request.RepaymentSchedule.OrDefault(),
		StartDate:         startDate,
		EndDate:           schedule.EndDate(startDate, request.TermMonths),
		Status:            domain.LoanStatusActive,
		TotalDue:          utils.RoundCurrency(schedule.TotalDue(request.Principal, request.InterestRate, request.TermMonths)),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	loan.Recalculate()

	repayments := schedule.Generate(loan)
	for _, r := range repayments {
		r.CreatedAt = now
	}

	if err := s.LoanRepo.CreateWithSchedule(ctx, loan, repayments); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.invalidateScore(ctx, borrower.ID)
	s.metrics.LoansCreated.Inc()

	s.logger.InfoContext(ctx, "loan created",
		"loan_id", loan.ID,
		"borrower_id", borrower.ID,
		"total_due", loan.TotalDue.String(),
		"installments", len(repayments),
	)

	return &domain.CreateLoanResponse{Loan: loan, Schedule: repayments}, nil
}

// GetLoanDetails returns a loan with every installment classified as of now
func (s *LendingService) GetLoanDetails(ctx context.Context, loanID uuid.UUID) (*domain.LoanDetailsResponse, error) {
	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	repayments, err := s.classifiedRepayments(ctx, loanID)
	if err != nil {
		return nil, err
	}

	return &domain.LoanDetailsResponse{Loan: loan, Repayments: repayments}, nil
}

// ListLoans returns one page of loans, newest first
func (s *LendingService) ListLoans(ctx context.Context, filter domain.LoanFilter) (*domain.LoanListResponse, error) {
	loans, total, err := s.LoanRepo.List(ctx, filter)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return &domain.LoanListResponse{
		Loans:    loans,
		PageInfo: domain.NewPageInfo(filter.PageRequest, total),
	}, nil
}

// UpdateLoanStatus applies an administrative status change to a loan and
// recomputes the borrower's stored score.
func (s *LendingService) UpdateLoanStatus(ctx context.Context, loanID uuid.UUID, request *domain.UpdateLoanStatusRequest) (*domain.Loan, error) {
	if !request.Status.IsValid() {
		return nil, customError.WrapInvalidLoanStatus(string(request.Status), "unknown loan status")
	}

	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	previous := loan.Status
	if err := loan.SetStatus(request.Status); err != nil {
		return nil, err
	}
	if loan.Status == previous {
		return loan, nil
	}

	if err := s.LoanRepo.Update(ctx, loan); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.refreshScoreOf(ctx, loan.BorrowerID)

	s.logger.InfoContext(ctx, "loan status updated",
		"loan_id", loan.ID,
		"from", previous,
		"to", loan.Status,
	)

	return loan, nil
}

// GetSchedule returns the installments of a loan ordered by due date
func (s *LendingService) GetSchedule(ctx context.Context, loanID uuid.UUID) (*domain.ScheduleResponse, error) {
	if _, err := s.getLoan(ctx, loanID); err != nil {
		return nil, err
	}

	repayments, err := s.classifiedRepayments(ctx, loanID)
	if err != nil {
		return nil, err
	}

	return &domain.ScheduleResponse{LoanID: loanID, Schedule: repayments}, nil
}

// GetOutstanding returns what is left to pay on a loan
func (s *LendingService) GetOutstanding(ctx context.Context, loanID uuid.UUID) (*domain.OutstandingResponse, error) {
	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	return &domain.OutstandingResponse{
		LoanID:      loan.ID,
		Outstanding: loan.Outstanding(),
		Status:      loan.Status,
	}, nil
}

// MarkRepaymentPaid settles one installment and credits its amount to the loan
func (s *LendingService) MarkRepaymentPaid(ctx context.Context, repaymentID uuid.UUID) (*domain.Repayment, error) {
	repayment, err := s.RepaymentRepo.GetByID(ctx, repaymentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapRepaymentNotFound(repaymentID.String())
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if err := repayment.MarkPaid(s.now()); err != nil {
		return nil, err
	}

	if err := s.RepaymentRepo.Update(ctx, repayment); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if err := s.creditLoan(ctx, repayment.LoanID, repayment); err != nil {
		return nil, err
	}
	s.metrics.RepaymentsPaid.Inc()

	s.logger.InfoContext(ctx, "repayment marked paid",
		"repayment_id", repayment.ID,
		"loan_id", repayment.LoanID,
		"amount", repayment.Amount.String(),
	)

	return repayment, nil
}

// MarkRepaymentsPaid settles several installments. Installments that are
// unknown, already paid or cancelled are skipped; the number settled is returned.
func (s *LendingService) MarkRepaymentsPaid(ctx context.Context, repaymentIDs []uuid.UUID) (int, error) {
	updated := 0
	for _, id := range repaymentIDs {
		_, err := s.MarkRepaymentPaid(ctx, id)
		switch customError.Code(err) {
		case "":
			if err != nil {
				return updated, err
			}
			updated++
		case customError.ErrCodeRepaymentNotFound, customError.ErrCodeRepaymentAlreadyPaid, customError.ErrCodeRepaymentCancelled:
			s.logger.DebugContext(ctx, "repayment skipped", "repayment_id", id, "error", err)
		default:
			return updated, err
		}
	}

	return updated, nil
}

// RecordRepayment books a manual payment against an active loan. The
// repayment is due today and already paid.
func (s *LendingService) RecordRepayment(ctx context.Context, request *domain.RecordRepaymentRequest) (*domain.Repayment, error) {
	if !request.Amount.IsPositive() {
		return nil, customError.WrapInvalidPaymentAmount(request.Amount.String())
	}

	loan, err := s.getLoan(ctx, request.LoanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != domain.LoanStatusActive {
		return nil, customError.WrapLoanNotActive(loan.ID.String(), string(loan.Status))
	}

	now := s.now()
	paymentDate := now
	if request.PaymentDate != nil {
		paymentDate = *request.PaymentDate
	}

	repayment := &domain.Repayment{
		ID:                uuid.New(),
		LoanID:            loan.ID,
		BorrowerID:        loan.BorrowerID,
		BorrowerName:      loan.BorrowerName,
		Amount:            request.Amount,
		DueDate:           s.today(),
		PaymentDate:       &paymentDate,
		Status:            domain.RepaymentStatusPaid,
		Type:              loan.RepaymentSchedule.OrDefault(),
		InstallmentNumber: 1,
		TotalInstallments: 1,
		Description:       "manual repayment",
		CreatedAt:         now,
	}

	if err := s.RepaymentRepo.Create(ctx, repayment); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if err := loan.ApplyPayment(repayment.Amount); err != nil {
		return nil, err
	}
	if err := s.LoanRepo.Update(ctx, loan); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.refreshScoreOf(ctx, loan.BorrowerID)
	s.metrics.RepaymentsPaid.Inc()

	s.logger.InfoContext(ctx, "repayment recorded",
		"repayment_id", repayment.ID,
		"loan_id", loan.ID,
		"amount", repayment.Amount.String(),
		"loan_status", loan.Status,
	)

	return repayment, nil
}

// ListRepayments returns one page of repayments ordered by due date.
// Status filtering and the returned statuses follow the current day.
func (s *LendingService) ListRepayments(ctx context.Context, filter domain.RepaymentFilter) (*domain.RepaymentListResponse, error) {
	filter.AsOf = s.today()

	repayments, total, err := s.RepaymentRepo.List(ctx, filter)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	now := s.localNow()
	for _, r := range repayments {
		r.Status = r.EffectiveStatus(now)
	}

	return &domain.RepaymentListResponse{
		Repayments: repayments,
		PageInfo:   domain.NewPageInfo(filter.PageRequest, total),
	}, nil
}

// GenerateTodaysRepayments issues the installment due today for every active
// loan that does not have one yet. Concurrent runs for the same day are
// rejected with ErrGenerationInProgress.
func (s *LendingService) GenerateTodaysRepayments(ctx context.Context) (*domain.GenerateResponse, error) {
	now := s.localNow()
	today := domain.DateOf(now)
	lockKey := cache.GenerationKey(today)

	acquired, err := s.cache.AcquireOnce(ctx, lockKey, s.config.GetGenerationLockTTL())
	switch {
	case err != nil:
		s.logger.WarnContext(ctx, "generation lock unavailable, relying on duplicate check", "error", err)
	case !acquired:
		return nil, customError.WrapGenerationInProgress(today.Format("2006-01-02"))
	default:
		defer func() {
			if err := s.cache.Release(context.WithoutCancel(ctx), lockKey); err != nil {
				s.logger.WarnContext(ctx, "generation lock release failed", "error", err)
			}
		}()
	}

	loans, err := s.LoanRepo.ListActive(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	borrowers := make(map[uuid.UUID]*domain.Borrower)
	generated := make([]*domain.Repayment, 0)

	for _, loan := range loans {
		existing, err := s.RepaymentRepo.ListByLoan(ctx, loan.ID)
		if err != nil {
			return nil, customError.WrapDatabaseError(err)
		}

		borrower, err := s.cachedBorrower(ctx, borrowers, loan.BorrowerID)
		if err != nil {
			return nil, err
		}

		repayment := schedule.GenerateDueToday(loan, borrower, existing, now)
		if repayment == nil {
			continue
		}

		if err := s.RepaymentRepo.Create(ctx, repayment); err != nil {
			return nil, customError.WrapDatabaseError(err)
		}
		generated = append(generated, repayment)
	}
	s.metrics.RepaymentsGenerated.Add(float64(len(generated)))

	s.logger.InfoContext(ctx, "due-today repayments generated",
		"day", today.Format("2006-01-02"),
		"active_loans", len(loans),
		"generated", len(generated),
	)

	return &domain.GenerateResponse{
		Generated:   len(generated),
		ActiveLoans: len(loans),
		Repayments:  generated,
	}, nil
}

// MarkOverdueRepayments stores the overdue status on pending installments
// whose due day has passed, returning how many were updated.
func (s *LendingService) MarkOverdueRepayments(ctx context.Context) (int64, error) {
	now := s.localNow()

	unpaid, err := s.RepaymentRepo.ListUnpaidBefore(ctx, s.today())
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	var ids []uuid.UUID
	for _, r := range unpaid {
		if r.Status == domain.RepaymentStatusPending && r.EffectiveStatus(now) == domain.RepaymentStatusOverdue {
			ids = append(ids, r.ID)
		}
	}

	updated, err := s.RepaymentRepo.MarkOverdue(ctx, ids)
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	s.metrics.RepaymentsOverdue.Add(float64(updated))
	s.logger.InfoContext(ctx, "overdue repayments marked", "candidates", len(ids), "updated", updated)

	return updated, nil
}

// ListDueToday returns the pending installments due today
func (s *LendingService) ListDueToday(ctx context.Context) ([]*domain.Repayment, error) {
	today := s.today()

	due, err := s.RepaymentRepo.ListDueBetween(ctx, today, today.AddDate(0, 0, 1))
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	pending := make([]*domain.Repayment, 0, len(due))
	for _, r := range due {
		if r.Status == domain.RepaymentStatusPending {
			pending = append(pending, r)
		}
	}

	return pending, nil
}

// ListOverdue returns unpaid installments whose due day has passed
func (s *LendingService) ListOverdue(ctx context.Context) ([]*domain.Repayment, error) {
	now := s.localNow()

	unpaid, err := s.RepaymentRepo.ListUnpaidBefore(ctx, s.today())
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	overdue := make([]*domain.Repayment, 0, len(unpaid))
	for _, r := range unpaid {
		if r.EffectiveStatus(now) == domain.RepaymentStatusOverdue {
			r.Status = domain.RepaymentStatusOverdue
			overdue = append(overdue, r)
		}
	}

	return overdue, nil
}

func (s *LendingService) getBorrower(ctx context.Context, borrowerID uuid.UUID) (*domain.Borrower, error) {
	borrower, err := s.BorrowerRepo.GetByID(ctx, borrowerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapBorrowerNotFound(borrowerID.String())
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return borrower, nil
}

func (s *LendingService) getLoan(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error) {
	loan, err := s.LoanRepo.GetByID(ctx, loanID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapLoanNotFound(loanID.String())
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return loan, nil
}

// cachedBorrower memoizes borrower lookups for one run. A missing borrower
// yields nil so the loan's own borrower fields are used.
func (s *LendingService) cachedBorrower(ctx context.Context, seen map[uuid.UUID]*domain.Borrower, borrowerID uuid.UUID) (*domain.Borrower, error) {
	if borrower, ok := seen[borrowerID]; ok {
		return borrower, nil
	}

	borrower, err := s.BorrowerRepo.GetByID(ctx, borrowerID)
	if errors.Is(err, sql.ErrNoRows) {
		borrower, err = nil, nil
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	seen[borrowerID] = borrower
	return borrower, nil
}

func (s *LendingService) classifiedRepayments(ctx context.Context, loanID uuid.UUID) ([]*domain.Repayment, error) {
	repayments, err := s.RepaymentRepo.ListByLoan(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	now := s.localNow()
	for _, r := range repayments {
		r.Status = r.EffectiveStatus(now)
	}

	return repayments, nil
}

func (s *LendingService) creditLoan(ctx context.Context, loanID uuid.UUID, repayment *domain.Repayment) error {
	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return err
	}

	if err := loan.ApplyPayment(repayment.Amount); err != nil {
		return err
	}

	if err := s.LoanRepo.Update(ctx, loan); err != nil {
		return customError.WrapDatabaseError(err)
	}

	s.refreshScoreOf(ctx, loan.BorrowerID)
	return nil
}

func (s *LendingService) refreshScoreOf(ctx context.Context, borrowerID uuid.UUID) {
	borrower, err := s.BorrowerRepo.GetByID(ctx, borrowerID)
	if err != nil {
		s.invalidateScore(ctx, borrowerID)
		s.logger.WarnContext(ctx, "rescore skipped, borrower unavailable", "borrower_id", borrowerID, "error", err)
		return
	}
	s.refreshScore(ctx, borrower)
}

// refreshScore recomputes the borrower's stored score and risk rating from
// their full history and drops the cached assessment. Failures are logged
// and leave the previous score in place.
func (s *LendingService) refreshScore(ctx context.Context, borrower *domain.Borrower) {
	s.invalidateScore(ctx, borrower.ID)

	loans, err := s.LoanRepo.ListByBorrower(ctx, borrower.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "rescore failed", "borrower_id", borrower.ID, "error", err)
		return
	}

	repayments, err := s.RepaymentRepo.ListByBorrower(ctx, borrower.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "rescore failed", "borrower_id", borrower.ID, "error", err)
		return
	}

	score := scoring.RescoreBorrower(borrower.ID, []*domain.Borrower{borrower}, loans, repayments, s.localNow())
	rating := domain.DeriveRiskRating(score)
	if score == borrower.CreditScore && rating == borrower.RiskRating {
		return
	}

	if err := s.BorrowerRepo.UpdateScore(ctx, borrower.ID, score, rating); err != nil {
		s.logger.WarnContext(ctx, "rescore failed", "borrower_id", borrower.ID, "error", err)
		return
	}

	s.logger.DebugContext(ctx, "borrower rescored",
		"borrower_id", borrower.ID,
		"from", borrower.CreditScore,
		"to", score,
	)
	borrower.ApplyScore(score)
}

func (s *LendingService) invalidateScore(ctx context.Context, borrowerID uuid.UUID) {
	if err := s.cache.InvalidateAssessment(ctx, borrowerID); err != nil {
		s.logger.WarnContext(ctx, "score cache invalidation failed", "borrower_id", borrowerID, "error", err)
	}
}

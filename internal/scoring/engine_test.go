package scoring

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/segyhp/lending-engine/internal/domain"
)

var asOf = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func years(v float64) *float64 { return &v }

func income(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}

func activeLoan(borrowerID uuid.UUID, start time.Time, outstanding int64) *domain.Loan {
	return &domain.Loan{
		ID:         uuid.New(),
		BorrowerID: borrowerID,
		StartDate:  start,
		Status:     domain.LoanStatusActive,
		TotalDue:   decimal.NewFromInt(outstanding),
		PaidAmount: decimal.Zero,
	}
}

func paidOnTime(loanID uuid.UUID, due time.Time) *domain.Repayment {
	paid := due.AddDate(0, 0, -1)
	return &domain.Repayment{LoanID: loanID, DueDate: due, PaymentDate: &paid, Status: domain.RepaymentStatusPaid}
}

func paidLate(loanID uuid.UUID, due time.Time) *domain.Repayment {
	paid := due.AddDate(0, 0, 3)
	return &domain.Repayment{LoanID: loanID, DueDate: due, PaymentDate: &paid, Status: domain.RepaymentStatusPaid}
}

func withStatus(loanID uuid.UUID, due time.Time, status domain.RepaymentStatus) *domain.Repayment {
	return &domain.Repayment{LoanID: loanID, DueDate: due, Status: status}
}

func repeat(n int, build func() *domain.Repayment) []*domain.Repayment {
	out := make([]*domain.Repayment, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, build())
	}
	return out
}

func TestInitialScore(t *testing.T) {
	tests := []struct {
		name     string
		profile  domain.BorrowerProfile
		expected int
	}{
		{
			name: "strong profile is capped at 750",
			profile: domain.BorrowerProfile{
				MonthlyIncome:    income(60000),
				EmploymentStatus: domain.EmploymentEmployed,
				EmploymentYears:  years(6),
				YearsAtAddress:   years(5),
			},
			expected: 750, // 650+40+30+20+15 = 755
		},
		{
			name: "four years at address earns the two year tier",
			profile: domain.BorrowerProfile{
				MonthlyIncome:    income(60000),
				EmploymentStatus: domain.EmploymentEmployed,
				EmploymentYears:  years(6),
				YearsAtAddress:   years(4),
			},
			expected: 748,
		},
		{
			name: "weak profile",
			profile: domain.BorrowerProfile{
				MonthlyIncome:    income(5000),
				EmploymentStatus: domain.EmploymentUnemployed,
				EmploymentYears:  years(0.2),
				YearsAtAddress:   years(0.5),
			},
			expected: 575,
		},
		{
			name: "ten years employment stacks with the tier bonus",
			profile: domain.BorrowerProfile{
				EmploymentStatus: domain.EmploymentEmployed,
				EmploymentYears:  years(12),
			},
			expected: 710,
		},
		{
			name: "zero values count as not supplied",
			profile: domain.BorrowerProfile{
				MonthlyIncome:    income(0),
				EmploymentStatus: domain.EmploymentEmployed,
				EmploymentYears:  years(0),
				YearsAtAddress:   years(0),
			},
			expected: 670,
		},
		{
			name:     "student without details stays at base",
			profile:  domain.BorrowerProfile{EmploymentStatus: domain.EmploymentStudent},
			expected: 650,
		},
		{
			name: "mid tiers",
			profile: domain.BorrowerProfile{
				MonthlyIncome:    income(30000),
				EmploymentStatus: domain.EmploymentSelfEmployed,
				EmploymentYears:  years(3),
				YearsAtAddress:   years(2),
			},
			expected: 703, // 650+20+15+10+8
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, InitialScore(tt.profile))
			assert.Equal(t, tt.expected, ComputeCreditScore(tt.profile, nil, nil, asOf))
		})
	}
}

func TestPaymentScore(t *testing.T) {
	loanID := uuid.New()
	past := asOf.AddDate(0, -1, 0)
	future := asOf.AddDate(0, 0, 10)

	build := func(parts ...[]*domain.Repayment) []*domain.Repayment {
		var out []*domain.Repayment
		for _, p := range parts {
			out = append(out, p...)
		}
		return out
	}
	onTime := func(n int) []*domain.Repayment {
		return repeat(n, func() *domain.Repayment { return paidOnTime(loanID, past) })
	}
	late := func(n int) []*domain.Repayment {
		return repeat(n, func() *domain.Repayment { return paidLate(loanID, past) })
	}
	missed := func(n int) []*domain.Repayment {
		return repeat(n, func() *domain.Repayment { return withStatus(loanID, past, domain.RepaymentStatusOverdue) })
	}

	tests := []struct {
		name       string
		repayments []*domain.Repayment
		expected   int
	}{
		{name: "no history", repayments: nil, expected: 650},
		{name: "95 percent on time, none missed", repayments: build(onTime(19), late(1)), expected: 800},
		{name: "90 percent on time, 5 percent missed", repayments: build(onTime(18), late(1), missed(1)), expected: 750},
		{name: "80 percent on time, 10 percent missed", repayments: build(onTime(8), late(1), missed(1)), expected: 680},
		{name: "70 percent on time, 10 percent missed", repayments: build(onTime(7), late(2), missed(1)), expected: 620},
		{name: "mostly late", repayments: build(onTime(6), late(4)), expected: 550},
		{
			name: "defaulted counts as missed",
			repayments: build(onTime(18), late(1),
				[]*domain.Repayment{withStatus(loanID, past, domain.RepaymentStatusDefaulted)}),
			expected: 750,
		},
		{
			name: "pending installment not yet due is neutral",
			repayments: build(onTime(19),
				[]*domain.Repayment{withStatus(loanID, future, domain.RepaymentStatusPending)}),
			expected: 800,
		},
		{
			name: "pending installment past due counts as overdue",
			repayments: build(onTime(19),
				[]*domain.Repayment{withStatus(loanID, past, domain.RepaymentStatusPending)}),
			expected: 750,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PaymentScore(tt.repayments, asOf))
		})
	}
}

func TestDebtScore(t *testing.T) {
	borrowerID := uuid.New()
	start := asOf.AddDate(-1, 0, 0)
	withIncome := domain.BorrowerProfile{MonthlyIncome: income(10000)}

	manyLoans := func(n int) []*domain.Loan {
		loans := make([]*domain.Loan, 0, n)
		for i := 0; i < n; i++ {
			loans = append(loans, activeLoan(borrowerID, start, 0))
		}
		return loans
	}

	completed := activeLoan(borrowerID, start, 999999)
	completed.Status = domain.LoanStatusCompleted

	tests := []struct {
		name     string
		profile  domain.BorrowerProfile
		loans    []*domain.Loan
		expected int
	}{
		{name: "no loans", profile: withIncome, loans: nil, expected: 720},
		{name: "unknown income treats DTI as zero", profile: domain.BorrowerProfile{}, loans: []*domain.Loan{activeLoan(borrowerID, start, 500000)}, expected: 710},
		{name: "DTI 20", profile: withIncome, loans: []*domain.Loan{activeLoan(borrowerID, start, 24000)}, expected: 710},
		{name: "DTI 35", profile: withIncome, loans: []*domain.Loan{activeLoan(borrowerID, start, 42000)}, expected: 685},
		{name: "DTI 50", profile: withIncome, loans: []*domain.Loan{activeLoan(borrowerID, start, 60000)}, expected: 640},
		{name: "DTI 65", profile: withIncome, loans: []*domain.Loan{activeLoan(borrowerID, start, 78000)}, expected: 610},
		{name: "DTI above 65", profile: withIncome, loans: []*domain.Loan{activeLoan(borrowerID, start, 100000)}, expected: 580},
		{name: "completed loans are ignored", profile: withIncome, loans: []*domain.Loan{completed}, expected: 720},
		{name: "two active loans", profile: withIncome, loans: manyLoans(2), expected: 700},
		{name: "five active loans", profile: withIncome, loans: manyLoans(5), expected: 655},
		{name: "clamped at 300", profile: withIncome, loans: manyLoans(30), expected: 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DebtScore(tt.profile, tt.loans))
		})
	}
}

func TestDebtScore_OverpaidLoanContributesNothing(t *testing.T) {
	loan := activeLoan(uuid.New(), asOf, 1000)
	loan.PaidAmount = decimal.NewFromInt(1500)

	assert.Equal(t, 710, DebtScore(domain.BorrowerProfile{MonthlyIncome: income(100)}, []*domain.Loan{loan}))
}

func TestHistoryScore(t *testing.T) {
	borrowerID := uuid.New()

	tests := []struct {
		name     string
		starts   []time.Time
		expected int
	}{
		{name: "no loans", starts: nil, expected: 600},
		{name: "over five years", starts: []time.Time{asOf.AddDate(-5, -1, 0)}, expected: 750},
		{name: "three years", starts: []time.Time{asOf.AddDate(-3, 0, 0)}, expected: 700},
		{name: "two years", starts: []time.Time{asOf.AddDate(-2, -1, 0)}, expected: 670},
		{name: "thirteen months", starts: []time.Time{asOf.AddDate(0, -13, 0)}, expected: 630},
		{name: "recent", starts: []time.Time{asOf.AddDate(0, -3, 0)}, expected: 580},
		{name: "oldest loan wins", starts: []time.Time{asOf.AddDate(0, -2, 0), asOf.AddDate(-6, 0, 0), asOf.AddDate(-1, 0, 0)}, expected: 750},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var loans []*domain.Loan
			for _, s := range tt.starts {
				loans = append(loans, activeLoan(borrowerID, s, 0))
			}
			assert.Equal(t, tt.expected, HistoryScore(loans, asOf))
		})
	}
}

func TestHistoryScore_FallsBackToCreatedAt(t *testing.T) {
	loan := &domain.Loan{CreatedAt: asOf.AddDate(-4, 0, 0)}
	assert.Equal(t, 700, HistoryScore([]*domain.Loan{loan}, asOf))
}

func TestRecentActivityScore(t *testing.T) {
	borrowerID := uuid.New()
	old := activeLoan(borrowerID, asOf.AddDate(-1, 0, 0), 0)
	edge := activeLoan(borrowerID, asOf.AddDate(0, -3, 0), 0)
	fresh := activeLoan(borrowerID, asOf.AddDate(0, 0, -10), 0)

	assert.Equal(t, 700, RecentActivityScore(nil, asOf))
	assert.Equal(t, 700, RecentActivityScore([]*domain.Loan{old}, asOf))
	assert.Equal(t, 680, RecentActivityScore([]*domain.Loan{old, edge}, asOf))
	assert.Equal(t, 650, RecentActivityScore([]*domain.Loan{edge, fresh}, asOf))
	assert.Equal(t, 600, RecentActivityScore([]*domain.Loan{edge, fresh, fresh}, asOf))
}

func TestProfileScore(t *testing.T) {
	tests := []struct {
		name     string
		profile  domain.BorrowerProfile
		expected int
	}{
		{
			name:     "employed, high income, settled",
			profile:  domain.BorrowerProfile{EmploymentStatus: domain.EmploymentEmployed, MonthlyIncome: income(60000), YearsAtAddress: years(5)},
			expected: 725,
		},
		{
			name:     "self-employed, mid income",
			profile:  domain.BorrowerProfile{EmploymentStatus: domain.EmploymentSelfEmployed, MonthlyIncome: income(30000), YearsAtAddress: years(3)},
			expected: 690,
		},
		{
			name:     "unemployed, recently moved",
			profile:  domain.BorrowerProfile{EmploymentStatus: domain.EmploymentUnemployed, YearsAtAddress: years(0.5)},
			expected: 610,
		},
		{
			name:     "income thresholds are exclusive",
			profile:  domain.BorrowerProfile{EmploymentStatus: domain.EmploymentStudent, MonthlyIncome: income(50000)},
			expected: 665,
		},
		{
			name:     "retired with low income",
			profile:  domain.BorrowerProfile{EmploymentStatus: domain.EmploymentRetired, MonthlyIncome: income(10000)},
			expected: 650,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ProfileScore(tt.profile))
		})
	}
}

func TestComputeCreditScore_WithHistory(t *testing.T) {
	borrowerID := uuid.New()

	t.Run("established borrower", func(t *testing.T) {
		profile := domain.BorrowerProfile{
			MonthlyIncome:    income(60000),
			EmploymentStatus: domain.EmploymentEmployed,
			EmploymentYears:  years(6),
			YearsAtAddress:   years(4),
		}
		loan := activeLoan(borrowerID, time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC), 11200)
		loan.PaidAmount = decimal.NewFromInt(11200)
		loan.Recalculate()

		repayments := repeat(12, func() *domain.Repayment { return paidOnTime(loan.ID, time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC)) })

		// 650 + .4*150 + .25*70 + .15*100 + .1*50 + .1*65
		assert.Equal(t, 754, ComputeCreditScore(profile, []*domain.Loan{loan}, repayments, asOf))
	})

	t.Run("overextended borrower", func(t *testing.T) {
		profile := domain.BorrowerProfile{
			MonthlyIncome:    income(20000),
			EmploymentStatus: domain.EmploymentUnemployed,
			YearsAtAddress:   years(0.5),
		}
		loans := []*domain.Loan{
			activeLoan(borrowerID, asOf.AddDate(0, -2, 0), 112000),
			activeLoan(borrowerID, asOf.AddDate(0, -1, 0), 112000),
			activeLoan(borrowerID, asOf.AddDate(0, 0, -15), 112000),
		}
		due := asOf.AddDate(0, 0, -20)
		repayments := []*domain.Repayment{
			paidOnTime(loans[0].ID, due),
			withStatus(loans[0].ID, due, domain.RepaymentStatusOverdue),
			withStatus(loans[1].ID, due, domain.RepaymentStatusOverdue),
			withStatus(loans[2].ID, due, domain.RepaymentStatusOverdue),
		}

		// 650 - 40 - 23.75 - 10.5 - 5 - 3.5 = 567.25
		assert.Equal(t, 567, ComputeCreditScore(profile, loans, repayments, asOf))
	})

	t.Run("half points round up", func(t *testing.T) {
		// payment 650, debt 710 (+15), history 580 (-10.5), recent 680 (+3), profile 650
		loan := activeLoan(borrowerID, asOf.AddDate(0, -1, 0), 1000)
		assert.Equal(t, 658, ComputeCreditScore(domain.BorrowerProfile{}, []*domain.Loan{loan}, nil, asOf))
	})
}

func TestComputeCreditScore_Properties(t *testing.T) {
	borrowerID := uuid.New()
	statuses := []domain.EmploymentStatus{
		domain.EmploymentEmployed, domain.EmploymentSelfEmployed, domain.EmploymentUnemployed,
		domain.EmploymentStudent, domain.EmploymentRetired,
	}
	incomes := []decimal.NullDecimal{{}, income(0), income(5000), income(20000), income(80000)}
	tenures := []*float64{nil, years(0.3), years(2), years(12)}

	for _, status := range statuses {
		for _, inc := range incomes {
			for _, tenure := range tenures {
				profile := domain.BorrowerProfile{
					MonthlyIncome:    inc,
					EmploymentStatus: status,
					EmploymentYears:  tenure,
					YearsAtAddress:   tenure,
				}

				initial := ComputeCreditScore(profile, nil, nil, asOf)
				assert.GreaterOrEqual(t, initial, 550)
				assert.LessOrEqual(t, initial, 750)

				loans := []*domain.Loan{
					activeLoan(borrowerID, asOf.AddDate(0, -1, 0), 900000),
					activeLoan(borrowerID, asOf.AddDate(0, -2, 0), 900000),
					activeLoan(borrowerID, asOf.AddDate(0, 0, -3), 900000),
					activeLoan(borrowerID, asOf.AddDate(0, 0, -1), 900000),
				}
				repayments := []*domain.Repayment{
					withStatus(loans[0].ID, asOf.AddDate(0, 0, -5), domain.RepaymentStatusOverdue),
					withStatus(loans[1].ID, asOf.AddDate(0, 0, -5), domain.RepaymentStatusDefaulted),
				}

				score := ComputeCreditScore(profile, loans, repayments, asOf)
				assert.GreaterOrEqual(t, score, 300)
				assert.LessOrEqual(t, score, 850)
				assert.Equal(t, score, ComputeCreditScore(profile, loans, repayments, asOf))
			}
		}
	}
}

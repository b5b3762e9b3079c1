package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EmploymentStatus describes how a borrower earns an income
type EmploymentStatus string

const (
	EmploymentEmployed     EmploymentStatus = "employed"
	EmploymentSelfEmployed EmploymentStatus = "self-employed"
	EmploymentUnemployed   EmploymentStatus = "unemployed"
	EmploymentStudent      EmploymentStatus = "student"
	EmploymentRetired      EmploymentStatus = "retired"
)

// IsValid reports whether s is one of the known employment statuses.
func (s EmploymentStatus) IsValid() bool {
	switch s {
	case EmploymentEmployed, EmploymentSelfEmployed, EmploymentUnemployed, EmploymentStudent, EmploymentRetired:
		return true
	}
	return false
}

// ParseEmploymentStatus normalizes case and separators ("Self_Employed",
// "self employed") to a known status. Unknown input is returned lower-cased
// and fails IsValid.
func ParseEmploymentStatus(raw string) EmploymentStatus {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, "_", "-")
	normalized = strings.ReplaceAll(normalized, " ", "-")
	if normalized == "selfemployed" {
		normalized = string(EmploymentSelfEmployed)
	}
	return EmploymentStatus(normalized)
}

// RiskRating is the coarse label stored on a borrower
type RiskRating string

const (
	RiskLow    RiskRating = "Low"
	RiskMedium RiskRating = "Medium"
	RiskHigh   RiskRating = "High"
)

const (
	DefaultCreditScore = 650
	MinCreditScore     = 300
	MaxCreditScore     = 850
)

// DeriveRiskRating maps a credit score to the borrower risk rating.
func DeriveRiskRating(creditScore int) RiskRating {
	switch {
	case creditScore >= 700:
		return RiskLow
	case creditScore >= 550:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// BorrowerProfile holds the scoring inputs of a borrower. A nil or zero
// value on any optional field means "not supplied" and applies no adjustment.
type BorrowerProfile struct {
	MonthlyIncome    decimal.NullDecimal `json:"monthly_income" db:"monthly_income"`
	EmploymentStatus EmploymentStatus    `json:"employment_status" db:"employment_status"`
	EmploymentYears  *float64            `json:"employment_years,omitempty" db:"employment_years"`
	YearsAtAddress   *float64            `json:"years_at_address,omitempty" db:"years_at_address"`
}

// Income returns the monthly income when it is known and non-zero.
func (p BorrowerProfile) Income() (decimal.Decimal, bool) {
	if !p.MonthlyIncome.Valid || p.MonthlyIncome.Decimal.IsZero() {
		return decimal.Zero, false
	}
	return p.MonthlyIncome.Decimal, true
}

// Employment returns the employment tenure in years when known and non-zero.
func (p BorrowerProfile) Employment() (float64, bool) {
	return supplied(p.EmploymentYears)
}

// AddressTenure returns the years at the current address when known and non-zero.
func (p BorrowerProfile) AddressTenure() (float64, bool) {
	return supplied(p.YearsAtAddress)
}

func supplied(v *float64) (float64, bool) {
	if v == nil || *v == 0 {
		return 0, false
	}
	return *v, true
}

// Borrower represents a borrower entity
type Borrower struct {
	ID      uuid.UUID `json:"id" db:"id"`
	Name    string    `json:"name" db:"name"`
	Email   string    `json:"email" db:"email"`
	Phone   string    `json:"phone" db:"phone"`
	Address string    `json:"address,omitempty" db:"address"`
	IDProof string    `json:"id_proof,omitempty" db:"id_proof"`

	BorrowerProfile

	CreditScore int        `json:"credit_score" db:"credit_score"`
	RiskRating  RiskRating `json:"risk_rating" db:"risk_rating"`
	IsActive    bool       `json:"is_active" db:"is_active"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// ApplyScore stores a freshly computed score and the rating derived from it.
func (b *Borrower) ApplyScore(score int) {
	b.CreditScore = score
	b.RiskRating = DeriveRiskRating(score)
}

// DTOs for requests and responses

type CreateBorrowerRequest struct {
	Name             string              `json:"name" validate:"required"`
	Email            string              `json:"email" validate:"required,email"`
	Phone            string              `json:"phone" validate:"required,min=10"`
	Address          string              `json:"address"`
	IDProof          string              `json:"id_proof"`
	MonthlyIncome    decimal.NullDecimal `json:"monthly_income"`
	EmploymentStatus string              `json:"employment_status" validate:"omitempty,employment_status"`
	EmploymentYears  *float64            `json:"employment_years" validate:"omitempty,gte=0"`
	YearsAtAddress   *float64            `json:"years_at_address" validate:"omitempty,gte=0"`
}

// Profile builds the scoring profile from the request. An empty employment
// status defaults to employed.
func (r *CreateBorrowerRequest) Profile() BorrowerProfile {
	status := EmploymentEmployed
	if r.EmploymentStatus != "" {
		status = ParseEmploymentStatus(r.EmploymentStatus)
	}
	return BorrowerProfile{
		MonthlyIncome:    r.MonthlyIncome,
		EmploymentStatus: status,
		EmploymentYears:  r.EmploymentYears,
		YearsAtAddress:   r.YearsAtAddress,
	}
}

// UpdateBorrowerRequest changes contact details and scoring inputs. Nil
// fields, and a MonthlyIncome that is not Valid, are left unchanged. Email
// is the borrower's identity and cannot be changed.
type UpdateBorrowerRequest struct {
	Name             *string             `json:"name" validate:"omitempty,min=1"`
	Phone            *string             `json:"phone" validate:"omitempty,min=10"`
	Address          *string             `json:"address"`
	IDProof          *string             `json:"id_proof"`
	MonthlyIncome    decimal.NullDecimal `json:"monthly_income"`
	EmploymentStatus *string             `json:"employment_status" validate:"omitempty,employment_status"`
	EmploymentYears  *float64            `json:"employment_years" validate:"omitempty,gte=0"`
	YearsAtAddress   *float64            `json:"years_at_address" validate:"omitempty,gte=0"`
}

// Apply copies the supplied fields onto b.
func (r *UpdateBorrowerRequest) Apply(b *Borrower) {
	if r.Name != nil {
		b.Name = *r.Name
	}
	if r.Phone != nil {
		b.Phone = *r.Phone
	}
	if r.Address != nil {
		b.Address = *r.Address
	}
	if r.IDProof != nil {
		b.IDProof = *r.IDProof
	}
	if r.MonthlyIncome.Valid {
		b.MonthlyIncome = r.MonthlyIncome
	}
	if r.EmploymentStatus != nil {
		b.EmploymentStatus = ParseEmploymentStatus(*r.EmploymentStatus)
	}
	if r.EmploymentYears != nil {
		b.EmploymentYears = r.EmploymentYears
	}
	if r.YearsAtAddress != nil {
		b.YearsAtAddress = r.YearsAtAddress
	}
}

// BorrowerFilter narrows a borrower listing. Search matches name or email
// case-insensitively.
type BorrowerFilter struct {
	Search     string     `json:"search,omitempty" validate:"max=100"`
	RiskRating RiskRating `json:"risk_rating,omitempty" validate:"omitempty,oneof=Low Medium High"`
	PageRequest
}

type BorrowerListResponse struct {
	Borrowers []*Borrower `json:"borrowers"`
	PageInfo
}

// BorrowerDetailsResponse is a borrower with every loan and repayment
type BorrowerDetailsResponse struct {
	Borrower   *Borrower    `json:"borrower"`
	Loans      []*Loan      `json:"loans"`
	Repayments []*Repayment `json:"repayments"`
}

type ScoreResponse struct {
	BorrowerID            uuid.UUID       `json:"borrower_id"`
	CreditScore           int             `json:"credit_score"`
	Category              string          `json:"category"`
	Description           string          `json:"description"`
	RiskRating            RiskRating      `json:"risk_rating"`
	SuggestedInterestRate decimal.Decimal `json:"suggested_interest_rate"`
	AsOf                  time.Time       `json:"as_of"`
}

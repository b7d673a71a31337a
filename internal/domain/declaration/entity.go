package declaration

import (
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/taxconfig"
	"github.com/shopspring/decimal"
)

// DeclarationStatus enum
type DeclarationStatus string

const (
	DeclarationStatusDraft     DeclarationStatus = "draft"
	DeclarationStatusSubmitted DeclarationStatus = "submitted"
	DeclarationStatusVerified  DeclarationStatus = "verified"
	DeclarationStatusRejected  DeclarationStatus = "rejected"
)

// DeclarationSection holds the declared items of one exemption section and,
// after verification, the amount the verifier accepted. Only verified
// amounts enter payroll calculation; section ceilings are applied there,
// never at declaration time.
type DeclarationSection struct {
	Items          map[string]decimal.Decimal `json:"items"`
	VerifiedAmount *decimal.Decimal           `json:"verified_amount,omitempty"`
}

// DeclaredTotal sums the section's item amounts.
func (s DeclarationSection) DeclaredTotal() decimal.Decimal {
	total := decimal.Zero
	for _, amount := range s.Items {
		total = total.Add(amount)
	}
	return total
}

// TaxDeclaration is an employee's self-declared exemptions for one financial
// year. Lifecycle: draft -> submitted -> verified | rejected.
type TaxDeclaration struct {
	ID              string
	EmployeeID      string
	CompanyID       string
	FinancialYear   string
	Status          DeclarationStatus
	Sections        map[taxconfig.SectionKey]DeclarationSection
	RejectionReason *string
	SubmittedAt     *time.Time
	VerifiedAt      *time.Time
	VerifiedBy      *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

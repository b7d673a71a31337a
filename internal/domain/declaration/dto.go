package declaration

import (
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/taxconfig"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateTaxDeclarationRequest struct {
	EmployeeID    string                                `json:"employee_id"`
	FinancialYear string                                `json:"financial_year"`
	Sections      map[string]map[string]decimal.Decimal `json:"sections"`
}

func (r *CreateTaxDeclarationRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "is required",
		})
	}
	if !validator.IsValidFinancialYear(r.FinancialYear) {
		errs = append(errs, validator.ValidationError{
			Field:   "financial_year",
			Message: "must be consecutive years in YYYY-YYYY format",
		})
	}
	errs = append(errs, validateSections(r.Sections)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Section keys are a closed set; unknown names are rejected at the boundary
// so they can never reach a calculation.
func validateSections(sections map[string]map[string]decimal.Decimal) validator.ValidationErrors {
	var errs validator.ValidationErrors

	for key, items := range sections {
		if !taxconfig.SectionKey(key).IsValid() {
			errs = append(errs, validator.ValidationError{
				Field:   "sections." + key,
				Message: "unknown section key",
			})
			continue
		}
		if len(items) == 0 {
			errs = append(errs, validator.ValidationError{
				Field:   "sections." + key,
				Message: "declared section must contain at least one item",
			})
		}
		for item, amount := range items {
			if validator.IsEmpty(item) {
				errs = append(errs, validator.ValidationError{
					Field:   "sections." + key,
					Message: "item name cannot be empty",
				})
			}
			if amount.IsNegative() {
				errs = append(errs, validator.ValidationError{
					Field:   "sections." + key + "." + item,
					Message: "amount must be non-negative",
				})
			}
		}
	}

	return errs
}

type UpdateTaxDeclarationRequest struct {
	ID       string
	Sections map[string]map[string]decimal.Decimal `json:"sections"`
}

func (r *UpdateTaxDeclarationRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.Sections) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "sections",
			Message: "at least one section is required",
		})
	}
	errs = append(errs, validateSections(r.Sections)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type VerifyTaxDeclarationRequest struct {
	ID              string
	VerifiedAmounts map[string]decimal.Decimal `json:"verified_amounts"`
}

func (r *VerifyTaxDeclarationRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.VerifiedAmounts) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "verified_amounts",
			Message: "at least one section is required",
		})
	}
	for key, amount := range r.VerifiedAmounts {
		if !taxconfig.SectionKey(key).IsValid() {
			errs = append(errs, validator.ValidationError{
				Field:   "verified_amounts." + key,
				Message: "unknown section key",
			})
		}
		if amount.IsNegative() {
			errs = append(errs, validator.ValidationError{
				Field:   "verified_amounts." + key,
				Message: "amount must be non-negative",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type RejectTaxDeclarationRequest struct {
	ID     string
	Reason string `json:"reason"`
}

func (r *RejectTaxDeclarationRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type DeclarationSectionResponse struct {
	Items          map[string]decimal.Decimal `json:"items"`
	DeclaredAmount decimal.Decimal            `json:"declared_amount"`
	VerifiedAmount *decimal.Decimal           `json:"verified_amount,omitempty"`
}

type TaxDeclarationResponse struct {
	ID              string                                `json:"id"`
	EmployeeID      string                                `json:"employee_id"`
	FinancialYear   string                                `json:"financial_year"`
	Status          string                                `json:"status"`
	Sections        map[string]DeclarationSectionResponse `json:"sections"`
	RejectionReason *string                               `json:"rejection_reason,omitempty"`
	SubmittedAt     *time.Time                            `json:"submitted_at,omitempty"`
	VerifiedAt      *time.Time                            `json:"verified_at,omitempty"`
	CreatedAt       time.Time                             `json:"created_at"`
	UpdatedAt       time.Time                             `json:"updated_at"`
}

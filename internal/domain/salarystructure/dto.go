package salarystructure

import (
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateSalaryStructureRequest struct {
	Name        string            `json:"name"`
	Description *string           `json:"description,omitempty"`
	Components  []SalaryComponent `json:"components"`
}

func (r *CreateSalaryStructureRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}
	errs = append(errs, validateComponents(r.Components)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// validateComponents checks the structural rules a save must satisfy so that
// resolution cannot fail on shape: unique names, known types and categories,
// and percentage references pointing at an earlier-priority component.
func validateComponents(components []SalaryComponent) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if len(components) == 0 {
		return append(errs, validator.ValidationError{Field: "components", Message: "at least one component is required"})
	}

	categories := make([]string, 0, len(ValidCategories()))
	for _, c := range ValidCategories() {
		categories = append(categories, string(c))
	}

	priorities := make(map[string]int, len(components))
	for i, c := range components {
		f := "components[" + validator.Itoa(i) + "]"

		if validator.IsEmpty(c.Name) {
			errs = append(errs, validator.ValidationError{Field: f + ".name", Message: "name is required"})
			continue
		}
		if _, dup := priorities[c.Name]; dup {
			errs = append(errs, validator.ValidationError{Field: f + ".name", Message: "component name must be unique"})
			continue
		}
		priorities[c.Name] = c.Priority

		if c.Type != ComponentTypeEarning && c.Type != ComponentTypeDeduction {
			errs = append(errs, validator.ValidationError{Field: f + ".type", Message: "must be 'earning' or 'deduction'"})
		}
		if !validator.IsInSlice(string(c.Category), categories) {
			errs = append(errs, validator.ValidationError{Field: f + ".category", Message: "unknown category"})
		}
		if c.Amount.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: f + ".amount", Message: "must be non-negative"})
		}
		if c.IsPercentage && c.Amount.GreaterThan(decimal.NewFromInt(100)) {
			errs = append(errs, validator.ValidationError{Field: f + ".amount", Message: "percentage must not exceed 100"})
		}
		if c.Priority < 0 {
			errs = append(errs, validator.ValidationError{Field: f + ".priority", Message: "must be non-negative"})
		}
		if !c.IsPercentage && c.PercentageOf != "" {
			errs = append(errs, validator.ValidationError{Field: f + ".percentage_of", Message: "only valid for percentage components"})
		}
	}

	// Percentage references must resolve before the referencing component.
	for i, c := range components {
		if !c.IsPercentage {
			continue
		}
		f := "components[" + validator.Itoa(i) + "]"

		if c.PercentageOf == "" || c.PercentageOf == c.Name {
			errs = append(errs, validator.ValidationError{Field: f + ".percentage_of", Message: "must name another component"})
			continue
		}
		basePriority, ok := priorities[c.PercentageOf]
		if !ok {
			errs = append(errs, validator.ValidationError{Field: f + ".percentage_of", Message: "references a component that does not exist"})
			continue
		}
		if basePriority >= c.Priority {
			errs = append(errs, validator.ValidationError{Field: f + ".priority", Message: "must be greater than the priority of its base component"})
		}
	}

	return errs
}

type UpdateSalaryStructureRequest struct {
	ID          string
	Name        *string           `json:"name,omitempty"`
	Description *string           `json:"description,omitempty"`
	Components  []SalaryComponent `json:"components,omitempty"`
}

func (r *UpdateSalaryStructureRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name cannot be empty",
		})
	}
	if r.Components != nil {
		errs = append(errs, validateComponents(r.Components)...)
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type AssignStructureRequest struct {
	EmployeeID         string                     `json:"employee_id"`
	SalaryStructureID  string                     `json:"salary_structure_id"`
	Overrides          map[string]decimal.Decimal `json:"overrides,omitempty"`
	MonthlyRent        decimal.Decimal            `json:"monthly_rent"`
	MonthlyTravelSpend decimal.Decimal            `json:"monthly_travel_spend"`
	EffectiveDate      string                     `json:"effective_date"`
}

func (r *AssignStructureRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "is required",
		})
	}
	if validator.IsEmpty(r.SalaryStructureID) {
		errs = append(errs, validator.ValidationError{
			Field:   "salary_structure_id",
			Message: "is required",
		})
	}
	for name, amount := range r.Overrides {
		if amount.IsNegative() {
			errs = append(errs, validator.ValidationError{
				Field:   "overrides." + name,
				Message: "must be non-negative",
			})
		}
	}
	if r.MonthlyRent.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "monthly_rent",
			Message: "must be non-negative",
		})
	}
	if r.MonthlyTravelSpend.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "monthly_travel_spend",
			Message: "must be non-negative",
		})
	}
	if _, ok := validator.IsValidDate(r.EffectiveDate); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "effective_date",
			Message: "must be in YYYY-MM-DD format",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type SalaryStructureResponse struct {
	ID          string            `json:"id"`
	CompanyID   string            `json:"company_id"`
	Name        string            `json:"name"`
	Description *string           `json:"description,omitempty"`
	Components  []SalaryComponent `json:"components"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// EmployeeSalaryResponse is the employee's structure with every component
// resolved to its monetary value.
type EmployeeSalaryResponse struct {
	EmployeeID         string              `json:"employee_id"`
	SalaryStructureID  string              `json:"salary_structure_id"`
	StructureName      string              `json:"structure_name"`
	Components         []ResolvedComponent `json:"components"`
	MonthlyRent        decimal.Decimal     `json:"monthly_rent"`
	MonthlyTravelSpend decimal.Decimal     `json:"monthly_travel_spend"`
	EffectiveDate      string              `json:"effective_date"`
}

package salarystructure

import (
	"time"

	"github.com/shopspring/decimal"
)

// ComponentType enum
type ComponentType string

const (
	ComponentTypeEarning   ComponentType = "earning"
	ComponentTypeDeduction ComponentType = "deduction"
)

// ComponentCategory enum. The calculator keys off categories: basic feeds
// contribution bases and percentage references, housing_allowance and
// travel_allowance feed exemption rules.
type ComponentCategory string

const (
	CategoryBasic            ComponentCategory = "basic"
	CategoryHousingAllowance ComponentCategory = "housing_allowance"
	CategoryTravelAllowance  ComponentCategory = "travel_allowance"
	CategoryMedicalAllowance ComponentCategory = "medical_allowance"
	CategorySpecialAllowance ComponentCategory = "special_allowance"
	CategoryBonus            ComponentCategory = "bonus"
	CategoryProvidentFund    ComponentCategory = "provident_fund"
	CategoryLoanRepayment    ComponentCategory = "loan_repayment"
	CategoryOther            ComponentCategory = "other"
)

func ValidCategories() []ComponentCategory {
	return []ComponentCategory{
		CategoryBasic, CategoryHousingAllowance, CategoryTravelAllowance,
		CategoryMedicalAllowance, CategorySpecialAllowance, CategoryBonus,
		CategoryProvidentFund, CategoryLoanRepayment, CategoryOther,
	}
}

// SalaryComponent is one line of a salary structure. Amount is the monthly
// value, or the percentage points when IsPercentage is set, in which case
// PercentageOf names the component the percentage applies to. Components are
// evaluated in ascending Priority order.
type SalaryComponent struct {
	ID           string            `json:"id,omitempty"`
	Name         string            `json:"name"`
	Type         ComponentType     `json:"type"`
	Category     ComponentCategory `json:"category"`
	Amount       decimal.Decimal   `json:"amount"`
	IsPercentage bool              `json:"is_percentage"`
	PercentageOf string            `json:"percentage_of,omitempty"`
	IsTaxable    bool              `json:"is_taxable"`
	IsStatutory  bool              `json:"is_statutory"`
	Priority     int               `json:"priority"`
}

// SalaryStructure is a company-owned template of salary components.
type SalaryStructure struct {
	ID          string
	CompanyID   string
	Name        string
	Description *string
	Components  []SalaryComponent
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EmployeeSalary assigns a structure to an employee. Overrides replace
// component amounts (or percentage points) by component name. MonthlyRent and
// MonthlyTravelSpend are the actuals behind rent and travel exemption rules.
type EmployeeSalary struct {
	ID                 string
	EmployeeID         string
	CompanyID          string
	SalaryStructureID  string
	Overrides          map[string]decimal.Decimal
	MonthlyRent        decimal.Decimal
	MonthlyTravelSpend decimal.Decimal
	EffectiveDate      time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time

	// Joined fields
	StructureName *string
}

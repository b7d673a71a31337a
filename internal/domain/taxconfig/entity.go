package taxconfig

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TaxSlab is one income band of a marginal tax schedule. To is nil for the
// open-ended top slab. Rate is a percentage.
type TaxSlab struct {
	From decimal.Decimal  `json:"from"`
	To   *decimal.Decimal `json:"to"`
	Rate decimal.Decimal  `json:"rate"`
}

// ProfessionalTaxSlab maps an income band to a flat amount per pay period,
// not a rate. The slab containing the input amount wins.
type ProfessionalTaxSlab struct {
	From   decimal.Decimal  `json:"from"`
	To     *decimal.Decimal `json:"to"`
	Amount decimal.Decimal  `json:"amount"`
}

// ContributionSetting configures a capped statutory contribution such as
// social security or health insurance. Rates are percentages applied to
// min(base salary, MaxSalary). Disabled settings produce no payslip lines.
type ContributionSetting struct {
	Enabled      bool            `json:"enabled"`
	EmployerRate decimal.Decimal `json:"employer_rate"`
	EmployeeRate decimal.Decimal `json:"employee_rate"`
	MaxSalary    decimal.Decimal `json:"max_salary"`
}

// ExemptionRuleType enum
type ExemptionRuleType string

const (
	RuleTypePercentageOfBasic ExemptionRuleType = "percentage_of_basic"
	RuleTypeFixedAmount       ExemptionRuleType = "fixed_amount"
	RuleTypeActualRent        ExemptionRuleType = "actual_rent"
	RuleTypeActualExpense     ExemptionRuleType = "actual_expense"
)

// AllowanceExemptionRule is a tagged variant: Type selects the scheme and
// only that scheme's fields may be set. Mixing fields across types is a
// configuration error caught at save time.
type AllowanceExemptionRule struct {
	Type ExemptionRuleType `json:"type"`

	// percentage_of_basic
	MaxPercentage     *decimal.Decimal `json:"max_percentage,omitempty"`
	MinRentPercentage *decimal.Decimal `json:"min_rent_percentage,omitempty"`

	// fixed_amount
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

// SectionKey is a closed enum of declaration sections. Unknown section names
// never enter a calculation.
type SectionKey string

const (
	Section80C   SectionKey = "section80C"
	Section80D   SectionKey = "section80D"
	Section80E   SectionKey = "section80E"
	Section80G   SectionKey = "section80G"
	Section24B   SectionKey = "section24B"
	Section80TTA SectionKey = "section80TTA"
)

func ValidSectionKeys() []SectionKey {
	return []SectionKey{Section80C, Section80D, Section80E, Section80G, Section24B, Section80TTA}
}

func (k SectionKey) IsValid() bool {
	switch k {
	case Section80C, Section80D, Section80E, Section80G, Section24B, Section80TTA:
		return true
	}
	return false
}

// TaxConfiguration holds the statutory rules for one (company, country,
// state, financial year) scope. Past years are new records, never mutations,
// so historical payslips stay auditable.
type TaxConfiguration struct {
	ID                   string
	CompanyID            string
	Country              string
	State                string
	FinancialYear        string
	PayPeriodsPerYear    int
	IncomeTaxSlabs       []TaxSlab
	SocialSecurity       ContributionSetting
	HealthInsurance      ContributionSetting
	ProfessionalTaxSlabs []ProfessionalTaxSlab
	HousingExemptionRule *AllowanceExemptionRule
	TravelExemptionRule  *AllowanceExemptionRule
	StandardDeduction    decimal.Decimal
	SectionLimits        map[SectionKey]decimal.Decimal
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// FinancialYearForPeriod maps a pay period to its financial year label.
// The fiscal year runs April through March: May 2025 is "2025-2026",
// February 2026 is also "2025-2026".
func FinancialYearForPeriod(month, year int) string {
	if month >= 4 {
		return fmt.Sprintf("%d-%d", year, year+1)
	}
	return fmt.Sprintf("%d-%d", year-1, year)
}

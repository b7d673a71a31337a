package taxconfig

import (
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateTaxConfigurationRequest struct {
	Country              string                     `json:"country"`
	State                string                     `json:"state"`
	FinancialYear        string                     `json:"financial_year"`
	PayPeriodsPerYear    *int                       `json:"pay_periods_per_year,omitempty"`
	IncomeTaxSlabs       []TaxSlab                  `json:"income_tax_slabs"`
	SocialSecurity       ContributionSetting        `json:"social_security"`
	HealthInsurance      ContributionSetting        `json:"health_insurance"`
	ProfessionalTaxSlabs []ProfessionalTaxSlab      `json:"professional_tax_slabs,omitempty"`
	HousingExemptionRule *AllowanceExemptionRule    `json:"housing_exemption_rule,omitempty"`
	TravelExemptionRule  *AllowanceExemptionRule    `json:"travel_exemption_rule,omitempty"`
	StandardDeduction    decimal.Decimal            `json:"standard_deduction"`
	SectionLimits        map[string]decimal.Decimal `json:"section_limits,omitempty"`
}

func (r *CreateTaxConfigurationRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidCountryCode(r.Country) {
		errs = append(errs, validator.ValidationError{
			Field:   "country",
			Message: "country must be an ISO 3166-1 alpha-2 code",
		})
	}
	if validator.IsEmpty(r.State) {
		errs = append(errs, validator.ValidationError{
			Field:   "state",
			Message: "state is required",
		})
	}
	if !validator.IsValidFinancialYear(r.FinancialYear) {
		errs = append(errs, validator.ValidationError{
			Field:   "financial_year",
			Message: "must be consecutive years in YYYY-YYYY format",
		})
	}
	if r.PayPeriodsPerYear != nil && *r.PayPeriodsPerYear < 1 {
		errs = append(errs, validator.ValidationError{
			Field:   "pay_periods_per_year",
			Message: "must be at least 1",
		})
	}
	if r.StandardDeduction.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "standard_deduction",
			Message: "must be non-negative",
		})
	}

	errs = append(errs, validateIncomeTaxSlabs("income_tax_slabs", r.IncomeTaxSlabs)...)
	errs = append(errs, validateProfessionalTaxSlabs("professional_tax_slabs", r.ProfessionalTaxSlabs)...)
	errs = append(errs, validateContribution("social_security", r.SocialSecurity)...)
	errs = append(errs, validateContribution("health_insurance", r.HealthInsurance)...)

	if r.HousingExemptionRule != nil {
		allowed := []ExemptionRuleType{RuleTypePercentageOfBasic, RuleTypeFixedAmount, RuleTypeActualRent}
		errs = append(errs, validateExemptionRule("housing_exemption_rule", *r.HousingExemptionRule, allowed)...)
	}
	if r.TravelExemptionRule != nil {
		allowed := []ExemptionRuleType{RuleTypeActualExpense, RuleTypeFixedAmount, RuleTypePercentageOfBasic}
		errs = append(errs, validateExemptionRule("travel_exemption_rule", *r.TravelExemptionRule, allowed)...)
	}

	for key, limit := range r.SectionLimits {
		if !SectionKey(key).IsValid() {
			errs = append(errs, validator.ValidationError{
				Field:   "section_limits." + key,
				Message: "unknown section key",
			})
		}
		if limit.IsNegative() {
			errs = append(errs, validator.ValidationError{
				Field:   "section_limits." + key,
				Message: "limit must be non-negative",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Income tax slabs form a marginal schedule: contiguous, non-overlapping,
// ascending by from, and the last slab open-ended (to = null).
func validateIncomeTaxSlabs(field string, slabs []TaxSlab) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if len(slabs) == 0 {
		return append(errs, validator.ValidationError{Field: field, Message: "at least one slab is required"})
	}

	if slabs[0].From.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: field, Message: "first slab cannot start below zero"})
	}

	for i, slab := range slabs {
		f := field + "[" + validator.Itoa(i) + "]"

		if slab.Rate.IsNegative() || slab.Rate.GreaterThan(decimal.NewFromInt(100)) {
			errs = append(errs, validator.ValidationError{Field: f, Message: "rate must be between 0 and 100"})
		}

		last := i == len(slabs)-1
		if last {
			if slab.To != nil {
				errs = append(errs, validator.ValidationError{Field: f, Message: "last slab must be open-ended"})
			}
			continue
		}

		if slab.To == nil {
			errs = append(errs, validator.ValidationError{Field: f, Message: "only the last slab may be open-ended"})
			continue
		}
		if !slab.To.GreaterThan(slab.From) {
			errs = append(errs, validator.ValidationError{Field: f, Message: "to must be greater than from"})
		}
		if !slabs[i+1].From.Equal(*slab.To) {
			errs = append(errs, validator.ValidationError{Field: f, Message: "slabs must be contiguous and non-overlapping"})
		}
	}

	return errs
}

// Professional tax slabs are flat-amount bands. They must be contiguous and
// ascending; the last band may be open-ended but does not have to be.
func validateProfessionalTaxSlabs(field string, slabs []ProfessionalTaxSlab) validator.ValidationErrors {
	var errs validator.ValidationErrors

	for i, slab := range slabs {
		f := field + "[" + validator.Itoa(i) + "]"

		if slab.Amount.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: f, Message: "amount must be non-negative"})
		}
		if i == 0 && slab.From.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: f, Message: "first slab cannot start below zero"})
		}

		if slab.To == nil {
			if i != len(slabs)-1 {
				errs = append(errs, validator.ValidationError{Field: f, Message: "only the last slab may be open-ended"})
			}
			continue
		}
		if !slab.To.GreaterThan(slab.From) {
			errs = append(errs, validator.ValidationError{Field: f, Message: "to must be greater than from"})
		}
		if i < len(slabs)-1 && !slabs[i+1].From.Equal(*slab.To) {
			errs = append(errs, validator.ValidationError{Field: f, Message: "slabs must be contiguous and non-overlapping"})
		}
	}

	return errs
}

func validateContribution(field string, setting ContributionSetting) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if !setting.Enabled {
		return errs
	}

	hundred := decimal.NewFromInt(100)
	if setting.EmployeeRate.IsNegative() || setting.EmployeeRate.GreaterThan(hundred) {
		errs = append(errs, validator.ValidationError{Field: field + ".employee_rate", Message: "must be between 0 and 100"})
	}
	if setting.EmployerRate.IsNegative() || setting.EmployerRate.GreaterThan(hundred) {
		errs = append(errs, validator.ValidationError{Field: field + ".employer_rate", Message: "must be between 0 and 100"})
	}
	if !setting.MaxSalary.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: field + ".max_salary", Message: "must be positive"})
	}

	return errs
}

// Each rule type carries only its own fields. A rule with another type's
// fields set is rejected here rather than handled silently at calculation.
func validateExemptionRule(field string, rule AllowanceExemptionRule, allowed []ExemptionRuleType) validator.ValidationErrors {
	var errs validator.ValidationErrors

	permitted := false
	for _, t := range allowed {
		if rule.Type == t {
			permitted = true
			break
		}
	}
	if !permitted {
		return append(errs, validator.ValidationError{Field: field + ".type", Message: "rule type not allowed for this allowance"})
	}

	hundred := decimal.NewFromInt(100)
	switch rule.Type {
	case RuleTypePercentageOfBasic:
		if rule.Amount != nil {
			errs = append(errs, validator.ValidationError{Field: field + ".amount", Message: "not valid for percentage_of_basic"})
		}
		if rule.MaxPercentage == nil {
			errs = append(errs, validator.ValidationError{Field: field + ".max_percentage", Message: "is required for percentage_of_basic"})
		} else if !rule.MaxPercentage.IsPositive() || rule.MaxPercentage.GreaterThan(hundred) {
			errs = append(errs, validator.ValidationError{Field: field + ".max_percentage", Message: "must be between 0 and 100"})
		}
		if rule.MinRentPercentage != nil && (rule.MinRentPercentage.IsNegative() || rule.MinRentPercentage.GreaterThan(hundred)) {
			errs = append(errs, validator.ValidationError{Field: field + ".min_rent_percentage", Message: "must be between 0 and 100"})
		}
	case RuleTypeFixedAmount:
		if rule.MaxPercentage != nil || rule.MinRentPercentage != nil {
			errs = append(errs, validator.ValidationError{Field: field, Message: "percentage fields not valid for fixed_amount"})
		}
		if rule.Amount == nil {
			errs = append(errs, validator.ValidationError{Field: field + ".amount", Message: "is required for fixed_amount"})
		} else if rule.Amount.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: field + ".amount", Message: "must be non-negative"})
		}
	case RuleTypeActualRent, RuleTypeActualExpense:
		if rule.MaxPercentage != nil || rule.MinRentPercentage != nil || rule.Amount != nil {
			errs = append(errs, validator.ValidationError{Field: field, Message: "no fields are valid for actual amount rules"})
		}
	default:
		errs = append(errs, validator.ValidationError{Field: field + ".type", Message: "unknown rule type"})
	}

	return errs
}

type UpdateTaxConfigurationRequest struct {
	ID                   string
	PayPeriodsPerYear    *int                       `json:"pay_periods_per_year,omitempty"`
	IncomeTaxSlabs       []TaxSlab                  `json:"income_tax_slabs,omitempty"`
	SocialSecurity       *ContributionSetting       `json:"social_security,omitempty"`
	HealthInsurance      *ContributionSetting       `json:"health_insurance,omitempty"`
	ProfessionalTaxSlabs []ProfessionalTaxSlab      `json:"professional_tax_slabs,omitempty"`
	HousingExemptionRule *AllowanceExemptionRule    `json:"housing_exemption_rule,omitempty"`
	TravelExemptionRule  *AllowanceExemptionRule    `json:"travel_exemption_rule,omitempty"`
	StandardDeduction    *decimal.Decimal           `json:"standard_deduction,omitempty"`
	SectionLimits        map[string]decimal.Decimal `json:"section_limits,omitempty"`
}

func (r *UpdateTaxConfigurationRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.PayPeriodsPerYear != nil && *r.PayPeriodsPerYear < 1 {
		errs = append(errs, validator.ValidationError{
			Field:   "pay_periods_per_year",
			Message: "must be at least 1",
		})
	}
	if r.StandardDeduction != nil && r.StandardDeduction.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "standard_deduction",
			Message: "must be non-negative",
		})
	}
	if r.IncomeTaxSlabs != nil {
		errs = append(errs, validateIncomeTaxSlabs("income_tax_slabs", r.IncomeTaxSlabs)...)
	}
	if r.ProfessionalTaxSlabs != nil {
		errs = append(errs, validateProfessionalTaxSlabs("professional_tax_slabs", r.ProfessionalTaxSlabs)...)
	}
	if r.SocialSecurity != nil {
		errs = append(errs, validateContribution("social_security", *r.SocialSecurity)...)
	}
	if r.HealthInsurance != nil {
		errs = append(errs, validateContribution("health_insurance", *r.HealthInsurance)...)
	}
	if r.HousingExemptionRule != nil {
		allowed := []ExemptionRuleType{RuleTypePercentageOfBasic, RuleTypeFixedAmount, RuleTypeActualRent}
		errs = append(errs, validateExemptionRule("housing_exemption_rule", *r.HousingExemptionRule, allowed)...)
	}
	if r.TravelExemptionRule != nil {
		allowed := []ExemptionRuleType{RuleTypeActualExpense, RuleTypeFixedAmount, RuleTypePercentageOfBasic}
		errs = append(errs, validateExemptionRule("travel_exemption_rule", *r.TravelExemptionRule, allowed)...)
	}
	for key, limit := range r.SectionLimits {
		if !SectionKey(key).IsValid() {
			errs = append(errs, validator.ValidationError{
				Field:   "section_limits." + key,
				Message: "unknown section key",
			})
		}
		if limit.IsNegative() {
			errs = append(errs, validator.ValidationError{
				Field:   "section_limits." + key,
				Message: "limit must be non-negative",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type TaxConfigurationResponse struct {
	ID                   string                     `json:"id"`
	CompanyID            string                     `json:"company_id"`
	Country              string                     `json:"country"`
	State                string                     `json:"state"`
	FinancialYear        string                     `json:"financial_year"`
	PayPeriodsPerYear    int                        `json:"pay_periods_per_year"`
	IncomeTaxSlabs       []TaxSlab                  `json:"income_tax_slabs"`
	SocialSecurity       ContributionSetting        `json:"social_security"`
	HealthInsurance      ContributionSetting        `json:"health_insurance"`
	ProfessionalTaxSlabs []ProfessionalTaxSlab      `json:"professional_tax_slabs,omitempty"`
	HousingExemptionRule *AllowanceExemptionRule    `json:"housing_exemption_rule,omitempty"`
	TravelExemptionRule  *AllowanceExemptionRule    `json:"travel_exemption_rule,omitempty"`
	StandardDeduction    decimal.Decimal            `json:"standard_deduction"`
	SectionLimits        map[string]decimal.Decimal `json:"section_limits,omitempty"`
	CreatedAt            time.Time                  `json:"created_at"`
	UpdatedAt            time.Time                  `json:"updated_at"`
}

type TaxConfigurationFilter struct {
	Country       *string
	FinancialYear *string
}

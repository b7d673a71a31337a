package taxconfig

import (
	"testing"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func validCreateRequest() CreateTaxConfigurationRequest {
	return CreateTaxConfigurationRequest{
		Country:       "IN",
		State:         "KA",
		FinancialYear: "2025-2026",
		IncomeTaxSlabs: []TaxSlab{
			{From: d("0"), To: dp("250000"), Rate: d("0")},
			{From: d("250000"), To: dp("500000"), Rate: d("5")},
			{From: d("500000"), To: nil, Rate: d("20")},
		},
		SocialSecurity: ContributionSetting{
			Enabled:      true,
			EmployeeRate: d("12"),
			EmployerRate: d("12"),
			MaxSalary:    d("15000"),
		},
		HealthInsurance: ContributionSetting{Enabled: false},
		ProfessionalTaxSlabs: []ProfessionalTaxSlab{
			{From: d("0"), To: dp("15000"), Amount: d("0")},
			{From: d("15000"), To: nil, Amount: d("200")},
		},
		HousingExemptionRule: &AllowanceExemptionRule{
			Type:              RuleTypePercentageOfBasic,
			MaxPercentage:     dp("50"),
			MinRentPercentage: dp("10"),
		},
		StandardDeduction: d("50000"),
		SectionLimits: map[string]decimal.Decimal{
			"section80C": d("150000"),
			"section80D": d("25000"),
		},
	}
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	var errs validator.ValidationErrors
	require.ErrorAs(t, err, &errs)
	return errs.ToMap()
}

func TestCreateTaxConfigurationRequest_Validate(t *testing.T) {
	req := validCreateRequest()
	assert.NoError(t, req.Validate())
}

func TestCreateTaxConfigurationRequest_Scope(t *testing.T) {
	req := validCreateRequest()
	req.Country = "India"
	req.State = " "
	req.FinancialYear = "2025-2027"

	errors := fieldErrors(t, req.Validate())
	assert.Contains(t, errors, "country")
	assert.Contains(t, errors, "state")
	assert.Contains(t, errors, "financial_year")
}

func TestValidateIncomeTaxSlabs(t *testing.T) {
	tests := []struct {
		name      string
		slabs     []TaxSlab
		wantField string
	}{
		{
			name:      "empty schedule",
			slabs:     nil,
			wantField: "income_tax_slabs",
		},
		{
			name: "gap between slabs",
			slabs: []TaxSlab{
				{From: d("0"), To: dp("250000"), Rate: d("0")},
				{From: d("300000"), To: nil, Rate: d("20")},
			},
			wantField: "income_tax_slabs[0]",
		},
		{
			name: "overlapping slabs",
			slabs: []TaxSlab{
				{From: d("0"), To: dp("250000"), Rate: d("0")},
				{From: d("200000"), To: nil, Rate: d("20")},
			},
			wantField: "income_tax_slabs[0]",
		},
		{
			name: "last slab closed",
			slabs: []TaxSlab{
				{From: d("0"), To: dp("250000"), Rate: d("0")},
				{From: d("250000"), To: dp("500000"), Rate: d("5")},
			},
			wantField: "income_tax_slabs[1]",
		},
		{
			name: "open-ended slab before the last",
			slabs: []TaxSlab{
				{From: d("0"), To: nil, Rate: d("0")},
				{From: d("250000"), To: nil, Rate: d("5")},
			},
			wantField: "income_tax_slabs[0]",
		},
		{
			name: "rate above 100",
			slabs: []TaxSlab{
				{From: d("0"), To: nil, Rate: d("120")},
			},
			wantField: "income_tax_slabs[0]",
		},
		{
			name: "inverted band",
			slabs: []TaxSlab{
				{From: d("250000"), To: dp("100000"), Rate: d("5")},
				{From: d("100000"), To: nil, Rate: d("20")},
			},
			wantField: "income_tax_slabs[0]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			req.IncomeTaxSlabs = tt.slabs

			errors := fieldErrors(t, req.Validate())
			assert.Contains(t, errors, tt.wantField)
		})
	}
}

func TestValidateProfessionalTaxSlabs(t *testing.T) {
	req := validCreateRequest()
	req.ProfessionalTaxSlabs = []ProfessionalTaxSlab{
		{From: d("0"), To: dp("15000"), Amount: d("0")},
		{From: d("20000"), To: nil, Amount: d("200")},
	}

	errors := fieldErrors(t, req.Validate())
	assert.Contains(t, errors, "professional_tax_slabs[0]")
}

func TestValidateProfessionalTaxSlabs_ClosedScheduleAllowed(t *testing.T) {
	// Unlike income tax, the last band may be closed: income above every
	// band simply owes no professional tax.
	req := validCreateRequest()
	req.ProfessionalTaxSlabs = []ProfessionalTaxSlab{
		{From: d("0"), To: dp("15000"), Amount: d("0")},
		{From: d("15000"), To: dp("25000"), Amount: d("200")},
	}

	assert.NoError(t, req.Validate())
}

func TestValidateContribution(t *testing.T) {
	req := validCreateRequest()
	req.SocialSecurity = ContributionSetting{
		Enabled:      true,
		EmployeeRate: d("-1"),
		EmployerRate: d("150"),
		MaxSalary:    d("0"),
	}

	errors := fieldErrors(t, req.Validate())
	assert.Contains(t, errors, "social_security.employee_rate")
	assert.Contains(t, errors, "social_security.employer_rate")
	assert.Contains(t, errors, "social_security.max_salary")
}

func TestValidateContribution_DisabledSkipsChecks(t *testing.T) {
	req := validCreateRequest()
	req.HealthInsurance = ContributionSetting{
		Enabled:      false,
		EmployeeRate: d("-1"),
		MaxSalary:    d("0"),
	}

	assert.NoError(t, req.Validate())
}

func TestValidateExemptionRule(t *testing.T) {
	tests := []struct {
		name      string
		rule      AllowanceExemptionRule
		wantField string
	}{
		{
			name: "percentage rule with fixed amount field",
			rule: AllowanceExemptionRule{
				Type:          RuleTypePercentageOfBasic,
				MaxPercentage: dp("50"),
				Amount:        dp("1600"),
			},
			wantField: "housing_exemption_rule.amount",
		},
		{
			name:      "percentage rule missing max percentage",
			rule:      AllowanceExemptionRule{Type: RuleTypePercentageOfBasic},
			wantField: "housing_exemption_rule.max_percentage",
		},
		{
			name:      "fixed amount rule missing amount",
			rule:      AllowanceExemptionRule{Type: RuleTypeFixedAmount},
			wantField: "housing_exemption_rule.amount",
		},
		{
			name: "actual rent rule with extra fields",
			rule: AllowanceExemptionRule{
				Type:   RuleTypeActualRent,
				Amount: dp("1000"),
			},
			wantField: "housing_exemption_rule",
		},
		{
			name:      "actual expense not allowed for housing",
			rule:      AllowanceExemptionRule{Type: RuleTypeActualExpense},
			wantField: "housing_exemption_rule.type",
		},
		{
			name:      "unknown rule type",
			rule:      AllowanceExemptionRule{Type: "percentage_of_gross"},
			wantField: "housing_exemption_rule.type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			req.HousingExemptionRule = &tt.rule

			errors := fieldErrors(t, req.Validate())
			assert.Contains(t, errors, tt.wantField)
		})
	}
}

func TestValidateSectionLimits(t *testing.T) {
	req := validCreateRequest()
	req.SectionLimits = map[string]decimal.Decimal{
		"section80C": d("-1"),
		"section99Z": d("10000"),
	}

	errors := fieldErrors(t, req.Validate())
	assert.Contains(t, errors, "section_limits.section80C")
	assert.Contains(t, errors, "section_limits.section99Z")
}

func TestUpdateTaxConfigurationRequest_Validate(t *testing.T) {
	req := UpdateTaxConfigurationRequest{
		ID: "cfg-1",
		IncomeTaxSlabs: []TaxSlab{
			{From: d("0"), To: dp("300000"), Rate: d("0")},
			{From: d("300000"), To: nil, Rate: d("10")},
		},
		StandardDeduction: dp("75000"),
	}
	assert.NoError(t, req.Validate())

	req.StandardDeduction = dp("-1")
	errors := fieldErrors(t, req.Validate())
	assert.Contains(t, errors, "standard_deduction")
}

func TestFinancialYearForPeriod(t *testing.T) {
	assert.Equal(t, "2025-2026", FinancialYearForPeriod(4, 2025))
	assert.Equal(t, "2025-2026", FinancialYearForPeriod(12, 2025))
	assert.Equal(t, "2025-2026", FinancialYearForPeriod(3, 2026))
	assert.Equal(t, "2024-2025", FinancialYearForPeriod(3, 2025))
}

func TestSectionKeyIsValid(t *testing.T) {
	for _, key := range ValidSectionKeys() {
		assert.True(t, key.IsValid(), "expected %s to be valid", key)
	}
	assert.False(t, SectionKey("section80Z").IsValid())
	assert.False(t, SectionKey("").IsValid())
}

package payroll

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/declaration"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/salarystructure"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/taxconfig"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dp(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func assertDecimalEqual(t *testing.T, want, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, want.Equal(got), "want %s, got %s (%v)", want, got, msgAndArgs)
}

// Three-slab schedule used across the income tax tests: 0% up to 250000,
// 5% up to 500000, 30% above.
func progressiveSlabs() []taxconfig.TaxSlab {
	return []taxconfig.TaxSlab{
		{From: d("0"), To: dp("250000"), Rate: d("0")},
		{From: d("250000"), To: dp("500000"), Rate: d("5")},
		{From: d("500000"), To: nil, Rate: d("30")},
	}
}

func TestIncomeTaxOnSlabs(t *testing.T) {
	calc := NewCalculator()

	tests := []struct {
		name   string
		amount string
		want   string
	}{
		{name: "zero income", amount: "0", want: "0"},
		{name: "inside zero-rate slab", amount: "200000", want: "0"},
		{name: "exactly at first boundary", amount: "250000", want: "0"},
		{name: "inside second slab", amount: "300000", want: "2500"},
		{name: "exactly at second boundary", amount: "500000", want: "12500"},
		{name: "spanning all slabs", amount: "600000", want: "42500"},
		{name: "deep into open-ended slab", amount: "1500000", want: "312500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.IncomeTaxOnSlabs(progressiveSlabs(), d(tt.amount))
			assertDecimalEqual(t, d(tt.want), got)
		})
	}
}

func TestIncomeTaxOnSlabs_MonotonicAcrossBoundaries(t *testing.T) {
	calc := NewCalculator()
	slabs := progressiveSlabs()

	// Tax must never decrease as income rises, including one unit past
	// every slab boundary.
	amounts := []string{
		"0", "1", "249999", "250000", "250001",
		"499999", "500000", "500001", "750000", "2000000",
	}

	prev := decimal.NewFromInt(-1)
	for _, amount := range amounts {
		got := calc.IncomeTaxOnSlabs(slabs, d(amount))
		assert.True(t, got.GreaterThanOrEqual(prev),
			"tax decreased at amount %s: %s < %s", amount, got, prev)
		prev = got
	}
}

func TestIncomeTaxOnSlabs_BelowFirstSlab(t *testing.T) {
	calc := NewCalculator()
	slabs := []taxconfig.TaxSlab{
		{From: d("100000"), To: dp("500000"), Rate: d("10")},
		{From: d("500000"), To: nil, Rate: d("20")},
	}

	assertDecimalEqual(t, d("0"), calc.IncomeTaxOnSlabs(slabs, d("99999")))
	assertDecimalEqual(t, d("0"), calc.IncomeTaxOnSlabs(slabs, d("100000")))
	assertDecimalEqual(t, d("100"), calc.IncomeTaxOnSlabs(slabs, d("101000")))
}

func TestProfessionalTaxOnSlabs(t *testing.T) {
	calc := NewCalculator()
	slabs := []taxconfig.ProfessionalTaxSlab{
		{From: d("0"), To: dp("15000"), Amount: d("0")},
		{From: d("15000"), To: dp("25000"), Amount: d("150")},
		{From: d("25000"), To: nil, Amount: d("200")},
	}

	tests := []struct {
		name   string
		amount string
		want   string
	}{
		{name: "zero gross", amount: "0", want: "0"},
		{name: "first slab", amount: "12000", want: "0"},
		{name: "boundary belongs to lower slab", amount: "15000", want: "0"},
		{name: "second slab", amount: "20000", want: "150"},
		{name: "open-ended slab", amount: "90000", want: "200"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.ProfessionalTaxOnSlabs(slabs, d(tt.amount))
			assertDecimalEqual(t, d(tt.want), got)
		})
	}
}

func TestProfessionalTaxOnSlabs_NoContainingSlab(t *testing.T) {
	calc := NewCalculator()
	slabs := []taxconfig.ProfessionalTaxSlab{
		{From: d("10000"), To: dp("20000"), Amount: d("100")},
	}

	assertDecimalEqual(t, d("0"), calc.ProfessionalTaxOnSlabs(slabs, d("5000")))
	assertDecimalEqual(t, d("0"), calc.ProfessionalTaxOnSlabs(slabs, d("25000")))
	assertDecimalEqual(t, d("0"), calc.ProfessionalTaxOnSlabs(nil, d("25000")))
}

func TestContributionAmounts(t *testing.T) {
	calc := NewCalculator()

	t.Run("base above cap uses the cap", func(t *testing.T) {
		setting := taxconfig.ContributionSetting{
			Enabled:      true,
			EmployerRate: d("12"),
			EmployeeRate: d("12"),
			MaxSalary:    d("15000"),
		}

		employeeShare, employerShare, ok := calc.ContributionAmounts(setting, d("25000"))
		require.True(t, ok)
		assertDecimalEqual(t, d("1800"), employeeShare)
		assertDecimalEqual(t, d("1800"), employerShare)
	})

	t.Run("base below cap uses the base", func(t *testing.T) {
		setting := taxconfig.ContributionSetting{
			Enabled:      true,
			EmployerRate: d("4.75"),
			EmployeeRate: d("1.75"),
			MaxSalary:    d("21000"),
		}

		employeeShare, employerShare, ok := calc.ContributionAmounts(setting, d("10000"))
		require.True(t, ok)
		assertDecimalEqual(t, d("175"), employeeShare)
		assertDecimalEqual(t, d("475"), employerShare)
	})

	t.Run("disabled contribution is omitted", func(t *testing.T) {
		setting := taxconfig.ContributionSetting{
			Enabled:      false,
			EmployerRate: d("12"),
			EmployeeRate: d("12"),
			MaxSalary:    d("15000"),
		}

		_, _, ok := calc.ContributionAmounts(setting, d("25000"))
		assert.False(t, ok)
	})

	t.Run("capped share never exceeds the uncapped share", func(t *testing.T) {
		setting := taxconfig.ContributionSetting{
			Enabled:      true,
			EmployerRate: d("10"),
			EmployeeRate: d("10"),
			MaxSalary:    d("15000"),
		}

		for _, base := range []string{"0", "5000", "15000", "15001", "100000"} {
			employeeShare, _, ok := calc.ContributionAmounts(setting, d(base))
			require.True(t, ok)
			uncapped := d(base).Mul(d("10")).Div(d("100"))
			assert.True(t, employeeShare.LessThanOrEqual(uncapped),
				"base %s: capped share %s exceeds uncapped %s", base, employeeShare, uncapped)
		}
	})
}

func TestAllowanceExemption(t *testing.T) {
	calc := NewCalculator()

	t.Run("house rent three-way minimum", func(t *testing.T) {
		rule := taxconfig.AllowanceExemptionRule{
			Type:              taxconfig.RuleTypePercentageOfBasic,
			MaxPercentage:     dp("50"),
			MinRentPercentage: dp("10"),
		}

		// Rent paid beyond 10% of basic is the binding term:
		// min(12000, 8000-2000, 10000) = 6000.
		got, err := calc.AllowanceExemption(rule, d("12000"), d("20000"), d("8000"))
		require.NoError(t, err)
		assertDecimalEqual(t, d("6000"), got)
	})

	t.Run("house rent below minimum yields zero", func(t *testing.T) {
		rule := taxconfig.AllowanceExemptionRule{
			Type:              taxconfig.RuleTypePercentageOfBasic,
			MaxPercentage:     dp("50"),
			MinRentPercentage: dp("10"),
		}

		got, err := calc.AllowanceExemption(rule, d("12000"), d("20000"), d("1500"))
		require.NoError(t, err)
		assertDecimalEqual(t, d("0"), got)
	})

	t.Run("percentage cap without rent term", func(t *testing.T) {
		rule := taxconfig.AllowanceExemptionRule{
			Type:          taxconfig.RuleTypePercentageOfBasic,
			MaxPercentage: dp("20"),
		}

		got, err := calc.AllowanceExemption(rule, d("12000"), d("20000"), d("0"))
		require.NoError(t, err)
		assertDecimalEqual(t, d("4000"), got)
	})

	t.Run("fixed amount caps the allowance", func(t *testing.T) {
		rule := taxconfig.AllowanceExemptionRule{
			Type:   taxconfig.RuleTypeFixedAmount,
			Amount: dp("1600"),
		}

		got, err := calc.AllowanceExemption(rule, d("2500"), d("20000"), d("0"))
		require.NoError(t, err)
		assertDecimalEqual(t, d("1600"), got)

		got, err = calc.AllowanceExemption(rule, d("1000"), d("20000"), d("0"))
		require.NoError(t, err)
		assertDecimalEqual(t, d("1000"), got)
	})

	t.Run("actual rent bounded by allowance received", func(t *testing.T) {
		rule := taxconfig.AllowanceExemptionRule{Type: taxconfig.RuleTypeActualRent}

		got, err := calc.AllowanceExemption(rule, d("10000"), d("20000"), d("7000"))
		require.NoError(t, err)
		assertDecimalEqual(t, d("7000"), got)

		got, err = calc.AllowanceExemption(rule, d("5000"), d("20000"), d("7000"))
		require.NoError(t, err)
		assertDecimalEqual(t, d("5000"), got)
	})

	t.Run("unknown rule type is a configuration error", func(t *testing.T) {
		rule := taxconfig.AllowanceExemptionRule{Type: taxconfig.ExemptionRuleType("mystery")}

		_, err := calc.AllowanceExemption(rule, d("1000"), d("20000"), d("0"))
		require.Error(t, err)
		assert.ErrorIs(t, err, taxconfig.ErrInvalidExemptionRule)
	})

	t.Run("misconfigured percentage rule is rejected", func(t *testing.T) {
		rule := taxconfig.AllowanceExemptionRule{Type: taxconfig.RuleTypePercentageOfBasic}

		_, err := calc.AllowanceExemption(rule, d("1000"), d("20000"), d("0"))
		assert.ErrorIs(t, err, taxconfig.ErrInvalidExemptionRule)
	})
}

// ========== PAYSLIP ASSEMBLY ==========

func monthlyComponents() []salarystructure.SalaryComponent {
	return []salarystructure.SalaryComponent{
		{ID: "c1", Name: "Basic Salary", Type: salarystructure.ComponentTypeEarning, Category: salarystructure.CategoryBasic, Amount: d("50000"), IsTaxable: true, Priority: 1},
		{ID: "c2", Name: "House Rent Allowance", Type: salarystructure.ComponentTypeEarning, Category: salarystructure.CategoryHousingAllowance, Amount: d("40"), IsPercentage: true, PercentageOf: "Basic Salary", IsTaxable: true, Priority: 2},
		{ID: "c3", Name: "Special Allowance", Type: salarystructure.ComponentTypeEarning, Category: salarystructure.CategorySpecialAllowance, Amount: d("10000"), IsTaxable: true, Priority: 3},
	}
}

func testTaxConfiguration() taxconfig.TaxConfiguration {
	return taxconfig.TaxConfiguration{
		ID:                "tc-1",
		CompanyID:         "co-1",
		Country:           "IN",
		FinancialYear:     "2025-2026",
		PayPeriodsPerYear: 12,
		IncomeTaxSlabs:    progressiveSlabs(),
		SocialSecurity: taxconfig.ContributionSetting{
			Enabled: true, EmployerRate: d("12"), EmployeeRate: d("12"), MaxSalary: d("15000"),
		},
		HealthInsurance: taxconfig.ContributionSetting{
			Enabled: false, EmployerRate: d("4.75"), EmployeeRate: d("1.75"), MaxSalary: d("21000"),
		},
		ProfessionalTaxSlabs: []taxconfig.ProfessionalTaxSlab{
			{From: d("0"), To: dp("15000"), Amount: d("0")},
			{From: d("15000"), To: nil, Amount: d("200")},
		},
		HousingExemptionRule: &taxconfig.AllowanceExemptionRule{
			Type:              taxconfig.RuleTypePercentageOfBasic,
			MaxPercentage:     dp("50"),
			MinRentPercentage: dp("10"),
		},
		StandardDeduction: d("50000"),
		SectionLimits: map[taxconfig.SectionKey]decimal.Decimal{
			taxconfig.Section80C: d("150000"),
			taxconfig.Section80D: d("25000"),
		},
	}
}

func testCalculationInput() CalculationInput {
	return CalculationInput{
		Employee:    employee.Employee{ID: "emp-1", CompanyID: "co-1", Name: "Asha Pillai"},
		Config:      testTaxConfiguration(),
		Components:  monthlyComponents(),
		MonthlyRent: d("18000"),
		PeriodMonth: 7,
		PeriodYear:  2025,
		GeneratedAt: time.Date(2025, 7, 31, 10, 0, 0, 0, time.UTC),
	}
}

func TestBuildPayslip(t *testing.T) {
	calc := NewCalculator()

	p, err := calc.BuildPayslip(testCalculationInput())
	require.NoError(t, err)

	// Gross: 50000 basic + 20000 HRA (40% of basic) + 10000 special.
	assertDecimalEqual(t, d("80000"), p.GrossSalary)
	assert.Len(t, p.Earnings, 3)

	// Statutory deductions: social security on capped basic, professional
	// tax from the gross slab, plus the income tax line.
	assert.Len(t, p.Deductions, 3)
	assertDecimalEqual(t, d("1800"), p.Deductions[0].Amount)
	assert.Equal(t, "Social Security", p.Deductions[0].Name)
	assertDecimalEqual(t, d("200"), p.Deductions[1].Amount)
	assert.Equal(t, "Professional Tax", p.Deductions[1].Name)
	assert.Equal(t, "Income Tax (TDS)", p.Deductions[2].Name)

	// Health insurance is disabled: no line at all, employee or employer.
	for _, line := range p.Deductions {
		assert.NotEqual(t, "Health Insurance", line.Name)
	}
	require.Len(t, p.EmployerContributions, 1)
	assert.Equal(t, "Social Security (Employer)", p.EmployerContributions[0].Name)
	assertDecimalEqual(t, d("1800"), p.EmployerContributions[0].Amount)

	// Housing exemption: min(20000, 18000-5000, 25000) = 13000.
	require.Len(t, p.Exemptions, 1)
	assertDecimalEqual(t, d("13000"), p.Exemptions[0].Amount)

	// Taxable: 80000 - 1800 - 200 - 13000 - 50000/12.
	wantTaxable := d("80000").Sub(d("2000")).Sub(d("13000")).Sub(d("4166.67"))
	assertDecimalEqual(t, wantTaxable, p.TaxableIncome)

	// Tax: annualize, run the slabs, divide back.
	annual := wantTaxable.Mul(d("12"))
	wantTax := calc.IncomeTaxOnSlabs(progressiveSlabs(), annual).Div(d("12")).Round(2)
	assertDecimalEqual(t, wantTax, p.TaxAmount)

	assertDecimalEqual(t, p.GrossSalary.Sub(p.TotalDeductions), p.NetSalary)
	require.NoError(t, p.Reconcile())
}

func TestBuildPayslip_VerifiedDeclarationExemptions(t *testing.T) {
	calc := NewCalculator()

	input := testCalculationInput()
	verified80C := d("180000")
	verified80D := d("20000")
	input.Declaration = &declaration.TaxDeclaration{
		ID:            "decl-1",
		EmployeeID:    "emp-1",
		CompanyID:     "co-1",
		FinancialYear: "2025-2026",
		Status:        declaration.DeclarationStatusVerified,
		Sections: map[taxconfig.SectionKey]declaration.DeclarationSection{
			taxconfig.Section80C: {
				Items:          map[string]decimal.Decimal{"elss": d("180000")},
				VerifiedAmount: &verified80C,
			},
			taxconfig.Section80D: {
				Items:          map[string]decimal.Decimal{"health premium": d("20000")},
				VerifiedAmount: &verified80D,
			},
		},
	}

	p, err := calc.BuildPayslip(input)
	require.NoError(t, err)

	// 80C is capped at 150000 before being spread over 12 periods; 80D is
	// under its 25000 limit and passes through.
	require.Len(t, p.Exemptions, 3)
	assert.Equal(t, "Section 80C", p.Exemptions[1].Name)
	assertDecimalEqual(t, d("12500"), p.Exemptions[1].Amount)
	assert.Equal(t, "Section 80D", p.Exemptions[2].Name)
	assertDecimalEqual(t, d("1666.67"), p.Exemptions[2].Amount)

	base, err := calc.BuildPayslip(testCalculationInput())
	require.NoError(t, err)
	assert.True(t, p.TaxableIncome.LessThan(base.TaxableIncome),
		"verified exemptions must reduce taxable income")
	require.NoError(t, p.Reconcile())
}

func TestBuildPayslip_UnverifiedDeclarationIgnored(t *testing.T) {
	calc := NewCalculator()

	input := testCalculationInput()
	input.Declaration = &declaration.TaxDeclaration{
		Status: declaration.DeclarationStatusSubmitted,
		Sections: map[taxconfig.SectionKey]declaration.DeclarationSection{
			taxconfig.Section80C: {Items: map[string]decimal.Decimal{"elss": d("150000")}},
		},
	}

	p, err := calc.BuildPayslip(input)
	require.NoError(t, err)

	base, err := calc.BuildPayslip(testCalculationInput())
	require.NoError(t, err)
	assertDecimalEqual(t, base.TaxableIncome, p.TaxableIncome)
	assertDecimalEqual(t, base.TaxAmount, p.TaxAmount)
}

func TestBuildPayslip_Deterministic(t *testing.T) {
	calc := NewCalculator()

	input := testCalculationInput()
	verified := d("100000")
	input.Declaration = &declaration.TaxDeclaration{
		Status: declaration.DeclarationStatusVerified,
		Sections: map[taxconfig.SectionKey]declaration.DeclarationSection{
			taxconfig.Section80C: {VerifiedAmount: &verified},
		},
	}

	first, err := calc.BuildPayslip(input)
	require.NoError(t, err)
	second, err := calc.BuildPayslip(input)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBuildPayslip_MissingBasicComponent(t *testing.T) {
	calc := NewCalculator()

	input := testCalculationInput()
	input.Components = []salarystructure.SalaryComponent{
		{ID: "c1", Name: "Consulting Fee", Type: salarystructure.ComponentTypeEarning, Category: salarystructure.CategoryOther, Amount: d("60000"), IsTaxable: true, Priority: 1},
	}

	_, err := calc.BuildPayslip(input)
	assert.ErrorIs(t, err, salarystructure.ErrMissingBasicComponent)
}

func TestBuildPayslip_UnresolvedPercentageBase(t *testing.T) {
	calc := NewCalculator()

	input := testCalculationInput()
	input.Components = []salarystructure.SalaryComponent{
		{ID: "c1", Name: "House Rent Allowance", Type: salarystructure.ComponentTypeEarning, Category: salarystructure.CategoryHousingAllowance, Amount: d("40"), IsPercentage: true, PercentageOf: "Basic Salary", IsTaxable: true, Priority: 1},
	}

	_, err := calc.BuildPayslip(input)
	assert.ErrorIs(t, err, salarystructure.ErrUnresolvedPercentageBase)
}

func TestBuildPayslip_OverridesReplaceAmounts(t *testing.T) {
	calc := NewCalculator()

	input := testCalculationInput()
	input.Overrides = map[string]decimal.Decimal{"Basic Salary": d("60000")}

	p, err := calc.BuildPayslip(input)
	require.NoError(t, err)

	// HRA follows the overridden basic: 60000 + 24000 + 10000.
	assertDecimalEqual(t, d("94000"), p.GrossSalary)
}

func TestBuildPayslip_StructureDeductionsStayPostTax(t *testing.T) {
	calc := NewCalculator()

	input := testCalculationInput()
	input.Components = append(input.Components, salarystructure.SalaryComponent{
		ID: "c4", Name: "Loan Repayment", Type: salarystructure.ComponentTypeDeduction,
		Category: salarystructure.CategoryLoanRepayment, Amount: d("5000"), Priority: 4,
	})

	base, err := calc.BuildPayslip(testCalculationInput())
	require.NoError(t, err)
	p, err := calc.BuildPayslip(input)
	require.NoError(t, err)

	// A non-statutory deduction reduces net pay but not taxable income.
	assertDecimalEqual(t, base.TaxableIncome, p.TaxableIncome)
	assertDecimalEqual(t, base.NetSalary.Sub(d("5000")), p.NetSalary)
	require.NoError(t, p.Reconcile())
}

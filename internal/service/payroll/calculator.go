package payroll

import (
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/declaration"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/salarystructure"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/taxconfig"
	"github.com/shopspring/decimal"
)

// Line categories the calculator generates on top of the structure's own.
const (
	categoryIncomeTax       = "income_tax"
	categorySocialSecurity  = "social_security"
	categoryHealthInsurance = "health_insurance"
	categoryProfessionalTax = "professional_tax"
)

var hundred = decimal.NewFromInt(100)

// CalculationInput is everything one employee's payslip depends on. The
// calculator reads only this snapshot: no repository, no clock, no shared
// state, so payslips for different employees can be computed in parallel.
type CalculationInput struct {
	Employee           employee.Employee
	Config             taxconfig.TaxConfiguration
	Components         []salarystructure.SalaryComponent
	Overrides          map[string]decimal.Decimal
	MonthlyRent        decimal.Decimal
	MonthlyTravelSpend decimal.Decimal
	Declaration        *declaration.TaxDeclaration
	PeriodMonth        int
	PeriodYear         int
	GeneratedAt        time.Time
}

// Calculator computes payslip breakdowns from configuration snapshots.
type Calculator struct{}

func NewCalculator() *Calculator {
	return &Calculator{}
}

// IncomeTaxOnSlabs evaluates a marginal tax schedule: each slab taxes the
// income falling inside it at the slab's rate. Amounts below the first slab
// yield zero; the open-ended top slab taxes without an upper bound.
func (c *Calculator) IncomeTaxOnSlabs(slabs []taxconfig.TaxSlab, amount decimal.Decimal) decimal.Decimal {
	tax := decimal.Zero

	for _, slab := range slabs {
		if amount.LessThanOrEqual(slab.From) {
			break
		}

		upper := amount
		if slab.To != nil {
			upper = decimal.Min(amount, *slab.To)
		}

		incomeInSlab := upper.Sub(slab.From)
		if incomeInSlab.IsPositive() {
			tax = tax.Add(incomeInSlab.Mul(slab.Rate).Div(hundred))
		}
	}

	return tax
}

// ProfessionalTaxOnSlabs returns the flat amount of the slab containing the
// input, zero when no slab contains it. A slab contains amounts in
// (from, to], matching the income slab boundary convention.
func (c *Calculator) ProfessionalTaxOnSlabs(slabs []taxconfig.ProfessionalTaxSlab, amount decimal.Decimal) decimal.Decimal {
	for _, slab := range slabs {
		if amount.LessThanOrEqual(slab.From) {
			continue
		}
		if slab.To == nil || amount.LessThanOrEqual(*slab.To) {
			return slab.Amount
		}
	}
	return decimal.Zero
}

// ContributionAmounts computes the employee and employer shares of a capped
// contribution. ok is false when the contribution is disabled: disabled
// contributions are omitted from the breakdown, not shown as zero.
func (c *Calculator) ContributionAmounts(setting taxconfig.ContributionSetting, base decimal.Decimal) (employeeShare, employerShare decimal.Decimal, ok bool) {
	if !setting.Enabled {
		return decimal.Zero, decimal.Zero, false
	}

	cappedBase := decimal.Min(base, setting.MaxSalary)
	employeeShare = cappedBase.Mul(setting.EmployeeRate).Div(hundred).Round(2)
	employerShare = cappedBase.Mul(setting.EmployerRate).Div(hundred).Round(2)
	return employeeShare, employerShare, true
}

// AllowanceExemption evaluates one exemption rule. actualAllowance is the
// allowance the employee received this period, basic the resolved basic
// salary, actualPaid the rent paid or expense incurred. The switch is
// exhaustive: a rule type the calculator does not know is a configuration
// error, not a silent zero.
func (c *Calculator) AllowanceExemption(rule taxconfig.AllowanceExemptionRule, actualAllowance, basic, actualPaid decimal.Decimal) (decimal.Decimal, error) {
	var exemption decimal.Decimal

	switch rule.Type {
	case taxconfig.RuleTypePercentageOfBasic:
		if rule.MaxPercentage == nil {
			return decimal.Zero, fmt.Errorf("%w: percentage_of_basic rule has no max_percentage", taxconfig.ErrInvalidExemptionRule)
		}
		ceiling := basic.Mul(*rule.MaxPercentage).Div(hundred)
		if rule.MinRentPercentage != nil {
			// House-rent relief: the least of allowance received, rent paid
			// beyond min_rent_percentage of basic, and max_percentage of basic.
			rentExcess := actualPaid.Sub(basic.Mul(*rule.MinRentPercentage).Div(hundred))
			exemption = decimal.Min(actualAllowance, rentExcess, ceiling)
		} else {
			exemption = decimal.Min(actualAllowance, ceiling)
		}
	case taxconfig.RuleTypeFixedAmount:
		if rule.Amount == nil {
			return decimal.Zero, fmt.Errorf("%w: fixed_amount rule has no amount", taxconfig.ErrInvalidExemptionRule)
		}
		exemption = decimal.Min(actualAllowance, *rule.Amount)
	case taxconfig.RuleTypeActualRent, taxconfig.RuleTypeActualExpense:
		exemption = decimal.Min(actualPaid, actualAllowance)
	default:
		return decimal.Zero, fmt.Errorf("%w: unknown rule type %q", taxconfig.ErrInvalidExemptionRule, rule.Type)
	}

	if exemption.IsNegative() {
		exemption = decimal.Zero
	}
	return exemption.Round(2), nil
}

// BuildPayslip assembles one employee's payslip for a period:
//
//  1. Resolve structure components in priority order.
//  2. Sum earnings into gross, carry structure deductions over.
//  3. Add statutory contribution and professional tax lines.
//  4. Evaluate allowance exemptions and capped verified section exemptions.
//  5. Derive taxable income, run the income tax slabs on the annualized
//     figure, and spread the liability back over the year's pay periods.
//  6. Reconcile totals. A payslip that does not reconcile is never returned.
//
// Annualization policy: the standard deduction and verified section amounts
// are annual figures and are divided by PayPeriodsPerYear before entering
// the period's taxable income; allowance exemptions are per period already.
func (c *Calculator) BuildPayslip(input CalculationInput) (payroll.Payslip, error) {
	cfg := input.Config

	resolved, err := salarystructure.ResolveComponents(input.Components, input.Overrides)
	if err != nil {
		return payroll.Payslip{}, err
	}

	var (
		earnings   []payroll.PayslipLine
		deductions []payroll.PayslipLine
		employer   []payroll.PayslipLine
		exemptions []payroll.PayslipLine
	)

	gross := decimal.Zero
	taxableEarnings := decimal.Zero
	preTaxDeductions := decimal.Zero
	basic := decimal.Zero
	hasBasic := false
	housingAllowance := decimal.Zero
	travelAllowance := decimal.Zero

	for _, comp := range resolved {
		line := payroll.PayslipLine{
			Name:        comp.Name,
			Category:    string(comp.Category),
			Amount:      comp.Amount,
			IsTaxable:   comp.IsTaxable,
			IsStatutory: comp.IsStatutory,
		}

		switch comp.Type {
		case salarystructure.ComponentTypeEarning:
			earnings = append(earnings, line)
			gross = gross.Add(comp.Amount)
			if comp.IsTaxable {
				taxableEarnings = taxableEarnings.Add(comp.Amount)
			}
			switch comp.Category {
			case salarystructure.CategoryBasic:
				basic = basic.Add(comp.Amount)
				hasBasic = true
			case salarystructure.CategoryHousingAllowance:
				housingAllowance = housingAllowance.Add(comp.Amount)
			case salarystructure.CategoryTravelAllowance:
				travelAllowance = travelAllowance.Add(comp.Amount)
			}
		case salarystructure.ComponentTypeDeduction:
			deductions = append(deductions, line)
			if comp.IsStatutory {
				preTaxDeductions = preTaxDeductions.Add(comp.Amount)
			}
		}
	}

	// Contribution bases and percentage-of-basic exemptions need a basic
	// component to exist.
	needsBasic := cfg.SocialSecurity.Enabled || cfg.HealthInsurance.Enabled ||
		ruleNeedsBasic(cfg.HousingExemptionRule) || ruleNeedsBasic(cfg.TravelExemptionRule)
	if needsBasic && !hasBasic {
		return payroll.Payslip{}, salarystructure.ErrMissingBasicComponent
	}

	if employeeShare, employerShare, ok := c.ContributionAmounts(cfg.SocialSecurity, basic); ok {
		deductions = append(deductions, payroll.PayslipLine{
			Name: "Social Security", Category: categorySocialSecurity, Amount: employeeShare, IsStatutory: true,
		})
		employer = append(employer, payroll.PayslipLine{
			Name: "Social Security (Employer)", Category: categorySocialSecurity, Amount: employerShare, IsStatutory: true,
		})
		preTaxDeductions = preTaxDeductions.Add(employeeShare)
	}
	if employeeShare, employerShare, ok := c.ContributionAmounts(cfg.HealthInsurance, basic); ok {
		deductions = append(deductions, payroll.PayslipLine{
			Name: "Health Insurance", Category: categoryHealthInsurance, Amount: employeeShare, IsStatutory: true,
		})
		employer = append(employer, payroll.PayslipLine{
			Name: "Health Insurance (Employer)", Category: categoryHealthInsurance, Amount: employerShare, IsStatutory: true,
		})
		preTaxDeductions = preTaxDeductions.Add(employeeShare)
	}

	professionalTax := c.ProfessionalTaxOnSlabs(cfg.ProfessionalTaxSlabs, gross).Round(2)
	if professionalTax.IsPositive() {
		deductions = append(deductions, payroll.PayslipLine{
			Name: "Professional Tax", Category: categoryProfessionalTax, Amount: professionalTax, IsStatutory: true,
		})
		preTaxDeductions = preTaxDeductions.Add(professionalTax)
	}

	totalExemptions := decimal.Zero
	if cfg.HousingExemptionRule != nil && housingAllowance.IsPositive() {
		exempt, err := c.AllowanceExemption(*cfg.HousingExemptionRule, housingAllowance, basic, input.MonthlyRent)
		if err != nil {
			return payroll.Payslip{}, err
		}
		if exempt.IsPositive() {
			exemptions = append(exemptions, payroll.PayslipLine{
				Name: "Housing Allowance Exemption", Category: string(salarystructure.CategoryHousingAllowance), Amount: exempt,
			})
			totalExemptions = totalExemptions.Add(exempt)
		}
	}
	if cfg.TravelExemptionRule != nil && travelAllowance.IsPositive() {
		exempt, err := c.AllowanceExemption(*cfg.TravelExemptionRule, travelAllowance, basic, input.MonthlyTravelSpend)
		if err != nil {
			return payroll.Payslip{}, err
		}
		if exempt.IsPositive() {
			exemptions = append(exemptions, payroll.PayslipLine{
				Name: "Travel Allowance Exemption", Category: string(salarystructure.CategoryTravelAllowance), Amount: exempt,
			})
			totalExemptions = totalExemptions.Add(exempt)
		}
	}

	periods := decimal.NewFromInt(int64(cfg.PayPeriodsPerYear))
	for _, section := range sectionExemptions(input.Declaration, cfg.SectionLimits) {
		periodAmount := section.amount.Div(periods).Round(2)
		if !periodAmount.IsPositive() {
			continue
		}
		exemptions = append(exemptions, payroll.PayslipLine{
			Name: sectionLineName(section.key), Category: string(section.key), Amount: periodAmount,
		})
		totalExemptions = totalExemptions.Add(periodAmount)
	}

	periodStandardDeduction := cfg.StandardDeduction.Div(periods).Round(2)

	taxableIncome := taxableEarnings.
		Sub(preTaxDeductions).
		Sub(totalExemptions).
		Sub(periodStandardDeduction)
	if taxableIncome.IsNegative() {
		taxableIncome = decimal.Zero
	}
	taxableIncome = taxableIncome.Round(2)

	annualTax := c.IncomeTaxOnSlabs(cfg.IncomeTaxSlabs, taxableIncome.Mul(periods))
	taxAmount := annualTax.Div(periods).Round(2)
	if taxAmount.IsPositive() {
		deductions = append(deductions, payroll.PayslipLine{
			Name: "Income Tax (TDS)", Category: categoryIncomeTax, Amount: taxAmount, IsStatutory: true,
		})
	}

	totalDeductions := decimal.Zero
	for _, line := range deductions {
		totalDeductions = totalDeductions.Add(line.Amount)
	}

	p := payroll.Payslip{
		EmployeeID:            input.Employee.ID,
		CompanyID:             input.Employee.CompanyID,
		TaxConfigurationID:    cfg.ID,
		PeriodMonth:           input.PeriodMonth,
		PeriodYear:            input.PeriodYear,
		Earnings:              earnings,
		Deductions:            deductions,
		EmployerContributions: employer,
		Exemptions:            exemptions,
		GrossSalary:           gross.Round(2),
		TotalDeductions:       totalDeductions.Round(2),
		StandardDeduction:     periodStandardDeduction,
		TaxableIncome:         taxableIncome,
		TaxAmount:             taxAmount,
		NetSalary:             gross.Sub(totalDeductions).Round(2),
		Status:                payroll.PayslipStatusGenerated,
		GeneratedAt:           input.GeneratedAt,
	}

	if err := p.Reconcile(); err != nil {
		return payroll.Payslip{}, err
	}

	return p, nil
}

func ruleNeedsBasic(rule *taxconfig.AllowanceExemptionRule) bool {
	return rule != nil && rule.Type == taxconfig.RuleTypePercentageOfBasic
}

type sectionExemption struct {
	key    taxconfig.SectionKey
	amount decimal.Decimal
}

// sectionExemptions returns the usable annual exemption per declared
// section: only verified amounts count, each capped at the configured
// section limit. Sections the configuration does not recognize are skipped.
// Keys are sorted so the payslip breakdown is deterministic.
func sectionExemptions(d *declaration.TaxDeclaration, limits map[taxconfig.SectionKey]decimal.Decimal) []sectionExemption {
	if d == nil || d.Status != declaration.DeclarationStatusVerified {
		return nil
	}

	keys := make([]string, 0, len(d.Sections))
	for key := range d.Sections {
		keys = append(keys, string(key))
	}
	sort.Strings(keys)

	var result []sectionExemption
	for _, raw := range keys {
		key := taxconfig.SectionKey(raw)
		section := d.Sections[key]
		if section.VerifiedAmount == nil {
			continue
		}
		limit, ok := limits[key]
		if !ok {
			continue
		}
		amount := decimal.Min(*section.VerifiedAmount, limit)
		if amount.IsPositive() {
			result = append(result, sectionExemption{key: key, amount: amount})
		}
	}
	return result
}

func sectionLineName(key taxconfig.SectionKey) string {
	switch key {
	case taxconfig.Section80C:
		return "Section 80C"
	case taxconfig.Section80D:
		return "Section 80D"
	case taxconfig.Section80E:
		return "Section 80E"
	case taxconfig.Section80G:
		return "Section 80G"
	case taxconfig.Section24B:
		return "Section 24B"
	case taxconfig.Section80TTA:
		return "Section 80TTA"
	}
	return string(key)
}

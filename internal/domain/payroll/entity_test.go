package payroll

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func balancedPayslip() Payslip {
	return Payslip{
		Earnings: []PayslipLine{
			{Name: "Basic", Category: "earning", Amount: d("50000")},
			{Name: "HRA", Category: "earning", Amount: d("20000")},
		},
		Deductions: []PayslipLine{
			{Name: "Income Tax", Category: "tax", Amount: d("4500"), IsStatutory: true},
			{Name: "Provident Fund", Category: "contribution", Amount: d("1800"), IsStatutory: true},
		},
		GrossSalary:     d("70000"),
		TotalDeductions: d("6300"),
		NetSalary:       d("63700"),
	}
}

func TestPayslipReconcile_Balanced(t *testing.T) {
	t.Parallel()

	assert.NoError(t, balancedPayslip().Reconcile())
}

func TestPayslipReconcile_EarningsMismatch(t *testing.T) {
	t.Parallel()

	p := balancedPayslip()
	p.GrossSalary = d("71000")
	p.NetSalary = d("64700")

	assert.ErrorIs(t, p.Reconcile(), ErrPayslipNotBalanced)
}

func TestPayslipReconcile_DeductionsMismatch(t *testing.T) {
	t.Parallel()

	p := balancedPayslip()
	p.Deductions = append(p.Deductions, PayslipLine{Name: "Professional Tax", Category: "tax", Amount: d("200"), IsStatutory: true})

	assert.ErrorIs(t, p.Reconcile(), ErrPayslipNotBalanced)
}

func TestPayslipReconcile_NetMismatch(t *testing.T) {
	t.Parallel()

	p := balancedPayslip()
	p.NetSalary = d("63000")

	assert.ErrorIs(t, p.Reconcile(), ErrPayslipNotBalanced)
}

func TestPayslipReconcile_EmptyBreakdown(t *testing.T) {
	t.Parallel()

	p := Payslip{
		GrossSalary:     decimal.Zero,
		TotalDeductions: decimal.Zero,
		NetSalary:       decimal.Zero,
	}

	assert.NoError(t, p.Reconcile())
}

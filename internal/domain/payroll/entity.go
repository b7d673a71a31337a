package payroll

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RunStatus enum. locked is terminal and separate from completed/failed: a
// locked run and its payslips can never be modified or reprocessed.
type RunStatus string

const (
	RunStatusDraft      RunStatus = "draft"
	RunStatusProcessing RunStatus = "processing"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusFailed     RunStatus = "failed"
	RunStatusLocked     RunStatus = "locked"
)

// PayslipStatus enum
type PayslipStatus string

const (
	PayslipStatusGenerated PayslipStatus = "generated"
	PayslipStatusApproved  PayslipStatus = "approved"
	PayslipStatusLocked    PayslipStatus = "locked"
)

// PayrollRun aggregates one company's payroll processing for a period.
// One run exists per (company, month, year).
type PayrollRun struct {
	ID                 string
	CompanyID          string
	PeriodMonth        int
	PeriodYear         int
	Status             RunStatus
	TotalEmployees     int
	ProcessedEmployees int
	FailedEmployees    int
	StartedAt          *time.Time
	CompletedAt        *time.Time
	LockedAt           *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// RunFailure records why one employee's payslip could not be generated.
// Failures are kept per employee so a run's failure report names names.
type RunFailure struct {
	ID           string
	PayrollRunID string
	EmployeeID   string
	Reason       string
	CreatedAt    time.Time

	// Joined fields
	EmployeeName   *string
	EmployeeNumber *string
}

// PayslipLine is one itemized amount in a payslip breakdown.
type PayslipLine struct {
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	IsTaxable   bool            `json:"is_taxable,omitempty"`
	IsStatutory bool            `json:"is_statutory,omitempty"`
}

// Payslip stores the full breakdown computed at generation time. It is
// immutable once generated: later configuration changes never touch it, and
// a locked payslip is never recomputed.
type Payslip struct {
	ID                    string
	PayrollRunID          string
	EmployeeID            string
	CompanyID             string
	TaxConfigurationID    string
	PeriodMonth           int
	PeriodYear            int
	Earnings              []PayslipLine
	Deductions            []PayslipLine
	EmployerContributions []PayslipLine
	Exemptions            []PayslipLine
	GrossSalary           decimal.Decimal
	TotalDeductions       decimal.Decimal
	StandardDeduction     decimal.Decimal
	TaxableIncome         decimal.Decimal
	TaxAmount             decimal.Decimal
	NetSalary             decimal.Decimal
	Status                PayslipStatus
	GeneratedAt           time.Time
	ApprovedAt            *time.Time
	ApprovedBy            *string
	LockedAt              *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time

	// Joined fields
	EmployeeName   *string
	EmployeeNumber *string
}

// Reconcile verifies the payslip's totals against its own breakdown.
// A payslip that fails reconciliation must never be persisted.
func (p Payslip) Reconcile() error {
	sumEarnings := decimal.Zero
	for _, line := range p.Earnings {
		sumEarnings = sumEarnings.Add(line.Amount)
	}
	if !sumEarnings.Equal(p.GrossSalary) {
		return fmt.Errorf("%w: earnings sum %s != gross salary %s", ErrPayslipNotBalanced, sumEarnings, p.GrossSalary)
	}

	sumDeductions := decimal.Zero
	for _, line := range p.Deductions {
		sumDeductions = sumDeductions.Add(line.Amount)
	}
	if !sumDeductions.Equal(p.TotalDeductions) {
		return fmt.Errorf("%w: deductions sum %s != total deductions %s", ErrPayslipNotBalanced, sumDeductions, p.TotalDeductions)
	}

	if !p.GrossSalary.Sub(p.TotalDeductions).Equal(p.NetSalary) {
		return fmt.Errorf("%w: gross %s - deductions %s != net %s", ErrPayslipNotBalanced, p.GrossSalary, p.TotalDeductions, p.NetSalary)
	}

	return nil
}

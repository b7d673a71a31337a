package payroll

import (
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== RUN DTOs ==========

type CreateRunRequest struct {
	PeriodMonth int `json:"period_month"`
	PeriodYear  int `json:"period_year"`
}

func (r *CreateRunRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidMonth(r.PeriodMonth) {
		errs = append(errs, validator.ValidationError{Field: "period_month", Message: "must be between 1 and 12"})
	}
	if r.PeriodYear < 2000 {
		errs = append(errs, validator.ValidationError{Field: "period_year", Message: "must be 2000 or later"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PayrollRunResponse struct {
	ID                 string     `json:"id"`
	CompanyID          string     `json:"company_id"`
	PeriodMonth        int        `json:"period_month"`
	PeriodYear         int        `json:"period_year"`
	Status             string     `json:"status"`
	TotalEmployees     int        `json:"total_employees"`
	ProcessedEmployees int        `json:"processed_employees"`
	FailedEmployees    int        `json:"failed_employees"`
	StartedAt          *time.Time `json:"started_at,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	LockedAt           *time.Time `json:"locked_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

type RunFilter struct {
	PeriodMonth *int
	PeriodYear  *int
	Status      *string
	Page        int
	Limit       int
}

type ListRunResponse struct {
	Data       []PayrollRunResponse `json:"data"`
	TotalCount int64                `json:"total_count"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
}

type RunFailureResponse struct {
	EmployeeID     string `json:"employee_id"`
	EmployeeName   string `json:"employee_name,omitempty"`
	EmployeeNumber string `json:"employee_number,omitempty"`
	Reason         string `json:"reason"`
}

// ========== PAYSLIP DTOs ==========

type PayslipResponse struct {
	ID                    string          `json:"id"`
	PayrollRunID          string          `json:"payroll_run_id"`
	EmployeeID            string          `json:"employee_id"`
	EmployeeName          string          `json:"employee_name,omitempty"`
	EmployeeNumber        string          `json:"employee_number,omitempty"`
	PeriodMonth           int             `json:"period_month"`
	PeriodYear            int             `json:"period_year"`
	Earnings              []PayslipLine   `json:"earnings"`
	Deductions            []PayslipLine   `json:"deductions"`
	EmployerContributions []PayslipLine   `json:"employer_contributions,omitempty"`
	Exemptions            []PayslipLine   `json:"exemptions,omitempty"`
	GrossSalary           decimal.Decimal `json:"gross_salary"`
	TotalDeductions       decimal.Decimal `json:"total_deductions"`
	StandardDeduction     decimal.Decimal `json:"standard_deduction"`
	TaxableIncome         decimal.Decimal `json:"taxable_income"`
	TaxAmount             decimal.Decimal `json:"tax_amount"`
	NetSalary             decimal.Decimal `json:"net_salary"`
	Status                string          `json:"status"`
	GeneratedAt           time.Time       `json:"generated_at"`
	ApprovedAt            *time.Time      `json:"approved_at,omitempty"`
	LockedAt              *time.Time      `json:"locked_at,omitempty"`
}

type PayslipFilter struct {
	Page  int
	Limit int
}

type ListPayslipResponse struct {
	Data       []PayslipResponse `json:"data"`
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
}

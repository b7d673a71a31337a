package payroll

import (
	"context"
	"time"
)

// PayrollRepository defines data access methods for runs, payslips, and
// failure reports. All methods include companyID to prevent cross-company
// data access.
type PayrollRepository interface {
	// Runs
	CreateRun(ctx context.Context, run PayrollRun) (PayrollRun, error)
	GetRunByID(ctx context.Context, id string, companyID string) (PayrollRun, error)
	ListRuns(ctx context.Context, companyID string, filter RunFilter) ([]PayrollRun, int64, error)
	UpdateRunStatus(ctx context.Context, companyID string, run PayrollRun) error
	ListUnlockedRunsCompletedBefore(ctx context.Context, cutoff time.Time) ([]PayrollRun, error)

	// Failures
	ReplaceRunFailures(ctx context.Context, runID string, failures []RunFailure) error
	ListRunFailures(ctx context.Context, runID string, companyID string) ([]RunFailure, error)

	// Payslips
	CreatePayslip(ctx context.Context, p Payslip) (Payslip, error)
	GetPayslipByID(ctx context.Context, id string, companyID string) (Payslip, error)
	ListPayslipsByRun(ctx context.Context, runID string, companyID string, filter PayslipFilter) ([]Payslip, int64, error)
	DeleteUnlockedPayslipsByRun(ctx context.Context, runID string, companyID string) error
	ApprovePayslip(ctx context.Context, id string, companyID string, approvedBy string) (Payslip, error)
	LockPayslipsByRun(ctx context.Context, runID string, companyID string) error
}

package payroll

import (
	"context"
	"time"
)

type PayrollService interface {
	// Runs
	CreateRun(ctx context.Context, req CreateRunRequest) (PayrollRunResponse, error)
	GetRun(ctx context.Context, id string) (PayrollRunResponse, error)
	ListRuns(ctx context.Context, filter RunFilter) (ListRunResponse, error)
	ProcessRun(ctx context.Context, id string) (PayrollRunResponse, error)
	ListRunFailures(ctx context.Context, id string) ([]RunFailureResponse, error)
	LockRun(ctx context.Context, id string) (PayrollRunResponse, error)

	// Payslips
	ListPayslipsByRun(ctx context.Context, runID string, filter PayslipFilter) (ListPayslipResponse, error)
	GetPayslip(ctx context.Context, id string) (PayslipResponse, error)
	ApprovePayslip(ctx context.Context, id string) (PayslipResponse, error)
	GetPayslipDocument(ctx context.Context, id string) ([]byte, string, error)

	// Maintenance
	LockStaleRuns(ctx context.Context, olderThan time.Duration) (int, error)
}

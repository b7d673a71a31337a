package payroll

import "errors"

var (
	ErrRunNotFound    = errors.New("payroll run not found")
	ErrRunExists      = errors.New("payroll run already exists for this period")
	ErrRunLocked      = errors.New("payroll run is locked")
	ErrRunProcessing  = errors.New("payroll run is already being processed")
	ErrRunNotLockable = errors.New("payroll run must be completed or failed before locking")
	ErrRunHasNoPeriod = errors.New("invalid payroll period")

	ErrPayslipNotFound    = errors.New("payslip not found")
	ErrPayslipLocked      = errors.New("payslip is locked")
	ErrPayslipNotBalanced = errors.New("payslip totals do not reconcile")

	// Per-employee calculation failures. These fail one employee's payslip
	// and are reported on the run; they never abort the other employees.
	ErrMissingTaxConfiguration = errors.New("no tax configuration matches the employee's jurisdiction and financial year")
	ErrMissingSalaryAssignment = errors.New("employee has no salary structure assigned")
)

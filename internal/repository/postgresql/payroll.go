package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

// ========== PAYROLL RUNS ==========

func (r *payrollRepository) CreateRun(ctx context.Context, run payroll.PayrollRun) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_runs (
			id, company_id, period_month, period_year, status,
			total_employees, processed_employees, failed_employees,
			created_at, updated_at
		) VALUES (uuidv7(), $1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, company_id, period_month, period_year, status,
			total_employees, processed_employees, failed_employees,
			started_at, completed_at, locked_at, created_at, updated_at
	`

	var created payroll.PayrollRun
	err := q.QueryRow(ctx, query,
		run.CompanyID, run.PeriodMonth, run.PeriodYear, run.Status,
		run.TotalEmployees, run.ProcessedEmployees, run.FailedEmployees,
	).Scan(
		&created.ID, &created.CompanyID, &created.PeriodMonth, &created.PeriodYear, &created.Status,
		&created.TotalEmployees, &created.ProcessedEmployees, &created.FailedEmployees,
		&created.StartedAt, &created.CompletedAt, &created.LockedAt, &created.CreatedAt, &created.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "uk_payroll_run_period") {
			return payroll.PayrollRun{}, payroll.ErrRunExists
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to create payroll run: %w", err)
	}

	return created, nil
}

func (r *payrollRepository) GetRunByID(ctx context.Context, id string, companyID string) (payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, period_month, period_year, status,
			   total_employees, processed_employees, failed_employees,
			   started_at, completed_at, locked_at, created_at, updated_at
		FROM payroll_runs
		WHERE id = $1 AND company_id = $2
	`

	var run payroll.PayrollRun
	err := q.QueryRow(ctx, query, id, companyID).Scan(
		&run.ID, &run.CompanyID, &run.PeriodMonth, &run.PeriodYear, &run.Status,
		&run.TotalEmployees, &run.ProcessedEmployees, &run.FailedEmployees,
		&run.StartedAt, &run.CompletedAt, &run.LockedAt, &run.CreatedAt, &run.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollRun{}, payroll.ErrRunNotFound
		}
		return payroll.PayrollRun{}, fmt.Errorf("failed to get payroll run: %w", err)
	}

	return run, nil
}

func (r *payrollRepository) ListRuns(ctx context.Context, companyID string, filter payroll.RunFilter) ([]payroll.PayrollRun, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseQuery := `
		FROM payroll_runs
		WHERE company_id = $1
	`
	args := []interface{}{companyID}
	argIdx := 2

	if filter.PeriodMonth != nil {
		baseQuery += fmt.Sprintf(" AND period_month = $%d", argIdx)
		args = append(args, *filter.PeriodMonth)
		argIdx++
	}
	if filter.PeriodYear != nil {
		baseQuery += fmt.Sprintf(" AND period_year = $%d", argIdx)
		args = append(args, *filter.PeriodYear)
		argIdx++
	}
	if filter.Status != nil {
		baseQuery += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	var totalCount int64
	countQuery := "SELECT COUNT(*) " + baseQuery
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll runs: %w", err)
	}

	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	selectQuery := fmt.Sprintf(`
		SELECT id, company_id, period_month, period_year, status,
			   total_employees, processed_employees, failed_employees,
			   started_at, completed_at, locked_at, created_at, updated_at
		%s
		ORDER BY period_year DESC, period_month DESC
		LIMIT $%d OFFSET $%d
	`, baseQuery, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll runs: %w", err)
	}
	defer rows.Close()

	var runs []payroll.PayrollRun
	for rows.Next() {
		var run payroll.PayrollRun
		if err := rows.Scan(
			&run.ID, &run.CompanyID, &run.PeriodMonth, &run.PeriodYear, &run.Status,
			&run.TotalEmployees, &run.ProcessedEmployees, &run.FailedEmployees,
			&run.StartedAt, &run.CompletedAt, &run.LockedAt, &run.CreatedAt, &run.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate payroll runs: %w", err)
	}

	return runs, totalCount, nil
}

func (r *payrollRepository) UpdateRunStatus(ctx context.Context, companyID string, run payroll.PayrollRun) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_runs
		SET status = $3, total_employees = $4, processed_employees = $5, failed_employees = $6,
			started_at = $7, completed_at = $8, locked_at = $9, updated_at = NOW()
		WHERE id = $1 AND company_id = $2
	`

	tag, err := q.Exec(ctx, query,
		run.ID, companyID, run.Status,
		run.TotalEmployees, run.ProcessedEmployees, run.FailedEmployees,
		run.StartedAt, run.CompletedAt, run.LockedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update payroll run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrRunNotFound
	}

	return nil
}

func (r *payrollRepository) ListUnlockedRunsCompletedBefore(ctx context.Context, cutoff time.Time) ([]payroll.PayrollRun, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, period_month, period_year, status,
			   total_employees, processed_employees, failed_employees,
			   started_at, completed_at, locked_at, created_at, updated_at
		FROM payroll_runs
		WHERE status IN ($1, $2) AND completed_at IS NOT NULL AND completed_at < $3
		ORDER BY completed_at
	`

	rows, err := q.Query(ctx, query, payroll.RunStatusCompleted, payroll.RunStatusFailed, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list unlocked payroll runs: %w", err)
	}
	defer rows.Close()

	var runs []payroll.PayrollRun
	for rows.Next() {
		var run payroll.PayrollRun
		if err := rows.Scan(
			&run.ID, &run.CompanyID, &run.PeriodMonth, &run.PeriodYear, &run.Status,
			&run.TotalEmployees, &run.ProcessedEmployees, &run.FailedEmployees,
			&run.StartedAt, &run.CompletedAt, &run.LockedAt, &run.CreatedAt, &run.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payroll run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payroll runs: %w", err)
	}

	return runs, nil
}

// ========== RUN FAILURES ==========

func (r *payrollRepository) ReplaceRunFailures(ctx context.Context, runID string, failures []payroll.RunFailure) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM payroll_run_failures WHERE payroll_run_id = $1`, runID); err != nil {
		return fmt.Errorf("failed to clear payroll run failures: %w", err)
	}

	query := `
		INSERT INTO payroll_run_failures (id, payroll_run_id, employee_id, reason, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`
	for _, f := range failures {
		if f.ID == "" {
			f.ID = uuid.New().String()
		}
		if _, err := q.Exec(ctx, query, f.ID, runID, f.EmployeeID, f.Reason); err != nil {
			return fmt.Errorf("failed to record payroll run failure: %w", err)
		}
	}

	return nil
}

func (r *payrollRepository) ListRunFailures(ctx context.Context, runID string, companyID string) ([]payroll.RunFailure, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT f.id, f.payroll_run_id, f.employee_id, f.reason, f.created_at,
			   e.name, e.employee_number
		FROM payroll_run_failures f
		JOIN payroll_runs pr ON pr.id = f.payroll_run_id
		JOIN employees e ON e.id = f.employee_id
		WHERE f.payroll_run_id = $1 AND pr.company_id = $2
		ORDER BY e.employee_number
	`

	rows, err := q.Query(ctx, query, runID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll run failures: %w", err)
	}
	defer rows.Close()

	var failures []payroll.RunFailure
	for rows.Next() {
		var f payroll.RunFailure
		if err := rows.Scan(
			&f.ID, &f.PayrollRunID, &f.EmployeeID, &f.Reason, &f.CreatedAt,
			&f.EmployeeName, &f.EmployeeNumber,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payroll run failure: %w", err)
		}
		failures = append(failures, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payroll run failures: %w", err)
	}

	return failures, nil
}

// ========== PAYSLIPS ==========

func (r *payrollRepository) CreatePayslip(ctx context.Context, p payroll.Payslip) (payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	earningsJSON, err := json.Marshal(p.Earnings)
	if err != nil {
		return payroll.Payslip{}, fmt.Errorf("failed to marshal earnings: %w", err)
	}
	deductionsJSON, err := json.Marshal(p.Deductions)
	if err != nil {
		return payroll.Payslip{}, fmt.Errorf("failed to marshal deductions: %w", err)
	}
	employerJSON, err := json.Marshal(p.EmployerContributions)
	if err != nil {
		return payroll.Payslip{}, fmt.Errorf("failed to marshal employer contributions: %w", err)
	}
	exemptionsJSON, err := json.Marshal(p.Exemptions)
	if err != nil {
		return payroll.Payslip{}, fmt.Errorf("failed to marshal exemptions: %w", err)
	}

	query := `
		INSERT INTO payslips (
			id, payroll_run_id, employee_id, company_id, tax_configuration_id,
			period_month, period_year,
			earnings, deductions, employer_contributions, exemptions,
			gross_salary, total_deductions, standard_deduction, taxable_income, tax_amount, net_salary,
			status, generated_at, created_at, updated_at
		) VALUES (uuidv7(), $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	created := p
	err = q.QueryRow(ctx, query,
		p.PayrollRunID, p.EmployeeID, p.CompanyID, p.TaxConfigurationID,
		p.PeriodMonth, p.PeriodYear,
		earningsJSON, deductionsJSON, employerJSON, exemptionsJSON,
		p.GrossSalary, p.TotalDeductions, p.StandardDeduction, p.TaxableIncome, p.TaxAmount, p.NetSalary,
		p.Status, p.GeneratedAt,
	).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return payroll.Payslip{}, fmt.Errorf("failed to create payslip: %w", err)
	}

	return created, nil
}

func (r *payrollRepository) GetPayslipByID(ctx context.Context, id string, companyID string) (payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT p.id, p.payroll_run_id, p.employee_id, p.company_id, p.tax_configuration_id,
			   p.period_month, p.period_year,
			   p.earnings, p.deductions, p.employer_contributions, p.exemptions,
			   p.gross_salary, p.total_deductions, p.standard_deduction, p.taxable_income, p.tax_amount, p.net_salary,
			   p.status, p.generated_at, p.approved_at, p.approved_by, p.locked_at, p.created_at, p.updated_at,
			   e.name, e.employee_number
		FROM payslips p
		JOIN employees e ON e.id = p.employee_id
		WHERE p.id = $1 AND p.company_id = $2
	`

	var p payroll.Payslip
	var earningsJSON, deductionsJSON, employerJSON, exemptionsJSON []byte
	err := q.QueryRow(ctx, query, id, companyID).Scan(
		&p.ID, &p.PayrollRunID, &p.EmployeeID, &p.CompanyID, &p.TaxConfigurationID,
		&p.PeriodMonth, &p.PeriodYear,
		&earningsJSON, &deductionsJSON, &employerJSON, &exemptionsJSON,
		&p.GrossSalary, &p.TotalDeductions, &p.StandardDeduction, &p.TaxableIncome, &p.TaxAmount, &p.NetSalary,
		&p.Status, &p.GeneratedAt, &p.ApprovedAt, &p.ApprovedBy, &p.LockedAt, &p.CreatedAt, &p.UpdatedAt,
		&p.EmployeeName, &p.EmployeeNumber,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.Payslip{}, payroll.ErrPayslipNotFound
		}
		return payroll.Payslip{}, fmt.Errorf("failed to get payslip: %w", err)
	}
	_ = json.Unmarshal(earningsJSON, &p.Earnings)
	_ = json.Unmarshal(deductionsJSON, &p.Deductions)
	_ = json.Unmarshal(employerJSON, &p.EmployerContributions)
	_ = json.Unmarshal(exemptionsJSON, &p.Exemptions)

	return p, nil
}

func (r *payrollRepository) ListPayslipsByRun(ctx context.Context, runID string, companyID string, filter payroll.PayslipFilter) ([]payroll.Payslip, int64, error) {
	q := GetQuerier(ctx, r.db)

	var totalCount int64
	countQuery := `SELECT COUNT(*) FROM payslips WHERE payroll_run_id = $1 AND company_id = $2`
	if err := q.QueryRow(ctx, countQuery, runID, companyID).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count payslips: %w", err)
	}

	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	query := `
		SELECT p.id, p.payroll_run_id, p.employee_id, p.company_id, p.tax_configuration_id,
			   p.period_month, p.period_year,
			   p.earnings, p.deductions, p.employer_contributions, p.exemptions,
			   p.gross_salary, p.total_deductions, p.standard_deduction, p.taxable_income, p.tax_amount, p.net_salary,
			   p.status, p.generated_at, p.approved_at, p.approved_by, p.locked_at, p.created_at, p.updated_at,
			   e.name, e.employee_number
		FROM payslips p
		JOIN employees e ON e.id = p.employee_id
		WHERE p.payroll_run_id = $1 AND p.company_id = $2
		ORDER BY e.employee_number
		LIMIT $3 OFFSET $4
	`

	rows, err := q.Query(ctx, query, runID, companyID, filter.Limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payslips: %w", err)
	}
	defer rows.Close()

	var payslips []payroll.Payslip
	for rows.Next() {
		var p payroll.Payslip
		var earningsJSON, deductionsJSON, employerJSON, exemptionsJSON []byte
		if err := rows.Scan(
			&p.ID, &p.PayrollRunID, &p.EmployeeID, &p.CompanyID, &p.TaxConfigurationID,
			&p.PeriodMonth, &p.PeriodYear,
			&earningsJSON, &deductionsJSON, &employerJSON, &exemptionsJSON,
			&p.GrossSalary, &p.TotalDeductions, &p.StandardDeduction, &p.TaxableIncome, &p.TaxAmount, &p.NetSalary,
			&p.Status, &p.GeneratedAt, &p.ApprovedAt, &p.ApprovedBy, &p.LockedAt, &p.CreatedAt, &p.UpdatedAt,
			&p.EmployeeName, &p.EmployeeNumber,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan payslip: %w", err)
		}
		_ = json.Unmarshal(earningsJSON, &p.Earnings)
		_ = json.Unmarshal(deductionsJSON, &p.Deductions)
		_ = json.Unmarshal(employerJSON, &p.EmployerContributions)
		_ = json.Unmarshal(exemptionsJSON, &p.Exemptions)
		payslips = append(payslips, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate payslips: %w", err)
	}

	return payslips, totalCount, nil
}

func (r *payrollRepository) DeleteUnlockedPayslipsByRun(ctx context.Context, runID string, companyID string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		DELETE FROM payslips
		WHERE payroll_run_id = $1 AND company_id = $2 AND status != $3
	`

	if _, err := q.Exec(ctx, query, runID, companyID, payroll.PayslipStatusLocked); err != nil {
		return fmt.Errorf("failed to delete payslips: %w", err)
	}

	return nil
}

func (r *payrollRepository) ApprovePayslip(ctx context.Context, id string, companyID string, approvedBy string) (payroll.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payslips
		SET status = $3, approved_at = NOW(), approved_by = $4, updated_at = NOW()
		WHERE id = $1 AND company_id = $2 AND status != $5
	`

	tag, err := q.Exec(ctx, query, id, companyID, payroll.PayslipStatusApproved, approvedBy, payroll.PayslipStatusLocked)
	if err != nil {
		return payroll.Payslip{}, fmt.Errorf("failed to approve payslip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.Payslip{}, payroll.ErrPayslipNotFound
	}

	return r.GetPayslipByID(ctx, id, companyID)
}

func (r *payrollRepository) LockPayslipsByRun(ctx context.Context, runID string, companyID string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payslips
		SET status = $3, locked_at = NOW(), updated_at = NOW()
		WHERE payroll_run_id = $1 AND company_id = $2 AND status != $3
	`

	if _, err := q.Exec(ctx, query, runID, companyID, payroll.PayslipStatusLocked); err != nil {
		return fmt.Errorf("failed to lock payslips: %w", err)
	}

	return nil
}

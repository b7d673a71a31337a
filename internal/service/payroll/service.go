package payroll

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/declaration"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/salarystructure"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/taxconfig"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/payroll-backend-go/internal/repository/postgresql"
	"github.com/go-chi/jwtauth/v5"
	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"
)

type PayrollServiceImpl struct {
	db            *database.DB
	payrollRepo   payroll.PayrollRepository
	employeeRepo  employee.EmployeeRepository
	taxConfigRepo taxconfig.TaxConfigurationRepository
	salaryRepo    salarystructure.SalaryStructureRepository
	declRepo      declaration.TaxDeclarationRepository
	files         storage.FileStorage
	calc          *Calculator
	workers       int
}

func NewPayrollService(
	db *database.DB,
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	taxConfigRepo taxconfig.TaxConfigurationRepository,
	salaryRepo salarystructure.SalaryStructureRepository,
	declRepo declaration.TaxDeclarationRepository,
	files storage.FileStorage,
	workers int,
) payroll.PayrollService {
	if workers < 1 {
		workers = 1
	}
	return &PayrollServiceImpl{
		db:            db,
		payrollRepo:   payrollRepo,
		employeeRepo:  employeeRepo,
		taxConfigRepo: taxConfigRepo,
		salaryRepo:    salaryRepo,
		declRepo:      declRepo,
		files:         files,
		calc:          NewCalculator(),
		workers:       workers,
	}
}

// Helper to get company_id and user_id from JWT context
func getClaimsFromContext(ctx context.Context) (companyID, userID string, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return "", "", fmt.Errorf("company_id claim is missing or invalid")
	}

	userID, _ = claims["user_id"].(string)

	return companyID, userID, nil
}

// ========== RUNS ==========

func (s *PayrollServiceImpl) CreateRun(ctx context.Context, req payroll.CreateRunRequest) (payroll.PayrollRunResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	run := payroll.PayrollRun{
		CompanyID:   companyID,
		PeriodMonth: req.PeriodMonth,
		PeriodYear:  req.PeriodYear,
		Status:      payroll.RunStatusDraft,
	}

	created, err := s.payrollRepo.CreateRun(ctx, run)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	return mapToRunResponse(created), nil
}

func (s *PayrollServiceImpl) GetRun(ctx context.Context, id string) (payroll.PayrollRunResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	run, err := s.payrollRepo.GetRunByID(ctx, id, companyID)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	return mapToRunResponse(run), nil
}

func (s *PayrollServiceImpl) ListRuns(ctx context.Context, filter payroll.RunFilter) (payroll.ListRunResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.ListRunResponse{}, err
	}

	runs, totalCount, err := s.payrollRepo.ListRuns(ctx, companyID, filter)
	if err != nil {
		return payroll.ListRunResponse{}, err
	}

	responses := make([]payroll.PayrollRunResponse, 0, len(runs))
	for _, run := range runs {
		responses = append(responses, mapToRunResponse(run))
	}

	return payroll.ListRunResponse{
		Data:       responses,
		TotalCount: totalCount,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

// ProcessRun computes payslips for every active employee in the run's
// company. Configuration is snapshotted once before the parallel phase so
// every employee in the run is priced against the same data. One employee's
// failure is recorded and the run carries on; the run itself only fails
// when persistence fails.
//
// Reprocessing a completed or failed run deletes its unlocked payslips and
// computes them again. A locked run is rejected before any computation.
func (s *PayrollServiceImpl) ProcessRun(ctx context.Context, id string) (payroll.PayrollRunResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	run, err := s.payrollRepo.GetRunByID(ctx, id, companyID)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	switch run.Status {
	case payroll.RunStatusLocked:
		return payroll.PayrollRunResponse{}, payroll.ErrRunLocked
	case payroll.RunStatusProcessing:
		return payroll.PayrollRunResponse{}, payroll.ErrRunProcessing
	}

	snap, err := s.loadSnapshot(ctx, companyID, run.PeriodMonth, run.PeriodYear)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	startedAt := time.Now()
	run.Status = payroll.RunStatusProcessing
	run.StartedAt = &startedAt
	run.CompletedAt = nil
	run.TotalEmployees = len(snap.employees)
	run.ProcessedEmployees = 0
	run.FailedEmployees = 0
	if err := s.payrollRepo.UpdateRunStatus(ctx, companyID, run); err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	// Parallel phase: each goroutine writes only its own slot, so no
	// locking is needed. Failures are per-employee data, never a group
	// error.
	results := make([]employeeResult, len(snap.employees))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, emp := range snap.employees {
		g.Go(func() error {
			results[i] = s.computeEmployee(snap, emp, run, startedAt)
			return nil
		})
	}
	_ = g.Wait()

	processed, failed := 0, 0
	var failures []payroll.RunFailure

	err = postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)

		if err := s.payrollRepo.DeleteUnlockedPayslipsByRun(txCtx, run.ID, companyID); err != nil {
			return err
		}

		for _, res := range results {
			if res.failure != nil {
				failures = append(failures, *res.failure)
				failed++
				continue
			}

			p := res.payslip
			p.PayrollRunID = run.ID
			if _, err := s.payrollRepo.CreatePayslip(txCtx, p); err != nil {
				return fmt.Errorf("failed to persist payslip for employee %s: %w", p.EmployeeID, err)
			}
			processed++
		}

		return s.payrollRepo.ReplaceRunFailures(txCtx, run.ID, failures)
	})

	completedAt := time.Now()
	run.CompletedAt = &completedAt
	run.ProcessedEmployees = processed
	run.FailedEmployees = failed

	if err != nil {
		run.Status = payroll.RunStatusFailed
		if updErr := s.payrollRepo.UpdateRunStatus(ctx, companyID, run); updErr != nil {
			return payroll.PayrollRunResponse{}, fmt.Errorf("failed to mark run as failed: %v (original error: %w)", updErr, err)
		}
		return payroll.PayrollRunResponse{}, err
	}

	run.Status = payroll.RunStatusCompleted
	if err := s.payrollRepo.UpdateRunStatus(ctx, companyID, run); err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	return mapToRunResponse(run), nil
}

func (s *PayrollServiceImpl) ListRunFailures(ctx context.Context, id string) ([]payroll.RunFailureResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	// Verifies the run exists and belongs to the caller's company.
	if _, err := s.payrollRepo.GetRunByID(ctx, id, companyID); err != nil {
		return nil, err
	}

	failures, err := s.payrollRepo.ListRunFailures(ctx, id, companyID)
	if err != nil {
		return nil, err
	}

	responses := make([]payroll.RunFailureResponse, 0, len(failures))
	for _, f := range failures {
		responses = append(responses, mapToFailureResponse(f))
	}
	return responses, nil
}

func (s *PayrollServiceImpl) LockRun(ctx context.Context, id string) (payroll.PayrollRunResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	run, err := s.payrollRepo.GetRunByID(ctx, id, companyID)
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	// Locking an already locked run changes nothing.
	if run.Status == payroll.RunStatusLocked {
		return mapToRunResponse(run), nil
	}
	if run.Status != payroll.RunStatusCompleted && run.Status != payroll.RunStatusFailed {
		return payroll.PayrollRunResponse{}, payroll.ErrRunNotLockable
	}

	return s.lockRun(ctx, run)
}

// lockRun finalizes a run and all its payslips in one transaction. The
// company scope comes from the run itself so the maintenance job can lock
// runs without a request context.
func (s *PayrollServiceImpl) lockRun(ctx context.Context, run payroll.PayrollRun) (payroll.PayrollRunResponse, error) {
	lockedAt := time.Now()
	run.Status = payroll.RunStatusLocked
	run.LockedAt = &lockedAt

	err := postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)

		if err := s.payrollRepo.LockPayslipsByRun(txCtx, run.ID, run.CompanyID); err != nil {
			return err
		}
		return s.payrollRepo.UpdateRunStatus(txCtx, run.CompanyID, run)
	})
	if err != nil {
		return payroll.PayrollRunResponse{}, err
	}

	return mapToRunResponse(run), nil
}

// LockStaleRuns locks every completed or failed run that finished before
// the retention window. Runs are locked one at a time so a failure leaves
// earlier locks in place.
func (s *PayrollServiceImpl) LockStaleRuns(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)

	runs, err := s.payrollRepo.ListUnlockedRunsCompletedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	locked := 0
	for _, run := range runs {
		if _, err := s.lockRun(ctx, run); err != nil {
			return locked, fmt.Errorf("failed to lock run %s: %w", run.ID, err)
		}
		locked++
	}
	return locked, nil
}

// ========== PAYSLIPS ==========

func (s *PayrollServiceImpl) ListPayslipsByRun(ctx context.Context, runID string, filter payroll.PayslipFilter) (payroll.ListPayslipResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.ListPayslipResponse{}, err
	}

	if _, err := s.payrollRepo.GetRunByID(ctx, runID, companyID); err != nil {
		return payroll.ListPayslipResponse{}, err
	}

	payslips, totalCount, err := s.payrollRepo.ListPayslipsByRun(ctx, runID, companyID, filter)
	if err != nil {
		return payroll.ListPayslipResponse{}, err
	}

	responses := make([]payroll.PayslipResponse, 0, len(payslips))
	for _, p := range payslips {
		responses = append(responses, mapToPayslipResponse(p))
	}

	return payroll.ListPayslipResponse{
		Data:       responses,
		TotalCount: totalCount,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func (s *PayrollServiceImpl) GetPayslip(ctx context.Context, id string) (payroll.PayslipResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}

	p, err := s.payrollRepo.GetPayslipByID(ctx, id, companyID)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}

	return mapToPayslipResponse(p), nil
}

func (s *PayrollServiceImpl) ApprovePayslip(ctx context.Context, id string) (payroll.PayslipResponse, error) {
	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}

	p, err := s.payrollRepo.GetPayslipByID(ctx, id, companyID)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}
	if p.Status == payroll.PayslipStatusLocked {
		return payroll.PayslipResponse{}, payroll.ErrPayslipLocked
	}

	approved, err := s.payrollRepo.ApprovePayslip(ctx, id, companyID, userID)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}

	return mapToPayslipResponse(approved), nil
}

// GetPayslipDocument returns the payslip as a PDF. Payslip breakdowns are
// immutable once generated, so a rendered document is uploaded to file
// storage and served from there on later requests.
func (s *PayrollServiceImpl) GetPayslipDocument(ctx context.Context, id string) ([]byte, string, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, "", err
	}

	p, err := s.payrollRepo.GetPayslipByID(ctx, id, companyID)
	if err != nil {
		return nil, "", err
	}

	ref := p.ID
	if p.EmployeeNumber != nil && *p.EmployeeNumber != "" {
		ref = *p.EmployeeNumber
	}
	filename := fmt.Sprintf("payslip_%s_%d_%02d.pdf", ref, p.PeriodYear, p.PeriodMonth)
	path := storage.PayslipDocumentPath(companyID, p.PeriodYear, p.PeriodMonth, p.ID)

	exists, err := s.files.Exists(ctx, path)
	if err != nil {
		return nil, "", err
	}
	if exists {
		rc, err := s.files.Download(ctx, path)
		if err != nil {
			return nil, "", err
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read stored payslip document: %w", err)
		}
		return data, filename, nil
	}

	data, err := renderPayslipPDF(p)
	if err != nil {
		return nil, "", fmt.Errorf("failed to render payslip document: %w", err)
	}

	if _, err := s.files.Upload(ctx, bytes.NewReader(data), path, "application/pdf"); err != nil {
		return nil, "", fmt.Errorf("failed to store payslip document: %w", err)
	}

	return data, filename, nil
}

// ========== SNAPSHOT ==========

// runSnapshot is the configuration state a run is priced against, fetched
// once before the parallel phase. Employees processed in the same run never
// see different configuration versions.
type runSnapshot struct {
	financialYear string
	employees     []employee.Employee
	configs       map[string]taxconfig.TaxConfiguration
	salaries      map[string]salarystructure.EmployeeSalary
	structures    map[string]salarystructure.SalaryStructure
	declarations  map[string]declaration.TaxDeclaration
}

func configKey(country, state string) string {
	return country + "|" + state
}

// configFor resolves an employee's tax configuration: an exact
// country+state match wins, a country-wide configuration is the fallback.
func (snap runSnapshot) configFor(emp employee.Employee) (taxconfig.TaxConfiguration, bool) {
	if cfg, ok := snap.configs[configKey(emp.Country, emp.State)]; ok {
		return cfg, true
	}
	cfg, ok := snap.configs[configKey(emp.Country, "")]
	return cfg, ok
}

func (s *PayrollServiceImpl) loadSnapshot(ctx context.Context, companyID string, periodMonth, periodYear int) (runSnapshot, error) {
	financialYear := taxconfig.FinancialYearForPeriod(periodMonth, periodYear)

	employees, err := s.employeeRepo.ListActiveByCompanyID(ctx, companyID)
	if err != nil {
		return runSnapshot{}, fmt.Errorf("failed to list active employees: %w", err)
	}

	configs, err := s.taxConfigRepo.ListByCompanyID(ctx, companyID, taxconfig.TaxConfigurationFilter{
		FinancialYear: &financialYear,
	})
	if err != nil {
		return runSnapshot{}, fmt.Errorf("failed to list tax configurations: %w", err)
	}
	configMap := make(map[string]taxconfig.TaxConfiguration, len(configs))
	for _, cfg := range configs {
		configMap[configKey(cfg.Country, cfg.State)] = cfg
	}

	salaries, err := s.salaryRepo.ListEmployeeSalariesByCompanyID(ctx, companyID)
	if err != nil {
		return runSnapshot{}, fmt.Errorf("failed to list salary assignments: %w", err)
	}
	salaryMap := make(map[string]salarystructure.EmployeeSalary, len(salaries))
	for _, assignment := range salaries {
		salaryMap[assignment.EmployeeID] = assignment
	}

	structures, err := s.salaryRepo.ListByCompanyID(ctx, companyID)
	if err != nil {
		return runSnapshot{}, fmt.Errorf("failed to list salary structures: %w", err)
	}
	structureMap := make(map[string]salarystructure.SalaryStructure, len(structures))
	for _, structure := range structures {
		structureMap[structure.ID] = structure
	}

	declarations, err := s.declRepo.ListVerifiedByCompanyAndYear(ctx, companyID, financialYear)
	if err != nil {
		return runSnapshot{}, fmt.Errorf("failed to list verified declarations: %w", err)
	}
	declarationMap := make(map[string]declaration.TaxDeclaration, len(declarations))
	for _, d := range declarations {
		declarationMap[d.EmployeeID] = d
	}

	return runSnapshot{
		financialYear: financialYear,
		employees:     employees,
		configs:       configMap,
		salaries:      salaryMap,
		structures:    structureMap,
		declarations:  declarationMap,
	}, nil
}

type employeeResult struct {
	payslip payroll.Payslip
	failure *payroll.RunFailure
}

func (s *PayrollServiceImpl) computeEmployee(snap runSnapshot, emp employee.Employee, run payroll.PayrollRun, generatedAt time.Time) employeeResult {
	fail := func(reason error) employeeResult {
		return employeeResult{failure: &payroll.RunFailure{
			PayrollRunID: run.ID,
			EmployeeID:   emp.ID,
			Reason:       reason.Error(),
		}}
	}

	assignment, ok := snap.salaries[emp.ID]
	if !ok {
		return fail(payroll.ErrMissingSalaryAssignment)
	}

	structure, ok := snap.structures[assignment.SalaryStructureID]
	if !ok {
		return fail(fmt.Errorf("%w: assignment references structure %s", salarystructure.ErrSalaryStructureNotFound, assignment.SalaryStructureID))
	}

	cfg, ok := snap.configFor(emp)
	if !ok {
		return fail(fmt.Errorf("%w: %s/%s for financial year %s", payroll.ErrMissingTaxConfiguration, emp.Country, emp.State, snap.financialYear))
	}

	var decl *declaration.TaxDeclaration
	if d, ok := snap.declarations[emp.ID]; ok {
		decl = &d
	}

	p, err := s.calc.BuildPayslip(CalculationInput{
		Employee:           emp,
		Config:             cfg,
		Components:         structure.Components,
		Overrides:          assignment.Overrides,
		MonthlyRent:        assignment.MonthlyRent,
		MonthlyTravelSpend: assignment.MonthlyTravelSpend,
		Declaration:        decl,
		PeriodMonth:        run.PeriodMonth,
		PeriodYear:         run.PeriodYear,
		GeneratedAt:        generatedAt,
	})
	if err != nil {
		return fail(err)
	}

	return employeeResult{payslip: p}
}

// ========== HELPERS ==========

func mapToRunResponse(run payroll.PayrollRun) payroll.PayrollRunResponse {
	return payroll.PayrollRunResponse{
		ID:                 run.ID,
		CompanyID:          run.CompanyID,
		PeriodMonth:        run.PeriodMonth,
		PeriodYear:         run.PeriodYear,
		Status:             string(run.Status),
		TotalEmployees:     run.TotalEmployees,
		ProcessedEmployees: run.ProcessedEmployees,
		FailedEmployees:    run.FailedEmployees,
		StartedAt:          run.StartedAt,
		CompletedAt:        run.CompletedAt,
		LockedAt:           run.LockedAt,
		CreatedAt:          run.CreatedAt,
	}
}

func mapToFailureResponse(f payroll.RunFailure) payroll.RunFailureResponse {
	employeeName := ""
	employeeNumber := ""
	if f.EmployeeName != nil {
		employeeName = *f.EmployeeName
	}
	if f.EmployeeNumber != nil {
		employeeNumber = *f.EmployeeNumber
	}

	return payroll.RunFailureResponse{
		EmployeeID:     f.EmployeeID,
		EmployeeName:   employeeName,
		EmployeeNumber: employeeNumber,
		Reason:         f.Reason,
	}
}

func mapToPayslipResponse(p payroll.Payslip) payroll.PayslipResponse {
	employeeName := ""
	employeeNumber := ""
	if p.EmployeeName != nil {
		employeeName = *p.EmployeeName
	}
	if p.EmployeeNumber != nil {
		employeeNumber = *p.EmployeeNumber
	}

	return payroll.PayslipResponse{
		ID:                    p.ID,
		PayrollRunID:          p.PayrollRunID,
		EmployeeID:            p.EmployeeID,
		EmployeeName:          employeeName,
		EmployeeNumber:        employeeNumber,
		PeriodMonth:           p.PeriodMonth,
		PeriodYear:            p.PeriodYear,
		Earnings:              p.Earnings,
		Deductions:            p.Deductions,
		EmployerContributions: p.EmployerContributions,
		Exemptions:            p.Exemptions,
		GrossSalary:           p.GrossSalary,
		TotalDeductions:       p.TotalDeductions,
		StandardDeduction:     p.StandardDeduction,
		TaxableIncome:         p.TaxableIncome,
		TaxAmount:             p.TaxAmount,
		NetSalary:             p.NetSalary,
		Status:                string(p.Status),
		GeneratedAt:           p.GeneratedAt,
		ApprovedAt:            p.ApprovedAt,
		LockedAt:              p.LockedAt,
	}
}

package salarystructure

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/salarystructure"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
	"github.com/go-chi/jwtauth/v5"
)

type SalaryStructureServiceImpl struct {
	db           *database.DB
	salaryRepo   salarystructure.SalaryStructureRepository
	employeeRepo employee.EmployeeRepository
}

func NewSalaryStructureService(
	db *database.DB,
	salaryRepo salarystructure.SalaryStructureRepository,
	employeeRepo employee.EmployeeRepository,
) salarystructure.SalaryStructureService {
	return &SalaryStructureServiceImpl{
		db:           db,
		salaryRepo:   salaryRepo,
		employeeRepo: employeeRepo,
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

func (s *SalaryStructureServiceImpl) Create(ctx context.Context, req salarystructure.CreateSalaryStructureRequest) (salarystructure.SalaryStructureResponse, error) {
	if err := req.Validate(); err != nil {
		return salarystructure.SalaryStructureResponse{}, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return salarystructure.SalaryStructureResponse{}, err
	}

	structure := salarystructure.SalaryStructure{
		CompanyID:   companyID,
		Name:        req.Name,
		Description: req.Description,
		Components:  req.Components,
	}

	created, err := s.salaryRepo.Create(ctx, structure)
	if err != nil {
		return salarystructure.SalaryStructureResponse{}, err
	}

	slog.Info("Salary structure created", "salary_structure_id", created.ID, "name", created.Name)
	return mapToResponse(created), nil
}

func (s *SalaryStructureServiceImpl) GetByID(ctx context.Context, id string) (salarystructure.SalaryStructureResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return salarystructure.SalaryStructureResponse{}, err
	}

	structure, err := s.salaryRepo.GetByID(ctx, id, companyID)
	if err != nil {
		return salarystructure.SalaryStructureResponse{}, err
	}
	return mapToResponse(structure), nil
}

func (s *SalaryStructureServiceImpl) ListByCompany(ctx context.Context) ([]salarystructure.SalaryStructureResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	structures, err := s.salaryRepo.ListByCompanyID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	responses := make([]salarystructure.SalaryStructureResponse, 0, len(structures))
	for _, structure := range structures {
		responses = append(responses, mapToResponse(structure))
	}
	return responses, nil
}

func (s *SalaryStructureServiceImpl) Update(ctx context.Context, req salarystructure.UpdateSalaryStructureRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	return s.salaryRepo.Update(ctx, companyID, req)
}

// Delete refuses to remove a structure that is still assigned: assignments
// must be moved to another structure first.
func (s *SalaryStructureServiceImpl) Delete(ctx context.Context, id string) error {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	assigned, err := s.salaryRepo.IsAssigned(ctx, id, companyID)
	if err != nil {
		return err
	}
	if assigned {
		return salarystructure.ErrSalaryStructureAssigned
	}

	return s.salaryRepo.Delete(ctx, id, companyID)
}

// Assign attaches a structure to an employee. The assignment is resolved
// immediately so an override or percentage mistake is rejected here instead
// of failing the employee at payroll time.
func (s *SalaryStructureServiceImpl) Assign(ctx context.Context, req salarystructure.AssignStructureRequest) (salarystructure.EmployeeSalaryResponse, error) {
	if err := req.Validate(); err != nil {
		return salarystructure.EmployeeSalaryResponse{}, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return salarystructure.EmployeeSalaryResponse{}, err
	}

	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID, companyID); err != nil {
		return salarystructure.EmployeeSalaryResponse{}, err
	}

	structure, err := s.salaryRepo.GetByID(ctx, req.SalaryStructureID, companyID)
	if err != nil {
		return salarystructure.EmployeeSalaryResponse{}, err
	}

	resolved, err := salarystructure.ResolveComponents(structure.Components, req.Overrides)
	if err != nil {
		return salarystructure.EmployeeSalaryResponse{}, err
	}

	effectiveDate, _ := validator.IsValidDate(req.EffectiveDate)

	assignment := salarystructure.EmployeeSalary{
		EmployeeID:         req.EmployeeID,
		CompanyID:          companyID,
		SalaryStructureID:  req.SalaryStructureID,
		Overrides:          req.Overrides,
		MonthlyRent:        req.MonthlyRent,
		MonthlyTravelSpend: req.MonthlyTravelSpend,
		EffectiveDate:      effectiveDate,
	}

	saved, err := s.salaryRepo.UpsertEmployeeSalary(ctx, assignment)
	if err != nil {
		return salarystructure.EmployeeSalaryResponse{}, err
	}

	slog.Info("Salary structure assigned",
		"employee_id", saved.EmployeeID,
		"salary_structure_id", saved.SalaryStructureID,
	)
	return mapToSalaryResponse(saved, structure.Name, resolved), nil
}

func (s *SalaryStructureServiceImpl) GetEmployeeSalary(ctx context.Context, employeeID string) (salarystructure.EmployeeSalaryResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return salarystructure.EmployeeSalaryResponse{}, err
	}

	assignment, err := s.salaryRepo.GetEmployeeSalary(ctx, employeeID, companyID)
	if err != nil {
		return salarystructure.EmployeeSalaryResponse{}, err
	}

	structure, err := s.salaryRepo.GetByID(ctx, assignment.SalaryStructureID, companyID)
	if err != nil {
		return salarystructure.EmployeeSalaryResponse{}, err
	}

	resolved, err := salarystructure.ResolveComponents(structure.Components, assignment.Overrides)
	if err != nil {
		return salarystructure.EmployeeSalaryResponse{}, err
	}

	return mapToSalaryResponse(assignment, structure.Name, resolved), nil
}

func mapToResponse(structure salarystructure.SalaryStructure) salarystructure.SalaryStructureResponse {
	return salarystructure.SalaryStructureResponse{
		ID:          structure.ID,
		CompanyID:   structure.CompanyID,
		Name:        structure.Name,
		Description: structure.Description,
		Components:  structure.Components,
		CreatedAt:   structure.CreatedAt,
		UpdatedAt:   structure.UpdatedAt,
	}
}

func mapToSalaryResponse(assignment salarystructure.EmployeeSalary, structureName string, resolved []salarystructure.ResolvedComponent) salarystructure.EmployeeSalaryResponse {
	return salarystructure.EmployeeSalaryResponse{
		EmployeeID:         assignment.EmployeeID,
		SalaryStructureID:  assignment.SalaryStructureID,
		StructureName:      structureName,
		Components:         resolved,
		MonthlyRent:        assignment.MonthlyRent,
		MonthlyTravelSpend: assignment.MonthlyTravelSpend,
		EffectiveDate:      assignment.EffectiveDate.Format("2006-01-02"),
	}
}

package salarystructure

import "context"

// SalaryStructureRepository defines data access methods for structures and
// employee assignments. All methods include companyID to prevent
// cross-company data access.
type SalaryStructureRepository interface {
	Create(ctx context.Context, structure SalaryStructure) (SalaryStructure, error)
	GetByID(ctx context.Context, id string, companyID string) (SalaryStructure, error)
	ListByCompanyID(ctx context.Context, companyID string) ([]SalaryStructure, error)
	Update(ctx context.Context, companyID string, req UpdateSalaryStructureRequest) error
	Delete(ctx context.Context, id string, companyID string) error
	IsAssigned(ctx context.Context, id string, companyID string) (bool, error)

	// Assignments
	UpsertEmployeeSalary(ctx context.Context, assignment EmployeeSalary) (EmployeeSalary, error)
	GetEmployeeSalary(ctx context.Context, employeeID string, companyID string) (EmployeeSalary, error)
	ListEmployeeSalariesByCompanyID(ctx context.Context, companyID string) ([]EmployeeSalary, error)
}

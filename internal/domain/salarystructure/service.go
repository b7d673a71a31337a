package salarystructure

import "context"

type SalaryStructureService interface {
	Create(ctx context.Context, req CreateSalaryStructureRequest) (SalaryStructureResponse, error)
	GetByID(ctx context.Context, id string) (SalaryStructureResponse, error)
	ListByCompany(ctx context.Context) ([]SalaryStructureResponse, error)
	Update(ctx context.Context, req UpdateSalaryStructureRequest) error
	Delete(ctx context.Context, id string) error
	Assign(ctx context.Context, req AssignStructureRequest) (EmployeeSalaryResponse, error)
	GetEmployeeSalary(ctx context.Context, employeeID string) (EmployeeSalaryResponse, error)
}

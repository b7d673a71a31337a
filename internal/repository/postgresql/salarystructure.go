package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/salarystructure"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type salaryStructureRepository struct {
	db *database.DB
}

func NewSalaryStructureRepository(db *database.DB) salarystructure.SalaryStructureRepository {
	return &salaryStructureRepository{db: db}
}

// ========== SALARY STRUCTURES ==========

func (r *salaryStructureRepository) Create(ctx context.Context, structure salarystructure.SalaryStructure) (salarystructure.SalaryStructure, error) {
	q := GetQuerier(ctx, r.db)

	componentsJSON, err := json.Marshal(structure.Components)
	if err != nil {
		return salarystructure.SalaryStructure{}, fmt.Errorf("failed to marshal components: %w", err)
	}

	query := `
		INSERT INTO salary_structures (id, company_id, name, description, components, created_at, updated_at)
		VALUES (uuidv7(), $1, $2, $3, $4, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	created := structure
	err = q.QueryRow(ctx, query,
		structure.CompanyID, structure.Name, structure.Description, componentsJSON,
	).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "uk_salary_structure_name_company") {
			return salarystructure.SalaryStructure{}, salarystructure.ErrSalaryStructureNameExists
		}
		return salarystructure.SalaryStructure{}, fmt.Errorf("failed to create salary structure: %w", err)
	}

	return created, nil
}

func (r *salaryStructureRepository) GetByID(ctx context.Context, id string, companyID string) (salarystructure.SalaryStructure, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, name, description, components, created_at, updated_at
		FROM salary_structures
		WHERE id = $1 AND company_id = $2
	`

	var s salarystructure.SalaryStructure
	var componentsJSON []byte
	err := q.QueryRow(ctx, query, id, companyID).Scan(
		&s.ID, &s.CompanyID, &s.Name, &s.Description, &componentsJSON, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return salarystructure.SalaryStructure{}, salarystructure.ErrSalaryStructureNotFound
		}
		return salarystructure.SalaryStructure{}, fmt.Errorf("failed to get salary structure: %w", err)
	}
	_ = json.Unmarshal(componentsJSON, &s.Components)

	return s, nil
}

func (r *salaryStructureRepository) ListByCompanyID(ctx context.Context, companyID string) ([]salarystructure.SalaryStructure, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, name, description, components, created_at, updated_at
		FROM salary_structures
		WHERE company_id = $1
		ORDER BY name
	`

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list salary structures: %w", err)
	}
	defer rows.Close()

	var structures []salarystructure.SalaryStructure
	for rows.Next() {
		var s salarystructure.SalaryStructure
		var componentsJSON []byte
		if err := rows.Scan(
			&s.ID, &s.CompanyID, &s.Name, &s.Description, &componentsJSON, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan salary structure: %w", err)
		}
		_ = json.Unmarshal(componentsJSON, &s.Components)
		structures = append(structures, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate salary structures: %w", err)
	}

	return structures, nil
}

func (r *salaryStructureRepository) Update(ctx context.Context, companyID string, req salarystructure.UpdateSalaryStructureRequest) error {
	q := GetQuerier(ctx, r.db)

	setParts := []string{"updated_at = NOW()"}
	args := []interface{}{req.ID, companyID}
	argIdx := 3

	if req.Name != nil {
		setParts = append(setParts, fmt.Sprintf("name = $%d", argIdx))
		args = append(args, *req.Name)
		argIdx++
	}
	if req.Description != nil {
		setParts = append(setParts, fmt.Sprintf("description = $%d", argIdx))
		args = append(args, *req.Description)
		argIdx++
	}
	if req.Components != nil {
		componentsJSON, err := json.Marshal(req.Components)
		if err != nil {
			return fmt.Errorf("failed to marshal components: %w", err)
		}
		setParts = append(setParts, fmt.Sprintf("components = $%d", argIdx))
		args = append(args, componentsJSON)
		argIdx++
	}

	query := fmt.Sprintf(`
		UPDATE salary_structures
		SET %s
		WHERE id = $1 AND company_id = $2
	`, strings.Join(setParts, ", "))

	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		if strings.Contains(err.Error(), "uk_salary_structure_name_company") {
			return salarystructure.ErrSalaryStructureNameExists
		}
		return fmt.Errorf("failed to update salary structure: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return salarystructure.ErrSalaryStructureNotFound
	}

	return nil
}

func (r *salaryStructureRepository) Delete(ctx context.Context, id string, companyID string) error {
	q := GetQuerier(ctx, r.db)

	query := `DELETE FROM salary_structures WHERE id = $1 AND company_id = $2`

	tag, err := q.Exec(ctx, query, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete salary structure: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return salarystructure.ErrSalaryStructureNotFound
	}

	return nil
}

func (r *salaryStructureRepository) IsAssigned(ctx context.Context, id string, companyID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM employee_salaries
			WHERE salary_structure_id = $1 AND company_id = $2
		)
	`

	var assigned bool
	err := q.QueryRow(ctx, query, id, companyID).Scan(&assigned)
	if err != nil {
		return false, fmt.Errorf("failed to check salary structure assignments: %w", err)
	}

	return assigned, nil
}

// ========== EMPLOYEE SALARIES ==========

func (r *salaryStructureRepository) UpsertEmployeeSalary(ctx context.Context, assignment salarystructure.EmployeeSalary) (salarystructure.EmployeeSalary, error) {
	q := GetQuerier(ctx, r.db)

	overridesJSON, err := json.Marshal(assignment.Overrides)
	if err != nil {
		return salarystructure.EmployeeSalary{}, fmt.Errorf("failed to marshal overrides: %w", err)
	}

	query := `
		INSERT INTO employee_salaries (
			id, employee_id, company_id, salary_structure_id, overrides,
			monthly_rent, monthly_travel_spend, effective_date, created_at, updated_at
		) VALUES (uuidv7(), $1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (employee_id) DO UPDATE SET
			salary_structure_id = EXCLUDED.salary_structure_id,
			overrides = EXCLUDED.overrides,
			monthly_rent = EXCLUDED.monthly_rent,
			monthly_travel_spend = EXCLUDED.monthly_travel_spend,
			effective_date = EXCLUDED.effective_date,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	created := assignment
	err = q.QueryRow(ctx, query,
		assignment.EmployeeID, assignment.CompanyID, assignment.SalaryStructureID, overridesJSON,
		assignment.MonthlyRent, assignment.MonthlyTravelSpend, assignment.EffectiveDate,
	).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return salarystructure.EmployeeSalary{}, fmt.Errorf("failed to upsert employee salary: %w", err)
	}

	return created, nil
}

func (r *salaryStructureRepository) GetEmployeeSalary(ctx context.Context, employeeID string, companyID string) (salarystructure.EmployeeSalary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT es.id, es.employee_id, es.company_id, es.salary_structure_id, es.overrides,
			   es.monthly_rent, es.monthly_travel_spend, es.effective_date, es.created_at, es.updated_at,
			   ss.name
		FROM employee_salaries es
		JOIN salary_structures ss ON ss.id = es.salary_structure_id
		WHERE es.employee_id = $1 AND es.company_id = $2
	`

	var es salarystructure.EmployeeSalary
	var overridesJSON []byte
	err := q.QueryRow(ctx, query, employeeID, companyID).Scan(
		&es.ID, &es.EmployeeID, &es.CompanyID, &es.SalaryStructureID, &overridesJSON,
		&es.MonthlyRent, &es.MonthlyTravelSpend, &es.EffectiveDate, &es.CreatedAt, &es.UpdatedAt,
		&es.StructureName,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return salarystructure.EmployeeSalary{}, salarystructure.ErrEmployeeSalaryNotFound
		}
		return salarystructure.EmployeeSalary{}, fmt.Errorf("failed to get employee salary: %w", err)
	}
	_ = json.Unmarshal(overridesJSON, &es.Overrides)

	return es, nil
}

func (r *salaryStructureRepository) ListEmployeeSalariesByCompanyID(ctx context.Context, companyID string) ([]salarystructure.EmployeeSalary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT es.id, es.employee_id, es.company_id, es.salary_structure_id, es.overrides,
			   es.monthly_rent, es.monthly_travel_spend, es.effective_date, es.created_at, es.updated_at,
			   ss.name
		FROM employee_salaries es
		JOIN salary_structures ss ON ss.id = es.salary_structure_id
		WHERE es.company_id = $1
		ORDER BY es.employee_id
	`

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employee salaries: %w", err)
	}
	defer rows.Close()

	var salaries []salarystructure.EmployeeSalary
	for rows.Next() {
		var es salarystructure.EmployeeSalary
		var overridesJSON []byte
		if err := rows.Scan(
			&es.ID, &es.EmployeeID, &es.CompanyID, &es.SalaryStructureID, &overridesJSON,
			&es.MonthlyRent, &es.MonthlyTravelSpend, &es.EffectiveDate, &es.CreatedAt, &es.UpdatedAt,
			&es.StructureName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan employee salary: %w", err)
		}
		_ = json.Unmarshal(overridesJSON, &es.Overrides)
		salaries = append(salaries, es)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employee salaries: %w", err)
	}

	return salaries, nil
}

package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/declaration"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type taxDeclarationRepository struct {
	db *database.DB
}

func NewTaxDeclarationRepository(db *database.DB) declaration.TaxDeclarationRepository {
	return &taxDeclarationRepository{db: db}
}

func (r *taxDeclarationRepository) Create(ctx context.Context, d declaration.TaxDeclaration) (declaration.TaxDeclaration, error) {
	q := GetQuerier(ctx, r.db)

	sectionsJSON, err := json.Marshal(d.Sections)
	if err != nil {
		return declaration.TaxDeclaration{}, fmt.Errorf("failed to marshal sections: %w", err)
	}

	query := `
		INSERT INTO tax_declarations (
			id, employee_id, company_id, financial_year, status, sections, created_at, updated_at
		) VALUES (uuidv7(), $1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	created := d
	err = q.QueryRow(ctx, query,
		d.EmployeeID, d.CompanyID, d.FinancialYear, d.Status, sectionsJSON,
	).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "uk_tax_declaration_employee_year") {
			return declaration.TaxDeclaration{}, declaration.ErrDeclarationExists
		}
		return declaration.TaxDeclaration{}, fmt.Errorf("failed to create tax declaration: %w", err)
	}

	return created, nil
}

func (r *taxDeclarationRepository) GetByID(ctx context.Context, id string, companyID string) (declaration.TaxDeclaration, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, company_id, financial_year, status, sections, rejection_reason,
			   submitted_at, verified_at, verified_by, created_at, updated_at
		FROM tax_declarations
		WHERE id = $1 AND company_id = $2
	`

	var d declaration.TaxDeclaration
	var sectionsJSON []byte
	err := q.QueryRow(ctx, query, id, companyID).Scan(
		&d.ID, &d.EmployeeID, &d.CompanyID, &d.FinancialYear, &d.Status, &sectionsJSON,
		&d.RejectionReason, &d.SubmittedAt, &d.VerifiedAt, &d.VerifiedBy, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return declaration.TaxDeclaration{}, declaration.ErrDeclarationNotFound
		}
		return declaration.TaxDeclaration{}, fmt.Errorf("failed to get tax declaration: %w", err)
	}
	_ = json.Unmarshal(sectionsJSON, &d.Sections)

	return d, nil
}

func (r *taxDeclarationRepository) GetByEmployeeAndYear(ctx context.Context, employeeID, financialYear, companyID string) (declaration.TaxDeclaration, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, company_id, financial_year, status, sections, rejection_reason,
			   submitted_at, verified_at, verified_by, created_at, updated_at
		FROM tax_declarations
		WHERE employee_id = $1 AND financial_year = $2 AND company_id = $3
	`

	var d declaration.TaxDeclaration
	var sectionsJSON []byte
	err := q.QueryRow(ctx, query, employeeID, financialYear, companyID).Scan(
		&d.ID, &d.EmployeeID, &d.CompanyID, &d.FinancialYear, &d.Status, &sectionsJSON,
		&d.RejectionReason, &d.SubmittedAt, &d.VerifiedAt, &d.VerifiedBy, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return declaration.TaxDeclaration{}, declaration.ErrDeclarationNotFound
		}
		return declaration.TaxDeclaration{}, fmt.Errorf("failed to get tax declaration: %w", err)
	}
	_ = json.Unmarshal(sectionsJSON, &d.Sections)

	return d, nil
}

func (r *taxDeclarationRepository) ListVerifiedByCompanyAndYear(ctx context.Context, companyID, financialYear string) ([]declaration.TaxDeclaration, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, company_id, financial_year, status, sections, rejection_reason,
			   submitted_at, verified_at, verified_by, created_at, updated_at
		FROM tax_declarations
		WHERE company_id = $1 AND financial_year = $2 AND status = $3
	`

	rows, err := q.Query(ctx, query, companyID, financialYear, declaration.DeclarationStatusVerified)
	if err != nil {
		return nil, fmt.Errorf("failed to list verified tax declarations: %w", err)
	}
	defer rows.Close()

	var declarations []declaration.TaxDeclaration
	for rows.Next() {
		var d declaration.TaxDeclaration
		var sectionsJSON []byte
		if err := rows.Scan(
			&d.ID, &d.EmployeeID, &d.CompanyID, &d.FinancialYear, &d.Status, &sectionsJSON,
			&d.RejectionReason, &d.SubmittedAt, &d.VerifiedAt, &d.VerifiedBy, &d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan tax declaration: %w", err)
		}
		_ = json.Unmarshal(sectionsJSON, &d.Sections)
		declarations = append(declarations, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tax declarations: %w", err)
	}

	return declarations, nil
}

func (r *taxDeclarationRepository) UpdateSections(ctx context.Context, companyID string, d declaration.TaxDeclaration) error {
	q := GetQuerier(ctx, r.db)

	sectionsJSON, err := json.Marshal(d.Sections)
	if err != nil {
		return fmt.Errorf("failed to marshal sections: %w", err)
	}

	query := `
		UPDATE tax_declarations
		SET sections = $3, status = $4, rejection_reason = $5, updated_at = NOW()
		WHERE id = $1 AND company_id = $2
	`

	tag, err := q.Exec(ctx, query, d.ID, companyID, sectionsJSON, d.Status, d.RejectionReason)
	if err != nil {
		return fmt.Errorf("failed to update tax declaration sections: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return declaration.ErrDeclarationNotFound
	}

	return nil
}

func (r *taxDeclarationRepository) UpdateStatus(ctx context.Context, companyID string, d declaration.TaxDeclaration) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE tax_declarations
		SET status = $3, rejection_reason = $4, submitted_at = $5, verified_at = $6, verified_by = $7,
			updated_at = NOW()
		WHERE id = $1 AND company_id = $2
	`

	tag, err := q.Exec(ctx, query,
		d.ID, companyID, d.Status, d.RejectionReason, d.SubmittedAt, d.VerifiedAt, d.VerifiedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update tax declaration status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return declaration.ErrDeclarationNotFound
	}

	return nil
}

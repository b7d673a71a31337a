package declaration

import "context"

// TaxDeclarationRepository defines data access methods for declarations.
// All methods include companyID to prevent cross-company data access.
type TaxDeclarationRepository interface {
	Create(ctx context.Context, d TaxDeclaration) (TaxDeclaration, error)
	GetByID(ctx context.Context, id string, companyID string) (TaxDeclaration, error)
	GetByEmployeeAndYear(ctx context.Context, employeeID, financialYear, companyID string) (TaxDeclaration, error)
	ListVerifiedByCompanyAndYear(ctx context.Context, companyID, financialYear string) ([]TaxDeclaration, error)
	UpdateSections(ctx context.Context, companyID string, d TaxDeclaration) error
	UpdateStatus(ctx context.Context, companyID string, d TaxDeclaration) error
}

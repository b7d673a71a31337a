package taxconfig

import "context"

// TaxConfigurationRepository defines data access methods for tax
// configurations. All methods include companyID to prevent cross-company
// data access.
type TaxConfigurationRepository interface {
	Create(ctx context.Context, cfg TaxConfiguration) (TaxConfiguration, error)
	GetByID(ctx context.Context, id string, companyID string) (TaxConfiguration, error)
	ListByCompanyID(ctx context.Context, companyID string, filter TaxConfigurationFilter) ([]TaxConfiguration, error)
	Update(ctx context.Context, companyID string, req UpdateTaxConfigurationRequest) error
	IsReferencedByPayslips(ctx context.Context, id string, companyID string) (bool, error)
}

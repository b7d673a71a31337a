package taxconfig

import "context"

type TaxConfigurationService interface {
	Create(ctx context.Context, req CreateTaxConfigurationRequest) (TaxConfigurationResponse, error)
	GetByID(ctx context.Context, id string) (TaxConfigurationResponse, error)
	ListByCompany(ctx context.Context, filter TaxConfigurationFilter) ([]TaxConfigurationResponse, error)
	Update(ctx context.Context, req UpdateTaxConfigurationRequest) error
}

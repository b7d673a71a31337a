package declaration

import "context"

type TaxDeclarationService interface {
	Create(ctx context.Context, req CreateTaxDeclarationRequest) (TaxDeclarationResponse, error)
	UpdateDraft(ctx context.Context, req UpdateTaxDeclarationRequest) (TaxDeclarationResponse, error)
	Submit(ctx context.Context, id string) (TaxDeclarationResponse, error)
	Verify(ctx context.Context, req VerifyTaxDeclarationRequest) (TaxDeclarationResponse, error)
	Reject(ctx context.Context, req RejectTaxDeclarationRequest) (TaxDeclarationResponse, error)
	GetByID(ctx context.Context, id string) (TaxDeclarationResponse, error)
	GetByEmployee(ctx context.Context, employeeID, financialYear string) (TaxDeclarationResponse, error)
}

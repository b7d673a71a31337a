package declaration

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/declaration"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/taxconfig"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/repository/postgresql"
	"github.com/go-chi/jwtauth/v5"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type TaxDeclarationServiceImpl struct {
	db           *database.DB
	declRepo     declaration.TaxDeclarationRepository
	employeeRepo employee.EmployeeRepository
}

func NewTaxDeclarationService(
	db *database.DB,
	declRepo declaration.TaxDeclarationRepository,
	employeeRepo employee.EmployeeRepository,
) declaration.TaxDeclarationService {
	return &TaxDeclarationServiceImpl{
		db:           db,
		declRepo:     declRepo,
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

func (s *TaxDeclarationServiceImpl) Create(ctx context.Context, req declaration.CreateTaxDeclarationRequest) (declaration.TaxDeclarationResponse, error) {
	if err := req.Validate(); err != nil {
		return declaration.TaxDeclarationResponse{}, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return declaration.TaxDeclarationResponse{}, err
	}

	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID, companyID); err != nil {
		return declaration.TaxDeclarationResponse{}, err
	}

	d := declaration.TaxDeclaration{
		EmployeeID:    req.EmployeeID,
		CompanyID:     companyID,
		FinancialYear: req.FinancialYear,
		Status:        declaration.DeclarationStatusDraft,
		Sections:      mapToSections(req.Sections),
	}

	created, err := s.declRepo.Create(ctx, d)
	if err != nil {
		return declaration.TaxDeclarationResponse{}, err
	}

	slog.Info("Tax declaration created",
		"declaration_id", created.ID,
		"employee_id", created.EmployeeID,
		"financial_year", created.FinancialYear,
	)
	return mapToResponse(created), nil
}

// UpdateDraft replaces the declared sections. Editing a rejected
// declaration moves it back to draft and clears the rejection reason;
// submitted and verified declarations are immutable.
func (s *TaxDeclarationServiceImpl) UpdateDraft(ctx context.Context, req declaration.UpdateTaxDeclarationRequest) (declaration.TaxDeclarationResponse, error) {
	if err := req.Validate(); err != nil {
		return declaration.TaxDeclarationResponse{}, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return declaration.TaxDeclarationResponse{}, err
	}

	d, err := s.declRepo.GetByID(ctx, req.ID, companyID)
	if err != nil {
		return declaration.TaxDeclarationResponse{}, err
	}
	if d.Status != declaration.DeclarationStatusDraft && d.Status != declaration.DeclarationStatusRejected {
		return declaration.TaxDeclarationResponse{}, declaration.ErrDeclarationNotDraft
	}

	d.Sections = mapToSections(req.Sections)
	d.Status = declaration.DeclarationStatusDraft
	d.RejectionReason = nil

	if err := s.declRepo.UpdateSections(ctx, companyID, d); err != nil {
		return declaration.TaxDeclarationResponse{}, err
	}
	return mapToResponse(d), nil
}

func (s *TaxDeclarationServiceImpl) Submit(ctx context.Context, id string) (declaration.TaxDeclarationResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return declaration.TaxDeclarationResponse{}, err
	}

	d, err := s.declRepo.GetByID(ctx, id, companyID)
	if err != nil {
		return declaration.TaxDeclarationResponse{}, err
	}
	if d.Status != declaration.DeclarationStatusDraft {
		return declaration.TaxDeclarationResponse{}, declaration.ErrDeclarationNotDraft
	}

	now := time.Now()
	d.Status = declaration.DeclarationStatusSubmitted
	d.SubmittedAt = &now

	if err := s.declRepo.UpdateStatus(ctx, companyID, d); err != nil {
		return declaration.TaxDeclarationResponse{}, err
	}
	return mapToResponse(d), nil
}

// Verify records the amounts the verifier accepted per declared section and
// moves the declaration to verified. Amounts are stored as accepted;
// section ceilings from the tax configuration are applied during payroll
// calculation, never here.
func (s *TaxDeclarationServiceImpl) Verify(ctx context.Context, req declaration.VerifyTaxDeclarationRequest) (declaration.TaxDeclarationResponse, error) {
	if err := req.Validate(); err != nil {
		return declaration.TaxDeclarationResponse{}, err
	}

	companyID, userID, err := getClaimsFromContext(ctx)
	if err != nil {
		return declaration.TaxDeclarationResponse{}, err
	}

	d, err := s.declRepo.GetByID(ctx, req.ID, companyID)
	if err != nil {
		return declaration.TaxDeclarationResponse{}, err
	}
	if d.Status != declaration.DeclarationStatusSubmitted {
		return declaration.TaxDeclarationResponse{}, declaration.ErrDeclarationNotSubmitted
	}

	for key, amount := range req.VerifiedAmounts {
		sectionKey := taxconfig.SectionKey(key)
		section, ok := d.Sections[sectionKey]
		if !ok {
			return declaration.TaxDeclarationResponse{}, fmt.Errorf("%w: %s", declaration.ErrUnknownDeclaredSection, key)
		}
		verified := amount
		section.VerifiedAmount = &verified
		d.Sections[sectionKey] = section
	}

	now := time.Now()
	d.Status = declaration.DeclarationStatusVerified
	d.VerifiedAt = &now
	d.VerifiedBy = &userID

	err = postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)

		if err := s.declRepo.UpdateSections(txCtx, companyID, d); err != nil {
			return err
		}
		return s.declRepo.UpdateStatus(txCtx, companyID, d)
	})
	if err != nil {
		return declaration.TaxDeclarationResponse{}, err
	}

	slog.Info("Tax declaration verified", "declaration_id", d.ID, "verified_by", userID)
	return mapToResponse(d), nil
}

func (s *TaxDeclarationServiceImpl) Reject(ctx context.Context, req declaration.RejectTaxDeclarationRequest) (declaration.TaxDeclarationResponse, error) {
	if err := req.Validate(); err != nil {
		return declaration.TaxDeclarationResponse{}, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return declaration.TaxDeclarationResponse{}, err
	}

	d, err := s.declRepo.GetByID(ctx, req.ID, companyID)
	if err != nil {
		return declaration.TaxDeclarationResponse{}, err
	}
	if d.Status != declaration.DeclarationStatusSubmitted {
		return declaration.TaxDeclarationResponse{}, declaration.ErrDeclarationNotSubmitted
	}

	d.Status = declaration.DeclarationStatusRejected
	d.RejectionReason = &req.Reason

	if err := s.declRepo.UpdateStatus(ctx, companyID, d); err != nil {
		return declaration.TaxDeclarationResponse{}, err
	}
	return mapToResponse(d), nil
}

func (s *TaxDeclarationServiceImpl) GetByID(ctx context.Context, id string) (declaration.TaxDeclarationResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return declaration.TaxDeclarationResponse{}, err
	}

	d, err := s.declRepo.GetByID(ctx, id, companyID)
	if err != nil {
		return declaration.TaxDeclarationResponse{}, err
	}
	return mapToResponse(d), nil
}

func (s *TaxDeclarationServiceImpl) GetByEmployee(ctx context.Context, employeeID, financialYear string) (declaration.TaxDeclarationResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return declaration.TaxDeclarationResponse{}, err
	}

	d, err := s.declRepo.GetByEmployeeAndYear(ctx, employeeID, financialYear, companyID)
	if err != nil {
		return declaration.TaxDeclarationResponse{}, err
	}
	return mapToResponse(d), nil
}

func mapToSections(sections map[string]map[string]decimal.Decimal) map[taxconfig.SectionKey]declaration.DeclarationSection {
	result := make(map[taxconfig.SectionKey]declaration.DeclarationSection, len(sections))
	for key, items := range sections {
		result[taxconfig.SectionKey(key)] = declaration.DeclarationSection{Items: items}
	}
	return result
}

func mapToResponse(d declaration.TaxDeclaration) declaration.TaxDeclarationResponse {
	sections := make(map[string]declaration.DeclarationSectionResponse, len(d.Sections))
	for key, section := range d.Sections {
		sections[string(key)] = declaration.DeclarationSectionResponse{
			Items:          section.Items,
			DeclaredAmount: section.DeclaredTotal(),
			VerifiedAmount: section.VerifiedAmount,
		}
	}

	return declaration.TaxDeclarationResponse{
		ID:              d.ID,
		EmployeeID:      d.EmployeeID,
		FinancialYear:   d.FinancialYear,
		Status:          string(d.Status),
		Sections:        sections,
		RejectionReason: d.RejectionReason,
		SubmittedAt:     d.SubmittedAt,
		VerifiedAt:      d.VerifiedAt,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

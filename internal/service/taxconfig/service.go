package taxconfig

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/taxconfig"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/go-chi/jwtauth/v5"
	"github.com/shopspring/decimal"
)

// defaultPayPeriodsPerYear is the monthly payroll cadence used when a
// configuration does not specify its own.
const defaultPayPeriodsPerYear = 12

type TaxConfigurationServiceImpl struct {
	db            *database.DB
	taxConfigRepo taxconfig.TaxConfigurationRepository
}

func NewTaxConfigurationService(db *database.DB, taxConfigRepo taxconfig.TaxConfigurationRepository) taxconfig.TaxConfigurationService {
	return &TaxConfigurationServiceImpl{
		db:            db,
		taxConfigRepo: taxConfigRepo,
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

func (s *TaxConfigurationServiceImpl) Create(ctx context.Context, req taxconfig.CreateTaxConfigurationRequest) (taxconfig.TaxConfigurationResponse, error) {
	if err := req.Validate(); err != nil {
		return taxconfig.TaxConfigurationResponse{}, err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return taxconfig.TaxConfigurationResponse{}, err
	}

	payPeriods := defaultPayPeriodsPerYear
	if req.PayPeriodsPerYear != nil {
		payPeriods = *req.PayPeriodsPerYear
	}

	sectionLimits := make(map[taxconfig.SectionKey]decimal.Decimal, len(req.SectionLimits))
	for key, limit := range req.SectionLimits {
		sectionLimits[taxconfig.SectionKey(key)] = limit
	}

	cfg := taxconfig.TaxConfiguration{
		CompanyID:            companyID,
		Country:              req.Country,
		State:                req.State,
		FinancialYear:        req.FinancialYear,
		PayPeriodsPerYear:    payPeriods,
		IncomeTaxSlabs:       req.IncomeTaxSlabs,
		SocialSecurity:       req.SocialSecurity,
		HealthInsurance:      req.HealthInsurance,
		ProfessionalTaxSlabs: req.ProfessionalTaxSlabs,
		HousingExemptionRule: req.HousingExemptionRule,
		TravelExemptionRule:  req.TravelExemptionRule,
		StandardDeduction:    req.StandardDeduction,
		SectionLimits:        sectionLimits,
	}

	created, err := s.taxConfigRepo.Create(ctx, cfg)
	if err != nil {
		return taxconfig.TaxConfigurationResponse{}, err
	}

	slog.Info("Tax configuration created",
		"tax_configuration_id", created.ID,
		"jurisdiction", created.Country+"/"+created.State,
		"financial_year", created.FinancialYear,
	)
	return mapToResponse(created), nil
}

func (s *TaxConfigurationServiceImpl) GetByID(ctx context.Context, id string) (taxconfig.TaxConfigurationResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return taxconfig.TaxConfigurationResponse{}, err
	}

	cfg, err := s.taxConfigRepo.GetByID(ctx, id, companyID)
	if err != nil {
		return taxconfig.TaxConfigurationResponse{}, err
	}
	return mapToResponse(cfg), nil
}

func (s *TaxConfigurationServiceImpl) ListByCompany(ctx context.Context, filter taxconfig.TaxConfigurationFilter) ([]taxconfig.TaxConfigurationResponse, error) {
	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	configs, err := s.taxConfigRepo.ListByCompanyID(ctx, companyID, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]taxconfig.TaxConfigurationResponse, 0, len(configs))
	for _, cfg := range configs {
		responses = append(responses, mapToResponse(cfg))
	}
	return responses, nil
}

// Update rejects changes to configurations already referenced by locked
// payslips: those payslips pin their configuration as audit provenance.
// Configurations referenced only by unlocked payslips stay editable so a
// mistake can be corrected and the run reprocessed.
func (s *TaxConfigurationServiceImpl) Update(ctx context.Context, req taxconfig.UpdateTaxConfigurationRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	companyID, _, err := getClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	referenced, err := s.taxConfigRepo.IsReferencedByPayslips(ctx, req.ID, companyID)
	if err != nil {
		return err
	}
	if referenced {
		return taxconfig.ErrTaxConfigurationInUse
	}

	return s.taxConfigRepo.Update(ctx, companyID, req)
}

func mapToResponse(cfg taxconfig.TaxConfiguration) taxconfig.TaxConfigurationResponse {
	var sectionLimits map[string]decimal.Decimal
	if len(cfg.SectionLimits) > 0 {
		sectionLimits = make(map[string]decimal.Decimal, len(cfg.SectionLimits))
		for key, limit := range cfg.SectionLimits {
			sectionLimits[string(key)] = limit
		}
	}

	return taxconfig.TaxConfigurationResponse{
		ID:                   cfg.ID,
		CompanyID:            cfg.CompanyID,
		Country:              cfg.Country,
		State:                cfg.State,
		FinancialYear:        cfg.FinancialYear,
		PayPeriodsPerYear:    cfg.PayPeriodsPerYear,
		IncomeTaxSlabs:       cfg.IncomeTaxSlabs,
		SocialSecurity:       cfg.SocialSecurity,
		HealthInsurance:      cfg.HealthInsurance,
		ProfessionalTaxSlabs: cfg.ProfessionalTaxSlabs,
		HousingExemptionRule: cfg.HousingExemptionRule,
		TravelExemptionRule:  cfg.TravelExemptionRule,
		StandardDeduction:    cfg.StandardDeduction,
		SectionLimits:        sectionLimits,
		CreatedAt:            cfg.CreatedAt,
		UpdatedAt:            cfg.UpdatedAt,
	}
}

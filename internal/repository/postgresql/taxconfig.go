package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/taxconfig"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type taxConfigurationRepository struct {
	db *database.DB
}

func NewTaxConfigurationRepository(db *database.DB) taxconfig.TaxConfigurationRepository {
	return &taxConfigurationRepository{db: db}
}

func (r *taxConfigurationRepository) Create(ctx context.Context, cfg taxconfig.TaxConfiguration) (taxconfig.TaxConfiguration, error) {
	q := GetQuerier(ctx, r.db)

	slabsJSON, err := json.Marshal(cfg.IncomeTaxSlabs)
	if err != nil {
		return taxconfig.TaxConfiguration{}, fmt.Errorf("failed to marshal income tax slabs: %w", err)
	}
	socialSecurityJSON, err := json.Marshal(cfg.SocialSecurity)
	if err != nil {
		return taxconfig.TaxConfiguration{}, fmt.Errorf("failed to marshal social security: %w", err)
	}
	healthInsuranceJSON, err := json.Marshal(cfg.HealthInsurance)
	if err != nil {
		return taxconfig.TaxConfiguration{}, fmt.Errorf("failed to marshal health insurance: %w", err)
	}
	professionalTaxJSON, err := json.Marshal(cfg.ProfessionalTaxSlabs)
	if err != nil {
		return taxconfig.TaxConfiguration{}, fmt.Errorf("failed to marshal professional tax slabs: %w", err)
	}
	sectionLimitsJSON, err := json.Marshal(cfg.SectionLimits)
	if err != nil {
		return taxconfig.TaxConfiguration{}, fmt.Errorf("failed to marshal section limits: %w", err)
	}

	// NULL column when the rule is absent, so reads can distinguish
	// "no rule" from a zero-valued rule.
	var housingRuleJSON, travelRuleJSON []byte
	if cfg.HousingExemptionRule != nil {
		housingRuleJSON, err = json.Marshal(cfg.HousingExemptionRule)
		if err != nil {
			return taxconfig.TaxConfiguration{}, fmt.Errorf("failed to marshal housing exemption rule: %w", err)
		}
	}
	if cfg.TravelExemptionRule != nil {
		travelRuleJSON, err = json.Marshal(cfg.TravelExemptionRule)
		if err != nil {
			return taxconfig.TaxConfiguration{}, fmt.Errorf("failed to marshal travel exemption rule: %w", err)
		}
	}

	query := `
		INSERT INTO tax_configurations (
			id, company_id, country, state, financial_year, pay_periods_per_year,
			income_tax_slabs, social_security, health_insurance, professional_tax_slabs,
			housing_exemption_rule, travel_exemption_rule, standard_deduction, section_limits,
			created_at, updated_at
		) VALUES (uuidv7(), $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	created := cfg
	err = q.QueryRow(ctx, query,
		cfg.CompanyID, cfg.Country, cfg.State, cfg.FinancialYear, cfg.PayPeriodsPerYear,
		slabsJSON, socialSecurityJSON, healthInsuranceJSON, professionalTaxJSON,
		housingRuleJSON, travelRuleJSON, cfg.StandardDeduction, sectionLimitsJSON,
	).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "uk_tax_configuration_jurisdiction_year") {
			return taxconfig.TaxConfiguration{}, taxconfig.ErrTaxConfigurationExists
		}
		return taxconfig.TaxConfiguration{}, fmt.Errorf("failed to create tax configuration: %w", err)
	}

	return created, nil
}

func (r *taxConfigurationRepository) GetByID(ctx context.Context, id string, companyID string) (taxconfig.TaxConfiguration, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, country, state, financial_year, pay_periods_per_year,
			   income_tax_slabs, social_security, health_insurance, professional_tax_slabs,
			   housing_exemption_rule, travel_exemption_rule, standard_deduction, section_limits,
			   created_at, updated_at
		FROM tax_configurations
		WHERE id = $1 AND company_id = $2
	`

	var cfg taxconfig.TaxConfiguration
	var slabsJSON, socialSecurityJSON, healthInsuranceJSON, professionalTaxJSON []byte
	var housingRuleJSON, travelRuleJSON, sectionLimitsJSON []byte
	err := q.QueryRow(ctx, query, id, companyID).Scan(
		&cfg.ID, &cfg.CompanyID, &cfg.Country, &cfg.State, &cfg.FinancialYear, &cfg.PayPeriodsPerYear,
		&slabsJSON, &socialSecurityJSON, &healthInsuranceJSON, &professionalTaxJSON,
		&housingRuleJSON, &travelRuleJSON, &cfg.StandardDeduction, &sectionLimitsJSON,
		&cfg.CreatedAt, &cfg.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return taxconfig.TaxConfiguration{}, taxconfig.ErrTaxConfigurationNotFound
		}
		return taxconfig.TaxConfiguration{}, fmt.Errorf("failed to get tax configuration: %w", err)
	}

	unmarshalTaxConfigurationJSON(&cfg,
		slabsJSON, socialSecurityJSON, healthInsuranceJSON, professionalTaxJSON,
		housingRuleJSON, travelRuleJSON, sectionLimitsJSON,
	)

	return cfg, nil
}

func (r *taxConfigurationRepository) ListByCompanyID(ctx context.Context, companyID string, filter taxconfig.TaxConfigurationFilter) ([]taxconfig.TaxConfiguration, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, country, state, financial_year, pay_periods_per_year,
			   income_tax_slabs, social_security, health_insurance, professional_tax_slabs,
			   housing_exemption_rule, travel_exemption_rule, standard_deduction, section_limits,
			   created_at, updated_at
		FROM tax_configurations
		WHERE company_id = $1
	`
	args := []interface{}{companyID}
	argIdx := 2

	if filter.Country != nil {
		query += fmt.Sprintf(" AND country = $%d", argIdx)
		args = append(args, *filter.Country)
		argIdx++
	}
	if filter.FinancialYear != nil {
		query += fmt.Sprintf(" AND financial_year = $%d", argIdx)
		args = append(args, *filter.FinancialYear)
		argIdx++
	}

	query += " ORDER BY financial_year DESC, country, state"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tax configurations: %w", err)
	}
	defer rows.Close()

	var configs []taxconfig.TaxConfiguration
	for rows.Next() {
		var cfg taxconfig.TaxConfiguration
		var slabsJSON, socialSecurityJSON, healthInsuranceJSON, professionalTaxJSON []byte
		var housingRuleJSON, travelRuleJSON, sectionLimitsJSON []byte
		if err := rows.Scan(
			&cfg.ID, &cfg.CompanyID, &cfg.Country, &cfg.State, &cfg.FinancialYear, &cfg.PayPeriodsPerYear,
			&slabsJSON, &socialSecurityJSON, &healthInsuranceJSON, &professionalTaxJSON,
			&housingRuleJSON, &travelRuleJSON, &cfg.StandardDeduction, &sectionLimitsJSON,
			&cfg.CreatedAt, &cfg.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan tax configuration: %w", err)
		}
		unmarshalTaxConfigurationJSON(&cfg,
			slabsJSON, socialSecurityJSON, healthInsuranceJSON, professionalTaxJSON,
			housingRuleJSON, travelRuleJSON, sectionLimitsJSON,
		)
		configs = append(configs, cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tax configurations: %w", err)
	}

	return configs, nil
}

func (r *taxConfigurationRepository) Update(ctx context.Context, companyID string, req taxconfig.UpdateTaxConfigurationRequest) error {
	q := GetQuerier(ctx, r.db)

	setParts := []string{"updated_at = NOW()"}
	args := []interface{}{req.ID, companyID}
	argIdx := 3

	if req.PayPeriodsPerYear != nil {
		setParts = append(setParts, fmt.Sprintf("pay_periods_per_year = $%d", argIdx))
		args = append(args, *req.PayPeriodsPerYear)
		argIdx++
	}
	if req.IncomeTaxSlabs != nil {
		slabsJSON, err := json.Marshal(req.IncomeTaxSlabs)
		if err != nil {
			return fmt.Errorf("failed to marshal income tax slabs: %w", err)
		}
		setParts = append(setParts, fmt.Sprintf("income_tax_slabs = $%d", argIdx))
		args = append(args, slabsJSON)
		argIdx++
	}
	if req.SocialSecurity != nil {
		socialSecurityJSON, err := json.Marshal(req.SocialSecurity)
		if err != nil {
			return fmt.Errorf("failed to marshal social security: %w", err)
		}
		setParts = append(setParts, fmt.Sprintf("social_security = $%d", argIdx))
		args = append(args, socialSecurityJSON)
		argIdx++
	}
	if req.HealthInsurance != nil {
		healthInsuranceJSON, err := json.Marshal(req.HealthInsurance)
		if err != nil {
			return fmt.Errorf("failed to marshal health insurance: %w", err)
		}
		setParts = append(setParts, fmt.Sprintf("health_insurance = $%d", argIdx))
		args = append(args, healthInsuranceJSON)
		argIdx++
	}
	if req.ProfessionalTaxSlabs != nil {
		professionalTaxJSON, err := json.Marshal(req.ProfessionalTaxSlabs)
		if err != nil {
			return fmt.Errorf("failed to marshal professional tax slabs: %w", err)
		}
		setParts = append(setParts, fmt.Sprintf("professional_tax_slabs = $%d", argIdx))
		args = append(args, professionalTaxJSON)
		argIdx++
	}
	if req.HousingExemptionRule != nil {
		housingRuleJSON, err := json.Marshal(req.HousingExemptionRule)
		if err != nil {
			return fmt.Errorf("failed to marshal housing exemption rule: %w", err)
		}
		setParts = append(setParts, fmt.Sprintf("housing_exemption_rule = $%d", argIdx))
		args = append(args, housingRuleJSON)
		argIdx++
	}
	if req.TravelExemptionRule != nil {
		travelRuleJSON, err := json.Marshal(req.TravelExemptionRule)
		if err != nil {
			return fmt.Errorf("failed to marshal travel exemption rule: %w", err)
		}
		setParts = append(setParts, fmt.Sprintf("travel_exemption_rule = $%d", argIdx))
		args = append(args, travelRuleJSON)
		argIdx++
	}
	if req.StandardDeduction != nil {
		setParts = append(setParts, fmt.Sprintf("standard_deduction = $%d", argIdx))
		args = append(args, *req.StandardDeduction)
		argIdx++
	}
	if req.SectionLimits != nil {
		sectionLimitsJSON, err := json.Marshal(req.SectionLimits)
		if err != nil {
			return fmt.Errorf("failed to marshal section limits: %w", err)
		}
		setParts = append(setParts, fmt.Sprintf("section_limits = $%d", argIdx))
		args = append(args, sectionLimitsJSON)
		argIdx++
	}

	query := fmt.Sprintf(`
		UPDATE tax_configurations
		SET %s
		WHERE id = $1 AND company_id = $2
	`, strings.Join(setParts, ", "))

	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update tax configuration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return taxconfig.ErrTaxConfigurationNotFound
	}

	return nil
}

func (r *taxConfigurationRepository) IsReferencedByPayslips(ctx context.Context, id string, companyID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM payslips
			WHERE tax_configuration_id = $1 AND company_id = $2 AND status = $3
		)
	`

	var referenced bool
	err := q.QueryRow(ctx, query, id, companyID, payroll.PayslipStatusLocked).Scan(&referenced)
	if err != nil {
		return false, fmt.Errorf("failed to check tax configuration references: %w", err)
	}

	return referenced, nil
}

func unmarshalTaxConfigurationJSON(cfg *taxconfig.TaxConfiguration,
	slabsJSON, socialSecurityJSON, healthInsuranceJSON, professionalTaxJSON,
	housingRuleJSON, travelRuleJSON, sectionLimitsJSON []byte,
) {
	_ = json.Unmarshal(slabsJSON, &cfg.IncomeTaxSlabs)
	_ = json.Unmarshal(socialSecurityJSON, &cfg.SocialSecurity)
	_ = json.Unmarshal(healthInsuranceJSON, &cfg.HealthInsurance)
	_ = json.Unmarshal(professionalTaxJSON, &cfg.ProfessionalTaxSlabs)
	_ = json.Unmarshal(sectionLimitsJSON, &cfg.SectionLimits)
	if len(housingRuleJSON) > 0 {
		var rule taxconfig.AllowanceExemptionRule
		_ = json.Unmarshal(housingRuleJSON, &rule)
		cfg.HousingExemptionRule = &rule
	}
	if len(travelRuleJSON) > 0 {
		var rule taxconfig.AllowanceExemptionRule
		_ = json.Unmarshal(travelRuleJSON, &rule)
		cfg.TravelExemptionRule = &rule
	}
}

package company

import (
	"context"
	"log/slog"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
)

type CompanyServiceImpl struct {
	db          *database.DB
	companyRepo company.CompanyRepository
}

func NewCompanyService(db *database.DB, companyRepo company.CompanyRepository) company.CompanyService {
	return &CompanyServiceImpl{
		db:          db,
		companyRepo: companyRepo,
	}
}

func (s *CompanyServiceImpl) Create(ctx context.Context, req company.CreateCompanyRequest) (company.CompanyResponse, error) {
	if err := req.Validate(); err != nil {
		return company.CompanyResponse{}, err
	}

	newCompany := company.Company{
		Name:     req.Name,
		Country:  req.Country,
		State:    req.State,
		Timezone: req.Timezone,
	}
	if newCompany.Timezone == "" {
		newCompany.Timezone = "UTC"
	}

	created, err := s.companyRepo.Create(ctx, newCompany)
	if err != nil {
		return company.CompanyResponse{}, err
	}

	slog.Info("Company created", "company_id", created.ID, "name", created.Name)
	return mapToResponse(created), nil
}

func (s *CompanyServiceImpl) GetByID(ctx context.Context, id string) (company.CompanyResponse, error) {
	c, err := s.companyRepo.GetByID(ctx, id)
	if err != nil {
		return company.CompanyResponse{}, err
	}
	return mapToResponse(c), nil
}

func (s *CompanyServiceImpl) List(ctx context.Context) ([]company.CompanyResponse, error) {
	companies, err := s.companyRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]company.CompanyResponse, 0, len(companies))
	for _, c := range companies {
		responses = append(responses, mapToResponse(c))
	}
	return responses, nil
}

func (s *CompanyServiceImpl) Update(ctx context.Context, id string, req company.UpdateCompanyRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return s.companyRepo.Update(ctx, id, req)
}

func mapToResponse(c company.Company) company.CompanyResponse {
	return company.CompanyResponse{
		ID:        c.ID,
		Name:      c.Name,
		Country:   c.Country,
		State:     c.State,
		Timezone:  c.Timezone,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

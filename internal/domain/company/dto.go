package company

import (
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
)

type CompanyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Country   string    `json:"country"`
	State     string    `json:"state"`
	Timezone  string    `json:"timezone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateCompanyRequest struct {
	Name     string `json:"name"`
	Country  string `json:"country"`
	State    string `json:"state"`
	Timezone string `json:"timezone,omitempty"`
}

func (r *CreateCompanyRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}
	if !validator.IsValidCountryCode(r.Country) {
		errs = append(errs, validator.ValidationError{
			Field:   "country",
			Message: "country must be an ISO 3166-1 alpha-2 code",
		})
	}
	if validator.IsEmpty(r.State) {
		errs = append(errs, validator.ValidationError{
			Field:   "state",
			Message: "state is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateCompanyRequest struct {
	Name     *string `json:"name,omitempty"`
	State    *string `json:"state,omitempty"`
	Timezone *string `json:"timezone,omitempty"`
}

func (r *UpdateCompanyRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name cannot be empty",
		})
	}
	if r.State != nil && validator.IsEmpty(*r.State) {
		errs = append(errs, validator.ValidationError{
			Field:   "state",
			Message: "state cannot be empty",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

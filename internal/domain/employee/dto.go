package employee

import (
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
)

type CreateEmployeeRequest struct {
	EmployeeNumber string `json:"employee_number"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Country        string `json:"country"`
	State          string `json:"state"`
	JoinDate       string `json:"join_date"`
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidEmployeeNumber(r.EmployeeNumber) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_number",
			Message: "must be 2-20 uppercase alphanumeric characters",
		})
	}
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}
	if !validator.IsValidEmail(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "invalid email format",
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
	if _, ok := validator.IsValidDate(r.JoinDate); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "join_date",
			Message: "must be in YYYY-MM-DD format",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateEmployeeRequest struct {
	ID      string
	Name    *string `json:"name,omitempty"`
	Email   *string `json:"email,omitempty"`
	Country *string `json:"country,omitempty"`
	State   *string `json:"state,omitempty"`
	Status  *string `json:"status,omitempty"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name cannot be empty",
		})
	}
	if r.Email != nil && !validator.IsValidEmail(*r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "invalid email format",
		})
	}
	if r.Country != nil && !validator.IsValidCountryCode(*r.Country) {
		errs = append(errs, validator.ValidationError{
			Field:   "country",
			Message: "country must be an ISO 3166-1 alpha-2 code",
		})
	}
	if r.Status != nil && !validator.IsInSlice(*r.Status, []string{string(EmployeeStatusActive), string(EmployeeStatusInactive)}) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "must be 'active' or 'inactive'",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type EmployeeResponse struct {
	ID             string `json:"id"`
	CompanyID      string `json:"company_id"`
	EmployeeNumber string `json:"employee_number"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Country        string `json:"country"`
	State          string `json:"state"`
	JoinDate       string `json:"join_date"`
	Status         string `json:"status"`
}

type EmployeeFilter struct {
	Status *string
	Page   int
	Limit  int
}

type ListEmployeeResponse struct {
	Data       []EmployeeResponse `json:"data"`
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
}

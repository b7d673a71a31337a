package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/declaration"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/salarystructure"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/taxconfig"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Company domain errors
	case errors.Is(err, company.ErrCompanyNotFound):
		NotFound(w, "Company not found")
	case errors.Is(err, company.ErrCompanyNameExists):
		Conflict(w, "Company name already exists")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeNumberExists):
		Conflict(w, "Employee number already exists")
	case errors.Is(err, employee.ErrEmailExists):
		Conflict(w, "Email already registered in this company")

	// Tax configuration domain errors
	case errors.Is(err, taxconfig.ErrTaxConfigurationNotFound):
		NotFound(w, "Tax configuration not found")
	case errors.Is(err, taxconfig.ErrTaxConfigurationExists):
		Conflict(w, "Tax configuration already exists for this jurisdiction and financial year")
	case errors.Is(err, taxconfig.ErrTaxConfigurationInUse):
		Conflict(w, "Tax configuration is referenced by locked payslips and cannot be changed")
	case errors.Is(err, taxconfig.ErrUnknownSectionKey):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, taxconfig.ErrInvalidSlabs),
		errors.Is(err, taxconfig.ErrInvalidExemptionRule):
		ConfigurationError(w, err.Error())

	// Salary structure domain errors
	case errors.Is(err, salarystructure.ErrSalaryStructureNotFound):
		NotFound(w, "Salary structure not found")
	case errors.Is(err, salarystructure.ErrSalaryStructureNameExists):
		Conflict(w, "Salary structure name already exists")
	case errors.Is(err, salarystructure.ErrSalaryStructureAssigned):
		Conflict(w, "Salary structure is assigned to employees and cannot be deleted")
	case errors.Is(err, salarystructure.ErrEmployeeSalaryNotFound):
		NotFound(w, "Employee has no salary structure assigned")
	case errors.Is(err, salarystructure.ErrDuplicateComponentName),
		errors.Is(err, salarystructure.ErrUnresolvedPercentageBase),
		errors.Is(err, salarystructure.ErrMissingBasicComponent):
		ConfigurationError(w, err.Error())

	// Tax declaration domain errors
	case errors.Is(err, declaration.ErrDeclarationNotFound):
		NotFound(w, "Tax declaration not found")
	case errors.Is(err, declaration.ErrDeclarationExists):
		Conflict(w, "Tax declaration already exists for this financial year")
	case errors.Is(err, declaration.ErrDeclarationNotDraft):
		Conflict(w, "Tax declaration is no longer editable")
	case errors.Is(err, declaration.ErrDeclarationNotSubmitted):
		Conflict(w, "Tax declaration has not been submitted")
	case errors.Is(err, declaration.ErrUnknownDeclaredSection):
		BadRequest(w, err.Error(), nil)

	// Payroll domain errors
	case errors.Is(err, payroll.ErrRunNotFound):
		NotFound(w, "Payroll run not found")
	case errors.Is(err, payroll.ErrRunExists):
		Conflict(w, "Payroll run already exists for this period")
	case errors.Is(err, payroll.ErrRunLocked):
		Conflict(w, "Payroll run is locked")
	case errors.Is(err, payroll.ErrRunProcessing):
		Conflict(w, "Payroll run is already being processed")
	case errors.Is(err, payroll.ErrRunNotLockable):
		Conflict(w, "Payroll run must finish processing before locking")
	case errors.Is(err, payroll.ErrRunHasNoPeriod):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, payroll.ErrPayslipNotFound):
		NotFound(w, "Payslip not found")
	case errors.Is(err, payroll.ErrPayslipLocked):
		Conflict(w, "Payslip is locked")
	case errors.Is(err, payroll.ErrMissingTaxConfiguration),
		errors.Is(err, payroll.ErrMissingSalaryAssignment):
		ConfigurationError(w, err.Error())

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}

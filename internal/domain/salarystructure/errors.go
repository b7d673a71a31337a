package salarystructure

import "errors"

var (
	ErrSalaryStructureNotFound   = errors.New("salary structure not found")
	ErrSalaryStructureNameExists = errors.New("salary structure name already exists")
	ErrSalaryStructureAssigned   = errors.New("salary structure is assigned to employees and cannot be deleted")
	ErrEmployeeSalaryNotFound    = errors.New("employee has no salary structure assigned")
	ErrDuplicateComponentName    = errors.New("duplicate salary component name")
	ErrUnresolvedPercentageBase  = errors.New("percentage component references an unresolved base")
	ErrMissingBasicComponent     = errors.New("salary structure has no basic component")
)

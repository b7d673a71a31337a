package taxconfig

import "errors"

var (
	ErrTaxConfigurationNotFound = errors.New("tax configuration not found")
	ErrTaxConfigurationExists   = errors.New("tax configuration already exists for this scope")
	ErrTaxConfigurationInUse    = errors.New("tax configuration is referenced by payslips and cannot be changed")
	ErrInvalidSlabs             = errors.New("invalid slab configuration")
	ErrInvalidExemptionRule     = errors.New("invalid allowance exemption rule")
	ErrUnknownSectionKey        = errors.New("unknown tax exemption section")
)

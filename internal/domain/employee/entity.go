package employee

import "time"

// EmployeeStatus enum
type EmployeeStatus string

const (
	EmployeeStatusActive   EmployeeStatus = "active"
	EmployeeStatusInactive EmployeeStatus = "inactive"
)

// Employee is a directory record. Country and State are the employee's work
// jurisdiction and select which TaxConfiguration applies to them.
type Employee struct {
	ID             string
	CompanyID      string
	EmployeeNumber string
	Name           string
	Email          string
	Country        string
	State          string
	JoinDate       time.Time
	Status         EmployeeStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

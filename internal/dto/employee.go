package dto

import (
	"strings"
)

// EmployeeRequest creates or replaces an employee
type EmployeeRequest struct {
	ContactInput
	Fillouts []FilloutInput `json:"fillouts"`
}

// FieldErrors validates the employee data; email is optional for employees
func (r *EmployeeRequest) FieldErrors() map[string]string {
	fields := r.ContactInput.FieldErrors()
	if strings.TrimSpace(r.Email) == "" {
		delete(fields, "email")
	}
	return fields
}

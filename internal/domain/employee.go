package domain

import (
	"strings"
	"time"
)

// Employee is a staff member working at an event
type Employee struct {
	ID         string     `json:"id"`
	EventID    string     `json:"event_id"`
	Salutation string     `json:"salutation"`
	NameFirst  string     `json:"name_first"`
	NameLast   string     `json:"name_last"`
	Email      string     `json:"email"`
	Phones     []Phone    `json:"phones"`
	Address    Address    `json:"address"`
	Fillouts   []*Fillout `json:"fillouts"`
	CreatedBy  string     `json:"created_by,omitempty"`
	ModifiedBy string     `json:"modified_by,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ModifiedAt time.Time  `json:"modified_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

// IsDeleted reports whether the employee was soft deleted
func (e *Employee) IsDeleted() bool {
	return e.DeletedAt != nil
}

// FullName returns "First Last"
func (e *Employee) FullName() string {
	return strings.TrimSpace(e.NameFirst + " " + e.NameLast)
}

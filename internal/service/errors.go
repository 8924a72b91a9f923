package service

import (
	"errors"
	"sort"
	"strings"

	"github.com/theoboldt/juvem-sub001/internal/domain"
)

var (
	ErrEventNotFound          = errors.New("event not found")
	ErrParticipationNotFound  = errors.New("participation not found")
	ErrParticipantNotFound    = errors.New("participant not found")
	ErrEmployeeNotFound       = errors.New("employee not found")
	ErrAttributeNotFound      = errors.New("attribute not found")
	ErrOptionNotFound         = errors.New("attribute option not found")
	ErrInvoiceNotFound        = errors.New("invoice not found")
	ErrAttendanceListNotFound = errors.New("attendance list not found")
	ErrColumnNotFound         = errors.New("attendance column not found")
	ErrChoiceNotFound         = errors.New("attendance choice not found")
	ErrCommentNotFound        = errors.New("comment not found")

	ErrValidation              = errors.New("validation failed")
	ErrRegistrationClosed      = errors.New("event does not accept registrations")
	ErrCapacityExceeded        = errors.New("participants limit reached")
	ErrInvalidStatusTransition = domain.ErrInvalidStatusTransition
	ErrNotDeleted              = errors.New("record is not deleted")
	ErrForbidden               = errors.New("not allowed to modify this record")
	ErrNothingToInvoice        = errors.New("participation has no priced participant")
	ErrInvalidFormula          = errors.New("invalid price formula")
	ErrPDFUnavailable          = errors.New("pdf output is not available")
)

// ValidationError carries field level messages and matches ErrValidation
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates a ValidationError for a single field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// fieldErrors returns a ValidationError for a non empty map, nil otherwise
func fieldErrors(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// Actor is the authenticated user performing an operation
type Actor struct {
	UserID  string
	IsAdmin bool
}

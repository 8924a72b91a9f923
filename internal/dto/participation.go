package dto

import (
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/theoboldt/juvem-sub001/internal/domain"
)

// FilloutInput is the submitted value of one acquisition attribute
type FilloutInput struct {
	AttributeID string       `json:"attribute_id"`
	Value       domain.Value `json:"value"`
	Comment     string       `json:"comment"`
}

// ParticipantInput represents one participant of a registration
type ParticipantInput struct {
	NameFirst string         `json:"name_first"`
	NameLast  string         `json:"name_last"`
	Birthday  string         `json:"birthday"` // YYYY-MM-DD
	Gender    string         `json:"gender"`
	Food      []string       `json:"food"`
	Info      string         `json:"info"`
	Fillouts  []FilloutInput `json:"fillouts"`
}

// ParsedBirthday returns the birthday as date
func (p *ParticipantInput) ParsedBirthday() (time.Time, error) {
	return time.Parse(domain.DateLayout, p.Birthday)
}

// FieldErrors validates the personal data, keys are prefixed with prefix
func (p *ParticipantInput) FieldErrors(prefix string) map[string]string {
	fields := make(map[string]string)
	if strings.TrimSpace(p.NameFirst) == "" {
		fields[prefix+"name_first"] = "required"
	}
	if strings.TrimSpace(p.NameLast) == "" {
		fields[prefix+"name_last"] = "required"
	}
	if birthday, err := p.ParsedBirthday(); err != nil {
		fields[prefix+"birthday"] = "must be a date in format YYYY-MM-DD"
	} else if birthday.After(time.Now()) {
		fields[prefix+"birthday"] = "must not be in the future"
	}
	if !domain.IsValidGender(p.Gender) {
		fields[prefix+"gender"] = "must be one of male, female, diverse"
	}
	return fields
}

// ContactInput holds the contact data of the registering person
type ContactInput struct {
	Salutation string         `json:"salutation"`
	NameFirst  string         `json:"name_first"`
	NameLast   string         `json:"name_last"`
	Address    domain.Address `json:"address"`
	Email      string         `json:"email"`
	Phones     []domain.Phone `json:"phones"`
}

// FieldErrors validates the contact data
func (r *ContactInput) FieldErrors() map[string]string {
	fields := make(map[string]string)
	if strings.TrimSpace(r.NameFirst) == "" {
		fields["name_first"] = "required"
	}
	if strings.TrimSpace(r.NameLast) == "" {
		fields["name_last"] = "required"
	}
	if _, err := mail.ParseAddress(r.Email); err != nil || r.Email == "" {
		fields["email"] = "must be a valid email address"
	}
	for i, phone := range r.Phones {
		if strings.TrimSpace(phone.Number) == "" {
			fields["phones["+strconv.Itoa(i)+"].number"] = "required"
		}
	}
	return fields
}

// RegisterRequest represents a public registration for an event
type RegisterRequest struct {
	ContactInput
	Participants []ParticipantInput `json:"participants"`
	Fillouts     []FilloutInput     `json:"fillouts"`
}

// FieldErrors validates everything that does not depend on the event
func (r *RegisterRequest) FieldErrors() map[string]string {
	fields := r.ContactInput.FieldErrors()
	if len(r.Participants) == 0 {
		fields["participants"] = "at least one participant is required"
	}
	for i := range r.Participants {
		for k, v := range r.Participants[i].FieldErrors(ParticipantPrefix(i)) {
			fields[k] = v
		}
	}
	return fields
}

// ParticipantPrefix is the field key prefix of the i-th participant
func ParticipantPrefix(i int) string {
	return "participants[" + strconv.Itoa(i) + "]."
}

// UpdateContactRequest replaces the contact data and optionally the participation fillouts
type UpdateContactRequest struct {
	ContactInput
	Fillouts *[]FilloutInput `json:"fillouts"`
}

// UpdateParticipantRequest represents a partial participant update
type UpdateParticipantRequest struct {
	NameFirst      *string         `json:"name_first"`
	NameLast       *string         `json:"name_last"`
	Birthday       *string         `json:"birthday"`
	Gender         *string         `json:"gender"`
	Food           *[]string       `json:"food"`
	Info           *string         `json:"info"`
	BasePrice      *int64          `json:"base_price"`
	ClearBasePrice bool            `json:"clear_base_price"`
	Fillouts       *[]FilloutInput `json:"fillouts"`
}

// Validate validates the UpdateParticipantRequest
func (r *UpdateParticipantRequest) Validate() (bool, string) {
	if r.NameFirst == nil && r.NameLast == nil && r.Birthday == nil && r.Gender == nil &&
		r.Food == nil && r.Info == nil && r.BasePrice == nil && !r.ClearBasePrice && r.Fillouts == nil {
		return false, "At least one field must be provided for update"
	}
	if r.NameFirst != nil && strings.TrimSpace(*r.NameFirst) == "" {
		return false, "First name must not be empty"
	}
	if r.NameLast != nil && strings.TrimSpace(*r.NameLast) == "" {
		return false, "Last name must not be empty"
	}
	if r.Birthday != nil {
		if _, err := time.Parse(domain.DateLayout, *r.Birthday); err != nil {
			return false, "Birthday must be a date in format YYYY-MM-DD"
		}
	}
	if r.Gender != nil && !domain.IsValidGender(*r.Gender) {
		return false, "Gender must be one of male, female, diverse"
	}
	if r.BasePrice != nil && *r.BasePrice < 0 {
		return false, "Base price must not be negative"
	}
	return true, ""
}

// ChangeStatusRequest moves a participant to another status
type ChangeStatusRequest struct {
	Status domain.ParticipantStatus `json:"status" binding:"required"`
	Reason string                   `json:"reason" binding:"max=1000"`
}

// Validate validates the ChangeStatusRequest
func (r *ChangeStatusRequest) Validate() (bool, string) {
	if !r.Status.IsValid() {
		return false, "Unknown status"
	}
	return true, ""
}

package dto

import (
	"strings"

	"github.com/theoboldt/juvem-sub001/internal/domain"
)

// OptionRequest creates or updates an attribute option
type OptionRequest struct {
	LegacyID        int64  `json:"legacy_id"`
	ManagementTitle string `json:"management_title"`
	FormTitle       string `json:"form_title"`
	ShortTitle      string `json:"short_title"`
	PriceFormula    string `json:"price_formula"`
	Sort            int    `json:"sort"`
}

// Validate validates the OptionRequest
func (r *OptionRequest) Validate() (bool, string) {
	if strings.TrimSpace(r.ManagementTitle) == "" {
		return false, "Management title is required"
	}
	if strings.TrimSpace(r.FormTitle) == "" {
		r.FormTitle = r.ManagementTitle
	}
	return true, ""
}

// AttributeRequest creates or replaces an acquisition attribute
type AttributeRequest struct {
	ManagementTitle       string           `json:"management_title"`
	ManagementDescription string           `json:"management_description"`
	FormTitle             string           `json:"form_title"`
	FormDescription       string           `json:"form_description"`
	FieldType             domain.FieldType `json:"field_type"`
	IsMultipleChoice      bool             `json:"is_multiple_choice"`
	IsRequired            bool             `json:"is_required"`
	IsPublic              bool             `json:"is_public"`
	UseAtParticipation    bool             `json:"use_at_participation"`
	UseAtParticipant      bool             `json:"use_at_participant"`
	UseAtEmployee         bool             `json:"use_at_employee"`
	PriceFormula          string           `json:"price_formula"`
	Sort                  int              `json:"sort"`
	// Options are only read on create
	Options []OptionRequest `json:"options"`
}

// Validate validates the AttributeRequest
func (r *AttributeRequest) Validate() (bool, string) {
	if strings.TrimSpace(r.ManagementTitle) == "" {
		return false, "Management title is required"
	}
	if strings.TrimSpace(r.FormTitle) == "" {
		return false, "Form title is required"
	}
	if !r.FieldType.IsValid() {
		return false, "Unknown field type"
	}
	if !r.UseAtParticipation && !r.UseAtParticipant && !r.UseAtEmployee {
		return false, "Attribute must be used at participation, participant or employee"
	}
	if r.FieldType != domain.FieldChoice && r.IsMultipleChoice {
		return false, "Only choice attributes can be multiple choice"
	}
	if r.FieldType != domain.FieldChoice && len(r.Options) > 0 {
		return false, "Only choice attributes have options"
	}
	for i := range r.Options {
		if ok, msg := r.Options[i].Validate(); !ok {
			return false, msg
		}
	}
	return true, ""
}

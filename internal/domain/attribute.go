package domain

import (
	"time"
)

// FieldType is the kind of form field an acquisition attribute renders as
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldChoice   FieldType = "choice"
	FieldDate     FieldType = "date"
	FieldNumber   FieldType = "number"
	FieldBool     FieldType = "bool"
)

// IsValid reports whether the field type is supported
func (f FieldType) IsValid() bool {
	switch f {
	case FieldText, FieldTextarea, FieldChoice, FieldDate, FieldNumber, FieldBool:
		return true
	}
	return false
}

// OwnerType names the record a fillout or comment belongs to
type OwnerType string

const (
	OwnerParticipation OwnerType = "participation"
	OwnerParticipant   OwnerType = "participant"
	OwnerEmployee      OwnerType = "employee"
)

// IsValid reports whether the owner type is known
func (o OwnerType) IsValid() bool {
	return o == OwnerParticipation || o == OwnerParticipant || o == OwnerEmployee
}

// Attribute is a dynamically configured custom form field
type Attribute struct {
	ID                    string             `json:"id"`
	ManagementTitle       string             `json:"management_title"`
	ManagementDescription string             `json:"management_description"`
	FormTitle             string             `json:"form_title"`
	FormDescription       string             `json:"form_description"`
	FieldType             FieldType          `json:"field_type"`
	IsMultipleChoice      bool               `json:"is_multiple_choice"`
	IsRequired            bool               `json:"is_required"`
	IsPublic              bool               `json:"is_public"`
	UseAtParticipation    bool               `json:"use_at_participation"`
	UseAtParticipant      bool               `json:"use_at_participant"`
	UseAtEmployee         bool               `json:"use_at_employee"`
	PriceFormula          string             `json:"price_formula,omitempty"`
	Options               []*AttributeOption `json:"options"`
	Sort                  int                `json:"sort"`
	CreatedAt             time.Time          `json:"created_at"`
	ModifiedAt            time.Time          `json:"modified_at"`
	DeletedAt             *time.Time         `json:"deleted_at,omitempty"`
}

// AttributeOption is one selectable option of a choice attribute
type AttributeOption struct {
	ID              string `json:"id"`
	AttributeID     string `json:"attribute_id"`
	LegacyID        int64  `json:"legacy_id,omitempty"` // numeric id used by legacy raw values, 0 if none
	ManagementTitle string `json:"management_title"`
	FormTitle       string `json:"form_title"`
	ShortTitle      string `json:"short_title,omitempty"`
	PriceFormula    string `json:"price_formula,omitempty"`
	Sort            int    `json:"sort"`
}

// IsDeleted reports whether the attribute was soft deleted
func (a *Attribute) IsDeleted() bool {
	return a.DeletedAt != nil
}

// UsableAt reports whether the attribute may be filled for the owner type
func (a *Attribute) UsableAt(owner OwnerType) bool {
	switch owner {
	case OwnerParticipation:
		return a.UseAtParticipation
	case OwnerParticipant:
		return a.UseAtParticipant
	case OwnerEmployee:
		return a.UseAtEmployee
	}
	return false
}

// HasPriceFormula reports whether the attribute or one of its options changes prices
func (a *Attribute) HasPriceFormula() bool {
	if a.PriceFormula != "" {
		return true
	}
	for _, opt := range a.Options {
		if opt.PriceFormula != "" {
			return true
		}
	}
	return false
}

// Option returns the option with the given ID or nil
func (a *Attribute) Option(id string) *AttributeOption {
	for _, opt := range a.Options {
		if opt.ID == id {
			return opt
		}
	}
	return nil
}

// OptionByLegacyID returns the option carrying the numeric legacy id or nil
func (a *Attribute) OptionByLegacyID(legacyID int64) *AttributeOption {
	if legacyID == 0 {
		return nil
	}
	for _, opt := range a.Options {
		if opt.LegacyID == legacyID {
			return opt
		}
	}
	return nil
}

// SortAttributes orders attributes by Sort, then ID
func SortAttributes(attributes []*Attribute) {
	sortSlice(attributes, func(a, b *Attribute) bool {
		if a.Sort != b.Sort {
			return a.Sort < b.Sort
		}
		return a.ID < b.ID
	})
}

// SortOptions orders options by Sort, then ID
func SortOptions(options []*AttributeOption) {
	sortSlice(options, func(a, b *AttributeOption) bool {
		if a.Sort != b.Sort {
			return a.Sort < b.Sort
		}
		return a.ID < b.ID
	})
}

// Fillout is the submitted value of an attribute for a participation, participant or employee
type Fillout struct {
	ID          string    `json:"id"`
	AttributeID string    `json:"attribute_id"`
	OwnerType   OwnerType `json:"owner_type"`
	OwnerID     string    `json:"owner_id"`
	Value       Value     `json:"value"`
	Comment     string    `json:"comment,omitempty"`
	LegacyValue *string   `json:"-"` // raw value awaiting migration
	CreatedAt   time.Time `json:"created_at"`
	ModifiedAt  time.Time `json:"modified_at"`
}

// FilloutFor returns the fillout of the attribute from the list or nil
func FilloutFor(fillouts []*Fillout, attributeID string) *Fillout {
	for _, f := range fillouts {
		if f.AttributeID == attributeID {
			return f
		}
	}
	return nil
}

package domain

import (
	"strings"
	"time"
)

// DateLayout is the wire format of date values
const DateLayout = "2006-01-02"

// Value is the typed content of a fillout. Exactly one member is set for a
// non-empty value, matching the field type of the attribute.
type Value struct {
	Text    *string  `json:"text,omitempty"`
	Number  *float64 `json:"number,omitempty"`
	Bool    *bool    `json:"bool,omitempty"`
	Date    *string  `json:"date,omitempty"`
	Choices []string `json:"choices,omitempty"` // option ids
}

// TextValue builds a text value
func TextValue(s string) Value { return Value{Text: &s} }

// NumberValue builds a number value
func NumberValue(n float64) Value { return Value{Number: &n} }

// BoolValue builds a bool value
func BoolValue(b bool) Value { return Value{Bool: &b} }

// DateValue builds a date value from a calendar day
func DateValue(d time.Time) Value {
	s := d.Format(DateLayout)
	return Value{Date: &s}
}

// ChoiceValue builds a choice value
func ChoiceValue(optionIDs ...string) Value {
	return Value{Choices: optionIDs}
}

// IsEmpty reports whether nothing was filled. Blank text counts as empty.
func (v Value) IsEmpty() bool {
	if v.Text != nil && strings.TrimSpace(*v.Text) != "" {
		return false
	}
	return v.Number == nil && v.Bool == nil && v.Date == nil && len(v.Choices) == 0
}

// members counts the union members that carry data
func (v Value) members() int {
	n := 0
	if v.Text != nil {
		n++
	}
	if v.Number != nil {
		n++
	}
	if v.Bool != nil {
		n++
	}
	if v.Date != nil {
		n++
	}
	if len(v.Choices) > 0 {
		n++
	}
	return n
}

// Numeric converts the value into the number formulas see as "value":
// numbers as is, bools as 1/0, choices as the count of selected options.
func (v Value) Numeric() float64 {
	switch {
	case v.Number != nil:
		return *v.Number
	case v.Bool != nil:
		if *v.Bool {
			return 1
		}
		return 0
	case len(v.Choices) > 0:
		return float64(len(v.Choices))
	}
	return 0
}

// ParsedDate returns the date member as time
func (v Value) ParsedDate() (time.Time, bool) {
	if v.Date == nil {
		return time.Time{}, false
	}
	d, err := time.Parse(DateLayout, *v.Date)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// HasChoice reports whether the option is selected
func (v Value) HasChoice(optionID string) bool {
	for _, id := range v.Choices {
		if id == optionID {
			return true
		}
	}
	return false
}

// ValidateValue checks v against the attribute definition
func (a *Attribute) ValidateValue(v Value) (bool, string) {
	if v.IsEmpty() {
		if a.IsRequired {
			return false, "is required"
		}
		return true, ""
	}
	if v.members() > 1 {
		return false, "must hold exactly one kind of value"
	}

	switch a.FieldType {
	case FieldText, FieldTextarea:
		if v.Text == nil {
			return false, "expects a text value"
		}
	case FieldNumber:
		if v.Number == nil {
			return false, "expects a number value"
		}
	case FieldBool:
		if v.Bool == nil {
			return false, "expects a boolean value"
		}
	case FieldDate:
		if v.Date == nil {
			return false, "expects a date value"
		}
		if _, ok := v.ParsedDate(); !ok {
			return false, "date must be formatted YYYY-MM-DD"
		}
	case FieldChoice:
		if len(v.Choices) == 0 {
			return false, "expects a choice value"
		}
		if !a.IsMultipleChoice && len(v.Choices) != 1 {
			return false, "accepts exactly one option"
		}
		seen := make(map[string]bool, len(v.Choices))
		for _, id := range v.Choices {
			if seen[id] {
				return false, "option selected twice"
			}
			seen[id] = true
			if a.Option(id) == nil {
				return false, "unknown option " + id
			}
		}
	default:
		return false, "unsupported field type"
	}
	return true, ""
}

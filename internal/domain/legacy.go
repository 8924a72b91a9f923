package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrUndecodableValue is returned when a legacy raw value does not fit the field type
var ErrUndecodableValue = errors.New("undecodable legacy value")

var legacyDateLayouts = []string{DateLayout, "02.01.2006", "2006-01-02 15:04:05", time.RFC3339}

// DecodeLegacyValue converts a raw string fillout value of the old storage
// format into a typed value for the attribute's field type.
// Examples of raw values: "1", "0", "3", "[3,4]", "2019-05-01", free text.
func DecodeLegacyValue(attr *Attribute, raw string) (Value, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Value{}, nil
	}

	switch attr.FieldType {
	case FieldText, FieldTextarea:
		return TextValue(raw), nil

	case FieldNumber:
		n, err := strconv.ParseFloat(strings.Replace(trimmed, ",", ".", 1), 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not a number", ErrUndecodableValue, raw)
		}
		return NumberValue(n), nil

	case FieldBool:
		switch strings.ToLower(trimmed) {
		case "1", "true", "yes", "on", "ja":
			return BoolValue(true), nil
		case "0", "false", "no", "off", "nein":
			return BoolValue(false), nil
		}
		return Value{}, fmt.Errorf("%w: %q is not a boolean", ErrUndecodableValue, raw)

	case FieldDate:
		for _, layout := range legacyDateLayouts {
			if d, err := time.Parse(layout, trimmed); err == nil {
				return DateValue(d), nil
			}
		}
		return Value{}, fmt.Errorf("%w: %q is not a date", ErrUndecodableValue, raw)

	case FieldChoice:
		tokens, err := legacyChoiceTokens(trimmed)
		if err != nil {
			return Value{}, err
		}
		if len(tokens) == 0 {
			return Value{}, nil
		}
		if !attr.IsMultipleChoice && len(tokens) > 1 {
			return Value{}, fmt.Errorf("%w: %d options for single choice attribute", ErrUndecodableValue, len(tokens))
		}
		choices := make([]string, 0, len(tokens))
		for _, token := range tokens {
			opt := resolveLegacyOption(attr, token)
			if opt == nil {
				return Value{}, fmt.Errorf("%w: unknown option %q", ErrUndecodableValue, token)
			}
			choices = append(choices, opt.ID)
		}
		return ChoiceValue(choices...), nil
	}

	return Value{}, fmt.Errorf("%w: unsupported field type %s", ErrUndecodableValue, attr.FieldType)
}

// legacyChoiceTokens splits "3" or "[3,4]" or `["a","b"]` into option references
func legacyChoiceTokens(raw string) ([]string, error) {
	if !strings.HasPrefix(raw, "[") {
		return []string{raw}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("%w: %q is not a list", ErrUndecodableValue, raw)
	}
	tokens := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			tokens = append(tokens, s)
			continue
		}
		tokens = append(tokens, string(item))
	}
	return tokens, nil
}

func resolveLegacyOption(attr *Attribute, token string) *AttributeOption {
	if id, err := strconv.ParseInt(token, 10, 64); err == nil {
		if opt := attr.OptionByLegacyID(id); opt != nil {
			return opt
		}
	}
	return attr.Option(token)
}

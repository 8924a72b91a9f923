package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoboldt/juvem-sub001/internal/domain"
	"github.com/theoboldt/juvem-sub001/internal/dto"
)

func TestAttributeService_InvalidFormula(t *testing.T) {
	f := newFixture(t)
	_, err := f.attributes.Create(f.ctx, &dto.AttributeRequest{
		ManagementTitle:  "Bus",
		FormTitle:        "Bus",
		FieldType:        domain.FieldBool,
		UseAtParticipant: true,
		PriceFormula:     "value *",
	})
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.(*ValidationError).Fields, "price_formula")
}

func TestAttributeService_Options(t *testing.T) {
	f := newFixture(t)
	attr := f.createAttribute(t, dto.AttributeRequest{
		ManagementTitle:  "Zimmer",
		FieldType:        domain.FieldChoice,
		UseAtParticipant: true,
		Options:          []dto.OptionRequest{{ManagementTitle: "Einzel", LegacyID: 3}},
	})

	opt, err := f.attributes.AddOption(f.ctx, attr.ID, &dto.OptionRequest{ManagementTitle: "Doppel", LegacyID: 4, Sort: 1})
	require.NoError(t, err)
	assert.Equal(t, "Doppel", opt.FormTitle)

	_, err = f.attributes.AddOption(f.ctx, attr.ID, &dto.OptionRequest{ManagementTitle: "Dreier", LegacyID: 3})
	assert.ErrorIs(t, err, ErrValidation)

	updated, err := f.attributes.UpdateOption(f.ctx, attr.ID, opt.ID, &dto.OptionRequest{ManagementTitle: "Doppelzimmer", LegacyID: 4})
	require.NoError(t, err)
	assert.Equal(t, "Doppelzimmer", updated.ManagementTitle)

	_, err = f.attributes.UpdateOption(f.ctx, attr.ID, "missing", &dto.OptionRequest{ManagementTitle: "x"})
	assert.ErrorIs(t, err, ErrOptionNotFound)

	// options pin the field type
	_, err = f.attributes.Update(f.ctx, attr.ID, &dto.AttributeRequest{
		ManagementTitle:  "Zimmer",
		FormTitle:        "Zimmer",
		FieldType:        domain.FieldText,
		UseAtParticipant: true,
	})
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, f.attributes.DeleteOption(f.ctx, attr.ID, opt.ID))
	got, err := f.attributes.Get(f.ctx, attr.ID)
	require.NoError(t, err)
	assert.Len(t, got.Options, 1)

	text := f.createAttribute(t, dto.AttributeRequest{ManagementTitle: "Notiz", FieldType: domain.FieldText, UseAtParticipant: true})
	_, err = f.attributes.AddOption(f.ctx, text.ID, &dto.OptionRequest{ManagementTitle: "x"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAttributeService_TextualValue(t *testing.T) {
	f := newFixture(t)
	attr := f.createAttribute(t, dto.AttributeRequest{
		ManagementTitle:  "Aktivitäten",
		FieldType:        domain.FieldChoice,
		IsMultipleChoice: true,
		UseAtParticipant: true,
		Options: []dto.OptionRequest{
			{ManagementTitle: "Klettern", Sort: 1},
			{ManagementTitle: "Kanu", Sort: 2},
		},
	})
	number := &domain.Attribute{FieldType: domain.FieldNumber}
	date := &domain.Attribute{FieldType: domain.FieldDate}
	flag := &domain.Attribute{FieldType: domain.FieldBool}

	tests := []struct {
		name   string
		locale string
		attr   *domain.Attribute
		value  domain.Value
		want   string
	}{
		{"choices in option order", "de", attr, domain.ChoiceValue(attr.Options[1].ID, attr.Options[0].ID), "Klettern, Kanu"},
		{"german number", "de", number, domain.NumberValue(2.5), "2,5"},
		{"english number", "en", number, domain.NumberValue(2.5), "2.5"},
		{"german date", "de", date, domain.DateValue(time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)), "04.03.2026"},
		{"english date", "en", date, domain.DateValue(time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)), "04.03.2026"},
		{"german bool", "de", flag, domain.BoolValue(true), "ja"},
		{"text", "de", flag, domain.TextValue("frei"), "frei"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.attributes.TextualValue(tt.locale, tt.attr, tt.value))
		})
	}
}

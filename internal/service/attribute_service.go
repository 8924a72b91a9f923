package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/theoboldt/juvem-sub001/internal/domain"
	"github.com/theoboldt/juvem-sub001/internal/dto"
	"github.com/theoboldt/juvem-sub001/internal/repository"
	"github.com/theoboldt/juvem-sub001/pkg/i18n"
)

// attributeService implements AttributeService
type attributeService struct {
	attributeRepo repository.AttributeRepository
	formulas      *FormulaEngine
	translator    *i18n.Translator
	now           func() time.Time
}

// NewAttributeService creates a new AttributeService
func NewAttributeService(attributeRepo repository.AttributeRepository, formulas *FormulaEngine, translator *i18n.Translator) AttributeService {
	return &attributeService{
		attributeRepo: attributeRepo,
		formulas:      formulas,
		translator:    translator,
		now:           time.Now,
	}
}

func (s *attributeService) checkFormula(field, formula string) error {
	if strings.TrimSpace(formula) == "" {
		return nil
	}
	if _, err := s.formulas.Compile(formula); err != nil {
		return &ValidationError{Fields: map[string]string{field: err.Error()}}
	}
	return nil
}

func (s *attributeService) newOption(attributeID string, req *dto.OptionRequest) *domain.AttributeOption {
	return &domain.AttributeOption{
		ID:              uuid.New().String(),
		AttributeID:     attributeID,
		LegacyID:        req.LegacyID,
		ManagementTitle: strings.TrimSpace(req.ManagementTitle),
		FormTitle:       strings.TrimSpace(req.FormTitle),
		ShortTitle:      strings.TrimSpace(req.ShortTitle),
		PriceFormula:    strings.TrimSpace(req.PriceFormula),
		Sort:            req.Sort,
	}
}

// Create creates an attribute with its options
func (s *attributeService) Create(ctx context.Context, req *dto.AttributeRequest) (*domain.Attribute, error) {
	if valid, msg := req.Validate(); !valid {
		return nil, NewValidationError("attribute", msg)
	}
	if err := s.checkFormula("price_formula", req.PriceFormula); err != nil {
		return nil, err
	}
	for i := range req.Options {
		if err := s.checkFormula("options["+strconv.Itoa(i)+"].price_formula", req.Options[i].PriceFormula); err != nil {
			return nil, err
		}
	}

	now := s.now()
	attribute := &domain.Attribute{
		ID:         uuid.New().String(),
		CreatedAt:  now,
		ModifiedAt: now,
	}
	applyAttributeRequest(attribute, req)
	for i := range req.Options {
		attribute.Options = append(attribute.Options, s.newOption(attribute.ID, &req.Options[i]))
	}
	domain.SortOptions(attribute.Options)

	if err := s.attributeRepo.Create(ctx, attribute); err != nil {
		return nil, err
	}
	return attribute, nil
}

func applyAttributeRequest(a *domain.Attribute, req *dto.AttributeRequest) {
	a.ManagementTitle = strings.TrimSpace(req.ManagementTitle)
	a.ManagementDescription = req.ManagementDescription
	a.FormTitle = strings.TrimSpace(req.FormTitle)
	a.FormDescription = req.FormDescription
	a.FieldType = req.FieldType
	a.IsMultipleChoice = req.IsMultipleChoice
	a.IsRequired = req.IsRequired
	a.IsPublic = req.IsPublic
	a.UseAtParticipation = req.UseAtParticipation
	a.UseAtParticipant = req.UseAtParticipant
	a.UseAtEmployee = req.UseAtEmployee
	a.PriceFormula = strings.TrimSpace(req.PriceFormula)
	a.Sort = req.Sort
}

// Get retrieves a non deleted attribute
func (s *attributeService) Get(ctx context.Context, id string) (*domain.Attribute, error) {
	attribute, err := s.attributeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if attribute == nil || attribute.IsDeleted() {
		return nil, ErrAttributeNotFound
	}
	return attribute, nil
}

// List lists attributes ordered by sort
func (s *attributeService) List(ctx context.Context, includeDeleted bool) ([]*domain.Attribute, error) {
	return s.attributeRepo.List(ctx, includeDeleted)
}

// Update replaces the attribute definition, options are left untouched
func (s *attributeService) Update(ctx context.Context, id string, req *dto.AttributeRequest) (*domain.Attribute, error) {
	req.Options = nil
	if valid, msg := req.Validate(); !valid {
		return nil, NewValidationError("attribute", msg)
	}
	if err := s.checkFormula("price_formula", req.PriceFormula); err != nil {
		return nil, err
	}

	attribute, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.FieldType != attribute.FieldType && len(attribute.Options) > 0 {
		return nil, NewValidationError("field_type", "cannot change the field type of an attribute with options")
	}

	applyAttributeRequest(attribute, req)
	attribute.ModifiedAt = s.now()
	if err := s.attributeRepo.Update(ctx, attribute); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAttributeNotFound
		}
		return nil, err
	}
	return attribute, nil
}

// Delete soft deletes an attribute
func (s *attributeService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.attributeRepo.SoftDelete(ctx, id, s.now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAttributeNotFound
		}
		return err
	}
	return nil
}

// AddOption adds an option to a choice attribute
func (s *attributeService) AddOption(ctx context.Context, attributeID string, req *dto.OptionRequest) (*domain.AttributeOption, error) {
	if valid, msg := req.Validate(); !valid {
		return nil, NewValidationError("option", msg)
	}
	if err := s.checkFormula("price_formula", req.PriceFormula); err != nil {
		return nil, err
	}
	attribute, err := s.Get(ctx, attributeID)
	if err != nil {
		return nil, err
	}
	if attribute.FieldType != domain.FieldChoice {
		return nil, NewValidationError("field_type", "only choice attributes have options")
	}
	if req.LegacyID != 0 && attribute.OptionByLegacyID(req.LegacyID) != nil {
		return nil, NewValidationError("legacy_id", "already used by another option")
	}

	option := s.newOption(attribute.ID, req)
	if err := s.attributeRepo.AddOption(ctx, option); err != nil {
		return nil, err
	}
	return option, nil
}

// UpdateOption replaces an option
func (s *attributeService) UpdateOption(ctx context.Context, attributeID, optionID string, req *dto.OptionRequest) (*domain.AttributeOption, error) {
	if valid, msg := req.Validate(); !valid {
		return nil, NewValidationError("option", msg)
	}
	if err := s.checkFormula("price_formula", req.PriceFormula); err != nil {
		return nil, err
	}
	attribute, err := s.Get(ctx, attributeID)
	if err != nil {
		return nil, err
	}
	if attribute.Option(optionID) == nil {
		return nil, ErrOptionNotFound
	}
	if other := attribute.OptionByLegacyID(req.LegacyID); req.LegacyID != 0 && other != nil && other.ID != optionID {
		return nil, NewValidationError("legacy_id", "already used by another option")
	}

	option := s.newOption(attribute.ID, req)
	option.ID = optionID
	if err := s.attributeRepo.UpdateOption(ctx, option); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOptionNotFound
		}
		return nil, err
	}
	return option, nil
}

// DeleteOption removes an option
func (s *attributeService) DeleteOption(ctx context.Context, attributeID, optionID string) error {
	if _, err := s.Get(ctx, attributeID); err != nil {
		return err
	}
	if err := s.attributeRepo.DeleteOption(ctx, attributeID, optionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOptionNotFound
		}
		return err
	}
	return nil
}

// EventAttributes returns the non deleted attributes assigned to the event
func (s *attributeService) EventAttributes(ctx context.Context, event *domain.Event) ([]*domain.Attribute, error) {
	if len(event.AttributeIDs) == 0 {
		return []*domain.Attribute{}, nil
	}
	return s.attributeRepo.ListByIDs(ctx, event.AttributeIDs)
}

// ValidateFillouts checks inputs against the event's attributes and builds fillouts of the owner
func (s *attributeService) ValidateFillouts(ctx context.Context, event *domain.Event, owner domain.OwnerType, ownerID string, inputs []dto.FilloutInput) ([]*domain.Fillout, error) {
	attributes, err := s.EventAttributes(ctx, event)
	if err != nil {
		return nil, err
	}
	fillouts, fields := buildFillouts(event, attributes, owner, ownerID, "fillouts", inputs, s.now())
	if err := fieldErrors(fields); err != nil {
		return nil, err
	}
	return fillouts, nil
}

// TextualValue renders a value for documents and exports
func (s *attributeService) TextualValue(locale string, attribute *domain.Attribute, value domain.Value) string {
	return textualValue(s.translator, locale, attribute, value)
}

func textualValue(tr *i18n.Translator, locale string, attribute *domain.Attribute, value domain.Value) string {
	switch {
	case value.Text != nil:
		return *value.Text
	case value.Number != nil:
		return tr.Number(locale, *value.Number)
	case value.Bool != nil:
		return tr.Bool(locale, *value.Bool)
	case value.Date != nil:
		if d, ok := value.ParsedDate(); ok {
			return tr.Date(locale, d)
		}
		return *value.Date
	case len(value.Choices) > 0:
		titles := make([]string, 0, len(value.Choices))
		for _, opt := range attribute.Options {
			if value.HasChoice(opt.ID) {
				titles = append(titles, opt.ManagementTitle)
			}
		}
		for _, id := range value.Choices {
			if attribute.Option(id) == nil {
				titles = append(titles, id)
			}
		}
		return strings.Join(titles, ", ")
	}
	return ""
}

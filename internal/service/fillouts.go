package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/theoboldt/juvem-sub001/internal/domain"
	"github.com/theoboldt/juvem-sub001/internal/dto"
)

// buildFillouts validates inputs of one owner against the attributes of the
// event. Field errors are keyed "<prefix>.<attribute id>".
func buildFillouts(event *domain.Event, attributes []*domain.Attribute, owner domain.OwnerType, ownerID, prefix string, inputs []dto.FilloutInput, now time.Time) ([]*domain.Fillout, map[string]string) {
	byID := make(map[string]*domain.Attribute, len(attributes))
	for _, a := range attributes {
		byID[a.ID] = a
	}

	fields := make(map[string]string)
	fillouts := make([]*domain.Fillout, 0, len(inputs))
	filled := make(map[string]bool, len(inputs))

	for _, in := range inputs {
		key := prefix + "." + in.AttributeID
		attribute, ok := byID[in.AttributeID]
		switch {
		case !ok && event.HasAttribute(in.AttributeID):
			fields[key] = "unknown attribute"
			continue
		case !ok:
			fields[key] = "attribute is not assigned to this event"
			continue
		case !attribute.UsableAt(owner):
			fields[key] = "attribute is not used for " + string(owner)
			continue
		case filled[in.AttributeID]:
			fields[key] = "attribute filled twice"
			continue
		}
		filled[in.AttributeID] = true

		if valid, msg := attribute.ValidateValue(in.Value); !valid {
			fields[key] = msg
			continue
		}
		if in.Value.IsEmpty() && in.Comment == "" {
			continue
		}
		fillouts = append(fillouts, &domain.Fillout{
			ID:          uuid.New().String(),
			AttributeID: attribute.ID,
			OwnerType:   owner,
			OwnerID:     ownerID,
			Value:       in.Value,
			Comment:     in.Comment,
			CreatedAt:   now,
			ModifiedAt:  now,
		})
	}

	for _, attribute := range attributes {
		if attribute.IsRequired && attribute.UsableAt(owner) && !filled[attribute.ID] {
			fields[prefix+"."+attribute.ID] = "is required"
		}
	}
	return fillouts, fields
}

// filloutValue returns the value a participant holds for an attribute. Own
// fillouts take precedence over the ones of the participation.
func filloutValue(participant []*domain.Fillout, participation []*domain.Fillout, attributeID string) (*domain.Fillout, bool) {
	if f := domain.FilloutFor(participant, attributeID); f != nil {
		return f, true
	}
	if f := domain.FilloutFor(participation, attributeID); f != nil {
		return f, true
	}
	return nil, false
}

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/theoboldt/juvem-sub001/internal/domain"
	"github.com/theoboldt/juvem-sub001/internal/dto"
	"github.com/theoboldt/juvem-sub001/internal/repository"
)

// eventService implements EventService
type eventService struct {
	eventRepo     repository.EventRepository
	attributeRepo repository.AttributeRepository
	now           func() time.Time
}

// NewEventService creates a new EventService
func NewEventService(eventRepo repository.EventRepository, attributeRepo repository.AttributeRepository) EventService {
	return &eventService{
		eventRepo:     eventRepo,
		attributeRepo: attributeRepo,
		now:           time.Now,
	}
}

// requireEvent loads an event and hides soft deleted ones
func requireEvent(ctx context.Context, repo repository.EventRepository, id string) (*domain.Event, error) {
	event, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil || event.IsDeleted() {
		return nil, ErrEventNotFound
	}
	return event, nil
}

// Create creates a new event
func (s *eventService) Create(ctx context.Context, actor Actor, req *dto.CreateEventRequest) (*domain.Event, error) {
	if valid, msg := req.Validate(); !valid {
		return nil, NewValidationError("event", msg)
	}

	attributeIDs, err := s.checkAttributes(ctx, req.AttributeIDs)
	if err != nil {
		return nil, err
	}

	now := s.now()
	event := &domain.Event{
		ID:                uuid.New().String(),
		Title:             strings.TrimSpace(req.Title),
		Description:       req.Description,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		IsVisible:         req.IsVisible,
		IsActive:          req.IsActive,
		Price:             req.Price,
		ParticipantsLimit: req.ParticipantsLimit,
		AttributeIDs:      attributeIDs,
		CreatedBy:         actor.UserID,
		ModifiedBy:        actor.UserID,
		CreatedAt:         now,
		ModifiedAt:        now,
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// checkAttributes deduplicates ids and rejects unknown attributes
func (s *eventService) checkAttributes(ctx context.Context, ids []string) ([]string, error) {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	if len(unique) == 0 {
		return unique, nil
	}

	attributes, err := s.attributeRepo.ListByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	found := make(map[string]bool, len(attributes))
	for _, a := range attributes {
		found[a.ID] = true
	}
	fields := make(map[string]string)
	for _, id := range unique {
		if !found[id] {
			fields["attribute_ids."+id] = "unknown attribute"
		}
	}
	if err := fieldErrors(fields); err != nil {
		return nil, err
	}
	return unique, nil
}

// Get retrieves a non deleted event by ID
func (s *eventService) Get(ctx context.Context, id string) (*domain.Event, error) {
	return requireEvent(ctx, s.eventRepo, id)
}

// List lists events with pagination and visibility filters
func (s *eventService) List(ctx context.Context, query *dto.ListEventsQuery) ([]*domain.Event, int, error) {
	query.SetDefaults()
	return s.eventRepo.List(ctx, repository.EventFilter{
		ListFilter: repository.ListFilter{
			IncludeDeleted: query.IncludeDeleted,
			Limit:          query.Limit,
			Offset:         query.Offset(),
		},
		VisibleOnly: query.VisibleOnly,
	})
}

// ListPublic lists visible and active events
func (s *eventService) ListPublic(ctx context.Context, query *dto.ListQuery) ([]*domain.Event, int, error) {
	query.SetDefaults()
	return s.eventRepo.List(ctx, repository.EventFilter{
		ListFilter:  repository.ListFilter{Limit: query.Limit, Offset: query.Offset()},
		VisibleOnly: true,
		ActiveOnly:  true,
	})
}

// Update applies a partial update
func (s *eventService) Update(ctx context.Context, actor Actor, id string, req *dto.UpdateEventRequest) (*domain.Event, error) {
	if valid, msg := req.Validate(); !valid {
		return nil, NewValidationError("event", msg)
	}

	event, err := requireEvent(ctx, s.eventRepo, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		event.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.StartDate != nil {
		event.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		event.EndDate = req.EndDate
	} else if req.ClearEndDate {
		event.EndDate = nil
	}
	if req.IsVisible != nil {
		event.IsVisible = *req.IsVisible
	}
	if req.IsActive != nil {
		event.IsActive = *req.IsActive
	}
	if req.Price != nil {
		event.Price = req.Price
	} else if req.ClearPrice {
		event.Price = nil
	}
	if req.ParticipantsLimit != nil {
		event.ParticipantsLimit = req.ParticipantsLimit
	} else if req.ClearLimit {
		event.ParticipantsLimit = nil
	}

	if event.EndDate != nil && event.EndDate.Before(event.StartDate) {
		return nil, NewValidationError("end_date", "must not be before start date")
	}

	event.ModifiedBy = actor.UserID
	event.ModifiedAt = s.now()
	if err := s.eventRepo.Update(ctx, event); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

// Delete soft deletes an event
func (s *eventService) Delete(ctx context.Context, actor Actor, id string) error {
	if _, err := requireEvent(ctx, s.eventRepo, id); err != nil {
		return err
	}
	if err := s.eventRepo.SoftDelete(ctx, id, s.now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEventNotFound
		}
		return err
	}
	return nil
}

// Restore undoes a soft delete
func (s *eventService) Restore(ctx context.Context, actor Actor, id string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	if !event.IsDeleted() {
		return nil, ErrNotDeleted
	}
	if err := s.eventRepo.Restore(ctx, id); err != nil {
		return nil, err
	}
	return requireEvent(ctx, s.eventRepo, id)
}

// AssignAttributes replaces the acquisition attributes used by the event
func (s *eventService) AssignAttributes(ctx context.Context, actor Actor, id string, attributeIDs []string) (*domain.Event, error) {
	event, err := requireEvent(ctx, s.eventRepo, id)
	if err != nil {
		return nil, err
	}
	ids, err := s.checkAttributes(ctx, attributeIDs)
	if err != nil {
		return nil, err
	}
	if err := s.eventRepo.SetAttributes(ctx, event.ID, ids); err != nil {
		return nil, err
	}
	return requireEvent(ctx, s.eventRepo, id)
}

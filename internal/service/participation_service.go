package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/theoboldt/juvem-sub001/internal/domain"
	"github.com/theoboldt/juvem-sub001/internal/dto"
	"github.com/theoboldt/juvem-sub001/internal/messaging"
	"github.com/theoboldt/juvem-sub001/internal/repository"
	"github.com/theoboldt/juvem-sub001/pkg/logger"
	"github.com/theoboldt/juvem-sub001/pkg/telemetry"
)

// participationService implements ParticipationService
type participationService struct {
	repos      *repository.Repositories
	attributes AttributeService
	publisher  messaging.Publisher
	metrics    *telemetry.Metrics
	log        *logger.Logger
	now        func() time.Time

	// registerMu serializes the capacity check with the insert
	registerMu sync.Mutex
}

// NewParticipationService creates a new ParticipationService
func NewParticipationService(repos *repository.Repositories, attributes AttributeService, publisher messaging.Publisher, metrics *telemetry.Metrics, log *logger.Logger) ParticipationService {
	return &participationService{
		repos:      repos,
		attributes: attributes,
		publisher:  publisher,
		metrics:    metrics,
		log:        log,
		now:        time.Now,
	}
}

// publish logs instead of failing, the state change is already stored
func publish(ctx context.Context, log *logger.Logger, publisher messaging.Publisher, event messaging.Event) {
	if err := publisher.Publish(ctx, event); err != nil {
		log.WithContext(ctx).Warn("failed to publish domain event",
			zap.String("event_type", event.Type()),
			zap.String("key", event.Key()),
			zap.Error(err),
		)
	}
}

// Register stores a public registration
func (s *participationService) Register(ctx context.Context, eventID string, req *dto.RegisterRequest) (*domain.Participation, error) {
	ctx, span := telemetry.StartSpan(ctx, "participation.register")
	var err error
	defer func() { telemetry.EndSpan(span, err) }()
	telemetry.SetSpanAttributes(ctx, telemetry.EventIDAttr(eventID))

	fields := req.FieldErrors()

	event, err := requireEvent(ctx, s.repos.Events, eventID)
	if err != nil {
		return nil, err
	}
	if !event.AcceptsRegistrations() {
		err = ErrRegistrationClosed
		return nil, err
	}

	assigned, err := s.attributes.EventAttributes(ctx, event)
	if err != nil {
		return nil, err
	}
	public := make([]*domain.Attribute, 0, len(assigned))
	for _, a := range assigned {
		if a.IsPublic {
			public = append(public, a)
		}
	}

	now := s.now()
	participation := &domain.Participation{
		ID:         uuid.New().String(),
		EventID:    event.ID,
		Salutation: strings.TrimSpace(req.Salutation),
		NameFirst:  strings.TrimSpace(req.NameFirst),
		NameLast:   strings.TrimSpace(req.NameLast),
		Address:    req.Address,
		Email:      strings.TrimSpace(req.Email),
		Phones:     req.Phones,
		CreatedAt:  now,
		ModifiedAt: now,
	}
	if participation.Phones == nil {
		participation.Phones = []domain.Phone{}
	}

	var filloutFields map[string]string
	participation.Fillouts, filloutFields = buildFillouts(event, public, domain.OwnerParticipation, participation.ID, "fillouts", req.Fillouts, now)
	mergeFields(fields, filloutFields)

	for i := range req.Participants {
		in := &req.Participants[i]
		birthday, _ := in.ParsedBirthday()
		participant := &domain.Participant{
			ID:              uuid.New().String(),
			ParticipationID: participation.ID,
			EventID:         event.ID,
			NameFirst:       strings.TrimSpace(in.NameFirst),
			NameLast:        strings.TrimSpace(in.NameLast),
			Birthday:        birthday,
			Gender:          in.Gender,
			Food:            in.Food,
			Info:            in.Info,
			Status:          domain.StatusUnconfirmed,
			// keeps creation order stable for participants registered together
			CreatedAt:  now.Add(time.Duration(i) * time.Microsecond),
			ModifiedAt: now,
		}
		if participant.Food == nil {
			participant.Food = []string{}
		}
		participant.Fillouts, filloutFields = buildFillouts(event, public, domain.OwnerParticipant, participant.ID,
			dto.ParticipantPrefix(i)+"fillouts", in.Fillouts, now)
		mergeFields(fields, filloutFields)
		participation.Participants = append(participation.Participants, participant)
	}

	if err = fieldErrors(fields); err != nil {
		return nil, err
	}

	s.registerMu.Lock()
	err = s.checkCapacity(ctx, event, len(participation.Participants))
	if err == nil {
		err = s.repos.Participations.Create(ctx, participation)
	}
	s.registerMu.Unlock()
	if err != nil {
		return nil, err
	}

	s.metrics.Registrations.Inc(ctx, telemetry.EventIDAttr(event.ID))
	s.log.WithContext(ctx).Info("participation registered",
		zap.String("event_id", event.ID),
		zap.String("participation_id", participation.ID),
		zap.Int("participants", len(participation.Participants)),
	)

	participantIDs := make([]string, len(participation.Participants))
	for i, p := range participation.Participants {
		participantIDs[i] = p.ID
	}
	publish(ctx, s.log, s.publisher, &messaging.ParticipationCreatedEvent{
		EventType:       messaging.TypeParticipationCreated,
		EventID:         event.ID,
		ParticipationID: participation.ID,
		ParticipantIDs:  participantIDs,
		Email:           participation.Email,
		Timestamp:       now,
	})

	return participation, nil
}

func mergeFields(into, from map[string]string) {
	for k, v := range from {
		into[k] = v
	}
}

// requireParticipation loads a non deleted participation of the event
func (s *participationService) requireParticipation(ctx context.Context, eventID, id string) (*domain.Participation, error) {
	return loadParticipation(ctx, s.repos, eventID, id)
}

func loadParticipation(ctx context.Context, repos *repository.Repositories, eventID, id string) (*domain.Participation, error) {
	if _, err := requireEvent(ctx, repos.Events, eventID); err != nil {
		return nil, err
	}
	participation, err := repos.Participations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if participation == nil || participation.IsDeleted() || participation.EventID != eventID {
		return nil, ErrParticipationNotFound
	}
	return participation, nil
}

func loadParticipant(ctx context.Context, repos *repository.Repositories, eventID, id string) (*domain.Participant, error) {
	if _, err := requireEvent(ctx, repos.Events, eventID); err != nil {
		return nil, err
	}
	participant, err := repos.Participants.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if participant == nil || participant.IsDeleted() || participant.EventID != eventID {
		return nil, ErrParticipantNotFound
	}
	return participant, nil
}

// Get retrieves a participation with participants and fillouts
func (s *participationService) Get(ctx context.Context, eventID, id string) (*domain.Participation, error) {
	participation, err := s.requireParticipation(ctx, eventID, id)
	if err != nil {
		return nil, err
	}
	participation.Participants = withoutDeleted(participation.Participants)
	return participation, nil
}

func withoutDeleted(participants []*domain.Participant) []*domain.Participant {
	out := make([]*domain.Participant, 0, len(participants))
	for _, p := range participants {
		if !p.IsDeleted() {
			out = append(out, p)
		}
	}
	return out
}

// ListByEvent lists participations of an event
func (s *participationService) ListByEvent(ctx context.Context, eventID string, query *dto.ListQuery) ([]*domain.Participation, int, error) {
	if _, err := requireEvent(ctx, s.repos.Events, eventID); err != nil {
		return nil, 0, err
	}
	query.SetDefaults()
	participations, total, err := s.repos.Participations.ListByEvent(ctx, eventID, repository.ListFilter{
		IncludeDeleted: query.IncludeDeleted,
		Limit:          query.Limit,
		Offset:         query.Offset(),
	})
	if err != nil {
		return nil, 0, err
	}
	if !query.IncludeDeleted {
		for _, p := range participations {
			p.Participants = withoutDeleted(p.Participants)
		}
	}
	return participations, total, nil
}

// UpdateContact replaces contact data and optionally participation fillouts
func (s *participationService) UpdateContact(ctx context.Context, eventID, id string, req *dto.UpdateContactRequest) (*domain.Participation, error) {
	if err := fieldErrors(req.ContactInput.FieldErrors()); err != nil {
		return nil, err
	}
	participation, err := s.requireParticipation(ctx, eventID, id)
	if err != nil {
		return nil, err
	}

	var fillouts []*domain.Fillout
	if req.Fillouts != nil {
		event, err := requireEvent(ctx, s.repos.Events, eventID)
		if err != nil {
			return nil, err
		}
		if fillouts, err = s.attributes.ValidateFillouts(ctx, event, domain.OwnerParticipation, participation.ID, *req.Fillouts); err != nil {
			return nil, err
		}
		fillouts = replacing(fillouts)
	}

	participation.Salutation = strings.TrimSpace(req.Salutation)
	participation.NameFirst = strings.TrimSpace(req.NameFirst)
	participation.NameLast = strings.TrimSpace(req.NameLast)
	participation.Address = req.Address
	participation.Email = strings.TrimSpace(req.Email)
	participation.Phones = req.Phones
	if participation.Phones == nil {
		participation.Phones = []domain.Phone{}
	}
	participation.ModifiedAt = s.now()

	if err := s.repos.Participations.Update(ctx, participation, fillouts); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrParticipationNotFound
		}
		return nil, err
	}
	return s.Get(ctx, eventID, id)
}

// Delete soft deletes a participation and its participants
func (s *participationService) Delete(ctx context.Context, eventID, id string) error {
	if _, err := s.requireParticipation(ctx, eventID, id); err != nil {
		return err
	}
	if err := s.repos.Participations.SoftDelete(ctx, id, s.now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrParticipationNotFound
		}
		return err
	}
	return nil
}

// Restore undoes a soft delete of a participation
func (s *participationService) Restore(ctx context.Context, eventID, id string) (*domain.Participation, error) {
	event, err := requireEvent(ctx, s.repos.Events, eventID)
	if err != nil {
		return nil, err
	}

	s.registerMu.Lock()
	defer s.registerMu.Unlock()

	participation, err := s.repos.Participations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if participation == nil || participation.EventID != eventID {
		return nil, ErrParticipationNotFound
	}
	if !participation.IsDeleted() {
		return nil, ErrNotDeleted
	}

	// participants removed together with the participation come back with it
	returning := 0
	for _, p := range participation.Participants {
		if p.DeletedAt != nil && p.DeletedAt.Equal(*participation.DeletedAt) && p.Status.IsActive() {
			returning++
		}
	}
	if err := s.checkCapacity(ctx, event, returning); err != nil {
		return nil, err
	}

	if err := s.repos.Participations.Restore(ctx, id); err != nil {
		return nil, err
	}
	return s.Get(ctx, eventID, id)
}

// checkCapacity must be called with registerMu held
func (s *participationService) checkCapacity(ctx context.Context, event *domain.Event, n int) error {
	if n == 0 || event.ParticipantsLimit == nil {
		return nil
	}
	active, err := s.repos.Participants.CountActiveByEvent(ctx, event.ID)
	if err != nil {
		return err
	}
	if !event.HasCapacity(active, n) {
		return ErrCapacityExceeded
	}
	return nil
}

// GetParticipant retrieves a participant
func (s *participationService) GetParticipant(ctx context.Context, eventID, id string) (*domain.Participant, error) {
	return loadParticipant(ctx, s.repos, eventID, id)
}

// UpdateParticipant applies a partial participant update
func (s *participationService) UpdateParticipant(ctx context.Context, eventID, id string, req *dto.UpdateParticipantRequest) (*domain.Participant, error) {
	if valid, msg := req.Validate(); !valid {
		return nil, NewValidationError("participant", msg)
	}
	participant, err := loadParticipant(ctx, s.repos, eventID, id)
	if err != nil {
		return nil, err
	}

	var fillouts []*domain.Fillout
	if req.Fillouts != nil {
		event, err := requireEvent(ctx, s.repos.Events, eventID)
		if err != nil {
			return nil, err
		}
		if fillouts, err = s.attributes.ValidateFillouts(ctx, event, domain.OwnerParticipant, participant.ID, *req.Fillouts); err != nil {
			return nil, err
		}
		fillouts = replacing(fillouts)
	}

	if req.NameFirst != nil {
		participant.NameFirst = strings.TrimSpace(*req.NameFirst)
	}
	if req.NameLast != nil {
		participant.NameLast = strings.TrimSpace(*req.NameLast)
	}
	if req.Birthday != nil {
		participant.Birthday, _ = time.Parse(domain.DateLayout, *req.Birthday)
	}
	if req.Gender != nil {
		participant.Gender = *req.Gender
	}
	if req.Food != nil {
		participant.Food = *req.Food
	}
	if req.Info != nil {
		participant.Info = *req.Info
	}
	if req.BasePrice != nil {
		participant.BasePrice = req.BasePrice
	} else if req.ClearBasePrice {
		participant.BasePrice = nil
	}
	participant.ModifiedAt = s.now()

	if err := s.repos.Participants.Update(ctx, participant, fillouts); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	return loadParticipant(ctx, s.repos, eventID, id)
}

// ChangeStatus moves a participant along the status machine
func (s *participationService) ChangeStatus(ctx context.Context, actor Actor, eventID, participantID string, req *dto.ChangeStatusRequest) (*domain.Participant, error) {
	ctx, span := telemetry.StartSpan(ctx, "participant.change_status")
	var err error
	defer func() { telemetry.EndSpan(span, err) }()
	telemetry.SetSpanAttributes(ctx, telemetry.EventIDAttr(eventID), telemetry.ParticipantAttr(participantID))

	if valid, msg := req.Validate(); !valid {
		err = NewValidationError("status", msg)
		return nil, err
	}
	event, err := requireEvent(ctx, s.repos.Events, eventID)
	if err != nil {
		return nil, err
	}
	participant, err := loadParticipant(ctx, s.repos, eventID, participantID)
	if err != nil {
		return nil, err
	}

	from := participant.Status
	s.registerMu.Lock()
	defer s.registerMu.Unlock()

	if !from.IsActive() && req.Status.IsActive() {
		if err = s.checkCapacity(ctx, event, 1); err != nil {
			return nil, err
		}
	}

	transition, err := participant.TransitionTo(req.Status, strings.TrimSpace(req.Reason), actor.UserID, s.now())
	if err != nil {
		return nil, err
	}
	transition.ID = uuid.New().String()

	if err = s.repos.Participants.UpdateStatus(ctx, participant, transition); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			err = fmt.Errorf("%w: status was changed concurrently", ErrInvalidStatusTransition)
		}
		return nil, err
	}

	s.metrics.StatusChanges.Inc(ctx, telemetry.StatusTransitionAttrs(string(from), string(req.Status))...)
	s.log.WithContext(ctx).Info("participant status changed",
		zap.String("participant_id", participant.ID),
		zap.String("from", string(from)),
		zap.String("to", string(req.Status)),
		zap.String("changed_by", actor.UserID),
	)
	publish(ctx, s.log, s.publisher, &messaging.ParticipantStatusChangedEvent{
		EventType:       messaging.TypeParticipantStatusChanged,
		EventID:         eventID,
		ParticipationID: participant.ParticipationID,
		ParticipantID:   participant.ID,
		FromStatus:      string(from),
		ToStatus:        string(req.Status),
		Reason:          transition.Reason,
		ChangedBy:       actor.UserID,
		Timestamp:       transition.ChangedAt,
	})

	return participant, nil
}

// StatusHistory returns the recorded status transitions
func (s *participationService) StatusHistory(ctx context.Context, eventID, participantID string) ([]*domain.StatusTransition, error) {
	if _, err := loadParticipant(ctx, s.repos, eventID, participantID); err != nil {
		return nil, err
	}
	return s.repos.Participants.ListTransitions(ctx, participantID)
}

// DeleteParticipant soft deletes a single participant
func (s *participationService) DeleteParticipant(ctx context.Context, eventID, id string) error {
	if _, err := loadParticipant(ctx, s.repos, eventID, id); err != nil {
		return err
	}
	if err := s.repos.Participants.SoftDelete(ctx, id, s.now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrParticipantNotFound
		}
		return err
	}
	return nil
}

// RestoreParticipant undoes a soft delete of a participant
func (s *participationService) RestoreParticipant(ctx context.Context, eventID, id string) (*domain.Participant, error) {
	event, err := requireEvent(ctx, s.repos.Events, eventID)
	if err != nil {
		return nil, err
	}

	s.registerMu.Lock()
	defer s.registerMu.Unlock()

	participant, err := s.repos.Participants.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if participant == nil || participant.EventID != eventID {
		return nil, ErrParticipantNotFound
	}
	if !participant.IsDeleted() {
		return nil, ErrNotDeleted
	}
	participation, err := s.repos.Participations.GetByID(ctx, participant.ParticipationID)
	if err != nil {
		return nil, err
	}
	if participation == nil || participation.IsDeleted() {
		return nil, NewValidationError("participation", "restore the participation first")
	}
	if participant.Status.IsActive() {
		if err := s.checkCapacity(ctx, event, 1); err != nil {
			return nil, err
		}
	}
	if err := s.repos.Participants.Restore(ctx, id); err != nil {
		return nil, err
	}
	return loadParticipant(ctx, s.repos, eventID, id)
}

// replacing turns an empty fillout set into a non-nil one so the repository
// clears the stored fillouts instead of keeping them
func replacing(fillouts []*domain.Fillout) []*domain.Fillout {
	if fillouts == nil {
		return []*domain.Fillout{}
	}
	return fillouts
}

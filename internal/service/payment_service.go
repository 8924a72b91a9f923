package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/theoboldt/juvem-sub001/internal/domain"
	"github.com/theoboldt/juvem-sub001/internal/dto"
	"github.com/theoboldt/juvem-sub001/internal/messaging"
	"github.com/theoboldt/juvem-sub001/internal/repository"
	"github.com/theoboldt/juvem-sub001/pkg/logger"
	"github.com/theoboldt/juvem-sub001/pkg/telemetry"
)

// paymentService implements PaymentService
type paymentService struct {
	repos      *repository.Repositories
	attributes AttributeService
	formulas   *FormulaEngine
	publisher  messaging.Publisher
	metrics    *telemetry.Metrics
	log        *logger.Logger
	now        func() time.Time

	// bookMu serializes reading the to-pay state with booking new payments
	bookMu sync.Mutex
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(repos *repository.Repositories, attributes AttributeService, formulas *FormulaEngine, publisher messaging.Publisher, metrics *telemetry.Metrics, log *logger.Logger) PaymentService {
	return &paymentService{
		repos:      repos,
		attributes: attributes,
		formulas:   formulas,
		publisher:  publisher,
		metrics:    metrics,
		log:        log,
		now:        time.Now,
	}
}

// priceOf computes the price of a participant in cents, nil if none is set.
// The latest price override wins, otherwise the base price plus formula deltas.
func (s *paymentService) priceOf(event *domain.Event, attributes []*domain.Attribute, participant *domain.Participant, participationFillouts []*domain.Fillout, events []*domain.PaymentEvent) (*int64, error) {
	if set := domain.LatestPriceSet(events); set != nil {
		price := domain.ClampPrice(set.Value)
		return &price, nil
	}

	base := participant.BasePrice
	if base == nil {
		base = event.Price
	}
	if base == nil {
		return nil, nil
	}

	price := *base
	for _, attr := range attributes {
		if !attr.HasPriceFormula() {
			continue
		}
		fillout, ok := filloutValue(participant.Fillouts, participationFillouts, attr.ID)
		if !ok || fillout.Value.IsEmpty() {
			continue
		}
		if attr.PriceFormula != "" {
			delta, err := s.formulas.Eval(attr.PriceFormula, fillout.Value.Numeric(), float64(price))
			if err != nil {
				return nil, fmt.Errorf("attribute %s: %w", attr.ID, err)
			}
			if price, err = addCents(price, delta); err != nil {
				return nil, fmt.Errorf("attribute %s: %w", attr.ID, err)
			}
		}
		options := append([]*domain.AttributeOption(nil), attr.Options...)
		domain.SortOptions(options)
		for _, opt := range options {
			if opt.PriceFormula == "" || !fillout.Value.HasChoice(opt.ID) {
				continue
			}
			delta, err := s.formulas.Eval(opt.PriceFormula, 1, float64(price))
			if err != nil {
				return nil, fmt.Errorf("option %s: %w", opt.ID, err)
			}
			if price, err = addCents(price, delta); err != nil {
				return nil, fmt.Errorf("option %s: %w", opt.ID, err)
			}
		}
	}

	price = domain.ClampPrice(price)
	return &price, nil
}

// pricing holds everything needed to price participants of one event
type pricing struct {
	event        *domain.Event
	attributes   []*domain.Attribute
	events       map[string][]*domain.PaymentEvent
	participFill map[string][]*domain.Fillout
}

func (s *paymentService) loadPricing(ctx context.Context, event *domain.Event, participants []*domain.Participant) (*pricing, error) {
	attributes, err := s.attributes.EventAttributes(ctx, event)
	if err != nil {
		return nil, err
	}
	participantIDs := make([]string, len(participants))
	participationIDs := make([]string, 0, len(participants))
	seen := make(map[string]bool, len(participants))
	for i, p := range participants {
		participantIDs[i] = p.ID
		if !seen[p.ParticipationID] {
			seen[p.ParticipationID] = true
			participationIDs = append(participationIDs, p.ParticipationID)
		}
	}
	events, err := s.repos.Payments.ListByParticipants(ctx, participantIDs)
	if err != nil {
		return nil, err
	}
	fillouts, err := s.repos.Fillouts.ListByOwners(ctx, domain.OwnerParticipation, participationIDs)
	if err != nil {
		return nil, err
	}
	return &pricing{event: event, attributes: attributes, events: events, participFill: fillouts}, nil
}

func (s *paymentService) summarize(p *pricing, participant *domain.Participant) (*domain.PriceSummary, error) {
	events := p.events[participant.ID]
	price, err := s.priceOf(p.event, p.attributes, participant, p.participFill[participant.ParticipationID], events)
	if err != nil {
		return nil, err
	}
	return domain.NewPriceSummary(participant.ID, price, domain.SumPayments(events)), nil
}

// ParticipantSummary returns the price state and payment events of a participant
func (s *paymentService) ParticipantSummary(ctx context.Context, eventID, participantID string) (*domain.PriceSummary, []*domain.PaymentEvent, error) {
	event, err := requireEvent(ctx, s.repos.Events, eventID)
	if err != nil {
		return nil, nil, err
	}
	participant, err := loadParticipant(ctx, s.repos, eventID, participantID)
	if err != nil {
		return nil, nil, err
	}
	p, err := s.loadPricing(ctx, event, []*domain.Participant{participant})
	if err != nil {
		return nil, nil, err
	}
	summary, err := s.summarize(p, participant)
	if err != nil {
		return nil, nil, err
	}
	events := p.events[participant.ID]
	if events == nil {
		events = []*domain.PaymentEvent{}
	}
	return summary, events, nil
}

func (s *paymentService) participationSummaries(ctx context.Context, eventID, participationID string) (*domain.Participation, []*domain.PriceSummary, *pricing, error) {
	event, err := requireEvent(ctx, s.repos.Events, eventID)
	if err != nil {
		return nil, nil, nil, err
	}
	participation, err := loadParticipation(ctx, s.repos, eventID, participationID)
	if err != nil {
		return nil, nil, nil, err
	}
	active := participation.ActiveParticipants()
	p, err := s.loadPricing(ctx, event, active)
	if err != nil {
		return nil, nil, nil, err
	}
	summaries := make([]*domain.PriceSummary, 0, len(active))
	for _, participant := range active {
		summary, err := s.summarize(p, participant)
		if err != nil {
			return nil, nil, nil, err
		}
		summaries = append(summaries, summary)
	}
	return participation, summaries, p, nil
}

// ParticipationSummary sums the active participants of a participation
func (s *paymentService) ParticipationSummary(ctx context.Context, eventID, participationID string) (*dto.ParticipationPayments, error) {
	participation, summaries, p, err := s.participationSummaries(ctx, eventID, participationID)
	if err != nil {
		return nil, err
	}
	events := make(map[string][]*domain.PaymentEvent, len(summaries))
	for _, summary := range summaries {
		if e := p.events[summary.ParticipantID]; len(e) > 0 {
			events[summary.ParticipantID] = e
		}
	}
	return &dto.ParticipationPayments{
		ParticipationID: participation.ID,
		Totals:          domain.SumSummaries(summaries),
		Participants:    summaries,
		Events:          events,
	}, nil
}

// Summaries returns the price state of every non deleted participant keyed by ID
func (s *paymentService) Summaries(ctx context.Context, eventID string) (map[string]*domain.PriceSummary, error) {
	event, err := requireEvent(ctx, s.repos.Events, eventID)
	if err != nil {
		return nil, err
	}
	participants, err := s.repos.Participants.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	p, err := s.loadPricing(ctx, event, participants)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*domain.PriceSummary, len(participants))
	for _, participant := range participants {
		summary, err := s.summarize(p, participant)
		if err != nil {
			return nil, err
		}
		out[participant.ID] = summary
	}
	return out, nil
}

// EventSummary sums the active participants of an event
func (s *paymentService) EventSummary(ctx context.Context, eventID string) (*dto.EventPayments, error) {
	event, err := requireEvent(ctx, s.repos.Events, eventID)
	if err != nil {
		return nil, err
	}
	participants, err := s.repos.Participants.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	active := make([]*domain.Participant, 0, len(participants))
	participations := make(map[string]bool)
	for _, participant := range participants {
		if participant.IsActive() {
			active = append(active, participant)
			participations[participant.ParticipationID] = true
		}
	}
	p, err := s.loadPricing(ctx, event, active)
	if err != nil {
		return nil, err
	}
	summaries := make([]*domain.PriceSummary, 0, len(active))
	for _, participant := range active {
		summary, err := s.summarize(p, participant)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return &dto.EventPayments{
		EventID:        event.ID,
		Totals:         domain.SumSummaries(summaries),
		Participations: len(participations),
	}, nil
}

// SetPrice books a price override for several participants
func (s *paymentService) SetPrice(ctx context.Context, actor Actor, eventID string, req *dto.SetPriceRequest) ([]*domain.PaymentEvent, error) {
	if valid, msg := req.Validate(); !valid {
		return nil, NewValidationError("price", msg)
	}
	if _, err := requireEvent(ctx, s.repos.Events, eventID); err != nil {
		return nil, err
	}

	now := s.now()
	seen := make(map[string]bool, len(req.ParticipantIDs))
	events := make([]*domain.PaymentEvent, 0, len(req.ParticipantIDs))
	for _, id := range req.ParticipantIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, err := loadParticipant(ctx, s.repos, eventID, id); err != nil {
			return nil, err
		}
		events = append(events, &domain.PaymentEvent{
			ID:            uuid.New().String(),
			ParticipantID: id,
			Type:          domain.PaymentTypePriceSet,
			Value:         *req.Value,
			Description:   strings.TrimSpace(req.Description),
			CreatedBy:     actor.UserID,
			CreatedAt:     now,
		})
	}

	if err := s.repos.Payments.Create(ctx, events...); err != nil {
		return nil, err
	}
	s.log.WithContext(ctx).Info("price set",
		zap.String("event_id", eventID),
		zap.Int("participants", len(events)),
		zap.Int64("value", *req.Value),
	)
	return events, nil
}

// distribute splits amount over the summaries. Payments fill each to-pay in
// order with the remainder on the first participant; refunds go to the last
// participant that already paid.
func distribute(amount int64, summaries []*domain.PriceSummary, events map[string][]*domain.PaymentEvent) map[string]int64 {
	bookings := make(map[string]int64)
	if len(summaries) == 0 {
		return bookings
	}

	if amount < 0 {
		target := summaries[len(summaries)-1].ParticipantID
		for i := len(summaries) - 1; i >= 0; i-- {
			if domain.HasPayments(events[summaries[i].ParticipantID]) {
				target = summaries[i].ParticipantID
				break
			}
		}
		bookings[target] = amount
		return bookings
	}

	remaining := amount
	for _, summary := range summaries {
		if remaining == 0 {
			break
		}
		if summary.ToPay == nil || *summary.ToPay <= 0 {
			continue
		}
		share := *summary.ToPay
		if share > remaining {
			share = remaining
		}
		bookings[summary.ParticipantID] = share
		remaining -= share
	}
	if remaining > 0 {
		bookings[summaries[0].ParticipantID] += remaining
	}
	return bookings
}

// RecordPayment distributes a payment or refund over a participation
func (s *paymentService) RecordPayment(ctx context.Context, actor Actor, eventID, participationID string, req *dto.RecordPaymentRequest) ([]*domain.PaymentEvent, error) {
	ctx, span := telemetry.StartSpan(ctx, "payment.record")
	var err error
	defer func() { telemetry.EndSpan(span, err) }()
	telemetry.SetSpanAttributes(ctx, telemetry.EventIDAttr(eventID), telemetry.ParticipationAttr(participationID))

	if valid, msg := req.Validate(); !valid {
		err = NewValidationError("amount", msg)
		return nil, err
	}

	s.bookMu.Lock()
	defer s.bookMu.Unlock()

	_, summaries, p, err := s.participationSummaries(ctx, eventID, participationID)
	if err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		err = NewValidationError("participation", "has no active participants")
		return nil, err
	}

	bookings := distribute(req.Amount, summaries, p.events)
	now := s.now()
	events := make([]*domain.PaymentEvent, 0, len(bookings))
	for _, summary := range summaries {
		value, ok := bookings[summary.ParticipantID]
		if !ok {
			continue
		}
		events = append(events, &domain.PaymentEvent{
			ID:            uuid.New().String(),
			ParticipantID: summary.ParticipantID,
			Type:          domain.PaymentTypePayment,
			Value:         value,
			Description:   strings.TrimSpace(req.Description),
			CreatedBy:     actor.UserID,
			CreatedAt:     now,
		})
	}
	if err = s.repos.Payments.Create(ctx, events...); err != nil {
		return nil, err
	}

	kind := "payment"
	amount := req.Amount
	if amount < 0 {
		kind = "refund"
		amount = -amount
	}
	s.metrics.PaymentsRecorded.Inc(ctx, telemetry.EventIDAttr(eventID), attribute.String("payment.kind", kind))
	s.metrics.PaymentAmount.Add(ctx, amount, telemetry.EventIDAttr(eventID), attribute.String("payment.kind", kind))
	s.log.WithContext(ctx).Info("payment recorded",
		zap.String("participation_id", participationID),
		zap.Int64("amount", req.Amount),
		zap.Int("bookings", len(events)),
	)
	publish(ctx, s.log, s.publisher, &messaging.PaymentRecordedEvent{
		EventType:       messaging.TypePaymentRecorded,
		EventID:         eventID,
		ParticipationID: participationID,
		Amount:          req.Amount,
		Bookings:        bookings,
		RecordedBy:      actor.UserID,
		Timestamp:       now,
	})

	return events, nil
}

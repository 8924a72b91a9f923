package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/theoboldt/juvem-sub001/internal/domain"
	"github.com/theoboldt/juvem-sub001/internal/pdf"
	"github.com/theoboldt/juvem-sub001/internal/render"
	"github.com/theoboldt/juvem-sub001/internal/repository"
	"github.com/theoboldt/juvem-sub001/pkg/telemetry"
)

// profileService implements ProfileService
type profileService struct {
	repos      *repository.Repositories
	attributes AttributeService
	payments   PaymentService
	renderer   *render.Renderer
	converter  pdf.Converter
	metrics    *telemetry.Metrics
}

// NewProfileService creates a new ProfileService
func NewProfileService(repos *repository.Repositories, attributes AttributeService, payments PaymentService, renderer *render.Renderer, converter pdf.Converter, metrics *telemetry.Metrics) ProfileService {
	return &profileService{
		repos:      repos,
		attributes: attributes,
		payments:   payments,
		renderer:   renderer,
		converter:  converter,
		metrics:    metrics,
	}
}

// Render produces the profile of a participant as html or pdf
func (s *profileService) Render(ctx context.Context, eventID, participantID, locale, format string) (*Document, error) {
	ctx, span := telemetry.StartSpan(ctx, "participant.profile")
	defer span.End()
	telemetry.SetSpanAttributes(ctx, telemetry.EventIDAttr(eventID), telemetry.ParticipantAttr(participantID))

	if format == "" {
		format = FormatHTML
	}
	if format != FormatHTML && format != FormatPDF {
		return nil, NewValidationError("format", "must be html or pdf")
	}
	if format == FormatPDF && !s.converter.Enabled() {
		return nil, ErrPDFUnavailable
	}

	event, err := requireEvent(ctx, s.repos.Events, eventID)
	if err != nil {
		return nil, err
	}
	participant, err := loadParticipant(ctx, s.repos, eventID, participantID)
	if err != nil {
		return nil, err
	}
	participation, err := loadParticipation(ctx, s.repos, eventID, participant.ParticipationID)
	if err != nil {
		return nil, err
	}
	attributes, err := s.attributes.EventAttributes(ctx, event)
	if err != nil {
		return nil, err
	}
	summary, payments, err := s.payments.ParticipantSummary(ctx, eventID, participant.ID)
	if err != nil {
		return nil, err
	}

	comments, err := s.repos.Comments.ListBySubject(ctx, domain.OwnerParticipation, participation.ID)
	if err != nil {
		return nil, err
	}
	own, err := s.repos.Comments.ListBySubject(ctx, domain.OwnerParticipant, participant.ID)
	if err != nil {
		return nil, err
	}
	comments = append(comments, own...)

	view := &render.ProfileView{
		Locale:          locale,
		EventTitle:      event.Title,
		ParticipantName: participant.FullName(),
		Birthday:        participant.Birthday,
		Gender:          participant.Gender,
		Status:          participant.Status,
		Food:            participant.Food,
		Info:            participant.Info,
		ContactName:     strings.TrimSpace(participation.Salutation + " " + participation.FullName()),
		ContactEmail:    participation.Email,
		ContactAddress:  participation.Address.String(),
		Phones:          participation.Phones,
		Price:           summary.Price,
		Paid:            summary.Paid,
		ToPay:           summary.ToPay,
		Payments:        payments,
		Comments:        comments,
	}
	for _, attr := range attributes {
		fillout, ok := filloutValue(participant.Fillouts, participation.Fillouts, attr.ID)
		if !ok || fillout.Value.IsEmpty() {
			continue
		}
		value := s.attributes.TextualValue(locale, attr, fillout.Value)
		if fillout.Comment != "" {
			value += " (" + fillout.Comment + ")"
		}
		view.Fields = append(view.Fields, render.Field{Label: attr.ManagementTitle, Value: value})
	}

	started := time.Now()
	html, err := s.renderer.Profile(view)
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("profile-%s", participant.ID)
	doc := &Document{Name: name + ".html", ContentType: domain.ContentTypeHTML, Data: html}
	if format == FormatPDF {
		data, err := s.converter.Convert(ctx, name, html)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPDFUnavailable, err)
		}
		doc = &Document{Name: name + ".pdf", ContentType: domain.ContentTypePDF, Data: data}
	}
	s.metrics.DocumentRender.Record(ctx, time.Since(started).Seconds(), telemetry.DocumentAttrs("profile", format)...)
	return doc, nil
}

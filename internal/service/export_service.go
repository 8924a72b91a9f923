package service

import (
	"context"
	"io"
	"strings"

	"github.com/theoboldt/juvem-sub001/internal/domain"
	"github.com/theoboldt/juvem-sub001/internal/export"
	"github.com/theoboldt/juvem-sub001/internal/repository"
	"github.com/theoboldt/juvem-sub001/pkg/i18n"
)

const exportPageSize = 500

// exportService implements ExportService
type exportService struct {
	repos      *repository.Repositories
	attributes AttributeService
	payments   PaymentService
	translator *i18n.Translator
}

// NewExportService creates a new ExportService
func NewExportService(repos *repository.Repositories, attributes AttributeService, payments PaymentService, translator *i18n.Translator) ExportService {
	return &exportService{
		repos:      repos,
		attributes: attributes,
		payments:   payments,
		translator: translator,
	}
}

func (s *exportService) headers(locale string, keys ...string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = s.translator.T(locale, "export_"+k, nil)
	}
	return out
}

func (s *exportService) usable(attributes []*domain.Attribute, owners ...domain.OwnerType) []*domain.Attribute {
	out := make([]*domain.Attribute, 0, len(attributes))
	for _, a := range attributes {
		for _, owner := range owners {
			if a.UsableAt(owner) {
				out = append(out, a)
				break
			}
		}
	}
	return out
}

func (s *exportService) cell(locale string, attr *domain.Attribute, fillout *domain.Fillout) any {
	if fillout == nil || fillout.Value.IsEmpty() {
		return nil
	}
	if fillout.Value.Number != nil {
		return *fillout.Value.Number
	}
	return s.attributes.TextualValue(locale, attr, fillout.Value)
}

func phoneNumbers(phones []domain.Phone) string {
	numbers := make([]string, 0, len(phones))
	for _, p := range phones {
		numbers = append(numbers, p.Number)
	}
	return strings.Join(numbers, ", ")
}

func (s *exportService) allParticipations(ctx context.Context, eventID string) ([]*domain.Participation, error) {
	var out []*domain.Participation
	for offset := 0; ; offset += exportPageSize {
		page, total, err := s.repos.Participations.ListByEvent(ctx, eventID, repository.ListFilter{Limit: exportPageSize, Offset: offset})
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		if len(page) == 0 || len(out) >= total {
			return out, nil
		}
	}
}

// Participants writes the active participants of an event
func (s *exportService) Participants(ctx context.Context, eventID, locale string, w io.Writer) error {
	event, err := requireEvent(ctx, s.repos.Events, eventID)
	if err != nil {
		return err
	}
	attributes, err := s.attributes.EventAttributes(ctx, event)
	if err != nil {
		return err
	}
	attributes = s.usable(attributes, domain.OwnerParticipant, domain.OwnerParticipation)
	summaries, err := s.payments.Summaries(ctx, eventID)
	if err != nil {
		return err
	}
	participations, err := s.allParticipations(ctx, eventID)
	if err != nil {
		return err
	}

	table := &export.Table{
		Sheet:   s.translator.T(locale, "export_sheet_participants", nil),
		Headers: s.headers(locale, "last_name", "first_name", "birthday", "age", "gender", "status", "price", "to_pay"),
		Widths:  []float64{20, 20, 12, 6, 10, 18, 10, 10},
	}
	for _, a := range attributes {
		table.Headers = append(table.Headers, a.ManagementTitle)
	}

	participationFillouts := make(map[string][]*domain.Fillout, len(participations))
	var participants []*domain.Participant
	for _, participation := range participations {
		participationFillouts[participation.ID] = participation.Fillouts
		participants = append(participants, participation.ActiveParticipants()...)
	}
	domain.SortParticipantsByName(participants)

	for _, p := range participants {
		var price, toPay any
		if summary := summaries[p.ID]; summary != nil {
			price, toPay = export.Cents(summary.Price), export.Cents(summary.ToPay)
		}
		row := []any{
			p.NameLast,
			p.NameFirst,
			s.translator.Date(locale, p.Birthday),
			p.AgeAt(event.StartDate),
			s.translator.T(locale, "gender_"+p.Gender, nil),
			s.translator.T(locale, "status_"+string(p.Status), nil),
			price,
			toPay,
		}
		for _, a := range attributes {
			fillout, _ := filloutValue(p.Fillouts, participationFillouts[p.ParticipationID], a.ID)
			row = append(row, s.cell(locale, a, fillout))
		}
		table.AddRow(row...)
	}
	return export.WriteWorkbook(w, table)
}

// Participations writes one row per registration with totals of its active participants
func (s *exportService) Participations(ctx context.Context, eventID, locale string, w io.Writer) error {
	event, err := requireEvent(ctx, s.repos.Events, eventID)
	if err != nil {
		return err
	}
	attributes, err := s.attributes.EventAttributes(ctx, event)
	if err != nil {
		return err
	}
	attributes = s.usable(attributes, domain.OwnerParticipation)
	summaries, err := s.payments.Summaries(ctx, eventID)
	if err != nil {
		return err
	}
	participations, err := s.allParticipations(ctx, eventID)
	if err != nil {
		return err
	}

	table := &export.Table{
		Sheet: s.translator.T(locale, "export_sheet_participations", nil),
		Headers: s.headers(locale, "salutation", "last_name", "first_name", "email", "phone", "address",
			"participants", "price", "paid", "to_pay", "created_at"),
		Widths: []float64{10, 20, 20, 28, 20, 40, 8, 10, 10, 10, 12},
	}
	for _, a := range attributes {
		table.Headers = append(table.Headers, a.ManagementTitle)
	}

	for _, participation := range participations {
		active := participation.ActiveParticipants()
		rowSummaries := make([]*domain.PriceSummary, 0, len(active))
		for _, p := range active {
			if summary := summaries[p.ID]; summary != nil {
				rowSummaries = append(rowSummaries, summary)
			}
		}
		totals := domain.SumSummaries(rowSummaries)
		paid := totals.Paid
		row := []any{
			participation.Salutation,
			participation.NameLast,
			participation.NameFirst,
			participation.Email,
			phoneNumbers(participation.Phones),
			participation.Address.String(),
			len(active),
			export.Cents(totals.Price),
			export.Cents(&paid),
			export.Cents(totals.ToPay),
			s.translator.Date(locale, participation.CreatedAt),
		}
		for _, a := range attributes {
			row = append(row, s.cell(locale, a, domain.FilloutFor(participation.Fillouts, a.ID)))
		}
		table.AddRow(row...)
	}
	return export.WriteWorkbook(w, table)
}

// Employees writes the employees of an event
func (s *exportService) Employees(ctx context.Context, eventID, locale string, w io.Writer) error {
	event, err := requireEvent(ctx, s.repos.Events, eventID)
	if err != nil {
		return err
	}
	attributes, err := s.attributes.EventAttributes(ctx, event)
	if err != nil {
		return err
	}
	attributes = s.usable(attributes, domain.OwnerEmployee)

	var employees []*domain.Employee
	for offset := 0; ; offset += exportPageSize {
		page, total, err := s.repos.Employees.ListByEvent(ctx, eventID, repository.ListFilter{Limit: exportPageSize, Offset: offset})
		if err != nil {
			return err
		}
		employees = append(employees, page...)
		if len(page) == 0 || len(employees) >= total {
			break
		}
	}

	table := &export.Table{
		Sheet:   s.translator.T(locale, "export_sheet_employees", nil),
		Headers: s.headers(locale, "salutation", "last_name", "first_name", "email", "phone", "address"),
		Widths:  []float64{10, 20, 20, 28, 20, 40},
	}
	for _, a := range attributes {
		table.Headers = append(table.Headers, a.ManagementTitle)
	}
	for _, e := range employees {
		row := []any{e.Salutation, e.NameLast, e.NameFirst, e.Email, phoneNumbers(e.Phones), e.Address.String()}
		for _, a := range attributes {
			row = append(row, s.cell(locale, a, domain.FilloutFor(e.Fillouts, a.ID)))
		}
		table.AddRow(row...)
	}
	return export.WriteWorkbook(w, table)
}

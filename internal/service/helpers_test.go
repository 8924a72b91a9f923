package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/theoboldt/juvem-sub001/internal/domain"
	"github.com/theoboldt/juvem-sub001/internal/dto"
	"github.com/theoboldt/juvem-sub001/internal/messaging"
	"github.com/theoboldt/juvem-sub001/internal/pdf"
	"github.com/theoboldt/juvem-sub001/internal/render"
	"github.com/theoboldt/juvem-sub001/internal/repository"
	"github.com/theoboldt/juvem-sub001/pkg/blob"
	"github.com/theoboldt/juvem-sub001/pkg/config"
	"github.com/theoboldt/juvem-sub001/pkg/i18n"
	"github.com/theoboldt/juvem-sub001/pkg/logger"
	"github.com/theoboldt/juvem-sub001/pkg/telemetry"
)

var admin = Actor{UserID: "admin-1", IsAdmin: true}

type fixture struct {
	ctx        context.Context
	repos      *repository.Repositories
	publisher  *messaging.MemoryPublisher
	store      *blob.MemoryStore
	translator *i18n.Translator
	renderer   *render.Renderer

	events         EventService
	attributes     AttributeService
	participations ParticipationService
	employees      EmployeeService
	payments       PaymentService
	invoices       InvoiceService
	attendance     AttendanceService
	comments       CommentService
	graph          GraphService
	profiles       ProfileService
	exports        ExportService
	migration      FilloutMigrationService
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithConverter(t, pdf.NewNoOpConverter(), config.InvoiceConfig{
		IssuerName:    "Jugendwerk",
		IssuerAddress: "Hauptstr. 1, 70173 Stuttgart",
		Currency:      "EUR",
	})
}

func newFixtureWithConverter(t *testing.T, converter pdf.Converter, invoiceCfg config.InvoiceConfig) *fixture {
	t.Helper()

	translator, err := i18n.NewTranslator("de")
	require.NoError(t, err)
	renderer, err := render.New(translator, "EUR")
	require.NoError(t, err)
	metrics, err := telemetry.NewMetrics(telemetry.GetMeter())
	require.NoError(t, err)

	log := logger.NewNop()
	repos := repository.NewMemoryRepositories()
	publisher := messaging.NewMemoryPublisher()
	store := blob.NewMemory()
	formulas := NewFormulaEngine()

	f := &fixture{
		ctx:        context.Background(),
		repos:      repos,
		publisher:  publisher,
		store:      store,
		translator: translator,
		renderer:   renderer,
	}
	f.events = NewEventService(repos.Events, repos.Attributes)
	f.attributes = NewAttributeService(repos.Attributes, formulas, translator)
	f.participations = NewParticipationService(repos, f.attributes, publisher, metrics, log)
	f.employees = NewEmployeeService(repos, f.attributes)
	f.payments = NewPaymentService(repos, f.attributes, formulas, publisher, metrics, log)
	f.invoices = NewInvoiceService(InvoiceDeps{
		Repositories: repos,
		Payments:     f.payments,
		Renderer:     renderer,
		Converter:    converter,
		Store:        store,
		Publisher:    publisher,
		Metrics:      metrics,
		Logger:       log,
		Config:       invoiceCfg,
	})
	f.attendance = NewAttendanceService(repos)
	f.comments = NewCommentService(repos)
	f.graph = NewGraphService(repos)
	f.profiles = NewProfileService(repos, f.attributes, f.payments, renderer, converter, metrics)
	f.exports = NewExportService(repos, f.attributes, f.payments, translator)
	f.migration = NewFilloutMigrationService(repos.Fillouts, repos.Attributes, log)
	return f
}

func cents(v int64) *int64 { return &v }

func intPtr(v int) *int { return &v }

func (f *fixture) createEvent(t *testing.T, price *int64, limit *int, attributeIDs ...string) *domain.Event {
	t.Helper()
	event, err := f.events.Create(f.ctx, admin, &dto.CreateEventRequest{
		Title:             "Sommerfreizeit",
		StartDate:         time.Date(2026, 7, 20, 0, 0, 0, 0, time.UTC),
		IsVisible:         true,
		IsActive:          true,
		Price:             price,
		ParticipantsLimit: limit,
		AttributeIDs:      attributeIDs,
	})
	require.NoError(t, err)
	return event
}

func (f *fixture) createAttribute(t *testing.T, req dto.AttributeRequest) *domain.Attribute {
	t.Helper()
	if req.FormTitle == "" {
		req.FormTitle = req.ManagementTitle
	}
	attr, err := f.attributes.Create(f.ctx, &req)
	require.NoError(t, err)
	return attr
}

func participantInput(first, last string) dto.ParticipantInput {
	return dto.ParticipantInput{
		NameFirst: first,
		NameLast:  last,
		Birthday:  "2014-03-04",
		Gender:    domain.GenderFemale,
	}
}

func registerRequest(participants ...dto.ParticipantInput) *dto.RegisterRequest {
	return &dto.RegisterRequest{
		ContactInput: dto.ContactInput{
			Salutation: "Frau",
			NameFirst:  "Maria",
			NameLast:   "Muster",
			Address:    domain.Address{Street: "Weg 2", Zip: "70173", City: "Stuttgart"},
			Email:      "maria@example.com",
			Phones:     []domain.Phone{{Number: "0711 123456"}},
		},
		Participants: participants,
	}
}

func (f *fixture) register(t *testing.T, eventID string, participants ...dto.ParticipantInput) *domain.Participation {
	t.Helper()
	participation, err := f.participations.Register(f.ctx, eventID, registerRequest(participants...))
	require.NoError(t, err)
	return participation
}

package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/theoboldt/juvem-sub001/internal/domain"
	"github.com/theoboldt/juvem-sub001/internal/dto"
	"github.com/theoboldt/juvem-sub001/internal/messaging"
	"github.com/theoboldt/juvem-sub001/internal/pdf"
	"github.com/theoboldt/juvem-sub001/internal/render"
	"github.com/theoboldt/juvem-sub001/internal/repository"
	"github.com/theoboldt/juvem-sub001/pkg/blob"
	"github.com/theoboldt/juvem-sub001/pkg/config"
	"github.com/theoboldt/juvem-sub001/pkg/logger"
	"github.com/theoboldt/juvem-sub001/pkg/telemetry"
)

// invoiceService implements InvoiceService
type invoiceService struct {
	repos     *repository.Repositories
	payments  PaymentService
	renderer  *render.Renderer
	converter pdf.Converter
	store     blob.Store
	publisher messaging.Publisher
	metrics   *telemetry.Metrics
	log       *logger.Logger
	cfg       config.InvoiceConfig
	now       func() time.Time
}

// InvoiceDeps groups the collaborators of the invoice service
type InvoiceDeps struct {
	Repositories *repository.Repositories
	Payments     PaymentService
	Renderer     *render.Renderer
	Converter    pdf.Converter
	Store        blob.Store
	Publisher    messaging.Publisher
	Metrics      *telemetry.Metrics
	Logger       *logger.Logger
	Config       config.InvoiceConfig
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(deps InvoiceDeps) InvoiceService {
	return &invoiceService{
		repos:     deps.Repositories,
		payments:  deps.Payments,
		renderer:  deps.Renderer,
		converter: deps.Converter,
		store:     deps.Store,
		publisher: deps.Publisher,
		metrics:   deps.Metrics,
		log:       deps.Logger,
		cfg:       deps.Config,
		now:       time.Now,
	}
}

// Generate renders and stores a new invoice of a participation
func (s *invoiceService) Generate(ctx context.Context, actor Actor, eventID string, req *dto.CreateInvoiceRequest) (*domain.Invoice, error) {
	ctx, span := telemetry.StartSpan(ctx, "invoice.generate")
	var err error
	defer func() { telemetry.EndSpan(span, err) }()

	event, err := requireEvent(ctx, s.repos.Events, eventID)
	if err != nil {
		return nil, err
	}
	participation, err := loadParticipation(ctx, s.repos, eventID, req.ParticipationID)
	if err != nil {
		return nil, err
	}
	summary, err := s.payments.ParticipationSummary(ctx, eventID, participation.ID)
	if err != nil {
		return nil, err
	}
	if summary.Totals.Price == nil {
		err = ErrNothingToInvoice
		return nil, err
	}

	seq, err := s.repos.Invoices.NextSequence(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	number := domain.FormatInvoiceNumber(now.Year(), seq)

	names := make(map[string]string, len(participation.Participants))
	for _, p := range participation.Participants {
		names[p.ID] = p.FullName()
	}
	view := &render.InvoiceView{
		Locale:           req.Locale,
		Number:           number,
		Date:             now,
		IssuerName:       s.cfg.IssuerName,
		IssuerAddress:    s.cfg.IssuerAddress,
		EventTitle:       event.Title,
		RecipientName:    participation.FullName(),
		RecipientAddress: participation.Address.String(),
		Total:            summary.Totals.Price,
		Paid:             summary.Totals.Paid,
		ToPay:            summary.Totals.ToPay,
	}
	for _, ps := range summary.Participants {
		view.Items = append(view.Items, render.InvoiceItem{
			Name:  names[ps.ParticipantID],
			Price: ps.Price,
			Paid:  ps.Paid,
			ToPay: ps.ToPay,
		})
	}

	started := time.Now()
	document, err := s.renderer.Invoice(view)
	if err != nil {
		return nil, err
	}
	contentType, extension, format := domain.ContentTypeHTML, "html", FormatHTML
	if s.cfg.PreferPDF && s.converter.Enabled() {
		converted, convErr := s.converter.Convert(ctx, number, document)
		if convErr != nil {
			s.log.WithContext(ctx).Warn("pdf conversion failed, storing html invoice",
				zap.String("number", number),
				zap.Error(convErr),
			)
		} else {
			document = converted
			contentType, extension, format = domain.ContentTypePDF, "pdf", FormatPDF
		}
	}
	s.metrics.DocumentRender.Record(ctx, time.Since(started).Seconds(), telemetry.DocumentAttrs("invoice", format)...)

	key := domain.InvoiceDocumentKey(event.ID, number, extension)
	if _, err = s.store.Put(ctx, key, bytes.NewReader(document), blob.PutOptions{
		ContentType: contentType,
		Metadata: map[string]string{
			"event_id":         event.ID,
			"participation_id": participation.ID,
			"number":           number,
		},
	}); err != nil {
		err = fmt.Errorf("failed to store invoice document: %w", err)
		return nil, err
	}

	invoice := &domain.Invoice{
		ID:              uuid.New().String(),
		ParticipationID: participation.ID,
		EventID:         event.ID,
		Number:          number,
		Sum:             *summary.Totals.Price,
		DocumentKey:     key,
		ContentType:     contentType,
		CreatedBy:       actor.UserID,
		CreatedAt:       now,
	}
	if err = s.repos.Invoices.Create(ctx, invoice); err != nil {
		// the blob is unreachable without its record
		if _, delErr := s.store.Delete(ctx, key); delErr != nil {
			s.log.WithContext(ctx).Warn("failed to remove orphaned invoice document", zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}

	s.metrics.InvoicesGenerated.Inc(ctx, telemetry.EventIDAttr(event.ID))
	s.log.WithContext(ctx).Info("invoice generated",
		zap.String("invoice_id", invoice.ID),
		zap.String("number", number),
		zap.Int64("sum", invoice.Sum),
		zap.String("content_type", contentType),
	)
	publish(ctx, s.log, s.publisher, &messaging.InvoiceCreatedEvent{
		EventType:       messaging.TypeInvoiceCreated,
		EventID:         event.ID,
		ParticipationID: participation.ID,
		InvoiceID:       invoice.ID,
		Number:          number,
		Sum:             invoice.Sum,
		DocumentKey:     key,
		Timestamp:       now,
	})

	return invoice, nil
}

// ListByEvent returns the invoices of an event, newest first
func (s *invoiceService) ListByEvent(ctx context.Context, eventID string) ([]*domain.Invoice, error) {
	if _, err := requireEvent(ctx, s.repos.Events, eventID); err != nil {
		return nil, err
	}
	return s.repos.Invoices.ListByEvent(ctx, eventID)
}

// ListByParticipation returns the invoices of a participation, newest first
func (s *invoiceService) ListByParticipation(ctx context.Context, eventID, participationID string) ([]*domain.Invoice, error) {
	if _, err := loadParticipation(ctx, s.repos, eventID, participationID); err != nil {
		return nil, err
	}
	return s.repos.Invoices.ListByParticipation(ctx, participationID)
}

// Latest returns the newest invoice of a participation
func (s *invoiceService) Latest(ctx context.Context, eventID, participationID string) (*domain.Invoice, error) {
	invoices, err := s.ListByParticipation(ctx, eventID, participationID)
	if err != nil {
		return nil, err
	}
	if len(invoices) == 0 {
		return nil, ErrInvoiceNotFound
	}
	return invoices[0], nil
}

// Download opens the stored document, callers must close the reader
func (s *invoiceService) Download(ctx context.Context, eventID, invoiceID string) (*domain.Invoice, io.ReadCloser, error) {
	if _, err := requireEvent(ctx, s.repos.Events, eventID); err != nil {
		return nil, nil, err
	}
	invoice, err := s.repos.Invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, nil, err
	}
	if invoice == nil || invoice.EventID != eventID {
		return nil, nil, ErrInvoiceNotFound
	}
	_, rc, err := s.store.Get(ctx, invoice.DocumentKey)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: document %s missing", ErrInvoiceNotFound, invoice.DocumentKey)
		}
		return nil, nil, err
	}
	return invoice, rc, nil
}

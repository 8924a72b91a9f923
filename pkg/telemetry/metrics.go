package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Counter wraps an OTel counter
type Counter struct {
	counter metric.Int64Counter
}

// Add increments the counter by the given value
func (c *Counter) Add(ctx context.Context, value int64, attrs ...attribute.KeyValue) {
	c.counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

// Inc increments the counter by 1
func (c *Counter) Inc(ctx context.Context, attrs ...attribute.KeyValue) {
	c.counter.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// Histogram wraps an OTel histogram
type Histogram struct {
	histogram metric.Float64Histogram
}

// Record records a value in the histogram
func (h *Histogram) Record(ctx context.Context, value float64, attrs ...attribute.KeyValue) {
	h.histogram.Record(ctx, value, metric.WithAttributes(attrs...))
}

// Metrics are the business counters of the service
type Metrics struct {
	Registrations     *Counter
	StatusChanges     *Counter
	PaymentsRecorded  *Counter
	PaymentAmount     *Counter
	InvoicesGenerated *Counter
	DocumentRender    *Histogram
}

// NewMetrics registers all instruments on meter
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	counter := func(name, desc, unit string) (*Counter, error) {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
		if err != nil {
			return nil, err
		}
		return &Counter{counter: c}, nil
	}

	m := &Metrics{}
	var err error
	if m.Registrations, err = counter("registrations_total", "Public registrations accepted", "{participation}"); err != nil {
		return nil, err
	}
	if m.StatusChanges, err = counter("participant_status_changes_total", "Participant status transitions", "{transition}"); err != nil {
		return nil, err
	}
	if m.PaymentsRecorded, err = counter("payments_recorded_total", "Payments and refunds booked", "{payment}"); err != nil {
		return nil, err
	}
	if m.PaymentAmount, err = counter("payment_amount_cents_total", "Sum of booked payment amounts", "{cent}"); err != nil {
		return nil, err
	}
	if m.InvoicesGenerated, err = counter("invoices_generated_total", "Invoices generated", "{invoice}"); err != nil {
		return nil, err
	}

	h, err := meter.Float64Histogram("document_render_duration_seconds",
		metric.WithDescription("Time spent rendering invoices and profiles"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10),
	)
	if err != nil {
		return nil, err
	}
	m.DocumentRender = &Histogram{histogram: h}

	return m, nil
}

// Common attribute keys
const (
	AttrEventID        = "event.id"
	AttrParticipation  = "participation.id"
	AttrParticipant    = "participant.id"
	AttrStatusFrom     = "status.from"
	AttrStatusTo       = "status.to"
	AttrDocumentKind   = "document.kind"
	AttrDocumentFormat = "document.format"
)

func EventIDAttr(id string) attribute.KeyValue {
	return attribute.String(AttrEventID, id)
}

func ParticipationAttr(id string) attribute.KeyValue {
	return attribute.String(AttrParticipation, id)
}

func ParticipantAttr(id string) attribute.KeyValue {
	return attribute.String(AttrParticipant, id)
}

func StatusTransitionAttrs(from, to string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrStatusFrom, from),
		attribute.String(AttrStatusTo, to),
	}
}

func DocumentAttrs(kind, format string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrDocumentKind, kind),
		attribute.String(AttrDocumentFormat, format),
	}
}

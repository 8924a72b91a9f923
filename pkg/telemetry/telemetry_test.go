package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInit_Disabled(t *testing.T) {
	ctx := context.Background()

	tel, err := Init(ctx, nil)
	require.NoError(t, err)
	assert.NotNil(t, tel.Tracer())
	assert.NotNil(t, tel.Meter())

	cfg := &Config{Enabled: false, ServiceName: "test-service"}
	tel, err = Init(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg, tel.config)
	assert.Same(t, tel, Get())

	assert.NoError(t, Shutdown(ctx))
}

func TestStartSpan_RecordsError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	globalTelemetry = &Telemetry{tracer: tp.Tracer("test")}
	t.Cleanup(func() { globalTelemetry = nil })

	ctx, span := StartSpan(context.Background(), "PaymentService.RecordPayment")
	assert.NotEmpty(t, GetTraceID(ctx))
	SetSpanAttributes(ctx, EventIDAttr("e1"))
	EndSpan(span, errors.New("boom"))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "PaymentService.RecordPayment", spans[0].Name())
	assert.Len(t, spans[0].Events(), 1)
}

func TestGetTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
}

func TestNewMetrics_Counts(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.Registrations.Inc(ctx, EventIDAttr("e1"))
	m.Registrations.Inc(ctx, EventIDAttr("e1"))
	m.PaymentAmount.Add(ctx, 2500)
	m.DocumentRender.Record(ctx, 0.2, DocumentAttrs("invoice", "html")...)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, metric := range sm.Metrics {
			if sum, ok := metric.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					sums[metric.Name] += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(2), sums["registrations_total"])
	assert.Equal(t, int64(2500), sums["payment_amount_cents_total"])
}

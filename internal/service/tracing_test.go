package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/theoboldt/juvem-sub001/internal/domain"
	"github.com/theoboldt/juvem-sub001/internal/dto"
	"github.com/theoboldt/juvem-sub001/pkg/telemetry"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })
	return recorder
}

func spanAttr(span sdktrace.ReadOnlySpan, key attribute.Key) string {
	for _, kv := range span.Attributes() {
		if kv.Key == key {
			return kv.Value.AsString()
		}
	}
	return ""
}

func endedSpan(t *testing.T, recorder *tracetest.SpanRecorder, name string) sdktrace.ReadOnlySpan {
	t.Helper()
	for _, span := range recorder.Ended() {
		if span.Name() == name {
			return span
		}
	}
	require.Failf(t, "span not recorded", "%s", name)
	return nil
}

func TestChangeStatus_SpanAttributes(t *testing.T) {
	recorder := recordSpans(t)
	f := newFixture(t)
	event := f.createEvent(t, nil, nil)
	participant := f.register(t, event.ID, participantInput("Lena", "Muster")).Participants[0]

	_, err := f.participations.ChangeStatus(f.ctx, admin, event.ID, participant.ID, &dto.ChangeStatusRequest{Status: domain.StatusConfirmed})
	require.NoError(t, err)

	span := endedSpan(t, recorder, "participant.change_status")
	assert.Equal(t, event.ID, spanAttr(span, telemetry.AttrEventID))
	assert.Equal(t, participant.ID, spanAttr(span, telemetry.AttrParticipant))
}

func TestProfileRender_SpanAttributes(t *testing.T) {
	recorder := recordSpans(t)
	f := newFixture(t)
	event := f.createEvent(t, nil, nil)
	participant := f.register(t, event.ID, participantInput("Lena", "Muster")).Participants[0]

	_, err := f.profiles.Render(f.ctx, event.ID, participant.ID, "de", FormatHTML)
	require.NoError(t, err)

	span := endedSpan(t, recorder, "participant.profile")
	assert.Equal(t, participant.ID, spanAttr(span, telemetry.AttrParticipant))
}

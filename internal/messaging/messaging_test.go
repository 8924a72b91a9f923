package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
	closed  bool
}

func (f *fakeProducer) ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		f.records = append(f.records, r)
		results = append(results, kgo.ProduceResult{Record: r, Err: f.err})
	}
	return results
}

func (f *fakeProducer) Close() { f.closed = true }

func TestKafkaPublisher_Publish(t *testing.T) {
	fake := &fakeProducer{}
	p := newKafkaPublisher(fake, "juvem.events")

	event := &ParticipantStatusChangedEvent{
		EventType:     TypeParticipantStatusChanged,
		EventID:       "e1",
		ParticipantID: "a1",
		FromStatus:    "unconfirmed",
		ToStatus:      "confirmed",
		Timestamp:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, p.Publish(context.Background(), event))

	require.Len(t, fake.records, 1)
	record := fake.records[0]
	assert.Equal(t, "juvem.events", record.Topic)
	assert.Equal(t, "e1", string(record.Key))
	require.Len(t, record.Headers, 1)
	assert.Equal(t, TypeParticipantStatusChanged, string(record.Headers[0].Value))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(record.Value, &decoded))
	assert.Equal(t, "confirmed", decoded["to_status"])

	p.Close()
	assert.True(t, fake.closed)
}

func TestKafkaPublisher_PublishError(t *testing.T) {
	fake := &fakeProducer{err: errors.New("broker down")}
	p := newKafkaPublisher(fake, "juvem.events")

	err := p.Publish(context.Background(), &InvoiceCreatedEvent{EventID: "e1"})
	assert.ErrorContains(t, err, "broker down")
}

func TestNewKafkaPublisher_RequiresBrokersAndTopic(t *testing.T) {
	_, err := NewKafkaPublisher(context.Background(), KafkaConfig{Topic: "t"})
	assert.Error(t, err)

	_, err = NewKafkaPublisher(context.Background(), KafkaConfig{Brokers: []string{"localhost:9092"}})
	assert.Error(t, err)
}

func TestMemoryPublisher(t *testing.T) {
	p := NewMemoryPublisher()
	ctx := context.Background()

	require.NoError(t, p.Publish(ctx, &PaymentRecordedEvent{EventID: "e1"}))
	require.NoError(t, p.Publish(ctx, &InvoiceCreatedEvent{EventID: "e1"}))

	assert.Len(t, p.Events(), 2)
	assert.Len(t, p.OfType(TypeInvoiceCreated), 1)

	p.FailWith(errors.New("down"))
	assert.Error(t, p.Publish(ctx, &PaymentRecordedEvent{}))
	assert.Len(t, p.Events(), 2)
}

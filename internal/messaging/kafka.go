package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

const headerEventType = "event_type"

// KafkaConfig holds producer settings
type KafkaConfig struct {
	Brokers  []string
	ClientID string
	Topic    string
}

// producer is the part of *kgo.Client used for publishing
type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// KafkaPublisher publishes JSON encoded events to a single topic
type KafkaPublisher struct {
	client producer
	topic  string
	now    func() time.Time
}

// NewKafkaPublisher connects a franz-go producer to the brokers
func NewKafkaPublisher(ctx context.Context, cfg KafkaConfig) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: no brokers configured")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka: no topic configured")
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerLinger(5 * time.Millisecond),
	}
	if cfg.ClientID != "" {
		opts = append(opts, kgo.ClientID(cfg.ClientID))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}
	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to reach kafka brokers: %w", err)
	}

	return newKafkaPublisher(client, cfg.Topic), nil
}

func newKafkaPublisher(client producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{client: client, topic: topic, now: time.Now}
}

// Publish encodes the event as JSON and produces it synchronously
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event.Type(), err)
	}

	record := &kgo.Record{
		Topic:     p.topic,
		Key:       []byte(event.Key()),
		Value:     value,
		Timestamp: p.now(),
		Headers: []kgo.RecordHeader{
			{Key: headerEventType, Value: []byte(event.Type())},
		},
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type(), err)
	}
	return nil
}

// Close flushes buffered records and closes the client
func (p *KafkaPublisher) Close() {
	p.client.Close()
}

// Package messaging publishes domain events to Kafka.
package messaging

import (
	"context"
	"sync"
)

// Publisher delivers domain events
type Publisher interface {
	// Publish sends a single event and waits for the broker acknowledgement
	Publish(ctx context.Context, event Event) error
	// Close flushes and releases the underlying client
	Close()
}

// NoopPublisher drops every event
type NoopPublisher struct{}

// NewNoopPublisher creates a publisher for deployments without Kafka
func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

func (p *NoopPublisher) Publish(ctx context.Context, event Event) error { return nil }

func (p *NoopPublisher) Close() {}

// MemoryPublisher keeps published events in memory
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
}

// NewMemoryPublisher creates an empty in-memory publisher
func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

// FailWith makes every following Publish return err
func (p *MemoryPublisher) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

func (p *MemoryPublisher) Publish(ctx context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *MemoryPublisher) Close() {}

// Events returns the published events in order
func (p *MemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

// OfType returns the published events of one type
func (p *MemoryPublisher) OfType(eventType string) []Event {
	out := make([]Event, 0)
	for _, e := range p.Events() {
		if e.Type() == eventType {
			out = append(out, e)
		}
	}
	return out
}

package messaging

import (
	"time"
)

// Event types published on the domain topic
const (
	TypeParticipationCreated     = "participation.created"
	TypeParticipantStatusChanged = "participant.status_changed"
	TypePaymentRecorded          = "payment.recorded"
	TypeInvoiceCreated           = "invoice.created"
)

// Event is a domain event that can be published
type Event interface {
	// Key returns the Kafka message key for partitioning
	Key() string
	// Type returns the event type
	Type() string
}

// ParticipationCreatedEvent is published after a public registration was stored
type ParticipationCreatedEvent struct {
	EventType       string    `json:"event_type"`
	EventID         string    `json:"event_id"`
	ParticipationID string    `json:"participation_id"`
	ParticipantIDs  []string  `json:"participant_ids"`
	Email           string    `json:"email"`
	Timestamp       time.Time `json:"timestamp"`
}

// Key returns the Kafka message key for partitioning
func (e *ParticipationCreatedEvent) Key() string { return e.EventID }

func (e *ParticipationCreatedEvent) Type() string { return TypeParticipationCreated }

// ParticipantStatusChangedEvent is published after every status transition
type ParticipantStatusChangedEvent struct {
	EventType       string    `json:"event_type"`
	EventID         string    `json:"event_id"`
	ParticipationID string    `json:"participation_id"`
	ParticipantID   string    `json:"participant_id"`
	FromStatus      string    `json:"from_status"`
	ToStatus        string    `json:"to_status"`
	Reason          string    `json:"reason,omitempty"`
	ChangedBy       string    `json:"changed_by,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// Key returns the Kafka message key for partitioning
func (e *ParticipantStatusChangedEvent) Key() string { return e.EventID }

func (e *ParticipantStatusChangedEvent) Type() string { return TypeParticipantStatusChanged }

// PaymentRecordedEvent is published when a payment or refund was booked
type PaymentRecordedEvent struct {
	EventType       string           `json:"event_type"`
	EventID         string           `json:"event_id"`
	ParticipationID string           `json:"participation_id"`
	Amount          int64            `json:"amount"`
	Bookings        map[string]int64 `json:"bookings"` // participant ID -> cents
	RecordedBy      string           `json:"recorded_by,omitempty"`
	Timestamp       time.Time        `json:"timestamp"`
}

// Key returns the Kafka message key for partitioning
func (e *PaymentRecordedEvent) Key() string { return e.EventID }

func (e *PaymentRecordedEvent) Type() string { return TypePaymentRecorded }

// InvoiceCreatedEvent is published after an invoice document was stored
type InvoiceCreatedEvent struct {
	EventType       string    `json:"event_type"`
	EventID         string    `json:"event_id"`
	ParticipationID string    `json:"participation_id"`
	InvoiceID       string    `json:"invoice_id"`
	Number          string    `json:"number"`
	Sum             int64     `json:"sum"`
	DocumentKey     string    `json:"document_key"`
	Timestamp       time.Time `json:"timestamp"`
}

// Key returns the Kafka message key for partitioning
func (e *InvoiceCreatedEvent) Key() string { return e.EventID }

func (e *InvoiceCreatedEvent) Type() string { return TypeInvoiceCreated }

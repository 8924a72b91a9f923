package dto

import (
	"strings"

	"github.com/theoboldt/juvem-sub001/internal/domain"
)

// SetPriceRequest overrides the price of several participants
type SetPriceRequest struct {
	ParticipantIDs []string `json:"participant_ids"`
	Value          *int64   `json:"value"` // cents
	Description    string   `json:"description"`
}

// Validate validates the SetPriceRequest
func (r *SetPriceRequest) Validate() (bool, string) {
	if len(r.ParticipantIDs) == 0 {
		return false, "At least one participant is required"
	}
	if r.Value == nil {
		return false, "Value is required"
	}
	if *r.Value < 0 {
		return false, "Price must not be negative"
	}
	return true, ""
}

// RecordPaymentRequest books a payment or refund on a participation
type RecordPaymentRequest struct {
	Amount      int64  `json:"amount"` // cents, negative for refunds
	Description string `json:"description"`
}

// Validate validates the RecordPaymentRequest
func (r *RecordPaymentRequest) Validate() (bool, string) {
	if r.Amount == 0 {
		return false, "Amount must not be zero"
	}
	if len(strings.TrimSpace(r.Description)) > 1000 {
		return false, "Description must not exceed 1000 characters"
	}
	return true, ""
}

// ParticipationPayments is the price state of a participation
type ParticipationPayments struct {
	ParticipationID string                            `json:"participation_id"`
	Totals          *domain.PriceTotals               `json:"totals"`
	Participants    []*domain.PriceSummary            `json:"participants"`
	Events          map[string][]*domain.PaymentEvent `json:"events,omitempty"`
}

// EventPayments is the price state of a whole event
type EventPayments struct {
	EventID        string              `json:"event_id"`
	Totals         *domain.PriceTotals `json:"totals"`
	Participations int                 `json:"participations"`
}

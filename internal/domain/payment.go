package domain

import "time"

// PaymentType distinguishes price overrides from money movements
type PaymentType string

const (
	PaymentTypePriceSet PaymentType = "price_set"
	PaymentTypePayment  PaymentType = "payment"
)

// IsValid reports whether the payment type is known
func (t PaymentType) IsValid() bool {
	return t == PaymentTypePriceSet || t == PaymentTypePayment
}

// PaymentEvent is one booking on a participant's account
type PaymentEvent struct {
	ID            string      `json:"id"`
	ParticipantID string      `json:"participant_id"`
	Type          PaymentType `json:"type"`
	Value         int64       `json:"value"` // cents, negative payments are refunds
	Description   string      `json:"description"`
	CreatedBy     string      `json:"created_by,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
}

// PriceSummary is the price state of one participant
type PriceSummary struct {
	ParticipantID string `json:"participant_id"`
	Price         *int64 `json:"price"` // nil when no price is set
	Paid          int64  `json:"paid"`
	ToPay         *int64 `json:"to_pay"`
}

// NewPriceSummary builds a summary from a price and the booked payments
func NewPriceSummary(participantID string, price *int64, paid int64) *PriceSummary {
	summary := &PriceSummary{ParticipantID: participantID, Price: price, Paid: paid}
	if price != nil {
		toPay := *price - paid
		summary.ToPay = &toPay
	}
	return summary
}

// PriceTotals aggregates summaries of several participants
type PriceTotals struct {
	Price        *int64 `json:"price"` // nil when no participant has a price
	Paid         int64  `json:"paid"`
	ToPay        *int64 `json:"to_pay"`
	Participants int    `json:"participants"`
	WithoutPrice int    `json:"without_price"`
}

// SumSummaries adds up participant summaries
func SumSummaries(summaries []*PriceSummary) *PriceTotals {
	totals := &PriceTotals{Participants: len(summaries)}
	var price, toPay int64
	priced := false
	for _, s := range summaries {
		totals.Paid += s.Paid
		if s.Price == nil {
			totals.WithoutPrice++
			continue
		}
		priced = true
		price += *s.Price
		toPay += *s.ToPay
	}
	if priced {
		totals.Price = &price
		totals.ToPay = &toPay
	}
	return totals
}

// LatestPriceSet returns the newest price_set event, ordered by CreatedAt then ID
func LatestPriceSet(events []*PaymentEvent) *PaymentEvent {
	var latest *PaymentEvent
	for _, e := range events {
		if e.Type != PaymentTypePriceSet {
			continue
		}
		if latest == nil || e.CreatedAt.After(latest.CreatedAt) ||
			(e.CreatedAt.Equal(latest.CreatedAt) && e.ID > latest.ID) {
			latest = e
		}
	}
	return latest
}

// SumPayments adds the values of all payment events
func SumPayments(events []*PaymentEvent) int64 {
	var sum int64
	for _, e := range events {
		if e.Type == PaymentTypePayment {
			sum += e.Value
		}
	}
	return sum
}

// HasPayments reports whether at least one payment was booked
func HasPayments(events []*PaymentEvent) bool {
	for _, e := range events {
		if e.Type == PaymentTypePayment {
			return true
		}
	}
	return false
}

// ClampPrice returns 0 for negative prices
func ClampPrice(cents int64) int64 {
	if cents < 0 {
		return 0
	}
	return cents
}

package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatestPriceSet(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	events := []*PaymentEvent{
		{ID: "1", Type: PaymentTypePriceSet, Value: 1000, CreatedAt: base},
		{ID: "3", Type: PaymentTypePriceSet, Value: 3000, CreatedAt: base.Add(time.Hour)},
		{ID: "2", Type: PaymentTypePriceSet, Value: 2000, CreatedAt: base.Add(time.Hour)},
		{ID: "4", Type: PaymentTypePayment, Value: 9000, CreatedAt: base.Add(2 * time.Hour)},
	}

	latest := LatestPriceSet(events)
	require.NotNil(t, latest)
	assert.Equal(t, "3", latest.ID)
	assert.Nil(t, LatestPriceSet(events[3:]))
}

func TestSumPayments(t *testing.T) {
	events := []*PaymentEvent{
		{Type: PaymentTypePayment, Value: 5000},
		{Type: PaymentTypePayment, Value: -1500},
		{Type: PaymentTypePriceSet, Value: 12000},
	}
	assert.Equal(t, int64(3500), SumPayments(events))
	assert.True(t, HasPayments(events))
	assert.False(t, HasPayments(events[2:]))
}

func TestSumSummaries(t *testing.T) {
	price := int64(10000)
	summaries := []*PriceSummary{
		NewPriceSummary("a", &price, 4000),
		NewPriceSummary("b", nil, 500),
	}

	totals := SumSummaries(summaries)
	require.NotNil(t, totals.Price)
	assert.Equal(t, int64(10000), *totals.Price)
	assert.Equal(t, int64(4500), totals.Paid)
	assert.Equal(t, int64(6000), *totals.ToPay)
	assert.Equal(t, 2, totals.Participants)
	assert.Equal(t, 1, totals.WithoutPrice)

	empty := SumSummaries([]*PriceSummary{NewPriceSummary("c", nil, 0)})
	assert.Nil(t, empty.Price)
	assert.Nil(t, empty.ToPay)
}

func TestFormatInvoiceNumber(t *testing.T) {
	assert.Equal(t, "RE-2024-00042", FormatInvoiceNumber(2024, 42))
	assert.Equal(t, "invoices/ev-1/RE-2024-00042.pdf", InvoiceDocumentKey("ev-1", "RE-2024-00042", "pdf"))
	assert.Equal(t, int64(0), ClampPrice(-5))
}

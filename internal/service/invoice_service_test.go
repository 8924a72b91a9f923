package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoboldt/juvem-sub001/internal/domain"
	"github.com/theoboldt/juvem-sub001/internal/dto"
	"github.com/theoboldt/juvem-sub001/internal/messaging"
	"github.com/theoboldt/juvem-sub001/pkg/config"
)

type fakeConverter struct {
	err   error
	calls int
}

func (c *fakeConverter) Enabled() bool { return true }

func (c *fakeConverter) Convert(ctx context.Context, name string, html []byte) ([]byte, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return []byte("%PDF-1.7 " + name), nil
}

func fixInvoiceClock(f *fixture) {
	f.invoices.(*invoiceService).now = func() time.Time {
		return time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	}
}

func readAll(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func TestInvoiceService_Generate(t *testing.T) {
	f := newFixture(t)
	fixInvoiceClock(f)
	pe := setupPricedEvent(t, f)

	invoice, err := f.invoices.Generate(f.ctx, admin, pe.event.ID, &dto.CreateInvoiceRequest{ParticipationID: pe.partion.ID})
	require.NoError(t, err)
	assert.Equal(t, "RE-2026-00001", invoice.Number)
	assert.Equal(t, int64(23500), invoice.Sum)
	assert.Equal(t, domain.ContentTypeHTML, invoice.ContentType)
	assert.Equal(t, "invoices/"+pe.event.ID+"/RE-2026-00001.html", invoice.DocumentKey)

	second, err := f.invoices.Generate(f.ctx, admin, pe.event.ID, &dto.CreateInvoiceRequest{ParticipationID: pe.partion.ID})
	require.NoError(t, err)
	assert.Equal(t, "RE-2026-00002", second.Number)

	latest, err := f.invoices.Latest(f.ctx, pe.event.ID, pe.partion.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	got, rc, err := f.invoices.Download(f.ctx, pe.event.ID, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.ID, got.ID)
	body := readAll(t, rc)
	assert.Contains(t, body, "RE-2026-00001")
	assert.Contains(t, body, "Lena Muster")
	assert.Contains(t, body, "235,00 EUR")

	created := f.publisher.OfType(messaging.TypeInvoiceCreated)
	require.Len(t, created, 2)
	assert.Equal(t, invoice.ID, created[0].(*messaging.InvoiceCreatedEvent).InvoiceID)
}

func TestInvoiceService_NothingToInvoice(t *testing.T) {
	f := newFixture(t)
	event := f.createEvent(t, nil, nil)
	participation := f.register(t, event.ID, participantInput("Lena", "Muster"))

	_, err := f.invoices.Generate(f.ctx, admin, event.ID, &dto.CreateInvoiceRequest{ParticipationID: participation.ID})
	assert.ErrorIs(t, err, ErrNothingToInvoice)

	_, err = f.invoices.Latest(f.ctx, event.ID, participation.ID)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestInvoiceService_PDF(t *testing.T) {
	converter := &fakeConverter{}
	f := newFixtureWithConverter(t, converter, config.InvoiceConfig{Currency: "EUR", PreferPDF: true})
	fixInvoiceClock(f)
	pe := setupPricedEvent(t, f)

	invoice, err := f.invoices.Generate(f.ctx, admin, pe.event.ID, &dto.CreateInvoiceRequest{ParticipationID: pe.partion.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.ContentTypePDF, invoice.ContentType)
	assert.Equal(t, "invoices/"+pe.event.ID+"/RE-2026-00001.pdf", invoice.DocumentKey)

	_, rc, err := f.invoices.Download(f.ctx, pe.event.ID, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 RE-2026-00001", readAll(t, rc))
}

func TestInvoiceService_PDFFailureFallsBackToHTML(t *testing.T) {
	converter := &fakeConverter{err: errors.New("converter down")}
	f := newFixtureWithConverter(t, converter, config.InvoiceConfig{Currency: "EUR", PreferPDF: true})
	pe := setupPricedEvent(t, f)

	invoice, err := f.invoices.Generate(f.ctx, admin, pe.event.ID, &dto.CreateInvoiceRequest{ParticipationID: pe.partion.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, converter.calls)
	assert.Equal(t, domain.ContentTypeHTML, invoice.ContentType)
}

func TestInvoiceService_DownloadOtherEvent(t *testing.T) {
	f := newFixture(t)
	pe := setupPricedEvent(t, f)
	other := f.createEvent(t, nil, nil)

	invoice, err := f.invoices.Generate(f.ctx, admin, pe.event.ID, &dto.CreateInvoiceRequest{ParticipationID: pe.partion.ID})
	require.NoError(t, err)

	_, _, err = f.invoices.Download(f.ctx, other.ID, invoice.ID)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}

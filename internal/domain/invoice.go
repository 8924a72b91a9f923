package domain

import (
	"fmt"
	"time"
)

// Invoice is a generated billing document for a participation
type Invoice struct {
	ID              string    `json:"id"`
	ParticipationID string    `json:"participation_id"`
	EventID         string    `json:"event_id"`
	Number          string    `json:"number"`
	Sum             int64     `json:"sum"` // cents
	DocumentKey     string    `json:"document_key"`
	ContentType     string    `json:"content_type"`
	CreatedBy       string    `json:"created_by,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Document content types
const (
	ContentTypeHTML = "text/html; charset=utf-8"
	ContentTypePDF  = "application/pdf"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// FormatInvoiceNumber renders RE-{YYYY}-{seq:05d}
func FormatInvoiceNumber(year, seq int) string {
	return fmt.Sprintf("RE-%04d-%05d", year, seq)
}

// InvoiceDocumentKey returns the blob key of an invoice document
func InvoiceDocumentKey(eventID, number, extension string) string {
	return fmt.Sprintf("invoices/%s/%s.%s", eventID, number, extension)
}

// FileName returns the download name of the invoice document
func (i *Invoice) FileName() string {
	if i.ContentType == ContentTypePDF {
		return i.Number + ".pdf"
	}
	return i.Number + ".html"
}

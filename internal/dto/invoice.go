package dto

// CreateInvoiceRequest represents a request to generate an invoice
type CreateInvoiceRequest struct {
	ParticipationID string `json:"participation_id" binding:"required"`
	Locale          string `json:"locale"`
}

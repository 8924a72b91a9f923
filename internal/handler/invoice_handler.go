package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/theoboldt/juvem-sub001/internal/dto"
	"github.com/theoboldt/juvem-sub001/internal/service"
	"github.com/theoboldt/juvem-sub001/pkg/logger"
	"github.com/theoboldt/juvem-sub001/pkg/response"
)

// InvoiceHandler handles invoice generation and downloads
type InvoiceHandler struct {
	invoiceService service.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// List handles GET /admin/events/:eid/invoices[?participation_id=]
func (h *InvoiceHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	eventID := c.Param("eid")

	var err error
	var invoices interface{}
	if pid := c.Query("participation_id"); pid != "" {
		invoices, err = h.invoiceService.ListByParticipation(ctx, eventID, pid)
	} else {
		invoices, err = h.invoiceService.ListByEvent(ctx, eventID)
	}
	if err != nil {
		writeError(c, err, "Failed to list invoices")
		return
	}
	c.JSON(http.StatusOK, response.Success(invoices))
}

// Create handles POST /admin/events/:eid/invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req dto.CreateInvoiceRequest
	if !bindJSON(c, &req) {
		return
	}
	invoice, err := h.invoiceService.Generate(c.Request.Context(), actorFrom(c), c.Param("eid"), &req)
	if err != nil {
		writeError(c, err, "Failed to generate invoice")
		return
	}
	c.JSON(http.StatusCreated, response.Success(invoice))
}

// Download handles GET /admin/events/:eid/invoices/:iid/download
func (h *InvoiceHandler) Download(c *gin.Context) {
	invoice, body, err := h.invoiceService.Download(c.Request.Context(), c.Param("eid"), c.Param("iid"))
	if err != nil {
		writeError(c, err, "Failed to download invoice")
		return
	}
	defer body.Close()

	c.Header("Content-Disposition", `attachment; filename="`+invoice.FileName()+`"`)
	c.Header("Content-Type", invoice.ContentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, body); err != nil {
		logger.Get().WithContext(c.Request.Context()).Warn("invoice download interrupted",
			zap.String("invoice_id", invoice.ID), zap.Error(err))
	}
}

// Latest handles GET /admin/events/:eid/participations/:pid/invoices/latest
func (h *InvoiceHandler) Latest(c *gin.Context) {
	invoice, err := h.invoiceService.Latest(c.Request.Context(), c.Param("eid"), c.Param("pid"))
	if err != nil {
		writeError(c, err, "Failed to load invoice")
		return
	}
	c.JSON(http.StatusOK, response.Success(invoice))
}

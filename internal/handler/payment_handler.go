package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/theoboldt/juvem-sub001/internal/dto"
	"github.com/theoboldt/juvem-sub001/internal/service"
	"github.com/theoboldt/juvem-sub001/pkg/response"
)

// PaymentHandler handles prices and payment bookings
type PaymentHandler struct {
	paymentService service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// EventSummary handles GET /admin/events/:eid/payments/summary
func (h *PaymentHandler) EventSummary(c *gin.Context) {
	summary, err := h.paymentService.EventSummary(c.Request.Context(), c.Param("eid"))
	if err != nil {
		writeError(c, err, "Failed to summarize payments")
		return
	}
	c.JSON(http.StatusOK, response.Success(summary))
}

// ParticipationSummary handles GET /admin/events/:eid/participations/:pid/payments
func (h *PaymentHandler) ParticipationSummary(c *gin.Context) {
	summary, err := h.paymentService.ParticipationSummary(c.Request.Context(), c.Param("eid"), c.Param("pid"))
	if err != nil {
		writeError(c, err, "Failed to summarize payments")
		return
	}
	c.JSON(http.StatusOK, response.Success(summary))
}

// ParticipantSummary handles GET /admin/events/:eid/participants/:aid/payments
func (h *PaymentHandler) ParticipantSummary(c *gin.Context) {
	summary, events, err := h.paymentService.ParticipantSummary(c.Request.Context(), c.Param("eid"), c.Param("aid"))
	if err != nil {
		writeError(c, err, "Failed to summarize payments")
		return
	}
	c.JSON(http.StatusOK, response.Success(gin.H{"summary": summary, "events": events}))
}

// RecordPayment handles POST /admin/events/:eid/participations/:pid/payments
func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	var req dto.RecordPaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	if valid, msg := req.Validate(); !valid {
		c.JSON(http.StatusBadRequest, response.BadRequest(msg))
		return
	}
	events, err := h.paymentService.RecordPayment(c.Request.Context(), actorFrom(c), c.Param("eid"), c.Param("pid"), &req)
	if err != nil {
		writeError(c, err, "Failed to record payment")
		return
	}
	c.JSON(http.StatusCreated, response.Success(events))
}

// SetPrice handles POST /admin/events/:eid/prices
func (h *PaymentHandler) SetPrice(c *gin.Context) {
	var req dto.SetPriceRequest
	if !bindJSON(c, &req) {
		return
	}
	if valid, msg := req.Validate(); !valid {
		c.JSON(http.StatusBadRequest, response.BadRequest(msg))
		return
	}
	events, err := h.paymentService.SetPrice(c.Request.Context(), actorFrom(c), c.Param("eid"), &req)
	if err != nil {
		writeError(c, err, "Failed to set price")
		return
	}
	c.JSON(http.StatusCreated, response.Success(events))
}

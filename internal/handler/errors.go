package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/theoboldt/juvem-sub001/internal/service"
	"github.com/theoboldt/juvem-sub001/pkg/logger"
	"github.com/theoboldt/juvem-sub001/pkg/response"
)

var notFoundErrors = []error{
	service.ErrEventNotFound,
	service.ErrParticipationNotFound,
	service.ErrParticipantNotFound,
	service.ErrEmployeeNotFound,
	service.ErrAttributeNotFound,
	service.ErrOptionNotFound,
	service.ErrInvoiceNotFound,
	service.ErrAttendanceListNotFound,
	service.ErrColumnNotFound,
	service.ErrChoiceNotFound,
	service.ErrCommentNotFound,
}

// writeError maps service errors onto the response envelope. Unknown errors
// are logged and answered with fallback as message.
func writeError(c *gin.Context, err error, fallback string) {
	var validation *service.ValidationError
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, response.ValidationFailed(validation.Fields))
		return
	case errors.Is(err, service.ErrRegistrationClosed):
		c.JSON(http.StatusGone, response.Error(response.ErrCodeRegistrationClosed, err.Error()))
		return
	case errors.Is(err, service.ErrCapacityExceeded):
		c.JSON(http.StatusConflict, response.Conflict("", err.Error()))
		return
	case errors.Is(err, service.ErrInvalidStatusTransition):
		c.JSON(http.StatusConflict, response.Conflict(response.ErrCodeInvalidStatusTransition, err.Error()))
		return
	case errors.Is(err, service.ErrNotDeleted):
		c.JSON(http.StatusConflict, response.Conflict("", err.Error()))
		return
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, response.Forbidden(err.Error()))
		return
	case errors.Is(err, service.ErrNothingToInvoice):
		c.JSON(http.StatusUnprocessableEntity, response.Error(response.ErrCodeNothingToInvoice, err.Error()))
		return
	case errors.Is(err, service.ErrInvalidFormula):
		c.JSON(http.StatusUnprocessableEntity, response.Error(response.ErrCodeInvalidFormula, err.Error()))
		return
	case errors.Is(err, service.ErrPDFUnavailable):
		c.JSON(http.StatusServiceUnavailable, response.ServiceUnavailable(err.Error()))
		return
	}
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			c.JSON(http.StatusNotFound, response.NotFound(target.Error()))
			return
		}
	}

	logger.Get().WithContext(c.Request.Context()).Error(fallback, zap.Error(err))
	c.JSON(http.StatusInternalServerError, response.InternalError(fallback))
}

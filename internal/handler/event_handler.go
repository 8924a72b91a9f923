package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/theoboldt/juvem-sub001/internal/dto"
	"github.com/theoboldt/juvem-sub001/internal/service"
	"github.com/theoboldt/juvem-sub001/pkg/response"
)

// EventHandler handles event-related HTTP requests
type EventHandler struct {
	eventService service.EventService
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(eventService service.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// ListPublic handles GET /public/events - lists visible and active events
func (h *EventHandler) ListPublic(c *gin.Context) {
	query, ok := bindQuery(c)
	if !ok {
		return
	}
	events, total, err := h.eventService.ListPublic(c.Request.Context(), query)
	if err != nil {
		writeError(c, err, "Failed to list events")
		return
	}
	c.JSON(http.StatusOK, response.Paginated(events, query.Page, query.Limit, int64(total)))
}

// List handles GET /admin/events
func (h *EventHandler) List(c *gin.Context) {
	var query dto.ListEventsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, response.BadRequest("Invalid query parameters"))
		return
	}
	events, total, err := h.eventService.List(c.Request.Context(), &query)
	if err != nil {
		writeError(c, err, "Failed to list events")
		return
	}
	c.JSON(http.StatusOK, response.Paginated(events, query.Page, query.Limit, int64(total)))
}

// Get handles GET /admin/events/:eid
func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.eventService.Get(c.Request.Context(), c.Param("eid"))
	if err != nil {
		writeError(c, err, "Failed to get event")
		return
	}
	c.JSON(http.StatusOK, response.Success(event))
}

// Create handles POST /admin/events
func (h *EventHandler) Create(c *gin.Context) {
	var req dto.CreateEventRequest
	if !bindJSON(c, &req) {
		return
	}
	if valid, msg := req.Validate(); !valid {
		c.JSON(http.StatusBadRequest, response.BadRequest(msg))
		return
	}

	event, err := h.eventService.Create(c.Request.Context(), actorFrom(c), &req)
	if err != nil {
		writeError(c, err, "Failed to create event")
		return
	}
	c.JSON(http.StatusCreated, response.Success(event))
}

// Update handles PUT /admin/events/:eid
func (h *EventHandler) Update(c *gin.Context) {
	var req dto.UpdateEventRequest
	if !bindJSON(c, &req) {
		return
	}
	if valid, msg := req.Validate(); !valid {
		c.JSON(http.StatusBadRequest, response.BadRequest(msg))
		return
	}

	event, err := h.eventService.Update(c.Request.Context(), actorFrom(c), c.Param("eid"), &req)
	if err != nil {
		writeError(c, err, "Failed to update event")
		return
	}
	c.JSON(http.StatusOK, response.Success(event))
}

// Delete handles DELETE /admin/events/:eid - soft deletes an event
func (h *EventHandler) Delete(c *gin.Context) {
	if err := h.eventService.Delete(c.Request.Context(), actorFrom(c), c.Param("eid")); err != nil {
		writeError(c, err, "Failed to delete event")
		return
	}
	deleted(c, "Event")
}

// Restore handles POST /admin/events/:eid/restore
func (h *EventHandler) Restore(c *gin.Context) {
	event, err := h.eventService.Restore(c.Request.Context(), actorFrom(c), c.Param("eid"))
	if err != nil {
		writeError(c, err, "Failed to restore event")
		return
	}
	c.JSON(http.StatusOK, response.Success(event))
}

// AssignAttributes handles PUT /admin/events/:eid/attributes
func (h *EventHandler) AssignAttributes(c *gin.Context) {
	var req dto.AssignAttributesRequest
	if !bindJSON(c, &req) {
		return
	}
	event, err := h.eventService.AssignAttributes(c.Request.Context(), actorFrom(c), c.Param("eid"), req.AttributeIDs)
	if err != nil {
		writeError(c, err, "Failed to assign attributes")
		return
	}
	c.JSON(http.StatusOK, response.Success(event))
}

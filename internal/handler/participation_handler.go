package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/theoboldt/juvem-sub001/internal/dto"
	"github.com/theoboldt/juvem-sub001/internal/service"
	"github.com/theoboldt/juvem-sub001/pkg/response"
)

// ParticipationHandler handles registrations, participations and participants
type ParticipationHandler struct {
	participationService service.ParticipationService
	profileService       service.ProfileService
	defaultLocale        string
}

// NewParticipationHandler creates a new ParticipationHandler
func NewParticipationHandler(participationService service.ParticipationService, profileService service.ProfileService, defaultLocale string) *ParticipationHandler {
	return &ParticipationHandler{
		participationService: participationService,
		profileService:       profileService,
		defaultLocale:        defaultLocale,
	}
}

// Register handles POST /public/events/:eid/participations
func (h *ParticipationHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	participation, err := h.participationService.Register(c.Request.Context(), c.Param("eid"), &req)
	if err != nil {
		writeError(c, err, "Failed to register")
		return
	}
	c.JSON(http.StatusCreated, response.Success(participation))
}

// List handles GET /admin/events/:eid/participations
func (h *ParticipationHandler) List(c *gin.Context) {
	query, ok := bindQuery(c)
	if !ok {
		return
	}
	participations, total, err := h.participationService.ListByEvent(c.Request.Context(), c.Param("eid"), query)
	if err != nil {
		writeError(c, err, "Failed to list participations")
		return
	}
	c.JSON(http.StatusOK, response.Paginated(participations, query.Page, query.Limit, int64(total)))
}

// Get handles GET /admin/events/:eid/participations/:pid
func (h *ParticipationHandler) Get(c *gin.Context) {
	participation, err := h.participationService.Get(c.Request.Context(), c.Param("eid"), c.Param("pid"))
	if err != nil {
		writeError(c, err, "Failed to get participation")
		return
	}
	c.JSON(http.StatusOK, response.Success(participation))
}

// UpdateContact handles PUT /admin/events/:eid/participations/:pid
func (h *ParticipationHandler) UpdateContact(c *gin.Context) {
	var req dto.UpdateContactRequest
	if !bindJSON(c, &req) {
		return
	}
	participation, err := h.participationService.UpdateContact(c.Request.Context(), c.Param("eid"), c.Param("pid"), &req)
	if err != nil {
		writeError(c, err, "Failed to update participation")
		return
	}
	c.JSON(http.StatusOK, response.Success(participation))
}

// Delete handles DELETE /admin/events/:eid/participations/:pid
func (h *ParticipationHandler) Delete(c *gin.Context) {
	if err := h.participationService.Delete(c.Request.Context(), c.Param("eid"), c.Param("pid")); err != nil {
		writeError(c, err, "Failed to delete participation")
		return
	}
	deleted(c, "Participation")
}

// Restore handles POST /admin/events/:eid/participations/:pid/restore
func (h *ParticipationHandler) Restore(c *gin.Context) {
	participation, err := h.participationService.Restore(c.Request.Context(), c.Param("eid"), c.Param("pid"))
	if err != nil {
		writeError(c, err, "Failed to restore participation")
		return
	}
	c.JSON(http.StatusOK, response.Success(participation))
}

// GetParticipant handles GET /admin/events/:eid/participants/:aid
func (h *ParticipationHandler) GetParticipant(c *gin.Context) {
	participant, err := h.participationService.GetParticipant(c.Request.Context(), c.Param("eid"), c.Param("aid"))
	if err != nil {
		writeError(c, err, "Failed to get participant")
		return
	}
	c.JSON(http.StatusOK, response.Success(participant))
}

// UpdateParticipant handles PUT /admin/events/:eid/participants/:aid
func (h *ParticipationHandler) UpdateParticipant(c *gin.Context) {
	var req dto.UpdateParticipantRequest
	if !bindJSON(c, &req) {
		return
	}
	if valid, msg := req.Validate(); !valid {
		c.JSON(http.StatusBadRequest, response.BadRequest(msg))
		return
	}
	participant, err := h.participationService.UpdateParticipant(c.Request.Context(), c.Param("eid"), c.Param("aid"), &req)
	if err != nil {
		writeError(c, err, "Failed to update participant")
		return
	}
	c.JSON(http.StatusOK, response.Success(participant))
}

// DeleteParticipant handles DELETE /admin/events/:eid/participants/:aid
func (h *ParticipationHandler) DeleteParticipant(c *gin.Context) {
	if err := h.participationService.DeleteParticipant(c.Request.Context(), c.Param("eid"), c.Param("aid")); err != nil {
		writeError(c, err, "Failed to delete participant")
		return
	}
	deleted(c, "Participant")
}

// RestoreParticipant handles POST /admin/events/:eid/participants/:aid/restore
func (h *ParticipationHandler) RestoreParticipant(c *gin.Context) {
	participant, err := h.participationService.RestoreParticipant(c.Request.Context(), c.Param("eid"), c.Param("aid"))
	if err != nil {
		writeError(c, err, "Failed to restore participant")
		return
	}
	c.JSON(http.StatusOK, response.Success(participant))
}

// ChangeStatus handles POST /admin/events/:eid/participants/:aid/status
func (h *ParticipationHandler) ChangeStatus(c *gin.Context) {
	var req dto.ChangeStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	if valid, msg := req.Validate(); !valid {
		c.JSON(http.StatusBadRequest, response.BadRequest(msg))
		return
	}
	participant, err := h.participationService.ChangeStatus(c.Request.Context(), actorFrom(c), c.Param("eid"), c.Param("aid"), &req)
	if err != nil {
		writeError(c, err, "Failed to change status")
		return
	}
	c.JSON(http.StatusOK, response.Success(participant))
}

// StatusHistory handles GET /admin/events/:eid/participants/:aid/status
func (h *ParticipationHandler) StatusHistory(c *gin.Context) {
	history, err := h.participationService.StatusHistory(c.Request.Context(), c.Param("eid"), c.Param("aid"))
	if err != nil {
		writeError(c, err, "Failed to load status history")
		return
	}
	c.JSON(http.StatusOK, response.Success(history))
}

// Profile handles GET /admin/events/:eid/participants/:aid/profile[?format=pdf]
func (h *ParticipationHandler) Profile(c *gin.Context) {
	doc, err := h.profileService.Render(c.Request.Context(), c.Param("eid"), c.Param("aid"), locale(c, h.defaultLocale), c.Query("format"))
	if err != nil {
		writeError(c, err, "Failed to render profile")
		return
	}
	writeDocument(c, doc.Name, doc.ContentType, doc.Data, c.Query("download") == "true")
}

// writeDocument sends a rendered file inline or as attachment
func writeDocument(c *gin.Context, name, contentType string, data []byte, attachment bool) {
	disposition := "inline"
	if attachment {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", disposition+`; filename="`+name+`"`)
	c.Data(http.StatusOK, contentType, data)
}

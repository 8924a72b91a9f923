package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/theoboldt/juvem-sub001/internal/domain"
	"github.com/theoboldt/juvem-sub001/internal/dto"
	"github.com/theoboldt/juvem-sub001/internal/service"
	"github.com/theoboldt/juvem-sub001/pkg/response"
)

// CommentHandler handles comments on participations, participants and employees
type CommentHandler struct {
	commentService service.CommentService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// List handles GET /admin/comments?subject=&subject_id=
func (h *CommentHandler) List(c *gin.Context) {
	subjectID := c.Query("subject_id")
	if subjectID == "" {
		c.JSON(http.StatusBadRequest, response.BadRequest("subject_id is required"))
		return
	}
	comments, err := h.commentService.List(c.Request.Context(), domain.OwnerType(c.Query("subject")), subjectID)
	if err != nil {
		writeError(c, err, "Failed to list comments")
		return
	}
	c.JSON(http.StatusOK, response.Success(comments))
}

// Count handles GET /admin/comments/count?subject=&subject_id=a,b
func (h *CommentHandler) Count(c *gin.Context) {
	var ids []string
	for _, id := range strings.Split(c.Query("subject_id"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		c.JSON(http.StatusBadRequest, response.BadRequest("subject_id is required"))
		return
	}
	counts, err := h.commentService.Count(c.Request.Context(), domain.OwnerType(c.Query("subject")), ids)
	if err != nil {
		writeError(c, err, "Failed to count comments")
		return
	}
	c.JSON(http.StatusOK, response.Success(counts))
}

// Create handles POST /admin/comments
func (h *CommentHandler) Create(c *gin.Context) {
	var req dto.CreateCommentRequest
	if !bindJSON(c, &req) {
		return
	}
	comment, err := h.commentService.Create(c.Request.Context(), actorFrom(c), &req)
	if err != nil {
		writeError(c, err, "Failed to create comment")
		return
	}
	c.JSON(http.StatusCreated, response.Success(comment))
}

// Update handles PUT /admin/comments/:id
func (h *CommentHandler) Update(c *gin.Context) {
	var req dto.UpdateCommentRequest
	if !bindJSON(c, &req) {
		return
	}
	comment, err := h.commentService.Update(c.Request.Context(), actorFrom(c), c.Param("id"), &req)
	if err != nil {
		writeError(c, err, "Failed to update comment")
		return
	}
	c.JSON(http.StatusOK, response.Success(comment))
}

// Delete handles DELETE /admin/comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	if err := h.commentService.Delete(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		writeError(c, err, "Failed to delete comment")
		return
	}
	deleted(c, "Comment")
}

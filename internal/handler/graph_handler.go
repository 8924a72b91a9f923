package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/theoboldt/juvem-sub001/internal/service"
	"github.com/theoboldt/juvem-sub001/pkg/response"
)

// GraphHandler serves the participant group graph
type GraphHandler struct {
	graphService service.GraphService
}

// NewGraphHandler creates a new GraphHandler
func NewGraphHandler(graphService service.GraphService) *GraphHandler {
	return &GraphHandler{graphService: graphService}
}

// Build handles GET /admin/events/:eid/graph[?attribute_id=]
func (h *GraphHandler) Build(c *gin.Context) {
	graph, err := h.graphService.Build(c.Request.Context(), c.Param("eid"), c.Query("attribute_id"))
	if err != nil {
		writeError(c, err, "Failed to build graph")
		return
	}
	c.JSON(http.StatusOK, response.Success(graph))
}

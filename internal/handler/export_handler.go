package handler

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/theoboldt/juvem-sub001/internal/domain"
	"github.com/theoboldt/juvem-sub001/internal/service"
	"github.com/theoboldt/juvem-sub001/pkg/response"
)

// ExportHandler serves xlsx exports
type ExportHandler struct {
	exportService service.ExportService
	defaultLocale string
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(exportService service.ExportService, defaultLocale string) *ExportHandler {
	return &ExportHandler{exportService: exportService, defaultLocale: defaultLocale}
}

// Export handles GET /admin/events/:eid/export/:kind
func (h *ExportHandler) Export(c *gin.Context) {
	var write func(ctx context.Context, eventID, locale string, w io.Writer) error
	kind := c.Param("kind")
	switch kind {
	case "participants":
		write = h.exportService.Participants
	case "participations":
		write = h.exportService.Participations
	case "employees":
		write = h.exportService.Employees
	default:
		c.JSON(http.StatusNotFound, response.NotFound("Unknown export"))
		return
	}

	// buffered so that errors can still be answered as JSON
	var buf bytes.Buffer
	eventID := c.Param("eid")
	if err := write(c.Request.Context(), eventID, locale(c, h.defaultLocale), &buf); err != nil {
		writeError(c, err, "Failed to export "+kind)
		return
	}
	writeDocument(c, kind+"-"+eventID+".xlsx", domain.ContentTypeXLSX, buf.Bytes(), true)
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/theoboldt/juvem-sub001/internal/dto"
	"github.com/theoboldt/juvem-sub001/internal/service"
	"github.com/theoboldt/juvem-sub001/pkg/response"
)

// AttributeHandler handles acquisition attribute requests
type AttributeHandler struct {
	attributeService service.AttributeService
}

// NewAttributeHandler creates a new AttributeHandler
func NewAttributeHandler(attributeService service.AttributeService) *AttributeHandler {
	return &AttributeHandler{attributeService: attributeService}
}

// List handles GET /admin/attributes[?include_deleted=true]
func (h *AttributeHandler) List(c *gin.Context) {
	attributes, err := h.attributeService.List(c.Request.Context(), c.Query("include_deleted") == "true")
	if err != nil {
		writeError(c, err, "Failed to list attributes")
		return
	}
	c.JSON(http.StatusOK, response.Success(attributes))
}

// Get handles GET /admin/attributes/:id
func (h *AttributeHandler) Get(c *gin.Context) {
	attribute, err := h.attributeService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, "Failed to get attribute")
		return
	}
	c.JSON(http.StatusOK, response.Success(attribute))
}

// Create handles POST /admin/attributes
func (h *AttributeHandler) Create(c *gin.Context) {
	var req dto.AttributeRequest
	if !bindJSON(c, &req) {
		return
	}
	attribute, err := h.attributeService.Create(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err, "Failed to create attribute")
		return
	}
	c.JSON(http.StatusCreated, response.Success(attribute))
}

// Update handles PUT /admin/attributes/:id
func (h *AttributeHandler) Update(c *gin.Context) {
	var req dto.AttributeRequest
	if !bindJSON(c, &req) {
		return
	}
	attribute, err := h.attributeService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		writeError(c, err, "Failed to update attribute")
		return
	}
	c.JSON(http.StatusOK, response.Success(attribute))
}

// Delete handles DELETE /admin/attributes/:id
func (h *AttributeHandler) Delete(c *gin.Context) {
	if err := h.attributeService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err, "Failed to delete attribute")
		return
	}
	deleted(c, "Attribute")
}

// AddOption handles POST /admin/attributes/:id/options
func (h *AttributeHandler) AddOption(c *gin.Context) {
	var req dto.OptionRequest
	if !bindJSON(c, &req) {
		return
	}
	option, err := h.attributeService.AddOption(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		writeError(c, err, "Failed to add option")
		return
	}
	c.JSON(http.StatusCreated, response.Success(option))
}

// UpdateOption handles PUT /admin/attributes/:id/options/:oid
func (h *AttributeHandler) UpdateOption(c *gin.Context) {
	var req dto.OptionRequest
	if !bindJSON(c, &req) {
		return
	}
	option, err := h.attributeService.UpdateOption(c.Request.Context(), c.Param("id"), c.Param("oid"), &req)
	if err != nil {
		writeError(c, err, "Failed to update option")
		return
	}
	c.JSON(http.StatusOK, response.Success(option))
}

// DeleteOption handles DELETE /admin/attributes/:id/options/:oid
func (h *AttributeHandler) DeleteOption(c *gin.Context) {
	if err := h.attributeService.DeleteOption(c.Request.Context(), c.Param("id"), c.Param("oid")); err != nil {
		writeError(c, err, "Failed to delete option")
		return
	}
	deleted(c, "Option")
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/theoboldt/juvem-sub001/internal/dto"
	"github.com/theoboldt/juvem-sub001/internal/service"
	"github.com/theoboldt/juvem-sub001/pkg/response"
)

// EmployeeHandler handles employee requests
type EmployeeHandler struct {
	employeeService service.EmployeeService
}

// NewEmployeeHandler creates a new EmployeeHandler
func NewEmployeeHandler(employeeService service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employeeService: employeeService}
}

// List handles GET /admin/events/:eid/employees
func (h *EmployeeHandler) List(c *gin.Context) {
	query, ok := bindQuery(c)
	if !ok {
		return
	}
	employees, total, err := h.employeeService.List(c.Request.Context(), c.Param("eid"), query)
	if err != nil {
		writeError(c, err, "Failed to list employees")
		return
	}
	c.JSON(http.StatusOK, response.Paginated(employees, query.Page, query.Limit, int64(total)))
}

// Get handles GET /admin/events/:eid/employees/:id
func (h *EmployeeHandler) Get(c *gin.Context) {
	employee, err := h.employeeService.Get(c.Request.Context(), c.Param("eid"), c.Param("id"))
	if err != nil {
		writeError(c, err, "Failed to get employee")
		return
	}
	c.JSON(http.StatusOK, response.Success(employee))
}

// Create handles POST /admin/events/:eid/employees
func (h *EmployeeHandler) Create(c *gin.Context) {
	var req dto.EmployeeRequest
	if !bindJSON(c, &req) {
		return
	}
	employee, err := h.employeeService.Create(c.Request.Context(), actorFrom(c), c.Param("eid"), &req)
	if err != nil {
		writeError(c, err, "Failed to create employee")
		return
	}
	c.JSON(http.StatusCreated, response.Success(employee))
}

// Update handles PUT /admin/events/:eid/employees/:id
func (h *EmployeeHandler) Update(c *gin.Context) {
	var req dto.EmployeeRequest
	if !bindJSON(c, &req) {
		return
	}
	employee, err := h.employeeService.Update(c.Request.Context(), actorFrom(c), c.Param("eid"), c.Param("id"), &req)
	if err != nil {
		writeError(c, err, "Failed to update employee")
		return
	}
	c.JSON(http.StatusOK, response.Success(employee))
}

// Delete handles DELETE /admin/events/:eid/employees/:id
func (h *EmployeeHandler) Delete(c *gin.Context) {
	if err := h.employeeService.Delete(c.Request.Context(), c.Param("eid"), c.Param("id")); err != nil {
		writeError(c, err, "Failed to delete employee")
		return
	}
	deleted(c, "Employee")
}

// Restore handles POST /admin/events/:eid/employees/:id/restore
func (h *EmployeeHandler) Restore(c *gin.Context) {
	employee, err := h.employeeService.Restore(c.Request.Context(), c.Param("eid"), c.Param("id"))
	if err != nil {
		writeError(c, err, "Failed to restore employee")
		return
	}
	c.JSON(http.StatusOK, response.Success(employee))
}

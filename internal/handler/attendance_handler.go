package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/theoboldt/juvem-sub001/internal/dto"
	"github.com/theoboldt/juvem-sub001/internal/service"
	"github.com/theoboldt/juvem-sub001/pkg/response"
)

// AttendanceHandler handles attendance lists
type AttendanceHandler struct {
	attendanceService service.AttendanceService
}

// NewAttendanceHandler creates a new AttendanceHandler
func NewAttendanceHandler(attendanceService service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: attendanceService}
}

func (h *AttendanceHandler) List(c *gin.Context) {
	lists, err := h.attendanceService.ListByEvent(c.Request.Context(), c.Param("eid"))
	if err != nil {
		writeError(c, err, "Failed to list attendance lists")
		return
	}
	c.JSON(http.StatusOK, response.Success(lists))
}

func (h *AttendanceHandler) Create(c *gin.Context) {
	var req dto.AttendanceListRequest
	if !bindJSON(c, &req) {
		return
	}
	list, err := h.attendanceService.CreateList(c.Request.Context(), c.Param("eid"), &req)
	if err != nil {
		writeError(c, err, "Failed to create attendance list")
		return
	}
	c.JSON(http.StatusCreated, response.Success(list))
}

func (h *AttendanceHandler) Get(c *gin.Context) {
	list, err := h.attendanceService.GetList(c.Request.Context(), c.Param("eid"), c.Param("lid"))
	if err != nil {
		writeError(c, err, "Failed to get attendance list")
		return
	}
	c.JSON(http.StatusOK, response.Success(list))
}

func (h *AttendanceHandler) Update(c *gin.Context) {
	var req dto.AttendanceListRequest
	if !bindJSON(c, &req) {
		return
	}
	list, err := h.attendanceService.UpdateList(c.Request.Context(), c.Param("eid"), c.Param("lid"), &req)
	if err != nil {
		writeError(c, err, "Failed to update attendance list")
		return
	}
	c.JSON(http.StatusOK, response.Success(list))
}

func (h *AttendanceHandler) Delete(c *gin.Context) {
	if err := h.attendanceService.DeleteList(c.Request.Context(), c.Param("eid"), c.Param("lid")); err != nil {
		writeError(c, err, "Failed to delete attendance list")
		return
	}
	deleted(c, "Attendance list")
}

// AddColumn handles POST /admin/events/:eid/attendance/:lid/columns
func (h *AttendanceHandler) AddColumn(c *gin.Context) {
	var req dto.AddColumnRequest
	if !bindJSON(c, &req) {
		return
	}
	column, err := h.attendanceService.AddColumn(c.Request.Context(), c.Param("eid"), c.Param("lid"), &req)
	if err != nil {
		writeError(c, err, "Failed to add column")
		return
	}
	c.JSON(http.StatusCreated, response.Success(column))
}

// DeleteColumn handles DELETE /admin/events/:eid/attendance/:lid/columns/:cid
func (h *AttendanceHandler) DeleteColumn(c *gin.Context) {
	if err := h.attendanceService.DeleteColumn(c.Request.Context(), c.Param("eid"), c.Param("lid"), c.Param("cid")); err != nil {
		writeError(c, err, "Failed to delete column")
		return
	}
	deleted(c, "Column")
}

// AddChoice handles POST /admin/events/:eid/attendance/:lid/columns/:cid/choices
func (h *AttendanceHandler) AddChoice(c *gin.Context) {
	var req dto.ChoiceInput
	if !bindJSON(c, &req) {
		return
	}
	choice, err := h.attendanceService.AddChoice(c.Request.Context(), c.Param("eid"), c.Param("lid"), c.Param("cid"), &req)
	if err != nil {
		writeError(c, err, "Failed to add choice")
		return
	}
	c.JSON(http.StatusCreated, response.Success(choice))
}

// DeleteChoice handles DELETE /admin/events/:eid/attendance/:lid/columns/:cid/choices/:chid
func (h *AttendanceHandler) DeleteChoice(c *gin.Context) {
	if err := h.attendanceService.DeleteChoice(c.Request.Context(), c.Param("eid"), c.Param("lid"), c.Param("cid"), c.Param("chid")); err != nil {
		writeError(c, err, "Failed to delete choice")
		return
	}
	deleted(c, "Choice")
}

// Data handles GET /admin/events/:eid/attendance/:lid/data
func (h *AttendanceHandler) Data(c *gin.Context) {
	data, err := h.attendanceService.Data(c.Request.Context(), c.Param("eid"), c.Param("lid"))
	if err != nil {
		writeError(c, err, "Failed to load attendance data")
		return
	}
	c.JSON(http.StatusOK, response.Success(data))
}

// SetFillout handles PUT /admin/events/:eid/attendance/:lid/fillouts
func (h *AttendanceHandler) SetFillout(c *gin.Context) {
	var req dto.SetAttendanceFilloutRequest
	if !bindJSON(c, &req) {
		return
	}
	fillout, err := h.attendanceService.SetFillout(c.Request.Context(), c.Param("eid"), c.Param("lid"), &req)
	if err != nil {
		writeError(c, err, "Failed to store attendance")
		return
	}
	c.JSON(http.StatusOK, response.Success(fillout))
}

// ClearFillout handles DELETE /admin/events/:eid/attendance/:lid/fillouts?participant_id=&column_id=
func (h *AttendanceHandler) ClearFillout(c *gin.Context) {
	participantID, columnID := c.Query("participant_id"), c.Query("column_id")
	if participantID == "" || columnID == "" {
		c.JSON(http.StatusBadRequest, response.BadRequest("participant_id and column_id are required"))
		return
	}
	if err := h.attendanceService.ClearFillout(c.Request.Context(), c.Param("eid"), c.Param("lid"), participantID, columnID); err != nil {
		writeError(c, err, "Failed to clear attendance")
		return
	}
	deleted(c, "Attendance")
}

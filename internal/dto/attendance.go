package dto

import (
	"strings"

	"github.com/theoboldt/juvem-sub001/internal/domain"
)

// AttendanceListRequest creates or updates an attendance list
type AttendanceListRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Validate validates the AttendanceListRequest
func (r *AttendanceListRequest) Validate() (bool, string) {
	if ok, msg := validateTitle(r.Title); !ok {
		return false, msg
	}
	return true, ""
}

// ChoiceInput is one selectable value of an attendance column
type ChoiceInput struct {
	Title      string `json:"title"`
	ShortTitle string `json:"short_title"`
}

// Validate validates the ChoiceInput
func (r *ChoiceInput) Validate() (bool, string) {
	if strings.TrimSpace(r.Title) == "" {
		return false, "Choice title is required"
	}
	return true, ""
}

// AddColumnRequest adds a column with its choices to a list
type AddColumnRequest struct {
	Title   string        `json:"title"`
	Sort    int           `json:"sort"`
	Choices []ChoiceInput `json:"choices"`
}

// Validate validates the AddColumnRequest
func (r *AddColumnRequest) Validate() (bool, string) {
	if strings.TrimSpace(r.Title) == "" {
		return false, "Title is required"
	}
	if len(r.Choices) == 0 {
		return false, "At least one choice is required"
	}
	for i := range r.Choices {
		if ok, msg := r.Choices[i].Validate(); !ok {
			return false, msg
		}
	}
	return true, ""
}

// SetAttendanceFilloutRequest sets one cell of an attendance list
type SetAttendanceFilloutRequest struct {
	ParticipantID string  `json:"participant_id" binding:"required"`
	ColumnID      string  `json:"column_id" binding:"required"`
	ChoiceID      *string `json:"choice_id"`
	Comment       string  `json:"comment"`
}

// Validate validates the SetAttendanceFilloutRequest
func (r *SetAttendanceFilloutRequest) Validate() (bool, string) {
	if r.ChoiceID == nil && strings.TrimSpace(r.Comment) == "" {
		return false, "Choice or comment is required"
	}
	return true, ""
}

// AttendanceCell is the selection of one participant in one column
type AttendanceCell struct {
	ChoiceID *string `json:"choice_id,omitempty"`
	Comment  string  `json:"comment,omitempty"`
}

// AttendanceRow is one participant of an attendance list
type AttendanceRow struct {
	ParticipantID   string                    `json:"participant_id"`
	ParticipationID string                    `json:"participation_id"`
	NameFirst       string                    `json:"name_first"`
	NameLast        string                    `json:"name_last"`
	Status          domain.ParticipantStatus  `json:"status"`
	Cells           map[string]AttendanceCell `json:"cells"` // keyed by column ID
}

// AttendanceData is the participant x column matrix of a list
type AttendanceData struct {
	List *domain.AttendanceList `json:"list"`
	Rows []AttendanceRow        `json:"rows"`
}

package dto

import (
	"strings"
	"time"
)

// CreateEventRequest represents the request to create a new event
type CreateEventRequest struct {
	Title             string     `json:"title" binding:"required,min=2,max=255"`
	Description       string     `json:"description" binding:"max=10000"`
	StartDate         time.Time  `json:"start_date" binding:"required"`
	EndDate           *time.Time `json:"end_date"`
	IsVisible         bool       `json:"is_visible"`
	IsActive          bool       `json:"is_active"`
	Price             *int64     `json:"price"`
	ParticipantsLimit *int       `json:"participants_limit"`
	AttributeIDs      []string   `json:"attribute_ids"`
}

// Validate validates the CreateEventRequest
func (r *CreateEventRequest) Validate() (bool, string) {
	if ok, msg := validateTitle(r.Title); !ok {
		return false, msg
	}
	if r.StartDate.IsZero() {
		return false, "Start date is required"
	}
	if r.EndDate != nil && r.EndDate.Before(r.StartDate) {
		return false, "End date must not be before start date"
	}
	if r.Price != nil && *r.Price < 0 {
		return false, "Price must not be negative"
	}
	if r.ParticipantsLimit != nil && *r.ParticipantsLimit < 0 {
		return false, "Participants limit must not be negative"
	}
	return true, ""
}

func validateTitle(title string) (bool, string) {
	n := len([]rune(strings.TrimSpace(title)))
	if n < 2 {
		return false, "Title must be at least 2 characters"
	}
	if n > 255 {
		return false, "Title must not exceed 255 characters"
	}
	return true, ""
}

// UpdateEventRequest represents a partial event update
type UpdateEventRequest struct {
	Title             *string    `json:"title"`
	Description       *string    `json:"description"`
	StartDate         *time.Time `json:"start_date"`
	EndDate           *time.Time `json:"end_date"`
	ClearEndDate      bool       `json:"clear_end_date"`
	IsVisible         *bool      `json:"is_visible"`
	IsActive          *bool      `json:"is_active"`
	Price             *int64     `json:"price"`
	ClearPrice        bool       `json:"clear_price"`
	ParticipantsLimit *int       `json:"participants_limit"`
	ClearLimit        bool       `json:"clear_participants_limit"`
}

// Validate validates that at least one field is provided for update
func (r *UpdateEventRequest) Validate() (bool, string) {
	if r.Title == nil && r.Description == nil && r.StartDate == nil && r.EndDate == nil &&
		r.IsVisible == nil && r.IsActive == nil && r.Price == nil && r.ParticipantsLimit == nil &&
		!r.ClearEndDate && !r.ClearPrice && !r.ClearLimit {
		return false, "At least one field must be provided for update"
	}
	if r.Title != nil {
		if ok, msg := validateTitle(*r.Title); !ok {
			return false, msg
		}
	}
	if r.Price != nil && *r.Price < 0 {
		return false, "Price must not be negative"
	}
	if r.ParticipantsLimit != nil && *r.ParticipantsLimit < 0 {
		return false, "Participants limit must not be negative"
	}
	return true, ""
}

// AssignAttributesRequest replaces the acquisition attributes of an event
type AssignAttributesRequest struct {
	AttributeIDs []string `json:"attribute_ids"`
}

// ListQuery represents pagination query parameters
type ListQuery struct {
	Page           int  `form:"page" binding:"omitempty,min=1"`
	Limit          int  `form:"limit" binding:"omitempty,min=1,max=1000"`
	IncludeDeleted bool `form:"include_deleted"`
}

// SetDefaults sets default values for query parameters
func (q *ListQuery) SetDefaults() {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = 50
	}
}

// Offset returns the number of rows to skip
func (q *ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// ListEventsQuery represents query parameters for listing events
type ListEventsQuery struct {
	ListQuery
	VisibleOnly bool `form:"visible_only"`
}

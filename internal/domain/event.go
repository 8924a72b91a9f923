package domain

import "time"

// Event is an organized activity participants register for
type Event struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	StartDate         time.Time  `json:"start_date"`
	EndDate           *time.Time `json:"end_date,omitempty"`
	IsVisible         bool       `json:"is_visible"`
	IsActive          bool       `json:"is_active"`
	Price             *int64     `json:"price,omitempty"` // euro cents
	ParticipantsLimit *int       `json:"participants_limit,omitempty"`
	AttributeIDs      []string   `json:"attribute_ids"`
	CreatedBy         string     `json:"created_by,omitempty"`
	ModifiedBy        string     `json:"modified_by,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	ModifiedAt        time.Time  `json:"modified_at"`
	DeletedAt         *time.Time `json:"deleted_at,omitempty"`
}

// IsDeleted reports whether the event was soft deleted
func (e *Event) IsDeleted() bool {
	return e.DeletedAt != nil
}

// AcceptsRegistrations reports whether new participations may be submitted
func (e *Event) AcceptsRegistrations() bool {
	return e.IsActive && !e.IsDeleted()
}

// IsPublic reports whether the event is listed on the public surface
func (e *Event) IsPublic() bool {
	return e.IsVisible && e.IsActive && !e.IsDeleted()
}

// HasAttribute reports whether the acquisition attribute is assigned to the event
func (e *Event) HasAttribute(attributeID string) bool {
	for _, id := range e.AttributeIDs {
		if id == attributeID {
			return true
		}
	}
	return false
}

// HasCapacity reports whether another n active participants fit into the limit
func (e *Event) HasCapacity(active, n int) bool {
	if e.ParticipantsLimit == nil {
		return true
	}
	return active+n <= *e.ParticipantsLimit
}

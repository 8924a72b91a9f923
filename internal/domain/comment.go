package domain

import "time"

// Comment is an internal note on a participation, participant or employee
type Comment struct {
	ID         string     `json:"id"`
	Subject    OwnerType  `json:"subject"`
	SubjectID  string     `json:"subject_id"`
	Content    string     `json:"content"`
	CreatedBy  string     `json:"created_by"`
	ModifiedBy string     `json:"modified_by,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ModifiedAt time.Time  `json:"modified_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

// IsDeleted reports whether the comment was soft deleted
func (c *Comment) IsDeleted() bool {
	return c.DeletedAt != nil
}

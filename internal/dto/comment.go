package dto

import (
	"strings"

	"github.com/theoboldt/juvem-sub001/internal/domain"
)

const maxCommentLength = 10000

// CreateCommentRequest represents a request to comment on a record
type CreateCommentRequest struct {
	Subject   domain.OwnerType `json:"subject" binding:"required"`
	SubjectID string           `json:"subject_id" binding:"required"`
	Content   string           `json:"content"`
}

// Validate validates the CreateCommentRequest
func (r *CreateCommentRequest) Validate() (bool, string) {
	if !r.Subject.IsValid() {
		return false, "Unknown subject"
	}
	return validateContent(r.Content)
}

// UpdateCommentRequest replaces the content of a comment
type UpdateCommentRequest struct {
	Content string `json:"content"`
}

// Validate validates the UpdateCommentRequest
func (r *UpdateCommentRequest) Validate() (bool, string) {
	return validateContent(r.Content)
}

func validateContent(content string) (bool, string) {
	if strings.TrimSpace(content) == "" {
		return false, "Content is required"
	}
	if len(content) > maxCommentLength {
		return false, "Content must not exceed 10000 characters"
	}
	return true, ""
}

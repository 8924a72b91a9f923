package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/theoboldt/juvem-sub001/internal/domain"
	"github.com/theoboldt/juvem-sub001/internal/dto"
	"github.com/theoboldt/juvem-sub001/internal/repository"
)

// commentService implements CommentService
type commentService struct {
	repos *repository.Repositories
	now   func() time.Time
}

// NewCommentService creates a new CommentService
func NewCommentService(repos *repository.Repositories) CommentService {
	return &commentService{repos: repos, now: time.Now}
}

// subjectExists reports whether the commented record is present and not deleted
func (s *commentService) subjectExists(ctx context.Context, subject domain.OwnerType, id string) (bool, error) {
	switch subject {
	case domain.OwnerParticipation:
		p, err := s.repos.Participations.GetByID(ctx, id)
		return p != nil && !p.IsDeleted(), err
	case domain.OwnerParticipant:
		p, err := s.repos.Participants.GetByID(ctx, id)
		return p != nil && !p.IsDeleted(), err
	case domain.OwnerEmployee:
		e, err := s.repos.Employees.GetByID(ctx, id)
		return e != nil && !e.IsDeleted(), err
	}
	return false, nil
}

func (s *commentService) Create(ctx context.Context, actor Actor, req *dto.CreateCommentRequest) (*domain.Comment, error) {
	if valid, msg := req.Validate(); !valid {
		return nil, NewValidationError("comment", msg)
	}
	ok, err := s.subjectExists(ctx, req.Subject, req.SubjectID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, NewValidationError("subject_id", "unknown "+string(req.Subject))
	}

	now := s.now()
	comment := &domain.Comment{
		ID:         uuid.New().String(),
		Subject:    req.Subject,
		SubjectID:  req.SubjectID,
		Content:    strings.TrimSpace(req.Content),
		CreatedBy:  actor.UserID,
		CreatedAt:  now,
		ModifiedAt: now,
	}
	if err := s.repos.Comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *commentService) List(ctx context.Context, subject domain.OwnerType, subjectID string) ([]*domain.Comment, error) {
	if !subject.IsValid() {
		return nil, NewValidationError("subject", "Unknown subject")
	}
	return s.repos.Comments.ListBySubject(ctx, subject, subjectID)
}

// editable loads a comment the actor may change
func (s *commentService) editable(ctx context.Context, actor Actor, id string) (*domain.Comment, error) {
	comment, err := s.repos.Comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment == nil || comment.IsDeleted() {
		return nil, ErrCommentNotFound
	}
	if !actor.IsAdmin && comment.CreatedBy != actor.UserID {
		return nil, ErrForbidden
	}
	return comment, nil
}

func (s *commentService) Update(ctx context.Context, actor Actor, id string, req *dto.UpdateCommentRequest) (*domain.Comment, error) {
	if valid, msg := req.Validate(); !valid {
		return nil, NewValidationError("content", msg)
	}
	comment, err := s.editable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	comment.Content = strings.TrimSpace(req.Content)
	comment.ModifiedBy = actor.UserID
	comment.ModifiedAt = s.now()
	if err := s.repos.Comments.Update(ctx, comment); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return comment, nil
}

func (s *commentService) Delete(ctx context.Context, actor Actor, id string) error {
	if _, err := s.editable(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repos.Comments.SoftDelete(ctx, id, s.now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCommentNotFound
		}
		return err
	}
	return nil
}

func (s *commentService) Count(ctx context.Context, subject domain.OwnerType, subjectIDs []string) (map[string]int, error) {
	if !subject.IsValid() {
		return nil, NewValidationError("subject", "Unknown subject")
	}
	return s.repos.Comments.CountBySubjects(ctx, subject, subjectIDs)
}

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

// attendanceService implements AttendanceService
type attendanceService struct {
	repos *repository.Repositories
	now   func() time.Time
}

// NewAttendanceService creates a new AttendanceService
func NewAttendanceService(repos *repository.Repositories) AttendanceService {
	return &attendanceService{repos: repos, now: time.Now}
}

func (s *attendanceService) CreateList(ctx context.Context, eventID string, req *dto.AttendanceListRequest) (*domain.AttendanceList, error) {
	if valid, msg := req.Validate(); !valid {
		return nil, NewValidationError("title", msg)
	}
	if _, err := requireEvent(ctx, s.repos.Events, eventID); err != nil {
		return nil, err
	}
	now := s.now()
	list := &domain.AttendanceList{
		ID:          uuid.New().String(),
		EventID:     eventID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Columns:     []*domain.AttendanceColumn{},
		CreatedAt:   now,
		ModifiedAt:  now,
	}
	if err := s.repos.Attendance.CreateList(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *attendanceService) GetList(ctx context.Context, eventID, listID string) (*domain.AttendanceList, error) {
	if _, err := requireEvent(ctx, s.repos.Events, eventID); err != nil {
		return nil, err
	}
	list, err := s.repos.Attendance.GetList(ctx, listID)
	if err != nil {
		return nil, err
	}
	if list == nil || list.IsDeleted() || list.EventID != eventID {
		return nil, ErrAttendanceListNotFound
	}
	return list, nil
}

func (s *attendanceService) ListByEvent(ctx context.Context, eventID string) ([]*domain.AttendanceList, error) {
	if _, err := requireEvent(ctx, s.repos.Events, eventID); err != nil {
		return nil, err
	}
	return s.repos.Attendance.ListByEvent(ctx, eventID)
}

func (s *attendanceService) UpdateList(ctx context.Context, eventID, listID string, req *dto.AttendanceListRequest) (*domain.AttendanceList, error) {
	if valid, msg := req.Validate(); !valid {
		return nil, NewValidationError("title", msg)
	}
	list, err := s.GetList(ctx, eventID, listID)
	if err != nil {
		return nil, err
	}
	list.Title = strings.TrimSpace(req.Title)
	list.Description = strings.TrimSpace(req.Description)
	list.ModifiedAt = s.now()
	if err := s.repos.Attendance.UpdateList(ctx, list); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAttendanceListNotFound
		}
		return nil, err
	}
	return list, nil
}

func (s *attendanceService) DeleteList(ctx context.Context, eventID, listID string) error {
	if _, err := s.GetList(ctx, eventID, listID); err != nil {
		return err
	}
	if err := s.repos.Attendance.SoftDeleteList(ctx, listID, s.now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAttendanceListNotFound
		}
		return err
	}
	return nil
}

// AddColumn appends a column with its choices to a list
func (s *attendanceService) AddColumn(ctx context.Context, eventID, listID string, req *dto.AddColumnRequest) (*domain.AttendanceColumn, error) {
	if valid, msg := req.Validate(); !valid {
		return nil, NewValidationError("column", msg)
	}
	list, err := s.GetList(ctx, eventID, listID)
	if err != nil {
		return nil, err
	}
	for _, c := range list.Columns {
		if strings.EqualFold(c.Title, strings.TrimSpace(req.Title)) {
			return nil, NewValidationError("title", "a column with this title already exists")
		}
	}

	column := &domain.AttendanceColumn{
		ID:     uuid.New().String(),
		ListID: list.ID,
		Title:  strings.TrimSpace(req.Title),
		Sort:   req.Sort,
	}
	for _, in := range req.Choices {
		column.Choices = append(column.Choices, &domain.AttendanceChoice{
			ID:         uuid.New().String(),
			ColumnID:   column.ID,
			Title:      strings.TrimSpace(in.Title),
			ShortTitle: strings.TrimSpace(in.ShortTitle),
		})
	}
	if err := s.repos.Attendance.AddColumn(ctx, column); err != nil {
		return nil, err
	}
	return column, nil
}

// DeleteColumn removes a column together with its cells
func (s *attendanceService) DeleteColumn(ctx context.Context, eventID, listID, columnID string) error {
	list, err := s.GetList(ctx, eventID, listID)
	if err != nil {
		return err
	}
	if list.Column(columnID) == nil {
		return ErrColumnNotFound
	}
	if err := s.repos.Attendance.DeleteColumn(ctx, listID, columnID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrColumnNotFound
		}
		return err
	}
	return nil
}

// AddChoice appends a choice to a column
func (s *attendanceService) AddChoice(ctx context.Context, eventID, listID, columnID string, req *dto.ChoiceInput) (*domain.AttendanceChoice, error) {
	if valid, msg := req.Validate(); !valid {
		return nil, NewValidationError("title", msg)
	}
	list, err := s.GetList(ctx, eventID, listID)
	if err != nil {
		return nil, err
	}
	column := list.Column(columnID)
	if column == nil {
		return nil, ErrColumnNotFound
	}
	choice := &domain.AttendanceChoice{
		ID:         uuid.New().String(),
		ColumnID:   column.ID,
		Title:      strings.TrimSpace(req.Title),
		ShortTitle: strings.TrimSpace(req.ShortTitle),
	}
	if err := s.repos.Attendance.AddChoice(ctx, choice); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrColumnNotFound
		}
		return nil, err
	}
	return choice, nil
}

// DeleteChoice removes a choice. A column keeps at least one choice.
func (s *attendanceService) DeleteChoice(ctx context.Context, eventID, listID, columnID, choiceID string) error {
	list, err := s.GetList(ctx, eventID, listID)
	if err != nil {
		return err
	}
	column := list.Column(columnID)
	if column == nil {
		return ErrColumnNotFound
	}
	if column.Choice(choiceID) == nil {
		return ErrChoiceNotFound
	}
	if len(column.Choices) == 1 {
		return NewValidationError("choice", "a column needs at least one choice")
	}
	if err := s.repos.Attendance.DeleteChoice(ctx, columnID, choiceID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrChoiceNotFound
		}
		return err
	}
	return nil
}

// Data returns the matrix of active participants and columns
func (s *attendanceService) Data(ctx context.Context, eventID, listID string) (*dto.AttendanceData, error) {
	list, err := s.GetList(ctx, eventID, listID)
	if err != nil {
		return nil, err
	}
	participants, err := s.repos.Participants.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	fillouts, err := s.repos.Attendance.ListFillouts(ctx, listID)
	if err != nil {
		return nil, err
	}

	cells := make(map[string]map[string]dto.AttendanceCell)
	for _, f := range fillouts {
		if list.Column(f.ColumnID) == nil {
			continue
		}
		if cells[f.ParticipantID] == nil {
			cells[f.ParticipantID] = make(map[string]dto.AttendanceCell)
		}
		cells[f.ParticipantID][f.ColumnID] = dto.AttendanceCell{ChoiceID: f.ChoiceID, Comment: f.Comment}
	}

	active := make([]*domain.Participant, 0, len(participants))
	for _, p := range participants {
		if p.IsActive() {
			active = append(active, p)
		}
	}
	domain.SortParticipantsByName(active)

	rows := make([]dto.AttendanceRow, 0, len(active))
	for _, p := range active {
		row := dto.AttendanceRow{
			ParticipantID:   p.ID,
			ParticipationID: p.ParticipationID,
			NameFirst:       p.NameFirst,
			NameLast:        p.NameLast,
			Status:          p.Status,
			Cells:           cells[p.ID],
		}
		if row.Cells == nil {
			row.Cells = map[string]dto.AttendanceCell{}
		}
		rows = append(rows, row)
	}
	return &dto.AttendanceData{List: list, Rows: rows}, nil
}

// SetFillout stores the selection of one participant in one column
func (s *attendanceService) SetFillout(ctx context.Context, eventID, listID string, req *dto.SetAttendanceFilloutRequest) (*domain.AttendanceFillout, error) {
	if valid, msg := req.Validate(); !valid {
		return nil, NewValidationError("fillout", msg)
	}
	list, err := s.GetList(ctx, eventID, listID)
	if err != nil {
		return nil, err
	}
	column := list.Column(req.ColumnID)
	if column == nil {
		return nil, ErrColumnNotFound
	}
	if req.ChoiceID != nil && column.Choice(*req.ChoiceID) == nil {
		return nil, NewValidationError("choice_id", "choice does not belong to the column")
	}
	if _, err := loadParticipant(ctx, s.repos, eventID, req.ParticipantID); err != nil {
		return nil, err
	}

	fillout := &domain.AttendanceFillout{
		ListID:        listID,
		ParticipantID: req.ParticipantID,
		ColumnID:      column.ID,
		ChoiceID:      req.ChoiceID,
		Comment:       strings.TrimSpace(req.Comment),
		ModifiedAt:    s.now(),
	}
	if err := s.repos.Attendance.UpsertFillout(ctx, fillout); err != nil {
		return nil, err
	}
	return fillout, nil
}

// ClearFillout removes a selection
func (s *attendanceService) ClearFillout(ctx context.Context, eventID, listID, participantID, columnID string) error {
	list, err := s.GetList(ctx, eventID, listID)
	if err != nil {
		return err
	}
	if list.Column(columnID) == nil {
		return ErrColumnNotFound
	}
	err = s.repos.Attendance.DeleteFillout(ctx, listID, participantID, columnID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return err
}

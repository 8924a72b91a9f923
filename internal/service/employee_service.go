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

// employeeService implements EmployeeService
type employeeService struct {
	repos      *repository.Repositories
	attributes AttributeService
	now        func() time.Time
}

// NewEmployeeService creates a new EmployeeService
func NewEmployeeService(repos *repository.Repositories, attributes AttributeService) EmployeeService {
	return &employeeService{
		repos:      repos,
		attributes: attributes,
		now:        time.Now,
	}
}

func (s *employeeService) applyRequest(e *domain.Employee, req *dto.EmployeeRequest) {
	e.Salutation = strings.TrimSpace(req.Salutation)
	e.NameFirst = strings.TrimSpace(req.NameFirst)
	e.NameLast = strings.TrimSpace(req.NameLast)
	e.Email = strings.TrimSpace(req.Email)
	e.Address = req.Address
	e.Phones = req.Phones
	if e.Phones == nil {
		e.Phones = []domain.Phone{}
	}
}

// Create adds an employee to an event
func (s *employeeService) Create(ctx context.Context, actor Actor, eventID string, req *dto.EmployeeRequest) (*domain.Employee, error) {
	fields := req.FieldErrors()
	event, err := requireEvent(ctx, s.repos.Events, eventID)
	if err != nil {
		return nil, err
	}
	attributes, err := s.attributes.EventAttributes(ctx, event)
	if err != nil {
		return nil, err
	}

	now := s.now()
	employee := &domain.Employee{
		ID:         uuid.New().String(),
		EventID:    event.ID,
		CreatedBy:  actor.UserID,
		ModifiedBy: actor.UserID,
		CreatedAt:  now,
		ModifiedAt: now,
	}
	s.applyRequest(employee, req)

	var filloutFields map[string]string
	employee.Fillouts, filloutFields = buildFillouts(event, attributes, domain.OwnerEmployee, employee.ID, "fillouts", req.Fillouts, now)
	mergeFields(fields, filloutFields)
	if err := fieldErrors(fields); err != nil {
		return nil, err
	}

	if err := s.repos.Employees.Create(ctx, employee); err != nil {
		return nil, err
	}
	return employee, nil
}

func (s *employeeService) load(ctx context.Context, eventID, id string) (*domain.Employee, error) {
	if _, err := requireEvent(ctx, s.repos.Events, eventID); err != nil {
		return nil, err
	}
	employee, err := s.repos.Employees.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if employee == nil || employee.EventID != eventID {
		return nil, ErrEmployeeNotFound
	}
	return employee, nil
}

// Get retrieves a non deleted employee
func (s *employeeService) Get(ctx context.Context, eventID, id string) (*domain.Employee, error) {
	employee, err := s.load(ctx, eventID, id)
	if err != nil {
		return nil, err
	}
	if employee.IsDeleted() {
		return nil, ErrEmployeeNotFound
	}
	return employee, nil
}

// List lists employees of an event
func (s *employeeService) List(ctx context.Context, eventID string, query *dto.ListQuery) ([]*domain.Employee, int, error) {
	if _, err := requireEvent(ctx, s.repos.Events, eventID); err != nil {
		return nil, 0, err
	}
	query.SetDefaults()
	return s.repos.Employees.ListByEvent(ctx, eventID, repository.ListFilter{
		IncludeDeleted: query.IncludeDeleted,
		Limit:          query.Limit,
		Offset:         query.Offset(),
	})
}

// Update replaces the employee data and fillouts
func (s *employeeService) Update(ctx context.Context, actor Actor, eventID, id string, req *dto.EmployeeRequest) (*domain.Employee, error) {
	fields := req.FieldErrors()
	employee, err := s.Get(ctx, eventID, id)
	if err != nil {
		return nil, err
	}
	event, err := requireEvent(ctx, s.repos.Events, eventID)
	if err != nil {
		return nil, err
	}
	attributes, err := s.attributes.EventAttributes(ctx, event)
	if err != nil {
		return nil, err
	}

	now := s.now()
	fillouts, filloutFields := buildFillouts(event, attributes, domain.OwnerEmployee, employee.ID, "fillouts", req.Fillouts, now)
	mergeFields(fields, filloutFields)
	if err := fieldErrors(fields); err != nil {
		return nil, err
	}

	s.applyRequest(employee, req)
	employee.ModifiedBy = actor.UserID
	employee.ModifiedAt = now

	if err := s.repos.Employees.Update(ctx, employee, replacing(fillouts)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}
	return s.Get(ctx, eventID, id)
}

// Delete soft deletes an employee
func (s *employeeService) Delete(ctx context.Context, eventID, id string) error {
	if _, err := s.Get(ctx, eventID, id); err != nil {
		return err
	}
	if err := s.repos.Employees.SoftDelete(ctx, id, s.now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEmployeeNotFound
		}
		return err
	}
	return nil
}

// Restore undoes a soft delete
func (s *employeeService) Restore(ctx context.Context, eventID, id string) (*domain.Employee, error) {
	employee, err := s.load(ctx, eventID, id)
	if err != nil {
		return nil, err
	}
	if !employee.IsDeleted() {
		return nil, ErrNotDeleted
	}
	if err := s.repos.Employees.Restore(ctx, id); err != nil {
		return nil, err
	}
	return s.Get(ctx, eventID, id)
}

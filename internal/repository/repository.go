package repository

import (
	"context"
	"errors"
	"time"

	"github.com/theoboldt/juvem-sub001/internal/domain"
)

// ErrNotFound is returned by mutations that matched no row
var ErrNotFound = errors.New("record not found")

// ListFilter holds pagination and soft delete visibility
type ListFilter struct {
	IncludeDeleted bool
	Limit          int
	Offset         int
}

// EventFilter narrows event listings
type EventFilter struct {
	ListFilter
	VisibleOnly bool
	ActiveOnly  bool
}

// EventRepository persists events
type EventRepository interface {
	// Create inserts a new event including its attribute assignment
	Create(ctx context.Context, event *domain.Event) error
	// GetByID returns the event, soft deleted ones included, or nil
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	// List returns a page of events ordered by start date and the total count
	List(ctx context.Context, filter EventFilter) ([]*domain.Event, int, error)
	// Update stores all mutable fields
	Update(ctx context.Context, event *domain.Event) error
	// SoftDelete marks the event deleted
	SoftDelete(ctx context.Context, id string, at time.Time) error
	// Restore clears the deleted mark
	Restore(ctx context.Context, id string) error
	// SetAttributes replaces the set of acquisition attributes of the event
	SetAttributes(ctx context.Context, eventID string, attributeIDs []string) error
}

// ParticipationRepository persists participations with their participants
type ParticipationRepository interface {
	// Create inserts the participation, its participants and all fillouts atomically
	Create(ctx context.Context, participation *domain.Participation) error
	// GetByID returns the participation with participants and fillouts loaded, or nil
	GetByID(ctx context.Context, id string) (*domain.Participation, error)
	// ListByEvent returns participations of an event with participants loaded
	ListByEvent(ctx context.Context, eventID string, filter ListFilter) ([]*domain.Participation, int, error)
	// Update stores the contact fields and, unless fillouts is nil, replaces
	// the participation fillouts in the same write
	Update(ctx context.Context, participation *domain.Participation, fillouts []*domain.Fillout) error
	// SoftDelete marks the participation and its participants deleted
	SoftDelete(ctx context.Context, id string, at time.Time) error
	// Restore clears the deleted mark of the participation and of the
	// participants deleted along with it
	Restore(ctx context.Context, id string) error
}

// ParticipantRepository persists single participants
type ParticipantRepository interface {
	// GetByID returns the participant with fillouts loaded, or nil
	GetByID(ctx context.Context, id string) (*domain.Participant, error)
	// ListByEvent returns all non deleted participants of an event
	ListByEvent(ctx context.Context, eventID string) ([]*domain.Participant, error)
	// CountActiveByEvent counts non deleted participants with an active status
	CountActiveByEvent(ctx context.Context, eventID string) (int, error)
	// Update stores personal data and base price and, unless fillouts is
	// nil, replaces the participant fillouts in the same write
	Update(ctx context.Context, participant *domain.Participant, fillouts []*domain.Fillout) error
	// UpdateStatus stores the new status and the transition record atomically
	UpdateStatus(ctx context.Context, participant *domain.Participant, transition *domain.StatusTransition) error
	// ListTransitions returns the status history, oldest first
	ListTransitions(ctx context.Context, participantID string) ([]*domain.StatusTransition, error)
	// SoftDelete marks the participant deleted
	SoftDelete(ctx context.Context, id string, at time.Time) error
	// Restore clears the deleted mark
	Restore(ctx context.Context, id string) error
}

// EmployeeRepository persists employees
type EmployeeRepository interface {
	Create(ctx context.Context, employee *domain.Employee) error
	GetByID(ctx context.Context, id string) (*domain.Employee, error)
	ListByEvent(ctx context.Context, eventID string, filter ListFilter) ([]*domain.Employee, int, error)
	// Update stores the employee and, unless fillouts is nil, replaces its fillouts
	Update(ctx context.Context, employee *domain.Employee, fillouts []*domain.Fillout) error
	SoftDelete(ctx context.Context, id string, at time.Time) error
	Restore(ctx context.Context, id string) error
}

// AttributeRepository persists acquisition attributes and their options
type AttributeRepository interface {
	Create(ctx context.Context, attribute *domain.Attribute) error
	// GetByID returns the attribute with options, soft deleted ones included, or nil
	GetByID(ctx context.Context, id string) (*domain.Attribute, error)
	// List returns attributes ordered by sort, then ID
	List(ctx context.Context, includeDeleted bool) ([]*domain.Attribute, error)
	// ListByIDs returns the non deleted attributes among ids, ordered by sort, then ID
	ListByIDs(ctx context.Context, ids []string) ([]*domain.Attribute, error)
	Update(ctx context.Context, attribute *domain.Attribute) error
	SoftDelete(ctx context.Context, id string, at time.Time) error
	AddOption(ctx context.Context, option *domain.AttributeOption) error
	UpdateOption(ctx context.Context, option *domain.AttributeOption) error
	DeleteOption(ctx context.Context, attributeID, optionID string) error
}

// FilloutValueUpdate is the decoded value of one legacy fillout
type FilloutValueUpdate struct {
	FilloutID string
	Value     domain.Value
}

// FilloutRepository persists fillouts
type FilloutRepository interface {
	// ListByOwners returns fillouts of the given owners keyed by owner ID
	ListByOwners(ctx context.Context, ownerType domain.OwnerType, ownerIDs []string) (map[string][]*domain.Fillout, error)
	// ReplaceForOwner swaps all fillouts of an owner atomically
	ReplaceForOwner(ctx context.Context, ownerType domain.OwnerType, ownerID string, fillouts []*domain.Fillout) error
	// ListLegacy returns up to limit fillouts with a raw legacy value whose ID sorts after afterID
	ListLegacy(ctx context.Context, afterID string, limit int) ([]*domain.Fillout, error)
	// ApplyMigration stores decoded values and clears their legacy value in one transaction
	ApplyMigration(ctx context.Context, updates []FilloutValueUpdate) error
}

// PaymentRepository persists payment events
type PaymentRepository interface {
	// Create inserts all events in one transaction
	Create(ctx context.Context, events ...*domain.PaymentEvent) error
	// ListByParticipants returns events keyed by participant ID, oldest first
	ListByParticipants(ctx context.Context, participantIDs []string) (map[string][]*domain.PaymentEvent, error)
}

// InvoiceRepository persists invoices
type InvoiceRepository interface {
	// NextSequence allocates the next invoice sequence number of an event
	NextSequence(ctx context.Context, eventID string) (int, error)
	Create(ctx context.Context, invoice *domain.Invoice) error
	GetByID(ctx context.Context, id string) (*domain.Invoice, error)
	// ListByEvent returns invoices newest first
	ListByEvent(ctx context.Context, eventID string) ([]*domain.Invoice, error)
	// ListByParticipation returns invoices newest first
	ListByParticipation(ctx context.Context, participationID string) ([]*domain.Invoice, error)
}

// AttendanceRepository persists attendance lists and their cells
type AttendanceRepository interface {
	CreateList(ctx context.Context, list *domain.AttendanceList) error
	// GetList returns the list with its columns and choices, or nil
	GetList(ctx context.Context, id string) (*domain.AttendanceList, error)
	ListByEvent(ctx context.Context, eventID string) ([]*domain.AttendanceList, error)
	UpdateList(ctx context.Context, list *domain.AttendanceList) error
	SoftDeleteList(ctx context.Context, id string, at time.Time) error
	// AddColumn inserts the column together with its choices
	AddColumn(ctx context.Context, column *domain.AttendanceColumn) error
	DeleteColumn(ctx context.Context, listID, columnID string) error
	AddChoice(ctx context.Context, choice *domain.AttendanceChoice) error
	// DeleteChoice removes a choice; cells that selected it keep their comment
	DeleteChoice(ctx context.Context, columnID, choiceID string) error
	ListFillouts(ctx context.Context, listID string) ([]*domain.AttendanceFillout, error)
	UpsertFillout(ctx context.Context, fillout *domain.AttendanceFillout) error
	DeleteFillout(ctx context.Context, listID, participantID, columnID string) error
}

// CommentRepository persists comments
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	GetByID(ctx context.Context, id string) (*domain.Comment, error)
	// ListBySubject returns non deleted comments oldest first
	ListBySubject(ctx context.Context, subject domain.OwnerType, subjectID string) ([]*domain.Comment, error)
	Update(ctx context.Context, comment *domain.Comment) error
	SoftDelete(ctx context.Context, id string, at time.Time) error
	// CountBySubjects counts non deleted comments keyed by subject ID
	CountBySubjects(ctx context.Context, subject domain.OwnerType, subjectIDs []string) (map[string]int, error)
}

// Repositories bundles every repository of one storage backend
type Repositories struct {
	Events         EventRepository
	Participations ParticipationRepository
	Participants   ParticipantRepository
	Employees      EmployeeRepository
	Attributes     AttributeRepository
	Fillouts       FilloutRepository
	Payments       PaymentRepository
	Invoices       InvoiceRepository
	Attendance     AttendanceRepository
	Comments       CommentRepository
}

package service

import (
	"context"
	"io"

	"github.com/theoboldt/juvem-sub001/internal/domain"
	"github.com/theoboldt/juvem-sub001/internal/dto"
)

// EventService defines the interface for event management
type EventService interface {
	// Create creates a new event
	Create(ctx context.Context, actor Actor, req *dto.CreateEventRequest) (*domain.Event, error)
	// Get retrieves a non deleted event by ID
	Get(ctx context.Context, id string) (*domain.Event, error)
	// List lists events with pagination and visibility filters
	List(ctx context.Context, query *dto.ListEventsQuery) ([]*domain.Event, int, error)
	// ListPublic lists visible and active events
	ListPublic(ctx context.Context, query *dto.ListQuery) ([]*domain.Event, int, error)
	// Update applies a partial update
	Update(ctx context.Context, actor Actor, id string, req *dto.UpdateEventRequest) (*domain.Event, error)
	// Delete soft deletes an event
	Delete(ctx context.Context, actor Actor, id string) error
	// Restore undoes a soft delete
	Restore(ctx context.Context, actor Actor, id string) (*domain.Event, error)
	// AssignAttributes replaces the acquisition attributes used by the event
	AssignAttributes(ctx context.Context, actor Actor, id string, attributeIDs []string) (*domain.Event, error)
}

// AttributeService defines the interface for acquisition attribute management
type AttributeService interface {
	// Create creates an attribute with its options
	Create(ctx context.Context, req *dto.AttributeRequest) (*domain.Attribute, error)
	// Get retrieves a non deleted attribute
	Get(ctx context.Context, id string) (*domain.Attribute, error)
	// List lists attributes ordered by sort
	List(ctx context.Context, includeDeleted bool) ([]*domain.Attribute, error)
	// Update replaces the attribute definition, options are left untouched
	Update(ctx context.Context, id string, req *dto.AttributeRequest) (*domain.Attribute, error)
	// Delete soft deletes an attribute
	Delete(ctx context.Context, id string) error
	// AddOption adds an option to a choice attribute
	AddOption(ctx context.Context, attributeID string, req *dto.OptionRequest) (*domain.AttributeOption, error)
	// UpdateOption replaces an option
	UpdateOption(ctx context.Context, attributeID, optionID string, req *dto.OptionRequest) (*domain.AttributeOption, error)
	// DeleteOption removes an option
	DeleteOption(ctx context.Context, attributeID, optionID string) error
	// EventAttributes returns the non deleted attributes assigned to the event
	EventAttributes(ctx context.Context, event *domain.Event) ([]*domain.Attribute, error)
	// ValidateFillouts checks inputs against the event's attributes and builds fillouts of the owner
	ValidateFillouts(ctx context.Context, event *domain.Event, owner domain.OwnerType, ownerID string, inputs []dto.FilloutInput) ([]*domain.Fillout, error)
	// TextualValue renders a value for documents and exports
	TextualValue(locale string, attribute *domain.Attribute, value domain.Value) string
}

// ParticipationService defines the interface for registrations and participants
type ParticipationService interface {
	// Register stores a public registration
	Register(ctx context.Context, eventID string, req *dto.RegisterRequest) (*domain.Participation, error)
	// Get retrieves a participation with participants and fillouts
	Get(ctx context.Context, eventID, id string) (*domain.Participation, error)
	// ListByEvent lists participations of an event
	ListByEvent(ctx context.Context, eventID string, query *dto.ListQuery) ([]*domain.Participation, int, error)
	// UpdateContact replaces contact data and optionally participation fillouts
	UpdateContact(ctx context.Context, eventID, id string, req *dto.UpdateContactRequest) (*domain.Participation, error)
	// Delete soft deletes a participation and its participants
	Delete(ctx context.Context, eventID, id string) error
	// Restore undoes a soft delete of a participation
	Restore(ctx context.Context, eventID, id string) (*domain.Participation, error)
	// GetParticipant retrieves a participant
	GetParticipant(ctx context.Context, eventID, id string) (*domain.Participant, error)
	// UpdateParticipant applies a partial participant update
	UpdateParticipant(ctx context.Context, eventID, id string, req *dto.UpdateParticipantRequest) (*domain.Participant, error)
	// ChangeStatus moves a participant along the status machine
	ChangeStatus(ctx context.Context, actor Actor, eventID, participantID string, req *dto.ChangeStatusRequest) (*domain.Participant, error)
	// StatusHistory returns the recorded status transitions
	StatusHistory(ctx context.Context, eventID, participantID string) ([]*domain.StatusTransition, error)
	// DeleteParticipant soft deletes a single participant
	DeleteParticipant(ctx context.Context, eventID, id string) error
	// RestoreParticipant undoes a soft delete of a participant
	RestoreParticipant(ctx context.Context, eventID, id string) (*domain.Participant, error)
}

// EmployeeService defines the interface for employee management
type EmployeeService interface {
	Create(ctx context.Context, actor Actor, eventID string, req *dto.EmployeeRequest) (*domain.Employee, error)
	Get(ctx context.Context, eventID, id string) (*domain.Employee, error)
	List(ctx context.Context, eventID string, query *dto.ListQuery) ([]*domain.Employee, int, error)
	Update(ctx context.Context, actor Actor, eventID, id string, req *dto.EmployeeRequest) (*domain.Employee, error)
	Delete(ctx context.Context, eventID, id string) error
	Restore(ctx context.Context, eventID, id string) (*domain.Employee, error)
}

// PaymentService defines the interface for prices and payments
type PaymentService interface {
	// ParticipantSummary returns the price state and payment events of a participant
	ParticipantSummary(ctx context.Context, eventID, participantID string) (*domain.PriceSummary, []*domain.PaymentEvent, error)
	// ParticipationSummary sums the active participants of a participation
	ParticipationSummary(ctx context.Context, eventID, participationID string) (*dto.ParticipationPayments, error)
	// EventSummary sums the active participants of an event
	EventSummary(ctx context.Context, eventID string) (*dto.EventPayments, error)
	// Summaries returns the price state of every non deleted participant keyed by ID
	Summaries(ctx context.Context, eventID string) (map[string]*domain.PriceSummary, error)
	// SetPrice books a price override for several participants
	SetPrice(ctx context.Context, actor Actor, eventID string, req *dto.SetPriceRequest) ([]*domain.PaymentEvent, error)
	// RecordPayment distributes a payment or refund over a participation
	RecordPayment(ctx context.Context, actor Actor, eventID, participationID string, req *dto.RecordPaymentRequest) ([]*domain.PaymentEvent, error)
}

// InvoiceService defines the interface for invoice generation
type InvoiceService interface {
	// Generate renders and stores a new invoice of a participation
	Generate(ctx context.Context, actor Actor, eventID string, req *dto.CreateInvoiceRequest) (*domain.Invoice, error)
	ListByEvent(ctx context.Context, eventID string) ([]*domain.Invoice, error)
	ListByParticipation(ctx context.Context, eventID, participationID string) ([]*domain.Invoice, error)
	// Latest returns the newest invoice of a participation
	Latest(ctx context.Context, eventID, participationID string) (*domain.Invoice, error)
	// Download opens the stored document, callers must close the reader
	Download(ctx context.Context, eventID, invoiceID string) (*domain.Invoice, io.ReadCloser, error)
}

// AttendanceService defines the interface for attendance lists
type AttendanceService interface {
	CreateList(ctx context.Context, eventID string, req *dto.AttendanceListRequest) (*domain.AttendanceList, error)
	GetList(ctx context.Context, eventID, listID string) (*domain.AttendanceList, error)
	ListByEvent(ctx context.Context, eventID string) ([]*domain.AttendanceList, error)
	UpdateList(ctx context.Context, eventID, listID string, req *dto.AttendanceListRequest) (*domain.AttendanceList, error)
	DeleteList(ctx context.Context, eventID, listID string) error
	AddColumn(ctx context.Context, eventID, listID string, req *dto.AddColumnRequest) (*domain.AttendanceColumn, error)
	DeleteColumn(ctx context.Context, eventID, listID, columnID string) error
	AddChoice(ctx context.Context, eventID, listID, columnID string, req *dto.ChoiceInput) (*domain.AttendanceChoice, error)
	DeleteChoice(ctx context.Context, eventID, listID, columnID, choiceID string) error
	// Data returns the matrix of active participants and columns
	Data(ctx context.Context, eventID, listID string) (*dto.AttendanceData, error)
	// SetFillout stores the selection of one participant in one column
	SetFillout(ctx context.Context, eventID, listID string, req *dto.SetAttendanceFilloutRequest) (*domain.AttendanceFillout, error)
	// ClearFillout removes a selection
	ClearFillout(ctx context.Context, eventID, listID, participantID, columnID string) error
}

// CommentService defines the interface for comments on records
type CommentService interface {
	Create(ctx context.Context, actor Actor, req *dto.CreateCommentRequest) (*domain.Comment, error)
	// List returns comments of a subject, oldest first
	List(ctx context.Context, subject domain.OwnerType, subjectID string) ([]*domain.Comment, error)
	// Update changes the content, only allowed for the creator or an admin
	Update(ctx context.Context, actor Actor, id string, req *dto.UpdateCommentRequest) (*domain.Comment, error)
	// Delete soft deletes, only allowed for the creator or an admin
	Delete(ctx context.Context, actor Actor, id string) error
	// Count counts comments keyed by subject ID
	Count(ctx context.Context, subject domain.OwnerType, subjectIDs []string) (map[string]int, error)
}

// GraphService defines the interface for the participant group graph
type GraphService interface {
	// Build returns the graph of an event, optionally connecting participants to options of a choice attribute
	Build(ctx context.Context, eventID, attributeID string) (*domain.Graph, error)
}

// Document is a rendered file
type Document struct {
	Name        string
	ContentType string
	Data        []byte
}

// Document output formats
const (
	FormatHTML = "html"
	FormatPDF  = "pdf"
)

// ProfileService defines the interface for participant profiles
type ProfileService interface {
	// Render produces the profile of a participant as html or pdf
	Render(ctx context.Context, eventID, participantID, locale, format string) (*Document, error)
}

// ExportService defines the interface for xlsx exports
type ExportService interface {
	Participants(ctx context.Context, eventID, locale string, w io.Writer) error
	Participations(ctx context.Context, eventID, locale string, w io.Writer) error
	Employees(ctx context.Context, eventID, locale string, w io.Writer) error
}

// FilloutMigrationService defines the interface for the legacy value migration
type FilloutMigrationService interface {
	// Run decodes all legacy fillout values batch by batch
	Run(ctx context.Context, opts MigrationOptions) (*MigrationReport, error)
}

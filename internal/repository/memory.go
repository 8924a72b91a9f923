package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/theoboldt/juvem-sub001/internal/domain"
)

// MemoryStore is an in-memory storage backend used by tests and
// DATABASE_DRIVER=memory. All reads return copies.
type MemoryStore struct {
	mu             sync.RWMutex
	events         map[string]*domain.Event
	participations map[string]*domain.Participation
	participants   map[string]*domain.Participant
	transitions    map[string][]*domain.StatusTransition
	employees      map[string]*domain.Employee
	attributes     map[string]*domain.Attribute
	fillouts       map[string]*domain.Fillout
	payments       []*domain.PaymentEvent
	invoices       map[string]*domain.Invoice
	sequences      map[string]int
	lists          map[string]*domain.AttendanceList
	cells          map[string]*domain.AttendanceFillout
	comments       map[string]*domain.Comment
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events:         make(map[string]*domain.Event),
		participations: make(map[string]*domain.Participation),
		participants:   make(map[string]*domain.Participant),
		transitions:    make(map[string][]*domain.StatusTransition),
		employees:      make(map[string]*domain.Employee),
		attributes:     make(map[string]*domain.Attribute),
		fillouts:       make(map[string]*domain.Fillout),
		invoices:       make(map[string]*domain.Invoice),
		sequences:      make(map[string]int),
		lists:          make(map[string]*domain.AttendanceList),
		cells:          make(map[string]*domain.AttendanceFillout),
		comments:       make(map[string]*domain.Comment),
	}
}

// NewMemoryRepositories wires all repositories on one fresh MemoryStore
func NewMemoryRepositories() *Repositories {
	return NewMemoryStore().Repositories()
}

// Repositories exposes the store through the repository interfaces
func (s *MemoryStore) Repositories() *Repositories {
	return &Repositories{
		Events:         &memoryEventRepository{s},
		Participations: &memoryParticipationRepository{s},
		Participants:   &memoryParticipantRepository{s},
		Employees:      &memoryEmployeeRepository{s},
		Attributes:     &memoryAttributeRepository{s},
		Fillouts:       &memoryFilloutRepository{s},
		Payments:       &memoryPaymentRepository{s},
		Invoices:       &memoryInvoiceRepository{s},
		Attendance:     &memoryAttendanceRepository{s},
		Comments:       &memoryCommentRepository{s},
	}
}

func paginate[T any](items []T, filter ListFilter) []T {
	if filter.Offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit := pageLimit(filter); filter.Offset+limit < end {
		end = filter.Offset + limit
	}
	return items[filter.Offset:end]
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func copyInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyValue(v domain.Value) domain.Value {
	out := domain.Value{}
	if v.Text != nil {
		s := *v.Text
		out.Text = &s
	}
	if v.Number != nil {
		n := *v.Number
		out.Number = &n
	}
	if v.Bool != nil {
		b := *v.Bool
		out.Bool = &b
	}
	if v.Date != nil {
		d := *v.Date
		out.Date = &d
	}
	if v.Choices != nil {
		out.Choices = append([]string{}, v.Choices...)
	}
	return out
}

func copyFillout(f *domain.Fillout) *domain.Fillout {
	c := *f
	c.Value = copyValue(f.Value)
	if f.LegacyValue != nil {
		raw := *f.LegacyValue
		c.LegacyValue = &raw
	}
	return &c
}

func copyEvent(e *domain.Event) *domain.Event {
	c := *e
	c.EndDate = copyTime(e.EndDate)
	c.Price = copyInt64(e.Price)
	if e.ParticipantsLimit != nil {
		limit := *e.ParticipantsLimit
		c.ParticipantsLimit = &limit
	}
	c.AttributeIDs = append([]string{}, e.AttributeIDs...)
	c.DeletedAt = copyTime(e.DeletedAt)
	return &c
}

func copyParticipant(p *domain.Participant) *domain.Participant {
	c := *p
	c.Food = append([]string{}, p.Food...)
	c.BasePrice = copyInt64(p.BasePrice)
	c.DeletedAt = copyTime(p.DeletedAt)
	c.Fillouts = nil
	return &c
}

func copyParticipation(p *domain.Participation) *domain.Participation {
	c := *p
	c.Phones = append([]domain.Phone{}, p.Phones...)
	c.DeletedAt = copyTime(p.DeletedAt)
	c.Participants = nil
	c.Fillouts = nil
	return &c
}

func copyEmployee(e *domain.Employee) *domain.Employee {
	c := *e
	c.Phones = append([]domain.Phone{}, e.Phones...)
	c.DeletedAt = copyTime(e.DeletedAt)
	c.Fillouts = nil
	return &c
}

func copyAttribute(a *domain.Attribute) *domain.Attribute {
	c := *a
	c.DeletedAt = copyTime(a.DeletedAt)
	c.Options = make([]*domain.AttributeOption, len(a.Options))
	for i, o := range a.Options {
		opt := *o
		c.Options[i] = &opt
	}
	domain.SortOptions(c.Options)
	return &c
}

func copyList(l *domain.AttendanceList) *domain.AttendanceList {
	c := *l
	c.DeletedAt = copyTime(l.DeletedAt)
	c.Columns = make([]*domain.AttendanceColumn, len(l.Columns))
	for i, col := range l.Columns {
		cc := *col
		cc.Choices = make([]*domain.AttendanceChoice, len(col.Choices))
		for j, ch := range col.Choices {
			choice := *ch
			cc.Choices[j] = &choice
		}
		c.Columns[i] = &cc
	}
	sort.SliceStable(c.Columns, func(i, j int) bool {
		if c.Columns[i].Sort != c.Columns[j].Sort {
			return c.Columns[i].Sort < c.Columns[j].Sort
		}
		return c.Columns[i].ID < c.Columns[j].ID
	})
	return &c
}

// filloutsOf returns copies of an owner's fillouts, caller holds the lock
func (s *MemoryStore) filloutsOf(ownerType domain.OwnerType, ownerID string) []*domain.Fillout {
	out := make([]*domain.Fillout, 0)
	for _, f := range s.fillouts {
		if f.OwnerType == ownerType && f.OwnerID == ownerID {
			out = append(out, copyFillout(f))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// putFillouts stores fillouts, failing on a duplicate owner/attribute pair. Caller holds the lock.
func (s *MemoryStore) putFillouts(fillouts []*domain.Fillout) error {
	for _, f := range fillouts {
		for _, existing := range s.fillouts {
			if existing.OwnerType == f.OwnerType && existing.OwnerID == f.OwnerID && existing.AttributeID == f.AttributeID {
				return fmt.Errorf("duplicate fillout for attribute %s", f.AttributeID)
			}
		}
		s.fillouts[f.ID] = copyFillout(f)
	}
	return nil
}

// replaceFillouts swaps the fillouts of an owner; the store is unchanged on error.
// Callers hold s.mu.
func (s *MemoryStore) replaceFillouts(ownerType domain.OwnerType, ownerID string, fillouts []*domain.Fillout) error {
	staged := NewMemoryStore()
	if err := staged.putFillouts(fillouts); err != nil {
		return err
	}
	for id, f := range s.fillouts {
		if f.OwnerType == ownerType && f.OwnerID == ownerID {
			delete(s.fillouts, id)
		}
	}
	for id, f := range staged.fillouts {
		s.fillouts[id] = f
	}
	return nil
}

func (s *MemoryStore) participantWithFillouts(p *domain.Participant) *domain.Participant {
	c := copyParticipant(p)
	c.Fillouts = s.filloutsOf(domain.OwnerParticipant, p.ID)
	return c
}

// ---- events ----

type memoryEventRepository struct{ s *MemoryStore }

func (r *memoryEventRepository) Create(ctx context.Context, e *domain.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.events[e.ID]; exists {
		return fmt.Errorf("event %s already exists", e.ID)
	}
	r.s.events[e.ID] = copyEvent(e)
	return nil
}

func (r *memoryEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.events[id]
	if !ok {
		return nil, nil
	}
	return copyEvent(e), nil
}

func (r *memoryEventRepository) List(ctx context.Context, filter EventFilter) ([]*domain.Event, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	events := make([]*domain.Event, 0)
	for _, e := range r.s.events {
		if !filter.IncludeDeleted && e.IsDeleted() {
			continue
		}
		if filter.VisibleOnly && !e.IsVisible {
			continue
		}
		if filter.ActiveOnly && !e.IsActive {
			continue
		}
		events = append(events, copyEvent(e))
	}
	sort.Slice(events, func(i, j int) bool {
		if !events[i].StartDate.Equal(events[j].StartDate) {
			return events[i].StartDate.After(events[j].StartDate)
		}
		return events[i].ID < events[j].ID
	})
	return paginate(events, filter.ListFilter), len(events), nil
}

func (r *memoryEventRepository) Update(ctx context.Context, e *domain.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.events[e.ID]
	if !ok || existing.IsDeleted() {
		return ErrNotFound
	}
	updated := copyEvent(e)
	updated.AttributeIDs = existing.AttributeIDs
	updated.CreatedAt = existing.CreatedAt
	updated.CreatedBy = existing.CreatedBy
	updated.DeletedAt = nil
	r.s.events[e.ID] = updated
	return nil
}

func (r *memoryEventRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok || e.IsDeleted() {
		return ErrNotFound
	}
	e.DeletedAt = &at
	e.ModifiedAt = at
	return nil
}

func (r *memoryEventRepository) Restore(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok || !e.IsDeleted() {
		return ErrNotFound
	}
	e.DeletedAt = nil
	e.ModifiedAt = time.Now()
	return nil
}

func (r *memoryEventRepository) SetAttributes(ctx context.Context, eventID string, attributeIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[eventID]
	if !ok {
		return ErrNotFound
	}
	ids := append([]string{}, attributeIDs...)
	sort.Strings(ids)
	e.AttributeIDs = ids
	return nil
}

// ---- participations ----

type memoryParticipationRepository struct{ s *MemoryStore }

func (r *memoryParticipationRepository) Create(ctx context.Context, p *domain.Participation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.participations[p.ID]; exists {
		return fmt.Errorf("participation %s already exists", p.ID)
	}

	// Validate everything before writing so a failure leaves no partial state
	all := append([]*domain.Fillout{}, p.Fillouts...)
	for _, participant := range p.Participants {
		if _, exists := r.s.participants[participant.ID]; exists {
			return fmt.Errorf("participant %s already exists", participant.ID)
		}
		all = append(all, participant.Fillouts...)
	}
	staged := NewMemoryStore()
	if err := staged.putFillouts(all); err != nil {
		return err
	}

	r.s.participations[p.ID] = copyParticipation(p)
	for _, participant := range p.Participants {
		r.s.participants[participant.ID] = copyParticipant(participant)
	}
	for id, f := range staged.fillouts {
		r.s.fillouts[id] = f
	}
	return nil
}

func (r *memoryParticipationRepository) load(p *domain.Participation) *domain.Participation {
	c := copyParticipation(p)
	c.Participants = make([]*domain.Participant, 0)
	for _, participant := range r.s.participants {
		if participant.ParticipationID == p.ID {
			c.Participants = append(c.Participants, r.s.participantWithFillouts(participant))
		}
	}
	domain.SortParticipantsByCreation(c.Participants)
	c.Fillouts = r.s.filloutsOf(domain.OwnerParticipation, p.ID)
	return c
}

func (r *memoryParticipationRepository) GetByID(ctx context.Context, id string) (*domain.Participation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.participations[id]
	if !ok {
		return nil, nil
	}
	return r.load(p), nil
}

func (r *memoryParticipationRepository) ListByEvent(ctx context.Context, eventID string, filter ListFilter) ([]*domain.Participation, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	participations := make([]*domain.Participation, 0)
	for _, p := range r.s.participations {
		if p.EventID != eventID || (!filter.IncludeDeleted && p.IsDeleted()) {
			continue
		}
		participations = append(participations, r.load(p))
	}
	sort.Slice(participations, func(i, j int) bool {
		if !participations[i].CreatedAt.Equal(participations[j].CreatedAt) {
			return participations[i].CreatedAt.Before(participations[j].CreatedAt)
		}
		return participations[i].ID < participations[j].ID
	})
	return paginate(participations, filter), len(participations), nil
}

func (r *memoryParticipationRepository) Update(ctx context.Context, p *domain.Participation, fillouts []*domain.Fillout) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.participations[p.ID]
	if !ok || existing.IsDeleted() {
		return ErrNotFound
	}
	if fillouts != nil {
		if err := r.s.replaceFillouts(domain.OwnerParticipation, p.ID, fillouts); err != nil {
			return err
		}
	}
	existing.Salutation = p.Salutation
	existing.NameFirst = p.NameFirst
	existing.NameLast = p.NameLast
	existing.Address = p.Address
	existing.Email = p.Email
	existing.Phones = append([]domain.Phone{}, p.Phones...)
	existing.ModifiedAt = p.ModifiedAt
	return nil
}

func (r *memoryParticipationRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.participations[id]
	if !ok || p.IsDeleted() {
		return ErrNotFound
	}
	p.DeletedAt = &at
	p.ModifiedAt = at
	for _, participant := range r.s.participants {
		if participant.ParticipationID == id && !participant.IsDeleted() {
			deletedAt := at
			participant.DeletedAt = &deletedAt
			participant.ModifiedAt = at
		}
	}
	return nil
}

func (r *memoryParticipationRepository) Restore(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.participations[id]
	if !ok || !p.IsDeleted() {
		return ErrNotFound
	}
	deletedAt := *p.DeletedAt
	now := time.Now()
	p.DeletedAt = nil
	p.ModifiedAt = now
	for _, participant := range r.s.participants {
		if participant.ParticipationID == id && participant.DeletedAt != nil && participant.DeletedAt.Equal(deletedAt) {
			participant.DeletedAt = nil
			participant.ModifiedAt = now
		}
	}
	return nil
}

// ---- participants ----

type memoryParticipantRepository struct{ s *MemoryStore }

func (r *memoryParticipantRepository) GetByID(ctx context.Context, id string) (*domain.Participant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.participants[id]
	if !ok {
		return nil, nil
	}
	return r.s.participantWithFillouts(p), nil
}

func (r *memoryParticipantRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.Participant, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	participants := make([]*domain.Participant, 0)
	for _, p := range r.s.participants {
		if p.EventID == eventID && !p.IsDeleted() {
			participants = append(participants, r.s.participantWithFillouts(p))
		}
	}
	domain.SortParticipantsByCreation(participants)
	return participants, nil
}

func (r *memoryParticipantRepository) CountActiveByEvent(ctx context.Context, eventID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	count := 0
	for _, p := range r.s.participants {
		if p.EventID == eventID && p.IsActive() {
			count++
		}
	}
	return count, nil
}

func (r *memoryParticipantRepository) Update(ctx context.Context, p *domain.Participant, fillouts []*domain.Fillout) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.participants[p.ID]
	if !ok || existing.IsDeleted() {
		return ErrNotFound
	}
	if fillouts != nil {
		if err := r.s.replaceFillouts(domain.OwnerParticipant, p.ID, fillouts); err != nil {
			return err
		}
	}
	existing.NameFirst = p.NameFirst
	existing.NameLast = p.NameLast
	existing.Birthday = p.Birthday
	existing.Gender = p.Gender
	existing.Food = append([]string{}, p.Food...)
	existing.Info = p.Info
	existing.BasePrice = copyInt64(p.BasePrice)
	existing.ModifiedAt = p.ModifiedAt
	return nil
}

func (r *memoryParticipantRepository) UpdateStatus(ctx context.Context, p *domain.Participant, t *domain.StatusTransition) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.participants[p.ID]
	if !ok || existing.IsDeleted() || existing.Status != t.FromStatus {
		return ErrNotFound
	}
	existing.Status = t.ToStatus
	existing.ModifiedAt = t.ChangedAt
	record := *t
	r.s.transitions[p.ID] = append(r.s.transitions[p.ID], &record)
	return nil
}

func (r *memoryParticipantRepository) ListTransitions(ctx context.Context, participantID string) ([]*domain.StatusTransition, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*domain.StatusTransition, 0, len(r.s.transitions[participantID]))
	for _, t := range r.s.transitions[participantID] {
		c := *t
		out = append(out, &c)
	}
	return out, nil
}

func (r *memoryParticipantRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.participants[id]
	if !ok || p.IsDeleted() {
		return ErrNotFound
	}
	p.DeletedAt = &at
	p.ModifiedAt = at
	return nil
}

func (r *memoryParticipantRepository) Restore(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.participants[id]
	if !ok || !p.IsDeleted() {
		return ErrNotFound
	}
	p.DeletedAt = nil
	p.ModifiedAt = time.Now()
	return nil
}

// ---- employees ----

type memoryEmployeeRepository struct{ s *MemoryStore }

func (r *memoryEmployeeRepository) Create(ctx context.Context, e *domain.Employee) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.employees[e.ID]; exists {
		return fmt.Errorf("employee %s already exists", e.ID)
	}
	staged := NewMemoryStore()
	if err := staged.putFillouts(e.Fillouts); err != nil {
		return err
	}
	r.s.employees[e.ID] = copyEmployee(e)
	for id, f := range staged.fillouts {
		r.s.fillouts[id] = f
	}
	return nil
}

func (r *memoryEmployeeRepository) load(e *domain.Employee) *domain.Employee {
	c := copyEmployee(e)
	c.Fillouts = r.s.filloutsOf(domain.OwnerEmployee, e.ID)
	return c
}

func (r *memoryEmployeeRepository) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.employees[id]
	if !ok {
		return nil, nil
	}
	return r.load(e), nil
}

func (r *memoryEmployeeRepository) ListByEvent(ctx context.Context, eventID string, filter ListFilter) ([]*domain.Employee, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	employees := make([]*domain.Employee, 0)
	for _, e := range r.s.employees {
		if e.EventID != eventID || (!filter.IncludeDeleted && e.IsDeleted()) {
			continue
		}
		employees = append(employees, r.load(e))
	}
	sort.Slice(employees, func(i, j int) bool {
		a, b := employees[i], employees[j]
		if a.NameLast != b.NameLast {
			return a.NameLast < b.NameLast
		}
		if a.NameFirst != b.NameFirst {
			return a.NameFirst < b.NameFirst
		}
		return a.ID < b.ID
	})
	return paginate(employees, filter), len(employees), nil
}

func (r *memoryEmployeeRepository) Update(ctx context.Context, e *domain.Employee, fillouts []*domain.Fillout) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.employees[e.ID]
	if !ok || existing.IsDeleted() {
		return ErrNotFound
	}
	if fillouts != nil {
		if err := r.s.replaceFillouts(domain.OwnerEmployee, e.ID, fillouts); err != nil {
			return err
		}
	}
	updated := copyEmployee(e)
	updated.CreatedAt = existing.CreatedAt
	updated.CreatedBy = existing.CreatedBy
	updated.EventID = existing.EventID
	updated.DeletedAt = nil
	r.s.employees[e.ID] = updated
	return nil
}

func (r *memoryEmployeeRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.employees[id]
	if !ok || e.IsDeleted() {
		return ErrNotFound
	}
	e.DeletedAt = &at
	e.ModifiedAt = at
	return nil
}

func (r *memoryEmployeeRepository) Restore(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.employees[id]
	if !ok || !e.IsDeleted() {
		return ErrNotFound
	}
	e.DeletedAt = nil
	e.ModifiedAt = time.Now()
	return nil
}

// ---- attributes ----

type memoryAttributeRepository struct{ s *MemoryStore }

func (r *memoryAttributeRepository) Create(ctx context.Context, a *domain.Attribute) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.attributes[a.ID]; exists {
		return fmt.Errorf("attribute %s already exists", a.ID)
	}
	r.s.attributes[a.ID] = copyAttribute(a)
	return nil
}

func (r *memoryAttributeRepository) GetByID(ctx context.Context, id string) (*domain.Attribute, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.attributes[id]
	if !ok {
		return nil, nil
	}
	return copyAttribute(a), nil
}

func (r *memoryAttributeRepository) List(ctx context.Context, includeDeleted bool) ([]*domain.Attribute, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	attributes := make([]*domain.Attribute, 0)
	for _, a := range r.s.attributes {
		if includeDeleted || !a.IsDeleted() {
			attributes = append(attributes, copyAttribute(a))
		}
	}
	domain.SortAttributes(attributes)
	return attributes, nil
}

func (r *memoryAttributeRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Attribute, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	attributes := make([]*domain.Attribute, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		a, ok := r.s.attributes[id]
		if !ok || a.IsDeleted() || seen[id] {
			continue
		}
		seen[id] = true
		attributes = append(attributes, copyAttribute(a))
	}
	domain.SortAttributes(attributes)
	return attributes, nil
}

func (r *memoryAttributeRepository) Update(ctx context.Context, a *domain.Attribute) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.attributes[a.ID]
	if !ok || existing.IsDeleted() {
		return ErrNotFound
	}
	updated := copyAttribute(a)
	updated.Options = existing.Options
	updated.CreatedAt = existing.CreatedAt
	updated.DeletedAt = nil
	r.s.attributes[a.ID] = updated
	return nil
}

func (r *memoryAttributeRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.attributes[id]
	if !ok || a.IsDeleted() {
		return ErrNotFound
	}
	a.DeletedAt = &at
	a.ModifiedAt = at
	return nil
}

func (r *memoryAttributeRepository) AddOption(ctx context.Context, o *domain.AttributeOption) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.attributes[o.AttributeID]
	if !ok {
		return ErrNotFound
	}
	opt := *o
	a.Options = append(a.Options, &opt)
	return nil
}

func (r *memoryAttributeRepository) UpdateOption(ctx context.Context, o *domain.AttributeOption) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.attributes[o.AttributeID]
	if !ok {
		return ErrNotFound
	}
	for i, existing := range a.Options {
		if existing.ID == o.ID {
			opt := *o
			a.Options[i] = &opt
			return nil
		}
	}
	return ErrNotFound
}

func (r *memoryAttributeRepository) DeleteOption(ctx context.Context, attributeID, optionID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.attributes[attributeID]
	if !ok {
		return ErrNotFound
	}
	for i, existing := range a.Options {
		if existing.ID == optionID {
			a.Options = append(a.Options[:i], a.Options[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// ---- fillouts ----

type memoryFilloutRepository struct{ s *MemoryStore }

func (r *memoryFilloutRepository) ListByOwners(ctx context.Context, ownerType domain.OwnerType, ownerIDs []string) (map[string][]*domain.Fillout, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := make(map[string][]*domain.Fillout, len(ownerIDs))
	for _, id := range ownerIDs {
		if fillouts := r.s.filloutsOf(ownerType, id); len(fillouts) > 0 {
			result[id] = fillouts
		}
	}
	return result, nil
}

func (r *memoryFilloutRepository) ReplaceForOwner(ctx context.Context, ownerType domain.OwnerType, ownerID string, fillouts []*domain.Fillout) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.replaceFillouts(ownerType, ownerID, fillouts)
}

func (r *memoryFilloutRepository) ListLegacy(ctx context.Context, afterID string, limit int) ([]*domain.Fillout, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	fillouts := make([]*domain.Fillout, 0)
	for _, f := range r.s.fillouts {
		if f.LegacyValue != nil && strings.Compare(f.ID, afterID) > 0 {
			fillouts = append(fillouts, copyFillout(f))
		}
	}
	sort.Slice(fillouts, func(i, j int) bool { return fillouts[i].ID < fillouts[j].ID })
	if limit > 0 && len(fillouts) > limit {
		fillouts = fillouts[:limit]
	}
	return fillouts, nil
}

func (r *memoryFilloutRepository) ApplyMigration(ctx context.Context, updates []FilloutValueUpdate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range updates {
		if _, ok := r.s.fillouts[u.FilloutID]; !ok {
			return fmt.Errorf("fillout %s: %w", u.FilloutID, ErrNotFound)
		}
	}
	now := time.Now()
	for _, u := range updates {
		f := r.s.fillouts[u.FilloutID]
		f.Value = copyValue(u.Value)
		f.LegacyValue = nil
		f.ModifiedAt = now
	}
	return nil
}

// ---- payments ----

type memoryPaymentRepository struct{ s *MemoryStore }

func (r *memoryPaymentRepository) Create(ctx context.Context, events ...*domain.PaymentEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range events {
		c := *e
		r.s.payments = append(r.s.payments, &c)
	}
	return nil
}

func (r *memoryPaymentRepository) ListByParticipants(ctx context.Context, participantIDs []string) (map[string][]*domain.PaymentEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	wanted := make(map[string]bool, len(participantIDs))
	for _, id := range participantIDs {
		wanted[id] = true
	}
	result := make(map[string][]*domain.PaymentEvent, len(participantIDs))
	for _, e := range r.s.payments {
		if wanted[e.ParticipantID] {
			c := *e
			result[e.ParticipantID] = append(result[e.ParticipantID], &c)
		}
	}
	for _, events := range result {
		sort.SliceStable(events, func(i, j int) bool {
			if !events[i].CreatedAt.Equal(events[j].CreatedAt) {
				return events[i].CreatedAt.Before(events[j].CreatedAt)
			}
			return events[i].ID < events[j].ID
		})
	}
	return result, nil
}

// ---- invoices ----

type memoryInvoiceRepository struct{ s *MemoryStore }

func (r *memoryInvoiceRepository) NextSequence(ctx context.Context, eventID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.sequences[eventID]++
	return r.s.sequences[eventID], nil
}

func (r *memoryInvoiceRepository) Create(ctx context.Context, inv *domain.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.invoices {
		if existing.EventID == inv.EventID && existing.Number == inv.Number {
			return fmt.Errorf("invoice number %s already used", inv.Number)
		}
	}
	c := *inv
	r.s.invoices[inv.ID] = &c
	return nil
}

func (r *memoryInvoiceRepository) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	inv, ok := r.s.invoices[id]
	if !ok {
		return nil, nil
	}
	c := *inv
	return &c, nil
}

func (r *memoryInvoiceRepository) list(match func(*domain.Invoice) bool) []*domain.Invoice {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	invoices := make([]*domain.Invoice, 0)
	for _, inv := range r.s.invoices {
		if match(inv) {
			c := *inv
			invoices = append(invoices, &c)
		}
	}
	sort.Slice(invoices, func(i, j int) bool {
		if !invoices[i].CreatedAt.Equal(invoices[j].CreatedAt) {
			return invoices[i].CreatedAt.After(invoices[j].CreatedAt)
		}
		return invoices[i].Number > invoices[j].Number
	})
	return invoices
}

func (r *memoryInvoiceRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.Invoice, error) {
	return r.list(func(inv *domain.Invoice) bool { return inv.EventID == eventID }), nil
}

func (r *memoryInvoiceRepository) ListByParticipation(ctx context.Context, participationID string) ([]*domain.Invoice, error) {
	return r.list(func(inv *domain.Invoice) bool { return inv.ParticipationID == participationID }), nil
}

// ---- attendance ----

type memoryAttendanceRepository struct{ s *MemoryStore }

func cellKey(listID, participantID, columnID string) string {
	return listID + "/" + participantID + "/" + columnID
}

func (r *memoryAttendanceRepository) CreateList(ctx context.Context, l *domain.AttendanceList) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.lists[l.ID]; exists {
		return fmt.Errorf("attendance list %s already exists", l.ID)
	}
	r.s.lists[l.ID] = copyList(l)
	return nil
}

func (r *memoryAttendanceRepository) GetList(ctx context.Context, id string) (*domain.AttendanceList, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.lists[id]
	if !ok {
		return nil, nil
	}
	return copyList(l), nil
}

func (r *memoryAttendanceRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.AttendanceList, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	lists := make([]*domain.AttendanceList, 0)
	for _, l := range r.s.lists {
		if l.EventID == eventID && !l.IsDeleted() {
			lists = append(lists, copyList(l))
		}
	}
	sort.Slice(lists, func(i, j int) bool {
		if lists[i].Title != lists[j].Title {
			return lists[i].Title < lists[j].Title
		}
		return lists[i].ID < lists[j].ID
	})
	return lists, nil
}

func (r *memoryAttendanceRepository) UpdateList(ctx context.Context, l *domain.AttendanceList) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.lists[l.ID]
	if !ok || existing.IsDeleted() {
		return ErrNotFound
	}
	existing.Title = l.Title
	existing.Description = l.Description
	existing.ModifiedAt = l.ModifiedAt
	return nil
}

func (r *memoryAttendanceRepository) SoftDeleteList(ctx context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.lists[id]
	if !ok || l.IsDeleted() {
		return ErrNotFound
	}
	l.DeletedAt = &at
	l.ModifiedAt = at
	return nil
}

func (r *memoryAttendanceRepository) AddColumn(ctx context.Context, c *domain.AttendanceColumn) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.lists[c.ListID]
	if !ok {
		return ErrNotFound
	}
	withColumn := copyList(&domain.AttendanceList{Columns: []*domain.AttendanceColumn{c}})
	l.Columns = append(l.Columns, withColumn.Columns[0])
	return nil
}

func (r *memoryAttendanceRepository) DeleteColumn(ctx context.Context, listID, columnID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.lists[listID]
	if !ok {
		return ErrNotFound
	}
	for i, c := range l.Columns {
		if c.ID == columnID {
			l.Columns = append(l.Columns[:i], l.Columns[i+1:]...)
			for key, cell := range r.s.cells {
				if cell.ListID == listID && cell.ColumnID == columnID {
					delete(r.s.cells, key)
				}
			}
			return nil
		}
	}
	return ErrNotFound
}

func (r *memoryAttendanceRepository) findColumn(columnID string) *domain.AttendanceColumn {
	for _, l := range r.s.lists {
		if c := l.Column(columnID); c != nil {
			return c
		}
	}
	return nil
}

func (r *memoryAttendanceRepository) AddChoice(ctx context.Context, ch *domain.AttendanceChoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := r.findColumn(ch.ColumnID)
	if c == nil {
		return ErrNotFound
	}
	cc := *ch
	c.Choices = append(c.Choices, &cc)
	return nil
}

func (r *memoryAttendanceRepository) DeleteChoice(ctx context.Context, columnID, choiceID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := r.findColumn(columnID)
	if c == nil {
		return ErrNotFound
	}
	for i, ch := range c.Choices {
		if ch.ID == choiceID {
			c.Choices = append(c.Choices[:i], c.Choices[i+1:]...)
			for _, cell := range r.s.cells {
				if cell.ColumnID == columnID && cell.ChoiceID != nil && *cell.ChoiceID == choiceID {
					cell.ChoiceID = nil
				}
			}
			return nil
		}
	}
	return ErrNotFound
}

func (r *memoryAttendanceRepository) ListFillouts(ctx context.Context, listID string) ([]*domain.AttendanceFillout, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	fillouts := make([]*domain.AttendanceFillout, 0)
	for _, cell := range r.s.cells {
		if cell.ListID == listID {
			c := *cell
			if cell.ChoiceID != nil {
				choiceID := *cell.ChoiceID
				c.ChoiceID = &choiceID
			}
			fillouts = append(fillouts, &c)
		}
	}
	return fillouts, nil
}

func (r *memoryAttendanceRepository) UpsertFillout(ctx context.Context, f *domain.AttendanceFillout) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *f
	if f.ChoiceID != nil {
		choiceID := *f.ChoiceID
		c.ChoiceID = &choiceID
	}
	r.s.cells[cellKey(f.ListID, f.ParticipantID, f.ColumnID)] = &c
	return nil
}

func (r *memoryAttendanceRepository) DeleteFillout(ctx context.Context, listID, participantID, columnID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := cellKey(listID, participantID, columnID)
	if _, ok := r.s.cells[key]; !ok {
		return ErrNotFound
	}
	delete(r.s.cells, key)
	return nil
}

// ---- comments ----

type memoryCommentRepository struct{ s *MemoryStore }

func (r *memoryCommentRepository) Create(ctx context.Context, c *domain.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.comments[c.ID]; exists {
		return fmt.Errorf("comment %s already exists", c.ID)
	}
	cc := *c
	r.s.comments[c.ID] = &cc
	return nil
}

func (r *memoryCommentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.comments[id]
	if !ok {
		return nil, nil
	}
	cc := *c
	cc.DeletedAt = copyTime(c.DeletedAt)
	return &cc, nil
}

func (r *memoryCommentRepository) ListBySubject(ctx context.Context, subject domain.OwnerType, subjectID string) ([]*domain.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	comments := make([]*domain.Comment, 0)
	for _, c := range r.s.comments {
		if c.Subject == subject && c.SubjectID == subjectID && !c.IsDeleted() {
			cc := *c
			comments = append(comments, &cc)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		if !comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].CreatedAt.Before(comments[j].CreatedAt)
		}
		return comments[i].ID < comments[j].ID
	})
	return comments, nil
}

func (r *memoryCommentRepository) Update(ctx context.Context, c *domain.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.comments[c.ID]
	if !ok || existing.IsDeleted() {
		return ErrNotFound
	}
	existing.Content = c.Content
	existing.ModifiedBy = c.ModifiedBy
	existing.ModifiedAt = c.ModifiedAt
	return nil
}

func (r *memoryCommentRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.comments[id]
	if !ok || c.IsDeleted() {
		return ErrNotFound
	}
	c.DeletedAt = &at
	c.ModifiedAt = at
	return nil
}

func (r *memoryCommentRepository) CountBySubjects(ctx context.Context, subject domain.OwnerType, subjectIDs []string) (map[string]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	wanted := make(map[string]bool, len(subjectIDs))
	for _, id := range subjectIDs {
		wanted[id] = true
	}
	counts := make(map[string]int, len(subjectIDs))
	for _, c := range r.s.comments {
		if c.Subject == subject && wanted[c.SubjectID] && !c.IsDeleted() {
			counts[c.SubjectID]++
		}
	}
	return counts, nil
}

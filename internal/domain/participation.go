package domain

import (
	"fmt"
	"strings"
	"time"
)

// Gender constants
const (
	GenderMale    = "male"
	GenderFemale  = "female"
	GenderDiverse = "diverse"
)

// IsValidGender reports whether g is one of the gender constants
func IsValidGender(g string) bool {
	return g == GenderMale || g == GenderFemale || g == GenderDiverse
}

// Address is a postal address
type Address struct {
	Street  string `json:"street"`
	Zip     string `json:"zip"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// String renders the address on one line
func (a Address) String() string {
	parts := make([]string, 0, 3)
	if a.Street != "" {
		parts = append(parts, a.Street)
	}
	if city := strings.TrimSpace(a.Zip + " " + a.City); city != "" {
		parts = append(parts, city)
	}
	if a.Country != "" {
		parts = append(parts, a.Country)
	}
	return strings.Join(parts, ", ")
}

// Phone is a phone number with an optional description
type Phone struct {
	Number      string `json:"number"`
	Description string `json:"description,omitempty"`
}

// Participation is a registration submitted by a contact, holding one or more participants
type Participation struct {
	ID           string         `json:"id"`
	EventID      string         `json:"event_id"`
	Salutation   string         `json:"salutation"`
	NameFirst    string         `json:"name_first"`
	NameLast     string         `json:"name_last"`
	Address      Address        `json:"address"`
	Email        string         `json:"email"`
	Phones       []Phone        `json:"phones"`
	Participants []*Participant `json:"participants"`
	Fillouts     []*Fillout     `json:"fillouts"`
	CreatedAt    time.Time      `json:"created_at"`
	ModifiedAt   time.Time      `json:"modified_at"`
	DeletedAt    *time.Time     `json:"deleted_at,omitempty"`
}

// IsDeleted reports whether the participation was soft deleted
func (p *Participation) IsDeleted() bool {
	return p.DeletedAt != nil
}

// FullName returns "First Last" of the contact
func (p *Participation) FullName() string {
	return strings.TrimSpace(p.NameFirst + " " + p.NameLast)
}

// ActiveParticipants returns the participants that are neither deleted nor inactive,
// in registration order
func (p *Participation) ActiveParticipants() []*Participant {
	out := make([]*Participant, 0, len(p.Participants))
	for _, participant := range p.Participants {
		if participant.IsActive() {
			out = append(out, participant)
		}
	}
	SortParticipantsByCreation(out)
	return out
}

// Participant is an individual registered for an event under a participation
type Participant struct {
	ID              string            `json:"id"`
	ParticipationID string            `json:"participation_id"`
	EventID         string            `json:"event_id"`
	NameFirst       string            `json:"name_first"`
	NameLast        string            `json:"name_last"`
	Birthday        time.Time         `json:"birthday"`
	Gender          string            `json:"gender"`
	Food            []string          `json:"food"`
	Info            string            `json:"info"`
	Status          ParticipantStatus `json:"status"`
	BasePrice       *int64            `json:"base_price,omitempty"` // euro cents
	Fillouts        []*Fillout        `json:"fillouts"`
	CreatedAt       time.Time         `json:"created_at"`
	ModifiedAt      time.Time         `json:"modified_at"`
	DeletedAt       *time.Time        `json:"deleted_at,omitempty"`
}

// IsDeleted reports whether the participant was soft deleted
func (p *Participant) IsDeleted() bool {
	return p.DeletedAt != nil
}

// IsActive reports whether the participant counts for totals and lists
func (p *Participant) IsActive() bool {
	return !p.IsDeleted() && p.Status.IsActive()
}

// FullName returns "First Last"
func (p *Participant) FullName() string {
	return strings.TrimSpace(p.NameFirst + " " + p.NameLast)
}

// AgeAt returns the age in completed years at the given date
func (p *Participant) AgeAt(at time.Time) int {
	if p.Birthday.IsZero() || at.Before(p.Birthday) {
		return 0
	}
	age := at.Year() - p.Birthday.Year()
	if at.Month() < p.Birthday.Month() || (at.Month() == p.Birthday.Month() && at.Day() < p.Birthday.Day()) {
		age--
	}
	return age
}

// TransitionTo moves the participant into the target status and returns the
// resulting transition record
func (p *Participant) TransitionTo(target ParticipantStatus, reason, changedBy string, at time.Time) (*StatusTransition, error) {
	if !target.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStatus, target)
	}
	if !p.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, p.Status, target)
	}

	transition := &StatusTransition{
		ParticipantID: p.ID,
		FromStatus:    p.Status,
		ToStatus:      target,
		Reason:        reason,
		ChangedBy:     changedBy,
		ChangedAt:     at,
	}
	p.Status = target
	p.ModifiedAt = at
	return transition, nil
}

// SortParticipantsByCreation orders participants by creation time, then ID
func SortParticipantsByCreation(participants []*Participant) {
	sortSlice(participants, func(a, b *Participant) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// SortParticipantsByName orders participants by last name, first name, then ID
func SortParticipantsByName(participants []*Participant) {
	sortSlice(participants, func(a, b *Participant) bool {
		if la, lb := strings.ToLower(a.NameLast), strings.ToLower(b.NameLast); la != lb {
			return la < lb
		}
		if fa, fb := strings.ToLower(a.NameFirst), strings.ToLower(b.NameFirst); fa != fb {
			return fa < fb
		}
		return a.ID < b.ID
	})
}

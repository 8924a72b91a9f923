package domain

import (
	"errors"
	"time"
)

// ParticipantStatus is the registration state of a single participant
type ParticipantStatus string

const (
	StatusUnconfirmed       ParticipantStatus = "unconfirmed"
	StatusConfirmed         ParticipantStatus = "confirmed"
	StatusWithdrawRequested ParticipantStatus = "withdraw_requested"
	StatusWithdrawn         ParticipantStatus = "withdrawn"
	StatusRejected          ParticipantStatus = "rejected"
)

var (
	// ErrInvalidStatusTransition is returned when a status change is not allowed
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	// ErrUnknownStatus is returned for values outside the status set
	ErrUnknownStatus = errors.New("unknown participant status")
)

// validTransitions defines allowed status changes.
// Key is current status, value is list of allowed next statuses.
var validTransitions = map[ParticipantStatus][]ParticipantStatus{
	StatusUnconfirmed:       {StatusConfirmed, StatusWithdrawRequested, StatusWithdrawn, StatusRejected},
	StatusConfirmed:         {StatusWithdrawRequested, StatusWithdrawn, StatusRejected, StatusUnconfirmed},
	StatusWithdrawRequested: {StatusConfirmed, StatusWithdrawn, StatusRejected},
	StatusWithdrawn:         {StatusUnconfirmed},
	StatusRejected:          {StatusUnconfirmed},
}

// IsValid returns true if the status is a known participant status
func (s ParticipantStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// IsActive returns false for withdrawn and rejected participants.
// Inactive participants are left out of totals, attendance lists, graphs and exports.
func (s ParticipantStatus) IsActive() bool {
	return s != StatusWithdrawn && s != StatusRejected
}

// CanTransitionTo returns true if transition to the target status is allowed
func (s ParticipantStatus) CanTransitionTo(target ParticipantStatus) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, next := range allowed {
		if next == target {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the statuses reachable from s
func (s ParticipantStatus) AllowedTransitions() []ParticipantStatus {
	allowed := validTransitions[s]
	out := make([]ParticipantStatus, len(allowed))
	copy(out, allowed)
	return out
}

// StatusTransition records one status change of a participant
type StatusTransition struct {
	ID            string            `json:"id"`
	ParticipantID string            `json:"participant_id"`
	FromStatus    ParticipantStatus `json:"from_status"`
	ToStatus      ParticipantStatus `json:"to_status"`
	Reason        string            `json:"reason,omitempty"`
	ChangedBy     string            `json:"changed_by,omitempty"`
	ChangedAt     time.Time         `json:"changed_at"`
}

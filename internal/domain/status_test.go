package domain

import (
	"errors"
	"testing"
	"time"
)

func TestParticipantStatusIsValid(t *testing.T) {
	tests := []struct {
		status   ParticipantStatus
		expected bool
	}{
		{StatusUnconfirmed, true},
		{StatusConfirmed, true},
		{StatusWithdrawRequested, true},
		{StatusWithdrawn, true},
		{StatusRejected, true},
		{ParticipantStatus("deleted"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsValid(); got != tt.expected {
				t.Errorf("IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestParticipantStatusIsActive(t *testing.T) {
	tests := []struct {
		status   ParticipantStatus
		expected bool
	}{
		{StatusUnconfirmed, true},
		{StatusConfirmed, true},
		{StatusWithdrawRequested, true},
		{StatusWithdrawn, false},
		{StatusRejected, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsActive(); got != tt.expected {
				t.Errorf("IsActive() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestParticipantStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		name     string
		from     ParticipantStatus
		to       ParticipantStatus
		expected bool
	}{
		// From unconfirmed
		{"unconfirmed -> confirmed", StatusUnconfirmed, StatusConfirmed, true},
		{"unconfirmed -> withdraw_requested", StatusUnconfirmed, StatusWithdrawRequested, true},
		{"unconfirmed -> withdrawn", StatusUnconfirmed, StatusWithdrawn, true},
		{"unconfirmed -> rejected", StatusUnconfirmed, StatusRejected, true},
		{"unconfirmed -> unconfirmed", StatusUnconfirmed, StatusUnconfirmed, false},

		// From confirmed
		{"confirmed -> unconfirmed", StatusConfirmed, StatusUnconfirmed, true},
		{"confirmed -> withdraw_requested", StatusConfirmed, StatusWithdrawRequested, true},
		{"confirmed -> withdrawn", StatusConfirmed, StatusWithdrawn, true},
		{"confirmed -> rejected", StatusConfirmed, StatusRejected, true},
		{"confirmed -> confirmed", StatusConfirmed, StatusConfirmed, false},

		// From withdraw_requested
		{"withdraw_requested -> confirmed", StatusWithdrawRequested, StatusConfirmed, true},
		{"withdraw_requested -> withdrawn", StatusWithdrawRequested, StatusWithdrawn, true},
		{"withdraw_requested -> rejected", StatusWithdrawRequested, StatusRejected, true},
		{"withdraw_requested -> unconfirmed", StatusWithdrawRequested, StatusUnconfirmed, false},

		// Inactive statuses only go back to unconfirmed
		{"withdrawn -> unconfirmed", StatusWithdrawn, StatusUnconfirmed, true},
		{"withdrawn -> confirmed", StatusWithdrawn, StatusConfirmed, false},
		{"rejected -> unconfirmed", StatusRejected, StatusUnconfirmed, true},
		{"rejected -> withdrawn", StatusRejected, StatusWithdrawn, false},

		{"unknown -> confirmed", ParticipantStatus("x"), StatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.expected {
				t.Errorf("CanTransitionTo() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestParticipantTransitionTo(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	p := &Participant{ID: "p-1", Status: StatusUnconfirmed}

	transition, err := p.TransitionTo(StatusConfirmed, "paid deposit", "admin-1", at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Status != StatusConfirmed {
		t.Errorf("Status = %s, want confirmed", p.Status)
	}
	if transition.FromStatus != StatusUnconfirmed || transition.ToStatus != StatusConfirmed {
		t.Errorf("unexpected transition %+v", transition)
	}
	if !p.ModifiedAt.Equal(at) {
		t.Errorf("ModifiedAt not updated")
	}

	if _, err := p.TransitionTo(StatusConfirmed, "", "", at); !errors.Is(err, ErrInvalidStatusTransition) {
		t.Errorf("expected ErrInvalidStatusTransition, got %v", err)
	}
	if _, err := p.TransitionTo(ParticipantStatus("gone"), "", "", at); !errors.Is(err, ErrUnknownStatus) {
		t.Errorf("expected ErrUnknownStatus, got %v", err)
	}
	if p.Status != StatusConfirmed {
		t.Errorf("failed transition changed status to %s", p.Status)
	}
}

package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoboldt/juvem-sub001/internal/domain"
	"github.com/theoboldt/juvem-sub001/internal/dto"
	"github.com/theoboldt/juvem-sub001/internal/messaging"
)

func TestParticipationService_Register(t *testing.T) {
	f := newFixture(t)
	event := f.createEvent(t, cents(10000), nil)

	participation := f.register(t, event.ID, participantInput("Lena", "Muster"), participantInput("Tom", "Muster"))

	require.Len(t, participation.Participants, 2)
	for _, p := range participation.Participants {
		assert.Equal(t, domain.StatusUnconfirmed, p.Status)
		assert.Equal(t, event.ID, p.EventID)
	}

	stored, err := f.participations.Get(f.ctx, event.ID, participation.ID)
	require.NoError(t, err)
	assert.Equal(t, "maria@example.com", stored.Email)
	assert.Equal(t, "Lena", stored.Participants[0].NameFirst)
	assert.Equal(t, "Tom", stored.Participants[1].NameFirst)

	published := f.publisher.OfType(messaging.TypeParticipationCreated)
	require.Len(t, published, 1)
	created := published[0].(*messaging.ParticipationCreatedEvent)
	assert.Equal(t, participation.ID, created.ParticipationID)
	assert.Len(t, created.ParticipantIDs, 2)
}

func TestParticipationService_Register_Validation(t *testing.T) {
	f := newFixture(t)
	required := f.createAttribute(t, dto.AttributeRequest{
		ManagementTitle:  "Schwimmer",
		FieldType:        domain.FieldBool,
		IsRequired:       true,
		IsPublic:         true,
		UseAtParticipant: true,
	})
	event := f.createEvent(t, nil, nil, required.ID)

	req := registerRequest(participantInput("Lena", ""))
	req.Email = "not-an-email"
	_, err := f.participations.Register(f.ctx, event.ID, req)

	require.ErrorIs(t, err, ErrValidation)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "participants[0].name_last")
	assert.Equal(t, "is required", verr.Fields["participants[0].fillouts."+required.ID])
	assert.Empty(t, f.publisher.Events())
}

func TestParticipationService_Register_Fillouts(t *testing.T) {
	f := newFixture(t)
	shirt := f.createAttribute(t, dto.AttributeRequest{
		ManagementTitle:  "T-Shirt",
		FieldType:        domain.FieldChoice,
		IsPublic:         true,
		UseAtParticipant: true,
		Options:          []dto.OptionRequest{{ManagementTitle: "S"}, {ManagementTitle: "M"}},
	})
	internal := f.createAttribute(t, dto.AttributeRequest{
		ManagementTitle:    "Bemerkung intern",
		FieldType:          domain.FieldText,
		UseAtParticipation: true,
	})
	event := f.createEvent(t, nil, nil, shirt.ID, internal.ID)

	in := participantInput("Lena", "Muster")
	in.Fillouts = []dto.FilloutInput{{AttributeID: shirt.ID, Value: domain.ChoiceValue(shirt.Options[1].ID)}}
	participation := f.register(t, event.ID, in)
	require.Len(t, participation.Participants[0].Fillouts, 1)

	req := registerRequest(participantInput("Tom", "Muster"))
	req.Fillouts = []dto.FilloutInput{{AttributeID: internal.ID, Value: domain.TextValue("x")}}
	_, err := f.participations.Register(f.ctx, event.ID, req)
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "unknown attribute", err.(*ValidationError).Fields["fillouts."+internal.ID])
}

func TestParticipationService_Register_ClosedAndFull(t *testing.T) {
	f := newFixture(t)
	event := f.createEvent(t, nil, intPtr(2))

	f.register(t, event.ID, participantInput("Lena", "Muster"))
	_, err := f.participations.Register(f.ctx, event.ID, registerRequest(participantInput("A", "B"), participantInput("C", "D")))
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	inactive := false
	_, err = f.events.Update(f.ctx, admin, event.ID, &dto.UpdateEventRequest{IsActive: &inactive})
	require.NoError(t, err)
	_, err = f.participations.Register(f.ctx, event.ID, registerRequest(participantInput("A", "B")))
	assert.ErrorIs(t, err, ErrRegistrationClosed)

	_, err = f.participations.Register(f.ctx, "missing", registerRequest(participantInput("A", "B")))
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestParticipationService_ChangeStatus(t *testing.T) {
	f := newFixture(t)
	event := f.createEvent(t, nil, intPtr(1))
	participation := f.register(t, event.ID, participantInput("Lena", "Muster"))
	id := participation.Participants[0].ID

	p, err := f.participations.ChangeStatus(f.ctx, admin, event.ID, id, &dto.ChangeStatusRequest{Status: domain.StatusConfirmed})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, p.Status)

	_, err = f.participations.ChangeStatus(f.ctx, admin, event.ID, id, &dto.ChangeStatusRequest{Status: domain.StatusConfirmed})
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	_, err = f.participations.ChangeStatus(f.ctx, admin, event.ID, id, &dto.ChangeStatusRequest{Status: domain.StatusWithdrawn, Reason: "ill"})
	require.NoError(t, err)

	// the free place is taken before the withdrawn participant comes back
	f.register(t, event.ID, participantInput("Tom", "Other"))
	_, err = f.participations.ChangeStatus(f.ctx, admin, event.ID, id, &dto.ChangeStatusRequest{Status: domain.StatusUnconfirmed})
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	history, err := f.participations.StatusHistory(f.ctx, event.ID, id)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.StatusUnconfirmed, history[0].FromStatus)
	assert.Equal(t, domain.StatusWithdrawn, history[1].ToStatus)
	assert.Equal(t, "ill", history[1].Reason)
	assert.Equal(t, admin.UserID, history[1].ChangedBy)

	assert.Len(t, f.publisher.OfType(messaging.TypeParticipantStatusChanged), 2)
}

func TestParticipationService_PublishFailureDoesNotFail(t *testing.T) {
	f := newFixture(t)
	f.publisher.FailWith(errors.New("broker down"))
	event := f.createEvent(t, nil, nil)

	_, err := f.participations.Register(f.ctx, event.ID, registerRequest(participantInput("Lena", "Muster")))
	assert.NoError(t, err)
}

func TestParticipationService_DeleteRestore(t *testing.T) {
	f := newFixture(t)
	event := f.createEvent(t, nil, nil)
	participation := f.register(t, event.ID, participantInput("Lena", "Muster"), participantInput("Tom", "Muster"))
	single := participation.Participants[1].ID

	clock := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	f.participations.(*participationService).now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	require.NoError(t, f.participations.DeleteParticipant(f.ctx, event.ID, single))
	_, err := f.participations.GetParticipant(f.ctx, event.ID, single)
	assert.ErrorIs(t, err, ErrParticipantNotFound)

	require.NoError(t, f.participations.Delete(f.ctx, event.ID, participation.ID))
	_, err = f.participations.Get(f.ctx, event.ID, participation.ID)
	assert.ErrorIs(t, err, ErrParticipationNotFound)

	_, err = f.participations.RestoreParticipant(f.ctx, event.ID, single)
	assert.ErrorIs(t, err, ErrValidation)

	restored, err := f.participations.Restore(f.ctx, event.ID, participation.ID)
	require.NoError(t, err)
	// only the participants deleted along with the participation come back
	assert.Len(t, restored.Participants, 1)

	_, err = f.participations.Restore(f.ctx, event.ID, participation.ID)
	assert.ErrorIs(t, err, ErrNotDeleted)

	p, err := f.participations.RestoreParticipant(f.ctx, event.ID, single)
	require.NoError(t, err)
	assert.Equal(t, "Tom", p.NameFirst)
}

func TestParticipationService_UpdateParticipant(t *testing.T) {
	f := newFixture(t)
	event := f.createEvent(t, nil, nil)
	participation := f.register(t, event.ID, participantInput("Lena", "Muster"))
	id := participation.Participants[0].ID

	name := "Helena"
	p, err := f.participations.UpdateParticipant(f.ctx, event.ID, id, &dto.UpdateParticipantRequest{
		NameFirst: &name,
		BasePrice: cents(5000),
	})
	require.NoError(t, err)
	assert.Equal(t, "Helena", p.NameFirst)
	require.NotNil(t, p.BasePrice)
	assert.Equal(t, int64(5000), *p.BasePrice)

	p, err = f.participations.UpdateParticipant(f.ctx, event.ID, id, &dto.UpdateParticipantRequest{ClearBasePrice: true})
	require.NoError(t, err)
	assert.Nil(t, p.BasePrice)

	_, err = f.participations.UpdateParticipant(f.ctx, event.ID, id, &dto.UpdateParticipantRequest{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestParticipationService_Restore_RespectsLimit(t *testing.T) {
	f := newFixture(t)
	event := f.createEvent(t, nil, intPtr(2))

	first := f.register(t, event.ID, participantInput("Lena", "Muster"), participantInput("Anna", "Muster"))
	require.NoError(t, f.participations.Delete(f.ctx, event.ID, first.ID))
	second := f.register(t, event.ID, participantInput("Tom", "Other"), participantInput("Tim", "Other"))

	_, err := f.participations.Restore(f.ctx, event.ID, first.ID)
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	active, err := f.repos.Participants.CountActiveByEvent(f.ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, active)

	// a single deleted participant competes for the same places
	tom := second.Participants[0]
	require.NoError(t, f.participations.DeleteParticipant(f.ctx, event.ID, tom.ID))
	require.NoError(t, f.participations.Delete(f.ctx, event.ID, second.ID))
	restored, err := f.participations.Restore(f.ctx, event.ID, first.ID)
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted())

	restoredSecond, err := f.participations.Restore(f.ctx, event.ID, second.ID)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Nil(t, restoredSecond)

	require.NoError(t, f.participations.Delete(f.ctx, event.ID, first.ID))
	_, err = f.participations.Restore(f.ctx, event.ID, second.ID)
	require.NoError(t, err)
	_, err = f.participations.RestoreParticipant(f.ctx, event.ID, tom.ID)
	require.NoError(t, err)

	require.NoError(t, f.participations.DeleteParticipant(f.ctx, event.ID, tom.ID))
	f.register(t, event.ID, participantInput("Max", "Neu"))
	_, err = f.participations.RestoreParticipant(f.ctx, event.ID, tom.ID)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

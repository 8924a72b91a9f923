package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoboldt/juvem-sub001/internal/domain"
	"github.com/theoboldt/juvem-sub001/internal/dto"
)

func TestCommentService(t *testing.T) {
	f := newFixture(t)
	clock := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	f.comments.(*commentService).now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	event := f.createEvent(t, nil, nil)
	participation := f.register(t, event.ID, participantInput("Lena", "Muster"))
	author := Actor{UserID: "user-1"}

	first, err := f.comments.Create(f.ctx, author, &dto.CreateCommentRequest{
		Subject:   domain.OwnerParticipation,
		SubjectID: participation.ID,
		Content:   "  Anruf am Montag  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Anruf am Montag", first.Content)

	_, err = f.comments.Create(f.ctx, admin, &dto.CreateCommentRequest{
		Subject:   domain.OwnerParticipation,
		SubjectID: participation.ID,
		Content:   "Rückruf erledigt",
	})
	require.NoError(t, err)

	comments, err := f.comments.List(f.ctx, domain.OwnerParticipation, participation.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, first.ID, comments[0].ID)

	counts, err := f.comments.Count(f.ctx, domain.OwnerParticipation, []string{participation.ID, "other"})
	require.NoError(t, err)
	assert.Equal(t, 2, counts[participation.ID])
	assert.Zero(t, counts["other"])

	_, err = f.comments.Update(f.ctx, Actor{UserID: "user-2"}, first.ID, &dto.UpdateCommentRequest{Content: "fremd"})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := f.comments.Update(f.ctx, author, first.ID, &dto.UpdateCommentRequest{Content: "Anruf am Dienstag"})
	require.NoError(t, err)
	assert.Equal(t, author.UserID, updated.ModifiedBy)

	require.NoError(t, f.comments.Delete(f.ctx, admin, first.ID))
	assert.ErrorIs(t, f.comments.Delete(f.ctx, admin, first.ID), ErrCommentNotFound)

	comments, err = f.comments.List(f.ctx, domain.OwnerParticipation, participation.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)
}

func TestCommentService_UnknownSubject(t *testing.T) {
	f := newFixture(t)

	_, err := f.comments.Create(f.ctx, admin, &dto.CreateCommentRequest{
		Subject:   domain.OwnerParticipant,
		SubjectID: "missing",
		Content:   "Hallo",
	})
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.(*ValidationError).Fields, "subject_id")

	_, err = f.comments.List(f.ctx, domain.OwnerType("event"), "x")
	assert.ErrorIs(t, err, ErrValidation)
}

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoboldt/juvem-sub001/internal/domain"
	"github.com/theoboldt/juvem-sub001/internal/dto"
)

func arrivalColumn() *dto.AddColumnRequest {
	return &dto.AddColumnRequest{
		Title: "Anreise",
		Choices: []dto.ChoiceInput{
			{Title: "Bus", ShortTitle: "B"},
			{Title: "Eltern", ShortTitle: "E"},
		},
	}
}

func TestAttendanceService_Matrix(t *testing.T) {
	f := newFixture(t)
	event := f.createEvent(t, nil, nil)
	participation := f.register(t, event.ID, participantInput("Lena", "Muster"), participantInput("Anna", "Muster"))
	lena, anna := participation.Participants[0], participation.Participants[1]

	list, err := f.attendance.CreateList(f.ctx, event.ID, &dto.AttendanceListRequest{Title: "Anreise Tag 1"})
	require.NoError(t, err)
	column, err := f.attendance.AddColumn(f.ctx, event.ID, list.ID, arrivalColumn())
	require.NoError(t, err)
	require.Len(t, column.Choices, 2)

	_, err = f.attendance.AddColumn(f.ctx, event.ID, list.ID, &dto.AddColumnRequest{
		Title:   "anreise",
		Choices: []dto.ChoiceInput{{Title: "x"}},
	})
	assert.ErrorIs(t, err, ErrValidation)

	bus := column.Choices[0].ID
	_, err = f.attendance.SetFillout(f.ctx, event.ID, list.ID, &dto.SetAttendanceFilloutRequest{
		ParticipantID: lena.ID,
		ColumnID:      column.ID,
		ChoiceID:      &bus,
	})
	require.NoError(t, err)

	_, err = f.participations.ChangeStatus(f.ctx, admin, event.ID, anna.ID, &dto.ChangeStatusRequest{Status: domain.StatusWithdrawn})
	require.NoError(t, err)

	data, err := f.attendance.Data(f.ctx, event.ID, list.ID)
	require.NoError(t, err)
	require.Len(t, data.Rows, 1)
	assert.Equal(t, lena.ID, data.Rows[0].ParticipantID)
	assert.Equal(t, bus, *data.Rows[0].Cells[column.ID].ChoiceID)

	require.NoError(t, f.attendance.ClearFillout(f.ctx, event.ID, list.ID, lena.ID, column.ID))
	require.NoError(t, f.attendance.ClearFillout(f.ctx, event.ID, list.ID, lena.ID, column.ID))

	data, err = f.attendance.Data(f.ctx, event.ID, list.ID)
	require.NoError(t, err)
	assert.Empty(t, data.Rows[0].Cells)
}

func TestAttendanceService_SetFilloutValidation(t *testing.T) {
	f := newFixture(t)
	event := f.createEvent(t, nil, nil)
	participation := f.register(t, event.ID, participantInput("Lena", "Muster"))
	lena := participation.Participants[0]

	list, err := f.attendance.CreateList(f.ctx, event.ID, &dto.AttendanceListRequest{Title: "Abreise"})
	require.NoError(t, err)
	column, err := f.attendance.AddColumn(f.ctx, event.ID, list.ID, arrivalColumn())
	require.NoError(t, err)

	foreign := "not-a-choice"
	_, err = f.attendance.SetFillout(f.ctx, event.ID, list.ID, &dto.SetAttendanceFilloutRequest{
		ParticipantID: lena.ID,
		ColumnID:      column.ID,
		ChoiceID:      &foreign,
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.attendance.SetFillout(f.ctx, event.ID, list.ID, &dto.SetAttendanceFilloutRequest{
		ParticipantID: lena.ID,
		ColumnID:      "missing",
		Comment:       "kommt später",
	})
	assert.ErrorIs(t, err, ErrColumnNotFound)

	_, err = f.attendance.SetFillout(f.ctx, event.ID, list.ID, &dto.SetAttendanceFilloutRequest{
		ParticipantID: "missing",
		ColumnID:      column.ID,
		Comment:       "kommt später",
	})
	assert.ErrorIs(t, err, ErrParticipantNotFound)

	assert.ErrorIs(t, f.attendance.DeleteColumn(f.ctx, event.ID, list.ID, "missing"), ErrColumnNotFound)
	require.NoError(t, f.attendance.DeleteColumn(f.ctx, event.ID, list.ID, column.ID))
}

func TestAttendanceService_Lists(t *testing.T) {
	f := newFixture(t)
	event := f.createEvent(t, nil, nil)
	other := f.createEvent(t, nil, nil)

	list, err := f.attendance.CreateList(f.ctx, event.ID, &dto.AttendanceListRequest{Title: "Essen"})
	require.NoError(t, err)

	_, err = f.attendance.GetList(f.ctx, other.ID, list.ID)
	assert.ErrorIs(t, err, ErrAttendanceListNotFound)

	updated, err := f.attendance.UpdateList(f.ctx, event.ID, list.ID, &dto.AttendanceListRequest{Title: "Mittagessen"})
	require.NoError(t, err)
	assert.Equal(t, "Mittagessen", updated.Title)

	lists, err := f.attendance.ListByEvent(f.ctx, event.ID)
	require.NoError(t, err)
	assert.Len(t, lists, 1)

	require.NoError(t, f.attendance.DeleteList(f.ctx, event.ID, list.ID))
	_, err = f.attendance.GetList(f.ctx, event.ID, list.ID)
	assert.ErrorIs(t, err, ErrAttendanceListNotFound)
}

func TestAttendanceService_Choices(t *testing.T) {
	f := newFixture(t)
	event := f.createEvent(t, nil, nil)
	participation := f.register(t, event.ID, participantInput("Lena", "Muster"))
	lena := participation.Participants[0]

	list, err := f.attendance.CreateList(f.ctx, event.ID, &dto.AttendanceListRequest{Title: "Anreise"})
	require.NoError(t, err)
	column, err := f.attendance.AddColumn(f.ctx, event.ID, list.ID, arrivalColumn())
	require.NoError(t, err)

	bike, err := f.attendance.AddChoice(f.ctx, event.ID, list.ID, column.ID, &dto.ChoiceInput{Title: " Fahrrad ", ShortTitle: "F"})
	require.NoError(t, err)
	assert.Equal(t, "Fahrrad", bike.Title)

	_, err = f.attendance.AddChoice(f.ctx, event.ID, list.ID, column.ID, &dto.ChoiceInput{})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.attendance.AddChoice(f.ctx, event.ID, list.ID, "missing", &dto.ChoiceInput{Title: "Zug"})
	assert.ErrorIs(t, err, ErrColumnNotFound)

	_, err = f.attendance.SetFillout(f.ctx, event.ID, list.ID, &dto.SetAttendanceFilloutRequest{
		ParticipantID: lena.ID,
		ColumnID:      column.ID,
		ChoiceID:      &bike.ID,
		Comment:       "mit Helm",
	})
	require.NoError(t, err)

	require.NoError(t, f.attendance.DeleteChoice(f.ctx, event.ID, list.ID, column.ID, bike.ID))
	assert.ErrorIs(t, f.attendance.DeleteChoice(f.ctx, event.ID, list.ID, column.ID, bike.ID), ErrChoiceNotFound)

	data, err := f.attendance.Data(f.ctx, event.ID, list.ID)
	require.NoError(t, err)
	cell, ok := data.Rows[0].Cells[column.ID]
	require.True(t, ok)
	assert.Nil(t, cell.ChoiceID)
	assert.Equal(t, "mit Helm", cell.Comment)

	refreshed, err := f.attendance.GetList(f.ctx, event.ID, list.ID)
	require.NoError(t, err)
	choices := refreshed.Column(column.ID).Choices
	require.Len(t, choices, 2)
	require.NoError(t, f.attendance.DeleteChoice(f.ctx, event.ID, list.ID, column.ID, choices[0].ID))
	assert.ErrorIs(t, f.attendance.DeleteChoice(f.ctx, event.ID, list.ID, column.ID, choices[1].ID), ErrValidation)
}

package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParticipantAgeAt(t *testing.T) {
	p := &Participant{Birthday: time.Date(2010, 6, 15, 0, 0, 0, 0, time.UTC)}

	assert.Equal(t, 13, p.AgeAt(time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 14, p.AgeAt(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, p.AgeAt(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, (&Participant{}).AgeAt(time.Now()))
}

func TestParticipationActiveParticipants(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	deleted := base
	p := &Participation{Participants: []*Participant{
		{ID: "c", Status: StatusConfirmed, CreatedAt: base.Add(time.Minute)},
		{ID: "b", Status: StatusUnconfirmed, CreatedAt: base},
		{ID: "a", Status: StatusWithdrawn, CreatedAt: base},
		{ID: "d", Status: StatusConfirmed, CreatedAt: base, DeletedAt: &deleted},
		{ID: "e", Status: StatusRejected, CreatedAt: base},
	}}

	active := p.ActiveParticipants()
	ids := make([]string, len(active))
	for i, participant := range active {
		ids[i] = participant.ID
	}
	assert.Equal(t, []string{"b", "c"}, ids)
}

func TestSortParticipantsByName(t *testing.T) {
	participants := []*Participant{
		{ID: "1", NameFirst: "Lena", NameLast: "Zimmer"},
		{ID: "2", NameFirst: "Paul", NameLast: "adler"},
		{ID: "3", NameFirst: "Anna", NameLast: "Adler"},
	}
	SortParticipantsByName(participants)

	assert.Equal(t, "3", participants[0].ID)
	assert.Equal(t, "2", participants[1].ID)
	assert.Equal(t, "1", participants[2].ID)
}

func TestEventCapacity(t *testing.T) {
	limit := 3
	e := &Event{IsActive: true, ParticipantsLimit: &limit}

	assert.True(t, e.HasCapacity(1, 2))
	assert.False(t, e.HasCapacity(2, 2))
	assert.True(t, (&Event{}).HasCapacity(1000, 1))

	now := time.Now()
	assert.True(t, e.AcceptsRegistrations())
	e.DeletedAt = &now
	assert.False(t, e.AcceptsRegistrations())
}

func TestAddressString(t *testing.T) {
	assert.Equal(t, "Hauptstr. 1, 70173 Stuttgart, DE", Address{Street: "Hauptstr. 1", Zip: "70173", City: "Stuttgart", Country: "DE"}.String())
	assert.Equal(t, "Stuttgart", Address{City: "Stuttgart"}.String())
	assert.Equal(t, "", Address{}.String())
}

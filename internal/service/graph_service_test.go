package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoboldt/juvem-sub001/internal/domain"
	"github.com/theoboldt/juvem-sub001/internal/dto"
)

func TestGraphService_Build(t *testing.T) {
	f := newFixture(t)
	tent := f.createAttribute(t, dto.AttributeRequest{
		ManagementTitle:  "Zelt",
		FieldType:        domain.FieldChoice,
		IsPublic:         true,
		UseAtParticipant: true,
		Options: []dto.OptionRequest{
			{ManagementTitle: "Zelt A", Sort: 1},
			{ManagementTitle: "Zelt B", Sort: 2},
		},
	})
	notes := f.createAttribute(t, dto.AttributeRequest{
		ManagementTitle:  "Notiz",
		FieldType:        domain.FieldText,
		UseAtParticipant: true,
	})
	event := f.createEvent(t, nil, nil, tent.ID, notes.ID)
	tentA := tent.Options[0].ID

	lena := participantInput("Lena", "Muster")
	lena.Fillouts = []dto.FilloutInput{{AttributeID: tent.ID, Value: domain.ChoiceValue(tentA)}}
	siblings := f.register(t, event.ID, lena, participantInput("Anna", "Muster"))
	single := f.register(t, event.ID, participantInput("Paul", "Beispiel"))

	graph, err := f.graph.Build(f.ctx, event.ID, "")
	require.NoError(t, err)
	assert.Len(t, graph.Nodes, 3)
	require.Len(t, graph.Edges, 1)
	assert.Equal(t, domain.EdgeSibling, graph.Edges[0].Type)
	for _, n := range graph.Nodes {
		if n.ID == domain.ParticipantNodeID(single.Participants[0].ID) {
			assert.Equal(t, single.ID, n.Group)
		}
	}

	graph, err = f.graph.Build(f.ctx, event.ID, tent.ID)
	require.NoError(t, err)
	assert.Len(t, graph.Nodes, 5)
	assert.Contains(t, graph.Edges, domain.GraphEdge{
		From: domain.ParticipantNodeID(siblings.Participants[0].ID),
		To:   domain.OptionNodeID(tentA),
		Type: domain.EdgeChoice,
	})
	assert.Len(t, graph.Edges, 2)

	_, err = f.graph.Build(f.ctx, event.ID, notes.ID)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.graph.Build(f.ctx, event.ID, "missing")
	assert.ErrorIs(t, err, ErrAttributeNotFound)
}

func TestGraphService_SkipsInactive(t *testing.T) {
	f := newFixture(t)
	event := f.createEvent(t, nil, nil)
	participation := f.register(t, event.ID, participantInput("Lena", "Muster"), participantInput("Anna", "Muster"))

	_, err := f.participations.ChangeStatus(f.ctx, admin, event.ID, participation.Participants[1].ID, &dto.ChangeStatusRequest{Status: domain.StatusRejected})
	require.NoError(t, err)

	graph, err := f.graph.Build(f.ctx, event.ID, "")
	require.NoError(t, err)
	assert.Len(t, graph.Nodes, 1)
	assert.Empty(t, graph.Edges)
}

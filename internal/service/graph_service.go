package service

import (
	"context"
	"sort"

	"github.com/theoboldt/juvem-sub001/internal/domain"
	"github.com/theoboldt/juvem-sub001/internal/repository"
)

// graphService implements GraphService
type graphService struct {
	repos *repository.Repositories
}

// NewGraphService creates a new GraphService
func NewGraphService(repos *repository.Repositories) GraphService {
	return &graphService{repos: repos}
}

// Build returns the graph of an event. Participants of one participation are
// linked as siblings; with a choice attribute given, participants are linked
// to the options they selected.
func (s *graphService) Build(ctx context.Context, eventID, attributeID string) (*domain.Graph, error) {
	event, err := requireEvent(ctx, s.repos.Events, eventID)
	if err != nil {
		return nil, err
	}

	var attr *domain.Attribute
	if attributeID != "" {
		attr, err = s.repos.Attributes.GetByID(ctx, attributeID)
		if err != nil {
			return nil, err
		}
		if attr == nil || attr.IsDeleted() || !event.HasAttribute(attr.ID) {
			return nil, ErrAttributeNotFound
		}
		if attr.FieldType != domain.FieldChoice {
			return nil, NewValidationError("attribute_id", "attribute is not a choice attribute")
		}
	}

	participants, err := s.repos.Participants.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	active := make([]*domain.Participant, 0, len(participants))
	for _, p := range participants {
		if p.IsActive() {
			active = append(active, p)
		}
	}

	graph := &domain.Graph{Nodes: []domain.GraphNode{}, Edges: []domain.GraphEdge{}}
	byParticipation := make(map[string][]*domain.Participant)
	for _, p := range active {
		graph.Nodes = append(graph.Nodes, domain.GraphNode{
			ID:    domain.ParticipantNodeID(p.ID),
			Label: p.FullName(),
			Group: p.ParticipationID,
			Type:  domain.NodeParticipant,
		})
		byParticipation[p.ParticipationID] = append(byParticipation[p.ParticipationID], p)
	}

	for _, siblings := range byParticipation {
		for i := 0; i < len(siblings); i++ {
			for j := i + 1; j < len(siblings); j++ {
				from, to := domain.ParticipantNodeID(siblings[i].ID), domain.ParticipantNodeID(siblings[j].ID)
				if from > to {
					from, to = to, from
				}
				graph.Edges = append(graph.Edges, domain.GraphEdge{From: from, To: to, Type: domain.EdgeSibling})
			}
		}
	}

	if attr != nil {
		for _, opt := range attr.Options {
			graph.Nodes = append(graph.Nodes, domain.GraphNode{
				ID:    domain.OptionNodeID(opt.ID),
				Label: opt.ManagementTitle,
				Group: attr.ID,
				Type:  domain.NodeOption,
			})
		}

		participationIDs := make([]string, 0, len(byParticipation))
		for id := range byParticipation {
			participationIDs = append(participationIDs, id)
		}
		participationFillouts, err := s.repos.Fillouts.ListByOwners(ctx, domain.OwnerParticipation, participationIDs)
		if err != nil {
			return nil, err
		}
		for _, p := range active {
			fillout, ok := filloutValue(p.Fillouts, participationFillouts[p.ParticipationID], attr.ID)
			if !ok {
				continue
			}
			for _, optionID := range fillout.Value.Choices {
				if attr.Option(optionID) == nil {
					continue
				}
				graph.Edges = append(graph.Edges, domain.GraphEdge{
					From: domain.ParticipantNodeID(p.ID),
					To:   domain.OptionNodeID(optionID),
					Type: domain.EdgeChoice,
				})
			}
		}
	}

	sort.Slice(graph.Nodes, func(i, j int) bool { return graph.Nodes[i].ID < graph.Nodes[j].ID })
	sort.Slice(graph.Edges, func(i, j int) bool {
		a, b := graph.Edges[i], graph.Edges[j]
		if a.From != b.From {
			return a.From < b.From
		}
		if a.To != b.To {
			return a.To < b.To
		}
		return a.Type < b.Type
	})
	return graph, nil
}

package domain

// Node and edge kinds of the group graph
const (
	NodeParticipant = "participant"
	NodeOption      = "option"
	EdgeSibling     = "sibling"
	EdgeChoice      = "choice"
)

// GraphNode is a vertex of the group graph
type GraphNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Group string `json:"group"`
	Type  string `json:"type"`
}

// GraphEdge connects two nodes
type GraphEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Type string `json:"type"`
}

// Graph is the node/edge list consumed by the admin graph view
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// ParticipantNodeID returns the node ID of a participant
func ParticipantNodeID(id string) string { return NodeParticipant + ":" + id }

// OptionNodeID returns the node ID of an attribute option
func OptionNodeID(id string) string { return NodeOption + ":" + id }

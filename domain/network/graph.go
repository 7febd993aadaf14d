// Package network builds the professional/interest graph centred on one
// selected professional.
package network

import "profnet/domain/core/entities"

// NodeKind discriminates the two node variants of a snapshot.
type NodeKind string

const (
	KindProfessional NodeKind = "professional"
	KindInterest     NodeKind = "interest"
)

// EdgeKind is the relationship type carried by an edge.
type EdgeKind string

// EdgeHasInterest links a professional to one of their research interests.
const EdgeHasInterest EdgeKind = "has-interest"

// Node is a graph vertex. Name, Affiliation and IsCenter are set for
// professionals; Label and ConnectionCount for interests.
type Node struct {
	ID              string   `json:"id"`
	Kind            NodeKind `json:"type"`
	Name            string   `json:"name,omitempty"`
	Affiliation     string   `json:"affiliation,omitempty"`
	IsCenter        bool     `json:"isCenter,omitempty"`
	Label           string   `json:"label,omitempty"`
	ConnectionCount int      `json:"connectionCount,omitempty"`
}

// IsInterest reports whether the node is an interest node.
func (n Node) IsInterest() bool { return n.Kind == KindInterest }

// DisplayName is the text drawn next to the node.
func (n Node) DisplayName() string {
	if n.Kind == KindInterest {
		return n.Label
	}
	return n.Name
}

// Edge connects a professional to an interest.
type Edge struct {
	SourceID string   `json:"source"`
	TargetID string   `json:"target"`
	Kind     EdgeKind `json:"type"`
}

// Snapshot is one immutable build result. A new snapshot is produced for every
// selection; consumers reconcile against it rather than mutating it.
type Snapshot struct {
	CenterID   string `json:"centerId"`
	CenterName string `json:"centerName"`
	Nodes      []Node `json:"nodes"`
	Edges      []Edge `json:"edges"`
}

// Isolated reports whether the snapshot holds nothing worth laying out.
func (s *Snapshot) Isolated() bool {
	return s == nil || len(s.Nodes) <= 1
}

// Node looks up a node by identifier.
func (s *Snapshot) Node(id string) (Node, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// InterestID returns the namespaced node identifier for an interest.
func InterestID(interest string) string {
	return entities.InterestIDPrefix + interest
}

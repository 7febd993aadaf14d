package network

import (
	"profnet/domain/core/entities"
)

// edgeKey identifies an unordered node pair.
type edgeKey struct{ a, b string }

func newEdgeKey(x, y string) edgeKey {
	if x > y {
		x, y = y, x
	}
	return edgeKey{a: x, b: y}
}

type builder struct {
	snap      *Snapshot
	interests map[string]int // interest text -> index into snap.Nodes
	members   map[string]bool
	edges     map[edgeKey]struct{}
}

func (b *builder) addEdge(source, target string) {
	key := newEdgeKey(source, target)
	if _, ok := b.edges[key]; ok {
		return
	}
	b.edges[key] = struct{}{}
	b.snap.Edges = append(b.snap.Edges, Edge{SourceID: source, TargetID: target, Kind: EdgeHasInterest})
}

// Build returns the one-hop shared-interest neighbourhood of center within
// roster. It never fails: missing or blank interests simply yield fewer edges.
//
// Node order is the center, then the center's distinct interests in their
// stored order, then every related professional in roster order. Interests
// that only other professionals hold never become nodes.
func Build(center *entities.Professional, roster []*entities.Professional) *Snapshot {
	if center == nil {
		return &Snapshot{Nodes: []Node{}, Edges: []Edge{}}
	}

	b := &builder{
		snap: &Snapshot{
			CenterID:   center.ID,
			CenterName: center.Name(),
			Nodes: []Node{{
				ID:          center.ID,
				Kind:        KindProfessional,
				Name:        center.Name(),
				Affiliation: center.Affiliation(),
				IsCenter:    true,
			}},
			Edges: []Edge{},
		},
		interests: make(map[string]int),
		members:   map[string]bool{center.ID: true},
		edges:     make(map[edgeKey]struct{}),
	}

	centerInterests := center.ResearchInterests()
	if len(centerInterests) == 0 {
		return b.snap
	}

	for _, interest := range centerInterests {
		if _, seen := b.interests[interest]; seen {
			continue
		}
		id := InterestID(interest)
		b.interests[interest] = len(b.snap.Nodes)
		b.snap.Nodes = append(b.snap.Nodes, Node{
			ID:              id,
			Kind:            KindInterest,
			Label:           interest,
			ConnectionCount: 1,
		})
		b.addEdge(center.ID, id)
	}

	for _, p := range roster {
		// Repeated roster entries count once.
		if p == nil || b.members[p.ID] {
			continue
		}

		shared := b.sharedInterests(p)
		if len(shared) == 0 {
			continue
		}

		b.members[p.ID] = true
		b.snap.Nodes = append(b.snap.Nodes, Node{
			ID:          p.ID,
			Kind:        KindProfessional,
			Name:        p.Name(),
			Affiliation: p.Affiliation(),
		})

		for _, interest := range shared {
			idx := b.interests[interest]
			b.snap.Nodes[idx].ConnectionCount++
			b.addEdge(p.ID, b.snap.Nodes[idx].ID)
		}
	}

	return b.snap
}

// sharedInterests returns the distinct interests p holds in common with the
// center, in p's order.
func (b *builder) sharedInterests(p *entities.Professional) []string {
	var shared []string
	seen := make(map[string]bool)
	for _, interest := range p.ResearchInterests() {
		if seen[interest] {
			continue
		}
		seen[interest] = true
		if _, ok := b.interests[interest]; ok {
			shared = append(shared, interest)
		}
	}
	return shared
}

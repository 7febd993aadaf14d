package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profnet/domain/core/entities"
)

func professional(id, name string, interests ...string) *entities.Professional {
	return &entities.Professional{
		ID:           id,
		PersonalInfo: entities.PersonalInfo{Name: name},
		ProfessionalInfo: entities.ProfessionalInfo{
			Affiliation: name + " Institute",
		},
		AcademicInfo: entities.AcademicInfo{ResearchInterests: interests},
	}
}

func nodeIDs(s *Snapshot) []string {
	ids := make([]string, len(s.Nodes))
	for i, n := range s.Nodes {
		ids[i] = n.ID
	}
	return ids
}

func TestBuild_SharedInterestExample(t *testing.T) {
	c := professional("c", "Chen", "AI", "Robotics")
	p1 := professional("p1", "Li", "AI")
	p2 := professional("p2", "Wang", "Biology")

	snap := Build(c, []*entities.Professional{c, p1, p2})

	assert.Equal(t, []string{"c", "interest-AI", "interest-Robotics", "p1"}, nodeIDs(snap))
	assert.Equal(t, []Edge{
		{SourceID: "c", TargetID: "interest-AI", Kind: EdgeHasInterest},
		{SourceID: "c", TargetID: "interest-Robotics", Kind: EdgeHasInterest},
		{SourceID: "p1", TargetID: "interest-AI", Kind: EdgeHasInterest},
	}, snap.Edges)

	ai, ok := snap.Node("interest-AI")
	require.True(t, ok)
	assert.Equal(t, 2, ai.ConnectionCount)
	assert.Equal(t, "AI", ai.Label)

	robotics, ok := snap.Node("interest-Robotics")
	require.True(t, ok)
	assert.Equal(t, 1, robotics.ConnectionCount)

	_, ok = snap.Node("p2")
	assert.False(t, ok)
	assert.Equal(t, "c", snap.CenterID)
	assert.Equal(t, "Chen", snap.CenterName)
}

func TestBuild_ExactlyOneCenter(t *testing.T) {
	roster := []*entities.Professional{
		professional("a", "A", "x", "y"),
		professional("b", "B", "x"),
		professional("c", "C", "y", "z"),
	}

	for _, center := range roster {
		t.Run(center.ID, func(t *testing.T) {
			snap := Build(center, roster)
			var centers []Node
			for _, n := range snap.Nodes {
				if n.IsCenter {
					centers = append(centers, n)
				}
			}
			require.Len(t, centers, 1)
			assert.Equal(t, center.ID, centers[0].ID)
			assert.Equal(t, snap.Nodes[0], centers[0])
		})
	}
}

func TestBuild_IsolatedCenter(t *testing.T) {
	tests := []struct {
		name      string
		interests []string
	}{
		{"nil interests", nil},
		{"empty list", []string{}},
		{"blank strings only", []string{"", "   ", "\t"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := professional("c", "Chen", tt.interests...)
			other := professional("o", "Other", "AI")

			snap := Build(c, []*entities.Professional{c, other})

			assert.Len(t, snap.Nodes, 1)
			assert.Empty(t, snap.Edges)
			assert.True(t, snap.Isolated())
		})
	}
}

func TestBuild_TrimsAndDeduplicatesInterests(t *testing.T) {
	c := professional("c", "Chen", " AI ", "AI", "", "ai")
	p := professional("p", "Li", "AI  ", "AI")

	snap := Build(c, []*entities.Professional{c, p})

	assert.Equal(t, []string{"c", "interest-AI", "interest-ai", "p"}, nodeIDs(snap))

	ai, _ := snap.Node("interest-AI")
	assert.Equal(t, 2, ai.ConnectionCount, "a professional listing an interest twice counts once")

	lower, _ := snap.Node("interest-ai")
	assert.Equal(t, 1, lower.ConnectionCount, "interest identity is case-sensitive")
	assert.Len(t, snap.Edges, 3)
}

func TestBuild_NoDuplicateUnorderedEdges(t *testing.T) {
	c := professional("c", "Chen", "AI", "ML", "AI")
	roster := []*entities.Professional{
		c,
		professional("p1", "One", "AI", "ML", "AI"),
		professional("p2", "Two", "ML"),
		professional("p1", "One again", "AI"),
		c,
	}

	snap := Build(c, roster)

	seen := make(map[edgeKey]bool)
	for _, e := range snap.Edges {
		key := newEdgeKey(e.SourceID, e.TargetID)
		assert.False(t, seen[key], "duplicate edge %s-%s", e.SourceID, e.TargetID)
		seen[key] = true
	}
	assert.Len(t, snap.Edges, 5)
}

func TestBuild_ConnectionCountMatchesSharers(t *testing.T) {
	c := professional("c", "Chen", "AI", "Vision", "Graphs")
	roster := []*entities.Professional{
		professional("p1", "One", "AI", "Vision"),
		c,
		professional("p2", "Two", "AI"),
		professional("p3", "Three", "Cooking"),
		professional("p4", "Four", " Vision", "AI", "Cooking"),
	}

	snap := Build(c, roster)

	expected := map[string]int{"interest-AI": 4, "interest-Vision": 3, "interest-Graphs": 1}
	for id, count := range expected {
		n, ok := snap.Node(id)
		require.True(t, ok, id)
		assert.Equal(t, count, n.ConnectionCount, id)
	}
	_, ok := snap.Node("p3")
	assert.False(t, ok)
	_, ok = snap.Node("interest-Cooking")
	assert.False(t, ok, "interests unique to others never become nodes")
}

func TestBuild_CenterMissingFromRoster(t *testing.T) {
	c := professional("c", "Chen", "AI")
	snap := Build(c, []*entities.Professional{professional("p", "Li", "AI"), nil})

	assert.Equal(t, []string{"c", "interest-AI", "p"}, nodeIDs(snap))
}

func TestBuild_NilCenter(t *testing.T) {
	snap := Build(nil, nil)
	assert.Empty(t, snap.Nodes)
	assert.True(t, snap.Isolated())
}

func TestBuild_Deterministic(t *testing.T) {
	c := professional("c", "Chen", "AI", "ML")
	roster := []*entities.Professional{
		c,
		professional("p2", "Two", "ML"),
		professional("p1", "One", "AI"),
	}

	first := Build(c, roster)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Build(c, roster))
	}
	assert.Equal(t, []string{"c", "interest-AI", "interest-ML", "p2", "p1"}, nodeIDs(first))
}

func TestSnapshot_Stats(t *testing.T) {
	c := professional("c", "Chen", "AI", "Robotics")
	snap := Build(c, []*entities.Professional{c, professional("p1", "Li", "AI")})

	stats := snap.Stats()
	assert.Equal(t, 4, stats.NodeCount)
	assert.Equal(t, 3, stats.EdgeCount)
	assert.Equal(t, 2, stats.ProfessionalCount)
	assert.Equal(t, 2, stats.InterestCount)
	assert.InDelta(t, 0.5, stats.Density, 1e-9)

	assert.Equal(t, Stats{}, (*Snapshot)(nil).Stats())
}

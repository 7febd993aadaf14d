package network

// Stats summarises a snapshot for API consumers.
type Stats struct {
	NodeCount         int     `json:"node_count"`
	EdgeCount         int     `json:"edge_count"`
	ProfessionalCount int     `json:"professional_count"`
	InterestCount     int     `json:"interest_count"`
	Density           float64 `json:"density"`
}

// Stats computes node and edge counts plus edge density.
func (s *Snapshot) Stats() Stats {
	if s == nil {
		return Stats{}
	}

	stats := Stats{
		NodeCount: len(s.Nodes),
		EdgeCount: len(s.Edges),
	}
	for _, n := range s.Nodes {
		if n.Kind == KindInterest {
			stats.InterestCount++
		} else {
			stats.ProfessionalCount++
		}
	}

	if stats.NodeCount > 1 {
		maxPossibleEdges := stats.NodeCount * (stats.NodeCount - 1) / 2
		stats.Density = float64(stats.EdgeCount) / float64(maxPossibleEdges)
	}
	return stats
}

package queries

import (
	"strings"

	"profnet/domain/network"
	pkgerrors "profnet/pkg/errors"
)

// DefaultRosterSize is how many records the network view considers when
// looking for related professionals.
const DefaultRosterSize = 100

// GetNetworkGraphQuery builds the shared-interest graph around a professional.
type GetNetworkGraphQuery struct {
	CenterID   string `json:"center_id"`
	RosterSize int    `json:"roster_size"`
}

// Validate validates the query
func (q GetNetworkGraphQuery) Validate() error {
	if strings.TrimSpace(q.CenterID) == "" {
		return pkgerrors.NewValidationError("center id is required")
	}
	if q.RosterSize < 0 {
		return pkgerrors.NewValidationError("roster size cannot be negative")
	}
	return nil
}

// NodeStyle carries the presentation policy for clients that lay the graph
// out themselves.
type NodeStyle struct {
	ID      string  `json:"id"`
	Radius  float64 `json:"radius"`
	Color   string  `json:"color"`
	Tooltip string  `json:"tooltip"`
}

// NetworkGraphResult is the built graph plus derived data.
type NetworkGraphResult struct {
	Title    string            `json:"title"`
	Isolated bool              `json:"isolated"`
	Message  string            `json:"message,omitempty"`
	Graph    *network.Snapshot `json:"graph"`
	Stats    network.Stats     `json:"stats"`
	Styles   []NodeStyle       `json:"styles"`
}

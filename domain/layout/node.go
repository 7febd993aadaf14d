package layout

import (
	"gonum.org/v1/gonum/spatial/r2"

	"profnet/domain/network"
)

// simNode is a graph node with physical state. Pin is non-nil while the node
// is held by a drag gesture.
type simNode struct {
	network.Node
	radius float64
	pos    r2.Vec
	vel    r2.Vec
	pin    *r2.Vec
}

type link struct {
	source, target *simNode
	bias           float64
}

package layout

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"profnet/domain/network"
)

type simulation struct {
	cfg         Config
	rng         *rand.Rand
	center      r2.Vec
	nodes       []*simNode
	byID        map[string]*simNode
	links       []link
	alpha       float64
	alphaTarget float64
}

func newSimulation(cfg Config, rng *rand.Rand, center r2.Vec) *simulation {
	return &simulation{
		cfg:    cfg,
		rng:    rng,
		center: center,
		byID:   make(map[string]*simNode),
	}
}

// reconcile replaces the node and link sets with those of snap. Nodes whose
// ID survives keep position, velocity and pin; new nodes are placed near the
// centre. It returns the IDs that entered and exited.
func (s *simulation) reconcile(snap *network.Snapshot) (entered, exited []string) {
	next := make(map[string]*simNode, len(snap.Nodes))
	nodes := make([]*simNode, 0, len(snap.Nodes))

	for _, gn := range snap.Nodes {
		if _, dup := next[gn.ID]; dup {
			continue
		}
		n, ok := s.byID[gn.ID]
		if !ok {
			n = &simNode{pos: s.spawnPoint()}
			entered = append(entered, gn.ID)
		}
		n.Node = gn
		n.radius = Radius(gn)
		next[gn.ID] = n
		nodes = append(nodes, n)
	}

	for _, old := range s.nodes {
		if _, ok := next[old.ID]; !ok {
			exited = append(exited, old.ID)
		}
	}

	s.nodes = nodes
	s.byID = next
	s.rebuildLinks(snap.Edges)
	return entered, exited
}

func (s *simulation) spawnPoint() r2.Vec {
	j := s.cfg.Jitter
	return r2.Vec{
		X: s.center.X + (s.rng.Float64()*2-1)*j,
		Y: s.center.Y + (s.rng.Float64()*2-1)*j,
	}
}

// rebuildLinks resolves edges against the current nodes, dropping edges with
// an unknown endpoint, and computes each link's degree bias.
func (s *simulation) rebuildLinks(edges []network.Edge) {
	s.links = s.links[:0]
	degree := make(map[*simNode]int)
	for _, e := range edges {
		src, ok1 := s.byID[e.SourceID]
		dst, ok2 := s.byID[e.TargetID]
		if !ok1 || !ok2 || src == dst {
			continue
		}
		s.links = append(s.links, link{source: src, target: dst})
		degree[src]++
		degree[dst]++
	}
	for i := range s.links {
		l := &s.links[i]
		l.bias = float64(degree[l.source]) / float64(degree[l.source]+degree[l.target])
	}
}

// restart reheats the simulation to the configured starting energy.
func (s *simulation) restart() {
	s.alpha = s.cfg.AlphaRestart
}

// settled reports whether alpha has cooled below the stopping threshold.
func (s *simulation) settled() bool {
	return s.alpha < s.cfg.AlphaMin
}

// step advances the simulation by one tick.
func (s *simulation) step() {
	s.alpha += (s.alphaTarget - s.alpha) * s.cfg.AlphaDecay

	s.applyLink()
	s.applyCharge()
	s.applyCenter()
	s.applyCollide()

	keep := 1 - s.cfg.VelocityDecay
	for _, n := range s.nodes {
		if n.pin != nil {
			n.pos = *n.pin
			n.vel = r2.Vec{}
			continue
		}
		n.vel = r2.Scale(keep, n.vel)
		n.pos = r2.Add(n.pos, n.vel)
	}
}

func (s *simulation) frame(tick int) Frame {
	f := Frame{
		Tick:  tick,
		Alpha: s.alpha,
		Nodes: make([]NodePosition, len(s.nodes)),
		Edges: make([]EdgePosition, len(s.links)),
	}
	for i, n := range s.nodes {
		f.Nodes[i] = NodePosition{ID: n.ID, X: n.pos.X, Y: n.pos.Y}
	}
	for i, l := range s.links {
		f.Edges[i] = EdgePosition{
			SourceID: l.source.ID,
			TargetID: l.target.ID,
			X1:       l.source.pos.X,
			Y1:       l.source.pos.Y,
			X2:       l.target.pos.X,
			Y2:       l.target.pos.Y,
		}
	}
	return f
}

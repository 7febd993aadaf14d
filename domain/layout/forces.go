package layout

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Forces mutate node velocities (or, for centring, positions) in place. Each
// is scaled by the current alpha so the layout cools as alpha decays.

func (s *simulation) jiggle() float64 {
	return (s.rng.Float64() - 0.5) * 1e-6
}

// applyLink pulls linked nodes toward LinkDistance. The correction is split
// by degree so that well-connected nodes move less.
func (s *simulation) applyLink() {
	for _, l := range s.links {
		d := r2.Sub(r2.Add(l.target.pos, l.target.vel), r2.Add(l.source.pos, l.source.vel))
		if d.X == 0 {
			d.X = s.jiggle()
		}
		if d.Y == 0 {
			d.Y = s.jiggle()
		}
		dist := r2.Norm(d)
		d = r2.Scale((dist-s.cfg.LinkDistance)/dist*s.alpha*s.cfg.LinkStrength, d)
		l.target.vel = r2.Sub(l.target.vel, r2.Scale(l.bias, d))
		l.source.vel = r2.Add(l.source.vel, r2.Scale(1-l.bias, d))
	}
}

// applyCharge applies pairwise repulsion (negative strength) by direct
// summation. Distances below one unit are softened.
func (s *simulation) applyCharge() {
	k := s.cfg.ChargeStrength * s.alpha
	for _, a := range s.nodes {
		for _, b := range s.nodes {
			if a == b {
				continue
			}
			d := r2.Sub(b.pos, a.pos)
			if d.X == 0 {
				d.X = s.jiggle()
			}
			if d.Y == 0 {
				d.Y = s.jiggle()
			}
			l2 := r2.Norm2(d)
			if l2 < 1 {
				l2 = math.Sqrt(l2)
			}
			a.vel = r2.Add(a.vel, r2.Scale(k/l2, d))
		}
	}
}

// applyCenter translates every node so the centroid sits on the surface
// centre. It does not touch velocities.
func (s *simulation) applyCenter() {
	if len(s.nodes) == 0 {
		return
	}
	var sum r2.Vec
	for _, n := range s.nodes {
		sum = r2.Add(sum, n.pos)
	}
	shift := r2.Scale(s.cfg.CenterStrength, r2.Sub(r2.Scale(1/float64(len(s.nodes)), sum), s.center))
	for _, n := range s.nodes {
		n.pos = r2.Sub(n.pos, shift)
	}
}

// applyCollide separates nodes whose padded radii overlap, using the
// positions they are about to move to.
func (s *simulation) applyCollide() {
	pad := s.cfg.CollidePadding
	for i, a := range s.nodes {
		ra := a.radius + pad
		for _, b := range s.nodes[i+1:] {
			rb := b.radius + pad
			r := ra + rb
			d := r2.Sub(r2.Add(a.pos, a.vel), r2.Add(b.pos, b.vel))
			l2 := r2.Norm2(d)
			if l2 >= r*r {
				continue
			}
			if d.X == 0 {
				d.X = s.jiggle()
				l2 += d.X * d.X
			}
			if d.Y == 0 {
				d.Y = s.jiggle()
				l2 += d.Y * d.Y
			}
			l := math.Sqrt(l2)
			d = r2.Scale((r-l)/l*s.cfg.CollideStrength, d)
			w := rb * rb / (ra*ra + rb*rb)
			a.vel = r2.Add(a.vel, r2.Scale(w, d))
			b.vel = r2.Sub(b.vel, r2.Scale(1-w, d))
		}
	}
}

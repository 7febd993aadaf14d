package layout

import (
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r2"
)

// Transform maps simulation coordinates to screen coordinates: screen = p*K + (X, Y).
type Transform struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	K float64 `json:"k"`
}

// Identity is the untransformed view.
var Identity = Transform{K: 1}

// Apply maps a simulation point to the screen.
func (t Transform) Apply(p r2.Vec) r2.Vec {
	return r2.Add(r2.Scale(t.K, p), r2.Vec{X: t.X, Y: t.Y})
}

// Invert maps a screen point back to simulation space.
func (t Transform) Invert(p r2.Vec) r2.Vec {
	return r2.Scale(1/t.K, r2.Sub(p, r2.Vec{X: t.X, Y: t.Y}))
}

// scaleAround multiplies the scale by factor, clamped to [min, max], keeping
// the screen point p fixed.
func (t Transform) scaleAround(factor float64, p r2.Vec, min, max float64) Transform {
	k := math.Max(min, math.Min(max, t.K*factor))
	world := t.Invert(p)
	return Transform{X: p.X - world.X*k, Y: p.Y - world.Y*k, K: k}
}

func (t Transform) translate(dx, dy float64) Transform {
	return Transform{X: t.X + dx, Y: t.Y + dy, K: t.K}
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

// easeCubicInOut is the default easing of animated view transitions.
func easeCubicInOut(t float64) float64 {
	t *= 2
	if t <= 1 {
		return t * t * t / 2
	}
	t -= 2
	return (t*t*t + 2) / 2
}

// zoomAnimation interpolates between two transforms over a fixed duration.
type zoomAnimation struct {
	from, to Transform
	start    time.Time
	duration time.Duration
}

// at returns the transform at now and whether the animation has finished.
func (a *zoomAnimation) at(now time.Time) (Transform, bool) {
	if a.duration <= 0 {
		return a.to, true
	}
	p := float64(now.Sub(a.start)) / float64(a.duration)
	if p >= 1 {
		return a.to, true
	}
	if p < 0 {
		p = 0
	}
	e := easeCubicInOut(p)
	return Transform{
		X: lerp(a.from.X, a.to.X, e),
		Y: lerp(a.from.Y, a.to.Y, e),
		K: lerp(a.from.K, a.to.K, e),
	}, false
}

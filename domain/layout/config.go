// Package layout runs the force-directed simulation behind the network view
// and pushes its state to a drawing Surface every tick.
package layout

import (
	"fmt"
	"math"
	"time"
)

// Config tunes the simulation, the tick loop and the zoom behaviour.
type Config struct {
	// Forces
	LinkDistance    float64 `yaml:"link_distance"`
	LinkStrength    float64 `yaml:"link_strength"`
	ChargeStrength  float64 `yaml:"charge_strength"`
	CenterStrength  float64 `yaml:"center_strength"`
	CollidePadding  float64 `yaml:"collide_padding"`
	CollideStrength float64 `yaml:"collide_strength"`
	VelocityDecay   float64 `yaml:"velocity_decay"`

	// Energy schedule
	AlphaRestart    float64 `yaml:"alpha_restart"`
	AlphaMin        float64 `yaml:"alpha_min"`
	AlphaDecay      float64 `yaml:"alpha_decay"`
	DragAlphaTarget float64 `yaml:"drag_alpha_target"`

	// Jitter is the half-width of the square around the surface centre in
	// which new nodes are placed.
	Jitter float64 `yaml:"jitter"`
	Seed   int64   `yaml:"seed"`

	// TickInterval drives the background loop. Zero disables the loop and
	// leaves ticking to the caller.
	TickInterval time.Duration `yaml:"tick_interval"`

	// Zoom
	MinZoom       float64       `yaml:"min_zoom"`
	MaxZoom       float64       `yaml:"max_zoom"`
	ZoomStep      float64       `yaml:"zoom_step"`
	ZoomDuration  time.Duration `yaml:"zoom_duration"`
	ResetDuration time.Duration `yaml:"reset_duration"`
}

// DefaultConfig returns the stock layout settings. The decay rate brings alpha
// from 1 down to AlphaMin in roughly 300 ticks.
func DefaultConfig() Config {
	return Config{
		LinkDistance:    100,
		LinkStrength:    0.5,
		ChargeStrength:  -250,
		CenterStrength:  1,
		CollidePadding:  5,
		CollideStrength: 1,
		VelocityDecay:   0.4,

		AlphaRestart:    0.8,
		AlphaMin:        0.001,
		AlphaDecay:      1 - math.Pow(0.001, 1.0/300),
		DragAlphaTarget: 0.3,

		Jitter:       10,
		TickInterval: 16 * time.Millisecond,

		MinZoom:       0.1,
		MaxZoom:       8,
		ZoomStep:      1.3,
		ZoomDuration:  300 * time.Millisecond,
		ResetDuration: 500 * time.Millisecond,
	}
}

// Validate rejects settings the simulation cannot run with.
func (c Config) Validate() error {
	switch {
	case c.LinkDistance <= 0:
		return fmt.Errorf("link_distance must be positive, got %v", c.LinkDistance)
	case c.AlphaMin <= 0 || c.AlphaMin >= 1:
		return fmt.Errorf("alpha_min must be in (0, 1), got %v", c.AlphaMin)
	case c.AlphaRestart <= c.AlphaMin || c.AlphaRestart > 1:
		return fmt.Errorf("alpha_restart must be in (alpha_min, 1], got %v", c.AlphaRestart)
	case c.AlphaDecay <= 0 || c.AlphaDecay >= 1:
		return fmt.Errorf("alpha_decay must be in (0, 1), got %v", c.AlphaDecay)
	case c.VelocityDecay < 0 || c.VelocityDecay > 1:
		return fmt.Errorf("velocity_decay must be in [0, 1], got %v", c.VelocityDecay)
	case c.DragAlphaTarget < 0 || c.DragAlphaTarget > 1:
		return fmt.Errorf("drag_alpha_target must be in [0, 1], got %v", c.DragAlphaTarget)
	case c.MinZoom <= 0 || c.MaxZoom < c.MinZoom:
		return fmt.Errorf("invalid zoom extent [%v, %v]", c.MinZoom, c.MaxZoom)
	case c.ZoomStep <= 1:
		return fmt.Errorf("zoom_step must be greater than 1, got %v", c.ZoomStep)
	case c.TickInterval < 0 || c.ZoomDuration < 0 || c.ResetDuration < 0:
		return fmt.Errorf("durations cannot be negative")
	}
	return nil
}

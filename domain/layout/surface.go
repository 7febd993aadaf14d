package layout

import "profnet/domain/network"

// Size is the drawing surface extent in pixels.
type Size struct {
	Width  float64 `json:"width" validate:"gt=0"`
	Height float64 `json:"height" validate:"gt=0"`
}

// State is the renderer lifecycle state.
type State string

const (
	StateEmpty       State = "empty"
	StatePlaceholder State = "placeholder"
	StateActive      State = "active"
	StateUnavailable State = "unavailable"
)

// NodeView is the static presentation of a node, sent once per bind.
type NodeView struct {
	ID       string           `json:"id"`
	Kind     network.NodeKind `json:"type"`
	Label    string           `json:"label"`
	IsCenter bool             `json:"isCenter,omitempty"`
	Radius   float64          `json:"radius"`
	Color    string           `json:"color"`
	Tooltip  string           `json:"tooltip"`
	X        float64          `json:"x"`
	Y        float64          `json:"y"`
}

// Scene describes what to draw after a bind. Entered and Exited list the node
// IDs added and removed relative to the previous scene.
type Scene struct {
	Title   string         `json:"title"`
	Nodes   []NodeView     `json:"nodes"`
	Edges   []network.Edge `json:"edges"`
	Entered []string       `json:"entered,omitempty"`
	Exited  []string       `json:"exited,omitempty"`
}

type NodePosition struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

type EdgePosition struct {
	SourceID string  `json:"source"`
	TargetID string  `json:"target"`
	X1       float64 `json:"x1"`
	Y1       float64 `json:"y1"`
	X2       float64 `json:"x2"`
	Y2       float64 `json:"y2"`
}

// Frame carries every node position and edge endpoint after one tick.
type Frame struct {
	Tick  int            `json:"tick"`
	Alpha float64        `json:"alpha"`
	Nodes []NodePosition `json:"nodes"`
	Edges []EdgePosition `json:"edges"`
}

// Surface is the drawing target a Renderer pushes to. The renderer never
// reads state back from it. Implementations must not block: every call is
// made with the renderer lock held, from the tick loop or a control call.
type Surface interface {
	// Attach prepares the surface. It is called once per renderer.
	Attach(size Size) error
	// Render replaces the drawn graph structure.
	Render(scene Scene) error
	// Draw pushes the positions of one tick.
	Draw(frame Frame) error
	// SetTransform applies a pan/zoom view transform.
	SetTransform(t Transform) error
	// ShowMessage replaces the graph with a message for the given state.
	ShowMessage(state State, message string) error
	// Discard removes everything drawn so far.
	Discard() error
}

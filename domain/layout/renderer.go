package layout

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"

	"profnet/domain/network"
)

// Messages shown in place of the graph.
const (
	MessageNoData      = "没有可显示的数据。"
	MessageUnavailable = "生成图谱时出错。"
	messageIsolatedFmt = "%s 没有共享研究兴趣或关联人员。"
)

var (
	ErrNotInitialized = errors.New("renderer is not initialized")
	ErrUnavailable    = errors.New("visualization unavailable")
	ErrClosed         = errors.New("renderer is closed")
	ErrUnknownNode    = errors.New("unknown node")
	ErrInactive       = errors.New("no active graph")
	ErrInvalidFactor  = errors.New("zoom factor must be positive")
)

// IsolatedMessage is the placeholder text for a professional without
// shared-interest connections.
func IsolatedMessage(name string) string {
	return fmt.Sprintf(messageIsolatedFmt, name)
}

// Option customises a Renderer.
type Option func(*Renderer)

// WithClock overrides the time source used by zoom animations.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) { r.now = now }
}

// WithLogger sets the renderer logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Renderer) { r.logger = logger }
}

// Renderer owns one simulation and the surface it draws on. All methods are
// safe for concurrent use; they serialise with the tick loop on one lock, so
// a Bind always atomically replaces what the loop is stepping.
type Renderer struct {
	mu      sync.Mutex
	cfg     Config
	surface Surface
	logger  *zap.Logger
	now     func() time.Time
	rng     *rand.Rand

	state    State
	message  string
	attached bool
	closed   bool
	size     Size

	sim      *simulation
	running  bool // simulation still cooling
	tick     int
	dragging map[string]bool

	transform Transform
	anim      *zoomAnimation

	loopGen  uint64
	loopOn   bool
	loopDone sync.WaitGroup
}

// NewRenderer creates a renderer drawing on surface. A nil surface is
// accepted; Initialize then reports the renderer unavailable.
func NewRenderer(surface Surface, cfg Config, opts ...Option) *Renderer {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	r := &Renderer{
		cfg:       cfg,
		surface:   surface,
		logger:    zap.NewNop(),
		now:       time.Now,
		rng:       rand.New(rand.NewSource(seed)),
		state:     StateEmpty,
		dragging:  make(map[string]bool),
		transform: Identity,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Initialize attaches the surface on first call. Later calls only record the
// new size; a moved centre reheats an active layout so it drifts there.
func (r *Renderer) Initialize(size Size) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.usableLocked(); err != nil && !errors.Is(err, ErrNotInitialized) {
		return err
	}
	if size.Width <= 0 || size.Height <= 0 {
		return fmt.Errorf("invalid surface size %vx%v", size.Width, size.Height)
	}
	if r.surface == nil {
		return r.failLocked(errors.New("no drawing surface"))
	}

	if !r.attached {
		if err := r.surface.Attach(size); err != nil {
			return r.failLocked(fmt.Errorf("attach surface: %w", err))
		}
		r.attached = true
	}
	r.size = size
	if r.sim != nil {
		if c := r.centerLocked(); c != r.sim.center {
			r.sim.center = c
			if r.state == StateActive {
				r.sim.restart()
				r.running = true
				r.startLocked()
			}
		}
	}
	return nil
}

// Bind lays out snap, reconciling it with the nodes already on screen.
// Snapshots with at most one node switch to the placeholder state instead.
func (r *Renderer) Bind(snap *network.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.usableLocked(); err != nil {
		return err
	}

	if snap.Isolated() {
		msg := MessageNoData
		if snap != nil && len(snap.Nodes) == 1 {
			msg = IsolatedMessage(snap.Nodes[0].DisplayName())
		}
		return r.placeholderLocked(msg)
	}

	if r.sim == nil {
		r.sim = newSimulation(r.cfg, r.rng, r.centerLocked())
	}
	entered, exited := r.sim.reconcile(snap)
	for id := range r.dragging {
		if _, ok := r.sim.byID[id]; !ok {
			delete(r.dragging, id)
		}
	}
	if len(r.dragging) == 0 {
		r.sim.alphaTarget = 0
	}

	if err := r.surface.Render(r.sceneLocked(snap, entered, exited)); err != nil {
		return r.failLocked(fmt.Errorf("render scene: %w", err))
	}

	r.state = StateActive
	r.message = ""
	r.sim.restart()
	r.running = true
	r.logger.Debug("graph bound",
		zap.String("center", snap.CenterID),
		zap.Int("nodes", len(r.sim.nodes)),
		zap.Int("links", len(r.sim.links)),
		zap.Int("entered", len(entered)),
		zap.Int("exited", len(exited)),
	)
	r.startLocked()
	return nil
}

// ShowPlaceholder stops the simulation, discards the drawing and shows
// message instead.
func (r *Renderer) ShowPlaceholder(message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.usableLocked(); err != nil {
		return err
	}
	return r.placeholderLocked(message)
}

// Clear stops the simulation and empties the surface.
func (r *Renderer) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.usableLocked(); err != nil {
		return err
	}
	r.teardownLocked()
	if err := r.surface.Discard(); err != nil {
		return r.failLocked(fmt.Errorf("discard surface: %w", err))
	}
	r.state = StateEmpty
	r.message = ""
	return nil
}

// Close stops the tick loop and waits for it to exit. The renderer cannot be
// used afterwards.
func (r *Renderer) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		r.stopLoopLocked()
		r.running = false
		r.anim = nil
	}
	r.mu.Unlock()
	r.loopDone.Wait()
}

// Tick advances the simulation and any running zoom animation by one step,
// pushing the result to the surface. It reports whether further ticks are
// needed. The background loop calls it; with a zero TickInterval the owner
// must.
func (r *Renderer) Tick() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tickLocked()
}

// Start launches the background tick loop if there is work to do and none is
// running. Bind, drags and zooms call it implicitly.
func (r *Renderer) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.startLocked()
}

// DragStart pins a node where it is and raises the target energy so its
// neighbours follow.
func (r *Renderer) DragStart(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, err := r.dragNodeLocked(id)
	if err != nil {
		return err
	}
	if len(r.dragging) == 0 {
		r.sim.alphaTarget = r.cfg.DragAlphaTarget
	}
	r.dragging[id] = true
	pin := n.pos
	n.pin = &pin
	r.running = true
	r.startLocked()
	return nil
}

// Drag moves the pin of a dragged node to (x, y) in simulation space.
func (r *Renderer) Drag(id string, x, y float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, err := r.dragNodeLocked(id)
	if err != nil {
		return err
	}
	if !r.dragging[id] {
		return fmt.Errorf("%w: %s is not being dragged", ErrUnknownNode, id)
	}
	n.pin = &r2.Vec{X: x, Y: y}
	return nil
}

// DragEnd releases the node. Once no node is held the target energy drops
// back to zero and the layout cools down.
func (r *Renderer) DragEnd(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, err := r.dragNodeLocked(id)
	if err != nil {
		return err
	}
	if !r.dragging[id] {
		return nil
	}
	delete(r.dragging, id)
	n.pin = nil
	if len(r.dragging) == 0 {
		r.sim.alphaTarget = 0
	}
	return nil
}

// ZoomBy animates the view scale by factor around the surface centre.
func (r *Renderer) ZoomBy(factor float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.usableLocked(); err != nil {
		return err
	}
	if factor <= 0 {
		return ErrInvalidFactor
	}
	target := r.transform.scaleAround(factor, r.centerLocked(), r.cfg.MinZoom, r.cfg.MaxZoom)
	return r.animateLocked(target, r.cfg.ZoomDuration)
}

func (r *Renderer) ZoomIn() error  { return r.ZoomBy(r.cfg.ZoomStep) }
func (r *Renderer) ZoomOut() error { return r.ZoomBy(1 / r.cfg.ZoomStep) }

// ResetZoom animates the view back to the identity transform.
func (r *Renderer) ResetZoom() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.usableLocked(); err != nil {
		return err
	}
	return r.animateLocked(Identity, r.cfg.ResetDuration)
}

// ZoomAt scales the view immediately around screen point (x, y), as a wheel
// gesture does.
func (r *Renderer) ZoomAt(factor, x, y float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.usableLocked(); err != nil {
		return err
	}
	if factor <= 0 {
		return ErrInvalidFactor
	}
	r.anim = nil
	return r.setTransformLocked(r.transform.scaleAround(factor, r2.Vec{X: x, Y: y}, r.cfg.MinZoom, r.cfg.MaxZoom))
}

// Pan translates the view immediately by (dx, dy) screen pixels.
func (r *Renderer) Pan(dx, dy float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.usableLocked(); err != nil {
		return err
	}
	r.anim = nil
	return r.setTransformLocked(r.transform.translate(dx, dy))
}

// Transform returns the current view transform.
func (r *Renderer) Transform() Transform {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.transform
}

func (r *Renderer) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Message returns the text shown in the placeholder or unavailable state.
func (r *Renderer) Message() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.message
}

// ControlsEnabled reports whether graph controls apply, which is only while a
// graph is active.
func (r *Renderer) ControlsEnabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == StateActive
}

func (r *Renderer) usableLocked() error {
	switch {
	case r.closed:
		return ErrClosed
	case r.state == StateUnavailable:
		return ErrUnavailable
	case !r.attached:
		return ErrNotInitialized
	}
	return nil
}

func (r *Renderer) centerLocked() r2.Vec {
	return r2.Vec{X: r.size.Width / 2, Y: r.size.Height / 2}
}

func (r *Renderer) dragNodeLocked(id string) (*simNode, error) {
	if err := r.usableLocked(); err != nil {
		return nil, err
	}
	if r.state != StateActive || r.sim == nil {
		return nil, ErrInactive
	}
	n, ok := r.sim.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	return n, nil
}

func (r *Renderer) sceneLocked(snap *network.Snapshot, entered, exited []string) Scene {
	scene := Scene{
		Title:   Title(snap),
		Nodes:   make([]NodeView, len(r.sim.nodes)),
		Edges:   make([]network.Edge, len(r.sim.links)),
		Entered: entered,
		Exited:  exited,
	}
	for i, n := range r.sim.nodes {
		scene.Nodes[i] = NodeView{
			ID:       n.ID,
			Kind:     n.Kind,
			Label:    n.DisplayName(),
			IsCenter: n.IsCenter,
			Radius:   n.radius,
			Color:    Color(n.Node),
			Tooltip:  Tooltip(n.Node),
			X:        n.pos.X,
			Y:        n.pos.Y,
		}
	}
	for i, l := range r.sim.links {
		scene.Edges[i] = network.Edge{SourceID: l.source.ID, TargetID: l.target.ID, Kind: network.EdgeHasInterest}
	}
	return scene
}

func (r *Renderer) placeholderLocked(message string) error {
	r.teardownLocked()
	if err := r.surface.Discard(); err != nil {
		return r.failLocked(fmt.Errorf("discard surface: %w", err))
	}
	if err := r.surface.ShowMessage(StatePlaceholder, message); err != nil {
		return r.failLocked(fmt.Errorf("show placeholder: %w", err))
	}
	r.state = StatePlaceholder
	r.message = message
	return nil
}

// teardownLocked halts the simulation and drops its nodes. A zoom animation
// keeps running since the view transform outlives the graph.
func (r *Renderer) teardownLocked() {
	r.sim = nil
	r.running = false
	r.tick = 0
	r.dragging = make(map[string]bool)
	if r.anim == nil {
		r.stopLoopLocked()
	}
}

// failLocked switches to the terminal unavailable state.
func (r *Renderer) failLocked(err error) error {
	r.logger.Error("visualization unavailable", zap.Error(err))
	r.stopLoopLocked()
	r.sim = nil
	r.running = false
	r.anim = nil
	r.state = StateUnavailable
	r.message = MessageUnavailable
	if r.surface != nil {
		if showErr := r.surface.ShowMessage(StateUnavailable, MessageUnavailable); showErr != nil {
			r.logger.Warn("failed to show unavailable message", zap.Error(showErr))
		}
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

func (r *Renderer) setTransformLocked(t Transform) error {
	r.transform = t
	if err := r.surface.SetTransform(t); err != nil {
		return r.failLocked(fmt.Errorf("set transform: %w", err))
	}
	return nil
}

func (r *Renderer) animateLocked(target Transform, d time.Duration) error {
	if d <= 0 {
		r.anim = nil
		return r.setTransformLocked(target)
	}
	r.anim = &zoomAnimation{from: r.transform, to: target, start: r.now(), duration: d}
	r.startLocked()
	return nil
}

func (r *Renderer) tickLocked() bool {
	if r.closed || r.state == StateUnavailable {
		return false
	}

	if r.anim != nil {
		t, done := r.anim.at(r.now())
		if done {
			r.anim = nil
		}
		if err := r.setTransformLocked(t); err != nil {
			return false
		}
	}

	if r.running && r.sim != nil {
		r.sim.step()
		r.tick++
		if err := r.surface.Draw(r.sim.frame(r.tick)); err != nil {
			_ = r.failLocked(fmt.Errorf("draw frame: %w", err))
			return false
		}
		if r.sim.settled() {
			r.running = false
			r.logger.Debug("layout settled", zap.Int("ticks", r.tick))
		}
	}

	return r.anim != nil || r.running
}

// startLocked launches the tick loop unless one is already active.
func (r *Renderer) startLocked() {
	if r.cfg.TickInterval <= 0 || r.closed || r.loopOn {
		return
	}
	if r.anim == nil && !r.running {
		return
	}
	r.loopGen++
	r.loopOn = true
	r.loopDone.Add(1)
	go r.loop(r.loopGen, r.cfg.TickInterval)
}

// stopLoopLocked retires the current loop goroutine; it exits on its next
// wakeup.
func (r *Renderer) stopLoopLocked() {
	if r.loopOn {
		r.loopGen++
		r.loopOn = false
	}
}

func (r *Renderer) loop(gen uint64, interval time.Duration) {
	defer r.loopDone.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		r.mu.Lock()
		if r.loopGen != gen {
			r.mu.Unlock()
			return
		}
		if !r.tickLocked() {
			if r.loopGen == gen {
				r.loopOn = false
			}
			r.mu.Unlock()
			return
		}
		r.mu.Unlock()
	}
}

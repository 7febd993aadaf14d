// Package layoutsession drives one client's network view: it turns selection
// and gesture commands into graph fetches and renderer calls.
package layoutsession

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"profnet/application/queries"
	"profnet/application/queries/bus"
	"profnet/domain/layout"
	pkgerrors "profnet/pkg/errors"
	"profnet/pkg/utils"
)

// MessageSelectPrompt is shown before anything has been selected and after
// the view is cleared.
const MessageSelectPrompt = "请从左侧列表选择一位专业人员查看其关系网络。"

const messageNotFoundFmt = "无法生成网络图：未找到ID %s 的数据"

// NotFoundMessage is the placeholder for a selection whose record is missing.
func NotFoundMessage(id string) string {
	return fmt.Sprintf(messageNotFoundFmt, id)
}

// Command types accepted by Handle.
const (
	CmdSelect    = "select"
	CmdDragStart = "drag_start"
	CmdDrag      = "drag"
	CmdDragEnd   = "drag_end"
	CmdZoomBy    = "zoom_by"
	CmdZoomIn    = "zoom_in"
	CmdZoomOut   = "zoom_out"
	CmdResetZoom = "reset_zoom"
	CmdZoomAt    = "zoom_at"
	CmdPan       = "pan"
	CmdClear     = "clear"
	CmdResize    = "resize"
)

var ErrUnknownCommand = errors.New("unknown command")

// Command is one client instruction. Only the fields its Type needs are read.
type Command struct {
	Type   string  `json:"type"`
	ID     string  `json:"id,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	DX     float64 `json:"dx,omitempty"`
	DY     float64 `json:"dy,omitempty"`
	Factor float64 `json:"factor,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// Config tunes a controller.
type Config struct {
	RosterSize   int
	FetchTimeout time.Duration
}

// Controller owns the renderer of one session. Selections fetch their graph
// in the background; a fetch that a later selection or a clear has
// superseded is dropped when it completes.
type Controller struct {
	queries  *bus.QueryBus
	renderer *layout.Renderer
	cfg      Config
	logger   *zap.Logger

	mu     sync.Mutex
	seq    uint64
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewController creates a controller that fetches graphs through qb and
// draws them with renderer.
func NewController(qb *bus.QueryBus, renderer *layout.Renderer, cfg Config, logger *zap.Logger) *Controller {
	if cfg.RosterSize <= 0 {
		cfg.RosterSize = queries.DefaultRosterSize
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 15 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		queries:  qb,
		renderer: renderer,
		cfg:      cfg,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Open attaches the renderer's surface and shows the selection prompt.
func (c *Controller) Open(size layout.Size) error {
	if err := utils.ValidateStruct(size); err != nil {
		return err
	}
	if err := c.renderer.Initialize(size); err != nil {
		return err
	}
	return c.renderer.ShowPlaceholder(MessageSelectPrompt)
}

// Select starts building the graph around id and returns the selection's
// sequence number.
func (c *Controller) Select(id string) uint64 {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		c.load(seq, id)
	}()
	return seq
}

func (c *Controller) load(seq uint64, id string) {
	ctx, cancel := context.WithTimeout(c.ctx, c.cfg.FetchTimeout)
	defer cancel()

	result, err := bus.Ask[*queries.NetworkGraphResult](ctx, c.queries, queries.GetNetworkGraphQuery{
		CenterID:   id,
		RosterSize: c.cfg.RosterSize,
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq || c.ctx.Err() != nil {
		c.logger.Debug("dropping stale selection", zap.String("id", id), zap.Uint64("seq", seq))
		return
	}

	switch {
	case err == nil:
		err = c.renderer.Bind(result.Graph)
	case pkgerrors.IsNotFound(err):
		err = c.renderer.ShowPlaceholder(NotFoundMessage(id))
	default:
		c.logger.Warn("failed to load network graph", zap.String("id", id), zap.Error(err))
		err = c.renderer.ShowPlaceholder(layout.MessageUnavailable)
	}
	if err != nil {
		c.logger.Warn("failed to draw selection", zap.String("id", id), zap.Error(err))
	}
}

// Clear abandons any pending selection and returns to the prompt.
func (c *Controller) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++

	if err := c.renderer.Clear(); err != nil {
		return err
	}
	return c.renderer.ShowPlaceholder(MessageSelectPrompt)
}

// Handle applies one client command.
func (c *Controller) Handle(cmd Command) error {
	r := c.renderer
	switch cmd.Type {
	case CmdSelect:
		if cmd.ID == "" {
			return pkgerrors.NewValidationError("select requires an id")
		}
		c.Select(cmd.ID)
		return nil
	case CmdClear:
		return c.Clear()
	case CmdResize:
		size := layout.Size{Width: cmd.Width, Height: cmd.Height}
		if err := utils.ValidateStruct(size); err != nil {
			return err
		}
		return r.Initialize(size)
	case CmdDragStart:
		return r.DragStart(cmd.ID)
	case CmdDrag:
		return r.Drag(cmd.ID, cmd.X, cmd.Y)
	case CmdDragEnd:
		return r.DragEnd(cmd.ID)
	case CmdZoomBy:
		return r.ZoomBy(cmd.Factor)
	case CmdZoomIn:
		return r.ZoomIn()
	case CmdZoomOut:
		return r.ZoomOut()
	case CmdResetZoom:
		return r.ResetZoom()
	case CmdZoomAt:
		return r.ZoomAt(cmd.Factor, cmd.X, cmd.Y)
	case CmdPan:
		return r.Pan(cmd.DX, cmd.DY)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Type)
	}
}

// Wait blocks until all started selections have finished.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close cancels pending selections and shuts the renderer down.
func (c *Controller) Close() {
	c.cancel()
	c.wg.Wait()
	c.renderer.Close()
}

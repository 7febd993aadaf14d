// Package websocket serves interactive layout sessions. The server runs the
// force simulation and streams scenes and per-tick frames; the browser only
// paints them and sends back gestures.
package websocket

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"profnet/application/layoutsession"
	querybus "profnet/application/queries/bus"
	"profnet/domain/layout"
	pkgerrors "profnet/pkg/errors"
	"profnet/pkg/observability"
)

const writeTimeout = 5 * time.Second

// DefaultSize is used when the client does not pass width and height.
var DefaultSize = layout.Size{Width: 960, Height: 600}

// Config tunes the handler.
type Config struct {
	Layout         layout.Config
	Session        layoutsession.Config
	OriginPatterns []string
	MaxSessions    int
}

// Handler upgrades /ws/layout requests and runs one session per connection.
type Handler struct {
	queryBus *querybus.QueryBus
	cfg      Config
	errors   *pkgerrors.ErrorHandler
	metrics  *observability.Collector
	logger   *zap.Logger
	active   atomic.Int64
}

// NewHandler creates a new layout socket handler. metrics may be nil.
func NewHandler(queryBus *querybus.QueryBus, cfg Config, errs *pkgerrors.ErrorHandler, metrics *observability.Collector, logger *zap.Logger) *Handler {
	if len(cfg.OriginPatterns) == 0 {
		cfg.OriginPatterns = []string{"*"}
	}
	return &Handler{
		queryBus: queryBus,
		cfg:      cfg,
		errors:   errs,
		metrics:  metrics,
		logger:   logger,
	}
}

// ActiveSessions returns the number of open sessions.
func (h *Handler) ActiveSessions() int {
	return int(h.active.Load())
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	size, err := sizeFromQuery(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	if n := h.active.Add(1); h.cfg.MaxSessions > 0 && n > int64(h.cfg.MaxSessions) {
		h.active.Add(-1)
		h.errors.Handle(w, r, pkgerrors.NewUnavailableError("layout sessions"))
		return
	}
	defer h.active.Add(-1)

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.cfg.OriginPatterns,
	})
	if err != nil {
		h.logger.Warn("ws: accept failed", zap.Error(err))
		return
	}
	defer conn.CloseNow()

	if h.metrics != nil {
		h.metrics.LayoutSessions.Inc()
		defer h.metrics.LayoutSessions.Dec()
	}

	sessionID := uuid.NewString()
	logger := h.logger.With(zap.String("session", sessionID))
	logger.Info("layout session opened", zap.Float64("width", size.Width), zap.Float64("height", size.Height))

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	surf := newSurface()
	renderer := layout.NewRenderer(surf, h.cfg.Layout, layout.WithLogger(logger))
	controller := layoutsession.NewController(h.queryBus, renderer, h.cfg.Session, logger)

	writeDone := make(chan error, 1)
	go func() { writeDone <- h.writeLoop(ctx, conn, surf) }()

	defer func() {
		controller.Close()
		surf.close()
		cancel()
		<-writeDone
		logger.Info("layout session closed")
	}()

	if err := controller.Open(size); err != nil {
		surf.sendError(err)
	}

	for {
		var cmd layoutsession.Command
		if err := wsjson.Read(ctx, conn, &cmd); err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && !errors.Is(err, context.Canceled) {
				logger.Debug("ws: read ended", zap.Error(err))
			}
			return
		}
		if err := controller.Handle(cmd); err != nil {
			logger.Debug("ws: command rejected", zap.String("type", cmd.Type), zap.Error(err))
			surf.sendError(err)
		}
	}
}

// writeLoop sends queued messages until ctx ends or a write fails. A failed
// write or an overflowed queue closes the connection so the read loop ends
// too.
func (h *Handler) writeLoop(ctx context.Context, conn *websocket.Conn, surf *surface) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-surf.overflow:
			h.logger.Warn("ws: closing session with a full queue", zap.Int("pending", maxPending))
			return conn.Close(websocket.StatusPolicyViolation, errBacklog.Error())
		case <-surf.notify:
		}

		for _, msg := range surf.drain() {
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(wctx, conn, msg)
			cancel()
			if err != nil {
				conn.CloseNow()
				return err
			}
			if msg.Type == MsgFrame && h.metrics != nil {
				h.metrics.LayoutFrames.Inc()
			}
		}
	}
}

func sizeFromQuery(r *http.Request) (layout.Size, error) {
	size := DefaultSize
	q := r.URL.Query()
	for name, dst := range map[string]*float64{"width": &size.Width, "height": &size.Height} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			return layout.Size{}, pkgerrors.NewValidationError(name + " must be a positive number")
		}
		*dst = v
	}
	return size, nil
}

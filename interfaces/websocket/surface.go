package websocket

import (
	"context"
	"errors"
	"sync"

	"profnet/domain/layout"
)

// Server message types.
const (
	MsgScene     = "scene"
	MsgFrame     = "frame"
	MsgState     = "state"
	MsgTransform = "transform"
	MsgClear     = "clear"
	MsgError     = "error"
)

// maxPending bounds the queued control messages of one client.
const maxPending = 512

var errBacklog = errors.New("client is not keeping up")

// ServerMessage is the envelope of everything sent to the browser.
type ServerMessage struct {
	Type      string            `json:"type"`
	Scene     *layout.Scene     `json:"scene,omitempty"`
	Frame     *layout.Frame     `json:"frame,omitempty"`
	State     layout.State      `json:"state,omitempty"`
	Message   string            `json:"message,omitempty"`
	Transform *layout.Transform `json:"transform,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// surface is a layout.Surface that queues messages for a connection writer.
// Calls never block: control messages queue in order, while frames only
// keep the most recent one.
//
// A client that lets maxPending control messages pile up is cut off: the
// surface closes overflow and the writer ends the connection.
type surface struct {
	mu       sync.Mutex
	pending  []ServerMessage
	frame    *layout.Frame
	closed   bool
	notify   chan struct{}
	overflow chan struct{}
}

func newSurface() *surface {
	return &surface{
		notify:   make(chan struct{}, 1),
		overflow: make(chan struct{}),
	}
}

func (s *surface) Attach(layout.Size) error { return nil }

func (s *surface) Render(scene layout.Scene) error {
	return s.enqueue(ServerMessage{Type: MsgScene, Scene: &scene}, true)
}

func (s *surface) Draw(frame layout.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return context.Canceled
	}
	s.frame = &frame
	s.wake()
	return nil
}

// SetTransform replaces a transform still waiting at the tail of the queue.
func (s *surface) SetTransform(t layout.Transform) error {
	s.mu.Lock()
	if n := len(s.pending); n > 0 && s.pending[n-1].Type == MsgTransform {
		s.pending[n-1].Transform = &t
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()
	return s.enqueue(ServerMessage{Type: MsgTransform, Transform: &t}, false)
}

func (s *surface) ShowMessage(state layout.State, message string) error {
	return s.enqueue(ServerMessage{Type: MsgState, State: state, Message: message}, true)
}

func (s *surface) Discard() error {
	return s.enqueue(ServerMessage{Type: MsgClear}, true)
}

// sendError reports a rejected command to the client.
func (s *surface) sendError(err error) {
	_ = s.enqueue(ServerMessage{Type: MsgError, Error: err.Error()}, false)
}

// enqueue appends msg. dropFrame discards a pending frame that belongs to
// what msg replaces.
func (s *surface) enqueue(msg ServerMessage, dropFrame bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return context.Canceled
	}
	if len(s.pending) >= maxPending {
		s.closed = true
		s.pending = nil
		s.frame = nil
		close(s.overflow)
		return errBacklog
	}
	s.pending = append(s.pending, msg)
	if dropFrame {
		s.frame = nil
	}
	s.wake()
	return nil
}

func (s *surface) wake() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// drain takes everything queued, control messages first.
func (s *surface) drain() []ServerMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.pending
	s.pending = nil
	if s.frame != nil {
		out = append(out, ServerMessage{Type: MsgFrame, Frame: s.frame})
		s.frame = nil
	}
	return out
}

func (s *surface) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.pending = nil
	s.frame = nil
}

package layoutsession

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"profnet/application/queries"
	"profnet/application/queries/bus"
	"profnet/domain/core/entities"
	"profnet/domain/layout"
	"profnet/domain/network"
	pkgerrors "profnet/pkg/errors"
)

type shown struct {
	state layout.State
	text  string
}

type fakeSurface struct {
	mu       sync.Mutex
	scenes   []layout.Scene
	messages []shown
}

func (s *fakeSurface) Attach(layout.Size) error            { return nil }
func (s *fakeSurface) Draw(layout.Frame) error             { return nil }
func (s *fakeSurface) SetTransform(layout.Transform) error { return nil }
func (s *fakeSurface) Discard() error                      { return nil }

func (s *fakeSurface) Render(scene layout.Scene) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scenes = append(s.scenes, scene)
	return nil
}

func (s *fakeSurface) ShowMessage(state layout.State, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, shown{state, text})
	return nil
}

func (s *fakeSurface) lastMessage() shown {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == 0 {
		return shown{}
	}
	return s.messages[len(s.messages)-1]
}

func (s *fakeSurface) sceneTitles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	titles := make([]string, 0, len(s.scenes))
	for _, sc := range s.scenes {
		titles = append(titles, sc.Title)
	}
	return titles
}

func person(id, name string, interests ...string) *entities.Professional {
	return &entities.Professional{
		ID:           id,
		PersonalInfo: entities.PersonalInfo{Name: name},
		AcademicInfo: entities.AcademicInfo{ResearchInterests: interests},
	}
}

var roster = []*entities.Professional{
	person("p1", "张伟", "AI", "Robotics"),
	person("p2", "李娜", "AI"),
	person("p3", "王芳", "Biology"),
	person("p4", "赵强"),
}

// graphBus answers network queries from roster. IDs listed in gates block
// until their channel is closed; "broken" fails.
func graphBus(t *testing.T, gates map[string]chan struct{}) *bus.QueryBus {
	t.Helper()
	qb := bus.NewQueryBus()
	err := qb.Register(queries.GetNetworkGraphQuery{}, bus.Typed(func(ctx context.Context, q queries.GetNetworkGraphQuery) (*queries.NetworkGraphResult, error) {
		if gate, ok := gates[q.CenterID]; ok {
			<-gate
		}
		if q.CenterID == "broken" {
			return nil, errors.New("store offline")
		}
		for _, p := range roster {
			if p.ID == q.CenterID {
				return &queries.NetworkGraphResult{Graph: network.Build(p, roster)}, nil
			}
		}
		return nil, pkgerrors.NewProfessionalNotFoundError(q.CenterID)
	}))
	require.NoError(t, err)
	return qb
}

func newTestController(t *testing.T, gates map[string]chan struct{}) (*Controller, *fakeSurface, *layout.Renderer) {
	t.Helper()
	cfg := layout.DefaultConfig()
	cfg.TickInterval = 0
	cfg.Seed = 1

	surface := &fakeSurface{}
	renderer := layout.NewRenderer(surface, cfg)
	c := NewController(graphBus(t, gates), renderer, Config{}, zap.NewNop())
	t.Cleanup(c.Close)

	require.NoError(t, c.Open(layout.Size{Width: 800, Height: 600}))
	return c, surface, renderer
}

func TestController_OpenShowsPrompt(t *testing.T) {
	_, surface, renderer := newTestController(t, nil)

	assert.Equal(t, layout.StatePlaceholder, renderer.State())
	assert.Equal(t, shown{layout.StatePlaceholder, MessageSelectPrompt}, surface.lastMessage())
}

func TestController_OpenRejectsBadSize(t *testing.T) {
	renderer := layout.NewRenderer(&fakeSurface{}, layout.DefaultConfig())
	c := NewController(bus.NewQueryBus(), renderer, Config{}, zap.NewNop())
	defer c.Close()

	err := c.Open(layout.Size{Width: 0, Height: 600})
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestController_SelectBindsGraph(t *testing.T) {
	c, surface, renderer := newTestController(t, nil)

	require.NoError(t, c.Handle(Command{Type: CmdSelect, ID: "p1"}))
	c.Wait()

	assert.Equal(t, layout.StateActive, renderer.State())
	assert.Equal(t, []string{"(张伟 的关系网络)"}, surface.sceneTitles())
}

func TestController_SelectIsolatedShowsPlaceholder(t *testing.T) {
	c, surface, renderer := newTestController(t, nil)

	c.Select("p4")
	c.Wait()

	assert.Equal(t, layout.StatePlaceholder, renderer.State())
	assert.Equal(t, layout.IsolatedMessage("赵强"), surface.lastMessage().text)
}

func TestController_SelectFailures(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want string
	}{
		{name: "missing record", id: "ghost", want: NotFoundMessage("ghost")},
		{name: "fetch error", id: "broken", want: layout.MessageUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, surface, renderer := newTestController(t, nil)

			c.Select(tt.id)
			c.Wait()

			assert.Equal(t, layout.StatePlaceholder, renderer.State())
			assert.Equal(t, tt.want, surface.lastMessage().text)
		})
	}
	assert.Equal(t, "无法生成网络图：未找到ID ghost 的数据", NotFoundMessage("ghost"))
}

func TestController_DropsStaleSelection(t *testing.T) {
	slow := make(chan struct{})
	c, surface, _ := newTestController(t, map[string]chan struct{}{"p1": slow})

	first := c.Select("p1")
	second := c.Select("p2")
	assert.Greater(t, second, first)

	require.Eventually(t, func() bool { return len(surface.sceneTitles()) == 1 }, time.Second, time.Millisecond)
	close(slow)
	c.Wait()

	assert.Equal(t, []string{"(李娜 的关系网络)"}, surface.sceneTitles())
}

func TestController_ClearSupersedesPendingSelection(t *testing.T) {
	slow := make(chan struct{})
	c, surface, renderer := newTestController(t, map[string]chan struct{}{"p1": slow})

	c.Select("p1")
	require.NoError(t, c.Handle(Command{Type: CmdClear}))
	close(slow)
	c.Wait()

	assert.Empty(t, surface.sceneTitles())
	assert.Equal(t, layout.StatePlaceholder, renderer.State())
	assert.Equal(t, MessageSelectPrompt, renderer.Message())
}

func TestController_Gestures(t *testing.T) {
	c, _, renderer := newTestController(t, nil)
	c.Select("p1")
	c.Wait()

	require.NoError(t, c.Handle(Command{Type: CmdPan, DX: 15, DY: -5}))
	assert.Equal(t, layout.Transform{X: 15, Y: -5, K: 1}, renderer.Transform())

	require.NoError(t, c.Handle(Command{Type: CmdDragStart, ID: "p2"}))
	require.NoError(t, c.Handle(Command{Type: CmdDrag, ID: "p2", X: 10, Y: 20}))
	require.NoError(t, c.Handle(Command{Type: CmdDragEnd, ID: "p2"}))

	err := c.Handle(Command{Type: CmdDragStart, ID: "nobody"})
	assert.ErrorIs(t, err, layout.ErrUnknownNode)

	assert.ErrorIs(t, c.Handle(Command{Type: CmdZoomBy, Factor: -1}), layout.ErrInvalidFactor)
	assert.NoError(t, c.Handle(Command{Type: CmdZoomIn}))
	assert.NoError(t, c.Handle(Command{Type: CmdResize, Width: 1024, Height: 768}))
}

func TestController_RejectsBadCommands(t *testing.T) {
	c, _, _ := newTestController(t, nil)

	assert.ErrorIs(t, c.Handle(Command{Type: "explode"}), ErrUnknownCommand)
	assert.True(t, pkgerrors.IsValidation(c.Handle(Command{Type: CmdSelect})))
	assert.True(t, pkgerrors.IsValidation(c.Handle(Command{Type: CmdResize, Width: -1, Height: 10})))
}

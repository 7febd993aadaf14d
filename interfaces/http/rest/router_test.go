package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"profnet/application/ports"
	"profnet/application/queries/bus"
	"profnet/application/queries/handlers"
	"profnet/application/services"
	"profnet/domain/core/entities"
	"profnet/infrastructure/messaging/eventbridge"
	"profnet/infrastructure/persistence/memory"
	pkgerrors "profnet/pkg/errors"
	"profnet/pkg/observability"
	"profnet/pkg/textfmt"
)

type stubProvider struct {
	mu    sync.Mutex
	text  string
	err   error
	calls int
}

func (p *stubProvider) Complete(ctx context.Context, prompt string, opts ports.CompletionOptions) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.text, p.err
}

func (p *stubProvider) IsAvailable() bool { return true }

type mapCache struct {
	mu    sync.Mutex
	items map[string]interface{}
}

func (c *mapCache) Get(ctx context.Context, key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok
}

func (c *mapCache) Set(ctx context.Context, key string, value interface{}, ttl int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return nil
}

type denyAll struct{}

func (denyAll) Allow(context.Context, string) (bool, error) { return false, nil }
func (denyAll) Reset(context.Context, string) error         { return nil }

func testRoster() []*entities.Professional {
	p := func(id, name, aff string, interests ...string) *entities.Professional {
		return &entities.Professional{
			ID:               id,
			PersonalInfo:     entities.PersonalInfo{Name: name},
			ProfessionalInfo: entities.ProfessionalInfo{Affiliation: aff},
			AcademicInfo:     entities.AcademicInfo{ResearchInterests: interests},
		}
	}
	return []*entities.Professional{
		p("p1", "张伟", "清华大学", "AI", "Robotics"),
		p("p2", "李娜", "北京大学", "AI"),
		p("p3", "王芳", "复旦大学", "Biology"),
	}
}

type fixture struct {
	handler  http.Handler
	provider *stubProvider
	metrics  *observability.Collector
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	logger := zap.NewNop()
	repo, err := memory.NewProfessionalRepository(testRoster()...)
	require.NoError(t, err)

	provider := &stubProvider{text: "**优秀**的研究者"}
	publisher := eventbridge.NewLogPublisher(logger)
	insights := services.NewInsightService(provider, repo, logger)
	metrics := observability.NewCollector("test")

	qb := bus.NewQueryBus()
	require.NoError(t, handlers.Register(qb, handlers.Set{
		Professionals: handlers.NewProfessionalHandlers(repo, publisher, logger),
		Network:       handlers.NewGetNetworkGraphHandler(repo, publisher, logger),
		Insights:      handlers.NewInsightHandlers(repo, insights, textfmt.New()),
	}, &mapCache{items: map[string]interface{}{}}, 60, metrics))

	opts.Metrics = metrics
	opts.MetricsHandler = metrics.Handler()
	router := NewRouter(qb, pkgerrors.NewErrorHandler(logger, false), opts, logger)
	return &fixture{handler: router.Setup(), provider: provider, metrics: metrics}
}

func (f *fixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestRouter_Health(t *testing.T) {
	f := newFixture(t, Options{})

	rec := f.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestRouter_Readiness(t *testing.T) {
	f := newFixture(t, Options{Ready: func(context.Context) error { return errors.New("table missing") }})

	rec := f.do(t, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouter_ListProfessionals(t *testing.T) {
	f := newFixture(t, Options{})

	rec := f.do(t, http.MethodGet, "/api/professionals?limit=2&skip=1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	list := decode[[]map[string]interface{}](t, rec)
	require.Len(t, list, 2)
	assert.Equal(t, "p2", list[0]["_id"])
	assert.Equal(t, "p3", list[1]["_id"])

	rec = f.do(t, http.MethodGet, "/api/professionals?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_SearchProfessionals(t *testing.T) {
	f := newFixture(t, Options{})

	rec := f.do(t, http.MethodGet, "/api/professionals/search?q=ai", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]interface{}](t, rec), 2)

	rec = f.do(t, http.MethodGet, "/api/professionals/search?q=nothing-matches", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestRouter_GetProfessional(t *testing.T) {
	f := newFixture(t, Options{})

	rec := f.do(t, http.MethodGet, "/api/professionals/p1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "张伟", body["personal_info"].(map[string]interface{})["name"])

	rec = f.do(t, http.MethodGet, "/api/professionals/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "专业人员不存在", decode[map[string]interface{}](t, rec)["error"])
}

func TestRouter_Graph(t *testing.T) {
	f := newFixture(t, Options{})

	rec := f.do(t, http.MethodGet, "/api/graph/p1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Title    string `json:"title"`
		Isolated bool   `json:"isolated"`
		Graph    struct {
			Nodes []map[string]interface{} `json:"nodes"`
			Edges []map[string]interface{} `json:"edges"`
		} `json:"graph"`
		Styles []map[string]interface{} `json:"styles"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "(张伟 的关系网络)", body.Title)
	assert.False(t, body.Isolated)
	assert.Len(t, body.Graph.Nodes, 4)
	assert.Len(t, body.Graph.Edges, 3)
	assert.Equal(t, "#e74c3c", body.Styles[0]["color"])
}

func TestRouter_Analyze(t *testing.T) {
	f := newFixture(t, Options{})

	rec := f.do(t, http.MethodGet, "/api/ai/analyze/p1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "**优秀**的研究者", body["analysis"])
	assert.Contains(t, body["html"], "<strong>优秀</strong>")
	assert.Equal(t, false, body["degraded"])

	f.do(t, http.MethodGet, "/api/ai/analyze/p1", "")
	assert.Equal(t, 1, f.provider.calls, "second request served from cache")

	rec = f.do(t, http.MethodGet, "/api/ai/analyze/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_RecommendDegrades(t *testing.T) {
	f := newFixture(t, Options{})
	f.provider.err = errors.New("quota exceeded")

	rec := f.do(t, http.MethodGet, "/api/ai/recommend/p1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]interface{}](t, rec)
	assert.Equal(t, true, body["degraded"])
	assert.Contains(t, body["recommendations"], "生成内容时出错")

	f.do(t, http.MethodGet, "/api/ai/recommend/p1", "")
	assert.Equal(t, 2, f.provider.calls, "degraded results are not cached")
}

func TestRouter_Question(t *testing.T) {
	f := newFixture(t, Options{})

	rec := f.do(t, http.MethodPost, "/api/ai/question", `{"question":"张伟的研究方向是什么？"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "**优秀**的研究者", decode[map[string]interface{}](t, rec)["answer"])

	rec = f.do(t, http.MethodPost, "/api/ai/question", `{"question":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "问题不能为空", decode[map[string]interface{}](t, rec)["error"])

	rec = f.do(t, http.MethodPost, "/api/ai/question", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_RateLimit(t *testing.T) {
	f := newFixture(t, Options{Limiter: denyAll{}, RateLimitPerMin: 10})

	rec := f.do(t, http.MethodGet, "/api/professionals", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = f.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code, "health is not limited")
}

func TestRouter_Metrics(t *testing.T) {
	f := newFixture(t, Options{})
	f.do(t, http.MethodGet, "/api/professionals/p1", "")

	rec := f.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/api/professionals/{id}"`)
	assert.Contains(t, rec.Body.String(), `query="GetProfessionalQuery"`)
}

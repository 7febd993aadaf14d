package di

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"profnet/domain/layout"
	"profnet/infrastructure/config"
	"profnet/pkg/observability"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	return &config.Config{
		ServerAddress:     ":0",
		Environment:       "test",
		AWSRegion:         "us-west-2",
		StorageBackend:    config.StorageMemory,
		SeedFile:          filepath.Join("..", "..", "data", "professionals.json"),
		OpenAIModel:       "gpt-4o-mini",
		AITimeout:         time.Second,
		AllowedOrigins:    []string{"*"},
		RateLimitPerMin:   100,
		InsightCacheTTL:   time.Minute,
		MaxWebSocketConns: 4,
		LogLevel:          "error",
		EnableMetrics:     true,
		Layout:            layout.DefaultConfig(),
	}
}

func TestInitializeContainer_Memory(t *testing.T) {
	cfg := testConfig(t)

	c, err := InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)
	defer c.Close()

	require.NotNil(t, c.Router)
	require.NotNil(t, c.RateLimiter)
	require.NotNil(t, c.Metrics)
	assert.Nil(t, c.CloudWatch)

	all, err := c.Repository.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 5)

	rec := httptest.NewRecorder()
	c.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/graph/6650f1a2c3d4e5f601000001", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "graph")
	assert.Equal(t, false, body["isolated"])

	rec = httptest.NewRecorder()
	c.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "profnet_queries_total")
}

func TestInitializeContainer_OptionalPartsOff(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimitPerMin = 0
	cfg.EnableMetrics = false
	cfg.IsLambda = true

	c, err := InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)
	defer c.Close()

	assert.Nil(t, c.RateLimiter)
	assert.Nil(t, c.Metrics)
	assert.Nil(t, c.CloudWatch)

	rec := httptest.NewRecorder()
	c.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws/layout", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	c.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestInitializeContainer_LambdaUsesCloudWatch(t *testing.T) {
	cfg := testConfig(t)
	cfg.IsLambda = true

	c, err := InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)
	defer c.Close()
	// Keep Close from flushing to AWS.
	cw := c.CloudWatch
	defer func() { c.CloudWatch = nil }()

	require.NotNil(t, cw)
	assert.Nil(t, c.Metrics)

	rec := httptest.NewRecorder()
	c.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	before := cw.Pending()
	rec = httptest.NewRecorder()
	c.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/graph/6650f1a2c3d4e5f601000001", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	// HTTP and query datums for the graph request.
	assert.Greater(t, cw.Pending(), before+2)
}

func TestProvideRecorder(t *testing.T) {
	collector := observability.NewCollector("test")
	cw := observability.NewCloudWatchMetrics("Profnet/test", nil, zap.NewNop())

	assert.Nil(t, ProvideRecorder(nil, nil))
	assert.Same(t, collector, ProvideRecorder(collector, nil))
	assert.Same(t, cw, ProvideRecorder(nil, cw))
}

func TestProvideCloudWatchMetrics_OnlyOnLambda(t *testing.T) {
	cfg := &config.Config{Environment: "test", EnableMetrics: true}
	assert.Nil(t, ProvideCloudWatchMetrics(cfg, nil, zap.NewNop()))

	cfg.IsLambda = true
	assert.NotNil(t, ProvideCloudWatchMetrics(cfg, nil, zap.NewNop()))
	assert.Nil(t, ProvideMetrics(cfg))

	cfg.EnableMetrics = false
	assert.Nil(t, ProvideCloudWatchMetrics(cfg, nil, zap.NewNop()))
}

func TestInitializeContainer_BadSeedFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.SeedFile = filepath.Join(t.TempDir(), "missing.json")

	_, err := InitializeContainer(context.Background(), cfg)
	assert.Error(t, err)
}

func TestProvideLogger_RejectsBadLevel(t *testing.T) {
	_, err := ProvideLogger(&config.Config{LogLevel: "loud"})
	assert.Error(t, err)
}

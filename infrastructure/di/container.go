package di

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"profnet/application/ports"
	querybus "profnet/application/queries/bus"
	"profnet/infrastructure/config"
	"profnet/interfaces/websocket"
	"profnet/pkg/observability"
	"profnet/pkg/ratelimit"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	Repository   ports.ProfessionalRepository
	Publisher    ports.EventPublisher
	QueryBus     *querybus.QueryBus
	Cache        *InMemoryCache
	Metrics      *observability.Collector
	CloudWatch   *observability.CloudWatchMetrics
	RateLimiter  *ratelimit.TokenBucketLimiter
	LayoutSocket *websocket.Handler
	Router       *chi.Mux
}

// FlushMetrics ships buffered CloudWatch metrics. It is a no-op when the
// CloudWatch sink is not in use.
func (c *Container) FlushMetrics(ctx context.Context) {
	if c.CloudWatch == nil {
		return
	}
	// Flush logs its own failures.
	_ = c.CloudWatch.Flush(ctx)
}

// Close stops background goroutines and flushes metrics and the logger.
func (c *Container) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c.FlushMetrics(ctx)

	if c.Cache != nil {
		c.Cache.Stop()
	}
	if c.RateLimiter != nil {
		c.RateLimiter.Stop()
	}
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
}

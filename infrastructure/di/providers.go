package di

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"profnet/application/layoutsession"
	"profnet/application/ports"
	"profnet/application/queries"
	querybus "profnet/application/queries/bus"
	queries_handlers "profnet/application/queries/handlers"
	"profnet/application/services"
	"profnet/domain/core/entities"
	"profnet/infrastructure/ai"
	"profnet/infrastructure/config"
	"profnet/infrastructure/messaging/eventbridge"
	"profnet/infrastructure/persistence/dynamodb"
	"profnet/infrastructure/persistence/memory"
	"profnet/interfaces/http/rest"
	"profnet/interfaces/websocket"
	pkgerrors "profnet/pkg/errors"
	"profnet/pkg/observability"
	"profnet/pkg/ratelimit"
	"profnet/pkg/textfmt"
)

const (
	serviceName     = "profnet"
	cacheMaxEntries = 1024
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	zapCfg := zap.NewDevelopmentConfig()
	if cfg.IsProduction() || cfg.IsLambda {
		zapCfg = zap.NewProductionConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	zapCfg.Level = level

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("service", serviceName)), nil
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideProfessionalRepository picks the directory store for the configured
// backend. The memory store is seeded from SEED_FILE when one is set.
func ProvideProfessionalRepository(cfg *config.Config, client *awsdynamodb.Client, logger *zap.Logger) (ports.ProfessionalRepository, error) {
	if cfg.StorageBackend == config.StorageDynamoDB {
		logger.Info("Using DynamoDB directory store", zap.String("table", cfg.DynamoDBTable))
		return dynamodb.NewProfessionalRepository(client, cfg.DynamoDBTable, logger), nil
	}

	var seed []*entities.Professional
	if cfg.SeedFile != "" {
		loaded, err := memory.LoadFile(cfg.SeedFile)
		if err != nil {
			return nil, err
		}
		seed = loaded
	}
	logger.Info("Using in-memory directory store", zap.Int("records", len(seed)))
	return memory.NewProfessionalRepository(seed...)
}

// ProvideEventPublisher publishes to EventBridge when events are enabled and
// to the log otherwise.
func ProvideEventPublisher(cfg *config.Config, client *awseventbridge.Client, logger *zap.Logger) ports.EventPublisher {
	if !cfg.EnableEvents {
		return eventbridge.NewLogPublisher(logger)
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, cfg.EventSource, logger)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideMetrics creates the Prometheus collector served on /metrics. It
// returns nil when metrics are disabled or on Lambda, where a scrape would
// only ever see one short-lived instance.
func ProvideMetrics(cfg *config.Config) *observability.Collector {
	if !cfg.EnableMetrics || cfg.IsLambda {
		return nil
	}
	return observability.NewCollector(serviceName)
}

// ProvideCloudWatchMetrics creates the CloudWatch sink used on Lambda, or
// nil everywhere else.
func ProvideCloudWatchMetrics(cfg *config.Config, client *awscloudwatch.Client, logger *zap.Logger) *observability.CloudWatchMetrics {
	if !cfg.EnableMetrics || !cfg.IsLambda {
		return nil
	}
	return observability.NewCloudWatchMetrics(fmt.Sprintf("Profnet/%s", cfg.Environment), client, logger)
}

// ProvideRecorder selects whichever metrics sink is active. The result is a
// nil interface when neither is.
func ProvideRecorder(collector *observability.Collector, cloudWatch *observability.CloudWatchMetrics) observability.Recorder {
	switch {
	case cloudWatch != nil:
		return cloudWatch
	case collector != nil:
		return collector
	default:
		return nil
	}
}

// ProvideTracer creates the X-Ray tracer.
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	return observability.NewTracer(serviceName, cfg.EnableTracing)
}

// ProvideLLMProvider creates the OpenAI-compatible completion provider.
func ProvideLLMProvider(cfg *config.Config, tracer *observability.Tracer, metrics observability.Recorder, logger *zap.Logger) ports.LLMProvider {
	aiCfg := ai.DefaultConfig()
	aiCfg.APIKey = cfg.OpenAIKey
	aiCfg.BaseURL = cfg.OpenAIBaseURL
	aiCfg.Model = cfg.OpenAIModel
	aiCfg.Timeout = cfg.AITimeout

	if !cfg.AIEnabled() {
		logger.Warn("OPENAI_API_KEY not set, AI features will answer with fallback text")
	}
	return ai.NewOpenAIProvider(aiCfg, tracer, metrics, logger)
}

// ProvideInsightService creates the AI insight service.
func ProvideInsightService(provider ports.LLMProvider, repo ports.ProfessionalRepository, logger *zap.Logger) *services.InsightService {
	return services.NewInsightService(provider, repo, logger)
}

// ProvideFormatter creates the AI text formatter.
func ProvideFormatter() *textfmt.Formatter {
	return textfmt.New()
}

// ProvideInMemoryCache creates the query result cache.
func ProvideInMemoryCache() *InMemoryCache {
	return NewInMemoryCache(cacheMaxEntries)
}

// ProvideQueryBus creates the query bus with every handler registered.
func ProvideQueryBus(
	cfg *config.Config,
	repo ports.ProfessionalRepository,
	publisher ports.EventPublisher,
	insights *services.InsightService,
	formatter *textfmt.Formatter,
	cache *InMemoryCache,
	metrics observability.Recorder,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	qb := querybus.NewQueryBus()

	set := queries_handlers.Set{
		Professionals: queries_handlers.NewProfessionalHandlers(repo, publisher, logger),
		Network:       queries_handlers.NewGetNetworkGraphHandler(repo, publisher, logger),
		Insights:      queries_handlers.NewInsightHandlers(repo, insights, formatter),
	}

	if err := queries_handlers.Register(qb, set, cache, int(cfg.InsightCacheTTL.Seconds()), metrics); err != nil {
		return nil, fmt.Errorf("failed to register query handlers: %w", err)
	}
	return qb, nil
}

// ProvideErrorHandler creates the HTTP error handler. Stack traces are only
// exposed outside production.
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *pkgerrors.ErrorHandler {
	return pkgerrors.NewErrorHandler(logger, !cfg.IsProduction())
}

// ProvideRateLimiter creates the per-client API limiter, or nil when rate
// limiting is off.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.TokenBucketLimiter {
	if cfg.RateLimitPerMin <= 0 {
		return nil
	}
	return ratelimit.NewPerMinute(cfg.RateLimitPerMin)
}

// ProvideLayoutSocket creates the /ws/layout handler.
func ProvideLayoutSocket(
	cfg *config.Config,
	qb *querybus.QueryBus,
	errs *pkgerrors.ErrorHandler,
	metrics *observability.Collector,
	logger *zap.Logger,
) *websocket.Handler {
	return websocket.NewHandler(qb, websocket.Config{
		Layout: cfg.Layout,
		Session: layoutsession.Config{
			RosterSize:   queries.DefaultRosterSize,
			FetchTimeout: cfg.AITimeout,
		},
		OriginPatterns: cfg.AllowedOrigins,
		MaxSessions:    cfg.MaxWebSocketConns,
	}, errs, metrics, logger)
}

// ProvideRouter builds the chi router serving the REST API and the layout
// socket. Lambda has no long-lived connections, so the socket is left out
// there.
func ProvideRouter(
	cfg *config.Config,
	qb *querybus.QueryBus,
	errs *pkgerrors.ErrorHandler,
	repo ports.ProfessionalRepository,
	limiter *ratelimit.TokenBucketLimiter,
	socket *websocket.Handler,
	collector *observability.Collector,
	metrics observability.Recorder,
	logger *zap.Logger,
) *chi.Mux {
	opts := rest.Options{
		AllowedOrigins:  cfg.AllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		Metrics:         metrics,
		Ready: func(ctx context.Context) error {
			_, err := repo.List(ctx, 1, 0)
			return err
		},
	}
	if limiter != nil {
		opts.Limiter = limiter
	}
	if collector != nil {
		opts.MetricsHandler = collector.Handler()
	}
	if !cfg.IsLambda {
		opts.LayoutSocket = socket
	}
	return rest.NewRouter(qb, errs, opts, logger).Setup()
}

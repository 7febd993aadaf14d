//go:build !wireinject
// +build !wireinject

// This file is maintained by hand and mirrors the provider graph declared in
// wire.go. Keep the two in step when a provider is added or changes shape.

package di

import (
	"context"

	"profnet/infrastructure/config"
)

// Injectors from wire.go:

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, err
	}
	awsConfig, err := ProvideAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	client := ProvideDynamoDBClient(awsConfig)
	professionalRepository, err := ProvideProfessionalRepository(cfg, client, logger)
	if err != nil {
		return nil, err
	}
	eventbridgeClient := ProvideEventBridgeClient(awsConfig)
	eventPublisher := ProvideEventPublisher(cfg, eventbridgeClient, logger)
	collector := ProvideMetrics(cfg)
	cloudwatchClient := ProvideCloudWatchClient(awsConfig)
	cloudWatchMetrics := ProvideCloudWatchMetrics(cfg, cloudwatchClient, logger)
	recorder := ProvideRecorder(collector, cloudWatchMetrics)
	tracer := ProvideTracer(cfg)
	llmProvider := ProvideLLMProvider(cfg, tracer, recorder, logger)
	insightService := ProvideInsightService(llmProvider, professionalRepository, logger)
	formatter := ProvideFormatter()
	inMemoryCache := ProvideInMemoryCache()
	queryBus, err := ProvideQueryBus(cfg, professionalRepository, eventPublisher, insightService, formatter, inMemoryCache, recorder, logger)
	if err != nil {
		return nil, err
	}
	errorHandler := ProvideErrorHandler(cfg, logger)
	tokenBucketLimiter := ProvideRateLimiter(cfg)
	handler := ProvideLayoutSocket(cfg, queryBus, errorHandler, collector, logger)
	mux := ProvideRouter(cfg, queryBus, errorHandler, professionalRepository, tokenBucketLimiter, handler, collector, recorder, logger)
	container := &Container{
		Config:       cfg,
		Logger:       logger,
		Repository:   professionalRepository,
		Publisher:    eventPublisher,
		QueryBus:     queryBus,
		Cache:        inMemoryCache,
		Metrics:      collector,
		CloudWatch:   cloudWatchMetrics,
		RateLimiter:  tokenBucketLimiter,
		LayoutSocket: handler,
		Router:       mux,
	}
	return container, nil
}

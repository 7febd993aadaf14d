// Package ai adapts hosted chat-completion models to ports.LLMProvider.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"profnet/application/ports"
	pkgerrors "profnet/pkg/errors"
	"profnet/pkg/observability"
)

// Config holds the provider settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxRetries int
	RetryBase  time.Duration
	Timeout    time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Model:      "gpt-4o-mini",
		MaxRetries: 3,
		RetryBase:  time.Second,
		Timeout:    60 * time.Second,
	}
}

// ChatClient is the part of the go-openai client the provider calls.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Metrics records completion outcomes.
type Metrics interface {
	ObserveLLM(duration time.Duration, err error)
}

// OpenAIProvider talks to any OpenAI-compatible chat endpoint. Calls go
// through a circuit breaker and are retried with exponential backoff.
type OpenAIProvider struct {
	client  ChatClient
	config  Config
	breaker *gobreaker.CircuitBreaker
	tracer  *observability.Tracer
	metrics Metrics
	logger  *zap.Logger
}

var _ ports.LLMProvider = (*OpenAIProvider)(nil)

// NewOpenAIProvider builds a provider backed by the go-openai client.
func NewOpenAIProvider(cfg Config, tracer *observability.Tracer, metrics Metrics, logger *zap.Logger) *OpenAIProvider {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return NewOpenAIProviderWithClient(openai.NewClientWithConfig(clientConfig), cfg, tracer, metrics, logger)
}

// NewOpenAIProviderWithClient builds a provider around an existing client.
func NewOpenAIProviderWithClient(client ChatClient, cfg Config, tracer *observability.Tracer, metrics Metrics, logger *zap.Logger) *OpenAIProvider {
	defaults := DefaultConfig()
	if cfg.Model == "" {
		cfg.Model = defaults.Model
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaults.MaxRetries
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = defaults.RetryBase
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}

	p := &OpenAIProvider{
		client:  client,
		config:  cfg,
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
	p.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "llm",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.8
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return p
}

// IsAvailable reports whether an API key is configured.
func (p *OpenAIProvider) IsAvailable() bool {
	return p.config.APIKey != ""
}

// Complete sends prompt as a single user message and returns the first
// choice's content.
func (p *OpenAIProvider) Complete(ctx context.Context, prompt string, opts ports.CompletionOptions) (string, error) {
	if !p.IsAvailable() {
		return "", pkgerrors.NewUnavailableError("llm")
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	start := time.Now()
	var text string
	err := p.tracer.Trace(ctx, "llm.complete", func(ctx context.Context) error {
		p.tracer.AddAnnotation(ctx, "model", p.config.Model)
		result, err := p.breaker.Execute(func() (interface{}, error) {
			return p.completeWithRetry(ctx, prompt, opts)
		})
		if err != nil {
			return err
		}
		text = result.(string)
		return nil
	})
	if p.metrics != nil {
		p.metrics.ObserveLLM(time.Since(start), err)
	}

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", pkgerrors.NewUnavailableError("llm").WithCause(err)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return "", pkgerrors.NewTimeoutError("llm", err)
		}
		return "", pkgerrors.NewExternalError("llm", err)
	}
	return text, nil
}

func (p *OpenAIProvider) completeWithRetry(ctx context.Context, prompt string, opts ports.CompletionOptions) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: p.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}

	var lastErr error
	for attempt := 0; attempt < p.config.MaxRetries; attempt++ {
		resp, err := p.client.CreateChatCompletion(ctx, req)
		if err == nil {
			if len(resp.Choices) == 0 {
				return "", fmt.Errorf("empty chat response")
			}
			return strings.TrimSpace(resp.Choices[0].Message.Content), nil
		}

		lastErr = err
		if !retryable(err) || attempt == p.config.MaxRetries-1 {
			break
		}

		wait := p.config.RetryBase << attempt
		p.logger.Debug("LLM request failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", lastErr
}

// retryable treats rate limiting, server errors and transport failures as
// transient. Other API errors are returned at once.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}
	return true
}

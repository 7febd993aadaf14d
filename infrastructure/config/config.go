// Package config loads the service configuration from the environment, with
// an optional YAML file for force-layout tuning.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"profnet/domain/layout"
)

// Storage backends for the professional directory.
const (
	StorageMemory   = "memory"
	StorageDynamoDB = "dynamodb"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress   string
	Environment     string
	ShutdownTimeout time.Duration

	// AWS configuration
	AWSRegion     string
	DynamoDBTable string
	EventBusName  string
	EventSource   string

	// Storage
	StorageBackend string
	SeedFile       string

	// AI provider
	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string
	AITimeout     time.Duration

	// HTTP behaviour
	AllowedOrigins    []string
	RateLimitPerMin   int
	InsightCacheTTL   time.Duration
	MaxWebSocketConns int

	// Logging
	LogLevel string

	// Feature flags
	IsLambda      bool
	EnableMetrics bool
	EnableTracing bool
	EnableEvents  bool

	// Layout tunes the per-session force simulation.
	Layout     layout.Config
	LayoutFile string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress:   getEnv("SERVER_ADDRESS", ":8080"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		AWSRegion:     getEnv("AWS_REGION", "us-west-2"),
		DynamoDBTable: getEnv("TABLE_NAME", getEnv("DYNAMODB_TABLE", "profnet")),
		EventBusName:  getEnv("EVENT_BUS_NAME", "profnet-events"),
		EventSource:   getEnv("EVENT_SOURCE", "profnet.api"),

		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", StorageMemory)),
		SeedFile:       getEnv("SEED_FILE", ""),

		OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		AITimeout:     getEnvDuration("AI_TIMEOUT", 60*time.Second),

		AllowedOrigins:    getEnvList("ALLOWED_ORIGINS", []string{"*"}),
		RateLimitPerMin:   getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		InsightCacheTTL:   getEnvDuration("INSIGHT_CACHE_TTL", 10*time.Minute),
		MaxWebSocketConns: getEnvInt("MAX_WEBSOCKET_CONNECTIONS", 256),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		IsLambda:      getEnvBool("IS_LAMBDA", os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""),
		EnableMetrics: getEnvBool("ENABLE_METRICS", true),
		EnableTracing: getEnvBool("ENABLE_TRACING", false),
		EnableEvents:  getEnvBool("ENABLE_EVENTS", false),

		Layout:     layout.DefaultConfig(),
		LayoutFile: getEnv("LAYOUT_CONFIG_FILE", ""),
	}

	if cfg.LayoutFile != "" {
		if err := cfg.loadLayoutFile(cfg.LayoutFile); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load is an alias for LoadConfig
func Load() (*Config, error) {
	return LoadConfig()
}

// loadLayoutFile overlays the YAML file on top of the current layout
// settings. Keys missing from the file keep their defaults.
func (c *Config) loadLayoutFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read layout config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &c.Layout); err != nil {
		return fmt.Errorf("failed to parse layout config %s: %w", path, err)
	}
	return nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case StorageMemory:
	case StorageDynamoDB:
		if c.DynamoDBTable == "" {
			return fmt.Errorf("DYNAMODB_TABLE is required for the dynamodb backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}

	if c.EnableEvents && c.EventBusName == "" {
		return fmt.Errorf("EVENT_BUS_NAME is required when events are enabled")
	}
	if c.RateLimitPerMin < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE cannot be negative")
	}
	if c.IsProduction() && c.StorageBackend == StorageMemory && c.SeedFile == "" {
		return fmt.Errorf("SEED_FILE is required for the memory backend in production")
	}

	if err := c.Layout.Validate(); err != nil {
		return fmt.Errorf("invalid layout config: %w", err)
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AIEnabled reports whether an OpenAI key is configured.
func (c *Config) AIEnabled() bool {
	return c.OpenAIKey != ""
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated variable, dropping blank entries.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

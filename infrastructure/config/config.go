package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Act record sources
const (
	ActsSourceDynamoDB = "dynamodb"
	ActsSourceMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion    string
	ActsTable    string
	EventBusName string

	// Act records
	ActsSource  string // dynamodb or memory
	ActsFile    string // JSON array of acts for the memory source
	ActCacheTTL time.Duration

	// Canvas sessions
	CanvasIdleTTL       time.Duration // 0 uses the layout's session TTL
	CanvasSweepInterval time.Duration
	LayoutConfigPath    string // optional YAML layout override

	// Lambda configuration
	IsLambda           bool
	LambdaFunctionName string

	// Logging
	LogLevel string

	// Feature flags
	EnableMetrics bool
	EnableTracing bool
	EnableEvents  bool
	EnableCORS    bool

	MetricsNamespace     string
	MetricsFlushInterval time.Duration

	// Per-client rate limit; 0 disables it
	RateLimitRPS   float64
	RateLimitBurst int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		AWSRegion:     getEnv("AWS_REGION", "ca-central-1"),
		ActsTable:     getEnv("ACTS_TABLE", "titlechain-acts"),
		EventBusName:  getEnv("EVENT_BUS_NAME", "titlechain-events"),

		ActsSource:  getEnv("ACTS_SOURCE", ActsSourceDynamoDB),
		ActsFile:    getEnv("ACTS_FILE", ""),
		ActCacheTTL: getEnvDuration("ACT_CACHE_TTL", 5*time.Minute),

		CanvasIdleTTL:       getEnvDuration("CANVAS_IDLE_TTL", 0),
		CanvasSweepInterval: getEnvDuration("CANVAS_SWEEP_INTERVAL", time.Minute),
		LayoutConfigPath:    getEnv("LAYOUT_CONFIG", ""),

		// Lambda configuration
		IsLambda:           getEnvBool("IS_LAMBDA", false),
		LambdaFunctionName: getEnv("AWS_LAMBDA_FUNCTION_NAME", ""),

		// Logging and features
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnableMetrics: getEnvBool("ENABLE_METRICS", false),
		EnableTracing: getEnvBool("ENABLE_TRACING", false),
		EnableEvents:  getEnvBool("ENABLE_EVENTS", false),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),

		MetricsNamespace:     getEnv("METRICS_NAMESPACE", "TitleChain"),
		MetricsFlushInterval: getEnvDuration("METRICS_FLUSH_INTERVAL", 30*time.Second),

		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 0),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 20),
	}

	// Lambda runtime always sets the function name
	if cfg.LambdaFunctionName != "" {
		cfg.IsLambda = true
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.ActsSource {
	case ActsSourceDynamoDB:
		if c.ActsTable == "" {
			return fmt.Errorf("ACTS_TABLE is required when ACTS_SOURCE=%s", ActsSourceDynamoDB)
		}
	case ActsSourceMemory:
		if c.IsProduction() && c.ActsFile == "" {
			return fmt.Errorf("ACTS_FILE is required for the memory source in production")
		}
	default:
		return fmt.Errorf("ACTS_SOURCE must be %q or %q, got %q", ActsSourceDynamoDB, ActsSourceMemory, c.ActsSource)
	}

	if c.EnableEvents && c.EventBusName == "" {
		return fmt.Errorf("EVENT_BUS_NAME is required when events are enabled")
	}
	if c.RateLimitRPS < 0 || (c.RateLimitRPS > 0 && c.RateLimitBurst <= 0) {
		return fmt.Errorf("RATE_LIMIT_BURST must be positive when RATE_LIMIT_RPS is set")
	}
	if c.CanvasIdleTTL < 0 || c.ActCacheTTL < 0 {
		return fmt.Errorf("durations cannot be negative")
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

// UsesAWS reports whether any component needs an AWS client
func (c *Config) UsesAWS() bool {
	return c.ActsSource == ActsSourceDynamoDB || c.EnableEvents || c.EnableMetrics
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

// getEnvFloat gets a float environment variable with a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("90s") or a bare number of seconds
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs := getEnvInt(key, -1); secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

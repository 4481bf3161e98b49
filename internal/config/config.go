package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Pool     PoolConfig     `mapstructure:"pool" validate:"required"`
	Pipeline PipelineConfig `mapstructure:"pipeline" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// PoolConfig contains the task pool settings. A Size of zero lets the pool
// derive its unit count from the CPU count.
type PoolConfig struct {
	Size           int           `mapstructure:"size" validate:"gte=0,lte=64"`
	MaxQueueDepth  int           `mapstructure:"max_queue_depth" validate:"gte=0"`
	OverflowPolicy string        `mapstructure:"overflow_policy" validate:"required,oneof=reject block"`
	RestartDelay   time.Duration `mapstructure:"restart_delay"`
	RetryCrashed   bool          `mapstructure:"retry_crashed"`
}

// PipelineConfig contains the streaming pipeline settings.
type PipelineConfig struct {
	BatchSize int `mapstructure:"batch_size" validate:"required,gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	// APIKeyHash is the bcrypt hash clients must match to obtain a token.
	// Generate one with cmd/keygen.
	APIKeyHash string `mapstructure:"api_key_hash" validate:"required"`
}

// LLMConfig contains the model-backed classifier settings. An empty API key
// disables the external classifier and topic classification falls back to
// the keyword heuristic.
type LLMConfig struct {
	GeminiAPIKey      string `mapstructure:"gemini_api_key"`
	Model             string `mapstructure:"model"`
	MaxRetries        int    `mapstructure:"max_retries"         validate:"gte=0,lte=10"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"gte=0,lte=60"`
}

// MetricsConfig controls the OpenTelemetry metrics exporter.
type MetricsConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	IntervalSeconds int  `mapstructure:"interval_seconds" validate:"gte=0"`
}

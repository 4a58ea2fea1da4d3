package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Task     TaskConfig     `mapstructure:"task"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// ScheduleConfig contains the settings the session composer depends on.
type ScheduleConfig struct {
	// TimeZone is the IANA zone name used to compute day boundaries.
	// Unset or unrecognized names fall back to the default zone.
	TimeZone string `mapstructure:"time_zone"`
}

// TaskConfig contains the background enrichment worker settings.
type TaskConfig struct {
	QueueSize   int `mapstructure:"queue_size" validate:"gte=1"`
	WorkerCount int `mapstructure:"worker_count" validate:"gte=1"`
}

// LLMConfig contains the remote content provider settings. When the API key
// is empty the service runs with the deterministic fallback provider only.
type LLMConfig struct {
	GeminiAPIKey      string `mapstructure:"gemini_api_key"`
	ModelName         string `mapstructure:"model_name"`
	MaxRetries        int    `mapstructure:"max_retries" validate:"gte=0"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"gte=0"`
}

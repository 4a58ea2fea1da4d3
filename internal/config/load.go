package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory. Environment variables take precedence
// and use the VOCAB_ prefix with underscores for nesting, e.g.
// VOCAB_DATABASE_URL or VOCAB_SERVER_LOG_LEVEL.
//
// Returns a validated Config or an error describing the first missing or
// malformed setting; the caller is expected to fail fast on error.
func Load() (*Config, error) {
	v := viper.New()

	// Every key needs a default so AutomaticEnv can resolve it during
	// Unmarshal; required-but-defaultless settings register as empty and
	// are caught by validation below.
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("database.url", "")
	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("schedule.time_zone", "Asia/Ho_Chi_Minh")
	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.max_retries", 2)
	v.SetDefault("llm.retry_delay_seconds", 2)
	v.SetDefault("task.queue_size", 50)
	v.SetDefault("task.worker_count", 2)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("VOCAB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env vars and defaults still apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Package config loads process configuration once at startup. Components
// receive the resulting struct by reference instead of reading env vars
// on their own.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,       default=8000"`
	Env       string `env:"ENV,        default=development"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	JWTSecret string `env:"JWT_SECRET, required"`

	Database   DatabaseConfig
	Completion CompletionConfig
}

type DatabaseConfig struct {
	// Adapter selects the GORM driver: "postgres" or "mysql".
	Adapter string `env:"DATABASE_ADAPTER, default=postgres"`
	DSN     string `env:"DATABASE_URL,     required"`
}

// CompletionConfig points at an OpenAI-compatible chat-completions
// endpoint (Azure OpenAI deployments included).
type CompletionConfig struct {
	URL            string        `env:"COMPLETION_URL, required"`
	APIKey         string        `env:"COMPLETION_API_KEY, required"`
	Timeout        time.Duration `env:"COMPLETION_TIMEOUT, default=10s"`
	Model          string        `env:"COMPLETION_MODEL"`
	AuthHeaderName string        `env:"COMPLETION_AUTH_HEADER, default=api-key"`
}

// Load reads configuration from environment variables.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

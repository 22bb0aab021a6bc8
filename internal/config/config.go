package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the full service configuration, loaded from the environment.
type Config struct {
	// HTTP server
	HTTPPort        string        `envconfig:"HTTP_PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	CORSOrigins     []string      `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`

	// AI provider (OpenAI-compatible, OpenRouter by default)
	AIBaseURL string        `envconfig:"AI_BASE_URL" default:"https://openrouter.ai/api/v1"`
	AIModel   string        `envconfig:"AI_MODEL" default:"openai/gpt-4o-mini"`
	AITimeout time.Duration `envconfig:"AI_TIMEOUT" default:"120s"`
	AIAPIKey  string        `envconfig:"AI_API_KEY"`

	// Structural budget communicated to the model. Generation-side
	// cooperation is assumed; expansion does not hard-cap tree size.
	StoryMaxDepth   int `envconfig:"STORY_MAX_DEPTH" default:"3"`
	StoryMaxOptions int `envconfig:"STORY_MAX_OPTIONS" default:"3"`

	// Background generation
	MaxConcurrentGenerations int `envconfig:"MAX_CONCURRENT_GENERATIONS" default:"4"`

	// PostgreSQL
	DBHost     string        `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string        `envconfig:"DB_PORT" default:"5432"`
	DBUser     string        `envconfig:"DB_USER" default:"postgres"`
	DBPassword string        `envconfig:"DB_PASSWORD" default:"postgres"`
	DBName     string        `envconfig:"DB_NAME" default:"adventure_db"`
	DBSSLMode  string        `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns int32         `envconfig:"DB_MAX_CONNECTIONS" default:"10"`
	DBIdleTime time.Duration `envconfig:"DB_MAX_IDLE_TIME" default:"5m"`
}

// LoadConfig loads the configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return &cfg, nil
}

// GetDSN returns the PostgreSQL connection string.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// GetMaskedDSN returns the DSN with the password masked, for logging.
func (c *Config) GetMaskedDSN() string {
	dsn := c.GetDSN()
	parts := strings.Split(dsn, "@")
	if len(parts) != 2 {
		return "[invalid dsn format]"
	}
	userInfo := strings.Split(parts[0], ":")
	if len(userInfo) >= 2 {
		userInfo[len(userInfo)-1] = "********"
	}
	return strings.Join(userInfo, ":") + "@" + parts[1]
}

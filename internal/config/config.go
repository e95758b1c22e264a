package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	Port    string `env:"PORT" envDefault:"8080"`
	GinMode string `env:"GIN_MODE" envDefault:"release"`

	// LLM settings
	OpenAIAPIKey      string  `env:"OPENAI_API_KEY"`
	OpenAIBaseURL     string  `env:"OPENAI_BASE_URL"`
	OpenAIModel       string  `env:"OPENAI_MODEL" envDefault:"gpt-3.5-turbo"`
	OpenAITemperature float32 `env:"OPENAI_TEMPERATURE" envDefault:"0.5"`

	// Storage
	CSVLogPath  string `env:"CSV_LOG_PATH" envDefault:"logs.csv"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"logs.db"`

	// HTTP
	StaticRoot  string   `env:"STATIC_ROOT"`
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings the HTTP server cannot run without.
func (c *Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.OpenAITemperature < 0 || c.OpenAITemperature > 2 {
		return fmt.Errorf("OPENAI_TEMPERATURE must be between 0 and 2, got %v", c.OpenAITemperature)
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be \"json\" or \"console\", got %q", c.LogFormat)
	}
	return nil
}

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeGCP   Mode = "gcp"
)

type Config struct {
	Mode Mode   `env:"LORE_MODE" envDefault:"local"`
	Port string `env:"LORE_PORT" envDefault:"8080"`

	// Boromir API root and the public site used to resolve relative links
	LoreAPIBaseURL  string        `env:"LORE_API_BASE_URL" envDefault:"https://www.worldanvil.com/api/external/boromir"`
	SiteBaseURL     string        `env:"LORE_SITE_BASE_URL" envDefault:"https://www.worldanvil.com"`
	UpstreamTimeout time.Duration `env:"LORE_UPSTREAM_TIMEOUT" envDefault:"0s"` // 0 keeps the transport default

	GeminiAPIKey string `env:"LORE_GEMINI_API_KEY"`
	GCPProjectID string `env:"LORE_GCP_PROJECT"`
	GCPLocation  string `env:"LORE_GCP_LOCATION" envDefault:"us-central1"`
	ModelName    string `env:"LORE_MODEL_NAME" envDefault:"gemini-2.5-flash"`
	UseMockLLM   bool   `env:"LORE_USE_MOCK_LLM"`

	ContextFormat string `env:"LORE_CONTEXT_FORMAT" envDefault:"json"` // "json" or "yaml"

	CORSOrigins []string `env:"LORE_CORS_ORIGINS" envSeparator:","`

	LogLevel  string `env:"LORE_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LORE_LOG_FORMAT" envDefault:"json"`

	CredentialStorePath string `env:"LORE_CREDENTIAL_STORE" envDefault:"lorekeeper.db"`
}

// Load reads all env vars and builds the config
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	switch cfg.Mode {
	case ModeLocal, ModeGCP:
	default:
		return nil, fmt.Errorf("LORE_MODE must be %q or %q, got %q", ModeLocal, ModeGCP, cfg.Mode)
	}

	switch cfg.ContextFormat {
	case "json", "yaml":
	default:
		return nil, fmt.Errorf("LORE_CONTEXT_FORMAT must be json or yaml, got %q", cfg.ContextFormat)
	}

	// Minimal validation in GCP mode
	if cfg.Mode == ModeGCP && !cfg.UseMockLLM && cfg.GCPProjectID == "" {
		return nil, fmt.Errorf("LORE_GCP_PROJECT must be set in gcp mode")
	}

	return &cfg, nil
}

// AIConfigured reports whether a server-side AI credential is available.
func (c *Config) AIConfigured() bool {
	if c.UseMockLLM {
		return true
	}
	if c.Mode == ModeGCP {
		return c.GCPProjectID != ""
	}
	return c.GeminiAPIKey != ""
}

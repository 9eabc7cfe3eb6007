package llm

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "anthropic", "openai", "gemini", "openrouter", "mock"
	Provider string `env:"LLM_PROVIDER" envDefault:"gemini"`

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds a single text request (including retries).
	// Image OCR carries its own, longer deadline.
	Timeout time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey  string `env:"ANTHROPIC_API_KEY"`
	Model   string `env:"ANTHROPIC_MODEL" envDefault:"claude-haiku"`
	BaseURL string `env:"ANTHROPIC_BASE_URL"`
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string `env:"OPENAI_API_KEY"`
	Model   string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	BaseURL string `env:"OPENAI_BASE_URL"` // Optional. Override for compatible APIs.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey  string `env:"GEMINI_API_KEY"`
	Model   string `env:"GEMINI_MODEL" envDefault:"gemini-flash"`
	BaseURL string `env:"GEMINI_BASE_URL"`
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string `env:"OPENROUTER_API_KEY"`
	Model   string `env:"OPENROUTER_MODEL" envDefault:"gemini-flash"`
	BaseURL string `env:"OPENROUTER_BASE_URL"` // Default: "https://openrouter.ai/api/v1"
}

// RetryConfig configures retry behavior for transient failures.
// MaxAttempts of 1 disables retries: a failed call is surfaced to the user,
// who decides whether to resubmit.
type RetryConfig struct {
	MaxAttempts int           `env:"LLM_RETRY_MAX_ATTEMPTS" envDefault:"1"`
	InitialWait time.Duration `env:"LLM_RETRY_INITIAL_WAIT" envDefault:"1s"`
	MaxWait     time.Duration `env:"LLM_RETRY_MAX_WAIT" envDefault:"10s"`
	Multiplier  float64       `env:"LLM_RETRY_MULTIPLIER" envDefault:"2"`
}

// envPrefix namespaces every variable read by ConfigFromEnv.
const envPrefix = "STUDYQUIZ_"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: "gemini",
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "gemini-flash",
		},
		Retry: RetryConfig{
			MaxAttempts: 1,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 60 * time.Second,
	}
}

// ConfigFromEnv builds a Config from STUDYQUIZ_* environment variables,
// falling back to defaults for unset values.
func ConfigFromEnv() (Config, error) {
	return configFrom(env.Options{Prefix: envPrefix})
}

// ConfigFromMap is ConfigFromEnv over an explicit environment.
func ConfigFromMap(environ map[string]string) (Config, error) {
	return configFrom(env.Options{Prefix: envPrefix, Environment: environ})
}

func configFrom(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse LLM config: %w", err)
	}
	return cfg, nil
}

// DiscoverConfig checks the standard API key env vars in priority order
// (Gemini → OpenAI → Anthropic → OpenRouter) and returns a Config for the
// first provider whose key is found. Returns (Config{}, false) if none found.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Provider = "gemini"
		cfg.Gemini.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		cfg.Provider = "openai"
		cfg.OpenAI.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Provider = "anthropic"
		cfg.Anthropic.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENROUTER_API_KEY"); k != "" {
		cfg.Provider = "openrouter"
		cfg.OpenRouter.APIKey = k
		return cfg, true
	}

	return Config{}, false
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("%sANTHROPIC_API_KEY is required for the anthropic provider", envPrefix)
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("%sOPENAI_API_KEY is required for the openai provider", envPrefix)
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("%sGEMINI_API_KEY is required for the gemini provider", envPrefix)
		}
	case "openrouter":
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("%sOPENROUTER_API_KEY is required for the openrouter provider", envPrefix)
		}
	case "mock":
		// No API key needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}

package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/studyquiz/internal/store"
)

// NewProvider creates a Provider from configuration.
// The provider is wrapped as caller → retry → logging → base, so each
// attempt is recorded. eventRepo may be nil when no store is configured.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return WithRetry(WithLogging(base, eventRepo), cfg.Retry), nil
}

// NewProviderFromEnv resolves configuration from STUDYQUIZ_* variables,
// falling back to well-known API key variables when no provider key is set.
func NewProviderFromEnv(ctx context.Context, eventRepo store.EventRepo) (Provider, Config, error) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		return nil, Config{}, err
	}
	if cfg.Validate() != nil {
		if discovered, ok := DiscoverConfig(); ok {
			discovered.Retry = cfg.Retry
			discovered.Timeout = cfg.Timeout
			cfg = discovered
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, cfg, err
	}

	p, err := NewProvider(ctx, cfg, eventRepo)
	if err != nil {
		return nil, cfg, err
	}
	return p, cfg, nil
}

package reasoning

import (
	"fmt"
	"os"

	"github.com/stratpilot/stratpilot/internal/config"
)

// NewClient creates a reasoning client from configuration. API keys are read
// from the conventional environment variables; a rate limiter is applied when
// requests_per_minute is set.
func NewClient(cfg *config.Config) (Client, error) {
	var client Client

	switch cfg.Provider {
	case config.ProviderOpenAI:
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		client = NewOpenAIClient(apiKey, cfg.Model)

	case config.ProviderAnthropic:
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is not set")
		}
		client = NewAnthropicClient(apiKey, cfg.Model)

	case config.ProviderOllama:
		host := os.Getenv("OLLAMA_HOST")
		if host == "" {
			host = "http://localhost:11434"
		}
		client = NewOllamaClient(host, cfg.Model)

	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}

	if cfg.RequestsPerMinute > 0 {
		client = NewRateLimitedClient(client, cfg.RequestsPerMinute)
	}

	return client, nil
}

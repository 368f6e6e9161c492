package config

// defaultModels maps each provider to the model used when none is configured.
var defaultModels = map[ProviderType]string{
	ProviderOpenAI:    "gpt-4o",
	ProviderAnthropic: "claude-sonnet-4-5-20250929",
	ProviderOllama:    "llama3",
}

// DefaultModel returns the default model for the given provider, falling
// back to the OpenAI default for unknown providers.
func DefaultModel(provider ProviderType) string {
	if m, ok := defaultModels[provider]; ok {
		return m
	}
	return defaultModels[ProviderOpenAI]
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:          ProviderOpenAI,
		Model:             defaultModels[ProviderOpenAI],
		Port:              8080,
		DataDir:           ".stratpilot",
		RequestsPerMinute: 30,
		HeartbeatSec:      15,
		Timeouts: TimeoutConfig{
			FrameworkSec: 60,
			SynthesisSec: 60,
			JourneySec:   600,
		},
		Readiness: ReadinessConfig{
			MinReferences: 3,
			MinEntities:   5,
		},
		EnableRecommendations: false,
		AllowAllOrigins:       false,
	}
}

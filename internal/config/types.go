package config

// ProviderType identifies a reasoning-service provider.
type ProviderType string

const (
	ProviderOpenAI    ProviderType = "openai"
	ProviderAnthropic ProviderType = "anthropic"
	ProviderOllama    ProviderType = "ollama"
)

// ReadinessConfig holds the default thresholds used to decide whether a
// journey has enough supporting material to run unattended.
type ReadinessConfig struct {
	MinReferences int `yaml:"min_references" koanf:"min_references"`
	MinEntities   int `yaml:"min_entities" koanf:"min_entities"`
}

// TimeoutConfig holds per-call and per-run deadlines, in seconds.
type TimeoutConfig struct {
	FrameworkSec int `yaml:"framework_sec" koanf:"framework_sec"`
	SynthesisSec int `yaml:"synthesis_sec" koanf:"synthesis_sec"`
	JourneySec   int `yaml:"journey_sec" koanf:"journey_sec"`
}

// Config is the top-level stratpilot configuration, corresponding to .stratpilot.yml.
// Optional subsystems are switched here rather than read from ambient process
// state at call sites.
type Config struct {
	Provider              ProviderType    `yaml:"provider" koanf:"provider"`
	Model                 string          `yaml:"model" koanf:"model"`
	Port                  int             `yaml:"port" koanf:"port"`
	DataDir               string          `yaml:"data_dir" koanf:"data_dir"`
	RequestsPerMinute     int             `yaml:"requests_per_minute" koanf:"requests_per_minute"`
	HeartbeatSec          int             `yaml:"heartbeat_sec" koanf:"heartbeat_sec"`
	Timeouts              TimeoutConfig   `yaml:"timeouts" koanf:"timeouts"`
	Readiness             ReadinessConfig `yaml:"readiness" koanf:"readiness"`
	EnableRecommendations bool            `yaml:"enable_recommendations" koanf:"enable_recommendations"`
	AllowAllOrigins       bool            `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

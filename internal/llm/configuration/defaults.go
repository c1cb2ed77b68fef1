package configuration

import (
	"time"
)

// HTTP constants.
const (
	DefaultHTTPTimeoutSeconds  = 120
	ServerErrorStatusThreshold = 500
)

// Rate limiting constants.
const (
	DefaultTokensPerSecond = 2
	DefaultBurstSize       = 4
)

// Supported provider names.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGoogle    = "google"
)

// DefaultConfig returns a configuration with all three providers wired to
// their public endpoints and credentials read from the usual variables.
func DefaultConfig() *Config {
	return &Config{
		HTTPTimeout:     DefaultHTTPTimeoutSeconds * time.Second,
		DefaultProvider: ProviderOpenAI,
		Providers: map[string]ProviderConfig{
			ProviderOpenAI: {
				Endpoint:  "https://api.openai.com/v1",
				Model:     "gpt-4o",
				APIKeyEnv: "OPENAI_API_KEY",
			},
			ProviderAnthropic: {
				Endpoint:  "https://api.anthropic.com/v1",
				Model:     "claude-3-5-sonnet-latest",
				APIKeyEnv: "ANTHROPIC_API_KEY",
			},
			ProviderGoogle: {
				Endpoint:  "https://generativelanguage.googleapis.com/v1beta",
				Model:     "gemini-1.5-pro",
				APIKeyEnv: "GOOGLE_API_KEY",
			},
		},
		RateLimit: LocalRateLimitConfig{
			Enabled:         true,
			TokensPerSecond: DefaultTokensPerSecond,
			BurstSize:       DefaultBurstSize,
		},
		Observability: ObservabilityConfig{
			LogLevel:      "info",
			LogFormat:     "json",
			RedactPrompts: true,
		},
	}
}

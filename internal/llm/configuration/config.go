// Package configuration holds LLM client settings and their YAML loading.
package configuration

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrMissingAPIKey is returned when the selected provider has no credentials.
var ErrMissingAPIKey = errors.New("missing API key")

// Config holds configuration for the LLM client.
type Config struct {
	HTTPTimeout time.Duration `yaml:"http_timeout" validate:"min=0"`
	HTTPClient  *http.Client  `yaml:"-"`

	// DefaultProvider names the entry of Providers used for completions.
	DefaultProvider string `yaml:"default_provider" validate:"required,oneof=openai anthropic google"`

	Providers map[string]ProviderConfig `yaml:"providers" validate:"required,min=1,dive"`

	RateLimit LocalRateLimitConfig `yaml:"rate_limit"`

	Observability ObservabilityConfig `yaml:"observability"`

	Features FeatureFlags `yaml:"features"`
}

// ProviderConfig holds provider-specific endpoint and authentication settings.
type ProviderConfig struct {
	Endpoint  string            `yaml:"endpoint" validate:"omitempty,url"`
	Model     string            `yaml:"model" validate:"required"`
	APIKey    string            `yaml:"-"` // Sensitive, never read from file
	APIKeyEnv string            `yaml:"api_key_env"`
	Timeout   time.Duration     `yaml:"timeout" validate:"min=0"`
	Headers   map[string]string `yaml:"headers"`
}

// LocalRateLimitConfig configures the in-process token bucket.
type LocalRateLimitConfig struct {
	Enabled         bool    `yaml:"enabled"`
	TokensPerSecond float64 `yaml:"tokens_per_second" validate:"required_if=Enabled true,omitempty,gt=0"`
	BurstSize       int     `yaml:"burst_size" validate:"required_if=Enabled true,omitempty,min=1"`
}

// ObservabilityConfig controls request logging.
type ObservabilityConfig struct {
	LogLevel      string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	LogFormat     string `yaml:"log_format" validate:"omitempty,oneof=json text"`
	RedactPrompts bool   `yaml:"redact_prompts"`
}

// FeatureFlags control optional behaviors.
type FeatureFlags struct {
	DisableJSONRepair bool `yaml:"disable_json_repair"`
}

// Validate checks the configuration shape and that the default provider is
// configured.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid LLM configuration: %w", err)
	}
	if _, ok := c.Providers[c.DefaultProvider]; !ok {
		return fmt.Errorf("invalid LLM configuration: default provider %q is not configured", c.DefaultProvider)
	}
	return nil
}

// Selected returns the configuration of the default provider.
func (c *Config) Selected() (ProviderConfig, error) {
	p, ok := c.Providers[c.DefaultProvider]
	if !ok {
		return ProviderConfig{}, fmt.Errorf("provider %q is not configured", c.DefaultProvider)
	}
	if p.APIKey == "" {
		return ProviderConfig{}, fmt.Errorf("%w for provider %q (set %s)", ErrMissingAPIKey, c.DefaultProvider, p.APIKeyEnv)
	}
	return p, nil
}

// ResolveAPIKeys fills empty APIKey fields from the environment using each
// provider's APIKeyEnv. lookup defaults to os.LookupEnv.
func (c *Config) ResolveAPIKeys(lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for name, p := range c.Providers {
		if p.APIKey != "" || p.APIKeyEnv == "" {
			continue
		}
		if v, ok := lookup(p.APIKeyEnv); ok {
			p.APIKey = v
			c.Providers[name] = p
		}
	}
}

// Parse overlays YAML data onto the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse LLM configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads a YAML configuration file. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		cfg := DefaultConfig()
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read LLM configuration: %w", err)
	}
	return Parse(data)
}

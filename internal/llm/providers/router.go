// Package providers translates normalized LLM requests into the wire formats
// of OpenAI, Anthropic and Google, and their responses back.
package providers

import (
	"fmt"

	"github.com/ahrav/go-appraise/internal/llm/configuration"
	llmerrors "github.com/ahrav/go-appraise/internal/llm/errors"
	"github.com/ahrav/go-appraise/internal/llm/transport"
)

// Supported LLM provider identifiers. They match the configuration keys.
const (
	ProviderOpenAI    = configuration.ProviderOpenAI
	ProviderAnthropic = configuration.ProviderAnthropic
	ProviderGoogle    = configuration.ProviderGoogle
)

// NewRouter creates a router with configured provider adapters.
func NewRouter(configs map[string]configuration.ProviderConfig) (transport.Router, error) {
	adapters := make(map[string]transport.ProviderAdapter, len(configs))

	for name, cfg := range configs {
		adapter, err := NewAdapter(name, cfg)
		if err != nil {
			return nil, err
		}
		adapters[name] = adapter
	}

	return &router{adapters: adapters}, nil
}

// NewAdapter builds the adapter for a single named provider.
func NewAdapter(name string, cfg configuration.ProviderConfig) (transport.ProviderAdapter, error) {
	switch name {
	case ProviderOpenAI:
		return NewOpenAIAdapter(cfg), nil
	case ProviderAnthropic:
		return NewAnthropicAdapter(cfg), nil
	case ProviderGoogle:
		return NewGoogleAdapter(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %s", llmerrors.ErrUnknownProvider, name)
	}
}

// router maps provider names to adapters.
type router struct {
	adapters map[string]transport.ProviderAdapter
}

// Pick selects the adapter for the given provider name.
func (r *router) Pick(provider, _ string) (transport.ProviderAdapter, error) {
	adapter, ok := r.adapters[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", llmerrors.ErrUnknownProvider, provider)
	}
	return adapter, nil
}

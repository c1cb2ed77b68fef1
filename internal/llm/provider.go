// Package llm provides a JSON-completion client over the supported LLM providers.
package llm

//go:generate mockgen -destination=mock_provider.go -package=llm . Provider

import (
	"context"

	"github.com/ahrav/go-appraise/internal/llm/transport"
)

// JSONDataKey is the key under which a parsed completion object is exposed
// when a completion is rendered as a map.
const JSONDataKey = "json_data"

// CompletionRequest is a fully formatted prompt plus sampling parameters.
type CompletionRequest struct {
	Prompt       string
	SystemPrompt string
	MaxTokens    int64
	Temperature  float64
}

// Completion is a model response whose text parsed as a JSON object.
type Completion struct {
	// JSONData is the parsed JSON object.
	JSONData map[string]any

	// Raw is the unmodified model text.
	Raw string

	// Repaired reports that the text needed repair before it parsed.
	Repaired bool

	Provider     string
	Model        string
	FinishReason transport.FinishReason
	Usage        transport.NormalizedUsage
}

// AsMap returns the completion in its keyed form, {"json_data": {...}}.
func (c *Completion) AsMap() map[string]any {
	return map[string]any{JSONDataKey: c.JSONData}
}

// Provider completes a prompt and returns the parsed JSON object the model
// produced. Malformed output is an error, never an empty object.
type Provider interface {
	CompleteJSON(ctx context.Context, req CompletionRequest) (*Completion, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, req CompletionRequest) (*Completion, error)

// CompleteJSON implements Provider.
func (f ProviderFunc) CompleteJSON(ctx context.Context, req CompletionRequest) (*Completion, error) {
	return f(ctx, req)
}

package transport

import (
	"net/http"
	"time"
)

// FinishReason normalizes why a provider stopped generating.
type FinishReason string

// FinishReason values shared by all provider adapters.
const (
	FinishStop          FinishReason = "stop"
	FinishLength        FinishReason = "length"
	FinishContentFilter FinishReason = "content_filter"
	FinishToolUse       FinishReason = "tool_use"
)

// Request is a provider-neutral completion request. Adapters translate it
// into each provider's wire format.
type Request struct {
	// Provider identifies which LLM service to use.
	Provider string `json:"provider"` // "openai"|"anthropic"|"google"

	// Model specifies the exact model version to use.
	Model string `json:"model"`

	// Prompt is the single user message sent to the model.
	Prompt string `json:"prompt"`

	// SystemPrompt provides standing instructions to the model.
	SystemPrompt string `json:"system_prompt,omitempty"`

	// JSONMode asks providers that support it for a JSON object response.
	JSONMode bool `json:"json_mode,omitempty"`

	MaxTokens   int64   `json:"max_tokens"`
	Temperature float64 `json:"temperature"`

	Timeout time.Duration `json:"timeout"`
	TraceID string        `json:"trace_id"`
}

// Response is normalized output from any provider.
type Response struct {
	// Content is the generated text.
	Content string `json:"content"`

	FinishReason FinishReason `json:"finish_reason"`

	// ProviderRequestIDs enables cross-system correlation.
	ProviderRequestIDs []string `json:"provider_request_ids"`

	Usage NormalizedUsage `json:"usage"`

	// Headers preserves raw response headers for debugging.
	Headers http.Header `json:"-"`

	// RawBody preserves the original response for audit.
	RawBody []byte `json:"-"`
}

// NormalizedUsage provides consistent usage metrics across all providers.
type NormalizedUsage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
	LatencyMs        int64 `json:"latency_ms"`
}

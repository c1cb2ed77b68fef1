package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ahrav/go-appraise/internal/llm/configuration"
	llmerrors "github.com/ahrav/go-appraise/internal/llm/errors"
	"github.com/ahrav/go-appraise/internal/llm/providers"
	"github.com/ahrav/go-appraise/internal/llm/ratelimit"
	"github.com/ahrav/go-appraise/internal/llm/transport"
)

// systemPrompt is sent with every completion unless the request sets one.
const systemPrompt = "You are an expert in evidence-based medicine and critical appraisal. " +
	"Respond with a single JSON object and no other text."

// Client implements Provider over the configured default provider. Requests
// pass through logging and rate-limit middleware before the HTTP handler.
type Client struct {
	handler     transport.Handler
	provider    string
	cfg         configuration.ProviderConfig
	allowRepair bool
}

var _ Provider = (*Client)(nil)

// NewClient builds a client for cfg.DefaultProvider. API keys must already be
// resolved (see configuration.Config.ResolveAPIKeys).
func NewClient(cfg *configuration.Config, logger *slog.Logger) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("LLM configuration is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	selected, err := cfg.Selected()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	router, err := providers.NewRouter(map[string]configuration.ProviderConfig{cfg.DefaultProvider: selected})
	if err != nil {
		return nil, fmt.Errorf("failed to create router: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}

	rateLimit, err := ratelimit.NewRateLimitMiddleware(cfg.RateLimit, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limiter: %w", err)
	}

	handler := transport.Chain(
		transport.NewHTTPHandler(httpClient, router),
		NewLoggingMiddleware(cfg.Observability, logger),
		rateLimit,
	)

	return &Client{
		handler:     handler,
		provider:    cfg.DefaultProvider,
		cfg:         selected,
		allowRepair: !cfg.Features.DisableJSONRepair,
	}, nil
}

// CompleteJSON sends the prompt once and parses the reply as a JSON object.
func (c *Client) CompleteJSON(ctx context.Context, req CompletionRequest) (*Completion, error) {
	sys := req.SystemPrompt
	if sys == "" {
		sys = systemPrompt
	}

	resp, err := c.handler.Handle(ctx, &transport.Request{
		Provider:     c.provider,
		Model:        c.cfg.Model,
		Prompt:       req.Prompt,
		SystemPrompt: sys,
		JSONMode:     true,
		MaxTokens:    req.MaxTokens,
		Temperature:  req.Temperature,
		Timeout:      c.cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}

	obj, repaired, err := ExtractJSONObject(resp.Content, c.allowRepair)
	if err != nil {
		var malformedErr *llmerrors.MalformedOutputError
		if errors.As(err, &malformedErr) {
			malformedErr.Provider = c.provider
			if resp.FinishReason == transport.FinishLength {
				malformedErr.Reason += " (response truncated at max tokens)"
			}
		}
		return nil, err
	}

	return &Completion{
		JSONData:     obj,
		Raw:          resp.Content,
		Repaired:     repaired,
		Provider:     c.provider,
		Model:        c.cfg.Model,
		FinishReason: resp.FinishReason,
		Usage:        resp.Usage,
	}, nil
}

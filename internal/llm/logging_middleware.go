package llm

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ahrav/go-appraise/internal/llm/configuration"
	llmerrors "github.com/ahrav/go-appraise/internal/llm/errors"
	"github.com/ahrav/go-appraise/internal/llm/transport"
)

// responsePreviewLength bounds unredacted response logging.
const responsePreviewLength = 200

// LoggingMiddleware logs the lifecycle of each LLM request. Prompt and
// response bodies are replaced by their lengths when redaction is on.
type LoggingMiddleware struct {
	logger        *slog.Logger
	redactPrompts bool
}

// NewLoggingMiddleware creates request logging middleware.
func NewLoggingMiddleware(cfg configuration.ObservabilityConfig, logger *slog.Logger) transport.Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	lm := &LoggingMiddleware{
		logger:        logger,
		redactPrompts: cfg.RedactPrompts,
	}
	return lm.Middleware
}

// Middleware wraps a handler with request logging.
func (m *LoggingMiddleware) Middleware(next transport.Handler) transport.Handler {
	return transport.HandlerFunc(func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
		if req.TraceID == "" {
			req.TraceID = uuid.New().String()
		}

		m.logRequest(ctx, req)

		start := time.Now()
		resp, err := next.Handle(ctx, req)
		duration := time.Since(start)

		if err != nil {
			m.logError(ctx, req, err, duration)
		} else if resp != nil {
			m.logSuccess(ctx, req, resp, duration)
		}
		return resp, err
	})
}

func (m *LoggingMiddleware) logRequest(ctx context.Context, req *transport.Request) {
	fields := []any{
		"request_id", req.TraceID,
		"provider", req.Provider,
		"model", req.Model,
		"max_tokens", req.MaxTokens,
		"temperature", req.Temperature,
		"timeout_seconds", req.Timeout.Seconds(),
	}

	if m.redactPrompts {
		fields = append(fields, "prompt_length", len(req.Prompt))
		if req.SystemPrompt != "" {
			fields = append(fields, "system_prompt_length", len(req.SystemPrompt))
		}
	} else {
		fields = append(fields, "prompt", req.Prompt)
		if req.SystemPrompt != "" {
			fields = append(fields, "system_prompt", req.SystemPrompt)
		}
	}

	m.logger.InfoContext(ctx, "LLM request started", fields...)
}

func (m *LoggingMiddleware) logError(ctx context.Context, req *transport.Request, err error, duration time.Duration) {
	m.logger.ErrorContext(ctx, "LLM request failed",
		"request_id", req.TraceID,
		"provider", req.Provider,
		"model", req.Model,
		"duration_ms", duration.Milliseconds(),
		"error_type", string(llmerrors.Classify(err)),
		"error", err.Error(),
	)
}

func (m *LoggingMiddleware) logSuccess(
	ctx context.Context,
	req *transport.Request,
	resp *transport.Response,
	duration time.Duration,
) {
	fields := []any{
		"request_id", req.TraceID,
		"provider", req.Provider,
		"model", req.Model,
		"duration_ms", duration.Milliseconds(),
		"finish_reason", resp.FinishReason,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"total_tokens", resp.Usage.TotalTokens,
		"provider_request_ids", strings.Join(resp.ProviderRequestIDs, ","),
	}

	if m.redactPrompts {
		fields = append(fields, "response_length", len(resp.Content))
	} else {
		content := resp.Content
		if len(content) > responsePreviewLength {
			content = content[:responsePreviewLength] + "..."
		}
		fields = append(fields, "response_preview", content)
	}

	m.logger.InfoContext(ctx, "LLM request completed", fields...)
}

package worker

import (
	"fmt"
	"log/slog"

	"github.com/ahrav/go-appraise/internal/llm"
	"github.com/ahrav/go-appraise/internal/llm/configuration"
)

// InitializeLLMClient creates the model client used by every activity.
// A nil cfg selects configuration.DefaultConfig with keys resolved from the
// environment.
func InitializeLLMClient(cfg *configuration.Config, logger *slog.Logger) (*llm.Client, error) {
	if cfg == nil {
		cfg = configuration.DefaultConfig()
		cfg.ResolveAPIKeys(nil)
	}

	client, err := llm.NewClient(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}
	return client, nil
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-appraise/internal/domain"
	"github.com/ahrav/go-appraise/internal/llm/configuration"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

// readRequest loads a paper and its characteristics from a YAML (or JSON) file.
func readRequest(path string) (*domain.AppraisalRequest, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: --input is required", domain.ErrInvalidInput)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	var req domain.AppraisalRequest
	if err := yaml.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", domain.ErrInvalidInput, path, err)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &req, nil
}

// loadConfig reads the LLM configuration and resolves API keys from the environment.
func loadConfig(path string) (*configuration.Config, error) {
	cfg, err := configuration.Load(path)
	if err != nil {
		return nil, err
	}
	cfg.ResolveAPIKeys(nil)
	return cfg, nil
}

// newLogger builds the process logger on stderr from the observability settings.
func newLogger(cfg configuration.ObservabilityConfig, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func writeOutput(w io.Writer, format string, v any) error {
	switch strings.ToLower(format) {
	case formatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (want json or yaml)", format)
	}
}

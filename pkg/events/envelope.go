// Package events provides the generic event infrastructure for domain event emission.
// It defines the Envelope type for wrapping domain events with consistent metadata
// and the EventSink interface for event storage/transmission.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// Envelope wraps domain events with consistent metadata for reliable event processing.
// This provides a generic container that can hold any domain-specific event payload
// while maintaining standard fields for routing, idempotency, and observability.
type Envelope struct {
	// ID uniquely identifies this event instance.
	ID string `json:"id"`

	// Type identifies the event for routing and processing.
	// Examples: "assessment.completed", "assessment.verdict_overridden"
	Type string `json:"type"`

	// Source identifies the component that emitted this event.
	Source string `json:"source"`

	// Version enables schema evolution, following semantic versioning.
	Version string `json:"version"`

	// Timestamp records when the event was emitted.
	Timestamp time.Time `json:"timestamp"`

	// IdempotencyKey ensures exactly-once processing during retries and replays.
	IdempotencyKey string `json:"idempotency_key"`

	// WorkflowID identifies the Temporal workflow that triggered this event.
	WorkflowID string `json:"workflow_id"`

	// RunID identifies the specific workflow execution run.
	RunID string `json:"run_id"`

	// Payload contains the domain-specific event data as JSON.
	// Schema varies by Type and Version.
	Payload json.RawMessage `json:"payload"`
}

// EventSink defines the interface for emitting events to downstream consumers.
// Implementations could include database outbox patterns, message queues,
// event streaming platforms, or even simple file/log outputs.
type EventSink interface {
	// Append adds an event to the sink with best-effort delivery.
	// Implementations should handle idempotency (duplicate events are no-ops)
	// and return quickly to avoid blocking the caller.
	Append(ctx context.Context, envelope Envelope) error
}

// NoOpEventSink is a null implementation of EventSink for testing or when events are disabled.
type NoOpEventSink struct{}

// Append implements EventSink.Append with no-op behavior.
func (n *NoOpEventSink) Append(_ context.Context, _ Envelope) error {
	return nil
}

// NewNoOpEventSink creates a new no-op event sink.
func NewNoOpEventSink() EventSink {
	return &NoOpEventSink{}
}

// LogEventSink writes each event as one structured log record.
// A repeated idempotency key is dropped while it remains among the
// sink's most recently seen keys.
type LogEventSink struct {
	logger *slog.Logger

	mu   sync.Mutex
	seen *keySet
}

// NewLogEventSink returns a sink logging to logger, or slog.Default() when nil,
// that remembers DefaultDedupeCapacity keys.
func NewLogEventSink(logger *slog.Logger) *LogEventSink {
	return NewBoundedLogEventSink(logger, DefaultDedupeCapacity)
}

// NewBoundedLogEventSink is NewLogEventSink with an explicit dedupe capacity.
// A non-positive capacity selects DefaultDedupeCapacity.
func NewBoundedLogEventSink(logger *slog.Logger, capacity int) *LogEventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogEventSink{logger: logger, seen: newKeySet(capacity)}
}

// Append implements EventSink.
func (s *LogEventSink) Append(ctx context.Context, envelope Envelope) error {
	s.mu.Lock()
	dup := s.seen.add(envelope.IdempotencyKey)
	s.mu.Unlock()
	if dup {
		return nil
	}

	s.logger.InfoContext(ctx, "event",
		"event_id", envelope.ID,
		"event_type", envelope.Type,
		"source", envelope.Source,
		"workflow_id", envelope.WorkflowID,
		"run_id", envelope.RunID,
		"payload", string(envelope.Payload))
	return nil
}

// MemoryEventSink keeps every event in memory, deduplicated by idempotency
// key. It grows without bound and is meant for tests and single local runs.
type MemoryEventSink struct {
	mu     sync.Mutex
	events []Envelope
	seen   map[string]struct{}
}

// NewMemoryEventSink creates an empty in-memory sink.
func NewMemoryEventSink() *MemoryEventSink {
	return &MemoryEventSink{seen: make(map[string]struct{})}
}

// Append implements EventSink.
func (s *MemoryEventSink) Append(_ context.Context, envelope Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.seen[envelope.IdempotencyKey]; dup {
		return nil
	}
	s.seen[envelope.IdempotencyKey] = struct{}{}
	s.events = append(s.events, envelope)
	return nil
}

// Events returns a copy of the stored events in append order.
func (s *MemoryEventSink) Events() []Envelope {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Envelope, len(s.events))
	copy(out, s.events)
	return out
}

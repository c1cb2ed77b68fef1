// Package activity provides common infrastructure for all Temporal activity implementations.
// It includes base types, context extraction, safe logging, and event emission utilities
// that are shared across the assessment activity packages.
package activity

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"

	"github.com/ahrav/go-appraise/pkg/events"
)

// Fallback identifiers used outside a Temporal activity context.
const (
	FallbackWorkflowID = "550e8400-e29b-41d4-a716-446655440000"
	FallbackActivityID = "local-activity"
)

// WorkflowContext contains metadata extracted from the Temporal activity context.
// This provides a consistent way to access workflow execution information across
// all activities, with fallback values for tests and direct calls.
type WorkflowContext struct {
	WorkflowID string
	RunID      string
	ActivityID string
}

// BaseActivities provides common infrastructure for all activity types.
// It handles event emission, context extraction, and safe logging in a way
// that works both in Temporal activity contexts and test environments.
type BaseActivities struct {
	eventSink events.EventSink
}

// NewBaseActivities creates a new BaseActivities instance with the provided event sink.
// The event sink can be nil when event emission is not needed.
func NewBaseActivities(sink events.EventSink) BaseActivities {
	return BaseActivities{eventSink: sink}
}

// GetWorkflowContext safely extracts workflow context from the activity context.
// Outside an activity (where activity.GetInfo panics) it returns the fallback
// workflow ID and a fresh run ID.
func (b *BaseActivities) GetWorkflowContext(ctx context.Context) WorkflowContext {
	var wfCtx WorkflowContext

	func() {
		defer func() {
			if r := recover(); r != nil {
				wfCtx.WorkflowID = FallbackWorkflowID
				wfCtx.RunID = "local-run-" + uuid.New().String()[:8]
				wfCtx.ActivityID = FallbackActivityID
			}
		}()

		info := activity.GetInfo(ctx)
		wfCtx.WorkflowID = info.WorkflowExecution.ID
		wfCtx.RunID = info.WorkflowExecution.RunID
		wfCtx.ActivityID = info.ActivityID
	}()

	return wfCtx
}

// EmitEventSafe provides best-effort event emission. Events must not fail the
// primary activity operation, so a sink error is logged and dropped. There is
// exactly one attempt per event.
func (b *BaseActivities) EmitEventSafe(
	ctx context.Context,
	envelope events.Envelope,
	description string,
) {
	if b.eventSink == nil {
		return
	}

	if err := b.eventSink.Append(ctx, envelope); err != nil {
		SafeLogError(ctx, fmt.Sprintf("Failed to emit %s", description),
			"event_type", envelope.Type,
			"error", err)
		return
	}

	SafeLog(ctx, fmt.Sprintf("Event emitted: %s", description),
		"event_type", envelope.Type,
		"idempotency_key", envelope.IdempotencyKey)
}

// RecordHeartbeat safely records a heartbeat in the Temporal activity context.
// This method is safe to call in non-activity contexts where it will be ignored.
func (b *BaseActivities) RecordHeartbeat(ctx context.Context, details ...any) {
	RecordHeartbeat(ctx, details...)
}

// SafeLog performs context-safe logging that works in both activity and test contexts.
// In a Temporal activity context, it uses the activity logger for structured logging.
// Elsewhere the call is ignored.
func SafeLog(ctx context.Context, msg string, keyvals ...any) {
	defer func() {
		_ = recover()
	}()
	activity.GetLogger(ctx).Info(msg, keyvals...)
}

// SafeLogWarn is SafeLog at WARN level.
func SafeLogWarn(ctx context.Context, msg string, keyvals ...any) {
	defer func() {
		_ = recover()
	}()
	activity.GetLogger(ctx).Warn(msg, keyvals...)
}

// SafeLogError is SafeLog at ERROR level.
func SafeLogError(ctx context.Context, msg string, keyvals ...any) {
	defer func() {
		_ = recover()
	}()
	activity.GetLogger(ctx).Error(msg, keyvals...)
}

// RecordHeartbeat safely records activity heartbeat with details.
// This method safely handles non-activity contexts.
func RecordHeartbeat(ctx context.Context, details ...any) {
	defer func() {
		_ = recover()
	}()
	activity.RecordHeartbeat(ctx, details...)
}

package appraisal

import (
	"context"
	"fmt"
	"time"

	"github.com/ahrav/go-appraise/internal/domain"
	"github.com/ahrav/go-appraise/pkg/activity"
	"github.com/ahrav/go-appraise/pkg/events"
)

// Producer identifies this package as the source of emitted events.
const Producer = "appraisal-activity"

// EventEmitter bridges domain event construction and the best-effort
// emission of pkg/activity. Failures are logged and never returned.
type EventEmitter struct{ base activity.BaseActivities }

// NewEventEmitter creates an EventEmitter over base.
func NewEventEmitter(base activity.BaseActivities) *EventEmitter {
	return &EventEmitter{base: base}
}

// EmitCompleted emits one assessment.completed event.
func (e *EventEmitter) EmitCompleted(
	ctx context.Context,
	wfCtx activity.WorkflowContext,
	payload domain.AssessmentCompletedPayload,
	occurredAt time.Time,
) {
	ev, err := domain.NewAssessmentCompletedEvent(wfCtx.WorkflowID, wfCtx.RunID, payload, Producer, occurredAt)
	if err != nil {
		activity.SafeLogError(ctx, "Failed to create AssessmentCompleted event",
			"assessment_id", payload.AssessmentID,
			"error", err)
		return
	}
	e.base.EmitEventSafe(ctx, toEnvelope(ev), "AssessmentCompleted")
}

// EmitOverridden emits one assessment.verdict_overridden event.
func (e *EventEmitter) EmitOverridden(
	ctx context.Context,
	wfCtx activity.WorkflowContext,
	payload domain.VerdictOverriddenPayload,
	occurredAt time.Time,
) {
	activity.SafeLogWarn(ctx, "Upstream verdict overridden",
		"field", payload.Field,
		"suggested", payload.Suggested,
		"computed", payload.Computed)

	ev, err := domain.NewVerdictOverriddenEvent(wfCtx.WorkflowID, wfCtx.RunID, payload, Producer, occurredAt)
	if err != nil {
		activity.SafeLogError(ctx, "Failed to create VerdictOverridden event",
			"assessment_id", payload.AssessmentID,
			"error", err)
		return
	}
	e.base.EmitEventSafe(ctx, toEnvelope(ev), "VerdictOverridden")
}

// toEnvelope converts a domain envelope into the transport envelope. The
// idempotency key doubles as the event ID.
func toEnvelope(ev domain.EventEnvelope) events.Envelope {
	return events.Envelope{
		ID:             ev.IdempotencyKey,
		Type:           string(ev.EventType),
		Source:         ev.Producer,
		Version:        fmt.Sprintf("%d.0.0", ev.Version),
		Timestamp:      ev.OccurredAt,
		IdempotencyKey: ev.IdempotencyKey,
		WorkflowID:     ev.WorkflowID,
		RunID:          ev.RunID,
		Payload:        ev.Payload,
	}
}

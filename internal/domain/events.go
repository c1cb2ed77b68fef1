package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents the type of event emitted by the system.
type EventType string

const (
	// EventTypeAssessmentCompleted is emitted once per successful assessment.
	EventTypeAssessmentCompleted EventType = "assessment.completed"

	// EventTypeVerdictOverridden is emitted when the computed overall verdict
	// replaced a different verdict suggested by the model.
	EventTypeVerdictOverridden EventType = "assessment.verdict_overridden"
)

// EventEnvelope wraps assessment events with workflow context and a
// deterministic idempotency key.
type EventEnvelope struct {
	IdempotencyKey string          `json:"idempotency_key" validate:"required"`
	EventType      EventType       `json:"event_type" validate:"required"`
	Version        int             `json:"version" validate:"required,min=1"`
	OccurredAt     time.Time       `json:"occurred_at" validate:"required"`
	WorkflowID     string          `json:"workflow_id" validate:"required"`
	RunID          string          `json:"run_id" validate:"required"`
	Payload        json.RawMessage `json:"payload" validate:"required"`
	Producer       string          `json:"producer" validate:"required"`
}

// Validate checks if the event envelope meets all requirements.
func (e *EventEnvelope) Validate() error { return validate.Struct(e) }

// AssessmentCompletedPayload summarizes a finished assessment.
type AssessmentCompletedPayload struct {
	AssessmentID      string      `json:"assessment_id" validate:"required,uuid"`
	PaperID           string      `json:"paper_id" validate:"required"`
	Methodology       Methodology `json:"methodology" validate:"required,oneof=grade cochrane_rob2 robins_i"`
	StudyDesign       StudyDesign `json:"study_design" validate:"required"`
	Verdict           string      `json:"verdict" validate:"required"`
	DomainCount       int         `json:"domain_count" validate:"min=1"`
	OverallConfidence float64     `json:"overall_confidence" validate:"min=0,max=1"`
}

// Validate checks if the payload meets all requirements.
func (p *AssessmentCompletedPayload) Validate() error { return validate.Struct(p) }

// VerdictOverriddenPayload records a discarded model suggestion.
type VerdictOverriddenPayload struct {
	AssessmentID string      `json:"assessment_id" validate:"required,uuid"`
	PaperID      string      `json:"paper_id" validate:"required"`
	Methodology  Methodology `json:"methodology" validate:"required,oneof=grade cochrane_rob2 robins_i"`
	Field        string      `json:"field" validate:"required"`
	Suggested    string      `json:"suggested" validate:"required"`
	Computed     string      `json:"computed" validate:"required,nefield=Suggested"`
}

// Validate checks if the payload meets all requirements.
func (p *VerdictOverriddenPayload) Validate() error { return validate.Struct(p) }

// GenerateIdempotencyKey creates a deterministic key for event deduplication.
// Activity retries and workflow replays produce the same key for the same
// logical event: H(assessment_id || suffix).
func GenerateIdempotencyKey(assessmentID, eventSuffix string) string {
	hasher := sha256.New()
	hasher.Write([]byte(assessmentID + eventSuffix))
	return hex.EncodeToString(hasher.Sum(nil))
}

// NewAssessmentCompletedEvent builds a validated AssessmentCompleted envelope.
func NewAssessmentCompletedEvent(
	workflowID, runID string,
	payload AssessmentCompletedPayload,
	producer string,
	occurredAt time.Time,
) (EventEnvelope, error) {
	if err := payload.Validate(); err != nil {
		return EventEnvelope{}, fmt.Errorf("invalid assessment completed payload: %w", err)
	}
	return newEventEnvelope(EventTypeAssessmentCompleted, workflowID, runID,
		GenerateIdempotencyKey(payload.AssessmentID, ":completed"), payload, producer, occurredAt)
}

// NewVerdictOverriddenEvent builds a validated VerdictOverridden envelope.
func NewVerdictOverriddenEvent(
	workflowID, runID string,
	payload VerdictOverriddenPayload,
	producer string,
	occurredAt time.Time,
) (EventEnvelope, error) {
	if err := payload.Validate(); err != nil {
		return EventEnvelope{}, fmt.Errorf("invalid verdict overridden payload: %w", err)
	}
	return newEventEnvelope(EventTypeVerdictOverridden, workflowID, runID,
		GenerateIdempotencyKey(payload.AssessmentID, ":override:"+payload.Field), payload, producer, occurredAt)
}

func newEventEnvelope(
	eventType EventType,
	workflowID, runID, idempotencyKey string,
	payload any,
	producer string,
	occurredAt time.Time,
) (EventEnvelope, error) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return EventEnvelope{}, fmt.Errorf("failed to marshal payload: %w", err)
	}

	envelope := EventEnvelope{
		IdempotencyKey: idempotencyKey,
		EventType:      eventType,
		Version:        1,
		OccurredAt:     occurredAt,
		WorkflowID:     workflowID,
		RunID:          runID,
		Payload:        payloadJSON,
		Producer:       producer,
	}
	if err := envelope.Validate(); err != nil {
		return EventEnvelope{}, fmt.Errorf("invalid event envelope: %w", err)
	}
	return envelope, nil
}

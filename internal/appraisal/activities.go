// Package appraisal exposes the GRADE, Cochrane RoB 2.0 and ROBINS-I
// assessors as Temporal activities.
//
// Every failure is returned as a non-retryable application error whose type
// is the domain.ErrorKind of the cause, so a workflow can branch on the kind
// without unwrapping.
package appraisal

import (
	"context"

	"go.temporal.io/sdk/temporal"

	"github.com/ahrav/go-appraise/internal/assessment"
	"github.com/ahrav/go-appraise/internal/cochrane"
	"github.com/ahrav/go-appraise/internal/domain"
	"github.com/ahrav/go-appraise/internal/grade"
	"github.com/ahrav/go-appraise/internal/llm"
	"github.com/ahrav/go-appraise/internal/robinsi"
	pkgactivity "github.com/ahrav/go-appraise/pkg/activity"
)

// Activity names as registered with the worker.
const (
	ActivityAssessGRADE       = "AssessGRADE"
	ActivityAssessCochraneRoB = "AssessCochraneRoB"
	ActivityAssessROBINSI     = "AssessROBINSI"
)

// Activities runs one assessment per activity call and emits its events.
type Activities struct {
	pkgactivity.BaseActivities
	grade    *grade.Assessor
	cochrane *cochrane.Assessor
	robinsi  *robinsi.Assessor
	events   *EventEmitter
}

// NewActivities builds the three assessors over one provider. The options are
// shared by all of them.
func NewActivities(
	base pkgactivity.BaseActivities,
	provider llm.Provider,
	opts ...assessment.Option,
) (*Activities, error) {
	g, err := grade.NewAssessor(provider, opts...)
	if err != nil {
		return nil, err
	}
	c, err := cochrane.NewAssessor(provider, opts...)
	if err != nil {
		return nil, err
	}
	r, err := robinsi.NewAssessor(provider, opts...)
	if err != nil {
		return nil, err
	}
	return &Activities{
		BaseActivities: base,
		grade:          g,
		cochrane:       c,
		robinsi:        r,
		events:         NewEventEmitter(base),
	}, nil
}

// AssessGRADE rates the certainty of evidence of the requested paper.
func (a *Activities) AssessGRADE(ctx context.Context, req domain.AppraisalRequest) (*domain.GRADEAssessment, error) {
	wfCtx := a.start(ctx, ActivityAssessGRADE, req)
	result, err := a.grade.Assess(ctx, &req.Paper, &req.Characteristics)
	if err != nil {
		return nil, a.fail(ctx, ActivityAssessGRADE, err)
	}

	a.events.EmitCompleted(ctx, wfCtx, domain.AssessmentCompletedPayload{
		AssessmentID:      result.ID,
		PaperID:           result.PaperID,
		Methodology:       domain.MethodologyGRADE,
		StudyDesign:       result.StudyDesign,
		Verdict:           string(result.OverallCertainty),
		DomainCount:       len(result.DomainAssessments),
		OverallConfidence: result.OverallConfidence,
	}, result.AssessedAt)
	if result.SuggestedStartingLevel != "" && result.SuggestedStartingLevel != result.StartingLevel {
		a.events.EmitOverridden(ctx, wfCtx, domain.VerdictOverriddenPayload{
			AssessmentID: result.ID,
			PaperID:      result.PaperID,
			Methodology:  domain.MethodologyGRADE,
			Field:        "starting_level",
			Suggested:    string(result.SuggestedStartingLevel),
			Computed:     string(result.StartingLevel),
		}, result.AssessedAt)
	}

	pkgactivity.SafeLog(ctx, "AssessGRADE completed",
		"paper_id", result.PaperID,
		"overall_certainty", result.OverallCertainty,
		"total_downgrades", result.TotalDowngrades)
	return result, nil
}

// AssessCochraneRoB rates the risk of bias of a randomized trial.
func (a *Activities) AssessCochraneRoB(
	ctx context.Context,
	req domain.AppraisalRequest,
) (*domain.CochraneRoBAssessment, error) {
	wfCtx := a.start(ctx, ActivityAssessCochraneRoB, req)
	result, err := a.cochrane.Assess(ctx, &req.Paper, &req.Characteristics)
	if err != nil {
		return nil, a.fail(ctx, ActivityAssessCochraneRoB, err)
	}

	a.events.EmitCompleted(ctx, wfCtx, domain.AssessmentCompletedPayload{
		AssessmentID:      result.ID,
		PaperID:           result.PaperID,
		Methodology:       domain.MethodologyCochraneRoB,
		StudyDesign:       result.StudyDesign,
		Verdict:           string(result.OverallRisk),
		DomainCount:       len(result.DomainAssessments),
		OverallConfidence: result.OverallConfidence,
	}, result.AssessedAt)
	if result.Overridden() {
		a.events.EmitOverridden(ctx, wfCtx, domain.VerdictOverriddenPayload{
			AssessmentID: result.ID,
			PaperID:      result.PaperID,
			Methodology:  domain.MethodologyCochraneRoB,
			Field:        "overall_risk",
			Suggested:    string(result.SuggestedOverallRisk),
			Computed:     string(result.OverallRisk),
		}, result.AssessedAt)
	}

	pkgactivity.SafeLog(ctx, "AssessCochraneRoB completed",
		"paper_id", result.PaperID,
		"overall_risk", result.OverallRisk)
	return result, nil
}

// AssessROBINSI rates the risk of bias of a non-randomized study.
func (a *Activities) AssessROBINSI(
	ctx context.Context,
	req domain.AppraisalRequest,
) (*domain.ROBINSIAssessment, error) {
	wfCtx := a.start(ctx, ActivityAssessROBINSI, req)
	result, err := a.robinsi.Assess(ctx, &req.Paper, &req.Characteristics)
	if err != nil {
		return nil, a.fail(ctx, ActivityAssessROBINSI, err)
	}

	a.events.EmitCompleted(ctx, wfCtx, domain.AssessmentCompletedPayload{
		AssessmentID:      result.ID,
		PaperID:           result.PaperID,
		Methodology:       domain.MethodologyROBINSI,
		StudyDesign:       result.StudyDesign,
		Verdict:           string(result.OverallBias),
		DomainCount:       len(result.DomainAssessments),
		OverallConfidence: result.OverallConfidence,
	}, result.AssessedAt)
	if result.Overridden() {
		a.events.EmitOverridden(ctx, wfCtx, domain.VerdictOverriddenPayload{
			AssessmentID: result.ID,
			PaperID:      result.PaperID,
			Methodology:  domain.MethodologyROBINSI,
			Field:        "overall_bias",
			Suggested:    string(result.SuggestedOverallBias),
			Computed:     string(result.OverallBias),
		}, result.AssessedAt)
	}

	pkgactivity.SafeLog(ctx, "AssessROBINSI completed",
		"paper_id", result.PaperID,
		"overall_bias", result.OverallBias,
		"target_trial_synthesized", result.TargetTrialSynthesized)
	return result, nil
}

func (a *Activities) start(ctx context.Context, name string, req domain.AppraisalRequest) pkgactivity.WorkflowContext {
	wfCtx := a.GetWorkflowContext(ctx)
	pkgactivity.SafeLog(ctx, "Starting "+name+" activity",
		"workflow_id", wfCtx.WorkflowID,
		"activity_id", wfCtx.ActivityID,
		"paper_id", req.Paper.ID,
		"study_design", req.Characteristics.StudyDesign)
	return wfCtx
}

func (a *Activities) fail(ctx context.Context, name string, err error) error {
	kind := domain.KindOf(err)
	pkgactivity.SafeLogError(ctx, name+" failed", "kind", kind, "error", err)
	return nonRetryable(kind, err)
}

// nonRetryable tags err with its ErrorKind. Assessments are never retried.
func nonRetryable(kind domain.ErrorKind, err error) error {
	return temporal.NewNonRetryableApplicationError(err.Error(), kind.String(), err)
}

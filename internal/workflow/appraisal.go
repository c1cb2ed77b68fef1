package workflow

import (
	"errors"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/ahrav/go-appraise/internal/appraisal"
	"github.com/ahrav/go-appraise/internal/domain"
)

// DefaultActivityTimeout bounds one assessment when the request sets none.
const DefaultActivityTimeout = 5 * time.Minute

// AppraisalWorkflow runs GRADE and then the risk-of-bias tool recommended for
// the study design, one activity at a time. Activities are attempted exactly
// once; any failure ends the workflow with the activity's error.
func AppraisalWorkflow(ctx workflow.Context, req domain.AppraisalRequest) (*domain.AppraisalReport, error) {
	const currentVersion = 1
	_ = workflow.GetVersion(ctx, "appraisal.v", workflow.DefaultVersion, currentVersion)

	if err := req.Validate(); err != nil {
		return nil, temporal.NewNonRetryableApplicationError(
			"invalid appraisal request",
			domain.KindInvalidInput.String(),
			err,
		)
	}

	timeout := DefaultActivityTimeout
	if req.TimeoutSeconds > 0 {
		timeout = time.Duration(req.TimeoutSeconds) * time.Second
	}
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: timeout,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	})
	logger := workflow.GetLogger(ctx)

	report := &domain.AppraisalReport{
		PaperID:     req.Paper.ID,
		StudyDesign: req.Characteristics.StudyDesign,
	}

	if err := workflow.ExecuteActivity(ctx, appraisal.ActivityAssessGRADE, req).Get(ctx, &report.GRADE); err != nil {
		return nil, err
	}

	tool, ok := domain.RecommendedRiskOfBiasTool(req.Characteristics.StudyDesign)
	if !ok {
		logger.Info("No risk-of-bias tool applies to study design",
			"paper_id", req.Paper.ID,
			"study_design", req.Characteristics.StudyDesign)
		return report, nil
	}
	report.RiskOfBiasTool = tool

	var err error
	switch tool {
	case domain.MethodologyCochraneRoB:
		err = workflow.ExecuteActivity(ctx, appraisal.ActivityAssessCochraneRoB, req).Get(ctx, &report.CochraneRoB)
	case domain.MethodologyROBINSI:
		err = workflow.ExecuteActivity(ctx, appraisal.ActivityAssessROBINSI, req).Get(ctx, &report.ROBINSI)
	default:
		err = errors.New("unhandled risk-of-bias tool " + string(tool))
	}
	if err != nil {
		return nil, err
	}

	logger.Info("Appraisal completed", "paper_id", req.Paper.ID, "risk_of_bias_tool", tool)
	return report, nil
}

package worker

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"
	"go.uber.org/mock/gomock"

	"github.com/ahrav/go-appraise/internal/assessment"
	"github.com/ahrav/go-appraise/internal/domain"
	"github.com/ahrav/go-appraise/internal/llm"
	"github.com/ahrav/go-appraise/internal/llm/configuration"
	"github.com/ahrav/go-appraise/pkg/events"
)

func TestRegisterAll_EndToEnd(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := llm.NewMockProvider(ctrl)
	gomock.InOrder(
		provider.EXPECT().CompleteJSON(gomock.Any(), gomock.Any()).Return(&llm.Completion{JSONData: map[string]any{
			"domains": []any{
				map[string]any{"domain": "risk_of_bias", "rating": "not_serious", "justification": "j", "confidence": 0.9},
			},
			"final_grade":        "high",
			"summary":            "s",
			"overall_confidence": 0.9,
		}}, nil),
		provider.EXPECT().CompleteJSON(gomock.Any(), gomock.Any()).Return(&llm.Completion{JSONData: map[string]any{
			"domains": []any{
				map[string]any{"domain": "randomization", "judgment": "some_concerns", "justification": "j", "confidence": 0.9},
				map[string]any{"domain": "deviations_from_intended_interventions", "judgment": "some_concerns", "justification": "j", "confidence": 0.9},
			},
			"overall_risk":       "some_concerns",
			"summary":            "s",
			"overall_confidence": 0.9,
		}}, nil),
	)

	suite := &testsuite.WorkflowTestSuite{}
	env := suite.NewTestWorkflowEnvironment()
	sink := events.NewMemoryEventSink()
	require.NoError(t, RegisterAll(env, provider, sink,
		assessment.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))))

	env.ExecuteWorkflow(WorkflowName, domain.AppraisalRequest{
		Paper:           domain.Paper{ID: "rct-1", Sections: map[string]string{"methods": "m", "results": "r"}},
		Characteristics: domain.StudyCharacteristics{StudyDesign: domain.DesignRCT},
	})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var report *domain.AppraisalReport
	require.NoError(t, env.GetWorkflowResult(&report))
	assert.Equal(t, domain.GRADEHigh, report.GRADE.OverallCertainty)
	require.NotNil(t, report.CochraneRoB)
	assert.Equal(t, domain.RoBHigh, report.CochraneRoB.OverallRisk)
	assert.Equal(t, domain.RoBSomeConcerns, report.CochraneRoB.SuggestedOverallRisk)
	assert.Nil(t, report.ROBINSI)

	// completed x2 plus one override
	assert.Len(t, sink.Events(), 3)
}

func TestRegisterAll_NilProvider(t *testing.T) {
	env := (&testsuite.WorkflowTestSuite{}).NewTestWorkflowEnvironment()
	err := RegisterAll(env, nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestInitializeLLMClient(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := configuration.DefaultConfig()
	cfg.ResolveAPIKeys(func(string) (string, bool) { return "", false })
	_, err := InitializeLLMClient(cfg, logger)
	require.Error(t, err)
	assert.ErrorIs(t, err, configuration.ErrMissingAPIKey)

	cfg = configuration.DefaultConfig()
	p := cfg.Providers[cfg.DefaultProvider]
	p.APIKey = "sk-test"
	cfg.Providers[cfg.DefaultProvider] = p
	client, err := InitializeLLMClient(cfg, logger)
	require.NoError(t, err)
	assert.NotNil(t, client)
}

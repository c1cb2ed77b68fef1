package robinsi

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ahrav/go-appraise/internal/domain"
	"github.com/ahrav/go-appraise/internal/llm"
)

const fixedID = "9b2e4f8a-1c3d-4e5f-8a7b-6c5d4e3f2a1b"

func newTestAssessor(t *testing.T, provider llm.Provider, out io.Writer) *Assessor {
	t.Helper()
	if out == nil {
		out = io.Discard
	}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	a, err := NewAssessor(provider,
		WithLogger(logger),
		WithClock(func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }),
		WithIDGenerator(func() string { return fixedID }),
	)
	require.NoError(t, err)
	return a
}

func cohortPaper() *domain.Paper {
	return &domain.Paper{
		ID: "cohort-3",
		Sections: map[string]string{
			"title":                 "Exercise and cardiovascular events",
			"Materials and Methods": "Prospective cohort of 12,000 adults.",
			"Results":               "Hazard ratio 0.8.",
		},
	}
}

func pico(design domain.StudyDesign) *domain.StudyCharacteristics {
	return &domain.StudyCharacteristics{
		StudyDesign:          design,
		Population:           "Adults 40-65",
		InterventionExposure: "Daily exercise",
		Comparator:           "No structured exercise",
		PrimaryOutcome:       "Cardiovascular events",
	}
}

func modelResponse(targetTrial, overall string, levels ...domain.ROBINSILevel) map[string]any {
	domains := make([]any, 0, len(levels))
	for i, l := range levels {
		domains = append(domains, map[string]any{
			"domain":              string(domain.ROBINSIDomains[i%len(domain.ROBINSIDomains)]),
			"level":               string(l),
			"justification":       "judged from methods",
			"confidence":          0.7,
			"signaling_questions": []any{"1.1 yes"},
		})
	}
	resp := map[string]any{
		"target_trial":       targetTrial,
		"domains":            domains,
		"summary":            "summary",
		"overall_confidence": 0.6,
	}
	if overall != "" {
		resp["overall_bias"] = overall
	}
	return resp
}

func expectResponse(provider *llm.MockProvider, data map[string]any) {
	provider.EXPECT().
		CompleteJSON(gomock.Any(), gomock.Any()).
		Return(&llm.Completion{JSONData: data}, nil)
}

const longTrial = "Pragmatic RCT of supervised exercise versus usual care in middle-aged adults"

func TestAssess_WorstDomainWins(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := llm.NewMockProvider(ctrl)
	expectResponse(provider, modelResponse(longTrial, "serious",
		domain.ROBINSILow, domain.ROBINSIModerate, domain.ROBINSISerious, domain.ROBINSICritical,
		domain.ROBINSILow, domain.ROBINSILow, domain.ROBINSILow))

	got, err := newTestAssessor(t, provider, nil).Assess(context.Background(), cohortPaper(), pico(domain.DesignCohort))
	require.NoError(t, err)

	assert.Equal(t, domain.ROBINSICritical, got.OverallBias)
	assert.Equal(t, domain.ROBINSISerious, got.SuggestedOverallBias)
	assert.True(t, got.Overridden())
	assert.Equal(t, longTrial, got.TargetTrialDescription)
	assert.False(t, got.TargetTrialSynthesized)
	require.Len(t, got.DomainAssessments, 7)
	assert.Equal(t, []string{"1.1 yes"}, got.DomainAssessments[0].SignalingQuestions)
}

func TestAssess_NoInformationRanksAboveLow(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := llm.NewMockProvider(ctrl)
	expectResponse(provider, modelResponse(longTrial, "no_information",
		domain.ROBINSILow, domain.ROBINSINoInformation, domain.ROBINSILow))

	got, err := newTestAssessor(t, provider, nil).Assess(context.Background(), cohortPaper(), pico(domain.DesignCaseControl))
	require.NoError(t, err)

	assert.Equal(t, domain.ROBINSINoInformation, got.OverallBias)
	assert.False(t, got.Overridden())
}

func TestAssess_SynthesizesTargetTrial(t *testing.T) {
	for _, upstream := range []string{"", "RCT of exercise"} {
		t.Run("upstream="+upstream, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			provider := llm.NewMockProvider(ctrl)
			expectResponse(provider, modelResponse(upstream, "", domain.ROBINSIModerate))

			var logs strings.Builder
			got, err := newTestAssessor(t, provider, &logs).Assess(context.Background(), cohortPaper(), pico(domain.DesignCohort))
			require.NoError(t, err)

			assert.True(t, got.TargetTrialSynthesized)
			for _, field := range []string{"Adults 40-65", "Daily exercise", "No structured exercise", "Cardiovascular events"} {
				assert.Contains(t, got.TargetTrialDescription, field)
			}
			assert.Contains(t, logs.String(), "target trial description missing or too short")
		})
	}
}

func TestAssess_NullTargetTrialIsSynthesized(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := llm.NewMockProvider(ctrl)
	resp := modelResponse("", "", domain.ROBINSISerious)
	resp["target_trial"] = nil
	expectResponse(provider, resp)

	got, err := newTestAssessor(t, provider, nil).Assess(context.Background(), cohortPaper(), pico(domain.DesignCohort))
	require.NoError(t, err)

	assert.True(t, got.TargetTrialSynthesized)
	assert.Equal(t, domain.ROBINSISerious, got.OverallBias)
	assert.Contains(t, got.TargetTrialDescription, "Daily exercise")
}

func TestAssess_SynthesizedTargetTrialPlaceholders(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := llm.NewMockProvider(ctrl)
	expectResponse(provider, modelResponse("", "", domain.ROBINSILow))

	got, err := newTestAssessor(t, provider, nil).Assess(context.Background(), cohortPaper(),
		&domain.StudyCharacteristics{StudyDesign: domain.DesignCohort, Population: "Adults"})
	require.NoError(t, err)

	assert.Equal(t,
		"Hypothetical RCT comparing not specified vs not specified in Adults measuring not specified",
		got.TargetTrialDescription)
}

func TestAssess_CaseSeriesNote(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := llm.NewMockProvider(ctrl)
	expectResponse(provider, modelResponse(longTrial, "", domain.ROBINSILow))

	var logs strings.Builder
	got, err := newTestAssessor(t, provider, &logs).Assess(context.Background(), cohortPaper(), pico(domain.DesignCaseSeries))
	require.NoError(t, err)

	assert.Equal(t, domain.ROBINSILow, got.OverallBias)
	assert.Contains(t, logs.String(), "comparison group")
	assert.Contains(t, logs.String(), "level=INFO")
}

func TestAssess_NotApplicable(t *testing.T) {
	for _, design := range []domain.StudyDesign{
		domain.DesignRCT,
		domain.DesignCrossSectional,
		domain.DesignSystematicReview,
		domain.DesignMetaAnalysis,
		domain.DesignOther,
	} {
		t.Run(string(design), func(t *testing.T) {
			ctrl := gomock.NewController(t)
			provider := llm.NewMockProvider(ctrl)
			provider.EXPECT().CompleteJSON(gomock.Any(), gomock.Any()).Times(0)

			_, err := newTestAssessor(t, provider, nil).Assess(context.Background(), cohortPaper(), pico(design))
			require.ErrorIs(t, err, domain.ErrMethodologyNotApplicable)
			assert.NotErrorIs(t, err, domain.ErrAssessmentFailed)
		})
	}
}

func TestAssess_RCTHint(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := llm.NewMockProvider(ctrl)

	_, err := newTestAssessor(t, provider, nil).Assess(context.Background(), cohortPaper(), pico(domain.DesignRCT))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cochrane RoB 2.0")
}

func TestAssess_UnknownLevelFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := llm.NewMockProvider(ctrl)
	expectResponse(provider, modelResponse(longTrial, "", domain.ROBINSILevel("unclear")))

	got, err := newTestAssessor(t, provider, nil).Assess(context.Background(), cohortPaper(), pico(domain.DesignCohort))

	assert.Nil(t, got)
	require.ErrorIs(t, err, domain.ErrAssessmentFailed)
	assert.ErrorIs(t, err, domain.ErrUnknownEnumValue)
}

func TestAssess_MissingSectionsWarn(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := llm.NewMockProvider(ctrl)
	expectResponse(provider, modelResponse(longTrial, "", domain.ROBINSILow))

	var logs strings.Builder
	paper := &domain.Paper{ID: "bare"}
	_, err := newTestAssessor(t, provider, &logs).Assess(context.Background(), paper, pico(domain.DesignCohort))
	require.NoError(t, err)

	assert.Contains(t, logs.String(), "no methods section found")
	assert.Contains(t, logs.String(), "no results section found")
}

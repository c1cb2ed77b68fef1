package assessment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ahrav/go-appraise/internal/domain"
	"github.com/ahrav/go-appraise/internal/llm"
	"github.com/ahrav/go-appraise/internal/prompts"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func testPaper() *domain.Paper {
	return &domain.Paper{
		ID:    "paper-1",
		Title: "A trial",
		Sections: map[string]string{
			"Methods": strings.Repeat("m", 6000),
			"Results": strings.Repeat("r", 6000),
		},
	}
}

func TestNewPipeline_NilProvider(t *testing.T) {
	_, err := NewPipeline(nil, CochraneProfile)

	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
}

func TestCheckInputs(t *testing.T) {
	chars := &domain.StudyCharacteristics{StudyDesign: domain.DesignRCT}

	tests := []struct {
		name  string
		paper *domain.Paper
		chars *domain.StudyCharacteristics
		ok    bool
	}{
		{name: "valid", paper: testPaper(), chars: chars, ok: true},
		{name: "nil paper", paper: nil, chars: chars},
		{name: "nil characteristics", paper: testPaper(), chars: nil},
		{name: "paper without id", paper: &domain.Paper{}, chars: chars},
		{name: "characteristics without design", paper: testPaper(), chars: &domain.StudyCharacteristics{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckInputs(tt.paper, tt.chars)
			if tt.ok {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.NotErrorIs(t, err, domain.ErrAssessmentFailed)
		})
	}
}

func TestPipeline_Run_TruncatesAndDecodes(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := llm.NewMockProvider(ctrl)

	tmpl, err := prompts.Parse("probe", "{{.Methods}}|{{.Results}}")
	require.NoError(t, err)

	provider.EXPECT().
		CompleteJSON(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req llm.CompletionRequest) (*llm.Completion, error) {
			parts := strings.Split(req.Prompt, "|")
			require.Len(t, parts, 2)
			assert.Equal(t, 4000, utf8.RuneCountInString(parts[0]))
			assert.Equal(t, 2000, utf8.RuneCountInString(parts[1]))
			assert.Equal(t, int64(4000), req.MaxTokens)
			assert.InDelta(t, 0.1, req.Temperature, 1e-9)
			return &llm.Completion{JSONData: validCochraneResponse()}, nil
		})

	p, err := NewPipeline(provider, CochraneProfile, WithLogger(discard), WithPromptTemplate(tmpl))
	require.NoError(t, err)

	var out struct {
		Summary string `mapstructure:"summary"`
	}
	chars := &domain.StudyCharacteristics{StudyDesign: domain.DesignRCT}
	require.NoError(t, p.Run(context.Background(), testPaper(), chars, p.Logger(testPaper()), &out))
	assert.Equal(t, "well conducted", out.Summary)
}

func TestPipeline_Run_ROBINSIFieldBudget(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := llm.NewMockProvider(ctrl)

	tmpl, err := prompts.Parse("probe", "{{.Title}}|{{.Population}}|{{.Comparator}}")
	require.NoError(t, err)

	provider.EXPECT().
		CompleteJSON(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req llm.CompletionRequest) (*llm.Completion, error) {
			parts := strings.Split(req.Prompt, "|")
			assert.Equal(t, 500, utf8.RuneCountInString(parts[0]))
			assert.Equal(t, 500, utf8.RuneCountInString(parts[1]))
			assert.Equal(t, domain.NotSpecified, parts[2])
			assert.Equal(t, int64(5000), req.MaxTokens)
			return nil, errors.New("stop here")
		})

	p, err := NewPipeline(provider, ROBINSIProfile, WithLogger(discard), WithPromptTemplate(tmpl))
	require.NoError(t, err)

	paper := testPaper()
	paper.Title = strings.Repeat("é", 900)
	chars := &domain.StudyCharacteristics{StudyDesign: domain.DesignCohort, Population: strings.Repeat("p", 900)}

	err = p.Run(context.Background(), paper, chars, discard, &struct{}{})
	require.ErrorIs(t, err, domain.ErrAssessmentFailed)
}

func TestPipeline_Run_Failures(t *testing.T) {
	providerErr := errors.New("upstream exploded")

	tests := []struct {
		name       string
		completion *llm.Completion
		err        error
		wantCause  error
	}{
		{name: "provider error", err: providerErr, wantCause: providerErr},
		{name: "nil completion", completion: nil, wantCause: domain.ErrMissingField},
		{
			name:       "missing field",
			completion: &llm.Completion{JSONData: map[string]any{"domains": []any{}}},
			wantCause:  domain.ErrMissingField,
		},
		{
			name: "unknown enum",
			completion: &llm.Completion{JSONData: func() map[string]any {
				d := validCochraneResponse()
				d["overall_risk"] = "catastrophic"
				return d
			}()},
			wantCause: domain.ErrUnknownEnumValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			provider := llm.NewMockProvider(ctrl)
			provider.EXPECT().CompleteJSON(gomock.Any(), gomock.Any()).Return(tt.completion, tt.err)

			p, err := NewPipeline(provider, CochraneProfile, WithLogger(discard))
			require.NoError(t, err)

			var out map[string]any
			chars := &domain.StudyCharacteristics{StudyDesign: domain.DesignRCT}
			err = p.Run(context.Background(), testPaper(), chars, discard, &out)

			require.ErrorIs(t, err, domain.ErrAssessmentFailed)
			require.ErrorIs(t, err, tt.wantCause)
			var assessErr *domain.AssessmentError
			require.ErrorAs(t, err, &assessErr)
			assert.Equal(t, domain.MethodologyCochraneRoB, assessErr.Methodology)
			assert.Equal(t, domain.KindAssessmentFailed, domain.KindOf(err))
		})
	}
}

// Package assessment holds the pipeline shared by the GRADE, Cochrane RoB 2.0
// and ROBINS-I assessors: input checks, prompt assembly, the model call,
// response schema validation and decoding.
package assessment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahrav/go-appraise/internal/domain"
	"github.com/ahrav/go-appraise/internal/llm"
	"github.com/ahrav/go-appraise/internal/prompts"
)

// Profile fixes the per-methodology prompt budgets and sampling parameters.
// Limits count runes; zero leaves the field untruncated.
type Profile struct {
	Methodology  domain.Methodology
	MethodsLimit int
	ResultsLimit int
	TitleLimit   int
	FieldLimit   int
	MaxTokens    int64
	Temperature  float64
}

// Built-in profiles.
var (
	GRADEProfile = Profile{
		Methodology:  domain.MethodologyGRADE,
		MethodsLimit: 4000,
		ResultsLimit: 3000,
		MaxTokens:    4000,
		Temperature:  0.1,
	}
	CochraneProfile = Profile{
		Methodology:  domain.MethodologyCochraneRoB,
		MethodsLimit: 4000,
		ResultsLimit: 2000,
		MaxTokens:    4000,
		Temperature:  0.1,
	}
	ROBINSIProfile = Profile{
		Methodology:  domain.MethodologyROBINSI,
		MethodsLimit: 5000,
		ResultsLimit: 3000,
		TitleLimit:   500,
		FieldLimit:   500,
		MaxTokens:    5000,
		Temperature:  0.1,
	}
)

// Pipeline runs one model-backed assessment step for a methodology. It holds
// no per-call state and is safe for concurrent use.
type Pipeline struct {
	provider llm.Provider
	profile  Profile
	opts     Options
}

// NewPipeline validates its collaborators and applies options.
func NewPipeline(provider llm.Provider, profile Profile, opts ...Option) (*Pipeline, error) {
	if provider == nil {
		return nil, fmt.Errorf("%w: provider cannot be nil", domain.ErrInvalidInput)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Template == nil {
		t, err := prompts.Default(profile.Methodology)
		if err != nil {
			return nil, err
		}
		o.Template = t
	}

	return &Pipeline{provider: provider, profile: profile, opts: o}, nil
}

// Methodology returns the methodology the pipeline serves.
func (p *Pipeline) Methodology() domain.Methodology { return p.profile.Methodology }

// Now returns the assessment timestamp.
func (p *Pipeline) Now() time.Time { return p.opts.Clock() }

// NewID returns a fresh assessment ID.
func (p *Pipeline) NewID() string { return p.opts.NewID() }

// Logger returns the logger scoped to one paper.
func (p *Pipeline) Logger(paper *domain.Paper) *slog.Logger {
	return p.opts.Logger.With("paper_id", paper.ID, "methodology", string(p.profile.Methodology))
}

// CheckInputs rejects absent or structurally invalid inputs with
// domain.ErrInvalidInput. The result is never an AssessmentError.
func CheckInputs(paper *domain.Paper, chars *domain.StudyCharacteristics) error {
	if paper == nil {
		return fmt.Errorf("%w: paper cannot be nil", domain.ErrInvalidInput)
	}
	if chars == nil {
		return fmt.Errorf("%w: characteristics cannot be nil", domain.ErrInvalidInput)
	}
	if err := paper.Validate(); err != nil {
		return fmt.Errorf("%w: paper: %w", domain.ErrInvalidInput, err)
	}
	if err := chars.Validate(); err != nil {
		return fmt.Errorf("%w: characteristics: %w", domain.ErrInvalidInput, err)
	}
	return nil
}

// PromptData assembles truncated prompt inputs. Missing methods or results
// sections are logged and sent as empty text.
func (p *Pipeline) PromptData(paper *domain.Paper, chars *domain.StudyCharacteristics, logger *slog.Logger) prompts.Data {
	methods := paper.MethodsText()
	if methods == "" {
		logger.Warn("no methods section found")
	}
	results := paper.ResultsText()
	if results == "" {
		logger.Warn("no results section found")
	}

	return prompts.Data{
		Title:        domain.Truncate(paper.DisplayTitle(), p.profile.TitleLimit),
		StudyDesign:  chars.StudyDesign,
		Methods:      domain.Truncate(methods, p.profile.MethodsLimit),
		Results:      domain.Truncate(results, p.profile.ResultsLimit),
		Population:   domain.Truncate(domain.OrNotSpecified(chars.Population), p.profile.FieldLimit),
		Intervention: domain.Truncate(domain.OrNotSpecified(chars.InterventionExposure), p.profile.FieldLimit),
		Comparator:   domain.Truncate(domain.OrNotSpecified(chars.Comparator), p.profile.FieldLimit),
		Outcome:      domain.Truncate(domain.OrNotSpecified(chars.PrimaryOutcome), p.profile.FieldLimit),
	}
}

// Run renders the prompt, calls the model once, validates the response
// against the methodology schema and decodes it into out. Every failure is
// an AssessmentError.
func (p *Pipeline) Run(
	ctx context.Context,
	paper *domain.Paper,
	chars *domain.StudyCharacteristics,
	logger *slog.Logger,
	out any,
) error {
	prompt, err := p.opts.Template.Render(p.PromptData(paper, chars, logger))
	if err != nil {
		return p.Fail(logger, "prompt rendering failed", err)
	}

	logger.DebugContext(ctx, "calling LLM", "prompt_length", len(prompt), "max_tokens", p.profile.MaxTokens)
	completion, err := p.provider.CompleteJSON(ctx, llm.CompletionRequest{
		Prompt:      prompt,
		MaxTokens:   p.profile.MaxTokens,
		Temperature: p.profile.Temperature,
	})
	if err != nil {
		return p.Fail(logger, "model call failed", err)
	}
	if completion == nil || completion.JSONData == nil {
		return p.Fail(logger, "model returned no JSON object", domain.ErrMissingField)
	}
	if completion.Repaired {
		logger.DebugContext(ctx, "model output required JSON repair")
	}

	if err := ValidateResponse(p.profile.Methodology, completion.JSONData); err != nil {
		return p.Fail(logger, "failed to parse response", err)
	}
	if err := Decode(completion.JSONData, out); err != nil {
		return p.Fail(logger, "failed to parse response", err)
	}
	return nil
}

// Fail logs and wraps a pipeline failure as an AssessmentError.
func (p *Pipeline) Fail(logger *slog.Logger, msg string, cause error) error {
	logger.Error("assessment failed", "reason", msg, "error", cause)
	return domain.NewAssessmentError(p.profile.Methodology, msg, cause)
}

// Package cochrane assesses randomized controlled trials with the Cochrane
// Risk of Bias 2.0 tool.
package cochrane

import (
	"context"
	"fmt"

	"github.com/ahrav/go-appraise/internal/assessment"
	"github.com/ahrav/go-appraise/internal/domain"
	"github.com/ahrav/go-appraise/internal/llm"
)

// Option configures an Assessor.
type Option = assessment.Option

// Options shared by every assessor.
var (
	WithLogger         = assessment.WithLogger
	WithPromptTemplate = assessment.WithPromptTemplate
	WithClock          = assessment.WithClock
	WithIDGenerator    = assessment.WithIDGenerator
)

// Assessor rates the five RoB 2.0 domains through the model and derives the
// overall risk with domain.EvaluateRoB. A different overall risk suggested by
// the model is discarded.
type Assessor struct {
	pipeline *assessment.Pipeline
}

// NewAssessor returns an Assessor calling provider once per assessment.
func NewAssessor(provider llm.Provider, opts ...Option) (*Assessor, error) {
	p, err := assessment.NewPipeline(provider, assessment.CochraneProfile, opts...)
	if err != nil {
		return nil, err
	}
	return &Assessor{pipeline: p}, nil
}

type domainResponse struct {
	Domain        string   `mapstructure:"domain"`
	Judgment      string   `mapstructure:"judgment"`
	Justification string   `mapstructure:"justification"`
	Confidence    float64  `mapstructure:"confidence"`
	KeyEvidence   []string `mapstructure:"key_evidence"`
}

type response struct {
	Domains           []domainResponse `mapstructure:"domains"`
	OverallRisk       string           `mapstructure:"overall_risk"`
	Summary           string           `mapstructure:"summary"`
	OverallConfidence float64          `mapstructure:"overall_confidence"`
}

func (r *response) domainAssessments() ([]domain.RoBDomainAssessment, error) {
	out := make([]domain.RoBDomainAssessment, 0, len(r.Domains))
	for i, d := range r.Domains {
		name, err := domain.ParseRoBDomain(d.Domain)
		if err != nil {
			return nil, fmt.Errorf("domains[%d]: %w", i, err)
		}
		judgment, err := domain.ParseRoBJudgment(d.Judgment)
		if err != nil {
			return nil, fmt.Errorf("domains[%d]: %w", i, err)
		}
		out = append(out, domain.RoBDomainAssessment{
			Domain:        name,
			Judgment:      judgment,
			Justification: d.Justification,
			Confidence:    d.Confidence,
			KeyEvidence:   d.KeyEvidence,
		})
	}
	return out, nil
}

// Assess runs one RoB 2.0 assessment. Inputs are checked before anything
// else: a missing paper or characteristics fails with domain.ErrInvalidInput
// and a non-randomized design with domain.ErrMethodologyNotApplicable, both
// before the model is called. Every later failure is a *domain.AssessmentError.
func (a *Assessor) Assess(
	ctx context.Context,
	paper *domain.Paper,
	chars *domain.StudyCharacteristics,
) (*domain.CochraneRoBAssessment, error) {
	if err := assessment.CheckInputs(paper, chars); err != nil {
		return nil, err
	}
	if err := domain.CheckApplicable(domain.MethodologyCochraneRoB, chars.StudyDesign); err != nil {
		return nil, err
	}

	logger := a.pipeline.Logger(paper)
	logger.InfoContext(ctx, "starting Cochrane RoB 2.0 assessment", "study_design", chars.StudyDesign)

	var resp response
	if err := a.pipeline.Run(ctx, paper, chars, logger, &resp); err != nil {
		return nil, err
	}

	domains, err := resp.domainAssessments()
	if err != nil {
		return nil, a.pipeline.Fail(logger, "failed to parse response", err)
	}
	var suggested domain.RoBJudgment
	if resp.OverallRisk != "" {
		if suggested, err = domain.ParseRoBJudgment(resp.OverallRisk); err != nil {
			return nil, a.pipeline.Fail(logger, "failed to parse response", err)
		}
	}

	computed, rule := domain.EvaluateRoB(domains)
	logger.DebugContext(ctx, "applied RoB 2.0 algorithm",
		"rule", rule, "overall_risk", computed, "domain_count", len(domains))

	rec := domain.Reconcile(suggested, computed)
	if rec.Overridden {
		logger.WarnContext(ctx, "overall risk mismatch, using algorithm result",
			"suggested", suggested, "computed", computed)
	}

	result := &domain.CochraneRoBAssessment{
		ID:                   a.pipeline.NewID(),
		PaperID:              paper.ID,
		StudyDesign:          chars.StudyDesign,
		OverallRisk:          rec.Final,
		DomainAssessments:    domains,
		Summary:              resp.Summary,
		OverallConfidence:    resp.OverallConfidence,
		AssessedAt:           a.pipeline.Now(),
		SuggestedOverallRisk: rec.Suggested,
	}
	if err := result.Validate(); err != nil {
		return nil, a.pipeline.Fail(logger, "assessment failed validation", err)
	}

	logger.InfoContext(ctx, "Cochrane RoB 2.0 assessment completed", "overall_risk", result.OverallRisk)
	return result, nil
}

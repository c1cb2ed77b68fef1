// Package robinsi assesses non-randomized studies of interventions with the
// ROBINS-I tool.
package robinsi

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

// Assessor rates the seven ROBINS-I domains through the model and takes the
// worst domain level as the overall bias.
type Assessor struct {
	pipeline *assessment.Pipeline
}

// NewAssessor returns an Assessor calling provider once per assessment.
func NewAssessor(provider llm.Provider, opts ...Option) (*Assessor, error) {
	p, err := assessment.NewPipeline(provider, assessment.ROBINSIProfile, opts...)
	if err != nil {
		return nil, err
	}
	return &Assessor{pipeline: p}, nil
}

type domainResponse struct {
	Domain             string   `mapstructure:"domain"`
	Level              string   `mapstructure:"level"`
	Justification      string   `mapstructure:"justification"`
	Confidence         float64  `mapstructure:"confidence"`
	KeyEvidence        []string `mapstructure:"key_evidence"`
	SignalingQuestions []string `mapstructure:"signaling_questions"`
}

type response struct {
	TargetTrial       string           `mapstructure:"target_trial"`
	Domains           []domainResponse `mapstructure:"domains"`
	OverallBias       string           `mapstructure:"overall_bias"`
	Summary           string           `mapstructure:"summary"`
	OverallConfidence float64          `mapstructure:"overall_confidence"`
}

func (r *response) domainAssessments() ([]domain.ROBINSIDomainAssessment, error) {
	out := make([]domain.ROBINSIDomainAssessment, 0, len(r.Domains))
	for i, d := range r.Domains {
		name, err := domain.ParseROBINSIDomain(d.Domain)
		if err != nil {
			return nil, fmt.Errorf("domains[%d]: %w", i, err)
		}
		level, err := domain.ParseROBINSILevel(d.Level)
		if err != nil {
			return nil, fmt.Errorf("domains[%d]: %w", i, err)
		}
		out = append(out, domain.ROBINSIDomainAssessment{
			Domain:             name,
			Level:              level,
			Justification:      d.Justification,
			Confidence:         d.Confidence,
			KeyEvidence:        d.KeyEvidence,
			SignalingQuestions: d.SignalingQuestions,
		})
	}
	return out, nil
}

// Assess runs one ROBINS-I assessment. Designs other than cohort,
// case-control and case series fail with domain.ErrMethodologyNotApplicable
// before the model is called. A missing, null or short target-trial description
// from the model is replaced by domain.DefaultTargetTrial.
func (a *Assessor) Assess(
	ctx context.Context,
	paper *domain.Paper,
	chars *domain.StudyCharacteristics,
) (*domain.ROBINSIAssessment, error) {
	if err := assessment.CheckInputs(paper, chars); err != nil {
		return nil, err
	}
	if err := domain.CheckApplicable(domain.MethodologyROBINSI, chars.StudyDesign); err != nil {
		return nil, err
	}

	logger := a.pipeline.Logger(paper)
	if chars.StudyDesign == domain.DesignCaseSeries {
		logger.InfoContext(ctx, "ROBINS-I applied to case series; "+
			"results are most reliable when an explicit or implicit comparison group is present")
	}
	logger.InfoContext(ctx, "starting ROBINS-I assessment", "study_design", chars.StudyDesign)

	var resp response
	if err := a.pipeline.Run(ctx, paper, chars, logger, &resp); err != nil {
		return nil, err
	}

	domains, err := resp.domainAssessments()
	if err != nil {
		return nil, a.pipeline.Fail(logger, "failed to parse response", err)
	}
	var suggested domain.ROBINSILevel
	if resp.OverallBias != "" {
		if suggested, err = domain.ParseROBINSILevel(resp.OverallBias); err != nil {
			return nil, a.pipeline.Fail(logger, "failed to parse response", err)
		}
	}

	targetTrial, synthesized := domain.ResolveTargetTrial(resp.TargetTrial, *chars)
	if synthesized {
		logger.WarnContext(ctx, "target trial description missing or too short, using default",
			"upstream_length", len(resp.TargetTrial))
	}

	computed := domain.ApplyROBINSIAlgorithm(domains)
	logger.DebugContext(ctx, "applied ROBINS-I algorithm",
		"overall_bias", computed, "domain_count", len(domains))

	rec := domain.Reconcile(suggested, computed)
	if rec.Overridden {
		logger.WarnContext(ctx, "overall bias mismatch, using algorithm result",
			"suggested", suggested, "computed", computed)
	}

	result := &domain.ROBINSIAssessment{
		ID:                     a.pipeline.NewID(),
		PaperID:                paper.ID,
		StudyDesign:            chars.StudyDesign,
		TargetTrialDescription: targetTrial,
		DomainAssessments:      domains,
		OverallBias:            rec.Final,
		Summary:                resp.Summary,
		OverallConfidence:      resp.OverallConfidence,
		AssessedAt:             a.pipeline.Now(),
		SuggestedOverallBias:   rec.Suggested,
		TargetTrialSynthesized: synthesized,
	}
	if err := result.Validate(); err != nil {
		return nil, a.pipeline.Fail(logger, "assessment failed validation", err)
	}

	logger.InfoContext(ctx, "ROBINS-I assessment completed", "overall_bias", result.OverallBias)
	return result, nil
}

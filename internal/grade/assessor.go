// Package grade rates the certainty of evidence of a paper with the GRADE
// approach.
//
// Unlike the risk-of-bias tools, the overall certainty is the model's
// final_grade. The starting level and downgrade tallies are derived locally
// and recorded alongside it.
package grade

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

// Assessor produces GRADE assessments.
type Assessor struct {
	pipeline *assessment.Pipeline
}

// NewAssessor returns an Assessor calling provider once per assessment.
func NewAssessor(provider llm.Provider, opts ...Option) (*Assessor, error) {
	p, err := assessment.NewPipeline(provider, assessment.GRADEProfile, opts...)
	if err != nil {
		return nil, err
	}
	return &Assessor{pipeline: p}, nil
}

type domainResponse struct {
	Domain        string   `mapstructure:"domain"`
	Rating        string   `mapstructure:"rating"`
	Justification string   `mapstructure:"justification"`
	Confidence    float64  `mapstructure:"confidence"`
	KeyEvidence   []string `mapstructure:"key_evidence"`
}

type response struct {
	StartingLevel     string           `mapstructure:"starting_level"`
	Domains           []domainResponse `mapstructure:"domains"`
	Upgrades          map[string]int   `mapstructure:"upgrades"`
	FinalGrade        string           `mapstructure:"final_grade"`
	Summary           string           `mapstructure:"summary"`
	OverallConfidence float64          `mapstructure:"overall_confidence"`
}

func (r *response) domainAssessments() ([]domain.GRADEDomainAssessment, error) {
	out := make([]domain.GRADEDomainAssessment, 0, len(r.Domains))
	for i, d := range r.Domains {
		name, err := domain.ParseGRADEDomain(d.Domain)
		if err != nil {
			return nil, fmt.Errorf("domains[%d]: %w", i, err)
		}
		rating, err := domain.ParseGRADERating(d.Rating)
		if err != nil {
			return nil, fmt.Errorf("domains[%d]: %w", i, err)
		}
		out = append(out, domain.GRADEDomainAssessment{
			Domain:        name,
			Rating:        rating,
			Justification: d.Justification,
			Confidence:    d.Confidence,
			KeyEvidence:   d.KeyEvidence,
		})
	}
	return out, nil
}

// Assess runs one GRADE assessment. A design missing from the starting-level
// table fails with domain.ErrUnsupportedDesign before the model is called.
func (a *Assessor) Assess(
	ctx context.Context,
	paper *domain.Paper,
	chars *domain.StudyCharacteristics,
) (*domain.GRADEAssessment, error) {
	if err := assessment.CheckInputs(paper, chars); err != nil {
		return nil, err
	}
	starting, err := domain.StartingLevel(chars.StudyDesign)
	if err != nil {
		return nil, err
	}

	logger := a.pipeline.Logger(paper)
	logger.InfoContext(ctx, "starting GRADE assessment", "study_design", chars.StudyDesign)
	logger.DebugContext(ctx, "determined starting level", "starting_level", starting)

	var resp response
	if err := a.pipeline.Run(ctx, paper, chars, logger, &resp); err != nil {
		return nil, err
	}

	domains, err := resp.domainAssessments()
	if err != nil {
		return nil, a.pipeline.Fail(logger, "failed to parse response", err)
	}
	final, err := domain.ParseGRADELevel(resp.FinalGrade)
	if err != nil {
		return nil, a.pipeline.Fail(logger, "failed to parse response", err)
	}
	var suggested domain.GRADELevel
	if resp.StartingLevel != "" {
		if suggested, err = domain.ParseGRADELevel(resp.StartingLevel); err != nil {
			return nil, a.pipeline.Fail(logger, "failed to parse response", err)
		}
	}
	if rec := domain.Reconcile(suggested, starting); rec.Overridden {
		logger.WarnContext(ctx, "starting level mismatch, using design table",
			"suggested", suggested, "computed", starting)
	}

	total, byDomain := domain.TallyDowngrades(domains)
	upgrades := resp.Upgrades
	if upgrades == nil {
		upgrades = map[string]int{}
	}
	logger.DebugContext(ctx, "tallied GRADE domains",
		"total_downgrades", total,
		"total_upgrades", domain.TotalUpgrades(upgrades),
		"final_grade", final)

	result := &domain.GRADEAssessment{
		ID:                     a.pipeline.NewID(),
		PaperID:                paper.ID,
		StudyDesign:            chars.StudyDesign,
		OverallCertainty:       final,
		StartingLevel:          starting,
		DomainAssessments:      domains,
		TotalDowngrades:        total,
		DowngradesByDomain:     byDomain,
		Upgrades:               upgrades,
		Summary:                resp.Summary,
		OverallConfidence:      resp.OverallConfidence,
		AssessedAt:             a.pipeline.Now(),
		SuggestedStartingLevel: suggested,
	}
	if err := result.Validate(); err != nil {
		return nil, a.pipeline.Fail(logger, "assessment failed validation", err)
	}

	logger.InfoContext(ctx, "GRADE assessment completed", "overall_certainty", result.OverallCertainty)
	return result, nil
}

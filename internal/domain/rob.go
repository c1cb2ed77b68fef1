package domain

import (
	"fmt"
	"time"
)

// RoBDomain is one of the five Cochrane RoB 2.0 bias domains.
type RoBDomain string

// RoBDomain values.
const (
	RoBRandomization      RoBDomain = "randomization"
	RoBDeviations         RoBDomain = "deviations_from_intended_interventions"
	RoBMissingOutcomeData RoBDomain = "missing_outcome_data"
	RoBMeasurement        RoBDomain = "measurement_of_outcome"
	RoBSelectionOfResult  RoBDomain = "selection_of_reported_result"
)

// RoBDomains lists the Cochrane domains in assessment order.
var RoBDomains = []RoBDomain{
	RoBRandomization,
	RoBDeviations,
	RoBMissingOutcomeData,
	RoBMeasurement,
	RoBSelectionOfResult,
}

// RoBCriticalDomains are the domains whose joint concerns escalate the
// overall judgment to high.
var RoBCriticalDomains = []RoBDomain{RoBRandomization, RoBDeviations}

// String returns the wire value of the domain.
func (d RoBDomain) String() string { return string(d) }

// ParseRoBDomain converts a wire value into a RoBDomain.
func ParseRoBDomain(s string) (RoBDomain, error) {
	for _, d := range RoBDomains {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: RoB domain %q", ErrUnknownEnumValue, s)
}

// RoBJudgment is a Cochrane risk-of-bias judgment, ordered low < some_concerns < high.
type RoBJudgment string

// RoBJudgment values.
const (
	RoBLow          RoBJudgment = "low"
	RoBSomeConcerns RoBJudgment = "some_concerns"
	RoBHigh         RoBJudgment = "high"
)

// String returns the wire value of the judgment.
func (j RoBJudgment) String() string { return string(j) }

// Rank orders judgments: low=1, some_concerns=2, high=3, 0 for unknown values.
func (j RoBJudgment) Rank() int {
	switch j {
	case RoBLow:
		return 1
	case RoBSomeConcerns:
		return 2
	case RoBHigh:
		return 3
	default:
		return 0
	}
}

// ParseRoBJudgment converts a wire value into a RoBJudgment.
func ParseRoBJudgment(s string) (RoBJudgment, error) {
	j := RoBJudgment(s)
	if j.Rank() == 0 {
		return "", fmt.Errorf("%w: RoB judgment %q", ErrUnknownEnumValue, s)
	}
	return j, nil
}

// RoBDomainAssessment is the model's judgment for one Cochrane domain.
type RoBDomainAssessment struct {
	Domain        RoBDomain   `json:"domain" yaml:"domain" validate:"required,oneof=randomization deviations_from_intended_interventions missing_outcome_data measurement_of_outcome selection_of_reported_result"`
	Judgment      RoBJudgment `json:"judgment" yaml:"judgment" validate:"required,oneof=low some_concerns high"`
	Justification string      `json:"justification" yaml:"justification"`
	Confidence    float64     `json:"confidence" yaml:"confidence" validate:"min=0,max=1"`
	KeyEvidence   []string    `json:"key_evidence,omitempty" yaml:"key_evidence,omitempty"`
}

// CochraneRoBAssessment is the complete Cochrane RoB 2.0 rating of one trial.
// OverallRisk always equals ApplyRoBAlgorithm(DomainAssessments).
type CochraneRoBAssessment struct {
	ID                string                `json:"id" yaml:"id" validate:"required,uuid"`
	PaperID           string                `json:"paper_id" yaml:"paper_id" validate:"required"`
	StudyDesign       StudyDesign           `json:"study_design" yaml:"study_design" validate:"required"`
	OverallRisk       RoBJudgment           `json:"overall_risk" yaml:"overall_risk" validate:"required,oneof=low some_concerns high"`
	DomainAssessments []RoBDomainAssessment `json:"domain_assessments" yaml:"domain_assessments" validate:"required,min=1,dive"`
	Summary           string                `json:"summary" yaml:"summary"`
	OverallConfidence float64               `json:"overall_confidence" yaml:"overall_confidence" validate:"min=0,max=1"`
	AssessedAt        time.Time             `json:"assessed_at" yaml:"assessed_at" validate:"required"`

	// SuggestedOverallRisk is the model's own overall judgment, kept for audit.
	SuggestedOverallRisk RoBJudgment `json:"suggested_overall_risk,omitempty" yaml:"suggested_overall_risk,omitempty"`
}

// Overridden reports whether the model suggested a different overall judgment.
func (a *CochraneRoBAssessment) Overridden() bool {
	return a.SuggestedOverallRisk != "" && a.SuggestedOverallRisk != a.OverallRisk
}

// Validate checks structural integrity of the assessment.
func (a *CochraneRoBAssessment) Validate() error { return validate.Struct(a) }

// RoBRule names the branch of the RoB 2.0 algorithm that decided a judgment.
type RoBRule string

// RoBRule values, in evaluation order.
const (
	RoBRuleAnyHigh         RoBRule = "any_domain_high"
	RoBRuleCriticalDomains RoBRule = "critical_domains_flagged"
	RoBRuleManyConcerns    RoBRule = "three_or_more_some_concerns"
	RoBRuleSomeConcerns    RoBRule = "some_concerns"
	RoBRuleAllLow          RoBRule = "all_low"
)

const (
	robManyConcernsMinimum  = 3
	robCriticalFlagsMinimum = 2
)

// ApplyRoBAlgorithm computes the overall Cochrane RoB 2.0 judgment.
func ApplyRoBAlgorithm(assessments []RoBDomainAssessment) RoBJudgment {
	j, _ := EvaluateRoB(assessments)
	return j
}

// EvaluateRoB computes the overall judgment and reports which rule decided it.
// Rules are evaluated in order and the first match wins:
//
//  1. any domain high → high
//  2. both critical domains (randomization, deviations) at some_concerns or high → high
//  3. three or more domains at some_concerns → high; one or two → some_concerns
//  4. otherwise → low
//
// An empty input is vacuously all low.
func EvaluateRoB(assessments []RoBDomainAssessment) (RoBJudgment, RoBRule) {
	concerns := 0
	flagged := make(map[RoBDomain]bool, len(RoBCriticalDomains))
	for _, a := range assessments {
		if a.Judgment == RoBHigh {
			return RoBHigh, RoBRuleAnyHigh
		}
		if a.Judgment == RoBSomeConcerns {
			concerns++
			flagged[a.Domain] = true
		}
	}

	critical := 0
	for _, d := range RoBCriticalDomains {
		if flagged[d] {
			critical++
		}
	}
	if critical >= robCriticalFlagsMinimum {
		return RoBHigh, RoBRuleCriticalDomains
	}

	switch {
	case concerns >= robManyConcernsMinimum:
		return RoBHigh, RoBRuleManyConcerns
	case concerns > 0:
		return RoBSomeConcerns, RoBRuleSomeConcerns
	default:
		return RoBLow, RoBRuleAllLow
	}
}

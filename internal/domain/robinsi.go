package domain

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// ROBINSIDomain is one of the seven ROBINS-I bias domains.
type ROBINSIDomain string

// ROBINSIDomain values.
const (
	ROBINSIConfounding         ROBINSIDomain = "confounding"
	ROBINSISelection           ROBINSIDomain = "selection_of_participants"
	ROBINSIClassification      ROBINSIDomain = "classification_of_interventions"
	ROBINSIDeviations          ROBINSIDomain = "deviations_from_interventions"
	ROBINSIMissingData         ROBINSIDomain = "missing_data"
	ROBINSIMeasurement         ROBINSIDomain = "measurement_of_outcomes"
	ROBINSISelectionOfReported ROBINSIDomain = "selection_of_reported_results"
)

// ROBINSIDomains lists the ROBINS-I domains in assessment order.
var ROBINSIDomains = []ROBINSIDomain{
	ROBINSIConfounding,
	ROBINSISelection,
	ROBINSIClassification,
	ROBINSIDeviations,
	ROBINSIMissingData,
	ROBINSIMeasurement,
	ROBINSISelectionOfReported,
}

// String returns the wire value of the domain.
func (d ROBINSIDomain) String() string { return string(d) }

// ParseROBINSIDomain converts a wire value into a ROBINSIDomain.
func ParseROBINSIDomain(s string) (ROBINSIDomain, error) {
	for _, d := range ROBINSIDomains {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: ROBINS-I domain %q", ErrUnknownEnumValue, s)
}

// ROBINSILevel is a ROBINS-I risk-of-bias level.
//
// no_information is an unknown state rather than a severity, but the overall
// rule still ranks it: worse than low, better than moderate.
type ROBINSILevel string

// ROBINSILevel values.
const (
	ROBINSILow           ROBINSILevel = "low"
	ROBINSIModerate      ROBINSILevel = "moderate"
	ROBINSISerious       ROBINSILevel = "serious"
	ROBINSICritical      ROBINSILevel = "critical"
	ROBINSINoInformation ROBINSILevel = "no_information"
)

// String returns the wire value of the level.
func (l ROBINSILevel) String() string { return string(l) }

// AggregationRank is the position of l in the worst-domain-wins order
// critical(5) > serious(4) > moderate(3) > no_information(2) > low(1).
// Unknown values rank 0.
func (l ROBINSILevel) AggregationRank() int {
	switch l {
	case ROBINSILow:
		return 1
	case ROBINSINoInformation:
		return 2
	case ROBINSIModerate:
		return 3
	case ROBINSISerious:
		return 4
	case ROBINSICritical:
		return 5
	default:
		return 0
	}
}

// IsKnown reports whether l carries a severity judgment, i.e. is neither
// no_information nor an unknown value.
func (l ROBINSILevel) IsKnown() bool {
	return l.AggregationRank() > 0 && l != ROBINSINoInformation
}

// ParseROBINSILevel converts a wire value into a ROBINSILevel.
func ParseROBINSILevel(s string) (ROBINSILevel, error) {
	l := ROBINSILevel(s)
	if l.AggregationRank() == 0 {
		return "", fmt.Errorf("%w: ROBINS-I level %q", ErrUnknownEnumValue, s)
	}
	return l, nil
}

// ROBINSIDomainAssessment is the model's judgment for one ROBINS-I domain.
type ROBINSIDomainAssessment struct {
	Domain             ROBINSIDomain `json:"domain" yaml:"domain" validate:"required,oneof=confounding selection_of_participants classification_of_interventions deviations_from_interventions missing_data measurement_of_outcomes selection_of_reported_results"`
	Level              ROBINSILevel  `json:"level" yaml:"level" validate:"required,oneof=low moderate serious critical no_information"`
	Justification      string        `json:"justification" yaml:"justification"`
	Confidence         float64       `json:"confidence" yaml:"confidence" validate:"min=0,max=1"`
	KeyEvidence        []string      `json:"key_evidence,omitempty" yaml:"key_evidence,omitempty"`
	SignalingQuestions []string      `json:"signaling_questions,omitempty" yaml:"signaling_questions,omitempty"`
}

// ROBINSIAssessment is the complete ROBINS-I rating of one non-randomized study.
// OverallBias always equals ApplyROBINSIAlgorithm(DomainAssessments).
type ROBINSIAssessment struct {
	ID                     string                    `json:"id" yaml:"id" validate:"required,uuid"`
	PaperID                string                    `json:"paper_id" yaml:"paper_id" validate:"required"`
	StudyDesign            StudyDesign               `json:"study_design" yaml:"study_design" validate:"required"`
	TargetTrialDescription string                    `json:"target_trial_description" yaml:"target_trial_description" validate:"required"`
	DomainAssessments      []ROBINSIDomainAssessment `json:"domain_assessments" yaml:"domain_assessments" validate:"required,min=1,dive"`
	OverallBias            ROBINSILevel              `json:"overall_bias" yaml:"overall_bias" validate:"required,oneof=low moderate serious critical no_information"`
	Summary                string                    `json:"summary" yaml:"summary"`
	OverallConfidence      float64                   `json:"overall_confidence" yaml:"overall_confidence" validate:"min=0,max=1"`
	AssessedAt             time.Time                 `json:"assessed_at" yaml:"assessed_at" validate:"required"`

	// SuggestedOverallBias is the model's own overall level, kept for audit.
	SuggestedOverallBias ROBINSILevel `json:"suggested_overall_bias,omitempty" yaml:"suggested_overall_bias,omitempty"`
	// TargetTrialSynthesized is set when the description was built locally.
	TargetTrialSynthesized bool `json:"target_trial_synthesized,omitempty" yaml:"target_trial_synthesized,omitempty"`
}

// Overridden reports whether the model suggested a different overall level.
func (a *ROBINSIAssessment) Overridden() bool {
	return a.SuggestedOverallBias != "" && a.SuggestedOverallBias != a.OverallBias
}

// Validate checks structural integrity of the assessment.
func (a *ROBINSIAssessment) Validate() error { return validate.Struct(a) }

// robinsISeverityOrder is the worst-domain-wins evaluation sequence.
var robinsISeverityOrder = []ROBINSILevel{
	ROBINSICritical,
	ROBINSISerious,
	ROBINSIModerate,
	ROBINSINoInformation,
}

// ApplyROBINSIAlgorithm returns the worst domain level under the order
// critical > serious > moderate > no_information > low. The result does not
// depend on the order of assessments; an empty input is vacuously low.
func ApplyROBINSIAlgorithm(assessments []ROBINSIDomainAssessment) ROBINSILevel {
	present := make(map[ROBINSILevel]bool, len(assessments))
	for _, a := range assessments {
		present[a.Level] = true
	}
	for _, level := range robinsISeverityOrder {
		if present[level] {
			return level
		}
	}
	return ROBINSILow
}

// MinTargetTrialLength is the shortest upstream target-trial description
// accepted before a default one is synthesized.
const MinTargetTrialLength = 20

// DefaultTargetTrial describes the hypothetical randomized trial emulated by
// a non-randomized study, built from the extracted PICO fields.
func DefaultTargetTrial(c StudyCharacteristics) string {
	return fmt.Sprintf("Hypothetical RCT comparing %s vs %s in %s measuring %s",
		OrNotSpecified(c.InterventionExposure),
		OrNotSpecified(c.Comparator),
		OrNotSpecified(c.Population),
		OrNotSpecified(c.PrimaryOutcome))
}

// ResolveTargetTrial returns the upstream description when it is long enough,
// otherwise the default one. The boolean reports whether the default was used.
func ResolveTargetTrial(upstream string, c StudyCharacteristics) (string, bool) {
	if utf8.RuneCountInString(upstream) < MinTargetTrialLength {
		return DefaultTargetTrial(c), true
	}
	return upstream, false
}

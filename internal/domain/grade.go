package domain

import (
	"fmt"
	"time"
)

// GRADELevel is the certainty of a body of evidence on the four-point GRADE scale.
type GRADELevel string

// GRADELevel values, from most to least certain.
const (
	GRADEHigh     GRADELevel = "high"
	GRADEModerate GRADELevel = "moderate"
	GRADELow      GRADELevel = "low"
	GRADEVeryLow  GRADELevel = "very_low"
)

// String returns the wire value of the level.
func (l GRADELevel) String() string { return string(l) }

// Rank orders levels: very_low=1 through high=4, 0 for unknown values.
func (l GRADELevel) Rank() int {
	switch l {
	case GRADEVeryLow:
		return 1
	case GRADELow:
		return 2
	case GRADEModerate:
		return 3
	case GRADEHigh:
		return 4
	default:
		return 0
	}
}

// IsValid reports whether l is a known level.
func (l GRADELevel) IsValid() bool { return l.Rank() > 0 }

// ParseGRADELevel converts a wire value into a GRADELevel.
func ParseGRADELevel(s string) (GRADELevel, error) {
	l := GRADELevel(s)
	if !l.IsValid() {
		return "", fmt.Errorf("%w: GRADE level %q", ErrUnknownEnumValue, s)
	}
	return l, nil
}

// GRADEDomain is one of the five GRADE downgrade criteria.
type GRADEDomain string

// GRADEDomain values.
const (
	GRADERiskOfBias      GRADEDomain = "risk_of_bias"
	GRADEInconsistency   GRADEDomain = "inconsistency"
	GRADEIndirectness    GRADEDomain = "indirectness"
	GRADEImprecision     GRADEDomain = "imprecision"
	GRADEPublicationBias GRADEDomain = "publication_bias"
)

// GRADEDomains lists the GRADE domains in assessment order.
var GRADEDomains = []GRADEDomain{
	GRADERiskOfBias,
	GRADEInconsistency,
	GRADEIndirectness,
	GRADEImprecision,
	GRADEPublicationBias,
}

// String returns the wire value of the domain.
func (d GRADEDomain) String() string { return string(d) }

// ParseGRADEDomain converts a wire value into a GRADEDomain.
func ParseGRADEDomain(s string) (GRADEDomain, error) {
	for _, d := range GRADEDomains {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: GRADE domain %q", ErrUnknownEnumValue, s)
}

// GRADERating is the seriousness of the concern raised by one GRADE domain.
type GRADERating string

// GRADERating values.
const (
	RatingNotSerious  GRADERating = "not_serious"
	RatingSerious     GRADERating = "serious"
	RatingVerySerious GRADERating = "very_serious"
)

// String returns the wire value of the rating.
func (r GRADERating) String() string { return string(r) }

// DowngradeWeight is the number of certainty levels the rating removes.
func (r GRADERating) DowngradeWeight() int {
	switch r {
	case RatingSerious:
		return 1
	case RatingVerySerious:
		return 2
	default:
		return 0
	}
}

// ParseGRADERating converts a wire value into a GRADERating.
func ParseGRADERating(s string) (GRADERating, error) {
	switch r := GRADERating(s); r {
	case RatingNotSerious, RatingSerious, RatingVerySerious:
		return r, nil
	default:
		return "", fmt.Errorf("%w: GRADE rating %q", ErrUnknownEnumValue, s)
	}
}

// GRADEDomainAssessment is the model's judgment for one GRADE domain.
type GRADEDomainAssessment struct {
	Domain        GRADEDomain `json:"domain" yaml:"domain" validate:"required,oneof=risk_of_bias inconsistency indirectness imprecision publication_bias"`
	Rating        GRADERating `json:"rating" yaml:"rating" validate:"required,oneof=not_serious serious very_serious"`
	Justification string      `json:"justification" yaml:"justification"`
	Confidence    float64     `json:"confidence" yaml:"confidence" validate:"min=0,max=1"`
	KeyEvidence   []string    `json:"key_evidence,omitempty" yaml:"key_evidence,omitempty"`
}

// GRADEAssessment is the complete GRADE rating of one paper.
//
// OverallCertainty is the upstream model's final grade; it is not derived from
// StartingLevel and the downgrade/upgrade tallies, which are bookkeeping only.
type GRADEAssessment struct {
	ID                 string                  `json:"id" yaml:"id" validate:"required,uuid"`
	PaperID            string                  `json:"paper_id" yaml:"paper_id" validate:"required"`
	StudyDesign        StudyDesign             `json:"study_design" yaml:"study_design" validate:"required"`
	OverallCertainty   GRADELevel              `json:"overall_certainty" yaml:"overall_certainty" validate:"required,oneof=high moderate low very_low"`
	StartingLevel      GRADELevel              `json:"starting_level" yaml:"starting_level" validate:"required,oneof=high moderate low very_low"`
	DomainAssessments  []GRADEDomainAssessment `json:"domain_assessments" yaml:"domain_assessments" validate:"required,min=1,dive"`
	TotalDowngrades    int                     `json:"total_downgrades" yaml:"total_downgrades" validate:"min=0"`
	DowngradesByDomain map[GRADEDomain]int     `json:"downgrades_by_domain" yaml:"downgrades_by_domain"`
	Upgrades           map[string]int          `json:"upgrades" yaml:"upgrades"`
	Summary            string                  `json:"summary" yaml:"summary"`
	OverallConfidence  float64                 `json:"overall_confidence" yaml:"overall_confidence" validate:"min=0,max=1"`
	AssessedAt         time.Time               `json:"assessed_at" yaml:"assessed_at" validate:"required"`

	// SuggestedStartingLevel is the model's starting level, kept for audit.
	SuggestedStartingLevel GRADELevel `json:"suggested_starting_level,omitempty" yaml:"suggested_starting_level,omitempty"`
}

// Validate checks structural integrity of the assessment.
func (a *GRADEAssessment) Validate() error { return validate.Struct(a) }

// TotalUpgrades sums the upgrade points of the assessment.
func (a *GRADEAssessment) TotalUpgrades() int { return TotalUpgrades(a.Upgrades) }

// gradeStartingLevels is the fixed design to starting-certainty table.
// Systematic reviews and meta-analyses are included for completeness even
// though GRADE normally rates their underlying studies.
var gradeStartingLevels = map[StudyDesign]GRADELevel{
	DesignRCT:              GRADEHigh,
	DesignCohort:           GRADELow,
	DesignCaseControl:      GRADELow,
	DesignCrossSectional:   GRADEVeryLow,
	DesignCaseSeries:       GRADEVeryLow,
	DesignSystematicReview: GRADELow,
	DesignMetaAnalysis:     GRADEHigh,
	DesignOther:            GRADEVeryLow,
}

// StartingLevel returns the GRADE starting certainty for a study design.
// Designs outside the table fail with ErrUnsupportedDesign; there is no default.
func StartingLevel(design StudyDesign) (GRADELevel, error) {
	level, ok := gradeStartingLevels[design]
	if !ok {
		return "", fmt.Errorf("%w: %q, supported designs: %v",
			ErrUnsupportedDesign, design, ApplicableDesigns(MethodologyGRADE))
	}
	return level, nil
}

// TallyDowngrades folds per-domain ratings into the total downgrade count and
// the per-domain contributions. Domains rated not_serious are omitted from the
// map. A domain assessed more than once accumulates its contributions.
func TallyDowngrades(assessments []GRADEDomainAssessment) (int, map[GRADEDomain]int) {
	total := 0
	byDomain := make(map[GRADEDomain]int)
	for _, a := range assessments {
		w := a.Rating.DowngradeWeight()
		if w == 0 {
			continue
		}
		byDomain[a.Domain] += w
		total += w
	}
	return total, byDomain
}

// TotalUpgrades sums opaque upgrade points keyed by upgrade reason.
func TotalUpgrades(upgrades map[string]int) int {
	total := 0
	for _, v := range upgrades {
		total += v
	}
	return total
}

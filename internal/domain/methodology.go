package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Methodology identifies an appraisal tool.
type Methodology string

// Methodology values.
const (
	MethodologyGRADE       Methodology = "grade"
	MethodologyCochraneRoB Methodology = "cochrane_rob2"
	MethodologyROBINSI     Methodology = "robins_i"
)

// String returns the wire value of the methodology.
func (m Methodology) String() string { return string(m) }

// DisplayName returns the conventional published name of the tool.
func (m Methodology) DisplayName() string {
	switch m {
	case MethodologyGRADE:
		return "GRADE"
	case MethodologyCochraneRoB:
		return "Cochrane RoB 2.0"
	case MethodologyROBINSI:
		return "ROBINS-I"
	default:
		return string(m)
	}
}

// IsValid reports whether m is a known methodology.
func (m Methodology) IsValid() bool {
	switch m {
	case MethodologyGRADE, MethodologyCochraneRoB, MethodologyROBINSI:
		return true
	default:
		return false
	}
}

// ParseMethodology accepts the wire value or a common alias
// ("cochrane", "rob2", "robins-i").
func ParseMethodology(s string) (Methodology, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "grade":
		return MethodologyGRADE, nil
	case "cochrane_rob2", "cochrane", "rob2", "cochrane-rob2":
		return MethodologyCochraneRoB, nil
	case "robins_i", "robins-i", "robinsi":
		return MethodologyROBINSI, nil
	default:
		return "", fmt.Errorf("%w: unknown methodology %q", ErrUnknownEnumValue, s)
	}
}

// applicableDesigns holds the read-only design sets for the bias tools.
// GRADE applicability is governed by the starting-level table instead.
var applicableDesigns = map[Methodology][]StudyDesign{
	MethodologyCochraneRoB: {DesignRCT},
	MethodologyROBINSI:     {DesignCohort, DesignCaseControl, DesignCaseSeries},
}

// ApplicableDesigns returns the designs a methodology accepts.
func ApplicableDesigns(m Methodology) []StudyDesign {
	if m == MethodologyGRADE {
		designs := make([]StudyDesign, 0, len(gradeStartingLevels))
		for _, d := range AllStudyDesigns {
			if _, ok := gradeStartingLevels[d]; ok {
				designs = append(designs, d)
			}
		}
		return designs
	}
	return slices.Clone(applicableDesigns[m])
}

// CheckApplicable returns ErrMethodologyNotApplicable (or ErrUnsupportedDesign
// for GRADE) when design is outside the methodology's applicable set.
func CheckApplicable(m Methodology, design StudyDesign) error {
	switch m {
	case MethodologyGRADE:
		_, err := StartingLevel(design)
		return err
	case MethodologyCochraneRoB:
		if !slices.Contains(applicableDesigns[m], design) {
			return fmt.Errorf("%w: %s is only applicable to randomized controlled trials, study design: %s",
				ErrMethodologyNotApplicable, m.DisplayName(), design)
		}
	case MethodologyROBINSI:
		if !slices.Contains(applicableDesigns[m], design) {
			hint := ""
			if design == DesignRCT {
				hint = "; for RCTs use Cochrane RoB 2.0"
			}
			return fmt.Errorf("%w: %s is only applicable to non-randomized intervention studies "+
				"(cohort, case-control, case series with comparisons), study design: %s%s",
				ErrMethodologyNotApplicable, m.DisplayName(), design, hint)
		}
	default:
		return fmt.Errorf("%w: unknown methodology %q", ErrInvalidInput, m)
	}
	return nil
}

// RecommendedRiskOfBiasTool returns the risk-of-bias methodology that fits
// design, and false when neither bias tool applies.
func RecommendedRiskOfBiasTool(design StudyDesign) (Methodology, bool) {
	for _, m := range []Methodology{MethodologyCochraneRoB, MethodologyROBINSI} {
		if slices.Contains(applicableDesigns[m], design) {
			return m, true
		}
	}
	return "", false
}

// RecommendedMethodologies lists every methodology that accepts design,
// GRADE first.
func RecommendedMethodologies(design StudyDesign) []Methodology {
	var out []Methodology
	if _, err := StartingLevel(design); err == nil {
		out = append(out, MethodologyGRADE)
	}
	if m, ok := RecommendedRiskOfBiasTool(design); ok {
		out = append(out, m)
	}
	return out
}

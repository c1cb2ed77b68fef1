// Package domain defines the value types, deterministic rating algorithms and
// error vocabulary shared by the GRADE, Cochrane RoB 2.0 and ROBINS-I assessors.
//
// Everything in this package is pure: no I/O, no clocks, no logging. The
// assessor packages wrap these functions with the model pipeline.
package domain

import (
	"fmt"
	"sort"
	"strings"
)

// StudyDesign identifies the design category of a research paper.
// The caller supplies it; assessors never infer it.
type StudyDesign string

// StudyDesign values.
const (
	DesignRCT              StudyDesign = "randomized_controlled_trial"
	DesignCohort           StudyDesign = "cohort_study"
	DesignCaseControl      StudyDesign = "case_control"
	DesignCrossSectional   StudyDesign = "cross_sectional"
	DesignCaseSeries       StudyDesign = "case_series"
	DesignSystematicReview StudyDesign = "systematic_review"
	DesignMetaAnalysis     StudyDesign = "meta_analysis"
	DesignOther            StudyDesign = "other"
)

// AllStudyDesigns lists every known design in a stable order.
var AllStudyDesigns = []StudyDesign{
	DesignRCT,
	DesignCohort,
	DesignCaseControl,
	DesignCrossSectional,
	DesignCaseSeries,
	DesignSystematicReview,
	DesignMetaAnalysis,
	DesignOther,
}

// String returns the wire value of the design.
func (d StudyDesign) String() string { return string(d) }

// IsValid reports whether d is one of the known designs.
func (d StudyDesign) IsValid() bool {
	for _, known := range AllStudyDesigns {
		if d == known {
			return true
		}
	}
	return false
}

// ParseStudyDesign converts a wire value into a StudyDesign.
func ParseStudyDesign(s string) (StudyDesign, error) {
	d := StudyDesign(strings.TrimSpace(strings.ToLower(s)))
	if !d.IsValid() {
		return "", fmt.Errorf("%w: unknown study design %q", ErrUnknownEnumValue, s)
	}
	return d, nil
}

// titleSectionKey is the section consulted when a paper carries no explicit title.
const titleSectionKey = "title"

// Paper is the extracted text of a research paper.
// Sections maps a section heading to its text; headings are free-form.
type Paper struct {
	// ID is the stable identifier of the paper within the caller's system.
	ID string `json:"paper_id" yaml:"paper_id" validate:"required"`

	// Title is optional; DisplayTitle falls back to the "title" section.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Sections holds section text keyed by heading.
	Sections map[string]string `json:"sections" yaml:"sections"`
}

// Validate checks that the paper carries an identifier.
func (p *Paper) Validate() error { return validate.Struct(p) }

// DisplayTitle returns the explicit title, or the "title" section when absent.
func (p *Paper) DisplayTitle() string {
	if p.Title != "" {
		return p.Title
	}
	return p.Sections[titleSectionKey]
}

// MethodsText returns the text of the methods section, or "" when no heading
// contains "method".
func (p *Paper) MethodsText() string {
	methods, _ := p.lookupSections()
	return methods
}

// ResultsText returns the text of the results section, or "" when no heading
// contains "result".
func (p *Paper) ResultsText() string {
	_, results := p.lookupSections()
	return results
}

// lookupSections scans headings in sorted order so the selection does not depend
// on map iteration. The first heading matching "method" wins the methods slot;
// a heading matching both is never reused for results.
func (p *Paper) lookupSections() (methods, results string) {
	keys := make([]string, 0, len(p.Sections))
	for k := range p.Sections {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var haveMethods, haveResults bool
	for _, key := range keys {
		lower := strings.ToLower(key)
		switch {
		case strings.Contains(lower, "method"):
			if !haveMethods {
				methods, haveMethods = p.Sections[key], true
			}
		case strings.Contains(lower, "result"):
			if !haveResults {
				results, haveResults = p.Sections[key], true
			}
		}
	}
	return methods, results
}

// StudyCharacteristics are the extracted PICO attributes of a paper.
// Empty strings mean the attribute was not extracted.
type StudyCharacteristics struct {
	StudyDesign          StudyDesign `json:"study_design" yaml:"study_design" validate:"required"`
	Population           string      `json:"population,omitempty" yaml:"population,omitempty"`
	InterventionExposure string      `json:"intervention_exposure,omitempty" yaml:"intervention_exposure,omitempty"`
	Comparator           string      `json:"comparator,omitempty" yaml:"comparator,omitempty"`
	PrimaryOutcome       string      `json:"primary_outcome,omitempty" yaml:"primary_outcome,omitempty"`
}

// Validate checks that a study design is present.
func (c *StudyCharacteristics) Validate() error { return validate.Struct(c) }

// NotSpecified replaces absent characteristics in prompts and target-trial text.
const NotSpecified = "not specified"

// OrNotSpecified returns s, or NotSpecified when s is blank.
func OrNotSpecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotSpecified
	}
	return s
}

// Truncate returns at most limit runes of s. A non-positive limit disables truncation.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}

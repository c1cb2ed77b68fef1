package domain

import "fmt"

// AppraisalRequest is the input to an appraisal workflow and to each
// assessment activity.
type AppraisalRequest struct {
	Paper           Paper                `json:"paper" yaml:"paper" validate:"required"`
	Characteristics StudyCharacteristics `json:"characteristics" yaml:"characteristics" validate:"required"`
	// TimeoutSeconds bounds each assessment activity; zero selects the default.
	TimeoutSeconds int `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty" validate:"min=0,max=3600"`
}

// Validate checks the request and rejects unknown study designs.
func (r *AppraisalRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if !r.Characteristics.StudyDesign.IsValid() {
		return fmt.Errorf("%w: %w: unknown study design %q",
			ErrInvalidInput, ErrUnknownEnumValue, r.Characteristics.StudyDesign)
	}
	return nil
}

// AppraisalReport collects the assessments produced for one paper. GRADE is
// always present; at most one risk-of-bias assessment is set, matching
// RiskOfBiasTool.
type AppraisalReport struct {
	PaperID        string                 `json:"paper_id" yaml:"paper_id"`
	StudyDesign    StudyDesign            `json:"study_design" yaml:"study_design"`
	GRADE          *GRADEAssessment       `json:"grade" yaml:"grade"`
	RiskOfBiasTool Methodology            `json:"risk_of_bias_tool,omitempty" yaml:"risk_of_bias_tool,omitempty"`
	CochraneRoB    *CochraneRoBAssessment `json:"cochrane_rob2,omitempty" yaml:"cochrane_rob2,omitempty"`
	ROBINSI        *ROBINSIAssessment     `json:"robins_i,omitempty" yaml:"robins_i,omitempty"`
}

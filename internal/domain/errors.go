package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidInput indicates a required argument (paper, characteristics,
// provider) was absent. It is returned before any other work.
var ErrInvalidInput = errors.New("invalid input")

// ErrMethodologyNotApplicable indicates the study design falls outside the
// methodology's applicable set. It is returned before the model is called.
var ErrMethodologyNotApplicable = errors.New("methodology not applicable")

// ErrUnsupportedDesign indicates a study design missing from the GRADE
// starting-level table.
var ErrUnsupportedDesign = errors.New("unsupported study design")

// ErrAssessmentFailed is the terminal failure of an assessment pipeline.
// Errors of this kind are always *AssessmentError carrying the cause.
var ErrAssessmentFailed = errors.New("assessment failed")

// ErrUnknownEnumValue indicates a string that matches no member of an enum.
var ErrUnknownEnumValue = errors.New("unknown enumerated value")

// ErrMissingField indicates a required field absent from a model response.
var ErrMissingField = errors.New("missing required field")

// ErrorKind is the machine-readable category of an assessment error.
type ErrorKind string

// ErrorKind values.
const (
	KindNone                     ErrorKind = ""
	KindInvalidInput             ErrorKind = "InvalidInput"
	KindMethodologyNotApplicable ErrorKind = "MethodologyNotApplicable"
	KindUnsupportedDesign        ErrorKind = "UnsupportedDesign"
	KindAssessmentFailed         ErrorKind = "AssessmentFailed"
)

// String returns the kind name.
func (k ErrorKind) String() string { return string(k) }

// KindOf classifies err into exactly one ErrorKind. Errors outside the
// taxonomy are reported as AssessmentFailed; nil yields KindNone.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrAssessmentFailed):
		return KindAssessmentFailed
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrMethodologyNotApplicable):
		return KindMethodologyNotApplicable
	case errors.Is(err, ErrUnsupportedDesign):
		return KindUnsupportedDesign
	default:
		return KindAssessmentFailed
	}
}

// AssessmentError reports a failed assessment pipeline: a malformed or
// incomplete model response, an unknown enumerated value, or a provider
// failure. It matches ErrAssessmentFailed and its Cause under errors.Is.
type AssessmentError struct {
	Methodology Methodology
	Message     string
	Cause       error
}

// NewAssessmentError wraps cause as an AssessmentFailed error for methodology.
func NewAssessmentError(m Methodology, msg string, cause error) *AssessmentError {
	return &AssessmentError{Methodology: m, Message: msg, Cause: cause}
}

// Error implements error.
func (e *AssessmentError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s assessment failed: %s", e.Methodology.DisplayName(), e.Message)
	}
	return fmt.Sprintf("%s assessment failed: %s: %v", e.Methodology.DisplayName(), e.Message, e.Cause)
}

// Unwrap exposes both the AssessmentFailed sentinel and the original cause.
func (e *AssessmentError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrAssessmentFailed}
	}
	return []error{ErrAssessmentFailed, e.Cause}
}

package main

import (
	"errors"
	"fmt"
	"os"

	"go.temporal.io/sdk/temporal"

	"github.com/ahrav/go-appraise/internal/domain"
)

// Exit codes for different failure modes.
const (
	ExitSuccess       = 0
	ExitError         = 1 // Configuration, input, model or runtime error
	ExitNotApplicable = 2 // Methodology does not apply to the study design
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps local errors by sentinel and workflow errors by their
// application error type.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	kind := domain.KindOf(err)
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		kind = domain.ErrorKind(appErr.Type())
	}

	switch kind {
	case domain.KindMethodologyNotApplicable, domain.KindUnsupportedDesign:
		return ExitNotApplicable
	default:
		return ExitError
	}
}

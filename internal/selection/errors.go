// Package selection chooses the candidate material relevant to a job, either with
// one whole-selection agent or with parallel per-field sub-selectors.
package selection

import (
	"fmt"
	"strings"
)

// SubFailure is one failed sub-selector
type SubFailure struct {
	Name  string
	Field string
	Cause error
}

// ContentSelectionError means at least one required sub-selector failed
type ContentSelectionError struct {
	Failed []SubFailure
}

func (e *ContentSelectionError) Error() string {
	parts := make([]string, 0, len(e.Failed))
	for _, f := range e.Failed {
		parts = append(parts, fmt.Sprintf("%s: %v", f.Name, f.Cause))
	}
	return fmt.Sprintf("content selection failed: required sub-selectors failed: %s", strings.Join(parts, "; "))
}

func (e *ContentSelectionError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, f := range e.Failed {
		errs = append(errs, f.Cause)
	}
	return errs
}

// FailedNames lists the failed sub-selector names
func (e *ContentSelectionError) FailedNames() []string {
	names := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		names[i] = f.Name
	}
	return names
}

package state

import (
	"errors"
	"fmt"
)

// ErrNotYetRun is returned for a stage whose output is not in the state yet
var ErrNotYetRun = errors.New("stage has not run yet")

// MissingStateError is returned when no state file exists at Path
type MissingStateError struct {
	Path string
}

func (e *MissingStateError) Error() string {
	return fmt.Sprintf("no pipeline state at %s", e.Path)
}

// CorruptStateError is returned when a state file cannot be used
type CorruptStateError struct {
	Path  string
	Cause error
}

func (e *CorruptStateError) Error() string {
	return fmt.Sprintf("corrupt pipeline state at %s: %v", e.Path, e.Cause)
}

func (e *CorruptStateError) Unwrap() error {
	return e.Cause
}

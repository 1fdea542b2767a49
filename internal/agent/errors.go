package agent

import (
	"fmt"
	"strings"
)

// ParseError means the raw model output could not be read as the expected structure.
// It is recovered locally by Execute's retry loop.
type ParseError struct {
	Message string
	Fields  []string // invalid or missing fields, when known
	Cause   error
}

func (e *ParseError) Error() string {
	msg := e.Message
	if len(e.Fields) > 0 {
		msg = fmt.Sprintf("%s [%s]", msg, strings.Join(e.Fields, ", "))
	}
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", msg, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", msg)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ExhaustedError means every attempt failed. LastRaw holds the final model output
// for diagnosis (empty when the last attempt never got a response).
type ExhaustedError struct {
	Agent    string
	Attempts int
	LastRaw  string
	Cause    error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("agent %s exhausted after %d attempts: %v", e.Agent, e.Attempts, e.Cause)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Cause
}

// PromptError means the prompt could not be built from the inputs. It is not retried.
type PromptError struct {
	Agent string
	Cause error
}

func (e *PromptError) Error() string {
	return fmt.Sprintf("agent %s: failed to build prompt: %v", e.Agent, e.Cause)
}

func (e *PromptError) Unwrap() error {
	return e.Cause
}

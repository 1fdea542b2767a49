// Package rendering turns a final resume draft into HTML and, through headless
// Chrome, into PDF.
package rendering

import "fmt"

// TemplateError represents an error parsing or executing the HTML template
type TemplateError struct {
	Message string
	Cause   error
}

func (e *TemplateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("template error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("template error: %s", e.Message)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// RenderError represents a general rendering failure
type RenderError struct {
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("render error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("render error: %s", e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// PageLimitError is returned when the PDF is longer than the workflow allows
type PageLimitError struct {
	Pages    int
	MaxPages int
}

func (e *PageLimitError) Error() string {
	return fmt.Sprintf("resume is %d pages, limit is %d", e.Pages, e.MaxPages)
}

// Package types provides type definitions for structured data used throughout the resume-tailor system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// StyleEdit is Agent 5's output. A skipped edit carries the input draft unchanged.
type StyleEdit struct {
	EditedDraft ResumeDraft `json:"edited_draft"`
	Changes     []Change    `json:"changes,omitempty"`
	Notes       string      `json:"notes,omitempty"`
	Skipped     bool        `json:"skipped,omitempty"`
}

// Package types provides type definitions for structured data used throughout the resume-tailor system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Claim verdicts
const (
	VerdictVerified     = "verified"
	VerdictUnverifiable = "unverifiable"
	VerdictFabricated   = "fabricated"
)

// Issue severities
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
)

// ValidationReport is Agent 4's fabrication check over a draft
type ValidationReport struct {
	IsValid        bool              `json:"is_valid"`
	Verdicts       []ClaimVerdict    `json:"verdicts" validate:"dive"`
	Issues         []ValidationIssue `json:"issues,omitempty" validate:"dive"`
	CorrectedDraft ResumeDraft       `json:"corrected_draft"`
	Changes        []Change          `json:"changes,omitempty"`
	Summary        string            `json:"summary,omitempty"`
	Attempts       int               `json:"attempts,omitempty"` // fabrication check passes run
}

// ClaimVerdict is the verdict for one claim in the draft
type ClaimVerdict struct {
	Claim    string `json:"claim" validate:"required"`
	Section  string `json:"section,omitempty"`
	Status   string `json:"status" validate:"oneof=verified unverifiable fabricated"`
	SourceID string `json:"source_id,omitempty"`
	Note     string `json:"note,omitempty"`
	Resolved bool   `json:"resolved,omitempty"` // corrected in corrected_draft
}

// ValidationIssue is a problem found by the model or by local structural checks
type ValidationIssue struct {
	Severity string `json:"severity" validate:"oneof=critical warning info"`
	Type     string `json:"type"`
	Location string `json:"location,omitempty"`
	Message  string `json:"message"`
}

// HasUnresolvedFabrication reports whether a fabricated claim survived correction
// or a critical issue remains.
func (r *ValidationReport) HasUnresolvedFabrication() bool {
	for _, v := range r.Verdicts {
		if v.Status == VerdictFabricated && !v.Resolved {
			return true
		}
	}
	for _, issue := range r.Issues {
		if issue.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// CountByStatus tallies verdicts by status
func (r *ValidationReport) CountByStatus() map[string]int {
	counts := make(map[string]int)
	for _, v := range r.Verdicts {
		counts[v.Status]++
	}
	return counts
}

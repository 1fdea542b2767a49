// Package validation checks a resume draft for fabricated claims. A local
// structural pass runs first and its findings are handed to the fabrication
// validator agent, which returns verdicts and a corrected draft.
package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/types"
)

// Structural issue types
const (
	IssueUnknownSource   = "unknown_source"
	IssueMissingSection  = "missing_section"
	IssueOrphanCitation  = "orphan_citation"
	IssueContactMismatch = "contact_mismatch"
	IssueNoCitations     = "no_citations"
)

// StructuralIssues checks a draft against the selection it was written from.
// Every citation must point at a selected record and every required section of
// schema must be present. schema may be nil.
func StructuralIssues(draft *types.ResumeDraft, selection *types.ContentSelection, schema *schemas.Schema) []types.ValidationIssue {
	var issues []types.ValidationIssue

	known := selection.SourceIDs()
	for i, c := range draft.Citations {
		if !known[c.SourceID] {
			issues = append(issues, types.ValidationIssue{
				Severity: types.SeverityCritical,
				Type:     IssueUnknownSource,
				Location: fmt.Sprintf("citations[%d]", i),
				Message:  fmt.Sprintf("citation source %q is not in the selected content", c.SourceID),
			})
		}
		if _, ok := draft.Sections[c.Section]; c.Section != "" && !ok {
			issues = append(issues, types.ValidationIssue{
				Severity: types.SeverityWarning,
				Type:     IssueOrphanCitation,
				Location: fmt.Sprintf("citations[%d]", i),
				Message:  fmt.Sprintf("citation refers to section %q which the draft does not contain", c.Section),
			})
		}
	}

	if schema != nil {
		for _, sec := range schema.Sections {
			if _, ok := draft.Sections[sec.Name]; sec.Required && !ok {
				issues = append(issues, types.ValidationIssue{
					Severity: types.SeverityCritical,
					Type:     IssueMissingSection,
					Location: sec.Name,
					Message:  fmt.Sprintf("required section %q is missing", sec.Name),
				})
			}
		}
	}

	if name := contactName(draft); name != "" && selection.Contact.Name != "" &&
		!strings.EqualFold(strings.TrimSpace(name), strings.TrimSpace(selection.Contact.Name)) {
		issues = append(issues, types.ValidationIssue{
			Severity: types.SeverityCritical,
			Type:     IssueContactMismatch,
			Location: "contact.name",
			Message:  fmt.Sprintf("contact name %q does not match the candidate %q", name, selection.Contact.Name),
		})
	}

	if len(draft.Citations) == 0 && len(draft.Sections) > 0 {
		issues = append(issues, types.ValidationIssue{
			Severity: types.SeverityWarning,
			Type:     IssueNoCitations,
			Message:  "draft has no citations so claims cannot be traced",
		})
	}

	sort.SliceStable(issues, func(i, j int) bool {
		return severityRank(issues[i].Severity) < severityRank(issues[j].Severity)
	})
	return issues
}

func contactName(draft *types.ResumeDraft) string {
	contact, ok := draft.Sections["contact"].(map[string]any)
	if !ok {
		return ""
	}
	name, _ := contact["name"].(string)
	return name
}

func severityRank(s string) int {
	switch s {
	case types.SeverityCritical:
		return 0
	case types.SeverityWarning:
		return 1
	default:
		return 2
	}
}

// Package types provides type definitions for structured data used throughout the resume-tailor system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// QA statuses
const (
	QAStatusPass             = "pass"
	QAStatusPassWithWarnings = "pass_with_warnings"
	QAStatusFail             = "fail"
)

// QAReport is Agent 6's final quality review
type QAReport struct {
	OverallStatus       string         `json:"overall_status" validate:"oneof=pass pass_with_warnings fail"`
	OverallScore        int            `json:"overall_score" validate:"gte=0,lte=100"`
	ReadyToSubmit       bool           `json:"ready_to_submit"`
	SectionScores       map[string]int `json:"section_scores,omitempty"`
	Issues              []QAIssue      `json:"issues,omitempty" validate:"dive"`
	Strengths           []string       `json:"strengths,omitempty"`
	AreasForImprovement []string       `json:"areas_for_improvement,omitempty"`
	FinalRecommendation string         `json:"final_recommendation,omitempty"`
}

// QAIssue is one problem the reviewer found
type QAIssue struct {
	Severity   string `json:"severity" validate:"oneof=critical warning info"`
	Section    string `json:"section,omitempty"`
	Message    string `json:"message" validate:"required"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Passes reports whether the report clears the score threshold
func (r *QAReport) Passes(threshold int) bool {
	return r.OverallScore >= threshold
}

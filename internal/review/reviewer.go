// Package review runs the final quality reviewer over the finished draft.
package review

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jonathan/resume-tailor/internal/agent"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/prompts"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/jonathan/resume-tailor/internal/workflow"
)

// Score bands used when the model omits a status
const (
	PassScore    = 85
	WarningScore = 70
)

// Input is one review
type Input struct {
	Analysis *types.JobAnalysis
	Draft    *types.ResumeDraft
}

// Reviewer is the quality reviewer agent
type Reviewer struct {
	agent *agent.Agent[Input, *types.QAReport]
}

// NewReviewer creates a quality reviewer
func NewReviewer(client llm.Client, opts agent.Options, logger *slog.Logger) *Reviewer {
	if opts.Logger == nil {
		opts.Logger = logger
	}
	if opts.Tier == "" {
		opts.Tier = llm.TierAdvanced
	}
	return &Reviewer{agent: agent.New(workflow.AgentQualityReviewer, client, buildPrompt, parseReport, opts)}
}

// Review scores the draft against the job
func (r *Reviewer) Review(ctx context.Context, in Input) (*types.QAReport, error) {
	return r.agent.Execute(ctx, in)
}

func buildPrompt(in Input) (string, error) {
	if in.Analysis == nil || in.Draft == nil {
		return "", fmt.Errorf("analysis and draft are required")
	}
	analysisJSON, err := json.MarshalIndent(in.Analysis, "", "  ")
	if err != nil {
		return "", err
	}
	draftJSON, err := json.MarshalIndent(in.Draft, "", "  ")
	if err != nil {
		return "", err
	}
	return prompts.Render("review.json", "final-qa", map[string]string{
		"JobAnalysis": string(analysisJSON),
		"Draft":       string(draftJSON),
	})
}

// StatusForScore maps a score onto the status bands
func StatusForScore(score int) string {
	switch {
	case score >= PassScore:
		return types.QAStatusPass
	case score >= WarningScore:
		return types.QAStatusPassWithWarnings
	default:
		return types.QAStatusFail
	}
}

func normalizeReport(r *types.QAReport) {
	if r.OverallStatus == "" {
		r.OverallStatus = StatusForScore(r.OverallScore)
	}
	if r.OverallStatus == types.QAStatusFail {
		r.ReadyToSubmit = false
	}
	for i := range r.Issues {
		if r.Issues[i].Severity == "" {
			r.Issues[i].Severity = types.SeverityWarning
		}
	}
	for name, score := range r.SectionScores {
		r.SectionScores[name] = min(max(score, 0), 100)
	}
}

var parseJSON = agent.JSONParser(normalizeReport)

func parseReport(raw string) (*types.QAReport, error) {
	r, err := parseJSON(raw)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

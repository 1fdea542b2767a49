package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jonathan/resume-tailor/internal/agent"
	"github.com/jonathan/resume-tailor/internal/drafting"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/prompts"
	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/jonathan/resume-tailor/internal/workflow"
)

// Input is one fabrication check
type Input struct {
	Draft     *types.ResumeDraft
	Selection *types.ContentSelection
	Schema    *schemas.Schema // optional, enables the shape and missing-section checks
}

// Checker is the fabrication validator agent
type Checker struct {
	client llm.Client
	opts   agent.Options
	logger *slog.Logger
}

// NewChecker creates a fabrication checker
func NewChecker(client llm.Client, opts agent.Options, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Logger == nil {
		opts.Logger = logger
	}
	if opts.Tier == "" {
		opts.Tier = llm.TierAdvanced
	}
	return &Checker{client: client, opts: opts, logger: logger}
}

// Check runs one fabrication pass. Structural issues of the input draft go into
// the prompt; those of the corrected draft are added to the report.
func (c *Checker) Check(ctx context.Context, in Input) (*types.ValidationReport, error) {
	if in.Draft == nil || in.Selection == nil {
		return nil, &agent.PromptError{Agent: workflow.AgentFabricationValidator, Cause: fmt.Errorf("draft and selection are required")}
	}

	a := agent.New(workflow.AgentFabricationValidator, c.client, buildPrompt, parseReport(in.Draft, in.Schema), c.opts)
	report, err := a.Execute(ctx, in)
	if err != nil {
		return nil, err
	}

	report.Issues = append(report.Issues, StructuralIssues(&report.CorrectedDraft, in.Selection, in.Schema)...)
	report.IsValid = report.IsValid && !report.HasUnresolvedFabrication()
	report.Attempts = 1
	return report, nil
}

// Run checks the draft, then re-checks the corrected draft up to maxRetries more
// times while fabrication remains unresolved. The last report is returned with
// Attempts set; callers decide what an unresolved final report means.
func (c *Checker) Run(ctx context.Context, in Input, maxRetries int) (*types.ValidationReport, error) {
	report, err := c.Check(ctx, in)
	if err != nil {
		return nil, err
	}

	attempts := 1
	for report.HasUnresolvedFabrication() && attempts <= maxRetries {
		c.logger.Info("fabrication unresolved, re-checking corrected draft",
			"attempt", attempts+1, "max_attempts", maxRetries+1, "fabricated", report.CountByStatus()[types.VerdictFabricated])

		next := in
		next.Draft = &report.CorrectedDraft
		report, err = c.Check(ctx, next)
		if err != nil {
			return nil, err
		}
		attempts++
	}
	report.Attempts = attempts
	return report, nil
}

func buildPrompt(in Input) (string, error) {
	selectionJSON, err := json.MarshalIndent(in.Selection, "", "  ")
	if err != nil {
		return "", err
	}
	draftJSON, err := json.MarshalIndent(in.Draft, "", "  ")
	if err != nil {
		return "", err
	}

	structural := "none"
	if issues := StructuralIssues(in.Draft, in.Selection, in.Schema); len(issues) > 0 {
		data, err := json.MarshalIndent(issues, "", "  ")
		if err != nil {
			return "", err
		}
		structural = string(data)
	}

	return prompts.Render("validation.json", "check-fabrication", map[string]string{
		"ContentSelection": string(selectionJSON),
		"Draft":            string(draftJSON),
		"StructuralIssues": structural,
	})
}

// parseReport decodes a report. A missing corrected draft means the input was
// left as is; issues without a severity become warnings. A corrected draft that
// breaks the section schema is a parse failure.
func parseReport(input *types.ResumeDraft, schema *schemas.Schema) agent.ParseFunc[*types.ValidationReport] {
	normalize := func(r *types.ValidationReport) {
		if len(r.CorrectedDraft.Sections) == 0 {
			if clone, err := input.Clone(); err == nil {
				r.CorrectedDraft = *clone
			}
		}
		if len(r.CorrectedDraft.SectionOrder) == 0 {
			r.CorrectedDraft.SectionOrder = append([]string(nil), input.SectionOrder...)
		}
		for i := range r.Issues {
			if r.Issues[i].Severity == "" {
				r.Issues[i].Severity = types.SeverityWarning
			}
		}
	}
	parse := agent.WithCheck(agent.JSONParser(normalize), func(r types.ValidationReport) error {
		return drafting.CheckShape(schema, &r.CorrectedDraft)
	})
	return func(raw string) (*types.ValidationReport, error) {
		r, err := parse(raw)
		if err != nil {
			return nil, err
		}
		return &r, nil
	}
}

package rewriting

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"sort"

	"github.com/jonathan/resume-tailor/internal/agent"
	"github.com/jonathan/resume-tailor/internal/drafting"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/prompts"
	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/jonathan/resume-tailor/internal/workflow"
)

var figurePattern = regexp.MustCompile(`\d+(?:[.,]\d+)*%?`)

// Input is one style edit
type Input struct {
	Analysis *types.JobAnalysis
	Draft    *types.ResumeDraft
	Cliches  []string        // nil means DefaultCliches
	Schema   *schemas.Schema // optional; the edited draft must match it
	// Review is the previous QA report when the edit is re-run after a low score
	Review *types.QAReport
}

// Editor is the style editor agent
type Editor struct {
	client llm.Client
	opts   agent.Options
	logger *slog.Logger
}

// NewEditor creates a style editor
func NewEditor(client llm.Client, opts agent.Options, logger *slog.Logger) *Editor {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Logger == nil {
		opts.Logger = logger
	}
	if opts.Tier == "" {
		opts.Tier = llm.TierAdvanced
	}
	return &Editor{client: client, opts: opts, logger: logger}
}

// Edit polishes the draft. The edited draft must keep the same sections and may
// not introduce figures the input did not contain.
func (e *Editor) Edit(ctx context.Context, in Input) (*types.StyleEdit, error) {
	if in.Draft == nil || in.Analysis == nil {
		return nil, &agent.PromptError{Agent: workflow.AgentStyleEditor, Cause: fmt.Errorf("analysis and draft are required")}
	}

	findings := append(Check(in.Draft, in.Cliches), reviewFindings(in.Review)...)
	e.logger.Debug("style findings", "count", len(findings))

	a := agent.New(workflow.AgentStyleEditor, e.client,
		func(in Input) (string, error) { return buildPrompt(in, findings) },
		parseEdit(in.Draft, in.Schema),
		e.opts)
	return a.Execute(ctx, in)
}

// reviewFindings turns reviewer issues and improvement areas into findings
func reviewFindings(r *types.QAReport) []Finding {
	if r == nil {
		return nil
	}
	var out []Finding
	for _, issue := range r.Issues {
		msg := issue.Message
		if issue.Suggestion != "" {
			msg += ": " + issue.Suggestion
		}
		out = append(out, Finding{Section: issue.Section, Rule: RuleReviewer, Message: msg})
	}
	for _, area := range r.AreasForImprovement {
		out = append(out, Finding{Rule: RuleReviewer, Message: area})
	}
	return out
}

// Skip returns the input draft unchanged, for workflows without the style editor
func Skip(draft *types.ResumeDraft) (*types.StyleEdit, error) {
	clone, err := draft.Clone()
	if err != nil {
		return nil, err
	}
	return &types.StyleEdit{EditedDraft: *clone, Skipped: true, Notes: "style editing disabled by workflow"}, nil
}

func buildPrompt(in Input, findings []Finding) (string, error) {
	analysisJSON, err := json.MarshalIndent(in.Analysis, "", "  ")
	if err != nil {
		return "", err
	}
	draftJSON, err := json.MarshalIndent(in.Draft, "", "  ")
	if err != nil {
		return "", err
	}

	findingsText := "none"
	if len(findings) > 0 {
		data, err := json.MarshalIndent(findings, "", "  ")
		if err != nil {
			return "", err
		}
		findingsText = string(data)
	}

	return prompts.Render("style.json", "edit-style", map[string]string{
		"JobAnalysis":   string(analysisJSON),
		"StyleFindings": findingsText,
		"Draft":         string(draftJSON),
	})
}

func parseEdit(input *types.ResumeDraft, schema *schemas.Schema) agent.ParseFunc[*types.StyleEdit] {
	normalize := func(e *types.StyleEdit) {
		if len(e.EditedDraft.Sections) == 0 {
			if clone, err := input.Clone(); err == nil {
				e.EditedDraft = *clone
			}
		}
		if len(e.EditedDraft.SectionOrder) == 0 {
			e.EditedDraft.SectionOrder = append([]string(nil), input.SectionOrder...)
		}
		if len(e.EditedDraft.Citations) == 0 {
			e.EditedDraft.Citations = append([]types.Citation(nil), input.Citations...)
		}
	}

	parse := agent.WithCheck(agent.JSONParser(normalize), func(e types.StyleEdit) error {
		if changed := sectionDiff(input.Sections, e.EditedDraft.Sections); len(changed) > 0 {
			return &agent.ParseError{Message: "edited draft changed the set of sections", Fields: changed}
		}
		if added := newFigures(input, &e.EditedDraft); len(added) > 0 {
			return &agent.ParseError{Message: "edited draft introduced figures not in the input", Fields: added}
		}
		return drafting.CheckShape(schema, &e.EditedDraft)
	})

	return func(raw string) (*types.StyleEdit, error) {
		e, err := parse(raw)
		if err != nil {
			return nil, err
		}
		return &e, nil
	}
}

func sectionDiff(before, after map[string]any) []string {
	var diff []string
	for name := range before {
		if _, ok := after[name]; !ok {
			diff = append(diff, name)
		}
	}
	for name := range after {
		if _, ok := before[name]; !ok {
			diff = append(diff, name)
		}
	}
	sort.Strings(diff)
	return diff
}

func newFigures(before, after *types.ResumeDraft) []string {
	known := make(map[string]bool)
	for _, f := range figures(before.Sections) {
		known[f] = true
	}

	var added []string
	for _, f := range figures(after.Sections) {
		if !known[f] {
			added = append(added, f)
			known[f] = true
		}
	}
	return added
}

func figures(sections map[string]any) []string {
	data, err := json.Marshal(sections)
	if err != nil {
		return nil
	}
	return figurePattern.FindAllString(string(data), -1)
}

// Package drafting writes the resume draft from the selected content, shaped by
// the run's section schema.
package drafting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jonathan/resume-tailor/internal/agent"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/prompts"
	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/jonathan/resume-tailor/internal/workflow"
)

// Input is everything the drafter needs for one draft
type Input struct {
	Analysis  *types.JobAnalysis
	Selection *types.ContentSelection
	Config    *types.WorkflowConfig
	Schema    *schemas.Schema
}

// Drafter is the draft generation agent
type Drafter struct {
	client llm.Client
	opts   agent.Options
}

// NewDrafter creates a drafter
func NewDrafter(client llm.Client, opts agent.Options, logger *slog.Logger) *Drafter {
	if opts.Tier == "" {
		opts.Tier = llm.TierAdvanced
	}
	if opts.Logger == nil {
		opts.Logger = logger
	}
	return &Drafter{client: client, opts: opts}
}

// Draft generates a draft. Replies whose sections break the schema are retried.
func (d *Drafter) Draft(ctx context.Context, in Input) (*types.ResumeDraft, error) {
	if in.Schema == nil {
		return nil, &agent.PromptError{Agent: workflow.AgentResumeDrafter, Cause: fmt.Errorf("section schema is required")}
	}
	a := agent.New(workflow.AgentResumeDrafter, d.client, BuildPrompt, ParseDraft(in.Schema), d.opts)
	return a.Execute(ctx, in)
}

// BuildPrompt renders the drafting prompt
func BuildPrompt(in Input) (string, error) {
	if in.Analysis == nil || in.Selection == nil || in.Schema == nil {
		return "", fmt.Errorf("analysis, selection and schema are required")
	}
	analysisJSON, err := json.MarshalIndent(in.Analysis, "", "  ")
	if err != nil {
		return "", err
	}
	selectionJSON, err := json.MarshalIndent(in.Selection, "", "  ")
	if err != nil {
		return "", err
	}
	var constraints types.Constraints
	if in.Config != nil {
		constraints = in.Config.Constraints
	}
	constraintsJSON, err := json.Marshal(constraints)
	if err != nil {
		return "", err
	}

	return prompts.Render("drafting.json", "generate-draft", map[string]string{
		"JobAnalysis":      string(analysisJSON),
		"ContentSelection": string(selectionJSON),
		"SectionOrder":     strings.Join(in.Schema.Names(), ", "),
		"Constraints":      string(constraintsJSON),
		"SectionSchema":    in.Schema.Describe(),
	})
}

// ParseDraft returns a parser that decodes a draft, drops null sections, fixes
// up the section order and validates the sections against schema.
func ParseDraft(schema *schemas.Schema) agent.ParseFunc[*types.ResumeDraft] {
	normalize := func(d *types.ResumeDraft) {
		for name, content := range d.Sections {
			if content == nil {
				delete(d.Sections, name)
			}
		}
		d.SectionOrder = d.OrderedSections(schema.Names())
	}
	parse := agent.WithCheck(agent.JSONParser(normalize), func(d types.ResumeDraft) error {
		return CheckShape(schema, &d)
	})
	return func(raw string) (*types.ResumeDraft, error) {
		d, err := parse(raw)
		if err != nil {
			return nil, err
		}
		return &d, nil
	}
}

// CheckShape validates a draft's sections against schema. A mismatch is a
// ParseError so the agent that produced the draft retries. A nil schema
// accepts any draft.
func CheckShape(schema *schemas.Schema, d *types.ResumeDraft) error {
	if schema == nil {
		return nil
	}
	err := schema.Validate(d.Sections)
	if err == nil {
		return nil
	}
	var verr *schemas.ValidationError
	if errors.As(err, &verr) {
		fields := make([]string, 0, len(verr.Errors))
		for _, fe := range verr.Errors {
			fields = append(fields, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
		}
		return &agent.ParseError{Message: "draft does not match section schema", Fields: fields}
	}
	return err
}

package selection

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/resume-tailor/internal/agent"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/prompts"
	"github.com/jonathan/resume-tailor/internal/ranking"
	"github.com/jonathan/resume-tailor/internal/types"
)

// SubSelector owns exactly one ContentSelection field
type SubSelector struct {
	Name     string
	Field    string
	Required bool
	run      func(ctx context.Context, client llm.Client, opts agent.Options, in subInput) (subOutput, error)
}

type subInput struct {
	analysis *types.JobAnalysis
	db       *types.CandidateDatabase
	now      time.Time
}

// subOutput writes a sub-selector's result into the merged selection
type subOutput struct {
	apply     func(*types.ContentSelection)
	reasoning string
}

// fieldReply is a decoded sub-selector reply
type fieldReply[T any] struct {
	Value     T
	Reasoning string
}

// DefaultSubSelectors returns the six sub-selectors. Skills, experience and
// education are required.
func DefaultSubSelectors() []SubSelector {
	return []SubSelector{
		newSubSelector("skills_selector", types.FieldSkills, true,
			"Group the skills that matter for this job into 3-6 categories, most relevant first. Use only skills listed in the source.",
			func(db *types.CandidateDatabase) map[string][]string { return db.Skills },
			checkSkills,
			func(sel *types.ContentSelection, v map[string][]string) { sel.Skills = v }),
		newSubSelector("experience_selector", types.FieldExperiences, true,
			"Order roles by relevance. Keep company, title and dates unchanged. Keep the 3-6 strongest bullets per role.",
			func(db *types.CandidateDatabase) []types.Experience { return db.Experiences },
			checkIDs(func(v []types.Experience) []string {
				return collectIDs(v, func(e types.Experience) string { return e.ID })
			}),
			func(sel *types.ContentSelection, v []types.Experience) { sel.Experiences = v }),
		newSubSelector("education_selector", types.FieldEducation, true,
			"Include every degree. Put the most relevant first and keep details only when they support the job.",
			func(db *types.CandidateDatabase) []types.Education { return db.Education },
			checkIDs(func(v []types.Education) []string {
				return collectIDs(v, func(e types.Education) string { return e.ID })
			}),
			func(sel *types.ContentSelection, v []types.Education) { sel.Education = v }),
		newSubSelector("project_selector", types.FieldProjects, false,
			"Pick up to 4 projects that show skills the job asks for. An empty list is fine.",
			func(db *types.CandidateDatabase) []types.Project { return db.Projects },
			checkIDs(func(v []types.Project) []string { return collectIDs(v, func(p types.Project) string { return p.ID }) }),
			func(sel *types.ContentSelection, v []types.Project) { sel.Projects = v }),
		newSubSelector("publication_selector", types.FieldPublications, false,
			"Pick publications relevant to the job's domain. An empty list is fine.",
			func(db *types.CandidateDatabase) []types.Publication { return db.Publications },
			checkIDs(func(v []types.Publication) []string {
				return collectIDs(v, func(p types.Publication) string { return p.ID })
			}),
			func(sel *types.ContentSelection, v []types.Publication) { sel.Publications = v }),
		newSubSelector("work_sample_selector", types.FieldWorkSamples, false,
			"Pick work samples a hiring manager for this job would open. An empty list is fine.",
			func(db *types.CandidateDatabase) []types.WorkSample { return db.WorkSamples },
			checkIDs(func(v []types.WorkSample) []string {
				return collectIDs(v, func(w types.WorkSample) string { return w.ID })
			}),
			func(sel *types.ContentSelection, v []types.WorkSample) { sel.WorkSamples = v }),
	}
}

func newSubSelector[T any](
	name, field string,
	required bool,
	guidance string,
	source func(*types.CandidateDatabase) T,
	check func(T, *types.CandidateDatabase) error,
	assign func(*types.ContentSelection, T),
) SubSelector {
	return SubSelector{
		Name:     name,
		Field:    field,
		Required: required,
		run: func(ctx context.Context, client llm.Client, opts agent.Options, in subInput) (subOutput, error) {
			build := func(in subInput) (string, error) {
				analysisJSON, err := json.MarshalIndent(in.analysis, "", "  ")
				if err != nil {
					return "", err
				}
				sourceJSON, err := json.MarshalIndent(source(in.db), "", "  ")
				if err != nil {
					return "", err
				}
				return prompts.Render("selection.json", "select-field", map[string]string{
					"Field":       field,
					"JobAnalysis": string(analysisJSON),
					"Guidance":    guidance,
					"Source":      string(sourceJSON),
					"Ranking":     fieldRanking(field, in),
				})
			}
			parse := parseField(field, func(v T) error { return check(v, in.db) })

			reply, err := agent.New(name, client, build, parse, opts).Execute(ctx, in)
			if err != nil {
				return subOutput{}, err
			}
			return subOutput{
				apply:     func(sel *types.ContentSelection) { assign(sel, reply.Value) },
				reasoning: reply.Reasoning,
			}, nil
		},
	}
}

// fieldRanking returns relevance hints for the fields that have them
func fieldRanking(field string, in subInput) string {
	switch field {
	case types.FieldExperiences:
		return ranking.Hints(0, ranking.RankExperiences(in.analysis, in.db, in.now))
	case types.FieldProjects:
		return ranking.Hints(0, ranking.RankProjects(in.analysis, in.db))
	default:
		return "none"
	}
}

// parseField decodes {"<field>": ..., "reasoning": "..."} and checks the value
func parseField[T any](field string, check func(T) error) agent.ParseFunc[fieldReply[T]] {
	decode := agent.JSONParser[map[string]json.RawMessage]()
	return func(raw string) (fieldReply[T], error) {
		var out fieldReply[T]
		obj, err := decode(raw)
		if err != nil {
			return out, err
		}
		payload, ok := obj[field]
		if !ok {
			return out, &agent.ParseError{Message: "missing selection", Fields: []string{field}}
		}
		if err := json.Unmarshal(payload, &out.Value); err != nil {
			return out, &agent.ParseError{Message: fmt.Sprintf("invalid %s", field), Cause: err}
		}
		if r, ok := obj["reasoning"]; ok {
			_ = json.Unmarshal(r, &out.Reasoning)
		}
		if err := check(out.Value); err != nil {
			return out, &agent.ParseError{Message: fmt.Sprintf("invalid %s", field), Cause: err}
		}
		return out, nil
	}
}

func collectIDs[T any](items []T, id func(T) string) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = id(item)
	}
	return ids
}

// checkIDs rejects records whose id is missing or not in the database
func checkIDs[T any](ids func(T) []string) func(T, *types.CandidateDatabase) error {
	return func(v T, db *types.CandidateDatabase) error {
		known := db.SourceIDs()
		var unknown []string
		for _, id := range ids(v) {
			if !known[id] {
				unknown = append(unknown, fmt.Sprintf("%q", id))
			}
		}
		if len(unknown) > 0 {
			return fmt.Errorf("records not in candidate database: %s", strings.Join(unknown, ", "))
		}
		return nil
	}
}

// checkSkills rejects skills the candidate never listed
func checkSkills(v map[string][]string, db *types.CandidateDatabase) error {
	known := make(map[string]bool)
	for _, skills := range db.Skills {
		for _, s := range skills {
			known[strings.ToLower(strings.TrimSpace(s))] = true
		}
	}
	var unknown []string
	for _, skills := range v {
		for _, s := range skills {
			if !known[strings.ToLower(strings.TrimSpace(s))] {
				unknown = append(unknown, fmt.Sprintf("%q", s))
			}
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("skills not in candidate database: %s", strings.Join(unknown, ", "))
	}
	return nil
}

package selection

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jonathan/resume-tailor/internal/agent"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/prompts"
	"github.com/jonathan/resume-tailor/internal/ranking"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/jonathan/resume-tailor/internal/workflow"
)

// SingleSelector selects every field with one agent call
type SingleSelector struct {
	client          llm.Client
	opts            agent.Options
	logger          *slog.Logger
	dedupeThreshold float64
}

// NewSingleSelector creates the non-parallel selector
func NewSingleSelector(client llm.Client, opts agent.Options, logger *slog.Logger) *SingleSelector {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Logger == nil {
		opts.Logger = logger
	}
	return &SingleSelector{client: client, opts: opts, logger: logger, dedupeThreshold: DefaultDedupeThreshold}
}

type singleInput struct {
	analysis *types.JobAnalysis
	db       *types.CandidateDatabase
	now      time.Time
}

// rankingLimit caps the relevance hints per record kind in the single prompt
const rankingLimit = 8

// Select implements Selector
func (s *SingleSelector) Select(ctx context.Context, analysis *types.JobAnalysis, db *types.CandidateDatabase) (*types.SelectionResult, error) {
	a := agent.New(workflow.AgentContentSelector, s.client, buildSelectPrompt, parseSelection(db), s.opts)
	sel, err := a.Execute(ctx, singleInput{analysis: analysis, db: db, now: time.Now()})
	if err != nil {
		return nil, err
	}

	result := &types.SelectionResult{Selection: sel, Provenance: make(map[string]string)}
	for _, field := range []string{
		types.FieldSkills, types.FieldExperiences, types.FieldEducation,
		types.FieldProjects, types.FieldPublications, types.FieldWorkSamples,
	} {
		result.Provenance[field] = workflow.AgentContentSelector
	}
	copyFromDatabase(&result.Selection, db, result.Provenance)

	if s.dedupeThreshold > 0 {
		result.Removed = Deduplicate(&result.Selection, s.dedupeThreshold)
	}
	return result, nil
}

func buildSelectPrompt(in singleInput) (string, error) {
	analysisJSON, err := json.MarshalIndent(in.analysis, "", "  ")
	if err != nil {
		return "", err
	}
	dbJSON, err := json.MarshalIndent(in.db, "", "  ")
	if err != nil {
		return "", err
	}
	return prompts.Render("selection.json", "select-content", map[string]string{
		"JobAnalysis":       string(analysisJSON),
		"CandidateDatabase": string(dbJSON),
		"Ranking": ranking.Hints(rankingLimit,
			ranking.RankExperiences(in.analysis, in.db, in.now),
			ranking.RankProjects(in.analysis, in.db)),
	})
}

// parseSelection decodes a whole selection and rejects records or skills the database lacks
func parseSelection(db *types.CandidateDatabase) agent.ParseFunc[types.ContentSelection] {
	withContact := func(sel *types.ContentSelection) { sel.Contact = db.Contact }
	return agent.WithCheck(agent.JSONParser(withContact), func(sel types.ContentSelection) error {
		if err := checkSkills(sel.Skills, db); err != nil {
			return err
		}
		var ids []string
		for id := range sel.SourceIDs() {
			ids = append(ids, id)
		}
		return checkIDs(func(v []string) []string { return v })(ids, db)
	})
}

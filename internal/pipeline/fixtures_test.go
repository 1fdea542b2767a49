package pipeline

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/llm/llmtest"
	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/state"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/jonathan/resume-tailor/internal/workflow"
)

var testNow = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

const jobDescription = "Acme is hiring a Staff Backend Engineer. Go, Kafka, distributed systems. Publications a plus."

const analysisReply = `{
	"job_title": "Staff Backend Engineer",
	"company_name": "Acme",
	"role_category": "technical_lead",
	"required_qualifications": [{"text": "Distributed systems", "priority": 1}],
	"keywords": ["go", "kafka", "latency"],
	"recommended_sections": ["publications"],
	"section_priorities": {"publications": 75},
	"recommended_template": "technical_lead"
}`

const selectionReply = `{
	"experiences": [{"id": "exp-1", "company": "Acme", "title": "Senior Engineer", "bullets": ["Reduced p99 latency by 40% by rewriting the cache layer in Go"]}],
	"education": [{"id": "edu-1", "institution": "State University", "degree": "BS Computer Science"}],
	"skills": {"Languages": ["Go"]},
	"reasoning": {"experiences": "latency work"}
}`

var fieldReplies = map[string]string{
	types.FieldSkills:       `{"skills": {"Languages": ["Go"]}}`,
	types.FieldExperiences:  `{"experiences": [{"id": "exp-1", "company": "Acme", "title": "Senior Engineer", "bullets": ["Reduced p99 latency by 40% by rewriting the cache layer in Go"]}]}`,
	types.FieldEducation:    `{"education": [{"id": "edu-1", "institution": "State University", "degree": "BS Computer Science"}]}`,
	types.FieldProjects:     `{"projects": []}`,
	types.FieldPublications: `{"publications": [{"id": "pub-1", "title": "Cache Coherence at Scale"}]}`,
	types.FieldWorkSamples:  `{"work_samples": []}`,
}

const draftReply = `{
	"sections": {
		"contact": {"name": "Ada Lovelace", "email": "ada@example.com"},
		"summary": "Backend engineer focused on latency.",
		"experience": [{"company": "Acme", "title": "Senior Engineer", "bullets": ["Reduced p99 latency by 40%"]}],
		"education": [{"institution": "State University", "degree": "BS Computer Science"}],
		"skills": {"Languages": ["Go"]}
	},
	"section_order": ["contact", "summary", "experience", "skills", "education"],
	"citations": [{"section": "experience", "content": "Reduced p99 latency by 40%", "source_id": "exp-1"}]
}`

const cleanReport = `{
	"is_valid": true,
	"verdicts": [{"claim": "Reduced p99 latency by 40%", "section": "experience", "status": "verified", "source_id": "exp-1"}]
}`

const fabricatedReport = `{
	"is_valid": false,
	"verdicts": [{"claim": "Led a team of 50", "section": "experience", "status": "fabricated"}]
}`

// badShapeReport returns a corrected draft whose sections break the schema
const badShapeReport = `{
	"is_valid": true,
	"verdicts": [{"claim": "Reduced p99 latency by 40%", "section": "experience", "status": "verified", "source_id": "exp-1"}],
	"corrected_draft": {
		"sections": {
			"contact": {"name": "Ada Lovelace"},
			"experience": "Reduced p99 latency by 40%",
			"education": 42
		}
	}
}`

const styleReply = `{"notes": "already concise"}`

// badShapeEdit keeps every section but flattens experience to a string
const badShapeEdit = `{
	"edited_draft": {
		"sections": {
			"contact": {"name": "Ada Lovelace", "email": "ada@example.com"},
			"summary": "Backend engineer focused on latency.",
			"experience": "Reduced p99 latency by 40%",
			"education": [{"institution": "State University", "degree": "BS Computer Science"}],
			"skills": {"Languages": ["Go"]}
		}
	}
}`

const passingQA = `{"overall_status": "pass", "overall_score": 90, "ready_to_submit": true}`

const failingQA = `{"overall_score": 60, "issues": [{"section": "summary", "message": "summary is generic"}]}`

func testCandidates() *types.CandidateDatabase {
	return &types.CandidateDatabase{
		Contact: types.Contact{Name: "Ada Lovelace", Email: "ada@example.com"},
		Experiences: []types.Experience{
			{ID: "exp-1", Company: "Acme", Title: "Senior Engineer", Bullets: []string{
				"Reduced p99 latency by 40% by rewriting the cache layer in Go",
			}},
		},
		Education:    []types.Education{{ID: "edu-1", Institution: "State University", Degree: "BS Computer Science"}},
		Publications: []types.Publication{{ID: "pub-1", Title: "Cache Coherence at Scale"}},
		Skills:       map[string][]string{"Languages": {"Go", "Python"}},
	}
}

// stubs holds one scripted backend per agent so tests can count calls per agent
type stubs struct {
	analyzer *llmtest.Stub
	selector *llmtest.Stub
	drafter  *llmtest.Stub
	checker  *llmtest.Stub
	editor   *llmtest.Stub
	reviewer *llmtest.Stub
}

func newStubs() *stubs {
	return &stubs{
		analyzer: llmtest.NewStub(analysisReply),
		selector: llmtest.NewStub(selectionReply),
		drafter:  llmtest.NewStub(draftReply),
		checker:  llmtest.NewStub(cleanReport),
		editor:   llmtest.NewStub(styleReply),
		reviewer: llmtest.NewStub(passingQA),
	}
}

func (s *stubs) clients() map[string]llm.Client {
	return map[string]llm.Client{
		workflow.AgentJobAnalyzer:          s.analyzer,
		workflow.AgentContentSelector:      s.selector,
		workflow.AgentResumeDrafter:        s.drafter,
		workflow.AgentFabricationValidator: s.checker,
		workflow.AgentStyleEditor:          s.editor,
		workflow.AgentQualityReviewer:      s.reviewer,
	}
}

// fieldRouter answers the parallel sub-selector prompts by field
func fieldRouter(_ context.Context, prompt string, _ int) (string, error) {
	for field, reply := range fieldReplies {
		if strings.Contains(prompt, "candidate's "+field+" for") {
			return reply, nil
		}
	}
	return "{}", nil
}

type harness struct {
	orch   *Orchestrator
	base   string
	mu     sync.Mutex
	events []ProgressEvent
}

func (h *harness) phasesSeen() []int {
	h.mu.Lock()
	defer h.mu.Unlock()
	seen := make(map[int]bool)
	var out []int
	for _, e := range h.events {
		if !seen[e.Phase] {
			seen[e.Phase] = true
			out = append(out, e.Phase)
		}
	}
	return out
}

func newHarness(t *testing.T, kind Kind, s *stubs, configure func(*Deps)) *harness {
	t.Helper()
	catalog, err := workflow.DefaultCatalog()
	require.NoError(t, err)
	configurator, err := workflow.NewConfigurator(schemas.MustDefaultRegistry(), catalog, nil)
	require.NoError(t, err)

	h := &harness{base: t.TempDir()}
	opts := DefaultOptions()
	opts.BaseDir = h.base
	opts.MaxAttempts = 2

	deps := Deps{
		AgentClients: s.clients(),
		Configurator: configurator,
		Candidates:   testCandidates(),
		Options:      opts,
		Now:          func() time.Time { return testNow },
		OnProgress: func(e ProgressEvent) {
			h.mu.Lock()
			h.events = append(h.events, e)
			h.mu.Unlock()
		},
	}
	if configure != nil {
		configure(&deps)
	}

	h.orch, err = New(kind, deps)
	require.NoError(t, err)
	return h
}

func newRun() *state.PipelineState {
	return state.New(jobDescription, "job.txt", testNow)
}

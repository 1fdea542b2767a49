package selection

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/jonathan/resume-tailor/internal/types"
)

func testDatabase() *types.CandidateDatabase {
	return &types.CandidateDatabase{
		Contact: types.Contact{Name: "Ada Lovelace", Email: "ada@example.com"},
		Experiences: []types.Experience{
			{ID: "exp-1", Company: "Acme", Title: "Senior Engineer", Bullets: []string{
				"Reduced p99 latency by 40% by rewriting the cache layer in Go",
				"Led migration of 30 services to Kubernetes",
			}},
			{ID: "exp-2", Company: "Initech", Title: "Engineer", Bullets: []string{"Maintained billing reports"}},
		},
		Projects: []types.Project{
			{ID: "proj-1", Name: "cachekit", Bullets: []string{"Reduced p99 latency 40% by rewriting the caching layer in Go"}},
		},
		Education:      []types.Education{{ID: "edu-1", Institution: "State University", Degree: "BS Computer Science"}},
		Publications:   []types.Publication{{ID: "pub-1", Title: "Cache Coherence at Scale"}},
		Skills:         map[string][]string{"Languages": {"Go", "Python"}, "Infrastructure": {"Kubernetes"}},
		Certifications: []types.Certification{{ID: "cert-1", Name: "CKA"}},
		WorkSamples:    []types.WorkSample{{ID: "ws-1", Title: "Design doc"}},
	}
}

func testAnalysis() *types.JobAnalysis {
	return &types.JobAnalysis{
		JobTitle: "Backend Engineer",
		Keywords: []string{"go", "kubernetes", "latency"},
	}
}

var fieldReplies = map[string]string{
	types.FieldSkills:       `{"skills": {"Languages": ["Go"], "Infrastructure": ["Kubernetes"]}, "reasoning": "matches the stack"}`,
	types.FieldExperiences:  `{"experiences": [{"id": "exp-1", "company": "Acme", "title": "Senior Engineer", "bullets": ["Reduced p99 latency by 40% by rewriting the cache layer in Go"]}]}`,
	types.FieldEducation:    `{"education": [{"id": "edu-1", "institution": "State University", "degree": "BS Computer Science"}]}`,
	types.FieldProjects:     `{"projects": [{"id": "proj-1", "name": "cachekit", "bullets": ["Reduced p99 latency 40% by rewriting the caching layer in Go"]}]}`,
	types.FieldPublications: `{"publications": []}`,
	types.FieldWorkSamples:  `{"work_samples": [{"id": "ws-1", "title": "Design doc"}]}`,
}

// fieldRouter answers select-field prompts per field and counts calls per field
type fieldRouter struct {
	mu      sync.Mutex
	calls   map[string]int
	replies map[string][]string // field -> scripted replies, last repeats
	fail    map[string]bool
}

func newFieldRouter() *fieldRouter {
	r := &fieldRouter{calls: make(map[string]int), replies: make(map[string][]string), fail: make(map[string]bool)}
	for field, reply := range fieldReplies {
		r.replies[field] = []string{reply}
	}
	return r
}

func fieldOf(prompt string) string {
	for field := range fieldReplies {
		if strings.Contains(prompt, "candidate's "+field+" for") {
			return field
		}
	}
	return ""
}

func (r *fieldRouter) handle(_ context.Context, prompt string, _ int) (string, error) {
	field := fieldOf(prompt)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[field]++
	if r.fail[field] {
		return "", errors.New("backend unavailable")
	}
	script := r.replies[field]
	idx := r.calls[field] - 1
	if idx >= len(script) {
		idx = len(script) - 1
	}
	return script[idx], nil
}

func (r *fieldRouter) callsFor(field string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[field]
}

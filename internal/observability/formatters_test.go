package observability

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/state"
	"github.com/jonathan/resume-tailor/internal/types"
)

func TestPrintJobAnalysis(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintJobAnalysis(&types.JobAnalysis{
		JobTitle:       "Senior Engineer",
		CompanyName:    "Acme Corp",
		RoleCategory:   "software_engineering",
		SeniorityLevel: "senior",
		RequiredQualifications: []types.Requirement{
			{Text: "5+ years of Go"},
			{Text: "Kubernetes"},
		},
		RecommendedSections: []string{"experience", "skills"},
	})
	output := buf.String()

	assert.Contains(t, output, "JOB ANALYSIS")
	assert.Contains(t, output, "Acme Corp")
	assert.Contains(t, output, "Senior Engineer")
	assert.Contains(t, output, "software_engineering")
	assert.Contains(t, output, "5+ years of Go")
	assert.Contains(t, output, "experience")
}

func TestPrintJobAnalysis_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintJobAnalysis(nil)
	assert.Empty(t, buf.String())
}

func TestPrintJobAnalysis_TruncatesLongLists(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	reqs := make([]types.Requirement, 8)
	for i := range reqs {
		reqs[i] = types.Requirement{Text: "requirement"}
	}
	p.PrintJobAnalysis(&types.JobAnalysis{JobTitle: "Engineer", RequiredQualifications: reqs})

	assert.Contains(t, buf.String(), "... and 3 more")
}

func TestPrintWorkflowConfig(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintWorkflowConfig(&types.WorkflowConfig{
		Template: "research",
		EnabledSections: []types.SectionPriority{
			{Name: "publications", Priority: 95},
			{Name: "experience", Priority: 80},
		},
		ActiveAgents:  []string{"job_analyzer", "content_selector"},
		Constraints:   types.Constraints{MaxPages: 2},
		SkipStyleEdit: true,
		Source:        "static",
	})
	output := buf.String()

	assert.Contains(t, output, "WORKFLOW CONFIG")
	assert.Contains(t, output, "research (static)")
	assert.Contains(t, output, "publications")
	assert.Contains(t, output, "Max pages: 2")
	assert.Contains(t, output, "job_analyzer, content_selector")
	assert.Contains(t, output, "Style edit: skipped")
	assert.Less(t, strings.Index(output, "publications"), strings.Index(output, "experience"))
}

func TestPrintSelection(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintSelection(&types.SelectionResult{
		Selection: types.ContentSelection{
			Experiences: []types.Experience{{ID: "exp-1"}, {ID: "exp-2"}},
			Skills:      map[string][]string{"languages": {"Go"}},
		},
		Provenance: map[string]string{"experiences": "experience_selector", "skills": "skills_selector"},
		Warnings:   []string{"projects selector failed"},
		Removed:    []string{"duplicate bullet"},
	})
	output := buf.String()

	assert.Contains(t, output, "CONTENT SELECTION")
	assert.Contains(t, output, "Experiences:    2")
	assert.Contains(t, output, "experience_selector")
	assert.Contains(t, output, "Removed bullets: 1")
	assert.Contains(t, output, "⚠ projects selector failed")
}

func TestPrintValidation(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintValidation(&types.ValidationReport{
		Verdicts: []types.ClaimVerdict{
			{Claim: "Led 5 engineers", Status: types.VerdictVerified},
			{Claim: "Won a Turing award", Status: types.VerdictFabricated},
			{Claim: "Cut costs 40%", Status: types.VerdictFabricated, Resolved: true},
		},
	})
	output := buf.String()

	assert.Contains(t, output, "FABRICATION CHECK")
	assert.Contains(t, output, "unresolved fabrication")
	assert.Contains(t, output, "Verified:     1")
	assert.Contains(t, output, "Fabricated:   2")
	assert.Contains(t, output, "Won a Turing award")
	assert.NotContains(t, output, "Cut costs")
}

func TestPrintQAReport(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintQAReport(&types.QAReport{
		OverallStatus: types.QAStatusPassWithWarnings,
		OverallScore:  72,
		SectionScores: map[string]int{"experience": 80, "skills": 60},
		Issues:        []types.QAIssue{{Severity: "warning", Message: "summary is generic"}},
	}, 80)
	output := buf.String()

	assert.Contains(t, output, "QUALITY REVIEW")
	assert.Contains(t, output, "⚠ Score 72/100 (threshold 80)")
	assert.Contains(t, output, "Ready to submit: false")
	assert.Contains(t, output, "[warning] summary is generic")
	assert.Less(t, strings.Index(output, "experience"), strings.Index(output, "skills"))
}

func TestPrintRunStatus(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	st := state.New("Senior Go Engineer at Acme", "jd.txt", now)
	st.JobAnalysis = &types.JobAnalysis{JobTitle: "Senior Go Engineer", CompanyName: "Acme"}
	st.Flags.BelowQualityThreshold = true
	st.AddError(2, errors.New("drafter timed out"), now)

	p.PrintRunStatus(st)
	output := buf.String()

	assert.Contains(t, output, "RUN STATUS")
	assert.Contains(t, output, st.RunID)
	assert.Contains(t, output, "✓ job_analysis")
	assert.Contains(t, output, "· draft")
	assert.Contains(t, output, "below quality threshold")
	assert.Contains(t, output, "phase 2: drafter timed out")
}

func TestPrintRuns(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRuns(nil)
	assert.Equal(t, "no runs found\n", buf.String())

	buf.Reset()
	p.PrintRuns([]state.RunSummary{{
		Dir:       "runs/acme",
		Phase:     state.Phase3Complete,
		Company:   "Acme",
		Title:     "Engineer",
		UpdatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Flags:     state.Flags{UnresolvedFabrication: true},
	}})
	output := buf.String()

	assert.Contains(t, output, "2026-03-01 12:00")
	assert.Contains(t, output, "phase3_complete")
	assert.Contains(t, output, "Acme / Engineer [fabrication]")
	assert.Contains(t, output, "runs/acme")
}

func TestPrintProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintProgress(pipeline.ProgressEvent{Category: pipeline.CategoryReview, Message: "QA score 85"})
	assert.Equal(t, "[review] QA score 85\n", buf.String())
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("x", 100))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")

	require.Len(t, lines, 5)
	assert.Contains(t, lines[3], "...")
	for _, line := range lines {
		assert.Equal(t, boxWidth, len([]rune(line)))
	}
}

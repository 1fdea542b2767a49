package validation

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/agent"
	"github.com/jonathan/resume-tailor/internal/llm/llmtest"
	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/types"
)

func testSelection() *types.ContentSelection {
	return &types.ContentSelection{
		Contact:     types.Contact{Name: "Ada Lovelace"},
		Experiences: []types.Experience{{ID: "exp-1", Company: "Acme"}},
		Education:   []types.Education{{ID: "edu-1", Institution: "State University"}},
	}
}

func draftFromJSON(t *testing.T, data string) *types.ResumeDraft {
	t.Helper()
	var d types.ResumeDraft
	require.NoError(t, json.Unmarshal([]byte(data), &d))
	return &d
}

const inputDraft = `{
	"sections": {
		"contact": {"name": "Ada Lovelace"},
		"experience": [{"company": "Acme", "title": "Engineer", "bullets": ["Reduced p99 latency by 40%"]}],
		"education": [{"institution": "State University", "degree": "BS"}]
	},
	"section_order": ["contact", "experience", "education"],
	"citations": [{"section": "experience", "content": "Reduced p99 latency by 40%", "source_id": "exp-1"}]
}`

const cleanReport = `{
	"is_valid": true,
	"verdicts": [{"claim": "Reduced p99 latency by 40%", "section": "experience", "status": "verified", "source_id": "exp-1"}],
	"summary": "all claims verified"
}`

const fabricatedReport = `{
	"is_valid": false,
	"verdicts": [{"claim": "Led a team of 50", "section": "experience", "status": "fabricated"}],
	"issues": [{"type": "fabrication", "message": "team size not in source"}]
}`

func TestStructuralIssues(t *testing.T) {
	schema, err := schemas.MustDefaultRegistry().BuildResumeSchema([]string{"summary"})
	require.NoError(t, err)

	draft := draftFromJSON(t, `{
		"sections": {
			"contact": {"name": "Grace Hopper"},
			"experience": [{"company": "Acme", "title": "Engineer", "bullets": []}]
		},
		"citations": [
			{"section": "experience", "content": "x", "source_id": "exp-1"},
			{"section": "awards", "content": "y", "source_id": "award-9"}
		]
	}`)

	issues := StructuralIssues(draft, testSelection(), schema)

	byType := make(map[string]types.ValidationIssue)
	for _, i := range issues {
		byType[i.Type] = i
	}
	assert.Equal(t, types.SeverityCritical, byType[IssueUnknownSource].Severity)
	assert.Equal(t, "citations[1]", byType[IssueUnknownSource].Location)
	assert.Equal(t, types.SeverityWarning, byType[IssueOrphanCitation].Severity)
	assert.Equal(t, "education", byType[IssueMissingSection].Location)
	assert.Contains(t, byType[IssueContactMismatch].Message, "Grace Hopper")
	assert.NotContains(t, byType, IssueNoCitations)

	// critical issues sort first
	assert.Equal(t, types.SeverityCritical, issues[0].Severity)
	assert.Equal(t, types.SeverityWarning, issues[len(issues)-1].Severity)
}

func TestStructuralIssues_Clean(t *testing.T) {
	assert.Empty(t, StructuralIssues(draftFromJSON(t, inputDraft), testSelection(), nil))

	uncited := draftFromJSON(t, `{"sections": {"contact": {"name": "ada lovelace"}}}`)
	issues := StructuralIssues(uncited, testSelection(), nil)
	require.Len(t, issues, 1)
	assert.Equal(t, IssueNoCitations, issues[0].Type)
}

func TestCheck_CleanReport(t *testing.T) {
	stub := llmtest.NewStub(cleanReport)
	c := NewChecker(stub, agent.Options{MaxAttempts: 1}, nil)

	report, err := c.Check(context.Background(), Input{Draft: draftFromJSON(t, inputDraft), Selection: testSelection()})
	require.NoError(t, err)

	assert.True(t, report.IsValid)
	assert.False(t, report.HasUnresolvedFabrication())
	assert.Equal(t, []string{"contact", "experience", "education"}, report.CorrectedDraft.SectionOrder)
	assert.Contains(t, report.CorrectedDraft.Sections, "experience")
	assert.Equal(t, 1, report.Attempts)
	assert.Contains(t, stub.Prompts()[0], "Issues found by automated checks:\nnone")
}

func TestCheck_StructuralIssuesReachPromptAndReport(t *testing.T) {
	badDraft := draftFromJSON(t, `{
		"sections": {"contact": {"name": "Ada Lovelace"}},
		"citations": [{"section": "contact", "content": "Ada", "source_id": "ghost-1"}]
	}`)
	stub := llmtest.NewStub(cleanReport)
	c := NewChecker(stub, agent.Options{MaxAttempts: 1}, nil)

	report, err := c.Check(context.Background(), Input{Draft: badDraft, Selection: testSelection()})
	require.NoError(t, err)

	assert.Contains(t, stub.Prompts()[0], "ghost-1")
	assert.Contains(t, stub.Prompts()[0], IssueUnknownSource)
	assert.True(t, report.HasUnresolvedFabrication())
	assert.False(t, report.IsValid)
}

func TestCheck_DefaultsIssueSeverity(t *testing.T) {
	c := NewChecker(llmtest.NewStub(fabricatedReport), agent.Options{MaxAttempts: 1}, nil)

	report, err := c.Check(context.Background(), Input{Draft: draftFromJSON(t, inputDraft), Selection: testSelection()})
	require.NoError(t, err)
	require.NotEmpty(t, report.Issues)
	assert.Equal(t, types.SeverityWarning, report.Issues[0].Severity)
	assert.Equal(t, 1, report.CountByStatus()[types.VerdictFabricated])
}

func TestRun_ReChecksUntilResolved(t *testing.T) {
	stub := llmtest.NewStub(fabricatedReport, cleanReport)
	c := NewChecker(stub, agent.Options{MaxAttempts: 1}, nil)

	report, err := c.Run(context.Background(), Input{Draft: draftFromJSON(t, inputDraft), Selection: testSelection()}, 2)
	require.NoError(t, err)

	assert.Equal(t, 2, stub.Calls())
	assert.Equal(t, 2, report.Attempts)
	assert.False(t, report.HasUnresolvedFabrication())
}

func TestRun_StopsAfterMaxRetries(t *testing.T) {
	stub := llmtest.NewStub(fabricatedReport)
	c := NewChecker(stub, agent.Options{MaxAttempts: 1}, nil)

	report, err := c.Run(context.Background(), Input{Draft: draftFromJSON(t, inputDraft), Selection: testSelection()}, 2)
	require.NoError(t, err)

	assert.Equal(t, 3, stub.Calls())
	assert.Equal(t, 3, report.Attempts)
	assert.True(t, report.HasUnresolvedFabrication())
}

func TestRun_NoRetries(t *testing.T) {
	stub := llmtest.NewStub(fabricatedReport)
	c := NewChecker(stub, agent.Options{MaxAttempts: 1}, nil)

	report, err := c.Run(context.Background(), Input{Draft: draftFromJSON(t, inputDraft), Selection: testSelection()}, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, stub.Calls())
	assert.Equal(t, 1, report.Attempts)
}

func TestCheck_AgentExhausted(t *testing.T) {
	c := NewChecker(llmtest.NewStub(`{"verdicts": [{"claim": "", "status": "maybe"}]}`), agent.Options{MaxAttempts: 2}, nil)

	_, err := c.Check(context.Background(), Input{Draft: draftFromJSON(t, inputDraft), Selection: testSelection()})
	var exhausted *agent.ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 2, exhausted.Attempts)
}

func TestCheck_RequiresDraft(t *testing.T) {
	c := NewChecker(llmtest.NewStub(cleanReport), agent.Options{}, nil)
	_, err := c.Check(context.Background(), Input{Selection: testSelection()})
	var promptErr *agent.PromptError
	assert.ErrorAs(t, err, &promptErr)
}

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

func coreSchema(t *testing.T) *schemas.Schema {
	t.Helper()
	schema, err := schemas.MustDefaultRegistry().BuildResumeSchema(nil)
	require.NoError(t, err)
	return schema
}

func TestCheck_RetriesCorrectedDraftWithWrongShape(t *testing.T) {
	stub := llmtest.NewStub(badShapeReport, cleanReport)
	c := NewChecker(stub, agent.Options{MaxAttempts: 2}, nil)
	schema := coreSchema(t)

	report, err := c.Check(context.Background(), Input{Draft: draftFromJSON(t, inputDraft), Selection: testSelection(), Schema: schema})
	require.NoError(t, err)

	assert.Equal(t, 2, stub.Calls())
	assert.NoError(t, schema.Validate(report.CorrectedDraft.Sections))
}

func TestCheck_WrongShapeExhausts(t *testing.T) {
	c := NewChecker(llmtest.NewStub(badShapeReport), agent.Options{MaxAttempts: 2}, nil)

	_, err := c.Check(context.Background(), Input{Draft: draftFromJSON(t, inputDraft), Selection: testSelection(), Schema: coreSchema(t)})
	var exhausted *agent.ExhaustedError
	require.ErrorAs(t, err, &exhausted)

	var parseErr *agent.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Len(t, parseErr.Fields, 2)
	assert.Contains(t, parseErr.Error(), "section schema")
}

func TestCheck_NoSchemaAcceptsAnyShape(t *testing.T) {
	c := NewChecker(llmtest.NewStub(badShapeReport), agent.Options{MaxAttempts: 1}, nil)

	report, err := c.Check(context.Background(), Input{Draft: draftFromJSON(t, inputDraft), Selection: testSelection()})
	require.NoError(t, err)
	assert.Equal(t, float64(42), report.CorrectedDraft.Sections["education"])
}

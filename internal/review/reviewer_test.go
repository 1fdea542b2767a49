package review

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/agent"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/llm/llmtest"
	"github.com/jonathan/resume-tailor/internal/types"
)

func testInput() Input {
	return Input{
		Analysis: &types.JobAnalysis{JobTitle: "Backend Engineer"},
		Draft:    &types.ResumeDraft{Sections: map[string]any{"contact": map[string]any{"name": "Ada"}}},
	}
}

func TestReview(t *testing.T) {
	stub := llmtest.NewStub("```json\n" + `{
		"overall_status": "pass_with_warnings",
		"overall_score": 78,
		"ready_to_submit": true,
		"section_scores": {"experience": 82, "summary": 140},
		"issues": [{"section": "summary", "message": "generic"}],
		"strengths": ["clear impact"]
	}` + "\n```")
	r := NewReviewer(stub, agent.Options{MaxAttempts: 1}, nil)

	report, err := r.Review(context.Background(), testInput())
	require.NoError(t, err)

	assert.Equal(t, 78, report.OverallScore)
	assert.Equal(t, types.QAStatusPassWithWarnings, report.OverallStatus)
	assert.Equal(t, 100, report.SectionScores["summary"])
	assert.Equal(t, types.SeverityWarning, report.Issues[0].Severity)
	assert.True(t, report.Passes(75))
	assert.False(t, report.Passes(80))
	assert.Equal(t, []llm.ModelTier{llm.TierAdvanced}, stub.Tiers())
	assert.Contains(t, stub.Prompts()[0], "Backend Engineer")
}

func TestReview_DerivesStatus(t *testing.T) {
	r := NewReviewer(llmtest.NewStub(`{"overall_score": 40, "ready_to_submit": true}`), agent.Options{MaxAttempts: 1}, nil)

	report, err := r.Review(context.Background(), testInput())
	require.NoError(t, err)
	assert.Equal(t, types.QAStatusFail, report.OverallStatus)
	assert.False(t, report.ReadyToSubmit)
}

func TestReview_RetriesOutOfRangeScore(t *testing.T) {
	stub := llmtest.NewStub(`{"overall_status": "pass", "overall_score": 120}`, `{"overall_status": "pass", "overall_score": 91}`)
	r := NewReviewer(stub, agent.Options{MaxAttempts: 3}, nil)

	report, err := r.Review(context.Background(), testInput())
	require.NoError(t, err)
	assert.Equal(t, 91, report.OverallScore)
	assert.Equal(t, 2, stub.Calls())
}

func TestReview_MissingInput(t *testing.T) {
	stub := llmtest.NewStub(`{"overall_score": 90}`)
	r := NewReviewer(stub, agent.Options{MaxAttempts: 3}, nil)

	_, err := r.Review(context.Background(), Input{})
	var promptErr *agent.PromptError
	assert.ErrorAs(t, err, &promptErr)
	assert.Zero(t, stub.Calls())
}

func TestStatusForScore(t *testing.T) {
	assert.Equal(t, types.QAStatusPass, StatusForScore(85))
	assert.Equal(t, types.QAStatusPassWithWarnings, StatusForScore(84))
	assert.Equal(t, types.QAStatusPassWithWarnings, StatusForScore(70))
	assert.Equal(t, types.QAStatusFail, StatusForScore(69))
}

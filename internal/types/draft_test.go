package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDraft(t *testing.T) *ResumeDraft {
	t.Helper()
	var d ResumeDraft
	require.NoError(t, json.Unmarshal([]byte(`{
		"sections": {
			"contact": {"name": "Ada Lovelace"},
			"experience": [{"title": "Engineer", "bullets": ["Built the engine"]}],
			"skills": {"languages": ["Go"]}
		},
		"section_order": ["contact", "experience"],
		"citations": [{"section": "experience", "content": "Built the engine", "source_id": "exp_001"}]
	}`), &d))
	return &d
}

func TestResumeDraft_Clone(t *testing.T) {
	d := sampleDraft(t)

	clone, err := d.Clone()
	require.NoError(t, err)
	assert.Equal(t, d, clone)

	clone.Sections["contact"].(map[string]any)["name"] = "Someone Else"
	assert.Equal(t, "Ada Lovelace", d.Sections["contact"].(map[string]any)["name"])
}

func TestResumeDraft_OrderedSections(t *testing.T) {
	d := sampleDraft(t)

	order := d.OrderedSections([]string{"skills", "contact", "publications"})
	assert.Equal(t, []string{"contact", "experience", "skills"}, order)
}

func TestResumeDraft_JSONMarshaling(t *testing.T) {
	d := sampleDraft(t)

	jsonBytes, err := json.MarshalIndent(d, "", "  ")
	require.NoError(t, err)
	assert.Contains(t, string(jsonBytes), `"source_id": "exp_001"`)
	assert.Contains(t, string(jsonBytes), `"section_order": [`)
}

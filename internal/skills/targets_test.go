package skills

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/types"
)

func TestBuildTargets_Weights(t *testing.T) {
	targets := BuildTargets(&types.JobAnalysis{
		TechnicalSkills: []string{"Go", "Kubernetes"},
		SoftSkills:      []string{"Mentoring"},
		Keywords:        []string{"microservices"},
	})

	require.Len(t, targets, 4)
	assert.Equal(t, Target{Name: "Go", Weight: 1.0, Source: SourceTechnical}, targets[0])
	assert.Equal(t, Target{Name: "Kubernetes", Weight: 1.0, Source: SourceTechnical}, targets[1])
	assert.Equal(t, Target{Name: "Mentoring", Weight: 0.5, Source: SourceSoft}, targets[2])
	assert.Equal(t, Target{Name: "microservices", Weight: 0.3, Source: SourceKeyword}, targets[3])
}

func TestBuildTargets_DeduplicatesKeepingMaxWeight(t *testing.T) {
	targets := BuildTargets(&types.JobAnalysis{
		TechnicalSkills: []string{"golang", "k8s"},
		Keywords:        []string{"Go", "kubernetes", "Kubernetes"},
	})

	require.Len(t, targets, 2)
	for _, target := range targets {
		assert.Equal(t, 1.0, target.Weight, target.Name)
		assert.Equal(t, SourceTechnical, target.Source, target.Name)
	}
	assert.Equal(t, "Go", targets[0].Name)
	assert.Equal(t, "Kubernetes", targets[1].Name)
}

func TestBuildTargets_Empty(t *testing.T) {
	assert.Empty(t, BuildTargets(nil))
	assert.Empty(t, BuildTargets(&types.JobAnalysis{Keywords: []string{" ", ""}}))
}

func TestSourcePriority(t *testing.T) {
	assert.Greater(t, sourcePriority(SourceTechnical), sourcePriority(SourceSoft))
	assert.Greater(t, sourcePriority(SourceSoft), sourcePriority(SourceKeyword))
	assert.Equal(t, 0, sourcePriority("unknown"))
}

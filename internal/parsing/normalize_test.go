package parsing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/resume-tailor/internal/types"
)

func TestNormalizeSkillName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Golang to Go", "Golang", "Go"},
		{"GOLANG to Go", "GOLANG", "Go"},
		{"go lang to Go", "go lang", "Go"},
		{"JS to JavaScript", "JS", "JavaScript"},
		{"K8s to Kubernetes", "k8s", "Kubernetes"},
		{"nodejs to Node.js", "nodejs", "Node.js"},
		{"postgres to PostgreSQL", "Postgres", "PostgreSQL"},
		{"Unknown kept", "Terraform", "Terraform"},
		{"Empty string", "", ""},
		{"Whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeSkillName(tt.input))
		})
	}
}

func TestNormalizeRoleCategory(t *testing.T) {
	tests := []struct {
		label    string
		title    string
		expected types.RoleCategory
	}{
		{"technical_lead", "", types.RoleTechnicalLead},
		{"Technical Lead", "", types.RoleTechnicalLead},
		{"Engineering-Manager", "", types.RoleEngineeringManager},
		{"", "Staff Software Engineer", types.RoleTechnicalLead},
		{"", "Director of Engineering", types.RoleDirector},
		{"", "VP, Engineering", types.RoleExecutive},
		{"", "Senior Manager, Platform", types.RoleSeniorManager},
		{"", "Engineering Manager (Payments)", types.RoleEngineeringManager},
		{"", "Head of Data", types.RoleDirector},
		{"leadership-ish", "Senior Software Engineer", types.RoleIndividualContributor},
		{"", "", types.RoleIndividualContributor},
	}

	for _, tt := range tests {
		t.Run(tt.label+"|"+tt.title, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeRoleCategory(tt.label, tt.title))
		})
	}
}

func TestNormalizeRequirements(t *testing.T) {
	in := []types.Requirement{
		{Text: "  Go experience ", Priority: 2},
		{Text: "Kubernetes"},
		{Text: "Distributed systems", Priority: 1},
		{Text: "go experience", Priority: 3},
		{Text: "   "},
	}

	out := NormalizeRequirements(in)

	assert.Equal(t, []types.Requirement{
		{Text: "Distributed systems", Priority: 1},
		{Text: "Go experience", Priority: 2},
		{Text: "Kubernetes"},
	}, out)
	assert.Nil(t, NormalizeRequirements(nil))
}

func TestNormalizeKeywords(t *testing.T) {
	assert.Equal(t,
		[]string{"go", "distributed systems", "grpc"},
		NormalizeKeywords([]string{"Go", " distributed systems", "GO", "", "gRPC"}))
}

func TestNormalizeAnalysis(t *testing.T) {
	a := &types.JobAnalysis{
		JobTitle:            "  Principal Engineer ",
		TechnicalSkills:     []string{"golang", "Go", "k8s"},
		SoftSkills:          []string{"Communication", "communication"},
		RecommendedSections: []string{"Work Samples", "open-source", "work_samples"},
		RecommendedAgents:   []string{"Style Editor"},
		SectionPriorities:   map[string]int{"Open Source": 140, "awards": -3},
	}

	NormalizeAnalysis(a)

	assert.Equal(t, "Principal Engineer", a.JobTitle)
	assert.Equal(t, types.RoleTechnicalLead, a.RoleCategory)
	assert.Equal(t, []string{"Go", "Kubernetes"}, a.TechnicalSkills)
	assert.Equal(t, []string{"Communication"}, a.SoftSkills)
	assert.Equal(t, []string{"work_samples", "open_source"}, a.RecommendedSections)
	assert.Equal(t, []string{"style_editor"}, a.RecommendedAgents)
	assert.Equal(t, map[string]int{"open_source": 100, "awards": 0}, a.SectionPriorities)
	assert.Equal(t, "technical_lead", a.RecommendedTemplate)
}

func TestNormalizeAnalysis_KeepsExplicitTemplate(t *testing.T) {
	a := &types.JobAnalysis{
		JobTitle:            "Research Scientist",
		RecommendedTemplate: "Academic Researcher",
	}

	NormalizeAnalysis(a)

	assert.Equal(t, types.RoleIndividualContributor, a.RoleCategory)
	assert.Equal(t, "academic_researcher", a.RecommendedTemplate)
}

// Package types provides type definitions for structured data used throughout the resume-tailor system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// RoleCategory is the coarse role taxonomy used to pick default sections and templates
type RoleCategory string

// Role taxonomy
const (
	RoleIndividualContributor RoleCategory = "individual_contributor"
	RoleTechnicalLead         RoleCategory = "technical_lead"
	RoleEngineeringManager    RoleCategory = "engineering_manager"
	RoleSeniorManager         RoleCategory = "senior_manager"
	RoleDirector              RoleCategory = "director"
	RoleExecutive             RoleCategory = "executive"
)

// RoleCategories lists the taxonomy in seniority order
func RoleCategories() []RoleCategory {
	return []RoleCategory{
		RoleIndividualContributor,
		RoleTechnicalLead,
		RoleEngineeringManager,
		RoleSeniorManager,
		RoleDirector,
		RoleExecutive,
	}
}

// JobAnalysis holds the structured facts Agent 1 extracts from a job posting
type JobAnalysis struct {
	JobTitle                string         `json:"job_title" validate:"required"`
	CompanyName             string         `json:"company_name"`
	RoleCategory            RoleCategory   `json:"role_category"`
	SeniorityLevel          string         `json:"seniority_level,omitempty"`
	RequiredQualifications  []Requirement  `json:"required_qualifications" validate:"dive"`
	PreferredQualifications []Requirement  `json:"preferred_qualifications,omitempty" validate:"dive"`
	Keywords                []string       `json:"keywords"`
	TechnicalSkills         []string       `json:"technical_skills,omitempty"`
	SoftSkills              []string       `json:"soft_skills,omitempty"`
	RecommendedSections     []string       `json:"recommended_sections,omitempty"`
	RecommendedAgents       []string       `json:"recommended_agents,omitempty"`
	SectionPriorities       map[string]int `json:"section_priorities,omitempty"`
	Reasoning               string         `json:"reasoning,omitempty"`
	RecommendedTemplate     string         `json:"recommended_template,omitempty"`
}

// Requirement is one ranked qualification from the posting
type Requirement struct {
	Text     string `json:"text" validate:"required"`
	Priority int    `json:"priority,omitempty"` // 1 is most important
	Evidence string `json:"evidence,omitempty"` // quote from the posting
}

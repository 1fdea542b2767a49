package schemas

import "github.com/jonathan/resume-tailor/internal/types"

var roleDefaultSections = map[types.RoleCategory][]string{
	types.RoleIndividualContributor: {"contact", "summary", "experience", "skills", "projects", "education"},
	types.RoleTechnicalLead:         {"contact", "summary", "experience", "skills", "leadership", "projects", "education"},
	types.RoleEngineeringManager:    {"contact", "summary", "experience", "leadership", "skills", "education"},
	types.RoleSeniorManager:         {"contact", "summary", "experience", "leadership", "awards", "education"},
	types.RoleDirector:              {"contact", "summary", "experience", "leadership", "speaking", "awards", "education"},
	types.RoleExecutive:             {"contact", "summary", "experience", "leadership", "awards", "speaking", "education"},
}

// DefaultSectionsForRole returns the fallback section list for a role category.
// Unknown roles get the individual contributor list.
func DefaultSectionsForRole(role types.RoleCategory) []string {
	sections, ok := roleDefaultSections[role]
	if !ok {
		sections = roleDefaultSections[types.RoleIndividualContributor]
	}
	return append([]string(nil), sections...)
}

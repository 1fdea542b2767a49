package parsing

import (
	"sort"
	"strings"
	"unicode"

	"github.com/jonathan/resume-tailor/internal/types"
)

// skillNormalizations maps common skill name variants to canonical names
var skillNormalizations = map[string]string{
	"golang":     "Go",
	"go lang":    "Go",
	"javascript": "JavaScript",
	"js":         "JavaScript",
	"typescript": "TypeScript",
	"ts":         "TypeScript",
	"k8s":        "Kubernetes",
	"kubernetes": "Kubernetes",
	"react.js":   "React",
	"reactjs":    "React",
	"node.js":    "Node.js",
	"nodejs":     "Node.js",
	"postgres":   "PostgreSQL",
	"postgresql": "PostgreSQL",
}

// roleAliases maps loose role labels to the taxonomy. Checked in order.
var roleAliases = []struct {
	match string
	role  types.RoleCategory
}{
	{"individual contributor", types.RoleIndividualContributor},
	{"tech lead", types.RoleTechnicalLead},
	{"technical lead", types.RoleTechnicalLead},
	{"staff", types.RoleTechnicalLead},
	{"principal", types.RoleTechnicalLead},
	{"architect", types.RoleTechnicalLead},
	{"senior manager", types.RoleSeniorManager},
	{"manager of managers", types.RoleSeniorManager},
	{"chief", types.RoleExecutive},
	{"vp", types.RoleExecutive},
	{"vice president", types.RoleExecutive},
	{"cto", types.RoleExecutive},
	{"executive", types.RoleExecutive},
	{"head of", types.RoleDirector},
	{"director", types.RoleDirector},
	{"manager", types.RoleEngineeringManager},
	{"management", types.RoleEngineeringManager},
}

// NormalizeAnalysis cleans a decoded analysis in place: role category mapped
// onto the taxonomy, keywords lower-cased and deduplicated, skills canonicalized,
// section names normalized and the template defaulted from the role.
func NormalizeAnalysis(a *types.JobAnalysis) {
	a.JobTitle = strings.TrimSpace(a.JobTitle)
	a.CompanyName = strings.TrimSpace(a.CompanyName)
	a.RoleCategory = NormalizeRoleCategory(string(a.RoleCategory), a.JobTitle)

	a.RequiredQualifications = NormalizeRequirements(a.RequiredQualifications)
	a.PreferredQualifications = NormalizeRequirements(a.PreferredQualifications)
	a.Keywords = NormalizeKeywords(a.Keywords)
	a.TechnicalSkills = normalizeSkills(a.TechnicalSkills)
	a.SoftSkills = dedupeFold(a.SoftSkills)
	a.RecommendedSections = normalizeNames(a.RecommendedSections)
	a.RecommendedAgents = normalizeNames(a.RecommendedAgents)

	if len(a.SectionPriorities) > 0 {
		priorities := make(map[string]int, len(a.SectionPriorities))
		for name, p := range a.SectionPriorities {
			priorities[normalizeName(name)] = clamp(p, 0, 100)
		}
		a.SectionPriorities = priorities
	}

	a.RecommendedTemplate = normalizeName(a.RecommendedTemplate)
	if a.RecommendedTemplate == "" {
		a.RecommendedTemplate = string(a.RoleCategory)
	}
}

// NormalizeRoleCategory maps a role label onto the taxonomy. When the label is
// not recognized the job title is tried, then individual_contributor.
func NormalizeRoleCategory(label, jobTitle string) types.RoleCategory {
	name := types.RoleCategory(normalizeName(label))
	for _, r := range types.RoleCategories() {
		if name == r {
			return r
		}
	}
	for _, candidate := range []string{label, jobTitle} {
		if role, ok := matchRole(candidate); ok {
			return role
		}
	}
	return types.RoleIndividualContributor
}

func matchRole(text string) (types.RoleCategory, bool) {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	padded := " " + strings.Join(words, " ") + " "
	for _, alias := range roleAliases {
		if strings.Contains(padded, " "+alias.match+" ") {
			return alias.role, true
		}
	}
	return "", false
}

// NormalizeSkillName normalizes a skill name to its canonical form
func NormalizeSkillName(skillName string) string {
	normalized := strings.TrimSpace(skillName)
	if normalized == "" {
		return ""
	}
	if canonical, ok := skillNormalizations[strings.ToLower(normalized)]; ok {
		return canonical
	}
	return normalized
}

// NormalizeRequirements trims, drops empty and deduplicates requirements, then
// orders them by priority rank (1 first, unranked last) keeping input order on ties.
func NormalizeRequirements(reqs []types.Requirement) []types.Requirement {
	if len(reqs) == 0 {
		return reqs
	}

	out := make([]types.Requirement, 0, len(reqs))
	seen := make(map[string]bool)
	for _, req := range reqs {
		req.Text = strings.TrimSpace(req.Text)
		req.Evidence = strings.TrimSpace(req.Evidence)
		key := strings.ToLower(req.Text)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, req)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return rank(out[i].Priority) < rank(out[j].Priority)
	})
	return out
}

func rank(p int) int {
	if p <= 0 {
		return int(^uint(0) >> 1)
	}
	return p
}

// NormalizeKeywords lower-cases, trims and deduplicates keywords, keeping first occurrence order
func NormalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	seen := make(map[string]bool)
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" && !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

func normalizeSkills(skills []string) []string {
	canonical := make([]string, 0, len(skills))
	for _, s := range skills {
		canonical = append(canonical, NormalizeSkillName(s))
	}
	return dedupeFold(canonical)
}

// dedupeFold drops empty and case-insensitive duplicate entries
func dedupeFold(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]bool)
	for _, item := range items {
		item = strings.TrimSpace(item)
		key := strings.ToLower(item)
		if key != "" && !seen[key] {
			seen[key] = true
			out = append(out, item)
		}
	}
	return out
}

// normalizeName turns "Work Samples" or "work-samples" into "work_samples"
func normalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(name)
}

func normalizeNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool)
	for _, n := range names {
		n = normalizeName(n)
		if n != "" && !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

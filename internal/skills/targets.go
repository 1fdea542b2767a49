// Package skills builds weighted skill targets from a job analysis.
package skills

import (
	"sort"
	"strings"

	"github.com/jonathan/resume-tailor/internal/parsing"
	"github.com/jonathan/resume-tailor/internal/types"
)

const (
	// Weight constants for skill sources
	weightTechnical = 1.0
	weightSoft      = 0.5
	weightKeyword   = 0.3

	// Source constants
	SourceTechnical = "technical_skill"
	SourceSoft      = "soft_skill"
	SourceKeyword   = "keyword"
)

// Target is one skill the job asks for
type Target struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
	Source string  `json:"source"`
}

// BuildTargets builds a weighted list of target skills from a JobAnalysis.
// Skills are normalized, deduplicated case-insensitively (keeping the max
// weight) and sorted by weight descending, then name.
func BuildTargets(analysis *types.JobAnalysis) []Target {
	if analysis == nil {
		return nil
	}

	// Map: lowercased normalized name -> target
	skillMap := make(map[string]*Target)
	add := func(names []string, weight float64, source string) {
		for _, name := range names {
			normalized := parsing.NormalizeSkillName(name)
			if normalized == "" {
				continue
			}
			addOrUpdate(skillMap, Target{Name: normalized, Weight: weight, Source: source})
		}
	}
	add(analysis.TechnicalSkills, weightTechnical, SourceTechnical)
	add(analysis.SoftSkills, weightSoft, SourceSoft)
	add(analysis.Keywords, weightKeyword, SourceKeyword)

	targets := make([]Target, 0, len(skillMap))
	for _, t := range skillMap {
		targets = append(targets, *t)
	}
	sort.Slice(targets, func(i, j int) bool {
		if targets[i].Weight != targets[j].Weight {
			return targets[i].Weight > targets[j].Weight
		}
		return targets[i].Name < targets[j].Name
	})
	return targets
}

// addOrUpdate adds a target or raises the weight of an existing one. Equal
// weights keep the higher priority source.
func addOrUpdate(skillMap map[string]*Target, t Target) {
	key := strings.ToLower(t.Name)
	existing, ok := skillMap[key]
	if !ok {
		skillMap[key] = &t
		return
	}
	if t.Weight > existing.Weight ||
		(t.Weight == existing.Weight && sourcePriority(t.Source) > sourcePriority(existing.Source)) {
		existing.Weight = t.Weight
		existing.Source = t.Source
	}
}

// sourcePriority returns a numeric priority for source types.
// Higher numbers indicate higher priority.
func sourcePriority(source string) int {
	switch source {
	case SourceTechnical:
		return 3
	case SourceSoft:
		return 2
	case SourceKeyword:
		return 1
	default:
		return 0
	}
}

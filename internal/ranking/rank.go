// Package ranking scores candidate experiences and projects against a job
// analysis. The scores are deterministic hints for the content selector; the
// selector still decides what goes on the resume.
package ranking

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jonathan/resume-tailor/internal/skills"
	"github.com/jonathan/resume-tailor/internal/types"
)

// Record kinds
const (
	KindExperience = "experience"
	KindProject    = "project"
)

// Ranked is one scored record
type Ranked struct {
	ID               string   `json:"id"`
	Kind             string   `json:"kind"`
	Label            string   `json:"label"`
	RelevanceScore   float64  `json:"relevance_score"`
	SkillOverlap     float64  `json:"skill_overlap"`
	KeywordOverlap   float64  `json:"keyword_overlap"`
	EvidenceStrength float64  `json:"evidence_strength"`
	Recency          float64  `json:"recency"`
	MatchedSkills    []string `json:"matched_skills,omitempty"`
	Notes            string   `json:"notes"`
}

// RankExperiences ranks the candidate's roles, most relevant first
func RankExperiences(analysis *types.JobAnalysis, db *types.CandidateDatabase, now time.Time) []Ranked {
	if analysis == nil || db == nil {
		return nil
	}
	targets := skills.BuildTargets(analysis)

	ranked := make([]Ranked, 0, len(db.Experiences))
	for _, e := range db.Experiences {
		text := strings.Join(append([]string{e.Title}, e.Bullets...), " ")
		r := score(targets, analysis.Keywords, e.Skills, text, e.Bullets,
			computeRecencyScore(e.StartDate, e.EndDate, now))
		r.ID, r.Kind, r.Label = e.ID, KindExperience, strings.TrimSpace(e.Title+" at "+e.Company)
		ranked = append(ranked, r)
	}
	sortRanked(ranked)
	return ranked
}

// RankProjects ranks the candidate's projects, most relevant first. Projects
// carry no dates and get a neutral recency.
func RankProjects(analysis *types.JobAnalysis, db *types.CandidateDatabase) []Ranked {
	if analysis == nil || db == nil {
		return nil
	}
	targets := skills.BuildTargets(analysis)

	ranked := make([]Ranked, 0, len(db.Projects))
	for _, p := range db.Projects {
		text := strings.Join(append([]string{p.Name, p.Description}, p.Bullets...), " ")
		r := score(targets, analysis.Keywords, p.Skills, text, p.Bullets, neutralRecency)
		r.ID, r.Kind, r.Label = p.ID, KindProject, p.Name
		ranked = append(ranked, r)
	}
	sortRanked(ranked)
	return ranked
}

func score(targets []skills.Target, keywords, recordSkills []string, text string, bullets []string, recency float64) Ranked {
	skillOverlap, matched := computeSkillOverlapScore(recordSkills, text, targets)
	keywordOverlap := computeKeywordOverlapScore(text, keywords)
	evidence := computeEvidenceStrengthScore(bullets)

	relevance := skillOverlapWeight*skillOverlap +
		keywordOverlapWeight*keywordOverlap +
		evidenceStrengthWeight*evidence +
		recencyWeight*recency
	relevance = min(max(relevance, 0.0), 1.0)

	return Ranked{
		RelevanceScore:   relevance,
		SkillOverlap:     skillOverlap,
		KeywordOverlap:   keywordOverlap,
		EvidenceStrength: evidence,
		Recency:          recency,
		MatchedSkills:    matched,
		Notes:            generateNotes(skillOverlap, keywordOverlap, evidence, matched),
	}
}

// sortRanked orders by relevance descending; ties keep database order
func sortRanked(ranked []Ranked) {
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RelevanceScore > ranked[j].RelevanceScore
	})
}

// generateNotes creates a brief explanation of the ranking.
func generateNotes(skillOverlap, keywordOverlap, evidenceStrength float64, matchedSkills []string) string {
	var parts []string

	switch {
	case len(matchedSkills) == 0:
		parts = append(parts, "No skill matches")
	case skillOverlap >= 0.7:
		parts = append(parts, fmt.Sprintf("Strong skill match (%s)", strings.Join(matchedSkills, ", ")))
	case skillOverlap >= 0.4:
		parts = append(parts, fmt.Sprintf("Moderate skill match (%s)", strings.Join(matchedSkills, ", ")))
	default:
		parts = append(parts, fmt.Sprintf("Weak skill match (%s)", strings.Join(matchedSkills, ", ")))
	}

	if keywordOverlap >= 0.5 {
		parts = append(parts, "many job keywords")
	} else if keywordOverlap > 0 {
		parts = append(parts, "some job keywords")
	}

	if evidenceStrength >= 0.7 {
		parts = append(parts, "well quantified")
	} else if evidenceStrength == 0 {
		parts = append(parts, "no metrics")
	}

	return strings.Join(parts, "; ")
}

// Hints formats the top limit records of each list as prompt lines. It
// returns "none" when there is nothing to rank.
func Hints(limit int, lists ...[]Ranked) string {
	var sb strings.Builder
	for _, list := range lists {
		for i, r := range list {
			if limit > 0 && i >= limit {
				break
			}
			fmt.Fprintf(&sb, "- %s %s (%s): %.2f, %s\n", r.Kind, r.ID, r.Label, r.RelevanceScore, r.Notes)
		}
	}
	if sb.Len() == 0 {
		return "none"
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

package ranking

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/resume-tailor/internal/parsing"
	"github.com/jonathan/resume-tailor/internal/skills"
)

// Default weights for scoring components
const (
	skillOverlapWeight     = 0.5
	keywordOverlapWeight   = 0.2
	evidenceStrengthWeight = 0.2
	recencyWeight          = 0.1
)

// neutralRecency is used when a record has no parseable date
const neutralRecency = 0.5

// recencyHorizonYears is how long ago a role can end before it scores zero
const recencyHorizonYears = 10.0

var (
	yearPattern  = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	digitPattern = regexp.MustCompile(`\d`)
)

// computeSkillOverlapScore scores the record's skills against the targets,
// weighted by target weight. Skills mentioned in bullet text also count.
// Returns the score (0-1) and the matched target names in target order.
func computeSkillOverlapScore(recordSkills []string, text string, targets []skills.Target) (float64, []string) {
	if len(targets) == 0 {
		return 0.0, nil
	}

	have := make(map[string]bool, len(recordSkills))
	for _, s := range recordSkills {
		if normalized := parsing.NormalizeSkillName(s); normalized != "" {
			have[strings.ToLower(normalized)] = true
		}
	}
	textLower := strings.ToLower(text)

	totalWeight := 0.0
	matchedWeight := 0.0
	var matched []string
	for _, target := range targets {
		totalWeight += target.Weight
		name := strings.ToLower(target.Name)
		if have[name] || containsWord(textLower, name) {
			matchedWeight += target.Weight
			matched = append(matched, target.Name)
		}
	}

	if totalWeight == 0 {
		return 0.0, matched
	}
	return matchedWeight / totalWeight, matched
}

// computeKeywordOverlapScore is the share of job keywords found in the text
func computeKeywordOverlapScore(text string, keywords []string) float64 {
	textLower := strings.ToLower(text)
	total, matches := 0, 0
	for _, keyword := range keywords {
		k := strings.ToLower(strings.TrimSpace(keyword))
		if k == "" {
			continue
		}
		total++
		if containsWord(textLower, k) {
			matches++
		}
	}
	if total == 0 {
		return 0.0
	}
	return float64(matches) / float64(total)
}

// computeEvidenceStrengthScore is the share of bullets backed by a number
func computeEvidenceStrengthScore(bullets []string) float64 {
	if len(bullets) == 0 {
		return 0.0
	}
	quantified := 0
	for _, b := range bullets {
		if digitPattern.MatchString(b) {
			quantified++
		}
	}
	return float64(quantified) / float64(len(bullets))
}

// computeRecencyScore decays linearly from 1.0 for a current role to 0.0 for
// one that ended recencyHorizonYears or more before now.
func computeRecencyScore(startDate, endDate string, now time.Time) float64 {
	end := strings.ToLower(strings.TrimSpace(endDate))
	if end == "present" || end == "current" || (end == "" && startDate != "") {
		return 1.0
	}

	year, ok := lastYear(endDate)
	if !ok {
		if year, ok = lastYear(startDate); !ok {
			return neutralRecency
		}
	}

	yearsSince := float64(now.Year() - year)
	switch {
	case yearsSince <= 0:
		return 1.0
	case yearsSince >= recencyHorizonYears:
		return 0.0
	default:
		return 1.0 - yearsSince/recencyHorizonYears
	}
}

func lastYear(s string) (int, bool) {
	years := yearPattern.FindAllString(s, -1)
	if len(years) == 0 {
		return 0, false
	}
	year, err := strconv.Atoi(years[len(years)-1])
	return year, err == nil
}

// containsWord reports whether term occurs in text with no letter or digit
// directly on either side, so "go" does not match "google".
func containsWord(text, term string) bool {
	if term == "" {
		return false
	}
	for offset := 0; ; {
		i := strings.Index(text[offset:], term)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(term)
		if !isWordByte(text, start-1) && !isWordByte(text, end) {
			return true
		}
		offset = start + 1
	}
}

func isWordByte(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return false
	}
	c := s[i]
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_'
}

package selection

import (
	"sort"
	"strings"
	"unicode"

	"github.com/jonathan/resume-tailor/internal/types"
)

const (
	// Scoring weights for bullet relevance
	weightKeywordCoverage  = 0.60
	weightQuantified       = 0.20
	weightLengthEfficiency = 0.20

	// Constants for normalization
	maxKeywordsNorm = 3.0 // three keyword hits is full coverage
	maxLengthChars  = 200 // bullets at this length score 0.5 efficiency
)

// ScoreComponents holds the individual scoring factors
type ScoreComponents struct {
	KeywordCoverage  float64
	Quantified       float64
	LengthEfficiency float64
}

// ScoreBullet rates how well a bullet serves a job with the given keywords, from 0 to 1
func ScoreBullet(text string, keywords []string) float64 {
	c := scoreComponents(text, keywords)
	return c.KeywordCoverage*weightKeywordCoverage +
		c.Quantified*weightQuantified +
		c.LengthEfficiency*weightLengthEfficiency
}

func scoreComponents(text string, keywords []string) ScoreComponents {
	lower := strings.ToLower(text)
	hits := 0.0
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" && strings.Contains(lower, k) {
			hits++
		}
	}
	if hits > maxKeywordsNorm {
		hits = maxKeywordsNorm
	}

	quantified := 0.0
	if strings.IndexFunc(text, unicode.IsDigit) >= 0 {
		quantified = 1.0
	}

	return ScoreComponents{
		KeywordCoverage:  hits / maxKeywordsNorm,
		Quantified:       quantified,
		LengthEfficiency: lengthEfficiency(len([]rune(text))),
	}
}

// lengthEfficiency favors shorter bullets
func lengthEfficiency(lengthChars int) float64 {
	if lengthChars <= 0 {
		return 0
	}
	efficiency := 1.0 - float64(lengthChars)/float64(maxLengthChars*2)
	if efficiency < 0 {
		return 0
	}
	return efficiency
}

// TrimBullets keeps at most maxPerRole bullets per experience and project,
// choosing the highest scoring ones and keeping their original order.
// It returns the dropped bullets. maxPerRole <= 0 disables trimming.
func TrimBullets(sel *types.ContentSelection, keywords []string, maxPerRole int) []string {
	if maxPerRole <= 0 {
		return nil
	}
	var removed []string
	for i := range sel.Experiences {
		var dropped []string
		sel.Experiences[i].Bullets, dropped = topBullets(sel.Experiences[i].Bullets, keywords, maxPerRole)
		removed = append(removed, dropped...)
	}
	for i := range sel.Projects {
		var dropped []string
		sel.Projects[i].Bullets, dropped = topBullets(sel.Projects[i].Bullets, keywords, maxPerRole)
		removed = append(removed, dropped...)
	}
	return removed
}

func topBullets(bullets []string, keywords []string, limit int) ([]string, []string) {
	if len(bullets) <= limit {
		return bullets, nil
	}

	order := make([]int, len(bullets))
	scores := make([]float64, len(bullets))
	for i, b := range bullets {
		order[i] = i
		scores[i] = ScoreBullet(b, keywords)
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	keep := make(map[int]bool, limit)
	for _, idx := range order[:limit] {
		keep[idx] = true
	}
	kept := make([]string, 0, limit)
	var dropped []string
	for i, b := range bullets {
		if keep[i] {
			kept = append(kept, b)
		} else {
			dropped = append(dropped, b)
		}
	}
	return kept, dropped
}

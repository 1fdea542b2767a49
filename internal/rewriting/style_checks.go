// Package rewriting runs the style editor agent over a validated draft. Local
// style checks flag weak bullets first and the findings go into the prompt.
package rewriting

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/jonathan/resume-tailor/internal/types"
)

// Style rules
const (
	RuleWeakVerb    = "weak_verb"
	RuleFirstPerson = "first_person"
	RuleCliche      = "cliche"
	RuleTooLong     = "too_long"
	RuleNoMetric    = "no_metric"
	RuleReviewer    = "reviewer"
)

// maxBulletChars is roughly two printed lines
const maxBulletChars = 200

var strongVerbs = map[string]bool{
	"achieved": true, "architected": true, "built": true, "created": true,
	"delivered": true, "designed": true, "developed": true, "drove": true,
	"engineered": true, "implemented": true, "improved": true, "increased": true,
	"launched": true, "led": true, "mentored": true, "migrated": true,
	"optimized": true, "owned": true, "reduced": true, "scaled": true,
	"shipped": true, "transformed": true, "wrote": true,
}

// DefaultCliches are phrases that add words without adding evidence
var DefaultCliches = []string{
	"responsible for",
	"team player",
	"hard-working",
	"detail-oriented",
	"synergy",
	"go-getter",
	"rockstar",
	"ninja",
	"results-driven",
}

var (
	digitPattern       = regexp.MustCompile(`\d`)
	firstPersonPattern = regexp.MustCompile(`(?i)\b(i|me|my|mine|we|our)\b`)
)

// Finding is one style problem in a bullet
type Finding struct {
	Section string `json:"section"`
	Text    string `json:"text,omitempty"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Check runs the local style rules over every bullet in the draft. cliches
// defaults to DefaultCliches when nil.
func Check(draft *types.ResumeDraft, cliches []string) []Finding {
	if cliches == nil {
		cliches = DefaultCliches
	}

	var findings []Finding
	for _, b := range Bullets(draft) {
		findings = append(findings, checkBullet(b.Section, b.Text, cliches)...)
	}
	return findings
}

func checkBullet(section, text string, cliches []string) []Finding {
	var out []Finding
	add := func(rule, msg string) {
		out = append(out, Finding{Section: section, Text: text, Rule: rule, Message: msg})
	}

	lower := strings.ToLower(strings.TrimSpace(text))
	if !checkStrongVerb(lower) {
		add(RuleWeakVerb, "does not open with an action verb")
	}
	if firstPersonPattern.MatchString(text) {
		add(RuleFirstPerson, "uses first person")
	}
	if found := findCliches(lower, cliches); len(found) > 0 {
		add(RuleCliche, "uses "+strings.Join(found, ", "))
	}
	if len(text) > maxBulletChars {
		add(RuleTooLong, fmt.Sprintf("%d characters, aim for %d or fewer", len(text), maxBulletChars))
	}
	if !checkQuantifiedImpact(text) {
		add(RuleNoMetric, "has no measurable result")
	}
	return out
}

// checkStrongVerb checks if text starts with a strong action verb
func checkStrongVerb(textLower string) bool {
	words := strings.Fields(textLower)
	if len(words) == 0 {
		return false
	}

	first := strings.TrimRight(words[0], ".,!?;:")
	if strongVerbs[first] {
		return true
	}
	// past tense is usually an action verb
	return strings.HasSuffix(first, "ed") && len(first) > 3
}

func checkQuantifiedImpact(text string) bool {
	return digitPattern.MatchString(text) || strings.Contains(text, "%")
}

func findCliches(textLower string, cliches []string) []string {
	var found []string
	seen := make(map[string]bool)
	for _, phrase := range cliches {
		p := strings.ToLower(strings.TrimSpace(phrase))
		if p == "" || seen[p] {
			continue
		}
		if strings.Contains(textLower, p) {
			found = append(found, phrase)
			seen[p] = true
		}
	}
	return found
}

// Bullet is one bullet string found in a draft section
type Bullet struct {
	Section string
	Text    string
}

// Bullets collects every string stored under a "bullets" key, in section order
// then document order.
func Bullets(draft *types.ResumeDraft) []Bullet {
	names := draft.OrderedSections(sortedKeys(draft.Sections))

	var out []Bullet
	for _, name := range names {
		collectBullets(name, draft.Sections[name], &out)
	}
	return out
}

func collectBullets(section string, v any, out *[]Bullet) {
	switch val := v.(type) {
	case map[string]any:
		for _, k := range sortedKeys(val) {
			if k == "bullets" {
				if items, ok := val[k].([]any); ok {
					for _, item := range items {
						if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
							*out = append(*out, Bullet{Section: section, Text: s})
						}
					}
				}
				continue
			}
			collectBullets(section, val[k], out)
		}
	case []any:
		for _, item := range val {
			collectBullets(section, item, out)
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

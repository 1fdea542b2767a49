package schemas

import "strings"

// SectionsByKeywords returns, in registry order, every section with a trigger keyword
// that matches one of keywords. Matching is case-insensitive and accepts containment
// in either direction, so "open source contributor" matches the trigger "open source".
func (r *Registry) SectionsByKeywords(keywords []string) []string {
	normalized := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			normalized = append(normalized, k)
		}
	}

	var out []string
	for _, sec := range r.Sections {
		if matchesAny(sec.TriggerKeywords, normalized) {
			out = append(out, sec.Name)
		}
	}
	return out
}

func matchesAny(triggers, keywords []string) bool {
	for _, trigger := range triggers {
		trigger = strings.ToLower(strings.TrimSpace(trigger))
		if trigger == "" {
			continue
		}
		for _, k := range keywords {
			if strings.Contains(k, trigger) || strings.Contains(trigger, k) {
				return true
			}
		}
	}
	return false
}

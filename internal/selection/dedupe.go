package selection

import (
	"github.com/jonathan/resume-tailor/internal/types"
)

// bulletRef locates one bullet in a selection
type bulletRef struct {
	project bool // false: experience
	record  int
	index   int
	text    string
}

// Deduplicate removes near-duplicate bullets across experiences and projects.
// Within a group of bullets at least threshold similar, an experience bullet is
// kept over a project bullet, then the longer text. Removed texts are returned.
func Deduplicate(sel *types.ContentSelection, threshold float64) []string {
	var refs []bulletRef
	for i, e := range sel.Experiences {
		for j, b := range e.Bullets {
			refs = append(refs, bulletRef{record: i, index: j, text: b})
		}
	}
	for i, p := range sel.Projects {
		for j, b := range p.Bullets {
			refs = append(refs, bulletRef{project: true, record: i, index: j, text: b})
		}
	}

	processed := make([]bool, len(refs))
	drop := make(map[bulletRef]bool)
	var removed []string
	for i := range refs {
		if processed[i] {
			continue
		}
		group := []int{i}
		for j := range refs {
			if i == j || processed[j] {
				continue
			}
			if Similarity(refs[i].text, refs[j].text) >= threshold {
				group = append(group, j)
				processed[j] = true
			}
		}
		processed[i] = true
		if len(group) == 1 {
			continue
		}

		keep := group[0]
		for _, g := range group[1:] {
			if better(refs[g], refs[keep]) {
				keep = g
			}
		}
		for _, g := range group {
			if g != keep {
				drop[refs[g]] = true
				removed = append(removed, refs[g].text)
			}
		}
	}

	if len(drop) == 0 {
		return nil
	}
	for i := range sel.Experiences {
		sel.Experiences[i].Bullets = filterBullets(sel.Experiences[i].Bullets, func(j int, text string) bool {
			return drop[bulletRef{record: i, index: j, text: text}]
		})
	}
	for i := range sel.Projects {
		sel.Projects[i].Bullets = filterBullets(sel.Projects[i].Bullets, func(j int, text string) bool {
			return drop[bulletRef{project: true, record: i, index: j, text: text}]
		})
	}
	return removed
}

func better(a, b bulletRef) bool {
	if a.project != b.project {
		return !a.project
	}
	return len(a.text) > len(b.text)
}

func filterBullets(bullets []string, dropped func(int, string) bool) []string {
	out := make([]string, 0, len(bullets))
	for j, b := range bullets {
		if !dropped(j, b) {
			out = append(out, b)
		}
	}
	return out
}

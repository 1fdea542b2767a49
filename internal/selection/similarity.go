package selection

import "strings"

// Similarity returns the Ratcliff/Obershelp ratio 2*M/T of two strings after
// lower-casing and trimming, where M is the number of matching characters.
// Identical strings score 1 and strings with nothing in common score 0.
func Similarity(a, b string) float64 {
	ra := []rune(strings.ToLower(strings.TrimSpace(a)))
	rb := []rune(strings.ToLower(strings.TrimSpace(b)))
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	return 2 * float64(matchingRunes(ra, rb)) / float64(total)
}

// matchingRunes sums the longest common block and, recursively, the matches on either side of it
func matchingRunes(a, b []rune) int {
	i, j, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	return size + matchingRunes(a[:i], b[:j]) + matchingRunes(a[i+size:], b[j+size:])
}

// longestMatch finds the longest common block, preferring the earliest start in a, then in b
func longestMatch(a, b []rune) (int, int, int) {
	best, bestI, bestJ := 0, 0, 0
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] != b[j-1] {
				cur[j] = 0
				continue
			}
			cur[j] = prev[j-1] + 1
			if cur[j] > best {
				best = cur[j]
				bestI, bestJ = i-best, j-best
			}
		}
		prev, cur = cur, prev
	}
	return bestI, bestJ, best
}

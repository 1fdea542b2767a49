package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/resume-tailor/internal/types"
)

func TestDeduplicate_PrefersExperienceThenLonger(t *testing.T) {
	sel := &types.ContentSelection{
		Experiences: []types.Experience{
			{ID: "exp-1", Bullets: []string{
				"Reduced p99 latency 40% by rewriting the cache layer",
				"Mentored four engineers through promotion",
			}},
			{ID: "exp-2", Bullets: []string{
				"Reduced p99 latency by 40% by rewriting the cache layer in Go",
			}},
		},
		Projects: []types.Project{
			{ID: "proj-1", Bullets: []string{
				"Reduced p99 latency 40% by rewriting the caching layer in Go",
				"Published a benchmark suite",
			}},
		},
	}

	removed := Deduplicate(sel, DefaultDedupeThreshold)

	assert.ElementsMatch(t, []string{
		"Reduced p99 latency 40% by rewriting the cache layer",
		"Reduced p99 latency 40% by rewriting the caching layer in Go",
	}, removed)
	assert.Equal(t, []string{"Mentored four engineers through promotion"}, sel.Experiences[0].Bullets)
	assert.Equal(t, []string{"Reduced p99 latency by 40% by rewriting the cache layer in Go"}, sel.Experiences[1].Bullets)
	assert.Equal(t, []string{"Published a benchmark suite"}, sel.Projects[0].Bullets)
}

func TestDeduplicate_NothingSimilar(t *testing.T) {
	sel := &types.ContentSelection{
		Experiences: []types.Experience{{ID: "exp-1", Bullets: []string{"Built a compiler", "Ran the on-call rotation"}}},
	}

	assert.Nil(t, Deduplicate(sel, DefaultDedupeThreshold))
	assert.Len(t, sel.Experiences[0].Bullets, 2)
}

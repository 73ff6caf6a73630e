package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCutoffIntent(t *testing.T) {
	positive := []string{
		"cse cutoff",
		"cutoffs for ece",
		"what was the cut off last year",
		"cut-off for mechanical",
		"what rank do i need",
		"kcet ranks for cse",
		"ranking of the college",
	}
	for _, query := range positive {
		assert.True(t, hasCutoffIntent(query), "query %q", query)
	}

	negative := []string{
		"hostel fees",
		"how are the placements",
		"when does the semester start",
	}
	for _, query := range negative {
		assert.False(t, hasCutoffIntent(query), "query %q", query)
	}
}

func TestMatchBranch(t *testing.T) {
	t.Run("short codes match on word boundaries", func(t *testing.T) {
		cases := map[string]string{
			"cse cutoff":     "cse",
			"cutoff for ise": "ise",
			"ece ranks":      "ece",
			"eee cutoff":     "eee",
			"ci cutoff":      "ci",
			"me cutoff":      "me",
			"civil cutoff":   "civil",
			"mech cutoff":    "me",
		}
		for query, want := range cases {
			route := matchBranch(query)
			require.NotNil(t, route, "query %q", query)
			assert.Equal(t, want, route.Branch, "query %q", query)
		}
	})

	t.Run("full names match as phrases", func(t *testing.T) {
		cases := map[string]string{
			"computer science cutoff":               "cse",
			"information science ranks":             "ise",
			"electronics and communication cutoff":  "ece",
			"electrical and electronics cutoff":     "eee",
			"mechanical engineering cutoff":         "me",
			"civil engineering cutoff":              "civil",
			"artificial intelligence branch cutoff": "ci",
		}
		for query, want := range cases {
			route := matchBranch(query)
			require.NotNil(t, route, "query %q", query)
			assert.Equal(t, want, route.Branch, "query %q", query)
		}
	})

	t.Run("codes do not match inside other words", func(t *testing.T) {
		assert.Nil(t, matchBranch("circuit cutoff"))
		assert.Nil(t, matchBranch("carltonise cutoff"))
		assert.Nil(t, matchBranch("some cutoff question"))
	})

	t.Run("specific branch wins over ambiguous me", func(t *testing.T) {
		route := matchBranch("give me the civil cutoff")
		require.NotNil(t, route)
		assert.Equal(t, "civil", route.Branch)

		route = matchBranch("give me cse cutoff ranks")
		require.NotNil(t, route)
		assert.Equal(t, "cse", route.Branch)
	})

	t.Run("no branch", func(t *testing.T) {
		assert.Nil(t, matchBranch("what are the cutoffs"))
	})
}

func TestBranchRouteTable(t *testing.T) {
	seen := make(map[string]bool)
	for _, route := range branchRoutes {
		assert.False(t, seen[route.Branch], "duplicate branch %q", route.Branch)
		seen[route.Branch] = true

		assert.NotEmpty(t, route.Answer)
		assert.Contains(t, route.Answer, "\n", "answers are multi-line")
		assert.True(t, len(route.Tokens) > 0 || len(route.Phrases) > 0)
	}
	assert.Len(t, branchRoutes, 7)
}

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDFromContent(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		a := IDFromContent("What are the hostel fees?")
		b := IDFromContent("What are the hostel fees?")
		assert.Equal(t, a, b)
	})

	t.Run("distinct content produces distinct IDs", func(t *testing.T) {
		a := IDFromContent("What are the hostel fees?")
		b := IDFromContent("What are the mess charges?")
		assert.NotEqual(t, a, b)
	})

	t.Run("empty content is valid", func(t *testing.T) {
		a := IDFromContent("")
		b := IDFromContent("")
		assert.Equal(t, a, b)
	})
}

func TestMatchSourceString(t *testing.T) {
	cases := []struct {
		source MatchSource
		want   string
	}{
		{SourceRoute, "route"},
		{SourceSimilarity, "similarity"},
		{SourceFallback, "fallback"},
		{SourceFailure, "failure"},
		{MatchSource(0), "unknown"},
		{MatchSource(99), "unknown"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.source.String())
	}
}

package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanFiller(t *testing.T) {
	cases := map[string]string{
		"and hostel fees?":                    "hostel fees?",
		"Also hostel fees?":                   "hostel fees?",
		"what about the library":              "the library",
		"Tell me about placements":            "placements",
		"do you know about sports facilities": "sports facilities",
		"can you tell me about the gym":       "the gym",
		"i want to know about transport":      "transport",
		"  Hostel Fees?  ":                    "hostel fees?",
		"android app":                         "android app",
		"hostel fees?":                        "hostel fees?",
	}
	for input, want := range cases {
		assert.Equal(t, want, cleanFiller(input), "input %q", input)
	}
}

func TestCleanFillerAppliesOnce(t *testing.T) {
	// Each prefix strips once, not iteratively
	assert.Equal(t, "and hostel fees", cleanFiller("and and hostel fees"))
}

func TestTokenize(t *testing.T) {
	assert.Equal(t,
		[]string{"what", "is", "the", "cse", "cutoff"},
		tokenize("What is the CSE cutoff?"))
	assert.Equal(t,
		[]string{"ranks", "please"},
		tokenize("  ranks,   please!  "))
	assert.Empty(t, tokenize("   "))
}

func TestHasToken(t *testing.T) {
	tokens := tokenize("give me the me cutoff")
	assert.True(t, hasToken(tokens, "me"))
	assert.False(t, hasToken(tokens, "mech"))
}

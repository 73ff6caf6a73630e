package matcher

import "strings"

// Filler prefixes stripped from queries before matching. Each prefix is
// removed at most once, in table order.
var fillerPrefixes = []string{
	"and ",
	"also ",
	"what about ",
	"tell me about ",
	"do you know about ",
	"can you tell me about ",
	"i want to know about ",
}

// cleanFiller lowercases a query and strips conversational filler prefixes.
// Each prefix is stripped once, not iteratively, matching how follow-up
// questions are usually phrased ("and hostel fees?" -> "hostel fees?").
func cleanFiller(query string) string {
	cleaned := strings.ToLower(strings.TrimSpace(query))
	for _, prefix := range fillerPrefixes {
		cleaned = strings.TrimPrefix(cleaned, prefix)
	}
	return strings.TrimSpace(cleaned)
}

// tokenize splits text into lowercase words with surrounding punctuation
// trimmed. Used for word-boundary keyword checks so short branch codes like
// "me" or "ci" never match inside other words.
func tokenize(text string) []string {
	words := strings.Fields(text)
	tokens := make([]string, 0, len(words))
	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}"))
		if cleaned != "" {
			tokens = append(tokens, cleaned)
		}
	}
	return tokens
}

// hasToken reports whether any of the tokens equals want.
func hasToken(tokens []string, want string) bool {
	for _, token := range tokens {
		if token == want {
			return true
		}
	}
	return false
}

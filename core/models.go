package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// MatchSource identifies how a response was produced.
type MatchSource int

const (
	// SourceRoute means the answer came from the hardcoded cutoff route table.
	SourceRoute MatchSource = iota + 1
	// SourceSimilarity means the answer came from embedding similarity search.
	SourceSimilarity
	// SourceFallback means the best similarity score was below threshold.
	SourceFallback
	// SourceFailure means an internal error was converted into the apology answer.
	SourceFailure
)

// String returns a human-readable name for the match source.
func (s MatchSource) String() string {
	switch s {
	case SourceRoute:
		return "route"
	case SourceSimilarity:
		return "similarity"
	case SourceFallback:
		return "fallback"
	case SourceFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Entry represents a single FAQ question/answer pair within a category.
// Entries are immutable after corpus load.
type Entry struct {
	Category string
	Question string
	Answer   string
}

// Exchange represents one logged user interaction with the bot.
type Exchange struct {
	Id         ID
	Query      string      // Raw user message as received
	Answer     string      // Response text returned to the user
	Confidence float32     // Similarity score, or 0.0 for routed/failure answers
	Source     MatchSource // How the answer was produced
	Question   string      // Matched corpus question (empty unless Source is similarity)
	CreatedAt  time.Time   // When the exchange was recorded
}

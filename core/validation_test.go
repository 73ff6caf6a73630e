package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEntry() *Entry {
	return &Entry{
		Category: "Hostel",
		Question: "What are the hostel fees?",
		Answer:   "Hostel fees are approximately INR 80,000 per year including mess charges.",
	}
}

func validExchange() *Exchange {
	return &Exchange{
		Query:      "hostel fees?",
		Answer:     "Hostel fees are approximately INR 80,000 per year including mess charges.",
		Confidence: 0.91,
		Source:     SourceSimilarity,
		Question:   "What are the hostel fees?",
		CreatedAt:  time.Now().UTC(),
	}
}

func TestValidateEntry(t *testing.T) {
	t.Run("valid entry", func(t *testing.T) {
		require.NoError(t, ValidateEntry(validEntry()))
	})

	t.Run("nil entry", func(t *testing.T) {
		err := ValidateEntry(nil)
		assert.ErrorIs(t, err, ErrInvalidEntry)
	})

	t.Run("empty category", func(t *testing.T) {
		entry := validEntry()
		entry.Category = ""
		err := ValidateEntry(entry)
		assert.ErrorIs(t, err, ErrInvalidEntry)
		assert.ErrorIs(t, err, ErrEmptyCategory)
	})

	t.Run("empty question", func(t *testing.T) {
		entry := validEntry()
		entry.Question = ""
		err := ValidateEntry(entry)
		assert.ErrorIs(t, err, ErrEmptyQuestion)
	})

	t.Run("empty answer", func(t *testing.T) {
		entry := validEntry()
		entry.Answer = ""
		err := ValidateEntry(entry)
		assert.ErrorIs(t, err, ErrEmptyAnswer)
	})
}

func TestValidateExchange(t *testing.T) {
	t.Run("valid exchange", func(t *testing.T) {
		require.NoError(t, ValidateExchange(validExchange()))
	})

	t.Run("nil exchange", func(t *testing.T) {
		err := ValidateExchange(nil)
		assert.ErrorIs(t, err, ErrInvalidExchange)
	})

	t.Run("empty query", func(t *testing.T) {
		exchange := validExchange()
		exchange.Query = ""
		err := ValidateExchange(exchange)
		assert.ErrorIs(t, err, ErrEmptyQuery)
	})

	t.Run("empty answer", func(t *testing.T) {
		exchange := validExchange()
		exchange.Answer = ""
		err := ValidateExchange(exchange)
		assert.ErrorIs(t, err, ErrEmptyAnswer)
	})

	t.Run("invalid source", func(t *testing.T) {
		exchange := validExchange()
		exchange.Source = MatchSource(42)
		err := ValidateExchange(exchange)
		assert.ErrorIs(t, err, ErrInvalidMatchSource)
	})

	t.Run("zero timestamp is valid", func(t *testing.T) {
		exchange := validExchange()
		exchange.CreatedAt = time.Time{}
		require.NoError(t, ValidateExchange(exchange))
	})

	t.Run("future timestamp", func(t *testing.T) {
		exchange := validExchange()
		exchange.CreatedAt = time.Now().Add(time.Hour)
		err := ValidateExchange(exchange)
		assert.ErrorIs(t, err, ErrInvalidTimestamp)
	})

	t.Run("routed exchange with zero confidence", func(t *testing.T) {
		exchange := validExchange()
		exchange.Source = SourceRoute
		exchange.Confidence = 0
		exchange.Question = ""
		require.NoError(t, ValidateExchange(exchange))
	})
}

func TestValidateMatchSource(t *testing.T) {
	for _, source := range []MatchSource{SourceRoute, SourceSimilarity, SourceFallback, SourceFailure} {
		assert.NoError(t, ValidateMatchSource(source))
	}
	assert.ErrorIs(t, ValidateMatchSource(MatchSource(0)), ErrInvalidMatchSource)
}

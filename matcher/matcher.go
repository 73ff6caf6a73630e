// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package matcher

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/faqbot/ai"
	"github.com/poiesic/faqbot/core"
	"github.com/poiesic/faqbot/corpus"
	"github.com/poiesic/faqbot/index"
)

// DefaultThreshold is the minimum cosine similarity for a match to be
// answered from the corpus instead of the fallback message.
const DefaultThreshold float32 = 0.75

const (
	fallbackResponse = "Sorry, I didn't understand that. Can you rephrase?"
	apologyResponse  = "Sorry, I encountered a technical issue while processing your request. " +
		"Please try again in a moment."
)

// Response is the outcome of matching one query.
type Response struct {
	// Answer is the text to show the user.
	Answer string
	// Confidence is the cosine similarity of the match, or 0.0 for routed,
	// clarifying, and failure responses.
	Confidence float32
	// Source records how the answer was produced.
	Source core.MatchSource
	// Question is the matched corpus question. Empty unless Source is
	// SourceSimilarity.
	Question string
	// Position is the matched corpus position, -1 otherwise.
	Position int
}

// Matcher maps a raw user query to the best FAQ answer. It routes cutoff
// rank queries through a keyword table, answers everything else by
// embedding similarity, and degrades to fixed fallback text instead of
// surfacing errors. Safe for concurrent use.
type Matcher struct {
	corpus    *corpus.Corpus
	index     *index.Index
	embedder  ai.Embedder
	threshold float32
	logger    *slog.Logger
}

// Option configures a Matcher.
type Option func(*Matcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Matcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
		return nil
	}
}

// WithThreshold sets the minimum similarity for a corpus answer.
// Default is DefaultThreshold.
func WithThreshold(threshold float32) Option {
	return func(m *Matcher) error {
		if threshold < -1 || threshold > 1 {
			return fmt.Errorf("%w: %f", ErrInvalidThreshold, threshold)
		}
		m.threshold = threshold
		return nil
	}
}

// NewMatcher creates a matcher over the given corpus and embedding index.
// The index must have been built from the same corpus; a length or hash
// mismatch is rejected.
func NewMatcher(c *corpus.Corpus, ix *index.Index, provider ai.EmbeddingProvider, opts ...Option) (*Matcher, error) {
	if c == nil {
		return nil, ErrCorpusRequired
	}
	if ix == nil {
		return nil, ErrIndexRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}
	if ix.Len() != c.Len() || ix.CorpusHash() != c.Hash() {
		return nil, fmt.Errorf("%w: corpus has %d questions, index has %d vectors", ErrIndexMismatch, c.Len(), ix.Len())
	}

	m := &Matcher{
		corpus:    c,
		index:     ix,
		embedder:  provider.Embedder(),
		threshold: DefaultThreshold,
		logger:    slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Threshold returns the similarity threshold in effect.
func (m *Matcher) Threshold() float32 {
	return m.threshold
}

// Respond answers a query. It never returns an error: any failure in the
// pipeline is logged and converted to a fixed apology response.
func (m *Matcher) Respond(ctx context.Context, query string) *Response {
	return m.RespondWithMonitor(ctx, query, nil)
}

// RespondWithMonitor answers a query with monitoring. The monitor receives
// callbacks at each stage of the match.
func (m *Matcher) RespondWithMonitor(ctx context.Context, query string, monitor MatchMonitor) (response *Response) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	// The matcher degrades, it does not crash. A panic anywhere below
	// becomes the apology response.
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("panic while matching query", "query", query, "panic", r)
			response = m.failure()
		}
	}()

	monitor.Start(query)

	cleaned := cleanFiller(query)
	monitor.Normalized(cleaned)

	if cleaned == "" {
		response = &Response{
			Answer:     fallbackResponse,
			Confidence: 0,
			Source:     core.SourceFallback,
			Position:   -1,
		}
		monitor.Finish(response)
		return response
	}

	// Precision override: cutoff rank queries go through the keyword table
	// because similar branch vocabulary confuses the embedding model.
	if hasCutoffIntent(cleaned) {
		response = m.routeCutoff(cleaned, monitor)
		monitor.Finish(response)
		return response
	}

	response = m.matchSimilarity(ctx, cleaned, monitor)
	monitor.Finish(response)
	return response
}

// routeCutoff resolves a cutoff query against the branch table.
func (m *Matcher) routeCutoff(cleaned string, monitor MatchMonitor) *Response {
	route := matchBranch(cleaned)
	if route == nil {
		m.logger.Debug("cutoff intent without branch, asking for clarification", "query", cleaned)
		return &Response{
			Answer:     clarifyCutoffResponse,
			Confidence: 0,
			Source:     core.SourceRoute,
			Position:   -1,
		}
	}

	monitor.RouteHit(route.Branch)
	m.logger.Debug("cutoff query routed", "query", cleaned, "branch", route.Branch)
	return &Response{
		Answer:     route.Answer,
		Confidence: 0,
		Source:     core.SourceRoute,
		Position:   -1,
	}
}

// matchSimilarity answers a query by nearest-neighbor lookup over the
// embedding index.
func (m *Matcher) matchSimilarity(ctx context.Context, cleaned string, monitor MatchMonitor) *Response {
	embedding, err := m.embedder.EmbedText(ctx, cleaned)
	if err != nil {
		m.logger.Error("error generating embedding for query", "query", cleaned, "err", err)
		return m.failure()
	}

	pos, score := m.index.Best(index.NormalizeVector(embedding))
	monitor.SimilarityComputed(pos, score)

	if pos < 0 {
		m.logger.Error("similarity search over empty index", "query", cleaned)
		return m.failure()
	}

	if score < m.threshold {
		m.logger.Debug("best match below threshold", "query", cleaned, "score", score, "threshold", m.threshold)
		return &Response{
			Answer:     fallbackResponse,
			Confidence: score,
			Source:     core.SourceFallback,
			Position:   -1,
		}
	}

	entry := m.corpus.Entry(pos)
	m.logger.Debug("query matched", "query", cleaned, "question", entry.Question, "score", score)
	return &Response{
		Answer:     entry.Answer,
		Confidence: score,
		Source:     core.SourceSimilarity,
		Question:   entry.Question,
		Position:   pos,
	}
}

func (m *Matcher) failure() *Response {
	return &Response{
		Answer:     apologyResponse,
		Confidence: 0,
		Source:     core.SourceFailure,
		Position:   -1,
	}
}

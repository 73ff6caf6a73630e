package index

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/faqbot/ai"
	"github.com/poiesic/faqbot/corpus"
)

// Index is the embedding table for a FAQ corpus: one unit-normalized vector
// per question, position-aligned with the corpus entries. An Index is
// immutable after Build or LoadCache and safe for concurrent reads.
type Index struct {
	vectors    [][]float32
	dim        int
	corpusHash uint64
}

// BuildConfig holds parameters for batch embedding generation.
type BuildConfig struct {
	// BatchSize is the number of questions embedded per request.
	BatchSize int
	// PoolSize is the number of concurrent embedding workers.
	PoolSize int
	// MaxRetries is the maximum number of attempts per embedding call.
	MaxRetries int
	// RetryDelay is the base delay for exponential backoff between retries.
	RetryDelay time.Duration
	// Progress, if non-nil, receives progress reports during the build.
	Progress *ProgressTracker
}

// DefaultBuildConfig returns a BuildConfig with sensible defaults.
func DefaultBuildConfig() BuildConfig {
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	return BuildConfig{
		BatchSize:  32,
		PoolSize:   poolSize,
		MaxRetries: 3,
		RetryDelay: 1 * time.Second,
	}
}

// Build generates embeddings for every question in the corpus.
// Batches are embedded concurrently on an ants worker pool; each embedding
// call is retried with exponential backoff. Vectors are normalized to unit
// length so cosine similarity reduces to a dot product.
func Build(ctx context.Context, c *corpus.Corpus, embedder ai.Embedder, cfg BuildConfig) (*Index, error) {
	if c == nil || c.Len() == 0 {
		return nil, ErrEmptyCorpus
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBuildConfig().BatchSize
	}
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = DefaultBuildConfig().PoolSize
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultBuildConfig().MaxRetries
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultBuildConfig().RetryDelay
	}

	logger := slog.Default().With("component", "index")
	questions := c.Questions()
	vectors := make([][]float32, len(questions))

	pool, err := ants.NewPool(cfg.PoolSize)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	if cfg.Progress != nil {
		cfg.Progress.SetTotal(len(questions))
		cfg.Progress.Start()
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	logger.Info("building embedding table", "questions", len(questions), "batchSize", cfg.BatchSize, "poolSize", cfg.PoolSize)

	for offset := 0; offset < len(questions); offset += cfg.BatchSize {
		end := offset + cfg.BatchSize
		if end > len(questions) {
			end = len(questions)
		}
		batchOffset := offset
		batch := questions[offset:end]

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()

			var embeddings [][]float32
			err := RetryWithBackoff(ctx, func() error {
				var embedErr error
				embeddings, embedErr = embedder.EmbedTexts(ctx, batch)
				return embedErr
			}, cfg.MaxRetries, cfg.RetryDelay)

			if err == nil && len(embeddings) != len(batch) {
				err = fmt.Errorf("embedding result mismatch. expected %d, received %d", len(batch), len(embeddings))
			}

			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}

			for i, embedding := range embeddings {
				vectors[batchOffset+i] = NormalizeVector(embedding)
			}
			if cfg.Progress != nil {
				cfg.Progress.Increment(len(batch))
			}
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = submitErr
			}
			mu.Unlock()
			break
		}
	}

	wg.Wait()

	if cfg.Progress != nil {
		cfg.Progress.Finish()
	}

	if firstErr != nil {
		logger.Error("error building embedding table", "err", firstErr)
		return nil, firstErr
	}

	// All vectors must share one dimension for dot products to be meaningful
	dim := len(vectors[0])
	for _, vector := range vectors {
		if len(vector) != dim {
			return nil, fmt.Errorf("%w: expected %d, found %d", ErrDimensionMismatch, dim, len(vector))
		}
	}

	logger.Info("embedding table built", "vectors", len(vectors), "dimension", dim)

	return &Index{
		vectors:    vectors,
		dim:        dim,
		corpusHash: c.Hash(),
	}, nil
}

// Len returns the number of vectors in the table.
func (ix *Index) Len() int {
	return len(ix.vectors)
}

// Dimension returns the embedding dimension.
func (ix *Index) Dimension() int {
	return ix.dim
}

// CorpusHash returns the content hash of the corpus the table was built from.
func (ix *Index) CorpusHash() uint64 {
	return ix.corpusHash
}

// Vector returns the vector at position pos.
func (ix *Index) Vector(pos int) []float32 {
	return ix.vectors[pos]
}

// Best returns the position and cosine similarity of the table vector most
// similar to the given vector. The input must be unit-normalized; use
// NormalizeVector before calling. Returns (-1, 0) for an empty table.
func (ix *Index) Best(vector []float32) (int, float32) {
	best := -1
	var bestScore float32
	for pos, candidate := range ix.vectors {
		score := dotProduct(vector, candidate)
		if best == -1 || score > bestScore {
			best = pos
			bestScore = score
		}
	}
	return best, bestScore
}

// NormalizeVector normalizes a vector to unit length.
// Returns a new vector. If the input is a zero vector, returns a zero vector.
func NormalizeVector(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	var magnitude float32
	for _, val := range v {
		magnitude += val * val
	}
	magnitude = float32(math.Sqrt(float64(magnitude)))

	// Can't normalize zero vector
	if magnitude == 0 {
		result := make([]float32, len(v))
		return result
	}

	result := make([]float32, len(v))
	for i, val := range v {
		result[i] = val / magnitude
	}
	return result
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

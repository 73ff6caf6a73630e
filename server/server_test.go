package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/faqbot/ai/mock"
	"github.com/poiesic/faqbot/corpus"
	"github.com/poiesic/faqbot/index"
	"github.com/poiesic/faqbot/matcher"
	"github.com/poiesic/faqbot/storage"
	"github.com/poiesic/faqbot/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serverFAQ = `[
  {
    "category": "Admissions",
    "questions": [
      {"question": "what is the admission process?", "answer": "Apply through KCET or COMEDK."}
    ]
  },
  {
    "category": "Hostel",
    "questions": [
      {"question": "hostel fees?", "answer": "Hostel fees are 80,000 per year including mess."}
    ]
  }
]`

func newTestServer(t *testing.T) (*Server, storage.ExchangeRepository) {
	t.Helper()

	c, err := corpus.Parse(strings.NewReader(serverFAQ))
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder()
	ix, err := index.Build(context.Background(), c, embedder, index.DefaultBuildConfig())
	require.NoError(t, err)

	m, err := matcher.NewMatcher(c, ix, mock.NewMockProviderWithEmbedder(embedder))
	require.NoError(t, err)

	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})

	s, err := NewServer(m, c, repo)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s, repo
}

func postChat(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleChat(t *testing.T) {
	s, repo := newTestServer(t)
	handler := s.Router()

	t.Run("answers a known question", func(t *testing.T) {
		rec := postChat(t, handler, `{"message": "hostel fees?"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp chatResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Hostel fees are 80,000 per year including mess.", resp.Response)
		assert.InDelta(t, 1.0, resp.Confidence, 1e-3)
		assert.GreaterOrEqual(t, resp.ResponseTime, 0.0)
	})

	t.Run("empty message is a bad request", func(t *testing.T) {
		rec := postChat(t, handler, `{"message": "   "}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Please provide a message.", resp.Response)
		assert.Equal(t, "empty_message", resp.Error)
	})

	t.Run("malformed body is a bad request", func(t *testing.T) {
		rec := postChat(t, handler, `{not json`)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "invalid_request", resp.Error)
	})

	t.Run("cutoff query routes with zero confidence", func(t *testing.T) {
		rec := postChat(t, handler, `{"message": "cse cutoff ranks"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp chatResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp.Response, "CSE")
		assert.Equal(t, float32(0), resp.Confidence)
	})

	t.Run("exchanges are logged", func(t *testing.T) {
		rec := postChat(t, handler, `{"message": "hostel fees?"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		// The log write is async; poll briefly
		deadline := time.Now().Add(2 * time.Second)
		for {
			exchanges, err := repo.GetRecentExchanges(context.Background(), 100)
			require.NoError(t, err)
			if len(exchanges) > 0 {
				assert.Equal(t, "hostel fees?", exchanges[0].Query)
				break
			}
			if time.Now().After(deadline) {
				t.Fatal("exchange was never logged")
			}
			time.Sleep(10 * time.Millisecond)
		}
	})
}

func TestCloseDrainsLogWrites(t *testing.T) {
	c, err := corpus.Parse(strings.NewReader(serverFAQ))
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder()
	ix, err := index.Build(context.Background(), c, embedder, index.DefaultBuildConfig())
	require.NoError(t, err)

	m, err := matcher.NewMatcher(c, ix, mock.NewMockProviderWithEmbedder(embedder))
	require.NoError(t, err)

	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})

	s, err := NewServer(m, c, repo)
	require.NoError(t, err)

	rec := postChat(t, s.Router(), `{"message": "hostel fees?"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// Close waits for the queued write, so no polling is needed
	require.NoError(t, s.Close())

	exchanges, err := repo.GetRecentExchanges(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, exchanges, 1)
	assert.Equal(t, "hostel fees?", exchanges[0].Query)
}

func TestHandleHealth(t *testing.T) {
	s, _ := newTestServer(t)
	handler := s.Router()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, 2, resp.Questions)
	assert.Equal(t, 2, resp.Categories)
}

func TestNewServer(t *testing.T) {
	c, err := corpus.Parse(strings.NewReader(serverFAQ))
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder()
	ix, err := index.Build(context.Background(), c, embedder, index.DefaultBuildConfig())
	require.NoError(t, err)

	m, err := matcher.NewMatcher(c, ix, mock.NewMockProviderWithEmbedder(embedder))
	require.NoError(t, err)

	t.Run("rejects nil matcher", func(t *testing.T) {
		_, err := NewServer(nil, c, nil)
		assert.ErrorIs(t, err, ErrMatcherRequired)
	})

	t.Run("rejects nil corpus", func(t *testing.T) {
		_, err := NewServer(m, nil, nil)
		assert.ErrorIs(t, err, ErrCorpusRequired)
	})

	t.Run("nil repository disables logging", func(t *testing.T) {
		s, err := NewServer(m, c, nil)
		require.NoError(t, err)
		defer s.Close()

		rec := postChat(t, s.Router(), `{"message": "hostel fees?"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

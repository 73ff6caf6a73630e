package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	assert.Equal(t, "all-minilm", cfg.EmbeddingModel)
	require.NoError(t, cfg.Validate())
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig(
		WithEmbeddingHost("http://embed.internal:9100"),
		WithEmbeddingModel("text-embedding-3-small"),
	)
	assert.Equal(t, "http://embed.internal:9100", cfg.EmbeddingHost)
	assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		host string
		want string
	}{
		{"adds v1 suffix", "http://localhost:11434", "http://localhost:11434/v1"},
		{"strips trailing slash first", "http://localhost:11434/", "http://localhost:11434/v1"},
		{"keeps existing v1", "http://localhost:11434/v1", "http://localhost:11434/v1"},
		{"empty host untouched", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{EmbeddingHost: tc.host}
			cfg.Normalize()
			assert.Equal(t, tc.want, cfg.EmbeddingHost)
		})
	}
}

func TestValidate(t *testing.T) {
	t.Run("missing host", func(t *testing.T) {
		cfg := &Config{EmbeddingModel: "all-minilm"}
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing model", func(t *testing.T) {
		cfg := &Config{EmbeddingHost: "http://localhost:11434/v1"}
		assert.Error(t, cfg.Validate())
	})

	t.Run("validate normalizes host", func(t *testing.T) {
		cfg := &Config{EmbeddingHost: "http://localhost:11434", EmbeddingModel: "all-minilm"}
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
	})
}

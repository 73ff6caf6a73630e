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


package index

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/faqbot/ai"
	"github.com/poiesic/faqbot/corpus"
)

const (
	cacheMagic   = "FAQIDX"
	cacheVersion = uint64(1)
)

var (
	vectorSer = ord.NewSliceSer[float32](raw.Float32)
	tableSer  = ord.NewSliceSer[[]float32](vectorSer)
)

// SaveCache writes the embedding table to path in MUS binary format.
// The file records the corpus hash so a stale cache can be detected on load.
// Writes to a temp file in the same directory, then renames.
func SaveCache(ix *Index, path string) error {
	size := ord.String.Size(cacheMagic) +
		varint.Uint64.Size(cacheVersion) +
		varint.Uint64.Size(ix.corpusHash) +
		varint.Int.Size(ix.dim) +
		tableSer.Size(ix.vectors)

	buf := make([]byte, size)
	n := ord.String.Marshal(cacheMagic, buf)
	n += varint.Uint64.Marshal(cacheVersion, buf[n:])
	n += varint.Uint64.Marshal(ix.corpusHash, buf[n:])
	n += varint.Int.Marshal(ix.dim, buf[n:])
	tableSer.Marshal(ix.vectors, buf[n:])

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating cache directory. %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("error creating cache temp file. %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("error writing cache. %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("error closing cache temp file. %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("error replacing cache file. %w", err)
	}
	return nil
}

// LoadCache reads an embedding table from path. Returns ErrCacheStale when
// the stored corpus hash differs from corpusHash, ErrCacheVersion for an
// unknown format version, and ErrCacheCorrupt for a malformed file.
func LoadCache(path string, corpusHash uint64) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	magic, n, err := ord.String.Unmarshal(data)
	if err != nil || magic != cacheMagic {
		return nil, ErrCacheCorrupt
	}
	version, vn, err := varint.Uint64.Unmarshal(data[n:])
	if err != nil {
		return nil, ErrCacheCorrupt
	}
	n += vn
	if version != cacheVersion {
		return nil, fmt.Errorf("%w: %d", ErrCacheVersion, version)
	}
	hash, hn, err := varint.Uint64.Unmarshal(data[n:])
	if err != nil {
		return nil, ErrCacheCorrupt
	}
	n += hn
	if hash != corpusHash {
		return nil, ErrCacheStale
	}
	dim, dn, err := varint.Int.Unmarshal(data[n:])
	if err != nil || dim <= 0 {
		return nil, ErrCacheCorrupt
	}
	n += dn
	vectors, _, err := tableSer.Unmarshal(data[n:])
	if err != nil || len(vectors) == 0 {
		return nil, ErrCacheCorrupt
	}
	for _, vector := range vectors {
		if len(vector) != dim {
			return nil, ErrCacheCorrupt
		}
	}

	return &Index{
		vectors:    vectors,
		dim:        dim,
		corpusHash: hash,
	}, nil
}

// LoadOrBuild loads the embedding table from the cache file when it exists
// and matches the corpus, otherwise builds the table and rewrites the cache.
// A missing, stale, or corrupt cache is not an error; it triggers a rebuild.
func LoadOrBuild(ctx context.Context, c *corpus.Corpus, embedder ai.Embedder, path string, cfg BuildConfig) (*Index, error) {
	logger := slog.Default().With("component", "index")

	if path != "" {
		ix, err := LoadCache(path, c.Hash())
		if err == nil {
			if ix.Len() == c.Len() {
				logger.Info("loaded embedding table from cache", "path", path, "vectors", ix.Len())
				return ix, nil
			}
			logger.Warn("cache vector count does not match corpus, rebuilding", "cached", ix.Len(), "corpus", c.Len())
		} else if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("unable to use embedding cache, rebuilding", "path", path, "err", err)
		}
	}

	ix, err := Build(ctx, c, embedder, cfg)
	if err != nil {
		return nil, err
	}

	if path != "" {
		if err := SaveCache(ix, path); err != nil {
			// A failed cache write is not fatal. The table is already built.
			logger.Warn("error writing embedding cache", "path", path, "err", err)
		} else {
			logger.Info("wrote embedding cache", "path", path, "vectors", ix.Len())
		}
	}
	return ix, nil
}

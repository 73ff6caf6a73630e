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


package faqbot

import (
	"context"
	"log/slog"

	"github.com/poiesic/faqbot/ai"
	"github.com/poiesic/faqbot/ai/openai"
	"github.com/poiesic/faqbot/corpus"
	"github.com/poiesic/faqbot/index"
	"github.com/poiesic/faqbot/matcher"
	"github.com/poiesic/faqbot/server"
	"github.com/poiesic/faqbot/storage"
	"github.com/poiesic/faqbot/storage/badger"
)

// Bot wires together the corpus, embedding index, matcher, and exchange
// log. It is the single aggregate the commands construct at startup.
type Bot struct {
	corpus       *corpus.Corpus
	index        *index.Index
	matcher      *matcher.Matcher
	backend      *badger.Backend
	exchangeRepo storage.ExchangeRepository
	provider     ai.EmbeddingProvider
	logger       *slog.Logger
}

// BotOption configures a Bot.
type BotOption func(*botOptions)

type botOptions struct {
	aiConfig    *ai.Config
	provider    ai.EmbeddingProvider
	cachePath   string
	logPath     string
	inMemoryLog bool
	threshold   float32
	buildConfig index.BuildConfig
}

// WithAIConfig sets the embedding service configuration.
func WithAIConfig(cfg *ai.Config) BotOption {
	return func(o *botOptions) {
		o.aiConfig = cfg
	}
}

// WithProvider sets an explicit embedding provider, overriding WithAIConfig.
// Used mainly for testing.
func WithProvider(provider ai.EmbeddingProvider) BotOption {
	return func(o *botOptions) {
		o.provider = provider
	}
}

// WithCachePath sets the embedding cache file path.
// Empty disables the cache.
func WithCachePath(path string) BotOption {
	return func(o *botOptions) {
		o.cachePath = path
	}
}

// WithLogPath sets the exchange log database directory.
// Empty disables exchange logging.
func WithLogPath(path string) BotOption {
	return func(o *botOptions) {
		o.logPath = path
	}
}

// WithInMemoryLog stores the exchange log in memory. Used for testing and
// one-shot commands.
func WithInMemoryLog() BotOption {
	return func(o *botOptions) {
		o.inMemoryLog = true
	}
}

// WithThreshold sets the similarity threshold for the matcher.
func WithThreshold(threshold float32) BotOption {
	return func(o *botOptions) {
		o.threshold = threshold
	}
}

// WithBuildConfig sets the embedding build configuration.
func WithBuildConfig(cfg index.BuildConfig) BotOption {
	return func(o *botOptions) {
		o.buildConfig = cfg
	}
}

// NewBot loads the corpus, builds or loads the embedding index, and wires
// the matcher and exchange log.
func NewBot(ctx context.Context, faqPath string, opts ...BotOption) (*Bot, error) {
	// Apply options
	options := &botOptions{
		aiConfig:    ai.DefaultConfig(),
		threshold:   matcher.DefaultThreshold,
		buildConfig: index.DefaultBuildConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	logger := slog.Default()

	// Load the corpus
	c, err := corpus.Load(faqPath)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded FAQ corpus", "path", faqPath, "questions", c.Len(), "categories", c.Categories())

	// Create the embedding provider
	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			return nil, err
		}
	}

	// Build or load the embedding index
	ix, err := index.LoadOrBuild(ctx, c, provider.Embedder(), options.cachePath, options.buildConfig)
	if err != nil {
		provider.Close()
		return nil, err
	}

	// Create the matcher
	m, err := matcher.NewMatcher(c, ix, provider, matcher.WithThreshold(options.threshold))
	if err != nil {
		provider.Close()
		return nil, err
	}

	bot := &Bot{
		corpus:   c,
		index:    ix,
		matcher:  m,
		provider: provider,
		logger:   logger,
	}

	// Open the exchange log
	if options.logPath != "" || options.inMemoryLog {
		backend, err := badger.OpenBackend(options.logPath, options.inMemoryLog)
		if err != nil {
			provider.Close()
			return nil, err
		}

		exchangeRepo, err := badger.NewExchangeRepository(backend)
		if err != nil {
			backend.Close()
			provider.Close()
			return nil, err
		}

		bot.backend = backend
		bot.exchangeRepo = exchangeRepo
	}

	return bot, nil
}

// Close releases the bot's resources in reverse construction order.
func (b *Bot) Close() error {
	// Close AI provider first
	if err := b.provider.Close(); err != nil {
		b.logger.Error("error closing embedding provider", "err", err)
	}

	if b.exchangeRepo != nil {
		if err := b.exchangeRepo.Close(); err != nil {
			b.logger.Error("error closing exchange repository", "err", err)
			return err
		}
	}

	if b.backend != nil {
		if err := b.backend.Close(); err != nil {
			b.logger.Error("error closing exchange log storage", "err", err)
			return err
		}
	}
	return nil
}

// Corpus returns the loaded FAQ corpus.
func (b *Bot) Corpus() *corpus.Corpus {
	return b.corpus
}

// Index returns the embedding index.
func (b *Bot) Index() *index.Index {
	return b.index
}

// Matcher returns the query matcher.
func (b *Bot) Matcher() *matcher.Matcher {
	return b.matcher
}

// ExchangeRepository returns the exchange log, or nil when logging is
// disabled.
func (b *Bot) ExchangeRepository() storage.ExchangeRepository {
	return b.exchangeRepo
}

// NewServer creates an HTTP server over the bot's matcher and exchange log.
func (b *Bot) NewServer(opts ...server.Option) (*server.Server, error) {
	return server.NewServer(b.matcher, b.corpus, b.exchangeRepo, opts...)
}

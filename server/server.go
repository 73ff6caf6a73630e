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


package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/faqbot/corpus"
	"github.com/poiesic/faqbot/matcher"
	"github.com/poiesic/faqbot/storage"
)

const (
	// DefaultAddr is the default listen address.
	DefaultAddr = ":8080"
	// DefaultRequestTimeout bounds a single request.
	DefaultRequestTimeout = 30 * time.Second
	// DefaultShutdownTimeout bounds graceful shutdown.
	DefaultShutdownTimeout = 10 * time.Second

	defaultLogPoolSize = 4
)

// Server serves the chat API over HTTP. Exchange logging runs on a worker
// pool so a slow log write never delays a response.
type Server struct {
	matcher         *matcher.Matcher
	corpus          *corpus.Corpus
	exchanges       storage.ExchangeRepository
	logPool         *ants.Pool
	logger          *slog.Logger
	addr            string
	requestTimeout  time.Duration
	shutdownTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithAddr sets the listen address.
// Default is DefaultAddr.
func WithAddr(addr string) Option {
	return func(s *Server) error {
		s.addr = addr
		return nil
	}
}

// WithRequestTimeout sets the per-request timeout.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(s *Server) error {
		s.requestTimeout = timeout
		return nil
	}
}

// WithShutdownTimeout sets the graceful shutdown timeout.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(s *Server) error {
		s.shutdownTimeout = timeout
		return nil
	}
}

// NewServer creates a server over the given matcher and corpus.
// exchanges may be nil, in which case the exchange log is disabled.
func NewServer(m *matcher.Matcher, c *corpus.Corpus, exchanges storage.ExchangeRepository, opts ...Option) (*Server, error) {
	if m == nil {
		return nil, ErrMatcherRequired
	}
	if c == nil {
		return nil, ErrCorpusRequired
	}

	s := &Server{
		matcher:         m,
		corpus:          c,
		exchanges:       exchanges,
		logger:          slog.Default(),
		addr:            DefaultAddr,
		requestTimeout:  DefaultRequestTimeout,
		shutdownTimeout: DefaultShutdownTimeout,
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	pool, err := ants.NewPool(defaultLogPoolSize)
	if err != nil {
		return nil, err
	}
	s.logPool = pool

	return s, nil
}

// Router builds the HTTP handler for the chat API.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(s.requestTimeout))

	r.Post("/api/chat", s.handleChat)
	r.Get("/api/health", s.handleHealth)

	return r
}

// ListenAndServe serves the API until the context is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.addr,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving chat API", "addr", s.addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down chat API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// Close drains queued exchange-log writes and releases the worker pool.
// Waits at most the shutdown timeout for pending writes to finish.
func (s *Server) Close() error {
	if err := s.logPool.ReleaseTimeout(s.shutdownTimeout); err != nil {
		s.logger.Warn("log pool released with pending work", "err", err)
		return err
	}
	return nil
}

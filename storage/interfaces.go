package storage

import (
	"context"
	"time"

	"github.com/poiesic/faqbot/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// ExchangeRepository provides operations for the query/answer exchange log.
type ExchangeRepository interface {
	Repository
	// AddExchanges adds one or more exchanges to storage.
	// For exchanges with ID=0, generates new IDs from sequence.
	// Sets CreatedAt timestamp if not already set.
	// Returns the exchanges with generated IDs and timestamps populated.
	AddExchanges(ctx context.Context, exchanges ...*core.Exchange) ([]*core.Exchange, error)

	// DeleteExchanges removes exchanges by their IDs.
	// Also removes associated indices.
	// Returns ErrNotFound if any exchange doesn't exist.
	DeleteExchanges(ctx context.Context, ids ...core.ID) error

	// GetExchange retrieves a single exchange by ID.
	// Returns ErrNotFound if the exchange doesn't exist.
	GetExchange(ctx context.Context, id core.ID) (*core.Exchange, error)

	// GetExchanges retrieves multiple exchanges by their IDs.
	// Returns only the exchanges that exist (no error for missing exchanges).
	GetExchanges(ctx context.Context, ids ...core.ID) ([]*core.Exchange, error)

	// GetExchangesByDateRange retrieves exchanges within a time range.
	// Returns exchanges where start <= CreatedAt < end, ordered by timestamp.
	GetExchangesByDateRange(ctx context.Context, start, end time.Time) ([]*core.Exchange, error)

	// GetRecentExchanges retrieves the N most recent exchanges, ordered by timestamp descending.
	// Returns up to limit exchanges, with the most recent first.
	GetRecentExchanges(ctx context.Context, limit int) ([]*core.Exchange, error)
}

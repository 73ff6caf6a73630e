package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/faqbot/core"
	"github.com/poiesic/faqbot/storage"
)

// ExchangeRepository implements storage.ExchangeRepository for BadgerDB.
type ExchangeRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.ExchangeRepository = (*ExchangeRepository)(nil)

// NewExchangeRepository creates a new ExchangeRepository.
func NewExchangeRepository(backend *Backend) (*ExchangeRepository, error) {
	idSeq, err := backend.GetSequence(exchangeIDSeq)
	if err != nil {
		return nil, err
	}

	return &ExchangeRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *ExchangeRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *ExchangeRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddExchanges adds one or more exchanges to storage.
func (r *ExchangeRepository) AddExchanges(ctx context.Context, exchanges ...*core.Exchange) ([]*core.Exchange, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, exchange := range exchanges {
			// Always generate new ID from sequence
			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			// BadgerDB sequences can return 0 on first call, so we skip it
			if nextID == 0 {
				nextID, err = r.idSeq.Next()
				if err != nil {
					return err
				}
			}
			exchange.Id = core.ID(nextID)

			if exchange.CreatedAt.IsZero() {
				exchange.CreatedAt = time.Now().UTC()
			}

			// Store primary record
			key := makeExchangeKey(exchange.Id)
			value := storage.MarshalExchange(exchange)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Update date index
			dateKey := makeExchangeDateKey(exchange.CreatedAt, exchange.Id)
			if err := tx.Set(dateKey, storage.MarshalID(exchange.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return exchanges, err
}

// DeleteExchanges removes exchanges by their IDs.
func (r *ExchangeRepository) DeleteExchanges(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeExchangeKey(id)

			// Read the exchange to get its timestamp for index cleanup
			exchange, err := r.readExchange(tx, key)
			if err != nil {
				return err
			}
			if exchange == nil {
				return storage.ErrNotFound
			}

			// Delete from date index
			dateKey := makeExchangeDateKey(exchange.CreatedAt, exchange.Id)
			if err := tx.Delete(dateKey); err != nil {
				return err
			}

			// Delete primary record
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetExchange retrieves a single exchange by ID.
func (r *ExchangeRepository) GetExchange(ctx context.Context, id core.ID) (*core.Exchange, error) {
	var result *core.Exchange
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeExchangeKey(id)
		var err error
		result, err = r.readExchange(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetExchanges retrieves multiple exchanges by their IDs.
func (r *ExchangeRepository) GetExchanges(ctx context.Context, ids ...core.ID) ([]*core.Exchange, error) {
	var result []*core.Exchange
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeExchangeKey(id)
			exchange, err := r.readExchange(tx, key)
			if err != nil {
				return err
			}
			if exchange != nil {
				result = append(result, exchange)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetExchangesByDateRange retrieves exchanges within a time range.
func (r *ExchangeRepository) GetExchangesByDateRange(ctx context.Context, start, end time.Time) ([]*core.Exchange, error) {
	if start.Equal(end) {
		end = start.Add(1 * time.Microsecond)
	}

	var results []*core.Exchange
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialExchangeDateKey(start)
		endKey := makePartialExchangeDateKey(end)
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if slices.Compare(key, endKey) > 0 {
				break
			}

			// Read the ID from the index
			var exchangeID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				exchangeID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			// Look up the full exchange
			exchangeKey := makeExchangeKey(exchangeID)
			exchange, err := r.readExchange(tx, exchangeKey)
			if err != nil {
				return err
			}
			if exchange != nil {
				results = append(results, exchange)
			}
		}
		return nil
	}, false)

	return results, err
}

// GetRecentExchanges retrieves the N most recent exchanges, ordered by timestamp descending.
func (r *ExchangeRepository) GetRecentExchanges(ctx context.Context, limit int) ([]*core.Exchange, error) {
	var results []*core.Exchange
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Use reverse iterator to get most recent exchanges first
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true

		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Seek to the last possible key in the date index
		startKey := makePartialExchangeDateKey(time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC))

		// Prefix for exchange date index keys
		prefix := []byte(exchangeDatePrefix + ":")

		count := 0
		for iter.Seek(startKey); iter.Valid() && count < limit; iter.Next() {
			key := iter.Item().Key()

			// Check if we're still in the date index
			if len(key) < len(prefix) || slices.Compare(key[:len(prefix)], prefix) != 0 {
				break
			}

			// Read the ID from the index
			var exchangeID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				exchangeID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			// Look up the full exchange
			exchangeKey := makeExchangeKey(exchangeID)
			exchange, err := r.readExchange(tx, exchangeKey)
			if err != nil {
				return err
			}
			if exchange != nil {
				results = append(results, exchange)
				count++
			}
		}
		return nil
	}, false)

	return results, err
}

// readExchange reads an exchange from the transaction.
func (r *ExchangeRepository) readExchange(tx *badger.Txn, key []byte) (*core.Exchange, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var exchange *core.Exchange
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		exchange, unmarshalErr = storage.UnmarshalExchange(val)
		return unmarshalErr
	})
	return exchange, err
}

package dbgen

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is a Querier that can also run a function inside one transaction.
type Store interface {
	Querier
	ExecTx(ctx context.Context, fn func(Querier) error) error
}

// SQLStore runs queries against a pgx pool.
type SQLStore struct {
	*Queries
	pool *pgxpool.Pool
}

// NewStore wraps pool.
func NewStore(pool *pgxpool.Pool) *SQLStore {
	return &SQLStore{Queries: New(pool), pool: pool}
}

// ExecTx runs fn in a transaction. A non-nil error from fn rolls everything back.
func (s *SQLStore) ExecTx(ctx context.Context, fn func(Querier) error) error {
	if s == nil || s.pool == nil {
		return errors.New("dbgen: store not configured")
	}
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(s.Queries.WithTx(tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

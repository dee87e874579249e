package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier abstracts the subset of pgxpool.Pool used by PostgresBackend.
// This allows injection of a mock in tests.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresBackend stores history lists as JSONB rows in search_history.
type PostgresBackend struct {
	q Querier
}

// NewPostgresBackend constructs a PostgresBackend backed by the given pool.
func NewPostgresBackend(pool *pgxpool.Pool) *PostgresBackend {
	return &PostgresBackend{q: pool}
}

// NewPostgresBackendWithQuerier constructs a PostgresBackend with a custom Querier (for tests).
func NewPostgresBackendWithQuerier(q Querier) *PostgresBackend {
	return &PostgresBackend{q: q}
}

// Get returns nil, nil when no row exists for key.
func (b *PostgresBackend) Get(ctx context.Context, key string) ([]byte, error) {
	const q = `
		SELECT entries
		FROM search_history
		WHERE history_key = $1
	`

	var entries []byte
	if err := b.q.QueryRow(ctx, q, key).Scan(&entries); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying history %s: %w", key, err)
	}
	return entries, nil
}

// Put upserts the row for key.
func (b *PostgresBackend) Put(ctx context.Context, key string, value []byte) error {
	const q = `
		INSERT INTO search_history (history_key, entries, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (history_key) DO UPDATE
		SET entries    = EXCLUDED.entries,
		    updated_at = EXCLUDED.updated_at
	`

	if _, err := b.q.Exec(ctx, q, key, value); err != nil {
		return fmt.Errorf("upserting history %s: %w", key, err)
	}
	return nil
}

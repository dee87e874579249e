package history

import (
	"context"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MigrationPool opens the transactions migrations run in. *pgxpool.Pool
// satisfies it.
type MigrationPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// postgresMaxConns caps the pool. A refresh issues at most one read and one
// upsert, so history traffic never needs many connections.
const postgresMaxConns = 8

// ConnectPostgres opens the pool for the PostgreSQL history backend and
// fails unless the database answers a ping.
func ConnectPostgres(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid database url: %w", err)
	}
	cfg.MaxConns = postgresMaxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening history pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("history database unreachable: %w", err)
	}
	return pool, nil
}

// RunMigrations applies every *.sql file at the root of fsys in lexicographic
// order, each in its own transaction. Files must be idempotent.
func RunMigrations(ctx context.Context, pool MigrationPool, fsys fs.FS) error {
	files, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return fmt.Errorf("listing migrations: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		sql, err := fs.ReadFile(fsys, f)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", f, err)
		}

		if err := applySchema(ctx, pool, string(sql)); err != nil {
			return fmt.Errorf("applying migration %s: %w", f, err)
		}
	}

	return nil
}

// applySchema runs one migration file inside a transaction; pgx.BeginFunc
// rolls back when the statement fails.
func applySchema(ctx context.Context, pool MigrationPool, sql string) error {
	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, sql)
		return err
	})
}

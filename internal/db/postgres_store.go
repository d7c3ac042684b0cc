package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"railbook/internal/db/migrations"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps entries in the kv_entries table managed by the embedded migrations.
type PostgresStore struct {
	Pool *pgxpool.Pool
}

// OpenPostgres connects, pings and applies migrations.
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	startupCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(startupCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return NewPostgresStore(pool), nil
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{Pool: pool}
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	return pgTx{q: s.Pool}.Get(ctx, key)
}

func (s *PostgresStore) Scan(ctx context.Context, prefix string) ([]Entry, error) {
	return pgTx{q: s.Pool}.Scan(ctx, prefix)
}

func (s *PostgresStore) Put(ctx context.Context, key string, value []byte) error {
	return pgTx{q: s.Pool}.Put(ctx, key, value)
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	return pgTx{q: s.Pool}.Delete(ctx, key)
}

func (s *PostgresStore) Update(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(ctx, pgTx{q: tx, locking: true}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.Pool.Close()
	return nil
}

type pgQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgTx struct {
	q       pgQuerier
	locking bool
}

func (t pgTx) Get(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT v FROM kv_entries WHERE k = $1`
	if t.locking {
		query += ` FOR UPDATE`
	}
	var v []byte
	if err := t.q.QueryRow(ctx, query, key).Scan(&v); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return v, nil
}

func (t pgTx) Scan(ctx context.Context, prefix string) ([]Entry, error) {
	query := `SELECT k, v FROM kv_entries WHERE k LIKE $1 ESCAPE '!' ORDER BY k`
	if t.locking {
		query += ` FOR UPDATE`
	}
	rows, err := t.q.Query(ctx, query, likePrefix(prefix))
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", prefix, err)
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Key, &e.Value); err != nil {
			return nil, fmt.Errorf("scan %s: %w", prefix, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (t pgTx) Put(ctx context.Context, key string, value []byte) error {
	const stmt = `
INSERT INTO kv_entries (k, v, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (k) DO UPDATE SET v = EXCLUDED.v, updated_at = NOW()`
	if value == nil {
		value = []byte{}
	}
	if _, err := t.q.Exec(ctx, stmt, key, value); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (t pgTx) Delete(ctx context.Context, key string) error {
	if _, err := t.q.Exec(ctx, `DELETE FROM kv_entries WHERE k = $1`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

const kvTable = "kv_entries"

// MySQLStore keeps entries in one InnoDB table. Reads inside Update lock their rows.
type MySQLStore struct {
	DB *sql.DB
}

// updateIsolation keeps FOR UPDATE reads of missing keys from taking gap locks.
// Under REPEATABLE READ two commits on different partitions deadlock on their inserts.
const updateIsolation = sql.LevelReadCommitted

func (s *MySQLStore) txOptions() *sql.TxOptions {
	return &sql.TxOptions{Isolation: updateIsolation}
}

// OpenMySQL connects, pings and makes sure the kv table exists.
func OpenMySQL(ctx context.Context, dsn string) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(10 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}

	s := NewMySQLStore(db)
	if err := s.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Println("connected to MySQL key-value store")
	return s, nil
}

func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{DB: db}
}

// EnsureSchema creates the kv table when it is missing.
func (s *MySQLStore) EnsureSchema(ctx context.Context) error {
	if HasTable(ctx, s.DB, kvTable) {
		return nil
	}
	ddl := `
CREATE TABLE IF NOT EXISTS kv_entries (
	k VARCHAR(191) NOT NULL PRIMARY KEY,
	v LONGBLOB NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin;
`
	if _, err := s.DB.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create %s: %w", kvTable, err)
	}
	return nil
}

func (s *MySQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	return mysqlTx{q: s.DB}.Get(ctx, key)
}

func (s *MySQLStore) Scan(ctx context.Context, prefix string) ([]Entry, error) {
	return mysqlTx{q: s.DB}.Scan(ctx, prefix)
}

func (s *MySQLStore) Put(ctx context.Context, key string, value []byte) error {
	return mysqlTx{q: s.DB}.Put(ctx, key, value)
}

func (s *MySQLStore) Delete(ctx context.Context, key string) error {
	return mysqlTx{q: s.DB}.Delete(ctx, key)
}

func (s *MySQLStore) Update(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, s.txOptions())
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(ctx, mysqlTx{q: tx, locking: true}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *MySQLStore) Close() error {
	return s.DB.Close()
}

type sqlQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type mysqlTx struct {
	q       sqlQuerier
	locking bool
}

func (t mysqlTx) Get(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT v FROM kv_entries WHERE k = ?`
	if t.locking {
		query += ` FOR UPDATE`
	}
	var v []byte
	if err := t.q.QueryRowContext(ctx, query, key).Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return v, nil
}

func (t mysqlTx) Scan(ctx context.Context, prefix string) ([]Entry, error) {
	query := `SELECT k, v FROM kv_entries WHERE k LIKE ? ESCAPE '!' ORDER BY k`
	if t.locking {
		query += ` FOR UPDATE`
	}
	rows, err := t.q.QueryContext(ctx, query, likePrefix(prefix))
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

func (t mysqlTx) Put(ctx context.Context, key string, value []byte) error {
	const stmt = `INSERT INTO kv_entries (k, v) VALUES (?, ?) ON DUPLICATE KEY UPDATE v = VALUES(v)`
	if value == nil {
		value = []byte{}
	}
	if _, err := t.q.ExecContext(ctx, stmt, key, value); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (t mysqlTx) Delete(ctx context.Context, key string) error {
	if _, err := t.q.ExecContext(ctx, `DELETE FROM kv_entries WHERE k = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

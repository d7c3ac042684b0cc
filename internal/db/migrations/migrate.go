package migrations

import (
	"context"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed *.sql
var files embed.FS

// lockKey serializes railbook processes migrating the same database.
const lockKey int64 = 720431001

// Table records which kv_entries migrations ran and the checksum they ran with.
const Table = "railbook_migrations"

type migration struct {
	name     string
	body     string
	checksum string
}

// load returns the embedded migrations in filename order. Empty files are skipped.
func load() ([]migration, error) {
	names, err := fs.Glob(files, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("list kv migrations: %w", err)
	}
	sort.Strings(names)

	out := make([]migration, 0, len(names))
	for _, name := range names {
		raw, err := files.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read kv migration %s: %w", name, err)
		}
		body := strings.TrimSpace(string(raw))
		if body == "" {
			continue
		}
		sum := sha256.Sum256([]byte(body))
		out = append(out, migration{name: name, body: body, checksum: hex.EncodeToString(sum[:])})
	}
	return out, nil
}

// Apply brings the kv_entries schema up to date. Each migration runs in its own
// transaction together with its bookkeeping row. A migration whose file changed
// after it was applied stops the run.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	list, err := load()
	if err != nil {
		return err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire migration conn: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock($1)`, lockKey); err != nil {
		return fmt.Errorf("lock kv migrations: %w", err)
	}
	defer func() {
		_, _ = conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, lockKey)
	}()

	if _, err := conn.Exec(ctx, `
CREATE TABLE IF NOT EXISTS `+Table+` (
	name TEXT PRIMARY KEY,
	checksum TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`); err != nil {
		return fmt.Errorf("create %s: %w", Table, err)
	}

	applied, err := appliedChecksums(ctx, conn.Conn())
	if err != nil {
		return err
	}

	for _, m := range list {
		if sum, ok := applied[m.name]; ok {
			if sum != m.checksum {
				return fmt.Errorf("kv migration %s changed after it was applied", m.name)
			}
			continue
		}
		if err := run(ctx, conn.Conn(), m); err != nil {
			return err
		}
	}
	return nil
}

func appliedChecksums(ctx context.Context, conn *pgx.Conn) (map[string]string, error) {
	rows, err := conn.Query(ctx, `SELECT name, checksum FROM `+Table)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", Table, err)
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var name, sum string
		if err := rows.Scan(&name, &sum); err != nil {
			return nil, fmt.Errorf("read %s: %w", Table, err)
		}
		out[name] = sum
	}
	return out, rows.Err()
}

func run(ctx context.Context, conn *pgx.Conn, m migration) error {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin kv migration %s: %w", m.name, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, m.body); err != nil {
		return fmt.Errorf("kv migration %s: %w", m.name, err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO `+Table+` (name, checksum) VALUES ($1, $2)`, m.name, m.checksum); err != nil {
		return fmt.Errorf("record kv migration %s: %w", m.name, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit kv migration %s: %w", m.name, err)
	}
	return nil
}

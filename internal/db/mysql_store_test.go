package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockStore(t *testing.T) (*MySQLStore, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return NewMySQLStore(sqlDB), mock
}

func TestMySQLStore_EnsureSchema(t *testing.T) {
	t.Run("creates table when missing", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery("information_schema\\.tables").WithArgs("kv_entries").
			WillReturnRows(sqlmock.NewRows([]string{"table_name"}))
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS kv_entries").
			WillReturnResult(sqlmock.NewResult(0, 0))

		if err := s.EnsureSchema(context.Background()); err != nil {
			t.Fatalf("ensure schema: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet expectations: %v", err)
		}
	})

	t.Run("skips existing table", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery("information_schema\\.tables").WithArgs("kv_entries").
			WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("kv_entries"))

		if err := s.EnsureSchema(context.Background()); err != nil {
			t.Fatalf("ensure schema: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet expectations: %v", err)
		}
	})
}

func TestMySQLStore_GetPut(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectQuery("SELECT v FROM kv_entries WHERE k = \\?$").WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"v"}))
	mock.ExpectQuery("SELECT v FROM kv_entries WHERE k = \\?$").WithArgs("catalog/trains").
		WillReturnRows(sqlmock.NewRows([]string{"v"}).AddRow([]byte(`[]`)))
	mock.ExpectExec("INSERT INTO kv_entries \\(k, v\\) VALUES \\(\\?, \\?\\) ON DUPLICATE KEY UPDATE").
		WithArgs("catalog/trains", []byte(`[{"id":"PKR-1"}]`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("DELETE FROM kv_entries WHERE k = \\?").WithArgs("catalog/trains").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
	v, err := s.Get(ctx, "catalog/trains")
	if err != nil || string(v) != "[]" {
		t.Fatalf("unexpected get result %q %v", v, err)
	}
	if err := s.Put(ctx, "catalog/trains", []byte(`[{"id":"PKR-1"}]`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Delete(ctx, "catalog/trains"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMySQLStore_Scan(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT k, v FROM kv_entries WHERE k LIKE \\? ESCAPE '!' ORDER BY k").
		WithArgs("bookings/%").
		WillReturnRows(sqlmock.NewRows([]string{"k", "v"}).
			AddRow("bookings/PNR-A", []byte("a")).
			AddRow("bookings/PNR-B", []byte("b")))

	entries, err := s.Scan(context.Background(), "bookings/")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(entries) != 2 || entries[1].Key != "bookings/PNR-B" || string(entries[1].Value) != "b" {
		t.Fatalf("unexpected entries %+v", entries)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMySQLStore_Update(t *testing.T) {
	t.Run("locks reads and commits", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT v FROM kv_entries WHERE k = \\? FOR UPDATE").WithArgs("seats/PKR-1/2025-01-01/Economy").
			WillReturnRows(sqlmock.NewRows([]string{"v"}))
		mock.ExpectExec("INSERT INTO kv_entries").WithArgs("seats/PKR-1/2025-01-01/Economy", []byte("[5]")).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("INSERT INTO kv_entries").WithArgs("bookings/PNR-A", []byte("{}")).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		err := s.Update(context.Background(), func(ctx context.Context, tx Tx) error {
			if _, err := tx.Get(ctx, "seats/PKR-1/2025-01-01/Economy"); !errors.Is(err, ErrKeyNotFound) {
				return err
			}
			if err := tx.Put(ctx, "seats/PKR-1/2025-01-01/Economy", []byte("[5]")); err != nil {
				return err
			}
			return tx.Put(ctx, "bookings/PNR-A", []byte("{}"))
		})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet expectations: %v", err)
		}
	})

	t.Run("rolls back when a write fails", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO kv_entries").WithArgs("seats/PKR-1/2025-01-01/Economy", []byte("[5]")).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("INSERT INTO kv_entries").WithArgs("bookings/PNR-A", []byte("{}")).
			WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		err := s.Update(context.Background(), func(ctx context.Context, tx Tx) error {
			if err := tx.Put(ctx, "seats/PKR-1/2025-01-01/Economy", []byte("[5]")); err != nil {
				return err
			}
			return tx.Put(ctx, "bookings/PNR-A", []byte("{}"))
		})
		if err == nil {
			t.Fatalf("expected error")
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet expectations: %v", err)
		}
	})
}

// isolationConn records the isolation level of every transaction it begins.
type isolationConn struct {
	driver.Conn
	levels *[]driver.IsolationLevel
}

func (c isolationConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	*c.levels = append(*c.levels, opts.Isolation)
	return c.Conn.(driver.ConnBeginTx).BeginTx(ctx, opts)
}

func (c isolationConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	return c.Conn.(driver.QueryerContext).QueryContext(ctx, query, args)
}

func (c isolationConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	return c.Conn.(driver.ExecerContext).ExecContext(ctx, query, args)
}

type isolationConnector struct {
	drv    driver.Driver
	dsn    string
	levels *[]driver.IsolationLevel
}

func (c isolationConnector) Connect(context.Context) (driver.Conn, error) {
	conn, err := c.drv.Open(c.dsn)
	if err != nil {
		return nil, err
	}
	return isolationConn{Conn: conn, levels: c.levels}, nil
}

func (c isolationConnector) Driver() driver.Driver {
	return c.drv
}

func TestMySQLStore_UpdateUsesReadCommitted(t *testing.T) {
	const dsn = "mysql_update_isolation"
	mockDB, mock, err := sqlmock.NewWithDSN(dsn)
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { _ = mockDB.Close() })

	var levels []driver.IsolationLevel
	sqlDB := sql.OpenDB(isolationConnector{drv: mockDB.Driver(), dsn: dsn, levels: &levels})
	t.Cleanup(func() { _ = sqlDB.Close() })
	s := NewMySQLStore(sqlDB)

	// PKR-5 first booking: the seat key does not exist yet.
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT v FROM kv_entries WHERE k = \\? FOR UPDATE").WithArgs("seats/PKR-5/2025-01-01/Economy").
		WillReturnRows(sqlmock.NewRows([]string{"v"}))
	mock.ExpectExec("INSERT INTO kv_entries").WithArgs("seats/PKR-5/2025-01-01/Economy", []byte("[1]")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err = s.Update(context.Background(), func(ctx context.Context, tx Tx) error {
		if _, err := tx.Get(ctx, "seats/PKR-5/2025-01-01/Economy"); !errors.Is(err, ErrKeyNotFound) {
			return err
		}
		return tx.Put(ctx, "seats/PKR-5/2025-01-01/Economy", []byte("[1]"))
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(levels) != 1 || sql.IsolationLevel(levels[0]) != sql.LevelReadCommitted {
		t.Fatalf("expected one READ COMMITTED transaction, got %v", levels)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

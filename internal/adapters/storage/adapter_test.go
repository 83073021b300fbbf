package storage_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/goliatone/go-sitepublish/internal/adapters/storage"
	"github.com/goliatone/go-sitepublish/pkg/interfaces"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", "file:"+t.Name()+"?mode=memory&cache=shared&_fk=1")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSQLAdapterExecAndQuery(t *testing.T) {
	ctx := context.Background()
	adapter := storage.NewSQLAdapter(openDB(t))

	if _, err := adapter.Exec(ctx, `CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT)`); err != nil {
		t.Fatalf("create: %v", err)
	}
	res, err := adapter.Exec(ctx, `INSERT INTO kv (k, v) VALUES (?, ?)`, "a", "1")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if n, _ := res.RowsAffected(); n != 1 {
		t.Fatalf("expected one affected row, got %d", n)
	}

	rows, err := adapter.Query(ctx, `SELECT v FROM kv WHERE k = ?`, "a")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer rows.Close()
	if !rows.Next() {
		t.Fatal("expected a row")
	}
	var v string
	if err := rows.Scan(&v); err != nil || v != "1" {
		t.Fatalf("scan = %q, %v", v, err)
	}
}

func TestSQLAdapterTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	adapter := storage.NewSQLAdapter(openDB(t))
	if _, err := adapter.Exec(ctx, `CREATE TABLE kv (k TEXT PRIMARY KEY)`); err != nil {
		t.Fatalf("create: %v", err)
	}

	boom := errors.New("boom")
	err := adapter.Transaction(ctx, func(tx interfaces.Transaction) error {
		if _, err := tx.Exec(ctx, `INSERT INTO kv (k) VALUES ('x')`); err != nil {
			return err
		}
		if err := tx.Transaction(ctx, nil); err == nil {
			t.Error("expected nested transaction to be rejected")
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	rows, err := adapter.Query(ctx, `SELECT COUNT(*) FROM kv`)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer rows.Close()
	var count int
	if !rows.Next() || rows.Scan(&count) != nil || count != 0 {
		t.Fatalf("expected rollback, found %d rows", count)
	}
}

func TestSQLAdapterTransactionCommits(t *testing.T) {
	ctx := context.Background()
	adapter := storage.NewSQLAdapter(openDB(t))
	if _, err := adapter.Exec(ctx, `CREATE TABLE kv (k TEXT PRIMARY KEY)`); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := adapter.Transaction(ctx, func(tx interfaces.Transaction) error {
		_, err := tx.Exec(ctx, `INSERT INTO kv (k) VALUES ('x')`)
		return err
	}); err != nil {
		t.Fatalf("transaction: %v", err)
	}

	rows, err := adapter.Query(ctx, `SELECT k FROM kv`)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer rows.Close()
	if !rows.Next() {
		t.Fatal("expected committed row")
	}
}

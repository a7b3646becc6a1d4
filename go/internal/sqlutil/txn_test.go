package sqlutil

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	if _, err := db.Exec("CREATE TABLE kv (k TEXT PRIMARY KEY)"); err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

func count(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM kv").Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func bindTx(tx *sql.Tx) *sql.Tx { return tx }

func TestInTxCommits(t *testing.T) {
	db := openTestDB(t)
	err := InTx(context.Background(), db, bindTx, func(tx *sql.Tx) error {
		_, err := tx.Exec("INSERT INTO kv (k) VALUES ('a')")
		return err
	})
	if err != nil {
		t.Fatalf("InTx() error = %v", err)
	}
	if n := count(t, db); n != 1 {
		t.Fatalf("rows = %d, want 1", n)
	}
}

func TestInTxRollsBackOnError(t *testing.T) {
	db := openTestDB(t)
	boom := errors.New("boom")
	err := InTx(context.Background(), db, bindTx, func(tx *sql.Tx) error {
		if _, err := tx.Exec("INSERT INTO kv (k) VALUES ('a')"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTx() error = %v, want boom", err)
	}
	if n := count(t, db); n != 0 {
		t.Fatalf("rows = %d, want 0", n)
	}
}

func TestInTxRollsBackOnPanic(t *testing.T) {
	db := openTestDB(t)
	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic to propagate")
			}
		}()
		_ = InTx(context.Background(), db, bindTx, func(tx *sql.Tx) error {
			if _, err := tx.Exec("INSERT INTO kv (k) VALUES ('a')"); err != nil {
				return err
			}
			panic("boom")
		})
	}()
	if n := count(t, db); n != 0 {
		t.Fatalf("rows = %d, want 0", n)
	}
}

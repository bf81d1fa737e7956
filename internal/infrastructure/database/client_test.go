package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

func TestOpen_EnablesWAL(t *testing.T) {
	client, err := Open(filepath.Join(t.TempDir(), "nested", "cache.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer client.Close()

	var mode string
	if err := client.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("Failed to read journal mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("Expected wal journal mode, got %q", mode)
	}
}

func TestIsBusyError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("database is locked"), true},
		{errors.New("SQLITE_BUSY: retry later"), true},
		{errors.New("no such table: x"), false},
	}
	for _, tt := range tests {
		if got := IsBusyError(tt.err); got != tt.want {
			t.Errorf("IsBusyError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestWithRetry_RetriesBusy(t *testing.T) {
	attempts := 0
	got, err := WithRetry(context.Background(), 3, func() (int, error) {
		attempts++
		if attempts < 3 {
			return 0, errors.New("database is locked")
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != 42 || attempts != 3 {
		t.Errorf("Expected 42 after 3 attempts, got %d after %d", got, attempts)
	}
}

func TestWithRetry_StopsOnOtherErrors(t *testing.T) {
	attempts := 0
	boom := errors.New("boom")
	_, err := WithRetry(context.Background(), 3, func() (int, error) {
		attempts++
		return 0, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("Expected boom, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt, got %d", attempts)
	}
}

func TestWithRetry_GivesUp(t *testing.T) {
	attempts := 0
	_, err := WithRetry(context.Background(), 2, func() (int, error) {
		attempts++
		return 0, errors.New("database is locked")
	})
	if !IsBusyError(err) {
		t.Errorf("Expected busy error, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	client, err := Open(filepath.Join(t.TempDir(), "tx.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer client.Close()

	ctx := context.Background()
	if _, err := client.ExecContext(ctx, "CREATE TABLE t (v INTEGER)"); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}

	boom := errors.New("boom")
	err = WithTx(ctx, client.DB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO t (v) VALUES (1)"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected boom, got %v", err)
	}

	var count int
	if err := client.QueryRowContext(ctx, "SELECT COUNT(*) FROM t").Scan(&count); err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected rollback to leave 0 rows, got %d", count)
	}
}

func TestOpen_BusyTimeoutOnEveryConnection(t *testing.T) {
	client, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer client.Close()

	ctx := context.Background()
	conns := make([]*sql.Conn, 0, maxOpenConns)
	defer func() {
		for _, c := range conns {
			c.Close()
		}
	}()
	for i := range maxOpenConns {
		conn, err := client.Conn(ctx)
		if err != nil {
			t.Fatalf("Conn %d failed: %v", i, err)
		}
		conns = append(conns, conn)

		var timeout int
		if err := conn.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout); err != nil {
			t.Fatalf("Failed to read busy timeout on conn %d: %v", i, err)
		}
		if timeout != busyTimeoutMs {
			t.Errorf("conn %d: expected busy timeout %d, got %d", i, busyTimeoutMs, timeout)
		}
	}
}

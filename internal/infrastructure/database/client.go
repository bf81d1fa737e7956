package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	_ "github.com/tursodatabase/go-libsql"
)

const (
	busyTimeoutMs  = 10_000
	busyRetries    = 5
	busyRetryDelay = 50 * time.Millisecond
	maxOpenConns   = 4
)

// Client wraps a local libsql database tuned for one writer and
// concurrent readers.
type Client struct {
	*sql.DB
	Path string
}

// Options configures the database client behavior.
type Options struct {
	Ping bool
}

// Open opens (creating if needed) the database file at path with pings
// enabled.
func Open(path string) (*Client, error) {
	return OpenWithOptions(path, Options{Ping: true})
}

// OpenWithOptions opens the database file at path, enables WAL and sets
// the busy timeout on every pooled connection.
func OpenWithOptions(path string, opts Options) (*Client, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := openWithConnPragmas("file:" + path)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxOpenConns)
	db.SetConnMaxLifetime(0)

	if opts.Ping {
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, err
		}
	}

	if err := ApplyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Client{DB: db, Path: path}, nil
}

// connPragmas are per-connection settings, applied to every connection
// the pool opens.
var connPragmas = []string{
	fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeoutMs),
	"PRAGMA synchronous=NORMAL",
}

// pragmaConnector opens libsql connections and applies connPragmas to each.
type pragmaConnector struct {
	dsn    string
	driver driver.Driver
}

func openWithConnPragmas(dsn string) (*sql.DB, error) {
	probe, err := sql.Open("libsql", dsn)
	if err != nil {
		return nil, err
	}
	drv := probe.Driver()
	probe.Close()
	return sql.OpenDB(&pragmaConnector{dsn: dsn, driver: drv}), nil
}

func (c *pragmaConnector) Connect(ctx context.Context) (driver.Conn, error) {
	conn, err := c.driver.Open(c.dsn)
	if err != nil {
		return nil, err
	}
	for _, pragma := range connPragmas {
		if err := runPragma(ctx, conn, pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}
	return conn, nil
}

func (c *pragmaConnector) Driver() driver.Driver {
	return c.driver
}

// runPragma runs a pragma as a query, since some of them return a row.
func runPragma(ctx context.Context, conn driver.Conn, pragma string) error {
	if q, ok := conn.(driver.QueryerContext); ok {
		rows, err := q.QueryContext(ctx, pragma, nil)
		if err != nil {
			return err
		}
		return rows.Close()
	}
	stmt, err := conn.Prepare(pragma)
	if err != nil {
		return err
	}
	defer stmt.Close()
	rows, err := stmt.Query(nil)
	if err != nil {
		return err
	}
	return rows.Close()
}

// ApplyPragmas enables WAL. journal_mode persists in the database file, so
// one connection is enough.
func ApplyPragmas(db *sql.DB) error {
	var mode string
	if err := db.QueryRow("PRAGMA journal_mode=WAL").Scan(&mode); err != nil {
		return fmt.Errorf("failed to enable WAL: %w", err)
	}
	return nil
}

// IsBusyError checks if an error is a SQLite lock contention error.
func IsBusyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "database table is locked")
}

// WithRetry executes fn, retrying with a constant backoff while it fails
// with a busy error.
func WithRetry[T any](ctx context.Context, maxRetries int, fn func() (T, error)) (T, error) {
	var result T
	backoff := retry.WithMaxRetries(uint64(maxRetries), retry.NewConstant(busyRetryDelay))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		result, err = fn()
		if IsBusyError(err) {
			return retry.RetryableError(err)
		}
		return err
	})
	return result, err
}

// WithTx runs fn inside a transaction, retrying the whole transaction on
// busy errors.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	_, err := WithRetry(ctx, busyRetries, func() (struct{}, error) {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return struct{}{}, err
		}
		if err := fn(tx); err != nil {
			tx.Rollback()
			return struct{}{}, err
		}
		return struct{}{}, tx.Commit()
	})
	return err
}

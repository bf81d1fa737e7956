// Package cache persists parsed sessions and the global aggregate so that
// rebuilds only reparse changed logs.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/emiliopalmerini/claude-activity/internal/infrastructure/database"
	"github.com/emiliopalmerini/claude-activity/internal/migrate"
)

// ErrSessionNotFound is returned when no detail row exists for a session id.
var ErrSessionNotFound = errors.New("session not found")

// Store is the persistent cache. It is safe for concurrent readers; writes
// are expected from one rebuild at a time.
type Store struct {
	db *sql.DB
}

// Open prepares db for use as a cache: pragmas first, then migrations.
func Open(ctx context.Context, db *sql.DB) (*Store, error) {
	if err := database.ApplyPragmas(db); err != nil {
		return nil, err
	}
	if err := migrate.RunAll(ctx, db); err != nil {
		return nil, fmt.Errorf("failed to migrate cache: %w", err)
	}
	return &Store{db: db}, nil
}

// DB exposes the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// FileMtime returns a file's modification time as fractional seconds,
// the form stored in file_cache.
func FileMtime(info os.FileInfo) float64 {
	return float64(info.ModTime().UnixNano()) / 1e9
}

func decodeJSON[T any](ns sql.NullString, dst *T) {
	if !ns.Valid || ns.String == "" {
		return
	}
	_ = json.Unmarshal([]byte(ns.String), dst)
}

func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/emiliopalmerini/claude-activity/migrations"
)

// Applied describes one migration that ran.
type Applied struct {
	Version   int64
	Name      string
	Direction string
	Duration  time.Duration
}

// Migrator runs the embedded schema migrations against a database.
type Migrator struct {
	provider *goose.Provider
}

// New creates a Migrator for db.
func New(db *sql.DB) (*Migrator, error) {
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.FS)
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}
	return &Migrator{provider: provider}, nil
}

// Version returns the current schema version, 0 when nothing was applied.
func (m *Migrator) Version(ctx context.Context) (int64, error) {
	v, err := m.provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get current version: %w", err)
	}
	return v, nil
}

// Latest returns the highest embedded migration version.
func (m *Migrator) Latest() int64 {
	sources := m.provider.ListSources()
	if len(sources) == 0 {
		return 0
	}
	return sources[len(sources)-1].Version
}

// Up runs all pending migrations.
func (m *Migrator) Up(ctx context.Context) ([]Applied, error) {
	results, err := m.provider.Up(ctx)
	if err != nil {
		return toApplied(results), fmt.Errorf("failed to apply migrations: %w", err)
	}
	return toApplied(results), nil
}

// MigrateTo moves the schema up or down to target.
func (m *Migrator) MigrateTo(ctx context.Context, target int64) ([]Applied, error) {
	current, err := m.Version(ctx)
	if err != nil {
		return nil, err
	}

	var results []*goose.MigrationResult
	switch {
	case target > current:
		results, err = m.provider.UpTo(ctx, target)
	case target < current:
		results, err = m.provider.DownTo(ctx, target)
	default:
		return nil, nil
	}
	if err != nil {
		return toApplied(results), fmt.Errorf("failed to migrate to version %d: %w", target, err)
	}
	return toApplied(results), nil
}

func toApplied(results []*goose.MigrationResult) []Applied {
	applied := make([]Applied, 0, len(results))
	for _, r := range results {
		if r == nil || r.Source == nil {
			continue
		}
		applied = append(applied, Applied{
			Version:   r.Source.Version,
			Name:      filepath.Base(r.Source.Path),
			Direction: r.Direction,
			Duration:  r.Duration,
		})
	}
	return applied
}

// RunAll runs all pending migrations on the provided database.
func RunAll(ctx context.Context, db *sql.DB) error {
	m, err := New(db)
	if err != nil {
		return err
	}
	_, err = m.Up(ctx)
	return err
}

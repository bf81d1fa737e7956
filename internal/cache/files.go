package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/emiliopalmerini/claude-activity/internal/infrastructure/database"
)

type cachedFile struct {
	mtime float64
	size  int64
}

// StaleFiles compares paths against file_cache. Every path lands in
// current, even one that cannot be stat'ed; a stale file is new or has a
// different mtime or size.
func (s *Store) StaleFiles(ctx context.Context, paths []string) ([]string, map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT file_path, file_mtime, file_size FROM file_cache`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load file cache: %w", err)
	}
	defer rows.Close()

	cached := make(map[string]cachedFile)
	for rows.Next() {
		var path string
		var f cachedFile
		if err := rows.Scan(&path, &f.mtime, &f.size); err != nil {
			return nil, nil, fmt.Errorf("failed to scan file cache: %w", err)
		}
		cached[path] = f
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	current := make(map[string]struct{}, len(paths))
	var stale []string
	for _, path := range paths {
		current[path] = struct{}{}

		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		entry, ok := cached[path]
		if !ok || entry.mtime != FileMtime(info) || entry.size != info.Size() {
			stale = append(stale, path)
		}
	}
	return stale, current, nil
}

// DeleteRemovedSessions drops every cached file not in current, along with
// the summary and detail of its session. It returns how many files were
// removed.
func (s *Store) DeleteRemovedSessions(ctx context.Context, current map[string]struct{}) (int, error) {
	removed := 0
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		removed = 0
		rows, err := tx.QueryContext(ctx, `SELECT file_path, session_id FROM file_cache`)
		if err != nil {
			return err
		}
		type entry struct{ path, sessionID string }
		var gone []entry
		for rows.Next() {
			var e entry
			if err := rows.Scan(&e.path, &e.sessionID); err != nil {
				rows.Close()
				return err
			}
			if _, ok := current[e.path]; !ok {
				gone = append(gone, e)
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, e := range gone {
			if _, err := tx.ExecContext(ctx, `DELETE FROM session_summaries WHERE session_id = ?`, e.sessionID); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM session_details WHERE session_id = ?`, e.sessionID); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM file_cache WHERE file_path = ?`, e.path); err != nil {
				return err
			}
		}
		removed = len(gone)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete removed sessions: %w", err)
	}
	return removed, nil
}

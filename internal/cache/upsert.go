package cache

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/emiliopalmerini/claude-activity/internal/domain"
	"github.com/emiliopalmerini/claude-activity/internal/infrastructure/database"
)

// UpsertSession replaces the file entry, summary and detail of a session
// in one transaction. The summary stores combined tool counts and total
// actions including subagents.
func (s *Store) UpsertSession(ctx context.Context, path string, session *domain.Session, mtime float64, size int64) error {
	toolCounts, err := encodeJSON(session.CombinedToolCounts())
	if err != nil {
		return fmt.Errorf("failed to encode tool counts: %w", err)
	}
	fileExtensions, err := encodeJSON(nonNilCounts(session.FileExtensions))
	if err != nil {
		return fmt.Errorf("failed to encode file extensions: %w", err)
	}
	tokens, err := encodeJSON(session.Tokens)
	if err != nil {
		return fmt.Errorf("failed to encode tokens: %w", err)
	}
	detail, err := encodeJSON(session)
	if err != nil {
		return fmt.Errorf("failed to encode session detail: %w", err)
	}

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO file_cache (file_path, file_mtime, file_size, session_id)
			VALUES (?, ?, ?, ?)
		`, path, mtime, size, session.SessionID); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO session_summaries (
				session_id, project, slug, prompt_preview, start_time, end_time,
				model, total_tools, total_actions, turn_count, subagent_count,
				active_duration_ms, total_active_duration_ms, cost_estimate,
				permission_mode, interrupt_count, thinking_level, tool_errors,
				tool_counts_json, file_extensions_json, tokens_json
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			session.SessionID,
			session.Project,
			nullString(session.Slug),
			nullString(session.PromptPreview),
			nullString(session.StartTime),
			nullString(session.EndTime),
			nullString(session.Model),
			session.TotalTools,
			session.TotalActions(),
			session.TurnCount,
			len(session.Subagents),
			session.ActiveDurationMs,
			session.TotalActiveDurationMs,
			session.CostEstimate,
			nullString(session.PermissionMode),
			session.InterruptCount,
			nullString(session.ThinkingLevel),
			session.ToolErrors,
			toolCounts,
			fileExtensions,
			tokens,
		); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO session_details (session_id, detail_json)
			VALUES (?, ?)
		`, session.SessionID, detail)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to upsert session %s: %w", session.SessionID, err)
	}
	return nil
}

func nonNilCounts(m map[string]int) map[string]int {
	if m == nil {
		return map[string]int{}
	}
	return m
}

// nullString stores empty optional text as NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

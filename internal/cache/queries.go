package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/emiliopalmerini/claude-activity/internal/domain"
)

const summaryColumns = `
	session_id, project, slug, prompt_preview, start_time, end_time,
	model, total_tools, total_actions, turn_count, subagent_count,
	active_duration_ms, total_active_duration_ms, cost_estimate,
	permission_mode, interrupt_count, thinking_level, tool_errors`

// SessionList returns session summaries, newest start first. An empty
// project lists every session.
func (s *Store) SessionList(ctx context.Context, project string) ([]domain.SessionSummary, error) {
	query := `SELECT ` + summaryColumns + ` FROM session_summaries`
	var args []any
	if project != "" {
		query += ` WHERE project = ?`
		args = append(args, project)
	}
	query += ` ORDER BY start_time DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	summaries := []domain.SessionSummary{}
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

func scanSummary(rows *sql.Rows) (domain.SessionSummary, error) {
	var (
		s                                        domain.SessionSummary
		slug, preview, start, end, model         sql.NullString
		permission, thinking                     sql.NullString
		tools, actions, turns, subagents         sql.NullInt64
		active, totalActive, interrupts, errorsN sql.NullInt64
		cost                                     sql.NullFloat64
	)
	if err := rows.Scan(
		&s.SessionID, &s.Project, &slug, &preview, &start, &end,
		&model, &tools, &actions, &turns, &subagents,
		&active, &totalActive, &cost,
		&permission, &interrupts, &thinking, &errorsN,
	); err != nil {
		return s, fmt.Errorf("failed to scan session summary: %w", err)
	}

	s.Slug = slug.String
	s.PromptPreview = preview.String
	s.StartTime = start.String
	s.EndTime = end.String
	s.Model = model.String
	s.TotalTools = tools.Int64
	s.TotalActions = actions.Int64
	s.TurnCount = turns.Int64
	s.SubagentCount = subagents.Int64
	s.ActiveDurationMs = active.Int64
	s.TotalActiveDurationMs = totalActive.Int64
	s.CostEstimate = cost.Float64
	s.PermissionMode = permission.String
	s.InterruptCount = interrupts.Int64
	s.ThinkingLevel = thinking.String
	s.ToolErrors = errorsN.Int64
	return s, nil
}

// SessionDetail loads the full stored session.
func (s *Store) SessionDetail(ctx context.Context, sessionID string) (*domain.Session, error) {
	var detail string
	err := s.db.QueryRowContext(ctx,
		`SELECT detail_json FROM session_details WHERE session_id = ?`, sessionID,
	).Scan(&detail)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(detail), &session); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", sessionID, err)
	}
	return &session, nil
}

// ProjectsList returns the distinct projects in name order.
func (s *Store) ProjectsList(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT project FROM session_summaries ORDER BY project`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []string{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// SessionCount returns the number of cached sessions.
func (s *Store) SessionCount(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM session_summaries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return n, nil
}

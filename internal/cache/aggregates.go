package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/emiliopalmerini/claude-activity/internal/aggregate"
	"github.com/emiliopalmerini/claude-activity/internal/domain"
	"github.com/emiliopalmerini/claude-activity/internal/infrastructure/database"
)

// RebuildGlobalAggregates recomputes the aggregate row from every stored
// summary and replaces it, or deletes it when no summaries remain. It
// returns the new aggregate, nil after a delete.
func (s *Store) RebuildGlobalAggregates(ctx context.Context, now time.Time) (*domain.GlobalAggregate, error) {
	var agg *domain.GlobalAggregate
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		rows, err := loadAggregateRows(ctx, tx)
		if err != nil {
			return err
		}

		agg = aggregate.Build(rows, now)
		if agg == nil {
			_, err := tx.ExecContext(ctx, `DELETE FROM global_aggregates WHERE id = 1`)
			return err
		}
		return writeAggregate(ctx, tx, agg)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild aggregates: %w", err)
	}
	return agg, nil
}

// HasAggregate reports whether the aggregate row exists.
func (s *Store) HasAggregate(ctx context.Context) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM global_aggregates WHERE id = 1`).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func loadAggregateRows(ctx context.Context, tx *sql.Tx) ([]aggregate.Row, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT project, COALESCE(total_tools, 0), COALESCE(total_actions, 0),
		       COALESCE(cost_estimate, 0), COALESCE(subagent_count, 0),
		       start_time, end_time, COALESCE(total_active_duration_ms, 0),
		       tool_counts_json, file_extensions_json, tokens_json
		FROM session_summaries
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []aggregate.Row
	for rows.Next() {
		var r aggregate.Row
		var start, end, toolCounts, fileExtensions, tokens sql.NullString
		if err := rows.Scan(
			&r.Project, &r.TotalTools, &r.TotalActions, &r.CostEstimate, &r.SubagentCount,
			&start, &end, &r.TotalActiveDurationMs,
			&toolCounts, &fileExtensions, &tokens,
		); err != nil {
			return nil, err
		}
		r.StartTime = start.String
		r.EndTime = end.String
		decodeJSON(toolCounts, &r.ToolCounts)
		decodeJSON(fileExtensions, &r.FileExtensions)
		decodeJSON(tokens, &r.Tokens)
		result = append(result, r)
	}
	return result, rows.Err()
}

type column struct {
	name  string
	value any
}

func aggregateColumns(agg *domain.GlobalAggregate) ([]column, error) {
	cols := []column{
		{"generated_at", agg.GeneratedAt.Format(time.RFC3339Nano)},
		{"total_sessions", agg.TotalSessions},
		{"total_tools", agg.TotalTools},
		{"total_actions", agg.TotalActions},
		{"total_cost", agg.TotalCost},
		{"total_input_tokens", agg.TotalInputTokens},
		{"total_output_tokens", agg.TotalOutputTokens},
		{"total_cache_read_tokens", agg.TotalCacheReadTokens},
		{"total_cache_creation_tokens", agg.TotalCacheCreationTokens},
		{"total_active_ms", agg.TotalActiveMs},
		{"date_range_start", nullString(agg.DateRangeStart)},
		{"date_range_end", nullString(agg.DateRangeEnd)},
		{"project_count", agg.ProjectCount},
		{"subagent_count", agg.SubagentCount},
		{"subagent_tools", agg.SubagentTools},
	}

	jsonCols := []column{
		{"tool_distribution_json", agg.ToolDistribution},
		{"projects_chart_json", agg.ProjectsChart},
		{"project_costs_json", agg.ProjectCosts},
		{"file_types_chart_json", agg.FileTypesChart},
		{"projects_list_json", agg.ProjectsList},
		{"daily_timeline_json", agg.DailyTimeline},
		{"weekly_timeline_json", agg.WeeklyTimeline},
		{"monthly_timeline_json", agg.MonthlyTimeline},
		{"daily_actions_json", agg.DailyActions},
		{"weekly_actions_json", agg.WeeklyActions},
		{"monthly_actions_json", agg.MonthlyActions},
	}
	windows := map[string]domain.WindowBreakdown{"1d": agg.Last1d, "7d": agg.Last7d, "30d": agg.Last30d}
	for _, suffix := range []string{"1d", "7d", "30d"} {
		b := windows[suffix]
		jsonCols = append(jsonCols,
			column{"tool_distribution_" + suffix + "_json", b.ToolDistribution},
			column{"projects_chart_" + suffix + "_json", b.ProjectsChart},
			column{"file_types_chart_" + suffix + "_json", b.FileTypesChart},
			column{"project_costs_" + suffix + "_json", b.ProjectCosts},
		)
	}

	for _, jc := range jsonCols {
		encoded, err := encodeJSON(jc.value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", jc.name, err)
		}
		cols = append(cols, column{jc.name, encoded})
	}
	return cols, nil
}

func writeAggregate(ctx context.Context, tx *sql.Tx, agg *domain.GlobalAggregate) error {
	cols, err := aggregateColumns(agg)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(cols)+1)
	args := make([]any, 0, len(cols))
	names = append(names, "id")
	for _, c := range cols {
		names = append(names, c.name)
		args = append(args, c.value)
	}
	placeholders := "1" + strings.Repeat(", ?", len(cols))

	query := fmt.Sprintf(`INSERT OR REPLACE INTO global_aggregates (%s) VALUES (%s)`,
		strings.Join(names, ", "), placeholders)
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}

// OverviewPayload reads the stored aggregate. It returns nil, nil when the
// row does not exist yet.
func (s *Store) OverviewPayload(ctx context.Context) (*domain.GlobalAggregate, error) {
	var (
		agg                     domain.GlobalAggregate
		generatedAt             sql.NullString
		rangeStart, rangeEnd    sql.NullString
		cacheCreation           sql.NullInt64
		toolDist, projects      sql.NullString
		projectCosts, fileTypes sql.NullString
		projectsList            sql.NullString
		daily, weekly, monthly  sql.NullString
		dailyA, weeklyA         sql.NullString
		monthlyA                sql.NullString
		windows                 [3][4]sql.NullString
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT generated_at, total_sessions, total_tools, total_actions, total_cost,
		       total_input_tokens, total_output_tokens, total_cache_read_tokens,
		       total_cache_creation_tokens, total_active_ms,
		       date_range_start, date_range_end, project_count, subagent_count, subagent_tools,
		       tool_distribution_json, projects_chart_json, project_costs_json,
		       file_types_chart_json, projects_list_json,
		       daily_timeline_json, weekly_timeline_json, monthly_timeline_json,
		       daily_actions_json, weekly_actions_json, monthly_actions_json,
		       tool_distribution_1d_json, projects_chart_1d_json, file_types_chart_1d_json, project_costs_1d_json,
		       tool_distribution_7d_json, projects_chart_7d_json, file_types_chart_7d_json, project_costs_7d_json,
		       tool_distribution_30d_json, projects_chart_30d_json, file_types_chart_30d_json, project_costs_30d_json
		FROM global_aggregates WHERE id = 1
	`).Scan(
		&generatedAt, &agg.TotalSessions, &agg.TotalTools, &agg.TotalActions, &agg.TotalCost,
		&agg.TotalInputTokens, &agg.TotalOutputTokens, &agg.TotalCacheReadTokens,
		&cacheCreation, &agg.TotalActiveMs,
		&rangeStart, &rangeEnd, &agg.ProjectCount, &agg.SubagentCount, &agg.SubagentTools,
		&toolDist, &projects, &projectCosts,
		&fileTypes, &projectsList,
		&daily, &weekly, &monthly,
		&dailyA, &weeklyA, &monthlyA,
		&windows[0][0], &windows[0][1], &windows[0][2], &windows[0][3],
		&windows[1][0], &windows[1][1], &windows[1][2], &windows[1][3],
		&windows[2][0], &windows[2][1], &windows[2][2], &windows[2][3],
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read aggregates: %w", err)
	}

	if t, err := time.Parse(time.RFC3339Nano, generatedAt.String); err == nil {
		agg.GeneratedAt = t
	}
	agg.TotalCacheCreationTokens = cacheCreation.Int64
	agg.DateRangeStart = rangeStart.String
	agg.DateRangeEnd = rangeEnd.String

	decodeJSON(toolDist, &agg.ToolDistribution)
	decodeJSON(projects, &agg.ProjectsChart)
	decodeJSON(projectCosts, &agg.ProjectCosts)
	decodeJSON(fileTypes, &agg.FileTypesChart)
	decodeJSON(projectsList, &agg.ProjectsList)
	decodeJSON(daily, &agg.DailyTimeline)
	decodeJSON(weekly, &agg.WeeklyTimeline)
	decodeJSON(monthly, &agg.MonthlyTimeline)
	decodeJSON(dailyA, &agg.DailyActions)
	decodeJSON(weeklyA, &agg.WeeklyActions)
	decodeJSON(monthlyA, &agg.MonthlyActions)

	for i, b := range []*domain.WindowBreakdown{&agg.Last1d, &agg.Last7d, &agg.Last30d} {
		decodeJSON(windows[i][0], &b.ToolDistribution)
		decodeJSON(windows[i][1], &b.ProjectsChart)
		decodeJSON(windows[i][2], &b.FileTypesChart)
		decodeJSON(windows[i][3], &b.ProjectCosts)
	}

	return &agg, nil
}

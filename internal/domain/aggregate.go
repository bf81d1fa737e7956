package domain

import "time"

// RankedCount is one ordered chart or timeline entry.
type RankedCount struct {
	Key   string `json:"key"`
	Value int64  `json:"value"`
}

// RankedCost is one ordered cost chart entry.
type RankedCost struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// ActionBucket is one timeline period of combined activity.
type ActionBucket struct {
	Period   string `json:"period"`
	Total    int64  `json:"total"`
	Direct   int64  `json:"direct"`
	Subagent int64  `json:"subagent"`
	ActiveMs int64  `json:"active_ms"`
}

// WindowBreakdown holds the charts restricted to sessions started within
// a trailing time window.
type WindowBreakdown struct {
	ToolDistribution []RankedCount `json:"tool_distribution"`
	ProjectsChart    []RankedCount `json:"projects_chart"`
	FileTypesChart   []RankedCount `json:"file_types_chart"`
	ProjectCosts     []RankedCost  `json:"project_costs"`
}

// GlobalAggregate is the singleton cross-session rollup. It is always
// derived in full from the stored session summaries.
type GlobalAggregate struct {
	GeneratedAt              time.Time `json:"generated_at"`
	TotalSessions            int64     `json:"total_sessions"`
	TotalTools               int64     `json:"total_tools"`
	TotalActions             int64     `json:"total_actions"`
	TotalCost                float64   `json:"total_cost"`
	TotalInputTokens         int64     `json:"total_input_tokens"`
	TotalOutputTokens        int64     `json:"total_output_tokens"`
	TotalCacheReadTokens     int64     `json:"total_cache_read_tokens"`
	TotalCacheCreationTokens int64     `json:"total_cache_creation_tokens"`
	TotalActiveMs            int64     `json:"total_active_ms"`
	DateRangeStart           string    `json:"date_range_start"`
	DateRangeEnd             string    `json:"date_range_end"`
	ProjectCount             int64     `json:"project_count"`
	SubagentCount            int64     `json:"subagent_count"`
	SubagentTools            int64     `json:"subagent_tools"`

	ToolDistribution []RankedCount `json:"tool_distribution"`
	ProjectsChart    []RankedCount `json:"projects_chart"`
	ProjectCosts     []RankedCost  `json:"project_costs"`
	FileTypesChart   []RankedCount `json:"file_types_chart"`
	ProjectsList     []string      `json:"projects_list"`

	DailyTimeline   []RankedCount `json:"daily_timeline"`
	WeeklyTimeline  []RankedCount `json:"weekly_timeline"`
	MonthlyTimeline []RankedCount `json:"monthly_timeline"`

	DailyActions   []ActionBucket `json:"daily_actions"`
	WeeklyActions  []ActionBucket `json:"weekly_actions"`
	MonthlyActions []ActionBucket `json:"monthly_actions"`

	Last1d  WindowBreakdown `json:"last_1d"`
	Last7d  WindowBreakdown `json:"last_7d"`
	Last30d WindowBreakdown `json:"last_30d"`
}

// Window returns the breakdown for a window name ("1d", "7d", "30d").
// Any other name returns false.
func (g *GlobalAggregate) Window(name string) (WindowBreakdown, bool) {
	switch name {
	case "1d":
		return g.Last1d, true
	case "7d":
		return g.Last7d, true
	case "30d":
		return g.Last30d, true
	}
	return WindowBreakdown{}, false
}

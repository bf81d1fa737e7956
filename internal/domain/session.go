package domain

// TokenUsage sums the four token kinds reported on assistant messages.
type TokenUsage struct {
	Input         int64 `json:"input"`
	Output        int64 `json:"output"`
	CacheCreation int64 `json:"cache_creation"`
	CacheRead     int64 `json:"cache_read"`
}

// ToolCall is one entry of a session's ordered tool-call timeline.
type ToolCall struct {
	Seq        int    `json:"seq"`
	Time       string `json:"time"`
	Tool       string `json:"tool"`
	Detail     string `json:"detail"`
	IsSubagent bool   `json:"is_subagent"`
}

// UserTurn is one qualifying user message in conversation order.
type UserTurn struct {
	Text        string `json:"text"`
	Timestamp   string `json:"timestamp"`
	IsInterrupt bool   `json:"is_interrupt"`
	TurnNumber  int    `json:"turn_number"`
}

// BashCommand is a distinct shell command with its usage count.
type BashCommand struct {
	Command  string `json:"command"`
	Base     string `json:"base"`
	Count    int    `json:"count"`
	Category string `json:"category"`
}

// Subagent is a delegated sub-task parsed from its own log file.
type Subagent struct {
	AgentID          string         `json:"agent_id"`
	SubagentType     string         `json:"subagent_type"`
	TaskDescription  string         `json:"task_description"`
	Description      string         `json:"description"`
	ToolCount        int            `json:"tool_count"`
	ToolCounts       map[string]int `json:"tool_counts"`
	ToolCalls        []ToolCall     `json:"tool_calls"`
	ActiveDurationMs int64          `json:"active_duration_ms"`
}

// Session is the full parsed record of one top-level session log.
type Session struct {
	SessionID             string                    `json:"session_id"`
	Slug                  string                    `json:"slug"`
	Project               string                    `json:"project"`
	FirstPrompt           string                    `json:"first_prompt"`
	PromptPreview         string                    `json:"prompt_preview"`
	TurnCount             int                       `json:"turn_count"`
	StartTime             string                    `json:"start_time"`
	EndTime               string                    `json:"end_time"`
	Model                 string                    `json:"model"`
	TotalTools            int                       `json:"total_tools"`
	ToolCounts            map[string]int            `json:"tool_counts"`
	FileExtensions        map[string]int            `json:"file_extensions"`
	FilesTouched          map[string]map[string]int `json:"files_touched"`
	BashCommands          []BashCommand             `json:"bash_commands"`
	BashCategorySummary   map[string]int            `json:"bash_category_summary"`
	ToolCalls             []ToolCall                `json:"tool_calls"`
	UserTurns             []UserTurn                `json:"user_turns"`
	InterruptCount        int                       `json:"interrupt_count"`
	Tokens                TokenUsage                `json:"tokens"`
	ActiveDurationMs      int64                     `json:"active_duration_ms"`
	TotalActiveDurationMs int64                     `json:"total_active_duration_ms"`
	PermissionMode        string                    `json:"permission_mode"`
	ToolErrors            int                       `json:"tool_errors"`
	ToolSuccesses         int                       `json:"tool_successes"`
	ThinkingLevel         string                    `json:"thinking_level"`
	ModelsUsed            []string                  `json:"models_used"`
	CostEstimate          float64                   `json:"cost_estimate"`
	Subagents             []Subagent                `json:"subagents"`
}

// CombinedToolCounts merges the session's own tool counts with every
// subagent's counts.
func (s *Session) CombinedToolCounts() map[string]int {
	combined := make(map[string]int, len(s.ToolCounts))
	for tool, n := range s.ToolCounts {
		combined[tool] += n
	}
	for _, sa := range s.Subagents {
		for tool, n := range sa.ToolCounts {
			combined[tool] += n
		}
	}
	return combined
}

// SubagentTools is the number of tool calls made by all subagents.
func (s *Session) SubagentTools() int {
	total := 0
	for _, sa := range s.Subagents {
		total += sa.ToolCount
	}
	return total
}

// TotalActions is the session's own tool calls plus its subagents'.
func (s *Session) TotalActions() int {
	return s.TotalTools + s.SubagentTools()
}

// SessionSummary is the lightweight row used for session listings.
type SessionSummary struct {
	SessionID             string  `json:"session_id"`
	Project               string  `json:"project"`
	Slug                  string  `json:"slug"`
	PromptPreview         string  `json:"prompt_preview"`
	StartTime             string  `json:"start_time"`
	EndTime               string  `json:"end_time"`
	Model                 string  `json:"model"`
	TotalTools            int64   `json:"total_tools"`
	TotalActions          int64   `json:"total_actions"`
	TurnCount             int64   `json:"turn_count"`
	SubagentCount         int64   `json:"subagent_count"`
	ActiveDurationMs      int64   `json:"active_duration_ms"`
	TotalActiveDurationMs int64   `json:"total_active_duration_ms"`
	CostEstimate          float64 `json:"cost_estimate"`
	PermissionMode        string  `json:"permission_mode"`
	InterruptCount        int64   `json:"interrupt_count"`
	ThinkingLevel         string  `json:"thinking_level"`
	ToolErrors            int64   `json:"tool_errors"`
}

package parser

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/emiliopalmerini/claude-activity/internal/adapters/logger"
	"github.com/emiliopalmerini/claude-activity/internal/domain"
	"github.com/emiliopalmerini/claude-activity/internal/tooladapters"
)

func assertEqual[T comparable](t *testing.T, name string, expected, actual T) {
	t.Helper()
	if expected != actual {
		t.Errorf("%s: expected %v, got %v", name, expected, actual)
	}
}

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < 0.0001
}

func newTestParser() *Parser {
	return New(tooladapters.NewRegistry(), domain.DefaultExtractionOptions(), 0, logger.Discard())
}

func writeFile(t *testing.T, path string, lines ...string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

const sessionLog = `{"type":"user","slug":"quiet-fox","timestamp":"2026-03-01T10:00:00Z","permissionMode":"default","cwd":"/home/pi/app","sessionId":"abc","gitBranch":"main","message":{"role":"user","content":"<system-reminder>ctx</system-reminder> Please fix the login bug"}}
{"type":"assistant","timestamp":"2026-03-01T10:00:05Z","slug":"ignored-slug","message":{"role":"assistant","model":"claude-sonnet-4-5","usage":{"input_tokens":1000,"output_tokens":200,"cache_creation_input_tokens":100,"cache_read_input_tokens":5000},"content":[{"type":"text","text":"Looking."},{"type":"tool_use","id":"t1","name":"Read","input":{"file_path":"/home/pi/app/main.go"}},{"type":"tool_use","id":"t2","name":"Bash","input":{"command":"git status"}}]}}
{"type":"user","timestamp":"2026-03-01T10:00:06Z","message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"t1","content":"ok"},{"type":"tool_result","tool_use_id":"t2","is_error":true,"content":"fail"}]}}
not valid json
{"type":"assistant","timestamp":"2026-03-01T10:00:10Z","message":{"role":"assistant","model":"claude-opus-4-1","usage":{"input_tokens":10,"output_tokens":20},"content":[{"type":"tool_use","id":"t3","name":"Edit","input":{"file_path":"/home/pi/app/main.go","old_string":"a","new_string":"b"}},{"type":"tool_use","id":"t4","name":"Bash","input":{"command":"  git status  "}},{"type":"tool_use","id":"t5","name":"Task","input":{"subagent_type":"Explore","description":"Find callers","prompt":"Look"}}]}}
{"type":"progress","parentToolUseID":"t5","data":{"agentId":"a1b2"}}
{"type":"progress","parentToolUseID":"t5","data":{"agentId":"zzzz"}}
{"type":"user","timestamp":"2026-03-01T10:00:20Z","thinkingMetadata":{"level":"high"},"permissionMode":"acceptEdits","message":{"role":"user","content":"[Request interrupted by user]"}}
{"type":"user","timestamp":"2026-03-01T10:00:25Z","message":{"role":"user","content":"<command-name>/clear</command-name>"}}
{"type":"user","timestamp":"2026-03-01T10:00:26Z","message":{"role":"user","content":"ok"}}
{"type":"system","subtype":"turn_duration","durationMs":4000,"timestamp":"2026-03-01T10:00:30Z"}`

const subagentLog = `{"type":"user","timestamp":"2026-03-01T10:00:11Z","message":{"role":"user","content":[{"type":"text","text":"Find every caller of login()"}]}}
{"type":"assistant","timestamp":"2026-03-01T10:00:12Z","message":{"role":"assistant","content":[{"type":"tool_use","id":"s1","name":"Grep","input":{"pattern":"login\\(","path":"src"}},{"type":"tool_use","id":"s2","name":"Grep","input":{"pattern":"auth"}}]}}
{"type":"system","subtype":"turn_duration","durationMs":1500}`

func writeSession(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "-home-pi-app")
	path := filepath.Join(dir, "sess-1.jsonl")
	writeFile(t, path, sessionLog)
	writeFile(t, filepath.Join(dir, "sess-1", "subagents", "agent-a1b2.jsonl"), subagentLog)
	writeFile(t, filepath.Join(dir, "sess-1", "subagents", "agent-empty.jsonl"),
		`{"type":"user","message":{"role":"user","content":"nothing to do here"}}`)
	return path
}

func TestParseSession_Metadata(t *testing.T) {
	path := writeSession(t)

	s, err := newTestParser().ParseSession(context.Background(), path, "app")
	if err != nil {
		t.Fatalf("ParseSession failed: %v", err)
	}
	if s == nil {
		t.Fatal("Expected a session")
	}

	assertEqual(t, "SessionID", "sess-1", s.SessionID)
	assertEqual(t, "Slug", "quiet-fox", s.Slug)
	assertEqual(t, "Project", "app", s.Project)
	assertEqual(t, "StartTime", "2026-03-01T10:00:00Z", s.StartTime)
	assertEqual(t, "EndTime", "2026-03-01T10:00:30Z", s.EndTime)
	assertEqual(t, "Model", "claude-sonnet-4-5", s.Model)
	assertEqual(t, "ModelsUsed", "claude-opus-4-1,claude-sonnet-4-5", strings.Join(s.ModelsUsed, ","))
	assertEqual(t, "PermissionMode", "acceptEdits", s.PermissionMode)
	assertEqual(t, "ThinkingLevel", "high", s.ThinkingLevel)
	assertEqual(t, "ActiveDurationMs", int64(4000), s.ActiveDurationMs)
	assertEqual(t, "TotalActiveDurationMs", int64(5500), s.TotalActiveDurationMs)
	assertEqual(t, "ToolErrors", 1, s.ToolErrors)
	assertEqual(t, "ToolSuccesses", 1, s.ToolSuccesses)

	assertEqual(t, "Tokens.Input", int64(1010), s.Tokens.Input)
	assertEqual(t, "Tokens.Output", int64(220), s.Tokens.Output)
	assertEqual(t, "Tokens.CacheCreation", int64(100), s.Tokens.CacheCreation)
	assertEqual(t, "Tokens.CacheRead", int64(5000), s.Tokens.CacheRead)

	want := domain.EstimateCost(1010, 220, 5000, 100, "claude-sonnet-4-5")
	if !floatEquals(want, s.CostEstimate) {
		t.Errorf("CostEstimate: expected %v, got %v", want, s.CostEstimate)
	}
}

func TestParseSession_Turns(t *testing.T) {
	s, err := newTestParser().ParseSession(context.Background(), writeSession(t), "app")
	if err != nil || s == nil {
		t.Fatalf("ParseSession failed: %v", err)
	}

	assertEqual(t, "FirstPrompt", "Please fix the login bug", s.FirstPrompt)
	assertEqual(t, "PromptPreview", "Please fix the login bug", s.PromptPreview)
	assertEqual(t, "TurnCount", 2, s.TurnCount)
	assertEqual(t, "InterruptCount", 1, s.InterruptCount)
	if len(s.UserTurns) != 2 {
		t.Fatalf("Expected 2 user turns, got %d", len(s.UserTurns))
	}
	assertEqual(t, "turn 1 text", "Please fix the login bug", s.UserTurns[0].Text)
	assertEqual(t, "turn 2 interrupt", true, s.UserTurns[1].IsInterrupt)
	assertEqual(t, "turn 2 number", 2, s.UserTurns[1].TurnNumber)
	assertEqual(t, "turn 2 timestamp", "2026-03-01T10:00:20Z", s.UserTurns[1].Timestamp)
}

func TestParseSession_Tools(t *testing.T) {
	s, err := newTestParser().ParseSession(context.Background(), writeSession(t), "app")
	if err != nil || s == nil {
		t.Fatalf("ParseSession failed: %v", err)
	}

	assertEqual(t, "TotalTools", 5, s.TotalTools)
	assertEqual(t, "Bash count", 2, s.ToolCounts["Bash"])
	assertEqual(t, "Task count", 1, s.ToolCounts["Task"])
	assertEqual(t, ".go ext", 2, s.FileExtensions[".go"])
	assertEqual(t, "read touch", 1, s.FilesTouched["/home/pi/app/main.go"]["Read"])
	assertEqual(t, "edit touch", 1, s.FilesTouched["/home/pi/app/main.go"]["Edit"])

	if len(s.BashCommands) != 1 {
		t.Fatalf("Expected 1 distinct bash command, got %d", len(s.BashCommands))
	}
	assertEqual(t, "command", "git status", s.BashCommands[0].Command)
	assertEqual(t, "base", "git", s.BashCommands[0].Base)
	assertEqual(t, "count", 2, s.BashCommands[0].Count)
	assertEqual(t, "category", domain.CategoryVersionControl, s.BashCommands[0].Category)
	assertEqual(t, "category summary", 2, s.BashCategorySummary[domain.CategoryVersionControl])

	if len(s.ToolCalls) != 5 {
		t.Fatalf("Expected 5 tool calls, got %d", len(s.ToolCalls))
	}
	assertEqual(t, "first call", "/home/pi/app/main.go", s.ToolCalls[0].Detail)
	assertEqual(t, "task tool", "Task", s.ToolCalls[4].Tool)
}

func TestParseSession_Subagents(t *testing.T) {
	s, err := newTestParser().ParseSession(context.Background(), writeSession(t), "app")
	if err != nil || s == nil {
		t.Fatalf("ParseSession failed: %v", err)
	}

	if len(s.Subagents) != 1 {
		t.Fatalf("Expected 1 subagent (empty one dropped), got %d", len(s.Subagents))
	}
	sa := s.Subagents[0]
	assertEqual(t, "AgentID", "a1b2", sa.AgentID)
	assertEqual(t, "SubagentType", "Explore", sa.SubagentType)
	assertEqual(t, "TaskDescription", "Find callers", sa.TaskDescription)
	assertEqual(t, "Description", "Find every caller of login()", sa.Description)
	assertEqual(t, "ToolCount", 2, sa.ToolCount)
	assertEqual(t, "Grep count", 2, sa.ToolCounts["Grep"])
	assertEqual(t, "ActiveDurationMs", int64(1500), sa.ActiveDurationMs)
	assertEqual(t, "is_subagent", true, sa.ToolCalls[0].IsSubagent)
	assertEqual(t, "grep detail", `login\( in src`, sa.ToolCalls[0].Detail)

	assertEqual(t, "SubagentTools", 2, s.SubagentTools())
	assertEqual(t, "TotalActions", 7, s.TotalActions())
}

func TestParseSession_NoSession(t *testing.T) {
	dir := t.TempDir()
	p := newTestParser()

	empty := filepath.Join(dir, "empty.jsonl")
	writeFile(t, empty, `{"type":"user","message":{"role":"user","content":"<local-command-stdout>x</local-command-stdout>"}}`)
	s, err := p.ParseSession(context.Background(), empty, "p")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if s != nil {
		t.Error("Expected nil session for log without tools or prompt")
	}

	s, err = p.ParseSession(context.Background(), filepath.Join(dir, "missing.jsonl"), "p")
	if err != nil || s != nil {
		t.Errorf("Expected nil, nil for missing file, got %v, %v", s, err)
	}
}

func TestParseSession_Oversized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.jsonl")
	line := `{"type":"user","message":{"role":"user","content":"` + strings.Repeat("a", 1024) + `"}}`
	lines := make([]string, 1100)
	for i := range lines {
		lines[i] = line
	}
	writeFile(t, path, lines...)

	p := New(tooladapters.NewRegistry(), domain.DefaultExtractionOptions(), 1, logger.Discard())
	s, err := p.ParseSession(context.Background(), path, "p")
	if err != nil || s != nil {
		t.Errorf("Expected nil, nil for oversized file, got %v, %v", s, err)
	}
}

func TestParseSession_PromptOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.jsonl")
	long := strings.Repeat("word ", 100)
	writeFile(t, path,
		`{"type":"user","timestamp":"t1","message":{"role":"user","content":"`+long+`"}}`,
		`{"type":"user","timestamp":"t2","message":{"role":"user","content":"<a>only tags</a>"}}`,
	)

	s, err := newTestParser().ParseSession(context.Background(), path, "p")
	if err != nil || s == nil {
		t.Fatalf("ParseSession failed: %v", err)
	}
	assertEqual(t, "TotalTools", 0, s.TotalTools)
	assertEqual(t, "preview length", 83, len(s.PromptPreview))
	assertEqual(t, "turn text length", 303, len(s.UserTurns[0].Text))
	assertEqual(t, "tag-only turn keeps tags", "<a>only tags</a>", s.UserTurns[1].Text)
}

func TestParseSession_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newTestParser().ParseSession(ctx, writeSession(t), "app"); err == nil {
		t.Error("Expected context error")
	}
}

func TestExtractInvocations(t *testing.T) {
	invs, malformed, err := newTestParser().ExtractInvocations(writeSession(t), "app")
	if err != nil {
		t.Fatalf("ExtractInvocations failed: %v", err)
	}
	assertEqual(t, "invocations", 5, len(invs))
	assertEqual(t, "malformed", 1, malformed)
	assertEqual(t, "lineno", 2, invs[0].LineNo)
	assertEqual(t, "cwd", "", invs[0].Cwd)
	assertEqual(t, "project", "app", invs[0].Project)
}

func TestPathSuffix(t *testing.T) {
	tests := map[string]string{
		"/a/b/main.go":        ".go",
		"/a/b/archive.tar.gz": ".gz",
		"/a/.env":             "(no ext)",
		"/a/Makefile":         "(no ext)",
		"/a/trailing.":        "(no ext)",
	}
	for in, want := range tests {
		assertEqual(t, in, want, pathSuffix(in))
	}
}

func toolUseLine(id, command string) string {
	return `{"type":"assistant","timestamp":"2026-03-01T10:00:00Z","message":{"role":"assistant","content":[{"type":"tool_use","id":"` + id + `","name":"Bash","input":{"command":"` + command + `"}}]}}`
}

func toolResultLine(id, body string) string {
	return `{"type":"user","message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"` + id + `","content":"` + body + `"}]}}`
}

func TestParseSession_LineOverLimitIsSkipped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "long.jsonl")
	writeFile(t, path,
		toolUseLine("t1", "ls"),
		toolResultLine("t1", strings.Repeat("x", 11*1024*1024)),
		toolUseLine("t2", "pwd"),
		toolResultLine("t2", "ok"),
		toolUseLine("t3", "git status"),
	)

	s, err := newTestParser().ParseSession(context.Background(), path, "p")
	if err != nil || s == nil {
		t.Fatalf("ParseSession failed: %v", err)
	}
	assertEqual(t, "TotalTools", 3, s.TotalTools)
	assertEqual(t, "ToolSuccesses", 1, s.ToolSuccesses)

	invs, malformed, err := newTestParser().ExtractInvocations(path, "p")
	if err != nil {
		t.Fatalf("ExtractInvocations failed: %v", err)
	}
	assertEqual(t, "invocations", 3, len(invs))
	assertEqual(t, "malformed", 1, malformed)
	assertEqual(t, "lineno after long line", 3, invs[1].LineNo)
}

func TestParseSession_SubagentJoin(t *testing.T) {
	taskLine := `{"type":"assistant","timestamp":"2026-03-01T10:00:01Z","message":{"role":"assistant","content":[{"type":"tool_use","id":"task1","name":"Task","input":{"subagent_type":"Plan","description":"Draft plan","prompt":"go"}}]}}`
	progressLine := `{"type":"progress","parentToolUseID":"task1","data":{"agentId":"beef"}}`
	subLog := `{"type":"assistant","message":{"role":"assistant","content":[{"type":"tool_use","id":"s1","name":"Read","input":{"file_path":"/x.go"}}]}}`

	tests := []struct {
		name        string
		lines       []string
		agentFile   string
		wantType    string
		wantTaskDsc string
	}{
		{"progress after task", []string{taskLine, progressLine}, "agent-beef.jsonl", "Plan", "Draft plan"},
		{"progress before task", []string{progressLine, taskLine}, "agent-beef.jsonl", "Plan", "Draft plan"},
		{"no matching task or progress", []string{taskLine, progressLine}, "agent-cafe.jsonl", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "s.jsonl")
			writeFile(t, path, tt.lines...)
			writeFile(t, filepath.Join(dir, "s", "subagents", tt.agentFile), subLog)

			s, err := newTestParser().ParseSession(context.Background(), path, "p")
			if err != nil || s == nil {
				t.Fatalf("ParseSession failed: %v", err)
			}
			if len(s.Subagents) != 1 {
				t.Fatalf("Expected 1 subagent, got %d", len(s.Subagents))
			}
			assertEqual(t, "SubagentType", tt.wantType, s.Subagents[0].SubagentType)
			assertEqual(t, "TaskDescription", tt.wantTaskDsc, s.Subagents[0].TaskDescription)
			assertEqual(t, "ToolCount", 1, s.Subagents[0].ToolCount)
		})
	}
}

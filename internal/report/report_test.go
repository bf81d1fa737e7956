package report

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/emiliopalmerini/claude-activity/internal/adapters/logger"
	"github.com/emiliopalmerini/claude-activity/internal/domain"
	"github.com/emiliopalmerini/claude-activity/internal/parser"
	"github.com/emiliopalmerini/claude-activity/internal/tooladapters"
)

func assertEqual[T comparable](t *testing.T, name string, expected, actual T) {
	t.Helper()
	if expected != actual {
		t.Errorf("%s: expected %v, got %v", name, expected, actual)
	}
}

func bash(project, cmd string) domain.ToolInvocation {
	return domain.ToolInvocation{
		InvocationMeta: domain.InvocationMeta{Project: project},
		ToolName:       "Bash",
		BashCommand:    cmd,
	}
}

func read(path string) domain.ToolInvocation {
	return domain.ToolInvocation{ToolName: "Read", ReadFilePath: path}
}

func TestPatterns(t *testing.T) {
	invs := []domain.ToolInvocation{
		bash("a", "git status"),
		bash("a", "git status"),
		bash("a", "git diff --stat"),
		bash("b", "ls -la"),
		read("/src/main.go"),
	}

	result := Patterns(invs, tooladapters.NewRegistry(), PatternOptions{MinCount: 1, Top: 10})
	if len(result) != 2 {
		t.Fatalf("Expected 2 tools, got %d", len(result))
	}
	assertEqual(t, "first tool", "Bash", result[0].Tool)
	assertEqual(t, "bash total", 4, result[0].Total)

	l1 := result[0].Levels[0].Patterns
	assertEqual(t, "top level1", "git *", l1[0].Pattern)
	assertEqual(t, "top level1 count", 3, l1[0].Count)

	primary := result[0].PrimaryValues
	assertEqual(t, "top primary", "git status", primary[0].Pattern)
	assertEqual(t, "top primary count", 2, primary[0].Count)
	assertEqual(t, "second tool", "Read", result[1].Tool)
}

func TestPatterns_ToolFilterAndMinCount(t *testing.T) {
	invs := []domain.ToolInvocation{
		bash("a", "git status"),
		bash("a", "git status"),
		bash("a", "make build"),
		read("/src/main.go"),
	}

	result := Patterns(invs, tooladapters.NewRegistry(), PatternOptions{Tool: "Bash", MinCount: 2, Top: 10})
	if len(result) != 1 {
		t.Fatalf("Expected only Bash, got %d tools", len(result))
	}
	l1 := result[0].Levels[0].Patterns
	assertEqual(t, "patterns above min", 1, len(l1))
	assertEqual(t, "kept", "git *", l1[0].Pattern)
}

func TestRank_TopN(t *testing.T) {
	level := rank(map[string]int{"a": 5, "b": 4, "c": 4, "d": 1}, 2, 2)
	assertEqual(t, "kept", 2, len(level.Patterns))
	assertEqual(t, "first", "a", level.Patterns[0].Pattern)
	assertEqual(t, "tie order", "c", level.Patterns[1].Pattern)
	assertEqual(t, "remaining", 1, level.Remaining)
	assertEqual(t, "remaining count", 4, level.RemainingCount)
}

func TestBashCommands(t *testing.T) {
	heredoc := "git commit -m \"$(cat <<'EOF'\nLong message\nEOF\n)\""
	invs := []domain.ToolInvocation{
		bash("api", "git status"),
		bash("api", "git status"),
		bash("web", "cd /tmp && python test.py"),
		bash("web", heredoc),
		bash("web", ""),
		read("/src/main.go"),
	}

	report := BashCommands(invs, CommandOptions{Top: 10, CleanHeredocs: true})
	assertEqual(t, "total", 4, report.Total)
	assertEqual(t, "unique", 3, report.Unique)
	assertEqual(t, "top command", "git status", report.Commands[0].Pattern)
	assertEqual(t, "top base", "git", report.Base[0].Pattern)
	assertEqual(t, "top base count", 3, report.Base[0].Count)
	assertEqual(t, "top category", domain.CategoryVersionControl, report.Categories[0].Pattern)
	assertEqual(t, "project order", "web", report.ByProject[0].Pattern)

	for _, c := range report.Commands {
		if strings.Contains(c.Pattern, "Long message") {
			t.Errorf("Expected heredoc body removed, got %q", c.Pattern)
		}
	}

	raw := BashCommands(invs, CommandOptions{Top: 1})
	assertEqual(t, "top cut", 1, len(raw.Commands))
	found := false
	for _, c := range BashCommands(invs, CommandOptions{}).Commands {
		if strings.Contains(c.Pattern, "Long message") {
			found = true
		}
	}
	assertEqual(t, "raw heredoc kept", true, found)
}

func TestCollect(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	root := t.TempDir()
	session := filepath.Join(root, "-home-pi-app", "s1.jsonl")
	sub := filepath.Join(root, "-home-pi-app", "s1", "subagents", "agent-x.jsonl")
	line := `{"type":"assistant","message":{"role":"assistant","content":[{"type":"tool_use","id":"t1","name":"Bash","input":{"command":"ls"}}]}}`
	for _, p := range []string{session, sub} {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(line+"\nbroken\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	p := parser.New(tooladapters.NewRegistry(), domain.DefaultExtractionOptions(), 0, logger.Discard())
	corpus, err := Collect(context.Background(), p, root, logger.Discard())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	assertEqual(t, "files", 2, corpus.Files)
	assertEqual(t, "malformed", 2, corpus.Malformed)
	assertEqual(t, "invocations", 2, len(corpus.Invocations))
	assertEqual(t, "project", "-home-pi-app", corpus.Invocations[0].Project)

	empty, err := Collect(context.Background(), p, filepath.Join(root, "missing"), logger.Discard())
	if err != nil || empty.Files != 0 {
		t.Errorf("Expected empty corpus for missing root, got %+v, %v", empty, err)
	}
}

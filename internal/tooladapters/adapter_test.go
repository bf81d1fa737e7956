package tooladapters

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/emiliopalmerini/claude-activity/internal/domain"
)

var testMeta = domain.InvocationMeta{
	Timestamp: "2025-01-17T10:00:00Z",
	Project:   "demo",
	JSONLPath: "/tmp/demo/session.jsonl",
	LineNo:    7,
	Cwd:       "/home/dev/demo",
	SessionID: "abc",
	GitBranch: "main",
}

func block(name, input string) domain.ToolUseBlock {
	return domain.ToolUseBlock{ID: "toolu_1", Name: name, Input: json.RawMessage(input)}
}

func extract(t *testing.T, name, input string, opts domain.ExtractionOptions) (Adapter, domain.ToolInvocation) {
	t.Helper()
	a := NewRegistry().Get(name)
	inv, err := a.Extract(block(name, input), testMeta, opts)
	if err != nil {
		t.Fatalf("Extract(%s) failed: %v", name, err)
	}
	return a, inv
}

func assertLevels(t *testing.T, a Adapter, inv domain.ToolInvocation, want [3]string) {
	t.Helper()
	l1, l2, l3 := a.PatternLevels(inv)
	got := [3]string{l1, l2, l3}
	if got != want {
		t.Errorf("PatternLevels = %q, want %q", got, want)
	}
}

func assertEqual[T comparable](t *testing.T, name string, expected, actual T) {
	t.Helper()
	if expected != actual {
		t.Errorf("%s: expected %v, got %v", name, expected, actual)
	}
}

func TestBashAdapter(t *testing.T) {
	opts := domain.DefaultExtractionOptions()
	a, inv := extract(t, "Bash", `{"command":"git commit -m 'fix bug'","description":"Commit","timeout":60000}`, opts)

	assertEqual(t, "ToolName", "Bash", inv.ToolName)
	assertEqual(t, "ToolUseID", "toolu_1", inv.ToolUseID)
	assertEqual(t, "Project", "demo", inv.Project)
	assertEqual(t, "LineNo", 7, inv.LineNo)
	assertEqual(t, "BashDescription", "Commit", inv.BashDescription)
	if inv.BashTimeout == nil || *inv.BashTimeout != 60000 {
		t.Errorf("Expected timeout 60000, got %v", inv.BashTimeout)
	}
	assertEqual(t, "PrimaryValue", "git commit -m 'fix bug'", a.PrimaryValue(inv))
	assertLevels(t, a, inv, [3]string{"git *", "git commit *", "git commit -m *"})
}

func TestBashAdapter_ShortCommands(t *testing.T) {
	opts := domain.DefaultExtractionOptions()

	a, inv := extract(t, "Bash", `{"command":"ls"}`, opts)
	assertLevels(t, a, inv, [3]string{"ls *", "ls", "ls"})

	a, inv = extract(t, "Bash", `{"command":"ls -la"}`, opts)
	assertLevels(t, a, inv, [3]string{"ls *", "ls -la *", "ls -la"})

	a, inv = extract(t, "Bash", `{}`, opts)
	assertLevels(t, a, inv, [3]string{"", "", ""})
}

func TestFileAdapters_PathPatterns(t *testing.T) {
	opts := domain.DefaultExtractionOptions()

	a, inv := extract(t, "Read", `{"file_path":"/home/pi/TP/workflows/run.py","offset":10,"limit":50}`, opts)
	assertEqual(t, "ReadFilePath", "/home/pi/TP/workflows/run.py", inv.ReadFilePath)
	if inv.ReadOffset == nil || *inv.ReadOffset != 10 {
		t.Errorf("Expected offset 10, got %v", inv.ReadOffset)
	}
	assertLevels(t, a, inv, [3]string{"/home/pi/TP/", "/home/pi/TP/workflows/", ".py"})

	a, inv = extract(t, "Write", `{"file_path":"/etc/hosts","content":"127.0.0.1 localhost"}`, opts)
	assertEqual(t, "WriteContentLength", 19, inv.WriteContentLength)
	assertEqual(t, "WriteContentPreview", "127.0.0.1 localhost", inv.WriteContentPreview)
	assertLevels(t, a, inv, [3]string{"/etc/hosts/", "/etc/hosts/", "(no extension)"})

	a, inv = extract(t, "Edit", `{"file_path":"src/main.go","old_string":"a","new_string":"b","replace_all":true}`, opts)
	if inv.EditReplaceAll == nil || !*inv.EditReplaceAll {
		t.Errorf("Expected replace_all true, got %v", inv.EditReplaceAll)
	}
	assertLevels(t, a, inv, [3]string{"src", "src", ".go"})
}

func TestWriteAdapter_PreviewsDisabled(t *testing.T) {
	opts := domain.ExtractionOptions{IncludePreviews: false, PreviewLength: 10}
	_, inv := extract(t, "Write", `{"file_path":"/a/b.txt","content":"some long content"}`, opts)

	assertEqual(t, "WriteContentPreview", "", inv.WriteContentPreview)
	assertEqual(t, "WriteContentLength", 17, inv.WriteContentLength)
}

func TestEditAdapter_PreviewTruncated(t *testing.T) {
	opts := domain.ExtractionOptions{IncludePreviews: true, PreviewLength: 5}
	_, inv := extract(t, "Edit", `{"file_path":"/a/b.txt","old_string":"  abcdefgh  ","new_string":"xy"}`, opts)

	assertEqual(t, "old preview", "abcde...", inv.EditOldStringPreview)
	assertEqual(t, "new preview", "xy", inv.EditNewStringPreview)
}

func TestGrepAdapter(t *testing.T) {
	opts := domain.DefaultExtractionOptions()
	a, inv := extract(t, "Grep", `{"pattern":"func.*Parse","path":"internal/","-i":true,"-A":3,"context":2,"multiline":true}`, opts)

	assertEqual(t, "GrepOutputMode", "files_with_matches", inv.GrepOutputMode)
	assertEqual(t, "GrepFlags", "-i -A 3 -C 2 -U", inv.GrepFlags)
	assertLevels(t, a, inv, [3]string{"files_with_matches", "internal/", "regex"})

	a, inv = extract(t, "Grep", `{"pattern":"TODO","output_mode":"content"}`, opts)
	assertEqual(t, "GrepFlags", "", inv.GrepFlags)
	assertLevels(t, a, inv, [3]string{"content", "(cwd)", "literal"})

	a, inv = extract(t, "Grep", `{}`, opts)
	assertLevels(t, a, inv, [3]string{"files_with_matches", "(cwd)", "empty"})
}

func TestGlobAdapter(t *testing.T) {
	opts := domain.DefaultExtractionOptions()

	a, inv := extract(t, "Glob", `{"pattern":"**/*.go","path":"/repo"}`, opts)
	assertLevels(t, a, inv, [3]string{"recursive", ".go", "/repo"})

	a, inv = extract(t, "Glob", `{"pattern":"src/*.{ts,tsx}"}`, opts)
	assertLevels(t, a, inv, [3]string{"simple", ".{ts,tsx", "(cwd)"})

	a, inv = extract(t, "Glob", `{"pattern":"Makefile"}`, opts)
	assertLevels(t, a, inv, [3]string{"literal", "(no extension)", "(cwd)"})
}

func TestTaskAdapter(t *testing.T) {
	opts := domain.DefaultExtractionOptions()

	a, inv := extract(t, "TaskCreate", `{"subject":"Fix parser edge cases","description":"Handle blank lines"}`, opts)
	assertEqual(t, "ToolName", "TaskCreate", inv.ToolName)
	assertEqual(t, "TaskOperation", "create", inv.TaskOperation)
	assertEqual(t, "TaskDescriptionPreview", "Handle blank lines", inv.TaskDescriptionPreview)
	assertEqual(t, "PrimaryValue", "Fix parser edge cases", a.PrimaryValue(inv))
	assertLevels(t, a, inv, [3]string{"create", "(no status)", "Fix parser"})

	a, inv = extract(t, "TaskUpdate", `{"taskId":"3","status":"completed"}`, opts)
	assertEqual(t, "TaskID", "3", inv.TaskID)
	assertEqual(t, "PrimaryValue", "update", a.PrimaryValue(inv))
	assertLevels(t, a, inv, [3]string{"update", "completed", "(no subject)"})

	a, inv = extract(t, "TaskList", `{"subject":"Refactor"}`, opts)
	assertLevels(t, a, inv, [3]string{"list", "(no status)", "Refactor"})
}

func TestTodoWriteAdapter(t *testing.T) {
	opts := domain.DefaultExtractionOptions()
	a, inv := extract(t, "TodoWrite", `{"content":"Write tests for parser\nthen refactor"}`, opts)

	assertLevels(t, a, inv, [3]string{"Write", "Write tests", "Write tests for parser"})

	a, inv = extract(t, "TodoWrite", `{}`, opts)
	assertLevels(t, a, inv, [3]string{"", "", ""})
}

func TestSpecialAdapter(t *testing.T) {
	opts := domain.DefaultExtractionOptions()

	a, inv := extract(t, "Skill", `{"skill":"commit"}`, opts)
	assertEqual(t, "SkillName", "commit", inv.SkillName)
	assertLevels(t, a, inv, [3]string{"Skill", "commit", "commit"})

	a, inv = extract(t, "WebSearch", `{"query":"golang iter package"}`, opts)
	assertLevels(t, a, inv, [3]string{"WebSearch", "golang", "golang iter"})

	_, inv = extract(t, "WebFetch", `{"url":"https://go.dev"}`, opts)
	assertEqual(t, "WebSearchQuery", "https://go.dev", inv.WebSearchQuery)

	a, inv = extract(t, "AskUserQuestion", `{"questions":[{"question":"Which database should we use?"}]}`, opts)
	assertEqual(t, "AskQuestionPreview", "Which database should we use?", inv.AskQuestionPreview)
	assertLevels(t, a, inv, [3]string{"AskUserQuestion", "Which", "Which database"})

	a, inv = extract(t, "EnterPlanMode", `{}`, opts)
	assertEqual(t, "PrimaryValue", "EnterPlanMode", a.PrimaryValue(inv))
	assertLevels(t, a, inv, [3]string{"EnterPlanMode", "EnterPlanMode", "EnterPlanMode"})
}

func TestGenericAdapter_Fallback(t *testing.T) {
	opts := domain.ExtractionOptions{IncludePreviews: true, PreviewLength: 10}
	a, inv := extract(t, "mcp__custom__tool", `{ "b": 1, "a": "x" }`, opts)

	if _, ok := a.(GenericAdapter); !ok {
		t.Fatalf("Expected GenericAdapter fallback, got %T", a)
	}
	assertEqual(t, "RawInputJSON", `{"b":1,"a":"x"}`, inv.RawInputJSON)
	assertLevels(t, a, inv, [3]string{"mcp__custom__tool", "mcp__custom__tool", "mcp__custom__tool"})

	_, inv = extract(t, "Other", `{"key":"`+strings.Repeat("v", 40)+`"}`, opts)
	if !strings.HasSuffix(inv.RawInputJSON, "...") || len(inv.RawInputJSON) != 23 {
		t.Errorf("Expected raw JSON truncated to 20 chars plus ellipsis, got %q", inv.RawInputJSON)
	}
}

func TestExtract_InvalidInput(t *testing.T) {
	a := NewRegistry().Get("Bash")
	if _, err := a.Extract(block("Bash", `"not an object"`), testMeta, domain.DefaultExtractionOptions()); err == nil {
		t.Error("Expected error for non-object input")
	}
}

func TestRegistry_Families(t *testing.T) {
	r := NewRegistry()
	tests := map[string]Adapter{
		"Bash":         BashAdapter{},
		"TaskOutput":   TaskAdapter{},
		"Task":         SpecialAdapter{},
		"TaskStop":     SpecialAdapter{},
		"NotebookEdit": SpecialAdapter{},
		"Unheard":      GenericAdapter{},
	}
	for name, want := range tests {
		if got := r.Get(name); got != want {
			t.Errorf("Get(%q) = %T, want %T", name, got, want)
		}
	}
}

func TestSplitExt(t *testing.T) {
	tests := map[string]string{
		"/a/b/c.py":      ".py",
		"/a/b/.bashrc":   "",
		"archive.tar.gz": ".gz",
		"/a.b/file":      "",
		"noext":          "",
	}
	for in, want := range tests {
		assertEqual(t, in, want, SplitExt(in))
	}
}

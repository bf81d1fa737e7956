package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/emiliopalmerini/claude-activity/internal/domain"
	"github.com/emiliopalmerini/claude-activity/internal/report"
)

func sampleAggregate() *domain.GlobalAggregate {
	return &domain.GlobalAggregate{
		TotalSessions:    3,
		ProjectCount:     2,
		TotalTools:       40,
		TotalActions:     52,
		TotalCost:        1.25,
		ToolDistribution: []domain.RankedCount{{Key: "Bash", Value: 30}, {Key: "Read", Value: 10}},
		ProjectCosts:     []domain.RankedCost{{Key: "api", Value: 1}},
		Last7d: domain.WindowBreakdown{
			ToolDistribution: []domain.RankedCount{{Key: "Grep", Value: 4}},
		},
	}
}

func TestRenderOverview_AllTime(t *testing.T) {
	out, err := renderOverview(sampleAggregate(), "", 10)
	if err != nil {
		t.Fatalf("renderOverview failed: %v", err)
	}
	for _, want := range []string{"Tools (all time)", "Bash", "Read", "$1.25", "no data"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in overview:\n%s", want, out)
		}
	}
}

func TestRenderOverview_Window(t *testing.T) {
	out, err := renderOverview(sampleAggregate(), "7d", 10)
	if err != nil {
		t.Fatalf("renderOverview failed: %v", err)
	}
	if !strings.Contains(out, "Tools (last 7d)") || !strings.Contains(out, "Grep") {
		t.Errorf("expected the 7d tool chart:\n%s", out)
	}
	if strings.Contains(out, "Read") {
		t.Errorf("all-time tools leaked into the 7d view:\n%s", out)
	}
}

func TestRenderOverview_UnknownWindow(t *testing.T) {
	if _, err := renderOverview(sampleAggregate(), "90d", 10); err == nil {
		t.Error("expected an error for an unknown window")
	}
}

func TestCountRows_Top(t *testing.T) {
	rows := countRows([]domain.RankedCount{{Key: "a", Value: 3}, {Key: "b", Value: 2}, {Key: "c", Value: 1}}, 2)
	assertEqual(t, "rows", 2, len(rows))
	assertEqual(t, "first", "a", rows[0].Label)

	all := countRows([]domain.RankedCount{{Key: "a", Value: 3}, {Key: "b", Value: 2}}, 0)
	assertEqual(t, "unlimited", 2, len(all))
}

func TestPrintCommands(t *testing.T) {
	var buf bytes.Buffer
	printCommands(&buf, report.CommandReport{
		Total:    3,
		Unique:   2,
		Commands: []report.PatternCount{{Pattern: "git status", Count: 2}},
	})
	out := buf.String()
	if !strings.Contains(out, "3 Bash commands, 2 unique") {
		t.Errorf("missing header:\n%s", out)
	}
	if !strings.Contains(out, "git status") {
		t.Errorf("missing command row:\n%s", out)
	}
}

func TestPrintPatterns_EmptyLevel(t *testing.T) {
	var buf bytes.Buffer
	tools := []report.ToolPatterns{{
		Tool:  "Read",
		Total: 4,
		Levels: [3]report.Level{
			{Patterns: []report.PatternCount{{Pattern: "Read .go", Count: 4}}, Remaining: 1, RemainingCount: 2},
		},
	}}
	printPatterns(&buf, &report.Corpus{Files: 1}, tools, 3)
	out := buf.String()
	for _, want := range []string{"Read (4 calls)", "Read .go", "... 1 more patterns (2 total occurrences)", "(no patterns with count >= 3)"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

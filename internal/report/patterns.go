// Package report builds frequency reports over raw tool invocations.
package report

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"github.com/samber/lo"

	"github.com/emiliopalmerini/claude-activity/internal/domain"
	"github.com/emiliopalmerini/claude-activity/internal/parser"
	"github.com/emiliopalmerini/claude-activity/internal/tooladapters"
)

// PatternCount is one pattern with its occurrence count.
type PatternCount struct {
	Pattern string `json:"pattern"`
	Count   int    `json:"count"`
}

// Level is one ranked pattern level. Remaining and RemainingCount cover
// the patterns that passed the minimum count but fell outside the top N.
type Level struct {
	Patterns       []PatternCount `json:"patterns"`
	Remaining      int            `json:"remaining"`
	RemainingCount int            `json:"remaining_count"`
}

// ToolPatterns is the 3-level pattern breakdown for one tool.
type ToolPatterns struct {
	Tool          string         `json:"tool"`
	Total         int            `json:"total"`
	Levels        [3]Level       `json:"levels"`
	PrimaryValues []PatternCount `json:"primary_values"`
}

// PatternOptions filters a pattern report.
type PatternOptions struct {
	Tool     string
	Top      int
	MinCount int
}

// DefaultPatternOptions shows the top 30 patterns seen at least 3 times.
func DefaultPatternOptions() PatternOptions {
	return PatternOptions{Top: 30, MinCount: 3}
}

// Corpus is every invocation found under a projects root.
type Corpus struct {
	Invocations []domain.ToolInvocation
	Files       int
	Malformed   int
}

// Collect extracts invocations from every session log under root and from
// each session's subagent logs. Unreadable files are skipped. Projects are
// named the way the cache names them.
func Collect(ctx context.Context, p *parser.Parser, root string, logger domain.Logger) (*Corpus, error) {
	files, err := parser.DiscoverSessionFiles(root)
	if errors.Is(err, fs.ErrNotExist) {
		return &Corpus{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to discover session files: %w", err)
	}

	home, _ := os.UserHomeDir()
	corpus := &Corpus{}
	for _, path := range files {
		project := parser.ReadableProject(parser.ProjectName(path, root), home)
		for _, f := range append([]string{path}, parser.SubagentFiles(path)...) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			invs, malformed, err := p.ExtractInvocations(f, project)
			if err != nil {
				logger.Error(err.Error())
				continue
			}
			corpus.Files++
			corpus.Malformed += malformed
			corpus.Invocations = append(corpus.Invocations, invs...)
		}
	}
	return corpus, nil
}

// Patterns groups invocations by tool and ranks each tool's pattern
// levels and primary values. Tools are ordered by descending total.
func Patterns(invs []domain.ToolInvocation, registry *tooladapters.Registry, opts PatternOptions) []ToolPatterns {
	byTool := lo.GroupBy(invs, func(inv domain.ToolInvocation) string { return inv.ToolName })

	var result []ToolPatterns
	for tool, group := range byTool {
		if opts.Tool != "" && tool != opts.Tool {
			continue
		}
		adapter := registry.Get(tool)

		var levels [3]map[string]int
		for i := range levels {
			levels[i] = map[string]int{}
		}
		primary := map[string]int{}
		for _, inv := range group {
			if pv := adapter.PrimaryValue(inv); pv != "" {
				primary[pv]++
			}
			l1, l2, l3 := adapter.PatternLevels(inv)
			for i, l := range []string{l1, l2, l3} {
				if l != "" {
					levels[i][l]++
				}
			}
		}

		tp := ToolPatterns{
			Tool:          tool,
			Total:         len(group),
			PrimaryValues: rank(primary, opts.MinCount, opts.Top).Patterns,
		}
		for i := range levels {
			tp.Levels[i] = rank(levels[i], opts.MinCount, opts.Top)
		}
		result = append(result, tp)
	}

	slices.SortFunc(result, func(a, b ToolPatterns) int {
		if c := cmp.Compare(b.Total, a.Total); c != 0 {
			return c
		}
		return cmp.Compare(a.Tool, b.Tool)
	})
	return result
}

// rank keeps counts >= minCount, sorted by descending count then
// descending pattern, and cuts to top. top <= 0 keeps everything.
func rank(counts map[string]int, minCount, top int) Level {
	kept := lo.PickBy(counts, func(_ string, n int) bool { return n >= minCount })
	patterns := lo.MapToSlice(kept, func(p string, n int) PatternCount {
		return PatternCount{Pattern: p, Count: n}
	})
	slices.SortFunc(patterns, func(a, b PatternCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(b.Pattern, a.Pattern)
	})

	level := Level{Patterns: patterns}
	if top > 0 && len(patterns) > top {
		rest := patterns[top:]
		level.Patterns = patterns[:top]
		level.Remaining = len(rest)
		level.RemainingCount = lo.SumBy(rest, func(p PatternCount) int { return p.Count })
	}
	return level
}

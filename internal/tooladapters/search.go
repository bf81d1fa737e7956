package tooladapters

import (
	"fmt"
	"strings"

	"github.com/emiliopalmerini/claude-activity/internal/domain"
)

const defaultGrepOutputMode = "files_with_matches"

// GrepAdapter handles Grep tool calls.
type GrepAdapter struct{}

func (GrepAdapter) Extract(block domain.ToolUseBlock, meta domain.InvocationMeta, _ domain.ExtractionOptions) (domain.ToolInvocation, error) {
	in, err := decodeInput(block.Input)
	if err != nil {
		return domain.ToolInvocation{}, err
	}

	var flags []string
	if in.truthy("-i") {
		flags = append(flags, "-i")
	}
	for _, f := range []string{"-A", "-B", "-C"} {
		if in.truthy(f) {
			flags = append(flags, fmt.Sprintf("%s %v", f, in[f]))
		}
	}
	if in.truthy("context") {
		flags = append(flags, fmt.Sprintf("-C %v", in["context"]))
	}
	if in.truthy("multiline") {
		flags = append(flags, "-U")
	}

	mode := defaultGrepOutputMode
	if _, ok := in["output_mode"]; ok {
		mode = in.str("output_mode")
	}

	inv := newInvocation(meta, "Grep", block)
	inv.GrepPattern = in.str("pattern")
	inv.GrepPath = in.str("path")
	inv.GrepOutputMode = mode
	inv.GrepFlags = strings.Join(flags, " ")
	inv.GrepGlob = in.str("glob")
	inv.GrepType = in.str("type")
	return inv, nil
}

func (GrepAdapter) PrimaryValue(inv domain.ToolInvocation) string {
	return inv.GrepPattern
}

// PatternLevels buckets by output mode, search path and pattern kind.
func (GrepAdapter) PatternLevels(inv domain.ToolInvocation) (string, string, string) {
	mode := inv.GrepOutputMode
	if mode == "" {
		mode = defaultGrepOutputMode
	}
	path := inv.GrepPath
	if path == "" {
		path = "(cwd)"
	}

	complexity := "literal"
	switch {
	case inv.GrepPattern == "":
		complexity = "empty"
	case strings.ContainsAny(inv.GrepPattern, `.*+?[]{}()|\^$`):
		complexity = "regex"
	}
	return mode, path, complexity
}

// GlobAdapter handles Glob tool calls.
type GlobAdapter struct{}

func (GlobAdapter) Extract(block domain.ToolUseBlock, meta domain.InvocationMeta, _ domain.ExtractionOptions) (domain.ToolInvocation, error) {
	in, err := decodeInput(block.Input)
	if err != nil {
		return domain.ToolInvocation{}, err
	}

	inv := newInvocation(meta, "Glob", block)
	inv.GlobPattern = in.str("pattern")
	inv.GlobPath = in.str("path")
	return inv, nil
}

func (GlobAdapter) PrimaryValue(inv domain.ToolInvocation) string {
	return inv.GlobPattern
}

// PatternLevels buckets by pattern kind, target extension and path.
func (GlobAdapter) PatternLevels(inv domain.ToolInvocation) (string, string, string) {
	pattern := inv.GlobPattern
	path := inv.GlobPath
	if path == "" {
		path = "(cwd)"
	}

	kind := "literal"
	switch {
	case strings.Contains(pattern, "**"):
		kind = "recursive"
	case strings.Contains(pattern, "*"):
		kind = "simple"
	}

	ext := "(no extension)"
	if i := strings.LastIndex(pattern, "."); i >= 0 {
		ext = "." + strings.TrimRight(pattern[i+1:], "*}")
	}
	return kind, ext, path
}

package tooladapters

import (
	"strings"

	"github.com/emiliopalmerini/claude-activity/internal/domain"
)

// BashAdapter handles Bash tool calls.
type BashAdapter struct{}

func (BashAdapter) Extract(block domain.ToolUseBlock, meta domain.InvocationMeta, _ domain.ExtractionOptions) (domain.ToolInvocation, error) {
	in, err := decodeInput(block.Input)
	if err != nil {
		return domain.ToolInvocation{}, err
	}

	inv := newInvocation(meta, "Bash", block)
	inv.BashCommand = in.str("command")
	inv.BashDescription = in.str("description")
	inv.BashTimeout = in.int64Ptr("timeout")
	return inv, nil
}

func (BashAdapter) PrimaryValue(inv domain.ToolInvocation) string {
	return inv.BashCommand
}

// PatternLevels buckets by the first one, two and three words.
func (BashAdapter) PatternLevels(inv domain.ToolInvocation) (string, string, string) {
	cmd := inv.BashCommand
	words := strings.Fields(cmd)
	if len(words) == 0 {
		return "", "", ""
	}

	level1 := words[0] + " *"
	level2 := cmd
	if w, ok := firstWords(cmd, 2); ok {
		level2 = w + " *"
	}
	level3 := cmd
	if w, ok := firstWords(cmd, 3); ok {
		level3 = w + " *"
	}
	return level1, level2, level3
}

package tooladapters

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/emiliopalmerini/claude-activity/internal/domain"
)

// SpecialAdapter handles workflow tools such as Skill, WebSearch, WebFetch
// and AskUserQuestion.
type SpecialAdapter struct{}

func (SpecialAdapter) Extract(block domain.ToolUseBlock, meta domain.InvocationMeta, opts domain.ExtractionOptions) (domain.ToolInvocation, error) {
	in, err := decodeInput(block.Input)
	if err != nil {
		return domain.ToolInvocation{}, err
	}

	name := block.Name
	if name == "" {
		name = "Unknown"
	}
	inv := newInvocation(meta, name, block)

	switch name {
	case "Skill":
		inv.SkillName = in.str("skill")
	case "WebSearch":
		inv.WebSearchQuery = in.str("query")
	case "WebFetch":
		inv.WebSearchQuery = in.str("url")
	case "AskUserQuestion":
		questions, _ := in["questions"].([]any)
		if len(questions) > 0 && opts.IncludePreviews {
			first, ok := questions[0].(map[string]any)
			if !ok {
				return domain.ToolInvocation{}, fmt.Errorf("AskUserQuestion: unexpected question type %T", questions[0])
			}
			inv.AskQuestionPreview = preview(opts, toolInput(first).str("question"))
		}
	}
	return inv, nil
}

func (SpecialAdapter) PrimaryValue(inv domain.ToolInvocation) string {
	switch {
	case inv.SkillName != "":
		return inv.SkillName
	case inv.WebSearchQuery != "":
		return inv.WebSearchQuery
	case inv.AskQuestionPreview != "":
		return inv.AskQuestionPreview
	}
	return inv.ToolName
}

// PatternLevels buckets by tool name, then the primary value's first one
// and two words.
func (a SpecialAdapter) PatternLevels(inv domain.ToolInvocation) (string, string, string) {
	primary := a.PrimaryValue(inv)
	words := strings.Fields(primary)

	level2 := primary
	if len(words) > 0 {
		level2 = words[0]
	}
	level3 := primary
	if w, ok := firstWords(primary, 2); ok {
		level3 = w
	}
	return inv.ToolName, level2, level3
}

// GenericAdapter is the fallback for tools without a dedicated adapter.
// It keeps the raw input as compact JSON.
type GenericAdapter struct{}

func (GenericAdapter) Extract(block domain.ToolUseBlock, meta domain.InvocationMeta, opts domain.ExtractionOptions) (domain.ToolInvocation, error) {
	if _, err := decodeInput(block.Input); err != nil {
		return domain.ToolInvocation{}, err
	}

	raw := "{}"
	if trimmed := bytes.TrimSpace(block.Input); len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return domain.ToolInvocation{}, fmt.Errorf("compact tool input: %w", err)
		}
		raw = buf.String()
	}
	if opts.IncludePreviews {
		raw = domain.TruncatePreview(raw, opts.PreviewLength*2)
	}

	name := block.Name
	if name == "" {
		name = "Unknown"
	}
	inv := newInvocation(meta, name, block)
	inv.RawInputJSON = raw
	return inv, nil
}

func (GenericAdapter) PrimaryValue(inv domain.ToolInvocation) string {
	return inv.ToolName
}

func (GenericAdapter) PatternLevels(inv domain.ToolInvocation) (string, string, string) {
	return inv.ToolName, inv.ToolName, inv.ToolName
}

// Package tooladapters turns raw tool_use blocks into normalized
// invocations and derives three pattern levels for frequency analysis.
package tooladapters

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/emiliopalmerini/claude-activity/internal/domain"
)

// Adapter extracts one family of tools.
type Adapter interface {
	// Extract normalizes a tool_use block. An error means the block is
	// dropped by the caller.
	Extract(block domain.ToolUseBlock, meta domain.InvocationMeta, opts domain.ExtractionOptions) (domain.ToolInvocation, error)
	// PrimaryValue is the most representative value, or "".
	PrimaryValue(inv domain.ToolInvocation) string
	// PatternLevels returns three buckets of increasing specificity.
	PatternLevels(inv domain.ToolInvocation) (string, string, string)
}

type toolInput map[string]any

func decodeInput(raw json.RawMessage) (toolInput, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return toolInput{}, nil
	}
	var in toolInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, fmt.Errorf("decode tool input: %w", err)
	}
	return in, nil
}

func (in toolInput) str(key string) string {
	if s, ok := in[key].(string); ok {
		return s
	}
	return ""
}

func (in toolInput) int64Ptr(key string) *int64 {
	if f, ok := in[key].(float64); ok {
		v := int64(f)
		return &v
	}
	return nil
}

func (in toolInput) boolPtr(key string) *bool {
	if b, ok := in[key].(bool); ok {
		return &b
	}
	return nil
}

// truthy mirrors loose JSON truthiness: false, 0, "" and null are false.
func (in toolInput) truthy(key string) bool {
	switch v := in[key].(type) {
	case nil:
		return false
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		return v != ""
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	}
	return true
}

func newInvocation(meta domain.InvocationMeta, name string, block domain.ToolUseBlock) domain.ToolInvocation {
	return domain.ToolInvocation{
		InvocationMeta: meta,
		ToolName:       name,
		ToolUseID:      block.ID,
	}
}

func preview(opts domain.ExtractionOptions, text string) string {
	if !opts.IncludePreviews || text == "" {
		return ""
	}
	return domain.TruncatePreview(text, opts.PreviewLength)
}

func firstWords(text string, n int) (string, bool) {
	words := strings.Fields(text)
	if len(words) < n {
		return "", false
	}
	return strings.Join(words[:n], " "), true
}

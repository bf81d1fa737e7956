package tooladapters

import (
	"strings"

	"github.com/emiliopalmerini/claude-activity/internal/domain"
)

// ReadAdapter handles Read tool calls.
type ReadAdapter struct{}

func (ReadAdapter) Extract(block domain.ToolUseBlock, meta domain.InvocationMeta, _ domain.ExtractionOptions) (domain.ToolInvocation, error) {
	in, err := decodeInput(block.Input)
	if err != nil {
		return domain.ToolInvocation{}, err
	}

	inv := newInvocation(meta, "Read", block)
	inv.ReadFilePath = in.str("file_path")
	inv.ReadOffset = in.int64Ptr("offset")
	inv.ReadLimit = in.int64Ptr("limit")
	inv.ReadPages = in.str("pages")
	return inv, nil
}

func (ReadAdapter) PrimaryValue(inv domain.ToolInvocation) string {
	return inv.ReadFilePath
}

func (ReadAdapter) PatternLevels(inv domain.ToolInvocation) (string, string, string) {
	return pathPatternLevels(inv.ReadFilePath)
}

// WriteAdapter handles Write tool calls.
type WriteAdapter struct{}

func (WriteAdapter) Extract(block domain.ToolUseBlock, meta domain.InvocationMeta, opts domain.ExtractionOptions) (domain.ToolInvocation, error) {
	in, err := decodeInput(block.Input)
	if err != nil {
		return domain.ToolInvocation{}, err
	}

	content := in.str("content")
	inv := newInvocation(meta, "Write", block)
	inv.WriteFilePath = in.str("file_path")
	inv.WriteContentLength = len([]rune(content))
	inv.WriteContentPreview = preview(opts, content)
	return inv, nil
}

func (WriteAdapter) PrimaryValue(inv domain.ToolInvocation) string {
	return inv.WriteFilePath
}

func (WriteAdapter) PatternLevels(inv domain.ToolInvocation) (string, string, string) {
	return pathPatternLevels(inv.WriteFilePath)
}

// EditAdapter handles Edit tool calls.
type EditAdapter struct{}

func (EditAdapter) Extract(block domain.ToolUseBlock, meta domain.InvocationMeta, opts domain.ExtractionOptions) (domain.ToolInvocation, error) {
	in, err := decodeInput(block.Input)
	if err != nil {
		return domain.ToolInvocation{}, err
	}

	inv := newInvocation(meta, "Edit", block)
	inv.EditFilePath = in.str("file_path")
	inv.EditOldStringPreview = preview(opts, in.str("old_string"))
	inv.EditNewStringPreview = preview(opts, in.str("new_string"))
	inv.EditReplaceAll = in.boolPtr("replace_all")
	return inv, nil
}

func (EditAdapter) PrimaryValue(inv domain.ToolInvocation) string {
	return inv.EditFilePath
}

func (EditAdapter) PatternLevels(inv domain.ToolInvocation) (string, string, string) {
	return pathPatternLevels(inv.EditFilePath)
}

// pathPatternLevels buckets a path by top directory, subdirectory and
// extension.
func pathPatternLevels(path string) (string, string, string) {
	if path == "" {
		return "", "", ""
	}

	parts := strings.Split(path, "/")
	abs := strings.HasPrefix(path, "/")

	var level1 string
	switch {
	case abs && len(parts) >= 4:
		level1 = strings.Join(parts[:4], "/") + "/"
	case abs && len(parts) >= 3:
		level1 = strings.Join(parts[:3], "/") + "/"
	default:
		level1 = parts[0]
	}

	var level2 string
	switch {
	case abs && len(parts) >= 5:
		level2 = strings.Join(parts[:5], "/") + "/"
	case abs && len(parts) >= 4:
		level2 = strings.Join(parts[:4], "/") + "/"
	default:
		level2 = level1
	}

	level3 := SplitExt(path)
	if level3 == "" {
		level3 = "(no extension)"
	}
	return level1, level2, level3
}

// SplitExt returns the extension of the last path element including the
// dot. Leading dots of the name do not start an extension, so ".bashrc"
// has none.
func SplitExt(path string) string {
	name := path[strings.LastIndex(path, "/")+1:]
	dot := strings.LastIndex(name, ".")
	if dot <= 0 {
		return ""
	}
	if strings.Trim(name[:dot], ".") == "" {
		return ""
	}
	return name[dot:]
}

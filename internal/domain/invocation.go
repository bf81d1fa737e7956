package domain

import (
	"encoding/json"
	"strings"
)

// ExtractionOptions controls how free-text tool inputs are captured.
type ExtractionOptions struct {
	IncludePreviews bool
	PreviewLength   int
	Verbose         bool
}

// DefaultExtractionOptions returns previews enabled at 100 characters.
func DefaultExtractionOptions() ExtractionOptions {
	return ExtractionOptions{
		IncludePreviews: true,
		PreviewLength:   100,
	}
}

// ToolUseBlock is a raw tool_use content block as found in a transcript.
type ToolUseBlock struct {
	ID    string
	Name  string
	Input json.RawMessage
}

// InvocationMeta is the metadata shared by every invocation on one log line.
type InvocationMeta struct {
	Timestamp string
	Project   string
	JSONLPath string
	LineNo    int
	Cwd       string
	SessionID string
	GitBranch string
}

// ToolInvocation is one normalized tool call. Only the field family
// matching ToolName is populated.
type ToolInvocation struct {
	InvocationMeta
	ToolName  string
	ToolUseID string

	// Bash
	BashCommand     string
	BashDescription string
	BashTimeout     *int64

	// Read
	ReadFilePath string
	ReadOffset   *int64
	ReadLimit    *int64
	ReadPages    string

	// Write
	WriteFilePath       string
	WriteContentLength  int
	WriteContentPreview string

	// Edit
	EditFilePath         string
	EditOldStringPreview string
	EditNewStringPreview string
	EditReplaceAll       *bool

	// Grep
	GrepPattern    string
	GrepPath       string
	GrepOutputMode string
	GrepFlags      string
	GrepGlob       string
	GrepType       string

	// Glob
	GlobPattern string
	GlobPath    string

	// Task management
	TaskSubject            string
	TaskDescriptionPreview string
	TaskID                 string
	TaskStatus             string
	TaskOperation          string

	// TodoWrite
	TodoContentPreview string

	// Special tools
	SkillName          string
	WebSearchQuery     string
	AskQuestionPreview string

	// Fallback for unknown tools
	RawInputJSON string
}

// TruncatePreview trims text and cuts it to length characters, appending
// "..." when something was dropped.
func TruncatePreview(text string, length int) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= length {
		return text
	}
	return string(runes[:length]) + "..."
}

// Truncate cuts text to at most n characters without adding a suffix.
func Truncate(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}

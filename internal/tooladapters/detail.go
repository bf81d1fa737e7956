package tooladapters

import (
	"github.com/emiliopalmerini/claude-activity/internal/domain"
)

// ToolDetail returns the human-readable detail shown in tool-call lists.
func ToolDetail(inv domain.ToolInvocation) string {
	switch inv.ToolName {
	case "Bash":
		return domain.Truncate(inv.BashCommand, 200)
	case "Read":
		return inv.ReadFilePath
	case "Write":
		return inv.WriteFilePath
	case "Edit":
		return inv.EditFilePath
	case "Grep":
		if inv.GrepPath != "" {
			return inv.GrepPattern + " in " + inv.GrepPath
		}
		return inv.GrepPattern
	case "Glob":
		return inv.GlobPattern
	case "Task":
		if inv.TaskDescriptionPreview != "" {
			return inv.TaskDescriptionPreview
		}
		return inv.TaskSubject
	case "WebSearch":
		return inv.WebSearchQuery
	case "Skill":
		return inv.SkillName
	case "AskUserQuestion":
		return inv.AskQuestionPreview
	case "TaskCreate", "TaskUpdate", "TaskList", "TaskGet", "TaskOutput":
		if inv.TaskSubject != "" {
			return inv.TaskSubject
		}
		return inv.TaskOperation
	}
	return domain.Truncate(inv.RawInputJSON, 150)
}

// FilePath returns the target path of Read, Write and Edit calls, or "".
func FilePath(inv domain.ToolInvocation) string {
	switch inv.ToolName {
	case "Read":
		return inv.ReadFilePath
	case "Write":
		return inv.WriteFilePath
	case "Edit":
		return inv.EditFilePath
	}
	return ""
}

// ToolCalls converts invocations into the ordered tool-call list.
func ToolCalls(invocations []domain.ToolInvocation, isSubagent bool) []domain.ToolCall {
	calls := make([]domain.ToolCall, 0, len(invocations))
	for i, inv := range invocations {
		calls = append(calls, domain.ToolCall{
			Seq:        i + 1,
			Time:       inv.Timestamp,
			Tool:       inv.ToolName,
			Detail:     ToolDetail(inv),
			IsSubagent: isSubagent,
		})
	}
	return calls
}

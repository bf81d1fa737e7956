package tooladapters

import (
	"strings"

	"github.com/emiliopalmerini/claude-activity/internal/domain"
)

var taskOperations = map[string]string{
	"TaskCreate": "create",
	"TaskUpdate": "update",
	"TaskList":   "list",
	"TaskGet":    "get",
	"TaskOutput": "output",
}

// TaskAdapter handles the task-management family (TaskCreate, TaskUpdate,
// TaskList, TaskGet, TaskOutput).
type TaskAdapter struct{}

func (TaskAdapter) Extract(block domain.ToolUseBlock, meta domain.InvocationMeta, opts domain.ExtractionOptions) (domain.ToolInvocation, error) {
	in, err := decodeInput(block.Input)
	if err != nil {
		return domain.ToolInvocation{}, err
	}

	name := block.Name
	if name == "" {
		name = "Task"
	}

	inv := newInvocation(meta, name, block)
	inv.TaskSubject = in.str("subject")
	inv.TaskDescriptionPreview = preview(opts, in.str("description"))
	inv.TaskID = in.str("taskId")
	inv.TaskStatus = in.str("status")
	inv.TaskOperation = taskOperations[name]
	return inv, nil
}

func (TaskAdapter) PrimaryValue(inv domain.ToolInvocation) string {
	if inv.TaskSubject != "" {
		return inv.TaskSubject
	}
	return inv.TaskOperation
}

// PatternLevels buckets by operation, status and the subject's first two
// words.
func (TaskAdapter) PatternLevels(inv domain.ToolInvocation) (string, string, string) {
	operation := inv.TaskOperation
	if operation == "" {
		operation = "unknown"
	}
	status := inv.TaskStatus
	if status == "" {
		status = "(no status)"
	}

	category := "(no subject)"
	if inv.TaskSubject != "" {
		category = inv.TaskSubject
		if w, ok := firstWords(inv.TaskSubject, 2); ok {
			category = w
		}
	}
	return operation, status, category
}

// TodoWriteAdapter handles TodoWrite tool calls.
type TodoWriteAdapter struct{}

func (TodoWriteAdapter) Extract(block domain.ToolUseBlock, meta domain.InvocationMeta, opts domain.ExtractionOptions) (domain.ToolInvocation, error) {
	in, err := decodeInput(block.Input)
	if err != nil {
		return domain.ToolInvocation{}, err
	}

	inv := newInvocation(meta, "TodoWrite", block)
	inv.TodoContentPreview = preview(opts, in.str("content"))
	return inv, nil
}

func (TodoWriteAdapter) PrimaryValue(inv domain.ToolInvocation) string {
	return inv.TodoContentPreview
}

// PatternLevels uses the first word, first two words and first line.
func (TodoWriteAdapter) PatternLevels(inv domain.ToolInvocation) (string, string, string) {
	content := inv.TodoContentPreview
	if content == "" {
		return "", "", ""
	}

	firstLine, _, _ := strings.Cut(content, "\n")
	words := strings.Fields(firstLine)

	level1 := ""
	if len(words) > 0 {
		level1 = words[0]
	}
	level2 := firstLine
	if w, ok := firstWords(firstLine, 2); ok {
		level2 = w
	}
	return level1, level2, firstLine
}

package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/emiliopalmerini/claude-activity/internal/domain"
	"github.com/emiliopalmerini/claude-activity/internal/tooladapters"
	"github.com/emiliopalmerini/claude-activity/internal/transcript"
)

// SubagentFiles lists the sub-logs of a session, stored as
// <dir>/<stem>/subagents/*.jsonl, in sorted order.
func SubagentFiles(sessionPath string) []string {
	dir := filepath.Join(filepath.Dir(sessionPath), fileStem(sessionPath), "subagents")
	matches, err := filepath.Glob(filepath.Join(dir, "*.jsonl"))
	if err != nil {
		return nil
	}
	return matches
}

func (p *Parser) parseSubagents(ctx context.Context, sessionPath, project string, info map[string]taskCall) []domain.Subagent {
	var subagents []domain.Subagent
	for _, path := range SubagentFiles(sessionPath) {
		if ctx.Err() != nil {
			break
		}
		sa, err := p.parseSubagent(path, project, info)
		if err != nil {
			p.logger.Debug(fmt.Sprintf("skipping subagent %s: %v", path, err))
			continue
		}
		if sa != nil {
			subagents = append(subagents, *sa)
		}
	}
	return subagents
}

// parseSubagent returns nil when the sub-log made no tool calls.
func (p *Parser) parseSubagent(path, project string, info map[string]taskCall) (*domain.Subagent, error) {
	var (
		invocations []domain.ToolInvocation
		description string
		described   bool
		activeMs    int64
	)

	reader := transcript.NewReader()
	for lineno, rec := range reader.Records(path) {
		if rec == nil {
			continue
		}
		if rec.Type == "system" && rec.Subtype == "turn_duration" {
			activeMs += int64(rec.DurationMs)
		}

		msg := rec.Message
		if msg == nil {
			continue
		}
		if !described && msg.Role == "user" {
			description, described = subagentDescription(msg)
		}

		blocks, ok := msg.Blocks()
		if !ok {
			continue
		}
		meta := invocationMeta(rec, project, path, lineno)
		for _, block := range blocks {
			if block.IsString || block.Type != "tool_use" || block.Name == "" {
				continue
			}
			if inv, ok := p.extract(block, meta); ok {
				invocations = append(invocations, inv)
			}
		}
	}
	if err := readerError(path, reader); err != nil {
		return nil, err
	}

	if len(invocations) == 0 {
		return nil, nil
	}

	agentID := strings.ReplaceAll(fileStem(path), "agent-", "")
	call := info[agentID]
	return &domain.Subagent{
		AgentID:          agentID,
		SubagentType:     call.SubagentType,
		TaskDescription:  call.Description,
		Description:      domain.TruncatePreview(description, subagentDescLimit),
		ToolCount:        len(invocations),
		ToolCounts:       toolCounts(invocations),
		ToolCalls:        tooladapters.ToolCalls(invocations, true),
		ActiveDurationMs: activeMs,
	}, nil
}

// subagentDescription picks the first real prompt of a sub-log.
func subagentDescription(msg *transcript.Message) (string, bool) {
	stripped, ok := qualifyingUserText(msg)
	if !ok || len([]rune(stripped)) <= 3 || isInterrupt(stripped) {
		return "", false
	}
	return promptText(stripped), true
}

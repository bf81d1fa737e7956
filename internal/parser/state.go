package parser

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/emiliopalmerini/claude-activity/internal/domain"
	"github.com/emiliopalmerini/claude-activity/internal/transcript"
)

const (
	turnTextLimit       = 300
	promptPreviewLimit  = 80
	subagentDescLimit   = 200
	interruptPlain      = "[Request interrupted by user]"
	interruptForToolUse = "[Request interrupted by user for tool use]"
)

var leadingTagBlocks = regexp.MustCompile(`^(?:<[^>]+>[\s\S]*?</[^>]+>\s*)+`)

type taskCall struct {
	SubagentType string `json:"subagent_type"`
	Description  string `json:"description"`
}

// sessionState accumulates everything collected during the pass over one log.
type sessionState struct {
	project string
	path    string

	invocations []domain.ToolInvocation

	slug           string
	model          string
	firstTS        string
	lastTS         string
	tokens         domain.TokenUsage
	activeMs       int64
	permissionMode string
	thinkingLevel  string
	toolErrors     int
	toolSuccesses  int
	models         map[string]struct{}

	firstPrompt      string
	firstPromptFound bool

	turns      []domain.UserTurn
	turnNumber int

	// Delegation id to task input, in first-seen order.
	taskOrder    []string
	taskCalls    map[string]taskCall
	agentMapping map[string]string
}

func newSessionState(project, path string) *sessionState {
	return &sessionState{
		project:      project,
		path:         path,
		models:       make(map[string]struct{}),
		taskCalls:    make(map[string]taskCall),
		agentMapping: make(map[string]string),
	}
}

func (p *Parser) processRecord(s *sessionState, lineno int, rec *transcript.Record) {
	if s.slug == "" && rec.Slug != "" {
		s.slug = rec.Slug
	}

	if rec.Timestamp != "" {
		if s.firstTS == "" {
			s.firstTS = rec.Timestamp
		}
		s.lastTS = rec.Timestamp
	}

	if rec.Type == "system" && rec.Subtype == "turn_duration" {
		s.activeMs += int64(rec.DurationMs)
	}

	if rec.PermissionMode != "" {
		s.permissionMode = rec.PermissionMode
	}
	if level, ok := rec.ThinkingLevel(); ok {
		s.thinkingLevel = level
	}

	if rec.Type == "progress" {
		agentID := rec.AgentID()
		parentID := rec.ParentToolUseID
		if agentID != "" && parentID != "" {
			if _, seen := s.agentMapping[parentID]; !seen {
				s.agentMapping[parentID] = agentID
			}
		}
	}

	msg := rec.Message
	if msg == nil {
		return
	}

	if msg.Model != "" {
		s.models[msg.Model] = struct{}{}
		if s.model == "" {
			s.model = msg.Model
		}
	}

	if u := msg.Usage; u != nil {
		s.tokens.Input += u.InputTokens
		s.tokens.Output += u.OutputTokens
		s.tokens.CacheCreation += u.CacheCreationInputTokens
		s.tokens.CacheRead += u.CacheReadInputTokens
	}

	if msg.Role == "user" {
		s.processUserMessage(msg, rec.Timestamp)
	}

	if blocks, ok := msg.Blocks(); ok {
		p.processBlocks(s, blocks, invocationMeta(rec, s.project, s.path, lineno))
	}
}

func (s *sessionState) processUserMessage(msg *transcript.Message, ts string) {
	stripped, ok := qualifyingUserText(msg)
	if !ok {
		return
	}

	s.turnNumber++
	interrupt := isInterrupt(stripped)

	if !s.firstPromptFound && !interrupt {
		if prompt := promptText(stripped); utf8.RuneCountInString(prompt) > 3 {
			s.firstPrompt = prompt
			s.firstPromptFound = true
		}
	}

	display := stripped
	if !interrupt {
		if cleaned := stripTagBlocks(stripped); utf8.RuneCountInString(cleaned) > 3 {
			display = cleaned
		}
	}

	s.turns = append(s.turns, domain.UserTurn{
		Text:        domain.TruncatePreview(display, turnTextLimit),
		Timestamp:   ts,
		IsInterrupt: interrupt,
		TurnNumber:  s.turnNumber,
	})
}

func (p *Parser) processBlocks(s *sessionState, blocks []transcript.ContentBlock, meta domain.InvocationMeta) {
	for _, block := range blocks {
		if block.IsString {
			continue
		}
		switch block.Type {
		case "tool_use":
			if block.Name == "" {
				continue
			}
			if block.Name == "Task" {
				s.recordTaskCall(block)
			}
			if inv, ok := p.extract(block, meta); ok {
				s.invocations = append(s.invocations, inv)
			}
		case "tool_result":
			if block.IsError {
				s.toolErrors++
			} else {
				s.toolSuccesses++
			}
		}
	}
}

func (s *sessionState) recordTaskCall(block transcript.ContentBlock) {
	var call taskCall
	if len(block.Input) > 0 {
		_ = json.Unmarshal(block.Input, &call)
	}
	if _, seen := s.taskCalls[block.ID]; !seen {
		s.taskOrder = append(s.taskOrder, block.ID)
	}
	s.taskCalls[block.ID] = call
}

// subagentInfo joins delegation inputs with the agent ids announced by
// progress events, keyed by agent id.
func (s *sessionState) subagentInfo() map[string]taskCall {
	info := make(map[string]taskCall)
	for _, id := range s.taskOrder {
		if agentID, ok := s.agentMapping[id]; ok {
			info[agentID] = s.taskCalls[id]
		}
	}
	return info
}

// qualifyingUserText returns the trimmed text of a user message unless it
// is empty, a local command echo, or shorter than 3 characters.
func qualifyingUserText(msg *transcript.Message) (string, bool) {
	text, ok := msg.Text()
	if !ok || text == "" {
		return "", false
	}
	stripped := strings.TrimSpace(text)
	if strings.HasPrefix(stripped, "<local-command") || strings.HasPrefix(stripped, "<command-") {
		return "", false
	}
	if utf8.RuneCountInString(stripped) < 3 {
		return "", false
	}
	return stripped, true
}

func isInterrupt(text string) bool {
	text = strings.TrimSpace(text)
	return text == interruptPlain || text == interruptForToolUse
}

func stripTagBlocks(text string) string {
	return strings.TrimSpace(leadingTagBlocks.ReplaceAllString(text, ""))
}

// promptText prefers the text with leading tag blocks removed, falling
// back to the full text when too little remains.
func promptText(stripped string) string {
	if cleaned := stripTagBlocks(stripped); utf8.RuneCountInString(cleaned) > 3 {
		return cleaned
	}
	return stripped
}

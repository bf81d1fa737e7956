package parser

import (
	"context"
	"path/filepath"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/emiliopalmerini/claude-activity/internal/domain"
	"github.com/emiliopalmerini/claude-activity/internal/tooladapters"
)

const maxBashCommands = 50

func (p *Parser) assemble(ctx context.Context, s *sessionState) *domain.Session {
	if len(s.invocations) == 0 && s.firstPrompt == "" {
		return nil
	}

	interrupts := lo.CountBy(s.turns, func(t domain.UserTurn) bool { return t.IsInterrupt })

	fileExtensions := make(map[string]int)
	filesTouched := make(map[string]map[string]int)
	for _, inv := range s.invocations {
		path := tooladapters.FilePath(inv)
		if path == "" {
			continue
		}
		fileExtensions[pathSuffix(path)]++
		if filesTouched[path] == nil {
			filesTouched[path] = make(map[string]int)
		}
		filesTouched[path][inv.ToolName]++
	}

	bashCommands, categorySummary := rankBashCommands(s.invocations)

	promptPreview := ""
	if s.firstPrompt != "" {
		promptPreview = domain.TruncatePreview(s.firstPrompt, promptPreviewLimit)
	}

	subagents := p.parseSubagents(ctx, s.path, s.project, s.subagentInfo())
	subagentActive := lo.SumBy(subagents, func(sa domain.Subagent) int64 { return sa.ActiveDurationMs })

	models := lo.Keys(s.models)
	slices.Sort(models)

	return &domain.Session{
		SessionID:             fileStem(s.path),
		Slug:                  s.slug,
		Project:               s.project,
		FirstPrompt:           s.firstPrompt,
		PromptPreview:         promptPreview,
		TurnCount:             s.turnNumber,
		StartTime:             s.firstTS,
		EndTime:               s.lastTS,
		Model:                 s.model,
		TotalTools:            len(s.invocations),
		ToolCounts:            toolCounts(s.invocations),
		FileExtensions:        fileExtensions,
		FilesTouched:          filesTouched,
		BashCommands:          bashCommands,
		BashCategorySummary:   categorySummary,
		ToolCalls:             tooladapters.ToolCalls(s.invocations, false),
		UserTurns:             s.turns,
		InterruptCount:        interrupts,
		Tokens:                s.tokens,
		ActiveDurationMs:      s.activeMs,
		TotalActiveDurationMs: s.activeMs + subagentActive,
		PermissionMode:        s.permissionMode,
		ToolErrors:            s.toolErrors,
		ToolSuccesses:         s.toolSuccesses,
		ThinkingLevel:         s.thinkingLevel,
		ModelsUsed:            models,
		CostEstimate: domain.EstimateCost(
			s.tokens.Input, s.tokens.Output, s.tokens.CacheRead, s.tokens.CacheCreation, s.model,
		),
		Subagents: subagents,
	}
}

func toolCounts(invocations []domain.ToolInvocation) map[string]int {
	return lo.CountValuesBy(invocations, func(inv domain.ToolInvocation) string { return inv.ToolName })
}

// rankBashCommands counts distinct trimmed commands and keeps the most
// frequent ones. Equal counts keep first-seen order.
func rankBashCommands(invocations []domain.ToolInvocation) ([]domain.BashCommand, map[string]int) {
	counts := make(map[string]int)
	var order []string
	for _, inv := range invocations {
		if inv.ToolName != "Bash" || inv.BashCommand == "" {
			continue
		}
		cmd := strings.TrimSpace(inv.BashCommand)
		if _, seen := counts[cmd]; !seen {
			order = append(order, cmd)
		}
		counts[cmd]++
	}

	slices.SortStableFunc(order, func(a, b string) int { return counts[b] - counts[a] })
	if len(order) > maxBashCommands {
		order = order[:maxBashCommands]
	}

	commands := make([]domain.BashCommand, 0, len(order))
	summary := make(map[string]int)
	for _, cmd := range order {
		base := cmd
		if fields := strings.Fields(cmd); len(fields) > 0 {
			base = fields[0]
		}
		category := domain.CategorizeBashCommand(cmd)
		summary[category] += counts[cmd]
		commands = append(commands, domain.BashCommand{
			Command:  domain.Truncate(cmd, 200),
			Base:     base,
			Count:    counts[cmd],
			Category: category,
		})
	}
	return commands, summary
}

// pathSuffix returns the final extension of the last path element, or
// "(no ext)". Leading-dot names like ".env" have no extension.
func pathSuffix(path string) string {
	name := filepath.Base(path)
	i := strings.LastIndex(name, ".")
	if i <= 0 || i == len(name)-1 {
		return "(no ext)"
	}
	return name[i:]
}

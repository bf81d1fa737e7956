package report

import (
	"strings"

	"github.com/emiliopalmerini/claude-activity/internal/domain"
)

// CommandOptions controls the bash command report.
type CommandOptions struct {
	Top           int
	CleanHeredocs bool
}

// CommandReport summarizes every Bash invocation in a corpus.
type CommandReport struct {
	Total      int            `json:"total"`
	Unique     int            `json:"unique"`
	Commands   []PatternCount `json:"commands"`
	ByProject  []PatternCount `json:"by_project"`
	Base       []PatternCount `json:"base"`
	Level2     []PatternCount `json:"level2"`
	Level3     []PatternCount `json:"level3"`
	Categories []PatternCount `json:"categories"`
}

// BashCommands counts Bash commands by full text, project, leading words
// and category. Commands are counted as written, optionally with heredoc
// bodies collapsed.
func BashCommands(invs []domain.ToolInvocation, opts CommandOptions) CommandReport {
	var (
		commands   = map[string]int{}
		projects   = map[string]int{}
		base       = map[string]int{}
		level2     = map[string]int{}
		level3     = map[string]int{}
		categories = map[string]int{}
		total      int
	)

	for _, inv := range invs {
		if inv.ToolName != "Bash" || inv.BashCommand == "" {
			continue
		}
		cmd := inv.BashCommand
		if opts.CleanHeredocs {
			cmd = domain.CleanHeredoc(cmd)
		}

		total++
		commands[cmd]++
		projects[inv.Project]++
		categories[domain.CategorizeBashCommand(cmd)]++

		words := strings.Fields(cmd)
		if len(words) >= 1 {
			base[words[0]]++
		}
		if len(words) >= 2 {
			level2[strings.Join(words[:2], " ")]++
		}
		if len(words) >= 3 {
			level3[strings.Join(words[:3], " ")]++
		}
	}

	return CommandReport{
		Total:      total,
		Unique:     len(commands),
		Commands:   rank(commands, 1, opts.Top).Patterns,
		ByProject:  rank(projects, 1, 0).Patterns,
		Base:       rank(base, 1, opts.Top).Patterns,
		Level2:     rank(level2, 1, opts.Top).Patterns,
		Level3:     rank(level3, 1, opts.Top).Patterns,
		Categories: rank(categories, 1, 0).Patterns,
	}
}

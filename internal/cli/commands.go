package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/claude-activity/internal/adapters/logger"
	"github.com/emiliopalmerini/claude-activity/internal/domain"
	"github.com/emiliopalmerini/claude-activity/internal/pkg/tui/theme"
	"github.com/emiliopalmerini/claude-activity/internal/report"
)

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "Show Bash command frequencies",
	Long: `Scan every session log, including subagent logs, and count the Bash
commands that were run.

Examples:
  activity commands
  activity commands --clean-heredocs --top 100`,
	Args: cobra.NoArgs,
	RunE: runCommands,
}

var (
	commandsOpts = report.CommandOptions{Top: 50}
	commandsJSON bool
)

func init() {
	rootCmd.AddCommand(commandsCmd)
	commandsCmd.Flags().BoolVar(&commandsOpts.CleanHeredocs, "clean-heredocs", false, "Collapse heredoc bodies")
	commandsCmd.Flags().IntVar(&commandsOpts.Top, "top", commandsOpts.Top, "Rows per section (0 for all)")
	commandsCmd.Flags().BoolVar(&commandsJSON, "json", false, "Print as JSON")
}

func runCommands(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cmd.ErrOrStderr(), "activity: ", cfg.Verbose)

	corpus, err := report.Collect(ctx, newParser(cfg, log), cfg.ProjectsRoot, log)
	if err != nil {
		return err
	}
	result := report.BashCommands(corpus.Invocations, commandsOpts)

	if commandsJSON {
		return printJSON(cmd.OutOrStdout(), result)
	}
	printCommands(cmd.OutOrStdout(), result)
	return nil
}

func printCommands(w io.Writer, r report.CommandReport) {
	styles := theme.Default()
	fmt.Fprintf(w, "%d Bash commands, %d unique\n", r.Total, r.Unique)

	sections := []struct {
		title string
		rows  []report.PatternCount
	}{
		{"Categories", r.Categories},
		{"By project", r.ByProject},
		{"Base commands", r.Base},
		{"First two words", r.Level2},
		{"First three words", r.Level3},
		{"Commands", r.Commands},
	}
	for _, s := range sections {
		fmt.Fprintf(w, "\n%s\n", styles.Subtitle.Render(s.title))
		for _, row := range s.rows {
			fmt.Fprintf(w, "  %5d  %s\n", row.Count, domain.Truncate(row.Pattern, 200))
		}
	}
}

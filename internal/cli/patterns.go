package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/claude-activity/internal/adapters/logger"
	"github.com/emiliopalmerini/claude-activity/internal/pkg/tui/theme"
	"github.com/emiliopalmerini/claude-activity/internal/report"
	"github.com/emiliopalmerini/claude-activity/internal/tooladapters"
)

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Show 3-level usage patterns per tool",
	Long: `Scan every session log, including subagent logs, and rank each tool's
usage at three levels of detail. The cache is not used.

Examples:
  activity patterns
  activity patterns --tool Bash --top 20 --min-count 5`,
	Args: cobra.NoArgs,
	RunE: runPatterns,
}

var (
	patternsOpts = report.DefaultPatternOptions()
	patternsJSON bool
)

func init() {
	rootCmd.AddCommand(patternsCmd)
	patternsCmd.Flags().StringVarP(&patternsOpts.Tool, "tool", "t", "", "Only this tool")
	patternsCmd.Flags().IntVar(&patternsOpts.Top, "top", patternsOpts.Top, "Patterns per level")
	patternsCmd.Flags().IntVar(&patternsOpts.MinCount, "min-count", patternsOpts.MinCount, "Minimum occurrences to list a pattern")
	patternsCmd.Flags().BoolVar(&patternsJSON, "json", false, "Print as JSON")
}

func runPatterns(cmd *cobra.Command, args []string) error {
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
	result := report.Patterns(corpus.Invocations, tooladapters.NewRegistry(), patternsOpts)

	if patternsJSON {
		return printJSON(cmd.OutOrStdout(), result)
	}
	printPatterns(cmd.OutOrStdout(), corpus, result, patternsOpts.MinCount)
	return nil
}

var levelTitles = [3]string{
	"Level 1 patterns (most general)",
	"Level 2 patterns (mid-level)",
	"Level 3 patterns (most specific)",
}

func printPatterns(w io.Writer, corpus *report.Corpus, tools []report.ToolPatterns, minCount int) {
	styles := theme.Default()
	fmt.Fprintf(w, "%d invocations in %d files (%d malformed lines)\n",
		len(corpus.Invocations), corpus.Files, corpus.Malformed)

	for _, tp := range tools {
		fmt.Fprintf(w, "\n%s\n", styles.Highlighted.Render(fmt.Sprintf("%s (%d calls)", tp.Tool, tp.Total)))
		for i, level := range tp.Levels {
			fmt.Fprintf(w, "\n%s:\n", levelTitles[i])
			if len(level.Patterns) == 0 {
				fmt.Fprintf(w, "  (no patterns with count >= %d)\n", minCount)
				continue
			}
			for _, p := range level.Patterns {
				fmt.Fprintf(w, "  %4d  %s\n", p.Count, p.Pattern)
			}
			if level.Remaining > 0 {
				fmt.Fprintf(w, "  ... %d more patterns (%d total occurrences)\n", level.Remaining, level.RemainingCount)
			}
		}
	}
}

package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/emiliopalmerini/claude-activity/internal/pkg/tui/theme"
	"github.com/emiliopalmerini/claude-activity/internal/refresh"
	"github.com/emiliopalmerini/claude-activity/internal/util"
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Update the cache from the session logs",
	Long: `Parse new and changed session logs, drop sessions whose log was removed
and recompute the aggregates.

Examples:
  activity rebuild
  activity rebuild --root ~/other/projects --workers 8`,
	Args: cobra.NoArgs,
	RunE: runRebuild,
}

var rebuildJSON bool

func init() {
	rootCmd.AddCommand(rebuildCmd)
	rebuildCmd.Flags().BoolVar(&rebuildJSON, "json", false, "Print the result as JSON")
}

func runRebuild(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := NewAppContext(ctx)
	if err != nil {
		return err
	}
	defer app.Close(ctx)

	status, result, err := app.Guard.TryRebuild(ctx)
	if err != nil {
		return fmt.Errorf("rebuild failed: %w", err)
	}
	if status == refresh.StatusSkipped {
		fmt.Fprintln(cmd.OutOrStdout(), "A rebuild is already running")
		return nil
	}

	warn := theme.Default().Warning.Render("warning:")
	for _, e := range multierr.Errors(result.Errors) {
		fmt.Fprintf(os.Stderr, "%s %v\n", warn, e)
	}

	if rebuildJSON {
		return printJSON(cmd.OutOrStdout(), result)
	}
	printRebuildResult(cmd.OutOrStdout(), result)
	return nil
}

func printRebuildResult(w io.Writer, r *refresh.Result) {
	styles := theme.Default()
	failed := fmt.Sprint(r.FilesFailed)
	if r.FilesFailed > 0 {
		failed = styles.Warning.Render(failed)
	}

	fmt.Fprintf(w, "Scanned %d files, %d stale\n", r.FilesScanned, r.FilesStale)
	fmt.Fprintf(w, "  parsed:  %d\n", r.FilesParsed)
	fmt.Fprintf(w, "  skipped: %d\n", r.FilesSkipped)
	fmt.Fprintf(w, "  failed:  %s\n", failed)
	fmt.Fprintf(w, "  removed: %d\n", r.SessionsRemoved)

	if !r.Changed() {
		fmt.Fprintln(w, "No log changes")
	}
	switch {
	case r.Aggregate == nil:
		fmt.Fprintln(w, "No sessions found, aggregates cleared")
	default:
		fmt.Fprintf(w, "Aggregates rebuilt: %d sessions, %s\n",
			r.Aggregate.TotalSessions, util.FormatCost(r.Aggregate.TotalCost))
	}
	fmt.Fprintln(w, styles.Success.Render("Done in "+r.Duration.Round(time.Millisecond).String()))
}

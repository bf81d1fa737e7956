package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/claude-activity/internal/domain"
	"github.com/emiliopalmerini/claude-activity/internal/util"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List cached sessions, newest first",
	Long: `List cached sessions, newest first.

Examples:
  activity sessions
  activity sessions --project -home-pi-app
  activity sessions --limit 0 --json`,
	Args: cobra.NoArgs,
	RunE: runSessions,
}

var (
	sessionsProject string
	sessionsLimit   int
	sessionsJSON    bool
)

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.Flags().StringVarP(&sessionsProject, "project", "p", "", "Only sessions of this project")
	sessionsCmd.Flags().IntVarP(&sessionsLimit, "limit", "n", 20, "Maximum sessions to show (0 for all)")
	sessionsCmd.Flags().BoolVar(&sessionsJSON, "json", false, "Print as JSON")
}

func runSessions(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := NewAppContext(ctx)
	if err != nil {
		return err
	}
	defer app.Close(ctx)

	if err := app.ensureFresh(ctx); err != nil {
		return fmt.Errorf("failed to build cache: %w", err)
	}

	sessions, err := app.Store.SessionList(ctx, sessionsProject)
	if err != nil {
		return err
	}
	if sessionsLimit > 0 && len(sessions) > sessionsLimit {
		sessions = sessions[:sessionsLimit]
	}

	if sessionsJSON {
		return printJSON(cmd.OutOrStdout(), sessions)
	}
	if len(sessions) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No sessions found")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), sessionsTable(sessions))
	return nil
}

func sessionsTable(sessions []domain.SessionSummary) string {
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, []string{
			util.FormatDateTime(s.StartTime),
			s.SessionID,
			s.Project,
			domain.TruncatePreview(s.PromptPreview, 40),
			strconv.FormatInt(s.TotalActions, 10),
			util.FormatDurationMs(s.TotalActiveDurationMs),
			util.FormatCost(s.CostEstimate),
		})
	}
	return renderTable([]string{"Started", "Session", "Project", "Prompt", "Actions", "Active", "Cost"}, rows)
}

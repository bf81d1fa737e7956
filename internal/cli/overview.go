package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/claude-activity/internal/domain"
	"github.com/emiliopalmerini/claude-activity/internal/pkg/tui/components"
	"github.com/emiliopalmerini/claude-activity/internal/pkg/tui/theme"
	"github.com/emiliopalmerini/claude-activity/internal/util"
)

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Show aggregate usage",
	Long: `Show totals and charts across all cached sessions. The cache is built
first when it is empty.

Examples:
  activity overview
  activity overview --window 7d
  activity overview --json`,
	Args: cobra.NoArgs,
	RunE: runOverview,
}

var (
	overviewWindow string
	overviewTop    int
	overviewJSON   bool
)

const barWidth = 30

func init() {
	rootCmd.AddCommand(overviewCmd)
	overviewCmd.Flags().StringVarP(&overviewWindow, "window", "w", "", "Restrict charts to the last 1d, 7d or 30d")
	overviewCmd.Flags().IntVar(&overviewTop, "top", 10, "Rows per chart")
	overviewCmd.Flags().BoolVar(&overviewJSON, "json", false, "Print the aggregate as JSON")
}

func runOverview(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := NewAppContext(ctx)
	if err != nil {
		return err
	}
	defer app.Close(ctx)

	if err := app.ensureFresh(ctx); err != nil {
		return fmt.Errorf("failed to build cache: %w", err)
	}

	agg, err := app.Store.OverviewPayload(ctx)
	if err != nil {
		return err
	}
	if agg == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "No sessions found under %s\n", app.Config.ProjectsRoot)
		return nil
	}

	if overviewJSON {
		if overviewWindow != "" {
			b, ok := agg.Window(overviewWindow)
			if !ok {
				return fmt.Errorf("unknown window %q (use 1d, 7d or 30d)", overviewWindow)
			}
			return printJSON(cmd.OutOrStdout(), b)
		}
		return printJSON(cmd.OutOrStdout(), agg)
	}

	out, err := renderOverview(agg, overviewWindow, overviewTop)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

// renderOverview draws the totals card and the charts. An empty window
// uses the all-time charts.
func renderOverview(agg *domain.GlobalAggregate, window string, top int) (string, error) {
	styles := theme.Default()

	charts := domain.WindowBreakdown{
		ToolDistribution: agg.ToolDistribution,
		ProjectsChart:    agg.ProjectsChart,
		FileTypesChart:   agg.FileTypesChart,
		ProjectCosts:     agg.ProjectCosts,
	}
	scope := "all time"
	if window != "" {
		b, ok := agg.Window(window)
		if !ok {
			return "", fmt.Errorf("unknown window %q (use 1d, 7d or 30d)", window)
		}
		charts = b
		scope = "last " + window
	}

	stat := func(label, value string) string {
		return styles.Label.Render(label) + styles.Bold.Render(value)
	}
	totals := strings.Join([]string{
		stat("Sessions", util.FormatNumber(agg.TotalSessions)),
		stat("Projects", util.FormatNumber(agg.ProjectCount)),
		stat("Tool calls", util.FormatNumber(agg.TotalTools)),
		stat("Actions", util.FormatNumber(agg.TotalActions)),
		stat("Subagents", fmt.Sprintf("%d (%s actions)", agg.SubagentCount, util.FormatNumber(agg.SubagentTools))),
		stat("Active time", util.FormatDurationMs(agg.TotalActiveMs)),
		stat("Est. cost", util.FormatCost(agg.TotalCost)),
		stat("Tokens in/out", util.FormatNumber(agg.TotalInputTokens)+" / "+util.FormatNumber(agg.TotalOutputTokens)),
		stat("Cache read/write", util.FormatNumber(agg.TotalCacheReadTokens)+" / "+util.FormatNumber(agg.TotalCacheCreationTokens)),
		stat("Range", util.FormatDateTime(agg.DateRangeStart)+" → "+util.FormatDateTime(agg.DateRangeEnd)),
	}, "\n")

	sections := []string{
		styles.Title.Render("Claude Code activity"),
		styles.Card.Render(totals),
		section("Tools ("+scope+")", countRows(charts.ToolDistribution, top)),
		section("Projects by actions ("+scope+")", countRows(charts.ProjectsChart, top)),
		section("File types ("+scope+")", countRows(charts.FileTypesChart, top)),
		section("Project costs ("+scope+")", costRows(charts.ProjectCosts, top)),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...), nil
}

func section(title string, rows []components.BarRow) string {
	styles := theme.Default()
	body := styles.Muted.Render("  no data")
	if len(rows) > 0 {
		body = components.NewBarChart(barWidth, rows...).View()
	}
	return "\n" + styles.Subtitle.Render(title) + "\n" + body
}

func countRows(ranked []domain.RankedCount, top int) []components.BarRow {
	rows := make([]components.BarRow, 0, len(ranked))
	for i, r := range ranked {
		if top > 0 && i >= top {
			break
		}
		rows = append(rows, components.BarRow{Label: r.Key, Value: float64(r.Value), Text: util.FormatNumber(r.Value)})
	}
	return rows
}

func costRows(ranked []domain.RankedCost, top int) []components.BarRow {
	rows := make([]components.BarRow, 0, len(ranked))
	for i, r := range ranked {
		if top > 0 && i >= top {
			break
		}
		rows = append(rows, components.BarRow{Label: r.Key, Value: r.Value, Text: util.FormatCost(r.Value)})
	}
	return rows
}

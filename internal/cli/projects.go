package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List projects with cached sessions",
	Long: `List the projects of the cached sessions. Names are the log directory
with the home directory prefix removed, the same names accepted by
"sessions --project".`,
	Args:  cobra.NoArgs,
	RunE:  runProjects,
}

var projectsJSON bool

func init() {
	rootCmd.AddCommand(projectsCmd)
	projectsCmd.Flags().BoolVar(&projectsJSON, "json", false, "Print as JSON")
}

type projectRow struct {
	Project  string `json:"project"`
	Sessions int    `json:"sessions"`
}

func runProjects(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := NewAppContext(ctx)
	if err != nil {
		return err
	}
	defer app.Close(ctx)

	if err := app.ensureFresh(ctx); err != nil {
		return fmt.Errorf("failed to build cache: %w", err)
	}

	projects, err := app.Store.ProjectsList(ctx)
	if err != nil {
		return err
	}
	summaries, err := app.Store.SessionList(ctx, "")
	if err != nil {
		return err
	}
	counts := map[string]int{}
	for _, s := range summaries {
		counts[s.Project]++
	}

	result := make([]projectRow, 0, len(projects))
	for _, p := range projects {
		result = append(result, projectRow{Project: p, Sessions: counts[p]})
	}

	if projectsJSON {
		return printJSON(cmd.OutOrStdout(), result)
	}
	if len(result) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No projects found")
		return nil
	}

	rows := make([][]string, 0, len(result))
	for _, r := range result {
		rows = append(rows, []string{r.Project, strconv.Itoa(r.Sessions)})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Project", "Sessions"}, rows))
	return nil
}

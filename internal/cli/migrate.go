package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/claude-activity/internal/infrastructure/database"
	schema "github.com/emiliopalmerini/claude-activity/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [version]",
	Short: "Run cache database migrations",
	Long: `Run cache database migrations.

Without arguments, runs all pending migrations (up).
With a version number, migrates to that specific version (up or down as needed).

Examples:
  activity migrate      # Run all pending migrations
  activity migrate 1    # Migrate to version 1
  activity migrate 0    # Rollback all migrations`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var target int64 = -1
	if len(args) == 1 {
		v, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || v < 0 {
			return fmt.Errorf("invalid version number: %s", args[0])
		}
		target = v
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}
	defer db.Close()

	m, err := schema.New(db.DB)
	if err != nil {
		return err
	}

	current, err := m.Version(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Current version: %d\n", current)

	var applied []schema.Applied
	if target < 0 {
		applied, err = m.Up(ctx)
	} else {
		applied, err = m.MigrateTo(ctx, target)
	}
	printApplied(out, applied)
	if err != nil {
		return err
	}

	if len(applied) == 0 {
		fmt.Fprintln(out, "No migrations to run.")
	}
	current, err = m.Version(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Now at version %d (latest %d)\n", current, m.Latest())
	return nil
}

func printApplied(w io.Writer, applied []schema.Applied) {
	for _, a := range applied {
		fmt.Fprintf(w, "  %-4s %03d %s (%s)\n", a.Direction, a.Version, a.Name, a.Duration.Round(time.Microsecond))
	}
}

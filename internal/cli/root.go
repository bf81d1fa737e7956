package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "activity",
	Short: "Usage analytics for Claude Code session logs",
	Long: `activity parses Claude Code session logs into a local cache and reports
on tool usage, projects, costs and activity over time.

The cache is rebuilt incrementally: only new or changed logs are parsed.`,
	SilenceUsage: true,
}

// Global flags override ACTIVITY_* environment settings.
var (
	flagRoot    string
	flagDB      string
	flagWorkers int
	flagVerbose bool
)

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagRoot, "root", "", "Projects root containing session logs (default ~/.claude/projects)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Cache database path")
	rootCmd.PersistentFlags().IntVar(&flagWorkers, "workers", 0, "Concurrent parse workers")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(migrateCmd)
}

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/claude-activity/internal/cache"
)

var sessionCmd = &cobra.Command{
	Use:   "session <id>",
	Short: "Print the full detail of one session as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runSession,
}

func init() {
	rootCmd.AddCommand(sessionCmd)
}

func runSession(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := NewAppContext(ctx)
	if err != nil {
		return err
	}
	defer app.Close(ctx)

	if err := app.ensureFresh(ctx); err != nil {
		return fmt.Errorf("failed to build cache: %w", err)
	}

	session, err := app.Store.SessionDetail(ctx, args[0])
	if errors.Is(err, cache.ErrSessionNotFound) {
		return fmt.Errorf("session %q not found", args[0])
	}
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), session)
}

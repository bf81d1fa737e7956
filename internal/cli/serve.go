package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/claude-activity/internal/api"
	"github.com/emiliopalmerini/claude-activity/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the cached analytics as JSON over HTTP",
	Long: `Start a local HTTP server exposing the cache. Requests for analytics
trigger a background rebuild when the cache is older than the freshness
window.

Examples:
  activity serve              # Start on default port 8080
  activity serve --port 3000  # Start on port 3000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var servePort int

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "Port to listen on")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := NewAppContext(ctx)
	if err != nil {
		return err
	}
	defer app.Close(context.WithoutCancel(ctx))

	app.Guard.TriggerIfStale(ctx)

	handler := api.NewHandler(app.Store, app.Guard, app.Logger)
	srv := server.NewHTTPServer(server.Config{Port: servePort}, handler)

	errCh := make(chan error, 1)
	go func() {
		app.Logger.Info(fmt.Sprintf("listening on %s", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		fmt.Fprintln(cmd.ErrOrStderr(), "\nShutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

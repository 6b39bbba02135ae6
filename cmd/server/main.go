/*
main.go - Application entry point

PURPOSE:
  Command-line front end of the budget rules engine. Serves the HTTP API,
  and offers offline counting and validation for scripts.

COMMANDS:
  serve      Start the HTTP API (in-memory store)
  count      Count how often one rule fires in a date range
  validate   Validate a budget document file
  version    Print the version

STARTUP SEQUENCE (serve):
  1. Load configuration (flags > BUDGET_* env > budget.yaml > defaults)
  2. Configure slog as the default logger
  3. Create store, handler and router
  4. Load the configured demo scenario, if any
  5. Run the server until SIGINT/SIGTERM

GLOBAL FLAGS:
  --config       Config file (default: ./budget.yaml if present)
  --log-level    debug, info, warn, error
  --log-format   text, json

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (http.shutdown_timeout)
  3. Exit

EXAMPLES:
  # Serve on another port with the household demo loaded
  BUDGET_SCENARIO=household ./server serve --port=3000

  # How many times does a quarterly payment fall in 2025?
  ./server count --start=2024-04-15 --every=3 --period=month --amount=2400 \
      --from=2025-01-01 --to=2025-12-31

  # Check a budget file before importing it
  ./server validate budget.json

SEE ALSO:
  - config/config.go: Configuration keys and defaults
  - api/server.go: Router configuration
  - commands.go: count, validate and version
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/warp/budget-rules/api"
	"github.com/warp/budget-rules/config"
	"github.com/warp/budget-rules/store/memory"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app carries the loaded configuration from the root command to its
// subcommands.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:               "server",
		Short:             "Budget rules engine",
		Long:              "Recurring budget rules: occurrence counting, overlap detection and category validation.",
		SilenceUsage:      true,
		PersistentPreRunE: a.initConfig,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: ./budget.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")

	_ = a.v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("log.format", flags.Lookup("log-format"))

	root.AddCommand(a.serveCmd())
	root.AddCommand(a.countCmd())
	root.AddCommand(a.validateCmd())
	root.AddCommand(versionCmd())
	return root
}

func (a *app) initConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadWith(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	slog.SetDefault(cfg.Log.NewLogger(cmd.ErrOrStderr()))
	return nil
}

// =============================================================================
// SERVE
// =============================================================================

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE:  a.runServe,
	}
	cmd.Flags().Int("port", 8080, "HTTP server port")
	_ = a.v.BindPFlag("http.port", cmd.Flags().Lookup("port"))
	return cmd
}

func (a *app) runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := slog.Default()

	handler := api.NewHandler(memory.NewMemory(), logger)
	if a.cfg.Scenario != "" {
		if err := handler.LoadScenarioByID(ctx, a.cfg.Scenario); err != nil {
			return fmt.Errorf("failed to load scenario: %w", err)
		}
	}

	server := &http.Server{
		Addr:         a.cfg.Addr(),
		Handler:      api.NewRouter(handler, a.cfg.HTTP.CORSOrigins),
		ReadTimeout:  a.cfg.HTTP.ReadTimeout,
		WriteTimeout: a.cfg.HTTP.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", "addr", server.Addr, "version", version)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		logger.Info("server stopped")
		return nil
	})
	return g.Wait()
}

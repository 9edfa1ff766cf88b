/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the attendance engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load TOML config (created with defaults on first run)
  2. Initialize SQLite store and run migrations
  3. Build the tracker and API handler
  4. Configure HTTP router
  5. Start server with graceful shutdown

COMMANDS:
  serve    Run the HTTP server with the background sweep
  sweep    Run one sweep pass over stale open days and exit

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the background sweeper
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with defaults (config created at ./attendance.toml)
  ./attendanced serve

  # Custom config location
  ./attendanced serve --config /etc/attendance/config.toml

  # One-shot sweep, e.g. from cron
  ./attendanced sweep

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Configuration file format
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/warp/attendance-engine/api"
	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/config"
	"github.com/warp/attendance-engine/store/sqlite"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "attendanced",
	Short: "Attendance tracking engine",
	Long: `attendanced records clock events from terminals and the web,
reconciles them into daily summaries, and maintains monthly overtime
balances with carryover.`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Close stale open days once and exit",
	Args:  cobra.NoArgs,
	RunE:  runSweep,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./attendance.toml", "path to config file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sweepCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup wires the store and tracker from config. The caller owns the
// returned store's lifetime.
func setup() (*config.Config, *sqlite.Store, *attendance.Tracker, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	tracker := attendance.NewTracker(store, store, attendance.Options{
		Holidays: store,
		Policy: attendance.ReconcilePolicy{
			CutoffHour:   cfg.Tracking.CutoffHour,
			CutoffMinute: cfg.Tracking.CutoffMinute,
		},
		MinReasonLength: cfg.Tracking.MinReasonLength,
	})
	return cfg, store, tracker, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, store, tracker, err := setup()
	if err != nil {
		return err
	}
	defer store.Close()

	handler := api.NewHandler(tracker, store)
	router := api.NewRouter(handler, api.RouterOptions{
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	sweeper := api.NewSweeper(tracker, store)
	sweeper.CheckInterval = cfg.SweepInterval()
	sweeper.Start()
	defer sweeper.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost:%d", cfg.Server.Port)
		log.Printf("API available at http://localhost:%d/api", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	_, store, tracker, err := setup()
	if err != nil {
		return err
	}
	defer store.Close()

	sweeper := api.NewSweeper(tracker, store)
	sweeper.RunNow()
	return nil
}

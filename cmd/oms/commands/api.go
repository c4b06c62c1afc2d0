package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantex/oms/internal/api"
	"github.com/quantex/oms/internal/api/handlers"
	"github.com/quantex/oms/internal/refdata"
	"github.com/quantex/oms/internal/resolution"
	"github.com/quantex/oms/internal/workflow"
	"github.com/quantex/oms/pkg/config"
	"github.com/quantex/oms/pkg/logger"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the order workflow API server",
	Long: `Starts the HTTP API over the order workflow engine.

Endpoints:
  GET  /health                  - Health check
  GET  /api/securities          - Security reference data
  GET  /api/algorithms          - Execution algorithm catalog
  GET  /api/workflow            - Workflow snapshot
  POST /api/workflow/draft      - Draft field edits
  POST /api/workflow/validate   - Trigger validation
  POST /api/workflow/respond    - Resolve a pending suggestion
  POST /api/workflow/new        - Start a new order
  GET  /ws                      - Snapshot stream (WebSocket)

Example:
  go run ./cmd/oms api
  go run ./cmd/oms api --port 8085`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if apiPort != "" {
		cfg.Port = apiPort
	}

	log := logger.New(cfg)

	store, err := refdata.Load(cfg.RefDataPath)
	if err != nil {
		return fmt.Errorf("load reference data: %w", err)
	}

	resolver := resolution.NewResolver(cfg.Resolver, store, log)
	if err := resolver.Start(cmd.Context()); err != nil {
		return fmt.Errorf("start resolver: %w", err)
	}
	defer resolver.Stop()

	engine := workflow.New(cfg.Workflow, store, resolver, log)

	hub := api.NewHub(engine, log)
	router := api.NewRouter(
		handlers.NewWorkflowHandler(engine, log),
		handlers.NewSecuritiesHandler(store, log),
		hub,
		log,
	)
	server := api.New(cfg, log, router)

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("Server running on http://localhost:%s (Ctrl+C to stop)\n", cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}

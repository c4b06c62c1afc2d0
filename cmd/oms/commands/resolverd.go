package commands

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantex/oms/internal/refdata"
	"github.com/quantex/oms/internal/resolversvc"
	"github.com/quantex/oms/pkg/config"
	"github.com/quantex/oms/pkg/logger"
)

// resolverdCmd runs the development stand-in for the remote resolver
// service, backed by the deterministic local resolver.
var resolverdCmd = &cobra.Command{
	Use:   "resolverd",
	Short: "Start the stand-in resolver service",
	Long: `Serves the resolver service contract locally:

  GET  /                   - Liveness probe
  POST /parse-trader-text  - Resolve instruction text
  POST /autocomplete       - Completion suggestions
  POST /parse-order        - Natural-language order parsing

Example:
  go run ./cmd/oms resolverd --port 8000`,
	RunE: runResolverd,
}

var resolverdPort string

func init() {
	rootCmd.AddCommand(resolverdCmd)

	resolverdCmd.Flags().StringVar(&resolverdPort, "port", "8000", "resolver service port")
}

func runResolverd(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	store, err := refdata.Load(cfg.RefDataPath)
	if err != nil {
		return fmt.Errorf("load reference data: %w", err)
	}

	svc := resolversvc.New(store, log)

	server := &http.Server{
		Addr:         ":" + resolverdPort,
		Handler:      svc.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	log.WithField("port", resolverdPort).Info("Starting resolver service")
	fmt.Printf("Resolver service on http://localhost:%s\n", resolverdPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start resolver service: %w", err)
	}

	return nil
}

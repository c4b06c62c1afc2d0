package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantex/oms/internal/refdata"
	"github.com/quantex/oms/internal/resolution"
	"github.com/quantex/oms/internal/workflow"
	"github.com/quantex/oms/pkg/config"
	"github.com/quantex/oms/pkg/logger"
)

// demoCmd runs a scripted operator session through the workflow engine
// and prints the resulting ticket. Useful for eyeballing the full path
// without the HTTP surface.
var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a scripted order session",
	RunE:  runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Compressed delays so the demo finishes in about a second.
	cfg.Workflow.DebounceWindow = 50 * time.Millisecond
	cfg.Workflow.StageDelay = 100 * time.Millisecond
	cfg.Workflow.AlgoConfirmDelay = 100 * time.Millisecond
	cfg.Workflow.SummaryDelay = 100 * time.Millisecond
	cfg.Resolver.Enabled = false // local resolution only

	log := logger.New(cfg)

	store, err := refdata.Load(cfg.RefDataPath)
	if err != nil {
		return fmt.Errorf("load reference data: %w", err)
	}

	resolver := resolution.NewResolver(cfg.Resolver, store, log)
	engine := workflow.New(cfg.Workflow, store, resolver, log)

	fmt.Println("=== Scripted session: AAPL 100 DAY with VWAP instructions ===")

	if err := engine.SetSecurity("AAPL"); err != nil {
		return err
	}
	if err := engine.SetQuantity("100"); err != nil {
		return err
	}
	if err := engine.SetInstructions("VWAP Market Close on all auctions"); err != nil {
		return err
	}

	// Let the debounce window elapse and the resolution land.
	time.Sleep(4 * cfg.Workflow.DebounceWindow)

	if err := engine.SubmitForValidation(); err != nil {
		return err
	}

	// Wait for the auto-advance to reach the market checkpoint.
	waitFor(engine, func(s workflow.Snapshot) bool { return s.Suggestion != nil })

	snap := engine.Snapshot()
	fmt.Printf("Checkpoint: %s (algo %s)\n", snap.Suggestion.Kind, snap.Suggestion.AlgoID)

	if err := engine.AcceptAlgorithm(); err != nil {
		return err
	}

	waitFor(engine, func(s workflow.Snapshot) bool { return s.Ticket != nil })

	snap = engine.Snapshot()
	fmt.Println()
	fmt.Print(snap.Ticket.String())
	fmt.Println()
	fmt.Println("Session log:")
	for _, ev := range snap.Events {
		fmt.Printf("  %s  %s\n", ev.At.Format("15:04:05.000"), ev.Message)
	}

	return nil
}

// waitFor polls the engine until cond holds or a deadline passes.
func waitFor(engine *workflow.Engine, cond func(workflow.Snapshot) bool) {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond(engine.Snapshot()) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
}

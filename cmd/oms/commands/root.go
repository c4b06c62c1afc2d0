package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "oms",
	Short: "Order workflow service with human-in-the-loop checkpoints",
	Long: `OMS drafts, validates and routes securities trading orders,
halting for operator confirmation whenever an automated decision cannot
be made with certainty.

Usage:
  go run ./cmd/oms [command]

Examples:
  go run ./cmd/oms api
  go run ./cmd/oms resolverd
  go run ./cmd/oms demo`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

package main

import (
	"os"

	"github.com/quantex/oms/cmd/oms/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

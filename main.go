package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/qwirky-yuzu/custom-sim-example/benchmarks"
)

// main entry point to all the experiments
func main() {
	rootCommand := benchmarks.GetRootCommand()
	if err := rootCommand.Execute(); err != nil {
		log.Error("command failed", "err", err)
		os.Exit(1)
	}
}

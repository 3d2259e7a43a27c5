package main

import (
	"os"

	"github.com/wonny/alphalab/cmd/alphalab/commands"
)

// main is the entry point for the AlphaLab CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

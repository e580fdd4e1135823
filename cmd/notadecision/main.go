// Package main is the entry point for the notadecision CLI.
package main

import (
	"os"

	"github.com/jmylchreest/notadecision/cmd/notadecision/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

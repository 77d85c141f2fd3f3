// Package main is the entry point for the leadmate CLI.
package main

import (
	"os"

	"github.com/leadmate/leadmate/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

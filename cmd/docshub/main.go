// Package main provides the entry point for the docshub CLI.
package main

import (
	"os"

	"github.com/unifieddocs/docshub/cmd/docshub/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

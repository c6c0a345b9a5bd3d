// Package main provides the entry point for the pack CLI.
package main

import (
	"fmt"
	"os"

	"github.com/lane-core/pack/cmd/pack/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

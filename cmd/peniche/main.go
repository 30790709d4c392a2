// Package main provides the peniche CLI, a manager for multi-crate
// workspaces: member crates, the dependency links between them, and the
// scripts declared alongside the workspace manifest.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUserError)
	}
}

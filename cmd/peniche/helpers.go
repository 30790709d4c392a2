// Shared helpers for peniche CLI commands.
package main

import (
	"fmt"
	"os"

	"github.com/kochmaxence/peniche/internal/logsink"
	"github.com/kochmaxence/peniche/internal/workspace"
	"github.com/kochmaxence/peniche/pkg/types"
)

// openWorkspace locates the enclosing workspace from the current
// directory. Exits with a user error when none is found.
func openWorkspace() *workspace.Workspace {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(os.Stderr, "peniche:", err)
		os.Exit(exitSysError)
	}
	w, err := workspace.Load(cwd)
	if err != nil {
		fmt.Fprintln(os.Stderr, "peniche:", err)
		os.Exit(exitUserError)
	}
	return w
}

// colorEnabled resolves the configured color mode against the terminal.
func colorEnabled() bool {
	switch cfg.Color {
	case types.ColorAlways:
		return true
	case types.ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	info, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// newSink builds the console sink used by the run command.
func newSink() logsink.Sink {
	return logsink.NewConsole(os.Stdout, os.Stderr, colorEnabled())
}

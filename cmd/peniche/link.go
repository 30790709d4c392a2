// Link command declares dependencies between member crates.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kochmaxence/peniche/pkg/types"
)

var linkWithVersion bool

var linkCmd = &cobra.Command{
	Use:     "link <source> <target>",
	Aliases: []string{"ln"},
	Short:   "Make one crate depend on another",
	Long: `Link writes a path dependency on target into source's manifest and
records the edge in the dependency graph. Links that would create a cycle
are refused before anything is written. With --version (or link.constraint
set to "version" in config.yaml) the entry also carries the target's
current version.

Example:
  peniche link cli core
  peniche link cli core --version`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		withVersion := linkWithVersion || cfg.Link.Constraint == types.ConstraintVersion

		w := openWorkspace()
		if err := w.Link(args[0], args[1], withVersion); err != nil {
			return fmt.Errorf("link %s -> %s: %w", args[0], args[1], err)
		}
		fmt.Printf("Linked %s -> %s\n", args[0], args[1])
		return nil
	},
}

var unlinkCmd = &cobra.Command{
	Use:   "unlink <source> <target>",
	Short: "Remove a dependency between member crates",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := openWorkspace()
		if err := w.Unlink(args[0], args[1]); err != nil {
			return fmt.Errorf("unlink %s -> %s: %w", args[0], args[1], err)
		}
		fmt.Printf("Unlinked %s -> %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	linkCmd.Flags().BoolVar(&linkWithVersion, "version", false, "record the target's version alongside the path")
}

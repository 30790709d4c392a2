// List command prints the workspace members and their links.
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List member crates and their dependencies",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := openWorkspace()
		for _, name := range w.CrateNames() {
			crate := w.Crates[name]
			var deps []string
			for _, dep := range crate.Dependencies {
				if _, member := w.Crates[dep.Name]; member {
					deps = append(deps, dep.Name)
				}
			}
			line := fmt.Sprintf("%s (%s) %s", name, crate.Kind, crate.Version)
			if len(deps) > 0 {
				line += " -> " + strings.Join(deps, ", ")
			}
			fmt.Println(line)
		}
		return nil
	},
}

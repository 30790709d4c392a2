// Info command summarizes the workspace.
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kochmaxence/peniche/internal/script"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show workspace details",
	Long: `Info prints the workspace root, its members in dependency order
(dependents before the crates they depend on), and the scripts declared in
Peniche.toml.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := openWorkspace()

		fmt.Println("workspace:", w.Name)
		fmt.Println("root:     ", w.Root)
		fmt.Printf("members:   %d\n", len(w.Members))

		order, err := w.Graph.TopologicalOrder()
		if err != nil {
			return fmt.Errorf("order members: %w", err)
		}
		if len(order) > 0 {
			fmt.Println("order:    ", strings.Join(order, ", "))
		}

		reg, err := script.Load(w.Root)
		if err != nil {
			return fmt.Errorf("load scripts: %w", err)
		}
		if names := reg.Names(); len(names) > 0 {
			fmt.Println("scripts:  ", strings.Join(names, ", "))
		}
		return nil
	},
}

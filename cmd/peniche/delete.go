// Delete command removes member crates from the workspace.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kochmaxence/peniche/pkg/types"
)

var (
	deleteForce bool
	deleteRmdir bool
)

var deleteCmd = &cobra.Command{
	Use:     "delete <name>...",
	Aliases: []string{"rm"},
	Short:   "Remove member crates",
	Long: `Delete unregisters crates from the workspace. A crate that other
members still depend on is refused unless --force, which also removes the
incoming dependency entries from the dependents' manifests. The crate
directory stays on disk unless --rmdir.

Example:
  peniche delete scratch --rmdir
  peniche delete core --force`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := openWorkspace()
		for _, name := range args {
			if err := w.DeleteCrate(name, deleteForce, deleteRmdir); err != nil {
				if errors.Is(err, types.ErrHasDependents) {
					fmt.Fprintf(os.Stderr, "delete: %s (use --force to remove the links)\n", err)
					os.Exit(exitUserError)
				}
				return fmt.Errorf("delete crate %s: %w", name, err)
			}
			fmt.Printf("Deleted crate %s\n", name)
		}
		return nil
	},
}

func init() {
	deleteCmd.Flags().BoolVar(&deleteForce, "force", false, "remove the crate even when other members depend on it")
	deleteCmd.Flags().BoolVar(&deleteRmdir, "rmdir", false, "also delete the crate directory")
}

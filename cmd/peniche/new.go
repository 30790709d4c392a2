// New command adds member crates to the workspace.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kochmaxence/peniche/pkg/types"
)

var (
	newLib bool
	newBin bool
)

var newCmd = &cobra.Command{
	Use:   "new <name>...",
	Short: "Create member crates",
	Long: `New creates one or more member crates: a directory with a crate
manifest and a scaffold source file, registered in the root manifest's
members list. Crates are binaries unless --lib is given.

Example:
  peniche new core --lib
  peniche new cli worker`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if newLib && newBin {
			fmt.Fprintln(os.Stderr, "new: --lib and --bin are mutually exclusive")
			os.Exit(exitUserError)
		}
		kind := types.KindBin
		if newLib {
			kind = types.KindLib
		}

		w := openWorkspace()
		for _, name := range args {
			if err := w.NewCrate(name, kind); err != nil {
				return fmt.Errorf("new crate %s: %w", name, err)
			}
			fmt.Printf("Created %s crate %s\n", kind, name)
		}
		return nil
	},
}

func init() {
	newCmd.Flags().BoolVar(&newLib, "lib", false, "create library crates")
	newCmd.Flags().BoolVar(&newBin, "bin", false, "create binary crates (default)")
}

// Init command creates a new workspace.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kochmaxence/peniche/internal/workspace"
)

var initPath string

var initCmd = &cobra.Command{
	Use:   "init <name>",
	Short: "Create a new workspace",
	Long: `Init creates a workspace directory with a root manifest declaring an
empty members list. The directory is named after the workspace unless
--path points elsewhere.

Example:
  peniche init shipyard
  peniche init shipyard --path ~/src/shipyard`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		path := initPath
		if path == "" {
			cwd, err := os.Getwd()
			if err != nil {
				fmt.Fprintln(os.Stderr, "init:", err)
				os.Exit(exitSysError)
			}
			path = filepath.Join(cwd, name)
		}

		w, err := workspace.Init(name, path)
		if err != nil {
			return fmt.Errorf("init workspace: %w", err)
		}
		fmt.Printf("Created workspace %s at %s\n", w.Name, w.Root)
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initPath, "path", "", "workspace directory (default: ./<name>)")
}

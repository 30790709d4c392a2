// Version command for the peniche CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kochmaxence/peniche/pkg/peniche"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the peniche version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("peniche", peniche.Version)
	},
}

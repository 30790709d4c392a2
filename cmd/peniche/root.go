// Root command for the peniche CLI.
package main

import (
	"github.com/spf13/cobra"
)

// Exit codes: user errors (bad arguments, workspace invariant violations)
// exit 1, system errors (I/O, config) exit 2. Script failures surface the
// aggregate exit code computed by the runner.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// Global flag values.
var (
	flagConfigDir string
	flagColor     string
)

// cfg holds the merged configuration. Set by PersistentPreRunE so all
// subcommands can use it.
var cfg = defaultConfig()

var rootCmd = &cobra.Command{
	Use:   "peniche",
	Short: "Peniche manages multi-crate workspaces",
	Long: `Peniche manages multi-crate workspaces: it creates and deletes member
crates, maintains the dependency links between them, and runs the scripts
declared in Peniche.toml next to the workspace manifest.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig(flagConfigDir)
		if err != nil {
			return err
		}
		if flagColor != "" {
			loaded.Color = flagColor
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: $PENICHE_CONFIG_DIR or the user config dir)")
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "", "color output: auto, always, never")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(unlinkCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(runCmd)
}

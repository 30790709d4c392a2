// Run command executes scripts declared in Peniche.toml.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kochmaxence/peniche/internal/runner"
	"github.com/kochmaxence/peniche/internal/script"
)

var (
	runParallel        bool
	runContinueOnError bool
	runTimeout         time.Duration
	runList            bool
)

var runCmd = &cobra.Command{
	Use:     "run <script>...",
	Aliases: []string{"r"},
	Short:   "Run workspace scripts",
	Long: `Run executes the named scripts from Peniche.toml. Scripts run one
after another and the first failure stops the batch; --parallel runs them
all at once, and --continue-on-error keeps a sequential batch going past
failures. When every selected script declares mode = "parallel" the batch
is parallel without the flag.

The command exits with the failing script's exit code, or 1 when a script
crashed or could not be started.

Example:
  peniche run build
  peniche run fmt lint test
  peniche run serve watch --parallel --timeout 2m`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := openWorkspace()
		reg, err := script.Load(w.Root)
		if err != nil {
			return fmt.Errorf("load scripts: %w", err)
		}

		if runList {
			for _, name := range reg.Names() {
				fmt.Println(name)
			}
			return nil
		}
		if len(args) == 0 {
			fmt.Fprintln(os.Stderr, "run: no script named (use --list to see what is available)")
			os.Exit(exitUserError)
		}

		specs, err := reg.Resolve(args)
		if err != nil {
			return fmt.Errorf("resolve scripts: %w", err)
		}

		opts := runner.Options{
			Parallel:        runParallel || cfg.Run.Parallel || reg.AllParallel(args),
			ContinueOnError: runContinueOnError || cfg.Run.ContinueOnError,
			Timeout:         runTimeout,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		result, err := runner.New(newSink()).Run(ctx, specs, opts)
		if err != nil {
			return fmt.Errorf("run scripts: %w", err)
		}
		if code := result.ExitCode(); code != exitSuccess {
			os.Exit(code)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&runParallel, "parallel", false, "run the scripts concurrently")
	runCmd.Flags().BoolVar(&runContinueOnError, "continue-on-error", false, "keep a sequential batch going after a failure")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "abort scripts still running after this duration")
	runCmd.Flags().BoolVar(&runList, "list", false, "list the declared scripts and exit")
}

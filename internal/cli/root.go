package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/gpuvenv/gpuvenv/pkg/buildinfo"
)

// Execute runs the gpuvenv CLI and returns an error if any command fails.
// This is the main entry point for the CLI application.
//
// The function sets up the root command with all subcommands (up, check,
// clean, freeze), configures logging based on the --verbose flag, and
// executes the command tree.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands
// via loggerFromContext.
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:          "gpuvenv",
		Short:        "gpuvenv provisions CUDA-enabled Python environments",
		Long: `gpuvenv provisions an isolated Python environment for GPU-accelerated
facial detection: it pins the interpreter through pyenv, installs the
native build toolchain, recreates the virtual environment from scratch,
installs the dependency manifest, and compiles dlib from source with
CUDA enabled before installing face_recognition on top.

The pipeline is ordered and fail-fast: the first failing step aborts the
run, and re-running after a fix starts over from a clean environment.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newUpCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newCleanCmd())
	root.AddCommand(newFreezeCmd())
	root.AddCommand(newCompletionCmd())

	return root.ExecuteContext(ctx)
}

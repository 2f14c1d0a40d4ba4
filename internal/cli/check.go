package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/gpuvenv/gpuvenv/pkg/errors"
	"github.com/gpuvenv/gpuvenv/pkg/pipeline"
)

// newCheckCmd creates the check command, a read-only host readiness
// report.
func newCheckCmd() *cobra.Command {
	var (
		configPath string
		profile    string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report host readiness without changing anything",
		Long: `Check verifies the provisioning preconditions and reports them:
whether pyenv is on PATH, whether the target interpreter version is
installed, whether the dependency manifest exists, and whether an
environment is already present. Nothing is modified.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			opts, err := resolveOptions(configPath, profile, false)
			if err != nil {
				printError("%s", errors.UserMessage(err))
				return err
			}
			opts.Logger = loggerFromContext(ctx)

			runner, err := pipeline.NewRunner(*opts)
			if err != nil {
				return err
			}

			report, err := runner.CheckPreflight(ctx)
			if err != nil {
				if errors.Is(err, errors.ErrCodeMissingTool) {
					printMissingPyenv()
					return err
				}
				printError("%s", errors.UserMessage(err))
				return err
			}

			printKeyValue("pyenv", report.PyenvPath)
			printInfo("%s interpreter %s installed", checkMark(report.VersionInstalled), opts.PythonVersion)
			printInfo("%s manifest %s present", checkMark(report.ManifestPresent), opts.Manifest)

			env := runner.Env()
			_, statErr := os.Stat(env.Root)
			printInfo("%s environment at %s", checkMark(statErr == nil), env.Root)

			if !report.VersionInstalled {
				printNewline()
				printNextStep("Install the interpreter with", "pyenv install "+opts.PythonVersion)
				return errors.New(errors.ErrCodeInvalidVersion,
					"interpreter %s is not installed in pyenv", opts.PythonVersion)
			}
			if !report.ManifestPresent {
				return errors.New(errors.ErrCodeManifestMissing,
					"dependency manifest %s not found", opts.Manifest)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file (default ./gpuvenv.toml)")
	cmd.Flags().StringVarP(&profile, "profile", "p", "", "provisioning profile to use")

	return cmd
}

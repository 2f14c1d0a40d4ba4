package cli

import (
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/gpuvenv/gpuvenv/internal/config"
	"github.com/gpuvenv/gpuvenv/pkg/errors"
	"github.com/gpuvenv/gpuvenv/pkg/execx"
	"github.com/gpuvenv/gpuvenv/pkg/observability"
	"github.com/gpuvenv/gpuvenv/pkg/pipeline"
)

// newUpCmd creates the up command, which runs the full provisioning
// pipeline.
func newUpCmd() *cobra.Command {
	var (
		configPath string
		profile    string
		choose     bool
		dryRun     bool
		python     string
		purpose    string
		envDir     string
		manifest   string
	)

	cmd := &cobra.Command{
		Use:   "up",
		Short: "Provision the CUDA-enabled Python environment",
		Long: `Up runs the full provisioning pipeline: verify pyenv, pin the
interpreter, install native build prerequisites, recreate the isolated
environment, install the dependency manifest, and build dlib from source
with CUDA enabled before installing face_recognition.

Any existing environment directory is destroyed first. The pipeline is
fail-fast: the first failing step aborts the run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			interactive := choose || isatty.IsTerminal(os.Stdout.Fd())
			opts, err := resolveOptions(configPath, profile, interactive)
			if err != nil {
				printError("%s", errors.UserMessage(err))
				return err
			}
			if opts == nil {
				printInfo("no profile selected")
				return nil
			}

			// Flag overrides beat the profile.
			if python != "" {
				opts.PythonVersion = python
			}
			if purpose != "" {
				opts.Purpose = purpose
			}
			if envDir != "" {
				opts.EnvDir = envDir
			}
			if manifest != "" {
				opts.Manifest = manifest
			}
			opts.DryRun = dryRun
			opts.Logger = logger

			// In verbose mode, stream the tools' own output so long
			// native builds stay visible.
			if logger.GetLevel() <= charmlog.DebugLevel {
				osr := execx.NewOSRunner()
				osr.Stdout = cmd.ErrOrStderr()
				osr.Stderr = cmd.ErrOrStderr()
				opts.Runner = osr
			}

			runner, err := pipeline.NewRunner(*opts)
			if err != nil {
				return err
			}

			// The spinner animates with carriage returns, so it only
			// runs on a real terminal; verbose mode gets logs only
			// since streamed tool output would fight it for the line.
			if !dryRun && logger.GetLevel() > charmlog.DebugLevel && isatty.IsTerminal(os.Stderr.Fd()) {
				observability.SetStepHooks(&stepSpinnerHooks{})
			}

			prog := newProgress(logger)
			result, err := runner.Execute(ctx)
			if err != nil {
				reportFailure(result, err)
				return err
			}

			if dryRun {
				printPlan(result.Plan)
				return nil
			}

			printRunSummary(result)
			prog.done("Provisioning finished")
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file (default ./"+config.DefaultFileName+")")
	cmd.Flags().StringVarP(&profile, "profile", "p", "", "provisioning profile to use")
	cmd.Flags().BoolVar(&choose, "choose", false, "pick the profile interactively")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "print the command plan without executing")
	cmd.Flags().StringVar(&python, "python", "", "override the interpreter version")
	cmd.Flags().StringVar(&purpose, "purpose", "", "override the environment's purpose label")
	cmd.Flags().StringVar(&envDir, "env-dir", "", "override the environment directory")
	cmd.Flags().StringVar(&manifest, "manifest", "", "override the dependency manifest")

	return cmd
}

// resolveOptions loads the config file and resolves the requested
// profile into pipeline options. Only interactive callers may get a
// picker; for them a nil result with a nil error means the user backed
// out. Non-interactive callers always receive a non-nil result or an
// error.
func resolveOptions(configPath, profile string, interactive bool) (*pipeline.Options, error) {
	var (
		f   *config.File
		err error
	)
	if configPath != "" {
		f, err = config.Load(configPath)
	} else {
		f, err = config.LoadDir(".")
	}
	if err != nil {
		return nil, err
	}

	// With several profiles and none named, offer the picker;
	// non-interactive resolution falls through to the default.
	if profile == "" && interactive && len(f.Profiles) > 1 {
		profile, err = pickProfile(f)
		if err != nil {
			return nil, err
		}
		if profile == "" {
			return nil, nil
		}
	}

	p, err := f.Select(profile)
	if err != nil {
		return nil, err
	}
	opts := p.PipelineOptions()
	return &opts, nil
}

// reportFailure prints the user-facing diagnostic for a failed run.
// The per-step lines were already printed live by the spinner hooks.
func reportFailure(result *pipeline.Result, err error) {
	printNewline()
	if errors.Is(err, errors.ErrCodeMissingTool) {
		printMissingPyenv()
		return
	}
	printError("%s", errors.UserMessage(err))
	if result != nil && result.FailedStep != "" {
		printDetail("failed during the %s step; fix the cause and re-run", result.FailedStep)
	}
}

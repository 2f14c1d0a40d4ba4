package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/gpuvenv/gpuvenv/pkg/apt"
	"github.com/gpuvenv/gpuvenv/pkg/errors"
	"github.com/gpuvenv/gpuvenv/pkg/execx"
	"github.com/gpuvenv/gpuvenv/pkg/observability"
	"github.com/gpuvenv/gpuvenv/pkg/pip"
	"github.com/gpuvenv/gpuvenv/pkg/pyenv"
	"github.com/gpuvenv/gpuvenv/pkg/pyversion"
	"github.com/gpuvenv/gpuvenv/pkg/venv"
)

// StepResult is the outcome of a single pipeline step.
type StepResult struct {
	Name     string
	Duration time.Duration
	Err      error
}

// Result is the outcome of a provisioning run.
type Result struct {
	// RunID uniquely identifies this run in logs and hook events.
	RunID string

	// Purpose is the run's configured label, echoed for reporting.
	Purpose string

	// Env holds the resolved paths of the provisioned environment.
	Env venv.Env

	// Steps records the executed steps in order. On failure the last
	// entry is the step that aborted the run; later steps never ran.
	Steps []StepResult

	// FailedStep names the aborting step, empty on success.
	FailedStep string

	// RemovedPrevious reports whether a previous environment directory
	// was destroyed during the environment step.
	RemovedPrevious bool

	// Interpreter is the version pyenv resolved after pinning.
	// Zero-valued in dry-run mode.
	Interpreter pyversion.Version

	// Plan holds the recorded command lines in dry-run mode.
	Plan []string

	// Duration is the total wall-clock time of the run.
	Duration time.Duration
}

// Runner executes the provisioning pipeline.
type Runner struct {
	opts   Options
	logger *log.Logger
	exec   execx.Runner
	plan   *execx.PlanRunner

	pyenv *pyenv.Client
	venvs *venv.Manager
	pips  *pip.Installer
	apts  *apt.Installer
	env   venv.Env
}

// NewRunner creates a pipeline runner from the given options.
func NewRunner(opts Options) (*Runner, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	exec := execx.Runner(&hookRunner{inner: opts.Runner})
	var plan *execx.PlanRunner
	if opts.DryRun {
		plan = &execx.PlanRunner{Inner: opts.Runner}
		exec = plan
	}

	env := venv.At(opts.WorkDir, opts.EnvDir)
	return &Runner{
		opts:   opts,
		logger: opts.Logger,
		exec:   exec,
		plan:   plan,
		pyenv:  pyenv.New(exec),
		venvs:  venv.NewManager(exec),
		pips:   pip.New(exec, env, opts.WorkDir),
		apts:   apt.New(exec),
		env:    env,
	}, nil
}

// Env returns the resolved environment paths for the configured options.
func (r *Runner) Env() venv.Env {
	return r.env
}

type step struct {
	name string
	fn   func(context.Context, *Result) error
}

func (r *Runner) steps() []step {
	return []step{
		{StepPreflight, r.preflight},
		{StepInterpreter, r.interpreter},
		{StepPrerequisites, r.prerequisites},
		{StepEnvironment, r.environment},
		{StepDependencies, r.dependencies},
		{StepNativeBuild, r.nativeBuild},
	}
}

// Execute runs the pipeline steps in order, stopping at the first
// failure. The returned Result is valid even when err is non-nil: it
// records how far the run got and which step aborted it.
func (r *Runner) Execute(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{
		RunID:   uuid.NewString(),
		Purpose: r.opts.Purpose,
		Env:     r.env,
	}

	r.logger.Info("provisioning environment",
		"run_id", result.RunID,
		"purpose", r.opts.Purpose,
		"python", r.opts.PythonVersion,
		"env", r.env.Root,
		"dry_run", r.opts.DryRun)
	observability.Steps().OnRunStart(ctx, result.RunID, r.opts.Purpose)

	var runErr error
	for _, s := range r.steps() {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		r.logger.Info("step starting", "step", s.name)
		observability.Steps().OnStepStart(ctx, result.RunID, s.name)

		stepStart := time.Now()
		err := s.fn(ctx, result)
		elapsed := time.Since(stepStart)

		result.Steps = append(result.Steps, StepResult{Name: s.name, Duration: elapsed, Err: err})
		observability.Steps().OnStepComplete(ctx, result.RunID, s.name, elapsed, err)

		if err != nil {
			result.FailedStep = s.name
			r.logger.Error("step failed", "step", s.name, "duration", elapsed, "error", err)
			runErr = fmt.Errorf("step %s: %w", s.name, err)
			break
		}
		r.logger.Info("step complete", "step", s.name, "duration", elapsed)
	}

	if r.plan != nil {
		result.Plan = r.plan.Plan()
	}
	result.Duration = time.Since(start)
	observability.Steps().OnRunComplete(ctx, result.RunID, result.Duration, runErr)

	if runErr == nil {
		r.logger.Info("environment ready",
			"run_id", result.RunID,
			"env", r.env.Root,
			"duration", result.Duration)
	}
	return result, runErr
}

// preflight checks that pyenv is present. This runs against the real
// host even in dry-run mode: a plan for a machine without pyenv would
// be fiction.
func (r *Runner) preflight(_ context.Context, _ *Result) error {
	path, err := r.pyenv.Installed()
	if err != nil {
		return err
	}
	r.logger.Debug("pyenv resolved", "path", path)
	return nil
}

// interpreter pins the target version for the working directory and
// reads back what pyenv resolved.
func (r *Runner) interpreter(ctx context.Context, result *Result) error {
	if err := r.pyenv.PinLocal(ctx, r.opts.WorkDir, r.opts.PythonVersion); err != nil {
		return err
	}
	if r.opts.DryRun {
		return nil
	}
	v, err := r.pyenv.ActiveVersion(ctx, r.opts.WorkDir)
	if err != nil {
		return err
	}
	result.Interpreter = v
	r.logger.Info("interpreter pinned", "version", v.String())
	return nil
}

func (r *Runner) prerequisites(ctx context.Context, _ *Result) error {
	if err := r.apts.Update(ctx); err != nil {
		return err
	}
	return r.apts.Install(ctx, r.opts.AptPackages)
}

// environment destroys any previous environment directory and creates a
// fresh one. In dry-run mode only the create command is planned; the
// removal is a direct filesystem operation and is never simulated
// against the real directory.
func (r *Runner) environment(ctx context.Context, result *Result) error {
	if r.opts.DryRun {
		if r.venvs.Exists(r.env) {
			r.logger.Info("would remove previous environment", "path", r.env.Root)
		}
		_, err := r.exec.Run(ctx, venv.CreateSpec(r.opts.WorkDir, r.env))
		return err
	}

	removed, err := r.venvs.Reset(ctx, r.opts.WorkDir, r.env)
	if err != nil {
		return err
	}
	result.RemovedPrevious = removed
	if removed {
		r.logger.Info("removed previous environment", "path", r.env.Root)
	}
	return nil
}

func (r *Runner) dependencies(ctx context.Context, _ *Result) error {
	if err := r.pips.SelfUpgrade(ctx); err != nil {
		return err
	}
	return r.pips.InstallRequirements(ctx, r.opts.Manifest)
}

// nativeBuild compiles the native library from source with the
// configured defines, then installs the dependent package on top. The
// order matters: installing the dependent first would pull in the
// library's prebuilt CPU-only wheel.
func (r *Runner) nativeBuild(ctx context.Context, _ *Result) error {
	r.logger.Info("building native library from source; this can take a while",
		"package", r.opts.NativePackage)
	if err := r.pips.BuildFromSource(ctx, r.opts.NativePackage, r.opts.BuildDefines); err != nil {
		return err
	}
	if r.opts.DependentPackage == "" {
		return nil
	}
	return r.pips.Install(ctx, r.opts.DependentPackage)
}

// PreflightReport is the outcome of the read-only host checks.
type PreflightReport struct {
	PyenvPath        string
	VersionInstalled bool
	ManifestPresent  bool
}

// CheckPreflight reports host readiness without changing anything.
func (r *Runner) CheckPreflight(ctx context.Context) (*PreflightReport, error) {
	path, err := r.pyenv.Installed()
	if err != nil {
		return nil, err
	}
	has, err := r.pyenv.HasVersion(ctx, r.opts.PythonVersion)
	if err != nil {
		return nil, err
	}
	return &PreflightReport{
		PyenvPath:        path,
		VersionInstalled: has,
		ManifestPresent:  manifestExists(r.opts.WorkDir, r.opts.Manifest),
	}, nil
}

// Freeze reports the installed package specifiers of the provisioned
// environment.
func (r *Runner) Freeze(ctx context.Context) ([]string, error) {
	if !r.venvs.Exists(r.env) {
		return nil, errors.New(errors.ErrCodeEnvReset,
			"no environment at %s; run provisioning first", r.env.Root)
	}
	return r.pips.Freeze(ctx)
}

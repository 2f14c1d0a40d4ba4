// Package pipeline implements the ordered, fail-fast provisioning
// pipeline for a CUDA-enabled facial-detection environment.
//
// # Architecture
//
// The pipeline is a fixed sequence of six steps:
//
//  1. Preflight: the pyenv version manager must be on PATH
//  2. Interpreter: pin the target CPython for the working directory
//  3. Prerequisites: install the native build toolchain via apt
//  4. Environment: destroy and recreate the isolated environment
//  5. Dependencies: upgrade pip, install the dependency manifest
//  6. Native build: compile dlib from source with CUDA enabled, then
//     install face_recognition on top of it
//
// Each step's success is a precondition for the next: the first failure
// aborts the run, nothing is retried, and already-completed steps are
// not rolled back (beyond the environment reset step 4 itself performs
// on the next run). Execution state is carried in an explicit Result
// rather than process-wide "activation": the environment's interpreter
// and installer are addressed by path.
//
// # Usage
//
//	runner, err := pipeline.NewRunner(pipeline.Options{Purpose: "monitoring"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := runner.Execute(ctx)
//	if err != nil {
//	    log.Fatal(err) // result.FailedStep names the step
//	}
package pipeline

import (
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/gpuvenv/gpuvenv/pkg/apt"
	"github.com/gpuvenv/gpuvenv/pkg/errors"
	"github.com/gpuvenv/gpuvenv/pkg/execx"
)

// Step names, in execution order.
const (
	StepPreflight     = "preflight"
	StepInterpreter   = "interpreter"
	StepPrerequisites = "prerequisites"
	StepEnvironment   = "environment"
	StepDependencies  = "dependencies"
	StepNativeBuild   = "native-build"
)

// StepOrder is the fixed execution order of the pipeline.
var StepOrder = []string{
	StepPreflight,
	StepInterpreter,
	StepPrerequisites,
	StepEnvironment,
	StepDependencies,
	StepNativeBuild,
}

// Defaults for the provisioning options. These mirror the environment
// the face-detection stack was developed against.
const (
	DefaultPythonVersion    = "3.11.9"
	DefaultEnvDir           = ".venv"
	DefaultManifest         = "requirements.txt"
	DefaultNativePackage    = "dlib"
	DefaultDependentPackage = "face_recognition"
	DefaultPurpose          = "development environment"
)

// DefaultBuildDefines enables CUDA in the native build. The prebuilt
// dlib wheel ships without GPU support, which is why the build is
// forced from source in the first place.
func DefaultBuildDefines() map[string]string {
	return map[string]string{"DLIB_USE_CUDA": "1"}
}

// Options contains all configuration for one provisioning run.
type Options struct {
	// Purpose is a human-readable label for what the environment is
	// for (e.g. "doorcam monitoring", "GPU benchmarking testbed").
	// The label changes nothing about the command sequence.
	Purpose string

	// PythonVersion is the interpreter version pyenv pins locally.
	// It must already be installed in pyenv.
	PythonVersion string

	// EnvDir is the isolated environment directory, resolved against
	// WorkDir when relative.
	EnvDir string

	// Manifest is the dependency manifest handed to pip verbatim.
	Manifest string

	// AptPackages overrides the native prerequisite set.
	AptPackages []string

	// NativePackage is the CUDA-capable library built from source.
	NativePackage string

	// BuildDefines are CMake defines passed to the native build.
	BuildDefines map[string]string

	// DependentPackage is installed only after the native build
	// succeeds, so it resolves against the GPU-enabled library
	// instead of pulling in its CPU-only default.
	DependentPackage string

	// WorkDir is the project directory; defaults to the current one.
	WorkDir string

	// DryRun records the command plan without executing anything.
	DryRun bool

	// Runtime collaborators (not configuration).
	Logger *log.Logger
	Runner execx.Runner

	validated bool
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Purpose == "" {
		o.Purpose = DefaultPurpose
	}
	if o.PythonVersion == "" {
		o.PythonVersion = DefaultPythonVersion
	}
	if o.EnvDir == "" {
		o.EnvDir = DefaultEnvDir
	}
	if o.Manifest == "" {
		o.Manifest = DefaultManifest
	}
	if len(o.AptPackages) == 0 {
		o.AptPackages = append([]string(nil), apt.BuildPackages...)
	}
	if o.NativePackage == "" {
		o.NativePackage = DefaultNativePackage
	}
	if o.BuildDefines == nil {
		o.BuildDefines = DefaultBuildDefines()
	}
	if o.DependentPackage == "" {
		o.DependentPackage = DefaultDependentPackage
	}
	if o.WorkDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "resolving working directory")
		}
		o.WorkDir = wd
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Runner == nil {
		o.Runner = execx.NewOSRunner()
	}
	o.validated = true
	return nil
}

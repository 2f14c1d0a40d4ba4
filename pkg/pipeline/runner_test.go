package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gpuvenv/gpuvenv/pkg/errors"
	"github.com/gpuvenv/gpuvenv/pkg/execx"
)

func newTestRunner(t *testing.T, fake *execx.Fake, mutate func(*Options)) *Runner {
	t.Helper()
	opts := Options{
		Purpose: "doorcam monitoring",
		WorkDir: t.TempDir(),
		Runner:  fake,
	}
	if mutate != nil {
		mutate(&opts)
	}
	r, err := NewRunner(opts)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	return r
}

func TestExecuteRunsCommandsInOrder(t *testing.T) {
	fake := execx.NewFake()
	fake.Respond("version-name", "3.11.9\n")
	r := newTestRunner(t, fake, nil)

	result, err := r.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	want := []string{
		"pyenv local 3.11.9",
		"pyenv version-name",
		"sudo apt-get update",
		"sudo apt-get install -y build-essential cmake libopenblas-dev liblapack-dev libjpeg-dev git",
		"python -m venv " + r.Env().Root,
		r.Env().Pip + " install --upgrade pip",
		r.Env().Pip + " install -r requirements.txt",
		r.Env().Pip + " install --no-cache-dir --no-binary :all: --config-settings=cmake.define.DLIB_USE_CUDA=1 dlib",
		r.Env().Pip + " install face_recognition",
	}
	got := fake.Lines()
	if len(got) != len(want) {
		t.Fatalf("ran %d commands, want %d:\n%s", len(got), len(want), strings.Join(got, "\n"))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("command %d = %q, want %q", i, got[i], want[i])
		}
	}

	if result.FailedStep != "" {
		t.Errorf("FailedStep = %q on success", result.FailedStep)
	}
	if len(result.Steps) != len(StepOrder) {
		t.Errorf("recorded %d steps, want %d", len(result.Steps), len(StepOrder))
	}
	if result.Interpreter.String() != "3.11.9" {
		t.Errorf("Interpreter = %q", result.Interpreter.String())
	}
	if result.RunID == "" {
		t.Error("RunID should be set")
	}
}

func TestExecuteFailsFastWhenPyenvMissing(t *testing.T) {
	fake := execx.NewFake()
	fake.Missing("pyenv")
	r := newTestRunner(t, fake, nil)

	result, err := r.Execute(context.Background())
	if err == nil {
		t.Fatal("Execute should fail without pyenv")
	}
	if !errors.Is(err, errors.ErrCodeMissingTool) {
		t.Errorf("code = %v, want MISSING_TOOL", errors.GetCode(err))
	}
	if result.FailedStep != StepPreflight {
		t.Errorf("FailedStep = %q, want %q", result.FailedStep, StepPreflight)
	}
	if fake.CallCount() != 0 {
		t.Errorf("no commands should run after a failed preflight, got:\n%s",
			strings.Join(fake.Lines(), "\n"))
	}
}

func TestExecuteStopsAtPrerequisiteFailure(t *testing.T) {
	fake := execx.NewFake()
	fake.Respond("version-name", "3.11.9\n")
	fake.FailOn("apt-get update", 100)
	r := newTestRunner(t, fake, nil)

	result, err := r.Execute(context.Background())
	if err == nil {
		t.Fatal("Execute should surface the apt failure")
	}
	if result.FailedStep != StepPrerequisites {
		t.Errorf("FailedStep = %q, want %q", result.FailedStep, StepPrerequisites)
	}
	if errors.ExitStatus(err) != 100 {
		t.Errorf("exit status = %d, want 100", errors.ExitStatus(err))
	}
	for _, line := range fake.Lines() {
		if strings.Contains(line, "venv") || strings.Contains(line, "pip") {
			t.Errorf("command after the failing step should not run: %q", line)
		}
	}
}

func TestExecuteRemovesPreviousEnvironment(t *testing.T) {
	fake := execx.NewFake()
	fake.Respond("version-name", "3.11.9\n")
	workDir := t.TempDir()
	r := newTestRunner(t, fake, func(o *Options) { o.WorkDir = workDir })

	// Residue from an interrupted earlier run.
	stale := filepath.Join(workDir, ".venv", "lib")
	if err := os.MkdirAll(stale, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(stale, "dlib.so"), []byte("cpu-only"), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := r.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !result.RemovedPrevious {
		t.Error("RemovedPrevious should report the destroyed directory")
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("previous environment contents should be gone")
	}
}

func TestExecuteNativeBuildFailureSkipsDependent(t *testing.T) {
	fake := execx.NewFake()
	fake.Respond("version-name", "3.11.9\n")
	fake.FailOn("--no-binary", 1)
	r := newTestRunner(t, fake, nil)

	result, err := r.Execute(context.Background())
	if err == nil {
		t.Fatal("Execute should surface the build failure")
	}
	if result.FailedStep != StepNativeBuild {
		t.Errorf("FailedStep = %q, want %q", result.FailedStep, StepNativeBuild)
	}
	for _, line := range fake.Lines() {
		if strings.Contains(line, "face_recognition") {
			t.Error("dependent package must not install after a failed native build")
		}
	}
}

func TestExecuteDryRunPlansWithoutExecuting(t *testing.T) {
	fake := execx.NewFake()
	r := newTestRunner(t, fake, func(o *Options) { o.DryRun = true })

	result, err := r.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if fake.CallCount() != 0 {
		t.Errorf("dry run must not execute commands, got:\n%s", strings.Join(fake.Lines(), "\n"))
	}
	if len(result.Plan) == 0 {
		t.Fatal("dry run should produce a plan")
	}
	joined := strings.Join(result.Plan, "\n")
	for _, want := range []string{"pyenv local", "apt-get update", "--no-binary :all:", "face_recognition"} {
		if !strings.Contains(joined, want) {
			t.Errorf("plan missing %q:\n%s", want, joined)
		}
	}
}

func TestExecuteDryRunStillChecksPreflight(t *testing.T) {
	fake := execx.NewFake()
	fake.Missing("pyenv")
	r := newTestRunner(t, fake, func(o *Options) { o.DryRun = true })

	if _, err := r.Execute(context.Background()); !errors.Is(err, errors.ErrCodeMissingTool) {
		t.Errorf("dry run should still fail without pyenv, got %v", err)
	}
}

func TestCheckPreflightIsReadOnly(t *testing.T) {
	fake := execx.NewFake()
	fake.Respond("versions --bare", "3.10.4\n3.11.9\n")
	workDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(workDir, "requirements.txt"), []byte("numpy\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := newTestRunner(t, fake, func(o *Options) { o.WorkDir = workDir })

	report, err := r.CheckPreflight(context.Background())
	if err != nil {
		t.Fatalf("CheckPreflight: %v", err)
	}
	if !report.VersionInstalled {
		t.Error("3.11.9 should be reported installed")
	}
	if !report.ManifestPresent {
		t.Error("manifest should be reported present")
	}
	for _, line := range fake.Lines() {
		if strings.Contains(line, "install") || strings.Contains(line, "local") {
			t.Errorf("preflight check must not modify anything: %q", line)
		}
	}
}

func TestFreezeRequiresEnvironment(t *testing.T) {
	fake := execx.NewFake()
	r := newTestRunner(t, fake, nil)

	if _, err := r.Freeze(context.Background()); !errors.Is(err, errors.ErrCodeEnvReset) {
		t.Errorf("Freeze without an environment should fail, got %v", err)
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{WorkDir: t.TempDir()}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.PythonVersion != "3.11.9" || opts.EnvDir != ".venv" || opts.Manifest != "requirements.txt" {
		t.Errorf("defaults = %q %q %q", opts.PythonVersion, opts.EnvDir, opts.Manifest)
	}
	if opts.NativePackage != "dlib" || opts.DependentPackage != "face_recognition" {
		t.Errorf("native defaults = %q %q", opts.NativePackage, opts.DependentPackage)
	}
	if opts.BuildDefines["DLIB_USE_CUDA"] != "1" {
		t.Errorf("BuildDefines = %v", opts.BuildDefines)
	}
	if len(opts.AptPackages) == 0 || opts.AptPackages[0] != "build-essential" {
		t.Errorf("AptPackages = %v", opts.AptPackages)
	}
}

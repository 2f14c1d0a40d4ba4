package execx

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
)

// OSRunner executes commands with os/exec.
//
// Stdout and Stderr, when set, receive a live copy of the child's output
// in addition to the captured buffers; the CLI sets them in verbose mode
// so long-running tool output (notably the native build) stays visible.
type OSRunner struct {
	Stdout io.Writer
	Stderr io.Writer

	// euid overrides the effective UID check in tests; nil means os.Geteuid.
	euid func() int
}

// NewOSRunner creates a runner that discards child output unless the
// caller attaches writers.
func NewOSRunner() *OSRunner {
	return &OSRunner{}
}

// argv resolves the sudo prefix: commands that require elevation are run
// through sudo unless the process is already root.
func (r *OSRunner) argv(spec Spec) (string, []string) {
	if spec.Sudo && r.geteuid() != 0 {
		return "sudo", append([]string{spec.Name}, spec.Args...)
	}
	return spec.Name, spec.Args
}

func (r *OSRunner) geteuid() int {
	if r.euid != nil {
		return r.euid()
	}
	return os.Geteuid()
}

// Run executes the command and blocks until it exits. The returned
// Result always carries captured output; on a non-zero exit the error is
// the *exec.ExitError and Result.ExitCode holds the status.
func (r *OSRunner) Run(ctx context.Context, spec Spec) (Result, error) {
	name, args := r.argv(spec)
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = spec.Dir
	if len(spec.Env) > 0 {
		cmd.Env = append(os.Environ(), spec.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if r.Stdout != nil {
		cmd.Stdout = io.MultiWriter(&stdout, r.Stdout)
	}
	if r.Stderr != nil {
		cmd.Stderr = io.MultiWriter(&stderr, r.Stderr)
	}

	err := cmd.Run()
	res := Result{
		ExitCode: exitCode(err),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}
	return res, err
}

// LookPath resolves name on the execution path.
func (r *OSRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// exitCode extracts the exit status from a command error.
// Returns 0 for nil and -1 when no status is available (start failure,
// signal termination).
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return -1
}

// Package execx abstracts external command invocation behind a narrow
// interface so that provisioning logic can be exercised against a fake
// implementation instead of real OS calls.
//
// The interface is intentionally small: run one command to completion with
// arguments, working directory, extra environment entries, and an
// elevated-privilege flag; return the exit status and captured output.
// There is no retry, timeout, or streaming protocol beyond an optional
// tee of the child's output for verbose terminal modes.
package execx

import (
	"context"
	"strings"
)

// Spec describes a single external command invocation.
type Spec struct {
	// Name is the executable to run, resolved via PATH unless absolute.
	Name string

	// Args are the command arguments, excluding the executable name.
	Args []string

	// Dir is the working directory; empty means the caller's cwd.
	Dir string

	// Env holds extra KEY=VALUE entries appended to the parent environment.
	Env []string

	// Sudo requests elevated privileges. The OS runner prefixes the
	// command with sudo unless the process already runs as root.
	Sudo bool
}

// String renders the invocation as a single shell-like line, used for
// logging and dry-run plans.
func (s Spec) String() string {
	parts := make([]string, 0, len(s.Args)+2)
	if s.Sudo {
		parts = append(parts, "sudo")
	}
	parts = append(parts, s.Name)
	parts = append(parts, s.Args...)
	return strings.Join(parts, " ")
}

// Result is the outcome of a completed command.
type Result struct {
	// ExitCode is the command's exit status; 0 on success, -1 when the
	// command never ran or was killed by a signal.
	ExitCode int

	// Stdout is the captured standard output.
	Stdout string

	// Stderr is the captured standard error.
	Stderr string
}

// Runner executes external commands.
//
// Run blocks until the command exits. A non-zero exit status is reported
// as a non-nil error together with a Result carrying the status and the
// captured output; callers decide how to wrap and surface it.
type Runner interface {
	Run(ctx context.Context, spec Spec) (Result, error)

	// LookPath reports the resolved path of an executable, or an error
	// if it is not present on the execution path.
	LookPath(name string) (string, error)
}

// Tail returns the last n non-empty lines of s, trimmed. It is used to
// surface the most relevant part of a failing tool's stderr without
// dumping entire build logs into error messages.
func Tail(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	kept := make([]string, 0, n)
	for i := len(lines) - 1; i >= 0 && len(kept) < n; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		kept = append([]string{line}, kept...)
	}
	return strings.Join(kept, "\n")
}

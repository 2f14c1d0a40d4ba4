package execx

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Fake is a Runner for tests. It records every Spec it receives and
// answers from scripted responses instead of touching the OS.
//
// By default every command succeeds with empty output and every tool
// resolves on the path. Use Respond, FailOn, and Missing to script
// deviations.
type Fake struct {
	mu       sync.Mutex
	calls    []Spec
	missing  map[string]bool
	stdout   map[string]string
	failures map[string]int
}

// NewFake creates a fake runner with all commands succeeding.
func NewFake() *Fake {
	return &Fake{
		missing:  make(map[string]bool),
		stdout:   make(map[string]string),
		failures: make(map[string]int),
	}
}

// Respond scripts stdout for any command whose rendered line contains
// match.
func (f *Fake) Respond(match, stdout string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stdout[match] = stdout
}

// FailOn scripts a non-zero exit status for any command whose rendered
// line contains match.
func (f *Fake) FailOn(match string, exitCode int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[match] = exitCode
}

// Missing makes LookPath fail for the given tool name.
func (f *Fake) Missing(tool string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.missing[tool] = true
}

// Run records the spec and returns the scripted response.
func (f *Fake) Run(_ context.Context, spec Spec) (Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, spec)

	line := spec.String()
	for match, code := range f.failures {
		if strings.Contains(line, match) {
			res := Result{ExitCode: code, Stderr: fmt.Sprintf("%s: scripted failure", match)}
			return res, fmt.Errorf("exit status %d", code)
		}
	}
	res := Result{}
	for match, out := range f.stdout {
		if strings.Contains(line, match) {
			res.Stdout = out
		}
	}
	return res, nil
}

// LookPath resolves every tool except the ones marked Missing.
func (f *Fake) LookPath(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.missing[name] {
		return "", fmt.Errorf("exec: %q: executable file not found in $PATH", name)
	}
	return "/usr/bin/" + name, nil
}

// Calls returns a copy of the recorded invocations in order.
func (f *Fake) Calls() []Spec {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Spec, len(f.calls))
	copy(out, f.calls)
	return out
}

// Lines returns the recorded invocations rendered as command lines.
func (f *Fake) Lines() []string {
	calls := f.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.String()
	}
	return lines
}

// CallCount returns the number of recorded invocations.
func (f *Fake) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

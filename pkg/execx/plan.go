package execx

import (
	"context"
	"sync"
)

// PlanRunner records the commands a pipeline would execute without
// running any of them. It backs the --dry-run mode: every Run call
// succeeds with empty output, and LookPath delegates to Inner so that
// precondition checks against the real host still hold.
type PlanRunner struct {
	// Inner resolves LookPath queries; nil resolves every tool.
	Inner Runner

	mu    sync.Mutex
	calls []Spec
}

// Run records the spec and reports success without executing anything.
func (p *PlanRunner) Run(_ context.Context, spec Spec) (Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, spec)
	return Result{}, nil
}

// LookPath delegates to the inner runner when present.
func (p *PlanRunner) LookPath(name string) (string, error) {
	if p.Inner != nil {
		return p.Inner.LookPath(name)
	}
	return name, nil
}

// Plan returns the recorded command lines in execution order.
func (p *PlanRunner) Plan() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	lines := make([]string, len(p.calls))
	for i, c := range p.calls {
		lines[i] = c.String()
	}
	return lines
}

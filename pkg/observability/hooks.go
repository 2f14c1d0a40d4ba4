// Package observability provides hooks for instrumenting provisioning
// runs.
//
// The package uses a simple hooks pattern: hook interfaces with no-op
// default implementations, and a registry that main can populate at
// startup. The pipeline emits events through the registry without any
// hard dependency on a metrics or tracing backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetStepHooks(&myStepHooks{})
//	    // ... run application
//	}
//
// The pipeline emits events as it runs:
//
//	observability.Steps().OnStepStart(ctx, runID, step)
//	// ... run the step ...
//	observability.Steps().OnStepComplete(ctx, runID, step, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// StepHooks receives events from the provisioning pipeline.
type StepHooks interface {
	// OnRunStart fires once when a provisioning run begins.
	OnRunStart(ctx context.Context, runID, purpose string)

	// OnStepStart fires before each pipeline step.
	OnStepStart(ctx context.Context, runID, step string)

	// OnStepComplete fires after each pipeline step, with the error
	// that aborted the run, if any.
	OnStepComplete(ctx context.Context, runID, step string, duration time.Duration, err error)

	// OnRunComplete fires once when the run ends, successfully or not.
	OnRunComplete(ctx context.Context, runID string, duration time.Duration, err error)
}

// CommandHooks receives events for each external command invocation.
type CommandHooks interface {
	// OnCommand records one external command and its outcome.
	OnCommand(ctx context.Context, line string, exitCode int, duration time.Duration)
}

// NoopStepHooks is a no-op implementation of StepHooks.
type NoopStepHooks struct{}

func (NoopStepHooks) OnRunStart(context.Context, string, string)                            {}
func (NoopStepHooks) OnStepStart(context.Context, string, string)                           {}
func (NoopStepHooks) OnStepComplete(context.Context, string, string, time.Duration, error)  {}
func (NoopStepHooks) OnRunComplete(context.Context, string, time.Duration, error)           {}

// NoopCommandHooks is a no-op implementation of CommandHooks.
type NoopCommandHooks struct{}

func (NoopCommandHooks) OnCommand(context.Context, string, int, time.Duration) {}

var (
	stepHooks    StepHooks    = NoopStepHooks{}
	commandHooks CommandHooks = NoopCommandHooks{}
	hooksMu      sync.RWMutex
)

// SetStepHooks registers custom step hooks.
// Call once at application startup before any pipeline run.
func SetStepHooks(h StepHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		stepHooks = h
	}
}

// SetCommandHooks registers custom command hooks.
func SetCommandHooks(h CommandHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		commandHooks = h
	}
}

// Steps returns the registered step hooks.
func Steps() StepHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return stepHooks
}

// Commands returns the registered command hooks.
func Commands() CommandHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return commandHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	stepHooks = NoopStepHooks{}
	commandHooks = NoopCommandHooks{}
}

package cli

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gpuvenv/gpuvenv/pkg/observability"
)

// stepSpinnerHooks drives one spinner per pipeline step so the terminal
// shows live progress while the pipeline logs structured events.
type stepSpinnerHooks struct {
	observability.NoopStepHooks

	mu      sync.Mutex
	current *Spinner
}

func (h *stepSpinnerHooks) OnStepStart(ctx context.Context, _ string, step string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.current = newSpinnerWithContext(ctx, "running "+step)
	h.current.Start()
}

func (h *stepSpinnerHooks) OnStepComplete(_ context.Context, _ string, step string, d time.Duration, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.current == nil {
		return
	}
	elapsed := StyleDim.Render(fmt.Sprintf("(%s)", d.Round(timeRound)))
	if err != nil {
		h.current.StopWithError(step + " " + elapsed)
	} else {
		h.current.StopWithSuccess(step + " " + elapsed)
	}
	h.current = nil
}

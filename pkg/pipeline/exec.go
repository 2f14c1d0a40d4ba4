package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/gpuvenv/gpuvenv/pkg/execx"
	"github.com/gpuvenv/gpuvenv/pkg/observability"
)

// hookRunner decorates a Runner with command-level observability events.
type hookRunner struct {
	inner execx.Runner
}

func (h *hookRunner) Run(ctx context.Context, spec execx.Spec) (execx.Result, error) {
	start := time.Now()
	res, err := h.inner.Run(ctx, spec)
	observability.Commands().OnCommand(ctx, spec.String(), res.ExitCode, time.Since(start))
	return res, err
}

func (h *hookRunner) LookPath(name string) (string, error) {
	return h.inner.LookPath(name)
}

func manifestExists(workDir, manifest string) bool {
	path := manifest
	if !filepath.IsAbs(path) {
		path = filepath.Join(workDir, manifest)
	}
	_, err := os.Stat(path)
	return err == nil
}

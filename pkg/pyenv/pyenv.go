// Package pyenv is a thin client for the pyenv version manager.
//
// gpuvenv never installs interpreter versions itself; it only checks that
// pyenv is present, pins a version for the working directory, and reads
// back what pyenv resolved. Everything else is pyenv's business.
package pyenv

import (
	"context"
	"strings"

	"github.com/gpuvenv/gpuvenv/pkg/errors"
	"github.com/gpuvenv/gpuvenv/pkg/execx"
	"github.com/gpuvenv/gpuvenv/pkg/pyversion"
)

// Tool is the executable name checked on PATH.
const Tool = "pyenv"

// Client runs pyenv commands through an execx.Runner.
type Client struct {
	runner execx.Runner
}

// New creates a pyenv client.
func New(r execx.Runner) *Client {
	return &Client{runner: r}
}

// Installed reports the resolved path of the pyenv executable.
// A missing tool is the pipeline's single explicit precondition failure.
func (c *Client) Installed() (string, error) {
	path, err := c.runner.LookPath(Tool)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeMissingTool, err,
			"pyenv not found on PATH; install pyenv and the target interpreter first")
	}
	return path, nil
}

// PinLocal writes the version pin for dir (pyenv's .python-version file).
// pyenv itself fails when the version is not installed, which aborts the
// pipeline with pyenv's own diagnostic.
func (c *Client) PinLocal(ctx context.Context, dir, version string) error {
	res, err := c.runner.Run(ctx, execx.Spec{
		Name: Tool,
		Args: []string{"local", version},
		Dir:  dir,
	})
	if err != nil {
		return errors.WrapExit(errors.ErrCodeCommandFailed, err, res.ExitCode,
			"pyenv local %s: %s", version, execx.Tail(res.Stderr, 3))
	}
	return nil
}

// ActiveVersion reports the interpreter version pyenv resolves for dir.
func (c *Client) ActiveVersion(ctx context.Context, dir string) (pyversion.Version, error) {
	res, err := c.runner.Run(ctx, execx.Spec{
		Name: Tool,
		Args: []string{"version-name"},
		Dir:  dir,
	})
	if err != nil {
		return pyversion.Version{}, errors.WrapExit(errors.ErrCodeCommandFailed, err, res.ExitCode,
			"pyenv version-name: %s", execx.Tail(res.Stderr, 3))
	}
	v, err := pyversion.Parse(res.Stdout)
	if err != nil {
		return pyversion.Version{}, errors.Wrap(errors.ErrCodeInvalidVersion, err,
			"pyenv reported an unexpected version %q", strings.TrimSpace(res.Stdout))
	}
	return v, nil
}

// HasVersion reports whether pyenv has the exact version installed.
// Used by the read-only preflight report; the pipeline itself relies on
// PinLocal failing instead.
func (c *Client) HasVersion(ctx context.Context, version string) (bool, error) {
	res, err := c.runner.Run(ctx, execx.Spec{
		Name: Tool,
		Args: []string{"versions", "--bare"},
	})
	if err != nil {
		return false, errors.WrapExit(errors.ErrCodeCommandFailed, err, res.ExitCode,
			"pyenv versions: %s", execx.Tail(res.Stderr, 3))
	}
	for _, line := range strings.Split(res.Stdout, "\n") {
		if strings.TrimSpace(line) == version {
			return true, nil
		}
	}
	return false, nil
}

// Package venv manages the isolated environment directory.
//
// The policy is destroy-then-create: any pre-existing directory at the
// environment path is removed in full before a fresh environment is
// created, so leftovers from a failed previous run (notably a half-built
// native library) can never persist. There is no upgrade-in-place path.
package venv

import (
	"context"
	"os"
	"path/filepath"

	"github.com/gpuvenv/gpuvenv/pkg/errors"
	"github.com/gpuvenv/gpuvenv/pkg/execx"
)

// Env holds the resolved paths of an isolated environment. It replaces
// shell-style "activation": steps that need the environment's interpreter
// or installer address these paths explicitly instead of mutating
// process-wide state.
type Env struct {
	// Root is the environment directory (absolute).
	Root string

	// BinDir is Root/bin; prepended to PATH for child processes that
	// resolve tools by name.
	BinDir string

	// Python is the interpreter inside the environment.
	Python string

	// Pip is the installer inside the environment.
	Pip string
}

// At computes the Unix path layout for an environment rooted at dir,
// resolving dir against workDir when it is relative.
func At(workDir, dir string) Env {
	root := dir
	if !filepath.IsAbs(root) {
		root = filepath.Join(workDir, dir)
	}
	bin := filepath.Join(root, "bin")
	return Env{
		Root:   root,
		BinDir: bin,
		Python: filepath.Join(bin, "python"),
		Pip:    filepath.Join(bin, "pip"),
	}
}

// PathEnv returns the KEY=VALUE entry that puts the environment's bin
// directory at the front of PATH for a child process.
func (e Env) PathEnv() string {
	return "PATH=" + e.BinDir + string(os.PathListSeparator) + os.Getenv("PATH")
}

// CreateSpec is the command that creates the environment: the pinned
// interpreter's venv module, run from workDir so pyenv resolves the
// local pin. Shared between real execution and the dry-run plan.
func CreateSpec(workDir string, e Env) execx.Spec {
	return execx.Spec{
		Name: "python",
		Args: []string{"-m", "venv", e.Root},
		Dir:  workDir,
	}
}

// Manager destroys and recreates isolated environments.
type Manager struct {
	runner execx.Runner
}

// NewManager creates an environment manager.
func NewManager(r execx.Runner) *Manager {
	return &Manager{runner: r}
}

// Exists reports whether the environment directory is present.
func (m *Manager) Exists(e Env) bool {
	_, err := os.Stat(e.Root)
	return err == nil
}

// Reset deletes any existing environment at e.Root and creates a fresh
// one. It returns whether a previous environment was removed.
func (m *Manager) Reset(ctx context.Context, workDir string, e Env) (removed bool, err error) {
	if m.Exists(e) {
		if err := os.RemoveAll(e.Root); err != nil {
			return false, errors.Wrap(errors.ErrCodeEnvReset, err,
				"removing previous environment %s", e.Root)
		}
		removed = true
	}

	res, err := m.runner.Run(ctx, CreateSpec(workDir, e))
	if err != nil {
		return removed, errors.WrapExit(errors.ErrCodeCommandFailed, err, res.ExitCode,
			"python -m venv %s: %s", e.Root, execx.Tail(res.Stderr, 3))
	}
	return removed, nil
}

// Package pip drives the package installer inside an isolated
// environment.
//
// The installer is always addressed by its absolute path inside the
// environment, never resolved from PATH, so packages can only ever land
// in the environment the pipeline just created.
package pip

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/gpuvenv/gpuvenv/pkg/errors"
	"github.com/gpuvenv/gpuvenv/pkg/execx"
	"github.com/gpuvenv/gpuvenv/pkg/venv"
)

// Installer runs pip commands for one environment.
type Installer struct {
	runner execx.Runner
	env    venv.Env
	dir    string
}

// New creates an installer for the given environment. workDir is the
// working directory for pip invocations, so relative manifest paths
// resolve the same way they would for a user in the project directory.
func New(r execx.Runner, env venv.Env, workDir string) *Installer {
	return &Installer{runner: r, env: env, dir: workDir}
}

// Spec builds the invocation for one pip command without running it.
// Exposed so the dry-run plan and the real execution share one source
// of argument truth.
func (i *Installer) Spec(args ...string) execx.Spec {
	return execx.Spec{
		Name: i.env.Pip,
		Args: args,
		Dir:  i.dir,
		Env:  []string{i.env.PathEnv()},
	}
}

func (i *Installer) run(ctx context.Context, label string, args ...string) error {
	res, err := i.runner.Run(ctx, i.Spec(args...))
	if err != nil {
		return errors.WrapExit(errors.ErrCodeCommandFailed, err, res.ExitCode,
			"%s: %s", label, execx.Tail(res.Stderr, 5))
	}
	return nil
}

// SelfUpgrade upgrades pip itself before anything else is installed,
// so installer bugs fixed upstream cannot affect the later steps.
func (i *Installer) SelfUpgrade(ctx context.Context) error {
	return i.run(ctx, "pip self-upgrade", "install", "--upgrade", "pip")
}

// InstallRequirements installs the dependency manifest as-is. The
// manifest's format and validation belong to pip; gpuvenv only hands
// over the path.
func (i *Installer) InstallRequirements(ctx context.Context, manifest string) error {
	return i.run(ctx, fmt.Sprintf("pip install -r %s", manifest),
		"install", "-r", manifest)
}

// Install installs the given packages from the default index, allowing
// prebuilt wheels.
func (i *Installer) Install(ctx context.Context, pkgs ...string) error {
	args := append([]string{"install"}, pkgs...)
	return i.run(ctx, fmt.Sprintf("pip install %s", strings.Join(pkgs, " ")), args...)
}

// BuildFromSource installs pkg with the prebuilt-binary path disabled
// and the given build-system defines passed to the package's CMake
// build. The combination of --no-binary and --no-cache-dir guarantees a
// full local compilation: the published wheel and any cached build are
// both skipped, which is what makes the GPU-enabled variant possible.
func (i *Installer) BuildFromSource(ctx context.Context, pkg string, defines map[string]string) error {
	return i.run(ctx, fmt.Sprintf("pip build %s from source", pkg),
		BuildArgs(pkg, defines)...)
}

// BuildArgs renders the from-source install arguments for pkg.
// Defines are emitted in sorted key order so the invocation is stable.
func BuildArgs(pkg string, defines map[string]string) []string {
	args := []string{"install", "--no-cache-dir", "--no-binary", ":all:"}
	keys := make([]string, 0, len(defines))
	for k := range defines {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, fmt.Sprintf("--config-settings=cmake.define.%s=%s", k, defines[k]))
	}
	return append(args, pkg)
}

// Freeze returns the installed package specifiers, one per entry,
// as reported by pip freeze.
func (i *Installer) Freeze(ctx context.Context) ([]string, error) {
	res, err := i.runner.Run(ctx, i.Spec("freeze"))
	if err != nil {
		return nil, errors.WrapExit(errors.ErrCodeFreezeFailed, err, res.ExitCode,
			"pip freeze: %s", execx.Tail(res.Stderr, 3))
	}
	var pkgs []string
	for _, line := range strings.Split(res.Stdout, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		pkgs = append(pkgs, line)
	}
	return pkgs, nil
}

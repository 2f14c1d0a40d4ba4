// Package apt installs native build prerequisites through the OS
// package manager.
//
// The package set is a fixed declarative list: the compiler toolchain
// and the numerical/image libraries dlib links against. Idempotency is
// apt's own: already-installed packages are left untouched.
package apt

import (
	"context"
	"strings"

	"github.com/gpuvenv/gpuvenv/pkg/errors"
	"github.com/gpuvenv/gpuvenv/pkg/execx"
)

// BuildPackages is the default prerequisite set for compiling dlib from
// source: compiler toolchain, CMake, BLAS/LAPACK, JPEG codec, and git.
var BuildPackages = []string{
	"build-essential",
	"cmake",
	"libopenblas-dev",
	"liblapack-dev",
	"libjpeg-dev",
	"git",
}

// Installer runs apt-get with elevated privileges.
type Installer struct {
	runner execx.Runner
}

// New creates an apt installer.
func New(r execx.Runner) *Installer {
	return &Installer{runner: r}
}

// UpdateSpec is the index refresh invocation.
func UpdateSpec() execx.Spec {
	return execx.Spec{
		Name: "apt-get",
		Args: []string{"update"},
		Sudo: true,
	}
}

// InstallSpec is the package install invocation. The frontend is forced
// non-interactive so the pipeline never blocks on a debconf prompt.
func InstallSpec(pkgs []string) execx.Spec {
	return execx.Spec{
		Name: "apt-get",
		Args: append([]string{"install", "-y"}, pkgs...),
		Env:  []string{"DEBIAN_FRONTEND=noninteractive"},
		Sudo: true,
	}
}

// Update refreshes the package index.
func (i *Installer) Update(ctx context.Context) error {
	res, err := i.runner.Run(ctx, UpdateSpec())
	if err != nil {
		return errors.WrapExit(errors.ErrCodeCommandFailed, err, res.ExitCode,
			"apt-get update: %s", execx.Tail(res.Stderr, 3))
	}
	return nil
}

// Install installs the given packages.
func (i *Installer) Install(ctx context.Context, pkgs []string) error {
	res, err := i.runner.Run(ctx, InstallSpec(pkgs))
	if err != nil {
		return errors.WrapExit(errors.ErrCodeCommandFailed, err, res.ExitCode,
			"apt-get install %s: %s", strings.Join(pkgs, " "), execx.Tail(res.Stderr, 3))
	}
	return nil
}

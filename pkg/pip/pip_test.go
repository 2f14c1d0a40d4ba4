package pip

import (
	"context"
	"strings"
	"testing"

	"github.com/gpuvenv/gpuvenv/pkg/errors"
	"github.com/gpuvenv/gpuvenv/pkg/execx"
	"github.com/gpuvenv/gpuvenv/pkg/venv"
)

func newTestInstaller() (*Installer, *execx.Fake) {
	fake := execx.NewFake()
	env := venv.At("/work", ".venv")
	return New(fake, env, "/work"), fake
}

func TestCommandsAddressEnvironmentPip(t *testing.T) {
	inst, fake := newTestInstaller()
	ctx := context.Background()

	if err := inst.SelfUpgrade(ctx); err != nil {
		t.Fatalf("SelfUpgrade: %v", err)
	}
	if err := inst.InstallRequirements(ctx, "requirements.txt"); err != nil {
		t.Fatalf("InstallRequirements: %v", err)
	}

	calls := fake.Calls()
	if len(calls) != 2 {
		t.Fatalf("recorded %d calls, want 2", len(calls))
	}
	for _, c := range calls {
		if c.Name != "/work/.venv/bin/pip" {
			t.Errorf("command used %q, want the environment's pip", c.Name)
		}
		if c.Dir != "/work" {
			t.Errorf("dir = %q, want /work", c.Dir)
		}
		if len(c.Env) != 1 || !strings.HasPrefix(c.Env[0], "PATH=/work/.venv/bin") {
			t.Errorf("env = %v, want the environment bin dir on PATH", c.Env)
		}
	}

	lines := fake.Lines()
	if !strings.HasSuffix(lines[0], "install --upgrade pip") {
		t.Errorf("self-upgrade line = %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "install -r requirements.txt") {
		t.Errorf("requirements line = %q", lines[1])
	}
}

func TestBuildArgs(t *testing.T) {
	args := BuildArgs("dlib", map[string]string{
		"DLIB_USE_CUDA": "1",
		"CMAKE_C_FLAGS": "-O2",
	})
	want := []string{
		"install", "--no-cache-dir", "--no-binary", ":all:",
		"--config-settings=cmake.define.CMAKE_C_FLAGS=-O2",
		"--config-settings=cmake.define.DLIB_USE_CUDA=1",
		"dlib",
	}
	if len(args) != len(want) {
		t.Fatalf("BuildArgs = %v, want %v", args, want)
	}
	for i := range args {
		if args[i] != want[i] {
			t.Errorf("BuildArgs[%d] = %q, want %q", i, args[i], want[i])
		}
	}
}

func TestBuildFromSourceFailureCarriesExitStatus(t *testing.T) {
	inst, fake := newTestInstaller()
	fake.FailOn("--no-binary", 1)

	err := inst.BuildFromSource(context.Background(), "dlib", map[string]string{"DLIB_USE_CUDA": "1"})
	if err == nil {
		t.Fatal("BuildFromSource should fail")
	}
	if !errors.Is(err, errors.ErrCodeCommandFailed) {
		t.Errorf("error code = %q, want COMMAND_FAILED", errors.GetCode(err))
	}
	if errors.ExitStatus(err) != 1 {
		t.Errorf("exit status = %d, want 1", errors.ExitStatus(err))
	}
}

func TestFreeze(t *testing.T) {
	inst, fake := newTestInstaller()
	fake.Respond("freeze", "face_recognition==1.3.0\n\ndlib==19.24.4\n# comment\n")

	pkgs, err := inst.Freeze(context.Background())
	if err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	want := []string{"face_recognition==1.3.0", "dlib==19.24.4"}
	if len(pkgs) != len(want) {
		t.Fatalf("Freeze = %v, want %v", pkgs, want)
	}
	for i := range pkgs {
		if pkgs[i] != want[i] {
			t.Errorf("Freeze[%d] = %q, want %q", i, pkgs[i], want[i])
		}
	}
}

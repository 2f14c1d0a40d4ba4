package pyenv

import (
	"context"
	"testing"

	"github.com/gpuvenv/gpuvenv/pkg/errors"
	"github.com/gpuvenv/gpuvenv/pkg/execx"
)

func TestInstalled(t *testing.T) {
	fake := execx.NewFake()
	c := New(fake)

	if _, err := c.Installed(); err != nil {
		t.Fatalf("Installed with pyenv present: %v", err)
	}

	fake.Missing(Tool)
	_, err := c.Installed()
	if err == nil {
		t.Fatal("Installed with pyenv absent should fail")
	}
	if !errors.Is(err, errors.ErrCodeMissingTool) {
		t.Errorf("error code = %q, want MISSING_TOOL", errors.GetCode(err))
	}
}

func TestPinLocal(t *testing.T) {
	fake := execx.NewFake()
	c := New(fake)

	if err := c.PinLocal(context.Background(), "/work", "3.11.9"); err != nil {
		t.Fatalf("PinLocal: %v", err)
	}
	calls := fake.Calls()
	if len(calls) != 1 {
		t.Fatalf("recorded %d calls, want 1", len(calls))
	}
	if got := calls[0].String(); got != "pyenv local 3.11.9" {
		t.Errorf("command = %q", got)
	}
	if calls[0].Dir != "/work" {
		t.Errorf("dir = %q, want /work", calls[0].Dir)
	}
}

func TestPinLocalVersionNotInstalled(t *testing.T) {
	fake := execx.NewFake()
	fake.FailOn("pyenv local", 1)
	c := New(fake)

	err := c.PinLocal(context.Background(), ".", "3.11.9")
	if err == nil {
		t.Fatal("PinLocal should surface pyenv's failure")
	}
	if !errors.Is(err, errors.ErrCodeCommandFailed) {
		t.Errorf("error code = %q, want COMMAND_FAILED", errors.GetCode(err))
	}
	if errors.ExitStatus(err) != 1 {
		t.Errorf("exit status = %d, want 1", errors.ExitStatus(err))
	}
}

func TestActiveVersion(t *testing.T) {
	fake := execx.NewFake()
	fake.Respond("pyenv version-name", "3.11.9\n")
	c := New(fake)

	v, err := c.ActiveVersion(context.Background(), ".")
	if err != nil {
		t.Fatalf("ActiveVersion: %v", err)
	}
	if v.String() != "3.11.9" {
		t.Errorf("version = %s", v)
	}
}

func TestActiveVersionUnparseable(t *testing.T) {
	fake := execx.NewFake()
	fake.Respond("pyenv version-name", "system\n")
	c := New(fake)

	_, err := c.ActiveVersion(context.Background(), ".")
	if !errors.Is(err, errors.ErrCodeInvalidVersion) {
		t.Errorf("error code = %q, want INVALID_VERSION", errors.GetCode(err))
	}
}

func TestHasVersion(t *testing.T) {
	fake := execx.NewFake()
	fake.Respond("pyenv versions --bare", "3.10.14\n3.11.9\n")
	c := New(fake)

	tests := []struct {
		version string
		want    bool
	}{
		{"3.11.9", true},
		{"3.10.14", true},
		{"3.12.1", false},
	}
	for _, tt := range tests {
		got, err := c.HasVersion(context.Background(), tt.version)
		if err != nil {
			t.Fatalf("HasVersion(%s): %v", tt.version, err)
		}
		if got != tt.want {
			t.Errorf("HasVersion(%s) = %v, want %v", tt.version, got, tt.want)
		}
	}
}

// Package pyversion parses and compares interpreter version strings as
// reported by pyenv, python, and pip.
package pyversion

import (
	"fmt"
	"strings"
)

// Version is a semantic version with major, minor, and patch components.
// Minor and Patch are -1 when unspecified ("3.11" parses as {3, 11, -1}).
type Version struct {
	Major int
	Minor int
	Patch int
}

// Parse parses "X.Y.Z", "X.Y", or "X". Trailing text after the numeric
// components is ignored, so "3.11.9-dev" parses as {3, 11, 9}.
func Parse(s string) (Version, error) {
	v := Version{Minor: -1, Patch: -1}
	s = strings.TrimSpace(s)
	if _, err := fmt.Sscanf(s, "%d.%d.%d", &v.Major, &v.Minor, &v.Patch); err == nil {
		return validate(v, s)
	}
	if _, err := fmt.Sscanf(s, "%d.%d", &v.Major, &v.Minor); err == nil {
		return validate(v, s)
	}
	if _, err := fmt.Sscanf(s, "%d", &v.Major); err == nil {
		return validate(v, s)
	}
	return Version{}, fmt.Errorf("unparseable version %q", s)
}

func validate(v Version, s string) (Version, error) {
	if v.Major < 0 || v.Minor < -1 || v.Patch < -1 {
		return Version{}, fmt.Errorf("invalid version %q", s)
	}
	return v, nil
}

// ParsePython parses "python --version" output ("Python 3.11.9").
func ParsePython(s string) (Version, error) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) != 2 || fields[0] != "Python" {
		return Version{}, fmt.Errorf("unexpected python version output %q", s)
	}
	return Parse(fields[1])
}

// ParsePip parses "pip --version" output ("pip 24.0 from ... (python 3.11)").
func ParsePip(s string) (Version, error) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) < 2 || !strings.HasPrefix(fields[0], "pip") {
		return Version{}, fmt.Errorf("unexpected pip version output %q", s)
	}
	return Parse(fields[1])
}

// Compare returns -1 if v < other, 0 if equal, 1 if v > other.
// Components compare in order: major, minor, patch.
func (v Version) Compare(other Version) int {
	for _, pair := range [][2]int{{v.Major, other.Major}, {v.Minor, other.Minor}, {v.Patch, other.Patch}} {
		if pair[0] > pair[1] {
			return 1
		}
		if pair[0] < pair[1] {
			return -1
		}
	}
	return 0
}

// String renders the version, omitting unspecified components.
func (v Version) String() string {
	if v.Patch != -1 {
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	}
	if v.Minor != -1 {
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	}
	return fmt.Sprintf("%d", v.Major)
}

// MinorString renders "major.minor", the form used in interpreter paths
// like "python3.11" and "lib/python3.11/site-packages".
func (v Version) MinorString() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

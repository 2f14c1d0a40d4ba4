// Package config loads provisioning profiles from gpuvenv.toml.
//
// A profile is a named bundle of pipeline options: the purpose label,
// interpreter version, environment directory, manifest, and native build
// settings. A project without a config file gets a single default
// profile, so the file is optional end to end.
package config

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/gpuvenv/gpuvenv/pkg/errors"
	"github.com/gpuvenv/gpuvenv/pkg/pipeline"
)

// DefaultFileName is the config file looked up in the working directory.
const DefaultFileName = "gpuvenv.toml"

// DefaultProfileName is used when the file is absent or names no default.
const DefaultProfileName = "default"

// Apt configures the native prerequisite step of a profile.
type Apt struct {
	Packages []string `toml:"packages"`
}

// Build configures the native build step of a profile.
type Build struct {
	Package   string            `toml:"package"`
	Dependent string            `toml:"dependent"`
	Defines   map[string]string `toml:"defines"`
}

// Profile is one named provisioning configuration.
type Profile struct {
	Purpose  string `toml:"purpose"`
	Python   string `toml:"python"`
	EnvDir   string `toml:"env_dir"`
	Manifest string `toml:"manifest"`
	Apt      Apt    `toml:"apt"`
	Build    Build  `toml:"build"`
}

// File is the parsed gpuvenv.toml.
type File struct {
	// Default names the profile used when none is requested.
	Default  string             `toml:"default"`
	Profiles map[string]Profile `toml:"profiles"`
}

// Load reads the config file at path. A missing file is not an error: it
// yields a File with a single empty default profile, which resolves to
// the pipeline's built-in defaults.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &File{
			Default:  DefaultProfileName,
			Profiles: map[string]Profile{DefaultProfileName: {}},
		}, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "reading %s", path)
	}

	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parsing %s", path)
	}
	if f.Profiles == nil {
		f.Profiles = map[string]Profile{}
	}
	if f.Default == "" {
		f.Default = DefaultProfileName
	}
	if _, ok := f.Profiles[f.Default]; !ok && f.Default == DefaultProfileName {
		f.Profiles[DefaultProfileName] = Profile{}
	}
	if _, ok := f.Profiles[f.Default]; !ok {
		return nil, errors.New(errors.ErrCodeInvalidConfig,
			"%s: default profile %q is not defined", path, f.Default)
	}
	return &f, nil
}

// LoadDir loads the config file from dir, falling back to defaults when
// absent.
func LoadDir(dir string) (*File, error) {
	return Load(filepath.Join(dir, DefaultFileName))
}

// Names returns the defined profile names, sorted.
func (f *File) Names() []string {
	names := make([]string, 0, len(f.Profiles))
	for name := range f.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select resolves a profile by name; an empty name picks the default.
func (f *File) Select(name string) (Profile, error) {
	if name == "" {
		name = f.Default
	}
	p, ok := f.Profiles[name]
	if !ok {
		return Profile{}, errors.New(errors.ErrCodeProfileNotFound,
			"profile %q not found (have: %v)", name, f.Names())
	}
	return p, nil
}

// PipelineOptions maps a profile onto pipeline options. Zero-valued
// fields stay zero and pick up the pipeline's own defaults.
func (p Profile) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Purpose:          p.Purpose,
		PythonVersion:    p.Python,
		EnvDir:           p.EnvDir,
		Manifest:         p.Manifest,
		AptPackages:      p.Apt.Packages,
		NativePackage:    p.Build.Package,
		BuildDefines:     p.Build.Defines,
		DependentPackage: p.Build.Dependent,
	}
}

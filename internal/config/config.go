// Package config resolves the installer-defined module search path and
// locates/loads the optional per-project config file (spec.md §6.2); the
// YAML decoding itself lives in env.LoadProjectConfig. The Language has no
// `yaml` builtin.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bruce-hill/blangc/internal/env"
)

// SourceFileExt is the canonical source extension recognized by the driver.
const SourceFileExt = ".lang"

// ProjectFileName is the conventional project config filename.
const ProjectFileName = "blang.yml"

// DefaultModulePath is PATH_VAR's installer-defined seed (spec.md §6.2):
// the current directory, then the user's and system's module share dirs.
func DefaultModulePath() []string {
	home, _ := os.UserHomeDir()
	return []string{
		".",
		filepath.Join(home, ".local", "share", "lang", "modules"),
		"/usr/local/share/lang/modules",
	}
}

// ModulePath returns DefaultModulePath with any -I search directories
// prepended, so CLI-specified directories take precedence over the
// installer default (spec.md §6.1 `-I<dir>`).
func ModulePath(extra []string) []string {
	return append(append([]string{}, extra...), DefaultModulePath()...)
}

// FindProjectFile walks upward from dir looking for ProjectFileName.
func FindProjectFile(dir string) string {
	for {
		candidate := filepath.Join(dir, ProjectFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// LoadProject finds and decodes the nearest project file to dir, returning
// a zero ProjectConfig (no error) if none exists.
func LoadProject(dir string) (*env.ProjectConfig, error) {
	path := FindProjectFile(dir)
	if path == "" {
		return &env.ProjectConfig{}, nil
	}
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return env.LoadProjectConfig(string(text))
}

// HasSourceExt reports whether path ends in the recognized source
// extension.
func HasSourceExt(path string) bool {
	return strings.HasSuffix(path, SourceFileExt)
}

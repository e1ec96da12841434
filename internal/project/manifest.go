// Package project locates and reads the optional cexpand.toml manifest.
// The manifest supplies per-project defaults for the rewrite command:
// include search directories and predefined macros.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Manifest is a loaded cexpand.toml together with its location.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

type Config struct {
	Package PackageConfig `toml:"package"`
	Expand  ExpandConfig  `toml:"expand"`
}

type PackageConfig struct {
	Name string `toml:"name"`
}

// ExpandConfig holds defaults merged under explicit command-line flags.
type ExpandConfig struct {
	// IncludeDirs are resolved relative to the manifest's directory.
	IncludeDirs []string `toml:"include_dirs"`
	Defines     []string `toml:"defines"`
	Undefines   []string `toml:"undefines"`
}

// Find walks upward from startDir looking for cexpand.toml. It reports
// false when no manifest exists anywhere up to the filesystem root.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "cexpand.toml")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// Load reads and decodes a manifest file.
func Load(path string) (*Manifest, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	m := &Manifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
	}
	return m, nil
}

// Discover combines Find and Load. A missing manifest is not an error; it
// returns nil.
func Discover(startDir string) (*Manifest, error) {
	path, found, err := Find(startDir)
	if err != nil || !found {
		return nil, err
	}
	return Load(path)
}

// IncludeDirs returns the manifest's include directories resolved against
// the manifest root.
func (m *Manifest) IncludeDirs() []string {
	if m == nil {
		return nil
	}
	dirs := make([]string, 0, len(m.Config.Expand.IncludeDirs))
	for _, d := range m.Config.Expand.IncludeDirs {
		if !filepath.IsAbs(d) {
			d = filepath.Join(m.Root, d)
		}
		dirs = append(dirs, d)
	}
	return dirs
}

package modules

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ManifestFileName is the package manifest looked up inside package roots.
const ManifestFileName = "rocket.yml"

// Manifest models rocket.yml.
type Manifest struct {
	Name         string                `yaml:"name"`
	Version      string                `yaml:"version"`
	Main         string                `yaml:"main"`
	Aliases      map[string]string     `yaml:"aliases,omitempty"`
	Dependencies map[string]Dependency `yaml:"dependencies,omitempty"`
}

// Dependency pins a package to a git source. Exactly one of Rev, Tag, or
// Branch selects the revision.
type Dependency struct {
	Git    string `yaml:"git"`
	Rev    string `yaml:"rev,omitempty"`
	Tag    string `yaml:"tag,omitempty"`
	Branch string `yaml:"branch,omitempty"`
}

// LoadManifest parses a rocket.yml from disk.
func LoadManifest(path string) (*Manifest, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var manifest Manifest
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&manifest); err != nil {
		return nil, fmt.Errorf("manifest: parse %s: %w", abs, err)
	}
	if manifest.Name == "" {
		return nil, fmt.Errorf("manifest: %s missing package name", abs)
	}
	return &manifest, nil
}

// Package workspace reads the .sv/workspace.yaml file that names the
// thread sources a dashboard session loads, and discovers sources on
// disk when discovery is enabled.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/stackview/pkg/loader"
)

// Config represents a workspace configuration file (.sv/workspace.yaml)
type Config struct {
	// Name is the workspace display name
	Name string `yaml:"name,omitempty"`

	// Sources lists the thread sources in load order
	Sources []SourceConfig `yaml:"sources"`

	// Discovery configures auto-discovery of thread exports
	Discovery DiscoveryConfig `yaml:"discovery,omitempty"`

	// DebounceMS overrides the watcher's coalescing window
	DebounceMS int `yaml:"debounce_ms,omitempty"`
}

// SourceConfig is one thread source entry
type SourceConfig struct {
	// Name is the display name (default: file base name)
	Name string `yaml:"name,omitempty"`

	// Path points at a threads.jsonl export or a sessions.db store
	Path string `yaml:"path"`

	// Kind is "jsonl" or "sqlite"; inferred from the extension if empty
	Kind string `yaml:"kind,omitempty"`

	// Enabled controls whether this source is loaded (default: true)
	Enabled *bool `yaml:"enabled,omitempty"`
}

// DiscoveryConfig controls automatic source discovery
type DiscoveryConfig struct {
	// Enabled turns on auto-discovery (default: false)
	Enabled bool `yaml:"enabled,omitempty"`

	// ScanPaths are directories to scan for .sv/threads.jsonl exports
	ScanPaths []string `yaml:"scan_paths,omitempty"`

	// MaxDepth limits directory traversal depth (default: 3)
	MaxDepth int `yaml:"max_depth,omitempty"`
}

// GetName returns the effective name for a source
func (s *SourceConfig) GetName() string {
	if s.Name != "" {
		return s.Name
	}
	base := filepath.Base(s.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// GetKind returns the effective kind, inferring sqlite from a .db
// extension and defaulting to jsonl otherwise.
func (s *SourceConfig) GetKind() loader.SourceKind {
	switch s.Kind {
	case "sqlite":
		return loader.KindSQLite
	case "jsonl":
		return loader.KindJSONL
	}
	if ext := filepath.Ext(s.Path); ext == ".db" || ext == ".sqlite" {
		return loader.KindSQLite
	}
	return loader.KindJSONL
}

// IsEnabled returns whether the source is loaded
func (s *SourceConfig) IsEnabled() bool {
	if s.Enabled == nil {
		return true
	}
	return *s.Enabled
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if len(c.Sources) == 0 && !c.Discovery.Enabled {
		return fmt.Errorf("workspace must list at least one source or enable discovery")
	}
	seen := make(map[string]bool)
	for i, src := range c.Sources {
		if src.Path == "" {
			return fmt.Errorf("sources[%d]: path is required", i)
		}
		if k := src.Kind; k != "" && k != "jsonl" && k != "sqlite" {
			return fmt.Errorf("sources[%d]: unknown kind %q", i, k)
		}
		if seen[src.Path] {
			return fmt.Errorf("sources[%d]: duplicate path %q", i, src.Path)
		}
		seen[src.Path] = true
	}
	return nil
}

// LoaderSources resolves the config into loader sources, relative paths
// anchored at baseDir, disabled entries skipped, discovered sources
// appended after the explicit ones.
func (c *Config) LoaderSources(baseDir string) []loader.Source {
	var out []loader.Source
	seen := make(map[string]bool)
	for _, src := range c.Sources {
		if !src.IsEnabled() {
			continue
		}
		path := src.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		seen[path] = true
		out = append(out, loader.Source{
			Name: src.GetName(),
			Path: path,
			Kind: src.GetKind(),
		})
	}
	if c.Discovery.Enabled {
		for _, path := range Discover(c.Discovery) {
			if seen[path] {
				continue
			}
			seen[path] = true
			out = append(out, loader.Source{
				Name: filepath.Base(filepath.Dir(filepath.Dir(path))),
				Path: path,
				Kind: loader.KindJSONL,
			})
		}
	}
	return out
}

// LoadConfig loads a workspace configuration from a file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing workspace config: %w", err)
	}

	if config.Discovery.Enabled && config.Discovery.MaxDepth == 0 {
		config.Discovery.MaxDepth = 3
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid workspace config: %w", err)
	}
	return &config, nil
}

// FindConfig searches for .sv/workspace.yaml starting from dir and
// walking up toward the filesystem root.
func FindConfig(dir string) (string, error) {
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return "", err
		}
	}
	for {
		candidate := filepath.Join(dir, ".sv", "workspace.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no .sv/workspace.yaml found above %s", dir)
		}
		dir = parent
	}
}

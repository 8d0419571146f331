// Package config loads the server configuration and resolves the allowed
// directory roots. Roots may come from command-line arguments or from a
// YAML config file under the XDG config directory; either way they are
// expanded, made absolute and symlink-resolved once at startup so the
// sandbox compares against real paths only.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"scopefs/pkg/fileops"
)

const AppName = "scopefs"

// Config is the on-disk configuration.
type Config struct {
	AllowedRoots []string `yaml:"allowed_roots"`
}

// DefaultPath returns the standard config file location.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// Load reads the config file at the default location. A missing file is
// not an error; the zero Config is returned.
func Load() (*Config, error) {
	return LoadFile(DefaultPath())
}

// LoadFile reads and decodes a YAML config file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}
	return &cfg, nil
}

// ResolveRoots canonicalizes the configured allowed directories. Each entry
// must name an existing directory; the result is the absolute,
// symlink-resolved form the sandbox operates on.
func ResolveRoots(dirs []string) ([]string, error) {
	if len(dirs) == 0 {
		return nil, errors.New("at least one allowed directory is required")
	}

	roots := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			return nil, errors.New("allowed directory must not be empty")
		}

		abs, err := filepath.Abs(fileops.ExpandPath(dir))
		if err != nil {
			return nil, fmt.Errorf("cannot resolve %s: %w", dir, err)
		}
		resolved, err := filepath.EvalSymlinks(abs)
		if err != nil {
			return nil, fmt.Errorf("cannot resolve %s: %w", dir, err)
		}

		info, err := os.Stat(resolved)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", dir, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", dir)
		}

		roots = append(roots, filepath.Clean(resolved))
	}
	return roots, nil
}

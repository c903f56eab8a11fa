// Package config manages routemgr configuration and filesystem paths.
//
// The data root (default ~/.routemgr, override with ROUTEMGR_ROOT) holds the
// route catalog in config.yaml, the daily log files under logs/, and the move
// journal. The catalog path can be overridden separately with ROUTEMGR_CONFIG
// or the --config flag.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// EnvRoot overrides the data root directory.
	EnvRoot = "ROUTEMGR_ROOT"

	// EnvConfig overrides the config file path.
	EnvConfig = "ROUTEMGR_CONFIG"
)

// Paths contains all the filesystem paths used by routemgr.
type Paths struct {
	// Root is the base directory for all routemgr data (default: ~/.routemgr)
	Root string

	// Config is the path to the route catalog
	Config string

	// Logs is the directory receiving the daily log files
	Logs string

	// Journal is the path to the move journal
	Journal string
}

// DefaultPaths returns the default paths for routemgr.
// Paths can be overridden with environment variables:
// - ROUTEMGR_ROOT: Override the root directory
// - ROUTEMGR_CONFIG: Override the config file only
func DefaultPaths() (*Paths, error) {
	root := os.Getenv(EnvRoot)
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		root = filepath.Join(home, ".routemgr")
	}

	configPath := os.Getenv(EnvConfig)
	if configPath == "" {
		configPath = filepath.Join(root, "config.yaml")
	}

	return &Paths{
		Root:    root,
		Config:  configPath,
		Logs:    filepath.Join(root, "logs"),
		Journal: filepath.Join(root, "journal.json"),
	}, nil
}

// WithConfig returns a copy of p using path as the config file. An empty
// path leaves p unchanged.
func (p *Paths) WithConfig(path string) *Paths {
	out := *p
	if path != "" {
		out.Config = path
	}
	return &out
}

// EnsureDirectories creates all necessary directories if they don't exist.
func (p *Paths) EnsureDirectories() error {
	dirs := []string{
		p.Root,
		p.Logs,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

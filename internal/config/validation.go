package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/danieljhkim/routemgr/internal/fsops"
)

// Validate checks the location roots and the route catalog. It reports the
// first problem found, wrapped in ErrBadConfiguration.
func (c *Config) Validate() error {
	if err := c.validateRoots(); err != nil {
		return fmt.Errorf("%w: %w", ErrBadConfiguration, err)
	}
	if err := c.validateRoutes(); err != nil {
		return fmt.Errorf("%w: %w", ErrBadConfiguration, err)
	}
	return nil
}

func (c *Config) validateRoots() error {
	roots := []struct {
		key  string
		path string
	}{
		{"active_path", c.ActivePath},
		{"archive_path", c.ArchivePath},
	}
	for _, r := range roots {
		if r.path == "" {
			return fmt.Errorf("%s is not set", r.key)
		}
		info, err := os.Stat(r.path)
		if err != nil {
			return fmt.Errorf("%s %s: the specified path does not exist", r.key, r.path)
		}
		if !info.IsDir() {
			return fmt.Errorf("%s %s: not a directory", r.key, r.path)
		}
	}

	if !strings.EqualFold(filepath.VolumeName(c.ActivePath), filepath.VolumeName(c.ArchivePath)) {
		return fmt.Errorf("active and archive locations must be on the same volume")
	}

	active := strings.ToLower(filepath.Clean(c.ActivePath))
	archive := strings.ToLower(filepath.Clean(c.ArchivePath))
	if isWithin(active, archive) || isWithin(archive, active) {
		return fmt.Errorf("active and archive locations must be in different folders")
	}

	if err := fsops.ValidateIdentifier(c.RoutesDir); err != nil {
		return fmt.Errorf("routes_dir: %w", err)
	}
	return nil
}

// isWithin reports whether child equals parent or lies beneath it.
func isWithin(child, parent string) bool {
	if child == parent {
		return true
	}
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (c *Config) validateRoutes() error {
	if len(c.Routes) == 0 {
		return fmt.Errorf("routes not found")
	}

	names := make(map[string]string, len(c.Routes))
	for i, rc := range c.Routes {
		if rc.Name == "" {
			return fmt.Errorf("route #%d: name is undefined", i+1)
		}
		if err := fsops.ValidateIdentifier(rc.Name); err != nil {
			return fmt.Errorf("route %q: %w", rc.Name, err)
		}
		key := strings.ToLower(rc.Name)
		if prev, ok := names[key]; ok {
			return fmt.Errorf("route %q is defined more than once (also as %q)", rc.Name, prev)
		}
		names[key] = rc.Name

		if err := c.validateResources(rc); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateResources(rc RouteConfig) error {
	if len(rc.Resources) == 0 {
		return fmt.Errorf("route %q has no resources", rc.Name)
	}

	kinds := make(map[string]bool, len(rc.Resources))
	for _, res := range rc.Resources {
		if strings.TrimSpace(res.Kind) == "" {
			return fmt.Errorf("route %q has a resource with no kind", rc.Name)
		}
		if strings.TrimSpace(res.Instance) == "" {
			return fmt.Errorf("%s of the %q route is undefined", res.Kind, rc.Name)
		}
		if err := fsops.ValidateIdentifier(res.Kind); err != nil {
			return fmt.Errorf("route %q: kind: %w", rc.Name, err)
		}
		if err := fsops.ValidateIdentifier(res.Instance); err != nil {
			return fmt.Errorf("route %q: %s: %w", rc.Name, res.Kind, err)
		}

		key := strings.ToLower(res.Kind)
		if kinds[key] {
			return fmt.Errorf("route %q binds %s more than once", rc.Name, res.Kind)
		}
		kinds[key] = true

		if strings.EqualFold(res.Kind, c.RoutesDir) || strings.EqualFold(res.Instance, c.RoutesDir) {
			return fmt.Errorf("route %q: %s (%s) collides with the routes directory %q", rc.Name, res.Kind, res.Instance, c.RoutesDir)
		}
	}
	return nil
}

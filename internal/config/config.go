package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/danieljhkim/routemgr/internal/fsops"
	"github.com/danieljhkim/routemgr/internal/route"
)

// ErrBadConfiguration indicates the config file is missing, unreadable or invalid.
var ErrBadConfiguration = errors.New("bad configuration")

// ErrConfigExists is returned by Init when the file is present and force is off.
var ErrConfigExists = errors.New("config file already exists")

// Config is the route catalog together with the two location roots.
type Config struct {
	// ActivePath is the root of the active location
	ActivePath string `yaml:"active_path" json:"active_path"`

	// ArchivePath is the root of the archive location
	ArchivePath string `yaml:"archive_path" json:"archive_path"`

	// RoutesDir is the subfolder of each root holding primary route directories
	RoutesDir string `yaml:"routes_dir,omitempty" json:"routes_dir"`

	Routes []RouteConfig `yaml:"routes" json:"routes"`
}

// RouteConfig is one catalog entry.
type RouteConfig struct {
	Name      string    `yaml:"name" json:"name"`
	Resources Resources `yaml:"resources" json:"resources"`
}

// Resources is an ordered kind -> instance mapping. Order follows the file.
type Resources []route.Resource

// UnmarshalYAML decodes a mapping node, keeping key order.
func (r *Resources) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: resources must be a mapping of kind to instance", node.Line)
	}

	out := make(Resources, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if key.Kind != yaml.ScalarNode || value.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: resource entries must be scalar", key.Line)
		}
		out = append(out, route.Resource{Kind: key.Value, Instance: value.Value})
	}
	*r = out
	return nil
}

// MarshalYAML encodes the resources as a mapping in their configured order.
func (r Resources) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, res := range r {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: res.Kind},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: res.Instance},
		)
	}
	return node, nil
}

// Load reads the config file at path.
//
// A .env file in the working directory or next to the config file is loaded
// first; variables already set in the environment win. ${VAR} references in
// the file are expanded and relative location roots are resolved against the
// config file's directory. Load does not validate; call Validate.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()
	_ = godotenv.Load(filepath.Join(filepath.Dir(path), ".env"))

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: configuration file not found: %s (run 'routemgr config init')", ErrBadConfiguration, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse([]byte(os.ExpandEnv(string(data))))
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	cfg.ActivePath = resolvePath(base, cfg.ActivePath)
	cfg.ArchivePath = resolvePath(base, cfg.ArchivePath)

	return cfg, nil
}

// Parse decodes config YAML and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config

	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: failed to parse config: %w", ErrBadConfiguration, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	c.ActivePath = strings.TrimSpace(c.ActivePath)
	c.ArchivePath = strings.TrimSpace(c.ArchivePath)
	if strings.TrimSpace(c.RoutesDir) == "" {
		c.RoutesDir = route.DefaultRoutesDir
	}
	for i := range c.Routes {
		c.Routes[i].Name = strings.TrimSpace(c.Routes[i].Name)
	}
}

func resolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// Definitions returns the catalog as route definitions, in file order.
func (c *Config) Definitions() []route.Definition {
	defs := make([]route.Definition, 0, len(c.Routes))
	for _, rc := range c.Routes {
		defs = append(defs, route.NewDefinition(rc.Name, rc.Resources...))
	}
	return defs
}

// Resolver returns the path resolver for the configured roots.
func (c *Config) Resolver() *route.Resolver {
	return route.NewResolver(c.ActivePath, c.ArchivePath, c.RoutesDir)
}

// Marshal renders the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

const exampleConfig = `# routemgr route catalog
#
# Every route has a primary directory <root>/Routes/<name> and one directory
# per resource kind. In the active location a resource lives at
# <active_path>/<kind>; in the archive at <archive_path>/<instance>.
# Both roots must be on the same volume and must not be nested.

active_path: ${HOME}/Simulator
archive_path: ${HOME}/SimulatorArchive

routes:
  - name: Europe1
    resources:
      Global: GlobalA
      Sound: SoundA
  - name: Europe2
    resources:
      Global: GlobalA
      Sound: SoundB
`

// Init writes an example config to path. An existing file is kept unless
// force is set.
func Init(fs fsops.FS, path string, force bool) error {
	exists, err := fs.Exists(path)
	if err != nil {
		return fmt.Errorf("failed to check config file: %w", err)
	}
	if exists && !force {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}

	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := fs.AtomicWrite(path, []byte(exampleConfig), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

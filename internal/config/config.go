// Package config holds the typeprobe.yaml project configuration and the
// literal tokens of the query language.
//
// A typeprobe.yaml names the catalogs queries run against:
//
//	sources:
//	  - go: [./...]
//	    dir: .
//	  - index: snapshots/zoo.yaml
//	  - proto: [api/store.proto]
//	    import_paths: [api]
//	  - grpc: localhost:50051
//	join: space
//	color: auto
//	timeout: 30s
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level typeprobe.yaml configuration.
type Config struct {
	// Sources lists the catalogs, in resolution order.
	Sources []Source `yaml:"sources"`

	// Join is how command-line words are joined into a query: "space" or "concat".
	Join string `yaml:"join,omitempty"`

	// Color is "auto", "always" or "never".
	Color string `yaml:"color,omitempty"`

	// Timeout bounds catalog loading (go/packages, gRPC reflection).
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// Dir is the directory holding the config file. Relative paths in
	// sources are resolved against it.
	Dir string `yaml:"-"`
}

// Source is one catalog. Exactly one of Go, Index, SQLite, Proto or GRPC is set.
type Source struct {
	// Go lists package patterns loaded with go/packages.
	Go []string `yaml:"go,omitempty"`

	// Dir is the directory the go command runs in. Only valid with go.
	Dir string `yaml:"dir,omitempty"`

	// Tests includes test variants. Only valid with go.
	Tests bool `yaml:"tests,omitempty"`

	// Tags are build tags. Only valid with go.
	Tags []string `yaml:"tags,omitempty"`

	// Index is a YAML snapshot file.
	Index string `yaml:"index,omitempty"`

	// SQLite is a SQLite snapshot file.
	SQLite string `yaml:"sqlite,omitempty"`

	// Proto lists .proto files.
	Proto []string `yaml:"proto,omitempty"`

	// ImportPaths are the proto import roots. Only valid with proto.
	ImportPaths []string `yaml:"import_paths,omitempty"`

	// GRPC is the target of a server exposing reflection.
	GRPC string `yaml:"grpc,omitempty"`
}

// Kind returns which catalog the source describes, or "" if none.
func (s *Source) Kind() string {
	switch {
	case len(s.Go) > 0:
		return SourceGo
	case s.Index != "":
		return SourceIndex
	case s.SQLite != "":
		return SourceSQLite
	case len(s.Proto) > 0:
		return SourceProto
	case s.GRPC != "":
		return SourceGRPC
	}
	return ""
}

func (s *Source) kinds() int {
	n := 0
	for _, set := range []bool{len(s.Go) > 0, s.Index != "", s.SQLite != "", len(s.Proto) > 0, s.GRPC != ""} {
		if set {
			n++
		}
	}
	return n
}

// LoadConfig reads and parses a typeprobe.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg, err := ParseConfig(data, path)
	if err != nil {
		return nil, err
	}
	if abs, err := filepath.Abs(filepath.Dir(path)); err == nil {
		cfg.Dir = abs
	}
	return cfg, nil
}

// ParseConfig parses typeprobe.yaml content from bytes.
// The path argument is used only for error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.normalize()
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// FindConfig searches for typeprobe.yaml starting from dir and walking up
// to parent directories.
// Returns the path to the config file and nil error if found,
// or empty string and nil error if not found.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return "", nil
		}
		dir = parent
	}
}

// validate checks the configuration for semantic errors.
func (c *Config) validate(path string) error {
	if len(c.Sources) == 0 {
		return fmt.Errorf("%s: no sources defined", path)
	}

	for i := range c.Sources {
		src := &c.Sources[i]
		switch src.kinds() {
		case 0:
			return fmt.Errorf("%s: sources[%d]: one of go, index, sqlite, proto, or grpc is required", path, i)
		case 1:
		default:
			return fmt.Errorf("%s: sources[%d]: go, index, sqlite, proto, and grpc are mutually exclusive", path, i)
		}

		kind := src.Kind()
		if kind != SourceGo && (src.Dir != "" || src.Tests || len(src.Tags) > 0) {
			return fmt.Errorf("%s: sources[%d] (%s): dir, tests and tags are only valid with go", path, i, kind)
		}
		if kind != SourceProto && len(src.ImportPaths) > 0 {
			return fmt.Errorf("%s: sources[%d] (%s): import_paths is only valid with proto", path, i, kind)
		}
		for j, pattern := range src.Go {
			if strings.TrimSpace(pattern) == "" {
				return fmt.Errorf("%s: sources[%d].go[%d]: empty package pattern", path, i, j)
			}
		}
	}

	if c.Join != "" && !slices.Contains(JoinModes, c.Join) {
		return fmt.Errorf("%s: join %q must be one of %s", path, c.Join, strings.Join(JoinModes, ", "))
	}
	if c.Color != "" && !slices.Contains(ColorModes, c.Color) {
		return fmt.Errorf("%s: color %q must be one of %s", path, c.Color, strings.Join(ColorModes, ", "))
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%s: timeout must not be negative", path)
	}
	return nil
}

// normalize lower-cases the mode names, matching how the command line
// flags are parsed.
func (c *Config) normalize() {
	c.Join = strings.ToLower(c.Join)
	c.Color = strings.ToLower(c.Color)
}

// setDefaults fills in default values for omitted fields.
func (c *Config) setDefaults() {
	if c.Join == "" {
		c.Join = DefaultJoin
	}
	if c.Color == "" {
		c.Color = DefaultColor
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
}

// Abs resolves a path from the config file against the config directory.
func (c *Config) Abs(p string) string {
	if p == "" || filepath.IsAbs(p) || c.Dir == "" {
		return p
	}
	return filepath.Join(c.Dir, p)
}

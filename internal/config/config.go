// Package config loads roomservice.config.yml and turns it into the room and
// global hook definitions the orchestrator registers.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"roomservice/internal/core"
)

// FileName is the project file looked up during discovery.
const FileName = "roomservice.config.yml"

// DefaultCacheDirName is the cache directory created next to the config file.
const DefaultCacheDirName = ".roomservice"

var (
	ErrNotFound = errors.New("config file not found")
	ErrInvalid  = errors.New("invalid config")
)

// ValidationError reports a config file that parsed but cannot be used, or a
// room filter that names unknown rooms.
type ValidationError struct {
	Kind error
	Path string
	Msg  string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Kind.Error()
	if e.Path != "" {
		msg = fmt.Sprintf("%s %s", msg, e.Path)
	}
	if e.Msg != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Msg)
	}
	return msg
}

func (e *ValidationError) Unwrap() error { return e.Kind }

func invalidf(path, format string, args ...any) error {
	return &ValidationError{Kind: ErrInvalid, Path: path, Msg: fmt.Sprintf(format, args...)}
}

// RoomConfig is one entry of the rooms map.
type RoomConfig struct {
	Path       string `yaml:"path"`
	Include    string `yaml:"include,omitempty"`
	IgnoreFile string `yaml:"ignoreFile,omitempty"`

	core.Hooks `yaml:",inline"`
}

// Config is the parsed project file.
type Config struct {
	BeforeAll string                `yaml:"beforeAll,omitempty"`
	AfterAll  string                `yaml:"afterAll,omitempty"`
	Rooms     map[string]RoomConfig `yaml:"rooms"`

	// Path is the absolute path of the file the config was read from.
	Path string `yaml:"-"`
}

// Dir returns the directory containing the config file. Room paths are
// relative to it.
func (c *Config) Dir() string { return filepath.Dir(c.Path) }

// DefaultCacheDir returns <config dir>/.roomservice.
func (c *Config) DefaultCacheDir() string {
	return filepath.Join(c.Dir(), DefaultCacheDirName)
}

// Find locates the config file for start.
//
// A start path ending in .yml or .yaml is used as-is. Otherwise start is a
// directory and FileName is searched for there and in every parent up to the
// filesystem root.
func Find(start string) (string, error) {
	if start == "" {
		start = "."
	}
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", start, err)
	}
	if ext := filepath.Ext(abs); ext == ".yml" || ext == ".yaml" {
		if _, err := os.Stat(abs); err != nil {
			return "", &ValidationError{Kind: ErrNotFound, Path: abs}
		}
		return abs, nil
	}

	dir := abs
	for {
		candidate := filepath.Join(dir, FileName)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", &ValidationError{Kind: ErrNotFound, Msg: fmt.Sprintf("no %s in %s or any parent directory", FileName, abs)}
		}
		dir = parent
	}
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &ValidationError{Kind: ErrNotFound, Path: path}
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %q: %w", path, err)
	}
	return Parse(data, abs)
}

// Parse decodes config bytes. path is recorded on the result and used to
// resolve relative room paths.
func Parse(data []byte, path string) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, invalidf(path, "%v", err)
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects rooms without a path.
func (c *Config) Validate() error {
	for _, name := range c.Names() {
		if strings.TrimSpace(name) == "" {
			return invalidf(c.Path, "room name must not be empty")
		}
		if strings.ContainsAny(name, `/\`) {
			return invalidf(c.Path, "room name %q must not contain path separators", name)
		}
		if strings.TrimSpace(c.Rooms[name].Path) == "" {
			return invalidf(c.Path, "room %q has no path", name)
		}
	}
	return nil
}

// Names returns the room names in sorted order.
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Rooms))
	for name := range c.Rooms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Filter restricts which rooms are registered. Only, when non-empty, keeps
// just the named rooms; Ignore drops the named rooms.
type Filter struct {
	Only   []string
	Ignore []string
}

// RoomSpecs returns the rooms selected by f, sorted by name, with paths
// resolved against the config directory. Every name in f must exist.
func (c *Config) RoomSpecs(f Filter) ([]core.RoomSpec, error) {
	only, err := c.nameSet("--only", f.Only)
	if err != nil {
		return nil, err
	}
	ignored, err := c.nameSet("--ignore", f.Ignore)
	if err != nil {
		return nil, err
	}

	var specs []core.RoomSpec
	for _, name := range c.Names() {
		if len(only) > 0 {
			if _, ok := only[name]; !ok {
				continue
			}
		}
		if _, ok := ignored[name]; ok {
			continue
		}
		rc := c.Rooms[name]
		spec := core.RoomSpec{
			Name:       name,
			Path:       c.resolve(rc.Path),
			Include:    rc.Include,
			IgnoreFile: rc.IgnoreFile,
			Hooks:      rc.Hooks,
		}
		if spec.IgnoreFile != "" {
			spec.IgnoreFile = c.resolve(spec.IgnoreFile)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func (c *Config) nameSet(flag string, names []string) (map[string]struct{}, error) {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := c.Rooms[n]; !ok {
			return nil, invalidf(c.Path, "%s names unknown room %q", flag, n)
		}
		set[n] = struct{}{}
	}
	return set, nil
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(c.Dir(), p)
}

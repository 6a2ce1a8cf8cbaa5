// Package config handles aotjs.toml runtime configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/chazu/aotjs/vm"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

// FileName is the configuration file looked up by Load and FindAndLoad.
const FileName = "aotjs.toml"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config represents an aotjs.toml file.
type Config struct {
	Engine Engine `toml:"engine"`
	Log    Log    `toml:"log"`

	// Path is the file the configuration was read from, empty for
	// Default and Parse.
	Path string `toml:"-"`
}

// Engine configures vm.Options.
type Engine struct {
	StackSize   int  `toml:"stack-size"`
	GCThreshold int  `toml:"gc-threshold"`
	ForceGC     bool `toml:"force-gc"`
}

// Log configures the commonlog backend.
type Log struct {
	// Verbosity follows commonlog: 0 is errors and warnings only, 1 adds
	// info, 2 adds debug. Negative silences logging.
	Verbosity int `toml:"verbosity"`

	// Path is a log file; empty logs to stderr.
	Path string `toml:"path"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Engine: Engine{
			StackSize:   vm.DefaultStackSize,
			GCThreshold: vm.DefaultGCThreshold,
		},
	}
}

// Parse decodes configuration text on top of Default.
func Parse(data []byte) (*Config, error) {
	c := Default()
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: unknown key %s", ErrInvalid, undecoded[0])
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load parses the aotjs.toml file in dir.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.Path, err = filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	if c.Log.Path != "" && !filepath.IsAbs(c.Log.Path) {
		c.Log.Path = filepath.Join(filepath.Dir(c.Path), c.Log.Path)
	}
	return c, nil
}

// FindAndLoad walks up from startDir to find an aotjs.toml file, then
// loads it. It returns Default if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return Default(), nil
		}
		dir = parent
	}
}

// Validate reports settings an Engine cannot run with.
func (c *Config) Validate() error {
	if c.Engine.StackSize <= 0 {
		return fmt.Errorf("%w: engine.stack-size must be positive, got %d", ErrInvalid, c.Engine.StackSize)
	}
	if c.Engine.GCThreshold == 0 {
		return fmt.Errorf("%w: engine.gc-threshold must be positive, or negative to disable", ErrInvalid)
	}
	if c.Log.Verbosity > 2 {
		return fmt.Errorf("%w: log.verbosity must be at most 2, got %d", ErrInvalid, c.Log.Verbosity)
	}
	return nil
}

// EngineOptions converts the [engine] table.
func (c *Config) EngineOptions() vm.Options {
	return vm.Options{
		StackSize:   c.Engine.StackSize,
		GCThreshold: c.Engine.GCThreshold,
		ForceGC:     c.Engine.ForceGC,
	}
}

// ConfigureLogging applies the [log] table to the process-wide commonlog
// backend.
func (c *Config) ConfigureLogging() {
	var path *string
	if c.Log.Path != "" {
		path = &c.Log.Path
	}
	commonlog.Configure(c.Log.Verbosity, path)
}

// NewEngine configures logging and creates an Engine.
func (c *Config) NewEngine() *vm.Engine {
	c.ConfigureLogging()
	return vm.NewEngine(c.EngineOptions())
}

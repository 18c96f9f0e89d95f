// Package config loads the macro table and logging settings for the
// command line tool.
package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/duke-git/lancet/v2/maputil"
	"gopkg.in/yaml.v3"

	"github.com/fwessels/cppcond"
	"github.com/fwessels/cppcond/internal/logger"
)

// Config is the merged configuration.
type Config struct {
	// Macros maps names to an integer, a boolean, an expression string,
	// or nothing (defined as 1).
	Macros map[string]any `yaml:"macros"`
	Trace  bool           `yaml:"trace"`
	Log    LogConfig      `yaml:"log"`

	defines []string
	undefs  []string
}

// LogConfig mirrors logger.Config in the YAML file.
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	Output     string `yaml:"output"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
}

// DefaultConfig returns a Config with no macros and warn-level logging to
// stderr.
func DefaultConfig() *Config {
	return &Config{
		Macros: map[string]any{},
		Log: LogConfig{
			Level:      "warn",
			Format:     "console",
			Output:     "stderr",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     7,
		},
	}
}

// Logger converts the log section for logger.New.
func (c *Config) Logger() *logger.Config {
	return &logger.Config{
		Level:      c.Log.Level,
		Format:     c.Log.Format,
		Output:     c.Log.Output,
		FilePath:   c.Log.File,
		MaxSize:    c.Log.MaxSize,
		MaxBackups: c.Log.MaxBackups,
		MaxAge:     c.Log.MaxAge,
	}
}

// Names returns the configured macro names in sorted order, before
// command line definitions are applied.
func (c *Config) Names() []string {
	names := maputil.Keys(c.Macros)
	sort.Strings(names)
	return names
}

// Environment builds a fresh macro table: file macros, then -D
// definitions, then -U removals.
func (c *Config) Environment() (cppcond.Macros, error) {
	fromFile := make(cppcond.Macros, len(c.Macros))
	for _, name := range c.Names() {
		v, err := macroValue(name, c.Macros[name])
		if err != nil {
			return nil, err
		}
		fromFile[name] = v
	}

	fromFlags := make(cppcond.Macros, len(c.defines))
	for _, d := range c.defines {
		name, v, err := cppcond.ParseMacro(d)
		if err != nil {
			return nil, fmt.Errorf("-D %s: %w", d, err)
		}
		fromFlags[name] = v
	}

	env := cppcond.Macros(maputil.Merge(fromFile, fromFlags))
	for _, name := range c.undefs {
		delete(env, name)
	}
	return env, nil
}

func macroValue(name string, raw any) (cppcond.Value, error) {
	if !cppcond.IsIdentifier(name) {
		return cppcond.Value{}, fmt.Errorf("macros: invalid name %q", name)
	}
	switch x := raw.(type) {
	case nil:
		return cppcond.Int(1), nil
	case bool:
		return cppcond.Bool(x), nil
	case int:
		return cppcond.Int(int64(x)), nil
	case int64:
		return cppcond.Int(x), nil
	case uint64:
		if x > 1<<63-1 {
			return cppcond.Value{}, fmt.Errorf("macros: %s: %d out of range", name, x)
		}
		return cppcond.Int(int64(x)), nil
	case string:
		v, err := cppcond.Evaluate(x, nil)
		if err != nil {
			return cppcond.Value{}, fmt.Errorf("macros: %s: %w", name, err)
		}
		return v, nil
	default:
		return cppcond.Value{}, fmt.Errorf("macros: %s: unsupported value %v (%T)", name, raw, raw)
	}
}

// Loader loads configuration from multiple sources with the precedence
// defaults < YAML file < environment variables < command line.
type Loader struct {
	configPath string
	envPrefix  string
	lookupEnv  func(string) (string, bool)
	defines    []string
	undefs     []string
}

func NewLoader() *Loader {
	return &Loader{
		envPrefix: "CPPCOND_",
		lookupEnv: os.LookupEnv,
	}
}

// WithConfigPath sets the YAML file to read. An empty path skips it.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// WithLookupEnv replaces os.LookupEnv.
func (l *Loader) WithLookupEnv(fn func(string) (string, bool)) *Loader {
	l.lookupEnv = fn
	return l
}

// WithDefines adds -D style NAME or NAME=EXPR definitions.
func (l *Loader) WithDefines(defs []string) *Loader {
	l.defines = append(l.defines, defs...)
	return l
}

// WithUndefs adds -U style removals.
func (l *Loader) WithUndefs(names []string) *Loader {
	l.undefs = append(l.undefs, names...)
	return l
}

func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("loading %s: %w", l.configPath, err)
		}
	}
	if err := l.applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	for _, name := range l.undefs {
		if !cppcond.IsIdentifier(name) {
			return nil, fmt.Errorf("-U %s: invalid macro name", name)
		}
	}
	cfg.defines = append(cfg.defines, l.defines...)
	cfg.undefs = append(cfg.undefs, l.undefs...)
	return cfg, nil
}

func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}
	if cfg.Macros == nil {
		cfg.Macros = map[string]any{}
	}
	return nil
}

func (l *Loader) applyEnvOverrides(cfg *Config) error {
	if v, ok := l.lookupEnv(l.envPrefix + "LOG_LEVEL"); ok && v != "" {
		cfg.Log.Level = v
	}
	if v, ok := l.lookupEnv(l.envPrefix + "LOG_FORMAT"); ok && v != "" {
		cfg.Log.Format = v
	}
	if v, ok := l.lookupEnv(l.envPrefix + "TRACE"); ok && v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sTRACE: %w", l.envPrefix, err)
		}
		cfg.Trace = on
	}
	return nil
}

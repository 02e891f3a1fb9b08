package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Dir is the per-project directory holding the generation cache and the
// optional config.yaml.
const Dir = ".fngroup"

// FileName is the project-level configuration file.
const FileName = "fngroup.yaml"

// Config holds all configuration for fngroup.
type Config struct {
	Generate GenerateConfig `yaml:"generate"`
	Cache    CacheConfig    `yaml:"cache"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GenerateConfig holds code generation configuration.
type GenerateConfig struct {
	Includes       []string `yaml:"includes"`
	Excludes       []string `yaml:"excludes"`
	OutputSuffix   string   `yaml:"output_suffix"` // replaces the .fng extension
	TuplePackage   string   `yaml:"tuple_package"`
	LineDirectives bool     `yaml:"line_directives"`
	FixImports     bool     `yaml:"fix_imports"`
	Workers        int      `yaml:"workers"`
}

// CacheConfig holds the incremental generation cache configuration.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // relative to the project root
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Generate: GenerateConfig{
			Includes:       []string{"**/*.fng"},
			Excludes:       []string{"**/vendor/**", "**/.git/**", "**/node_modules/**", "**/testdata/**"},
			OutputSuffix:   "_fng.go",
			TuplePackage:   "fngroup/tuple",
			LineDirectives: true,
			FixImports:     false,
			Workers:        4,
		},
		Cache: CacheConfig{
			Enabled: true,
			Path:    filepath.Join(Dir, "cache.db"),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for fngroup.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	// Try .fngroup/config.yaml
	path = filepath.Join(dir, Dir, "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Validate reports settings that cannot produce a usable generator.
func (c *Config) Validate() error {
	if c.Generate.OutputSuffix == "" || !strings.HasSuffix(c.Generate.OutputSuffix, ".go") {
		return fmt.Errorf("generate.output_suffix must end in .go, got %q", c.Generate.OutputSuffix)
	}
	if c.Generate.TuplePackage == "" {
		return fmt.Errorf("generate.tuple_package must not be empty")
	}
	if c.Generate.Workers < 0 {
		return fmt.Errorf("generate.workers must not be negative")
	}
	if _, err := c.Logging.SlogLevel(); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	return nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// OutputPath returns the generated file written for the .fng source at src.
func (c *Config) OutputPath(src string) string {
	return strings.TrimSuffix(src, filepath.Ext(src)) + c.Generate.OutputSuffix
}

// CacheDBPath returns the path to the generation cache under root.
func (c *Config) CacheDBPath(root string) string {
	if filepath.IsAbs(c.Cache.Path) {
		return c.Cache.Path
	}
	return filepath.Join(root, c.Cache.Path)
}

// SlogLevel parses Level.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("logging.level: %w", err)
	}
	return level, nil
}

// EnsureDir ensures the .fngroup directory exists.
func EnsureDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, Dir), 0755)
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/edp1096/mini-spice/pkg/matrix"
	"github.com/edp1096/mini-spice/pkg/report"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config holds the simulator settings that may come from a file. Command
// line flags override any of them.
type Config struct {
	// Solver selects the matrix backend: "dense" or "sparse"
	Solver string `yaml:"solver"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// OutputDir is where relative export paths are written
	OutputDir string `yaml:"output_dir"`

	// CSV, Plot and Chart are transient export file names; empty disables
	CSV   string `yaml:"csv"`
	Plot  string `yaml:"plot"`
	Chart string `yaml:"chart"`

	// PrintRows is how many leading and trailing time points are printed
	PrintRows int `yaml:"print_rows"`
}

func DefaultConfig() *Config {
	return &Config{
		Solver:    string(matrix.Dense),
		LogLevel:  "warn",
		LogFormat: "text",
		OutputDir: ".",
		CSV:       report.DefaultCSVName,
		PrintRows: report.DefaultRows,
	}
}

// Load reads path when it is given. Otherwise it searches, in order:
//  1. ./spice.yaml
//  2. ./.spice.yaml
//  3. ~/.config/mini-spice/config.yaml
//
// and returns DefaultConfig if none exists.
func Load(path string) (*Config, error) {
	if path != "" {
		return LoadFile(path)
	}

	for _, candidate := range searchPaths() {
		if _, err := os.Stat(candidate); err == nil {
			return LoadFile(candidate)
		}
	}
	return DefaultConfig(), nil
}

func searchPaths() []string {
	cwd, _ := os.Getwd()
	paths := []string{
		filepath.Join(cwd, "spice.yaml"),
		filepath.Join(cwd, ".spice.yaml"),
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "mini-spice", "config.yaml"))
	}
	return paths
}

// LoadFile reads one YAML file over the defaults, so keys it leaves out keep
// their default values.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch matrix.Backend(strings.ToLower(c.Solver)) {
	case matrix.Dense, matrix.Sparse:
	default:
		return fmt.Errorf("%w: unknown solver %q", ErrInvalidConfig, c.Solver)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.PrintRows < 0 {
		return fmt.Errorf("%w: print_rows must not be negative", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) Backend() matrix.Backend {
	return matrix.Backend(strings.ToLower(c.Solver))
}

// OutputPath places a relative export name under OutputDir.
func (c *Config) OutputPath(name string) string {
	if name == "" || filepath.IsAbs(name) || c.OutputDir == "" {
		return name
	}
	return filepath.Join(c.OutputDir, name)
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

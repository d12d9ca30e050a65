// Package config handles loading and saving lifespan configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config: ~/.config/lifespan/config.yaml
//
// Every field is optional; command-line flags override what the file sets.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/lifespan/pkg/chart"
	"github.com/vanderheijden86/lifespan/pkg/hooks"
)

// DefaultTable is the SQLite table read when none is configured.
const DefaultTable = "records"

// ChartConfig selects the chart preset and optional overrides.
type ChartConfig struct {
	Variant string  `yaml:"variant,omitempty"` // full, compact
	Sort    bool    `yaml:"sort,omitempty"`    // Sort rows by location after load
	Width   float64 `yaml:"width,omitempty"`   // Canvas width override (0 keeps preset)
	Height  float64 `yaml:"height,omitempty"`  // Canvas height override (0 keeps preset)

	Palette PaletteConfig `yaml:"palette,omitempty"`
}

// PaletteConfig overrides individual palette colors. Empty fields keep
// the default color.
type PaletteConfig struct {
	Healthy    string `yaml:"healthy,omitempty"`
	Life       string `yaml:"life,omitempty"`
	Retirement string `yaml:"retirement,omitempty"`
	Bar        string `yaml:"bar,omitempty"`
}

// WatchConfig tunes --watch.
type WatchConfig struct {
	Debounce     time.Duration `yaml:"debounce,omitempty"`
	PollInterval time.Duration `yaml:"poll_interval,omitempty"`
	ForcePoll    bool          `yaml:"force_poll,omitempty"`
}

// Config is the top-level configuration for lifespan.
type Config struct {
	Input   string      `yaml:"input,omitempty"`   // Path, http(s) URL or sqlite:path
	Table   string      `yaml:"table,omitempty"`   // SQLite table name
	Outputs []string    `yaml:"outputs,omitempty"` // Files to write; format from extension
	Chart   ChartConfig `yaml:"chart,omitempty"`
	Watch   WatchConfig `yaml:"watch,omitempty"`

	Hooks hooks.Phases `yaml:"hooks,omitempty"` // Commands run around export
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Table:   DefaultTable,
		Outputs: []string{"lifespan.svg"},
		Chart: ChartConfig{
			Variant: chart.VariantFull,
		},
		Watch: WatchConfig{
			Debounce:     300 * time.Millisecond,
			PollInterval: 2 * time.Second,
		},
	}
}

// ConfigDir returns the XDG config directory for lifespan.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "lifespan")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "lifespan")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(expandHome(path))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}

	cfg.Input = expandHome(cfg.Input)
	for i := range cfg.Outputs {
		cfg.Outputs[i] = expandHome(cfg.Outputs[i])
	}
	if cfg.Table == "" {
		cfg.Table = DefaultTable
	}

	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Validate checks values that would only fail later, at render time.
func (c Config) Validate() error {
	if _, err := chart.LayoutFor(c.Chart.Variant); err != nil {
		return err
	}
	if c.Chart.Width < 0 || c.Chart.Height < 0 {
		return fmt.Errorf("chart size must not be negative (%gx%g)", c.Chart.Width, c.Chart.Height)
	}
	if c.Watch.Debounce < 0 || c.Watch.PollInterval < 0 {
		return fmt.Errorf("watch intervals must not be negative")
	}
	if err := c.Hooks.Validate(); err != nil {
		return err
	}
	return nil
}

// Layout resolves the configured variant and overrides into a chart layout.
func (c Config) Layout() (chart.Layout, error) {
	l, err := chart.LayoutFor(c.Chart.Variant)
	if err != nil {
		return chart.Layout{}, err
	}
	if c.Chart.Width > 0 {
		l.Width = c.Chart.Width
	}
	if c.Chart.Height > 0 {
		l.Height = c.Chart.Height
	}
	p := c.Chart.Palette
	l.Palette.Healthy = orDefault(p.Healthy, l.Palette.Healthy)
	l.Palette.Life = orDefault(p.Life, l.Palette.Life)
	l.Palette.Retirement = orDefault(p.Retirement, l.Palette.Retirement)
	l.Palette.Bar = orDefault(p.Bar, l.Palette.Bar)
	if err := l.Validate(); err != nil {
		return chart.Layout{}, err
	}
	return l, nil
}

// ApplyOutputs replaces the configured outputs with a comma separated
// list, ignoring blanks. An empty list leaves the config unchanged.
func (c *Config) ApplyOutputs(list []string) {
	var outs []string
	for _, item := range list {
		for _, p := range strings.Split(item, ",") {
			if p = strings.TrimSpace(p); p != "" {
				outs = append(outs, expandHome(p))
			}
		}
	}
	if len(outs) > 0 {
		c.Outputs = outs
	}
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

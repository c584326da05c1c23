// Package config loads the window manager configuration from YAML.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/acmnu/wmii/internal/tiling"
	"github.com/acmnu/wmii/internal/wm"
)

// BarLabel is a status bar label created at startup.
type BarLabel struct {
	Data   string `yaml:"data"`
	Colors string `yaml:"colors,omitempty"`
}

// Config is the effective configuration.
type Config struct {
	// Address is the 9P listen address; empty means the default under the
	// namespace directory.
	Address  string `yaml:"address,omitempty"`
	Display  string `yaml:"display,omitempty"`
	LogLevel string `yaml:"log_level"`

	Font          string `yaml:"font"`
	Border        int    `yaml:"border"`
	Snap          int    `yaml:"snap"`
	SelColors     string `yaml:"selcolors"`
	NormColors    string `yaml:"normcolors"`
	ColumnWidth   int    `yaml:"column_width"`
	ColumnMode    string `yaml:"column_mode"`
	PlacementGrid int    `yaml:"placement_grid"`
	DefaultTag    string `yaml:"default_tag"`

	Keys []string   `yaml:"keys,omitempty"`
	Bar  []BarLabel `yaml:"bar,omitempty"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	def := wm.DefaultDefaults()
	return &Config{
		LogLevel:      "info",
		Font:          def.Font,
		Border:        def.Border,
		Snap:          def.Snap,
		SelColors:     def.SelColors,
		NormColors:    def.NormColors,
		ColumnWidth:   def.ColWidth,
		ColumnMode:    def.ColMode.String(),
		PlacementGrid: tiling.DefaultCellSize,
		DefaultTag:    "1",
	}
}

// Defaults converts the configuration into the values served under /def.
// The config must have passed Validate.
func (c *Config) Defaults() wm.Defaults {
	mode, _ := wm.ParseMode(c.ColumnMode)
	return wm.Defaults{
		Font:       c.Font,
		Border:     c.Border,
		Snap:       c.Snap,
		SelColors:  c.SelColors,
		NormColors: c.NormColors,
		ColWidth:   c.ColumnWidth,
		ColMode:    mode,
		CellSize:   c.PlacementGrid,
	}
}

// LoggingLevel returns the slog level named by log_level.
func (c *Config) LoggingLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Validate checks every field against the limits the window manager
// enforces at runtime.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	if strings.TrimSpace(c.Font) == "" {
		return &ValidationError{Path: "font", Err: fmt.Errorf("font is required")}
	}
	for _, f := range []struct {
		path string
		v    int
	}{
		{"border", c.Border},
		{"snap", c.Snap},
		{"column_width", c.ColumnWidth},
	} {
		if f.v < 0 || f.v > wm.MaxValue {
			return &ValidationError{Path: f.path, Err: fmt.Errorf("%s must be in 0..%d", f.path, wm.MaxValue)}
		}
	}
	if c.PlacementGrid <= 0 || c.PlacementGrid > wm.MaxValue {
		return &ValidationError{Path: "placement_grid", Err: fmt.Errorf("placement_grid must be in 1..%d", wm.MaxValue)}
	}
	if _, err := wm.ParseColors(c.SelColors); err != nil {
		return &ValidationError{Path: "selcolors", Err: err}
	}
	if _, err := wm.ParseColors(c.NormColors); err != nil {
		return &ValidationError{Path: "normcolors", Err: err}
	}
	mode, err := wm.ParseMode(c.ColumnMode)
	if err != nil {
		return &ValidationError{Path: "column_mode", Err: err}
	}
	if mode == wm.ModeFloat {
		return &ValidationError{Path: "column_mode", Err: fmt.Errorf("column_mode must be column or stack")}
	}
	if tags, err := wm.ParseTags(c.DefaultTag); err != nil || len(tags) != 1 {
		return &ValidationError{Path: "default_tag", Err: fmt.Errorf("default_tag must be a single tag name")}
	}
	seen := make(map[string]bool, len(c.Keys))
	for _, k := range c.Keys {
		if k == "" || strings.ContainsAny(k, "/ \t\n") {
			return &ValidationError{Path: "keys", Err: fmt.Errorf("invalid key name %q", k)}
		}
		if seen[k] {
			return &ValidationError{Path: "keys", Err: fmt.Errorf("duplicate key %q", k)}
		}
		seen[k] = true
	}
	for i, l := range c.Bar {
		if l.Colors == "" {
			continue
		}
		if _, err := wm.ParseColors(l.Colors); err != nil {
			return &ValidationError{Path: fmt.Sprintf("bar.%d.colors", i), Err: err}
		}
	}
	return nil
}

// SaveTo writes the configuration to path, creating its directory.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

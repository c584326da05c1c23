package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

// RawConfig is one config file as written. Nil fields were not set.
type RawConfig struct {
	Include IncludeList `yaml:"include"`

	Address  *string `yaml:"address"`
	Display  *string `yaml:"display"`
	LogLevel *string `yaml:"log_level"`

	Font          *string `yaml:"font"`
	Border        *int    `yaml:"border"`
	Snap          *int    `yaml:"snap"`
	SelColors     *string `yaml:"selcolors"`
	NormColors    *string `yaml:"normcolors"`
	ColumnWidth   *int    `yaml:"column_width"`
	ColumnMode    *string `yaml:"column_mode"`
	PlacementGrid *int    `yaml:"placement_grid"`
	DefaultTag    *string `yaml:"default_tag"`

	Keys []string   `yaml:"keys"`
	Bar  []BarLabel `yaml:"bar"`
}

// merge returns c with every field set in overlay replaced. Lists are
// replaced whole.
func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c
	out.Include = nil

	if overlay.Address != nil {
		out.Address = overlay.Address
	}
	if overlay.Display != nil {
		out.Display = overlay.Display
	}
	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	if overlay.Font != nil {
		out.Font = overlay.Font
	}
	if overlay.Border != nil {
		out.Border = overlay.Border
	}
	if overlay.Snap != nil {
		out.Snap = overlay.Snap
	}
	if overlay.SelColors != nil {
		out.SelColors = overlay.SelColors
	}
	if overlay.NormColors != nil {
		out.NormColors = overlay.NormColors
	}
	if overlay.ColumnWidth != nil {
		out.ColumnWidth = overlay.ColumnWidth
	}
	if overlay.ColumnMode != nil {
		out.ColumnMode = overlay.ColumnMode
	}
	if overlay.PlacementGrid != nil {
		out.PlacementGrid = overlay.PlacementGrid
	}
	if overlay.DefaultTag != nil {
		out.DefaultTag = overlay.DefaultTag
	}
	if overlay.Keys != nil {
		out.Keys = append([]string(nil), overlay.Keys...)
	}
	if overlay.Bar != nil {
		out.Bar = append([]BarLabel(nil), overlay.Bar...)
	}
	return out
}

package config

import "fmt"

// ValidationError reports a bad value and, when known, where it was set.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// BuildEffectiveConfig applies raw over DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()

	if raw.Address != nil {
		cfg.Address = *raw.Address
	}
	if raw.Display != nil {
		cfg.Display = *raw.Display
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}
	if raw.Font != nil {
		cfg.Font = *raw.Font
	}
	cfg.Border = derefInt(raw.Border, cfg.Border)
	cfg.Snap = derefInt(raw.Snap, cfg.Snap)
	if raw.SelColors != nil {
		cfg.SelColors = *raw.SelColors
	}
	if raw.NormColors != nil {
		cfg.NormColors = *raw.NormColors
	}
	cfg.ColumnWidth = derefInt(raw.ColumnWidth, cfg.ColumnWidth)
	if raw.ColumnMode != nil {
		cfg.ColumnMode = *raw.ColumnMode
	}
	cfg.PlacementGrid = derefInt(raw.PlacementGrid, cfg.PlacementGrid)
	if raw.DefaultTag != nil {
		cfg.DefaultTag = *raw.DefaultTag
	}
	if raw.Keys != nil {
		cfg.Keys = raw.Keys
	}
	if raw.Bar != nil {
		cfg.Bar = raw.Bar
	}
	return cfg
}

func derefInt(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

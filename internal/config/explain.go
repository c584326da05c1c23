package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths are the top-level keys plus:
//
//	keys.<n>
//	bar.<n>.data
//	bar.<n>.colors
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}
	for p := path; p != ""; {
		if src, ok := res.Sources[p]; ok {
			return value, src, nil
		}
		i := strings.LastIndexByte(p, '.')
		if i < 0 {
			break
		}
		p = p[:i]
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	scalar := func(v any) (any, error) {
		if len(parts) != 1 {
			return nil, fmt.Errorf("%s has no children", parts[0])
		}
		return v, nil
	}
	switch parts[0] {
	case "address":
		return scalar(cfg.Address)
	case "display":
		return scalar(cfg.Display)
	case "log_level":
		return scalar(cfg.LogLevel)
	case "font":
		return scalar(cfg.Font)
	case "border":
		return scalar(cfg.Border)
	case "snap":
		return scalar(cfg.Snap)
	case "selcolors":
		return scalar(cfg.SelColors)
	case "normcolors":
		return scalar(cfg.NormColors)
	case "column_width":
		return scalar(cfg.ColumnWidth)
	case "column_mode":
		return scalar(cfg.ColumnMode)
	case "placement_grid":
		return scalar(cfg.PlacementGrid)
	case "default_tag":
		return scalar(cfg.DefaultTag)
	case "keys":
		if len(parts) == 1 {
			return cfg.Keys, nil
		}
		i, err := index(parts, len(cfg.Keys))
		if err != nil || len(parts) != 2 {
			return nil, fmt.Errorf("unknown config path %q", path)
		}
		return cfg.Keys[i], nil
	case "bar":
		if len(parts) == 1 {
			return cfg.Bar, nil
		}
		i, err := index(parts, len(cfg.Bar))
		if err != nil {
			return nil, fmt.Errorf("unknown config path %q", path)
		}
		if len(parts) == 2 {
			return cfg.Bar[i], nil
		}
		switch {
		case len(parts) == 3 && parts[2] == "data":
			return cfg.Bar[i].Data, nil
		case len(parts) == 3 && parts[2] == "colors":
			return cfg.Bar[i].Colors, nil
		}
	}
	return nil, fmt.Errorf("unknown config path %q", path)
}

func index(parts []string, n int) (int, error) {
	i, err := strconv.Atoi(parts[1])
	if err != nil || i < 0 || i >= n {
		return 0, fmt.Errorf("index %q out of range", parts[1])
	}
	return i, nil
}

package wm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/acmnu/wmii/internal/platform"
	"github.com/acmnu/wmii/internal/tiling"
)

// ColorsLen is the length of a color triple "#RRGGBB #RRGGBB #RRGGBB".
const ColorsLen = 23

// MaxValue bounds border and snap.
const MaxValue = 0xffff

// Defaults are the values exposed under /def.
type Defaults struct {
	Font       string
	Border     int
	Snap       int
	SelColors  string
	NormColors string
	ColWidth   int
	ColMode    Mode
	CellSize   int
}

// DefaultDefaults returns the built-in defaults.
func DefaultDefaults() Defaults {
	return Defaults{
		Font:       "fixed",
		Border:     2,
		Snap:       20,
		SelColors:  "#ffffff #335577 #447799",
		NormColors: "#222222 #eeeeee #666666",
		ColMode:    ModeColumn,
		CellSize:   tiling.DefaultCellSize,
	}
}

// ParseColors validates a color triple and converts it to a ColorSet. The
// order is text, background, border.
func ParseColors(s string) (platform.ColorSet, error) {
	if len(s) != ColorsLen || s[7] != ' ' || s[15] != ' ' {
		return platform.ColorSet{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	var out [3]platform.Color
	for i := range out {
		c, err := parseColor(s[i*8 : i*8+7])
		if err != nil {
			return platform.ColorSet{}, err
		}
		out[i] = c
	}
	return platform.ColorSet{Text: out[0], Background: out[1], Border: out[2]}, nil
}

func parseColor(s string) (platform.Color, error) {
	if len(s) != 7 || s[0] != '#' {
		return 0, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	return platform.Color(v), nil
}

// ParseValue parses a decimal in [0, MaxValue]. The whole string must be a
// number.
func ParseValue(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 0 || v > MaxValue {
		return 0, fmt.Errorf("%w: %q out of range 0..%d", ErrBadValue, s, MaxValue)
	}
	return v, nil
}

// Defaults returns a copy of the current defaults.
func (w *World) Defaults() Defaults { return w.def }

// SetBorder changes the border width and resizes every client.
func (w *World) SetBorder(v int) error {
	if v < 0 || v > MaxValue {
		return fmt.Errorf("%w: border %d", ErrBadValue, v)
	}
	w.def.Border = v
	w.resizeAll()
	return nil
}

// SetSnap changes the snapping distance used while moving floating frames.
func (w *World) SetSnap(v int) error {
	if v < 0 || v > MaxValue {
		return fmt.Errorf("%w: snap %d", ErrBadValue, v)
	}
	w.def.Snap = v
	return nil
}

// SetFont loads a new font and relayouts every view for the new bar height.
func (w *World) SetFont(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: empty font name", ErrBadValue)
	}
	h, err := w.surface.LoadFont(name)
	if err != nil {
		return fmt.Errorf("%w: font %q: %v", ErrBadValue, name, err)
	}
	w.def.Font = name
	w.barHeight = h
	for _, v := range w.views {
		w.arrangeView(v)
	}
	w.drawBar()
	return nil
}

// SetSelColors changes the colors of the focused client.
func (w *World) SetSelColors(s string) error {
	cs, err := ParseColors(s)
	if err != nil {
		return err
	}
	w.def.SelColors = s
	w.selColors = cs
	w.redrawAll()
	return nil
}

// SetNormColors changes the colors of unfocused clients.
func (w *World) SetNormColors(s string) error {
	cs, err := ParseColors(s)
	if err != nil {
		return err
	}
	w.def.NormColors = s
	w.normColors = cs
	w.redrawAll()
	return nil
}

// SetColWidth sets the width new tiling areas get. Zero splits the screen
// evenly.
func (w *World) SetColWidth(v int) error {
	if v < 0 || v > MaxValue {
		return fmt.Errorf("%w: column width %d", ErrBadValue, v)
	}
	w.def.ColWidth = v
	for _, view := range w.views {
		w.arrangeView(view)
	}
	return nil
}

// SetColMode sets the mode new tiling areas get.
func (w *World) SetColMode(m Mode) error {
	if m == ModeFloat {
		return fmt.Errorf("%w: %s", ErrBadMode, m)
	}
	w.def.ColMode = m
	return nil
}

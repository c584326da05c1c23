package wm

import (
	"fmt"
	"strings"

	"github.com/acmnu/wmii/internal/geom"
	"github.com/acmnu/wmii/internal/registry"
)

// Mode is the layout variant of an area.
type Mode int

const (
	ModeFloat Mode = iota
	ModeColumn
	ModeStack
)

func (m Mode) String() string {
	switch m {
	case ModeFloat:
		return "float"
	case ModeColumn:
		return "column"
	case ModeStack:
		return "stack"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode parses the contents of a mode file.
func ParseMode(s string) (Mode, error) {
	switch strings.TrimSpace(s) {
	case "float":
		return ModeFloat, nil
	case "column", "col", "default":
		return ModeColumn, nil
	case "stack":
		return ModeStack, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrBadMode, s)
}

// arrange recomputes the frame rectangles of a and shows them.
func (w *World) arrange(a *Area) {
	switch a.mode {
	case ModeFloat:
		w.arrangeFloat(a)
	case ModeColumn:
		w.arrangeColumn(a)
	case ModeStack:
		w.arrangeStack(a)
	}
}

// attach creates a frame for c in a and selects it. The frame becomes
// the client's current one when its view is shown.
func (w *World) attach(a *Area, c *Client) (*Frame, error) {
	id, err := w.allocate()
	if err != nil {
		return nil, err
	}
	return w.place(a, c, id), nil
}

// place adds a frame with the given id for c to a.
func (w *World) place(a *Area, c *Client, id registry.ID) *Frame {
	f := &Frame{id: id, area: a.id, client: c.id}
	w.frames[id] = f
	a.frames = append(a.frames, f)
	a.sel = len(a.frames) - 1
	c.frames = append(c.frames, f.id)
	if len(c.frames) == 1 || w.onScreen(a) {
		c.sel = len(c.frames) - 1
	}

	switch a.mode {
	case ModeFloat:
		w.attachFloat(a, f, c)
	case ModeColumn:
		w.attachColumn(a, f)
	case ModeStack:
		w.arrangeStack(a)
	}
	return f
}

// detach removes f from a and forgets it. Arranging the remaining frames
// is left to the caller.
func (w *World) detach(a *Area, f *Frame) {
	i := registry.ByID(a.frames, f.id)
	if i < 0 {
		return
	}
	if a.mode == ModeColumn {
		w.detachColumn(a, f)
	}
	a.frames = registry.Remove(a.frames, i)
	if a.sel > i {
		a.sel--
	}
	a.sel = registry.ClampSel(a.sel, len(a.frames))
	delete(w.frames, f.id)
}

// resize applies a requested frame rectangle. pt is the pointer position
// for drag operations and nil otherwise.
func (w *World) resize(f *Frame, r geom.Rect, pt *geom.Point) error {
	a := w.areas[f.area]
	switch a.mode {
	case ModeFloat:
		f.rect = r
		w.applyFrame(f)
		return nil
	case ModeColumn:
		return w.resizeColumn(a, f, r, pt)
	case ModeStack:
		w.arrangeStack(a)
	}
	return nil
}

// selected runs the layout's reaction to f becoming the selected frame.
func (w *World) selected(a *Area, f *Frame) {
	switch a.mode {
	case ModeFloat:
		if c := w.client(f.client); c != nil && w.onScreen(a) {
			w.display("raise", w.surface.Raise(c.frameWin))
		}
	case ModeColumn:
		if ci, _ := a.columnOf(f.id); ci >= 0 {
			a.mru = ci
		}
	case ModeStack:
		w.arrangeStack(a)
	}
}

// SetMode switches a tiling area between column and stack.
func (w *World) SetMode(a *Area, m Mode) error {
	if w.areaIndex(a) == 0 || m == ModeFloat {
		return fmt.Errorf("%w: %s", ErrBadMode, m)
	}
	if a.mode == m {
		return nil
	}
	a.mode = m
	a.cols = nil
	if m == ModeColumn {
		a.resetColumns()
	}
	w.arrange(a)
	return nil
}

// applyFrame moves the frame and client windows to match f. Frames of
// hidden views are parked off screen.
func (w *World) applyFrame(f *Frame) {
	a := w.areas[f.area]
	c := w.client(f.client)
	if a == nil || c == nil {
		return
	}
	d := w.decoration()
	if a.mode == ModeFloat {
		f.rect = c.hints.Match(f.rect, d)
		c.floatRect = f.rect
	}
	if w.currentFrame(c) != f {
		return
	}

	r := f.rect
	if !w.onScreen(a) {
		r.X += 2 * w.screen.Width
	}
	w.display("move frame", w.surface.MoveResize(c.frameWin, r))
	if a.mode != ModeStack || a.SelectedFrame() == f {
		cr := d.ClientRect(f.rect)
		if !cr.Empty() {
			w.display("move client", w.surface.MoveResize(c.win, cr))
			w.display("configure", w.surface.SendConfigure(c.win, cr.Translate(r.X, r.Y), c.border))
		}
	}
	w.drawClient(c)
}

func (w *World) onScreen(a *Area) bool {
	v := w.SelectedView()
	return v != nil && v.id == a.view
}

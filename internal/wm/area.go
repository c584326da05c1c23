package wm

import (
	"fmt"

	"github.com/acmnu/wmii/internal/geom"
	"github.com/acmnu/wmii/internal/registry"
)

// Frame presents one client inside one area.
type Frame struct {
	id     registry.ID
	area   registry.ID
	client registry.ID
	rect   geom.Rect
}

func (f *Frame) ID() registry.ID       { return f.id }
func (f *Frame) AreaID() registry.ID   { return f.area }
func (f *Frame) ClientID() registry.ID { return f.client }
func (f *Frame) Rect() geom.Rect       { return f.rect }

// Area is an ordered set of frames under one layout mode.
type Area struct {
	id     registry.ID
	view   registry.ID
	mode   Mode
	rect   geom.Rect
	frames []*Frame
	sel    int

	// column mode only
	cols []*column
	mru  int
}

func (a *Area) ID() registry.ID     { return a.id }
func (a *Area) ViewID() registry.ID { return a.view }
func (a *Area) Mode() Mode          { return a.mode }
func (a *Area) Rect() geom.Rect     { return a.rect }
func (a *Area) Frames() []*Frame    { return a.frames }
func (a *Area) Sel() int            { return a.sel }

// SelectedFrame returns the selected frame, or nil for an empty area.
func (a *Area) SelectedFrame() *Frame {
	f, _ := registry.Selected(a.frames, a.sel)
	return f
}

// Area returns a live area.
func (w *World) Area(id registry.ID) *Area { return w.areas[id] }

// Frame returns a live frame.
func (w *World) Frame(id registry.ID) *Frame { return w.frames[id] }

// ViewOf returns the view owning a.
func (w *World) ViewOf(a *Area) *View { return w.viewOf(a) }

func (w *World) viewOf(a *Area) *View {
	if a == nil {
		return nil
	}
	return w.ViewByID(a.view)
}

// AreaIndex returns the position of a in its view, or -1.
func (w *World) AreaIndex(a *Area) int { return w.areaIndex(a) }

func (w *World) areaIndex(a *Area) int {
	v := w.viewOf(a)
	if v == nil {
		return -1
	}
	return registry.ByID(v.areas, a.id)
}

func (w *World) newArea(v *View, m Mode) (*Area, error) {
	id, err := w.allocate()
	if err != nil {
		return nil, err
	}
	a := &Area{id: id, view: v.id, mode: m}
	if m == ModeColumn {
		a.resetColumns()
	}
	v.areas = append(v.areas, a)
	w.areas[id] = a
	return a, nil
}

// CreateArea appends a tiling area to v and selects it. It fails when the
// existing areas could not keep MinColWidth.
func (w *World) CreateArea(v *View) (*Area, error) {
	width := w.screen.Width
	n := len(v.areas)
	cw := w.def.ColWidth
	if cw == 0 {
		cw = width
		if n > 1 {
			cw = width / n
		}
	}
	if n >= 2 && (n-1)*MinColWidth+cw > width {
		return nil, fmt.Errorf("%w: no room for another area", ErrBadValue)
	}
	a, err := w.newArea(v, w.def.ColMode)
	if err != nil {
		return nil, err
	}
	v.sel = len(v.areas) - 1
	w.arrangeView(v)
	return a, nil
}

// DestroyArea removes an empty tiling area. Area 0 and the last tiling
// area are never destroyed.
func (w *World) DestroyArea(a *Area) error {
	i := w.areaIndex(a)
	v := w.viewOf(a)
	switch {
	case i < 0:
		return ErrNotFound
	case i == 0:
		return fmt.Errorf("%w: the floating area cannot be destroyed", ErrPermission)
	case len(a.frames) > 0:
		return fmt.Errorf("%w: area is not empty", ErrPermission)
	case len(v.areas) <= 2:
		return fmt.Errorf("%w: last tiling area", ErrPermission)
	}
	w.destroyArea(v, i)
	w.arrangeView(v)
	return nil
}

func (w *World) destroyArea(v *View, i int) {
	a := v.areas[i]
	switch {
	case v.revert == i:
		v.revert = 0
	case v.revert > i:
		v.revert--
	}
	for _, c := range w.clients {
		if c.revert == a.id {
			c.revert = 0
		}
	}
	v.areas = registry.Remove(v.areas, i)
	if v.sel >= i && v.sel > 1 {
		v.sel--
	}
	v.sel = registry.ClampSel(v.sel, len(v.areas))
	delete(w.areas, a.id)
}

// SelectArea changes the selected area of v.
func (w *World) SelectArea(v *View, s Selector) error {
	i := v.sel
	n := len(v.areas)
	next := i
	switch s.Kind {
	case SelectToggle:
		switch {
		case i != 0:
			next = 0
		case v.revert > 0 && v.revert < n:
			next = v.revert
		default:
			next = 1
		}
	case SelectPrev, SelectNext:
		if i > 0 {
			next = cycle(i, 1, n-1, s.Kind == SelectNext)
		}
	case SelectIndex:
		if s.Index < 0 || s.Index >= n {
			return fmt.Errorf("%w: area %d out of range", ErrBadValue, s.Index)
		}
		next = s.Index
	default:
		return fmt.Errorf("%w: area selector %s", ErrBadValue, s)
	}

	if i != 0 {
		v.revert = i
	}
	v.sel = next
	if f := v.areas[next].SelectedFrame(); f != nil {
		w.focusFrame(f)
	}
	for _, f := range v.areas[i].frames {
		if c := w.client(f.client); c != nil {
			w.drawClient(c)
		}
	}
	return nil
}

// SelectFrame changes the selected frame of a.
func (w *World) SelectFrame(a *Area, s Selector) error {
	n := len(a.frames)
	if s.Kind == SelectWest || s.Kind == SelectEast {
		if a.mode != ModeColumn {
			return fmt.Errorf("%w: %s needs a column area", ErrBadValue, s)
		}
		return w.SelectColumn(a, s)
	}
	if n == 0 {
		if s.Kind == SelectIndex {
			return fmt.Errorf("%w: frame %d out of range", ErrBadValue, s.Index)
		}
		return nil
	}
	i := a.sel
	switch s.Kind {
	case SelectPrev, SelectNext:
		i = cycle(i, 0, n-1, s.Kind == SelectNext)
	case SelectIndex:
		if s.Index < 0 || s.Index >= n {
			return fmt.Errorf("%w: frame %d out of range", ErrBadValue, s.Index)
		}
		i = s.Index
	default:
		return fmt.Errorf("%w: frame selector %s", ErrBadValue, s)
	}
	w.focusFrame(a.frames[i])
	return nil
}

package wm

import (
	"fmt"

	"github.com/acmnu/wmii/internal/geom"
	"github.com/acmnu/wmii/internal/registry"
	"github.com/acmnu/wmii/internal/tiling"
)

// column is an internal strip of a column-mode area.
type column struct {
	rect   geom.Rect
	frames []*Frame
	// dirty columns get their frame heights evenly redistributed.
	dirty bool
}

func (a *Area) resetColumns() {
	col := &column{frames: append([]*Frame(nil), a.frames...), dirty: true}
	a.cols = []*column{col}
	a.mru = 0
}

// Columns returns the number of internal columns.
func (a *Area) Columns() int { return len(a.cols) }

// columnOf returns the column and position of frame id, or -1, -1.
func (a *Area) columnOf(id registry.ID) (int, int) {
	for ci, col := range a.cols {
		if fi := registry.ByID(col.frames, id); fi >= 0 {
			return ci, fi
		}
	}
	return -1, -1
}

// syncOrder rebuilds the area's frame order from its columns, keeping the
// selected frame selected.
func (a *Area) syncOrder() {
	sel := a.SelectedFrame()
	a.frames = a.frames[:0]
	for _, col := range a.cols {
		a.frames = append(a.frames, col.frames...)
	}
	if sel != nil {
		a.sel = registry.ByID(a.frames, sel.id)
	}
	a.sel = registry.ClampSel(a.sel, len(a.frames))
}

// splitColumns gives every column an equal share of the area width.
func (a *Area) splitColumns() {
	rects := tiling.SplitColumns(a.rect, len(a.cols))
	for i, col := range a.cols {
		col.rect = rects[i]
		col.dirty = true
	}
}

func (a *Area) columnsFit() bool {
	first, last := a.cols[0], a.cols[len(a.cols)-1]
	if first.rect.X != a.rect.X || last.rect.MaxX() != a.rect.MaxX() {
		return false
	}
	for _, col := range a.cols {
		if col.rect.Y != a.rect.Y || col.rect.Height != a.rect.Height || col.rect.Width <= 0 {
			return false
		}
	}
	return true
}

func (col *column) heightsFit() bool {
	y := col.rect.Y
	for _, f := range col.frames {
		if f.rect.Y != y || f.rect.Height <= 0 {
			return false
		}
		y += f.rect.Height
	}
	return y == col.rect.MaxY()
}

func (w *World) arrangeColumn(a *Area) {
	if len(a.cols) == 0 {
		a.resetColumns()
	}
	if !a.columnsFit() {
		a.splitColumns()
	}
	for _, col := range a.cols {
		if col.dirty || !col.heightsFit() {
			rects := tiling.ColumnFrames(col.rect, len(col.frames))
			for i, f := range col.frames {
				f.rect = rects[i]
			}
			col.dirty = false
			continue
		}
		for _, f := range col.frames {
			f.rect.X = col.rect.X
			f.rect.Width = col.rect.Width
		}
	}
	for _, f := range a.frames {
		w.applyFrame(f)
	}
}

func (w *World) attachColumn(a *Area, f *Frame) {
	if len(a.cols) == 0 {
		a.resetColumns()
	}
	a.mru = registry.ClampSel(a.mru, len(a.cols))
	col := a.cols[a.mru]
	col.frames = append(col.frames, f)
	col.dirty = true
	a.syncOrder()
	w.arrangeColumn(a)
}

func (w *World) detachColumn(a *Area, f *Frame) {
	ci, fi := a.columnOf(f.id)
	if ci < 0 {
		return
	}
	col := a.cols[ci]
	col.frames = registry.Remove(col.frames, fi)
	col.dirty = true
	if len(col.frames) == 0 && len(a.cols) > 1 {
		a.cols = registry.Remove(a.cols, ci)
		if a.mru >= ci && a.mru > 0 {
			a.mru--
		}
		a.splitColumns()
	}
}

func (a *Area) snapshot() []tiling.Column {
	out := make([]tiling.Column, len(a.cols))
	for i, col := range a.cols {
		out[i].Rect = col.rect
		out[i].Frames = make([]geom.Rect, len(col.frames))
		for j, f := range col.frames {
			out[i].Frames[j] = f.rect
		}
	}
	return out
}

func (a *Area) restore(cols []tiling.Column) {
	for i, col := range a.cols {
		col.rect = cols[i].Rect
		for j, f := range col.frames {
			f.rect = cols[i].Frames[j]
		}
	}
}

func (w *World) resizeColumn(a *Area, f *Frame, r geom.Rect, pt *geom.Point) error {
	ci, fi := a.columnOf(f.id)
	if ci < 0 {
		return ErrNotFound
	}
	if pt != nil && r.Width == f.rect.Width && r.Height == f.rect.Height {
		w.dropMove(a, f, ci, fi, *pt)
		return nil
	}
	cols := a.snapshot()
	if !tiling.DragResize(cols, ci, fi, r) {
		w.arrangeColumn(a)
		return fmt.Errorf("%w: resize to %s rejected", ErrBadValue, r)
	}
	a.restore(cols)
	w.arrangeColumn(a)
	return nil
}

// dropMove moves f to the column under pt. Dropped on another frame of
// its own column, f trades places with it.
func (w *World) dropMove(a *Area, f *Frame, ci, fi int, pt geom.Point) {
	ti := tiling.ColumnAt(a.snapshot(), pt)
	if ti < 0 {
		w.arrangeColumn(a)
		return
	}
	src, dst := a.cols[ci], a.cols[ti]
	if ti == ci {
		for j, o := range src.frames {
			if j != fi && o.rect.Contains(pt) {
				src.frames[fi], src.frames[j] = o, f
				src.dirty = true
				break
			}
		}
	} else {
		at := len(dst.frames)
		for j, o := range dst.frames {
			if o.rect.Contains(pt) {
				at = j + 1
				break
			}
		}
		src.frames = registry.Remove(src.frames, fi)
		dst.frames = registry.Insert(dst.frames, at, f)
		src.dirty, dst.dirty = true, true
		if len(src.frames) == 0 {
			a.cols = registry.Remove(a.cols, ci)
			a.splitColumns()
		}
	}
	a.syncOrder()
	a.sel = registry.ByID(a.frames, f.id)
	a.mru, _ = a.columnOf(f.id)
	w.arrangeColumn(a)
}

// NewColumn moves the selected frame into a new column east of its own.
// A column holding only that frame is left alone.
func (w *World) NewColumn(a *Area) error {
	if a.mode != ModeColumn {
		return fmt.Errorf("%w: not a column area", ErrBadValue)
	}
	f := a.SelectedFrame()
	if f == nil {
		return nil
	}
	ci, fi := a.columnOf(f.id)
	src := a.cols[ci]
	if len(src.frames) < 2 {
		return nil
	}
	if (len(a.cols)+1)*MinColWidth > a.rect.Width {
		return fmt.Errorf("%w: no room for another column", ErrBadValue)
	}
	src.frames = registry.Remove(src.frames, fi)
	src.dirty = true
	a.cols = registry.Insert(a.cols, ci+1, &column{frames: []*Frame{f}})
	a.mru = ci + 1
	a.splitColumns()
	a.syncOrder()
	w.arrangeColumn(a)
	return nil
}

// DestroyColumn merges the most recently used column into the previous one.
func (w *World) DestroyColumn(a *Area) error {
	if a.mode != ModeColumn {
		return fmt.Errorf("%w: not a column area", ErrBadValue)
	}
	if len(a.cols) < 2 {
		return fmt.Errorf("%w: last column", ErrPermission)
	}
	ci := registry.ClampSel(a.mru, len(a.cols))
	ti := ci - 1
	if ti < 0 {
		ti = 1
	}
	dst := a.cols[ti]
	dst.frames = append(dst.frames, a.cols[ci].frames...)
	a.cols = registry.Remove(a.cols, ci)
	if ti > ci {
		ti--
	}
	a.mru = ti
	a.splitColumns()
	a.syncOrder()
	w.arrangeColumn(a)
	return nil
}

// SwapFrame exchanges the selected frame with its neighbour in the same
// column.
func (w *World) SwapFrame(a *Area, s Selector) error {
	if a.mode != ModeColumn {
		return fmt.Errorf("%w: not a column area", ErrBadValue)
	}
	if s.Kind != SelectPrev && s.Kind != SelectNext {
		return fmt.Errorf("%w: swap %s", ErrBadValue, s)
	}
	f := a.SelectedFrame()
	if f == nil {
		return nil
	}
	ci, fi := a.columnOf(f.id)
	col := a.cols[ci]
	if len(col.frames) < 2 {
		return nil
	}
	j := cycle(fi, 0, len(col.frames)-1, s.Kind == SelectNext)
	col.frames[fi], col.frames[j] = col.frames[j], col.frames[fi]
	// Frames keep their heights; only the stacking order changes.
	y := col.rect.Y
	for _, o := range col.frames {
		o.rect.Y = y
		y += o.rect.Height
	}
	a.syncOrder()
	w.arrangeColumn(a)
	return nil
}

// SelectColumn focuses the selected frame of the column west or east of
// the current one.
func (w *World) SelectColumn(a *Area, s Selector) error {
	if len(a.cols) == 0 {
		return nil
	}
	ci := a.mru
	if f := a.SelectedFrame(); f != nil {
		ci, _ = a.columnOf(f.id)
	}
	switch s.Kind {
	case SelectWest:
		ci = cycle(ci, 0, len(a.cols)-1, false)
	case SelectEast:
		ci = cycle(ci, 0, len(a.cols)-1, true)
	default:
		return fmt.Errorf("%w: column selector %s", ErrBadValue, s)
	}
	col := a.cols[ci]
	a.mru = ci
	if len(col.frames) == 0 {
		return nil
	}
	w.focusFrame(col.frames[0])
	return nil
}

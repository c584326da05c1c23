package wm

import "github.com/acmnu/wmii/internal/tiling"

// arrangeStack gives the selected frame the height left over by the
// collapsed title bars of the others.
func (w *World) arrangeStack(a *Area) {
	rects := tiling.StackFrames(a.rect, len(a.frames), a.sel, w.barHeight)
	for i, f := range a.frames {
		f.rect = rects[i]
	}
	for _, f := range a.frames {
		w.applyFrame(f)
	}
}

package wm

import "github.com/acmnu/wmii/internal/geom"

func (w *World) arrangeFloat(a *Area) {
	for _, f := range a.frames {
		w.applyFrame(f)
	}
}

// attachFloat gives f the client's last floating rectangle. A client
// floating for the first time is placed on the free part of the area.
func (w *World) attachFloat(a *Area, f *Frame, c *Client) {
	f.rect = c.floatRect
	if !c.placed && c.trans == 0 {
		occupied := make([]geom.Rect, 0, len(a.frames))
		for _, o := range a.frames {
			if o != f {
				occupied = append(occupied, o.rect)
			}
		}
		f.rect = w.placer.Place(a.rect, f.rect, occupied)
	}
	c.placed = true
	w.applyFrame(f)
}

// dragRect computes the rectangle of an in-progress drag. Moves within a
// floating area snap to the area edges.
func (w *World) dragRect(a *Area, d *drag, pt geom.Point) geom.Rect {
	dx, dy := pt.X-d.start.X, pt.Y-d.start.Y
	r := d.rect
	if d.resize {
		mw, mh := w.decoration().FrameSize(1, 1)
		r.Width = max(r.Width+dx, mw)
		r.Height = max(r.Height+dy, mh)
		return r
	}
	r = r.Translate(dx, dy)
	if a.mode == ModeFloat {
		r = geom.Snap(r, a.rect, w.def.Snap)
	}
	return r
}

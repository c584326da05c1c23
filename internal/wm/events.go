package wm

import (
	"github.com/acmnu/wmii/internal/geom"
	"github.com/acmnu/wmii/internal/platform"
	"github.com/acmnu/wmii/internal/registry"
)

// Pointer buttons that start a drag while the modifier is held.
const (
	ButtonMove   = 1
	ButtonResize = 3
)

// drag is an in-progress pointer move or resize of one frame.
type drag struct {
	frame  registry.ID
	resize bool
	start  geom.Point
	rect   geom.Rect
}

// HandleEvent applies one display event.
func (w *World) HandleEvent(ev platform.Event) {
	switch ev.Kind {
	case platform.EventMapRequest:
		w.mapRequest(ev.Window)
	case platform.EventUnmap:
		if c := w.clientWindow(ev.Window); c != nil {
			w.unmanage(c, true)
		}
	case platform.EventDestroy:
		if c := w.clientWindow(ev.Window); c != nil {
			w.unmanage(c, false)
		}
	case platform.EventProperty:
		if c := w.clientWindow(ev.Window); c != nil {
			w.UpdateProperty(c, ev.Property)
		}
	case platform.EventConfigureRequest:
		w.configureRequest(ev.Window, ev.Bounds)
	case platform.EventButtonPress:
		w.buttonPress(ev)
	case platform.EventMotion:
		if w.drag != nil {
			w.dragMotion(ev.Point)
		}
	case platform.EventButtonRelease:
		if w.drag != nil {
			w.dragEnd(ev.Point)
		}
	case platform.EventKeyPress:
		w.writeEvent("K %s\n", ev.Key)
	case platform.EventBarClick:
		w.writeEvent("LB %d %d\n", ev.Label, ev.Button)
	default:
		w.logger.Debug("ignoring display event", "kind", ev.Kind)
	}
}

// clientWindow finds a client by its own window only.
func (w *World) clientWindow(win platform.WindowID) *Client {
	if c := w.ClientByWindow(win); c != nil && c.win == win {
		return c
	}
	return nil
}

func (w *World) mapRequest(win platform.WindowID) {
	if w.ClientByWindow(win) != nil {
		return
	}
	info, err := w.surface.Info(win)
	if err != nil {
		w.display("window info", err)
		return
	}
	if info.OverrideRedirect {
		return
	}
	w.manage(info)
}

// configureRequest honours geometry requests of unmanaged and floating
// windows. Tiled clients are told their current geometry instead.
func (w *World) configureRequest(win platform.WindowID, r geom.Rect) {
	c := w.clientWindow(win)
	if c == nil {
		w.display("configure", w.surface.Configure(win, r))
		return
	}
	f := w.currentFrame(c)
	if f == nil {
		return
	}
	if a := w.areas[f.area]; a.mode == ModeFloat {
		d := w.decoration()
		fr := f.rect
		fr.Width, fr.Height = d.FrameSize(r.Width, r.Height)
		if r.X != 0 || r.Y != 0 {
			fr.X, fr.Y = r.X-d.Border, r.Y-d.BarHeight
		}
		f.rect = fr
	}
	w.applyFrame(f)
}

func (w *World) buttonPress(ev platform.Event) {
	c := w.ClientByWindow(ev.Window)
	if c == nil {
		return
	}
	f := w.currentFrame(c)
	if f == nil {
		return
	}
	if ev.Mod && (ev.Button == ButtonMove || ev.Button == ButtonResize) {
		if err := w.surface.GrabPointer(); err != nil {
			w.display("grab pointer", err)
			return
		}
		w.drag = &drag{frame: f.id, resize: ev.Button == ButtonResize, start: ev.Point, rect: f.rect}
	}
	w.focusFrame(f)
}

func (w *World) dragMotion(pt geom.Point) {
	f := w.frames[w.drag.frame]
	if f == nil {
		w.drag = nil
		return
	}
	a := w.areas[f.area]
	if a.mode != ModeFloat {
		return
	}
	f.rect = w.dragRect(a, w.drag, pt)
	w.applyFrame(f)
}

func (w *World) dragEnd(pt geom.Point) {
	d := w.drag
	w.drag = nil
	w.display("ungrab pointer", w.surface.UngrabPointer())
	f := w.frames[d.frame]
	if f == nil {
		return
	}
	a := w.areas[f.area]
	r := w.dragRect(a, d, pt)
	if err := w.resize(f, r, &pt); err != nil {
		w.logger.Debug("drag rejected", "frame", f.id, "error", err)
	}
}

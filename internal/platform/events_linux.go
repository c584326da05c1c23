//go:build linux

package platform

import (
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/acmnu/wmii/internal/geom"
)

// pump reads X events until the connection drops, translating the ones the
// window manager cares about. Expose is handled here.
func (b *LinuxBackend) pump() {
	defer close(b.events)
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event pump panic recovered", "error", r)
		}
	}()
	conn := b.conn.Conn()
	for {
		xev, xerr := conn.WaitForEvent()
		if xev == nil && xerr == nil {
			b.logger.Debug("display connection closed")
			return
		}
		if xerr != nil {
			b.logger.Debug("x error", "error", xerr)
			continue
		}
		ev, ok := b.translate(xev)
		if !ok {
			continue
		}
		select {
		case b.events <- ev:
		case <-b.done:
			return
		}
	}
}

func (b *LinuxBackend) translate(xev xgb.Event) (Event, bool) {
	switch e := xev.(type) {
	case xproto.MapRequestEvent:
		return Event{Kind: EventMapRequest, Window: WindowID(e.Window)}, true

	case xproto.UnmapNotifyEvent:
		if b.ownUnmap(WindowID(e.Window)) {
			return Event{}, false
		}
		return Event{Kind: EventUnmap, Window: WindowID(e.Window)}, true

	case xproto.DestroyNotifyEvent:
		return Event{Kind: EventDestroy, Window: WindowID(e.Window)}, true

	case xproto.PropertyNotifyEvent:
		return Event{Kind: EventProperty, Window: WindowID(e.Window), Property: b.property(e.Atom)}, true

	case xproto.ConfigureRequestEvent:
		return Event{Kind: EventConfigureRequest, Window: WindowID(e.Window), Bounds: b.requested(e)}, true

	case xproto.ButtonPressEvent:
		if e.Event == b.barWindow() {
			return Event{Kind: EventBarClick, Label: b.barLabel(int(e.EventX)), Button: int(e.Detail)}, true
		}
		return Event{
			Kind:   EventButtonPress,
			Window: WindowID(e.Event),
			Button: int(e.Detail),
			Mod:    e.State&xproto.ModMask1 != 0,
			Point:  geom.Point{X: int(e.RootX), Y: int(e.RootY)},
		}, true

	case xproto.ButtonReleaseEvent:
		return Event{
			Kind:   EventButtonRelease,
			Window: WindowID(e.Event),
			Button: int(e.Detail),
			Point:  geom.Point{X: int(e.RootX), Y: int(e.RootY)},
		}, true

	case xproto.MotionNotifyEvent:
		return Event{Kind: EventMotion, Window: WindowID(e.Event), Point: geom.Point{X: int(e.RootX), Y: int(e.RootY)}}, true

	case xproto.KeyPressEvent:
		name, ok := b.keyName(e.State, e.Detail)
		if !ok {
			return Event{}, false
		}
		return Event{Kind: EventKeyPress, Key: name}, true

	case xproto.ExposeEvent:
		if e.Count == 0 {
			b.expose(e.Window)
		}
	}
	return Event{}, false
}

func (b *LinuxBackend) property(atom xproto.Atom) Property {
	switch b.conn.AtomName(atom) {
	case "WM_NAME", "_NET_WM_NAME":
		return PropertyName
	case "WM_NORMAL_HINTS":
		return PropertyNormalHints
	case "WM_TRANSIENT_FOR":
		return PropertyTransient
	case "WM_PROTOCOLS":
		return PropertyProtocols
	}
	return PropertyOther
}

// requested returns the geometry asked for by a configure request. Fields
// missing from the value mask keep the current size; the position of a
// reparented window stays zero so it is not taken as a move.
func (b *LinuxBackend) requested(e xproto.ConfigureRequestEvent) geom.Rect {
	var r geom.Rect
	cur, err := b.conn.GetGeometry(e.Window)
	if err == nil {
		r = geom.Rect{Width: cur.Width, Height: cur.Height}
		if e.Parent == b.conn.Root {
			r.X, r.Y = cur.X, cur.Y
		}
	}
	if e.ValueMask&xproto.ConfigWindowX != 0 {
		r.X = int(e.X)
	}
	if e.ValueMask&xproto.ConfigWindowY != 0 {
		r.Y = int(e.Y)
	}
	if e.ValueMask&xproto.ConfigWindowWidth != 0 {
		r.Width = int(e.Width)
	}
	if e.ValueMask&xproto.ConfigWindowHeight != 0 {
		r.Height = int(e.Height)
	}
	return r
}

func (b *LinuxBackend) barWindow() xproto.Window {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bar
}

// expose repaints a frame or the bar from the last drawn state.
func (b *LinuxBackend) expose(win xproto.Window) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var err error
	if win == b.bar && b.bar != 0 {
		err = b.drawBar()
	} else if d, ok := b.decorations[WindowID(win)]; ok {
		err = b.drawFrame(WindowID(win), d)
	}
	if err != nil {
		b.logger.Debug("expose redraw failed", "window", win, "error", err)
	}
}

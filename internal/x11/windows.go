package x11

import (
	"slices"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xprop"
)

// clientEventMask is selected on managed client windows.
const clientEventMask = xproto.EventMaskPropertyChange

// Geometry is a window rectangle relative to its parent.
type Geometry struct {
	X, Y, Width, Height, Border int
}

// Children returns the children of the root window in stacking order.
func (c *Connection) Children() ([]xproto.Window, error) {
	tree, err := xproto.QueryTree(c.Conn(), c.Root).Reply()
	if err != nil {
		return nil, err
	}
	return tree.Children, nil
}

// GetGeometry returns the geometry of a window.
func (c *Connection) GetGeometry(win xproto.Window) (Geometry, error) {
	g, err := xproto.GetGeometry(c.Conn(), xproto.Drawable(win)).Reply()
	if err != nil {
		return Geometry{}, err
	}
	return Geometry{X: int(g.X), Y: int(g.Y), Width: int(g.Width), Height: int(g.Height), Border: int(g.BorderWidth)}, nil
}

// Attributes reports the override-redirect flag and whether the window is
// viewable.
func (c *Connection) Attributes(win xproto.Window) (overrideRedirect, viewable bool, err error) {
	a, err := xproto.GetWindowAttributes(c.Conn(), win).Reply()
	if err != nil {
		return false, false, err
	}
	return a.OverrideRedirect, a.MapState == xproto.MapStateViewable, nil
}

// Title prefers _NET_WM_NAME and falls back to WM_NAME.
func (c *Connection) Title(win xproto.Window) string {
	if name, err := ewmh.WmNameGet(c.XUtil, win); err == nil && name != "" {
		return name
	}
	if name, err := icccm.WmNameGet(c.XUtil, win); err == nil {
		return name
	}
	return ""
}

// Class returns the WM_CLASS class and instance.
func (c *Connection) Class(win xproto.Window) (class, instance string) {
	wc, err := icccm.WmClassGet(c.XUtil, win)
	if err != nil || wc == nil {
		return "", ""
	}
	return wc.Class, wc.Instance
}

// TransientFor returns WM_TRANSIENT_FOR, or 0.
func (c *Connection) TransientFor(win xproto.Window) xproto.Window {
	t, err := icccm.WmTransientForGet(c.XUtil, win)
	if err != nil {
		return 0
	}
	return t
}

// NormalHints returns WM_NORMAL_HINTS, or nil when unset.
func (c *Connection) NormalHints(win xproto.Window) *icccm.NormalHints {
	h, err := icccm.WmNormalHintsGet(c.XUtil, win)
	if err != nil {
		return nil
	}
	return h
}

// SupportsDelete reports whether WM_PROTOCOLS lists WM_DELETE_WINDOW.
func (c *Connection) SupportsDelete(win xproto.Window) bool {
	protos, err := icccm.WmProtocolsGet(c.XUtil, win)
	if err != nil {
		return false
	}
	return slices.Contains(protos, "WM_DELETE_WINDOW")
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}
	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}
	return true
}

// AtomName returns the name of an atom.
func (c *Connection) AtomName(a xproto.Atom) string {
	name, err := xprop.AtomName(c.XUtil, a)
	if err != nil {
		return ""
	}
	return name
}

// Adopt prepares a client window for reparenting: it joins the save set so
// it survives a crash, loses its border and reports property changes.
func (c *Connection) Adopt(win xproto.Window) error {
	conn := c.Conn()
	if err := xproto.ChangeSaveSetChecked(conn, xproto.SetModeInsert, win).Check(); err != nil {
		return err
	}
	if err := xproto.ChangeWindowAttributesChecked(conn, win, xproto.CwEventMask, []uint32{clientEventMask}).Check(); err != nil {
		return err
	}
	return xproto.ConfigureWindowChecked(conn, win, xproto.ConfigWindowBorderWidth, []uint32{0}).Check()
}

// Reparent moves win into parent at x, y.
func (c *Connection) Reparent(win, parent xproto.Window, x, y int) error {
	return xproto.ReparentWindowChecked(c.Conn(), win, parent, int16(x), int16(y)).Check()
}

// Abandon undoes Adopt and moves win back to the root window.
func (c *Connection) Abandon(win xproto.Window, x, y int) error {
	conn := c.Conn()
	xproto.ChangeWindowAttributes(conn, win, xproto.CwEventMask, []uint32{0})
	if err := c.Reparent(win, c.Root, x, y); err != nil {
		return err
	}
	return xproto.ChangeSaveSetChecked(conn, xproto.SetModeDelete, win).Check()
}

// MoveResizeWindow moves and resizes a window to the specified geometry.
func (c *Connection) MoveResizeWindow(win xproto.Window, x, y, width, height int) error {
	mask := uint16(xproto.ConfigWindowX | xproto.ConfigWindowY | xproto.ConfigWindowWidth | xproto.ConfigWindowHeight)
	return xproto.ConfigureWindowChecked(c.Conn(), win, mask,
		[]uint32{uint32(int32(x)), uint32(int32(y)), uint32(max(width, 1)), uint32(max(height, 1))}).Check()
}

// Raise puts win on top of its siblings.
func (c *Connection) Raise(win xproto.Window) error {
	return xproto.ConfigureWindowChecked(c.Conn(), win, xproto.ConfigWindowStackMode,
		[]uint32{xproto.StackModeAbove}).Check()
}

// Map maps a window.
func (c *Connection) Map(win xproto.Window) error {
	return xproto.MapWindowChecked(c.Conn(), win).Check()
}

// Unmap unmaps a window.
func (c *Connection) Unmap(win xproto.Window) error {
	return xproto.UnmapWindowChecked(c.Conn(), win).Check()
}

// Focus gives win the input focus; 0 returns it to the pointer root.
func (c *Connection) Focus(win xproto.Window) error {
	if win == 0 {
		return xproto.SetInputFocusChecked(c.Conn(), xproto.InputFocusPointerRoot,
			xproto.InputFocusPointerRoot, xproto.TimeCurrentTime).Check()
	}
	if err := xproto.SetInputFocusChecked(c.Conn(), xproto.InputFocusPointerRoot, win, xproto.TimeCurrentTime).Check(); err != nil {
		return err
	}
	return ewmh.ActiveWindowSet(c.XUtil, win)
}

// SendConfigureNotify tells a client its absolute geometry without moving
// it.
func (c *Connection) SendConfigureNotify(win xproto.Window, x, y, width, height, border int) error {
	ev := xproto.ConfigureNotifyEvent{
		Event:        win,
		Window:       win,
		AboveSibling: 0,
		X:            int16(x),
		Y:            int16(y),
		Width:        uint16(width),
		Height:       uint16(height),
		BorderWidth:  uint16(border),
	}
	return xproto.SendEventChecked(c.Conn(), false, win, xproto.EventMaskStructureNotify, string(ev.Bytes())).Check()
}

// SendDelete asks the client to close win with WM_DELETE_WINDOW.
func (c *Connection) SendDelete(win xproto.Window) error {
	protocols, err := xprop.Atm(c.XUtil, "WM_PROTOCOLS")
	if err != nil {
		return err
	}
	del, err := xprop.Atm(c.XUtil, "WM_DELETE_WINDOW")
	if err != nil {
		return err
	}
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   protocols,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{uint32(del), uint32(xproto.TimeCurrentTime), 0, 0, 0}),
	}
	return xproto.SendEventChecked(c.Conn(), false, win, xproto.EventMaskNoEvent, string(ev.Bytes())).Check()
}

// Kill destroys the client owning win.
func (c *Connection) Kill(win xproto.Window) error {
	return xproto.KillClientChecked(c.Conn(), uint32(win)).Check()
}

// ConfigureRequest applies the fields of a configure request selected by
// mask.
func (c *Connection) ConfigureRequest(win xproto.Window, mask uint16, g Geometry) error {
	var values []uint32
	var used uint16
	for _, f := range []struct {
		bit uint16
		v   int
	}{
		{xproto.ConfigWindowX, g.X},
		{xproto.ConfigWindowY, g.Y},
		{xproto.ConfigWindowWidth, max(g.Width, 1)},
		{xproto.ConfigWindowHeight, max(g.Height, 1)},
		{xproto.ConfigWindowBorderWidth, g.Border},
	} {
		if mask&f.bit != 0 {
			used |= f.bit
			values = append(values, uint32(int32(f.v)))
		}
	}
	if used == 0 {
		return nil
	}
	return xproto.ConfigureWindowChecked(c.Conn(), win, used, values).Check()
}

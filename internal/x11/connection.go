package x11

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
)

// ErrOtherWM is returned by BecomeWM when the root window is already
// redirected by another client.
var ErrOtherWM = errors.New("another window manager is already running")

// rootEventMask is what a window manager selects on the root window.
const rootEventMask = xproto.EventMaskSubstructureRedirect |
	xproto.EventMaskSubstructureNotify |
	xproto.EventMaskPropertyChange

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil  *xgbutil.XUtil
	Root   xproto.Window
	Screen *xproto.ScreenInfo
}

// NewConnection connects to display. An empty display uses $DISPLAY.
func NewConnection(display string) (*Connection, error) {
	xu, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		return nil, err
	}

	keybind.Initialize(xu)
	configureIgnoreMods(xu)

	return &Connection{
		XUtil:  xu,
		Root:   xu.RootWin(),
		Screen: xu.Screen(),
	}, nil
}

// Conn returns the raw protocol connection.
func (c *Connection) Conn() *xgb.Conn { return c.XUtil.Conn() }

// BecomeWM selects substructure redirection on the root window. Only one
// client may hold it.
func (c *Connection) BecomeWM() error {
	err := xproto.ChangeWindowAttributesChecked(c.Conn(), c.Root,
		xproto.CwEventMask, []uint32{rootEventMask}).Check()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOtherWM, err)
	}
	return nil
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}

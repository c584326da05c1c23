package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// supported lists the EWMH hints the window manager maintains.
var supported = []string{
	"_NET_SUPPORTED",
	"_NET_SUPPORTING_WM_CHECK",
	"_NET_WM_NAME",
	"_NET_ACTIVE_WINDOW",
	"_NET_NUMBER_OF_DESKTOPS",
	"_NET_CURRENT_DESKTOP",
}

// Announce marks check as the supporting window of a window manager called
// name.
func (c *Connection) Announce(check xproto.Window, name string) error {
	if err := ewmh.SupportingWmCheckSet(c.XUtil, c.Root, check); err != nil {
		return fmt.Errorf("failed to set _NET_SUPPORTING_WM_CHECK: %w", err)
	}
	if err := ewmh.SupportingWmCheckSet(c.XUtil, check, check); err != nil {
		return fmt.Errorf("failed to set _NET_SUPPORTING_WM_CHECK: %w", err)
	}
	if err := ewmh.WmNameSet(c.XUtil, check, name); err != nil {
		return fmt.Errorf("failed to set _NET_WM_NAME: %w", err)
	}
	return ewmh.SupportedSet(c.XUtil, supported)
}

// SetDesktops publishes the number of views and the selected one.
func (c *Connection) SetDesktops(count, current int) error {
	if err := ewmh.NumberOfDesktopsSet(c.XUtil, uint(count)); err != nil {
		return fmt.Errorf("failed to set desktop count: %w", err)
	}
	if current < 0 {
		return nil
	}
	if err := ewmh.CurrentDesktopSet(c.XUtil, uint(current)); err != nil {
		return fmt.Errorf("failed to set current desktop: %w", err)
	}
	return nil
}

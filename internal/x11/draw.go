package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
)

// frameEventMask is selected on frame windows.
const frameEventMask = xproto.EventMaskSubstructureRedirect |
	xproto.EventMaskSubstructureNotify |
	xproto.EventMaskExposure |
	xproto.EventMaskButtonPress |
	xproto.EventMaskButtonRelease

// dragEventMask is the pointer grab mask for moves and resizes.
const dragEventMask = xproto.EventMaskButtonPress |
	xproto.EventMaskButtonRelease |
	xproto.EventMaskPointerMotion

// Font is a core X font.
type Font struct {
	ID      xproto.Font
	Ascent  int
	Descent int
	// Width is the widest glyph; text is measured with it.
	Width int
}

// Height is the line height of f.
func (f *Font) Height() int { return f.Ascent + f.Descent }

// TextWidth returns the width of s, which ImageText8 limits to 255 bytes.
func (f *Font) TextWidth(s string) int { return len(clip(s)) * f.Width }

func clip(s string) string {
	if len(s) > 255 {
		return s[:255]
	}
	return s
}

// OpenFont loads a core font by XLFD or alias.
func (c *Connection) OpenFont(name string) (*Font, error) {
	id, err := xproto.NewFontId(c.Conn())
	if err != nil {
		return nil, err
	}
	if err := xproto.OpenFontChecked(c.Conn(), id, uint16(len(name)), name).Check(); err != nil {
		return nil, fmt.Errorf("open font %q: %w", name, err)
	}
	info, err := xproto.QueryFont(c.Conn(), xproto.Fontable(id)).Reply()
	if err != nil {
		xproto.CloseFont(c.Conn(), id)
		return nil, fmt.Errorf("query font %q: %w", name, err)
	}
	return &Font{
		ID:      id,
		Ascent:  int(info.FontAscent),
		Descent: int(info.FontDescent),
		Width:   max(int(info.MaxBounds.CharacterWidth), 1),
	}, nil
}

// CloseFont releases f.
func (c *Connection) CloseFont(f *Font) {
	xproto.CloseFont(c.Conn(), f.ID)
}

// CreateWindow creates an override-redirect child of the root window. A
// frame window redirects its children and reports clicks and exposure.
func (c *Connection) CreateWindow(x, y, width, height int, background uint32, frame bool) (xproto.Window, error) {
	win, err := xproto.NewWindowId(c.Conn())
	if err != nil {
		return 0, err
	}
	mask := uint32(xproto.EventMaskExposure | xproto.EventMaskButtonPress)
	if frame {
		mask = frameEventMask
	}
	err = xproto.CreateWindowChecked(c.Conn(), c.Screen.RootDepth, win, c.Root,
		int16(x), int16(y), uint16(max(width, 1)), uint16(max(height, 1)), 0,
		xproto.WindowClassInputOutput, c.Screen.RootVisual,
		xproto.CwBackPixel|xproto.CwOverrideRedirect|xproto.CwEventMask,
		[]uint32{background, 1, mask}).Check()
	if err != nil {
		return 0, err
	}
	return win, nil
}

// GrabDragButtons installs the Mod1 move and resize button grabs on a
// frame window.
func (c *Connection) GrabDragButtons(frame xproto.Window, buttons ...byte) error {
	for _, b := range buttons {
		err := xproto.GrabButtonChecked(c.Conn(), false, frame, uint16(dragEventMask),
			xproto.GrabModeAsync, xproto.GrabModeAsync, 0, 0, b, xproto.ModMask1).Check()
		if err != nil {
			return err
		}
	}
	return nil
}

// DestroyWindow destroys a window created by CreateWindow.
func (c *Connection) DestroyWindow(win xproto.Window) error {
	return xproto.DestroyWindowChecked(c.Conn(), win).Check()
}

// NewGC creates a graphics context on win drawing with font.
func (c *Connection) NewGC(win xproto.Window, font *Font) (xproto.Gcontext, error) {
	gc, err := xproto.NewGcontextId(c.Conn())
	if err != nil {
		return 0, err
	}
	var mask uint32
	var values []uint32
	if font != nil {
		mask = xproto.GcFont
		values = []uint32{uint32(font.ID)}
	}
	if err := xproto.CreateGCChecked(c.Conn(), gc, xproto.Drawable(win), mask, values).Check(); err != nil {
		return 0, err
	}
	return gc, nil
}

// FreeGC releases gc.
func (c *Connection) FreeGC(gc xproto.Gcontext) {
	xproto.FreeGC(c.Conn(), gc)
}

// FillRect paints a solid rectangle.
func (c *Connection) FillRect(win xproto.Window, gc xproto.Gcontext, color uint32, x, y, width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	xproto.ChangeGC(c.Conn(), gc, xproto.GcForeground, []uint32{color})
	xproto.PolyFillRectangle(c.Conn(), xproto.Drawable(win), gc, []xproto.Rectangle{{
		X: int16(x), Y: int16(y), Width: uint16(width), Height: uint16(height),
	}})
}

// DrawText paints s with its baseline at y.
func (c *Connection) DrawText(win xproto.Window, gc xproto.Gcontext, fg, bg uint32, x, y int, s string) {
	s = clip(s)
	if s == "" {
		return
	}
	xproto.ChangeGC(c.Conn(), gc, xproto.GcForeground|xproto.GcBackground, []uint32{fg, bg})
	xproto.ImageText8(c.Conn(), byte(len(s)), xproto.Drawable(win), gc, int16(x), int16(y), s)
}

// GrabPointer grabs the pointer for a drag.
func (c *Connection) GrabPointer() error {
	reply, err := xproto.GrabPointer(c.Conn(), false, c.Root, uint16(dragEventMask),
		xproto.GrabModeAsync, xproto.GrabModeAsync, 0, 0, xproto.TimeCurrentTime).Reply()
	if err != nil {
		return err
	}
	if reply.Status != xproto.GrabStatusSuccess {
		return fmt.Errorf("pointer grab refused: status %d", reply.Status)
	}
	return nil
}

// UngrabPointer ends a drag.
func (c *Connection) UngrabPointer() error {
	return xproto.UngrabPointerChecked(c.Conn(), xproto.TimeCurrentTime).Check()
}

// WarpPointer moves the pointer to x, y on the root window.
func (c *Connection) WarpPointer(x, y int) error {
	return xproto.WarpPointerChecked(c.Conn(), 0, c.Root, 0, 0, 0, 0, int16(x), int16(y)).Check()
}

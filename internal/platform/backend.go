// Package platform describes the display surface the window manager drives.
// The wm package only talks to a Surface; the X11 implementation lives in
// backend_linux.go.
package platform

import "github.com/acmnu/wmii/internal/geom"

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// None is the null window.
const None WindowID = 0

// WindowInfo contains metadata and geometry for a top-level window.
type WindowInfo struct {
	ID               WindowID
	Bounds           geom.Rect
	BorderWidth      int
	Name             string
	Class            string
	Instance         string
	TransientFor     WindowID
	Hints            geom.SizeHints
	CanDelete        bool
	OverrideRedirect bool
	Viewable         bool
}

// Color is a 24-bit RGB value, 0xRRGGBB.
type Color uint32

// ColorSet is the text, background and border color of a decoration.
type ColorSet struct {
	Text       Color
	Background Color
	Border     Color
}

// Decoration is what DrawFrame paints on a frame window.
type Decoration struct {
	Size      geom.Rect
	Border    int
	BarHeight int
	Title     string
	Colors    ColorSet
}

// BarItem is one label of the status bar.
type BarItem struct {
	Text   string
	Colors ColorSet
}

// Surface abstracts the window-system operations of the window manager.
// Errors about windows that no longer exist are expected and are treated
// as no-ops by callers.
type Surface interface {
	Screen() geom.Rect
	LoadFont(name string) (barHeight int, err error)

	CreateFrame(bounds geom.Rect) (WindowID, error)
	DestroyFrame(frame WindowID) error
	Reparent(win, frame WindowID, at geom.Point) error
	Release(win WindowID, at geom.Point) error

	MoveResize(win WindowID, bounds geom.Rect) error
	Map(win WindowID) error
	Unmap(win WindowID) error
	Raise(win WindowID) error
	Focus(win WindowID) error

	// SendConfigure tells a managed client its absolute geometry.
	SendConfigure(win WindowID, bounds geom.Rect, border int) error
	// Configure applies a configure request of an unmanaged window.
	Configure(win WindowID, bounds geom.Rect) error

	Delete(win WindowID) error
	Kill(win WindowID) error

	Windows() ([]WindowInfo, error)
	Info(win WindowID) (WindowInfo, error)

	DrawFrame(frame WindowID, d Decoration) error
	DrawBar(bounds geom.Rect, items []BarItem, expand int) error

	GrabKey(name string) error
	UngrabKey(name string) error
	GrabPointer() error
	UngrabPointer() error
	WarpPointer(p geom.Point) error

	SetDesktops(count, current int) error

	Events() <-chan Event
	Close() error
}

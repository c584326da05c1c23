//go:build linux

package platform

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/icccm"

	"github.com/acmnu/wmii/internal/geom"
	"github.com/acmnu/wmii/internal/x11"
)

const (
	eventBacklog = 256
	labelPadding = 4
)

// LinuxBackend is the X11 Surface.
type LinuxBackend struct {
	conn   *x11.Connection
	logger *slog.Logger
	events chan Event
	done   chan struct{}
	once   sync.Once
	check  xproto.Window

	// mu guards the state shared with the event pump.
	mu          sync.Mutex
	font        *x11.Font
	gcs         map[WindowID]xproto.Gcontext
	decorations map[WindowID]Decoration
	ignoreUnmap map[WindowID]int
	keys        map[string][]x11.KeyCombo
	bar         xproto.Window
	barBounds   geom.Rect
	barItems    []BarItem
	barExpand   int
	barCells    []geom.Rect
}

var _ Surface = (*LinuxBackend)(nil)

// NewLinuxBackend connects to display, takes over window management on its
// root window and starts pumping events.
func NewLinuxBackend(display string, logger *slog.Logger) (*LinuxBackend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	if err := conn.BecomeWM(); err != nil {
		conn.Close()
		return nil, err
	}
	b := &LinuxBackend{
		conn:        conn,
		logger:      logger,
		events:      make(chan Event, eventBacklog),
		done:        make(chan struct{}),
		gcs:         make(map[WindowID]xproto.Gcontext),
		decorations: make(map[WindowID]Decoration),
		ignoreUnmap: make(map[WindowID]int),
		keys:        make(map[string][]x11.KeyCombo),
	}
	if check, err := conn.CreateWindow(-1, -1, 1, 1, 0, false); err == nil {
		b.check = check
		if err := conn.Announce(check, "wmii"); err != nil {
			logger.Debug("ewmh announce failed", "error", err)
		}
	}
	go b.pump()
	return b, nil
}

func (b *LinuxBackend) Screen() geom.Rect {
	m := b.conn.ScreenMonitor()
	return geom.Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height}
}

func (b *LinuxBackend) LoadFont(name string) (int, error) {
	f, err := b.conn.OpenFont(name)
	if err != nil {
		return 0, err
	}
	b.mu.Lock()
	old := b.font
	b.font = f
	for win, gc := range b.gcs {
		b.conn.FreeGC(gc)
		delete(b.gcs, win)
	}
	b.mu.Unlock()
	if old != nil {
		b.conn.CloseFont(old)
	}
	return f.Height() + 2, nil
}

func (b *LinuxBackend) CreateFrame(bounds geom.Rect) (WindowID, error) {
	win, err := b.conn.CreateWindow(bounds.X, bounds.Y, bounds.Width, bounds.Height, 0, true)
	if err != nil {
		return None, err
	}
	if err := b.conn.GrabDragButtons(win, xproto.ButtonIndex1, xproto.ButtonIndex3); err != nil {
		b.logger.Debug("grab drag buttons failed", "frame", win, "error", err)
	}
	return WindowID(win), nil
}

func (b *LinuxBackend) DestroyFrame(frame WindowID) error {
	b.mu.Lock()
	if gc, ok := b.gcs[frame]; ok {
		b.conn.FreeGC(gc)
		delete(b.gcs, frame)
	}
	delete(b.decorations, frame)
	b.mu.Unlock()
	return b.conn.DestroyWindow(xproto.Window(frame))
}

func (b *LinuxBackend) Reparent(win, frame WindowID, at geom.Point) error {
	if _, viewable, err := b.conn.Attributes(xproto.Window(win)); err == nil && viewable {
		b.expectUnmap(win)
	}
	if err := b.conn.Adopt(xproto.Window(win)); err != nil {
		return err
	}
	return b.conn.Reparent(xproto.Window(win), xproto.Window(frame), at.X, at.Y)
}

func (b *LinuxBackend) Release(win WindowID, at geom.Point) error {
	b.mu.Lock()
	delete(b.ignoreUnmap, win)
	b.mu.Unlock()
	return b.conn.Abandon(xproto.Window(win), at.X, at.Y)
}

func (b *LinuxBackend) MoveResize(win WindowID, r geom.Rect) error {
	return b.conn.MoveResizeWindow(xproto.Window(win), r.X, r.Y, r.Width, r.Height)
}

func (b *LinuxBackend) Map(win WindowID) error   { return b.conn.Map(xproto.Window(win)) }
func (b *LinuxBackend) Raise(win WindowID) error { return b.conn.Raise(xproto.Window(win)) }
func (b *LinuxBackend) Focus(win WindowID) error { return b.conn.Focus(xproto.Window(win)) }
func (b *LinuxBackend) Kill(win WindowID) error  { return b.conn.Kill(xproto.Window(win)) }

// Unmap hides win. The UnmapNotify it causes is not reported.
func (b *LinuxBackend) Unmap(win WindowID) error {
	b.expectUnmap(win)
	if err := b.conn.Unmap(xproto.Window(win)); err != nil {
		b.unexpectUnmap(win)
		return err
	}
	return nil
}

func (b *LinuxBackend) SendConfigure(win WindowID, r geom.Rect, border int) error {
	return b.conn.SendConfigureNotify(xproto.Window(win), r.X, r.Y, r.Width, r.Height, border)
}

func (b *LinuxBackend) Configure(win WindowID, r geom.Rect) error {
	mask := uint16(xproto.ConfigWindowX | xproto.ConfigWindowY | xproto.ConfigWindowWidth | xproto.ConfigWindowHeight)
	return b.conn.ConfigureRequest(xproto.Window(win), mask, x11.Geometry{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height})
}

func (b *LinuxBackend) Delete(win WindowID) error {
	if !b.conn.SupportsDelete(xproto.Window(win)) {
		return b.Kill(win)
	}
	return b.conn.SendDelete(xproto.Window(win))
}

// Windows lists the top-level windows except our own and the EWMH docks
// and desktops.
func (b *LinuxBackend) Windows() ([]WindowInfo, error) {
	children, err := b.conn.Children()
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	bar := b.bar
	b.mu.Unlock()
	var out []WindowInfo
	for _, win := range children {
		if win == b.check || win == bar || !b.conn.IsNormalWindow(win) {
			continue
		}
		info, err := b.Info(WindowID(win))
		if err != nil {
			continue
		}
		out = append(out, info)
	}
	return out, nil
}

func (b *LinuxBackend) Info(win WindowID) (WindowInfo, error) {
	xw := xproto.Window(win)
	override, viewable, err := b.conn.Attributes(xw)
	if err != nil {
		return WindowInfo{}, err
	}
	g, err := b.conn.GetGeometry(xw)
	if err != nil {
		return WindowInfo{}, err
	}
	class, instance := b.conn.Class(xw)
	return WindowInfo{
		ID:               win,
		Bounds:           geom.Rect{X: g.X, Y: g.Y, Width: g.Width, Height: g.Height},
		BorderWidth:      g.Border,
		Name:             b.conn.Title(xw),
		Class:            class,
		Instance:         instance,
		TransientFor:     WindowID(b.conn.TransientFor(xw)),
		Hints:            sizeHints(b.conn.NormalHints(xw)),
		CanDelete:        b.conn.SupportsDelete(xw),
		OverrideRedirect: override,
		Viewable:         viewable,
	}, nil
}

func sizeHints(h *icccm.NormalHints) geom.SizeHints {
	var out geom.SizeHints
	if h == nil {
		return out
	}
	if h.Flags&icccm.SizeHintPMinSize != 0 {
		out.Flags |= geom.HintMinSize
		out.MinWidth, out.MinHeight = int(h.MinWidth), int(h.MinHeight)
	}
	if h.Flags&icccm.SizeHintPMaxSize != 0 {
		out.Flags |= geom.HintMaxSize
		out.MaxWidth, out.MaxHeight = int(h.MaxWidth), int(h.MaxHeight)
	}
	if h.Flags&icccm.SizeHintPResizeInc != 0 {
		out.Flags |= geom.HintResizeInc
		out.IncWidth, out.IncHeight = int(h.WidthInc), int(h.HeightInc)
	}
	if h.Flags&icccm.SizeHintPBaseSize != 0 {
		out.Flags |= geom.HintBaseSize
		out.BaseWidth, out.BaseHeight = int(h.BaseWidth), int(h.BaseHeight)
	}
	if h.Flags&icccm.SizeHintPWinGravity != 0 {
		out.Flags |= geom.HintGravity
		out.Gravity = geom.Gravity(h.WinGravity)
	}
	return out
}

// gc returns the graphics context of win. b.mu must be held.
func (b *LinuxBackend) gc(win WindowID) (xproto.Gcontext, error) {
	if gc, ok := b.gcs[win]; ok {
		return gc, nil
	}
	gc, err := b.conn.NewGC(xproto.Window(win), b.font)
	if err != nil {
		return 0, err
	}
	b.gcs[win] = gc
	return gc, nil
}

func (b *LinuxBackend) DrawFrame(frame WindowID, d Decoration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.decorations[frame] = d
	return b.drawFrame(frame, d)
}

func (b *LinuxBackend) drawFrame(frame WindowID, d Decoration) error {
	if b.font == nil {
		return fmt.Errorf("no font loaded")
	}
	gc, err := b.gc(frame)
	if err != nil {
		return err
	}
	win := xproto.Window(frame)
	cs := d.Colors
	b.conn.FillRect(win, gc, uint32(cs.Border), 0, 0, d.Size.Width, d.Size.Height)
	b.conn.FillRect(win, gc, uint32(cs.Background), d.Border, 0, d.Size.Width-2*d.Border, d.BarHeight)
	baseline := (d.BarHeight-b.font.Height())/2 + b.font.Ascent
	b.conn.DrawText(win, gc, uint32(cs.Text), uint32(cs.Background), d.Border+labelPadding, baseline, d.Title)
	return nil
}

func (b *LinuxBackend) DrawBar(bounds geom.Rect, items []BarItem, expand int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.font == nil {
		return fmt.Errorf("no font loaded")
	}
	if b.bar == 0 {
		win, err := b.conn.CreateWindow(bounds.X, bounds.Y, bounds.Width, bounds.Height, 0, false)
		if err != nil {
			return err
		}
		b.bar = win
		if err := b.conn.Map(win); err != nil {
			return err
		}
	} else if bounds != b.barBounds {
		if err := b.conn.MoveResizeWindow(b.bar, bounds.X, bounds.Y, bounds.Width, bounds.Height); err != nil {
			return err
		}
	}
	b.barBounds = bounds
	b.barItems = append([]BarItem(nil), items...)
	b.barExpand = expand
	return b.drawBar()
}

func (b *LinuxBackend) drawBar() error {
	gc, err := b.gc(WindowID(b.bar))
	if err != nil {
		return err
	}
	widths := make([]int, len(b.barItems))
	used := 0
	for i, it := range b.barItems {
		widths[i] = b.font.TextWidth(it.Text) + 2*labelPadding
		used += widths[i]
	}
	if free := b.barBounds.Width - used; free > 0 && b.barExpand >= 0 && b.barExpand < len(widths) {
		widths[b.barExpand] += free
	}

	b.conn.FillRect(b.bar, gc, 0, 0, 0, b.barBounds.Width, b.barBounds.Height)
	b.barCells = b.barCells[:0]
	baseline := (b.barBounds.Height-b.font.Height())/2 + b.font.Ascent
	x := 0
	for i, it := range b.barItems {
		cell := geom.Rect{X: x, Width: widths[i], Height: b.barBounds.Height}
		b.barCells = append(b.barCells, cell)
		b.conn.FillRect(b.bar, gc, uint32(it.Colors.Border), cell.X, 0, cell.Width, cell.Height)
		b.conn.FillRect(b.bar, gc, uint32(it.Colors.Background), cell.X+1, 1, cell.Width-2, cell.Height-2)
		b.conn.DrawText(b.bar, gc, uint32(it.Colors.Text), uint32(it.Colors.Background), cell.X+labelPadding, baseline, it.Text)
		x += cell.Width
	}
	return nil
}

// barLabel returns the label index under x, or -1.
func (b *LinuxBackend) barLabel(x int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, cell := range b.barCells {
		if x >= cell.X && x < cell.MaxX() {
			return i
		}
	}
	return -1
}

func (b *LinuxBackend) GrabKey(name string) error {
	combos, err := b.conn.ParseKey(name)
	if err != nil {
		return err
	}
	if err := b.conn.GrabKey(combos); err != nil {
		b.conn.UngrabKey(combos)
		return err
	}
	b.mu.Lock()
	b.keys[name] = combos
	b.mu.Unlock()
	return nil
}

func (b *LinuxBackend) UngrabKey(name string) error {
	b.mu.Lock()
	combos := b.keys[name]
	delete(b.keys, name)
	b.mu.Unlock()
	b.conn.UngrabKey(combos)
	return nil
}

// keyName maps a key press back to the grabbed name.
func (b *LinuxBackend) keyName(state uint16, code xproto.Keycode) (string, bool) {
	mods := x11.CleanMods(state)
	b.mu.Lock()
	defer b.mu.Unlock()
	for name, combos := range b.keys {
		for _, k := range combos {
			if k.Code == code && k.Mods == mods {
				return name, true
			}
		}
	}
	return "", false
}

func (b *LinuxBackend) GrabPointer() error   { return b.conn.GrabPointer() }
func (b *LinuxBackend) UngrabPointer() error { return b.conn.UngrabPointer() }

func (b *LinuxBackend) WarpPointer(p geom.Point) error {
	return b.conn.WarpPointer(p.X, p.Y)
}

func (b *LinuxBackend) SetDesktops(count, current int) error {
	return b.conn.SetDesktops(count, current)
}

func (b *LinuxBackend) Events() <-chan Event { return b.events }

// Close disconnects from the display. The event channel is closed once
// the pump notices.
func (b *LinuxBackend) Close() error {
	b.once.Do(func() {
		close(b.done)
		b.conn.Close()
	})
	return nil
}

func (b *LinuxBackend) expectUnmap(win WindowID) {
	b.mu.Lock()
	b.ignoreUnmap[win]++
	b.mu.Unlock()
}

func (b *LinuxBackend) unexpectUnmap(win WindowID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ignoreUnmap[win] <= 1 {
		delete(b.ignoreUnmap, win)
		return
	}
	b.ignoreUnmap[win]--
}

// ownUnmap consumes one expected unmap of win.
func (b *LinuxBackend) ownUnmap(win WindowID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := b.ignoreUnmap[win]
	if n == 0 {
		return false
	}
	if n == 1 {
		delete(b.ignoreUnmap, win)
	} else {
		b.ignoreUnmap[win] = n - 1
	}
	return true
}

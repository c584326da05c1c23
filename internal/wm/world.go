// Package wm is the entity graph of the window manager: views, areas,
// frames and clients, the three layout variants that arrange them, and the
// focus rules that tie them together.
//
// A World is owned by a single goroutine. None of its methods lock.
package wm

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/acmnu/wmii/internal/geom"
	"github.com/acmnu/wmii/internal/platform"
	"github.com/acmnu/wmii/internal/registry"
	"github.com/acmnu/wmii/internal/tiling"
)

// MinColWidth is the narrowest a tiling area may become when another one
// is added.
const MinColWidth = 64

// EventSink receives event lines published by the World.
type EventSink interface {
	WriteEvent(text string)
}

// Options configures a World.
type Options struct {
	Defaults   Defaults
	DefaultTag string
	Logger     *slog.Logger
	// Rand returns a value in [0, n). Nil uses math/rand/v2.
	Rand func(n int) int
}

// World is the state of the window manager.
type World struct {
	logger  *slog.Logger
	surface platform.Surface
	events  EventSink
	ids     registry.Allocator

	views   []*View
	sel     int
	clients []*Client
	keys    []*Key
	labels  []*Label
	expand  int

	areas  map[registry.ID]*Area
	frames map[registry.ID]*Frame

	def        Defaults
	defaultTag string
	selColors  platform.ColorSet
	normColors platform.ColorSet
	barHeight  int
	screen     geom.Rect
	focused    registry.ID
	placer     tiling.Placer

	drag    *drag
	running bool
}

// New creates a World drawing on surface. Call Start before use.
func New(surface platform.Surface, opts Options) *World {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	def := opts.Defaults
	if def == (Defaults{}) {
		def = DefaultDefaults()
	}
	tag := opts.DefaultTag
	if tag == "" {
		tag = "1"
	}
	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.IntN
	}
	w := &World{
		logger:     logger,
		surface:    surface,
		areas:      make(map[registry.ID]*Area),
		frames:     make(map[registry.ID]*Frame),
		def:        def,
		defaultTag: tag,
		placer:     tiling.Placer{CellSize: def.CellSize, Rand: rnd},
		running:    true,
	}
	w.selColors, _ = ParseColors(def.SelColors)
	w.normColors, _ = ParseColors(def.NormColors)
	return w
}

// SetEventSink installs the receiver of event lines.
func (w *World) SetEventSink(s EventSink) { w.events = s }

// Start loads the font, measures the screen and manages windows that
// already exist.
func (w *World) Start() error {
	if _, err := ParseColors(w.def.SelColors); err != nil {
		return fmt.Errorf("selcolors: %w", err)
	}
	if _, err := ParseColors(w.def.NormColors); err != nil {
		return fmt.Errorf("normcolors: %w", err)
	}
	h, err := w.surface.LoadFont(w.def.Font)
	if err != nil {
		return fmt.Errorf("load font %q: %w", w.def.Font, err)
	}
	w.barHeight = h
	w.screen = w.surface.Screen()

	wins, err := w.surface.Windows()
	if err != nil {
		return fmt.Errorf("query windows: %w", err)
	}
	for _, info := range wins {
		if info.OverrideRedirect || !info.Viewable {
			continue
		}
		w.manage(info)
	}
	w.drawBar()
	return nil
}

// Running reports whether quit has not been requested.
func (w *World) Running() bool { return w.running }

// Quit stops the World. The event loop exits after the current request.
func (w *World) Quit() {
	w.running = false
}

// Shutdown gives every client back to the root window.
func (w *World) Shutdown() {
	for len(w.clients) > 0 {
		c := w.clients[len(w.clients)-1]
		w.unmanage(c, true)
	}
}

// Screen returns the screen rectangle.
func (w *World) Screen() geom.Rect { return w.screen }

// BarHeight returns the height of title bars and the status bar.
func (w *World) BarHeight() int { return w.barHeight }

func (w *World) decoration() geom.Decoration {
	return geom.Decoration{Border: w.def.Border, BarHeight: w.barHeight}
}

// layoutRect is the part of the screen not covered by the status bar.
func (w *World) layoutRect() geom.Rect {
	r := w.screen
	r.Height -= w.barHeight
	return r
}

func (w *World) barRect() geom.Rect {
	return geom.Rect{X: w.screen.X, Y: w.screen.MaxY() - w.barHeight, Width: w.screen.Width, Height: w.barHeight}
}

func (w *World) allocate() (registry.ID, error) {
	id, err := w.ids.Allocate()
	if err != nil {
		w.logger.Warn("identifier allocation failed", "error", err)
		return 0, err
	}
	return id, nil
}

func (w *World) writeEvent(format string, args ...any) {
	if w.events == nil {
		return
	}
	w.events.WriteEvent(fmt.Sprintf(format, args...))
}

// display logs a failed surface call. Windows vanish asynchronously, so
// these errors never propagate.
func (w *World) display(op string, err error) {
	if err != nil {
		w.logger.Debug("display operation failed", "op", op, "error", err)
	}
}

// Warp moves the pointer.
func (w *World) Warp(p geom.Point) error {
	if !w.screen.Contains(p) {
		return fmt.Errorf("%w: point %d %d off screen", ErrBadValue, p.X, p.Y)
	}
	w.display("warp", w.surface.WarpPointer(p))
	return nil
}

func (w *World) redrawAll() {
	for _, c := range w.clients {
		w.drawClient(c)
	}
	w.drawBar()
}

func (w *World) resizeAll() {
	for _, v := range w.views {
		w.arrangeView(v)
	}
}

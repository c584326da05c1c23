package wm

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/acmnu/wmii/internal/geom"
	"github.com/acmnu/wmii/internal/platform"
)

// fakeSurface records the display calls made by a World.
type fakeSurface struct {
	screen    geom.Rect
	barHeight int
	next      platform.WindowID

	windows    map[platform.WindowID]platform.WindowInfo
	moves      map[platform.WindowID]geom.Rect
	configures map[platform.WindowID]geom.Rect
	mapped     map[platform.WindowID]bool
	released   map[platform.WindowID]geom.Point
	frames     map[platform.WindowID]platform.Decoration
	grabbed    map[string]bool

	focused   platform.WindowID
	deleted   []platform.WindowID
	killed    []platform.WindowID
	pointer   bool
	warped    geom.Point
	bar       []platform.BarItem
	expand    int
	desktops  [2]int
	grabError error
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		screen:     geom.Rect{Width: 1280, Height: 1024},
		barHeight:  16,
		next:       0x100,
		windows:    make(map[platform.WindowID]platform.WindowInfo),
		moves:      make(map[platform.WindowID]geom.Rect),
		configures: make(map[platform.WindowID]geom.Rect),
		mapped:     make(map[platform.WindowID]bool),
		released:   make(map[platform.WindowID]geom.Point),
		frames:     make(map[platform.WindowID]platform.Decoration),
		grabbed:    make(map[string]bool),
	}
}

func (s *fakeSurface) alloc() platform.WindowID {
	id := s.next
	s.next++
	return id
}

// addWindow creates a client window the World can manage.
func (s *fakeSurface) addWindow(r geom.Rect) platform.WindowInfo {
	id := s.alloc()
	info := platform.WindowInfo{
		ID:        id,
		Bounds:    r,
		Name:      fmt.Sprintf("win%d", id),
		Class:     "xterm",
		Instance:  "term",
		CanDelete: true,
		Viewable:  true,
	}
	s.windows[id] = info
	return info
}

func (s *fakeSurface) Screen() geom.Rect { return s.screen }

func (s *fakeSurface) LoadFont(name string) (int, error) {
	if name == "missing" {
		return 0, fmt.Errorf("no font %q", name)
	}
	return s.barHeight, nil
}

func (s *fakeSurface) CreateFrame(bounds geom.Rect) (platform.WindowID, error) {
	id := s.alloc()
	s.moves[id] = bounds
	return id, nil
}

func (s *fakeSurface) DestroyFrame(frame platform.WindowID) error {
	delete(s.moves, frame)
	delete(s.mapped, frame)
	return nil
}

func (s *fakeSurface) Reparent(win, frame platform.WindowID, at geom.Point) error { return nil }

func (s *fakeSurface) Release(win platform.WindowID, at geom.Point) error {
	s.released[win] = at
	return nil
}

func (s *fakeSurface) MoveResize(win platform.WindowID, bounds geom.Rect) error {
	s.moves[win] = bounds
	return nil
}

func (s *fakeSurface) Map(win platform.WindowID) error   { s.mapped[win] = true; return nil }
func (s *fakeSurface) Unmap(win platform.WindowID) error { delete(s.mapped, win); return nil }
func (s *fakeSurface) Raise(win platform.WindowID) error { return nil }
func (s *fakeSurface) Focus(win platform.WindowID) error { s.focused = win; return nil }

func (s *fakeSurface) SendConfigure(win platform.WindowID, bounds geom.Rect, border int) error {
	s.configures[win] = bounds
	return nil
}

func (s *fakeSurface) Configure(win platform.WindowID, bounds geom.Rect) error {
	s.configures[win] = bounds
	return nil
}

func (s *fakeSurface) Delete(win platform.WindowID) error {
	s.deleted = append(s.deleted, win)
	return nil
}

func (s *fakeSurface) Kill(win platform.WindowID) error {
	s.killed = append(s.killed, win)
	return nil
}

func (s *fakeSurface) Windows() ([]platform.WindowInfo, error) {
	var out []platform.WindowInfo
	for _, info := range s.windows {
		out = append(out, info)
	}
	return out, nil
}

func (s *fakeSurface) Info(win platform.WindowID) (platform.WindowInfo, error) {
	info, ok := s.windows[win]
	if !ok {
		return platform.WindowInfo{}, fmt.Errorf("bad window 0x%x", win)
	}
	return info, nil
}

func (s *fakeSurface) DrawFrame(frame platform.WindowID, d platform.Decoration) error {
	s.frames[frame] = d
	return nil
}

func (s *fakeSurface) DrawBar(bounds geom.Rect, items []platform.BarItem, expand int) error {
	s.bar = append([]platform.BarItem(nil), items...)
	s.expand = expand
	return nil
}

func (s *fakeSurface) GrabKey(name string) error {
	if s.grabError != nil {
		return s.grabError
	}
	s.grabbed[name] = true
	return nil
}

func (s *fakeSurface) UngrabKey(name string) error {
	delete(s.grabbed, name)
	return nil
}

func (s *fakeSurface) GrabPointer() error   { s.pointer = true; return nil }
func (s *fakeSurface) UngrabPointer() error { s.pointer = false; return nil }

func (s *fakeSurface) WarpPointer(p geom.Point) error {
	s.warped = p
	return nil
}

func (s *fakeSurface) SetDesktops(count, current int) error {
	s.desktops = [2]int{count, current}
	return nil
}

func (s *fakeSurface) Events() <-chan platform.Event { return nil }
func (s *fakeSurface) Close() error                  { return nil }

type eventLog []string

func (l *eventLog) WriteEvent(text string) { *l = append(*l, text) }

func newTestWorld(t *testing.T) (*World, *fakeSurface, *eventLog) {
	t.Helper()
	s := newFakeSurface()
	w := New(s, Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Rand:   func(int) int { return 0 },
	})
	events := &eventLog{}
	w.SetEventSink(events)
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return w, s, events
}

func manageWindow(t *testing.T, w *World, s *fakeSurface, r geom.Rect) *Client {
	t.Helper()
	c, err := w.Manage(s.addWindow(r))
	if err != nil {
		t.Fatalf("Manage: %v", err)
	}
	return c
}

// checkInvariants verifies the selection bounds that must hold after every
// operation.
func checkInvariants(t *testing.T, w *World) {
	t.Helper()
	if len(w.views) > 0 && (w.sel < 0 || w.sel >= len(w.views)) {
		t.Fatalf("view selection %d out of range [0,%d)", w.sel, len(w.views))
	}
	for _, v := range w.views {
		if v.sel < 0 || v.sel >= len(v.areas) {
			t.Fatalf("view %q: area selection %d out of range [0,%d)", v.name, v.sel, len(v.areas))
		}
		if v.areas[0].mode != ModeFloat {
			t.Fatalf("view %q: area 0 is %s", v.name, v.areas[0].mode)
		}
		for i, a := range v.areas {
			if i > 0 && a.mode == ModeFloat {
				t.Fatalf("view %q: area %d floats", v.name, i)
			}
			if len(a.frames) > 0 && (a.sel < 0 || a.sel >= len(a.frames)) {
				t.Fatalf("view %q area %d: frame selection %d out of range", v.name, i, a.sel)
			}
			for _, f := range a.frames {
				if w.frames[f.id] != f || f.area != a.id {
					t.Fatalf("view %q area %d: stale frame %d", v.name, i, f.id)
				}
			}
		}
	}
	for _, c := range w.clients {
		if len(c.frames) == 0 {
			t.Fatalf("client %d has no frame", c.id)
		}
		seen := map[*View]bool{}
		for _, id := range c.frames {
			f := w.frames[id]
			if f == nil {
				t.Fatalf("client %d: dangling frame %d", c.id, id)
			}
			v := w.viewOf(w.areas[f.area])
			if seen[v] {
				t.Fatalf("client %d: two frames in view %q", c.id, v.name)
			}
			seen[v] = true
		}
	}
}

// exhaustIDs uses up every identifier left in w.
func exhaustIDs(t *testing.T, w *World) {
	t.Helper()
	for w.ids.Remaining() > 0 {
		if _, err := w.ids.Allocate(); err != nil {
			t.Fatalf("Allocate: %v", err)
		}
	}
}

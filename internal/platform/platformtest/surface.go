// Package platformtest provides an in-memory platform.Surface for tests of
// the packages layered above wm.
package platformtest

import (
	"fmt"

	"github.com/acmnu/wmii/internal/geom"
	"github.com/acmnu/wmii/internal/platform"
)

// Surface is a 1280x1024 display with a 16 pixel bar font. It records the
// calls that tests inspect and accepts everything else.
type Surface struct {
	Bounds  geom.Rect
	Known   map[platform.WindowID]platform.WindowInfo
	Moves   map[platform.WindowID]geom.Rect
	Grabbed map[string]bool
	Deleted []platform.WindowID
	Warped  geom.Point
	Bar     []platform.BarItem
	// Parent maps reparented client windows to their frames. Windows
	// lists only windows without a parent, as X lists root children.
	Parent map[platform.WindowID]platform.WindowID

	next   platform.WindowID
	events chan platform.Event
}

// New returns an empty Surface.
func New() *Surface {
	return &Surface{
		Bounds:  geom.Rect{Width: 1280, Height: 1024},
		Known:   make(map[platform.WindowID]platform.WindowInfo),
		Moves:   make(map[platform.WindowID]geom.Rect),
		Grabbed: make(map[string]bool),
		Parent:  make(map[platform.WindowID]platform.WindowID),
		next:    0x100,
		events:  make(chan platform.Event, 16),
	}
}

// AddWindow creates a client window of class "xterm".
func (s *Surface) AddWindow(r geom.Rect) platform.WindowInfo {
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
	s.Known[id] = info
	return info
}

// Send queues ev on the Events channel.
func (s *Surface) Send(ev platform.Event) { s.events <- ev }

func (s *Surface) alloc() platform.WindowID {
	id := s.next
	s.next++
	return id
}

func (s *Surface) Screen() geom.Rect { return s.Bounds }

func (s *Surface) LoadFont(name string) (int, error) {
	if name == "missing" {
		return 0, fmt.Errorf("no font %q", name)
	}
	return 16, nil
}

func (s *Surface) CreateFrame(bounds geom.Rect) (platform.WindowID, error) {
	id := s.alloc()
	s.Moves[id] = bounds
	return id, nil
}

// DestroyFrame destroys frame and, like X, any client still inside it.
func (s *Surface) DestroyFrame(frame platform.WindowID) error {
	delete(s.Moves, frame)
	for win, parent := range s.Parent {
		if parent == frame {
			delete(s.Parent, win)
			delete(s.Known, win)
		}
	}
	return nil
}

func (s *Surface) MoveResize(win platform.WindowID, bounds geom.Rect) error {
	s.Moves[win] = bounds
	return nil
}

func (s *Surface) Info(win platform.WindowID) (platform.WindowInfo, error) {
	info, ok := s.Known[win]
	if !ok {
		return platform.WindowInfo{}, fmt.Errorf("bad window 0x%x", win)
	}
	return info, nil
}

func (s *Surface) Windows() ([]platform.WindowInfo, error) {
	var out []platform.WindowInfo
	for id, info := range s.Known {
		if _, ok := s.Parent[id]; !ok {
			out = append(out, info)
		}
	}
	return out, nil
}

func (s *Surface) Delete(win platform.WindowID) error {
	s.Deleted = append(s.Deleted, win)
	return nil
}

func (s *Surface) DrawBar(bounds geom.Rect, items []platform.BarItem, expand int) error {
	s.Bar = append([]platform.BarItem(nil), items...)
	return nil
}

func (s *Surface) GrabKey(name string) error {
	s.Grabbed[name] = true
	return nil
}

func (s *Surface) UngrabKey(name string) error {
	delete(s.Grabbed, name)
	return nil
}

func (s *Surface) WarpPointer(p geom.Point) error {
	s.Warped = p
	return nil
}

func (s *Surface) Reparent(win, frame platform.WindowID, at geom.Point) error {
	s.Parent[win] = frame
	return nil
}

func (s *Surface) Release(win platform.WindowID, at geom.Point) error {
	delete(s.Parent, win)
	return nil
}

func (s *Surface) Map(win platform.WindowID) error                            { return nil }
func (s *Surface) Unmap(win platform.WindowID) error                          { return nil }
func (s *Surface) Raise(win platform.WindowID) error                          { return nil }
func (s *Surface) Focus(win platform.WindowID) error                          { return nil }
func (s *Surface) Kill(win platform.WindowID) error                           { return nil }
func (s *Surface) GrabPointer() error                                         { return nil }
func (s *Surface) UngrabPointer() error                                       { return nil }
func (s *Surface) SetDesktops(count, current int) error                       { return nil }
func (s *Surface) Events() <-chan platform.Event                              { return s.events }
func (s *Surface) Close() error                                               { return nil }

func (s *Surface) SendConfigure(win platform.WindowID, bounds geom.Rect, border int) error {
	return nil
}

func (s *Surface) Configure(win platform.WindowID, bounds geom.Rect) error { return nil }

func (s *Surface) DrawFrame(frame platform.WindowID, d platform.Decoration) error { return nil }

package platformtest

import (
	"io"
	"log/slog"
	"testing"

	"github.com/acmnu/wmii/internal/geom"
	"github.com/acmnu/wmii/internal/wm"
)

// Events collects the lines a World publishes.
type Events []string

func (e *Events) WriteEvent(text string) { *e = append(*e, text) }

// NewWorld returns a started World on a fresh Surface.
func NewWorld(t testing.TB) (*wm.World, *Surface, *Events) {
	t.Helper()
	s := New()
	w := wm.New(s, wm.Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Rand:   func(int) int { return 0 },
	})
	events := &Events{}
	w.SetEventSink(events)
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return w, s, events
}

// Manage adds a 50x50 window and manages it.
func Manage(t testing.TB, w *wm.World, s *Surface) *wm.Client {
	t.Helper()
	c, err := w.Manage(s.AddWindow(geom.Rect{Width: 50, Height: 50}))
	if err != nil {
		t.Fatalf("Manage: %v", err)
	}
	return c
}

package wm

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/acmnu/wmii/internal/geom"
	"github.com/acmnu/wmii/internal/platform"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
		err  bool
	}{
		{in: "float", want: ModeFloat},
		{in: "column\n", want: ModeColumn},
		{in: "default", want: ModeColumn},
		{in: "stack", want: ModeStack},
		{in: "max", err: true},
		{in: "", err: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.err {
				if !errors.Is(err, ErrBadMode) {
					t.Fatalf("err = %v, want %v", err, ErrBadMode)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("ParseMode(%q) = %s, %v; want %s", tt.in, got, err, tt.want)
			}
			if got.String() != map[Mode]string{ModeFloat: "float", ModeColumn: "column", ModeStack: "stack"}[got] {
				t.Fatalf("String() = %q", got.String())
			}
		})
	}
}

func frameRects(a *Area) []geom.Rect {
	out := make([]geom.Rect, len(a.Frames()))
	for i, f := range a.Frames() {
		out[i] = f.Rect()
	}
	return out
}

func TestColumnsNewAndDestroy(t *testing.T) {
	w, s, _ := newTestWorld(t)
	c1 := manageWindow(t, w, s, geom.Rect{Width: 50, Height: 50})
	manageWindow(t, w, s, geom.Rect{Width: 50, Height: 50})
	c3 := manageWindow(t, w, s, geom.Rect{Width: 50, Height: 50})
	a := w.SelectedView().SelectedArea()

	if diff := cmp.Diff([]geom.Rect{
		{Width: 1280, Height: 336},
		{Y: 336, Width: 1280, Height: 336},
		{Y: 672, Width: 1280, Height: 336},
	}, frameRects(a)); diff != "" {
		t.Fatalf("single column (-want +got):\n%s", diff)
	}

	if err := w.NewColumn(a); err != nil {
		t.Fatalf("NewColumn: %v", err)
	}
	if a.Columns() != 2 {
		t.Fatalf("columns = %d, want 2", a.Columns())
	}
	if diff := cmp.Diff([]geom.Rect{
		{Width: 640, Height: 504},
		{Y: 504, Width: 640, Height: 504},
		{X: 640, Width: 640, Height: 1008},
	}, frameRects(a)); diff != "" {
		t.Fatalf("two columns (-want +got):\n%s", diff)
	}
	if w.Focused() != c3 || a.SelectedFrame().ClientID() != c3.ID() {
		t.Fatal("the moved frame stays selected")
	}

	if err := w.SelectFrame(a, West); err != nil {
		t.Fatalf("select west: %v", err)
	}
	if w.Focused() != c1 {
		t.Fatalf("west should focus the first frame of the west column")
	}
	if err := w.SelectFrame(a, East); err != nil {
		t.Fatalf("select east: %v", err)
	}
	if w.Focused() != c3 {
		t.Fatalf("east should focus the east column")
	}

	if err := w.DestroyColumn(a); err != nil {
		t.Fatalf("DestroyColumn: %v", err)
	}
	if a.Columns() != 1 || len(a.Frames()) != 3 {
		t.Fatalf("columns=%d frames=%d, want 1 and 3", a.Columns(), len(a.Frames()))
	}
	if err := w.DestroyColumn(a); !errors.Is(err, ErrPermission) {
		t.Fatalf("err = %v, want %v", err, ErrPermission)
	}
	checkInvariants(t, w)
}

func TestSwapFrame(t *testing.T) {
	w, s, _ := newTestWorld(t)
	c1 := manageWindow(t, w, s, geom.Rect{Width: 50, Height: 50})
	c2 := manageWindow(t, w, s, geom.Rect{Width: 50, Height: 50})
	a := w.SelectedView().SelectedArea()

	if err := w.SwapFrame(a, Prev); err != nil {
		t.Fatalf("SwapFrame: %v", err)
	}
	if a.Frames()[0].ClientID() != c2.ID() || a.Frames()[1].ClientID() != c1.ID() {
		t.Fatal("frames not swapped")
	}
	if a.Sel() != 0 {
		t.Fatalf("sel = %d, the swapped frame stays selected", a.Sel())
	}
	if diff := cmp.Diff(geom.Rect{Y: 504, Width: 1280, Height: 504}, s.moves[c1.Frame()]); diff != "" {
		t.Fatalf("c1 frame (-want +got):\n%s", diff)
	}
	if err := w.SwapFrame(a, Index(0)); !errors.Is(err, ErrBadValue) {
		t.Fatalf("err = %v, want %v", err, ErrBadValue)
	}
}

func TestStackMode(t *testing.T) {
	w, s, _ := newTestWorld(t)
	manageWindow(t, w, s, geom.Rect{Width: 50, Height: 50})
	manageWindow(t, w, s, geom.Rect{Width: 50, Height: 50})
	v := w.SelectedView()
	a := v.SelectedArea()

	if err := w.SetMode(a, ModeStack); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	if diff := cmp.Diff([]geom.Rect{
		{Width: 1280, Height: 16},
		{Y: 16, Width: 1280, Height: 992},
	}, frameRects(a)); diff != "" {
		t.Fatalf("stacked (-want +got):\n%s", diff)
	}
	if err := w.SelectFrame(a, Index(0)); err != nil {
		t.Fatalf("SelectFrame: %v", err)
	}
	if diff := cmp.Diff([]geom.Rect{
		{Width: 1280, Height: 992},
		{Y: 992, Width: 1280, Height: 16},
	}, frameRects(a)); diff != "" {
		t.Fatalf("after select (-want +got):\n%s", diff)
	}

	if err := w.SetMode(a, ModeColumn); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	if diff := cmp.Diff([]geom.Rect{
		{Width: 1280, Height: 504},
		{Y: 504, Width: 1280, Height: 504},
	}, frameRects(a)); diff != "" {
		t.Fatalf("back to columns (-want +got):\n%s", diff)
	}

	if err := w.SetMode(v.Areas()[0], ModeColumn); !errors.Is(err, ErrBadMode) {
		t.Fatalf("mode on the floating area: err = %v, want %v", err, ErrBadMode)
	}
	if err := w.SetMode(a, ModeFloat); !errors.Is(err, ErrBadMode) {
		t.Fatalf("float on a tiling area: err = %v, want %v", err, ErrBadMode)
	}
	checkInvariants(t, w)
}

func TestDragMoveSnapsFloatingFrame(t *testing.T) {
	w, s, _ := newTestWorld(t)
	c := manageWindow(t, w, s, geom.Rect{Width: 50, Height: 50})
	if err := w.SendToArea(w.currentFrame(c), Toggle); err != nil {
		t.Fatalf("SendToArea: %v", err)
	}
	f := w.currentFrame(c)
	if err := w.SetGeometry(f, geom.Rect{X: 100, Y: 100, Width: 200, Height: 100}); err != nil {
		t.Fatalf("SetGeometry: %v", err)
	}

	w.HandleEvent(platform.Event{Kind: platform.EventButtonPress, Window: c.Frame(), Mod: true, Button: ButtonMove, Point: geom.Point{X: 150, Y: 150}})
	if !s.pointer {
		t.Fatal("pointer not grabbed")
	}
	w.HandleEvent(platform.Event{Kind: platform.EventMotion, Point: geom.Point{X: 60, Y: 160}})
	if diff := cmp.Diff(geom.Rect{X: 0, Y: 110, Width: 200, Height: 100}, f.Rect()); diff != "" {
		t.Fatalf("during drag (-want +got):\n%s", diff)
	}
	w.HandleEvent(platform.Event{Kind: platform.EventButtonRelease, Point: geom.Point{X: 60, Y: 160}})
	if s.pointer {
		t.Fatal("pointer still grabbed")
	}
	if diff := cmp.Diff(geom.Rect{X: 0, Y: 110, Width: 200, Height: 100}, f.Rect()); diff != "" {
		t.Fatalf("after drag (-want +got):\n%s", diff)
	}
}

func TestDragResizeColumns(t *testing.T) {
	w, s, _ := newTestWorld(t)
	c1 := manageWindow(t, w, s, geom.Rect{Width: 50, Height: 50})
	c2 := manageWindow(t, w, s, geom.Rect{Width: 50, Height: 50})
	a := w.SelectedView().SelectedArea()
	if err := w.NewColumn(a); err != nil {
		t.Fatalf("NewColumn: %v", err)
	}

	press := platform.Event{Kind: platform.EventButtonPress, Window: c1.Frame(), Mod: true, Button: ButtonResize, Point: geom.Point{X: 600, Y: 500}}
	w.HandleEvent(press)
	w.HandleEvent(platform.Event{Kind: platform.EventButtonRelease, Point: geom.Point{X: 700, Y: 500}})
	if diff := cmp.Diff([]geom.Rect{
		{Width: 740, Height: 1008},
		{X: 740, Width: 540, Height: 1008},
	}, frameRects(a)); diff != "" {
		t.Fatalf("after resize (-want +got):\n%s", diff)
	}

	// Past the east edge of the neighbour: rejected, nothing moves.
	w.HandleEvent(press)
	w.HandleEvent(platform.Event{Kind: platform.EventButtonRelease, Point: geom.Point{X: 1300, Y: 500}})
	if diff := cmp.Diff(geom.Rect{X: 740, Width: 540, Height: 1008}, s.moves[c2.Frame()]); diff != "" {
		t.Fatalf("rejected resize moved the neighbour (-want +got):\n%s", diff)
	}
	checkInvariants(t, w)
}

func TestDragMoveBetweenColumns(t *testing.T) {
	w, s, _ := newTestWorld(t)
	c1 := manageWindow(t, w, s, geom.Rect{Width: 50, Height: 50})
	manageWindow(t, w, s, geom.Rect{Width: 50, Height: 50})
	c3 := manageWindow(t, w, s, geom.Rect{Width: 50, Height: 50})
	a := w.SelectedView().SelectedArea()
	if err := w.NewColumn(a); err != nil {
		t.Fatalf("NewColumn: %v", err)
	}

	// Drag c1 from the west column onto c3 in the east column.
	w.HandleEvent(platform.Event{Kind: platform.EventButtonPress, Window: c1.Frame(), Mod: true, Button: ButtonMove, Point: geom.Point{X: 10, Y: 10}})
	w.HandleEvent(platform.Event{Kind: platform.EventButtonRelease, Point: geom.Point{X: 900, Y: 100}})

	ci, _ := a.columnOf(w.currentFrame(c1).ID())
	if ci != 1 {
		t.Fatalf("c1 in column %d, want 1", ci)
	}
	if a.mru != 1 {
		t.Fatalf("mru = %d, the target column becomes most recently used", a.mru)
	}
	if diff := cmp.Diff(geom.Rect{X: 640, Width: 640, Height: 504}, w.currentFrame(c3).Rect()); diff != "" {
		t.Fatalf("c3 (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(geom.Rect{X: 640, Y: 504, Width: 640, Height: 504}, w.currentFrame(c1).Rect()); diff != "" {
		t.Fatalf("c1 (-want +got):\n%s", diff)
	}
	checkInvariants(t, w)
}

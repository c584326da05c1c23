package tiling

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/acmnu/wmii/internal/geom"
)

func TestColumnFramesLastAbsorbsRemainder(t *testing.T) {
	col := geom.Rect{X: 0, Y: 0, Width: 500, Height: 1000}
	got := ColumnFrames(col, 3)
	want := []geom.Rect{
		{X: 0, Y: 0, Width: 500, Height: 333},
		{X: 0, Y: 333, Width: 500, Height: 333},
		{X: 0, Y: 666, Width: 500, Height: 334},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ColumnFrames mismatch (-want +got):\n%s", diff)
	}

	total := 0
	for _, r := range got {
		total += r.Height
	}
	if total != col.Height {
		t.Fatalf("heights sum to %d, want %d", total, col.Height)
	}
}

func TestColumnFramesEmpty(t *testing.T) {
	if got := ColumnFrames(geom.Rect{Width: 10, Height: 10}, 0); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestSplitColumns(t *testing.T) {
	got := SplitColumns(geom.Rect{X: 10, Y: 5, Width: 101, Height: 50}, 2)
	want := []geom.Rect{
		{X: 10, Y: 5, Width: 50, Height: 50},
		{X: 60, Y: 5, Width: 51, Height: 50},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("SplitColumns mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitColumnsWidth(t *testing.T) {
	area := geom.Rect{Width: 1000, Height: 10}
	got := SplitColumnsWidth(area, 3, 200)
	if got[0].Width != 200 || got[1].X != 200 || got[2].X != 400 || got[2].Width != 600 {
		t.Fatalf("unexpected columns: %+v", got)
	}

	// Too wide for the area: equal split.
	got = SplitColumnsWidth(area, 3, 600)
	if got[0].Width != 333 || got[2].Width != 334 {
		t.Fatalf("expected equal split, got %+v", got)
	}
}

func TestStackFrames(t *testing.T) {
	col := geom.Rect{X: 0, Y: 0, Width: 300, Height: 600}
	got := StackFrames(col, 3, 1, 20)
	want := []geom.Rect{
		{X: 0, Y: 0, Width: 300, Height: 20},
		{X: 0, Y: 20, Width: 300, Height: 560},
		{X: 0, Y: 580, Width: 300, Height: 20},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("StackFrames mismatch (-want +got):\n%s", diff)
	}
	if !Collapsed(got[0], 20) || Collapsed(got[1], 20) {
		t.Fatalf("collapse detection wrong")
	}
}

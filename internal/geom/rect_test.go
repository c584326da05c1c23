package geom

import (
	"errors"
	"testing"
)

func TestParseRect(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Rect
		wantErr bool
	}{
		{name: "plain", in: "10 20 300 400", want: Rect{X: 10, Y: 20, Width: 300, Height: 400}},
		{name: "negative origin", in: "-5 -6 7 8", want: Rect{X: -5, Y: -6, Width: 7, Height: 8}},
		{name: "extra spaces", in: "  1   2 3 4\n", want: Rect{X: 1, Y: 2, Width: 3, Height: 4}},
		{name: "too few", in: "1 2 3", wantErr: true},
		{name: "too many", in: "1 2 3 4 5", wantErr: true},
		{name: "garbage", in: "1 2 three 4", wantErr: true},
		{name: "zero width", in: "1 2 0 4", wantErr: true},
		{name: "negative height", in: "1 2 3 -4", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRect(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrBadRect) {
					t.Fatalf("expected ErrBadRect, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRectStringRoundTrip(t *testing.T) {
	r := Rect{X: -3, Y: 9, Width: 640, Height: 480}
	got, err := ParseRect(r.String())
	if err != nil {
		t.Fatalf("ParseRect(%q): %v", r.String(), err)
	}
	if got != r {
		t.Fatalf("round trip: got %+v, want %+v", got, r)
	}
}

func TestContainsIsHalfOpen(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	if !r.Contains(Point{X: 0, Y: 0}) {
		t.Fatalf("origin should be inside")
	}
	if r.Contains(Point{X: 10, Y: 5}) {
		t.Fatalf("right edge should be outside")
	}
	if r.Contains(Point{X: 5, Y: 10}) {
		t.Fatalf("bottom edge should be outside")
	}
}

func TestIntersects(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	if !a.Intersects(Rect{X: 9, Y: 9, Width: 5, Height: 5}) {
		t.Fatalf("overlapping corner should intersect")
	}
	if a.Intersects(Rect{X: 10, Y: 0, Width: 5, Height: 5}) {
		t.Fatalf("touching edges should not intersect")
	}
	if a.Intersects(Rect{X: 2, Y: 2}) {
		t.Fatalf("empty rect should not intersect")
	}
}

func TestSnap(t *testing.T) {
	bounds := Rect{X: 0, Y: 0, Width: 1000, Height: 800}
	got := Snap(Rect{X: 7, Y: 795 - 100, Width: 100, Height: 100}, bounds, 10)
	want := Rect{X: 0, Y: 700, Width: 100, Height: 100}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if got := Snap(Rect{X: 50, Y: 50, Width: 10, Height: 10}, bounds, 10); got.X != 50 || got.Y != 50 {
		t.Fatalf("far rect should not snap: %+v", got)
	}
}

func TestClamp(t *testing.T) {
	bounds := Rect{X: 0, Y: 0, Width: 100, Height: 100}
	got := Clamp(Rect{X: 90, Y: -5, Width: 20, Height: 20}, bounds)
	want := Rect{X: 80, Y: 0, Width: 20, Height: 20}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

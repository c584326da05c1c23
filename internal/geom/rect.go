// Package geom holds the rectangle arithmetic shared by the layout engine,
// the namespace files and the display backend.
package geom

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadRect is returned when a textual rectangle cannot be parsed.
var ErrBadRect = errors.New("bad value")

// Point is a position in display coordinates.
type Point struct {
	X int
	Y int
}

// Rect represents a window position and size
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// MaxX returns the first column to the right of r.
func (r Rect) MaxX() int { return r.X + r.Width }

// MaxY returns the first row below r.
func (r Rect) MaxY() int { return r.Y + r.Height }

// Empty reports whether r covers no pixels.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Contains reports whether p lies inside r. The right and bottom edges are
// exclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.MaxX() && p.Y >= r.Y && p.Y < r.MaxY()
}

// Intersects reports whether r and o share at least one pixel.
func (r Rect) Intersects(o Rect) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	return r.X < o.MaxX() && o.X < r.MaxX() && r.Y < o.MaxY() && o.Y < r.MaxY()
}

// Within reports whether r lies completely inside o.
func (r Rect) Within(o Rect) bool {
	return r.X >= o.X && r.Y >= o.Y && r.MaxX() <= o.MaxX() && r.MaxY() <= o.MaxY()
}

// StrictlyWithin is Within with every edge of r at least one pixel away
// from the matching edge of o.
func (r Rect) StrictlyWithin(o Rect) bool {
	return r.X > o.X && r.Y > o.Y && r.MaxX() < o.MaxX() && r.MaxY() < o.MaxY()
}

// Translate returns r moved by dx, dy.
func (r Rect) Translate(dx, dy int) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Center returns the middle point of r.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// String formats r as "x y w h", the format of geom files.
func (r Rect) String() string {
	return fmt.Sprintf("%d %d %d %d", r.X, r.Y, r.Width, r.Height)
}

// ParseRect parses "x y w h". Width and height must be positive.
func ParseRect(s string) (Rect, error) {
	v, err := parseInts(s, 4)
	if err != nil {
		return Rect{}, err
	}
	r := Rect{X: v[0], Y: v[1], Width: v[2], Height: v[3]}
	if r.Empty() {
		return Rect{}, fmt.Errorf("%w: empty rectangle %q", ErrBadRect, s)
	}
	return r, nil
}

// ParsePoint parses "x y".
func ParsePoint(s string) (Point, error) {
	v, err := parseInts(s, 2)
	if err != nil {
		return Point{}, err
	}
	return Point{X: v[0], Y: v[1]}, nil
}

func parseInts(s string, n int) ([]int, error) {
	fields := strings.Fields(s)
	if len(fields) != n {
		return nil, fmt.Errorf("%w: want %d numbers, got %q", ErrBadRect, n, s)
	}
	out := make([]int, n)
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrBadRect, f)
		}
		out[i] = v
	}
	return out, nil
}

// Snap moves edges of r that lie within dist pixels of the matching edge of
// bounds onto that edge. Size is preserved.
func Snap(r, bounds Rect, dist int) Rect {
	if dist <= 0 {
		return r
	}
	if abs(r.X-bounds.X) <= dist {
		r.X = bounds.X
	} else if abs(r.MaxX()-bounds.MaxX()) <= dist {
		r.X = bounds.MaxX() - r.Width
	}
	if abs(r.Y-bounds.Y) <= dist {
		r.Y = bounds.Y
	} else if abs(r.MaxY()-bounds.MaxY()) <= dist {
		r.Y = bounds.MaxY() - r.Height
	}
	return r
}

// Clamp shifts r so it stays inside bounds where possible. A rectangle
// larger than bounds is aligned to its top-left corner.
func Clamp(r, bounds Rect) Rect {
	if r.MaxX() > bounds.MaxX() {
		r.X = bounds.MaxX() - r.Width
	}
	if r.MaxY() > bounds.MaxY() {
		r.Y = bounds.MaxY() - r.Height
	}
	if r.X < bounds.X {
		r.X = bounds.X
	}
	if r.Y < bounds.Y {
		r.Y = bounds.Y
	}
	return r
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

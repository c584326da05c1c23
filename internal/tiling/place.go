package tiling

import "github.com/acmnu/wmii/internal/geom"

// DefaultCellSize is the edge length in pixels of one placement grid cell.
const DefaultCellSize = 8

// Placer chooses initial positions for floating frames.
type Placer struct {
	// CellSize is the grid granularity in pixels. Zero means
	// DefaultCellSize.
	CellSize int

	// Rand returns a value in [0, n). It is used when no free region of the
	// grid is large enough. Nil places the frame at the area origin.
	Rand func(n int) int
}

// Place returns frame moved to the largest free region of area that is
// strictly larger than frame in both grid dimensions. occupied lists the
// rectangles of the other frames in the area.
//
// Frames at least as large as the area keep their position.
func (p Placer) Place(area, frame geom.Rect, occupied []geom.Rect) geom.Rect {
	if frame.Width >= area.Width || frame.Height >= area.Height {
		return frame
	}

	cell := p.CellSize
	if cell <= 0 {
		cell = DefaultCellSize
	}
	mx, my := area.Width/cell, area.Height/cell
	var (
		fit    bool
		p1, p2 geom.Point
		dx, dy = 1, 1
	)
	if mx > 0 && my > 0 {
		dx, dy = area.Width/mx, area.Height/my
		free := make([]bool, mx*my)
		for i := range free {
			free[i] = true
		}
		for _, o := range occupied {
			x0 := max(0, (o.X-area.X)/dx)
			y0 := max(0, (o.Y-area.Y)/dy)
			x1 := min(mx, ceilDiv(o.MaxX()-area.X, dx))
			y1 := min(my, ceilDiv(o.MaxY()-area.Y, dy))
			for j := y0; j < y1; j++ {
				for i := x0; i < x1; i++ {
					free[j*mx+i] = false
				}
			}
		}

		cx, cy := frame.Width/dx, frame.Height/dy
		for y := 0; y < my; y++ {
			for x := 0; x < mx; x++ {
				if !free[y*mx+x] {
					continue
				}
				i := x
				for i < mx && free[y*mx+i] {
					i++
				}
				j := y
				for j < my && free[j*mx+x] {
					j++
				}
				if (i-x)*(j-y) > (p2.X-p1.X)*(p2.Y-p1.Y) && i-x > cx && j-y > cy {
					fit = true
					p1 = geom.Point{X: x, Y: y}
					p2 = geom.Point{X: i, Y: j}
				}
			}
		}
	}

	px, py := area.X+p1.X*dx, area.Y+p1.Y*dy
	if fit && px+frame.Width <= area.MaxX() {
		frame.X = px
	} else {
		frame.X = area.X + p.random(area.Width-frame.Width)
	}
	if fit && py+frame.Height <= area.MaxY() {
		frame.Y = py
	} else {
		frame.Y = area.Y + p.random(area.Height-frame.Height)
	}
	return frame
}

func (p Placer) random(n int) int {
	if n <= 0 || p.Rand == nil {
		return 0
	}
	v := p.Rand(n)
	if v < 0 || v >= n {
		return 0
	}
	return v
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

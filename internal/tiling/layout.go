// Package tiling holds the arrangement arithmetic of the layout engine. It
// works on plain rectangles; the wm package maps the results onto frames.
package tiling

import "github.com/acmnu/wmii/internal/geom"

// SplitColumns divides area into n side-by-side columns of equal width.
// The last column absorbs the remainder.
func SplitColumns(area geom.Rect, n int) []geom.Rect {
	if n <= 0 {
		return nil
	}
	w := area.Width / n
	out := make([]geom.Rect, n)
	for i := range out {
		out[i] = geom.Rect{X: area.X + i*w, Y: area.Y, Width: w, Height: area.Height}
	}
	out[n-1].Width = area.MaxX() - out[n-1].X
	return out
}

// SplitColumnsWidth divides area into n columns of the given width, with
// the last column taking what is left. A width of zero, or one that does not
// leave room for every column, falls back to SplitColumns.
func SplitColumnsWidth(area geom.Rect, n, width int) []geom.Rect {
	if n <= 0 {
		return nil
	}
	if width <= 0 || (n-1)*width >= area.Width {
		return SplitColumns(area, n)
	}
	out := make([]geom.Rect, n)
	for i := range out {
		out[i] = geom.Rect{X: area.X + i*width, Y: area.Y, Width: width, Height: area.Height}
	}
	out[n-1].Width = area.MaxX() - out[n-1].X
	return out
}

// ColumnFrames stacks n frames vertically inside col. Every frame gets the
// same height except the last, which absorbs the remainder.
func ColumnFrames(col geom.Rect, n int) []geom.Rect {
	if n <= 0 {
		return nil
	}
	h := col.Height / n
	out := make([]geom.Rect, n)
	for i := range out {
		out[i] = geom.Rect{X: col.X, Y: col.Y + i*h, Width: col.Width, Height: h}
	}
	out[n-1].Height = col.MaxY() - out[n-1].Y
	return out
}

// StackFrames arranges n frames for the stacked layout. Unselected frames
// collapse to barHeight; the selected one takes the rest of the column.
func StackFrames(col geom.Rect, n, sel, barHeight int) []geom.Rect {
	if n <= 0 {
		return nil
	}
	if sel < 0 || sel >= n {
		sel = 0
	}
	selHeight := col.Height - (n-1)*barHeight
	if selHeight < barHeight {
		selHeight = barHeight
	}
	out := make([]geom.Rect, n)
	y := col.Y
	for i := range out {
		h := barHeight
		if i == sel {
			h = selHeight
		}
		out[i] = geom.Rect{X: col.X, Y: y, Width: col.Width, Height: h}
		y += h
	}
	return out
}

// Collapsed reports whether a frame of the given height only shows its
// title bar.
func Collapsed(r geom.Rect, barHeight int) bool {
	return r.Height <= barHeight
}

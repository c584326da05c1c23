package tiling

import "github.com/acmnu/wmii/internal/geom"

// Column is one vertical strip of a tiling area.
type Column struct {
	Rect   geom.Rect
	Frames []geom.Rect
}

// Arrange spreads the column's frames evenly over its height.
func (c *Column) Arrange() {
	copy(c.Frames, ColumnFrames(c.Rect, len(c.Frames)))
}

func (c *Column) matchHorizontal() {
	for i := range c.Frames {
		c.Frames[i].X = c.Rect.X
		c.Frames[i].Width = c.Rect.Width
	}
}

// ColumnAt returns the index of the column containing pt, or -1.
func ColumnAt(cols []Column, pt geom.Point) int {
	for i := range cols {
		if cols[i].Rect.Contains(pt) {
			return i
		}
	}
	return -1
}

// DragResize applies a resize of frame fi in column ci to want. Each moved
// edge is shared with a neighbour: the west or east column for vertical
// edges, the north or south frame for horizontal ones. Moving an edge is
// only allowed while it stays strictly inside both rectangles that share it.
// Edges on the outside of the area have no neighbour and stay put.
//
// If any requested edge move is not allowed, nothing changes and DragResize
// returns false.
func DragResize(cols []Column, ci, fi int, want geom.Rect) bool {
	if ci < 0 || ci >= len(cols) || fi < 0 || fi >= len(cols[ci].Frames) {
		return false
	}
	col := &cols[ci]
	f := col.Frames[fi]

	var west, east *Column
	if ci > 0 {
		west = &cols[ci-1]
	}
	if ci+1 < len(cols) {
		east = &cols[ci+1]
	}
	var north, south *geom.Rect
	if fi > 0 {
		north = &col.Frames[fi-1]
	}
	if fi+1 < len(col.Frames) {
		south = &col.Frames[fi+1]
	}

	left, right := want.X, want.MaxX()
	top, bottom := want.Y, want.MaxY()
	moveLeft := west != nil && left != col.Rect.X
	moveRight := east != nil && right != col.Rect.MaxX()
	moveTop := north != nil && top != f.Y
	moveBottom := south != nil && bottom != f.MaxY()

	newColX, newColMax := col.Rect.X, col.Rect.MaxX()
	if moveLeft {
		newColX = left
	}
	if moveRight {
		newColMax = right
	}
	newTop, newBottom := f.Y, f.MaxY()
	if moveTop {
		newTop = top
	}
	if moveBottom {
		newBottom = bottom
	}

	if moveLeft && !(left > west.Rect.X && left < newColMax) {
		return false
	}
	if moveRight && !(right < east.Rect.MaxX() && right > newColX) {
		return false
	}
	if moveTop && !(top > north.Y && top < newBottom) {
		return false
	}
	if moveBottom && !(bottom < south.MaxY() && bottom > newTop) {
		return false
	}
	if !moveLeft && !moveRight && !moveTop && !moveBottom {
		return false
	}

	if moveLeft {
		west.Rect.Width = left - west.Rect.X
		west.matchHorizontal()
	}
	if moveRight {
		east.Rect.Width = east.Rect.MaxX() - right
		east.Rect.X = right
		east.matchHorizontal()
	}
	col.Rect.X = newColX
	col.Rect.Width = newColMax - newColX
	col.matchHorizontal()

	if moveTop {
		north.Height = top - north.Y
	}
	if moveBottom {
		south.Height = south.MaxY() - bottom
		south.Y = bottom
	}
	col.Frames[fi].Y = newTop
	col.Frames[fi].Height = newBottom - newTop
	return true
}

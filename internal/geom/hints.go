package geom

// Gravity is the ICCCM window gravity.
type Gravity int

const (
	GravityNorthWest Gravity = iota + 1
	GravityNorth
	GravityNorthEast
	GravityWest
	GravityCenter
	GravityEast
	GravitySouthWest
	GravitySouth
	GravitySouthEast
	GravityStatic
)

// HintFlags says which SizeHints fields were supplied by the client.
type HintFlags uint

const (
	HintMinSize HintFlags = 1 << iota
	HintMaxSize
	HintResizeInc
	HintBaseSize
	HintGravity
)

// SizeHints is the subset of WM_NORMAL_HINTS the layout engine honours.
type SizeHints struct {
	Flags      HintFlags
	MinWidth   int
	MinHeight  int
	MaxWidth   int
	MaxHeight  int
	IncWidth   int
	IncHeight  int
	BaseWidth  int
	BaseHeight int
	Gravity    Gravity
}

// Decoration describes the frame drawn around a client window.
type Decoration struct {
	Border    int
	BarHeight int
}

// ClientRect returns the client window rectangle relative to its frame.
func (d Decoration) ClientRect(frame Rect) Rect {
	return Rect{
		X:      d.Border,
		Y:      d.BarHeight,
		Width:  frame.Width - 2*d.Border,
		Height: frame.Height - d.Border - d.BarHeight,
	}
}

// FrameSize returns the frame width and height needed around a client of
// the given size.
func (d Decoration) FrameSize(w, h int) (int, int) {
	return w + 2*d.Border, h + d.Border + d.BarHeight
}

// Gravitate offsets a client rectangle by the decoration according to the
// client's gravity. invert undoes a previous call.
func (h SizeHints) Gravitate(r Rect, d Decoration, invert bool) Rect {
	g := GravityNorthWest
	if h.Flags&HintGravity != 0 {
		g = h.Gravity
	}

	var dx, dy int
	switch g {
	case GravityStatic, GravityNorthWest, GravityNorth, GravityNorthEast:
		dy = d.BarHeight
	case GravityEast, GravityCenter, GravityWest:
		dy = -(r.Height / 2) + d.BarHeight
	case GravitySouthEast, GravitySouth, GravitySouthWest:
		dy = -r.Height
	}
	switch g {
	case GravityStatic, GravityNorthWest, GravityWest, GravitySouthWest:
		dx = d.Border
	case GravityNorth, GravityCenter, GravitySouth:
		dx = -(r.Width / 2) + d.Border
	case GravityNorthEast, GravityEast, GravitySouthEast:
		dx = -(r.Width + d.Border)
	}

	if invert {
		dx, dy = -dx, -dy
	}
	return r.Translate(dx, dy)
}

// Match trims a frame rectangle so the client inside it satisfies the
// minimum, maximum and increment hints. The frame keeps its origin.
func (h SizeHints) Match(frame Rect, d Decoration) Rect {
	c := d.ClientRect(frame)
	w, ht := c.Width, c.Height

	if h.Flags&HintMinSize != 0 {
		w = max(w, h.MinWidth)
		ht = max(ht, h.MinHeight)
	}
	if h.Flags&HintMaxSize != 0 {
		if h.MaxWidth > 0 {
			w = min(w, h.MaxWidth)
		}
		if h.MaxHeight > 0 {
			ht = min(ht, h.MaxHeight)
		}
	}
	if h.Flags&HintResizeInc != 0 {
		var bw, bh int
		switch {
		case h.Flags&HintBaseSize != 0:
			bw, bh = h.BaseWidth, h.BaseHeight
		case h.Flags&HintMinSize != 0:
			bw, bh = h.MinWidth, h.MinHeight
		}
		if h.IncWidth > 0 && w > bw {
			w -= (w - bw) % h.IncWidth
		}
		if h.IncHeight > 0 && ht > bh {
			ht -= (ht - bh) % h.IncHeight
		}
	}

	frame.Width, frame.Height = d.FrameSize(w, ht)
	return frame
}

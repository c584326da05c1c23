package wm

import (
	"fmt"
	"slices"
	"strings"

	"github.com/acmnu/wmii/internal/geom"
	"github.com/acmnu/wmii/internal/platform"
	"github.com/acmnu/wmii/internal/registry"
)

// floatTag in a client's tags sends it to the floating area of every view.
const floatTag = "~"

// Client is a managed top-level window.
type Client struct {
	id        registry.ID
	win       platform.WindowID
	frameWin  platform.WindowID
	name      string
	class     string
	hints     geom.SizeHints
	tags      []string
	frames    []registry.ID
	sel       int
	revert    registry.ID
	trans     platform.WindowID
	canDelete bool
	border    int

	floatRect geom.Rect
	placed    bool
}

func (c *Client) ID() registry.ID           { return c.id }
func (c *Client) Window() platform.WindowID { return c.win }
func (c *Client) Frame() platform.WindowID  { return c.frameWin }
func (c *Client) Name() string              { return c.name }
func (c *Client) Class() string             { return c.class }
func (c *Client) Tags() []string            { return slices.Clone(c.tags) }
func (c *Client) TagString() string         { return strings.Join(c.tags, " ") }
func (c *Client) Frames() []registry.ID     { return slices.Clone(c.frames) }

// TransientFor returns the window this client is a dialog of.
func (c *Client) TransientFor() platform.WindowID { return c.trans }

// Clients returns the managed clients in manage order.
func (w *World) Clients() []*Client { return w.clients }

// Client returns a live client.
func (w *World) Client(id registry.ID) *Client { return w.client(id) }

func (w *World) client(id registry.ID) *Client {
	if i := registry.ByID(w.clients, id); i >= 0 {
		return w.clients[i]
	}
	return nil
}

// ClientByWindow finds the client owning a client or frame window.
func (w *World) ClientByWindow(win platform.WindowID) *Client {
	if win == platform.None {
		return nil
	}
	for _, c := range w.clients {
		if c.win == win || c.frameWin == win {
			return c
		}
	}
	return nil
}

// Focused returns the focused client, or nil.
func (w *World) Focused() *Client { return w.client(w.focused) }

func (w *World) frameIn(c *Client, v *View) *Frame {
	for _, id := range c.frames {
		if f := w.frames[id]; f != nil {
			if a := w.areas[f.area]; a != nil && a.view == v.id {
				return f
			}
		}
	}
	return nil
}

func (w *World) frameIndex(c *Client, f *Frame) int {
	return slices.Index(c.frames, f.id)
}

// currentFrame is the frame that currently drives the client window.
func (w *World) currentFrame(c *Client) *Frame {
	id, ok := registry.Selected(c.frames, c.sel)
	if !ok {
		return nil
	}
	return w.frames[id]
}

// Manage takes over a window. The client is tagged like its transient
// parent, or with the focused view, or with the default tag.
func (w *World) Manage(info platform.WindowInfo) (*Client, error) {
	if c := w.ClientByWindow(info.ID); c != nil {
		return c, nil
	}
	if info.OverrideRedirect {
		return nil, fmt.Errorf("%w: override-redirect window", ErrPermission)
	}
	id, err := w.allocate()
	if err != nil {
		return nil, err
	}
	c := &Client{
		id:        id,
		win:       info.ID,
		name:      info.Name,
		class:     className(info),
		hints:     info.Hints,
		trans:     info.TransientFor,
		canDelete: info.CanDelete,
		border:    info.BorderWidth,
	}
	d := w.decoration()
	fw, fh := d.FrameSize(info.Bounds.Width, info.Bounds.Height)
	c.floatRect = c.hints.Gravitate(geom.Rect{X: info.Bounds.X, Y: info.Bounds.Y, Width: fw, Height: fh}, d, true)

	fwin, err := w.surface.CreateFrame(c.floatRect)
	if err != nil {
		return nil, fmt.Errorf("create frame: %w", err)
	}
	c.frameWin = fwin
	w.display("reparent", w.surface.Reparent(c.win, fwin, geom.Point{X: d.Border, Y: d.BarHeight}))

	switch parent := w.ClientByWindow(c.trans); {
	case parent != nil:
		c.tags = slices.Clone(parent.tags)
	case w.SelectedView() != nil:
		c.tags = []string{w.SelectedView().name}
	default:
		c.tags = []string{w.defaultTag}
	}
	w.clients = append(w.clients, c)
	if err := w.syncViews(c); err != nil {
		w.clients = registry.Remove(w.clients, len(w.clients)-1)
		w.display("release", w.surface.Release(c.win, geom.Point{X: info.Bounds.X, Y: info.Bounds.Y}))
		w.display("destroy frame", w.surface.DestroyFrame(fwin))
		return nil, err
	}

	w.display("map", w.surface.Map(c.win))
	w.display("map frame", w.surface.Map(fwin))
	if f := w.currentFrame(c); f != nil {
		w.applyFrame(f)
		if w.onScreen(w.areas[f.area]) {
			w.focusClient(c)
		}
	}
	w.logger.Debug("client managed", "client", c.id, "window", c.win, "name", c.name)
	w.writeEvent("CC %d\n", c.id)
	return c, nil
}

func (w *World) manage(info platform.WindowInfo) {
	if _, err := w.Manage(info); err != nil {
		w.logger.Warn("manage window failed", "window", info.ID, "error", err)
	}
}

func className(info platform.WindowInfo) string {
	if info.Instance == "" {
		return info.Class
	}
	return info.Class + ":" + info.Instance
}

// Unmanage forgets a client. release gives a still existing window back to
// the root window.
func (w *World) Unmanage(c *Client, release bool) { w.unmanage(c, release) }

func (w *World) unmanage(c *Client, release bool) {
	if registry.ByID(w.clients, c.id) < 0 {
		return
	}
	at := c.floatRect
	if f := w.currentFrame(c); f != nil {
		at = f.rect
	}
	if w.drag != nil && w.frames[w.drag.frame] != nil && w.frames[w.drag.frame].client == c.id {
		w.drag = nil
		w.display("ungrab pointer", w.surface.UngrabPointer())
	}
	for _, id := range slices.Clone(c.frames) {
		if f := w.frames[id]; f != nil {
			w.detachFrame(f)
		}
	}
	if release {
		d := w.decoration()
		w.display("release", w.surface.Release(c.win, geom.Point{X: at.X + d.Border, Y: at.Y + d.BarHeight}))
	}
	w.display("destroy frame", w.surface.DestroyFrame(c.frameWin))
	w.clients = registry.Remove(w.clients, registry.ByID(w.clients, c.id))

	if w.focused == c.id {
		w.focused = 0
		if v := w.SelectedView(); v != nil {
			if n := w.selectedClientOf(v); n != nil {
				w.focusClient(n)
			}
		}
	}
	w.logger.Debug("client unmanaged", "client", c.id, "window", c.win)
	w.writeEvent("CD %d\n", c.id)
}

// Kill asks the client to close, or disconnects it when it does not speak
// the delete protocol.
func (w *World) Kill(c *Client) {
	if c.canDelete {
		w.display("delete", w.surface.Delete(c.win))
		return
	}
	w.display("kill", w.surface.Kill(c.win))
}

// ParseTags splits a tags file write. Tags are separated by spaces or '+'.
func ParseTags(s string) ([]string, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '+' || r == '\t' || r == '\n'
	})
	var out []string
	for _, t := range fields {
		if !validTag(t) {
			return nil, fmt.Errorf("%w: tag %q", ErrBadValue, t)
		}
		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: empty tag list", ErrBadValue)
	}
	return out, nil
}

func validTag(t string) bool {
	switch t {
	case "", ".", "..", "sel", "new":
		return false
	}
	return !strings.ContainsRune(t, '/')
}

// SetTags replaces the tags of c and moves its frames to match.
func (w *World) SetTags(c *Client, s string) error {
	tags, err := ParseTags(s)
	if err != nil {
		return err
	}
	if need := w.retagCost(c, tags); need > w.ids.Remaining() {
		return fmt.Errorf("retag client %d: %w", c.id, registry.ErrExhausted)
	}
	old := c.tags
	wasFloating := slices.Contains(old, floatTag)
	c.tags = tags
	if err := w.syncViews(c); err != nil {
		c.tags = old
		return err
	}

	if floating := slices.Contains(c.tags, floatTag); floating != wasFloating {
		for _, id := range slices.Clone(c.frames) {
			f := w.frames[id]
			if f == nil {
				continue
			}
			a := w.areas[f.area]
			v := w.viewOf(a)
			var err error
			switch i := w.areaIndex(a); {
			case floating && i != 0:
				err = w.sendArea(v.areas[0], a, f)
			case !floating && i == 0:
				to := v.areas[1]
				if v.sel > 0 {
					to = v.areas[v.sel]
				}
				err = w.sendArea(to, a, f)
			}
			if err != nil {
				return err
			}
		}
	}

	if v := w.SelectedView(); v != nil {
		if f := w.frameIn(c, v); f != nil {
			c.sel = w.frameIndex(c, f)
		} else if w.focused == c.id {
			w.focused = 0
			if n := w.selectedClientOf(v); n != nil {
				w.focusClient(n)
			}
		}
	}
	w.drawClient(c)
	return nil
}

// retagCost is the number of ids SetTags needs to give c the tags: a view
// and its two areas per missing view, and a frame per view c is not in yet.
// Moving in or out of the floating area takes one more frame per view.
func (w *World) retagCost(c *Client, tags []string) int {
	names := realTags(tags)
	n := 0
	for _, name := range names {
		switch v := w.ViewByName(name); {
		case v == nil:
			n += 4
		case w.frameIn(c, v) == nil:
			n++
		}
	}
	if slices.Contains(tags, floatTag) != slices.Contains(c.tags, floatTag) {
		n += len(names)
	}
	return n
}

// SendToTag retags c with a single tag.
func (w *World) SendToTag(c *Client, tag string) error {
	tag = strings.TrimSpace(tag)
	if !validTag(tag) || strings.ContainsAny(tag, " +") {
		return fmt.Errorf("%w: tag %q", ErrBadValue, tag)
	}
	return w.SetTags(c, tag)
}

// SendToArea moves frame f to another area of its view.
func (w *World) SendToArea(f *Frame, s Selector) error {
	a := w.areas[f.area]
	v := w.viewOf(a)
	c := w.client(f.client)
	if v == nil || c == nil {
		return ErrNotFound
	}
	i := w.areaIndex(a)
	n := len(v.areas)

	var to *Area
	switch s.Kind {
	case SelectNew:
		if i == 0 || len(a.frames) == 1 {
			return nil
		}
		id, err := w.allocate()
		if err != nil {
			return err
		}
		na, err := w.CreateArea(v)
		if err != nil {
			return err
		}
		w.moveFrame(na, a, f, id)
		return nil
	case SelectPrev, SelectNext:
		if i == 0 {
			return nil
		}
		to = v.areas[cycle(i, 1, n-1, s.Kind == SelectNext)]
	case SelectToggle:
		switch r := w.areas[c.revert]; {
		case i != 0:
			to = v.areas[0]
		case r != nil && r.view == v.id && w.areaIndex(r) > 0:
			to = r
		default:
			to = v.areas[1]
		}
	case SelectIndex:
		if s.Index < 0 || s.Index >= n {
			return fmt.Errorf("%w: area %d out of range", ErrBadValue, s.Index)
		}
		to = v.areas[s.Index]
	default:
		return fmt.Errorf("%w: area selector %s", ErrBadValue, s)
	}
	if to == a {
		return nil
	}
	return w.sendArea(to, a, f)
}

// sendArea moves f from one area to another. The new frame id is taken
// before f is removed, so a failed move leaves f where it was.
func (w *World) sendArea(to, from *Area, f *Frame) error {
	id, err := w.allocate()
	if err != nil {
		return err
	}
	w.moveFrame(to, from, f, id)
	return nil
}

func (w *World) moveFrame(to, from *Area, f *Frame, id registry.ID) {
	c := w.client(f.client)
	c.revert = from.id
	w.detachFrame(f)
	w.focusFrame(w.place(to, c, id))
}

// SetGeometry applies a geom write to f.
func (w *World) SetGeometry(f *Frame, r geom.Rect) error {
	if r.Empty() {
		return fmt.Errorf("%w: rectangle %s", ErrBadValue, r)
	}
	return w.resize(f, r, nil)
}

func (w *World) focusFrame(f *Frame) {
	c := w.client(f.client)
	if c == nil {
		return
	}
	if i := w.frameIndex(c, f); i >= 0 && w.onScreen(w.areas[f.area]) {
		c.sel = i
	}
	w.focusFrameOf(c, f)
}

func (w *World) focusClient(c *Client) {
	if f := w.currentFrame(c); f != nil {
		w.focusFrameOf(c, f)
	}
}

// focusFrameOf selects f in its area and view. Only frames of the focused
// view take the input focus.
func (w *World) focusFrameOf(c *Client, f *Frame) {
	a := w.areas[f.area]
	v := w.viewOf(a)
	if v == nil {
		return
	}
	v.sel = w.areaIndex(a)
	a.sel = registry.ByID(a.frames, f.id)
	w.selected(a, f)
	if !w.onScreen(a) {
		return
	}

	old := w.client(w.focused)
	w.focused = c.id
	w.display("focus", w.surface.Focus(c.win))
	if old != nil && old != c {
		w.drawClient(old)
	}
	w.drawClient(c)
	if old != c {
		w.writeEvent("CF %d\n", c.id)
	}
}

// syncViews attaches c to a view for each of its tags, creating views as
// needed, and detaches it from views it is no longer tagged with. New
// frames are placed before stale ones are removed; on failure the frames
// and views added by this call are undone and c keeps the ones it had.
func (w *World) syncViews(c *Client) error {
	names := realTags(c.tags)
	if len(names) == 0 {
		name := w.defaultTag
		if v := w.SelectedView(); v != nil {
			name = v.name
		}
		c.tags = append(c.tags, name)
		names = []string{name}
	}

	stale := make([]*Frame, 0, len(c.frames))
	for _, id := range c.frames {
		f := w.frames[id]
		if f == nil {
			continue
		}
		if v := w.viewOf(w.areas[f.area]); v == nil || !slices.Contains(names, v.name) {
			stale = append(stale, f)
		}
	}

	floating := slices.Contains(c.tags, floatTag)
	sel := c.sel
	var added []*Frame
	var created []*View
	for _, name := range names {
		v := w.ViewByName(name)
		if v == nil {
			nv, err := w.CreateView(name)
			if err != nil {
				w.undoSync(c, sel, added, created)
				return fmt.Errorf("create view %q: %w", name, err)
			}
			v = nv
			created = append(created, v)
		}
		if w.frameIn(c, v) != nil {
			continue
		}
		f, err := w.attachToView(v, c, floating)
		if err != nil {
			w.undoSync(c, sel, added, created)
			return fmt.Errorf("attach to view %q: %w", name, err)
		}
		added = append(added, f)
	}
	for _, f := range stale {
		w.detachFrame(f)
	}
	if len(stale) > 0 {
		if f := w.currentFrame(c); f != nil {
			w.applyFrame(f)
		}
	}
	return nil
}

func (w *World) undoSync(c *Client, sel int, added []*Frame, created []*View) {
	for _, f := range added {
		w.detachFrame(f)
	}
	c.sel = registry.ClampSel(sel, len(c.frames))
	if f := w.currentFrame(c); f != nil {
		w.applyFrame(f)
	}
	for _, v := range created {
		if err := w.DestroyView(v); err != nil {
			w.logger.Warn("destroy view failed", "view", v.name, "error", err)
		}
	}
}

func (w *World) attachToView(v *View, c *Client, floating bool) (*Frame, error) {
	var a *Area
	switch {
	case floating || c.trans != platform.None:
		a = v.areas[0]
	case v.sel > 0:
		a = v.areas[v.sel]
	default:
		a = v.areas[1]
	}
	return w.attach(a, c)
}

func (w *World) detachFromView(v *View, c *Client) {
	if f := w.frameIn(c, v); f != nil {
		w.detachFrame(f)
	}
}

// detachFrame removes f from its client and area. An emptied tiling area
// is destroyed unless it is the last one; an emptied floating area hands
// the selection back to the tiling side.
func (w *World) detachFrame(f *Frame) {
	c := w.client(f.client)
	if c != nil {
		if i := w.frameIndex(c, f); i >= 0 {
			c.frames = slices.Delete(c.frames, i, i+1)
			if c.sel > i {
				c.sel--
			}
			c.sel = registry.ClampSel(c.sel, len(c.frames))
		}
	}
	a := w.areas[f.area]
	if a == nil {
		delete(w.frames, f.id)
		return
	}
	w.detach(a, f)
	v := w.viewOf(a)
	if v == nil {
		return
	}

	switch i := w.areaIndex(a); {
	case i != 0 && len(a.frames) > 0:
		w.arrange(a)
	case i != 0:
		if len(v.areas) > 2 {
			w.destroyArea(v, i)
		} else if len(v.areas[0].frames) > 0 {
			v.sel = 0
		}
		w.arrangeView(v)
	case len(a.frames) == 0:
		var parent *Client
		if c != nil {
			parent = w.ClientByWindow(c.trans)
		}
		if pf := w.parentFrame(parent, v); pf != nil {
			v.sel = w.areaIndex(w.areas[pf.area])
		} else if len(v.areas[1].frames) > 0 {
			v.sel = 1
		}
	}
}

func (w *World) parentFrame(parent *Client, v *View) *Frame {
	if parent == nil {
		return nil
	}
	return w.frameIn(parent, v)
}

// UpdateProperty refreshes a client property after the window changed it.
func (w *World) UpdateProperty(c *Client, p platform.Property) {
	info, err := w.surface.Info(c.win)
	if err != nil {
		w.display("window info", err)
		return
	}
	switch p {
	case platform.PropertyName:
		c.name = info.Name
		c.class = className(info)
	case platform.PropertyNormalHints:
		c.hints = info.Hints
		if f := w.currentFrame(c); f != nil {
			w.arrange(w.areas[f.area])
		}
	case platform.PropertyTransient:
		c.trans = info.TransientFor
	case platform.PropertyProtocols:
		c.canDelete = info.CanDelete
	}
	w.drawClient(c)
}

func (w *World) drawClient(c *Client) {
	f := w.currentFrame(c)
	if f == nil {
		return
	}
	colors := w.normColors
	if c.id == w.focused {
		colors = w.selColors
	}
	w.display("draw frame", w.surface.DrawFrame(c.frameWin, platform.Decoration{
		Size:      f.rect,
		Border:    w.def.Border,
		BarHeight: w.barHeight,
		Title:     c.name,
		Colors:    colors,
	}))
}

func realTags(tags []string) []string {
	return without(tags, floatTag)
}

func without(tags []string, name string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t != name {
			out = append(out, t)
		}
	}
	return out
}

package wm

import (
	"fmt"

	"github.com/acmnu/wmii/internal/registry"
	"github.com/acmnu/wmii/internal/tiling"
)

// View is a named workspace. Area 0 is the floating area; the others tile.
type View struct {
	id     registry.ID
	name   string
	areas  []*Area
	sel    int
	revert int
	// prev is the view that was focused before this one.
	prev registry.ID
}

func (v *View) ID() registry.ID { return v.id }
func (v *View) Name() string    { return v.name }
func (v *View) Areas() []*Area  { return v.areas }
func (v *View) Sel() int        { return v.sel }
func (v *View) Revert() int     { return v.revert }

// SelectedArea returns the selected area. A view always has one.
func (v *View) SelectedArea() *Area { return v.areas[v.sel] }

// Views returns the views in creation order.
func (w *World) Views() []*View { return w.views }

// Sel returns the index of the focused view.
func (w *World) Sel() int { return w.sel }

// SelectedView returns the focused view, or nil when there are none.
func (w *World) SelectedView() *View {
	v, _ := registry.Selected(w.views, w.sel)
	return v
}

// ViewByID returns a live view.
func (w *World) ViewByID(id registry.ID) *View {
	if i := registry.ByID(w.views, id); i >= 0 {
		return w.views[i]
	}
	return nil
}

// ViewByName returns the first view with the given name.
func (w *World) ViewByName(name string) *View {
	if i := registry.IndexOf(w.views, func(v *View) bool { return v.name == name }); i >= 0 {
		return w.views[i]
	}
	return nil
}

func (w *World) viewIndex(v *View) int {
	return registry.ByID(w.views, v.id)
}

// CreateView adds a view with one floating and one tiling area. The first
// view created becomes focused.
func (w *World) CreateView(name string) (*View, error) {
	if name == "" || name == floatTag {
		return nil, fmt.Errorf("%w: view name %q", ErrBadValue, name)
	}
	id, err := w.allocate()
	if err != nil {
		return nil, err
	}
	v := &View{id: id, name: name}
	if _, err := w.newArea(v, ModeFloat); err != nil {
		return nil, err
	}
	if _, err := w.newArea(v, w.def.ColMode); err != nil {
		w.dropAreas(v)
		return nil, err
	}
	v.sel = 1
	w.views = append(w.views, v)
	w.arrangeView(v)
	w.logger.Debug("view created", "view", name, "id", id)
	if len(w.views) == 1 {
		w.FocusView(v)
	} else {
		w.publishDesktops()
	}
	return v, nil
}

func (w *World) dropAreas(v *View) {
	for _, a := range v.areas {
		delete(w.areas, a.id)
	}
	v.areas = nil
}

// DestroyView removes a view. Clients only tagged with this view take the
// name of the view that receives focus. The last view cannot be removed
// while it still holds clients.
func (w *World) DestroyView(v *View) error {
	i := w.viewIndex(v)
	if i < 0 {
		return ErrNotFound
	}

	next := w.ViewByID(v.prev)
	if next == v {
		next = nil
	}
	if next == nil {
		for _, o := range w.views {
			if o != v {
				next = o
				break
			}
		}
	}
	clients := w.clientsOf(v)
	if next == nil && len(clients) > 0 {
		return fmt.Errorf("%w: last view still holds clients", ErrPermission)
	}

	// Clients left without a tag move to next and need a frame there.
	need := 0
	for _, c := range clients {
		if len(realTags(without(c.tags, v.name))) == 0 && w.frameIn(c, next) == nil {
			need++
		}
	}
	if need > w.ids.Remaining() {
		return fmt.Errorf("destroy view %q: %w", v.name, registry.ErrExhausted)
	}

	wasSelected := i == w.sel
	w.views = registry.Remove(w.views, i)
	if w.sel > i {
		w.sel--
	}
	w.sel = registry.ClampSel(w.sel, len(w.views))
	for _, o := range w.views {
		if o.prev == v.id {
			o.prev = 0
		}
	}

	for _, c := range clients {
		w.detachFromView(v, c)
		if w.ViewByName(v.name) == nil {
			c.tags = without(c.tags, v.name)
		}
		if len(realTags(c.tags)) == 0 {
			c.tags = append(c.tags, next.name)
		}
		if err := w.syncViews(c); err != nil {
			w.logger.Warn("retag client failed", "client", c.id, "error", err)
		}
	}
	w.dropAreas(v)
	w.logger.Debug("view destroyed", "view", v.name, "id", v.id)

	switch {
	case len(w.views) == 0:
		w.focused = 0
		w.publishDesktops()
		w.writeEvent("PN -\n")
	case wasSelected:
		w.FocusView(next)
	default:
		w.publishDesktops()
	}
	return nil
}

// FocusView shows v and hides every other view.
func (w *World) FocusView(v *View) {
	i := w.viewIndex(v)
	if i < 0 {
		return
	}
	if old := w.SelectedView(); old != nil && old != v {
		v.prev = old.id
	}
	w.sel = i

	for _, c := range w.clients {
		if f := w.frameIn(c, v); f != nil {
			c.sel = w.frameIndex(c, f)
		}
	}
	w.arrangeView(v)
	for _, c := range w.clients {
		if f := w.currentFrame(c); f != nil && w.viewOf(w.areas[f.area]) != v {
			w.applyFrame(f)
		}
	}

	if c := w.selectedClientOf(v); c != nil {
		w.focusClient(c)
	} else {
		w.focused = 0
	}
	w.writeEvent("PN %d\n", i+1)
	w.publishDesktops()
	w.drawBar()
}

// SelectView focuses a view by name or by the relative selectors prev,
// next and toggle. An unknown name creates the view.
func (w *World) SelectView(arg string) error {
	if arg == "" {
		return fmt.Errorf("%w: missing view", ErrBadValue)
	}
	if v := w.ViewByName(arg); v != nil {
		w.FocusView(v)
		return nil
	}
	switch arg {
	case "prev", "next":
		if len(w.views) > 0 {
			w.FocusView(w.views[cycle(w.sel, 0, len(w.views)-1, arg == "next")])
		}
		return nil
	case "toggle":
		if v := w.ViewByID(w.selectedPrev()); v != nil {
			w.FocusView(v)
		}
		return nil
	}
	v, err := w.CreateView(arg)
	if err != nil {
		return err
	}
	w.FocusView(v)
	return nil
}

func (w *World) selectedPrev() registry.ID {
	if v := w.SelectedView(); v != nil {
		return v.prev
	}
	return 0
}

// arrangeView recomputes the area rectangles of v and arranges each area.
func (w *World) arrangeView(v *View) {
	lr := w.layoutRect()
	v.areas[0].rect = lr
	cols := tiling.SplitColumnsWidth(lr, len(v.areas)-1, w.def.ColWidth)
	for i, a := range v.areas[1:] {
		a.rect = cols[i]
	}
	for _, a := range v.areas {
		w.arrange(a)
	}
}

func (w *World) publishDesktops() {
	w.display("desktops", w.surface.SetDesktops(len(w.views), w.sel))
}

// clientsOf returns the clients with a frame in v.
func (w *World) clientsOf(v *View) []*Client {
	var out []*Client
	for _, c := range w.clients {
		if w.frameIn(c, v) != nil {
			out = append(out, c)
		}
	}
	return out
}

// selectedClientOf returns the client of the selected frame of v's
// selected area, falling back to the first area that has frames.
func (w *World) selectedClientOf(v *View) *Client {
	if f := v.SelectedArea().SelectedFrame(); f != nil {
		return w.client(f.client)
	}
	for _, a := range v.areas {
		if f := a.SelectedFrame(); f != nil {
			return w.client(f.client)
		}
	}
	return nil
}

package wm

import (
	"fmt"
	"strings"

	"github.com/acmnu/wmii/internal/platform"
	"github.com/acmnu/wmii/internal/registry"
)

// MaxLabelData is the longest text a bar label holds. Longer writes are
// truncated.
const MaxLabelData = 255

// Label is one entry of the status bar.
type Label struct {
	id     registry.ID
	data   string
	colors string
}

func (l *Label) ID() registry.ID { return l.id }
func (l *Label) Data() string    { return l.data }
func (l *Label) Colors() string  { return l.colors }

// Key is a grabbed key binding. Presses are published as K events.
type Key struct {
	id   registry.ID
	name string
}

func (k *Key) ID() registry.ID { return k.id }
func (k *Key) Name() string    { return k.name }

// Labels returns the bar labels left to right.
func (w *World) Labels() []*Label { return w.labels }

// LabelByID returns a live label.
func (w *World) LabelByID(id registry.ID) *Label {
	if i := registry.ByID(w.labels, id); i >= 0 {
		return w.labels[i]
	}
	return nil
}

// CreateLabel appends an empty label drawn in the normal colors.
func (w *World) CreateLabel() (*Label, error) {
	id, err := w.allocate()
	if err != nil {
		return nil, err
	}
	l := &Label{id: id, colors: w.def.NormColors}
	w.labels = append(w.labels, l)
	w.drawBar()
	return l, nil
}

// DestroyLabel removes a label.
func (w *World) DestroyLabel(l *Label) error {
	i := registry.ByID(w.labels, l.id)
	if i < 0 {
		return ErrNotFound
	}
	w.labels = registry.Remove(w.labels, i)
	if w.expand >= len(w.labels) {
		w.expand = 0
	}
	w.drawBar()
	return nil
}

// SetLabelData replaces the text of a label.
func (w *World) SetLabelData(l *Label, s string) {
	s = strings.TrimRight(s, "\n")
	if len(s) > MaxLabelData {
		s = s[:MaxLabelData]
	}
	l.data = s
	w.drawBar()
}

// SetLabelColors sets the colors of a label.
func (w *World) SetLabelColors(l *Label, s string) error {
	s = strings.TrimRight(s, "\n")
	if _, err := ParseColors(s); err != nil {
		return err
	}
	l.colors = s
	w.drawBar()
	return nil
}

// Expand returns the index of the label that takes the free bar space.
func (w *World) Expand() int { return w.expand }

// SetExpand chooses the label that takes the free bar space.
func (w *World) SetExpand(i int) error {
	if i < 0 || i >= len(w.labels) {
		return fmt.Errorf("%w: label %d out of range", ErrBadValue, i)
	}
	w.expand = i
	w.drawBar()
	return nil
}

func (w *World) drawBar() {
	if w.barHeight == 0 {
		return
	}
	items := make([]platform.BarItem, len(w.labels))
	for i, l := range w.labels {
		cs, err := ParseColors(l.colors)
		if err != nil {
			cs = w.normColors
		}
		items[i] = platform.BarItem{Text: l.data, Colors: cs}
	}
	w.display("draw bar", w.surface.DrawBar(w.barRect(), items, w.expand))
}

// Keys returns the grabbed keys in creation order.
func (w *World) Keys() []*Key { return w.keys }

// KeyByName returns a grabbed key.
func (w *World) KeyByName(name string) *Key {
	if i := registry.IndexOf(w.keys, func(k *Key) bool { return k.name == name }); i >= 0 {
		return w.keys[i]
	}
	return nil
}

// KeyByID returns a grabbed key.
func (w *World) KeyByID(id registry.ID) *Key {
	if i := registry.ByID(w.keys, id); i >= 0 {
		return w.keys[i]
	}
	return nil
}

// CreateKey grabs a key such as "Mod1-Return".
func (w *World) CreateKey(name string) (*Key, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsRune(name, '/') {
		return nil, fmt.Errorf("%w: key %q", ErrBadValue, name)
	}
	if w.KeyByName(name) != nil {
		return nil, fmt.Errorf("%w: key %q", ErrExists, name)
	}
	id, err := w.allocate()
	if err != nil {
		return nil, err
	}
	if err := w.surface.GrabKey(name); err != nil {
		return nil, fmt.Errorf("%w: grab %q: %v", ErrBadValue, name, err)
	}
	k := &Key{id: id, name: name}
	w.keys = append(w.keys, k)
	return k, nil
}

// DestroyKey releases a key grab.
func (w *World) DestroyKey(k *Key) error {
	i := registry.ByID(w.keys, k.id)
	if i < 0 {
		return ErrNotFound
	}
	w.display("ungrab key", w.surface.UngrabKey(k.name))
	w.keys = registry.Remove(w.keys, i)
	return nil
}

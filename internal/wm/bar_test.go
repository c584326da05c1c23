package wm

import (
	"errors"
	"strings"
	"testing"
)

func TestLabels(t *testing.T) {
	w, s, _ := newTestWorld(t)
	l1, err := w.CreateLabel()
	if err != nil {
		t.Fatalf("CreateLabel: %v", err)
	}
	l2, err := w.CreateLabel()
	if err != nil {
		t.Fatalf("CreateLabel: %v", err)
	}
	if len(s.bar) != 2 {
		t.Fatalf("bar items = %d, want 2", len(s.bar))
	}
	if l1.Colors() != w.Defaults().NormColors {
		t.Fatalf("label colors = %q", l1.Colors())
	}

	w.SetLabelData(l1, strings.Repeat("x", 300))
	if got := len(l1.Data()); got != MaxLabelData {
		t.Fatalf("data length = %d, want %d", got, MaxLabelData)
	}
	w.SetLabelData(l2, "12:00\n")
	if s.bar[1].Text != "12:00" {
		t.Fatalf("bar text = %q", s.bar[1].Text)
	}

	if err := w.SetLabelColors(l2, "#000000 #ffffff"); !errors.Is(err, ErrBadColor) {
		t.Fatalf("err = %v, want %v", err, ErrBadColor)
	}
	if err := w.SetLabelColors(l2, "#000000 #ffffff #ff0000\n"); err != nil {
		t.Fatalf("SetLabelColors: %v", err)
	}
	if s.bar[1].Colors.Border != 0xff0000 {
		t.Fatalf("border color = %#x", s.bar[1].Colors.Border)
	}

	if err := w.SetExpand(1); err != nil {
		t.Fatalf("SetExpand: %v", err)
	}
	if err := w.SetExpand(2); !errors.Is(err, ErrBadValue) {
		t.Fatalf("err = %v, want %v", err, ErrBadValue)
	}
	if err := w.DestroyLabel(l2); err != nil {
		t.Fatalf("DestroyLabel: %v", err)
	}
	if w.Expand() != 0 || s.expand != 0 {
		t.Fatalf("expand = %d, want 0 after its label went away", w.Expand())
	}
	if err := w.DestroyLabel(l2); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want %v", err, ErrNotFound)
	}
}

func TestKeys(t *testing.T) {
	w, s, _ := newTestWorld(t)
	k, err := w.CreateKey("Mod1-Return")
	if err != nil {
		t.Fatalf("CreateKey: %v", err)
	}
	if !s.grabbed["Mod1-Return"] {
		t.Fatal("key not grabbed")
	}
	if _, err := w.CreateKey("Mod1-Return"); !errors.Is(err, ErrExists) {
		t.Fatalf("duplicate: err = %v, want %v", err, ErrExists)
	}
	if _, err := w.CreateKey("a/b"); !errors.Is(err, ErrBadValue) {
		t.Fatalf("err = %v, want %v", err, ErrBadValue)
	}

	s.grabError = errors.New("unknown keysym")
	if _, err := w.CreateKey("Mod1-Nope"); !errors.Is(err, ErrBadValue) {
		t.Fatalf("err = %v, want %v", err, ErrBadValue)
	}
	if len(w.Keys()) != 1 {
		t.Fatalf("keys = %d, a failed grab must not register", len(w.Keys()))
	}

	if err := w.DestroyKey(k); err != nil {
		t.Fatalf("DestroyKey: %v", err)
	}
	if s.grabbed["Mod1-Return"] || w.KeyByName("Mod1-Return") != nil {
		t.Fatal("key still grabbed")
	}
}

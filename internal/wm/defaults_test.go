package wm

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/acmnu/wmii/internal/geom"
	"github.com/acmnu/wmii/internal/platform"
)

func TestParseColors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want platform.ColorSet
		err  bool
	}{
		{name: "valid", in: "#aabbcc #112233 #445566", want: platform.ColorSet{Text: 0xaabbcc, Background: 0x112233, Border: 0x445566}},
		{name: "upper case", in: "#AABBCC #000000 #FFFFFF", want: platform.ColorSet{Text: 0xaabbcc, Border: 0xffffff}},
		{name: "short", in: "#aabbcc #112233 #44556", err: true},
		{name: "trailing newline", in: "#aabbcc #112233 #445566\n", err: true},
		{name: "wrong separator", in: "#aabbcc,#112233 #445566", err: true},
		{name: "missing hash", in: "#aabbcc 1122334 #445566", err: true},
		{name: "not hex", in: "#aabbcg #112233 #445566", err: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseColors(tt.in)
			if tt.err {
				if !errors.Is(err, ErrBadColor) {
					t.Fatalf("err = %v, want %v", err, ErrBadColor)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseColors: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("colors (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want int
		err  bool
	}{
		{in: "20", want: 20},
		{in: " 7\n", want: 7},
		{in: "0", want: 0},
		{in: "65535", want: 65535},
		{in: "65536", err: true},
		{in: "-1", err: true},
		{in: "12px", err: true},
		{in: "", err: true},
	}
	for _, tt := range tests {
		got, err := ParseValue(tt.in)
		if tt.err {
			if !errors.Is(err, ErrBadValue) {
				t.Errorf("ParseValue(%q) err = %v, want %v", tt.in, err, ErrBadValue)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseValue(%q) = %d, %v; want %d", tt.in, got, err, tt.want)
		}
	}
}

func TestColorsRoundTrip(t *testing.T) {
	w, s, _ := newTestWorld(t)
	c := manageWindow(t, w, s, geom.Rect{Width: 50, Height: 50})
	const colors = "#aabbcc #112233 #445566"
	if err := w.SetSelColors(colors); err != nil {
		t.Fatalf("SetSelColors: %v", err)
	}
	if got := w.Defaults().SelColors; got != colors {
		t.Fatalf("SelColors = %q, want %q", got, colors)
	}
	want := platform.ColorSet{Text: 0xaabbcc, Background: 0x112233, Border: 0x445566}
	if diff := cmp.Diff(want, s.frames[c.Frame()].Colors); diff != "" {
		t.Fatalf("focused frame colors (-want +got):\n%s", diff)
	}

	before := w.Defaults().NormColors
	if err := w.SetNormColors("red green blue"); !errors.Is(err, ErrBadColor) {
		t.Fatalf("err = %v, want %v", err, ErrBadColor)
	}
	if got := w.Defaults().NormColors; got != before {
		t.Fatalf("rejected write changed NormColors to %q", got)
	}
}

func TestSetBorderResizesClients(t *testing.T) {
	w, s, _ := newTestWorld(t)
	c := manageWindow(t, w, s, geom.Rect{Width: 50, Height: 50})
	if err := w.SetBorder(4); err != nil {
		t.Fatalf("SetBorder: %v", err)
	}
	if diff := cmp.Diff(geom.Rect{X: 4, Y: 16, Width: 1272, Height: 988}, s.moves[c.Window()]); diff != "" {
		t.Fatalf("client (-want +got):\n%s", diff)
	}
	if err := w.SetBorder(MaxValue + 1); !errors.Is(err, ErrBadValue) {
		t.Fatalf("err = %v, want %v", err, ErrBadValue)
	}
	if w.Defaults().Border != 4 {
		t.Fatalf("border = %d, want 4", w.Defaults().Border)
	}
}

func TestSetFont(t *testing.T) {
	w, _, _ := newTestWorld(t)
	if err := w.SetFont("missing"); !errors.Is(err, ErrBadValue) {
		t.Fatalf("err = %v, want %v", err, ErrBadValue)
	}
	if w.Defaults().Font != "fixed" {
		t.Fatalf("font = %q", w.Defaults().Font)
	}
	if err := w.SetFont("-misc-fixed-medium-r-normal--13-*"); err != nil {
		t.Fatalf("SetFont: %v", err)
	}
	if w.BarHeight() != 16 {
		t.Fatalf("bar height = %d", w.BarHeight())
	}
}

func TestColumnDefaults(t *testing.T) {
	w, _, _ := newTestWorld(t)
	if err := w.SetColMode(ModeFloat); !errors.Is(err, ErrBadMode) {
		t.Fatalf("err = %v, want %v", err, ErrBadMode)
	}
	if err := w.SetColMode(ModeStack); err != nil {
		t.Fatalf("SetColMode: %v", err)
	}
	if err := w.SetColWidth(300); err != nil {
		t.Fatalf("SetColWidth: %v", err)
	}
	v, err := w.CreateView("1")
	if err != nil {
		t.Fatalf("CreateView: %v", err)
	}
	if v.Areas()[1].Mode() != ModeStack {
		t.Fatalf("new area mode = %s, want stack", v.Areas()[1].Mode())
	}
	if _, err := w.CreateArea(v); err != nil {
		t.Fatalf("CreateArea: %v", err)
	}
	got := []geom.Rect{v.Areas()[1].Rect(), v.Areas()[2].Rect()}
	want := []geom.Rect{{Width: 300, Height: 1008}, {X: 300, Width: 980, Height: 1008}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("area rects (-want +got):\n%s", diff)
	}
}

package wm

import "fmt"

// SelectorKind is the form of a selector argument.
type SelectorKind int

const (
	SelectIndex SelectorKind = iota
	SelectPrev
	SelectNext
	SelectToggle
	SelectNew
	SelectWest
	SelectEast
)

// Selector picks an element of an ordered collection relative to the
// current selection.
type Selector struct {
	Kind  SelectorKind
	Index int
}

// Index selects position i.
func Index(i int) Selector { return Selector{Kind: SelectIndex, Index: i} }

// Relative selectors.
var (
	Prev    = Selector{Kind: SelectPrev}
	Next    = Selector{Kind: SelectNext}
	Toggle  = Selector{Kind: SelectToggle}
	NewArea = Selector{Kind: SelectNew}
	West    = Selector{Kind: SelectWest}
	East    = Selector{Kind: SelectEast}
)

func (s Selector) String() string {
	switch s.Kind {
	case SelectPrev:
		return "prev"
	case SelectNext:
		return "next"
	case SelectToggle:
		return "toggle"
	case SelectNew:
		return "new"
	case SelectWest:
		return "west"
	case SelectEast:
		return "east"
	}
	return fmt.Sprintf("%d", s.Index)
}

// cycle moves cur one step within [lo, hi], wrapping at either end.
func cycle(cur, lo, hi int, forward bool) int {
	if forward {
		if cur+1 > hi {
			return lo
		}
		return cur + 1
	}
	if cur-1 < lo {
		return hi
	}
	return cur - 1
}

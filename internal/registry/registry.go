// Package registry hands out the stable identifiers carried in Qid paths and
// provides the lookups the entity graph performs on its ordered collections.
package registry

import "errors"

// ID identifies a view, area, frame, client, key or label for the lifetime
// of the process. Zero is never allocated.
type ID uint32

// MaxID is the largest identifier that fits a Qid id field.
const MaxID ID = 0xFFFF

// ErrExhausted is returned once every representable id has been handed out.
var ErrExhausted = errors.New("id space exhausted")

// Allocator is a monotonic id source. Ids are never reused.
type Allocator struct {
	last ID
}

// Allocate returns the next unused id.
func (a *Allocator) Allocate() (ID, error) {
	if a.last >= MaxID {
		return 0, ErrExhausted
	}
	a.last++
	return a.last, nil
}

// Remaining returns how many ids can still be allocated.
func (a *Allocator) Remaining() int { return int(MaxID - a.last) }

// Last returns the most recently allocated id, or 0.
func (a *Allocator) Last() ID { return a.last }

// Identified is implemented by every entity held in a collection.
type Identified interface {
	ID() ID
}

// IndexOf returns the position of the first item satisfying pred, or -1.
func IndexOf[T any](items []T, pred func(T) bool) int {
	for i, it := range items {
		if pred(it) {
			return i
		}
	}
	return -1
}

// ByID returns the position of the item with the given id, or -1.
func ByID[T Identified](items []T, id ID) int {
	if id == 0 {
		return -1
	}
	return IndexOf(items, func(it T) bool { return it.ID() == id })
}

// At returns the item at position i when it exists.
func At[T any](items []T, i int) (T, bool) {
	var zero T
	if i < 0 || i >= len(items) {
		return zero, false
	}
	return items[i], true
}

// Selected returns the currently selected item of a collection. An empty
// collection has no selection.
func Selected[T any](items []T, sel int) (T, bool) {
	return At(items, sel)
}

// Remove deletes position i, keeping order.
func Remove[T any](items []T, i int) []T {
	if i < 0 || i >= len(items) {
		return items
	}
	copy(items[i:], items[i+1:])
	var zero T
	items[len(items)-1] = zero
	return items[:len(items)-1]
}

// Insert places v at position i, shifting later items.
func Insert[T any](items []T, i int, v T) []T {
	if i < 0 {
		i = 0
	}
	if i >= len(items) {
		return append(items, v)
	}
	items = append(items, v)
	copy(items[i+1:], items[i:])
	items[i] = v
	return items
}

// ClampSel keeps a selection index valid after the collection shrank.
func ClampSel(sel, n int) int {
	if n == 0 || sel < 0 {
		return 0
	}
	if sel >= n {
		return n - 1
	}
	return sel
}

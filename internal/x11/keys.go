package x11

import (
	"fmt"
	"slices"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// KeyCombo is one modifier mask and keycode pair of a grabbed key.
type KeyCombo struct {
	Mods uint16
	Code xproto.Keycode
}

// ParseKey resolves a key name such as "Mod1-Return" into the combos that
// produce it.
func (c *Connection) ParseKey(name string) ([]KeyCombo, error) {
	mods, codes, err := keybind.ParseString(c.XUtil, name)
	if err != nil {
		return nil, fmt.Errorf("parse key %q: %w", name, err)
	}
	if len(codes) == 0 {
		return nil, fmt.Errorf("parse key %q: no keycode", name)
	}
	out := make([]KeyCombo, len(codes))
	for i, code := range codes {
		out[i] = KeyCombo{Mods: mods, Code: code}
	}
	return out, nil
}

// GrabKey grabs every combo on the root window, including the lock
// modifier variants.
func (c *Connection) GrabKey(combos []KeyCombo) error {
	for _, k := range combos {
		if err := keybind.GrabChecked(c.XUtil, c.Root, k.Mods, k.Code); err != nil {
			return err
		}
	}
	return nil
}

// UngrabKey releases combos grabbed by GrabKey.
func (c *Connection) UngrabKey(combos []KeyCombo) {
	for _, k := range combos {
		keybind.Ungrab(c.XUtil, c.Root, k.Mods, k.Code)
	}
}

// CleanMods strips the ignored lock modifiers from an event state.
func CleanMods(state uint16) uint16 {
	for _, m := range xevent.IgnoreMods {
		state &^= m
	}
	return state & 0xff
}

// configureIgnoreMods makes key matching and grabs ignore Caps, Num and
// Scroll Lock in every combination.
func configureIgnoreMods(xu *xgbutil.XUtil) {
	locks := []uint16{xproto.ModMaskLock}
	for _, name := range []string{"Num_Lock", "Scroll_Lock"} {
		if m := lockMask(xu, name); m != 0 && !slices.Contains(locks, m) {
			locks = append(locks, m)
		}
	}
	xevent.IgnoreMods = lockCombos(locks)
}

// lockCombos returns the OR of every subset of locks, the empty one first.
func lockCombos(locks []uint16) []uint16 {
	out := []uint16{0}
	for _, l := range locks {
		for _, m := range out {
			out = append(out, m|l)
		}
	}
	return out
}

// lockMask returns the modifier bit the keysym is mapped to, or 0.
func lockMask(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, code := range keybind.StrToKeycodes(xu, keysym) {
		if m := keybind.ModGet(xu, code); m != 0 {
			return m
		}
	}
	return 0
}
